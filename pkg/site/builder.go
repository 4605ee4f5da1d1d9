package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	atomicfile "github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/CTAG07/Lamina/pkg/buildcache"
	"github.com/CTAG07/Lamina/pkg/content"
	"github.com/CTAG07/Lamina/pkg/mustache"
)

// ErrDuplicateOutput is returned when two sources map to the same output
// file.
var ErrDuplicateOutput = errors.New("duplicate output path")

// TemplateSource resolves template names. *templating.Templates satisfies it.
type TemplateSource interface {
	Get(name string) (*mustache.Template, error)
}

// Cache remembers what was last written to each output file.
// *buildcache.Cache satisfies it.
type Cache interface {
	Unchanged(ctx context.Context, outputPath string, hash uint64) (bool, error)
	Record(ctx context.Context, outputPath string, hash uint64) error
	Prune(ctx context.Context, keep []string) (int, error)
}

// BuildConfig holds the directories and concurrency of a build.
type BuildConfig struct {
	ContentDir string
	OutputDir  string
	// Workers bounds the number of pages rendered at once. Zero or less uses
	// GOMAXPROCS.
	Workers int
}

// Stats summarises a finished build.
type Stats struct {
	Pages    int // Sources found
	Written  int // Output files written
	Skipped  int // Output files left alone because the cache had them
	Failed   int // Pages that failed to load, render or write
	Duration time.Duration
}

// Builder renders every page of a content directory into an output
// directory.
type Builder struct {
	logger    *slog.Logger
	config    BuildConfig
	loader    *Loader
	templates TemplateSource
	site      *content.Map
	cache     Cache
	now       func() content.DateTime
}

// NewBuilder returns a Builder. site is exposed to templates as "site"; it
// may be nil. A nil logger discards all logs.
func NewBuilder(logger *slog.Logger, config BuildConfig, templates TemplateSource, site *content.Map) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		logger:    logger,
		config:    config,
		loader:    NewLoader(config.ContentDir),
		templates: templates,
		site:      site,
		now:       content.Now,
	}
}

// SetCache enables skipping unchanged output. A nil cache disables it.
func (b *Builder) SetCache(c Cache) {
	b.cache = c
}

// pathSet is the set of output files claimed during one build.
type pathSet struct {
	mu    sync.Mutex
	paths map[string]string
}

// claim records that source produces path, failing if another source
// already does.
func (s *pathSet) claim(path, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if other, ok := s.paths[path]; ok {
		return fmt.Errorf("%w: %s is produced by both %s and %s", ErrDuplicateOutput, path, other, source)
	}
	s.paths[path] = source
	return nil
}

func (s *pathSet) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, filepath.ToSlash(p))
	}
	slices.Sort(out)
	return out
}

// Build renders every page. A page that fails is logged and counted, and the
// remaining pages are still built; the returned error joins every page
// error. Cancelling ctx stops the build early.
func (b *Builder) Build(ctx context.Context) (Stats, error) {
	start := time.Now()
	sources, err := b.loader.Discover()
	if err != nil {
		return Stats{}, err
	}
	b.logger.InfoContext(ctx, "Building site",
		slog.String("content_dir", b.config.ContentDir),
		slog.String("output_dir", b.config.OutputDir),
		slog.Int("pages", len(sources)),
	)

	workers := b.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	root := RootContext(b.site, b.now())
	outputs := &pathSet{paths: make(map[string]string, len(sources))}
	var written, skipped atomic.Int64
	var (
		errMu   sync.Mutex
		pageErr []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wrote, err := b.buildPage(gctx, src, root, outputs)
			if err != nil {
				b.logger.ErrorContext(gctx, "failed to build page", "source", src, "error", err)
				errMu.Lock()
				pageErr = append(pageErr, fmt.Errorf("%s: %w", src, err))
				errMu.Unlock()
				return nil
			}
			if wrote {
				written.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Pages:    len(sources),
		Written:  int(written.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   len(pageErr),
		Duration: time.Since(start),
	}

	if b.cache != nil && len(pageErr) == 0 {
		if _, err := b.cache.Prune(ctx, outputs.sorted()); err != nil {
			return stats, fmt.Errorf("failed to prune build cache: %w", err)
		}
	}

	b.logger.InfoContext(ctx, "Site built",
		slog.Int("pages", stats.Pages),
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration),
	)
	return stats, errors.Join(pageErr...)
}

// buildPage renders one source and writes it unless the cache shows the
// output is already current. It reports whether the file was written.
func (b *Builder) buildPage(ctx context.Context, src string, root mustache.Content, outputs *pathSet) (bool, error) {
	page, err := b.loader.Load(src)
	if err != nil {
		return false, err
	}
	outFile := page.OutputFile()
	if err := outputs.claim(outFile, src); err != nil {
		return false, err
	}

	tmpl, err := b.templates.Get(page.Template)
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	if err := tmpl.RenderTo(&buf, root, page); err != nil {
		return false, fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}

	dest := filepath.Join(b.config.OutputDir, outFile)
	key := filepath.ToSlash(outFile)
	hash := buildcache.Hash(buf.Bytes())
	if b.cache != nil {
		same, err := b.cache.Unchanged(ctx, key, hash)
		if err != nil {
			return false, err
		}
		if same && fileExists(dest) {
			b.logger.DebugContext(ctx, "Output unchanged", "source", src, "output", key)
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := atomicfile.WriteFile(dest, &buf); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if b.cache != nil {
		if err := b.cache.Record(ctx, key, hash); err != nil {
			return true, err
		}
	}
	b.logger.DebugContext(ctx, "Page written", "source", src, "output", key, "template", tmpl.Name())
	return true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
