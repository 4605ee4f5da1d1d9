package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

// ErrMissingTemplate is returned by Get when neither the template directory
// nor the theme holds the requested template.
var ErrMissingTemplate = errors.New("missing template")

// Templates is the template registry. It is loaded from disk by Load and can
// be reloaded with Refresh. All methods are concurrent-safe.
type Templates struct {
	logger *slog.Logger
	config TemplateConfig
	local  map[string]*mustache.Template
	theme  map[string]*mustache.Template
	mu     sync.RWMutex
}

var _ mustache.Partials = (*Templates)(nil)

// Load creates a registry for config and performs the initial Refresh.
func Load(logger *slog.Logger, config TemplateConfig) (*Templates, error) {
	if config.Extension == "" {
		config.Extension = DefaultConfig().Extension
	}
	tm := &Templates{
		logger: logger,
		config: config,
	}
	if err := tm.Refresh(); err != nil {
		return nil, err
	}
	logger.Info("Template registry initialized", "templates", len(tm.local), "theme_templates", len(tm.theme))
	return tm, nil
}

// Refresh re-reads every template from the template directory and the theme.
// On error the previously loaded templates are kept.
func (tm *Templates) Refresh() error {
	tm.logger.Info("Loading template files...", "dir", tm.config.TemplateDir)
	local, err := tm.loadDir(tm.config.TemplateDir)
	if err != nil {
		tm.logger.Error("failed to load template files", "error", err)
		return err
	}

	var theme map[string]*mustache.Template
	if dir := tm.config.ThemeTemplateDir(); dir != "" {
		tm.logger.Info("Loading theme template files...", "theme", tm.config.Theme, "dir", dir)
		theme, err = tm.loadDir(dir)
		if err != nil {
			tm.logger.Error("failed to load theme template files", "theme", tm.config.Theme, "error", err)
			return err
		}
	}

	if len(local) == 0 && len(theme) == 0 {
		tm.logger.Warn("No template files found", "extension", tm.config.Extension)
	}

	tm.mu.Lock()
	tm.local = local
	tm.theme = theme
	tm.mu.Unlock()
	tm.logger.Info("Loaded template files", "count", len(local)+len(theme))
	return nil
}

func (tm *Templates) loadDir(dir string) (map[string]*mustache.Template, error) {
	templates := make(map[string]*mustache.Template)
	if dir == "" {
		return templates, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		tm.logger.Warn("Template directory does not exist", "dir", dir)
		return templates, nil
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), tm.config.Extension) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		src, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}
		t, err := mustache.Parse(name, string(src))
		if err != nil {
			return err
		}
		templates[name] = t.WithPartials(tm)
		tm.logger.Debug("Loaded template", "name", name, "path", p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// lookup resolves name, with or without the configured extension, in the
// template directory and then in the theme.
func (tm *Templates) lookup(name string) (*mustache.Template, bool) {
	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
	candidates := []string{name}
	if !strings.HasSuffix(name, tm.config.Extension) {
		candidates = append(candidates, name+tm.config.Extension)
	}

	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, set := range []map[string]*mustache.Template{tm.local, tm.theme} {
		for _, c := range candidates {
			if t, ok := set[c]; ok {
				return t, true
			}
		}
	}
	return nil, false
}

// Get returns the template called name, searching the template directory
// before the theme. The error wraps ErrMissingTemplate and names the
// template when neither has it.
func (tm *Templates) Get(name string) (*mustache.Template, error) {
	t, ok := tm.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTemplate, name)
	}
	return t, nil
}

// Partial resolves {{> name}} tags with the same search order as Get.
func (tm *Templates) Partial(name string) (*mustache.Template, bool) {
	return tm.lookup(name)
}

// Names returns the sorted names of every loaded template. A name present in
// both locations is listed once.
func (tm *Templates) Names() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	names := make([]string, 0, len(tm.local)+len(tm.theme))
	for name := range tm.local {
		names = append(names, name)
	}
	for name := range tm.theme {
		if _, ok := tm.local[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// GetConfig returns a copy of the registry's configuration.
func (tm *Templates) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config
}
