package site

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/CTAG07/Lamina/pkg/content"
	"github.com/CTAG07/Lamina/pkg/mustache"
)

// DefaultTemplate is used for pages whose front matter names no template.
const DefaultTemplate = "page"

// ErrInvalidSlug is returned for a slug that is not a single path component.
var ErrInvalidSlug = errors.New("invalid slug")

// Page is one source file after its front matter has been decoded and its
// body rendered to HTML. Pages are immutable once loaded and are safe to
// render from several goroutines.
type Page struct {
	Source   string               // Source path relative to the content directory
	Path     content.PathSegments // Output directory relative to the output root, no leading separator
	Title    string
	Slug     string
	Template string
	Date     *content.DateTime // nil when the front matter has no date
	Meta     *content.Map      // Front matter keys not listed above, in document order
	Body     string            // Rendered HTML
}

// Loader reads pages from a content directory.
type Loader struct {
	root string
	md   goldmark.Markdown
}

// NewLoader returns a Loader reading from root. Markdown is rendered with
// GitHub flavoured extensions; raw HTML in the source is kept.
func NewLoader(root string) *Loader {
	return &Loader{
		root: root,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Root returns the content directory.
func (l *Loader) Root() string { return l.root }

// IsSource reports whether name is a page source file.
func IsSource(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Discover lists every page source under the content directory as paths
// relative to it, in lexical order.
func (l *Loader) Discover() ([]string, error) {
	var sources []string
	err := filepath.WalkDir(l.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		sources = append(sources, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory %s: %w", l.root, err)
	}
	return sources, nil
}

// Load reads and parses the page at rel, a path relative to the content
// directory.
func (l *Loader) Load(rel string) (*Page, error) {
	src, err := os.ReadFile(filepath.Join(l.root, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return l.Parse(rel, src)
}

// Parse builds a page from src as if it had been read from rel.
func (l *Loader) Parse(rel string, src []byte) (*Page, error) {
	format, fm, body, err := Split(src)
	if err != nil {
		return nil, err
	}
	meta, err := DecodeFrontMatter(format, fm)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s front matter: %w", format, err)
	}

	page := &Page{
		Source:   rel,
		Template: DefaultTemplate,
	}
	var rest []content.Entry
	for key, v := range meta.All() {
		switch key {
		case "title":
			page.Title = scalarText(v)
		case "slug":
			page.Slug = scalarText(v)
			if err := checkSlug(page.Slug); err != nil {
				return nil, err
			}
		case "template":
			if t := scalarText(v); t != "" {
				page.Template = t
			}
		case "date":
			d, err := dateOf(v)
			if err != nil {
				return nil, err
			}
			page.Date = &d
		default:
			rest = append(rest, content.Entry{Key: key, Value: v})
		}
	}
	page.Meta = content.NewMap(rest...)

	out := outputDir(rel)
	if page.Slug != "" && out != "" {
		out = filepath.Join(filepath.Dir(out), page.Slug)
	}
	if page.Slug == "" && out != "" {
		page.Slug = filepath.Base(out)
	}
	page.Path = content.PathSegments(out)

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	page.Body = buf.String()
	return page, nil
}

// outputDir maps a source path to the directory its index.html is written
// to: "blog/post.md" becomes "blog/post", "blog/index.md" becomes "blog" and
// the top-level index becomes "".
func outputDir(rel string) string {
	p := strings.TrimSuffix(rel, filepath.Ext(rel))
	if filepath.Base(p) == "index" {
		p = filepath.Dir(p)
	}
	if p == "." {
		return ""
	}
	return filepath.Clean(p)
}

// checkSlug rejects slugs that would move the output out of the page's own
// directory.
func checkSlug(slug string) error {
	if slug == "" {
		return nil
	}
	if slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) || filepath.Base(slug) != slug {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

func scalarText(v content.Value) string {
	switch v.Kind() {
	case content.KindString:
		s, _ := v.AsString()
		return s
	case content.KindNumber:
		n, _ := v.AsNumber()
		return mustache.Number(n).String()
	default:
		return ""
	}
}

// dateOf accepts a decoded date, or a string that ParseDateTime understands
// (TOML has no way to quote a date without turning it into a string).
func dateOf(v content.Value) (content.DateTime, error) {
	switch v.Kind() {
	case content.KindDateTime:
		d, _ := v.AsDateTime()
		return d, nil
	case content.KindString:
		s, _ := v.AsString()
		return content.ParseDateTime(s)
	default:
		return content.DateTime{}, fmt.Errorf("%w: date is a %s", content.ErrInvalidDateTime, v.Kind())
	}
}

// URL returns the site-absolute URL of the page, with a trailing slash.
func (p *Page) URL() string {
	if p.Path == "" {
		return "/"
	}
	return "/" + filepath.ToSlash(string(p.Path)) + "/"
}

// OutputFile returns the output file of the page relative to the output
// root.
func (p *Page) OutputFile() string {
	return filepath.Join(string(p.Path), "index.html")
}
