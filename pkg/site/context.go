package site

import (
	"github.com/CTAG07/Lamina/pkg/content"
	"github.com/CTAG07/Lamina/pkg/mustache"
)

var (
	hashTitle   = mustache.Hash("title")
	hashContent = mustache.Hash("content")
	hashDate    = mustache.Hash("date")
	hashPath    = mustache.Hash("path")
	hashSlug    = mustache.Hash("slug")
	hashURL     = mustache.Hash("url")
	hashMeta    = mustache.Hash("meta")
)

var _ mustache.Content = (*Page)(nil)

// field resolves the fixed page fields. Names it does not know are looked up
// in the page metadata by the RenderField methods.
func (p *Page) field(hash uint64, name string) (mustache.Content, bool) {
	switch {
	case hash == hashTitle && name == "title":
		return mustache.String(p.Title), true
	case hash == hashContent && name == "content":
		return mustache.String(p.Body), true
	case hash == hashDate && name == "date":
		if p.Date == nil {
			return nil, false
		}
		return *p.Date, true
	case hash == hashPath && name == "path":
		return p.Path, true
	case hash == hashSlug && name == "slug":
		return mustache.String(p.Slug), true
	case hash == hashURL && name == "url":
		return mustache.String(p.URL()), true
	case hash == hashMeta && name == "meta":
		return p.Meta, true
	}
	return nil, false
}

func (p *Page) IsTruthy() bool { return true }

func (p *Page) RenderEscaped(mustache.Encoder) error { return nil }

func (p *Page) RenderUnescaped(mustache.Encoder) error { return nil }

func (p *Page) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	return section.With(p).Render(enc)
}

func (p *Page) RenderInverse(mustache.Section, mustache.Encoder) error { return nil }

func (p *Page) RenderFieldEscaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	if c, ok := p.field(hash, name); ok {
		return true, c.RenderEscaped(enc)
	}
	return p.Meta.RenderFieldEscaped(hash, name, enc)
}

func (p *Page) RenderFieldUnescaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	if c, ok := p.field(hash, name); ok {
		return true, c.RenderUnescaped(enc)
	}
	return p.Meta.RenderFieldUnescaped(hash, name, enc)
}

func (p *Page) RenderFieldSection(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	if c, ok := p.field(hash, name); ok {
		return true, c.RenderSection(section, enc)
	}
	return p.Meta.RenderFieldSection(hash, name, section, enc)
}

func (p *Page) RenderFieldInverse(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	if c, ok := p.field(hash, name); ok {
		return true, c.RenderInverse(section, enc)
	}
	return p.Meta.RenderFieldInverse(hash, name, section, enc)
}

// RootContext returns the outermost render context shared by every page:
// "site" holds the site table from the configuration and "now" the time the
// build started.
func RootContext(site *content.Map, now content.DateTime) mustache.Content {
	if site == nil {
		site = content.NewMap()
	}
	return mustache.Fields{
		"site": site,
		"now":  now,
	}
}
