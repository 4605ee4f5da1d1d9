package mustache

import (
	"io"
	"strings"
)

type nodeKind uint8

const (
	nodeText nodeKind = iota
	nodeEscaped
	nodeUnescaped
	nodeSection
	nodeInverse
	nodePartial
)

type node struct {
	kind     nodeKind
	text     string
	name     string
	hash     uint64
	children []node
}

// Partials resolves the templates referenced by {{> name}} tags.
type Partials interface {
	Partial(name string) (*Template, bool)
}

// Template is a parsed template. It is immutable and safe for concurrent use.
type Template struct {
	name     string
	source   string
	nodes    []node
	partials Partials
}

// Parse parses src into a Template. name is only used in error messages and
// returned by Name.
func Parse(name, src string) (*Template, error) {
	p := &parser{name: name, src: src}
	nodes, err := p.parse("", 0)
	if err != nil {
		return nil, err
	}
	return &Template{name: name, source: src, nodes: nodes}, nil
}

// Name returns the name the template was parsed with.
func (t *Template) Name() string {
	return t.name
}

// Source returns the text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// WithPartials returns a copy of the template that resolves {{> name}} tags
// through p.
func (t *Template) WithPartials(p Partials) *Template {
	clone := *t
	clone.partials = p
	return &clone
}

// RenderEncoder renders the template against contexts, the first being the
// outermost. Nil contexts are skipped.
func (t *Template) RenderEncoder(enc Encoder, contexts ...Content) error {
	s := Section{nodes: t.nodes, partials: t.partials}
	for _, c := range contexts {
		if c != nil {
			s = s.With(c)
		}
	}
	return s.Render(enc)
}

// RenderTo renders the template into w, HTML-escaping escaped output.
func (t *Template) RenderTo(w io.Writer, contexts ...Content) error {
	return t.RenderEncoder(NewHTMLEncoder(w), contexts...)
}

// Render renders the template into a string.
func (t *Template) Render(contexts ...Content) (string, error) {
	var sb strings.Builder
	sb.Grow(len(t.source))
	if err := t.RenderTo(&sb, contexts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type parser struct {
	name string
	src  string
	pos  int
}

// parse consumes nodes until the closing tag of section, or until the end of
// input when section is empty. openedAt is the offset of the opening tag.
func (p *parser) parse(section string, openedAt int) ([]node, error) {
	var nodes []node
	for {
		rel := strings.Index(p.src[p.pos:], "{{")
		if rel < 0 {
			if p.pos < len(p.src) {
				nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos:]})
			}
			p.pos = len(p.src)
			if section != "" {
				return nil, p.errorAt(openedAt, section, ErrUnclosedSection)
			}
			return nodes, nil
		}

		start := p.pos + rel
		if start > p.pos {
			nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos:start]})
		}

		body, end, err := p.tag(start)
		if err != nil {
			return nil, err
		}
		p.pos = end

		sigil := body[0]
		name := strings.TrimSpace(body[1:])
		switch sigil {
		case '!':
			continue
		case '&':
			if name == "" {
				return nil, p.errorAt(start, body, ErrEmptyTag)
			}
			nodes = append(nodes, node{kind: nodeUnescaped, name: name, hash: Hash(name)})
		case '>':
			if name == "" {
				return nil, p.errorAt(start, body, ErrEmptyTag)
			}
			nodes = append(nodes, node{kind: nodePartial, name: name})
		case '#', '^':
			if name == "" {
				return nil, p.errorAt(start, body, ErrEmptyTag)
			}
			children, err := p.parse(name, start)
			if err != nil {
				return nil, err
			}
			kind := nodeSection
			if sigil == '^' {
				kind = nodeInverse
			}
			nodes = append(nodes, node{kind: kind, name: name, hash: Hash(name), children: children})
		case '/':
			if section == "" || name != section {
				return nil, p.errorAt(start, body, ErrUnexpectedClose)
			}
			return nodes, nil
		default:
			nodes = append(nodes, node{kind: nodeEscaped, name: body, hash: Hash(body)})
		}
	}
}

// tag reads the tag starting at offset start. Triple mustaches are returned
// with a '&' sigil so both unescaped forms share one code path.
func (p *parser) tag(start int) (body string, end int, err error) {
	open, closing, prefix := "{{", "}}", ""
	if strings.HasPrefix(p.src[start:], "{{{") {
		open, closing, prefix = "{{{", "}}}", "&"
	}
	inner := start + len(open)
	rel := strings.Index(p.src[inner:], closing)
	if rel < 0 {
		return "", 0, p.errorAt(start, "", ErrUnclosedTag)
	}
	body = strings.TrimSpace(prefix + strings.TrimSpace(p.src[inner:inner+rel]))
	if body == "" || body == "&" {
		return "", 0, p.errorAt(start, p.src[start:inner+rel+len(closing)], ErrEmptyTag)
	}
	return body, inner + rel + len(closing), nil
}

func (p *parser) errorAt(offset int, tag string, err error) error {
	line := 1 + strings.Count(p.src[:offset], "\n")
	column := offset + 1
	if nl := strings.LastIndexByte(p.src[:offset], '\n'); nl >= 0 {
		column = offset - nl
	}
	return &ParseError{Template: p.name, Line: line, Column: column, Tag: tag, Err: err}
}
