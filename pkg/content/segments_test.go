package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

const breadcrumb = "{{#path}}[{{name}}|{{full}}]{{/path}}"

// segmentsRoot is a root context holding a PathSegments under "path" and a
// string under "label".
type segmentsRoot struct {
	path  PathSegments
	label string
}

func (r segmentsRoot) field(name string) (mustache.Content, bool) {
	switch name {
	case "path":
		return r.path, true
	case "label":
		return mustache.String(r.label), true
	}
	return nil, false
}

func (segmentsRoot) IsTruthy() bool                         { return true }
func (segmentsRoot) RenderEscaped(mustache.Encoder) error   { return nil }
func (segmentsRoot) RenderUnescaped(mustache.Encoder) error { return nil }
func (r segmentsRoot) RenderSection(s mustache.Section, enc mustache.Encoder) error {
	return s.With(r).Render(enc)
}
func (segmentsRoot) RenderInverse(mustache.Section, mustache.Encoder) error { return nil }

func (r segmentsRoot) RenderFieldEscaped(_ uint64, name string, enc mustache.Encoder) (bool, error) {
	c, ok := r.field(name)
	if !ok {
		return false, nil
	}
	return true, c.RenderEscaped(enc)
}

func (r segmentsRoot) RenderFieldUnescaped(_ uint64, name string, enc mustache.Encoder) (bool, error) {
	c, ok := r.field(name)
	if !ok {
		return false, nil
	}
	return true, c.RenderUnescaped(enc)
}

func (r segmentsRoot) RenderFieldSection(_ uint64, name string, s mustache.Section, enc mustache.Encoder) (bool, error) {
	c, ok := r.field(name)
	if !ok {
		return false, nil
	}
	return true, c.RenderSection(s, enc)
}

func (r segmentsRoot) RenderFieldInverse(_ uint64, name string, s mustache.Section, enc mustache.Encoder) (bool, error) {
	c, ok := r.field(name)
	if !ok {
		return false, nil
	}
	return true, c.RenderInverse(s, enc)
}

func TestPathSegments_Section(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/c", "[a|a][b|a/b][c|a/b/c]"},
		{"a", "[a|a]"},
		{"blog/", "[blog|blog]"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := renderTemplate(t, breadcrumb, segmentsRoot{path: PathSegments(tt.path)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathSegments_Direct(t *testing.T) {
	p := PathSegments("a/b/c")
	assert.Equal(t, "/a/b/c", renderWith(t, p.RenderEscaped))
	assert.Equal(t, "/a/b/c", renderWith(t, p.RenderUnescaped))
	assert.True(t, p.IsTruthy())

	amp := PathSegments("r&d/notes")
	assert.Equal(t, "/r&amp;d/notes", renderWith(t, amp.RenderEscaped))
	assert.Equal(t, "/r&d/notes", renderWith(t, amp.RenderUnescaped))

	empty := PathSegments("")
	assert.False(t, empty.IsTruthy())
	assert.Empty(t, renderWith(t, empty.RenderEscaped))
	assert.Empty(t, renderWith(t, empty.RenderUnescaped))
}

func TestPathSegments_InverseAndOuterLookup(t *testing.T) {
	root := segmentsRoot{path: "", label: "home"}
	assert.Equal(t, "home", renderTemplate(t, "{{^path}}{{label}}{{/path}}", root))

	// Fields other than name and full fall through to the enclosing context.
	root = segmentsRoot{path: "docs", label: "L"}
	assert.Equal(t, "docs:L", renderTemplate(t, "{{#path}}{{name}}:{{label}}{{/path}}", root))
}
