package mustache

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record = Fields

// items pushes every element as the context of one iteration.
type items []Content

func (l items) IsTruthy() bool { return len(l) > 0 }
func (l items) RenderEscaped(Encoder) error { return nil }
func (l items) RenderUnescaped(Encoder) error { return nil }
func (l items) RenderInverse(s Section, enc Encoder) error {
	return RenderIfFalsy(l, s, enc)
}
func (l items) RenderSection(s Section, enc Encoder) error {
	for _, c := range l {
		if err := s.With(c).Render(enc); err != nil {
			return err
		}
	}
	return nil
}
func (items) RenderFieldEscaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (items) RenderFieldUnescaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (items) RenderFieldSection(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}
func (items) RenderFieldInverse(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}

type partialSet map[string]*Template

func (p partialSet) Partial(name string) (*Template, bool) {
	t, ok := p[name]
	return t, ok
}

func render(t *testing.T, src string, c Content) string {
	t.Helper()
	tmpl, err := Parse("test", src)
	require.NoError(t, err)
	out, err := tmpl.Render(c)
	require.NoError(t, err)
	return out
}

func TestRender_Variables(t *testing.T) {
	ctx := record{"name": String("<b>Tom & Jerry</b>"), "n": Number(3.5)}

	tests := []struct {
		src  string
		want string
	}{
		{"Hello {{name}}!", "Hello &lt;b&gt;Tom &amp; Jerry&lt;/b&gt;!"},
		{"{{{name}}}", "<b>Tom & Jerry</b>"},
		{"{{& name }}", "<b>Tom & Jerry</b>"},
		{"{{n}} {{{n}}}", "3.5 3.5"},
		{"[{{missing}}]", "[]"},
		{"a{{! ignored }}b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, ctx))
		})
	}
}

func TestRender_SectionIteratesAndFallsThrough(t *testing.T) {
	ctx := record{
		"title": String("outer"),
		"list": items{
			record{"title": String("a")},
			record{"other": String("x")},
		},
	}
	// The second element has no title, so the lookup falls through to the root.
	assert.Equal(t, "a;outer;", render(t, "{{#list}}{{title}};{{/list}}", ctx))
}

func TestRender_ImplicitIterator(t *testing.T) {
	ctx := record{"tags": items{String("go"), String("<web>")}}
	assert.Equal(t, "go,&lt;web&gt;,", render(t, "{{#tags}}{{.}},{{/tags}}", ctx))
}

func TestRender_Inverse(t *testing.T) {
	ctx := record{"empty": items{}, "full": items{String("x")}}

	assert.Equal(t, "none", render(t, "{{^empty}}none{{/empty}}", ctx))
	assert.Equal(t, "", render(t, "{{^full}}none{{/full}}", ctx))
	assert.Equal(t, "missing", render(t, "{{^nope}}missing{{/nope}}", ctx))
	assert.Equal(t, "", render(t, "{{#nope}}missing{{/nope}}", ctx))
}

func TestRender_Partials(t *testing.T) {
	header, err := Parse("header", "<h1>{{title}}</h1>")
	require.NoError(t, err)

	page, err := Parse("page", "{{> header}}{{> nope}}body")
	require.NoError(t, err)
	page = page.WithPartials(partialSet{"header": header})

	out, err := page.Render(record{"title": String("Home")})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Home</h1>body", out)
}

func TestRender_RecursivePartialIsBounded(t *testing.T) {
	loop, err := Parse("loop", "x{{> loop}}")
	require.NoError(t, err)
	set := partialSet{}
	loop = loop.WithPartials(set)
	set["loop"] = loop

	_, err = loop.Render(record{})
	require.ErrorIs(t, err, ErrPartialDepth)
}

type failingWriter struct{ after int }

var errSink = errors.New("sink full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errSink
	}
	w.after--
	return len(p), nil
}

func TestRender_PropagatesSinkError(t *testing.T) {
	tmpl, err := Parse("test", "a{{name}}{{#list}}{{.}}{{/list}}")
	require.NoError(t, err)

	ctx := record{"name": String("n"), "list": items{String("1"), String("2")}}
	err = tmpl.RenderTo(&failingWriter{after: 2}, ctx)
	require.ErrorIs(t, err, errSink)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want error
		line int
	}{
		{"hello {{name", ErrUnclosedTag, 1},
		{"line\n{{#list}}open", ErrUnclosedSection, 2},
		{"{{#a}}{{/b}}", ErrUnexpectedClose, 1},
		{"{{/a}}", ErrUnexpectedClose, 1},
		{"{{ }}", ErrEmptyTag, 1},
		{"{{{ }}}", ErrEmptyTag, 1},
		{"{{#}}{{/}}", ErrEmptyTag, 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse("page.html", tt.src)
			require.ErrorIs(t, err, tt.want)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.True(t, strings.Contains(err.Error(), "page.html"))
		})
	}
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "3.5", Number(3.5).String())
	assert.Equal(t, "2", Number(2).String())
	assert.Equal(t, "-0.25", Number(-0.25).String())
	assert.Equal(t, "1000000", Number(1e6).String())
}

func TestHash_Stable(t *testing.T) {
	assert.Equal(t, Hash("title"), Hash("title"))
	assert.NotEqual(t, Hash("title"), Hash("Title"))
}

func TestFields(t *testing.T) {
	tmpl, err := Parse("fields", "{{#user}}{{name}} ({{age}}){{/user}}{{^empty}}none{{/empty}}{{missing}}")
	require.NoError(t, err)

	out, err := tmpl.Render(Fields{
		"user":  Fields{"name": String("Ada & co"), "age": Int(36)},
		"empty": Fields{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada &amp; co (36)none", out)
}

func TestRender_ContextStack(t *testing.T) {
	tmpl, err := Parse("stack", "{{title}} / {{site}}")
	require.NoError(t, err)

	out, err := tmpl.Render(
		Fields{"title": String("outer"), "site": String("Lamina")},
		nil,
		Fields{"title": String("inner")},
	)
	require.NoError(t, err)
	assert.Equal(t, "inner / Lamina", out)
}
