package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, m *Map, key string) Value {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestDecodeTOML(t *testing.T) {
	src := `
title = "Hello"
weight = 3
ratio = 0.5
draft = false
date = 2021-01-01T10:20:30+02:00
day = 2020-03-05
tags = ["go", "web"]

[author]
name = "Ada"
email = "ada@example.com"

[[links]]
href = "/a"

[[links]]
href = "/b"
`
	m, err := DecodeTOML([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "weight", "ratio", "draft", "date", "day", "tags", "author", "links"}, m.Keys())

	s, ok := mustGet(t, m, "title").AsString()
	require.True(t, ok)
	assert.Equal(t, "Hello", s)

	n, ok := mustGet(t, m, "weight").AsNumber()
	require.True(t, ok)
	assert.Equal(t, 3.0, n)

	n, _ = mustGet(t, m, "ratio").AsNumber()
	assert.Equal(t, 0.5, n)

	s, ok = mustGet(t, m, "draft").AsString()
	require.True(t, ok)
	assert.Equal(t, "false", s)

	d, ok := mustGet(t, m, "date").AsDateTime()
	require.True(t, ok)
	assert.Equal(t, "2021-01-01T08:20:30", d.String())

	d, ok = mustGet(t, m, "day").AsDateTime()
	require.True(t, ok)
	assert.Equal(t, "2020-03-05T00:00:00", d.String())

	tags, ok := mustGet(t, m, "tags").AsList()
	require.True(t, ok)
	require.Len(t, tags, 2)

	author, ok := mustGet(t, m, "author").AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"name", "email"}, author.Keys())

	links, ok := mustGet(t, m, "links").AsList()
	require.True(t, ok)
	require.Len(t, links, 2)
	second, ok := links[1].AsMap()
	require.True(t, ok)
	href, _ := mustGet(t, second, "href").AsString()
	assert.Equal(t, "/b", href)
}

func TestDecodeTOML_RendersInDocumentOrder(t *testing.T) {
	m, err := DecodeTOML([]byte("zeta = 1\nalpha = 2\nmid = 3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())

	out := renderTemplate(t, "{{zeta}}{{alpha}}{{mid}}", MapValue(m))
	assert.Equal(t, "123", out)
}

func TestDecodeTOML_Invalid(t *testing.T) {
	_, err := DecodeTOML([]byte("title = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}

func TestDecodeYAML(t *testing.T) {
	src := `
title: Hello
weight: 3
draft: true
nothing:
date: 2021-01-01T10:20:30+02:00
tags:
  - go
  - web
author:
  name: Ada
  email: ada@example.com
`
	m, err := DecodeYAML([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "weight", "draft", "nothing", "date", "tags", "author"}, m.Keys())

	n, ok := mustGet(t, m, "weight").AsNumber()
	require.True(t, ok)
	assert.Equal(t, 3.0, n)

	s, ok := mustGet(t, m, "draft").AsString()
	require.True(t, ok)
	assert.Equal(t, "true", s)

	s, ok = mustGet(t, m, "nothing").AsString()
	require.True(t, ok)
	assert.Empty(t, s)

	d, ok := mustGet(t, m, "date").AsDateTime()
	require.True(t, ok)
	assert.Equal(t, "2021-01-01T08:20:30", d.String())

	author, ok := mustGet(t, m, "author").AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"name", "email"}, author.Keys())

	out := renderTemplate(t, "{{#tags}}<{{.}}>{{/tags}}", MapValue(m))
	assert.Equal(t, "<go><web>", out)
}

func TestDecodeYAML_Aliases(t *testing.T) {
	src := `
base: &b
  color: red
copy: *b
`
	m, err := DecodeYAML([]byte(src))
	require.NoError(t, err)
	c, ok := mustGet(t, m, "copy").AsMap()
	require.True(t, ok)
	color, _ := mustGet(t, c, "color").AsString()
	assert.Equal(t, "red", color)
}

func TestDecodeYAML_Empty(t *testing.T) {
	for _, src := range []string{"", "\n", "# only a comment\n"} {
		m, err := DecodeYAML([]byte(src))
		require.NoError(t, err, "%q", src)
		assert.Equal(t, 0, m.Len())
	}
}

func TestDecodeYAML_LooseTimestampStaysString(t *testing.T) {
	m, err := DecodeYAML([]byte("updated: 2020-3-5\n"))
	require.NoError(t, err)
	s, ok := mustGet(t, m, "updated").AsString()
	require.True(t, ok)
	assert.Equal(t, "2020-3-5", s)
}

func TestDecodeYAML_Errors(t *testing.T) {
	_, err := DecodeYAML([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")

	_, err = DecodeYAML([]byte("date: !!timestamp not-a-date\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDateTime))
	assert.Contains(t, err.Error(), "not-a-date")

	_, err = DecodeYAML([]byte("a: [unclosed\n"))
	require.Error(t, err)
}
