package templating

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

func writeFile(tb testing.TB, path, data string) {
	tb.Helper()
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tb, os.WriteFile(path, []byte(data), 0644))
}

// setupTestTemplates lays out a site template directory and a theme called
// "plain", then loads a registry over them.
func setupTestTemplates(tb testing.TB) (*Templates, TemplateConfig) {
	tb.Helper()
	root := tb.TempDir()
	config := TemplateConfig{
		TemplateDir: filepath.Join(root, "templates"),
		ThemeDir:    filepath.Join(root, "themes"),
		Theme:       "plain",
		Extension:   ".html",
	}
	themeDir := config.ThemeTemplateDir()

	writeFile(tb, filepath.Join(config.TemplateDir, "page.html"), "local page: {{> partials/header}}{{title}}")
	writeFile(tb, filepath.Join(config.TemplateDir, "partials", "header.html"), "[local header]")
	writeFile(tb, filepath.Join(config.TemplateDir, "notes.txt"), "not a template")

	writeFile(tb, filepath.Join(themeDir, "page.html"), "theme page")
	writeFile(tb, filepath.Join(themeDir, "post.html"), "theme post: {{> partials/header}}{{> partials/footer}}")
	writeFile(tb, filepath.Join(themeDir, "partials", "header.html"), "[theme header]")
	writeFile(tb, filepath.Join(themeDir, "partials", "footer.html"), "[theme footer]")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := Load(logger, config)
	require.NoError(tb, err)
	return tm, config
}

func TestTemplates_LocalBeforeTheme(t *testing.T) {
	tm, _ := setupTestTemplates(t)

	tmpl, err := tm.Get("page.html")
	require.NoError(t, err)
	out, err := tmpl.Render(mustache.Fields{"title": mustache.String("Hi")})
	require.NoError(t, err)
	assert.Equal(t, "local page: [local header]Hi", out)
}

func TestTemplates_FallsBackToTheme(t *testing.T) {
	tm, _ := setupTestTemplates(t)

	tmpl, err := tm.Get("post")
	require.NoError(t, err)
	assert.Equal(t, "post.html", tmpl.Name())

	// Partials follow the same search order, so the site's header wins.
	out, err := tmpl.Render()
	require.NoError(t, err)
	assert.Equal(t, "theme post: [local header][theme footer]", out)
}

func TestTemplates_Missing(t *testing.T) {
	tm, _ := setupTestTemplates(t)

	_, err := tm.Get("archive.html")
	require.ErrorIs(t, err, ErrMissingTemplate)
	assert.Contains(t, err.Error(), "archive.html")

	_, err = tm.Get("notes.txt")
	require.ErrorIs(t, err, ErrMissingTemplate)
}

func TestTemplates_Names(t *testing.T) {
	tm, _ := setupTestTemplates(t)
	assert.Equal(t, []string{
		"page.html",
		"partials/footer.html",
		"partials/header.html",
		"post.html",
	}, tm.Names())
}

func TestTemplates_Refresh(t *testing.T) {
	tm, config := setupTestTemplates(t)

	writeFile(t, filepath.Join(config.TemplateDir, "post.html"), "local post")
	require.NoError(t, tm.Refresh())

	tmpl, err := tm.Get("post.html")
	require.NoError(t, err)
	out, err := tmpl.Render()
	require.NoError(t, err)
	assert.Equal(t, "local post", out)

	// A broken template fails the refresh and keeps the previous set.
	writeFile(t, filepath.Join(config.TemplateDir, "broken.html"), "{{#open}}")
	err = tm.Refresh()
	var perr *mustache.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.html", perr.Template)

	_, err = tm.Get("post.html")
	require.NoError(t, err)
}

func TestTemplates_NoThemeAndMissingDirs(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tm, err := Load(logger, TemplateConfig{TemplateDir: filepath.Join(root, "nope")})
	require.NoError(t, err)
	assert.Empty(t, tm.Names())
	assert.Equal(t, ".html", tm.GetConfig().Extension)

	_, err = tm.Get("page")
	require.ErrorIs(t, err, ErrMissingTemplate)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "templates", config.TemplateDir)
	assert.Empty(t, config.ThemeTemplateDir())

	config.Theme = "plain"
	assert.Equal(t, filepath.Join("themes", "plain", "templates"), config.ThemeTemplateDir())
}
