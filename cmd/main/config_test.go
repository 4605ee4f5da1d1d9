package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := `
[build]
content_dir = "pages"
workers = 4

[templates]
theme = "plain"

[serve]
addr = ":9000"

[site]
title = "Lamina"
base_url = "https://example.com"
author = "Ada"
`
	config, err := ParseConfig([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "pages", config.Build.ContentDir)
	assert.Equal(t, "public", config.Build.OutputDir, "unset keys keep their defaults")
	assert.Equal(t, 4, config.Build.Workers)
	assert.Equal(t, "plain", config.Templates.Theme)
	assert.Equal(t, ".html", config.Templates.Extension)
	assert.Equal(t, ":9000", config.Serve.Addr)

	assert.Equal(t, []string{"title", "base_url", "author"}, config.Site.Keys())
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("[build\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte(`site = "flat"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site must be a table")
}

func TestLoadConfig_WritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Lamina.toml")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildConfig(), config.Build)
	assert.Equal(t, "127.0.0.1:7277", config.Serve.Addr)

	title, ok := config.Site.Get("title")
	require.True(t, ok)
	s, _ := title.AsString()
	assert.Equal(t, "My Lamina site", s)

	_, err = os.Stat(path)
	require.NoError(t, err, "a default file should have been written")

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Build, again.Build)
	assert.Equal(t, config.Templates, again.Templates)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Lamina.toml")
	require.NoError(t, os.WriteFile(path, []byte("[site]\ntitle = \"mine\"\n"), 0644))

	err := InitConfig(path, false)
	require.ErrorIs(t, err, ErrConfigExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mine")

	require.NoError(t, InitConfig(path, true))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildConfig(), config.Build)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARN").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("loud").String())
}

func TestCacheDSN(t *testing.T) {
	assert.Equal(t, "file:.lamina/cache.db?a=1", cacheDSN(".lamina/cache.db", "a=1"))
	assert.Equal(t, "file:cache.db?a=1", cacheDSN("cache.db?", "a=1"))
	assert.Equal(t, "file:cache.db?mode=rwc&a=1", cacheDSN("cache.db?mode=rwc", "a=1"))
}
