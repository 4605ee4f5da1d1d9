package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/Lamina/pkg/content"
	"github.com/CTAG07/Lamina/pkg/templating"
)

// BuildConfig holds the settings of the build command.
type BuildConfig struct {
	ContentDir string `toml:"content_dir"`
	OutputDir  string `toml:"output_dir"`
	Workers    int    `toml:"workers"`
	// CachePath is the SQLite database of the build cache. A "?query" suffix
	// is passed to the driver ahead of the default options. Empty disables
	// the cache.
	CachePath string `toml:"cache_path"`
	LogLevel  string `toml:"log_level"`
}

// ServeConfig holds the settings of the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
	// Headers are added to every response of the site server.
	Headers map[string]string `toml:"headers"`
}

// Config is the top-level configuration read from Lamina.toml.
type Config struct {
	Build     BuildConfig               `toml:"build"`
	Templates templating.TemplateConfig `toml:"templates"`
	Serve     ServeConfig               `toml:"serve"`

	// Site is the free-form [site] table, exposed to templates as "site" in
	// document order.
	Site *content.Map `toml:"-"`
}

// DefaultBuildConfig creates a build configuration with default values.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		ContentDir: "content",
		OutputDir:  "public",
		Workers:    0,
		CachePath:  ".lamina/cache.db",
		LogLevel:   "info",
	}
}

// DefaultServeConfig creates a serve configuration with default values.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Addr: "127.0.0.1:7277",
		Headers: map[string]string{
			"Cache-Control": "no-store, no-cache",
		},
	}
}

// DefaultConfig returns the configuration used when Lamina.toml is missing.
func DefaultConfig() *Config {
	return &Config{
		Build:     DefaultBuildConfig(),
		Templates: templating.DefaultConfig(),
		Serve:     DefaultServeConfig(),
		Site:      content.NewMap(),
	}
}

const defaultSiteTable = `
[site]
title = "My Lamina site"
`

// ErrConfigExists is returned by InitConfig when the file is already there
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// LoadConfig reads the configuration from a TOML file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		file, err = defaultConfigData()
		if err != nil {
			return nil, err
		}
		if err = atomic.WriteFile(path, bytes.NewReader(file)); err != nil {
			// The build can still run with defaults.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	}
	return ParseConfig(file)
}

// InitConfig writes the default configuration to path. An existing file is
// only replaced when force is set.
func InitConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	data, err := defaultConfigData()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func defaultConfigData() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}
	buf.WriteString(defaultSiteTable)
	return buf.Bytes(), nil
}

// ParseConfig decodes a configuration file over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// The typed decode above loses key order, so [site] is decoded again
	// into a content.Map.
	doc, err := content.DecodeTOML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if v, ok := doc.Get("site"); ok {
		site, ok := v.AsMap()
		if !ok {
			return nil, fmt.Errorf("failed to parse config file: site must be a table, not %s", v.Kind())
		}
		config.Site = site
	}
	return config, nil
}
