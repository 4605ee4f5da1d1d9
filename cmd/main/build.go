package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/Lamina/pkg/buildcache"
	"github.com/CTAG07/Lamina/pkg/site"
	"github.com/CTAG07/Lamina/pkg/templating"
)

// runBuild loads the templates and renders the whole site. The build cache
// is used unless disabled by the flag or the configuration.
func runBuild(ctx context.Context, config *Config, logger *slog.Logger, useCache bool) (site.Stats, error) {
	tm, err := templating.Load(logger, config.Templates)
	if err != nil {
		return site.Stats{}, fmt.Errorf("failed to load templates: %w", err)
	}
	return buildWith(ctx, config, logger, tm, useCache)
}

func buildWith(ctx context.Context, config *Config, logger *slog.Logger, tm *templating.Templates, useCache bool) (site.Stats, error) {
	builder := site.NewBuilder(logger, site.BuildConfig{
		ContentDir: config.Build.ContentDir,
		OutputDir:  config.Build.OutputDir,
		Workers:    config.Build.Workers,
	}, tm, config.Site)

	if useCache && config.Build.CachePath != "" {
		cache, closeCache, err := openCache(config.Build.CachePath, logger)
		if err != nil {
			return site.Stats{}, err
		}
		defer closeCache()
		builder.SetCache(cache)
	}

	return builder.Build(ctx)
}

// openCache opens the build cache database, creating it and its directory
// when needed. The returned function releases it.
func openCache(path string, logger *slog.Logger) (*buildcache.Cache, func(), error) {
	file, _, _ := strings.Cut(path, "?")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = buildcache.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup build cache schema: %w", err)
	}
	cache, err := buildcache.New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare build cache: %w", err)
	}
	if stats, err := cache.GetStats(context.Background()); err == nil {
		logger.Debug("Build cache opened", "path", path, "entries", stats.Entries, "last_rendered", stats.LastRendered)
	}
	return cache, func() {
		cache.Close()
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}, nil
}

// cacheDSN builds a "file:" URI for the cache database, appending the
// driver defaults to any query the configured path already carries.
func cacheDSN(path, defaults string) string {
	file, query, found := strings.Cut(path, "?")
	if !found || query == "" {
		return "file:" + file + "?" + defaults
	}
	return "file:" + file + "?" + query + "&" + defaults
}
