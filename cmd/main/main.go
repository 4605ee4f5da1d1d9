package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/CTAG07/Lamina/pkg/templating"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// CLI is the command line of the lamina binary.
type CLI struct {
	Config   string           `short:"c" help:"Configuration file path" default:"Lamina.toml" type:"path"`
	LogLevel string           `help:"Override the configured log level (debug, info, warn, error)"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render the site into the output directory"`
	Init  InitCmd  `cmd:"" help:"Write a default configuration file"`
	Serve ServeCmd `cmd:"" help:"Build the site and serve it locally"`
}

// BuildCmd renders the site once.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory, overriding the configuration" type:"path"`
	NoCache bool   `help:"Write every page, ignoring the build cache"`
}

// InitCmd writes the default configuration.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

// ServeCmd builds the site and serves the output directory.
type ServeCmd struct {
	Addr string `short:"a" help:"Listen address, overriding the configuration"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lamina"),
		kong.Description("A static site builder with logic-less templates."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", Version, Commit, BuildDate)},
	)
	if err := ctx.Run(&cli); err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setup loads the configuration and creates the logger for a command.
func (c *CLI) setup() (*Config, *slog.Logger, error) {
	config, err := LoadConfig(c.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level := config.Build.LogLevel
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)}))
	slog.SetDefault(logger)
	return config, logger, nil
}

func (b *BuildCmd) Run(cli *CLI) error {
	config, logger, err := cli.setup()
	if err != nil {
		return err
	}
	if b.Output != "" {
		config.Build.OutputDir = b.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = runBuild(ctx, config, logger, !b.NoCache)
	return err
}

func (i *InitCmd) Run(cli *CLI) error {
	if err := InitConfig(cli.Config, i.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", "path", cli.Config)
	return nil
}

func (s *ServeCmd) Run(cli *CLI) error {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		for sig := range osSignalChan {
			if sig == syscall.SIGHUP {
				baseLogger.Info("SIGHUP received, rebuilding.")
				actionChan <- actionRebuild
				continue
			}
			baseLogger.Info("OS signal received, initiating shutdown.")
			actionChan <- actionShutdown
			return
		}
	}()

	for {
		action, err := s.run(cli, actionChan)
		if err != nil {
			return err
		}
		if action == actionRebuild {
			baseLogger.Info("--- Rebuilding site ---")
			continue
		}
		break
	}

	baseLogger.Info("Lamina has shut down.")
	return nil
}

// run builds the site, serves it and returns whenever the server is shut
// down or a rebuild is requested.
func (s *ServeCmd) run(cli *CLI, actionChan chan string) (string, error) {
	config, logger, err := cli.setup()
	if err != nil {
		return "", err
	}
	if s.Addr != "" {
		config.Serve.Addr = s.Addr
	}
	logger.Info("Starting server cycle...")

	tm, err := templating.Load(logger, config.Templates)
	if err != nil {
		return "", fmt.Errorf("failed to load templates: %w", err)
	}

	builds := &buildState{}
	stats, err := buildWith(context.Background(), config, logger, tm, true)
	builds.set(stats, err)
	if err != nil {
		// Serve whatever was built so the failing pages can be inspected.
		logger.Error("Site build failed", "error", err)
	}

	server := NewServer(config, logger, tm, builds, actionChan)
	httpServer := &http.Server{
		Addr:              config.Serve.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting Lamina server", "address", httpServer.Addr, "root", config.Build.OutputDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			actionChan <- actionShutdown
		}
	}()

	action := <-actionChan // Block here until the API or an OS signal sends an action.

	logger.Info("Stopping server for " + action + "...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")
	return action, nil
}
