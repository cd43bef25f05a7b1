package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hypertac-server/internal/app"
	"github.com/vovakirdan/hypertac-server/internal/config"
	logpkg "github.com/vovakirdan/hypertac-server/internal/log"
)

var version = "dev"

// serveOptions collects the command-line overrides applied on top of the config file.
type serveOptions struct {
	configPath string
	overrides  config.Config
	noArchive  bool
}

func main() {
	if err := newRootCmd(&serveOptions{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *serveOptions) *cobra.Command {
	runServe := func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), opts)
	}

	root := &cobra.Command{
		Use:           "hypertac",
		Short:         "N-dimensional tic-tac-toe room server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	flags.StringVar(&opts.overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.overrides.DatabasePath, "db", "", "SQLite match archive path")
	flags.BoolVar(&opts.noArchive, "no-archive", false, "run without the match archive")
	flags.DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the game server (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	})

	return root
}

// resolve loads the config file and applies the command-line overrides.
func (o *serveOptions) resolve(logger *zerolog.Logger) (config.Config, string, error) {
	cfg, path, err := config.Load(logger, o.configPath)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg.UpdateFrom(o.overrides)
	if o.noArchive {
		cfg.DatabasePath = ""
	}
	return cfg, path, nil
}

func serve(parent context.Context, opts *serveOptions) error {
	bootLogger := logpkg.New("info")

	cfg, resolvedPath, err := opts.resolve(bootLogger)
	if err != nil {
		bootLogger.Error().Err(err).Msg("failed to load config")
		return err
	}

	logger := logpkg.New(cfg.LogLevel)
	logger.Info().Str("config_path", resolvedPath).Str("version", version).Msg("configuration loaded")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize application")
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting hypertac server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
