package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/open-edge-platform/geti-sub021/internal/config"
	"github.com/open-edge-platform/geti-sub021/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	root := &cobra.Command{
		Use:   "annotator-mcp",
		Short: "MCP server for task-chain aware image annotation",
		Long: `annotator-mcp keeps an annotation session for one image and exposes
task-chain aware edits (drawing shapes, applying labels, merging predictions,
undo and redo) as MCP tools over stdin/stdout.

Settings can be given in a config file, with ANNOTATOR_MCP_* environment
variables or with flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), v, configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = v.BindPFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "annotator-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func serve(ctx context.Context, v *viper.Viper, configPath string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(*cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting annotator MCP server",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.Float64("epsilon", cfg.Epsilon))

	srv := server.New(*cfg, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newLogger builds a production logger writing to stderr; stdout carries
// the MCP protocol.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
