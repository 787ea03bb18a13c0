package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rama/internal/logger"
	"rama/internal/mcp"
	"rama/internal/tool/builtin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	serverName    = "rama-research-server"
	serverVersion = "0.1.0"
)

var (
	logLevel string
	noColor  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rama-provider",
		Short:         "Research capability provider speaking MCP over stdio",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.Flags().StringVar(&logLevel, "log-level", envOr("RAMA_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored log output")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func runServe(cmd *cobra.Command, args []string) error {
	return serve(cmd.Context())
}

func serve(ctx context.Context) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	// stdout carries the protocol, logs go to stderr
	log := logger.New(os.Stderr, logger.Options{Level: level, ColorMode: !noColor})
	defer log.Sync()

	summarizer := builtin.SummarizerFromEnv()
	if summarizer == nil {
		log.Debug("OPENAI_API_KEY not set, summaries use templates")
	}

	registry := builtin.NewRegistry(builtin.Options{
		Summarizer: summarizer,
		Logger:     log,
	})
	log.Debug("registered tools",
		zap.Strings("tools", registry.Names()),
		zap.Int("resources", len(registry.Resources())))

	server := mcp.NewProviderServer(serverName, serverVersion, registry, log)
	return server.Run(ctx)
}
