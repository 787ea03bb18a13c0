package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rama/internal/cli"
	"rama/internal/config"
	"rama/internal/hook"
	"rama/internal/hook/handlers"
	"rama/internal/logger"
	"rama/internal/mcp"
	"rama/internal/research"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath  string
	verbose     bool
	noColor     bool
	offline     bool
	callTimeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rama",
		Short:         "Research assistant backed by an MCP provider",
		Long:          "Invokes research capabilities on a provider process, falling back to local results when it is unavailable",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: search ./rama.yaml, ./configs, ~/.config/rama, /etc/rama)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&offline, "offline", false, "Never contact the provider, serve fallback results")
	flags.DurationVar(&callTimeout, "call-timeout", 0, "Per-call timeout (overrides config)")

	rootCmd.AddCommand(
		searchCmd(),
		workspaceCmd(),
		mindmapCmd(),
		interactiveMindmapCmd(),
		summarizeCmd(),
		citeCmd(),
		samplePaperCmd(),
		audioCmd(),
		researchCmd(),
		doctorCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything a command needs for one invocation
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	out    *cli.Writer
	stats  *handlers.StatsHandler
	client *research.Client
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, err
	}

	if callTimeout > 0 {
		cfg.Client.CallTimeout = config.Duration(callTimeout)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if noColor {
		cfg.Logging.Color = false
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	log := logger.New(os.Stderr, logger.Options{
		Level:     level,
		ColorMode: cfg.Logging.Color,
		ShowTime:  verbose,
	})

	out := cli.NewWriter(os.Stdout, os.Stderr)
	out.SetColorMode(cfg.Logging.Color)
	out.SetVerbose(verbose)

	// Create hook manager
	hooks := hook.NewManager()
	stats := handlers.NewStatsHandler()
	hooks.Register(stats)
	if offline {
		log.Debug("offline mode, provider will not be contacted")
		hooks.Register(handlers.NewOfflineHandler())
	}

	sup := mcp.NewSupervisorFromConfig(cfg, mcp.WithLogger(log), mcp.WithHooks(hooks))
	client := research.NewClient(sup,
		research.WithLogger(log),
		research.WithHooks(hooks),
		research.WithSearchDefaults(cfg.Search.Sources, cfg.Search.MaxResults),
	)

	return &app{
		cfg:    cfg,
		log:    log,
		out:    out,
		stats:  stats,
		client: client,
	}, nil
}

// close stops the provider and reports the tallies in verbose mode
func (a *app) close() {
	a.client.Close()
	for _, s := range a.stats.Snapshot() {
		a.log.Debug("capability stats",
			zap.String("capability", s.Capability),
			zap.Int("live", s.Live),
			zap.Int("fallback", s.Fallback),
		)
	}
	a.log.Sync()
}

// run wraps a command body with app setup and teardown
func run(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return fn(cmd.Context(), a, args)
	}
}

// print writes a capability result, or the error that prevented one
func (a *app) print(res *research.Result, err error) error {
	if err != nil {
		return err
	}
	return a.out.Result(res)
}
