// Package cli provides the command-line interface for the analytics tool.
package cli

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-analyst/internal/cache"
	"stock-analyst/internal/config"
	"stock-analyst/internal/logging"
	"stock-analyst/internal/options"
	"stock-analyst/internal/provider"
	"stock-analyst/internal/service"
)

// Version information
const (
	Version = "0.1.0"
)

// requestTimeout bounds each CLI invocation end to end.
const requestTimeout = 60 * time.Second

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Service *service.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second

	var backend provider.Provider
	switch cfg.Provider.Backend {
	case "alpaca":
		backend = provider.NewAlpacaProvider(provider.AlpacaConfig{
			APIKey:    cfg.Credentials.Alpaca.APIKey,
			APISecret: cfg.Credentials.Alpaca.APISecret,
			Timeout:   timeout,
		})
	default:
		backend = provider.NewYahooProvider(provider.YahooConfig{
			ProxyURL: cfg.Provider.YahooProxyURL,
			Timeout:  timeout,
		})
	}
	logger.Debug().Str("backend", backend.Name()).Msg("provider initialized")

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	cached := provider.NewCachedProvider(backend, cache.New(ttl), logger)

	model := options.ModelConfig{
		RiskFreeRate: cfg.Options.RiskFreeRate,
		ImpliedVol:   cfg.Options.ImpliedVol,
	}
	synth := options.NewSynthesizer(model, rand.New(rand.NewSource(time.Now().UnixNano())))

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Service: service.New(cached, synth, model, logger),
	}

	rootCmd := &cobra.Command{
		Use:   "analyst",
		Short: "Stock Analyst - market data and options analytics CLI",
		Long: `Stock Analyst fetches quotes and historical prices, computes technical
indicators with an aggregate recommendation, detects chart patterns and
support/resistance levels, and prices options with full Greeks.

Use 'analyst help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-analyst)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addMarketDataCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addOptionsCommands(rootCmd, app)

	return rootCmd
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Stock Analyst v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Provider")
	output.Printf("  Backend:  %s\n", cfg.Provider.Backend)
	output.Printf("  Timeout:  %ds\n", cfg.Provider.TimeoutSeconds)
	output.Println()

	output.Bold("Cache")
	output.Printf("  TTL:      %ds\n", cfg.Cache.TTLSeconds)
	output.Println()

	output.Bold("Options Model")
	output.Printf("  Risk-free rate: %.2f%%\n", cfg.Options.RiskFreeRate*100)
	output.Printf("  Implied vol:    %.2f%%\n", cfg.Options.ImpliedVol*100)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:    %s\n", cfg.Logging.Level)
	output.Printf("  Console:  %v\n", cfg.Logging.Console)
	output.Printf("  File:     %v\n", cfg.Logging.File)
}
