// Package cli provides the journal command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/config"
	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
	"trade-journal/internal/performance"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-03-01"
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "skip-setup"

// App holds the application dependencies. Everything except the store is
// built in the root pre-run; the store is opened on first use.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Engine   *analytics.Engine
	Pool     *performance.WorkerPool
	Importer *importer.Importer
	Store    store.TradeStore
}

// NewRootCmd creates the root command for the CLI around a fresh App. The
// caller closes the App once the command has run.
func NewRootCmd() (*cobra.Command, *App) {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade journal analytics",
		Long: `journal keeps a local record of your trades and turns it into statistics:
P&L, win rate, expectancy, risk:reward, streaks, groupings and psychology.

Import trades from CSV, JSON or YAML, then run 'journal report summary'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addJournalCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addHelpCommands(rootCmd)

	return rootCmd, app
}

// Execute runs the root command and prints any error. It returns the process
// exit code.
func Execute(ctx context.Context) int {
	cmd, app := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), red.Sprintf("Error: %v", err))
		return 1
	}
	return 0
}

func (a *App) setup(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.Config = cfg

	logCfg := cfg.LogConfig()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
	}
	a.Logger = logging.WithCommand(logging.NewLoggerWithConfig(logCfg), cmd.CommandPath())
	if cfg.TemplateCreated {
		a.Logger.Info().Str("path", cfg.File).Msg("Created config template")
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	a.Engine = analytics.NewEngine(opts, a.Logger)
	a.Importer = importer.New(opts.Location, a.Logger)
	a.Pool = performance.NewWorkerPool(2)
	a.Pool.Start()

	a.Logger.Debug().
		Str("config", cfg.File).
		Str("store", cfg.Store.Path).
		Str("timezone", opts.Location.String()).
		Str("week_numbering", string(opts.WeekNumbering)).
		Msg("Journal initialized")
	return nil
}

// journal returns the trade store, opening it on first use.
func (a *App) journal() (store.TradeStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	s, err := store.NewSQLiteStore(a.Config.Store.Path, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", a.Config.Store.Path, err)
	}
	a.Store = s
	return s, nil
}

// Close releases the pool and the store.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Stop()
	}
	if a.Store != nil {
		err := a.Store.Close()
		a.Store = nil
		return err
	}
	return nil
}

// output builds an Output using the display settings.
func (a *App) output(cmd *cobra.Command) *Output {
	out := NewOutput(cmd)
	if a.Config == nil {
		return out
	}
	d := a.Config.Display
	return out.WithDisplay(d.CurrencySymbol, d.DateFormat, d.ColorEnabled, a.Engine.Options().Location)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the journal configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"config": app.Config.File, "store": app.Config.Store.Path})
			} else {
				output.Println(app.Config.File)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "template",
		Short:       "Print the default configuration file",
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.Template())
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Analytics")
	output.Printf("  Timezone:         %s\n", cfg.Analytics.Timezone)
	output.Printf("  Week numbering:   %s\n", cfg.Analytics.WeekNumbering)
	output.Printf("  Breach tolerance: %.2f\n", cfg.Analytics.BreachTolerance)
	output.Printf("  Streak recency:   %d day(s)\n", cfg.Analytics.StreakRecencyDays)
	output.Println()

	output.Bold("Display")
	output.Printf("  Top N:            %d\n", cfg.Display.TopN)
	output.Printf("  Currency:         %s\n", cfg.Display.CurrencySymbol)
	output.Printf("  Colors:           %v\n", cfg.Display.ColorEnabled)
	output.Printf("  Date format:      %s\n", cfg.Display.DateFormat)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path:             %s\n", cfg.Store.Path)
	output.Printf("  Batch size:       %d\n", cfg.Store.BatchSize)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Logging.Level)
	output.Printf("  File:             %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
}

// commandContext returns a context cancelled on interrupt.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
