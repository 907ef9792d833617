package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/performance"
	"trade-journal/internal/store"
)

// addJournalCommands adds the commands that move trades in and out of the journal.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newShowCmd(app))
	rootCmd.AddCommand(newDeleteCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	var (
		format string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from a CSV, JSON or YAML file",
		Long: `Import trades into the journal. Trades with an id already in the journal
are replaced; trades without an id get a new one.

Trades are saved in batches of store.batch_size, each in its own transaction.
If a batch fails, the batches before it stay saved and the error says how many.

The format is taken from the file extension unless --format is given.`,
		Example: `  journal import trades.csv
  journal import export.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx := commandContext(cmd)
			start := time.Now()

			var f importer.Format
			if format != "" {
				parsed, err := importer.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			} else {
				detected, err := importer.DetectFormat(args[0])
				if err != nil {
					return err
				}
				f = detected
			}

			trades, err := app.Importer.ReadFile(args[0], f)
			if err != nil {
				return err
			}

			if dryRun {
				if output.IsJSON() {
					return output.JSON(map[string]interface{}{
						"file":    args[0],
						"format":  f,
						"read":    len(trades),
						"dry_run": true,
					})
				}
				output.Info("Read %d trade(s) from %s (dry run, nothing saved)", len(trades), args[0])
				return nil
			}

			journal, err := app.journal()
			if err != nil {
				return err
			}

			saved, err := saveInBatches(ctx, journal, trades, app.Config.Store.BatchSize)
			if err != nil {
				app.Logger.Warn().Err(err).Str("source", args[0]).Int("saved", saved).Int("read", len(trades)).Msg("Import stopped")
				return err
			}
			logging.LogImport(app.Logger, args[0], string(f), len(trades), saved, time.Since(start))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"file":   args[0],
					"format": f,
					"read":   len(trades),
					"saved":  saved,
				})
			}
			output.Success("✓ Imported %d trade(s) from %s", saved, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format: csv, json or yaml")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without saving")

	return cmd
}

// saveInBatches writes trades in transactions of batchSize. Each batch commits
// on its own, so on failure the batches before it stay saved and their count
// is returned alongside the error.
func saveInBatches(ctx context.Context, journal store.TradeStore, trades []models.Trade, batchSize int) (int, error) {
	batch := performance.NewBatchProcessor(batchSize, func(chunk []models.Trade) error {
		_, err := journal.SaveTrades(ctx, chunk)
		return err
	})

	var err error
	for _, t := range trades {
		if err = batch.Add(t); err != nil {
			break
		}
	}
	if err == nil {
		err = batch.Flush()
	}

	saved := batch.Processed()
	if err != nil {
		return saved, fmt.Errorf("saving trades: %d of %d saved before the failure (re-importing is safe): %w", saved, len(trades), err)
	}
	return saved, nil
}

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		period periodFlags
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export trades to a file",
		Long:  "Write journaled trades to a CSV, JSON or YAML file. Use '-' for stdout.",
		Example: `  journal export trades.csv
  journal export - --format json --period year`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			var f importer.Format
			var err error
			switch {
			case format != "":
				f, err = importer.ParseFormat(format)
			case args[0] == "-":
				f = importer.FormatJSON
			default:
				f, err = importer.DetectFormat(args[0])
			}
			if err != nil {
				return err
			}

			trades, p, err := app.loadPeriod(cmd, period, store.TradeFilter{})
			if err != nil {
				return err
			}

			if args[0] == "-" {
				return importer.Write(cmd.OutOrStdout(), f, trades)
			}

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := importer.Write(file, f, trades); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			app.Logger.Info().Str("file", args[0]).Str("format", string(f)).Int("trades", len(trades)).Msg("Trades exported")
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"file": args[0], "format": f, "period": p, "trades": len(trades)})
			}
			output.Success("✓ Exported %d trade(s) (%s) to %s", len(trades), p, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format: csv, json or yaml")
	addPeriodFlags(cmd, &period)

	return cmd
}

func newTradesCmd(app *App) *cobra.Command {
	var (
		symbol    string
		direction string
		strategy  string
		limit     int
		period    periodFlags
	)

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List journaled trades",
		Example: `  journal trades --period week
  journal trades --symbol AAPL --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			filter := store.TradeFilter{Symbol: symbol, Strategy: strategy}
			if direction != "" {
				d, err := models.ParseDirection(direction)
				if err != nil {
					return err
				}
				filter.Direction = d
			}

			trades, p, err := app.loadPeriod(cmd, period, filter)
			if err != nil {
				return err
			}
			// newest first, then trim
			for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
				trades[i], trades[j] = trades[j], trades[i]
			}
			if limit > 0 && len(trades) > limit {
				trades = trades[:limit]
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Info("No trades found for %s", p)
				return nil
			}

			output.Bold("Trades (%s)", p)
			table := NewTable(output, "Date", "Symbol", "Side", "Qty", "Entry", "Exit", "Stop", "P&L", "Strategy", "ID")
			for _, t := range trades {
				pnl := output.DimText("-")
				if t.PnLAmount != nil {
					pnl = output.FormatPnL(*t.PnLAmount)
				}
				table.AddRow(
					output.Date(t.Date),
					t.Symbol,
					string(t.Direction),
					FormatQuantity(t.Quantity),
					FormatPrice(&t.EntryPrice),
					FormatPrice(t.ExitPrice),
					FormatPrice(t.StopLoss),
					pnl,
					TruncateString(t.Strategy.Label(), 18),
					TruncateString(t.ID, 8),
				)
			}
			table.Render()
			output.Dim("%d trade(s)", len(trades))
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol")
	cmd.Flags().StringVar(&direction, "direction", "", "filter by direction (long or short)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "filter by strategy name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum trades to show (0 for all)")
	addPeriodFlags(cmd, &period)

	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one trade in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			journal, err := app.journal()
			if err != nil {
				return err
			}

			t, err := journal.GetTrade(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}

			lines := []string{
				fmt.Sprintf("Date:       %s", output.Date(t.Date)),
				fmt.Sprintf("Direction:  %s", t.Direction),
				fmt.Sprintf("Quantity:   %s", FormatQuantity(t.Quantity)),
				fmt.Sprintf("Entry:      %s", FormatPrice(&t.EntryPrice)),
				fmt.Sprintf("Exit:       %s", FormatPrice(t.ExitPrice)),
				fmt.Sprintf("Stop:       %s", FormatPrice(t.StopLoss)),
				fmt.Sprintf("Target:     %s", FormatPrice(t.Target)),
				fmt.Sprintf("Amount:     %s", output.Money(t.TotalAmount)),
			}
			if t.PnLAmount != nil {
				lines = append(lines, fmt.Sprintf("P&L:        %s", output.FormatPnL(*t.PnLAmount)))
			}
			if t.PnLPercentage != nil {
				lines = append(lines, fmt.Sprintf("P&L %%:      %s", output.FormatPercent(*t.PnLPercentage)))
			}
			if t.Strategy != nil {
				lines = append(lines, fmt.Sprintf("Strategy:   %s", t.Strategy.Label()))
			}
			if t.OutcomeSummary != nil {
				lines = append(lines, fmt.Sprintf("Outcome:    %s", t.OutcomeSummary.Label()))
			}
			if len(t.Tags) > 0 {
				lines = append(lines, fmt.Sprintf("Tags:       %s", strings.Join(t.Tags, ", ")))
			}
			if ps := t.Psychology; ps != nil {
				if ps.EntryConfidenceLevel != nil {
					lines = append(lines, fmt.Sprintf("Confidence: %.0f/10", *ps.EntryConfidenceLevel))
				}
				if ps.SatisfactionRating != nil {
					lines = append(lines, fmt.Sprintf("Satisfied:  %.0f/10", *ps.SatisfactionRating))
				}
				if ps.EmotionalState != nil {
					lines = append(lines, fmt.Sprintf("Emotion:    %s", ps.EmotionalState.Label()))
				}
				if len(ps.MistakesMade) > 0 {
					lines = append(lines, fmt.Sprintf("Mistakes:   %s", strings.Join(ps.MistakesMade, ", ")))
				}
				if ps.LessonsLearned != "" {
					lines = append(lines, fmt.Sprintf("Lesson:     %s", TruncateString(ps.LessonsLearned, 60)))
				}
			}

			output.Box(fmt.Sprintf("%s  %s", t.Symbol, t.ID), lines)
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trade from the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			journal, err := app.journal()
			if err != nil {
				return err
			}
			if err := journal.DeleteTrade(commandContext(cmd), args[0]); err != nil {
				return err
			}
			app.Logger.Info().Str("trade_id", args[0]).Msg("Trade deleted")
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Deleted trade %s", args[0])
			return nil
		},
	}
}

// loadPeriod loads the trades matching filter and narrows them to the period
// selected by pf, oldest first.
func (a *App) loadPeriod(cmd *cobra.Command, pf periodFlags, filter store.TradeFilter) ([]models.Trade, analytics.Period, error) {
	p, err := pf.Resolve(a.Engine.Options())
	if err != nil {
		return nil, analytics.Period{}, err
	}

	journal, err := a.journal()
	if err != nil {
		return nil, analytics.Period{}, err
	}

	trades, err := journal.GetTrades(commandContext(cmd), filter)
	if err != nil {
		return nil, analytics.Period{}, err
	}

	return a.Engine.Filter(trades, p), p, nil
}
