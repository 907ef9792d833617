package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addReportCommands adds the reporting views.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Trade statistics",
		Long: `Compute statistics over the journal for a period.

Periods:
  --period lifetime        all trades (default)
  --period year [--year]   a calendar year
  --period week [--week]   a week of the year
  --period day             a calendar day (--month, --day)

Parts left out default to the current period.`,
	}

	cmd.AddCommand(newReportSummaryCmd(app))
	cmd.AddCommand(newReportRiskCmd(app))
	cmd.AddCommand(newReportStreaksCmd(app))
	cmd.AddCommand(newReportGroupsCmd(app))
	cmd.AddCommand(newReportPsychologyCmd(app))
	cmd.AddCommand(newReportCompareCmd(app))

	rootCmd.AddCommand(cmd)
}

// snapshot loads every trade and builds the snapshot for p.
func (a *App) snapshot(cmd *cobra.Command, p analytics.Period) (*analytics.Snapshot, error) {
	trades, err := a.allTrades(cmd)
	if err != nil {
		return nil, err
	}
	return a.Engine.Snapshot(trades, p)
}

func (a *App) allTrades(cmd *cobra.Command) ([]models.Trade, error) {
	journal, err := a.journal()
	if err != nil {
		return nil, err
	}
	return journal.GetTrades(commandContext(cmd), store.TradeFilter{})
}

// reportCmd wires the shared period flags and logging around a report body.
func reportCmd(app *App, use, short string, render func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error) *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			p, err := period.Resolve(app.Engine.Options())
			if err != nil {
				return err
			}
			snap, err := app.snapshot(cmd, p)
			if err != nil {
				return err
			}
			if err := render(cmd, app.output(cmd), snap); err != nil {
				return err
			}
			logging.LogReport(app.Logger, use, p.String(), snap.Core.Total, time.Since(start))
			return nil
		},
	}
	addPeriodFlags(cmd, &period)
	return cmd
}

func newReportSummaryCmd(app *App) *cobra.Command {
	return reportCmd(app, "summary", "P&L, win rate and expectancy", func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error {
		if output.IsJSON() {
			return output.JSON(map[string]interface{}{"period": snap.Period, "core": snap.Core})
		}
		renderSummary(output, snap)
		return nil
	})
}

func renderSummary(output *Output, snap *analytics.Snapshot) {
	c := snap.Core
	if c.Total == 0 {
		output.Info("No trades in %s", snap.Period)
		return
	}

	lines := []string{
		fmt.Sprintf("Trades:         %d", c.Total),
		fmt.Sprintf("Wins/Losses/BE: %d/%d/%d", c.Wins, c.Losses, c.BreakEvens),
		fmt.Sprintf("Win rate:       %s", FormatRate(c.WinRate)),
		fmt.Sprintf("Gross P&L:      %s", output.FormatPnL(c.GrossPnL)),
		fmt.Sprintf("Gross profit:   %s", output.Money(c.GrossProfit)),
		fmt.Sprintf("Gross loss:     %s", output.Money(c.GrossLoss)),
		fmt.Sprintf("Avg P&L:        %s", output.FormatPnL(c.AvgPnL)),
		fmt.Sprintf("Avg win:        %s", output.FormatPnL(c.AvgWin)),
		fmt.Sprintf("Avg loss:       %s", output.FormatPnL(c.AvgLoss)),
		fmt.Sprintf("Expectancy:     %s", output.FormatPnL(c.Expectancy)),
		fmt.Sprintf("Profit factor:  %s", FormatProfitFactor(c.GrossProfit, c.GrossLoss)),
	}
	if c.BestTrade != nil {
		lines = append(lines, fmt.Sprintf("Best trade:     %s %s (%s)", c.BestTrade.Symbol, output.FormatPnL(c.BestTrade.PnL()), output.Date(c.BestTrade.Date)))
	}
	if c.WorstTrade != nil {
		lines = append(lines, fmt.Sprintf("Worst trade:    %s %s (%s)", c.WorstTrade.Symbol, output.FormatPnL(c.WorstTrade.PnL()), output.Date(c.WorstTrade.Date)))
	}
	if c.BestDay != nil {
		lines = append(lines, fmt.Sprintf("Best day:       %s %s", output.Date(c.BestDay.Date), output.FormatPnL(c.BestDay.PnL)))
	}
	if c.WorstDay != nil {
		lines = append(lines, fmt.Sprintf("Worst day:      %s %s", output.Date(c.WorstDay.Date), output.FormatPnL(c.WorstDay.PnL)))
	}
	lines = append(lines,
		fmt.Sprintf("Capital:        %s - %s", output.Money(c.Extremes.MinCapital), output.Money(c.Extremes.MaxCapital)),
		fmt.Sprintf("Quantity:       %s - %s", FormatQuantity(c.Extremes.MinQuantity), FormatQuantity(c.Extremes.MaxQuantity)),
	)

	output.Box(fmt.Sprintf("Summary %s", snap.Period), lines)
}

func newReportRiskCmd(app *App) *cobra.Command {
	return reportCmd(app, "risk", "Risk:reward ratios and risk breaches", func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error {
		if output.IsJSON() {
			return output.JSON(map[string]interface{}{
				"period":      snap.Period,
				"risk_reward": snap.RiskReward,
				"breaches":    snap.Breaches,
			})
		}
		renderRisk(output, snap, app.Config.Display.TopN)
		return nil
	})
}

func renderRisk(output *Output, snap *analytics.Snapshot, topN int) {
	rr := snap.RiskReward
	if rr.Count == 0 {
		output.Info("No trades with a defined risk:reward in %s (%d excluded)", snap.Period, rr.Excluded)
	} else {
		output.Box(fmt.Sprintf("Risk:Reward %s", snap.Period), []string{
			fmt.Sprintf("Defined:  %d (%d excluded)", rr.Count, rr.Excluded),
			fmt.Sprintf("Mean:     %s", FormatRiskReward(rr.Mean)),
			fmt.Sprintf("Median:   %s", FormatRiskReward(rr.Median)),
			fmt.Sprintf("Best:     %s", FormatRiskReward(rr.Best)),
			fmt.Sprintf("Worst:    %s", FormatRiskReward(rr.Worst)),
		})
		output.Println()

		output.Bold("By symbol")
		renderRatios(output, rr.BySymbol, topN)
		output.Println()

		output.Bold("By weekday")
		renderRatios(output, rr.ByWeekday, 0)
	}

	b := snap.Breaches
	output.Println()
	if len(b.Breaches) == 0 {
		output.Success("No risk breaches (%d losing trade(s) checked, tolerance %.2fx)", b.Checked, b.Tolerance)
		return
	}
	output.Warning("%d risk breach(es) out of %d checked (tolerance %.2fx)", len(b.Breaches), b.Checked, b.Tolerance)
	table := NewTable(output, "Date", "Symbol", "Risk", "Loss", "Excess", "ID")
	for _, br := range b.Breaches {
		table.AddRow(
			output.Date(br.Date),
			br.Symbol,
			output.Money(br.RiskAmount),
			output.Red(output.Money(br.Loss)),
			output.Money(br.Excess),
			TruncateString(br.TradeID, 8),
		)
	}
	table.Render()
}

func renderRatios(output *Output, rows []analytics.RatioGroup, topN int) {
	table := NewTable(output, "Key", "Trades", "Mean R:R")
	for i, row := range rows {
		if topN > 0 && i >= topN {
			break
		}
		table.AddRow(row.Key, fmt.Sprintf("%d", row.Count), FormatRiskReward(row.Mean))
	}
	table.Render()
}

func newReportStreaksCmd(app *App) *cobra.Command {
	return reportCmd(app, "streaks", "Winning and losing streaks", func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error {
		if output.IsJSON() {
			return output.JSON(map[string]interface{}{"period": snap.Period, "streaks": snap.Streaks})
		}
		renderStreaks(output, snap, app.Config.Display.TopN)
		return nil
	})
}

func renderStreaks(output *Output, snap *analytics.Snapshot, topN int) {
	s := snap.Streaks
	if len(s.Day.Days) == 0 {
		output.Info("No trades in %s", snap.Period)
		return
	}

	current := FormatStreak(s.Day.Current, s.Day.CurrentKind)
	switch s.Day.CurrentKind {
	case models.OutcomeWin:
		current = output.Green(current)
	case models.OutcomeLoss:
		current = output.Red(current)
	}

	output.Box(fmt.Sprintf("Streaks %s", snap.Period), []string{
		fmt.Sprintf("Longest winning trades: %d", s.Trade.MaxWin),
		fmt.Sprintf("Longest losing trades:  %d", s.Trade.MaxLoss),
		fmt.Sprintf("Longest winning days:   %d", s.Day.MaxWin),
		fmt.Sprintf("Longest losing days:    %d", s.Day.MaxLoss),
		fmt.Sprintf("Current day streak:     %s", current),
		fmt.Sprintf("Last trading day:       %s", output.Date(s.Day.LastTradingDay)),
	})
	output.Println()

	output.Bold("Recent days")
	table := NewTable(output, "Date", "Trades", "P&L", "Result")
	days := s.Day.Days
	if topN > 0 && len(days) > topN {
		days = days[len(days)-topN:]
	}
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		table.AddRow(output.Date(d.Date), fmt.Sprintf("%d", d.Trades), output.FormatPnL(d.PnL), string(d.Outcome))
	}
	table.Render()
}

func newReportGroupsCmd(app *App) *cobra.Command {
	var by string
	cmd := reportCmd(app, "groups", "P&L grouped by symbol, strategy, tag, weekday and more", func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error {
		key, err := analytics.KeyFuncFor(by, app.Engine.Options())
		if err != nil {
			return err
		}
		rows := analytics.GroupBy(snap.Trades, key)

		if output.IsJSON() {
			return output.JSON(map[string]interface{}{"period": snap.Period, "by": by, "groups": rows})
		}
		if len(rows) == 0 {
			output.Info("No trades in %s", snap.Period)
			return nil
		}
		output.Bold("By %s (%s)", by, snap.Period)
		renderGroups(output, rows, app.Config.Display.TopN)
		return nil
	})
	cmd.Flags().StringVar(&by, "by", analytics.GroupSymbol, "symbol, strategy, tag, weekday, direction, emotion or outcome")
	return cmd
}

func renderGroups(output *Output, rows []analytics.GroupRow, topN int) {
	table := NewTable(output, "Key", "Trades", "Wins", "Win rate", "Profit", "Loss", "Net")
	for i, row := range rows {
		if topN > 0 && i >= topN {
			break
		}
		table.AddRow(
			TruncateString(row.Key, 24),
			fmt.Sprintf("%d", row.Count),
			fmt.Sprintf("%d", row.WinCount),
			FormatRate(row.WinRate),
			output.Money(row.ProfitSum),
			output.Money(row.LossSum),
			output.FormatPnL(row.Net()),
		)
	}
	table.Render()
	if topN > 0 && len(rows) > topN {
		output.Dim("%d more group(s) not shown", len(rows)-topN)
	}
}

func newReportPsychologyCmd(app *App) *cobra.Command {
	return reportCmd(app, "psychology", "Confidence, satisfaction, emotions and mistakes", func(cmd *cobra.Command, output *Output, snap *analytics.Snapshot) error {
		if output.IsJSON() {
			return output.JSON(map[string]interface{}{"period": snap.Period, "psychology": snap.Psychology})
		}
		renderPsychology(output, snap, app.Config.Display.TopN)
		return nil
	})
}

func renderPsychology(output *Output, snap *analytics.Snapshot, topN int) {
	ps := snap.Psychology
	if ps.Recorded == 0 {
		output.Info("No psychology recorded in %s", snap.Period)
		return
	}

	output.Box(fmt.Sprintf("Psychology %s", snap.Period), []string{
		fmt.Sprintf("Recorded:      %d of %d trade(s)", ps.Recorded, snap.Core.Total),
		fmt.Sprintf("Confidence:    %s", FormatScore(ps.Confidence.Value, ps.Confidence.Count)),
		fmt.Sprintf("Satisfaction:  %s", FormatScore(ps.Satisfaction.Value, ps.Satisfaction.Count)),
	})

	sections := []struct {
		title string
		rows  []analytics.Frequency
	}{
		{"Emotional states", ps.EmotionalStates},
		{"Mistakes", ps.Mistakes},
		{"Lessons", ps.Lessons},
	}
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		output.Println()
		output.Bold(s.title)
		table := NewTable(output, "Value", "Count")
		for i, f := range s.rows {
			if topN > 0 && i >= topN {
				break
			}
			table.AddRow(TruncateString(f.Value, 48), fmt.Sprintf("%d", f.Count))
		}
		table.Render()
	}

	if len(ps.ByEmotion) > 0 {
		output.Println()
		output.Bold("P&L by emotional state")
		renderGroups(output, ps.ByEmotion, topN)
	}
}

func newReportCompareCmd(app *App) *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a period with the one before it",
		Example: `  journal report compare --period week
  journal report compare --period year --year 2023`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			output := app.output(cmd)

			pf := period
			if pf == (periodFlags{}) {
				pf.Kind = string(analytics.PeriodWeek)
			}
			p, err := pf.Resolve(app.Engine.Options())
			if err != nil {
				return err
			}
			prev, ok := p.Previous(app.Engine.Options())
			if !ok {
				return fmt.Errorf("%s has no previous period to compare with", p)
			}

			trades, err := app.allTrades(cmd)
			if err != nil {
				return err
			}

			var current, previous *analytics.Snapshot
			err = app.Pool.Run(commandContext(cmd),
				func() (err error) {
					current, err = app.Engine.Snapshot(trades, p)
					return err
				},
				func() (err error) {
					previous, err = app.Engine.Snapshot(trades, prev)
					return err
				},
			)
			if err != nil {
				return err
			}

			stats := app.Pool.Stats()
			app.Logger.Debug().
				Str("event", "compare_pool").
				Int("workers", stats.Workers).
				Uint64("tasks_total", stats.TasksTotal).
				Uint64("tasks_done", stats.TasksDone).
				Int("queue_len", stats.QueueLen).
				Msg("Snapshots computed")

			cmp := analytics.Compare(current, previous)
			logging.LogReport(app.Logger, "compare", p.String(), current.Core.Total, time.Since(start))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"comparison": cmp,
					"current":    current.Core,
					"previous":   previous.Core,
				})
			}
			renderComparison(output, cmp, current, previous)
			return nil
		},
	}
	addPeriodFlags(cmd, &period)
	return cmd
}

func renderComparison(output *Output, cmp analytics.Comparison, current, previous *analytics.Snapshot) {
	delta := output.FormatPercent

	output.Bold("%s vs %s", cmp.Current, cmp.Previous)
	table := NewTable(output, "Metric", cmp.Current.String(), cmp.Previous.String(), "Change")
	table.AddRow("Gross P&L", output.FormatPnL(current.Core.GrossPnL), output.FormatPnL(previous.Core.GrossPnL), delta(cmp.GrossPnL))
	table.AddRow("Win rate", FormatRate(current.Core.WinRate), FormatRate(previous.Core.WinRate), delta(cmp.WinRate))
	table.AddRow("Trades", fmt.Sprintf("%d", current.Core.Total), fmt.Sprintf("%d", previous.Core.Total), delta(cmp.TotalTrades))
	table.AddRow("Avg P&L", output.FormatPnL(current.Core.AvgPnL), output.FormatPnL(previous.Core.AvgPnL), delta(cmp.AvgPnL))
	table.AddRow("Expectancy", output.FormatPnL(current.Core.Expectancy), output.FormatPnL(previous.Core.Expectancy), delta(cmp.Expectancy))
	table.AddRow("Mean R:R", FormatRiskReward(current.RiskReward.Mean), FormatRiskReward(previous.RiskReward.Mean), delta(cmp.RiskRewardMean))
	table.Render()
}
