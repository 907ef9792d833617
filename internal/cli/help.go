package cli

import (
	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newQuickstartCmd())
}

type commandEntry struct {
	cmd  string
	desc string
}

var commandCategories = []struct {
	name     string
	commands []commandEntry
}{
	{
		name: "Journal",
		commands: []commandEntry{
			{"import <file>", "Import trades from CSV, JSON or YAML"},
			{"export <file>", "Export trades to CSV, JSON or YAML"},
			{"trades", "List trades (filter by symbol, direction, strategy, period)"},
			{"show <id>", "Show one trade with its psychology"},
			{"delete <id>", "Delete a trade"},
		},
	},
	{
		name: "Reports",
		commands: []commandEntry{
			{"report summary", "P&L, win rate, expectancy, best and worst"},
			{"report risk", "Risk:reward ratios and risk breaches"},
			{"report streaks", "Winning and losing streaks"},
			{"report groups --by <key>", "P&L by symbol, strategy, tag, weekday..."},
			{"report psychology", "Confidence, emotions, mistakes, lessons"},
			{"report compare", "Period against the one before it"},
		},
	},
	{
		name: "Configuration",
		commands: []commandEntry{
			{"config show", "Show current configuration"},
			{"config path", "Show configuration file path"},
			{"config validate", "Validate the configuration"},
			{"config template", "Print the default config.toml"},
		},
	},
	{
		name: "Help",
		commands: []commandEntry{
			{"help <command>", "Detailed help"},
			{"commands", "List all commands"},
			{"examples", "Common workflows"},
			{"quickstart", "New user guide"},
			{"version", "Version information"},
		},
	},
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "commands",
		Short:       "List all commands by category",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if output.IsJSON() {
				all := make(map[string][]string)
				for _, cat := range commandCategories {
					for _, c := range cat.commands {
						all[cat.name] = append(all[cat.name], c.cmd)
					}
				}
				return output.JSON(all)
			}

			output.Bold("Trade Journal Commands")
			output.Println()

			for _, cat := range commandCategories {
				output.Bold(cat.name)
				for _, c := range cat.commands {
					output.Printf("  %-30s %s\n", output.Cyan(c.cmd), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'journal help <command>' for detailed help on any command")
			return nil
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "examples",
		Short:       "Show common workflow examples",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "End of Day",
					commands: []string{
						"journal import today.csv                 # Add today's trades",
						"journal report summary --period day      # How did today go",
						"journal report risk --period day         # Any stop breaches",
					},
				},
				{
					title: "Weekly Review",
					commands: []string{
						"journal report compare --period week     # This week vs last",
						"journal report groups --by weekday       # Best and worst weekdays",
						"journal report groups --by strategy      # Which setups pay",
						"journal report psychology --period week  # Emotions and mistakes",
					},
				},
				{
					title: "Year in Review",
					commands: []string{
						"journal report summary --year 2024",
						"journal report streaks --year 2024",
						"journal report compare --period year --year 2024",
						"journal export review-2024.csv --year 2024",
					},
				},
				{
					title: "Scripting",
					commands: []string{
						"journal report summary --json | jq .core.win_rate",
						"journal export - --format json --period week",
					},
				},
			}

			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					output.Printf("  %s\n", c)
				}
				output.Println()
			}
			return nil
		},
	}
}

func newQuickstartCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "quickstart",
		Short:       "New user guide",
		Long:        "Step-by-step guide for new users.",
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Trade Journal - Quick Start Guide")
			output.Println()

			steps := []struct {
				title string
				desc  string
				cmd   string
			}{
				{
					title: "Check the Configuration",
					desc:  "A config.toml is created on first run. Set your timezone there.",
					cmd:   "journal config path",
				},
				{
					title: "Prepare a Trade File",
					desc:  "One row per trade: date, symbol, direction, quantity, entry_price and optional exit, stop, target, P&L, strategy, tags and psychology.",
					cmd:   "journal help import",
				},
				{
					title: "Import",
					desc:  "Validate first, then import. Re-importing a trade id replaces it.",
					cmd:   "journal import trades.csv --dry-run && journal import trades.csv",
				},
				{
					title: "Read the Summary",
					desc:  "Win rate, expectancy and profit factor for all trades.",
					cmd:   "journal report summary",
				},
				{
					title: "Drill Down",
					desc:  "Group by what matters to you and compare periods.",
					cmd:   "journal report groups --by tag",
				},
			}

			for i, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), i+1, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Notes")
			output.Println()
			output.Printf("  %s The stop loss column is a distance from entry, not a price level\n", output.Yellow("⚠"))
			output.Printf("  %s Week numbers start on Sunday unless week_numbering = \"iso\"\n", output.Yellow("⚠"))
			output.Printf("  %s JOURNAL_DB_PATH and JOURNAL_TIMEZONE override config.toml\n", output.Yellow("⚠"))
			return nil
		},
	}
}
