package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/simulation"
	"github.com/magefree/mage-sim/internal/storage"
)

func (c *cli) runCmd() *cobra.Command {
	var asJSON, listGames bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a batch of games and print a summary",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.bindFlags(cmd, map[string]string{
				"simulation.games":                 "games",
				"simulation.parallelism":           "parallelism",
				"simulation.seed":                  "seed",
				"simulation.max_turns":             "max-turns",
				"simulation.strategy":              "strategy",
				"simulation.illegal_action_policy": "policy",
				"simulation.decks":                 "deck",
				"simulation.trace_dir":             "trace-dir",
				"storage.driver":                   "storage-driver",
				"storage.dsn":                      "storage-dsn",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			simCfg, err := cfg.SimulationConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
			if err != nil {
				return err
			}
			var opts []simulation.Option
			if store != nil {
				defer store.Close()
				opts = append(opts, simulation.WithSink(store))
			}

			runner, err := simulation.NewRunner(simCfg, logger, opts...)
			if err != nil {
				return err
			}
			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			logger.Debug("report ready", zap.String("run_id", report.RunID))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if listGames {
				printOutcomes(out, report.Outcomes)
			}
			printSummary(out, report)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int("games", 100, "number of games to play")
	flags.Int("parallelism", 0, "games played at once (0 uses every CPU)")
	flags.Int64("seed", 0, "base seed; game i uses seed+i (0 picks one)")
	flags.Int("max-turns", 50, "turn limit per game")
	flags.String("strategy", "random", "player strategy: random or passive")
	flags.String("policy", "downgrade", "illegal action policy: downgrade or terminate")
	flags.StringSlice("deck", nil, "deck definition files (default: built-in decks)")
	flags.String("trace-dir", "", "directory for game trace files")
	flags.String("storage-driver", "none", "outcome storage: none, sqlite or postgres")
	flags.String("storage-dsn", "", "storage path or connection URL")
	flags.BoolVar(&asJSON, "json", false, "print the full report as JSON")
	flags.BoolVar(&listGames, "games-table", false, "print one row per game")
	return cmd
}

func printSummary(w io.Writer, report *simulation.Report) {
	s := report.Summary
	fmt.Fprintf(w, "Run %s (seed %d)\n", report.RunID, report.Seed)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Deck", "Wins", "Win rate"})
	for _, name := range s.Decks() {
		tw.AppendRow(table.Row{name, s.Wins[name], percent(s.Wins[name], s.Games)})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Draws", s.Draws, percent(s.Draws, s.Games)})
	tw.AppendRow(table.Row{"Errors", s.Errors, percent(s.Errors, s.Games)})
	tw.AppendFooter(table.Row{"Games", s.Games, fmt.Sprintf("avg %.1f turns", s.AverageTurns)})
	tw.Render()
}

func printOutcomes(w io.Writer, outcomes []simulation.Outcome) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Game", "Seed", "First", "Second", "Winner", "Turns", "Result"})
	for _, o := range outcomes {
		tw.AppendRow(table.Row{o.Game, o.Seed, o.FirstDeck, o.SecondDeck, o.Winner, o.Turns, resultOf(o)})
	}
	tw.Render()
}

func resultOf(o simulation.Outcome) string {
	switch {
	case o.HasError:
		if len(o.Messages) > 0 {
			return "error: " + o.Messages[0]
		}
		return "error"
	case o.IsDraw():
		return "draw"
	default:
		return "win"
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
