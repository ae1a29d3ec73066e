package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/magefree/mage-sim/internal/simulation"
	"github.com/magefree/mage-sim/internal/storage"
	"github.com/magefree/mage-sim/internal/tournament"
)

func (c *cli) tournamentCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Play a round robin between all configured decks",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.bindFlags(cmd, map[string]string{
				"simulation.games":     "games",
				"simulation.seed":      "seed",
				"simulation.max_turns": "max-turns",
				"simulation.strategy":  "strategy",
				"simulation.decks":     "deck",
				"storage.driver":       "storage-driver",
				"storage.dsn":          "storage-dsn",
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

			tour, err := tournament.New(name, simCfg, logger)
			if err != nil {
				return err
			}
			if err := tour.Run(ctx, opts...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tournament %s (seed %d)\n", tour.Name, tour.Seed)

			matches := table.NewWriter()
			matches.SetOutputMirror(out)
			matches.AppendHeader(table.Row{"Match", "Games", "Draws", "Errors", "Winner"})
			for _, p := range tour.Pairings() {
				score := fmt.Sprintf("%s %d - %d %s", p.First, p.FirstWins, p.SecondWins, p.Second)
				winner := p.Winner
				if winner == "" {
					winner = "draw"
				}
				matches.AppendRow(table.Row{score, p.FirstWins + p.SecondWins + p.Draws + p.Errors, p.Draws, p.Errors, winner})
			}
			matches.Render()

			standings := table.NewWriter()
			standings.SetOutputMirror(out)
			standings.AppendHeader(table.Row{"#", "Deck", "Points", "W", "L", "D"})
			for i, s := range tour.Standings() {
				standings.AppendRow(table.Row{i + 1, s.Deck, s.Points, s.Wins, s.Losses, s.Draws})
			}
			standings.Render()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "gauntlet", "tournament name")
	flags.Int("games", 100, "games per match")
	flags.Int64("seed", 0, "base seed (0 picks one)")
	flags.Int("max-turns", 50, "turn limit per game")
	flags.String("strategy", "random", "player strategy: random or passive")
	flags.StringSlice("deck", nil, "deck definition files (default: built-in decks)")
	flags.String("storage-driver", "none", "outcome storage: none, sqlite or postgres")
	flags.String("storage-dsn", "", "storage path or connection URL")
	return cmd
}
