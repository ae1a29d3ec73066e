package main

import (
	"errors"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/magefree/mage-sim/internal/storage"
)

func (c *cli) resultsCmd() *cobra.Command {
	var filter storage.ListFilter
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored game outcomes",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.bindFlags(cmd, map[string]string{
				"storage.driver": "storage-driver",
				"storage.dsn":    "storage-dsn",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("no storage configured; set --storage-driver and --storage-dsn")
			}
			defer store.Close()

			records, err := store.ListOutcomes(ctx, filter)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Recorded", "Run", "Game", "Seed", "Decks", "Winner", "Turns", "Result"})
			for _, r := range records {
				tw.AppendRow(table.Row{
					r.RecordedAt.Local().Format(time.DateTime),
					shortID(r.RunID),
					r.Game,
					r.Seed,
					r.FirstDeck + " vs " + r.SecondDeck,
					r.Winner,
					r.Turns,
					resultOf(r.Outcome),
				})
			}
			tw.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(records)})
			tw.Render()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.RunID, "run-id", "", "only list outcomes of this run")
	flags.IntVar(&filter.Limit, "limit", storage.DefaultListLimit, "maximum number of outcomes")
	flags.String("storage-driver", "none", "outcome storage: sqlite or postgres")
	flags.String("storage-dsn", "", "storage path or connection URL")
	return cmd
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
