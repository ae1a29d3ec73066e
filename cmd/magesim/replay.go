package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/magefree/mage-sim/internal/trace"
)

func (c *cli) replayCmd() *cobra.Command {
	var eventType string
	cmd := &cobra.Command{
		Use:   "replay <trace-file>",
		Short: "Print the events of a saved game trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := trace.LoadFromFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Game %s (seed %d, %d events, checksum %s)\n",
				tr.GameID, tr.Seed, len(tr.Entries), tr.Checksum())

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.AppendHeader(table.Row{"#", "Turn", "Step", "Event", "Player", "Source", "Target", "Amount", "Description"})
			for _, e := range tr.Entries {
				if eventType != "" && e.Type != eventType {
					continue
				}
				tw.AppendRow(table.Row{e.Index, e.Turn, e.Step, e.Type, e.PlayerID, e.SourceID, e.TargetID, e.Amount, e.Description})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "only print events of this type, e.g. COMBAT_DAMAGE_DEALT")
	return cmd
}
