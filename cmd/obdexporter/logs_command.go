package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"obdexporter/internal/logging"
	"obdexporter/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		runID  string
		events []string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show exporter log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			filter := logs.Filter{RunID: runID, Events: events}

			found, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range found {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(found) == 0 {
					fmt.Fprintln(out, "No matching log lines")
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, filter, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this export run")
	cmd.Flags().StringSliceVar(&events, "event", nil, "Only show these event types")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	return cmd
}
