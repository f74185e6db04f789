package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"obdexporter/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, catalog, client files and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				fmt.Fprintln(out, renderPreflight(result, colorize))
			}
			if !preflight.AllPassed(results) {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStatusLine("Summary", statusWarn, "some checks failed; exports may not run", colorize))
			}
			return nil
		},
	}
}
