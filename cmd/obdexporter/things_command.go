package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"obdexporter/internal/export"
	"obdexporter/internal/pipeline"
	"obdexporter/internal/thing"
)

func newThingsCommand(ctx *commandContext) *cobra.Command {
	var clientVersion int
	var limit int

	cmd := &cobra.Command{
		Use:   "things <category>",
		Short: "List the things of a category in the client archive",
		Long:  "Categories: item, outfit, effect, missile.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := thing.ParseCategory(args[0])
			if err != nil {
				return err
			}
			version, err := ctx.resolveVersion(clientVersion)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			controller, err := ctx.newController(controllerOptions{observer: pipeline.NopObserver{}, logger: logger})
			if err != nil {
				return err
			}
			if err := loadClient(cmd.Context(), controller, version); err != nil {
				return err
			}
			ids, err := controller.Enumerate(category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintf(out, "%s has no %s things\n", version, category)
				return nil
			}
			fmt.Fprintf(out, "%s: %d %s things (%d-%d)\n", version, len(ids), category, ids[0].ID, ids[len(ids)-1].ID)

			shown := ids
			view := tableView{
				headers: []string{"ID", "Artifact"},
				aligns:  []columnAlignment{alignRight, alignLeft},
			}
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
				view.footer = fmt.Sprintf("showing %d of %d (use --limit 0 for all)", limit, len(ids))
			}
			for _, id := range shown {
				view.add(strconv.FormatUint(uint64(id.ID), 10), export.FileName(id))
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}

	cmd.Flags().IntVar(&clientVersion, "client-version", 0, "Client version from the catalog (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to print; 0 prints all")
	return cmd
}
