package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newVersionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List supported client versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.catalog()
			if err != nil {
				return err
			}
			selected, err := ctx.resolveVersion(0)
			if err != nil {
				return err
			}

			view := tableView{
				headers: []string{"Version", "Description", "Dat", "Spr", "OTB", ""},
				aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				footer:  catalog.Path(),
			}
			for _, v := range catalog.All() {
				marker := ""
				if v.Value == selected.Value {
					marker = "default"
				}
				view.add(
					strconv.Itoa(int(v.Value)),
					v.Description,
					fmt.Sprintf("%08X", v.DatSignature),
					fmt.Sprintf("%08X", v.SprSignature),
					strconv.Itoa(int(v.OTBVersion)),
					marker,
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.render())
			return nil
		},
	}
}
