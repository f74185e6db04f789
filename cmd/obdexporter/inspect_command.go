package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"obdexporter/internal/obd"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <file.obd>...",
		Short:       "Decode OBD files and print their headers",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			view := tableView{
				headers: []string{"File", "Format", "Thing", "Client", "Dat", "Spr", "Attrs", "Sprites"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
			}
			var failures int
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				record, err := obd.Decode(data)
				if err != nil {
					failures++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				desc := record.Descriptor
				view.add(
					filepath.Base(path),
					record.Version.String(),
					desc.Identity.String(),
					strconv.Itoa(int(desc.ClientVersion)),
					fmt.Sprintf("%08X", desc.DatSignature),
					fmt.Sprintf("%08X", desc.SprSignature),
					strconv.Itoa(len(desc.Attributes)),
					strconv.Itoa(len(desc.Sprites)),
				)
			}
			if len(view.rows) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), view.render())
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d files could not be decoded", failures, len(args))
			}
			return nil
		},
	}
}
