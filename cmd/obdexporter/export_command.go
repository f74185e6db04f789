package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"obdexporter/internal/applock"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var clientVersion int
	var formatVersion int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export <selector>...",
		Short: "Export things to OBD files",
		Long: `Export the selected things, one file per thing, named <Category>_<id>.obd.

Selectors: item:100, outfit:1-10, missile:all. Duplicates are exported once,
in first-seen order. The run stops at the first failure; files written before
it are kept.`,
		Args: selectorArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
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

			lock := applock.New(cfg.LockPath())
			if err := lock.TryAcquire(); err != nil {
				return err
			}
			defer lock.Release()

			recorder, closeRecorder, err := ctx.openRecorder()
			if err != nil {
				return err
			}
			defer closeRecorder()

			out := cmd.OutOrStdout()
			controller, err := ctx.newController(controllerOptions{
				observer:      newTerminalObserver(out),
				recorder:      recorder,
				logger:        logger,
				outputDir:     outputDir,
				formatVersion: formatVersion,
			})
			if err != nil {
				return err
			}
			if err := loadClient(cmd.Context(), controller, version); err != nil {
				return err
			}

			ids, err := expandSelectors(controller, args)
			if err != nil {
				return err
			}
			added, err := controller.Add(ids...)
			if err != nil {
				return err
			}
			if dup := len(ids) - added; dup > 0 {
				fmt.Fprintf(out, "Skipped %d duplicate selections\n", dup)
			}

			if err := controller.StartExport(cmd.Context()); err != nil {
				return err
			}
			if err := controller.Wait(cmd.Context()); err != nil {
				controller.Cancel()
				<-controller.Done()
				return err
			}
			outcome := controller.LastOutcome()
			if outcome == nil {
				return errors.New("export finished without an outcome")
			}
			if outcome.Err != nil {
				return fmt.Errorf("export failed: %w", outcome.Err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&clientVersion, "client-version", 0, "Client version from the catalog (default from config)")
	cmd.Flags().IntVarP(&formatVersion, "format-version", "f", 0, "Container format 1, 2 or 3 (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	return cmd
}
