package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"obdexporter/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded export runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No export runs recorded")
				return nil
			}
			colorize := shouldColorize(out)
			view := tableView{
				headers: []string{"Run", "Started", "Client", "Format", "Done", "Status", "Failed at"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			}
			for _, run := range runs {
				failedAt := ""
				if run.FailedThing != nil {
					failedAt = run.FailedThing.String()
				}
				view.add(
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(int(run.ClientVersion)),
					"v"+strconv.Itoa(run.FormatVersion),
					fmt.Sprintf("%d/%d", run.Completed, run.Total),
					colorizeStatus(run.Status, colorize),
					failedAt,
				)
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list; 0 lists all")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and the files it wrote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			artifacts, err := store.Artifacts(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
				fmt.Fprintln(out, line)
			}
			printRunDetails(out, run, colorize)
			if len(artifacts) == 0 {
				fmt.Fprintln(out, "No files written")
				return nil
			}
			view := tableView{
				headers: []string{"#", "Thing", "Path"},
				aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
			}
			for _, artifact := range artifacts {
				view.add(strconv.Itoa(artifact.Seq), artifact.Identity.String(), artifact.Path)
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff, e.g. 720h")
	return cmd
}

func printRunDetails(out io.Writer, run *history.Run, colorize bool) {
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Client", statusInfo, strconv.Itoa(int(run.ClientVersion)), false))
	fmt.Fprintln(out, renderStatusLine("Format", statusInfo, "v"+strconv.Itoa(run.FormatVersion), false))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, run.OutputDir, false))
	fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, fmt.Sprintf("%d/%d", run.Completed, run.Total), false))
	started := run.StartedAt.Local().Format(time.RFC3339)
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, started, false))
	if run.FinishedAt != nil {
		fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, run.Duration().Round(time.Millisecond).String(), false))
	}
	if run.FailedThing != nil {
		fmt.Fprintln(out, renderStatusLine("Failed at", statusError, run.FailedThing.String(), colorize))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, fmt.Sprintf("%s: %s", run.ErrorKind, run.ErrorMessage), colorize))
	}
}
