package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/teller/service/report"
	"github.com/viant/teller/service/scenario"
)

var replayCmd = &cobra.Command{
	Use:   "replay [scenario URL]",
	Short: "Replay a YAML scenario.",
	Long:  "`replay scenario.yaml` runs every scenario step, reconciles and prints the report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		srv := newService(ctx)
		defer srv.Shutdown()

		scenarios := scenario.New(afs.New(), scenario.WithLogger(srv.Logger()))
		script, err := scenarios.Load(ctx, args[0])
		if err != nil {
			return err
		}
		outcomes, err := scenarios.Run(ctx, srv, script)
		out := cmd.OutOrStdout()
		for i, outcome := range outcomes {
			line := fmt.Sprintf("%d. %s", i+1, outcome.Step.Action)
			if outcome.TransactionID > 0 {
				line += fmt.Sprintf(" T%d", outcome.TransactionID)
			}
			if outcome.Status != "" {
				line += " " + outcome.Status
			}
			if outcome.Step.Action == string(scenario.ActionBalance) && outcome.Error == "" {
				line += fmt.Sprintf(" balance=%d", outcome.Balance)
			}
			if outcome.Error != "" {
				line += " error: " + outcome.Error
			}
			fmt.Fprintln(out, line)
		}
		if err != nil {
			return err
		}
		if _, err = srv.Reconcile(ctx); err != nil {
			return err
		}
		schedule, err := srv.DumpSchedule(ctx)
		if err != nil {
			return err
		}
		metrics, err := srv.Metrics(ctx)
		if err != nil {
			return err
		}
		reports := report.New(afs.New())
		data, err := reports.Render(srv.DumpPageMap(), schedule, metrics)
		if err != nil {
			return err
		}
		if _, err = out.Write(data); err != nil {
			return err
		}
		return uploadReport(ctx, srv)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
