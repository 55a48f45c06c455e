package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/teller"
	"github.com/viant/teller/service/report"
)

// rootCmd starts the interactive banking menu when called without any
// subcommands
var rootCmd = &cobra.Command{
	Use:   "teller",
	Short: "Teller runs an in-process concurrent banking ledger.",
	Long: `Teller runs an in-process concurrent banking ledger. Without a ` +
		`subcommand it starts the interactive banking menu; replay runs a ` +
		`YAML scenario.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := newService(cmd.Context())
		defer srv.Shutdown()
		shell := newShell(srv, report.New(afs.New()), cmd.InOrStdin(), cmd.OutOrStdout())
		if err := shell.Run(cmd.Context()); err != nil {
			return err
		}
		return uploadReport(cmd.Context(), srv)
	},
}

var (
	configURL string
	reportURL string
	logLevel  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "configuration YAML URL")
	rootCmd.PersistentFlags().StringVarP(&reportURL, "report", "r", "", "URL the final report is uploaded to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newService builds the core; failing to do so is fatal.
func newService(ctx context.Context) *teller.Service {
	config := teller.DefaultConfig()
	if configURL != "" {
		loaded, err := teller.LoadConfig(ctx, afs.New(), configURL)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		config = loaded
	}
	if logLevel != "" {
		config.Log.Level = logLevel
	}
	srv, err := teller.New(teller.WithConfig(config))
	if err != nil {
		log.Fatalf("failed to start teller: %v", err)
	}
	return srv
}

func uploadReport(ctx context.Context, srv *teller.Service) error {
	if reportURL == "" {
		return nil
	}
	reports := report.New(afs.New())
	schedule, err := srv.DumpSchedule(ctx)
	if err != nil {
		return err
	}
	metrics, err := srv.Metrics(ctx)
	if err != nil {
		return err
	}
	data, err := reports.Render(srv.DumpPageMap(), schedule, metrics)
	if err != nil {
		return err
	}
	return reports.Upload(ctx, reportURL, data)
}
