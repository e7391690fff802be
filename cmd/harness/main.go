// Command harness is the operational entry point for the test
// environment: it serves the login fixture application and reports on
// recorded test runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dev/bravebird/e2e-harness-go/pkg/config"
	"dev/bravebird/e2e-harness-go/pkg/fixtureapp"
	"dev/bravebird/e2e-harness-go/pkg/logging"
	"dev/bravebird/e2e-harness-go/pkg/results"
)

func main() {
	root := &cobra.Command{
		Use:           "harness",
		Short:         "Browser test environment tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newFixtureCmd(), newResultsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newFixtureCmd() *cobra.Command {
	var addr string
	var revealDelay time.Duration

	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve the login fixture application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			log, err := logging.New(logging.FromConfig(cfg))
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := fixtureapp.New(log, fixtureapp.WithRevealDelay(revealDelay))
			return app.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&revealDelay, "reveal-delay", 150*time.Millisecond, "delay before the error banner appears")
	return cmd
}

func newResultsCmd() *cobra.Command {
	var dsn string
	var limit int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recorded test runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if dsn == "" {
				dsn = cfg.GetString("execution.results_dsn", "")
			}
			if dsn == "" {
				return fmt.Errorf("no results DSN configured; set --dsn or execution.results_dsn")
			}

			store, err := results.Open(dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			pass := color.New(color.FgGreen, color.Bold).SprintFunc()
			fail := color.New(color.FgRed, color.Bold).SprintFunc()
			running := color.New(color.FgYellow).SprintFunc()

			for _, run := range runs {
				var status string
				switch run.Status {
				case results.RunPassed:
					status = pass("PASS")
				case results.RunFailed:
					status = fail("FAIL")
				default:
					status = running(string(run.Status))
				}
				fmt.Printf("%s  %s  env=%s browser=%s  passed=%d failed=%d skipped=%d  %s\n",
					status,
					run.StartedAt.Format("2006-01-02 15:04:05"),
					run.Environment,
					run.Browser,
					run.Passed, run.Failed, run.Skipped,
					run.ID,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "results database DSN")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
