package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith-ai/docsmith/internal/output"
	"github.com/docsmith-ai/docsmith/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service health, session, and account stats",
	Long: `Show whether the docsmith service is reachable, whether its AI
backend is available, who is logged in, and account activity counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	client, err := getClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	fmt.Fprintf(ui.Out, "Service       %s\n", client.BaseURL())

	st, err := client.AIStatus(ctx)
	if err != nil {
		fmt.Fprintf(ui.Out, "  Reachable:  %s\n", output.AvailabilityColor(false))
		ui.VerboseLog("Probe failed: %v", err)
	} else {
		fmt.Fprintf(ui.Out, "  Reachable:  %s\n", output.AvailabilityColor(true))
		fmt.Fprintf(ui.Out, "  AI ready:   %s\n", output.AvailabilityColor(st.AIAvailable))
		if st.Model != "" {
			fmt.Fprintf(ui.Out, "  Model:      %s\n", st.Model)
		}
		if st.Version != "" {
			fmt.Fprintf(ui.Out, "  Version:    %s\n", st.Version)
		}
	}

	sess, err := getSession()
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out)
	if !sess.LoggedIn() {
		fmt.Fprintf(ui.Out, "Account       not logged in (run 'docsmith login')\n")
	} else {
		fmt.Fprintf(ui.Out, "Account       %s\n", output.Cyan(sess.Username()))
		if exp, ok := sess.ExpiresAt(); ok {
			if remaining := time.Until(exp); remaining > 0 {
				fmt.Fprintf(ui.Out, "  Token:      expires in %s\n", remaining.Round(time.Minute))
			} else {
				fmt.Fprintf(ui.Out, "  Token:      expired (refreshes on next request)\n")
			}
		}

		// Stats require auth; skip quietly when the probe already failed.
		if stats, err := client.Stats(ctx); err == nil {
			fmt.Fprintf(ui.Out, "  Files:      %d\n", stats.TotalFiles)
			fmt.Fprintf(ui.Out, "  Docs:       %d\n", stats.TotalGenerations)
			fmt.Fprintf(ui.Out, "  Exports:    %d\n", stats.TotalExports)
			if stats.LastGeneratedAt != "" {
				fmt.Fprintf(ui.Out, "  Last run:   %s\n", stats.LastGeneratedAt)
			}
		} else {
			ui.VerboseLog("Stats unavailable: %v", err)
		}
	}

	if s, err := getHistoryStore(); err == nil {
		if gens, err := s.ListGenerations(ctx, store.GenerationFilter{}); err == nil {
			fmt.Fprintln(ui.Out)
			fmt.Fprintf(ui.Out, "History       %d generation(s) cached locally\n", len(gens))
		}
	}
	return nil
}
