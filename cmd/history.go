package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith-ai/docsmith/internal/models"
	"github.com/docsmith-ai/docsmith/internal/output"
	"github.com/docsmith-ai/docsmith/internal/store"
)

var (
	historyLimit  int
	historyStatus string
	historyRemote bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "List past documentation runs",
	Long:    "List generations saved in the local history cache, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListRun()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a generation from history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyDeleteRun(args[0])
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum entries to show")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Filter by status: success, partial_success, error")
	historyCmd.Flags().BoolVar(&historyRemote, "remote", false, "List documentation stored on the service instead")

	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyListRun() error {
	if historyRemote {
		return historyRemoteRun()
	}

	s, err := getHistoryStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	filter := store.GenerationFilter{
		Status: models.OutcomeStatus(historyStatus),
		Limit:  historyLimit,
	}

	gens, err := s.ListGenerations(ctx, filter)
	if err != nil {
		return err
	}

	if len(gens) == 0 {
		ui.Info("No generations yet. Run 'docsmith generate' to create one.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Mode", "Status", "Files", "When"})
	for _, g := range gens {
		_ = table.Append([]string{
			shortID(g.ID),
			g.Title,
			string(g.Mode),
			output.StatusColor(string(g.Status)),
			fmt.Sprintf("%d/%d", g.ProcessedCount, g.FileCount),
			timeAgo(g.CreatedAt),
		})
	}
	_ = table.Render()
	return nil
}

func historyRemoteRun() error {
	client, err := getClient()
	if err != nil {
		return err
	}

	docs, err := client.ListDocumentation(context.Background())
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		ui.Info("No documentation stored on the service.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Status", "Generator", "Created"})
	for _, d := range docs {
		_ = table.Append([]string{
			d.ID,
			d.Title,
			output.StatusColor(d.Status),
			d.Generator,
			d.CreatedAt,
		})
	}
	_ = table.Render()
	return nil
}

func historyDeleteRun(ref string) error {
	s, err := getHistoryStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	gen, err := findGeneration(ctx, s, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete generation %s (%s)", shortID(gen.ID), gen.Title)
		return nil
	}

	if err := s.DeleteGeneration(ctx, gen.ID); err != nil {
		return err
	}

	ui.Success("Deleted generation %s", output.Cyan(shortID(gen.ID)))
	return nil
}

// findGeneration resolves a full or prefix generation ID.
func findGeneration(ctx context.Context, s store.Store, id string) (*models.Generation, error) {
	// Try exact match first
	if gen, err := s.GetGeneration(ctx, id); err == nil {
		return gen, nil
	}

	// Try prefix match - list all and filter
	upper := strings.ToUpper(id)
	gens, err := s.ListGenerations(ctx, store.GenerationFilter{})
	if err != nil {
		return nil, err
	}

	var matches []*models.Generation
	for _, gen := range gens {
		if strings.HasPrefix(gen.ID, upper) {
			matches = append(matches, gen)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("generation not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous generation ID %s: matches %d entries", id, len(matches))
	}
}

// shortID returns a truncated ULID for display (first 12 chars).
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// timeAgo returns a human-readable relative time string.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

// formatBytes returns a human-readable byte size string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
