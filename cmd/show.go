package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith-ai/docsmith/internal/output"
)

var (
	showRaw    bool
	showRemote bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a generation's documentation",
	Long: `Show a generation from the local history cache. IDs may be
abbreviated to a unique prefix. With --remote the ID is looked up on the
service instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(args[0])
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print raw markdown without terminal rendering")
	showCmd.Flags().BoolVar(&showRemote, "remote", false, "Fetch the documentation from the service")
	rootCmd.AddCommand(showCmd)
}

func showRun(ref string) error {
	if showRemote {
		return showRemoteRun(ref)
	}

	s, err := getHistoryStore()
	if err != nil {
		return err
	}

	gen, err := findGeneration(context.Background(), s, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(shortID(gen.ID)), gen.Title)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(string(gen.Status)))
	fmt.Fprintf(ui.Out, "  Mode:       %s\n", gen.Mode)
	if gen.GeneratorLabel != "" {
		fmt.Fprintf(ui.Out, "  Generator:  %s\n", gen.GeneratorLabel)
	}
	fmt.Fprintf(ui.Out, "  Files:      %d/%d\n", gen.ProcessedCount, gen.FileCount)
	fmt.Fprintf(ui.Out, "  Created:    %s (%s)\n", gen.CreatedAt.Format(time.RFC3339), timeAgo(gen.CreatedAt))
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", gen.ID)

	if gen.Documentation == "" {
		ui.Warning("This generation has no documentation body.")
		return nil
	}

	fmt.Fprintln(ui.Out)
	if showRaw {
		fmt.Fprintln(ui.Out, gen.Documentation)
	} else {
		fmt.Fprintln(ui.Out, output.RenderMarkdown(gen.Documentation))
	}
	return nil
}

func showRemoteRun(id string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	doc, err := client.GetDocumentation(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(doc.ID), doc.Title)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(doc.Status))
	if doc.Generator != "" {
		fmt.Fprintf(ui.Out, "  Generator:  %s\n", doc.Generator)
	}
	fmt.Fprintf(ui.Out, "  Created:    %s\n", doc.CreatedAt)

	if doc.Documentation == "" {
		ui.Warning("The service returned no documentation body.")
		return nil
	}

	fmt.Fprintln(ui.Out)
	if showRaw {
		fmt.Fprintln(ui.Out, doc.Documentation)
	} else {
		fmt.Fprintln(ui.Out, output.RenderMarkdown(doc.Documentation))
	}
	return nil
}
