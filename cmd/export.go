package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsmith-ai/docsmith/internal/output"
)

var (
	exportFormat string
	exportOutput string
)

// exportFormats maps format names to whether the conversion happens on
// the service. Markdown and plain text are written straight from the
// local cache.
var exportFormats = map[string]bool{
	"md":   false,
	"txt":  false,
	"docx": true,
	"pdf":  true,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a generation's documentation to a file",
	Long: `Export documentation from the local history cache. Markdown and
plain text are written directly; docx and pdf are converted by the
service and downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(args[0])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format: md, txt, docx, pdf")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (defaults to docsmith-<id>.<format>)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(ref string) error {
	format := strings.ToLower(exportFormat)
	remote, ok := exportFormats[format]
	if !ok {
		return fmt.Errorf("unsupported format %q (expected md, txt, docx, or pdf)", exportFormat)
	}

	s, err := getHistoryStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	gen, err := findGeneration(ctx, s, ref)
	if err != nil {
		return err
	}
	if gen.Documentation == "" {
		return fmt.Errorf("generation %s has no documentation to export", shortID(gen.ID))
	}

	name := exportOutput
	if name == "" {
		name = fmt.Sprintf("docsmith-%s.%s", strings.ToLower(shortID(gen.ID)), format)
	}

	if dryRun {
		ui.DryRunMsg("Would export generation %s as %s to %s", shortID(gen.ID), format, name)
		return nil
	}

	if remote {
		if err := exportViaService(ctx, gen.Documentation, format, name); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(name, []byte(gen.Documentation), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	ui.Success("Exported %s to %s", output.Cyan(shortID(gen.ID)), name)
	return nil
}

func exportViaService(ctx context.Context, content, format, name string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	res, err := client.CreateExport(ctx, content, format)
	if err != nil {
		return err
	}
	ui.VerboseLog("Export ready at %s (expires %s)", res.URL, res.ExpiresAt)

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := client.DownloadExport(ctx, res.URL, f); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	return f.Close()
}
