package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/docsmith-ai/docsmith/internal/intake"
	"github.com/docsmith-ai/docsmith/internal/models"
	"github.com/docsmith-ai/docsmith/internal/output"
	"github.com/docsmith-ai/docsmith/internal/progress"
	"github.com/docsmith-ai/docsmith/internal/uploader"
)

var (
	generateOutput   string
	generateNoSave   bool
	generateEstimate int
	generateYes      bool
)

var generateCmd = &cobra.Command{
	Use:     "generate [paths...]",
	Aliases: []string{"gen"},
	Short:   "Generate documentation for files, a folder, or an archive",
	Long: `Generate documentation by uploading code to the docsmith service.

A single directory argument is scanned recursively (respecting .gitignore
and .docsmithignore); one file uploads alone; several files upload as a
batch; a .zip archive is documented as a whole project.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateRun(cmd, args)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the documentation to a file instead of rendering it")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "Skip the local history cache")
	generateCmd.Flags().IntVar(&generateEstimate, "estimate", 0, "Override the progress estimate in seconds")
	generateCmd.Flags().BoolVarP(&generateYes, "yes", "y", false, "Skip the large-upload confirmation")
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	sel, err := intake.CollectPaths(args)
	if err != nil {
		return err
	}
	if sel.Count() == 0 {
		return fmt.Errorf("nothing to upload: no supported files found")
	}

	if dryRun {
		return generateDryRun(sel)
	}

	if sel.Count() > viper.GetInt("upload.chunk_threshold") && !generateYes {
		ok, err := confirm(fmt.Sprintf("Upload %d files one at a time? This may take a while", sel.Count()))
		if err != nil {
			return err
		}
		if !ok {
			ui.Info("Aborted.")
			return nil
		}
	}

	up, err := newUploader()
	if err != nil {
		return err
	}

	// Ctrl-C stops a chunked run between files instead of killing the
	// process mid-request.
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	obs := newCLIObserver(ui, generateEstimate)
	outcome, err := up.Upload(ctx, sel, obs)
	if err != nil {
		if obs.failMsg != "" {
			return fmt.Errorf("%s", obs.failMsg)
		}
		return err
	}

	switch outcome.Status {
	case models.StatusSuccess:
		ui.Success("Documented %d file(s)", outcome.ProcessedCount)
	case models.StatusPartial:
		ui.Warning("Partial success: %d of %d files documented", outcome.ProcessedCount, outcome.TotalCount)
		if outcome.ErrorMessage != "" {
			ui.Warning("%s", outcome.ErrorMessage)
		}
	default:
		if outcome.ErrorMessage != "" {
			return fmt.Errorf("generation failed: %s", outcome.ErrorMessage)
		}
		return fmt.Errorf("generation failed")
	}

	if !generateNoSave {
		if id, err := saveHistory(ctx, sel, args, outcome); err != nil {
			ui.Warning("Could not save to history: %v", err)
		} else {
			ui.Info("Saved to history as %s", output.Cyan(shortID(id)))
		}
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(outcome.Documentation), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", generateOutput, err)
		}
		ui.Success("Wrote %s (%s)", generateOutput, formatBytes(int64(len(outcome.Documentation))))
		return nil
	}

	if outcome.Documentation != "" {
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, output.RenderMarkdown(outcome.Documentation))
	}
	return nil
}

func generateDryRun(sel *intake.Selection) error {
	files := sel.Files()
	strategy := uploader.SelectStrategy(sel.Mode(), len(files), sel.ContainsArchive())

	ui.DryRunMsg("Would upload %d file(s) in %s mode to %s", len(files), sel.Mode(), strategy.Endpoint)
	if strategy.Chunked {
		ui.DryRunMsg("Would send one request per file (chunks of %d)", strategy.ChunkSize)
	}

	table := ui.Table([]string{"File", "Size"})
	for _, cf := range files {
		_ = table.Append([]string{cf.RelativePath, formatBytes(cf.SizeBytes)})
	}
	_ = table.Render()

	fmt.Fprintf(ui.Out, "\nTotal: %s\n", formatBytes(sel.TotalBytes()))
	return nil
}

func saveHistory(ctx context.Context, sel *intake.Selection, args []string, outcome *models.UploadOutcome) (string, error) {
	s, err := getHistoryStore()
	if err != nil {
		return "", err
	}

	gen := &models.Generation{
		Title:          generationTitle(args, sel),
		Mode:           sel.Mode(),
		Status:         outcome.Status,
		GeneratorLabel: outcome.GeneratorLabel,
		FileCount:      outcome.TotalCount,
		ProcessedCount: outcome.ProcessedCount,
		Documentation:  outcome.Documentation,
	}
	if err := s.SaveGeneration(ctx, gen); err != nil {
		return "", err
	}
	return gen.ID, nil
}

// generationTitle names a history entry after what was uploaded.
func generationTitle(args []string, sel *intake.Selection) string {
	if len(args) == 1 {
		name := displayName(args[0])
		if sel.Mode() == models.ModeFolder {
			return name + "/"
		}
		return name
	}
	return fmt.Sprintf("%s (+%d more)", displayName(args[0]), len(args)-1)
}

func displayName(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Base(p)
	}
	return filepath.Base(abs)
}

func confirm(question string) (bool, error) {
	answer, err := promptLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch answer {
	case "y", "Y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// cliObserver renders upload progress on stderr and remembers the final
// failure message for the command's error return.
type cliObserver struct {
	ui       *output.UI
	est      *progress.Estimator
	estimate int
	total    int
	failMsg  string
}

func newCLIObserver(u *output.UI, estimateSeconds int) *cliObserver {
	o := &cliObserver{ui: u, estimate: estimateSeconds}
	o.est = progress.NewEstimator(o.renderTick)
	return o
}

func (o *cliObserver) UploadStarted(fileCount int) {
	o.total = fileCount
	o.ui.Info("Uploading %d file(s)...", fileCount)

	estimate := o.estimate
	if estimate <= 0 {
		estimate = progress.EstimateSeconds(fileCount)
	}
	o.est.Start(estimate)
}

func (o *cliObserver) UploadProgress(step int, fileName string) {
	o.ui.VerboseLog("[%d/%d] %s", step, o.total, fileName)
}

func (o *cliObserver) UploadSucceeded(*models.UploadOutcome) {
	o.est.Stop()
	o.clearLine()
}

func (o *cliObserver) UploadFailed(message string) {
	o.est.Stop()
	o.clearLine()
	o.failMsg = message
}

func (o *cliObserver) renderTick(st models.ProgressState) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	fmt.Fprintf(os.Stderr, "\r  %3d%%  %-26s  %ds", st.PercentComplete, st.StepLabel, st.ElapsedSeconds)
}

func (o *cliObserver) clearLine() {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprint(os.Stderr, "\r\x1b[2K")
	}
}
