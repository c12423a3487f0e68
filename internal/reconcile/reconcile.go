// Package reconcile normalizes the service's heterogeneous upload replies
// into one canonical outcome. Pure functions only; no network or storage.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/docsmith-ai/docsmith/internal/api"
	"github.com/docsmith-ai/docsmith/internal/models"
)

// docSeparator joins per-file documentation blocks in batch outcomes.
const docSeparator = "\n\n---\n\n"

// Generator labels for batch modes. Single-mode outcomes pass the
// service's own generator tag through instead.
const (
	generatorMultiple = "multiple"
	generatorFolder   = "folder"
)

// Reconcile builds the canonical outcome from raw responses.
//
// Single mode maps the one response through directly, including a raw
// partial_success. Batch modes concatenate documentation with a visible
// separator and derive the overall status: success only when every
// sub-response succeeded cleanly, partial_success when at least one did,
// error when none did.
func Reconcile(mode models.SelectionMode, responses []api.GenerationResponse) models.UploadOutcome {
	if len(responses) == 0 {
		return models.UploadOutcome{
			Status:       models.StatusError,
			ErrorMessage: "the service returned no results",
		}
	}

	switch mode {
	case models.ModeMultiple:
		return reconcileBatch(responses, generatorMultiple)
	case models.ModeFolder:
		return reconcileBatch(responses, generatorFolder)
	default:
		return reconcileSingle(responses[0])
	}
}

func reconcileSingle(resp api.GenerationResponse) models.UploadOutcome {
	out := models.UploadOutcome{
		Status:         parseStatus(resp.Status),
		Documentation:  resp.DocText(),
		GeneratorLabel: resp.Generator,
		TotalCount:     1,
	}
	if resp.Succeeded() {
		out.ProcessedCount = 1
	}
	if out.Status == models.StatusError {
		out.ErrorMessage = resp.Message
		if out.ErrorMessage == "" {
			out.ErrorMessage = "documentation generation failed"
		}
	}
	return out
}

func reconcileBatch(responses []api.GenerationResponse, generator string) models.UploadOutcome {
	var (
		docs       []string
		processed  int
		succeeded  int
		anyPartial bool
		failures   []string
	)

	for _, resp := range responses {
		// A missing documentation field contributes an empty block, never
		// an error; one bad sub-response must not corrupt the rest.
		if resp.Succeeded() {
			succeeded++
			if resp.Status == "partial_success" {
				anyPartial = true
			}
			if resp.ProcessedCount > 0 {
				processed += resp.ProcessedCount
			} else {
				processed++
			}
			docs = append(docs, resp.DocText())
			continue
		}
		name := resp.FileName
		if name == "" {
			name = "unnamed file"
		}
		failures = append(failures, name)
	}

	out := models.UploadOutcome{
		Documentation:  strings.Join(docs, docSeparator),
		GeneratorLabel: generator,
		ProcessedCount: processed,
		TotalCount:     len(responses),
	}

	switch {
	case succeeded == 0:
		out.Status = models.StatusError
		out.ErrorMessage = fmt.Sprintf("documentation generation failed for all %d files", len(responses))
	case succeeded < len(responses) || anyPartial:
		out.Status = models.StatusPartial
		if len(failures) > 0 {
			out.ErrorMessage = fmt.Sprintf("failed: %s", strings.Join(failures, ", "))
		}
	default:
		out.Status = models.StatusSuccess
	}
	return out
}

// parseStatus maps a wire status onto the outcome taxonomy. Anything
// unrecognized counts as an error rather than a silent success.
func parseStatus(s string) models.OutcomeStatus {
	switch s {
	case "success":
		return models.StatusSuccess
	case "partial_success":
		return models.StatusPartial
	default:
		return models.StatusError
	}
}
