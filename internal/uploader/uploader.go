package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docsmith-ai/docsmith/internal/api"
	"github.com/docsmith-ai/docsmith/internal/intake"
	"github.com/docsmith-ai/docsmith/internal/models"
	"github.com/docsmith-ai/docsmith/internal/reconcile"
)

// Backend is the slice of the API client the orchestrator needs, narrow
// enough for tests to fake without HTTP.
type Backend interface {
	UploadFile(ctx context.Context, cf models.CandidateFile) (*api.GenerationResponse, error)
	UploadArchive(ctx context.Context, cf models.CandidateFile) (*api.GenerationResponse, error)
	UploadMultiple(ctx context.Context, files []models.CandidateFile) (*api.GenerationResponse, error)
	UploadFolder(ctx context.Context, files []models.CandidateFile) (*api.GenerationResponse, error)
	AIStatus(ctx context.Context) (*api.AIStatusResponse, error)
	Authenticated() bool
}

// Config bounds an upload run. One orchestrator serves every entry point;
// variants differ by configuration, not by implementation.
type Config struct {
	RequireAuth    bool
	AllowFolder    bool
	AllowArchive   bool
	MaxFiles       int
	MaxFileBytes   int64
	ChunkThreshold int
	ChunkSize      int
}

// DefaultConfig mirrors the service's own enforcement so most rejections
// happen before any bytes move.
func DefaultConfig() Config {
	return Config{
		RequireAuth:    true,
		AllowFolder:    true,
		AllowArchive:   true,
		MaxFiles:       100,
		MaxFileBytes:   10 << 20,
		ChunkThreshold: DefaultChunkThreshold,
		ChunkSize:      DefaultChunkSize,
	}
}

// Uploader runs upload batches against the service. Requests inside a run
// are strictly sequential: one in-flight request at a time bounds backend
// load and keeps progress linear.
type Uploader struct {
	backend Backend
	cfg     Config
}

// New builds an uploader. Zero limits in cfg fall back to defaults.
func New(backend Backend, cfg Config) *Uploader {
	def := DefaultConfig()
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = def.MaxFiles
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = def.MaxFileBytes
	}
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = def.ChunkThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	return &Uploader{backend: backend, cfg: cfg}
}

// Upload runs one batch to completion and returns the reconciled outcome.
// The outcome is non-nil whenever the batch finished, even with status
// error; the error return is reserved for pre-flight rejections and
// transport-level failures, which are also reported via obs.UploadFailed.
// There are no automatic retries: each attempt is exactly-once from the
// client's perspective.
func (u *Uploader) Upload(ctx context.Context, sel *intake.Selection, obs Observer) (*models.UploadOutcome, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	if err := u.preflight(sel); err != nil {
		obs.UploadFailed(err.Error())
		return nil, err
	}

	files := sel.Files()
	obs.UploadStarted(len(files))

	strategy := selectStrategySized(sel.Mode(), len(files), sel.ContainsArchive(),
		u.cfg.ChunkThreshold, u.cfg.ChunkSize)
	slog.Info("upload starting",
		"mode", string(sel.Mode()),
		"files", len(files),
		"endpoint", string(strategy.Endpoint),
		"chunked", strategy.Chunked)

	var (
		responses []api.GenerationResponse
		failed    []string
		err       error
	)
	if strategy.Chunked {
		responses, failed, err = u.uploadChunked(ctx, files, strategy.ChunkSize, obs)
	} else {
		responses, err = u.uploadOnce(ctx, strategy.Endpoint, files, obs)
	}
	if err != nil {
		msg := u.failureMessage(ctx, err)
		slog.Error("upload failed", "error", err)
		obs.UploadFailed(msg)
		return nil, err
	}

	outcome := reconcile.Reconcile(sel.Mode(), responses)
	outcome.TotalCount = len(files)
	if len(failed) > 0 {
		// Swallowed per-file failures degrade a clean success.
		if outcome.Status == models.StatusSuccess {
			outcome.Status = models.StatusPartial
		}
		note := fmt.Sprintf("failed to upload: %s", strings.Join(failed, ", "))
		if outcome.ErrorMessage == "" {
			outcome.ErrorMessage = note
		} else {
			outcome.ErrorMessage += "; " + note
		}
	}

	slog.Info("upload finished",
		"status", string(outcome.Status),
		"processed", outcome.ProcessedCount,
		"total", outcome.TotalCount)
	obs.UploadSucceeded(&outcome)
	return &outcome, nil
}

// preflight rejects a selection before any network traffic. Every message
// names the rule and, where relevant, the files that tripped it.
func (u *Uploader) preflight(sel *intake.Selection) error {
	count := sel.Count()
	if count == 0 {
		return fmt.Errorf("nothing selected for upload")
	}
	if count > u.cfg.MaxFiles {
		return fmt.Errorf("selection has %d files, the limit is %d", count, u.cfg.MaxFiles)
	}

	var oversized []string
	for _, cf := range sel.Files() {
		if cf.SizeBytes > u.cfg.MaxFileBytes {
			oversized = append(oversized, fmt.Sprintf("%s (%s)", cf.RelativePath, humanMB(cf.SizeBytes)))
		}
	}
	if len(oversized) > 0 {
		return fmt.Errorf("over the %s per-file limit: %s", humanMB(u.cfg.MaxFileBytes), strings.Join(oversized, ", "))
	}

	if sel.ContainsArchive() {
		if !u.cfg.AllowArchive {
			return fmt.Errorf("archive uploads are disabled")
		}
		if count > 1 {
			return fmt.Errorf("a project archive must be uploaded by itself")
		}
	}
	if sel.Mode() == models.ModeFolder && !u.cfg.AllowFolder {
		return fmt.Errorf("folder uploads are disabled")
	}
	if u.cfg.RequireAuth && !u.backend.Authenticated() {
		return fmt.Errorf("log in before uploading")
	}
	return nil
}

// uploadOnce issues the single request covering the whole selection.
func (u *Uploader) uploadOnce(ctx context.Context, endpoint Endpoint, files []models.CandidateFile, obs Observer) ([]api.GenerationResponse, error) {
	obs.UploadProgress(1, files[0].Name)

	var (
		resp *api.GenerationResponse
		err  error
	)
	switch endpoint {
	case EndpointArchive:
		resp, err = u.backend.UploadArchive(ctx, files[0])
	case EndpointMultiple:
		resp, err = u.backend.UploadMultiple(ctx, files)
	case EndpointFolder:
		resp, err = u.backend.UploadFolder(ctx, files)
	default:
		resp, err = u.backend.UploadFile(ctx, files[0])
	}
	if err != nil {
		return nil, err
	}
	return flatten(resp), nil
}

// uploadChunked walks the files in fixed-size chunks, one request per
// file, strictly sequentially. A per-file failure is logged and skipped
// rather than aborting the batch; auth failures abort, since no later
// file can succeed without a session.
func (u *Uploader) uploadChunked(ctx context.Context, files []models.CandidateFile, chunkSize int, obs Observer) ([]api.GenerationResponse, []string, error) {
	var (
		responses []api.GenerationResponse
		failed    []string
	)

	step := 0
	for start := 0; start < len(files); start += chunkSize {
		end := min(start+chunkSize, len(files))
		for _, cf := range files[start:end] {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			step++
			obs.UploadProgress(step, cf.Name)

			resp, err := u.backend.UploadFolder(ctx, []models.CandidateFile{cf})
			if err != nil {
				if api.IsAuthError(err) {
					return nil, nil, err
				}
				slog.Warn("file upload failed inside chunk",
					"file", cf.RelativePath, "step", step, "error", err)
				failed = append(failed, cf.RelativePath)
				continue
			}
			responses = append(responses, flatten(resp)...)
		}
	}
	return responses, failed, nil
}

// flatten expands a batch reply's nested per-file results; single replies
// pass through as a one-element slice.
func flatten(resp *api.GenerationResponse) []api.GenerationResponse {
	if len(resp.Results) > 0 {
		return resp.Results
	}
	return []api.GenerationResponse{*resp}
}

// failureMessage words a transport-level failure for the user. When the
// error carries no HTTP status at all, a quick health probe distinguishes
// "service down" from "this one request failed".
func (u *Uploader) failureMessage(ctx context.Context, err error) string {
	if errors.Is(err, context.Canceled) {
		return "The upload was cancelled before it finished."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The upload timed out waiting for the service."
	}
	if _, ok := api.AsStatus(err); ok || errors.Is(err, api.ErrSessionExpired) {
		return api.Humanize(err)
	}

	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, perr := u.backend.AIStatus(probeCtx); perr != nil {
		return "The docsmith service appears to be down. Try again once it is reachable."
	}
	return "The upload could not be sent, but the service is reachable. Try again."
}

func humanMB(b int64) string {
	return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
}
