package uploader

import "github.com/docsmith-ai/docsmith/internal/models"

// Observer receives lifecycle events from one upload run. Calls arrive
// from the goroutine running Upload, between sequential requests, so
// implementations should be quick.
type Observer interface {
	// UploadStarted fires once, after pre-flight checks pass.
	UploadStarted(fileCount int)
	// UploadProgress fires before each request. step counts from 1; in
	// chunked runs it advances per file.
	UploadProgress(step int, fileName string)
	// UploadSucceeded fires with the reconciled outcome whenever the run
	// completed, including outcomes with partial or error status.
	UploadSucceeded(outcome *models.UploadOutcome)
	// UploadFailed fires instead of UploadSucceeded when the run was
	// rejected up front or died on a transport-level error.
	UploadFailed(message string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) UploadStarted(int) {}

func (NopObserver) UploadProgress(int, string) {}

func (NopObserver) UploadSucceeded(*models.UploadOutcome) {}

func (NopObserver) UploadFailed(string) {}
