package models

// OutcomeStatus classifies a finished generation run.
type OutcomeStatus string

const (
	// StatusSuccess means every file produced documentation.
	StatusSuccess OutcomeStatus = "success"
	// StatusPartial means documentation was produced but one or more
	// files failed along the way.
	StatusPartial OutcomeStatus = "partial_success"
	// StatusError means no documentation was produced at all.
	StatusError OutcomeStatus = "error"
)

// UploadOutcome is the single reconciled result of an upload run,
// regardless of which endpoint or how many requests produced it.
type UploadOutcome struct {
	Status         OutcomeStatus
	Documentation  string // merged markdown, possibly from many files
	GeneratorLabel string // which generator produced it, e.g. "ai", "multiple", "folder"
	ProcessedCount int    // files that yielded documentation
	TotalCount     int    // files submitted
	ErrorMessage   string // set when Status is not success
}

// Succeeded reports whether the run produced any documentation.
func (o *UploadOutcome) Succeeded() bool {
	return o.Status == StatusSuccess || o.Status == StatusPartial
}
