package models

// SelectionMode identifies how a set of files was chosen for upload.
type SelectionMode string

const (
	// ModeSingle is one explicitly chosen file.
	ModeSingle SelectionMode = "single"
	// ModeMultiple is several explicitly chosen files.
	ModeMultiple SelectionMode = "multiple"
	// ModeFolder is a directory tree scan with relative paths preserved.
	ModeFolder SelectionMode = "folder"
)

// CandidateFile is a file that passed intake filtering and is queued for
// upload. Treated as immutable once built; intake replaces rather than
// mutates entries.
type CandidateFile struct {
	Name         string // base name, e.g. "parser.go"
	RelativePath string // slash-separated path under the selection root
	AbsPath      string // local path content is read from at upload time
	SizeBytes    int64
	MimeHint     string // best-effort content type, display only
}
