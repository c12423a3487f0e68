package intake

import (
	"errors"
	"fmt"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// Rejection reasons surfaced by Add. Callers that name files explicitly
// report these; the folder scanner skips silently instead.
var (
	ErrExcluded    = errors.New("file is excluded by intake rules")
	ErrUnsupported = errors.New("file type is not supported")
	ErrDuplicate   = errors.New("file is already selected")
)

// Selection is the ordered set of files pending upload, tagged with the
// mode that populated it. Switching modes clears the set so single-file
// and folder semantics never mix in one request.
type Selection struct {
	mode  models.SelectionMode
	files []models.CandidateFile
	seen  map[string]struct{}
}

// NewSelection returns an empty selection for the given mode.
func NewSelection(mode models.SelectionMode) *Selection {
	return &Selection{
		mode: mode,
		seen: make(map[string]struct{}),
	}
}

// Mode returns the selection's population mode.
func (s *Selection) Mode() models.SelectionMode { return s.mode }

// SetMode switches modes, clearing the selection when the mode changes.
func (s *Selection) SetMode(mode models.SelectionMode) {
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.Clear()
}

// Add appends a candidate after running it through the intake rules.
// Rejected candidates never enter the selection.
func (s *Selection) Add(cf models.CandidateFile) error {
	if !ShouldInclude(cf.RelativePath) {
		return fmt.Errorf("%s: %w", cf.RelativePath, ErrExcluded)
	}
	if !IsSupported(cf.Name) {
		return fmt.Errorf("%s: %w", cf.Name, ErrUnsupported)
	}
	if _, dup := s.seen[cf.RelativePath]; dup {
		return fmt.Errorf("%s: %w", cf.RelativePath, ErrDuplicate)
	}
	s.seen[cf.RelativePath] = struct{}{}
	s.files = append(s.files, cf)
	return nil
}

// Remove drops the candidate with the given relative path, if present.
func (s *Selection) Remove(relPath string) bool {
	if _, ok := s.seen[relPath]; !ok {
		return false
	}
	delete(s.seen, relPath)
	for i, cf := range s.files {
		if cf.RelativePath == relPath {
			s.files = append(s.files[:i], s.files[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the selection but keeps the mode.
func (s *Selection) Clear() {
	s.files = nil
	s.seen = make(map[string]struct{})
}

// Files returns a copy of the selected candidates in insertion order.
func (s *Selection) Files() []models.CandidateFile {
	out := make([]models.CandidateFile, len(s.files))
	copy(out, s.files)
	return out
}

// Count returns the number of selected files.
func (s *Selection) Count() int { return len(s.files) }

// TotalBytes sums the sizes of all selected files.
func (s *Selection) TotalBytes() int64 {
	var n int64
	for _, cf := range s.files {
		n += cf.SizeBytes
	}
	return n
}

// ContainsArchive reports whether any selected file is a project archive.
func (s *Selection) ContainsArchive() bool {
	for _, cf := range s.files {
		if IsArchive(cf.Name) {
			return true
		}
	}
	return false
}
