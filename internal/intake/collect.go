package intake

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// CollectPaths builds a selection from explicit arguments. A single
// directory argument is scanned recursively in folder mode; otherwise
// every path must be a file, and the mode is single or multiple by
// count. An explicitly named file skips the directory denylist (the
// caller chose it), but unsupported types are still rejected.
func CollectPaths(paths []string) (*Selection, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths given")
	}

	if len(paths) == 1 {
		info, err := os.Stat(paths[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return collectDir(paths[0])
		}
	}

	mode := models.ModeSingle
	if len(paths) > 1 {
		mode = models.ModeMultiple
	}
	sel := NewSelection(mode)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory; pass it as the only argument to scan it", p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(p)
		cf := models.CandidateFile{
			Name:         name,
			RelativePath: name,
			AbsPath:      abs,
			SizeBytes:    info.Size(),
			MimeHint:     mime.TypeByExtension(filepath.Ext(name)),
		}
		if err := sel.Add(cf); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return sel, nil
}

func collectDir(root string) (*Selection, error) {
	files, err := ScanDir(root)
	if err != nil {
		return nil, err
	}
	sel := NewSelection(models.ModeFolder)
	for _, cf := range files {
		if err := sel.Add(cf); err != nil {
			return nil, fmt.Errorf("%s: %w", cf.RelativePath, err)
		}
	}
	return sel, nil
}
