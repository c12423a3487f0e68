package intake

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// ignoreFileName is a project-local override file, same syntax as .gitignore.
const ignoreFileName = ".docsmithignore"

// ScanDir walks root and returns every documentable file as a candidate,
// applying the intake rules plus any .gitignore/.docsmithignore found in
// the root. Result paths are slash-separated and relative to root.
// Archives are skipped; folder scans document source files only.
func ScanDir(root string) ([]models.CandidateFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	rules := loadIgnoreRules(root)

	var out []models.CandidateFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// Prune excluded directories instead of visiting every child.
			if _, denied := deniedDirs[d.Name()]; denied {
				return fs.SkipDir
			}
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if rules != nil && rules.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if !ShouldInclude(rel) || !IsSupported(d.Name()) || IsArchive(d.Name()) {
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, models.CandidateFile{
			Name:         d.Name(),
			RelativePath: rel,
			AbsPath:      p,
			SizeBytes:    fi.Size(),
			MimeHint:     mime.TypeByExtension(filepath.Ext(d.Name())),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}

// loadIgnoreRules compiles ignore patterns from .gitignore and
// .docsmithignore in root. Returns nil when neither exists.
func loadIgnoreRules(root string) *ignore.GitIgnore {
	var lines []string
	for _, name := range []string{".gitignore", ignoreFileName} {
		content, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}
