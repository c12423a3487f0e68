// Package intake decides which local files are eligible for documentation
// generation: path filtering, selection assembly, and directory scanning.
package intake

import (
	"path"
	"strings"
)

// deniedDirs are directory names that never contain documentable source:
// build artifacts, dependency trees, VCS metadata, and tool caches.
// Matched case-sensitively against every path segment except the filename.
var deniedDirs = map[string]struct{}{
	"node_modules": {}, "bower_components": {}, "vendor": {},
	"dist": {}, "build": {}, "out": {}, "target": {}, "bin": {}, "obj": {},
	"coverage": {}, "__pycache__": {}, "venv": {}, "env": {},
	"site-packages": {}, "logs": {}, "tmp": {},
}

// deniedExts are binary, artifact, and media extensions that are never
// documentable. Lowercase, without the leading dot.
var deniedExts = map[string]struct{}{
	"exe": {}, "dll": {}, "so": {}, "dylib": {}, "a": {}, "o": {},
	"pyc": {}, "pyo": {}, "class": {}, "jar": {}, "war": {},
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "ico": {},
	"svg": {}, "webp": {}, "mp3": {}, "mp4": {}, "avi": {}, "mov": {},
	"wav": {}, "flac": {}, "pdf": {}, "doc": {}, "docx": {}, "xls": {},
	"xlsx": {}, "ppt": {}, "pptx": {}, "ttf": {}, "otf": {}, "woff": {},
	"woff2": {}, "eot": {}, "db": {}, "sqlite": {}, "sqlite3": {},
	"lock": {}, "bak": {}, "tmp": {}, "swp": {}, "swo": {}, "log": {},
	"map": {}, "gz": {}, "tar": {}, "rar": {}, "7z": {},
	"bz2": {}, "xz": {}, "iso": {}, "dmg": {}, "bin": {}, "dat": {},
}

// supportedExts is the allowlist of documentable source extensions.
// Lowercase, without the leading dot. Archives are included so they pass
// the supportedness check before being routed to the archive endpoint.
var supportedExts = map[string]struct{}{
	"py": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {}, "mjs": {}, "cjs": {},
	"go": {}, "rs": {}, "java": {}, "kt": {}, "kts": {}, "scala": {},
	"c": {}, "h": {}, "cpp": {}, "cc": {}, "cxx": {}, "hpp": {}, "hh": {},
	"cs": {}, "rb": {}, "php": {}, "swift": {}, "m": {}, "mm": {},
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "ps1": {},
	"sql": {}, "r": {}, "jl": {}, "lua": {}, "pl": {}, "pm": {},
	"ex": {}, "exs": {}, "erl": {}, "hrl": {}, "hs": {}, "ml": {}, "mli": {},
	"clj": {}, "cljs": {}, "dart": {}, "vue": {}, "svelte": {},
	"html": {}, "htm": {}, "css": {}, "scss": {}, "sass": {}, "less": {},
	"json": {}, "yaml": {}, "yml": {}, "toml": {}, "ini": {}, "cfg": {},
	"conf": {}, "env": {}, "xml": {}, "md": {}, "markdown": {}, "rst": {},
	"txt": {}, "proto": {}, "graphql": {}, "gql": {}, "tf": {}, "tfvars": {},
	"dockerfile": {}, "makefile": {}, "cmake": {}, "gradle": {},
	"zip": {},
}

// archiveExts are bundle formats routed to the project-archive endpoint.
var archiveExts = map[string]struct{}{
	"zip": {},
}

// envFileName is the one hidden file allowed through the dotfile rule.
const envFileName = ".env"

// ShouldInclude reports whether a slash-separated relative path survives
// intake filtering. It checks the directory denylist, hidden segments, and
// the extension denylist. Supportedness is a separate predicate
// (IsSupported); callers compose the two.
func ShouldInclude(relPath string) bool {
	clean := strings.TrimPrefix(path.Clean(relPath), "./")
	segments := strings.Split(clean, "/")

	name := segments[len(segments)-1]
	for _, seg := range segments[:len(segments)-1] {
		if _, denied := deniedDirs[seg]; denied {
			return false
		}
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	if strings.HasPrefix(name, ".") && name != envFileName {
		return false
	}

	if _, denied := deniedExts[Ext(name)]; denied {
		return false
	}
	return true
}

// IsSupported reports whether the filename's extension is on the
// documentable allowlist. Extension-less filenames are unsupported.
func IsSupported(name string) bool {
	e := Ext(name)
	if e == "" {
		return false
	}
	_, ok := supportedExts[e]
	return ok
}

// IsArchive reports whether the filename looks like a project archive.
func IsArchive(name string) bool {
	_, ok := archiveExts[Ext(name)]
	return ok
}

// Ext returns the lowercase extension after the last dot, without the dot.
// A name with no dot, or nothing after its last dot, has no extension.
// Note ".env" yields "env"; the hidden-file rule is handled separately.
func Ext(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}
