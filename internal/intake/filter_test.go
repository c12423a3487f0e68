package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldInclude_DeniedDirectories(t *testing.T) {
	// A denylisted segment rejects the path no matter what the file is.
	paths := []string{
		"node_modules/react/index.js",
		"src/node_modules/pkg/main.py",
		"vendor/lib/util.go",
		"dist/app.js",
		"build/output.c",
		"project/__pycache__/mod.py",
		"venv/lib/site.py",
		"target/debug/main.rs",
	}
	for _, p := range paths {
		assert.False(t, ShouldInclude(p), "expected %s to be excluded", p)
	}
}

func TestShouldInclude_AcceptsCleanPaths(t *testing.T) {
	paths := []string{
		"main.py",
		"src/app/handlers.go",
		"lib/deep/nested/module.ts",
		"README.md",
		"config.yaml",
	}
	for _, p := range paths {
		assert.True(t, ShouldInclude(p), "expected %s to be included", p)
	}
}

func TestShouldInclude_HiddenSegments(t *testing.T) {
	assert.False(t, ShouldInclude(".git/config"))
	assert.False(t, ShouldInclude("src/.cache/data.json"))
	assert.False(t, ShouldInclude(".github/workflows/ci.yaml"))
	assert.False(t, ShouldInclude("src/.hidden.py"))
	assert.False(t, ShouldInclude(".gitignore"))
}

func TestShouldInclude_EnvFileException(t *testing.T) {
	// .env is the one dotfile allowed through.
	assert.True(t, ShouldInclude(".env"))
	assert.True(t, ShouldInclude("config/.env"))
	// But not when it sits inside a hidden directory.
	assert.False(t, ShouldInclude(".config/.env"))
}

func TestShouldInclude_DeniedExtensions(t *testing.T) {
	paths := []string{
		"assets/logo.png",
		"bin.exe",
		"lib.so",
		"cache.pyc",
		"song.MP3", // extension match is case-insensitive
		"archive.tar.gz",
		"debug.log",
	}
	for _, p := range paths {
		assert.False(t, ShouldInclude(p), "expected %s to be excluded", p)
	}
}

func TestShouldInclude_DirectoryMatchIsCaseSensitive(t *testing.T) {
	// Only the exact directory name is denied.
	assert.False(t, ShouldInclude("build/main.go"))
	assert.True(t, ShouldInclude("Build/main.go"))
}

func TestShouldInclude_Idempotent(t *testing.T) {
	for _, p := range []string{"main.py", "node_modules/x.js", ".env", "a.png"} {
		first := ShouldInclude(p)
		second := ShouldInclude(p)
		assert.Equal(t, first, second, "filter must be pure for %s", p)
	}
}

func TestIsSupported(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"main.py", true},
		{"app.TSX", true},
		{"query.sql", true},
		{"notes.md", true},
		{".env", true},
		{"project.zip", true},
		{"Makefile", false}, // extension-less is unsupported, not an error
		{"binary", false},
		{"photo.png", false},
		{"trailing.", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsSupported(tc.name), "IsSupported(%s)", tc.name)
	}
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("project.zip"))
	assert.True(t, IsArchive("PROJECT.ZIP"))
	assert.False(t, IsArchive("main.py"))
	assert.False(t, IsArchive("zip"))
}

func TestExt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"main.py", "py"},
		{"archive.tar.gz", "gz"},
		{"UPPER.GO", "go"},
		{".env", "env"},
		{"Makefile", ""},
		{"trailing.", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Ext(tc.in), "Ext(%s)", tc.in)
	}
}
