package output

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// maxRenderWidth keeps prose readable on very wide terminals.
const maxRenderWidth = 100

// RenderMarkdown converts markdown to styled terminal output. When stdout
// is not a terminal or the renderer cannot be built, the raw markdown is
// returned unchanged so pipes and redirects stay clean.
func RenderMarkdown(content string) string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return content
	}

	width := maxRenderWidth
	if w, _, err := term.GetSize(fd); err == nil && w > 0 && w < width {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
