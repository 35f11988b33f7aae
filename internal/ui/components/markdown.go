package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdMu        sync.Mutex
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for the terminal, wrapped at width. On any
// renderer failure the source text is returned unchanged.
func RenderMarkdown(md string, width int) string {
	width = max(width, 20)

	mdMu.Lock()
	r, ok := mdRenderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdMu.Unlock()
			return md
		}
		mdRenderers[width] = r
	}
	out, err := r.Render(md)
	mdMu.Unlock()

	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
