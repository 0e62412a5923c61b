// Package markdown provides styled markdown rendering for the prompter.
package markdown

import (
	"github.com/charmbracelet/glamour"
)

// noMarginStyle is a JSON style that removes document margins so the
// prompter controls its own horizontal padding.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with cuebird-specific configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// glamourStyle maps cuebird theme names to glamour's built-in style
// names. glamour treats any name outside its built-in set as a JSON
// style file path, so every theme must resolve to a real built-in.
var glamourStyle = map[string]string{
	"dark":          "dark",
	"light":         "light",
	"high-contrast": "dark",
}

// New creates a markdown renderer with the given wrap width and theme.
// Unknown or empty theme names fall back to "dark".
// A fixed style path avoids glamour's auto-detection, which queries the
// terminal and leaks escape responses into the input stream.
func New(width int, theme string) (*Renderer, error) {
	style, ok := glamourStyle[theme]
	if !ok {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the style name the renderer was built with.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
