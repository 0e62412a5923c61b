// Package style provides theme-based stylesheet provisioning for the
// teleprompter's HTML surfaces.
package style

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/cuebird/cuebird/internal/service"
)

//go:embed themes.yaml
var themesYAML []byte

// ErrUnknownTheme is returned by SetTheme for names not in the theme table.
var ErrUnknownTheme = errors.New("unknown theme")

// DefaultTheme is used when no preference is stored and no terminal is
// available for detection.
const DefaultTheme = "dark"

// Theme holds the color tokens one theme defines.
type Theme struct {
	Background string `yaml:"background"`
	Surface    string `yaml:"surface"`
	Text       string `yaml:"text"`
	Muted      string `yaml:"muted"`
	Accent     string `yaml:"accent"`
	Error      string `yaml:"error"`
}

type themeFile struct {
	Themes map[string]Theme `yaml:"themes"`
}

// Provider generates component stylesheets from the active theme.
// Stylesheet and ThemeVariables are pure queries; only SetTheme mutates.
type Provider struct {
	mu     sync.RWMutex
	themes map[string]Theme
	active string
}

// Ensure Provider satisfies the style-provider capability.
var _ service.StyleProvider = (*Provider)(nil)

// NewProvider creates a provider with the embedded theme table.
// An empty name selects DefaultTheme.
func NewProvider(name string) (*Provider, error) {
	var file themeFile
	if err := yaml.Unmarshal(themesYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing theme table: %w", err)
	}

	if name == "" {
		name = DefaultTheme
	}
	if _, ok := file.Themes[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	return &Provider{themes: file.Themes, active: name}, nil
}

// DetectTheme picks dark or light based on the terminal background.
// Only meaningful in the TUI process; the backend passes a configured name.
func DetectTheme() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// SetTheme switches the active theme.
func (p *Provider) SetTheme(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.themes[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	p.active = name
	return nil
}

// Theme returns the active theme name.
func (p *Provider) Theme() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// ThemeVariables exposes the active theme's color tokens.
func (p *Provider) ThemeVariables() map[string]string {
	p.mu.RLock()
	t := p.themes[p.active]
	p.mu.RUnlock()

	return map[string]string{
		"background": t.Background,
		"surface":    t.Surface,
		"text":       t.Text,
		"muted":      t.Muted,
		"accent":     t.Accent,
		"error":      t.Error,
	}
}

// Component templates. The zero component ("") is the whole application.
var componentTemplates = map[string]string{
	"": `body {
  background-color: {{.Background}};
  color: {{.Text}};
  margin: 0;
  font-family: Georgia, 'Times New Roman', serif;
}
a { color: {{.Accent}}; }
`,
	"prompter": `.prompter {
  background-color: {{.Background}};
  color: {{.Text}};
  font-size: 2.4em;
  line-height: 1.6;
  padding: 0 8%;
}
.prompter h1, .prompter h2, .prompter h3 {
  color: {{.Accent}};
}
.prompter .focus-line {
  border-top: 2px solid {{.Accent}};
}
`,
	"overlay": `.overlay {
  background-color: {{.Surface}};
  color: {{.Muted}};
  border: 1px solid {{.Muted}};
  border-radius: 6px;
  padding: 8px 12px;
}
.overlay .error { color: {{.Error}}; }
`,
	"progress": `.progress {
  background-color: {{.Surface}};
}
.progress .bar {
  background-color: {{.Accent}};
}
`,
}

// Stylesheet returns the CSS for the named component under the active
// theme. Unknown components yield an empty stylesheet.
func (p *Provider) Stylesheet(component string) string {
	p.mu.RLock()
	theme := p.themes[p.active]
	p.mu.RUnlock()

	text, ok := componentTemplates[component]
	if !ok {
		return ""
	}

	tmpl, err := template.New(component).Parse(text)
	if err != nil {
		// Templates are compiled from embedded constants; a parse failure
		// is a programming error.
		panic(fmt.Sprintf("style: bad component template %q: %v", component, err))
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, theme); err != nil {
		panic(fmt.Sprintf("style: rendering component %q: %v", component, err))
	}
	return b.String()
}

// Themes returns the available theme names, unordered.
func (p *Provider) Themes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.themes))
	for name := range p.themes {
		names = append(names, name)
	}
	return names
}
