// Package testutil provides canned capability implementations for
// wiring tests. Each stub satisfies one service interface with fixed
// behavior so tests can substitute it through the container.
package testutil

import (
	"sort"
	"sync"

	"github.com/cuebird/cuebird/internal/service"
)

// StubLoader returns fixed content for every path.
type StubLoader struct {
	Content string
	Exts    []string
}

var _ service.FileLoader = (*StubLoader)(nil)

func (l *StubLoader) Load(path string) (string, error) { return l.Content, nil }
func (l *StubLoader) Validate(path string) bool        { return true }

func (l *StubLoader) Extensions() []string {
	if l.Exts != nil {
		return l.Exts
	}
	return []string{".md", ".txt"}
}

// StubParser returns fixed HTML and a fixed word count.
type StubParser struct {
	HTML  string
	Count int
}

var _ service.ContentParser = (*StubParser)(nil)

func (p *StubParser) Parse(content string) (string, error) { return p.HTML, nil }
func (p *StubParser) WordCount(content string) int         { return p.Count }

// StubSettings is an in-memory settings store. The zero value is usable.
type StubSettings struct {
	mu     sync.Mutex
	values map[string]any
}

var _ service.SettingsStore = (*StubSettings)(nil)

func (s *StubSettings) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *StubSettings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[key] = value
}

func (s *StubSettings) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

func (s *StubSettings) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StubStyle serves one fixed stylesheet for every component.
type StubStyle struct {
	CSS   string
	Name  string
	Vars  map[string]string
	SetFn func(name string) error
}

var _ service.StyleProvider = (*StubStyle)(nil)

func (s *StubStyle) Stylesheet(component string) string { return s.CSS }

func (s *StubStyle) ThemeVariables() map[string]string {
	if s.Vars != nil {
		return s.Vars
	}
	return map[string]string{}
}

func (s *StubStyle) SetTheme(name string) error {
	if s.SetFn != nil {
		return s.SetFn(name)
	}
	s.Name = name
	return nil
}

func (s *StubStyle) Theme() string {
	if s.Name == "" {
		return "dark"
	}
	return s.Name
}
