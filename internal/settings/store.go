// Package settings provides JSON-backed persistence for user preferences.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cuebird/cuebird/internal/log"
	"github.com/cuebird/cuebird/internal/service"
)

// Well-known preference keys.
const (
	KeyScrollSpeed = "scroll_speed"
	KeyFontSize    = "font_size"
	KeyTheme       = "theme"
	KeyLastFile    = "last_file"
	KeyWPM         = "words_per_minute"
)

// Store persists preferences to a JSON file under the user config dir.
// Get never fails: a missing key yields the caller-supplied default.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]any
}

// Ensure Store satisfies the settings-storage capability.
var _ service.SettingsStore = (*Store)(nil)

// DefaultPath returns the platform settings file location,
// e.g. ~/.config/cuebird/settings.json on Linux.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, "cuebird", "settings.json"), nil
}

// NewStore opens (or creates) the settings file at path.
// A corrupted or unreadable file starts the store empty rather than
// failing: preferences are always recoverable by re-setting them.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	s := &Store{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the app's own settings file
	switch {
	case os.IsNotExist(err):
		// First run
	case err != nil:
		log.Warn(log.CatSettings, "settings unreadable, starting empty", "path", path, "error", err)
	default:
		if err := json.Unmarshal(data, &s.values); err != nil {
			log.Warn(log.CatSettings, "settings corrupted, starting empty", "path", path, "error", err)
			s.values = make(map[string]any)
		}
	}

	return s, nil
}

// Get retrieves a preference, returning def when the key is absent.
func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores a preference and persists immediately.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.save()
}

// Remove deletes a preference and persists immediately.
// Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.save()
}

// Keys returns the stored preference keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// save writes the settings atomically (temp file + rename).
// Persistence failures are logged, not propagated: losing a write is
// preferable to failing a preference change mid-session.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		log.ErrorErr(log.CatSettings, "marshaling settings", err)
		return
	}

	dir := filepath.Dir(s.path)
	temp, err := os.CreateTemp(dir, ".settings.json.tmp.*")
	if err != nil {
		log.ErrorErr(log.CatSettings, "creating temp settings file", err)
		return
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		log.ErrorErr(log.CatSettings, "writing settings", err)
		return
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		log.ErrorErr(log.CatSettings, "closing settings file", err)
		return
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		log.ErrorErr(log.CatSettings, "replacing settings file", err)
	}
}
