// Package content provides script loading, markdown parsing, and content
// analysis for the teleprompter.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cuebird/cuebird/internal/service"
)

// Error kinds surfaced by the file loader.
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// defaultExtensions are the script formats cuebird can load.
var defaultExtensions = []string{".md", ".markdown", ".txt"}

// Loader loads teleprompter scripts from the file system.
type Loader struct {
	extensions []string
}

// Ensure Loader satisfies the file-loading capability.
var _ service.FileLoader = (*Loader)(nil)

// NewLoader creates a loader for the default script formats.
func NewLoader() *Loader {
	return &Loader{extensions: slices.Clone(defaultExtensions)}
}

// Load returns the raw content of the file at path.
// Fails with ErrUnsupportedFormat for unknown extensions and ErrNotFound
// when the file does not exist.
func (l *Loader) Load(path string) (string, error) {
	if !l.supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-chosen script file
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// Validate reports whether path exists and has a supported extension.
func (l *Loader) Validate(path string) bool {
	if !l.supported(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Extensions returns the supported file extensions, including the dot.
func (l *Loader) Extensions() []string {
	return slices.Clone(l.extensions)
}

func (l *Loader) supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(l.extensions, ext)
}
