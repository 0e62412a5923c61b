package service

import (
	"time"

	"github.com/cuebird/cuebird/internal/sessions/domain"
)

// FileLoader loads teleprompter scripts from path-like identifiers.
type FileLoader interface {
	// Load returns the raw content of the file at path.
	// Fails with content.ErrNotFound or content.ErrUnsupportedFormat.
	Load(path string) (string, error)
	// Validate reports whether path exists and has a supported extension.
	Validate(path string) bool
	// Extensions returns the supported file extensions, including the dot.
	Extensions() []string
}

// ContentParser turns raw script text into rendered markup.
// Parse and WordCount operate on the same input text: neither applies
// pre-processing the other does not.
type ContentParser interface {
	// Parse renders the content to HTML.
	Parse(content string) (string, error)
	// WordCount counts the words in the raw content.
	WordCount(content string) int
}

// ContentStats summarizes rendered content.
type ContentStats struct {
	WordCount    int      `json:"word_count"`
	CharCount    int      `json:"char_count"`
	Sections     []string `json:"sections"`
	SectionCount int      `json:"section_count"`
}

// ContentAnalyzer derives statistics from rendered HTML.
type ContentAnalyzer interface {
	CountWords(html string) int
	Sections(html string) []string
	Analyze(html string) ContentStats
}

// SettingsStore is key-based preference storage.
// Get never fails: a missing key yields the caller-supplied default.
type SettingsStore interface {
	Get(key string, def any) any
	Set(key string, value any)
	Remove(key string)
	Keys() []string
}

// StyleProvider supplies stylesheets for the active theme.
// Stylesheet is a pure function of current state: querying never mutates.
type StyleProvider interface {
	// Stylesheet returns the CSS for the named component
	// ("prompter", "overlay", "progress"); "" selects the whole application.
	Stylesheet(component string) string
	// ThemeVariables exposes the active theme's color tokens.
	ThemeVariables() map[string]string
	// SetTheme switches the active theme; unknown names fail.
	SetTheme(name string) error
	// Theme returns the active theme name.
	Theme() string
}

// ReadingMetrics tracks a reading session and derives pace statistics.
type ReadingMetrics interface {
	SetWordCount(count int) error
	SetProgress(progress float64) error
	StartReading()
	PauseReading()
	ResumeReading()
	StopReading()
	// ReadingTime estimates reading time for wordCount words at wpm.
	ReadingTime(wordCount int, wpm float64) (time.Duration, error)
	// WordsPerMinute converts a scroll speed multiplier to effective WPM.
	WordsPerMinute(speed float64) float64
	// Elapsed is active reading time, excluding pauses.
	Elapsed() time.Duration
	// Remaining estimates time to finish, preferring the measured pace.
	Remaining() time.Duration
	// AverageWPM is the measured pace for the current session.
	AverageWPM() float64
}

// ScrollState is the reading controller's state.
type ScrollState string

const (
	ScrollIdle     ScrollState = "idle"
	ScrollActive   ScrollState = "scrolling"
	ScrollPaused   ScrollState = "paused"
	ScrollFinished ScrollState = "finished"
)

// ReadingController drives teleprompter scrolling.
type ReadingController interface {
	Start()
	Pause()
	Resume()
	Stop()
	State() ScrollState
	// SetSpeed sets the scroll speed multiplier, clamped to the valid range.
	SetSpeed(speed float64)
	Speed() float64
	// SetProgress records the position, 0.0 (start) to 1.0 (end).
	SetProgress(progress float64) error
	Progress() float64
	// JumpTo moves to a position without changing scroll state.
	JumpTo(position float64) error
}

// SessionStore records finished reading sessions.
type SessionStore interface {
	Save(session *domain.ReadingSession) error
	Recent(limit int) ([]*domain.ReadingSession, error)
}
