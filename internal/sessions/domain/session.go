// Package domain holds the reading session entity persisted between runs.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReadingSession records one finished pass over a script.
type ReadingSession struct {
	// ID is the database row id; zero until persisted.
	ID int64
	// GUID identifies the session across processes.
	GUID string
	// FilePath is the script that was read.
	FilePath string
	// WordCount is the script's word count at reading time.
	WordCount int
	// Progress is how far the reading got, 0.0-1.0.
	Progress float64
	// AvgWPM is the measured words-per-minute for the session.
	AvgWPM float64
	// Duration is active reading time, excluding pauses.
	Duration time.Duration
	// StartedAt/EndedAt bound the session in wall-clock time.
	StartedAt time.Time
	EndedAt   time.Time
}

// NewReadingSession creates a session with a fresh GUID.
func NewReadingSession(filePath string, wordCount int) *ReadingSession {
	return &ReadingSession{
		GUID:      uuid.NewString(),
		FilePath:  filePath,
		WordCount: wordCount,
		StartedAt: time.Now(),
	}
}

// Finish stamps the end of the session.
func (s *ReadingSession) Finish(progress, avgWPM float64, active time.Duration) {
	s.Progress = progress
	s.AvgWPM = avgWPM
	s.Duration = active
	s.EndedAt = time.Now()
}

// Validate checks the invariants a session must satisfy before persistence.
func (s *ReadingSession) Validate() error {
	if s.GUID == "" {
		return fmt.Errorf("session has no GUID")
	}
	if s.FilePath == "" {
		return fmt.Errorf("session has no file path")
	}
	if s.WordCount < 0 {
		return fmt.Errorf("negative word count %d", s.WordCount)
	}
	if s.Progress < 0 || s.Progress > 1 {
		return fmt.Errorf("progress %v out of range", s.Progress)
	}
	return nil
}
