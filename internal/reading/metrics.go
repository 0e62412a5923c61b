// Package reading provides reading-pace metrics and the scroll
// controller state machine for the teleprompter.
package reading

import (
	"fmt"
	"time"

	"github.com/cuebird/cuebird/internal/service"
)

// DefaultWPM is the assumed reading pace before any session history exists.
const DefaultWPM = 150.0

// Metrics tracks one reading session: active time excluding pauses,
// progress through the script, and the measured words-per-minute pace.
type Metrics struct {
	now func() time.Time

	startTime   time.Time
	pauseTime   time.Time
	totalPaused time.Duration
	wordCount   int
	progress    float64
	baseWPM     float64
}

// Ensure Metrics satisfies the reading-metrics capability.
var _ service.ReadingMetrics = (*Metrics)(nil)

// NewMetrics creates a metrics tracker using the wall clock.
func NewMetrics() *Metrics {
	return NewMetricsWithClock(time.Now)
}

// NewMetricsWithClock creates a metrics tracker with an injected clock.
func NewMetricsWithClock(now func() time.Time) *Metrics {
	return &Metrics{now: now, baseWPM: DefaultWPM}
}

// SetBaseWPM overrides the assumed reading pace. Non-positive values
// are ignored.
func (m *Metrics) SetBaseWPM(wpm float64) {
	if wpm > 0 {
		m.baseWPM = wpm
	}
}

// SetWordCount sets the script's total word count.
func (m *Metrics) SetWordCount(count int) error {
	if count < 0 {
		return fmt.Errorf("word count cannot be negative, got %d", count)
	}
	m.wordCount = count
	return nil
}

// SetProgress records reading progress, 0.0 (start) to 1.0 (end).
func (m *Metrics) SetProgress(progress float64) error {
	if progress < 0 || progress > 1 {
		return fmt.Errorf("progress must be between 0.0 and 1.0, got %v", progress)
	}
	m.progress = progress
	return nil
}

// StartReading marks the start of a session, resetting pause tracking.
func (m *Metrics) StartReading() {
	m.startTime = m.now()
	m.pauseTime = time.Time{}
	m.totalPaused = 0
}

// PauseReading marks reading as paused.
// Safe to call repeatedly or when no session is active.
func (m *Metrics) PauseReading() {
	if !m.startTime.IsZero() && m.pauseTime.IsZero() {
		m.pauseTime = m.now()
	}
}

// ResumeReading resumes from pause, folding the pause into the total.
func (m *Metrics) ResumeReading() {
	if !m.pauseTime.IsZero() {
		m.totalPaused += m.now().Sub(m.pauseTime)
		m.pauseTime = time.Time{}
	}
}

// StopReading ends the session. The tracker can be reused by calling
// StartReading again.
func (m *Metrics) StopReading() {
	m.startTime = time.Time{}
	m.pauseTime = time.Time{}
}

// ReadingTime estimates how long wordCount words take at wpm.
func (m *Metrics) ReadingTime(wordCount int, wpm float64) (time.Duration, error) {
	if wordCount < 0 {
		return 0, fmt.Errorf("word count cannot be negative, got %d", wordCount)
	}
	if wpm <= 0 {
		return 0, fmt.Errorf("words per minute must be positive, got %v", wpm)
	}
	if wordCount == 0 {
		return 0, nil
	}
	minutes := float64(wordCount) / wpm
	return time.Duration(minutes * float64(time.Minute)), nil
}

// WordsPerMinute converts a scroll speed multiplier to effective WPM.
func (m *Metrics) WordsPerMinute(speed float64) float64 {
	return m.baseWPM * speed
}

// Elapsed is active reading time since StartReading, excluding pauses.
// Zero when no session is active.
func (m *Metrics) Elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}

	current := m.now()
	if !m.pauseTime.IsZero() {
		current = m.pauseTime
	}
	elapsed := current.Sub(m.startTime) - m.totalPaused
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining estimates the time to finish the script, using the measured
// pace when there is history and the base WPM otherwise.
func (m *Metrics) Remaining() time.Duration {
	if m.wordCount <= 0 || m.progress >= 1 {
		return 0
	}

	wordsRead := int(float64(m.wordCount) * m.progress)
	wordsRemaining := m.wordCount - wordsRead

	elapsed := m.Elapsed()
	wpm := m.baseWPM
	if elapsed > 0 && wordsRead > 0 {
		wpm = float64(wordsRead) / elapsed.Minutes()
	}

	remaining, err := m.ReadingTime(wordsRemaining, wpm)
	if err != nil {
		return 0
	}
	return remaining
}

// AverageWPM is the measured pace for the current session, zero when
// there is no meaningful history yet.
func (m *Metrics) AverageWPM() float64 {
	elapsed := m.Elapsed()
	if elapsed <= 0 || m.wordCount <= 0 || m.progress <= 0 {
		return 0
	}
	wordsRead := float64(m.wordCount) * m.progress
	return wordsRead / elapsed.Minutes()
}
