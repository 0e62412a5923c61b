package sqlite

import (
	"time"

	"github.com/cuebird/cuebird/internal/sessions/domain"
)

// SessionModel represents the database row for the sessions table.
// Fields map directly to SQL columns with Unix timestamps for time
// values and milliseconds for durations.
type SessionModel struct {
	ID        int64
	GUID      string
	FilePath  string
	WordCount int
	Progress  float64
	AvgWPM    float64

	DurationMS int64

	StartedAt int64  // Unix timestamp
	EndedAt   *int64 // Unix timestamp, nullable
}

// toSessionModel converts a domain ReadingSession to a database row.
func toSessionModel(s *domain.ReadingSession) *SessionModel {
	m := &SessionModel{
		ID:         s.ID,
		GUID:       s.GUID,
		FilePath:   s.FilePath,
		WordCount:  s.WordCount,
		Progress:   s.Progress,
		AvgWPM:     s.AvgWPM,
		DurationMS: s.Duration.Milliseconds(),
		StartedAt:  s.StartedAt.Unix(),
	}
	if !s.EndedAt.IsZero() {
		endedAt := s.EndedAt.Unix()
		m.EndedAt = &endedAt
	}
	return m
}

// toDomain converts a database row back to a domain ReadingSession.
func (m *SessionModel) toDomain() *domain.ReadingSession {
	s := &domain.ReadingSession{
		ID:        m.ID,
		GUID:      m.GUID,
		FilePath:  m.FilePath,
		WordCount: m.WordCount,
		Progress:  m.Progress,
		AvgWPM:    m.AvgWPM,
		Duration:  time.Duration(m.DurationMS) * time.Millisecond,
		StartedAt: time.Unix(m.StartedAt, 0),
	}
	if m.EndedAt != nil {
		s.EndedAt = time.Unix(*m.EndedAt, 0)
	}
	return s
}
