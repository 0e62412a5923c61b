package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/cuebird/cuebird/internal/service"
	"github.com/cuebird/cuebird/internal/sessions/domain"
)

// sessionColumns is the list of columns to select for session queries.
const sessionColumns = `id, guid, file_path, word_count, progress, avg_wpm, duration_ms, started_at, ended_at`

// sessionRepository implements service.SessionStore using SQLite.
type sessionRepository struct {
	db *sql.DB
}

func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// Ensure sessionRepository satisfies the session-store capability.
var _ service.SessionStore = (*sessionRepository)(nil)

// scanSession scans a row into a SessionModel.
func scanSession(scanner interface{ Scan(...any) error }) (*SessionModel, error) {
	var model SessionModel
	err := scanner.Scan(
		&model.ID, &model.GUID, &model.FilePath, &model.WordCount,
		&model.Progress, &model.AvgWPM, &model.DurationMS,
		&model.StartedAt, &model.EndedAt,
	)
	return &model, err
}

// Save persists a finished session. For new sessions (ID == 0) it
// inserts a row and sets the session ID; otherwise it updates in place.
func (r *sessionRepository) Save(session *domain.ReadingSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	model := toSessionModel(session)

	if session.ID == 0 {
		result, err := r.db.Exec(
			`INSERT INTO sessions (guid, file_path, word_count, progress, avg_wpm, duration_ms, started_at, ended_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			model.GUID, model.FilePath, model.WordCount, model.Progress,
			model.AvgWPM, model.DurationMS, model.StartedAt, model.EndedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		session.ID = id
		return nil
	}

	_, err := r.db.Exec(
		`UPDATE sessions SET file_path = ?, word_count = ?, progress = ?, avg_wpm = ?, duration_ms = ?, started_at = ?, ended_at = ?
		 WHERE id = ?`,
		model.FilePath, model.WordCount, model.Progress, model.AvgWPM,
		model.DurationMS, model.StartedAt, model.EndedAt, model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Recent returns the newest sessions, most recent first. A limit of
// zero or less returns all history.
func (r *sessionRepository) Recent(limit int) ([]*domain.ReadingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.ReadingSession
	for rows.Next() {
		model, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}
