package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuebird/cuebird/internal/service"
	"github.com/cuebird/cuebird/internal/sessions/domain"
)

func newTestStore(t *testing.T) service.SessionStore {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	return db.SessionRepository()
}

func finishedSession(path string, startedAt time.Time) *domain.ReadingSession {
	s := domain.NewReadingSession(path, 500)
	s.StartedAt = startedAt
	s.Finish(1.0, 142.5, 3*time.Minute+30*time.Second)
	return s
}

func TestSessionRepository_SaveAssignsID(t *testing.T) {
	store := newTestStore(t)

	session := finishedSession("/scripts/keynote.md", time.Now())
	require.NoError(t, store.Save(session))
	assert.NotZero(t, session.ID, "insert should set the row id")
}

func TestSessionRepository_SaveRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	session := finishedSession("", time.Now())
	err := store.Save(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file path")
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	started := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	session := finishedSession("/scripts/keynote.md", started)
	require.NoError(t, store.Save(session))

	got, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	loaded := got[0]
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.GUID, loaded.GUID)
	assert.Equal(t, "/scripts/keynote.md", loaded.FilePath)
	assert.Equal(t, 500, loaded.WordCount)
	assert.InDelta(t, 1.0, loaded.Progress, 0.0001)
	assert.InDelta(t, 142.5, loaded.AvgWPM, 0.0001)
	assert.Equal(t, 3*time.Minute+30*time.Second, loaded.Duration)
	assert.Equal(t, started.Unix(), loaded.StartedAt.Unix())
	assert.Equal(t, session.EndedAt.Unix(), loaded.EndedAt.Unix())
}

func TestSessionRepository_SaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)

	session := finishedSession("/scripts/keynote.md", time.Now())
	require.NoError(t, store.Save(session))
	id := session.ID

	session.Progress = 0.8
	session.AvgWPM = 120
	require.NoError(t, store.Save(session))
	assert.Equal(t, id, session.ID, "update must not change the row id")

	got, err := store.Recent(0)
	require.NoError(t, err)
	require.Len(t, got, 1, "update must not create a second row")
	assert.InDelta(t, 0.8, got[0].Progress, 0.0001)
}

func TestSessionRepository_RecentOrdersNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := finishedSession("/scripts/keynote.md", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Save(s))
	}

	got, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].StartedAt.After(got[i-1].StartedAt),
			"sessions must be ordered newest first")
	}
	assert.Equal(t, base.Add(4*time.Hour).Unix(), got[0].StartedAt.Unix())
}

func TestSessionRepository_RecentNoLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Save(finishedSession("/scripts/keynote.md", time.Now())))
	}

	got, err := store.Recent(0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSessionRepository_RecentEmpty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionRepository_UnfinishedSessionHasNoEndTime(t *testing.T) {
	store := newTestStore(t)

	session := domain.NewReadingSession("/scripts/draft.md", 120)
	require.NoError(t, store.Save(session))

	got, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].EndedAt.IsZero(), "unfinished session round-trips with zero end time")
}
