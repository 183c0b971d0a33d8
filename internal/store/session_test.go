package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSession(started time.Time) *Session {
	return &Session{
		StartedAt: started,
		Duration:  90 * time.Second,
		Frames:    2700,
		AvgFPS:    30,
		Detector:  "landmarks",
		Mode:      "keyboard",
		Text:      "HI\n",
		Gestures: []GestureStat{
			{Name: "Open Palm", Count: 1200},
			{Name: "Fist", Count: 300},
			{Name: "OK Sign", Count: 300},
		},
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := newTestStore(t).Sessions()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := sampleSession(started)
	require.NoError(t, repo.Create(sess))

	_, err := uuid.Parse(sess.ID)
	require.NoError(t, err, "generated id should be a uuid")
	assert.False(t, sess.CreatedAt.IsZero())

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(started), "StartedAt = %v", got.StartedAt)
	assert.Equal(t, 90*time.Second, got.Duration)
	assert.Equal(t, 2700, got.Frames)
	assert.InDelta(t, 30.0, got.AvgFPS, 1e-9)
	assert.Equal(t, "landmarks", got.Detector)
	assert.Equal(t, "keyboard", got.Mode)
	assert.Equal(t, "HI\n", got.Text)
	assert.Equal(t, []GestureStat{
		{Name: "Open Palm", Count: 1200},
		{Name: "Fist", Count: 300},
		{Name: "OK Sign", Count: 300},
	}, got.Gestures)
}

func TestSessionRepository_KeepsGivenID(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := sampleSession(time.Now())
	sess.ID = "fixed-id"
	require.NoError(t, repo.Create(sess))

	got, err := repo.GetByID("fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", got.ID)
}

func TestSessionRepository_NoGestures(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := sampleSession(time.Now())
	sess.Gestures = nil
	require.NoError(t, repo.Create(sess))

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Gestures)
	assert.NotNil(t, got.Gestures)
}

func TestSessionRepository_CreateRollsBack(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := sampleSession(time.Now())
	sess.Gestures = append(sess.Gestures, GestureStat{Name: "Fist", Count: 1})
	require.Error(t, repo.Create(sess), "duplicate gesture name should violate the unique constraint")

	_, err := repo.GetByID(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_InvalidDetector(t *testing.T) {
	repo := newTestStore(t).Sessions()

	sess := sampleSession(time.Now())
	sess.Detector = "telepathy"
	assert.Error(t, repo.Create(sess))
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	_, err := repo.GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	repo := newTestStore(t).Sessions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		sess := sampleSession(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, repo.Create(sess))
		ids = append(ids, sess.ID)
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "most recent first")
	assert.Equal(t, ids[0], all[2].ID)
	assert.Nil(t, all[0].Gestures)

	limited, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSessionRepository_List_Empty(t *testing.T) {
	sessions, err := newTestStore(t).Sessions().List(10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := sampleSession(time.Now())
	require.NoError(t, repo.Create(sess))
	require.NoError(t, repo.Delete(sess.ID))

	_, err := repo.GetByID(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM session_gestures`).Scan(&n))
	assert.Zero(t, n, "gesture counters should cascade")

	assert.ErrorIs(t, repo.Delete(sess.ID), ErrNotFound)
}

func TestSettingsRepository(t *testing.T) {
	repo := newTestStore(t).Settings()

	_, err := repo.Get(SettingLastMode)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(SettingLastMode, "volume"))
	require.NoError(t, repo.Set(SettingLastMode, "drawing"))

	got, err := repo.Get(SettingLastMode)
	require.NoError(t, err)
	assert.Equal(t, "drawing", got)
}
