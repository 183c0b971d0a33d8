package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GestureStat is how often a gesture was detected during a session.
type GestureStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Session is a finished capture session.
type Session struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Frames    int           `json:"frames"`
	AvgFPS    float64       `json:"avg_fps"`
	Detector  string        `json:"detector"`
	Mode      string        `json:"mode"`
	Text      string        `json:"text"`
	Gestures  []GestureStat `json:"gestures"`
	CreatedAt time.Time     `json:"created_at"`
}

// SessionRepository stores sessions with their gesture counters.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session and its gesture counters in one transaction.
// An empty ID is replaced by a new UUID.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	sess.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, started_at, duration_ms, frames, avg_fps, detector, mode, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, sess.Duration.Milliseconds(), sess.Frames, sess.AvgFPS,
		sess.Detector, sess.Mode, sess.Text, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, g := range sess.Gestures {
		_, err := tx.Exec(
			`INSERT INTO session_gestures (session_id, name, count) VALUES (?, ?, ?)`,
			sess.ID, g.Name, g.Count,
		)
		if err != nil {
			return fmt.Errorf("insert gesture %q: %w", g.Name, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session with its gesture counters.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var durationMs int64

	err := r.db.QueryRow(
		`SELECT id, started_at, duration_ms, frames, avg_fps, detector, mode, text, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.StartedAt, &durationMs, &sess.Frames, &sess.AvgFPS,
		&sess.Detector, &sess.Mode, &sess.Text, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.Duration = time.Duration(durationMs) * time.Millisecond

	if sess.Gestures, err = r.gestures(id); err != nil {
		return nil, err
	}
	return sess, nil
}

func (r *SessionRepository) gestures(sessionID string) ([]GestureStat, error) {
	rows, err := r.db.Query(
		`SELECT name, count FROM session_gestures
		 WHERE session_id = ? ORDER BY count DESC, name ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []GestureStat{}
	for rows.Next() {
		var g GestureStat
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, err
		}
		stats = append(stats, g)
	}
	return stats, rows.Err()
}

// List returns up to limit sessions, most recent first. A limit of zero or
// less returns every session. Gesture counters are not loaded.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT id, started_at, duration_ms, frames, avg_fps, detector, mode, text, created_at
		 FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var durationMs int64

		err := rows.Scan(&sess.ID, &sess.StartedAt, &durationMs, &sess.Frames, &sess.AvgFPS,
			&sess.Detector, &sess.Mode, &sess.Text, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and, through the foreign key, its counters.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
