package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/keepsakelabs/giftvault/internal/session"
)

// SessionStore persists the unlocked-session marker in the local
// database so a recipient who passed the gate is not re-challenged on
// the next launch of the same device.
type SessionStore struct {
	db *sql.DB
}

// Sessions returns the session marker store backed by this database.
func (s *LocalStore) Sessions() *SessionStore {
	return &SessionStore{db: s.db}
}

// Read returns the stored marker, or session.ErrNoSession.
func (s *SessionStore) Read(ctx context.Context) (session.Session, error) {
	var (
		key      string
		issuedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT secret_key, issued_at FROM session_marker WHERE id = 1`).Scan(&key, &issuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, session.ErrNoSession
		}
		return session.Session{}, fmt.Errorf("reading session marker: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, issuedAt)
	if err != nil {
		// A corrupt timestamp does not invalidate the marker itself.
		ts = time.Time{}
	}

	return session.Session{Key: key, IssuedAt: ts}, nil
}

// Set writes the marker, replacing any previous one.
func (s *SessionStore) Set(ctx context.Context, sess session.Session) error {
	query := `
		INSERT INTO session_marker (id, secret_key, issued_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			secret_key = excluded.secret_key,
			issued_at = excluded.issued_at`

	issuedAt := sess.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query, sess.Key, issuedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing session marker: %w", err)
	}
	return nil
}

// Clear removes the marker.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_marker WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session marker: %w", err)
	}
	return nil
}
