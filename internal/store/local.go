package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// KV is the browser-storage style contract used by the wizard: synchronous
// string values addressed by key.
type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

const localTimeout = 5 * time.Second

// Local exposes the local_storage table as a KV.
type Local struct {
	db *sql.DB
}

// Local returns the persistent key/value view of the store.
func (s *Store) Local() *Local {
	return &Local{db: s.db}
}

// GetItem returns the stored value and whether the key exists.
func (l *Local) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
	defer cancel()
	var value string
	err := l.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem inserts or replaces the value for key.
func (l *Local) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
	defer cancel()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (l *Local) RemoveItem(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
	defer cancel()
	_, err := l.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key)
	return err
}
