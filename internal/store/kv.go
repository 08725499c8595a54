package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Storage keys. Both values are plain strings with no versioning; readers
// must tolerate an absent key and fall back to defaults.
const (
	keyToken       = "token"
	keyPreferences = "preferences"
)

// Get returns the stored value for key, or ("", nil) when the key is absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// LoadToken returns the persisted session token, or "" when none is stored.
func (s *Store) LoadToken() (string, error) {
	return s.Get(keyToken)
}

// SaveToken persists the session token so a restart restores the session.
func (s *Store) SaveToken(token string) error {
	return s.Set(keyToken, token)
}

// ClearToken removes the persisted session token.
func (s *Store) ClearToken() error {
	return s.Delete(keyToken)
}

// LoadPreferences returns the serialized preferences object, or "" when
// none has been stored yet.
func (s *Store) LoadPreferences() (string, error) {
	return s.Get(keyPreferences)
}

// SavePreferences persists the full serialized preferences object.
func (s *Store) SavePreferences(serialized string) error {
	return s.Set(keyPreferences, serialized)
}
