package store

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/storeflow.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Key/value storage
// ============================================================

func TestGetAbsentKey(t *testing.T) {
	s := newTestStore(t)

	v, err := s.Get("missing")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatalf("expected empty value for absent key, got %q", v)
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "v1" {
		t.Fatalf("expected v1, got %q", v)
	}

	// Overwrite
	if err := s.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, _ = s.Get("k")
	if v != "v2" {
		t.Fatalf("expected v2 after overwrite, got %q", v)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	s.Set("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	v, _ := s.Get("k")
	if v != "" {
		t.Fatalf("expected empty after delete, got %q", v)
	}

	// Deleting an absent key is fine
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Token persistence
// ============================================================

func TestTokenLifecycle(t *testing.T) {
	s := newTestStore(t)

	tok, err := s.LoadToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok != "" {
		t.Fatal("fresh store should have no token")
	}

	if err := s.SaveToken("abc123"); err != nil {
		t.Fatal(err)
	}
	tok, _ = s.LoadToken()
	if tok != "abc123" {
		t.Fatalf("expected abc123, got %q", tok)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatal(err)
	}
	tok, _ = s.LoadToken()
	if tok != "" {
		t.Fatalf("expected empty token after clear, got %q", tok)
	}

	// Clearing twice is a no-op
	if err := s.ClearToken(); err != nil {
		t.Fatal(err)
	}
}

func TestTokenPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/storeflow.db"

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveToken("persisted")
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	tok, _ := s2.LoadToken()
	if tok != "persisted" {
		t.Fatalf("expected token to survive reopen, got %q", tok)
	}
}

// ============================================================
// Preferences persistence
// ============================================================

func TestPreferencesRoundtrip(t *testing.T) {
	s := newTestStore(t)

	v, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatal("fresh store should have no preferences")
	}

	if err := s.SavePreferences(`{"theme":"dark"}`); err != nil {
		t.Fatal(err)
	}
	v, _ = s.LoadPreferences()
	if v != `{"theme":"dark"}` {
		t.Fatalf("unexpected preferences value %q", v)
	}
}
