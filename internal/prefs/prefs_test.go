package prefs

import (
	"testing"
	"time"

	"github.com/sadopc/storeflow/internal/store"
)

func newTestStore(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s, err := NewStore(st)
	if err != nil {
		t.Fatalf("new prefs store: %v", err)
	}
	return s, st
}

// ============================================================
// Loading and defaults-merge
// ============================================================

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Get() != Defaults() {
		t.Fatalf("fresh store should yield defaults, got %+v", s.Get())
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	st, _ := store.NewMemory()
	defer st.Close()

	// A stale object missing most fields: present fields win, absent
	// fields fall back to defaults.
	st.SavePreferences(`{"theme":"dark","itemsPerPage":20}`)

	s, err := NewStore(st)
	if err != nil {
		t.Fatal(err)
	}
	p := s.Get()
	if p.Theme != "dark" || p.ItemsPerPage != 20 {
		t.Fatalf("stored fields should win: %+v", p)
	}
	if p.Currency != "PKR" || p.DashboardView != "cards" || !p.Notifications.NewOrder {
		t.Fatalf("absent fields should default: %+v", p)
	}
	if p.Version != SchemaVersion {
		t.Fatalf("version should be stamped, got %d", p.Version)
	}
}

func TestLoadCorruptFallsBackToDefaults(t *testing.T) {
	st, _ := store.NewMemory()
	defer st.Close()
	st.SavePreferences(`{not json`)

	s, err := NewStore(st)
	if err != nil {
		t.Fatal(err)
	}
	if s.Get() != Defaults() {
		t.Fatalf("corrupt data should load defaults, got %+v", s.Get())
	}
}

func TestLoadValidatesChoiceFields(t *testing.T) {
	st, _ := store.NewMemory()
	defer st.Close()
	st.SavePreferences(`{"theme":"neon","currency":"XYZ","itemsPerPage":-3,"dashboardView":"list"}`)

	s, err := NewStore(st)
	if err != nil {
		t.Fatal(err)
	}
	p := s.Get()
	if p.Theme != "light" || p.Currency != "PKR" || p.ItemsPerPage != 10 {
		t.Fatalf("invalid values should fall back: %+v", p)
	}
	if p.DashboardView != "list" {
		t.Fatalf("valid stored value should survive: %+v", p)
	}
}

// ============================================================
// Mutation and persistence
// ============================================================

func TestSetPersistsImmediately(t *testing.T) {
	s, st := newTestStore(t)

	err := s.Set(func(p *Preferences) { p.Theme = "dark" })
	if err != nil {
		t.Fatal(err)
	}

	// Reload from the same storage: the change must already be durable.
	s2, err := NewStore(st)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Get().Theme != "dark" {
		t.Fatalf("mutation not persisted: %+v", s2.Get())
	}
}

func TestSetNotification(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.SetNotification("lowStock", true); err != nil {
		t.Fatal(err)
	}
	if !s.Get().Notifications.LowStock {
		t.Fatal("nested toggle not applied")
	}
	// Unknown keys are ignored, not an error.
	if err := s.SetNotification("nonsense", true); err != nil {
		t.Fatal(err)
	}
}

func TestResetIdempotent(t *testing.T) {
	s, st := newTestStore(t)
	s.Set(func(p *Preferences) {
		p.Theme = "dark"
		p.ItemsPerPage = 50
		p.Notifications.LowStock = true
	})

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	once, _ := st.LoadPreferences()

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	twice, _ := st.LoadPreferences()

	if once != twice {
		t.Fatalf("reset twice differs from once:\n%s\n%s", once, twice)
	}
	if s.Get() != Defaults() {
		t.Fatalf("reset should restore defaults, got %+v", s.Get())
	}
}

// ============================================================
// Change notifications
// ============================================================

func TestSubscribeReceivesChange(t *testing.T) {
	s, _ := newTestStore(t)

	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	s.Set(func(p *Preferences) { p.Theme = "dark" })

	select {
	case <-ch:
	default:
		t.Fatal("subscriber did not receive change signal")
	}
}

func TestNotifyNeverBlocksEmitter(t *testing.T) {
	s, _ := newTestStore(t)

	// Nobody drains this subscription; repeated mutations must still
	// return promptly.
	id, _ := s.Subscribe()
	defer s.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			s.Set(func(p *Preferences) { p.ItemsPerPage = 20 })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emitter blocked on an undrained subscriber")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	s, _ := newTestStore(t)

	id1, ch1 := s.Subscribe()
	id2, ch2 := s.Subscribe()
	defer s.Unsubscribe(id1)
	defer s.Unsubscribe(id2)

	s.Reset()

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		default:
			t.Fatalf("subscriber %d missed the signal", i+1)
		}
	}
}

func TestUnsubscribeStopsSignals(t *testing.T) {
	s, _ := newTestStore(t)

	id, ch := s.Subscribe()
	s.Unsubscribe(id)

	s.Set(func(p *Preferences) { p.Theme = "dark" })

	select {
	case <-ch:
		t.Fatal("unsubscribed channel still received a signal")
	default:
	}
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		format string
		want   string
	}{
		{"MM/DD/YYYY", "Jun 5, 2025"},
		{"DD/MM/YYYY", "05/06/2025"},
		{"YYYY-MM-DD", "2025-06-05"},
	}
	for _, c := range cases {
		p := Preferences{DateFormat: c.format}
		if got := p.FormatDate(d); got != c.want {
			t.Errorf("FormatDate(%s) = %q, want %q", c.format, got, c.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		currency string
		amount   float64
		want     string
	}{
		{"PKR", 1500, "PKR 1,500"},
		{"USD", 1234567, "$ 1,234,567"},
		{"EUR", 0, "€ 0"},
		{"GBP", 999, "£ 999"},
		{"JPY", 5, "JPY 5"},
	}
	for _, c := range cases {
		p := Preferences{Currency: c.currency}
		if got := p.FormatCurrency(c.amount); got != c.want {
			t.Errorf("FormatCurrency(%s, %v) = %q, want %q", c.currency, c.amount, got, c.want)
		}
	}
}
