// Package prefs holds the user-configurable display options. The store
// persists the full object on every change and notifies subscribers
// through buffered channels, so a settings edit in one view reaches an
// already-mounted dashboard without the two sharing state.
package prefs

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// SchemaVersion is stamped into every persisted object. Loading older or
// unversioned data falls back to defaults field by field.
const SchemaVersion = 1

// Notifications are the alert toggles.
type Notifications struct {
	NewOrder     bool `json:"newOrder"`
	LowStock     bool `json:"lowStock"`
	DailySummary bool `json:"dailySummary"`
}

// Preferences is the persisted settings object.
type Preferences struct {
	Version           int           `json:"version"`
	Theme             string        `json:"theme"`
	DashboardView     string        `json:"dashboardView"`
	DateFormat        string        `json:"dateFormat"`
	Currency          string        `json:"currency"`
	ItemsPerPage      int           `json:"itemsPerPage"`
	ShowActivityGraph bool          `json:"showActivityGraph"`
	ShowTodayOrders   bool          `json:"showTodayOrders"`
	ShowRevenue       bool          `json:"showRevenue"`
	DefaultView       string        `json:"defaultView"`
	Notifications     Notifications `json:"notifications"`
}

// Option sets for validated fields.
var (
	Themes         = []string{"light", "dark", "auto"}
	DashboardViews = []string{"cards", "list", "compact"}
	DateFormats    = []string{"MM/DD/YYYY", "DD/MM/YYYY", "YYYY-MM-DD"}
	Currencies     = []string{"PKR", "USD", "EUR", "GBP"}
	DefaultViews   = []string{"dashboard", "orders", "new-order"}
)

// Defaults returns the hard-coded default preferences.
func Defaults() Preferences {
	return Preferences{
		Version:           SchemaVersion,
		Theme:             "light",
		DashboardView:     "cards",
		DateFormat:        "MM/DD/YYYY",
		Currency:          "PKR",
		ItemsPerPage:      10,
		ShowActivityGraph: true,
		ShowTodayOrders:   true,
		ShowRevenue:       true,
		DefaultView:       "dashboard",
		Notifications: Notifications{
			NewOrder:     true,
			LowStock:     false,
			DailySummary: true,
		},
	}
}

// FormatDate renders t per the configured date format.
func (p Preferences) FormatDate(t time.Time) string {
	switch p.DateFormat {
	case "DD/MM/YYYY":
		return t.Format("02/01/2006")
	case "YYYY-MM-DD":
		return t.Format("2006-01-02")
	default: // MM/DD/YYYY
		return t.Format("Jan 2, 2006")
	}
}

var currencySymbols = map[string]string{
	"PKR": "PKR",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatCurrency renders an amount with the configured currency symbol.
func (p Preferences) FormatCurrency(amount float64) string {
	symbol, ok := currencySymbols[p.Currency]
	if !ok {
		symbol = p.Currency
	}
	return symbol + " " + groupThousands(amount)
}

// groupThousands renders 1234567.5 as "1,234,568" (whole units, like the
// dashboard's revenue counter).
func groupThousands(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%.0f", amount)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// Storage is the durable slot the serialized preferences live in.
type Storage interface {
	LoadPreferences() (string, error)
	SavePreferences(serialized string) error
}

// Store is the observable preferences store. It is injected into each view
// rather than accessed through globals.
type Store struct {
	storage Storage

	mu      sync.Mutex
	current Preferences
	nextID  int
	subs    map[int]chan struct{}
}

// NewStore loads the persisted preferences, merging them over defaults so
// absent or stale fields never crash the client.
func NewStore(storage Storage) (*Store, error) {
	s := &Store{
		storage: storage,
		subs:    make(map[int]chan struct{}),
	}

	raw, err := storage.LoadPreferences()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	s.current = merge(raw)
	return s, nil
}

// merge unmarshals raw over the defaults and validates choice fields, so
// unknown values fall back rather than propagate.
func merge(raw string) Preferences {
	p := Defaults()
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return Defaults()
		}
	}
	normalize(&p)
	return p
}

func normalize(p *Preferences) {
	d := Defaults()
	if !contains(Themes, p.Theme) {
		p.Theme = d.Theme
	}
	if !contains(DashboardViews, p.DashboardView) {
		p.DashboardView = d.DashboardView
	}
	if !contains(DateFormats, p.DateFormat) {
		p.DateFormat = d.DateFormat
	}
	if !contains(Currencies, p.Currency) {
		p.Currency = d.Currency
	}
	if !contains(DefaultViews, p.DefaultView) {
		p.DefaultView = d.DefaultView
	}
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = d.ItemsPerPage
	}
	p.Version = SchemaVersion
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set applies mutate to the current preferences, persists the full object
// synchronously, and notifies subscribers.
func (s *Store) Set(mutate func(*Preferences)) error {
	s.mu.Lock()
	next := s.current
	mutate(&next)
	normalize(&next)

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := s.storage.SavePreferences(string(data)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist preferences: %w", err)
	}
	s.current = next
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// SetNotification updates one toggle in the notifications category.
func (s *Store) SetNotification(key string, on bool) error {
	return s.Set(func(p *Preferences) {
		switch key {
		case "newOrder":
			p.Notifications.NewOrder = on
		case "lowStock":
			p.Notifications.LowStock = on
		case "dailySummary":
			p.Notifications.DailySummary = on
		}
	})
}

// Reset restores the hard-coded defaults. Resetting twice persists the
// same object as once.
func (s *Store) Reset() error {
	return s.Set(func(p *Preferences) {
		*p = Defaults()
	})
}

// Subscribe registers a change listener. The returned channel receives a
// signal after every mutation; the send never blocks, so a slow listener
// only coalesces signals, it cannot stall the emitter.
func (s *Store) Subscribe() (int, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener. Call it on view teardown.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
