package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/storeflow/internal/activity"
	"github.com/sadopc/storeflow/internal/api"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewOrders
	viewSettings
)

var viewNames = []string{"Dashboard", "Orders", "Settings"}

// statusTTL is how long a transient banner stays visible.
const statusTTL = 3 * time.Second

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type statusExpiredMsg struct {
	id int
}

// refreshMsg asks the active view to (re)load its data.
type refreshMsg struct{}

// restoredMsg is emitted once at startup when a persisted token made the
// session authenticated without a login round trip.
type restoredMsg struct{}

// authDoneMsg reports the outcome of a login or register submission.
type authDoneMsg struct {
	err        error
	registered bool
}

// ordersLoadedMsg carries a completed order fetch. origin names the view
// that issued the request and seq its generation within that view; the
// result is delivered only to its origin, which drops seqs it no longer
// expects. Both are needed: seq alone collides across views.
type ordersLoadedMsg struct {
	origin viewState
	seq    int
	orders []activity.Order
	err    error
}

// profileSavedMsg reports the outcome of a profile update.
type profileSavedMsg struct {
	err error
}

// prefsChangedMsg is delivered whenever the preferences store notifies.
type prefsChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// waitForPrefs blocks on the preference store's change channel and turns
// each signal into a message. Re-arm it after every delivery.
func waitForPrefs(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return prefsChangedMsg{}
	}
}

func reportStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}

func reportError(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: errorText(err), isError: true}
	}
}

// errorText maps a failure to the banner text the user sees.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	switch api.KindOf(err) {
	case api.KindTimeout:
		return "Request timeout. Please check your internet connection."
	case api.KindUnauthorized:
		return "Session expired. Please log in again."
	case api.KindServer:
		return "Server error. Please try again later."
	default:
		return err.Error()
	}
}

// pageCount returns how many pages a list of n items spans at the given
// page size.
func pageCount(n, perPage int) int {
	if n == 0 || perPage <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// pageBounds clamps a page index and returns the slice bounds for it.
func pageBounds(n, perPage, page int) (int, int) {
	if perPage <= 0 {
		return 0, n
	}
	last := pageCount(n, perPage) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	start := page * perPage
	end := min(start+perPage, n)
	return start, end
}
