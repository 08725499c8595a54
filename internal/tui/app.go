// Package tui is the terminal front end. A root App model gates on the
// session state and routes messages to per-view models; views own their
// loading lifecycle and cancel in-flight requests when switched away.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/prefs"
	"github.com/sadopc/storeflow/internal/session"
)

// App is the root model.
type App struct {
	session *session.Store
	prefs   *prefs.Store

	width  int
	height int

	active    viewState
	auth      authModel
	dashboard dashboardModel
	orders    ordersModel
	settings  settingsModel

	help     help.Model
	showHelp bool

	status        string
	statusIsError bool
	statusID      int

	prefsCh <-chan struct{}
}

// NewApp wires the views. The preference subscription stays alive for the
// life of the program.
func NewApp(sess *session.Store, gw *api.Client, ps *prefs.Store) App {
	_, ch := ps.Subscribe()
	return App{
		session:   sess,
		prefs:     ps,
		auth:      newAuthModel(sess),
		dashboard: newDashboardModel(sess, gw, ps),
		orders:    newOrdersModel(sess, gw, ps),
		settings:  newSettingsModel(sess, ps),
		help:      help.New(),
		prefsCh:   ch,
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForPrefs(a.prefsCh)}
	if a.session.Authenticated() {
		// A restored session lands on the preferred view once the
		// first WindowSizeMsg has been processed.
		cmds = append(cmds, func() tea.Msg { return restoredMsg{} })
	} else {
		cmds = append(cmds, a.auth.Init())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.auth.setSize(msg.Width, msg.Height)
		a.dashboard.setSize(msg.Width, msg.Height)
		a.orders.setSize(msg.Width, msg.Height)
		a.settings.setSize(msg.Width, msg.Height)
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusIsError = msg.isError
		a.statusID++
		id := a.statusID
		return a, tea.Tick(statusTTL, func(time.Time) tea.Msg {
			return statusExpiredMsg{id: id}
		})

	case statusExpiredMsg:
		if msg.id == a.statusID {
			a.status = ""
		}
		return a, nil

	case exportDoneMsg:
		return a, reportStatus("Exported to " + msg.path)

	case prefsChangedMsg:
		// Views read preferences at render time; just re-arm.
		return a, waitForPrefs(a.prefsCh)

	case refreshMsg:
		return a.loadActive()

	case restoredMsg:
		app, cmd := a.enterDefaultView()
		return app, cmd

	case authDoneMsg:
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		if msg.err != nil {
			return a, tea.Batch(cmd, reportError(msg.err))
		}
		app, loadCmd := a.enterDefaultView()
		welcome := "Welcome back, " + app.session.User().OwnerName
		if msg.registered {
			welcome = "Account created. Welcome, " + app.session.User().OwnerName
		}
		return app, tea.Batch(cmd, loadCmd, reportStatus(welcome))

	case profileSavedMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case ordersLoadedMsg:
		// Delivered to the view that issued the fetch, not whichever
		// one is active: seq counters are per-view and collide.
		var cmd tea.Cmd
		switch msg.origin {
		case viewDashboard:
			a.dashboard, cmd = a.dashboard.update(msg)
		case viewOrders:
			a.orders, cmd = a.orders.update(msg)
		}
		return a, cmd

	case spinner.TickMsg:
		if !a.session.Authenticated() {
			var cmd tea.Cmd
			a.auth, cmd = a.auth.update(msg)
			return a, cmd
		}
		return a.routeToActive(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Anything else (cursor blink, form internals) still belongs to
	// whoever owns an open form.
	if !a.session.Authenticated() {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}
	if a.activeCaptures() {
		return a.routeToActive(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, even inside a form.
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.session.Authenticated() {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}

	// A captured view (open form, picker, draft) gets keys before the
	// global bindings so typing "1" into an input works.
	if a.activeCaptures() {
		return a.routeToActive(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil

	case key.Matches(msg, keys.Logout):
		if err := a.session.Logout(); err != nil {
			return a, reportError(err)
		}
		a.active = viewDashboard
		a.dashboard = a.dashboard.unmount()
		a.orders = a.orders.unmount()
		a.auth = newAuthModel(a.session)
		a.auth.setSize(a.width, a.height)
		return a, tea.Batch(a.auth.Init(), reportStatus("Logged out"))

	case key.Matches(msg, keys.Tab1):
		return a.switchTo(viewDashboard)
	case key.Matches(msg, keys.Tab2):
		return a.switchTo(viewOrders)
	case key.Matches(msg, keys.Tab3):
		return a.switchTo(viewSettings)
	case key.Matches(msg, keys.Tab):
		return a.switchTo((a.active + 1) % viewState(len(viewNames)))
	}

	return a.routeToActive(msg)
}

// activeCaptures reports whether the active view wants raw key input.
func (a App) activeCaptures() bool {
	switch a.active {
	case viewOrders:
		return a.orders.formActive || a.orders.drafting || a.orders.exportPicking
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewOrders:
		a.orders, cmd = a.orders.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

// switchTo changes the active view, cancelling whatever the old one had
// in flight and loading the new one fresh.
func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	if v == a.active {
		return a, nil
	}
	switch a.active {
	case viewDashboard:
		a.dashboard = a.dashboard.unmount()
	case viewOrders:
		a.orders = a.orders.unmount()
	}
	a.active = v
	return a.loadActive()
}

func (a App) loadActive() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.startLoad()
	case viewOrders:
		a.orders, cmd = a.orders.startLoad()
	}
	return a, cmd
}

// enterDefaultView picks the landing view from preferences after a
// successful login or restore.
func (a App) enterDefaultView() (App, tea.Cmd) {
	var cmds []tea.Cmd
	switch a.prefs.Get().DefaultView {
	case "orders":
		a.active = viewOrders
	case "new-order":
		a.active = viewOrders
		var cmd tea.Cmd
		a.orders, cmd = a.orders.startDraft()
		cmds = append(cmds, cmd)
	default:
		a.active = viewDashboard
	}
	m, cmd := a.loadActive()
	app := m.(App)
	cmds = append(cmds, cmd)
	return app, tea.Batch(cmds...)
}

func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if !a.session.Authenticated() {
		return lipgloss.JoinVertical(lipgloss.Left, a.auth.view(), a.renderStatus())
	}

	var body string
	switch a.active {
	case viewDashboard:
		body = a.dashboard.view()
	case viewOrders:
		body = a.orders.view()
	case viewSettings:
		body = a.settings.view()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		body,
		a.renderStatus(),
		footerStyle.Render(a.help.View(keys)),
	)
}

func (a App) renderHeader() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.active {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}
	shop := ""
	if u := a.session.User(); u.ShopName != "" {
		shop = subtitleStyle.Render(u.ShopName)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, strings.Join(tabs, " "))
	if shop != "" {
		gap := a.width - lipgloss.Width(row) - lipgloss.Width(shop) - 2
		if gap > 0 {
			row += strings.Repeat(" ", gap) + shop
		}
	}
	return headerStyle.Render(row)
}

func (a App) renderStatus() string {
	if a.status == "" {
		return ""
	}
	if a.statusIsError {
		return errorStyle.Render("  ✗ " + a.status)
	}
	return successStyle.Render("  ✓ " + a.status)
}
