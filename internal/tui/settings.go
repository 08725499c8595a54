package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/prefs"
	"github.com/sadopc/storeflow/internal/session"
)

type settingsModel struct {
	session *session.Store
	prefs   *prefs.Store
	width   int
	height  int

	formActive bool
	form       *huh.Form
	formType   string // "prefs", "profile"

	// Preference form fields
	theme        *string
	dashView     *string
	dateFormat   *string
	currency     *string
	perPage      *string
	showGraph    *bool
	showToday    *bool
	showRevenue  *bool
	defaultView  *string
	notifyOrder  *bool
	notifyStock  *bool
	notifyDaily  *bool

	// Profile form fields
	shopName  *string
	ownerName *string
	phone     *string
	address   *string

	saving bool
}

func newSettingsModel(sess *session.Store, ps *prefs.Store) settingsModel {
	m := settingsModel{session: sess, prefs: ps}

	theme, dash, date, cur, per, dview := "", "", "", "", "", ""
	graph, today, revenue, nOrder, nStock, nDaily := false, false, false, false, false, false
	shop, owner, phone, addr := "", "", "", ""

	m.theme, m.dashView, m.dateFormat, m.currency = &theme, &dash, &date, &cur
	m.perPage, m.defaultView = &per, &dview
	m.showGraph, m.showToday, m.showRevenue = &graph, &today, &revenue
	m.notifyOrder, m.notifyStock, m.notifyDaily = &nOrder, &nStock, &nDaily
	m.shopName, m.ownerName, m.phone, m.address = &shop, &owner, &phone, &addr
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func selectOptions(options []string) []huh.Option[string] {
	out := make([]huh.Option[string], len(options))
	for i, o := range options {
		out[i] = huh.NewOption(o, o)
	}
	return out
}

func (s settingsModel) showPrefsForm() (settingsModel, tea.Cmd) {
	p := s.prefs.Get()
	*s.theme = p.Theme
	*s.dashView = p.DashboardView
	*s.dateFormat = p.DateFormat
	*s.currency = p.Currency
	*s.perPage = strconv.Itoa(p.ItemsPerPage)
	*s.showGraph = p.ShowActivityGraph
	*s.showToday = p.ShowTodayOrders
	*s.showRevenue = p.ShowRevenue
	*s.defaultView = p.DefaultView
	*s.notifyOrder = p.Notifications.NewOrder
	*s.notifyStock = p.Notifications.LowStock
	*s.notifyDaily = p.Notifications.DailySummary

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(selectOptions(prefs.Themes)...).Value(s.theme),
			huh.NewSelect[string]().Title("Date Format").
				Options(selectOptions(prefs.DateFormats)...).Value(s.dateFormat),
			huh.NewSelect[string]().Title("Currency").
				Options(selectOptions(prefs.Currencies)...).Value(s.currency),
			huh.NewInput().Title("Orders Per Page").Value(s.perPage).
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n < 1 || n > 100 {
						return fmt.Errorf("must be a number between 1 and 100")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Default View").
				Options(selectOptions(prefs.DefaultViews)...).Value(s.defaultView),
		).Title("General"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Dashboard Layout").
				Options(selectOptions(prefs.DashboardViews)...).Value(s.dashView),
			huh.NewConfirm().Title("Show Activity Graph").Value(s.showGraph),
			huh.NewConfirm().Title("Show Today's Orders").Value(s.showToday),
			huh.NewConfirm().Title("Show Revenue").Value(s.showRevenue),
		).Title("Dashboard"),
		huh.NewGroup(
			huh.NewConfirm().Title("New Order Alerts").Value(s.notifyOrder),
			huh.NewConfirm().Title("Low Stock Alerts").Value(s.notifyStock),
			huh.NewConfirm().Title("Daily Summary").Value(s.notifyDaily),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.formType = "prefs"
	return s, s.form.Init()
}

func (s settingsModel) showProfileForm() (settingsModel, tea.Cmd) {
	u := s.session.User()
	*s.shopName = u.ShopName
	*s.ownerName = u.OwnerName
	*s.phone = u.Phone
	*s.address = u.Address

	required := func(field string) func(string) error {
		return func(v string) error {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Shop Name").Value(s.shopName).
				Validate(required("shop name")),
			huh.NewInput().Title("Owner Name").Value(s.ownerName).
				Validate(required("owner name")),
			huh.NewInput().Title("Phone").Value(s.phone),
			huh.NewInput().Title("Address").Value(s.address),
			huh.NewNote().Description("Email cannot be changed."),
		).Title("Edit Profile"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.formType = "profile"
	return s, s.form.Init()
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profileSavedMsg:
		s.saving = false
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, reportStatus("Profile updated")

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showPrefsForm()
		case key.Matches(msg, keys.Profile):
			return s.showProfileForm()
		case key.Matches(msg, keys.Reset):
			if err := s.prefs.Reset(); err != nil {
				return s, reportError(err)
			}
			return s, reportStatus("Settings reset to defaults")
		}
	}
	return s, nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		switch s.formType {
		case "prefs":
			return s.applyPrefs()
		case "profile":
			return s.submitProfile()
		}
	}
	return s, cmd
}

func (s settingsModel) applyPrefs() (settingsModel, tea.Cmd) {
	perPage, _ := strconv.Atoi(*s.perPage)
	err := s.prefs.Set(func(p *prefs.Preferences) {
		p.Theme = *s.theme
		p.DashboardView = *s.dashView
		p.DateFormat = *s.dateFormat
		p.Currency = *s.currency
		p.ItemsPerPage = perPage
		p.ShowActivityGraph = *s.showGraph
		p.ShowTodayOrders = *s.showToday
		p.ShowRevenue = *s.showRevenue
		p.DefaultView = *s.defaultView
		p.Notifications.NewOrder = *s.notifyOrder
		p.Notifications.LowStock = *s.notifyStock
		p.Notifications.DailySummary = *s.notifyDaily
	})
	if err != nil {
		return s, reportError(err)
	}
	return s, reportStatus("Settings saved")
}

func (s settingsModel) submitProfile() (settingsModel, tea.Cmd) {
	s.saving = true
	sess := s.session
	fields := api.ProfileUpdate{
		ShopName:  strings.TrimSpace(*s.shopName),
		OwnerName: strings.TrimSpace(*s.ownerName),
		Phone:     strings.TrimSpace(*s.phone),
		Address:   strings.TrimSpace(*s.address),
	}
	return s, func() tea.Msg {
		err := sess.UpdateProfile(context.Background(), fields)
		return profileSavedMsg{err: err}
	}
}

func (s settingsModel) view() string {
	if s.width < 20 {
		return "Terminal too small"
	}
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := "Settings"
		if s.formType == "profile" {
			title = "Edit Profile"
		}
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", s.form.View()),
		)
	}

	p := s.prefs.Get()
	u := s.session.User()

	onOff := func(b bool) string {
		if b {
			return successStyle.Render("on")
		}
		return mutedStyle.Render("off")
	}
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", subtitleStyle.Render(fmt.Sprintf("%-22s", label)), value)
	}

	profile := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Profile"),
		"",
		row("Shop", u.ShopName),
		row("Owner", u.OwnerName),
		row("Email", u.Email),
		row("Phone", u.Phone),
		row("Address", u.Address),
	)

	general := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Preferences"),
		"",
		row("Theme", p.Theme),
		row("Date format", p.DateFormat),
		row("Currency", p.Currency),
		row("Orders per page", strconv.Itoa(p.ItemsPerPage)),
		row("Default view", p.DefaultView),
		row("Dashboard layout", p.DashboardView),
		row("Activity graph", onOff(p.ShowActivityGraph)),
		row("Today's orders", onOff(p.ShowTodayOrders)),
		row("Revenue", onOff(p.ShowRevenue)),
	)

	notifications := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Notifications"),
		"",
		row("New order", onOff(p.Notifications.NewOrder)),
		row("Low stock", onOff(p.Notifications.LowStock)),
		row("Daily summary", onOff(p.Notifications.DailySummary)),
	)

	var status string
	if s.saving {
		status = mutedStyle.Render("Saving profile...")
	} else {
		status = mutedStyle.Render("  enter: edit settings  p: edit profile  R: reset defaults")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		profile, "", general, "", notifications, "", status,
	)
	return panelStyle.Width(w).Render(content)
}
