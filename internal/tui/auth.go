package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/session"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// authModel is the gate in front of everything else: it renders the login
// or register form until the session is authenticated.
type authModel struct {
	session *session.Store
	width   int
	height  int

	mode       authMode
	form       *huh.Form
	submitting bool
	spin       spinner.Model

	// Form values as pointers (survive value copies)
	email    *string
	password *string

	shopName    *string
	ownerName   *string
	regEmail    *string
	phone       *string
	address     *string
	regPassword *string
	confirm     *string
}

func newAuthModel(sess *session.Store) authModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	e, pw := "", ""
	sn, on, re, ph, ad, rp, cf := "", "", "", "", "", "", ""
	m := authModel{
		session:     sess,
		spin:        sp,
		email:       &e,
		password:    &pw,
		shopName:    &sn,
		ownerName:   &on,
		regEmail:    &re,
		phone:       &ph,
		address:     &ad,
		regPassword: &rp,
		confirm:     &cf,
	}
	m.form = m.buildForm()
	return m
}

func (m authModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *authModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m authModel) buildForm() *huh.Form {
	if m.mode == modeLogin {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Email").Value(m.email),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
			).Title("Login"),
		).WithShowHelp(true).WithShowErrors(true)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Shop Name").Value(m.shopName),
			huh.NewInput().Title("Owner Name").Value(m.ownerName),
			huh.NewInput().Title("Email").Value(m.regEmail),
			huh.NewInput().Title("Phone Number").Value(m.phone),
			huh.NewInput().Title("Shop Address").Value(m.address),
		).Title("Create Shopkeeper Account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").
				Description("Minimum 6 characters").
				EchoMode(huh.EchoModePassword).Value(m.regPassword),
			huh.NewInput().Title("Confirm Password").
				EchoMode(huh.EchoModePassword).Value(m.confirm),
		).Title("Credentials"),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			// Fresh form so the user can retry.
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if key.Matches(msg, keys.Switch) {
			return m.switchMode()
		}
	}

	if m.submitting || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, tea.Batch(m.spin.Tick, m.submit())
	}
	return m, cmd
}

func (m authModel) switchMode() (authModel, tea.Cmd) {
	if m.mode == modeLogin {
		m.mode = modeRegister
	} else {
		m.mode = modeLogin
	}
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m authModel) submit() tea.Cmd {
	sess := m.session

	if m.mode == modeLogin {
		email, password := strings.TrimSpace(*m.email), *m.password
		return func() tea.Msg {
			err := sess.Login(context.Background(), email, password)
			return authDoneMsg{err: err}
		}
	}

	reg := api.RegisterRequest{
		ShopName:  strings.TrimSpace(*m.shopName),
		OwnerName: strings.TrimSpace(*m.ownerName),
		Email:     strings.TrimSpace(*m.regEmail),
		Password:  *m.regPassword,
		Phone:     strings.TrimSpace(*m.phone),
		Address:   strings.TrimSpace(*m.address),
	}
	confirm := *m.confirm
	return func() tea.Msg {
		err := sess.Register(context.Background(), reg, confirm)
		return authDoneMsg{err: err, registered: true}
	}
}

func (m authModel) view() string {
	w := m.width - 4
	if w < 30 {
		w = 30
	}

	title := titleStyle.Render("StoreFlow")
	subtitle := subtitleStyle.Render("Sign in to manage your orders")
	hint := mutedStyle.Render("ctrl+r: switch to register")
	if m.mode == modeRegister {
		subtitle = subtitleStyle.Render("Register to start managing your orders")
		hint = mutedStyle.Render("ctrl+r: switch to login")
	}

	var body string
	if m.submitting {
		verb := "Signing in..."
		if m.mode == modeRegister {
			verb = "Creating account..."
		}
		body = m.spin.View() + " " + verb
	} else {
		body = m.form.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", body, "", hint)
	panel := activePanelStyle.Width(min(w, 64)).Render(content)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
	}
	return panel
}
