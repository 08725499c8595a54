package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/activity"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/prefs"
	"github.com/sadopc/storeflow/internal/session"
)

const recentDays = 7

type dashboardModel struct {
	session *session.Store
	gw      *api.Client
	prefs   *prefs.Store
	width   int
	height  int

	loading bool
	loaded  bool
	seq     int // request generation; stale fetches are dropped
	cancel  context.CancelFunc
	spin    spinner.Model

	orders   []activity.Order
	stats    activity.Stats
	grid     activity.Grid
	chart    barchart.Model
	fetchErr error
}

func newDashboardModel(sess *session.Store, gw *api.Client, ps *prefs.Store) dashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)
	return dashboardModel{
		session: sess,
		gw:      gw,
		prefs:   ps,
		spin:    sp,
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// startLoad issues an order fetch. A previous in-flight request is
// cancelled and its eventual result discarded via the seq guard, so a
// superseded fetch can never apply stale data.
func (d dashboardModel) startLoad() (dashboardModel, tea.Cmd) {
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.seq++
	d.loading = true

	seq := d.seq
	token := d.session.Token()
	gw := d.gw
	fetch := func() tea.Msg {
		orders, err := gw.FetchOrders(ctx, token)
		return ordersLoadedMsg{origin: viewDashboard, seq: seq, orders: orders, err: err}
	}
	return d, tea.Batch(d.spin.Tick, fetch)
}

// unmount cancels any in-flight fetch when the view is left. The seq bump
// invalidates the cancelled request's eventual result so it cannot apply
// a context-cancelled error to the hidden view.
func (d dashboardModel) unmount() dashboardModel {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
		d.seq++
		d.loading = false
	}
	return d
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		if msg.seq != d.seq {
			// A newer request superseded this one.
			return d, nil
		}
		d.loading = false
		d.loaded = true
		if msg.err != nil {
			d.fetchErr = msg.err
			return d, reportError(msg.err)
		}
		d.fetchErr = nil
		d.orders = msg.orders
		d.recompute(time.Now())
		return d, nil

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spin, cmd = d.spin.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			return d.startLoad()
		}
	}
	return d, nil
}

// recompute rebuilds every derived structure from the order list. The
// grid is always regenerated whole, never patched.
func (d *dashboardModel) recompute(now time.Time) {
	d.stats = activity.ComputeStats(d.orders, now)
	d.grid = activity.BuildGrid(d.orders, now)
	d.buildChart(activity.DayCounts(d.orders, now, recentDays))
}

func (d *dashboardModel) buildChart(counts []activity.DayCount) {
	chartWidth := d.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if d.height > 34 {
		chartHeight = 10
	}

	d.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, c := range counts {
		style := lipgloss.NewStyle().Foreground(colorSecondary)
		if c.Count == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: c.Date.Format("Mon"),
			Values: []barchart.BarValue{
				{Name: "orders", Value: float64(c.Count), Style: style},
			},
		})
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4
	p := d.prefs.Get()

	if d.loading && !d.loaded {
		return panelStyle.Width(w).Render(d.spin.View() + " Loading dashboard...")
	}

	if d.fetchErr != nil && len(d.orders) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render("Could not load orders"),
			subtitleStyle.Render(errorText(d.fetchErr)),
			"",
			mutedStyle.Render("r: retry"),
		))
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Dashboard"),
		subtitleStyle.Render("Overview of your store's performance"),
	)

	sections := []string{header, d.renderStats(w, p)}

	if p.ShowActivityGraph {
		sections = append(sections, d.renderActivityPanel(w, p))
	}
	sections = append(sections, d.renderRecentChart(w))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// statEntry is one dashboard figure; hidden entries are filtered out
// before rendering.
type statEntry struct {
	label string
	value string
	show  bool
}

func (d dashboardModel) visibleStats(p prefs.Preferences) []statEntry {
	all := []statEntry{
		{label: "Total Customers", value: fmt.Sprintf("%d", d.stats.TotalCustomers), show: true},
		{label: "Total Orders", value: fmt.Sprintf("%d", d.stats.TotalOrders), show: true},
		{label: "Total Revenue", value: p.FormatCurrency(d.stats.TotalRevenue), show: p.ShowRevenue},
		{label: "Today's Orders", value: fmt.Sprintf("%d", d.stats.TodayOrders), show: p.ShowTodayOrders},
	}
	visible := all[:0]
	for _, st := range all {
		if st.show {
			visible = append(visible, st)
		}
	}
	return visible
}

func (d dashboardModel) renderStats(w int, p prefs.Preferences) string {
	stats := d.visibleStats(p)

	switch p.DashboardView {
	case "list":
		var rows []string
		for _, st := range stats {
			rows = append(rows, fmt.Sprintf("  %s %s",
				padRight(subtitleStyle.Render(st.label), 22),
				highlightStyle.Render(st.value)))
		}
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))

	case "compact":
		var parts []string
		for _, st := range stats {
			parts = append(parts, fmt.Sprintf("%s: %s",
				subtitleStyle.Render(st.label), highlightStyle.Render(st.value)))
		}
		return panelStyle.Width(w).Render(strings.Join(parts, "   "))

	default: // cards
		cardWidth := (w / len(stats)) - 4
		if cardWidth < 14 {
			cardWidth = 14
		}
		var cards []string
		for _, st := range stats {
			cards = append(cards, panelStyle.Width(cardWidth).Render(
				lipgloss.JoinVertical(lipgloss.Left,
					highlightStyle.Bold(true).Render(st.value),
					subtitleStyle.Render(st.label),
				),
			))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
}

func (d dashboardModel) renderActivityPanel(w int, p prefs.Preferences) string {
	title := titleStyle.Render("Order Activity")
	heatmap := renderHeatmap(d.grid, w-6)

	var footer string
	if last := lastNonEmptyCell(d.grid); last != nil {
		footer = subtitleStyle.Render(fmt.Sprintf("Last order day: %s (%d orders)",
			p.FormatDate(last.Date), last.Count))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", heatmap)
	if footer != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, footer)
	}
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderRecentChart(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Last %d Days", recentDays))
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", d.chart.View()),
	)
}

// lastNonEmptyCell returns the most recent grid cell with orders, if any.
func lastNonEmptyCell(g activity.Grid) *activity.Cell {
	for w := len(g.Weeks) - 1; w >= 0; w-- {
		days := g.Weeks[w].Days
		for dIdx := len(days) - 1; dIdx >= 0; dIdx-- {
			if days[dIdx].Count > 0 {
				return &days[dIdx]
			}
		}
	}
	return nil
}
