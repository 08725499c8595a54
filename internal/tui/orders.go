package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/activity"
	"github.com/sadopc/storeflow/internal/api"
	"github.com/sadopc/storeflow/internal/cart"
	"github.com/sadopc/storeflow/internal/export"
	"github.com/sadopc/storeflow/internal/prefs"
	"github.com/sadopc/storeflow/internal/session"
)

type ordersModel struct {
	session *session.Store
	gw      *api.Client
	prefs   *prefs.Store
	width   int
	height  int

	loading bool
	loaded  bool
	seq     int
	cancel  context.CancelFunc
	spin    spinner.Model

	orders []activity.Order
	page   int
	cursor int

	// New-order draft
	drafting      bool
	draftCustomer string
	cart          *cart.Cart
	cartCursor    int

	formActive bool
	form       *huh.Form
	formType   string // "customer", "item"

	// Form field pointers (survive value copies)
	formCustomer *string
	itemID       *string
	itemTitle    *string
	itemPrice    *string
	itemImage    *string

	exportPicking bool
	exportCursor  int
}

func newOrdersModel(sess *session.Store, gw *api.Client, ps *prefs.Store) ordersModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	cust, id, title, price, image := "", "", "", "", ""
	return ordersModel{
		session:      sess,
		gw:           gw,
		prefs:        ps,
		spin:         sp,
		cart:         cart.New(),
		formCustomer: &cust,
		itemID:       &id,
		itemTitle:    &title,
		itemPrice:    &price,
		itemImage:    &image,
	}
}

func (o *ordersModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o ordersModel) startLoad() (ordersModel, tea.Cmd) {
	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	o.seq++
	o.loading = true

	seq := o.seq
	token := o.session.Token()
	gw := o.gw
	fetch := func() tea.Msg {
		orders, err := gw.FetchOrders(ctx, token)
		return ordersLoadedMsg{origin: viewOrders, seq: seq, orders: orders, err: err}
	}
	return o, tea.Batch(o.spin.Tick, fetch)
}

// unmount cancels any in-flight fetch when the view is left; the seq bump
// keeps the cancelled request's result from applying to the hidden view.
func (o ordersModel) unmount() ordersModel {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
		o.seq++
		o.loading = false
	}
	return o
}

func (o ordersModel) update(msg tea.Msg) (ordersModel, tea.Cmd) {
	if o.formActive && o.form != nil {
		return o.updateForm(msg)
	}

	switch msg := msg.(type) {
	case ordersLoadedMsg:
		if msg.seq != o.seq {
			return o, nil
		}
		o.loading = false
		o.loaded = true
		if msg.err != nil {
			return o, reportError(msg.err)
		}
		o.orders = msg.orders
		o.page = 0
		o.cursor = 0
		return o, nil

	case spinner.TickMsg:
		if !o.loading {
			return o, nil
		}
		var cmd tea.Cmd
		o.spin, cmd = o.spin.Update(msg)
		return o, cmd

	case tea.KeyMsg:
		if o.exportPicking {
			return o.updateExportPicker(msg)
		}
		if o.drafting {
			return o.updateDraft(msg)
		}
		return o.updateList(msg)
	}
	return o, nil
}

func (o ordersModel) updateList(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	perPage := o.prefs.Get().ItemsPerPage
	pages := pageCount(len(o.orders), perPage)

	switch {
	case key.Matches(msg, keys.Refresh):
		return o.startLoad()

	case key.Matches(msg, keys.New):
		return o.startDraft()

	case key.Matches(msg, keys.Export):
		o.exportPicking = true
		o.exportCursor = 0

	case key.Matches(msg, keys.Left):
		if o.page > 0 {
			o.page--
			o.cursor = 0
		}

	case key.Matches(msg, keys.Right):
		if o.page < pages-1 {
			o.page++
			o.cursor = 0
		}

	case key.Matches(msg, keys.Up):
		if o.cursor > 0 {
			o.cursor--
		}

	case key.Matches(msg, keys.Down):
		start, end := pageBounds(len(o.orders), perPage, o.page)
		if o.cursor < end-start-1 {
			o.cursor++
		}
	}
	return o, nil
}

// startDraft opens a fresh order draft beginning with the customer form.
func (o ordersModel) startDraft() (ordersModel, tea.Cmd) {
	o.drafting = true
	o.draftCustomer = ""
	o.cart = cart.New()
	o.cartCursor = 0
	return o.showCustomerForm()
}

func (o ordersModel) updateDraft(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.New):
		return o.showItemForm()

	case key.Matches(msg, keys.Delete):
		items := o.cart.Items()
		if o.cartCursor < len(items) {
			o.cart.Remove(items[o.cartCursor].ProductID)
			if o.cartCursor >= o.cart.Count() && o.cartCursor > 0 {
				o.cartCursor--
			}
		}

	case key.Matches(msg, keys.Clear):
		o.cart.Clear()
		o.cartCursor = 0

	case key.Matches(msg, keys.Up):
		if o.cartCursor > 0 {
			o.cartCursor--
		}

	case key.Matches(msg, keys.Down):
		if o.cartCursor < o.cart.Count()-1 {
			o.cartCursor++
		}

	case key.Matches(msg, keys.Enter):
		if o.cart.Count() == 0 {
			return o, reportStatus("Add at least one item first")
		}
		// TODO: submit the draft via POST /api/orders once the API
		// exposes order creation.
		p := o.prefs.Get()
		text := fmt.Sprintf("Draft for %s: %d items, %s",
			o.draftCustomer, o.cart.Count(), p.FormatCurrency(o.cart.TotalPrice()))
		o.drafting = false
		return o, reportStatus(text)

	case key.Matches(msg, keys.Back):
		o.drafting = false
		o.cart.Clear()
	}
	return o, nil
}

func (o ordersModel) showCustomerForm() (ordersModel, tea.Cmd) {
	*o.formCustomer = ""
	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Customer Name").Value(o.formCustomer).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("customer name is required")
					}
					return nil
				}),
		).Title("New Order"),
	).WithShowHelp(true).WithShowErrors(true)
	o.formActive = true
	o.formType = "customer"
	return o, o.form.Init()
}

func (o ordersModel) showItemForm() (ordersModel, tea.Cmd) {
	*o.itemID, *o.itemTitle, *o.itemPrice, *o.itemImage = "", "", "", ""
	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Product ID").Value(o.itemID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("product id is required")
					}
					return nil
				}),
			huh.NewInput().Title("Title").Value(o.itemTitle),
			huh.NewInput().Title("Price").Value(o.itemPrice).
				Validate(func(s string) error {
					if _, err := strconv.ParseFloat(s, 64); err != nil {
						return fmt.Errorf("price must be a number")
					}
					return nil
				}),
			huh.NewInput().Title("Image URL").Value(o.itemImage),
		).Title("Add Item"),
	).WithShowHelp(true).WithShowErrors(true)
	o.formActive = true
	o.formType = "item"
	return o, o.form.Init()
}

func (o ordersModel) updateForm(msg tea.Msg) (ordersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			o.formActive = false
			o.form = nil
			if o.formType == "customer" {
				o.drafting = false
			}
			return o, nil
		}
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		o.formActive = false
		switch o.formType {
		case "customer":
			o.draftCustomer = strings.TrimSpace(*o.formCustomer)
			return o, nil
		case "item":
			price, _ := strconv.ParseFloat(*o.itemPrice, 64)
			err := o.cart.Add(cart.Item{
				ProductID: strings.TrimSpace(*o.itemID),
				Title:     strings.TrimSpace(*o.itemTitle),
				Price:     price,
				Image:     strings.TrimSpace(*o.itemImage),
			})
			if err != nil {
				return o, func() tea.Msg {
					return statusMsg{text: "Item already in cart!", isError: true}
				}
			}
			return o, nil
		}
	}
	return o, cmd
}

func (o ordersModel) updateExportPicker(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if o.exportCursor > 0 {
			o.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if o.exportCursor < 1 {
			o.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		o.exportPicking = false
		return o, o.doExport(o.exportCursor)
	case key.Matches(msg, keys.Back):
		o.exportPicking = false
	}
	return o, nil
}

func (o ordersModel) doExport(format int) tea.Cmd {
	orders := o.orders
	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		var err error
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("storeflow-orders-%s.csv", dateStr))
			err = export.ToCSV(orders, path)
		} else {
			path = filepath.Join(home, fmt.Sprintf("storeflow-orders-%s.json", dateStr))
			err = export.ToJSON(orders, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (o ordersModel) view() string {
	if o.width < 20 {
		return "Terminal too small"
	}
	w := o.width - 4

	if o.formActive && o.form != nil {
		title := "New Order"
		if o.formType == "item" {
			title = "Add Item"
		}
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", o.form.View()),
		)
	}

	if o.exportPicking {
		return o.renderExportPicker(w)
	}

	if o.drafting {
		return o.renderDraft(w)
	}

	return o.renderList(w)
}

func (o ordersModel) renderList(w int) string {
	if o.loading && !o.loaded {
		return panelStyle.Width(w).Render(o.spin.View() + " Loading orders...")
	}

	p := o.prefs.Get()
	title := titleStyle.Render("Orders")

	if len(o.orders) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No orders yet"),
			"",
			mutedStyle.Render("  n: new order  r: refresh"),
		)
		return panelStyle.Width(w).Render(content)
	}

	start, end := pageBounds(len(o.orders), p.ItemsPerPage, o.page)
	pages := pageCount(len(o.orders), p.ItemsPerPage)
	pageLabel := mutedStyle.Render(fmt.Sprintf("page %d/%d (%d orders)", o.page+1, pages, len(o.orders)))

	var rows []string
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", pageLabel))
	rows = append(rows, "")
	for i, ord := range o.orders[start:end] {
		cursor := "  "
		style := normalItemStyle
		if i == o.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		when := ord.OrderTime
		if t, err := time.Parse(time.RFC3339, ord.OrderTime); err == nil {
			when = p.FormatDate(t)
		}
		row := fmt.Sprintf("%s%-20s %-14s %2d items  %s",
			cursor, truncate(ord.CustomerName, 20), when, len(ord.Products),
			p.FormatCurrency(ord.Total()))
		rows = append(rows, style.Render(row))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new order  e: export  ←/→: page  r: refresh"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (o ordersModel) renderDraft(w int) string {
	p := o.prefs.Get()
	title := titleStyle.Render("New Order")
	customer := highlightStyle.Render(o.draftCustomer)

	var rows []string
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", customer))
	rows = append(rows, "")

	items := o.cart.Items()
	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("  Cart is empty. Press n to add an item."))
	}
	for i, it := range items {
		cursor := "  "
		style := normalItemStyle
		if i == o.cartCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %s",
			cursor, truncate(it.Title, 24), p.FormatCurrency(it.Price))))
	}

	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s",
		subtitleStyle.Render("Total:"),
		highlightStyle.Render(p.FormatCurrency(o.cart.TotalPrice()))))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add item  d: remove  c: clear  enter: save draft  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (o ordersModel) renderExportPicker(w int) string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == o.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// truncate shortens s to at most n runes, ending with an ellipsis when
// anything was cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
