// Package activity turns a raw order list into the dashboard's derived
// structures: the 52-week calendar grid behind the heatmap, the summary
// stats, and the per-day counts feeding the bar chart.
package activity

import "time"

const (
	// GridWeeks and GridDays fix the heatmap dimensions: 52 weeks of 7
	// days, spanning exactly the 364 days ending today.
	GridWeeks = 52
	GridDays  = 7
)

// ProductLine is one product entry inside an order.
type ProductLine struct {
	ProductID string  `json:"productId"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is an order as returned by the remote API. OrderTime is kept as
// the raw wire string; orders with a missing or unparseable time are
// simply excluded from day bucketing.
type Order struct {
	ID           string        `json:"_id"`
	CustomerName string        `json:"customerName"`
	OrderTime    string        `json:"orderTime"`
	Products     []ProductLine `json:"products"`
}

// Total returns the order's value: the sum of price × quantity over all
// product lines.
func (o Order) Total() float64 {
	var total float64
	for _, p := range o.Products {
		total += p.Price * float64(p.Quantity)
	}
	return total
}

// Cell is one day of the grid.
type Cell struct {
	Date   time.Time
	Count  int
	Orders []Order
}

// Week is seven consecutive cells, oldest first.
type Week struct {
	Days []Cell
}

// Grid is the full 52-week matrix, oldest week first.
type Grid struct {
	Weeks []Week
}

// Stats summarizes an order list for the dashboard header.
type Stats struct {
	TotalCustomers int
	TotalOrders    int
	TodayOrders    int
	TotalRevenue   float64
}

// DayCount is one bar of the recent-activity chart.
type DayCount struct {
	Date  time.Time
	Count int
}

const dayKey = "2006-01-02"

// timeFormats are tried in order when parsing an order time.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseOrderTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// bucketByDay groups orders by the calendar day of their order time, in
// the reference time's location. Orders without a usable time are dropped.
func bucketByDay(orders []Order, loc *time.Location) map[string][]Order {
	buckets := make(map[string][]Order)
	for _, o := range orders {
		t, ok := parseOrderTime(o.OrderTime)
		if !ok {
			continue
		}
		key := t.In(loc).Format(dayKey)
		buckets[key] = append(buckets[key], o)
	}
	return buckets
}

// BuildGrid computes the activity grid for the 364 days ending on today.
// Week 0 is the oldest week and day 0 the oldest day of each week, so
// dates increase strictly in week-major, day-minor order. The result is
// deterministic for a fixed (orders, today) pair.
func BuildGrid(orders []Order, today time.Time) Grid {
	base := midnight(today)
	buckets := bucketByDay(orders, today.Location())

	grid := Grid{Weeks: make([]Week, GridWeeks)}
	for w := 0; w < GridWeeks; w++ {
		days := make([]Cell, GridDays)
		for d := 0; d < GridDays; d++ {
			daysAgo := (GridWeeks-1-w)*GridDays + (GridDays - 1 - d)
			date := base.AddDate(0, 0, -daysAgo)
			matched := buckets[date.Format(dayKey)]
			days[d] = Cell{
				Date:   date,
				Count:  len(matched),
				Orders: matched,
			}
		}
		grid.Weeks[w] = Week{Days: days}
	}
	return grid
}

// Level classifies a day's order count into one of five heatmap
// intensities: 0, 1-2, 3-4, 5-6 and 7+.
func Level(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}

// MonthLabel returns the short month name for a week if that week is the
// first one touching its month (first day's day-of-month ≤ 7), else "".
func MonthLabel(w Week) string {
	if len(w.Days) == 0 {
		return ""
	}
	first := w.Days[0].Date
	if first.Day() <= 7 {
		return first.Format("Jan")
	}
	return ""
}

// ComputeStats derives the dashboard header numbers from an order list.
func ComputeStats(orders []Order, today time.Time) Stats {
	customers := make(map[string]struct{})
	todayKey := midnight(today).Format(dayKey)

	st := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		customers[o.CustomerName] = struct{}{}
		st.TotalRevenue += o.Total()
		if t, ok := parseOrderTime(o.OrderTime); ok {
			if t.In(today.Location()).Format(dayKey) == todayKey {
				st.TodayOrders++
			}
		}
	}
	st.TotalCustomers = len(customers)
	return st
}

// DayCounts returns order counts for the n days ending today, oldest
// first, using the same day bucketing as the grid.
func DayCounts(orders []Order, today time.Time, n int) []DayCount {
	base := midnight(today)
	buckets := bucketByDay(orders, today.Location())

	counts := make([]DayCount, 0, n)
	for i := n - 1; i >= 0; i-- {
		date := base.AddDate(0, 0, -i)
		counts = append(counts, DayCount{
			Date:  date,
			Count: len(buckets[date.Format(dayKey)]),
		})
	}
	return counts
}
