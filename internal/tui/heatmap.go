package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/storeflow/internal/activity"
)

const (
	heatCell  = "■ "
	cellWidth = 2 // printed width of one week column
	dayGutter = 4 // width reserved for the day labels
)

// Rows are Sun..Sat; only alternate rows get a label, like the web heatmap.
var heatmapDayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}

// renderHeatmap draws the activity grid as rows of colored squares with a
// month-label header and a Less→More legend. When maxWidth cannot fit all
// 52 weeks, the most recent weeks that do fit are shown.
func renderHeatmap(g activity.Grid, maxWidth int) string {
	weeks := g.Weeks
	fit := (maxWidth - dayGutter) / cellWidth
	if fit < 1 {
		fit = 1
	}
	if len(weeks) > fit {
		weeks = weeks[len(weeks)-fit:]
	}

	var b strings.Builder

	b.WriteString(strings.Repeat(" ", dayGutter))
	b.WriteString(mutedStyle.Render(monthLabelRow(weeks)))
	b.WriteByte('\n')

	for d := 0; d < activity.GridDays; d++ {
		label := heatmapDayLabels[d%len(heatmapDayLabels)]
		b.WriteString(mutedStyle.Render(padRight(label, dayGutter)))
		for _, week := range weeks {
			if d >= len(week.Days) {
				continue
			}
			level := activity.Level(week.Days[d].Count)
			b.WriteString(activityStyles[level].Render(heatCell))
		}
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", dayGutter))
	b.WriteString(renderHeatmapLegend())
	return b.String()
}

// monthLabelRow places each week's month label at that week's column,
// skipping labels that would overlap the previous one.
func monthLabelRow(weeks []activity.Week) string {
	row := make([]rune, len(weeks)*cellWidth)
	for i := range row {
		row[i] = ' '
	}
	lastEnd := -1
	for w, week := range weeks {
		label := activity.MonthLabel(week)
		if label == "" {
			continue
		}
		start := w * cellWidth
		if start <= lastEnd || start+len(label) > len(row) {
			continue
		}
		copy(row[start:], []rune(label))
		lastEnd = start + len(label)
	}
	return string(row)
}

func renderHeatmapLegend() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("Less "))
	for _, style := range activityStyles {
		b.WriteString(style.Render("■"))
	}
	b.WriteString(mutedStyle.Render(" More"))
	return b.String()
}

func padRight(s string, width int) string {
	if lipgloss.Width(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}
