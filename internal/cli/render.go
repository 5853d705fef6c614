package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tripboard/tripboard/internal/domain"
)

// styles are bound to the output writer's renderer, so colour is dropped
// automatically when the output is not a terminal.
type styles struct {
	header lipgloss.Style
	title  lipgloss.Style
	faint  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	accent lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true).Underline(true),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		faint:  r.NewStyle().Faint(true),
		good:   r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("9")),
		accent: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// table writes rows under headers with columns padded to the widest cell.
// Widths are measured with lipgloss so styled cells line up.
func (a *App) table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	line := func(cells []string, style func(string) string) {
		var b strings.Builder
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			pad := widths[i] - lipgloss.Width(cell)
			b.WriteString(style(cell))
			if i < len(cells)-1 && pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		fmt.Fprintln(a.out, b.String())
	}

	line(headers, func(s string) string { return a.style.header.Render(s) })
	for _, row := range rows {
		line(row, func(s string) string { return s })
	}
}

func (a *App) heading(s string) {
	fmt.Fprintln(a.out, a.style.title.Render(s))
}

func (a *App) note(s string) {
	fmt.Fprintln(a.out, a.style.faint.Render(s))
}

// money formats an amount with thousands separators and two decimals.
func money(amount float64, currency string) string {
	s := humanize.FormatFloat("#,###.##", amount)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func (a *App) signed(amount float64) string {
	s := humanize.FormatFloat("#,###.##", amount)
	switch {
	case amount > 0:
		return a.style.good.Render("+" + s)
	case amount < 0:
		return a.style.bad.Render(s)
	}
	return s
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(domain.DateLayout)
}

// dateRange renders "2026-06-01 → 2026-06-05 (5 days)", counting both ends.
func dateRange(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return date(start) + " → " + date(end)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s → %s (%s %s)", date(start), date(end), humanize.Comma(int64(days)), unit)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func percent(f float64) string {
	return humanize.FormatFloat("#,###.", f*100) + "%"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
