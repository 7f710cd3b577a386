package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/JasonZhangjc/stock-query/internal/domain"
	"github.com/JasonZhangjc/stock-query/internal/watch"
)

// Styles.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Background(lipgloss.Color("4"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245"))
	paneTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	riseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	fallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	flatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	highlightBG = lipgloss.Color("236")
	popupStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	snap := m.state.Snapshot()

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(snap), m.renderDetail(snap))
	if _, ok := snap.Mode.(watch.Adding); ok {
		body = overlay(body, m.renderPopup(snap))
	}

	return m.renderTitle(snap) + "\n" + body + "\n" + m.renderStatus(snap)
}

// renderTitle shows the program name on the left and the last update time or
// the last error on the right.
func (m Model) renderTitle(snap watch.Snapshot) string {
	left := " stock-query"
	if m.version != "" {
		left += " " + m.version
	}
	right := "LAST UPDATE " + FormatUpdate(snap.LastRefresh) + " "
	style := titleStyle
	if msg := snap.Status(); msg != "" {
		right = msg + " "
		style = errorStyle
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return titleStyle.Render(padOrTrunc(left+" "+right, m.width))
	}
	return titleStyle.Render(left+strings.Repeat(" ", gap)) + style.Render(right)
}

func (m Model) renderStatus(snap watch.Snapshot) string {
	text := " " + m.help.ShortHelpView(m.keys.helpFor(snap.Mode))
	return statusStyle.Render(padOrTrunc(text, m.width))
}

// renderList draws the visible slice of the watch list with the selected row
// highlighted.
func (m Model) renderList(snap watch.Snapshot) string {
	w := m.listWidth() - 2
	h := m.listHeight()

	var b strings.Builder
	end := min(m.offset+h, len(snap.Stocks))
	for i := m.offset; i < end; i++ {
		if i > m.offset {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(snap.Stocks[i], w, i == snap.Selected))
	}
	if len(snap.Stocks) == 0 {
		b.WriteString(dimStyle.Render(padOrTrunc(" press n to add", w)))
	}
	return paneStyle.Width(w).Height(h).Render(b.String())
}

func renderRow(s domain.Stock, width int, hl bool) string {
	pct := fmt.Sprintf("%8s ", FormatPercent(s.Percent))
	title := padOrTrunc(s.Title, max(width-lipgloss.Width(pct), 0))
	ps := changeStyle(s.Percent)
	ts := valueStyle
	if hl {
		ps = ps.Background(highlightBG)
		ts = ts.Background(highlightBG).Bold(true)
	}
	return ps.Render(pct) + ts.Render(title)
}

// renderDetail draws the quote fields of the selected stock.
func (m Model) renderDetail(snap watch.Snapshot) string {
	w := max(m.width-m.listWidth()-2, 1)
	h := m.listHeight()

	if snap.Selected == watch.NoSelection {
		return paneStyle.Width(w).Height(h).Render(dimStyle.Render(" select a stock with ↑/↓ or the mouse"))
	}
	s := snap.Stocks[snap.Selected]
	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"CODE", s.Code, valueStyle},
		{"UP_DOWN", FormatPercent(s.Percent), changeStyle(s.Percent)},
		{"CURRENT", FormatPrice(s.Price), changeStyle(s.Percent)},
		{"OPEN", FormatPrice(s.Open), valueStyle},
		{"YESTERDAY_CLOSE", FormatPrice(s.PrevClose), valueStyle},
		{"HIGH", FormatPrice(s.High), valueStyle},
		{"LOW", FormatPrice(s.Low), valueStyle},
	}

	var b strings.Builder
	b.WriteString(paneTitle.Render(" " + s.Title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf(" %-16s", r.label)))
		b.WriteString(r.style.Render(r.value))
	}
	return paneStyle.Width(w).Height(h).Render(b.String())
}

// renderPopup draws the code input box.
func (m Model) renderPopup(snap watch.Snapshot) string {
	return popupStyle.Render(
		paneTitle.Render("Add stock code") + "\n" +
			inputStyle.Render(snap.Input()) + cursorStyle.Render(" "),
	)
}

// overlay places box over the centre of bg, keeping the bg cells on either
// side of it. A box larger than bg is clipped.
func overlay(bg, box string) string {
	lines := strings.Split(bg, "\n")
	boxLines := strings.Split(box, "\n")
	bgW := 0
	for _, l := range lines {
		bgW = max(bgW, ansi.StringWidth(l))
	}
	boxW := min(lipgloss.Width(box), bgW)
	x := (bgW - boxW) / 2
	y := max((len(lines)-len(boxLines))/2, 0)

	for i, bl := range boxLines {
		row := y + i
		if row >= len(lines) {
			break
		}
		line := lines[row]
		left := ansi.Truncate(line, x, "")
		// Wide runes cut by either box edge become padding.
		left += strings.Repeat(" ", x-ansi.StringWidth(left))
		end := x + boxW
		right := ansi.TruncateLeft(line, end, "")
		if ansi.StringWidth(right) > ansi.StringWidth(line)-end {
			right = " " + ansi.TruncateLeft(line, end+1, "")
		}
		lines[row] = left + ansi.ResetStyle + ansi.Truncate(bl, boxW, "") + ansi.ResetStyle + right
	}
	return strings.Join(lines, "\n")
}
