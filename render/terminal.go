package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/skip2/go-qrcode"
	"github.com/tfkr-ae/raseed/domain"
)

// DefaultTerminalWidth is the inner width of a terminal receipt in columns.
const DefaultTerminalWidth = 40

var (
	terminalBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	terminalBold = lipgloss.NewStyle().Bold(true)
	terminalDim  = lipgloss.NewStyle().Faint(true)
)

// Terminal renders r as a boxed receipt for a terminal, width columns wide inside
// the border. A width below 20 uses DefaultTerminalWidth.
func Terminal(r *domain.Receipt, renderedAt time.Time, width int) string {
	if width < 20 {
		width = DefaultTerminalWidth
	}

	var rows []string
	for _, l := range Layout(r, renderedAt) {
		switch l.Kind {
		case KindTitle, KindEmphasis:
			rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Center, terminalBold.Render(l.Text)))
		case KindText:
			rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Center, l.Text))
		case KindPair:
			rows = append(rows, pairRows(l.Left, l.Right, width)...)
		case KindNote:
			for _, row := range wrapColumns(l.Text, width) {
				rows = append(rows, terminalDim.Render(row))
			}
		case KindRule:
			rows = append(rows, strings.Repeat("-", width))
		case KindSeparator:
			rows = append(rows, terminalDim.Render(strings.TrimRight(strings.Repeat(". ", width/2), " ")))
		case KindQR:
			code, err := qrcode.New(l.Text, qrcode.Medium)
			if err != nil {
				rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Center, l.Text))
				continue
			}
			for _, row := range strings.Split(strings.TrimRight(code.ToSmallString(false), "\n"), "\n") {
				rows = append(rows, lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
			}
		}
	}

	return terminalBox.Render(strings.Join(rows, "\n"))
}

// pairRows puts label and value on one row, or the value on its own right-aligned row
// when both do not fit.
func pairRows(label, value string, width int) []string {
	value = terminalBold.Render(value)
	gap := width - lipgloss.Width(label) - lipgloss.Width(value)
	if gap >= 1 {
		return []string{label + strings.Repeat(" ", gap) + value}
	}
	return []string{label, lipgloss.PlaceHorizontal(width, lipgloss.Right, value)}
}
