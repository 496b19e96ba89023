package card

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	highlightBorderStyle = borderStyle.BorderForeground(lipgloss.Color("205"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// Model is a bordered box with an optional title and footer
type Model struct {
	Title       string
	Body        string
	Footer      string
	Width       int
	Highlighted bool
}

func New(title, body string) Model {
	return Model{Title: title, Body: body}
}

func (c Model) View() string {
	var rows []string
	if c.Title != "" {
		rows = append(rows, titleStyle.Render(c.Title))
	}
	if c.Body != "" {
		rows = append(rows, c.Body)
	}
	if c.Footer != "" {
		rows = append(rows, footerStyle.Render(c.Footer))
	}

	style := borderStyle
	if c.Highlighted {
		style = highlightBorderStyle
	}
	if c.Width > 0 {
		// the border takes two columns
		style = style.Width(max(c.Width-2, 0))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Grid lays cards out in rows of perRow
func Grid(perRow int, cards ...Model) string {
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		views := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			views = append(views, c.View())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, views...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
