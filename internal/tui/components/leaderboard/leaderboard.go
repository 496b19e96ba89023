package leaderboard

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/models"
)

// Model shows the ranking in a scrollable table
type Model struct {
	table  table.Model
	tr     *i18n.Translator
	userID string
}

func New(tr *i18n.Translator, height int) Model {
	t := table.New(
		table.WithColumns(columns(tr)),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return Model{table: t, tr: tr}
}

func columns(tr *i18n.Translator) []table.Column {
	return []table.Column{
		{Title: tr.T("leaderboard.col.rank"), Width: 8},
		{Title: tr.T("leaderboard.col.player"), Width: 28},
		{Title: tr.T("leaderboard.col.level"), Width: 8},
		{Title: tr.T("leaderboard.col.mana"), Width: 10},
	}
}

// SetEntries replaces the rows. The row of userID is marked with an arrow.
func (m *Model) SetEntries(entries []models.LeaderboardEntry, userID string) {
	m.userID = userID
	m.table.SetRows(Rows(entries, userID))
	m.table.GotoTop()
}

// Rows converts entries into table rows
func Rows(entries []models.LeaderboardEntry, userID string) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rank := "#" + strconv.Itoa(e.Rank)
		if medal := e.Medal(); medal != "" {
			rank = medal + " " + rank
		}
		name := e.UserName
		if userID != "" && e.UserID == userID {
			name = "➜ " + name
		}
		rows[i] = table.Row{rank, name, strconv.Itoa(e.Level), humanize.Comma(int64(e.Mana))}
	}
	return rows
}

func (m Model) Len() int {
	return len(m.table.Rows())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.table.View()
}

func (m *Model) SetHeight(height int) {
	m.table.SetHeight(height)
}
