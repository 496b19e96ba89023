package navbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true).
			PaddingRight(2)
)

// Tab is a navbar entry pointing at a router path
type Tab struct {
	Title string
	Path  string
}

type Model struct {
	Brand  string
	Tabs   []Tab
	active int
}

func New(brand string, tabs []Tab) Model {
	return Model{Brand: brand, Tabs: tabs}
}

// SetActive highlights the tab owning path. Paths below a tab, such as
// /habits/42 under /habits, keep that tab active. It reports whether a tab
// matched.
func (m *Model) SetActive(path string) bool {
	best, bestLen := -1, 0
	for i, tab := range m.Tabs {
		if path == tab.Path || strings.HasPrefix(path, tab.Path+"/") {
			if len(tab.Path) > bestLen {
				best, bestLen = i, len(tab.Path)
			}
		}
	}
	if best < 0 {
		return false
	}
	m.active = best
	return true
}

func (m Model) Active() int {
	return m.active
}

// Next returns the path of the tab after the active one
func (m Model) Next() string {
	if len(m.Tabs) == 0 {
		return ""
	}
	return m.Tabs[(m.active+1)%len(m.Tabs)].Path
}

// Prev returns the path of the tab before the active one
func (m Model) Prev() string {
	if len(m.Tabs) == 0 {
		return ""
	}
	return m.Tabs[(m.active-1+len(m.Tabs))%len(m.Tabs)].Path
}

func (m Model) View() string {
	parts := make([]string, 0, len(m.Tabs)+1)
	if m.Brand != "" {
		parts = append(parts, brandStyle.Render(m.Brand))
	}
	for i, tab := range m.Tabs {
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(tab.Title))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
