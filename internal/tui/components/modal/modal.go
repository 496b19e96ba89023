package modal

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/guardian/internal/tui/components/button"
)

// ConfirmedMsg is sent when the open modal is accepted
type ConfirmedMsg struct{}

// CancelledMsg is sent when the open modal is dismissed
type CancelledMsg struct{}

type KeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 3)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Model is a yes/no confirmation dialog
type Model struct {
	Message string
	Confirm button.Model
	Cancel  button.Model
	keys    KeyMap
	open    bool
}

func New(confirmLabel, cancelLabel string) Model {
	return Model{
		Confirm: button.New(confirmLabel, button.Danger).WithKey("y"),
		Cancel:  button.New(cancelLabel, button.Secondary).WithKey("n"),
		keys:    DefaultKeyMap(),
	}
}

func (m *Model) Open(message string) {
	m.Message = message
	m.open = true
}

func (m *Model) Close() {
	m.open = false
}

func (m Model) IsOpen() bool {
	return m.open
}

// Update answers key presses while the modal is open. The modal stays open
// after a confirmation until the caller closes it.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		return m, func() tea.Msg { return ConfirmedMsg{} }
	case key.Matches(keyMsg, m.keys.Cancel):
		m.open = false
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

func (m Model) View(width, height int) string {
	if !m.open {
		return ""
	}
	box := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		messageStyle.Render(m.Message),
		"",
		button.Row(m.Confirm, m.Cancel),
	))
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
