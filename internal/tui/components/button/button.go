package button

import "github.com/charmbracelet/lipgloss"

type Variant int

const (
	Primary Variant = iota
	Secondary
	Danger
)

var (
	baseStyle = lipgloss.NewStyle().Padding(0, 2).MarginRight(1)

	variantStyles = map[Variant]lipgloss.Style{
		Primary:   baseStyle.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
		Secondary: baseStyle.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
		Danger:    baseStyle.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")),
	}

	disabledStyle = baseStyle.Foreground(lipgloss.Color("243")).Background(lipgloss.Color("236"))
	focusedStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Model is a labelled action with an optional key hint, e.g. "[y] Yes"
type Model struct {
	Label    string
	Key      string
	Variant  Variant
	Disabled bool
	Focused  bool
}

func New(label string, variant Variant) Model {
	return Model{Label: label, Variant: variant}
}

// WithKey sets the key shown in front of the label
func (b Model) WithKey(k string) Model {
	b.Key = k
	return b
}

func (b Model) Text() string {
	if b.Key == "" {
		return b.Label
	}
	return "[" + b.Key + "] " + b.Label
}

func (b Model) View() string {
	if b.Disabled {
		return disabledStyle.Render(b.Text())
	}
	style, ok := variantStyles[b.Variant]
	if !ok {
		style = variantStyles[Primary]
	}
	if b.Focused {
		style = style.Inherit(focusedStyle)
	}
	return style.Render(b.Text())
}

// Row renders buttons side by side
func Row(buttons ...Model) string {
	views := make([]string, len(buttons))
	for i, b := range buttons {
		views[i] = b.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}
