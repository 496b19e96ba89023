package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/tui/components/button"
	"github.com/julianstephens/guardian/internal/tui/components/card"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	if m.modal.IsOpen() {
		content = m.modal.View(max(m.width-4, 0), max(m.height-headerHeight-footerHeight-2, 0))
	} else {
		content = m.viewScreen()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	if m.route.Screen == constants.ScreenLogin {
		return headerStyle.Render(titleStyle.Render(constants.AppName))
	}
	bar := m.navbar.View()
	if m.user != nil {
		info := fmt.Sprintf("%s · %s · %d mana", m.user.Name, m.tr.T("mana.level", max(m.user.Level, 1)), m.user.Mana)
		bar = lipgloss.JoinHorizontal(lipgloss.Top, bar, userStyle.Render(info))
	}
	return headerStyle.Render(bar)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusError {
		return dangerStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func (m Model) viewScreen() string {
	if m.form != nil {
		return m.viewForm()
	}
	if m.Loading() {
		return m.spinner.View() + " " + m.tr.T("loading")
	}

	switch m.route.Screen {
	case constants.ScreenDashboard:
		return m.viewDashboard()
	case constants.ScreenHabitList:
		return m.habitList.View(m.tr.T("habits.empty"))
	case constants.ScreenHabitDetail:
		return m.viewHabitDetail()
	case constants.ScreenChallenges:
		return m.viewChallenges()
	case constants.ScreenLeaderboard:
		return m.viewLeaderboard()
	case constants.ScreenMana:
		return m.viewMana()
	case constants.ScreenProfile:
		return m.viewProfile()
	}
	return ""
}

func (m Model) viewForm() string {
	var errMsg string
	switch m.formKind {
	case formHabit:
		errMsg = m.habitForm.ErrorMessage
	case formProfile:
		errMsg = m.profile.ErrorMessage
	case formLogin:
		errMsg = m.login.ErrorMessage
	}
	if errMsg == "" {
		return m.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, dangerStyle.Render(errMsg), "", m.form.View())
}

func (m Model) bar(percent float64) string {
	return m.progressBar.ViewAs(min(max(percent/100, 0), 1))
}

func (m Model) manaCard(info models.ManaInfo) card.Model {
	return card.Model{
		Title:  m.tr.T("mana.level", info.Level),
		Body:   m.bar(info.Percentage()),
		Footer: m.tr.T("mana.progress", info.Current, info.NextLevel),
	}
}

func (m Model) viewDashboard() string {
	d := m.dashboard
	greeting := m.tr.T("dashboard.greeting_anonymous")
	if d.User != nil && d.User.Name != "" {
		greeting = m.tr.T("dashboard.greeting", d.User.Name)
	}

	var challenges []string
	for _, c := range d.ActiveChallenges {
		challenges = append(challenges, fmt.Sprintf("%s  %s", c.Title, mutedStyle.Render(fmt.Sprintf("%.0f%%", c.ProgressPercentage()))))
	}
	if len(challenges) == 0 {
		challenges = append(challenges, mutedStyle.Render(m.tr.T("challenges.empty")))
	}

	sections := []string{
		titleStyle.Render(greeting),
		m.manaCard(d.Mana).View(),
		"",
		selectedStyle.Render(m.tr.T("dashboard.today")),
		m.todayList.View(m.tr.T("habits.today_empty")),
		"",
		card.New(m.tr.T("dashboard.challenges"), strings.Join(challenges, "\n")).View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHabitDetail() string {
	s := m.habitDetail
	if s == nil || s.Habit == nil {
		msg := m.tr.T("habit.not_found")
		if s != nil && s.Err != nil {
			msg = m.errorText(s.Err)
		}
		return dangerStyle.Render(msg)
	}
	h := s.Habit

	details := []string{
		h.Description,
		"",
		m.tr.Frequency(h.Frequency),
		m.tr.T("habit.streak", h.Streak),
		m.tr.T("habit.completions", h.CompletionCount),
	}
	if !h.CreatedAt.IsZero() {
		details = append(details, mutedStyle.Render(m.tr.T("habit.created", humanize.Time(h.CreatedAt))))
	}

	var history []string
	for _, entry := range s.History {
		history = append(history, m.tr.T("history.entry", entry.ManaAwarded, humanize.Time(entry.CompletedAt)))
	}
	if len(history) == 0 {
		history = append(history, mutedStyle.Render(m.tr.T("history.empty")))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		card.New(h.Name, strings.Join(details, "\n")).View(),
		card.Model{
			Title:  m.tr.T("habit.history"),
			Body:   strings.Join(history, "\n"),
			Footer: m.tr.T("habit.total_mana", s.TotalManaAwarded()),
		}.View(),
		button.Row(
			button.New(m.tr.T("habit.edit_title"), button.Primary).WithKey("e"),
			button.New(m.tr.T("nav.habits"), button.Secondary).WithKey("esc"),
		),
	)
}

func (m Model) viewChallenges() string {
	filters := []constants.ChallengeFilter{constants.FilterAll, constants.FilterActive, constants.FilterCompleted}
	tabs := make([]string, len(filters))
	for i, f := range filters {
		label := m.tr.T("challenge.filter." + string(f))
		if f == m.challenges.Filter {
			tabs[i] = selectedStyle.Render("[" + label + "]")
		} else {
			tabs[i] = mutedStyle.Render(" " + label + " ")
		}
	}
	header := strings.Join(tabs, " ")

	visible := m.challenges.Filtered()
	if len(visible) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render(m.tr.T("challenges.empty")))
	}

	cards := make([]string, len(visible))
	for i, c := range visible {
		body := []string{
			c.Description,
			m.bar(c.ProgressPercentage()) + fmt.Sprintf(" %d/%d", c.Progress, c.TargetProgress),
		}
		footer := m.tr.T("challenge.reward", c.Reward)
		if c.ExpiresAt != nil {
			footer += " · " + m.tr.T("challenge.expires", humanize.Time(*c.ExpiresAt))
		}
		cards[i] = card.Model{
			Title:       fmt.Sprintf("%s (%s)", c.Title, m.challenges.StatusLabel(c.Status)),
			Body:        strings.Join(body, "\n"),
			Footer:      footer,
			Highlighted: i == m.challengeCursor,
		}.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header, ""}, cards...)...)
}

func (m Model) viewLeaderboard() string {
	lb := m.leaderboard
	if len(lb.Entries) == 0 {
		msg := m.tr.T("leaderboard.empty")
		if lb.Err != nil {
			msg = m.errorText(lb.Err)
		}
		return mutedStyle.Render(msg)
	}

	footer := m.tr.T("leaderboard.total", lb.TotalUsers)
	if lb.UserRank != nil {
		footer = m.tr.T("leaderboard.your_rank", *lb.UserRank) + " · " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.board.View(), "", mutedStyle.Render(footer))
}

func (m Model) viewMana() string {
	view := m.manaCard(m.mana.Info).View()
	if m.mana.FromSession {
		view = lipgloss.JoinVertical(lipgloss.Left, view, warningStyle.Render(m.tr.T("mana.from_cache")))
	}
	return view
}

func (m Model) viewProfile() string {
	p := m.profile
	var sections []string

	if p.SuccessMessage != "" {
		sections = append(sections, successStyle.Render(p.SuccessMessage))
	}
	if p.ErrorMessage != "" {
		sections = append(sections, dangerStyle.Render(p.ErrorMessage))
	}

	if p.User != nil {
		lines := []string{
			p.User.Email,
			m.tr.T("mana.level", max(p.User.Level, 1)) + fmt.Sprintf(" · %d mana", p.User.Mana),
		}
		if p.User.CreatedAt != nil {
			lines = append(lines, mutedStyle.Render(m.tr.T("profile.member_since", humanize.Time(*p.User.CreatedAt))))
		}
		sections = append(sections, card.New(p.User.Name, strings.Join(lines, "\n")).View())
	}

	if len(p.Stats) > 0 {
		var lines []string
		for _, k := range slices.Sorted(maps.Keys(p.Stats)) {
			lines = append(lines, fmt.Sprintf("%s: %v", k, p.Stats[k]))
		}
		sections = append(sections, card.New(m.tr.T("profile.stats"), strings.Join(lines, "\n")).View())
	}

	var contacts []string
	for _, c := range p.Contacts {
		contacts = append(contacts, fmt.Sprintf("%s\n  %s · %s", c.Name, c.Phone, mutedStyle.Render(c.URL)))
	}
	sections = append(sections,
		card.New(m.tr.T("profile.support"), strings.Join(contacts, "\n")).View(),
		button.New(m.tr.T("profile.edit_title"), button.Primary).WithKey("e").View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
