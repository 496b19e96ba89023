package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/screens"
	"github.com/julianstephens/guardian/internal/storage"
)

// Commands only fetch or send. Their results come back as messages and are
// applied to the screens in Update.

type dashboardLoadedMsg struct {
	res screens.DashboardResult
}

type habitsLoadedMsg struct {
	res screens.HabitListResult
}

type habitDetailLoadedMsg struct {
	screen *screens.HabitDetail
	res    screens.HabitDetailResult
}

type habitFormLoadedMsg struct {
	screen *screens.HabitForm
	res    screens.HabitFormResult
}

type challengesLoadedMsg struct {
	res screens.ChallengesResult
}

type leaderboardLoadedMsg struct {
	res screens.LeaderboardResult
}

type manaLoadedMsg struct {
	res screens.ManaResult
}

type profileLoadedMsg struct {
	res screens.ProfileResult
}

type dashboardCompletedMsg struct {
	ack *models.HabitCompletion
	err error
}

type habitCompletedMsg struct {
	err error
}

type habitDeletedMsg struct {
	err error
}

type habitSavedMsg struct {
	screen *screens.HabitForm
	res    screens.HabitFormResult
}

type challengeProgressMsg struct {
	err error
}

type profileSavedMsg struct {
	res screens.ProfileSaveResult
}

type authenticatedMsg struct {
	screen *screens.Login
	res    screens.LoginResult
}

type loggedOutMsg struct {
	err error
}

type userChangedMsg struct {
	user *models.User
}

func loadDashboard(ctx context.Context, s *screens.Dashboard) tea.Cmd {
	return func() tea.Msg { return dashboardLoadedMsg{res: s.Fetch(ctx)} }
}

func loadHabits(ctx context.Context, s *screens.HabitList) tea.Cmd {
	return func() tea.Msg { return habitsLoadedMsg{res: s.Fetch(ctx)} }
}

func loadHabitDetail(ctx context.Context, s *screens.HabitDetail) tea.Cmd {
	return func() tea.Msg { return habitDetailLoadedMsg{screen: s, res: s.Fetch(ctx)} }
}

func loadHabitForm(ctx context.Context, s *screens.HabitForm) tea.Cmd {
	return func() tea.Msg { return habitFormLoadedMsg{screen: s, res: s.Fetch(ctx)} }
}

func loadChallenges(ctx context.Context, s *screens.Challenges) tea.Cmd {
	return func() tea.Msg { return challengesLoadedMsg{res: s.Fetch(ctx)} }
}

func loadLeaderboard(ctx context.Context, s *screens.Leaderboard) tea.Cmd {
	return func() tea.Msg { return leaderboardLoadedMsg{res: s.Fetch(ctx)} }
}

func loadMana(ctx context.Context, s *screens.Mana) tea.Cmd {
	return func() tea.Msg { return manaLoadedMsg{res: s.Fetch(ctx)} }
}

func loadProfile(ctx context.Context, s *screens.Profile) tea.Cmd {
	return func() tea.Msg { return profileLoadedMsg{res: s.Fetch(ctx)} }
}

func completeFromDashboard(ctx context.Context, s *screens.Dashboard, id string) tea.Cmd {
	return func() tea.Msg {
		ack, err := s.SendComplete(ctx, id)
		return dashboardCompletedMsg{ack: ack, err: err}
	}
}

func completeFromList(ctx context.Context, s *screens.HabitList, id string) tea.Cmd {
	return func() tea.Msg { return habitCompletedMsg{err: s.SendComplete(ctx, id)} }
}

func deleteHabit(ctx context.Context, s *screens.HabitList, id string) tea.Cmd {
	return func() tea.Msg { return habitDeletedMsg{err: s.SendDelete(ctx, id)} }
}

func saveHabit(ctx context.Context, s *screens.HabitForm, sub screens.HabitSubmission) tea.Cmd {
	return func() tea.Msg { return habitSavedMsg{screen: s, res: s.Send(ctx, sub)} }
}

func addChallengeProgress(ctx context.Context, s *screens.Challenges, id string, progress int) tea.Cmd {
	return func() tea.Msg {
		_, err := s.SendProgress(ctx, id, progress)
		return challengeProgressMsg{err: err}
	}
}

func saveProfile(ctx context.Context, s *screens.Profile, update models.ProfileUpdate) tea.Cmd {
	return func() tea.Msg { return profileSavedMsg{res: s.SendSave(ctx, update)} }
}

func authenticate(ctx context.Context, s *screens.Login, sub screens.LoginSubmission) tea.Cmd {
	return func() tea.Msg { return authenticatedMsg{screen: s, res: s.Send(ctx, sub)} }
}

func logout(ctx context.Context, tokens screens.TokenStore, session screens.Session) tea.Cmd {
	return func() tea.Msg { return loggedOutMsg{err: screens.Logout(ctx, tokens, session)} }
}

// waitForUser blocks until the session broadcasts a new user
func waitForUser(ch <-chan *models.User) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		user, ok := <-ch
		if !ok {
			return nil
		}
		return userChangedMsg{user: user}
	}
}

// rememberPath stores the last visited path so the next start resumes there
func rememberPath(ctx context.Context, settings Settings, path string) tea.Cmd {
	if settings == nil {
		return nil
	}
	return func() tea.Msg {
		if err := settings.SetSetting(ctx, storage.SettingLastPath, path); err != nil {
			logger.Warn("failed to remember last path", "path", path, "error", err)
		}
		return nil
	}
}
