package tui

import (
	stderrors "errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/keyring"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/screens"
	"github.com/julianstephens/guardian/internal/tui/components/habits"
	"github.com/julianstephens/guardian/internal/tui/components/modal"
)

const (
	headerHeight = 3
	footerHeight = 3
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case startMsg:
		// the route is synced below
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case userChangedMsg:
		m.user = msg.user
		cmds = append(cmds, waitForUser(m.userCh))
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	default:
		handled, cmd := m.handleResult(msg)
		cmds = append(cmds, cmd)
		if !handled && m.form != nil {
			cmds = append(cmds, m.updateForm(msg))
		}
	}

	if m.quitting {
		return m, tea.Quit
	}
	cmds = append(cmds, m.syncRoute())
	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	contentHeight := max(m.height-headerHeight-footerHeight-2, 3)
	contentWidth := max(m.width-4, 10)

	m.help.Width = m.width
	m.habitList.SetSize(contentWidth, contentHeight)
	m.todayList.SetSize(contentWidth, max(contentHeight-8, 3))
	m.board.SetHeight(max(contentHeight-2, 3))
	m.progressBar.Width = min(contentWidth, 60)
	if m.form != nil {
		m.form = m.form.WithWidth(contentWidth)
	}
}

// syncRoute activates the current route after the router moved. Routes other
// than login need a token; without one the user is sent to login.
func (m *Model) syncRoute() tea.Cmd {
	r := m.deps.Router
	version := r.Version()
	if m.synced && version == m.routeVersion {
		return nil
	}

	route := r.Current()
	if route.Screen != constants.ScreenLogin && !m.authenticated() {
		if err := r.Navigate(constants.PathLogin); err == nil {
			version = r.Version()
			route = r.Current()
		}
	}

	m.synced = true
	m.routeVersion = version
	m.route = route
	m.form = nil
	m.formKind = formNone
	m.modal.Close()
	m.habits.CancelDelete()
	m.navbar.SetActive(route.Path)

	cmds := []tea.Cmd{m.activate()}
	if route.Screen != constants.ScreenLogin {
		cmds = append(cmds, rememberPath(m.ctx, m.deps.Settings, route.Path))
	}
	return tea.Batch(cmds...)
}

// activate starts the load of the current screen
func (m *Model) activate() tea.Cmd {
	client := m.deps.Client
	switch m.route.Screen {
	case constants.ScreenDashboard:
		m.dashboard.BeginLoad()
		return loadDashboard(m.ctx, m.dashboard)
	case constants.ScreenHabitList:
		m.habits.BeginLoad()
		return loadHabits(m.ctx, m.habits)
	case constants.ScreenHabitDetail:
		m.habitDetail = screens.NewHabitDetail(client.Habits, m.deps.Router, m.route.ID())
		m.habitDetail.BeginLoad()
		return loadHabitDetail(m.ctx, m.habitDetail)
	case constants.ScreenHabitForm:
		m.habitForm = screens.NewHabitForm(client.Habits, m.deps.Router, m.tr, m.route.ID())
		m.formKind = formHabit
		if m.habitForm.EditMode() {
			m.habitForm.BeginLoad()
			return loadHabitForm(m.ctx, m.habitForm)
		}
		return m.openForm(NewHabitForm(m.habitForm, m.tr))
	case constants.ScreenChallenges:
		m.challenges.BeginLoad()
		return loadChallenges(m.ctx, m.challenges)
	case constants.ScreenLeaderboard:
		m.leaderboard.BeginLoad()
		return loadLeaderboard(m.ctx, m.leaderboard)
	case constants.ScreenMana:
		m.mana.BeginLoad()
		return loadMana(m.ctx, m.mana)
	case constants.ScreenProfile:
		if m.profile.Editing {
			m.profile.Cancel()
		}
		m.profile.BeginLoad()
		return loadProfile(m.ctx, m.profile)
	case constants.ScreenLogin:
		m.login = screens.NewLogin(client.Auth, m.deps.Tokens, m.deps.Session, m.deps.Router, m.tr)
		m.formKind = formLogin
		return m.openForm(NewLoginForm(m.login, m.tr))
	}
	return nil
}

func (m *Model) openForm(form *huh.Form) tea.Cmd {
	if m.width > 0 {
		form = form.WithWidth(max(m.width-4, 10))
	}
	m.form = form
	return m.form.Init()
}

func (m *Model) navigate(path string) {
	if err := m.deps.Router.Navigate(path); err != nil {
		logger.Warn("navigation failed", "path", path, "error", err)
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return nil
	}
	if m.modal.IsOpen() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return cmd
	}
	if m.form != nil {
		return m.handleFormKey(msg)
	}
	m.setStatus("", false)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case m.route.Screen == constants.ScreenLogin:
		// only the form and quitting are available before signing in
		return nil
	case key.Matches(msg, m.keys.Tab):
		m.navigate(m.navbar.Next())
		return nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.navigate(m.navbar.Prev())
		return nil
	case key.Matches(msg, m.keys.Logout):
		return logout(m.ctx, m.deps.Tokens, m.deps.Session)
	case key.Matches(msg, m.keys.Refresh) && m.route.Screen != constants.ScreenHabitForm:
		return m.activate()
	case key.Matches(msg, m.keys.Back):
		if m.route.Screen == constants.ScreenHabitDetail {
			if err := m.habitDetail.Back(); err != nil {
				m.setStatus(err.Error(), true)
			}
			return nil
		}
		m.deps.Router.Back()
		return nil
	}
	return m.handleScreenKey(msg)
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch m.formKind {
	case formLogin:
		if msg.String() == "ctrl+r" {
			m.login.ToggleMode()
			return m.openForm(NewLoginForm(m.login, m.tr))
		}
	case formHabit, formProfile:
		if msg.Type == tea.KeyEsc {
			return m.abortForm()
		}
	}
	return m.updateForm(msg)
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return tea.Batch(cmd, m.submitForm())
	case huh.StateAborted:
		return tea.Batch(cmd, m.abortForm())
	}
	return cmd
}

// submitForm hands a completed form to its screen. An invalid form is
// rebuilt with its field errors; a valid one is sent and the form is closed
// until the answer arrives.
func (m *Model) submitForm() tea.Cmd {
	switch m.formKind {
	case formHabit:
		sub, ok := m.habitForm.BeginSubmit()
		if !ok {
			return m.openForm(NewHabitForm(m.habitForm, m.tr))
		}
		m.form = nil
		return saveHabit(m.ctx, m.habitForm, sub)
	case formProfile:
		update, ok := m.profile.BeginSave()
		if !ok {
			return m.openForm(NewProfileForm(m.profile, m.tr))
		}
		m.form = nil
		return saveProfile(m.ctx, m.profile, update)
	case formLogin:
		sub, ok := m.login.BeginSubmit()
		if !ok {
			return m.openForm(NewLoginForm(m.login, m.tr))
		}
		m.form = nil
		return authenticate(m.ctx, m.login, sub)
	}
	return nil
}

func (m *Model) abortForm() tea.Cmd {
	kind := m.formKind
	m.form = nil
	m.formKind = formNone

	switch kind {
	case formHabit:
		if err := m.habitForm.Cancel(); err != nil {
			m.setStatus(err.Error(), true)
		}
	case formProfile:
		m.profile.Cancel()
	case formLogin:
		// there is nowhere to go back to; start over
		m.formKind = formLogin
		return m.openForm(NewLoginForm(m.login, m.tr))
	}
	return nil
}

func (m *Model) handleScreenKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.route.Screen {
	case constants.ScreenDashboard:
		m.todayList, cmd = m.todayList.Update(msg)
	case constants.ScreenHabitList:
		m.habitList, cmd = m.habitList.Update(msg)
	case constants.ScreenHabitDetail:
		if key.Matches(msg, m.keys.Edit) {
			if err := m.habitDetail.Edit(); err != nil {
				m.setStatus(err.Error(), true)
			}
		}
	case constants.ScreenChallenges:
		cmd = m.handleChallengesKey(msg)
	case constants.ScreenLeaderboard:
		m.board, cmd = m.board.Update(msg)
	case constants.ScreenProfile:
		if key.Matches(msg, m.keys.Edit) && !m.profile.Loading() {
			m.profile.Edit()
			m.formKind = formProfile
			cmd = m.openForm(NewProfileForm(m.profile, m.tr))
		}
	}
	return cmd
}

func (m *Model) handleChallengesKey(msg tea.KeyMsg) tea.Cmd {
	visible := m.challenges.Filtered()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.challengeCursor > 0 {
			m.challengeCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.challengeCursor < len(visible)-1 {
			m.challengeCursor++
		}
	case key.Matches(msg, m.keys.Filter):
		m.challenges.NextFilter()
		m.challengeCursor = 0
	case key.Matches(msg, m.keys.Progress):
		if m.challengeCursor >= len(visible) {
			return nil
		}
		c := visible[m.challengeCursor]
		if c.Status != constants.ChallengeActive || c.Progress >= c.TargetProgress {
			return nil
		}
		return addChallengeProgress(m.ctx, m.challenges, c.ID, c.Progress+1)
	}
	return nil
}

// handleResult applies command results and component messages. It reports
// whether msg was one of them.
func (m *Model) handleResult(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.dashboard.Apply(msg.res)
		m.todayList.SetHabits(m.dashboard.TodayHabits)

	case habitsLoadedMsg:
		m.habits.Apply(msg.res)
		m.habitList.SetHabits(m.habits.Habits)
		if m.habits.Err != nil {
			m.setStatus(m.errorText(m.habits.Err), true)
		}

	case habitDetailLoadedMsg:
		if msg.screen != m.habitDetail {
			return true, nil
		}
		m.habitDetail.Apply(msg.res)

	case habitFormLoadedMsg:
		if msg.screen != m.habitForm || m.formKind != formHabit {
			return true, nil
		}
		m.habitForm.Apply(msg.res)
		if msg.res.Err != nil {
			m.setStatus(m.errorText(msg.res.Err), true)
		}
		return true, m.openForm(NewHabitForm(m.habitForm, m.tr))

	case challengesLoadedMsg:
		m.challenges.Apply(msg.res)
		if n := len(m.challenges.Filtered()); m.challengeCursor >= n {
			m.challengeCursor = max(n-1, 0)
		}

	case leaderboardLoadedMsg:
		m.leaderboard.Apply(msg.res)
		userID := ""
		if m.user != nil {
			userID = m.user.ID
		}
		m.board.SetEntries(m.leaderboard.Entries, userID)

	case manaLoadedMsg:
		m.mana.Apply(msg.res)

	case profileLoadedMsg:
		m.profile.Apply(msg.res)

	case dashboardCompletedMsg:
		if msg.err != nil {
			m.setStatus(m.errorText(msg.err), true)
			return true, nil
		}
		m.dashboard.LastCompletion = msg.ack
		if msg.ack != nil {
			m.setStatus(m.tr.T("habit.completed", msg.ack.ManaAwarded), false)
		}
		m.dashboard.BeginLoad()
		return true, loadDashboard(m.ctx, m.dashboard)

	case habitCompletedMsg:
		if msg.err != nil {
			m.setStatus(m.errorText(msg.err), true)
			return true, nil
		}
		m.habits.BeginLoad()
		return true, loadHabits(m.ctx, m.habits)

	case habitDeletedMsg:
		if msg.err != nil {
			// the modal stays open so the delete can be retried
			m.setStatus(m.errorText(msg.err), true)
			return true, nil
		}
		m.habits.DeleteSucceeded()
		m.modal.Close()
		m.setStatus(m.tr.T("habit.deleted"), false)
		m.habits.BeginLoad()
		return true, loadHabits(m.ctx, m.habits)

	case habitSavedMsg:
		if msg.screen != m.habitForm || m.formKind != formHabit {
			// the user left the form; report a failure without reopening it
			if msg.res.Err != nil {
				m.setStatus(m.errorText(msg.res.Err), true)
			}
			return true, nil
		}
		if err := m.habitForm.FinishSubmit(msg.res); err != nil {
			return true, m.openForm(NewHabitForm(m.habitForm, m.tr))
		}

	case challengeProgressMsg:
		if msg.err != nil {
			m.setStatus(m.errorText(msg.err), true)
			return true, nil
		}
		m.setStatus(m.tr.T("challenge.progress_updated"), false)
		m.challenges.BeginLoad()
		return true, loadChallenges(m.ctx, m.challenges)

	case profileSavedMsg:
		if m.formKind != formProfile {
			if err := m.profile.FinishSave(msg.res); err != nil {
				m.setStatus(m.errorText(err), true)
			}
			return true, nil
		}
		if err := m.profile.FinishSave(msg.res); err != nil {
			return true, m.openForm(NewProfileForm(m.profile, m.tr))
		}
		m.formKind = formNone

	case authenticatedMsg:
		if msg.screen != m.login || m.formKind != formLogin {
			return true, nil
		}
		if err := m.login.FinishSubmit(msg.res); err != nil {
			return true, m.openForm(NewLoginForm(m.login, m.tr))
		}
		m.setStatus(m.tr.T("auth.logged_in", msg.res.Auth.User.Name), false)

	case loggedOutMsg:
		if msg.err != nil && !stderrors.Is(msg.err, keyring.ErrNotFound) {
			logger.Warn("failed to delete token", "error", msg.err)
		}
		m.user = nil
		m.setStatus(m.tr.T("auth.logged_out"), false)
		m.navigate(constants.PathLogin)

	case modal.ConfirmedMsg:
		id := m.habits.PendingDelete()
		if id == "" {
			m.modal.Close()
			return true, nil
		}
		return true, deleteHabit(m.ctx, m.habits, id)

	case modal.CancelledMsg:
		m.habits.CancelDelete()
		m.modal.Close()

	case habits.AddHabitMsg:
		m.navigate(constants.PathHabitNew)

	case habits.CompleteHabitMsg:
		if m.route.Screen == constants.ScreenDashboard {
			return true, completeFromDashboard(m.ctx, m.dashboard, msg.ID)
		}
		return true, completeFromList(m.ctx, m.habits, msg.ID)

	case habits.EditHabitMsg:
		if err := m.habits.Edit(msg.ID); err != nil {
			m.setStatus(err.Error(), true)
		}

	case habits.DeleteHabitMsg:
		m.habits.RequestDelete(msg.ID)
		m.modal.Open(m.tr.T("habits.confirm_delete"))

	case habits.OpenHabitMsg:
		if err := m.habits.View(msg.ID); err != nil {
			m.setStatus(err.Error(), true)
		}

	default:
		return false, nil
	}
	return true, nil
}

// errorText is the server message of a failed request, or a generic one
func (m Model) errorText(err error) string {
	if msg := errors.ServerMessage(err); msg != "" {
		return msg
	}
	return m.tr.T("request.failed")
}
