package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/api/apitest"
	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/router"
	"github.com/julianstephens/guardian/internal/screens"
	"github.com/julianstephens/guardian/internal/session"
	"github.com/julianstephens/guardian/internal/storage"
	"github.com/julianstephens/guardian/internal/tui/components/habits"
	"github.com/julianstephens/guardian/internal/tui/components/modal"
)

type memTokens struct {
	token string
}

func (m *memTokens) Token() string { return m.token }

func (m *memTokens) SetToken(token string) error {
	m.token = token
	return nil
}

func (m *memTokens) DeleteToken() error {
	m.token = ""
	return nil
}

type memSettings struct {
	values map[string]string
}

func (s *memSettings) SetSetting(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

type harness struct {
	srv      *apitest.Server
	tokens   *memTokens
	router   *router.Router
	session  *session.Session
	settings *memSettings
}

func newHarness(t *testing.T, token string) (Model, *harness) {
	t.Helper()
	h := &harness{
		srv:      apitest.New(t),
		tokens:   &memTokens{token: token},
		router:   router.New(),
		session:  session.New(nil),
		settings: &memSettings{values: map[string]string{}},
	}
	client := api.New(api.Options{BaseURL: h.srv.URL, Timeout: 5 * time.Second, Tokens: h.tokens})
	m := NewModel(context.Background(), Deps{
		Client:           client,
		Session:          h.session,
		Tokens:           h.tokens,
		Router:           h.router,
		Translator:       i18n.MustTranslator("en-US"),
		Settings:         h.settings,
		LeaderboardLimit: 10,
	})
	t.Cleanup(m.Close)
	return m, h
}

// isAppMsg reports whether msg is produced by this package or its components.
// Other messages, such as cursor blinks, are dropped by the test driver.
func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case dashboardLoadedMsg, habitsLoadedMsg, habitDetailLoadedMsg, habitFormLoadedMsg,
		challengesLoadedMsg, leaderboardLoadedMsg, manaLoadedMsg, profileLoadedMsg,
		dashboardCompletedMsg, habitCompletedMsg, habitDeletedMsg, habitSavedMsg,
		challengeProgressMsg, profileSavedMsg, authenticatedMsg, loggedOutMsg,
		modal.ConfirmedMsg, modal.CancelledMsg,
		habits.AddHabitMsg, habits.CompleteHabitMsg, habits.EditHabitMsg,
		habits.DeleteHabitMsg, habits.OpenHabitMsg:
		return true
	}
	return false
}

// send delivers msg and runs every resulting command until the model settles
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
		return m
	default:
		if !isAppMsg(msg) {
			return m
		}
		return send(t, m, msg)
	}
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func start(t *testing.T, m Model) Model {
	t.Helper()
	return send(t, m, startMsg{})
}

// visit navigates directly and lets the model activate the new route
func visit(t *testing.T, m Model, h *harness, path string) Model {
	t.Helper()
	if err := h.router.Navigate(path); err != nil {
		t.Fatalf("Navigate(%q) failed: %v", path, err)
	}
	return send(t, m, startMsg{})
}

func TestStartLoadsDashboard(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Drink water", Frequency: constants.FrequencyDaily})
	h.srv.AddHabit(models.Habit{Name: "Call family", Frequency: constants.FrequencyWeekly})

	m = start(t, m)

	if m.route.Screen != constants.ScreenDashboard {
		t.Fatalf("screen = %v, want dashboard", m.route.Screen)
	}
	if m.Loading() {
		t.Error("expected loading to finish")
	}
	if m.todayList.Len() != 1 {
		t.Errorf("today list has %d habits, want 1", m.todayList.Len())
	}
	if h.srv.Calls(http.MethodGet, "/habits/today") != 1 {
		t.Errorf("expected one request for today's habits")
	}
	if h.settings.values[storage.SettingLastPath] != constants.PathDashboard {
		t.Errorf("last path = %q, want %q", h.settings.values[storage.SettingLastPath], constants.PathDashboard)
	}
}

func TestStartWithoutTokenShowsLogin(t *testing.T) {
	m, h := newHarness(t, "")

	next, _ := m.Update(startMsg{})
	m = next.(Model)

	if m.route.Screen != constants.ScreenLogin {
		t.Fatalf("screen = %v, want login", m.route.Screen)
	}
	if m.form == nil || m.formKind != formLogin {
		t.Error("expected the login form to be open")
	}
	if len(h.srv.Requests()) != 0 {
		t.Errorf("expected no API requests before login, got %d", len(h.srv.Requests()))
	}
	if _, ok := h.settings.values[storage.SettingLastPath]; ok {
		t.Error("the login route should not be remembered")
	}
}

func TestTabCyclesScreens(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Read", Frequency: constants.FrequencyMonthly})
	m = start(t, m)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.route.Screen != constants.ScreenHabitList {
		t.Fatalf("screen after tab = %v, want habit list", m.route.Screen)
	}
	if m.habitList.Len() != 1 {
		t.Errorf("habit list has %d habits, want 1", m.habitList.Len())
	}
	if h.settings.values[storage.SettingLastPath] != constants.PathHabits {
		t.Errorf("last path = %q, want %q", h.settings.values[storage.SettingLastPath], constants.PathHabits)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.route.Screen != constants.ScreenDashboard {
		t.Errorf("screen after shift+tab = %v, want dashboard", m.route.Screen)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.route.Screen != constants.ScreenProfile {
		t.Errorf("shift+tab from the first tab = %v, want profile", m.route.Screen)
	}
}

func TestCompleteHabitReloadsList(t *testing.T) {
	m, h := newHarness(t, "token")
	habit := h.srv.AddHabit(models.Habit{Name: "Meditate"})
	m = visit(t, start(t, m), h, constants.PathHabits)

	m = send(t, m, runeKey("c"))

	if h.srv.Calls(http.MethodPost, "/habits/{id}/complete") != 1 {
		t.Fatal("expected the habit to be completed")
	}
	if h.srv.Calls(http.MethodGet, "/habits") != 2 {
		t.Errorf("expected the list to reload after completing, got %d loads", h.srv.Calls(http.MethodGet, "/habits"))
	}
	got, ok := m.habitList.Selected()
	if !ok || got.ID != habit.ID || !got.Completed {
		t.Errorf("expected the reloaded habit to be completed, got %+v", got)
	}
}

func TestCompleteFromDashboardReloadsDashboard(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Stretch"})
	m = start(t, m)

	m = send(t, m, runeKey("c"))

	if h.srv.Calls(http.MethodGet, "/habits/today") != 2 {
		t.Errorf("expected the dashboard to reload, got %d loads", h.srv.Calls(http.MethodGet, "/habits/today"))
	}
	if m.dashboard.LastCompletion == nil || m.dashboard.LastCompletion.ManaAwarded != apitest.ManaPerCompletion {
		t.Errorf("LastCompletion = %+v", m.dashboard.LastCompletion)
	}
	if !strings.Contains(m.status, "+10 mana") {
		t.Errorf("status = %q, want completion message", m.status)
	}
}

func TestDeleteHabitThroughModal(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Journal"})
	m = visit(t, start(t, m), h, constants.PathHabits)

	m = send(t, m, runeKey("d"))
	if !m.modal.IsOpen() || !m.habits.DeleteModalOpen() {
		t.Fatal("expected the confirmation modal to open")
	}
	if h.srv.Calls(http.MethodDelete, "/habits/{id}") != 0 {
		t.Fatal("nothing should be deleted before confirming")
	}

	m = send(t, m, runeKey("y"))

	if m.modal.IsOpen() || m.habits.DeleteModalOpen() {
		t.Error("expected the modal to close after deleting")
	}
	if len(h.srv.Habits()) != 0 {
		t.Error("expected the habit to be deleted")
	}
	if h.srv.Calls(http.MethodGet, "/habits") != 2 {
		t.Errorf("expected the list to reload after deleting, got %d loads", h.srv.Calls(http.MethodGet, "/habits"))
	}
	if m.habitList.Len() != 0 {
		t.Errorf("habit list has %d habits, want 0", m.habitList.Len())
	}
}

func TestCancelDelete(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Journal"})
	m = visit(t, start(t, m), h, constants.PathHabits)

	m = send(t, m, runeKey("d"))
	m = send(t, m, runeKey("n"))

	if m.modal.IsOpen() || m.habits.PendingDelete() != "" {
		t.Error("expected the modal to close without a pending delete")
	}
	if h.srv.Calls(http.MethodDelete, "/habits/{id}") != 0 {
		t.Error("expected no delete request")
	}
}

func TestFailedDeleteKeepsModalOpen(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Journal"})
	m = visit(t, start(t, m), h, constants.PathHabits)
	h.srv.Fail(http.MethodDelete, "/habits/{id}", http.StatusInternalServerError, "database down")

	m = send(t, m, runeKey("d"))
	m = send(t, m, runeKey("y"))

	if !m.modal.IsOpen() || !m.habits.DeleteModalOpen() {
		t.Error("expected the modal to stay open after a failed delete")
	}
	if m.status != "database down" || !m.statusError {
		t.Errorf("status = %q (error=%v), want server message", m.status, m.statusError)
	}
	if h.srv.Calls(http.MethodGet, "/habits") != 1 {
		t.Error("a failed delete should not reload the list")
	}
}

func TestFailedReloadEmptiesList(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Walk"})
	m = visit(t, start(t, m), h, constants.PathHabits)
	if m.habitList.Len() != 1 {
		t.Fatalf("habit list has %d habits, want 1", m.habitList.Len())
	}

	h.srv.Fail(http.MethodGet, "/habits", http.StatusServiceUnavailable, "")
	m = send(t, m, runeKey("r"))

	if m.habitList.Len() != 0 || len(m.habits.Habits) != 0 {
		t.Error("expected a failed reload to empty the list")
	}
	if m.status != "Something went wrong. Please try again." {
		t.Errorf("status = %q, want generic failure", m.status)
	}
	if m.Loading() {
		t.Error("expected loading to finish after a failure")
	}
}

func TestHabitDetailNavigation(t *testing.T) {
	m, h := newHarness(t, "token")
	habit := h.srv.AddHabit(models.Habit{Name: "Run", Description: "5k"})
	h.srv.AddHistory(habit.ID, models.HabitCompletionHistory{CompletedAt: time.Now().Add(-time.Hour), ManaAwarded: 15})
	m = visit(t, start(t, m), h, constants.PathHabits)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.route.Screen != constants.ScreenHabitDetail || m.route.ID() != habit.ID {
		t.Fatalf("route = %+v, want habit detail of %s", m.route, habit.ID)
	}
	if m.habitDetail.Habit == nil || m.habitDetail.TotalManaAwarded() != 15 {
		t.Errorf("detail not loaded: %+v", m.habitDetail)
	}
	if view := m.View(); !strings.Contains(view, "+15 mana") {
		t.Errorf("detail view missing history entry:\n%s", view)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.route.Screen != constants.ScreenHabitList {
		t.Errorf("screen after esc = %v, want habit list", m.route.Screen)
	}
}

func TestStaleDetailResultIsIgnored(t *testing.T) {
	m, h := newHarness(t, "token")
	first := h.srv.AddHabit(models.Habit{Name: "First"})
	second := h.srv.AddHabit(models.Habit{Name: "Second"})
	m = visit(t, start(t, m), h, router.HabitDetailPath(first.ID))
	stale := m.habitDetail

	m = visit(t, m, h, router.HabitDetailPath(second.ID))
	m = send(t, m, habitDetailLoadedMsg{screen: stale, res: stale.Fetch(context.Background())})

	if m.habitDetail.Habit == nil || m.habitDetail.Habit.ID != second.ID {
		t.Errorf("expected the second habit to stay visible, got %+v", m.habitDetail.Habit)
	}
}

func TestLateFormResultsAfterLeaving(t *testing.T) {
	t.Run("habit prefill", func(t *testing.T) {
		m, h := newHarness(t, "token")
		habit := h.srv.AddHabit(models.Habit{Name: "Read"})
		m = visit(t, start(t, m), h, router.HabitEditPath(habit.ID))
		if m.form == nil {
			t.Fatal("expected the edit form to open")
		}
		stale := m.habitForm

		m = visit(t, m, h, constants.PathDashboard)
		m = send(t, m, habitFormLoadedMsg{screen: stale, res: stale.Fetch(context.Background())})

		if m.form != nil {
			t.Error("a late prefill must not reopen the form over the dashboard")
		}
		if m.route.Screen != constants.ScreenDashboard {
			t.Errorf("screen = %v, want dashboard", m.route.Screen)
		}
	})

	t.Run("habit save", func(t *testing.T) {
		m, h := newHarness(t, "token")
		habit := h.srv.AddHabit(models.Habit{Name: "Read"})
		m = visit(t, start(t, m), h, router.HabitEditPath(habit.ID))
		stale := m.habitForm

		m = visit(t, m, h, constants.PathDashboard)
		m = send(t, m, habitSavedMsg{screen: stale, res: screens.HabitFormResult{Habit: &habit}})

		if m.route.Screen != constants.ScreenDashboard {
			t.Errorf("screen = %v, a late save must not navigate", m.route.Screen)
		}

		m = send(t, m, habitSavedMsg{screen: stale, res: screens.HabitFormResult{Err: errors.New("timeout")}})
		if m.form != nil || !m.statusError {
			t.Errorf("form open = %v, status error = %v; want closed form and error status", m.form != nil, m.statusError)
		}
	})

	t.Run("profile save", func(t *testing.T) {
		m, h := newHarness(t, "token")
		m = visit(t, start(t, m), h, constants.PathProfile)
		m = send(t, m, runeKey("e"))
		if m.form == nil {
			t.Fatal("expected the profile form to open")
		}

		m = visit(t, m, h, constants.PathDashboard)
		m = send(t, m, profileSavedMsg{res: screens.ProfileSaveResult{Err: errors.New("timeout")}})

		if m.form != nil {
			t.Error("a late failed save must not reopen the profile form")
		}
		if !m.statusError {
			t.Errorf("status = %q, want the failure reported", m.status)
		}
	})
}

func TestChallenges(t *testing.T) {
	m, h := newHarness(t, "token")
	c := h.srv.AddChallenge(models.Challenge{Title: "Hydrate", TargetProgress: 2})
	h.srv.AddChallenge(models.Challenge{Title: "Done", Status: constants.ChallengeCompleted, Progress: 1, TargetProgress: 1})
	m = visit(t, start(t, m), h, constants.PathGamificationChallenges)

	if len(m.challenges.Filtered()) != 2 {
		t.Fatalf("expected both challenges with the default filter")
	}

	m = send(t, m, runeKey("+"))
	got, _ := h.srv.Challenge(c.ID)
	if got.Progress != 1 {
		t.Errorf("progress = %d, want 1", got.Progress)
	}
	if h.srv.Calls(http.MethodGet, "/gamification/challenges") != 2 {
		t.Error("expected the challenges to reload after progress")
	}

	m = send(t, m, runeKey("f"))
	if m.challenges.Filter != constants.FilterActive || len(m.challenges.Filtered()) != 1 {
		t.Errorf("filter = %s with %d visible, want active with 1", m.challenges.Filter, len(m.challenges.Filtered()))
	}

	// completed challenges take no more progress
	m = send(t, m, runeKey("f"))
	m = send(t, m, runeKey("+"))
	if h.srv.Calls(http.MethodPost, "/gamification/challenges/{id}/progress") != 1 {
		t.Error("expected no progress request for a completed challenge")
	}
}

func TestLeaderboardAndMana(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.SetLeaderboard([]models.LeaderboardEntry{
		{UserID: "user-2", UserName: "Ana", Mana: 300, Level: 4},
		{UserID: "user-1", UserName: "Test User", Mana: 20, Level: 1},
	})
	m = visit(t, start(t, m), h, constants.PathGamificationLeaderboard)

	if m.board.Len() != 2 {
		t.Errorf("board has %d rows, want 2", m.board.Len())
	}
	if req, _ := h.srv.LastRequest(); req.Query != "limit=10" {
		t.Errorf("leaderboard query = %q, want limit=10", req.Query)
	}

	h.srv.Fail(http.MethodGet, "/gamification/mana", http.StatusInternalServerError, "")
	h.session.Set(context.Background(), models.User{ID: "user-1", Mana: 40, Level: 2})
	m = visit(t, m, h, constants.PathGamificationMana)

	if !m.mana.FromSession || m.mana.Info.Current != 40 || m.mana.Info.Level != 2 {
		t.Errorf("mana = %+v (from session %v), want session fallback", m.mana.Info, m.mana.FromSession)
	}
}

func TestLogout(t *testing.T) {
	m, h := newHarness(t, "token")
	m = start(t, m)

	next, cmd := m.Update(runeKey("X"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a logout command")
	}
	msg, ok := cmd().(loggedOutMsg)
	if !ok {
		t.Fatal("expected loggedOutMsg")
	}
	next, _ = m.Update(msg)
	m = next.(Model)

	if h.tokens.token != "" {
		t.Error("expected the token to be deleted")
	}
	if m.route.Screen != constants.ScreenLogin {
		t.Errorf("screen after logout = %v, want login", m.route.Screen)
	}
	if m.status != "Logged out." {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newHarness(t, "token")
	m = start(t, m)

	next, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Error("expected an empty view after quitting")
	}
}

func TestViewRendersNavbarAndContent(t *testing.T) {
	m, h := newHarness(t, "token")
	h.srv.AddHabit(models.Habit{Name: "Drink water"})
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = start(t, m)

	view := m.View()
	for _, want := range []string{"Dashboard", "Habits", "Leaderboard", "Drink water", "Level 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
