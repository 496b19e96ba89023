package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/router"
	"github.com/julianstephens/guardian/internal/screens"
	"github.com/julianstephens/guardian/internal/session"
	"github.com/julianstephens/guardian/internal/tui/components/habits"
	"github.com/julianstephens/guardian/internal/tui/components/leaderboard"
	"github.com/julianstephens/guardian/internal/tui/components/modal"
	"github.com/julianstephens/guardian/internal/tui/components/navbar"
)

// Tokens resolves and stores the bearer token
type Tokens interface {
	Token() string
	SetToken(token string) error
	DeleteToken() error
}

// Settings persists small client preferences
type Settings interface {
	SetSetting(ctx context.Context, key, value string) error
}

type Deps struct {
	Client     *api.Client
	Session    *session.Session
	Tokens     Tokens
	Router     *router.Router
	Translator *i18n.Translator
	// Settings is optional; without it the last path is not remembered
	Settings         Settings
	LeaderboardLimit int
}

type Model struct {
	ctx  context.Context
	deps Deps
	tr   *i18n.Translator

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	navbar  navbar.Model
	modal   modal.Model

	todayList   habits.Model
	habitList   habits.Model
	board       leaderboard.Model
	progressBar progress.Model

	form     *huh.Form
	formKind formKind

	route        router.Route
	routeVersion uint64
	synced       bool

	dashboard       *screens.Dashboard
	habits          *screens.HabitList
	habitDetail     *screens.HabitDetail
	habitForm       *screens.HabitForm
	challenges      *screens.Challenges
	challengeCursor int
	leaderboard     *screens.Leaderboard
	mana            *screens.Mana
	profile         *screens.Profile
	login           *screens.Login

	user        *models.User
	userCh      <-chan *models.User
	unsubscribe func()

	status      string
	statusError bool
	quitting    bool
	width       int
	height      int
}

func NewModel(ctx context.Context, deps Deps) Model {
	tr := deps.Translator
	client := deps.Client
	nav := deps.Router

	tabs := []navbar.Tab{
		{Title: tr.T("nav.dashboard"), Path: constants.PathDashboard},
		{Title: tr.T("nav.habits"), Path: constants.PathHabits},
		{Title: tr.T("nav.challenges"), Path: constants.PathGamificationChallenges},
		{Title: tr.T("nav.leaderboard"), Path: constants.PathGamificationLeaderboard},
		{Title: tr.T("nav.mana"), Path: constants.PathGamificationMana},
		{Title: tr.T("nav.profile"), Path: constants.PathProfile},
	}

	todayKeys := habits.DefaultKeyMap()
	todayKeys.Edit.SetEnabled(false)
	todayKeys.Delete.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctx:         ctx,
		deps:        deps,
		tr:          tr,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		navbar:      navbar.New(constants.AppName, tabs),
		modal:       modal.New(tr.T("modal.confirm"), tr.T("modal.cancel")),
		todayList:   habits.New(tr, todayKeys, 0, 0),
		habitList:   habits.New(tr, habits.DefaultKeyMap(), 0, 0),
		board:       leaderboard.New(tr, 10),
		progressBar: progress.New(progress.WithDefaultGradient()),
		dashboard:   screens.NewDashboard(client.Habits, client.Gamification, deps.Session),
		habits:      screens.NewHabitList(client.Habits, nav),
		challenges:  screens.NewChallenges(client.Gamification, tr),
		leaderboard: screens.NewLeaderboard(client.Gamification, deps.LeaderboardLimit),
		mana:        screens.NewMana(client.Gamification, deps.Session),
		profile:     screens.NewProfile(client.Users, deps.Session, tr),
		user:        deps.Session.Current(),
	}
	m.userCh, m.unsubscribe = deps.Session.Subscribe()
	return m
}

// Close stops listening to session changes
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

type startMsg struct{}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		m.spinner.Tick,
		waitForUser(m.userCh),
	)
}

// Loading reports whether the visible screen is waiting for the API
func (m Model) Loading() bool {
	switch m.route.Screen {
	case constants.ScreenDashboard:
		return m.dashboard.Loading()
	case constants.ScreenHabitList:
		return m.habits.Loading()
	case constants.ScreenHabitDetail:
		return m.habitDetail != nil && m.habitDetail.Loading()
	case constants.ScreenHabitForm:
		return m.habitForm != nil && m.habitForm.Loading()
	case constants.ScreenChallenges:
		return m.challenges.Loading()
	case constants.ScreenLeaderboard:
		return m.leaderboard.Loading()
	case constants.ScreenMana:
		return m.mana.Loading()
	case constants.ScreenProfile:
		return m.profile.Loading()
	case constants.ScreenLogin:
		return m.login != nil && m.login.Loading()
	}
	return false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	switch m.route.Screen {
	case constants.ScreenDashboard:
		k := m.todayList.Keys()
		keys = append(keys, k.Complete, k.Add)
	case constants.ScreenHabitList:
		k := m.habitList.Keys()
		keys = append(keys, k.Add, k.Complete, k.Edit, k.Delete)
	case constants.ScreenHabitDetail:
		keys = append(keys, m.keys.Edit, m.keys.Back)
	case constants.ScreenChallenges:
		keys = append(keys, m.keys.Filter, m.keys.Progress)
	case constants.ScreenProfile:
		keys = append(keys, m.keys.Edit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Back, m.keys.Refresh, m.keys.Logout, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	return [][]key.Binding{global, navigation, m.ShortHelp()[4:]}
}

// authenticated reports whether requests will carry a token
func (m Model) authenticated() bool {
	return m.deps.Tokens != nil && m.deps.Tokens.Token() != ""
}

func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusError = isError
}
