// Package screens holds the view-models behind every screen of the client.
//
// Each screen loads in three steps so the TUI can keep state changes on its
// update goroutine: BeginLoad marks the screen as loading, Fetch performs the
// requests and may run on any goroutine, and Apply stores the result and clears
// the loading flag. Load runs all three in sequence. Overlapping loads are not
// coordinated; the last result applied wins.
package screens

import (
	"context"

	"github.com/julianstephens/guardian/internal/models"
)

// Navigator moves the client to another path
type Navigator interface {
	Navigate(path string) error
}

// HabitService is the subset of the API used by habit screens
type HabitService interface {
	GetHabits(ctx context.Context) ([]models.Habit, error)
	GetTodayHabits(ctx context.Context) ([]models.Habit, error)
	GetHabitByID(ctx context.Context, id string) (*models.Habit, error)
	CreateHabit(ctx context.Context, req models.HabitCreateRequest) (*models.Habit, error)
	UpdateHabit(ctx context.Context, id string, req models.HabitUpdateRequest) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	CompleteHabit(ctx context.Context, id string) (*models.HabitCompletion, error)
	GetHabitHistory(ctx context.Context, id string) ([]models.HabitCompletionHistory, error)
}

type UserService interface {
	GetUserProfile(ctx context.Context) (*models.User, error)
	UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	GetUserStats(ctx context.Context) (models.UserStats, error)
}

type GamificationService interface {
	GetManaInfo(ctx context.Context) (*models.ManaInfo, error)
	GetChallenges(ctx context.Context) ([]models.Challenge, error)
	GetActiveChallenges(ctx context.Context) ([]models.Challenge, error)
	GetChallengeByID(ctx context.Context, id string) (*models.Challenge, error)
	UpdateChallengeProgress(ctx context.Context, id string, progress int) (*models.ChallengeProgress, error)
	GetLeaderboard(ctx context.Context, limit int) (*models.LeaderboardResponse, error)
	GetUserRank(ctx context.Context) (*models.UserRank, error)
}

type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
}

// Session exposes the signed-in user
type Session interface {
	Current() *models.User
	Set(ctx context.Context, user models.User)
	Clear(ctx context.Context)
}

// TokenStore keeps the bearer token issued at login
type TokenStore interface {
	SetToken(token string) error
	DeleteToken() error
}

// LoadState tracks the loading flag of a screen
type LoadState struct {
	loading  bool
	observer func(loading bool)
}

func (l *LoadState) Loading() bool {
	return l.loading
}

// Observe registers fn to be called on every loading change
func (l *LoadState) Observe(fn func(loading bool)) {
	l.observer = fn
}

func (l *LoadState) begin() { l.set(true) }
func (l *LoadState) end()   { l.set(false) }

func (l *LoadState) set(loading bool) {
	l.loading = loading
	if l.observer != nil {
		l.observer(loading)
	}
}
