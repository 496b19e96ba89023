package screens

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
)

type Dashboard struct {
	LoadState

	habits  HabitService
	game    GamificationService
	session Session

	User             *models.User
	TodayHabits      []models.Habit
	ActiveChallenges []models.Challenge
	Mana             models.ManaInfo
	// LastCompletion is the acknowledgement of the most recent completed habit
	LastCompletion *models.HabitCompletion
}

// DashboardResult carries one dashboard fetch. A nil section failed.
type DashboardResult struct {
	User             *models.User
	TodayHabits      []models.Habit
	ActiveChallenges []models.Challenge
	Mana             *models.ManaInfo
	Errs             []error
}

func NewDashboard(habits HabitService, game GamificationService, session Session) *Dashboard {
	return &Dashboard{
		habits:           habits,
		game:             game,
		session:          session,
		TodayHabits:      []models.Habit{},
		ActiveChallenges: []models.Challenge{},
		Mana:             models.DefaultManaInfo(),
	}
}

func (d *Dashboard) BeginLoad() {
	d.begin()
}

// Fetch reads the independent dashboard sections concurrently
func (d *Dashboard) Fetch(ctx context.Context) DashboardResult {
	res := DashboardResult{User: d.session.Current()}
	var habitsErr, challengesErr, manaErr error

	// Each section fails on its own, so the goroutines never return an error.
	var g errgroup.Group
	g.Go(func() error {
		res.TodayHabits, habitsErr = d.habits.GetTodayHabits(ctx)
		return nil
	})
	g.Go(func() error {
		res.ActiveChallenges, challengesErr = d.game.GetActiveChallenges(ctx)
		return nil
	})
	g.Go(func() error {
		res.Mana, manaErr = d.game.GetManaInfo(ctx)
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{habitsErr, challengesErr, manaErr} {
		if err != nil {
			res.Errs = append(res.Errs, err)
		}
	}
	return res
}

func (d *Dashboard) Apply(res DashboardResult) {
	defer d.end()

	d.User = res.User
	d.TodayHabits = nonNil(res.TodayHabits)
	d.ActiveChallenges = nonNil(res.ActiveChallenges)
	if res.Mana != nil {
		d.Mana = *res.Mana
	}
	if len(res.Errs) > 0 {
		logger.Warn("dashboard loaded partially", "failed", len(res.Errs), "error", res.Errs[0])
	}
}

func (d *Dashboard) Load(ctx context.Context) {
	d.BeginLoad()
	d.Apply(d.Fetch(ctx))
}

// SendComplete marks a habit done without touching screen state
func (d *Dashboard) SendComplete(ctx context.Context, habitID string) (*models.HabitCompletion, error) {
	ack, err := d.habits.CompleteHabit(ctx, habitID)
	if err != nil {
		logger.Error("failed to complete habit", "habit", habitID, "error", err)
		return nil, err
	}
	return ack, nil
}

// CompleteHabit completes a habit and reloads the dashboard. On failure the
// dashboard is left as it was.
func (d *Dashboard) CompleteHabit(ctx context.Context, habitID string) error {
	ack, err := d.SendComplete(ctx, habitID)
	if err != nil {
		return err
	}
	d.LastCompletion = ack
	d.Load(ctx)
	return nil
}

// ManaPercentage is the progress toward the next level
func (d *Dashboard) ManaPercentage() float64 {
	return d.Mana.Percentage()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
