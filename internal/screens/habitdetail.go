package screens

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/router"
)

type HabitDetail struct {
	LoadState

	habits HabitService
	nav    Navigator

	ID      string
	Habit   *models.Habit
	History []models.HabitCompletionHistory
	Err     error
}

type HabitDetailResult struct {
	Habit      *models.Habit
	HabitErr   error
	History    []models.HabitCompletionHistory
	HistoryErr error
}

func NewHabitDetail(habits HabitService, nav Navigator, id string) *HabitDetail {
	return &HabitDetail{
		habits:  habits,
		nav:     nav,
		ID:      id,
		History: []models.HabitCompletionHistory{},
	}
}

func (s *HabitDetail) BeginLoad() {
	s.begin()
}

// Fetch loads the habit and its history independently
func (s *HabitDetail) Fetch(ctx context.Context) HabitDetailResult {
	var res HabitDetailResult
	if s.ID == "" {
		return res
	}

	var g errgroup.Group
	g.Go(func() error {
		res.Habit, res.HabitErr = s.habits.GetHabitByID(ctx, s.ID)
		return nil
	})
	g.Go(func() error {
		res.History, res.HistoryErr = s.habits.GetHabitHistory(ctx, s.ID)
		return nil
	})
	_ = g.Wait()
	return res
}

func (s *HabitDetail) Apply(res HabitDetailResult) {
	defer s.end()

	s.Err = res.HabitErr
	if res.HabitErr != nil {
		logger.Warn("failed to load habit", "habit", s.ID, "error", res.HabitErr)
		s.Habit = nil
	} else {
		s.Habit = res.Habit
	}

	if res.HistoryErr != nil {
		logger.Warn("failed to load habit history", "habit", s.ID, "error", res.HistoryErr)
		s.History = []models.HabitCompletionHistory{}
		return
	}
	s.History = nonNil(res.History)
}

func (s *HabitDetail) Load(ctx context.Context) {
	s.BeginLoad()
	s.Apply(s.Fetch(ctx))
}

// TotalManaAwarded sums the mana of every recorded completion
func (s *HabitDetail) TotalManaAwarded() int {
	total := 0
	for _, h := range s.History {
		total += h.ManaAwarded
	}
	return total
}

// Edit opens the edit form; it does nothing until the habit is loaded
func (s *HabitDetail) Edit() error {
	if s.Habit == nil {
		return nil
	}
	return s.nav.Navigate(router.HabitEditPath(s.Habit.ID))
}

func (s *HabitDetail) Back() error {
	return s.nav.Navigate(constants.PathHabits)
}
