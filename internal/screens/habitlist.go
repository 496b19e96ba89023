package screens

import (
	"context"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/router"
)

type HabitList struct {
	LoadState

	habits HabitService
	nav    Navigator

	Habits []models.Habit
	Err    error

	deleteModalOpen bool
	pendingDelete   string
}

type HabitListResult struct {
	Habits []models.Habit
	Err    error
}

func NewHabitList(habits HabitService, nav Navigator) *HabitList {
	return &HabitList{habits: habits, nav: nav, Habits: []models.Habit{}}
}

func (s *HabitList) BeginLoad() {
	s.begin()
}

func (s *HabitList) Fetch(ctx context.Context) HabitListResult {
	habits, err := s.habits.GetHabits(ctx)
	return HabitListResult{Habits: habits, Err: err}
}

// Apply stores the fetched list. A failed fetch empties the list.
func (s *HabitList) Apply(res HabitListResult) {
	defer s.end()

	s.Err = res.Err
	if res.Err != nil {
		logger.Warn("failed to load habits", "error", res.Err)
		s.Habits = []models.Habit{}
		return
	}
	s.Habits = nonNil(res.Habits)
}

func (s *HabitList) Load(ctx context.Context) {
	s.BeginLoad()
	s.Apply(s.Fetch(ctx))
}

// SendComplete marks a habit done without touching screen state
func (s *HabitList) SendComplete(ctx context.Context, habitID string) error {
	if _, err := s.habits.CompleteHabit(ctx, habitID); err != nil {
		logger.Error("failed to complete habit", "habit", habitID, "error", err)
		return err
	}
	return nil
}

// Complete marks a habit done and reloads the list
func (s *HabitList) Complete(ctx context.Context, habitID string) error {
	if err := s.SendComplete(ctx, habitID); err != nil {
		return err
	}
	s.Load(ctx)
	return nil
}

// RequestDelete opens the confirmation modal for habitID
func (s *HabitList) RequestDelete(habitID string) {
	s.pendingDelete = habitID
	s.deleteModalOpen = true
}

func (s *HabitList) CancelDelete() {
	s.pendingDelete = ""
	s.deleteModalOpen = false
}

func (s *HabitList) DeleteModalOpen() bool {
	return s.deleteModalOpen
}

// PendingDelete is the habit awaiting confirmation, or ""
func (s *HabitList) PendingDelete() string {
	return s.pendingDelete
}

// SendDelete deletes a habit without touching screen state
func (s *HabitList) SendDelete(ctx context.Context, habitID string) error {
	if err := s.habits.DeleteHabit(ctx, habitID); err != nil {
		logger.Error("failed to delete habit", "habit", habitID, "error", err)
		return err
	}
	return nil
}

// DeleteSucceeded closes the modal after a confirmed delete
func (s *HabitList) DeleteSucceeded() {
	s.CancelDelete()
}

// ConfirmDelete deletes the pending habit, closes the modal and reloads. On
// failure the modal stays open. Without a pending habit it does nothing.
func (s *HabitList) ConfirmDelete(ctx context.Context) error {
	if s.pendingDelete == "" {
		return nil
	}
	if err := s.SendDelete(ctx, s.pendingDelete); err != nil {
		return err
	}
	s.DeleteSucceeded()
	s.Load(ctx)
	return nil
}

func (s *HabitList) Edit(habitID string) error {
	return s.nav.Navigate(router.HabitEditPath(habitID))
}

func (s *HabitList) View(habitID string) error {
	return s.nav.Navigate(router.HabitDetailPath(habitID))
}

func (s *HabitList) Create() error {
	return s.nav.Navigate(constants.PathHabitNew)
}
