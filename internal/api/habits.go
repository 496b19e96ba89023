package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/guardian/internal/models"
)

type HabitService struct {
	client *Client
}

func (s *HabitService) GetHabits(ctx context.Context) ([]models.Habit, error) {
	habits := []models.Habit{}
	if err := s.client.do(ctx, http.MethodGet, "/habits", nil, nil, &habits); err != nil {
		return nil, err
	}
	return nonNil(habits), nil
}

func (s *HabitService) GetTodayHabits(ctx context.Context) ([]models.Habit, error) {
	habits := []models.Habit{}
	if err := s.client.do(ctx, http.MethodGet, "/habits/today", nil, nil, &habits); err != nil {
		return nil, err
	}
	return nonNil(habits), nil
}

func (s *HabitService) GetHabitByID(ctx context.Context, id string) (*models.Habit, error) {
	var habit models.Habit
	if err := s.client.do(ctx, http.MethodGet, pathID("/habits", id), nil, nil, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, req models.HabitCreateRequest) (*models.Habit, error) {
	var habit models.Habit
	if err := s.client.do(ctx, http.MethodPost, "/habits", nil, req, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (s *HabitService) UpdateHabit(ctx context.Context, id string, req models.HabitUpdateRequest) (*models.Habit, error) {
	var habit models.Habit
	if err := s.client.do(ctx, http.MethodPut, pathID("/habits", id), nil, req, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (s *HabitService) DeleteHabit(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, pathID("/habits", id), nil, nil, nil)
}

// CompleteHabit marks the habit done for the current period
func (s *HabitService) CompleteHabit(ctx context.Context, id string) (*models.HabitCompletion, error) {
	var ack models.HabitCompletion
	if err := s.client.do(ctx, http.MethodPost, pathID("/habits", id, "complete"), nil, struct{}{}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (s *HabitService) GetHabitHistory(ctx context.Context, id string) ([]models.HabitCompletionHistory, error) {
	history := []models.HabitCompletionHistory{}
	if err := s.client.do(ctx, http.MethodGet, pathID("/habits", id, "history"), nil, nil, &history); err != nil {
		return nil, err
	}
	return nonNil(history), nil
}

// a literal JSON null decodes to a nil slice
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
