package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/guardian/internal/models"
)

type UserService struct {
	client *Client
}

func (s *UserService) GetUserProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodGet, "/users/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodPut, "/users/profile", nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetUserStats(ctx context.Context) (models.UserStats, error) {
	stats := models.UserStats{}
	if err := s.client.do(ctx, http.MethodGet, "/users/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = models.UserStats{}
	}
	return stats, nil
}
