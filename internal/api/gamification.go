package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
)

type GamificationService struct {
	client *Client
}

func (s *GamificationService) GetManaInfo(ctx context.Context) (*models.ManaInfo, error) {
	var info models.ManaInfo
	if err := s.client.do(ctx, http.MethodGet, "/gamification/mana", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *GamificationService) GetChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	if err := s.client.do(ctx, http.MethodGet, "/gamification/challenges", nil, nil, &challenges); err != nil {
		return nil, err
	}
	return nonNil(challenges), nil
}

func (s *GamificationService) GetActiveChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	if err := s.client.do(ctx, http.MethodGet, "/gamification/challenges/active", nil, nil, &challenges); err != nil {
		return nil, err
	}
	return nonNil(challenges), nil
}

func (s *GamificationService) GetChallengeByID(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := s.client.do(ctx, http.MethodGet, pathID("/gamification/challenges", id), nil, nil, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func (s *GamificationService) UpdateChallengeProgress(ctx context.Context, id string, progress int) (*models.ChallengeProgress, error) {
	var out models.ChallengeProgress
	path := pathID("/gamification/challenges", id, "progress")
	if err := s.client.do(ctx, http.MethodPost, path, nil, progressRequest{Progress: progress}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLeaderboard fetches the top entries. A non-positive limit uses the
// default; larger ones are capped at the server maximum.
func (s *GamificationService) GetLeaderboard(ctx context.Context, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = constants.DefaultLeaderboardLimit
	}
	limit = min(limit, constants.MaxLeaderboardLimit)
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}

	var board models.LeaderboardResponse
	if err := s.client.do(ctx, http.MethodGet, "/gamification/leaderboard", query, nil, &board); err != nil {
		return nil, err
	}
	board.Entries = nonNil(board.Entries)
	return &board, nil
}

func (s *GamificationService) GetUserRank(ctx context.Context) (*models.UserRank, error) {
	var rank models.UserRank
	if err := s.client.do(ctx, http.MethodGet, "/gamification/rank", nil, nil, &rank); err != nil {
		return nil, err
	}
	return &rank, nil
}
