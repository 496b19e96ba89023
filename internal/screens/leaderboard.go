package screens

import (
	"context"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
)

type Leaderboard struct {
	LoadState

	game  GamificationService
	limit int

	Entries    []models.LeaderboardEntry
	UserRank   *int
	TotalUsers int
	Err        error
}

type LeaderboardResult struct {
	Board *models.LeaderboardResponse
	Err   error
}

// NewLeaderboard shows the top limit entries; non-positive means the default
func NewLeaderboard(game GamificationService, limit int) *Leaderboard {
	if limit <= 0 {
		limit = constants.DefaultLeaderboardLimit
	}
	return &Leaderboard{game: game, limit: limit, Entries: []models.LeaderboardEntry{}}
}

func (s *Leaderboard) Limit() int {
	return s.limit
}

func (s *Leaderboard) BeginLoad() {
	s.begin()
}

func (s *Leaderboard) Fetch(ctx context.Context) LeaderboardResult {
	board, err := s.game.GetLeaderboard(ctx, s.limit)
	return LeaderboardResult{Board: board, Err: err}
}

// Apply stores the ranking. A failed fetch empties it.
func (s *Leaderboard) Apply(res LeaderboardResult) {
	defer s.end()

	s.Err = res.Err
	if res.Err != nil || res.Board == nil {
		if res.Err != nil {
			logger.Warn("failed to load leaderboard", "error", res.Err)
		}
		s.Entries = []models.LeaderboardEntry{}
		s.UserRank = nil
		s.TotalUsers = 0
		return
	}
	s.Entries = nonNil(res.Board.Entries)
	s.UserRank = res.Board.UserRank
	s.TotalUsers = res.Board.TotalUsers
}

func (s *Leaderboard) Load(ctx context.Context) {
	s.BeginLoad()
	s.Apply(s.Fetch(ctx))
}
