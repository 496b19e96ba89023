package screens

import (
	"context"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
)

type Challenges struct {
	LoadState

	game GamificationService
	tr   *i18n.Translator

	Challenges []models.Challenge
	Filter     constants.ChallengeFilter
	Err        error
}

type ChallengesResult struct {
	Challenges []models.Challenge
	Err        error
}

func NewChallenges(game GamificationService, tr *i18n.Translator) *Challenges {
	return &Challenges{
		game:       game,
		tr:         tr,
		Challenges: []models.Challenge{},
		Filter:     constants.FilterAll,
	}
}

func (s *Challenges) BeginLoad() {
	s.begin()
}

func (s *Challenges) Fetch(ctx context.Context) ChallengesResult {
	challenges, err := s.game.GetChallenges(ctx)
	return ChallengesResult{Challenges: challenges, Err: err}
}

// Apply stores the fetched challenges. A failed fetch empties the list.
func (s *Challenges) Apply(res ChallengesResult) {
	defer s.end()

	s.Err = res.Err
	if res.Err != nil {
		logger.Warn("failed to load challenges", "error", res.Err)
		s.Challenges = []models.Challenge{}
		return
	}
	s.Challenges = nonNil(res.Challenges)
}

func (s *Challenges) Load(ctx context.Context) {
	s.BeginLoad()
	s.Apply(s.Fetch(ctx))
}

// SetFilter switches the visible subset; unknown filters show everything
func (s *Challenges) SetFilter(filter constants.ChallengeFilter) {
	switch filter {
	case constants.FilterActive, constants.FilterCompleted:
		s.Filter = filter
	default:
		s.Filter = constants.FilterAll
	}
}

// NextFilter cycles all, active, completed
func (s *Challenges) NextFilter() {
	switch s.Filter {
	case constants.FilterAll:
		s.Filter = constants.FilterActive
	case constants.FilterActive:
		s.Filter = constants.FilterCompleted
	default:
		s.Filter = constants.FilterAll
	}
}

// Filtered returns the challenges matching the current filter
func (s *Challenges) Filtered() []models.Challenge {
	var status constants.ChallengeStatus
	switch s.Filter {
	case constants.FilterActive:
		status = constants.ChallengeActive
	case constants.FilterCompleted:
		status = constants.ChallengeCompleted
	default:
		return s.Challenges
	}

	out := []models.Challenge{}
	for _, c := range s.Challenges {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

func (s *Challenges) StatusLabel(status constants.ChallengeStatus) string {
	return s.tr.ChallengeStatus(status)
}

// SendProgress records progress without touching screen state
func (s *Challenges) SendProgress(ctx context.Context, id string, progress int) (*models.ChallengeProgress, error) {
	out, err := s.game.UpdateChallengeProgress(ctx, id, progress)
	if err != nil {
		logger.Error("failed to update challenge progress", "challenge", id, "error", err)
		return nil, err
	}
	return out, nil
}

// UpdateProgress records progress and reloads the list
func (s *Challenges) UpdateProgress(ctx context.Context, id string, progress int) error {
	if _, err := s.SendProgress(ctx, id, progress); err != nil {
		return err
	}
	s.Load(ctx)
	return nil
}
