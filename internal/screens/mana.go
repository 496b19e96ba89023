package screens

import (
	"context"

	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
)

type Mana struct {
	LoadState

	game    GamificationService
	session Session

	Info models.ManaInfo
	// FromSession is set when Info was derived from the cached user
	FromSession bool
}

type ManaResult struct {
	Info *models.ManaInfo
	Err  error
}

func NewMana(game GamificationService, session Session) *Mana {
	return &Mana{game: game, session: session, Info: models.DefaultManaInfo()}
}

func (s *Mana) BeginLoad() {
	s.begin()
}

func (s *Mana) Fetch(ctx context.Context) ManaResult {
	info, err := s.game.GetManaInfo(ctx)
	return ManaResult{Info: info, Err: err}
}

// Apply stores the mana info, falling back to the session user on failure
func (s *Mana) Apply(res ManaResult) {
	defer s.end()

	if res.Err != nil || res.Info == nil {
		if res.Err != nil {
			logger.Warn("failed to load mana, using cached user", "error", res.Err)
		}
		s.Info = models.ManaFromUser(s.session.Current())
		s.FromSession = true
		return
	}
	s.Info = *res.Info
	s.FromSession = false
}

func (s *Mana) Load(ctx context.Context) {
	s.BeginLoad()
	s.Apply(s.Fetch(ctx))
}

func (s *Mana) Percentage() float64 {
	return s.Info.Percentage()
}
