package models

import (
	"time"

	"github.com/julianstephens/guardian/internal/constants"
)

type Challenge struct {
	ID             string                    `json:"id"`
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	Reward         int                       `json:"reward"`
	Status         constants.ChallengeStatus `json:"status"`
	Progress       int                       `json:"progress"`
	TargetProgress int                       `json:"targetProgress"`
	ExpiresAt      *time.Time                `json:"expiresAt,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

// ProgressPercentage returns how far the challenge is toward its target, in percent.
// A challenge without a target reports 0.
func (c Challenge) ProgressPercentage() float64 {
	if c.TargetProgress == 0 {
		return 0
	}
	return float64(c.Progress) / float64(c.TargetProgress) * 100
}

type ChallengeProgress struct {
	ChallengeID string `json:"challengeId"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
}
