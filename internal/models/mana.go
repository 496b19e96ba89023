package models

import "github.com/julianstephens/guardian/internal/constants"

// ManaInfo describes the user's mana balance and progress toward the next level
type ManaInfo struct {
	Current   int `json:"current"`
	NextLevel int `json:"nextLevel"`
	Level     int `json:"level"`
}

// DefaultManaInfo is the value screens show until the server answers
func DefaultManaInfo() ManaInfo {
	return ManaInfo{
		Current:   0,
		NextLevel: constants.DefaultManaNextLevel,
		Level:     constants.DefaultManaLevel,
	}
}

// Percentage returns progress toward the next level. A zero threshold counts as complete.
func (m ManaInfo) Percentage() float64 {
	if m.NextLevel == 0 {
		return 100
	}
	return float64(m.Current) / float64(m.NextLevel) * 100
}

// ManaFromUser builds fallback mana info from a cached user
func ManaFromUser(u *User) ManaInfo {
	info := DefaultManaInfo()
	if u == nil {
		return info
	}
	info.Current = u.Mana
	if u.Level > 0 {
		info.Level = u.Level
	}
	return info
}
