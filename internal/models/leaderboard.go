package models

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Mana     int    `json:"mana"`
	Level    int    `json:"level"`
	Avatar   string `json:"avatar,omitempty"`
}

// Medal returns the podium medal for the top three ranks, or "" otherwise
func (e LeaderboardEntry) Medal() string {
	switch e.Rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}

type LeaderboardResponse struct {
	Entries    []LeaderboardEntry `json:"entries"`
	UserRank   *int               `json:"userRank,omitempty"`
	TotalUsers int                `json:"totalUsers"`
}

// UserRank is returned by GET /gamification/rank
type UserRank struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"totalUsers"`
}
