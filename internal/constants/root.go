package constants

import "time"

// Screen identifies one of the client screens reachable through the router
type Screen int

// HabitFrequency represents how often a habit is expected to be completed
type HabitFrequency string

// ChallengeStatus represents the lifecycle state of a challenge
type ChallengeStatus string

// ChallengeFilter represents the filter applied on the challenges screen
type ChallengeFilter string

const (
	AppName            = "guardian"
	DefaultKeyringUser = "api-token"
	DefaultConfigDir   = "~/.config/guardian"
	CacheFileName      = "guardian.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// API defaults
	DefaultAPIURL           = "http://localhost:8080/api/v1"
	DefaultTimeout          = 15 * time.Second
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 100
	DefaultLocale           = "en-US"
	RequestIDHeader         = "X-Request-ID"

	// Mana defaults shown before the server answers
	DefaultManaNextLevel = 100
	DefaultManaLevel     = 1

	// Form constraints
	MinNameLength = 3

	// Habit frequencies
	FrequencyDaily   HabitFrequency = "daily"
	FrequencyWeekly  HabitFrequency = "weekly"
	FrequencyMonthly HabitFrequency = "monthly"

	// Challenge statuses
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeExpired   ChallengeStatus = "expired"

	// Challenge filters
	FilterAll       ChallengeFilter = "all"
	FilterActive    ChallengeFilter = "active"
	FilterCompleted ChallengeFilter = "completed"

	// Router paths
	PathRoot                    = "/"
	PathDashboard               = "/dashboard"
	PathHabits                  = "/habits"
	PathHabitNew                = "/habits/new"
	PathHabitEdit               = "/habits/edit/{id}"
	PathHabitDetail             = "/habits/{id}"
	PathProfile                 = "/profile"
	PathGamification            = "/gamification"
	PathGamificationMana        = "/gamification/mana"
	PathGamificationLeaderboard = "/gamification/leaderboard"
	PathGamificationChallenges  = "/gamification/challenges"
	PathLogin                   = "/login"
)

// Screens
const (
	ScreenDashboard Screen = iota
	ScreenHabitList
	ScreenChallenges
	ScreenLeaderboard
	ScreenMana
	ScreenProfile
	ScreenHabitDetail
	ScreenHabitForm
	ScreenLogin
)

// NumMainTabs is the number of screens shown in the navbar
const NumMainTabs = 6

// Frequencies lists the habit frequencies in display order
var Frequencies = []HabitFrequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
