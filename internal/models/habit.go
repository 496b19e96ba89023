package models

import (
	"time"

	"github.com/julianstephens/guardian/internal/constants"
)

type Habit struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"userId"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	Frequency       constants.HabitFrequency `json:"frequency"`
	Completed       bool                     `json:"completed"`
	CompletionCount int                      `json:"completionCount"`
	Streak          int                      `json:"streak"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type HabitCreateRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Frequency   constants.HabitFrequency `json:"frequency"`
}

// HabitUpdateRequest carries a partial update; nil fields are left untouched by the server
type HabitUpdateRequest struct {
	Name        *string                   `json:"name,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Frequency   *constants.HabitFrequency `json:"frequency,omitempty"`
}

type HabitCompletionHistory struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habitId"`
	CompletedAt time.Time `json:"completedAt"`
	ManaAwarded int       `json:"manaAwarded"`
}

// HabitCompletion is the acknowledgement returned by POST /habits/{id}/complete.
// Every field is optional; servers may answer with an empty object.
type HabitCompletion struct {
	Message     string `json:"message,omitempty"`
	ManaAwarded int    `json:"manaAwarded,omitempty"`
	Streak      int    `json:"streak,omitempty"`
}
