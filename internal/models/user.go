package models

import "time"

// User is the authenticated user's profile as returned by the API
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Mana      int        `json:"mana"`
	Level     int        `json:"level"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProfileUpdate is the payload accepted by PUT /users/profile
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserStats is the free-form statistics object returned by GET /users/stats
type UserStats map[string]any

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SupportContact is an entry of the static support network shown on the profile screen
type SupportContact struct {
	Name  string
	Phone string
	URL   string
}

// SupportContacts lists the support organisations displayed on the profile screen
var SupportContacts = []SupportContact{
	{Name: "INCA - Instituto Nacional de Câncer", Phone: "0800 61 4000", URL: "https://www.inca.gov.br"},
	{Name: "CVV - Centro de Valorização da Vida", Phone: "188", URL: "https://www.cvv.org.br"},
	{Name: "Fundação do Câncer", Phone: "(21) 3547-3232", URL: "https://www.cancer.org.br"},
}
