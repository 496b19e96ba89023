// Package apitest runs an in-memory fake of the guardian REST API for tests.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
)

// ManaPerCompletion is awarded by the fake for every completed habit
const ManaPerCompletion = 10

type failure struct {
	status  int
	message string
}

// Request is a recorded call
type Request struct {
	Method string
	Route  string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a fake API. Routes are matched with the same templates the
// client uses, and any route can be made to fail.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	token       string
	user        models.User
	accounts    map[string]string
	habits      map[string]*models.Habit
	history     map[string][]models.HabitCompletionHistory
	challenges  []models.Challenge
	leaderboard []models.LeaderboardEntry
	stats       models.UserStats
	mana        *models.ManaInfo
	failures    map[string]failure
	requests    []Request
}

// New starts a fake API that requires no token. It is closed when the test ends.
func New(t testing.TB) *Server {
	return NewWithToken(t, "")
}

// NewWithToken starts a fake API that rejects requests without the given
// bearer token, except for auth and health routes.
func NewWithToken(t testing.TB, token string) *Server {
	s := &Server{
		token:    token,
		user:     models.User{ID: "user-1", Name: "Test User", Email: "test@example.com", Level: 1},
		accounts: map[string]string{},
		habits:   map[string]*models.Habit{},
		history:  map[string][]models.HabitCompletionHistory{},
		stats:    models.UserStats{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record, s.inject, s.authenticate)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)

	r.HandleFunc("/habits", s.handleListHabits).Methods(http.MethodGet)
	r.HandleFunc("/habits", s.handleCreateHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/today", s.handleTodayHabits).Methods(http.MethodGet)
	r.HandleFunc("/habits/{id}", s.handleGetHabit).Methods(http.MethodGet)
	r.HandleFunc("/habits/{id}", s.handleUpdateHabit).Methods(http.MethodPut)
	r.HandleFunc("/habits/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	r.HandleFunc("/habits/{id}/complete", s.handleCompleteHabit).Methods(http.MethodPost)
	r.HandleFunc("/habits/{id}/history", s.handleHabitHistory).Methods(http.MethodGet)

	r.HandleFunc("/users/profile", s.handleGetProfile).Methods(http.MethodGet)
	r.HandleFunc("/users/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/users/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/gamification/mana", s.handleMana).Methods(http.MethodGet)
	r.HandleFunc("/gamification/challenges", s.handleListChallenges).Methods(http.MethodGet)
	r.HandleFunc("/gamification/challenges/active", s.handleActiveChallenges).Methods(http.MethodGet)
	r.HandleFunc("/gamification/challenges/{id}", s.handleGetChallenge).Methods(http.MethodGet)
	r.HandleFunc("/gamification/challenges/{id}/progress", s.handleChallengeProgress).Methods(http.MethodPost)
	r.HandleFunc("/gamification/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/gamification/rank", s.handleRank).Methods(http.MethodGet)
	return r
}

// Fail makes every request to route (a template such as "/habits/{id}")
// with method answer status and an {"message": message} body.
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+route] = failure{status: status, message: message}
}

// Heal removes an injected failure
func (s *Server) Heal(method, route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+route)
}

// Calls counts recorded requests to route with method
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Method == method && req.Route == route {
			n++
		}
	}
	return n
}

// Requests returns every recorded request in arrival order
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or false if none
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Server) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// AddAccount registers credentials accepted by /auth/login for the current user
func (s *Server) AddAccount(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(email)] = password
}

// AddHabit stores h, assigning an id and timestamps when missing
func (s *Server) AddHabit(h models.Habit) models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.UserID == "" {
		h.UserID = s.user.ID
	}
	if h.Frequency == "" {
		h.Frequency = constants.FrequencyDaily
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC().Add(time.Duration(len(s.habits)) * time.Millisecond)
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = h.CreatedAt
	}
	stored := h
	s.habits[h.ID] = &stored
	return h
}

func (s *Server) Habit(id string) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, false
	}
	return *h, true
}

func (s *Server) Habits() []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedHabits()
}

func (s *Server) AddHistory(habitID string, entry models.HabitCompletionHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.HabitID = habitID
	s.history[habitID] = append(s.history[habitID], entry)
}

func (s *Server) AddChallenge(c models.Challenge) models.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = constants.ChallengeActive
	}
	s.challenges = append(s.challenges, c)
	return c
}

func (s *Server) Challenge(id string) (models.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.ID == id {
			return c, true
		}
	}
	return models.Challenge{}, false
}

// SetLeaderboard replaces the ranking; entries are ranked in the given order
func (s *Server) SetLeaderboard(entries []models.LeaderboardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = make([]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		e.Rank = i + 1
		s.leaderboard[i] = e
	}
}

func (s *Server) SetStats(stats models.UserStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// SetMana pins the mana response; by default it is derived from the user
func (s *Server) SetMana(info models.ManaInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mana = &info
}

func (s *Server) sortedHabits() []models.Habit {
	out := make([]models.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, _ := mux.CurrentRoute(r).GetPathTemplate()
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Route:  route,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, _ := mux.CurrentRoute(r).GetPathTemplate()
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+route]
		s.mu.Unlock()
		if ok {
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" || strings.HasPrefix(r.URL.Path, "/auth/") || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	password, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{Token: s.issuedToken(), User: s.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name, email and password are required"})
		return
	}
	if req.Password != req.ConfirmPassword {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "passwords do not match"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(req.Email)
	if _, exists := s.accounts[email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
		return
	}
	now := time.Now().UTC()
	s.accounts[email] = req.Password
	s.user = models.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Level: 1, CreatedAt: &now, UpdatedAt: &now}
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: s.issuedToken(), User: s.user})
}

func (s *Server) issuedToken() string {
	if s.token != "" {
		return s.token
	}
	return "test-token"
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sortedHabits())
}

func (s *Server) handleTodayHabits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := []models.Habit{}
	for _, h := range s.sortedHabits() {
		if h.Frequency == constants.FrequencyDaily {
			today = append(today, h)
		}
	}
	writeJSON(w, http.StatusOK, today)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req models.HabitCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}
	h := s.AddHabit(models.Habit{Name: req.Name, Description: req.Description, Frequency: req.Frequency})
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	h, ok := s.Habit(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var req models.HabitUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[mux.Vars(r)["id"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
		return
	}
	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.Frequency != nil {
		h.Frequency = *req.Frequency
	}
	h.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, *h)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := s.habits[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
		return
	}
	delete(s.habits, id)
	delete(s.history, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	h, ok := s.habits[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
		return
	}
	now := time.Now().UTC()
	h.Completed = true
	h.CompletionCount++
	h.Streak++
	h.UpdatedAt = now
	s.history[id] = append(s.history[id], models.HabitCompletionHistory{
		ID: uuid.NewString(), HabitID: id, CompletedAt: now, ManaAwarded: ManaPerCompletion,
	})
	s.user.Mana += ManaPerCompletion
	writeJSON(w, http.StatusOK, models.HabitCompletion{
		Message:     "habit completed",
		ManaAwarded: ManaPerCompletion,
		Streak:      h.Streak,
	})
}

func (s *Server) handleHabitHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	if _, ok := s.habits[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "habit not found"})
		return
	}
	history := append([]models.HabitCompletionHistory{}, s.history[id]...)
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.User())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Name != "" {
		s.user.Name = req.Name
	}
	if req.Email != "" {
		s.user.Email = req.Email
	}
	now := time.Now().UTC()
	s.user.UpdatedAt = &now
	writeJSON(w, http.StatusOK, s.user)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stats)
}

func (s *Server) handleMana(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mana != nil {
		writeJSON(w, http.StatusOK, *s.mana)
		return
	}
	level := max(s.user.Level, 1)
	writeJSON(w, http.StatusOK, models.ManaInfo{Current: s.user.Mana, NextLevel: level * 100, Level: level})
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Challenge{}, s.challenges...))
}

func (s *Server) handleActiveChallenges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := []models.Challenge{}
	for _, c := range s.challenges {
		if c.Status == constants.ChallengeActive {
			active = append(active, c)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	c, ok := s.Challenge(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "challenge not found"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleChallengeProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Progress int `json:"progress"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i := range s.challenges {
		c := &s.challenges[i]
		if c.ID != id {
			continue
		}
		c.Progress = req.Progress
		if c.TargetProgress > 0 && c.Progress >= c.TargetProgress {
			c.Status = constants.ChallengeCompleted
		}
		writeJSON(w, http.StatusOK, models.ChallengeProgress{
			ChallengeID: id,
			Progress:    c.Progress,
			Completed:   c.Status == constants.ChallengeCompleted,
		})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "challenge not found"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid limit"})
			return
		}
		limit = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.leaderboard
	if len(entries) > limit {
		entries = entries[:limit]
	}
	resp := models.LeaderboardResponse{
		Entries:    append([]models.LeaderboardEntry{}, entries...),
		TotalUsers: len(s.leaderboard),
	}
	if rank := s.rankOf(s.user.ID); rank > 0 {
		resp.UserRank = &rank
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rank := s.rankOf(s.user.ID)
	if rank == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not ranked"})
		return
	}
	writeJSON(w, http.StatusOK, models.UserRank{Rank: rank, TotalUsers: len(s.leaderboard)})
}

func (s *Server) rankOf(userID string) int {
	for _, e := range s.leaderboard {
		if e.UserID == userID {
			return e.Rank
		}
	}
	return 0
}
