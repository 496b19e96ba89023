// Package router maps client paths such as /habits/{id} to screens and keeps
// the navigation history.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/julianstephens/guardian/internal/constants"
)

var ErrUnknownPath = errors.New("unknown path")

// maxHistory bounds Back; the oldest entries are dropped first
const maxHistory = 50

// Route is a resolved location
type Route struct {
	Path   string
	Screen constants.Screen
	Vars   map[string]string
}

// ID returns the {id} path variable, or ""
func (r Route) ID() string {
	return r.Vars["id"]
}

type routeDef struct {
	name   string
	path   string
	screen constants.Screen
}

// Registration order matters: /habits/new must win over /habits/{id}
var routeDefs = []routeDef{
	{"dashboard", constants.PathDashboard, constants.ScreenDashboard},
	{"habits", constants.PathHabits, constants.ScreenHabitList},
	{"habit-new", constants.PathHabitNew, constants.ScreenHabitForm},
	{"habit-edit", constants.PathHabitEdit, constants.ScreenHabitForm},
	{"habit-detail", constants.PathHabitDetail, constants.ScreenHabitDetail},
	{"profile", constants.PathProfile, constants.ScreenProfile},
	{"mana", constants.PathGamificationMana, constants.ScreenMana},
	{"leaderboard", constants.PathGamificationLeaderboard, constants.ScreenLeaderboard},
	{"challenges", constants.PathGamificationChallenges, constants.ScreenChallenges},
	{"login", constants.PathLogin, constants.ScreenLogin},
}

var redirects = map[string]string{
	constants.PathRoot:         constants.PathDashboard,
	constants.PathGamification: constants.PathGamificationMana,
}

// Router is safe for concurrent use
type Router struct {
	mux     *mux.Router
	screens map[string]constants.Screen

	mu      sync.RWMutex
	current Route
	history []Route
	version uint64
}

// New returns a router positioned on the dashboard
func New() *Router {
	r := &Router{
		mux:     mux.NewRouter(),
		screens: make(map[string]constants.Screen, len(routeDefs)),
	}
	for _, def := range routeDefs {
		r.mux.NewRoute().Path(def.path).Methods(http.MethodGet).Name(def.name)
		r.screens[def.name] = def.screen
	}
	r.current, _ = r.Resolve(constants.PathDashboard)
	return r
}

// Resolve matches path without navigating
func (r *Router) Resolve(path string) (Route, error) {
	path = normalize(path)
	if target, ok := redirects[path]; ok {
		path = target
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
	var match mux.RouteMatch
	if !r.mux.Match(req, &match) || match.MatchErr != nil {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	vars := make(map[string]string, len(match.Vars))
	for k, v := range match.Vars {
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		vars[k] = v
	}
	return Route{
		Path:   path,
		Screen: r.screens[match.Route.GetName()],
		Vars:   vars,
	}, nil
}

// Navigate moves to path. An unknown path leaves the current route untouched.
func (r *Router) Navigate(path string) error {
	route, err := r.Resolve(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, r.current)
	if over := len(r.history) - maxHistory; over > 0 {
		r.history = append(r.history[:0], r.history[over:]...)
	}
	r.current = route
	r.version++
	return nil
}

// Back returns to the previous route, reporting false when there is none
func (r *Router) Back() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.version++
	return true
}

func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Version increases on every route change
func (r *Router) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// URL builds the path of a named route
func (r *Router) URL(name string, pairs ...string) (string, error) {
	route := r.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: route %q", ErrUnknownPath, name)
	}
	u, err := route.URLPath(pairs...)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// HabitDetailPath returns /habits/{id}
func HabitDetailPath(id string) string {
	return "/habits/" + url.PathEscape(id)
}

// HabitEditPath returns /habits/edit/{id}
func HabitEditPath(id string) string {
	return "/habits/edit/" + url.PathEscape(id)
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
