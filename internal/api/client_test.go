package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/guardian/internal/api/apitest"
	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/models"
)

func newTestClient(t *testing.T, srv *apitest.Server, token string) *Client {
	t.Helper()
	return New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Tokens: StaticToken(token)})
}

func TestRequestHeaders(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, "secret")

	if _, err := c.Habits.CreateHabit(context.Background(), models.HabitCreateRequest{Name: "Walk", Description: "30 min", Frequency: constants.FrequencyDaily}); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	req, ok := srv.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if req.Header.Get(constants.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, "")

	if _, err := c.Habits.GetHabits(context.Background()); err != nil {
		t.Fatalf("GetHabits failed: %v", err)
	}
	req, _ := srv.LastRequest()
	if req.Header.Get("Authorization") != "" {
		t.Error("expected no Authorization header")
	}
	if req.Header.Get("Content-Type") != "" {
		t.Error("expected no Content-Type on a bodiless GET")
	}
}

func TestUniqueRequestIDs(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	_, _ = c.Habits.GetHabits(ctx)
	_, _ = c.Habits.GetHabits(ctx)

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Header.Get(constants.RequestIDHeader) == reqs[1].Header.Get(constants.RequestIDHeader) {
		t.Error("request ids should differ between calls")
	}
}

func TestFailuresAreRequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		message     string
		wantMessage string
	}{
		{name: "server message", status: http.StatusBadRequest, message: "name is required", wantMessage: "name is required"},
		{name: "unauthorized", status: http.StatusUnauthorized, message: "", wantMessage: ""},
		{name: "server error", status: http.StatusInternalServerError, message: "boom", wantMessage: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			srv.Fail(http.MethodGet, "/habits", tt.status, tt.message)
			c := newTestClient(t, srv, "")

			habits, err := c.Habits.GetHabits(context.Background())
			if !stderrors.Is(err, errors.ErrRequestFailed) {
				t.Fatalf("err = %v, want ErrRequestFailed", err)
			}
			if habits != nil {
				t.Errorf("habits = %v, want nil on failure", habits)
			}

			var reqErr *errors.RequestError
			if !stderrors.As(err, &reqErr) {
				t.Fatalf("err is %T, want *RequestError", err)
			}
			if reqErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", reqErr.StatusCode, tt.status)
			}
			if got := errors.ServerMessage(err); got != tt.wantMessage {
				t.Errorf("ServerMessage = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorFieldIsUsedAsMessage(t *testing.T) {
	srv := apitest.NewWithToken(t, "right")
	c := newTestClient(t, srv, "wrong")

	_, err := c.Users.GetUserProfile(context.Background())
	if got := errors.ServerMessage(err); got != "unauthorized" {
		t.Errorf("ServerMessage = %q, want unauthorized", got)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second})
	_, err := c.Gamification.GetManaInfo(context.Background())
	if !stderrors.Is(err, errors.ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
	var reqErr *errors.RequestError
	if stderrors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", reqErr.StatusCode)
	}
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	if _, err := c.Habits.GetHabits(context.Background()); !stderrors.Is(err, errors.ErrRequestFailed) {
		t.Errorf("err = %v, want ErrRequestFailed", err)
	}
}

func TestNullListDecodesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	habits, err := c.Habits.GetHabits(context.Background())
	if err != nil {
		t.Fatalf("GetHabits failed: %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("habits = %#v, want empty slice", habits)
	}
}

func TestCanceledContext(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Habits.GetHabits(ctx); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want to wrap context.Canceled", err)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	srv := apitest.New(t)
	c := New(Options{BaseURL: srv.URL + "/"})
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	req, _ := srv.LastRequest()
	if req.Path != "/health" {
		t.Errorf("path = %q, want /health", req.Path)
	}
}

func TestDefaults(t *testing.T) {
	c := New(Options{})
	if c.BaseURL() != constants.DefaultAPIURL {
		t.Errorf("BaseURL = %q, want default", c.BaseURL())
	}
	if !strings.HasPrefix(c.BaseURL(), "http") {
		t.Errorf("unexpected base url %q", c.BaseURL())
	}
}
