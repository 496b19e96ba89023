package system

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/api/apitest"
	"github.com/julianstephens/guardian/internal/cli"
	"github.com/julianstephens/guardian/internal/config"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/router"
	"github.com/julianstephens/guardian/internal/session"
	"github.com/julianstephens/guardian/internal/storage"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token() string { return s.token }

func (s *staticTokens) SetToken(token string) error {
	s.token = token
	return nil
}

func (s *staticTokens) DeleteToken() error {
	s.token = ""
	return nil
}

func setupDoctor(t *testing.T, token string) (*cli.Context, *apitest.Server, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	store := storage.NewStore(filepath.Join(t.TempDir(), "guardian.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := apitest.New(t)
	tokens := &staticTokens{token: token}
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config:     config.Config{APIURL: srv.URL, Timeout: 5 * time.Second, LeaderboardLimit: 100},
		Client:     api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Tokens: tokens}),
		Session:    session.New(store),
		Tokens:     tokens,
		Store:      store,
		Translator: i18n.MustTranslator("en-US"),
		Router:     router.New(),
		Out:        out,
	}
	return ctx, srv, out
}

func jwtWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, _, out := setupDoctor(t, jwtWithExpiry(t, time.Now().Add(time.Hour)))

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{
		"✓ Configuration: OK",
		"✓ OS keyring: OK",
		"✓ Cache schema: OK",
		"✓ Auth token: OK",
		"✓ API reachable: OK",
		"All diagnostics passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_Failures(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		setup func(ctx *cli.Context, srv *apitest.Server)
		want  string
	}{
		{
			name:  "expired token",
			token: func(t *testing.T) string { return jwtWithExpiry(t, time.Now().Add(-time.Hour)) },
			want:  "❌ Auth token: FAIL",
		},
		{
			name:  "unreachable API",
			token: func(t *testing.T) string { return "opaque" },
			setup: func(ctx *cli.Context, srv *apitest.Server) {
				srv.Fail(http.MethodGet, "/health", http.StatusServiceUnavailable, "down")
			},
			want: "❌ API reachable: FAIL",
		},
		{
			name:  "invalid config",
			token: func(t *testing.T) string { return "opaque" },
			setup: func(ctx *cli.Context, srv *apitest.Server) {
				ctx.Config.Timeout = 0
			},
			want: "❌ Configuration: FAIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, srv, out := setupDoctor(t, tt.token(t))
			if tt.setup != nil {
				tt.setup(ctx, srv)
			}

			err := (&DoctorCmd{}).Run(ctx)
			if err == nil {
				t.Fatal("expected the diagnostics to fail")
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestDoctorCmd_Warnings(t *testing.T) {
	ctx, _, out := setupDoctor(t, "")
	ctx.Store = nil

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("warnings should not fail the run: %v", err)
	}
	for _, want := range []string{"⚠ Auth token: WARNING", "⊘ Cache schema: SKIPPED"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
