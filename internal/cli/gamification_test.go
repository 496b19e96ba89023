package cli

import (
	"net/http"
	"strings"
	"testing"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
)

func TestManaCmd(t *testing.T) {
	t.Run("server values", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t)
		srv.SetMana(models.ManaInfo{Current: 50, NextLevel: 200, Level: 3})

		cmd := &ManaCmd{}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		for _, want := range []string{"Level 3", "25%", "50 / 200 mana"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("falls back to the cached user", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t)
		srv.Fail(http.MethodGet, "/gamification/mana", http.StatusBadGateway, "")
		ctx.Session.Set(ctx.RequestContext(), models.User{ID: "user-1", Mana: 30, Level: 2})

		cmd := &ManaCmd{}
		if err := cmd.Run(ctx); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		for _, want := range []string{"Showing cached values.", "Level 2", "30 / 100 mana"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})
}

func TestLeaderboardCmd(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	srv.SetLeaderboard([]models.LeaderboardEntry{
		{UserID: "user-2", UserName: "Bia", Mana: 12500, Level: 9},
		{UserID: "user-1", UserName: "Test User", Mana: 800, Level: 3},
		{UserID: "user-3", UserName: "Caio", Mana: 10, Level: 1},
	})
	ctx.Session.Set(ctx.RequestContext(), models.User{ID: "user-1", Name: "Test User"})

	cmd := &LeaderboardCmd{Limit: 2}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"🥇 #1", "12,500", "➜ Test User", "Your rank: #2", "3 players"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Caio") {
		t.Error("expected the limit to cut the third entry")
	}
	if req, _ := srv.LastRequest(); req.Query != "limit=2" {
		t.Errorf("query = %q, want limit=2", req.Query)
	}
}

func TestLeaderboardCmd_Limits(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	ctx.Config.LeaderboardLimit = 25

	if err := (&LeaderboardCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if req, _ := srv.LastRequest(); req.Query != "limit=25" {
		t.Errorf("query = %q, want the configured limit", req.Query)
	}
	if !strings.Contains(out.String(), "The leaderboard is empty.") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&LeaderboardCmd{Limit: 500}).Run(ctx); err == nil {
		t.Error("expected an error for a limit above the maximum")
	}
}

func TestChallengeListCmd(t *testing.T) {
	tests := []struct {
		filter constants.ChallengeFilter
		want   []string
		absent []string
	}{
		{constants.FilterAll, []string{"Hydrate", "Early bird"}, nil},
		{constants.FilterActive, []string{"Hydrate", "[Active]"}, []string{"Early bird"}},
		{constants.FilterCompleted, []string{"Early bird", "[Completed]"}, []string{"Hydrate"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			ctx, srv, out := setupTestContext(t)
			srv.AddChallenge(models.Challenge{Title: "Hydrate", Reward: 50, Progress: 1, TargetProgress: 4})
			srv.AddChallenge(models.Challenge{Title: "Early bird", Status: constants.ChallengeCompleted, Progress: 3, TargetProgress: 3})

			cmd := &ChallengeListCmd{Filter: tt.filter}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(out.String(), absent) {
					t.Errorf("output should not contain %q:\n%s", absent, out.String())
				}
			}
		})
	}
}

func TestChallengeShowCmd(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	c := srv.AddChallenge(models.Challenge{Title: "Hydrate", Description: "Drink water", Reward: 50, Progress: 1, TargetProgress: 4})

	if err := (&ChallengeShowCmd{ID: c.ID}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	for _, want := range []string{"Hydrate  [Active]", "Drink water", "1/4", "Reward: 50 mana"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if err := (&ChallengeShowCmd{ID: "missing"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown challenge")
	}
}

func TestChallengeProgressCmd(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	c := srv.AddChallenge(models.Challenge{Title: "Hydrate", TargetProgress: 2})

	if err := (&ChallengeProgressCmd{ID: c.ID, Progress: 2}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	got, _ := srv.Challenge(c.ID)
	if got.Progress != 2 || got.Status != constants.ChallengeCompleted {
		t.Errorf("challenge = %+v, want completed at 2", got)
	}
	if !strings.Contains(out.String(), "Challenge progress updated.") || !strings.Contains(out.String(), "Completed") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&ChallengeProgressCmd{ID: c.ID, Progress: -1}).Run(ctx); err == nil {
		t.Error("expected an error for negative progress")
	}
}

func TestDashboardCmd(t *testing.T) {
	ctx, srv, out := setupTestContext(t)
	srv.AddHabit(models.Habit{Name: "Meditate"})
	srv.AddChallenge(models.Challenge{Title: "Hydrate", Progress: 1, TargetProgress: 4})
	srv.Fail(http.MethodGet, "/gamification/mana", http.StatusInternalServerError, "")
	ctx.Session.Set(ctx.RequestContext(), models.User{ID: "user-1", Name: "Ana"})

	if err := (&DashboardCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	for _, want := range []string{"Hello, Ana!", "Level 1", "○ Meditate", "Hydrate 1/4"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProfileCmds(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t)
		srv.SetStats(models.UserStats{"totalHabits": 4, "longestStreak": 9})

		if err := (&ProfileShowCmd{}).Run(ctx); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		output := out.String()
		for _, want := range []string{"Test User <test@example.com>", "longestStreak: 9", "totalHabits: 4", "CVV"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
		if strings.Index(output, "longestStreak") > strings.Index(output, "totalHabits") {
			t.Error("expected stats sorted by key")
		}
	})

	t.Run("update", func(t *testing.T) {
		ctx, srv, out := setupTestContext(t)

		if err := (&ProfileUpdateCmd{Name: "Ana Souza"}).Run(ctx); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if u := srv.User(); u.Name != "Ana Souza" || u.Email != "test@example.com" {
			t.Errorf("server user = %+v", u)
		}
		if u := ctx.Session.Current(); u == nil || u.Name != "Ana Souza" {
			t.Errorf("session user = %+v", u)
		}
		if !strings.Contains(out.String(), "Profile updated successfully!") {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		ctx, srv, _ := setupTestContext(t)

		err := (&ProfileUpdateCmd{Email: "not-an-email"}).Run(ctx)
		if err == nil || !strings.Contains(err.Error(), "Enter a valid email address.") {
			t.Fatalf("Run() error = %v", err)
		}
		if srv.Calls(http.MethodPut, "/users/profile") != 0 {
			t.Error("nothing should be sent for an invalid form")
		}
	})

	t.Run("unreachable without cache", func(t *testing.T) {
		ctx, srv, _ := setupTestContext(t)
		srv.Fail(http.MethodGet, "/users/profile", http.StatusInternalServerError, "")

		if err := (&ProfileShowCmd{}).Run(ctx); err == nil {
			t.Error("expected an error without a server or cached profile")
		}
	})
}
