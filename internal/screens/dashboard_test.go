package screens

import (
	"context"
	"net/http"
	"testing"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
)

func TestDashboardDefaults(t *testing.T) {
	f := newFixture(t)
	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)

	if d.Mana != (models.ManaInfo{Current: 0, NextLevel: 100, Level: 1}) {
		t.Errorf("default mana = %+v", d.Mana)
	}
	if d.TodayHabits == nil || d.ActiveChallenges == nil {
		t.Error("default collections should be empty, not nil")
	}
}

func TestDashboardLoad(t *testing.T) {
	f := newFixture(t)
	f.session.Set(context.Background(), models.User{ID: "user-1", Name: "Ana"})
	f.srv.SetUser(models.User{ID: "user-1", Name: "Ana", Mana: 40, Level: 1})
	f.srv.AddHabit(models.Habit{Name: "Walk", Frequency: constants.FrequencyDaily})
	f.srv.AddHabit(models.Habit{Name: "Clean", Frequency: constants.FrequencyWeekly})
	f.srv.AddChallenge(models.Challenge{Title: "Streak", TargetProgress: 7})
	f.srv.AddChallenge(models.Challenge{Title: "Done", Status: constants.ChallengeCompleted})

	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)
	transitions := trackLoading(&d.LoadState)
	d.Load(context.Background())

	assertOneLoadCycle(t, *transitions)
	if d.User == nil || d.User.Name != "Ana" {
		t.Errorf("User = %+v", d.User)
	}
	if len(d.TodayHabits) != 1 {
		t.Errorf("TodayHabits = %d, want 1", len(d.TodayHabits))
	}
	if len(d.ActiveChallenges) != 1 {
		t.Errorf("ActiveChallenges = %d, want 1", len(d.ActiveChallenges))
	}
	if d.Mana.Current != 40 || d.ManaPercentage() != 40 {
		t.Errorf("Mana = %+v (%.0f%%)", d.Mana, d.ManaPercentage())
	}
}

func TestDashboardPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.AddHabit(models.Habit{Name: "Walk"})
	f.srv.Fail(http.MethodGet, "/gamification/mana", http.StatusInternalServerError, "")
	f.srv.Fail(http.MethodGet, "/gamification/challenges/active", http.StatusInternalServerError, "")

	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)
	transitions := trackLoading(&d.LoadState)
	d.Load(context.Background())

	assertOneLoadCycle(t, *transitions)
	if len(d.TodayHabits) != 1 {
		t.Errorf("TodayHabits = %d, want 1", len(d.TodayHabits))
	}
	if d.ActiveChallenges == nil || len(d.ActiveChallenges) != 0 {
		t.Errorf("ActiveChallenges = %v, want empty", d.ActiveChallenges)
	}
	if d.Mana != models.DefaultManaInfo() {
		t.Errorf("Mana = %+v, want defaults", d.Mana)
	}
}

func TestDashboardFailedLoadClearsStaleSections(t *testing.T) {
	f := newFixture(t)
	f.srv.AddHabit(models.Habit{Name: "Walk"})
	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)
	ctx := context.Background()
	d.Load(ctx)

	f.srv.Fail(http.MethodGet, "/habits/today", http.StatusBadGateway, "")
	d.Load(ctx)
	if len(d.TodayHabits) != 0 {
		t.Errorf("TodayHabits = %v, want empty", d.TodayHabits)
	}
}

func TestDashboardCompleteHabitReloads(t *testing.T) {
	f := newFixture(t)
	h := f.srv.AddHabit(models.Habit{Name: "Walk"})
	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)
	ctx := context.Background()
	d.Load(ctx)

	transitions := trackLoading(&d.LoadState)
	if err := d.CompleteHabit(ctx, h.ID); err != nil {
		t.Fatalf("CompleteHabit failed: %v", err)
	}
	assertOneLoadCycle(t, *transitions)
	if got := f.srv.Calls(http.MethodGet, "/habits/today"); got != 2 {
		t.Errorf("GET /habits/today calls = %d, want 2", got)
	}
	if d.LastCompletion == nil || d.LastCompletion.ManaAwarded == 0 {
		t.Errorf("LastCompletion = %+v", d.LastCompletion)
	}
	if d.Mana.Current != 10 {
		t.Errorf("Mana.Current = %d, want 10 after completion", d.Mana.Current)
	}
}

func TestDashboardCompleteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	h := f.srv.AddHabit(models.Habit{Name: "Walk"})
	f.srv.Fail(http.MethodPost, "/habits/{id}/complete", http.StatusInternalServerError, "")
	d := NewDashboard(f.client.Habits, f.client.Gamification, f.session)

	transitions := trackLoading(&d.LoadState)
	if err := d.CompleteHabit(context.Background(), h.ID); err == nil {
		t.Fatal("expected CompleteHabit to fail")
	}
	if len(*transitions) != 0 {
		t.Errorf("failed completion triggered a load: %v", *transitions)
	}
}
