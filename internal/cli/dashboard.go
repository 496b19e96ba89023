package cli

import (
	"fmt"

	"github.com/julianstephens/guardian/internal/screens"
)

type DashboardCmd struct{}

// Run prints the same sections as the dashboard screen. Sections that fail to
// load are shown empty.
func (cmd *DashboardCmd) Run(ctx *Context) error {
	d := screens.NewDashboard(ctx.Client.Habits, ctx.Client.Gamification, ctx.Session)
	d.Load(ctx.RequestContext())

	tr := ctx.Translator
	if d.User != nil {
		ctx.Println(tr.T("dashboard.greeting", d.User.Name))
	} else {
		ctx.Println(tr.T("dashboard.greeting_anonymous"))
	}
	ctx.Println()
	ctx.printMana(d.Mana)

	ctx.Println()
	ctx.Println(tr.T("dashboard.today"))
	if len(d.TodayHabits) == 0 {
		ctx.Printf("  %s\n", tr.T("habits.today_empty"))
	}
	for _, h := range d.TodayHabits {
		mark := "○"
		if h.Completed {
			mark = "✓"
		}
		ctx.Printf("  %s %s\n", mark, h.Name)
	}

	ctx.Println()
	ctx.Println(tr.T("dashboard.challenges"))
	if len(d.ActiveChallenges) == 0 {
		ctx.Printf("  %s\n", tr.T("challenges.empty"))
	}
	for _, c := range d.ActiveChallenges {
		ctx.Printf("  %s %s\n", c.Title, fmt.Sprintf("%d/%d", c.Progress, c.TargetProgress))
	}
	return nil
}
