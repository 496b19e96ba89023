package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/screens"
)

const barWidth = 30

type ManaCmd struct{}

func (cmd *ManaCmd) Run(ctx *Context) error {
	mana := screens.NewMana(ctx.Client.Gamification, ctx.Session)
	mana.Load(ctx.RequestContext())
	if mana.FromSession {
		ctx.Println(ctx.Translator.T("mana.from_cache"))
	}
	ctx.printMana(mana.Info)
	return nil
}

func (c *Context) printMana(info models.ManaInfo) {
	tr := c.Translator
	c.Println(tr.T("mana.level", info.Level))
	c.Printf("  %s %.0f%%\n", ProgressBar(info.Percentage(), barWidth), info.Percentage())
	c.Printf("  %s\n", tr.T("mana.progress", info.Current, info.NextLevel))
}

type LeaderboardCmd struct {
	Limit int `short:"n" help:"Number of entries to show (1-100). Defaults to the configured limit."`
}

func (cmd *LeaderboardCmd) Run(ctx *Context) error {
	limit := cmd.Limit
	if limit <= 0 {
		limit = ctx.Config.LeaderboardLimit
	}
	if limit > constants.MaxLeaderboardLimit {
		return fmt.Errorf("limit must be between 1 and %d", constants.MaxLeaderboardLimit)
	}

	board := screens.NewLeaderboard(ctx.Client.Gamification, limit)
	board.Load(ctx.RequestContext())
	if board.Err != nil {
		return board.Err
	}

	tr := ctx.Translator
	if len(board.Entries) == 0 {
		ctx.Println(tr.T("leaderboard.empty"))
		return nil
	}

	userID := ""
	if u := ctx.Session.Current(); u != nil {
		userID = u.ID
	}
	ctx.Printf("%-8s %-24s %-6s %s\n", tr.T("leaderboard.col.rank"), tr.T("leaderboard.col.player"), tr.T("leaderboard.col.level"), tr.T("leaderboard.col.mana"))
	for _, e := range board.Entries {
		rank := strings.TrimSpace(fmt.Sprintf("%s #%d", e.Medal(), e.Rank))
		name := e.UserName
		if e.UserID == userID {
			name = "➜ " + name
		}
		ctx.Printf("%-8s %-24s %-6d %s\n", rank, name, e.Level, humanize.Comma(int64(e.Mana)))
	}

	ctx.Println()
	if board.UserRank != nil {
		ctx.Println(tr.T("leaderboard.your_rank", *board.UserRank))
	} else if rank, err := ctx.Client.Gamification.GetUserRank(ctx.RequestContext()); err == nil {
		ctx.Println(tr.T("leaderboard.your_rank", rank.Rank))
	}
	if board.TotalUsers > 0 {
		ctx.Println(tr.T("leaderboard.total", board.TotalUsers))
	}
	return nil
}

type ChallengeCmd struct {
	List     ChallengeListCmd     `cmd:"" help:"List challenges." default:"1"`
	Show     ChallengeShowCmd     `cmd:"" help:"Show a challenge."`
	Progress ChallengeProgressCmd `cmd:"" help:"Set the progress of a challenge."`
}

type ChallengeListCmd struct {
	Filter constants.ChallengeFilter `short:"f" help:"Filter by status (all, active, completed)." default:"all" enum:"all,active,completed"`
}

func (cmd *ChallengeListCmd) Run(ctx *Context) error {
	challenges := screens.NewChallenges(ctx.Client.Gamification, ctx.Translator)
	challenges.Load(ctx.RequestContext())
	if challenges.Err != nil {
		return challenges.Err
	}
	challenges.SetFilter(cmd.Filter)

	visible := challenges.Filtered()
	if len(visible) == 0 {
		ctx.Println(ctx.Translator.T("challenges.empty"))
		return nil
	}
	for _, c := range visible {
		ctx.printChallenge(c, challenges.StatusLabel(c.Status))
		ctx.Println()
	}
	return nil
}

func (c *Context) printChallenge(ch models.Challenge, status string) {
	tr := c.Translator
	c.Printf("%s  [%s]\n", ch.Title, status)
	c.Printf("   id: %s\n", ch.ID)
	if ch.Description != "" {
		c.Printf("   %s\n", ch.Description)
	}
	c.Printf("   %s %d/%d\n", ProgressBar(ch.ProgressPercentage(), barWidth), ch.Progress, ch.TargetProgress)
	c.Printf("   %s\n", tr.T("challenge.reward", ch.Reward))
	if ch.ExpiresAt != nil {
		c.Printf("   %s\n", tr.T("challenge.expires", humanize.Time(*ch.ExpiresAt)))
	}
}

type ChallengeShowCmd struct {
	ID string `arg:"" help:"Challenge ID."`
}

func (cmd *ChallengeShowCmd) Run(ctx *Context) error {
	ch, err := ctx.Client.Gamification.GetChallengeByID(ctx.RequestContext(), cmd.ID)
	if err != nil {
		return err
	}
	ctx.printChallenge(*ch, ctx.Translator.ChallengeStatus(ch.Status))
	return nil
}

type ChallengeProgressCmd struct {
	ID       string `arg:"" help:"Challenge ID."`
	Progress int    `arg:"" help:"New progress value."`
}

func (cmd *ChallengeProgressCmd) Run(ctx *Context) error {
	if cmd.Progress < 0 {
		return fmt.Errorf("progress must not be negative, got %d", cmd.Progress)
	}
	challenges := screens.NewChallenges(ctx.Client.Gamification, ctx.Translator)
	res, err := challenges.SendProgress(ctx.RequestContext(), cmd.ID, cmd.Progress)
	if err != nil {
		return err
	}
	ctx.Println(ctx.Translator.T("challenge.progress_updated"))
	if res != nil && res.Completed {
		ctx.Println(ctx.Translator.ChallengeStatus(constants.ChallengeCompleted))
	}
	return nil
}
