package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/screens"
)

type ProfileCmd struct {
	Show   ProfileShowCmd   `cmd:"" help:"Show your profile." default:"1"`
	Update ProfileUpdateCmd `cmd:"" help:"Update your name or email."`
	Stats  ProfileStatsCmd  `cmd:"" help:"Show your statistics."`
}

// loadProfile falls back to the cached user when the server can't be reached
func (c *Context) loadProfile() (*screens.Profile, error) {
	p := screens.NewProfile(c.Client.Users, c.Session, c.Translator)
	res := p.Fetch(c.RequestContext())
	p.BeginLoad()
	p.Apply(res)
	if p.User == nil {
		if res.UserErr != nil {
			return nil, res.UserErr
		}
		return nil, errors.New("no profile available")
	}
	if res.UserErr != nil {
		c.Println(c.Translator.T("mana.from_cache"))
	}
	return p, nil
}

type ProfileShowCmd struct{}

func (cmd *ProfileShowCmd) Run(ctx *Context) error {
	p, err := ctx.loadProfile()
	if err != nil {
		return err
	}

	tr := ctx.Translator
	u := p.User
	ctx.Printf("%s <%s>\n", u.Name, u.Email)
	ctx.Printf("  %s · %s mana\n", tr.T("mana.level", max(u.Level, 1)), humanize.Comma(int64(u.Mana)))
	if u.CreatedAt != nil {
		ctx.Printf("  %s\n", tr.T("profile.member_since", u.CreatedAt.Local().Format("January 2006")))
	}
	ctx.Println()
	ctx.printStats(p.Stats)
	ctx.Println()
	ctx.Println(tr.T("profile.support"))
	for _, contact := range p.Contacts {
		ctx.Printf("  %s  %s  %s\n", contact.Name, contact.Phone, contact.URL)
	}
	return nil
}

func (c *Context) printStats(stats models.UserStats) {
	c.Println(c.Translator.T("profile.stats"))
	if len(stats) == 0 {
		c.Println("  -")
		return
	}
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		c.Printf("  %s: %v\n", k, stats[k])
	}
}

type ProfileUpdateCmd struct {
	Name  string `help:"New display name."`
	Email string `help:"New email address."`
}

// Run starts from the current profile, so only the given flags change
func (cmd *ProfileUpdateCmd) Run(ctx *Context) error {
	p, err := ctx.loadProfile()
	if err != nil {
		return err
	}

	p.Edit()
	if cmd.Name != "" {
		p.Name = cmd.Name
	}
	if cmd.Email != "" {
		p.Email = cmd.Email
	}

	update, ok := p.BeginSave()
	if !ok {
		return FieldError(p.FieldErrors)
	}
	if err := p.FinishSave(p.SendSave(ctx.RequestContext(), update)); err != nil {
		return fmt.Errorf("%s: %w", p.ErrorMessage, err)
	}
	ctx.Println(p.SuccessMessage)
	return nil
}

type ProfileStatsCmd struct{}

func (cmd *ProfileStatsCmd) Run(ctx *Context) error {
	stats, err := ctx.Client.Users.GetUserStats(ctx.RequestContext())
	if err != nil {
		return err
	}
	ctx.printStats(stats)
	return nil
}
