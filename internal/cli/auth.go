package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/screens"
)

// promptPassword asks for a secret on the terminal when it wasn't given
func promptPassword(title string, value *string) error {
	if *value != "" {
		return nil
	}
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Run()
}

func (c *Context) authenticate(l *screens.Login) error {
	sub, ok := l.BeginSubmit()
	if !ok {
		return FieldError(l.FieldErrors)
	}
	res := l.Send(c.RequestContext(), sub)
	if err := l.FinishSubmit(res); err != nil {
		if res.Err != nil {
			return fmt.Errorf("%s: %w", l.ErrorMessage, err)
		}
		return err
	}
	c.Println(c.Translator.T("auth.logged_in", res.Auth.User.Name))
	return nil
}

func (c *Context) newLogin() *screens.Login {
	return screens.NewLogin(c.Client.Auth, c.Tokens, c.Session, c.Router, c.Translator)
}

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Account password. Prompted for when omitted." env:"GUARDIAN_PASSWORD"`
}

func (cmd *LoginCmd) Run(ctx *Context) error {
	if err := promptPassword(ctx.Translator.T("field.password"), &cmd.Password); err != nil {
		return err
	}
	l := ctx.newLogin()
	l.Email = cmd.Email
	l.Password = cmd.Password
	return ctx.authenticate(l)
}

type RegisterCmd struct {
	Name            string `arg:"" help:"Display name."`
	Email           string `arg:"" help:"Account email."`
	Password        string `help:"Account password. Prompted for when omitted." env:"GUARDIAN_PASSWORD"`
	ConfirmPassword string `help:"Password confirmation. Prompted for when omitted."`
}

func (cmd *RegisterCmd) Run(ctx *Context) error {
	tr := ctx.Translator
	if err := promptPassword(tr.T("field.password"), &cmd.Password); err != nil {
		return err
	}
	if err := promptPassword(tr.T("field.confirm_password"), &cmd.ConfirmPassword); err != nil {
		return err
	}
	l := ctx.newLogin()
	l.ToggleMode()
	l.Name = cmd.Name
	l.Email = cmd.Email
	l.Password = cmd.Password
	l.ConfirmPassword = cmd.ConfirmPassword
	return ctx.authenticate(l)
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *Context) error {
	if err := screens.Logout(ctx.RequestContext(), ctx.Tokens, ctx.Session); err != nil {
		return err
	}
	ctx.Println(ctx.Translator.T("auth.logged_out"))
	return nil
}

type WhoamiCmd struct{}

// Run shows the cached user and what the token says about itself. The token
// is decoded, not verified.
func (cmd *WhoamiCmd) Run(ctx *Context) error {
	token := ""
	if ctx.Tokens != nil {
		token = ctx.Tokens.Token()
	}
	user := ctx.Session.Current()
	if token == "" && user == nil {
		return errors.New("not logged in")
	}

	if user != nil {
		ctx.Printf("%s <%s>\n", user.Name, user.Email)
		ctx.Printf("  id: %s\n", user.ID)
	}
	if token == "" {
		ctx.Println("  token: none")
		return nil
	}

	claims, err := TokenClaims(token)
	if err != nil {
		ctx.Println("  token: opaque")
		return nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		ctx.Printf("  subject: %s\n", sub)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		ctx.Printf("  issued: %s\n", humanize.Time(iat.Time))
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if exp.Before(time.Now()) {
			ctx.Printf("  expired: %s\n", humanize.Time(exp.Time))
		} else {
			ctx.Printf("  expires: %s\n", humanize.Time(exp.Time))
		}
	}
	return nil
}
