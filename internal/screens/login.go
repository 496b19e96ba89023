package screens

import (
	"context"
	"strings"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/validation"
)

// Login signs a user in, or up when Register is set
type Login struct {
	LoadState

	auth    AuthService
	tokens  TokenStore
	session Session
	nav     Navigator
	tr      *i18n.Translator

	Register        bool
	Name            string
	Email           string
	Password        string
	ConfirmPassword string

	FieldErrors  map[string]string
	ErrorMessage string
}

type LoginResult struct {
	Auth *models.AuthResponse
	Err  error
}

func NewLogin(auth AuthService, tokens TokenStore, session Session, nav Navigator, tr *i18n.Translator) *Login {
	return &Login{
		auth:        auth,
		tokens:      tokens,
		session:     session,
		nav:         nav,
		tr:          tr,
		FieldErrors: map[string]string{},
	}
}

func (l *Login) ToggleMode() {
	l.Register = !l.Register
	l.FieldErrors = map[string]string{}
	l.ErrorMessage = ""
}

func (l *Login) Validate() bool {
	var result validation.Result
	if l.Register {
		result = validation.Register(l.registerRequest())
	} else {
		result = validation.Login(l.loginRequest())
	}
	l.FieldErrors = result.Messages(l.tr)
	return result.Valid()
}

func (l *Login) loginRequest() models.LoginRequest {
	return models.LoginRequest{Email: strings.TrimSpace(l.Email), Password: l.Password}
}

func (l *Login) registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Name:            strings.TrimSpace(l.Name),
		Email:           strings.TrimSpace(l.Email),
		Password:        l.Password,
		ConfirmPassword: l.ConfirmPassword,
	}
}

// LoginSubmission is a validated form ready to send
type LoginSubmission struct {
	Register bool
	Login    models.LoginRequest
	Signup   models.RegisterRequest
}

func (l *Login) BeginSubmit() (LoginSubmission, bool) {
	if !l.Validate() {
		return LoginSubmission{}, false
	}
	l.begin()
	l.ErrorMessage = ""
	return LoginSubmission{Register: l.Register, Login: l.loginRequest(), Signup: l.registerRequest()}, true
}

// Send authenticates and stores the token and user. It does not touch
// screen state.
func (l *Login) Send(ctx context.Context, sub LoginSubmission) LoginResult {
	var (
		resp *models.AuthResponse
		err  error
	)
	if sub.Register {
		resp, err = l.auth.Register(ctx, sub.Signup)
	} else {
		resp, err = l.auth.Login(ctx, sub.Login)
	}
	if err != nil {
		return LoginResult{Err: err}
	}

	if err := l.tokens.SetToken(resp.Token); err != nil {
		// the token stays in memory for this run
		logger.Warn("failed to store token in keyring", "error", err)
	}
	l.session.Set(ctx, resp.User)
	return LoginResult{Auth: resp}
}

func (l *Login) FinishSubmit(res LoginResult) error {
	l.end()
	l.Password = ""
	l.ConfirmPassword = ""
	if res.Err != nil {
		logger.Error("authentication failed", "error", res.Err)
		l.ErrorMessage = errors.ServerMessage(res.Err)
		if l.ErrorMessage == "" {
			key := "auth.login_failed"
			if l.Register {
				key = "auth.register_failed"
			}
			l.ErrorMessage = l.tr.T(key)
		}
		return res.Err
	}
	return l.nav.Navigate(constants.PathDashboard)
}

func (l *Login) Submit(ctx context.Context) error {
	sub, ok := l.BeginSubmit()
	if !ok {
		return nil
	}
	return l.FinishSubmit(l.Send(ctx, sub))
}

// Logout forgets the token and the cached user
func Logout(ctx context.Context, tokens TokenStore, session Session) error {
	session.Clear(ctx)
	return tokens.DeleteToken()
}
