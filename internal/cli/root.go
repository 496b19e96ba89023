package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/config"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/router"
	"github.com/julianstephens/guardian/internal/session"
	"github.com/julianstephens/guardian/internal/storage"
)

// Tokens resolves and stores the bearer token
type Tokens interface {
	Token() string
	SetToken(token string) error
	DeleteToken() error
}

type Context struct {
	Ctx        context.Context
	Config     config.Config
	Client     *api.Client
	Session    *session.Session
	Tokens     Tokens
	Store      *storage.Store
	Translator *i18n.Translator
	Router     *router.Router
	// Out receives command output; nil means stdout
	Out io.Writer
}

// RequestContext is the context for API calls; nil Ctx means Background
func (c *Context) RequestContext() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// RequireToken fails when no bearer token is known
func (c *Context) RequireToken() error {
	if c.Tokens == nil || c.Tokens.Token() == "" {
		return errors.New("not logged in. Run 'guardian login' first")
	}
	return nil
}

// FieldError joins form field errors into one error, ordered by field
func FieldError(fieldErrors map[string]string) error {
	if len(fieldErrors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(fieldErrors))
	for _, field := range slices.Sorted(maps.Keys(fieldErrors)) {
		msgs = append(msgs, fieldErrors[field])
	}
	return errors.New(strings.Join(msgs, " "))
}

// ProgressBar renders a fixed-width text bar for percent in [0, 100]
func ProgressBar(percent float64, width int) string {
	percent = min(max(percent, 0), 100)
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// TokenClaims decodes the claims of a JWT bearer token without verifying its
// signature. The client never holds the signing key.
func TokenClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

// TokenExpiry returns the expiry of a JWT bearer token. ok is false when the
// token carries no exp claim.
func TokenExpiry(token string) (expiry time.Time, ok bool, err error) {
	claims, err := TokenClaims(token)
	if err != nil {
		return time.Time{}, false, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode token expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
