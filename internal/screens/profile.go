package screens

import (
	"context"
	"strings"

	"github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/logger"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/validation"
)

// Profile shows the signed-in user and edits their name and email. Name and
// Email are bound directly by the form widget.
type Profile struct {
	LoadState

	users   UserService
	session Session
	tr      *i18n.Translator

	User     *models.User
	Stats    models.UserStats
	Contacts []models.SupportContact

	Name    string
	Email   string
	Editing bool

	FieldErrors    map[string]string
	SuccessMessage string
	ErrorMessage   string
}

type ProfileResult struct {
	User     *models.User
	UserErr  error
	Stats    models.UserStats
	StatsErr error
}

type ProfileSaveResult struct {
	User *models.User
	Err  error
}

func NewProfile(users UserService, session Session, tr *i18n.Translator) *Profile {
	p := &Profile{
		users:       users,
		session:     session,
		tr:          tr,
		Stats:       models.UserStats{},
		Contacts:    models.SupportContacts,
		FieldErrors: map[string]string{},
	}
	p.resetFromSession()
	return p
}

func (p *Profile) BeginLoad() {
	p.begin()
}

// Fetch refreshes the profile from the server and stores it as the current
// user. The session is safe to update from any goroutine.
func (p *Profile) Fetch(ctx context.Context) ProfileResult {
	var res ProfileResult
	res.User, res.UserErr = p.users.GetUserProfile(ctx)
	if res.UserErr == nil && res.User != nil {
		p.session.Set(ctx, *res.User)
	}
	res.Stats, res.StatsErr = p.users.GetUserStats(ctx)
	return res
}

// Apply shows the fetched profile, falling back to the session user. Fields
// being edited are left alone.
func (p *Profile) Apply(res ProfileResult) {
	defer p.end()

	if res.UserErr != nil {
		logger.Warn("failed to refresh profile, using cached user", "error", res.UserErr)
	}
	if res.StatsErr != nil {
		logger.Warn("failed to load user stats", "error", res.StatsErr)
		p.Stats = models.UserStats{}
	} else if res.Stats != nil {
		p.Stats = res.Stats
	} else {
		p.Stats = models.UserStats{}
	}

	if res.UserErr == nil && res.User != nil {
		p.User = res.User
	} else {
		p.User = p.session.Current()
	}
	if !p.Editing {
		p.patchForm()
	}
}

func (p *Profile) Load(ctx context.Context) {
	p.BeginLoad()
	p.Apply(p.Fetch(ctx))
}

func (p *Profile) resetFromSession() {
	if user := p.session.Current(); user != nil {
		p.User = user
	}
	p.patchForm()
}

func (p *Profile) patchForm() {
	if p.User == nil {
		return
	}
	p.Name = p.User.Name
	p.Email = p.User.Email
}

func (p *Profile) clearMessages() {
	p.SuccessMessage = ""
	p.ErrorMessage = ""
}

func (p *Profile) Edit() {
	p.Editing = true
	p.clearMessages()
}

// Cancel leaves edit mode and restores the fields from the current user
func (p *Profile) Cancel() {
	p.Editing = false
	p.FieldErrors = map[string]string{}
	p.resetFromSession()
	p.clearMessages()
}

func (p *Profile) Validate() bool {
	result := validation.Profile(p.Name, p.Email)
	p.FieldErrors = result.Messages(p.tr)
	return result.Valid()
}

// BeginSave validates the form and, when valid, marks the screen as loading
func (p *Profile) BeginSave() (models.ProfileUpdate, bool) {
	if !p.Validate() {
		return models.ProfileUpdate{}, false
	}
	p.begin()
	p.clearMessages()
	return models.ProfileUpdate{
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
	}, true
}

// SendSave updates the profile and, on success, the current user
func (p *Profile) SendSave(ctx context.Context, update models.ProfileUpdate) ProfileSaveResult {
	user, err := p.users.UpdateUserProfile(ctx, update)
	if err != nil {
		return ProfileSaveResult{Err: err}
	}
	p.session.Set(ctx, *user)
	return ProfileSaveResult{User: user}
}

func (p *Profile) FinishSave(res ProfileSaveResult) error {
	p.end()
	if res.Err != nil {
		logger.Error("failed to update profile", "error", res.Err)
		p.ErrorMessage = errors.ServerMessage(res.Err)
		if p.ErrorMessage == "" {
			p.ErrorMessage = p.tr.T("profile.update_failed")
		}
		return res.Err
	}
	p.User = res.User
	p.patchForm()
	p.Editing = false
	p.SuccessMessage = p.tr.T("profile.updated")
	return nil
}

// Save sends the edited profile. An invalid form sends nothing; check
// FieldErrors.
func (p *Profile) Save(ctx context.Context) error {
	update, ok := p.BeginSave()
	if !ok {
		return nil
	}
	return p.FinishSave(p.SendSave(ctx, update))
}
