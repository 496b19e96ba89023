package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/screens"
	"github.com/julianstephens/guardian/internal/validation"
)

// formKind says which screen owns the active form
type formKind int

const (
	formNone formKind = iota
	formHabit
	formProfile
	formLogin
)

// Field errors from the last submit are shown as the field description, so
// rebuilding the form after a failed submit puts them next to the input.

// NewHabitForm binds a form to the habit form screen
func NewHabitForm(s *screens.HabitForm, tr *i18n.Translator) *huh.Form {
	options := make([]huh.Option[constants.HabitFrequency], len(constants.Frequencies))
	for i, f := range constants.Frequencies {
		options[i] = huh.NewOption(tr.Frequency(f), f)
	}

	title := tr.T("habit.new_title")
	if s.EditMode() {
		title = tr.T("habit.edit_title")
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(tr.T("field.name")).
				Description(s.FieldErrors[validation.FieldName]).
				Value(&s.Name),
			huh.NewText().
				Title(tr.T("field.description")).
				Description(s.FieldErrors[validation.FieldDescription]).
				Lines(3).
				Value(&s.Description),
			huh.NewSelect[constants.HabitFrequency]().
				Title(tr.T("field.frequency")).
				Description(s.FieldErrors[validation.FieldFrequency]).
				Options(options...).
				Value(&s.Frequency),
		).Title(title),
	).WithTheme(huh.ThemeDracula())
}

// NewProfileForm binds a form to the profile screen's editable fields
func NewProfileForm(s *screens.Profile, tr *i18n.Translator) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(tr.T("field.name")).
				Description(s.FieldErrors[validation.FieldName]).
				Value(&s.Name),
			huh.NewInput().
				Title(tr.T("field.email")).
				Description(s.FieldErrors[validation.FieldEmail]).
				Value(&s.Email),
		).Title(tr.T("profile.edit_title")),
	).WithTheme(huh.ThemeDracula())
}

// NewLoginForm binds a sign in or sign up form to the login screen
func NewLoginForm(s *screens.Login, tr *i18n.Translator) *huh.Form {
	var fields []huh.Field
	if s.Register {
		fields = append(fields, huh.NewInput().
			Title(tr.T("field.name")).
			Description(s.FieldErrors[validation.FieldName]).
			Value(&s.Name))
	}
	fields = append(fields,
		huh.NewInput().
			Title(tr.T("field.email")).
			Description(s.FieldErrors[validation.FieldEmail]).
			Value(&s.Email),
		huh.NewInput().
			Title(tr.T("field.password")).
			Description(s.FieldErrors[validation.FieldPassword]).
			EchoMode(huh.EchoModePassword).
			Value(&s.Password),
	)
	title := tr.T("auth.login_title")
	if s.Register {
		title = tr.T("auth.register_title")
		fields = append(fields, huh.NewInput().
			Title(tr.T("field.confirm_password")).
			Description(s.FieldErrors[validation.FieldConfirmPassword]).
			EchoMode(huh.EchoModePassword).
			Value(&s.ConfirmPassword))
	}

	return huh.NewForm(
		huh.NewGroup(fields...).Title(title).Description(tr.T("auth.toggle_hint")),
	).WithTheme(huh.ThemeDracula())
}
