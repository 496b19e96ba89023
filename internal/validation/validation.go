// Package validation checks form input locally before anything is sent to
// the API.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/models"
)

// IssueKind represents the rule a field broke
type IssueKind string

const (
	IssueRequired         IssueKind = "required"
	IssueMinLength        IssueKind = "min_length"
	IssueEmail            IssueKind = "email"
	IssuePasswordMismatch IssueKind = "password_mismatch"
	IssueInvalidChoice    IssueKind = "invalid_choice"
)

// Field names double as the suffix of their "field.*" catalog key
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldFrequency       = "frequency"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var validate = newValidator()

// newValidator reports fields by their "field" tag and adds the rules the
// forms need beyond the built-in ones.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	rules := map[string]validator.Func{
		"present": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"address": func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		},
		"frequency": func(fl validator.FieldLevel) bool {
			return slices.Contains(constants.Frequencies, constants.HabitFrequency(fl.Field().String()))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// Issue is one broken rule on one field
type Issue struct {
	Field string
	Kind  IssueKind
	Min   int // for IssueMinLength
}

// Result contains every issue found on a form
type Result struct {
	Issues []Issue
}

func (r Result) Valid() bool {
	return len(r.Issues) == 0
}

// Field returns the first issue on field, if any
func (r Result) Field(field string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Field == field {
			return issue, true
		}
	}
	return Issue{}, false
}

// Message renders an issue in the translator's locale
func (i Issue) Message(tr *i18n.Translator) string {
	label := tr.T("field." + i.Field)
	switch i.Kind {
	case IssueRequired:
		return tr.T("validation.required", label)
	case IssueMinLength:
		return tr.T("validation.min_length", label, i.Min)
	case IssueEmail:
		return tr.T("validation.email")
	case IssuePasswordMismatch:
		return tr.T("validation.password_mismatch")
	case IssueInvalidChoice:
		return tr.T("validation.invalid_choice", label)
	default:
		return tr.T("validation.required", label)
	}
}

// Messages maps each invalid field to its first message
func (r Result) Messages(tr *i18n.Translator) map[string]string {
	out := make(map[string]string, len(r.Issues))
	for _, issue := range r.Issues {
		if _, seen := out[issue.Field]; !seen {
			out[issue.Field] = issue.Message(tr)
		}
	}
	return out
}

// FormatReport joins every message on its own line
func (r Result) FormatReport(tr *i18n.Translator) string {
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.Message(tr))
	}
	return strings.Join(lines, "\n")
}

// check runs the struct rules on form. Fields are reported in declaration
// order, at most one issue each.
func check(form any) Result {
	var r Result
	var errs validator.ValidationErrors
	if err := validate.Struct(form); errors.As(err, &errs) {
		for _, fe := range errs {
			r.Issues = append(r.Issues, issueFor(fe))
		}
	}
	return r
}

func issueFor(fe validator.FieldError) Issue {
	issue := Issue{Field: fe.Field(), Kind: IssueRequired}
	switch fe.Tag() {
	case "min":
		issue.Kind = IssueMinLength
		issue.Min, _ = strconv.Atoi(fe.Param())
	case "address":
		issue.Kind = IssueEmail
	case "eqfield":
		issue.Kind = IssuePasswordMismatch
	case "frequency":
		issue.Kind = IssueInvalidChoice
	}
	return issue
}

// Text fields are trimmed before checking; passwords are checked as typed.

type habitForm struct {
	Name        string `field:"name" validate:"required,min=3"`
	Description string `field:"description" validate:"required"`
	Frequency   string `field:"frequency" validate:"required,frequency"`
}

type profileForm struct {
	Name  string `field:"name" validate:"required,min=3"`
	Email string `field:"email" validate:"required,address"`
}

type loginForm struct {
	Email    string `field:"email" validate:"required,address"`
	Password string `field:"password" validate:"present"`
}

type registerForm struct {
	Name            string `field:"name" validate:"required,min=3"`
	Email           string `field:"email" validate:"required,address"`
	Password        string `field:"password" validate:"present"`
	ConfirmPassword string `field:"confirm_password" validate:"present,eqfield=Password"`
}

// Habit validates the create/edit habit form
func Habit(name, description string, frequency constants.HabitFrequency) Result {
	return check(habitForm{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Frequency:   strings.TrimSpace(string(frequency)),
	})
}

// Profile validates the profile edit form
func Profile(name, email string) Result {
	return check(profileForm{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)})
}

// Login validates the sign-in form
func Login(req models.LoginRequest) Result {
	return check(loginForm{Email: strings.TrimSpace(req.Email), Password: req.Password})
}

// Register validates the sign-up form
func Register(req models.RegisterRequest) Result {
	return check(registerForm{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
}
