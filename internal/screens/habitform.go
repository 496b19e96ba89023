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

// HabitForm creates a habit, or edits one when ID is set. Name, Description
// and Frequency are bound directly by the form widget.
type HabitForm struct {
	LoadState

	habits HabitService
	nav    Navigator
	tr     *i18n.Translator

	ID          string
	Name        string
	Description string
	Frequency   constants.HabitFrequency

	FieldErrors  map[string]string
	ErrorMessage string
}

// HabitSubmission is a validated form ready to send
type HabitSubmission struct {
	ID          string
	Name        string
	Description string
	Frequency   constants.HabitFrequency
}

type HabitFormResult struct {
	Habit *models.Habit
	Err   error
}

func NewHabitForm(habits HabitService, nav Navigator, tr *i18n.Translator, id string) *HabitForm {
	return &HabitForm{
		habits:      habits,
		nav:         nav,
		tr:          tr,
		ID:          id,
		Frequency:   constants.FrequencyDaily,
		FieldErrors: map[string]string{},
	}
}

func (f *HabitForm) EditMode() bool {
	return f.ID != ""
}

// BeginLoad starts the prefill of an edit form
func (f *HabitForm) BeginLoad() {
	f.begin()
}

func (f *HabitForm) Fetch(ctx context.Context) HabitFormResult {
	if !f.EditMode() {
		return HabitFormResult{}
	}
	habit, err := f.habits.GetHabitByID(ctx, f.ID)
	return HabitFormResult{Habit: habit, Err: err}
}

// Apply prefills the fields from the loaded habit. A failed prefill leaves
// the fields as they are.
func (f *HabitForm) Apply(res HabitFormResult) {
	defer f.end()

	if res.Err != nil {
		logger.Warn("failed to load habit for editing", "habit", f.ID, "error", res.Err)
		return
	}
	if res.Habit == nil {
		return
	}
	f.Name = res.Habit.Name
	f.Description = res.Habit.Description
	if res.Habit.Frequency != "" {
		f.Frequency = res.Habit.Frequency
	}
}

// Load prefills an edit form; create forms have nothing to load
func (f *HabitForm) Load(ctx context.Context) {
	if !f.EditMode() {
		return
	}
	f.BeginLoad()
	f.Apply(f.Fetch(ctx))
}

// Validate refreshes FieldErrors and reports whether the form can be sent
func (f *HabitForm) Validate() bool {
	result := validation.Habit(f.Name, f.Description, f.Frequency)
	f.FieldErrors = result.Messages(f.tr)
	return result.Valid()
}

// BeginSubmit validates the form and, when valid, marks it as loading and
// clears the previous error. An invalid form sends nothing.
func (f *HabitForm) BeginSubmit() (HabitSubmission, bool) {
	if !f.Validate() {
		return HabitSubmission{}, false
	}
	f.begin()
	f.ErrorMessage = ""
	return HabitSubmission{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Frequency:   f.Frequency,
	}, true
}

// Send performs the create or update request without touching screen state
func (f *HabitForm) Send(ctx context.Context, sub HabitSubmission) HabitFormResult {
	var (
		habit *models.Habit
		err   error
	)
	if sub.ID != "" {
		habit, err = f.habits.UpdateHabit(ctx, sub.ID, models.HabitUpdateRequest{
			Name:        &sub.Name,
			Description: &sub.Description,
			Frequency:   &sub.Frequency,
		})
	} else {
		habit, err = f.habits.CreateHabit(ctx, models.HabitCreateRequest{
			Name:        sub.Name,
			Description: sub.Description,
			Frequency:   sub.Frequency,
		})
	}
	return HabitFormResult{Habit: habit, Err: err}
}

// FinishSubmit navigates back to the list on success, or shows the server
// message (or a localized fallback) on failure.
func (f *HabitForm) FinishSubmit(res HabitFormResult) error {
	f.end()
	if res.Err != nil {
		logger.Error("failed to save habit", "habit", f.ID, "error", res.Err)
		f.ErrorMessage = errors.ServerMessage(res.Err)
		if f.ErrorMessage == "" {
			key := "habit.create_failed"
			if f.EditMode() {
				key = "habit.update_failed"
			}
			f.ErrorMessage = f.tr.T(key)
		}
		return res.Err
	}
	return f.nav.Navigate(constants.PathHabits)
}

// Submit validates and sends the form. It returns nil without sending when
// the form is invalid; check FieldErrors.
func (f *HabitForm) Submit(ctx context.Context) error {
	sub, ok := f.BeginSubmit()
	if !ok {
		return nil
	}
	return f.FinishSubmit(f.Send(ctx, sub))
}

func (f *HabitForm) Cancel() error {
	return f.nav.Navigate(constants.PathHabits)
}
