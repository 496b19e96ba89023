package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/models"
	"github.com/julianstephens/guardian/internal/screens"
)

type HabitCmd struct {
	List     HabitListCmd     `cmd:"" help:"List habits." default:"1"`
	Today    HabitTodayCmd    `cmd:"" help:"Show today's habits."`
	Show     HabitShowCmd     `cmd:"" help:"Show a habit and its completion history."`
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit an existing habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit."`
	Complete HabitCompleteCmd `cmd:"" help:"Mark a habit as completed."`
	History  HabitHistoryCmd  `cmd:"" help:"Show the completion history of a habit."`
}

func (c *Context) printHabits(habits []models.Habit, empty string) {
	if len(habits) == 0 {
		c.Println(empty)
		return
	}
	tr := c.Translator
	for _, h := range habits {
		mark := "○"
		if h.Completed {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s  [%s]", mark, h.Name, tr.Frequency(h.Frequency))
		if h.Streak > 0 {
			line += "  " + tr.T("habit.streak", h.Streak)
		}
		c.Printf("%s\n   id: %s\n", line, h.ID)
	}
}

type HabitListCmd struct{}

func (cmd *HabitListCmd) Run(ctx *Context) error {
	list := screens.NewHabitList(ctx.Client.Habits, ctx.Router)
	list.Load(ctx.RequestContext())
	if list.Err != nil {
		return list.Err
	}
	ctx.printHabits(list.Habits, "No habits found.")
	return nil
}

type HabitTodayCmd struct{}

func (cmd *HabitTodayCmd) Run(ctx *Context) error {
	habits, err := ctx.Client.Habits.GetTodayHabits(ctx.RequestContext())
	if err != nil {
		return err
	}
	ctx.Println(ctx.Translator.T("dashboard.today"))
	ctx.printHabits(habits, ctx.Translator.T("habits.today_empty"))
	return nil
}

type HabitShowCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (cmd *HabitShowCmd) Run(ctx *Context) error {
	detail := screens.NewHabitDetail(ctx.Client.Habits, ctx.Router, cmd.ID)
	detail.Load(ctx.RequestContext())
	if detail.Err != nil {
		return detail.Err
	}
	if detail.Habit == nil {
		return errors.New(ctx.Translator.T("habit.not_found"))
	}

	tr := ctx.Translator
	h := detail.Habit
	ctx.Printf("%s\n", h.Name)
	if h.Description != "" {
		ctx.Printf("  %s\n", h.Description)
	}
	ctx.Printf("  %s: %s\n", tr.T("field.frequency"), tr.Frequency(h.Frequency))
	ctx.Printf("  %s · %s\n", tr.T("habit.streak", h.Streak), tr.T("habit.completions", h.CompletionCount))
	ctx.Printf("  %s\n", tr.T("habit.created", humanize.Time(h.CreatedAt)))
	ctx.Println()
	ctx.printHistory(detail.History, detail.TotalManaAwarded())
	return nil
}

func (c *Context) printHistory(history []models.HabitCompletionHistory, total int) {
	tr := c.Translator
	c.Println(tr.T("habit.history"))
	if len(history) == 0 {
		c.Printf("  %s\n", tr.T("history.empty"))
		return
	}
	for _, entry := range history {
		c.Printf("  %s  (%s)\n", tr.T("history.entry", entry.ManaAwarded, humanize.Time(entry.CompletedAt)), entry.CompletedAt.Local().Format(constants.DateFormat))
	}
	c.Printf("  %s\n", tr.T("habit.total_mana", total))
}

type HabitAddCmd struct {
	Name        string                   `arg:"" help:"Habit name."`
	Description string                   `short:"d" help:"Habit description."`
	Frequency   constants.HabitFrequency `short:"f" help:"Frequency (daily, weekly, monthly)." default:"daily" enum:"daily,weekly,monthly"`
}

func (cmd *HabitAddCmd) Run(ctx *Context) error {
	form := screens.NewHabitForm(ctx.Client.Habits, ctx.Router, ctx.Translator, "")
	form.Name = cmd.Name
	form.Description = cmd.Description
	form.Frequency = cmd.Frequency
	return ctx.submitHabit(form)
}

type HabitEditCmd struct {
	ID          string                   `arg:"" help:"Habit ID."`
	Name        string                   `help:"New habit name."`
	Description string                   `short:"d" help:"New habit description."`
	Frequency   constants.HabitFrequency `short:"f" help:"New frequency (daily, weekly, monthly)."`
}

// Run prefills the form from the server, so only the given flags change
func (cmd *HabitEditCmd) Run(ctx *Context) error {
	form := screens.NewHabitForm(ctx.Client.Habits, ctx.Router, ctx.Translator, cmd.ID)
	loaded := form.Fetch(ctx.RequestContext())
	form.BeginLoad()
	form.Apply(loaded)
	if loaded.Err != nil {
		return loaded.Err
	}

	if cmd.Name != "" {
		form.Name = cmd.Name
	}
	if cmd.Description != "" {
		form.Description = cmd.Description
	}
	if cmd.Frequency != "" {
		form.Frequency = cmd.Frequency
	}
	return ctx.submitHabit(form)
}

func (c *Context) submitHabit(form *screens.HabitForm) error {
	sub, ok := form.BeginSubmit()
	if !ok {
		return FieldError(form.FieldErrors)
	}
	res := form.Send(c.RequestContext(), sub)
	if err := form.FinishSubmit(res); err != nil {
		if form.ErrorMessage != "" {
			return fmt.Errorf("%s: %w", form.ErrorMessage, err)
		}
		return err
	}
	if form.EditMode() {
		c.Printf("Updated habit: %s\n", res.Habit.Name)
	} else {
		c.Printf("Added habit: %s (id: %s)\n", res.Habit.Name, res.Habit.ID)
	}
	return nil
}

type HabitDeleteCmd struct {
	ID  string `arg:"" help:"Habit ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *HabitDeleteCmd) Run(ctx *Context) error {
	tr := ctx.Translator
	if !cmd.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(tr.T("habits.confirm_delete")).
			Affirmative(tr.T("modal.confirm")).
			Negative(tr.T("modal.cancel")).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	list := screens.NewHabitList(ctx.Client.Habits, ctx.Router)
	if err := list.SendDelete(ctx.RequestContext(), cmd.ID); err != nil {
		return err
	}
	ctx.Println(tr.T("habit.deleted"))
	return nil
}

type HabitCompleteCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (cmd *HabitCompleteCmd) Run(ctx *Context) error {
	ack, err := ctx.Client.Habits.CompleteHabit(ctx.RequestContext(), cmd.ID)
	if err != nil {
		return err
	}
	ctx.Println(ctx.Translator.T("habit.completed", ack.ManaAwarded))
	if ack.Streak > 0 {
		ctx.Println(ctx.Translator.T("habit.streak", ack.Streak))
	}
	return nil
}

type HabitHistoryCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (cmd *HabitHistoryCmd) Run(ctx *Context) error {
	history, err := ctx.Client.Habits.GetHabitHistory(ctx.RequestContext(), cmd.ID)
	if err != nil {
		return err
	}
	total := 0
	for _, entry := range history {
		total += entry.ManaAwarded
	}
	ctx.printHistory(history, total)
	return nil
}
