package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
)

func (a *App) tasksCommand() *Command {
	return &Command{
		Name:    "tasks",
		Summary: "Manage the trip's task board",
		Subcommands: []*Command{
			a.tasksListCommand(),
			a.tasksAddCommand(),
			a.tasksMoveCommand(),
			a.tasksDeleteCommand(),
		},
	}
}

// openBoard opens the trip and points the board at it.
func (a *App) openBoard(ctx context.Context, tripID int64) (domain.Trip, error) {
	trip, err := a.openTrip(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := a.board.SetTrip(ctx, trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func (a *App) printBoard() {
	cols := a.board.ByStatus()
	for _, status := range domain.TaskStatuses {
		tasks := cols[status]
		a.heading(fmt.Sprintf("%s (%d)", strings.ReplaceAll(string(status), "_", " "), len(tasks)))
		if len(tasks) == 0 {
			a.note("  nothing here")
			continue
		}
		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			assignee := "-"
			if t.AssignedTo != nil {
				assignee = t.AssignedTo.FullName()
			}
			due := "-"
			if t.DueDate != nil {
				due = date(*t.DueDate)
			}
			rows = append(rows, []string{fmt.Sprint(t.ID), t.Title, assignee, due})
		}
		a.table([]string{"ID", "TITLE", "ASSIGNEE", "DUE"}, rows)
	}
	a.note(fmt.Sprintf("%s complete", percent(a.board.CompletionRate())))
}

func (a *App) tasksListCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "list",
		Summary: "Show the task board",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := a.openBoard(ctx, tripID); err != nil {
				return err
			}
			a.printBoard()
			return nil
		},
	}
}

func (a *App) tasksAddCommand() *Command {
	var (
		tripID   int64
		in       domain.TaskInput
		assignee string
		due      string
	)
	return &Command{
		Name:    "add",
		Summary: "Add a task to the TODO column",
		Usage:   "tripboard tasks add --title <title> --assignee <id|email> [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			fs.StringVar(&in.Title, "title", "", "task title")
			fs.StringVar(&in.Description, "description", "", "details (default: the title)")
			fs.StringVarP(&assignee, "assignee", "a", "", "participant id or email; \"me\" for yourself")
			fs.StringVar(&due, "due", "", "due date, "+domain.DateLayout)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := a.openBoard(ctx, tripID); err != nil {
				return err
			}
			id, err := a.assigneeID(assignee)
			if err != nil {
				return err
			}
			in.AssigneeID = id
			if due != "" {
				d, err := domain.ParseDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}
			if _, err := a.board.Create(ctx, in); err != nil {
				return err
			}
			a.printBoard()
			return nil
		},
	}
}

// assigneeID resolves "me", a participant id, or a participant email.
// An empty value is left to TaskInput.Validate to reject.
func (a *App) assigneeID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if s == "me" {
		if u := a.session.State().User; u != nil {
			return u.ID, nil
		}
	}
	for _, p := range a.board.Assignees() {
		if fmt.Sprint(p.ID) == s || strings.EqualFold(p.Email, s) {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a participant of this trip", domain.ErrValidation, s)
}

func (a *App) tasksMoveCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "move",
		Summary: "Move a task to another column",
		Usage:   "tripboard tasks move <task-id> todo|in-progress|done",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("move", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 2, "tripboard tasks move <task-id> todo|in-progress|done"); err != nil {
				return err
			}
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseTaskStatus(args[1])
			if err != nil {
				return err
			}
			if _, err := a.openBoard(ctx, tripID); err != nil {
				return err
			}
			if _, err := a.board.Move(ctx, taskID, status); err != nil {
				return err
			}
			a.printBoard()
			return nil
		},
	}
}

func (a *App) tasksDeleteCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "delete",
		Summary: "Delete a task",
		Usage:   "tripboard tasks delete <task-id>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard tasks delete <task-id>"); err != nil {
				return err
			}
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.openBoard(ctx, tripID); err != nil {
				return err
			}
			if _, err := a.board.Delete(ctx, taskID); err != nil {
				return err
			}
			a.printBoard()
			return nil
		},
	}
}
