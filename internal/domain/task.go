package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is one of the three fixed task board columns.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

// ParseTaskStatus accepts the wire names in any case, with '-' or ' ' for '_'.
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, st := range TaskStatuses {
		if TaskStatus(norm) == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown task status %q", ErrValidation, s)
}

// Task is a to-do item on a trip's board. Only Status changes after creation.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	AssignedTo  *User      `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskInput is the new-task form.
type TaskInput struct {
	Title       string
	Description string
	AssigneeID  int64
	DueDate     *time.Time
}

// Validate requires a title and an assignee.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: task title is required", ErrValidation)
	}
	if in.AssigneeID == 0 {
		return fmt.Errorf("%w: task assignee is required", ErrValidation)
	}
	return nil
}

// EffectiveDescription falls back to the title when no description is given.
func (in TaskInput) EffectiveDescription() string {
	if d := strings.TrimSpace(in.Description); d != "" {
		return d
	}
	return in.Title
}
