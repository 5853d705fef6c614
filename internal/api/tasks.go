package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tripboard/tripboard/internal/domain"
)

// Tasks is the client for a trip's task board.
type Tasks struct {
	c *Client
}

// List returns a trip's tasks.
func (t *Tasks) List(ctx context.Context, tripID int64) ([]domain.Task, error) {
	var dtos []taskDTO
	if err := t.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/tasks", tripID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Tasks.List: %w", err)
	}
	tasks := make([]domain.Task, len(dtos))
	for i, d := range dtos {
		tasks[i] = d.toDomain()
	}
	return tasks, nil
}

// Create adds a task in the TODO column.
func (t *Tasks) Create(ctx context.Context, tripID int64, in domain.TaskInput) (domain.Task, error) {
	req := taskRequest{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.EffectiveDescription(),
		Status:       domain.TaskTodo,
		AssignedToID: in.AssigneeID,
	}
	if in.DueDate != nil {
		d := dateOf(*in.DueDate)
		req.DueDate = &d
	}
	var dto taskDTO
	if err := t.c.Do(ctx, http.MethodPost, fmt.Sprintf("/trips/%d/tasks", tripID), req, &dto); err != nil {
		return domain.Task{}, fmt.Errorf("api.Tasks.Create: %w", err)
	}
	return dto.toDomain(), nil
}

// UpdateStatus moves a task to another column and returns the updated record.
func (t *Tasks) UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus) (domain.Task, error) {
	var dto taskDTO
	if err := t.c.Do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", taskID), taskStatusRequest{Status: status}, &dto); err != nil {
		return domain.Task{}, fmt.Errorf("api.Tasks.UpdateStatus: %w", err)
	}
	return dto.toDomain(), nil
}

// Delete removes a task.
func (t *Tasks) Delete(ctx context.Context, taskID int64) error {
	if err := t.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil, nil); err != nil {
		return fmt.Errorf("api.Tasks.Delete: %w", err)
	}
	return nil
}
