package devapi

import (
	"net/http"

	"github.com/tripboard/tripboard/internal/domain"
)

// listTasks handles GET /api/trips/{tripID}/tasks.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	tasks, err := s.store.Tasks(currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = taskToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// createTask handles POST /api/trips/{tripID}/tasks.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	var req taskRequest
	if !decode(w, r, &req) {
		return
	}
	status := domain.TaskTodo
	if req.Status != "" {
		parsed, err := domain.ParseTaskStatus(req.Status)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		status = parsed
	}
	in := domain.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssignedToID,
	}
	if req.DueDate != nil {
		due := req.DueDate.Time
		in.DueDate = &due
	}
	task, err := s.store.CreateTask(currentUser(r), id, in, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToResponse(task))
}

// updateTaskStatus handles PATCH /api/tasks/{taskID}/status.
func (s *Server) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	var req taskStatusRequest
	if !decode(w, r, &req) {
		return
	}
	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	task, err := s.store.UpdateTaskStatus(currentUser(r), id, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(task))
}

// deleteTask handles DELETE /api/tasks/{taskID}.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
