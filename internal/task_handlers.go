package internal

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/eTutor-plus-plus/taskdispatch/internal/eventbus"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// createTask persists the assignment into the metadata store first, then
// lets the task-type service create the dispatcher-side resource, and
// finally writes the dispatcher id of record back. When the dispatcher call
// fails the metadata entry is removed again so a retry starts clean.
func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var t task.Assignment
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if t.Type == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "task type is required", nil)
		return
	}
	now := time.Now()
	t.ID = ulid.Make().String()
	t.DispatcherID = ""
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.tasks.Create(ctx, &t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.registry.CreateTask(ctx, &t); err != nil {
		_ = s.tasks.Delete(ctx, t.ID)
		cerr.SetJSONError(ctx, err)
		return
	}
	if t.DispatcherID != "" {
		if err := s.tasks.Update(ctx, &t); err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
	}

	s.bus.PublishNew(eventbus.TaskCreated, t.ID, map[string]string{
		"task_type":     string(t.Type),
		"dispatcher_id": t.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, &t)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.tasks.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

type listTasksResponse struct {
	Tasks []*task.Assignment `json:"tasks"`
	Total int                `json:"total"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)
	tasks, total, err := s.tasks.List(ctx, task.Type(r.URL.Query().Get("type")), r.URL.Query().Get("taskGroup"), limit, offset)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &listTasksResponse{Tasks: tasks, Total: total})
}

// updateTask merges the editable fields into the stored assignment; the
// declared type and the dispatcher id never change on update.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := s.tasks.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	var in task.Assignment
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	in.ID = existing.ID
	in.Type = existing.Type
	in.DispatcherID = existing.DispatcherID
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = time.Now()

	if err := s.registry.UpdateTask(ctx, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.tasks.Update(ctx, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.bus.PublishNew(eventbus.TaskUpdated, in.ID, map[string]string{
		"task_type":     string(in.Type),
		"dispatcher_id": in.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, &in)
}

// deleteTask attempts the dispatcher-side delete first; whether a failure
// there blocks the metadata-store removal is the per-type policy of the
// task-type services.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := s.tasks.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.registry.DeleteTask(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.bus.PublishNew(eventbus.TaskDeleted, t.ID, map[string]string{
		"task_type":     string(t.Type),
		"dispatcher_id": t.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, t)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}
