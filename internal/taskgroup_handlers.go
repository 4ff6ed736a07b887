package internal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eTutor-plus-plus/taskdispatch/internal/eventbus"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// createTaskGroup stores the group, then lets the group service create the
// dispatcher-side fixture. The group services write the assigned dispatcher
// id and the rewritten description back to the store themselves, so the
// response already carries both.
func (s *Server) createTaskGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var g taskgroup.Group
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	g.Name = taskgroup.NormalizeName(g.Name)
	if g.Name == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "task group name is required", nil)
		return
	}
	if g.Type == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "task group type is required", nil)
		return
	}
	now := time.Now()
	g.DispatcherID = ""
	g.CreatedAt = now
	g.UpdatedAt = now

	if err := s.groups.Create(ctx, &g); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.registry.CreateOrUpdateTaskGroup(ctx, &g, true); err != nil {
		_ = s.groups.Delete(ctx, g.Name)
		cerr.SetJSONError(ctx, err)
		return
	}

	s.bus.PublishNew(eventbus.TaskGroupCreated, g.Name, map[string]string{
		"group_type":    string(g.Type),
		"dispatcher_id": g.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, &g)
}

func (s *Server) getTaskGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := s.groups.GetByName(ctx, taskgroup.NormalizeName(chi.URLParam(r, "name")))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, g)
}

type listTaskGroupsResponse struct {
	TaskGroups []*taskgroup.Group `json:"taskGroups"`
	Total      int                `json:"total"`
}

func (s *Server) listTaskGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)
	groups, total, err := s.groups.List(ctx, taskgroup.Type(r.URL.Query().Get("type")), limit, offset)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &listTaskGroupsResponse{TaskGroups: groups, Total: total})
}

// updateTaskGroup replaces the group's fixture content and re-runs the
// dispatcher-side create-or-update. The name, the declared type and the
// stored dispatcher id come from the existing record; fixture updates can
// change the dispatcher id (the group services persist the new one).
func (s *Server) updateTaskGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := s.groups.GetByName(ctx, taskgroup.NormalizeName(chi.URLParam(r, "name")))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	var in taskgroup.Group
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	in.Name = existing.Name
	in.Type = existing.Type
	in.DispatcherID = existing.DispatcherID
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = time.Now()

	if err := s.groups.Update(ctx, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.registry.CreateOrUpdateTaskGroup(ctx, &in, false); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.bus.PublishNew(eventbus.TaskGroupUpdated, in.Name, map[string]string{
		"group_type":    string(in.Type),
		"dispatcher_id": in.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, &in)
}

// deleteTaskGroup removes the group from the metadata store after the
// best-effort dispatcher-side cleanup. Group deletes never propagate
// dispatcher failures, so the metadata removal always proceeds.
func (s *Server) deleteTaskGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	g, err := s.groups.GetByName(ctx, taskgroup.NormalizeName(chi.URLParam(r, "name")))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.registry.DeleteTaskGroup(ctx, g); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.groups.Delete(ctx, g.Name); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	s.bus.PublishNew(eventbus.TaskGroupDeleted, g.Name, map[string]string{
		"group_type":    string(g.Type),
		"dispatcher_id": g.DispatcherID,
	})
	cerr.SetJSONResponse(ctx, g)
}
