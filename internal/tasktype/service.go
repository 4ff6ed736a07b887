package tasktype

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// Stable machine-readable keys for validation failures detected before any
// dispatcher call is issued.
const (
	KeyMissingParameter = "dispatcher.missingParameter"
	KeyInvalidTaskGroup = "dispatcher.invalidTaskGroup"
)

// Service is the common contract every task-type implementation satisfies.
// CreateTask sets the dispatcher-assigned id on the assignment in memory;
// persisting it into the metadata store is the caller's responsibility.
type Service interface {
	Type() task.Type
	CreateTask(ctx context.Context, t *task.Assignment) error
	UpdateTask(ctx context.Context, t *task.Assignment) error
	DeleteTask(ctx context.Context, t *task.Assignment) error
}

// GroupService is the contract for types with shared fixtures. Unlike task
// creation, group services write the dispatcher id and the rewritten
// description back into the metadata store themselves.
type GroupService interface {
	GroupType() taskgroup.Type
	CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error
	DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error
}

// deleteFailurePolicy records, per task type, whether a failed dispatcher
// delete is swallowed (treated as already-deleted cleanup) or propagated to
// the caller. The asymmetry is deliberate existing policy; keep it in one
// place so it stays auditable.
var deleteFailurePolicy = map[task.Type]bool{
	task.TypeSQL:               false,
	task.TypeRelationalAlgebra: false,
	task.TypeDatalog:           true,
	task.TypeXQuery:            true,
	task.TypeDrools:            true,
	task.TypeProcessMining:     false,
	task.TypeBpmn:              false,
	task.TypeNormalForm:        false,
}

// finishDelete applies the per-type delete failure policy.
func finishDelete(ctx context.Context, t *task.Assignment, err error) error {
	if err == nil {
		return nil
	}
	if deleteFailurePolicy[t.Type] {
		slog.WarnContext(ctx, "ignoring dispatcher delete failure",
			"task_id", t.ID, "task_type", t.Type, "error", err)
		return nil
	}
	return err
}

func missingParameter(field string) error {
	return cerr.NewErrorWithDetails(cerr.InvalidArgument, KeyMissingParameter, nil, field)
}

func invalidTaskGroup(name string, want taskgroup.Type) error {
	return cerr.NewErrorWithDetails(cerr.FailedPrecondition, KeyInvalidTaskGroup, nil,
		fmt.Sprintf("task group %q is not of type %s", name, want))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// dispatcherID parses the stored dispatcher id of an assignment. Updates and
// deletes need the numeric form; a missing or malformed id is a request
// failure, subject to the delete policy on delete paths.
func dispatcherID(t *task.Assignment) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(t.DispatcherID))
	if err != nil {
		return 0, cerr.NewError(cerr.Internal, "dispatcher.requestFailed",
			fmt.Errorf("task %s has no usable dispatcher id %q", t.ID, t.DispatcherID))
	}
	return id, nil
}

// resolveGroup fetches the referenced task group and checks its type before
// any network call. A wrong group type must never be discovered only by a
// dispatcher-side error.
func resolveGroup(ctx context.Context, repo taskgroup.Repository, t *task.Assignment, want taskgroup.Type) (*taskgroup.Group, error) {
	if isBlank(t.TaskGroupName) {
		return nil, missingParameter("taskGroup")
	}
	g, err := repo.GetByName(ctx, t.TaskGroupName)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, invalidTaskGroup(t.TaskGroupName, want)
		}
		return nil, err
	}
	if g.Type != want {
		return nil, invalidTaskGroup(g.Name, want)
	}
	return g, nil
}

// splitStatements splits semicolon-separated SQL text into trimmed,
// non-empty statements.
func splitStatements(text string) []string {
	var out []string
	for _, stmt := range strings.Split(text, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
