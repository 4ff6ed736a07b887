package tasktype

import (
	"context"

	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
)

// NoDispatcherService serves task types without a dispatcher-side resource
// (none, upload, calc). Lifecycle calls succeed without side effects and the
// dispatcher id stays absent.
type NoDispatcherService struct {
	taskType task.Type
}

func NewNoDispatcherService(taskType task.Type) *NoDispatcherService {
	return &NoDispatcherService{taskType: taskType}
}

func (s *NoDispatcherService) Type() task.Type {
	return s.taskType
}

func (s *NoDispatcherService) CreateTask(ctx context.Context, t *task.Assignment) error {
	return nil
}

func (s *NoDispatcherService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	return nil
}

func (s *NoDispatcherService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	return nil
}

// NoDispatcherGroupService serves the "none" group type.
type NoDispatcherGroupService struct{}

func NewNoDispatcherGroupService() *NoDispatcherGroupService {
	return &NoDispatcherGroupService{}
}

func (s *NoDispatcherGroupService) GroupType() taskgroup.Type {
	return taskgroup.TypeNone
}

func (s *NoDispatcherGroupService) CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error {
	return nil
}

func (s *NoDispatcherGroupService) DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error {
	return nil
}
