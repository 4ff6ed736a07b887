package tasktype

import (
	"context"
	"strconv"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
)

// NFService handles normal-form (database design) exercises. The solution
// field carries the relation specification with its functional dependencies.
type NFService struct {
	proxy *dispatcher.NFProxy
}

func NewNFService(proxy *dispatcher.NFProxy) *NFService {
	return &NFService{proxy: proxy}
}

func (s *NFService) Type() task.Type {
	return task.TypeNormalForm
}

func (s *NFService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeNormalForm {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	id, err := s.proxy.CreateExercise(ctx, t.Solution)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *NFService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeNormalForm {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateExercise(ctx, id, t.Solution)
}

func (s *NFService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeNormalForm {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteExercise(ctx, id))
}
