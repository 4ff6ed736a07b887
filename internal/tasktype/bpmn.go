package tasktype

import (
	"context"
	"strconv"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
)

type BpmnService struct {
	proxy *dispatcher.BpmnProxy
}

func NewBpmnService(proxy *dispatcher.BpmnProxy) *BpmnService {
	return &BpmnService{proxy: proxy}
}

func (s *BpmnService) Type() task.Type {
	return task.TypeBpmn
}

func (s *BpmnService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeBpmn {
		return nil
	}
	if isBlank(t.TestConfig) {
		return missingParameter("testConfig")
	}
	id, err := s.proxy.CreateExercise(ctx, t.TestConfig)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *BpmnService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeBpmn {
		return nil
	}
	if isBlank(t.TestConfig) {
		return missingParameter("testConfig")
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateExercise(ctx, id, t.TestConfig)
}

func (s *BpmnService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeBpmn {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteExercise(ctx, id))
}
