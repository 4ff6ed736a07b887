package tasktype

import (
	"context"
	"strconv"
	"strings"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
)

type DroolsService struct {
	proxy *dispatcher.DroolsProxy
}

func NewDroolsService(proxy *dispatcher.DroolsProxy) *DroolsService {
	return &DroolsService{proxy: proxy}
}

func (s *DroolsService) Type() task.Type {
	return task.TypeDrools
}

func buildDroolsRequest(t *task.Assignment) (*dispatcher.DroolsTaskRequest, error) {
	if isBlank(t.Solution) {
		return nil, missingParameter("solution")
	}
	if isBlank(t.RuleClasses) {
		return nil, missingParameter("classes")
	}
	if isBlank(t.RuleObjects) {
		return nil, missingParameter("objects")
	}
	if isBlank(t.MaxPoints) {
		return nil, missingParameter("maxPoints")
	}
	maxPoints, err := strconv.Atoi(strings.TrimSpace(t.MaxPoints))
	if err != nil {
		return nil, missingParameter("maxPoints")
	}
	errorWeighting := t.ErrorWeighting
	if errorWeighting == 0 {
		errorWeighting = 1
	}
	return &dispatcher.DroolsTaskRequest{
		Solution:            t.Solution,
		MaxPoints:           maxPoints,
		Classes:             t.RuleClasses,
		Objects:             t.RuleObjects,
		ErrorWeighting:      errorWeighting,
		ValidationClassname: t.ValidationClass,
	}, nil
}

func (s *DroolsService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDrools {
		return nil
	}
	req, err := buildDroolsRequest(t)
	if err != nil {
		return err
	}
	id, err := s.proxy.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *DroolsService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDrools {
		return nil
	}
	req, err := buildDroolsRequest(t)
	if err != nil {
		return err
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateTask(ctx, id, req)
}

func (s *DroolsService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDrools {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteTask(ctx, id))
}
