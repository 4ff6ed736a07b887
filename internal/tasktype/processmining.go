package tasktype

import (
	"context"
	"strconv"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
)

type PmService struct {
	proxy *dispatcher.PmProxy
}

func NewPmService(proxy *dispatcher.PmProxy) *PmService {
	return &PmService{proxy: proxy}
}

func (s *PmService) Type() task.Type {
	return task.TypeProcessMining
}

// buildPmRequest validates the log-generation bounds. All four must be
// non-zero; a zero bound would make the dispatcher generate empty logs.
func buildPmRequest(t *task.Assignment) (*dispatcher.PmConfigurationRequest, error) {
	if t.MaxActivity == 0 {
		return nil, missingParameter("maxActivity")
	}
	if t.MinActivity == 0 {
		return nil, missingParameter("minActivity")
	}
	if t.MaxLogSize == 0 {
		return nil, missingParameter("maxLogSize")
	}
	if t.MinLogSize == 0 {
		return nil, missingParameter("minLogSize")
	}
	return &dispatcher.PmConfigurationRequest{
		MaxActivity: t.MaxActivity,
		MinActivity: t.MinActivity,
		MaxLogSize:  t.MaxLogSize,
		MinLogSize:  t.MinLogSize,
		ConfigNum:   t.ConfigNum,
	}, nil
}

func (s *PmService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeProcessMining {
		return nil
	}
	req, err := buildPmRequest(t)
	if err != nil {
		return err
	}
	id, err := s.proxy.CreateConfiguration(ctx, req)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *PmService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeProcessMining {
		return nil
	}
	req, err := buildPmRequest(t)
	if err != nil {
		return err
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateConfiguration(ctx, id, req)
}

func (s *PmService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeProcessMining {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteConfiguration(ctx, id))
}
