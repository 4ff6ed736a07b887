package tasktype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eTutor-plus-plus/taskdispatch/internal/config"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

func TestNewDefaultRegistryIsTotal(t *testing.T) {
	r, err := NewDefaultRegistry(&config.DispatcherEnv{}, newMemGroupRepo())
	require.NoError(t, err)

	for _, tt := range task.Types() {
		_, err := r.serviceFor(tt)
		assert.NoError(t, err, "task type %s", tt)
	}
	for _, gt := range taskgroup.Types() {
		_, err := r.groupServiceFor(gt)
		assert.NoError(t, err, "task group type %s", gt)
	}
}

func TestNewRegistryRejectsMissingService(t *testing.T) {
	_, err := NewRegistry(nil, nil)
	require.Error(t, err)
}

func TestNewRegistryRejectsDuplicateService(t *testing.T) {
	_, err := NewRegistry([]Service{
		NewNoDispatcherService(task.TypeNone),
		NewNoDispatcherService(task.TypeNone),
	}, nil)
	require.Error(t, err)
}

func TestRegistryUnknownTaskType(t *testing.T) {
	r, err := NewDefaultRegistry(&config.DispatcherEnv{}, newMemGroupRepo())
	require.NoError(t, err)

	err = r.CreateTask(context.Background(), &task.Assignment{Type: "holography"})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Unimplemented))
}

func TestRegistryNoDispatcherTypes(t *testing.T) {
	r, err := NewDefaultRegistry(&config.DispatcherEnv{}, newMemGroupRepo())
	require.NoError(t, err)

	for _, tt := range []task.Type{task.TypeNone, task.TypeUpload, task.TypeCalc} {
		tsk := &task.Assignment{ID: "t1", Type: tt}
		require.NoError(t, r.CreateTask(context.Background(), tsk))
		assert.Empty(t, tsk.DispatcherID, "task type %s must not get a dispatcher id", tt)
		require.NoError(t, r.DeleteTask(context.Background(), tsk))
	}
}
