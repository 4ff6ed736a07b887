package tasktype

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// requireMissingParameter asserts the standard validation failure shape: the
// stable key as message, the offending field as detail.
func requireMissingParameter(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	var cErr *cerr.Error
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, KeyMissingParameter, cErr.Msg)
	assert.Equal(t, []string{field}, cErr.Details)
}

func TestBuildDroolsRequest(t *testing.T) {
	base := func() *task.Assignment {
		return &task.Assignment{
			Type:        task.TypeDrools,
			Solution:    "rule \"discount\" when ... then ... end",
			RuleClasses: "Order;Customer",
			RuleObjects: "order1;customer1",
			MaxPoints:   "10",
		}
	}

	req, err := buildDroolsRequest(base())
	require.NoError(t, err)
	assert.Equal(t, 10, req.MaxPoints)
	assert.Equal(t, 1, req.ErrorWeighting, "error weighting defaults to 1")

	tsk := base()
	tsk.ErrorWeighting = 3
	req, err = buildDroolsRequest(tsk)
	require.NoError(t, err)
	assert.Equal(t, 3, req.ErrorWeighting)

	tsk = base()
	tsk.RuleClasses = ""
	_, err = buildDroolsRequest(tsk)
	requireMissingParameter(t, err, "classes")

	tsk = base()
	tsk.MaxPoints = "ten"
	_, err = buildDroolsRequest(tsk)
	requireMissingParameter(t, err, "maxPoints")
}

func TestBuildPmRequest(t *testing.T) {
	base := func() *task.Assignment {
		return &task.Assignment{
			Type:        task.TypeProcessMining,
			MaxActivity: 8,
			MinActivity: 4,
			MaxLogSize:  20,
			MinLogSize:  10,
			ConfigNum:   1,
		}
	}

	req, err := buildPmRequest(base())
	require.NoError(t, err)
	assert.Equal(t, 8, req.MaxActivity)

	tsk := base()
	tsk.MinLogSize = 0
	_, err = buildPmRequest(tsk)
	requireMissingParameter(t, err, "minLogSize")
}

func TestBpmnServiceRequiresTestConfig(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {})
	s := NewBpmnService(dispatcher.NewBpmnProxy(fake.client()))

	err := s.CreateTask(context.Background(), &task.Assignment{Type: task.TypeBpmn})
	requireMissingParameter(t, err, "testConfig")
	assert.Equal(t, 0, fake.requestCount())
}

func TestBpmnServiceCreateTask(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bpmn/exercise", r.URL.Path)
		_, _ = w.Write([]byte("9"))
	})
	s := NewBpmnService(dispatcher.NewBpmnProxy(fake.client()))

	tsk := &task.Assignment{Type: task.TypeBpmn, TestConfig: `{"events":[]}`}
	require.NoError(t, s.CreateTask(context.Background(), tsk))
	assert.Equal(t, "9", tsk.DispatcherID)
}

func TestNFServiceCreateTask(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/nf/exercise", r.URL.Path)
		_, _ = w.Write([]byte("4"))
	})
	s := NewNFService(dispatcher.NewNFProxy(fake.client()))

	tsk := &task.Assignment{Type: task.TypeNormalForm, Solution: "R(A,B,C); A->B"}
	require.NoError(t, s.CreateTask(context.Background(), tsk))
	assert.Equal(t, "4", tsk.DispatcherID)

	err := s.CreateTask(context.Background(), &task.Assignment{Type: task.TypeNormalForm})
	requireMissingParameter(t, err, "solution")
}

func TestNFServiceDeleteTaskPropagatesFailure(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	s := NewNFService(dispatcher.NewNFProxy(fake.client()))

	err := s.DeleteTask(context.Background(), &task.Assignment{
		ID:           "t1",
		Type:         task.TypeNormalForm,
		DispatcherID: "4",
	})
	require.Error(t, err)
}

func TestDroolsServiceDeleteTaskSwallowsFailure(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	s := NewDroolsService(dispatcher.NewDroolsProxy(fake.client()))

	err := s.DeleteTask(context.Background(), &task.Assignment{
		ID:           "t1",
		Type:         task.TypeDrools,
		DispatcherID: "2",
	})
	require.NoError(t, err)
}

func TestPmServiceCreateTask(t *testing.T) {
	var gotReq dispatcher.PmConfigurationRequest
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/pm/configuration", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte("6"))
	})
	s := NewPmService(dispatcher.NewPmProxy(fake.client()))

	tsk := &task.Assignment{
		Type:        task.TypeProcessMining,
		MaxActivity: 8,
		MinActivity: 4,
		MaxLogSize:  20,
		MinLogSize:  10,
	}
	require.NoError(t, s.CreateTask(context.Background(), tsk))
	assert.Equal(t, "6", tsk.DispatcherID)
	assert.Equal(t, 8, gotReq.MaxActivity)
}
