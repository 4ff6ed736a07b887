package tasktype

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
)

func TestBuildXQueryRequest(t *testing.T) {
	req := buildXQueryRequest(&task.Assignment{Solution: "//person"})
	assert.NotNil(t, req.SortedNodes)
	assert.Empty(t, req.SortedNodes)

	req = buildXQueryRequest(&task.Assignment{Solution: "//person", SortExpression: " //person/name "})
	assert.Equal(t, []string{"//person/name"}, req.SortedNodes)
}

func TestXQueryServiceCreateTask(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xquery/exercise/taskGroup/Library_Docs", r.URL.Path)
		var req dispatcher.XQueryExerciseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "//book/title", req.Query)
		_, _ = w.Write([]byte("3"))
	})
	groups := newMemGroupRepo(&taskgroup.Group{Name: "Library Docs", Type: taskgroup.TypeXQuery})
	s := NewXQueryService(dispatcher.NewXQueryProxy(fake.client()), groups)

	tsk := &task.Assignment{
		Type:          task.TypeXQuery,
		TaskGroupName: "Library Docs",
		Solution:      "//book/title",
	}
	require.NoError(t, s.CreateTask(context.Background(), tsk))
	assert.Equal(t, "3", tsk.DispatcherID)
}

func TestXQueryGroupServiceCreateOrUpdate(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xquery/xml/taskGroup/Library_Docs", r.URL.Path)
		_, _ = w.Write([]byte("http://dispatcher/xquery/xml/42\n"))
	})
	groups := newMemGroupRepo()
	g := &taskgroup.Group{
		Name:        "Library Docs",
		Type:        taskgroup.TypeXQuery,
		DiagnoseXML: "<library/>",
	}
	require.NoError(t, groups.Create(context.Background(), g))

	s := NewXQueryGroupService(dispatcher.NewXQueryProxy(fake.client()), groups)
	require.NoError(t, s.CreateOrUpdateTaskGroup(context.Background(), g, true))

	assert.Equal(t, "http://dispatcher/xquery/xml/42", g.DispatcherID)
	assert.Contains(t, g.Description, "doc('http://dispatcher/xquery/xml/42')")

	stored, err := groups.GetByName(context.Background(), "Library Docs")
	require.NoError(t, err)
	assert.Equal(t, "http://dispatcher/xquery/xml/42", stored.DispatcherID)
}

func TestXQueryGroupServiceRequiresXML(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {})
	s := NewXQueryGroupService(dispatcher.NewXQueryProxy(fake.client()), newMemGroupRepo())

	err := s.CreateOrUpdateTaskGroup(context.Background(), &taskgroup.Group{
		Name: "Library Docs",
		Type: taskgroup.TypeXQuery,
	}, true)
	require.Error(t, err)
	assert.Equal(t, 0, fake.requestCount())
}

func TestXQueryServiceDeleteTaskSwallowsFailure(t *testing.T) {
	fake := newFakeDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	s := NewXQueryService(dispatcher.NewXQueryProxy(fake.client()), newMemGroupRepo())

	err := s.DeleteTask(context.Background(), &task.Assignment{
		ID:           "t1",
		Type:         task.TypeXQuery,
		DispatcherID: "3",
	})
	require.NoError(t, err)
}
