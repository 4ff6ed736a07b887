package tasktype

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// memGroupRepo is an in-memory taskgroup.Repository for tests, keyed by the
// normalized name like the real repository.
type memGroupRepo struct {
	groups map[string]*taskgroup.Group
}

func newMemGroupRepo(groups ...*taskgroup.Group) *memGroupRepo {
	r := &memGroupRepo{groups: make(map[string]*taskgroup.Group)}
	for _, g := range groups {
		r.groups[taskgroup.NormalizeName(g.Name)] = g
	}
	return r
}

func (r *memGroupRepo) Create(ctx context.Context, g *taskgroup.Group) error {
	key := taskgroup.NormalizeName(g.Name)
	if _, ok := r.groups[key]; ok {
		return cerr.NewError(cerr.AlreadyExists, "task group already exists", nil)
	}
	r.groups[key] = g
	return nil
}

func (r *memGroupRepo) GetByName(ctx context.Context, name string) (*taskgroup.Group, error) {
	g, ok := r.groups[taskgroup.NormalizeName(name)]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task group not found", nil)
	}
	copied := *g
	return &copied, nil
}

func (r *memGroupRepo) List(ctx context.Context, groupType taskgroup.Type, limit, offset int) ([]*taskgroup.Group, int, error) {
	var out []*taskgroup.Group
	for _, g := range r.groups {
		if groupType == "" || g.Type == groupType {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (r *memGroupRepo) Update(ctx context.Context, g *taskgroup.Group) error {
	key := taskgroup.NormalizeName(g.Name)
	if _, ok := r.groups[key]; !ok {
		return cerr.NewError(cerr.NotFound, "task group not found", nil)
	}
	r.groups[key] = g
	return nil
}

func (r *memGroupRepo) Delete(ctx context.Context, name string) error {
	delete(r.groups, taskgroup.NormalizeName(name))
	return nil
}

func (r *memGroupRepo) GetDispatcherID(ctx context.Context, name string) (string, error) {
	g, err := r.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return g.DispatcherID, nil
}

func (r *memGroupRepo) SetDispatcherID(ctx context.Context, name, dispatcherID string) error {
	g, ok := r.groups[taskgroup.NormalizeName(name)]
	if !ok {
		return cerr.NewError(cerr.NotFound, "task group not found", nil)
	}
	g.DispatcherID = dispatcherID
	return nil
}

func (r *memGroupRepo) UpdateDescription(ctx context.Context, name, description string) error {
	g, ok := r.groups[taskgroup.NormalizeName(name)]
	if !ok {
		return cerr.NewError(cerr.NotFound, "task group not found", nil)
	}
	g.Description = description
	return nil
}

// fakeDispatcher is an httptest-backed dispatcher endpoint that counts the
// requests it receives, so tests can assert that validation failures never
// reach the network.
type fakeDispatcher struct {
	srv      *httptest.Server
	requests atomic.Int32
}

func newFakeDispatcher(t *testing.T, handler http.HandlerFunc) *fakeDispatcher {
	t.Helper()
	f := &fakeDispatcher{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDispatcher) client() *dispatcher.Client {
	return dispatcher.NewClient(dispatcher.Config{BaseURL: f.srv.URL})
}

func (f *fakeDispatcher) requestCount() int {
	return int(f.requests.Load())
}
