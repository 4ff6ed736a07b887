package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eTutor-plus-plus/taskdispatch/internal/config"
	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/eventbus"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	taskrepo "github.com/eTutor-plus-plus/taskdispatch/internal/task/repositoryimpl"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	taskgrouprepo "github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup/repositoryimpl"
	"github.com/eTutor-plus-plus/taskdispatch/internal/tasktype"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/storage"
)

const testAPIKey = "test-key"

type testEnv struct {
	api    *httptest.Server
	tasks  task.Repository
	groups taskgroup.Repository
	// failDeletes makes the fake dispatcher answer 500 to every DELETE.
	failDeletes bool
}

// newTestEnv wires a full server against a single fake dispatcher serving
// every family's endpoints.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{}

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			if te.failDeletes {
				http.Error(w, "delete rejected", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		switch {
		case r.URL.Path == "/sql/schema":
			_ = json.NewEncoder(w).Encode(&dispatcher.SQLSchemaResponse{
				TableColumns:         map[string][]string{"customer": {"id", "name"}},
				DiagnoseConnectionID: 13,
			})
		case strings.HasPrefix(r.URL.Path, "/xquery/xml/"):
			_, _ = w.Write([]byte("http://dispatcher/xml/1"))
		default:
			// Every create/update endpoint answers with a numeric id.
			_, _ = w.Write([]byte("7"))
		}
	}))
	t.Cleanup(fake.Close)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	te.tasks = taskrepo.NewYAMLRepository(store)
	te.groups = taskgrouprepo.NewYAMLRepository(store)

	registry, err := tasktype.NewDefaultRegistry(&config.DispatcherEnv{
		SQLURL:        fake.URL,
		DatalogURL:    fake.URL,
		XQueryURL:     fake.URL,
		DroolsURL:     fake.URL,
		PmURL:         fake.URL,
		BpmnURL:       fake.URL,
		SubmissionURL: fake.URL,
	}, te.groups)
	require.NoError(t, err)

	submissions := dispatcher.NewSubmissionProxy(dispatcher.NewClient(dispatcher.Config{BaseURL: fake.URL}))

	env := &config.Env{}
	env.APIKey = testAPIKey

	srv := NewServer(env, te.tasks, te.groups, registry, submissions, eventbus.New())
	te.api = httptest.NewServer(srv.Handler())
	t.Cleanup(te.api.Close)
	return te
}

func (te *testEnv) request(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, te.api.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServerRequiresAPIKey(t *testing.T) {
	te := newTestEnv(t)

	resp, err := http.Get(te.api.URL + "/api/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The health endpoint stays open.
	resp, err = http.Get(te.api.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerAcceptsBearerToken(t *testing.T) {
	te := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, te.api.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerTaskGroupLifecycle(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/taskgroups", &taskgroup.Group{
		Name:                     "Shop DB",
		Type:                     taskgroup.TypeSQL,
		CreateStatements:         "CREATE TABLE customer (id INT)",
		InsertStatementsDiagnose: "INSERT INTO customer VALUES (1)",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[taskgroup.Group](t, resp)
	assert.Equal(t, "Shop_DB", created.Name, "group names are normalized on create")
	assert.Equal(t, "13", created.DispatcherID)
	assert.Contains(t, created.Description, "/sql/table/Shop_DB/customer?connId=13")

	// Fetching with the raw name resolves to the normalized record.
	resp = te.request(t, http.MethodGet, "/api/taskgroups/Shop_DB", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[taskgroup.Group](t, resp)
	assert.Equal(t, "13", got.DispatcherID)

	resp = te.request(t, http.MethodDelete, "/api/taskgroups/Shop_DB", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodGet, "/api/taskgroups/Shop_DB", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServerTaskLifecycle(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/taskgroups", &taskgroup.Group{
		Name:                     "Shop DB",
		Type:                     taskgroup.TypeSQL,
		CreateStatements:         "CREATE TABLE customer (id INT)",
		InsertStatementsDiagnose: "INSERT INTO customer VALUES (1)",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodPost, "/api/tasks", &task.Assignment{
		Name:          "Customers query",
		Type:          task.TypeSQL,
		TaskGroupName: "Shop DB",
		Solution:      "SELECT * FROM customer",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[task.Assignment](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "7", created.DispatcherID)

	// The dispatcher id survived the write-back into the metadata store.
	resp = te.request(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[task.Assignment](t, resp)
	assert.Equal(t, "7", got.DispatcherID)

	resp = te.request(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServerTaskValidationFailureLeavesNoRecord(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/tasks", &task.Assignment{
		Name: "broken",
		Type: task.TypeSQL,
		// No task group, no solution.
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[struct {
		Total int `json:"total"`
	}](t, resp)
	assert.Equal(t, 0, list.Total, "a failed create must not leave a metadata record")
}

func TestServerDeleteFailureBlocksMetadataRemoval(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/taskgroups", &taskgroup.Group{
		Name:                     "Shop DB",
		Type:                     taskgroup.TypeSQL,
		CreateStatements:         "CREATE TABLE customer (id INT)",
		InsertStatementsDiagnose: "INSERT INTO customer VALUES (1)",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodPost, "/api/tasks", &task.Assignment{
		Name:          "Customers query",
		Type:          task.TypeSQL,
		TaskGroupName: "Shop DB",
		Solution:      "SELECT * FROM customer",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[task.Assignment](t, resp)

	// SQL deletes propagate dispatcher failures, so the metadata record
	// must survive a rejected delete.
	te.failDeletes = true
	resp = te.request(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestServerDeleteSwallowedForBestEffortTypes(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/taskgroups", &taskgroup.Group{
		Name:  "Family Facts",
		Type:  taskgroup.TypeDatalog,
		Facts: "parent(a,b).",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodPost, "/api/tasks", &task.Assignment{
		Name:          "Grandparents",
		Type:          task.TypeDatalog,
		TaskGroupName: "Family Facts",
		Solution:      "grandparent(X,Z) :- parent(X,Y), parent(Y,Z).",
		Queries:       "grandparent(X,Z)?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody[task.Assignment](t, resp)

	// Datalog deletes are best-effort: the dispatcher failure is swallowed
	// and the metadata record goes away.
	te.failDeletes = true
	resp = te.request(t, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = te.request(t, http.MethodGet, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServerSubmissionPassthrough(t *testing.T) {
	te := newTestEnv(t)

	resp := te.request(t, http.MethodPost, "/api/submissions", map[string]string{"taskId": "7", "submission": "SELECT 1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "7", strings.TrimSpace(string(body)), "the dispatcher response is forwarded untouched")
}
