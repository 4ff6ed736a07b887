package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLProxyCreateSchema(t *testing.T) {
	var gotReq SQLSchemaRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sql/schema", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(&SQLSchemaResponse{
			TableColumns:         map[string][]string{"customer": {"id", "name"}},
			DiagnoseConnectionID: 13,
		})
	}, 0)
	p := NewSQLProxy(c)

	resp, err := p.CreateSchema(context.Background(), &SQLSchemaRequest{
		CreateStatements:         []string{"CREATE TABLE customer (id INT, name TEXT)"},
		InsertStatementsDiagnose: []string{"INSERT INTO customer VALUES (1, 'a')"},
		SchemaName:               "Shop_DB",
	})
	require.NoError(t, err)
	assert.Equal(t, 13, resp.DiagnoseConnectionID)
	assert.Equal(t, []string{"id", "name"}, resp.TableColumns["customer"])
	assert.Equal(t, "Shop_DB", gotReq.SchemaName)
}

func TestSQLProxyCreateExercise(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/sql/exercise", r.URL.Path)
		_, _ = w.Write([]byte("7"))
	}, 0)
	p := NewSQLProxy(c)

	id, err := p.CreateExercise(context.Background(), "Shop_DB", "SELECT * FROM customer")
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestSQLProxyDeleteExerciseBusinessFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "exercise is referenced by a course", http.StatusInternalServerError)
	}, 0)
	p := NewSQLProxy(c)

	err := p.DeleteExercise(context.Background(), 7)
	require.Error(t, err)
}
