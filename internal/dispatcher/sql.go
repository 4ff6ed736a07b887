package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// SQLProxy speaks the SQL dispatcher protocol. It also serves relational
// algebra exercises, which are graded against the same schemas.
type SQLProxy struct {
	client *Client
}

func NewSQLProxy(client *Client) *SQLProxy {
	return &SQLProxy{client: client}
}

type SQLSchemaRequest struct {
	CreateStatements           []string `json:"createStatements"`
	InsertStatementsDiagnose   []string `json:"insertStatementsDiagnose"`
	InsertStatementsSubmission []string `json:"insertStatementsSubmission"`
	SchemaName                 string   `json:"schemaName"`
}

type SQLSchemaResponse struct {
	TableColumns         map[string][]string `json:"tableColumns"`
	DiagnoseConnectionID int                 `json:"diagnoseConnectionId"`
}

// CreateSchema creates (or recreates) the schema with its diagnose and
// submission datasets and returns the resulting table layout plus the live
// diagnose connection id.
func (p *SQLProxy) CreateSchema(ctx context.Context, req *SQLSchemaRequest) (*SQLSchemaResponse, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/sql/schema", req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out SQLSchemaResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, cerr.NewError(cerr.Internal, KeyRequestFailed, fmt.Errorf("failed to decode schema response: %w", err))
	}
	return &out, nil
}

func (p *SQLProxy) DeleteSchema(ctx context.Context, schemaName string) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, "/sql/schema/"+url.PathEscape(schemaName), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *SQLProxy) DeleteConnection(ctx context.Context, schemaName string) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, "/sql/schema/"+url.PathEscape(schemaName)+"/connection", nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

type sqlExerciseRequest struct {
	SchemaName string `json:"schemaName"`
	Solution   string `json:"solution"`
}

func (p *SQLProxy) CreateExercise(ctx context.Context, schemaName, solution string) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPut, "/sql/exercise", &sqlExerciseRequest{
		SchemaName: schemaName,
		Solution:   solution,
	})
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

// UpdateSolution replaces the stored solution. The body is the raw solution
// text, not JSON.
func (p *SQLProxy) UpdateSolution(ctx context.Context, id int, solution string) error {
	resp, err := p.client.Send(ctx, http.MethodPost, fmt.Sprintf("/sql/exercise/%d/solution", id), []byte(solution), "text/plain")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *SQLProxy) DeleteExercise(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/sql/exercise/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
