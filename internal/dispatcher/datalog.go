package dispatcher

import (
	"context"
	"fmt"
	"net/http"
)

type DatalogProxy struct {
	client *Client
}

func NewDatalogProxy(client *Client) *DatalogProxy {
	return &DatalogProxy{client: client}
}

type datalogTaskGroupRequest struct {
	Name  string `json:"name"`
	Facts string `json:"facts"`
}

func (p *DatalogProxy) CreateTaskGroup(ctx context.Context, name, facts string) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/datalog/taskgroup", &datalogTaskGroupRequest{Name: name, Facts: facts})
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *DatalogProxy) UpdateTaskGroup(ctx context.Context, id int, name, facts string) error {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, fmt.Sprintf("/datalog/taskgroup/%d", id), &datalogTaskGroupRequest{Name: name, Facts: facts})
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *DatalogProxy) DeleteTaskGroup(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/datalog/taskgroup/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

// UncheckedTerm marks one argument position of a predicate that grading must
// not check. Position is 1-based.
type UncheckedTerm struct {
	Predicate string `json:"predicate"`
	Term      string `json:"term"`
	Position  int    `json:"position"`
}

type DatalogExerciseRequest struct {
	Solution       string          `json:"solution"`
	Queries        []string        `json:"queries"`
	UncheckedTerms []UncheckedTerm `json:"uncheckedTerms"`
	FactsID        int             `json:"factsId"`
}

func (p *DatalogProxy) CreateExercise(ctx context.Context, req *DatalogExerciseRequest) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/datalog/exercise", req)
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *DatalogProxy) UpdateExercise(ctx context.Context, id int, req *DatalogExerciseRequest) error {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, fmt.Sprintf("/datalog/exercise/%d", id), req)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *DatalogProxy) DeleteExercise(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/datalog/exercise/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
