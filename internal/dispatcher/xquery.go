package dispatcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

type XQueryProxy struct {
	client *Client
}

func NewXQueryProxy(client *Client) *XQueryProxy {
	return &XQueryProxy{client: client}
}

type XMLRequest struct {
	DiagnoseXML   string `json:"diagnoseXML"`
	SubmissionXML string `json:"submissionXML"`
}

// AddXML uploads the diagnose/submission document pair for a task group and
// returns the dispatcher's file reference for the stored documents.
func (p *XQueryProxy) AddXML(ctx context.Context, groupName string, req *XMLRequest) (string, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/xquery/xml/taskGroup/"+url.PathEscape(groupName), req)
	if err != nil {
		return "", err
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	fileURL := strings.TrimSpace(string(resp.Body))
	if fileURL == "" {
		return "", cerr.NewError(cerr.Internal, KeyRequestFailed, fmt.Errorf("dispatcher returned no file reference"))
	}
	return fileURL, nil
}

func (p *XQueryProxy) DeleteXML(ctx context.Context, groupName string) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, "/xquery/xml/taskGroup/"+url.PathEscape(groupName), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

type XQueryExerciseRequest struct {
	Query       string   `json:"query"`
	SortedNodes []string `json:"sortedNodes"`
}

func (p *XQueryProxy) CreateExercise(ctx context.Context, groupName string, req *XQueryExerciseRequest) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/xquery/exercise/taskGroup/"+url.PathEscape(groupName), req)
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *XQueryProxy) UpdateExercise(ctx context.Context, id int, req *XQueryExerciseRequest) error {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, fmt.Sprintf("/xquery/exercise/id/%d", id), req)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *XQueryProxy) DeleteExercise(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/xquery/exercise/id/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
