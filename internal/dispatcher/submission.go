package dispatcher

import (
	"context"
	"net/http"
	"net/url"
)

// SubmissionProxy speaks the generic submission/grading protocol. Payloads
// are passed through untouched; the platform does not interpret gradings.
type SubmissionProxy struct {
	client *Client
}

func NewSubmissionProxy(client *Client) *SubmissionProxy {
	return &SubmissionProxy{client: client}
}

func (p *SubmissionProxy) Submit(ctx context.Context, submission []byte) ([]byte, error) {
	resp, err := p.client.Send(ctx, http.MethodPost, "/submission", submission, "application/json")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (p *SubmissionProxy) GetSubmission(ctx context.Context, id string) ([]byte, error) {
	resp, err := p.client.Send(ctx, http.MethodGet, "/submission/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (p *SubmissionProxy) GetGrading(ctx context.Context, submissionID string) ([]byte, error) {
	resp, err := p.client.Send(ctx, http.MethodGet, "/grading/"+url.PathEscape(submissionID), nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}
