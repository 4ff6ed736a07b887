package dispatcher

import (
	"context"
	"fmt"
	"net/http"
)

// BpmnProxy speaks the BPMN dispatcher protocol. The exercise definition is
// an opaque text blob passed through verbatim.
type BpmnProxy struct {
	client *Client
}

func NewBpmnProxy(client *Client) *BpmnProxy {
	return &BpmnProxy{client: client}
}

func (p *BpmnProxy) CreateExercise(ctx context.Context, definition string) (int, error) {
	resp, err := p.client.Send(ctx, http.MethodPost, "/bpmn/exercise", []byte(definition), "text/plain")
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *BpmnProxy) UpdateExercise(ctx context.Context, id int, definition string) error {
	resp, err := p.client.Send(ctx, http.MethodPost, fmt.Sprintf("/bpmn/exercise/id/%d", id), []byte(definition), "text/plain")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *BpmnProxy) DeleteExercise(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/bpmn/exercise/id/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
