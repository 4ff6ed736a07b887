package dispatcher

import (
	"context"
	"fmt"
	"net/http"
)

// NFProxy speaks the normal-form dispatcher protocol. An exercise is a
// relation specification with functional dependencies, sent as text.
type NFProxy struct {
	client *Client
}

func NewNFProxy(client *Client) *NFProxy {
	return &NFProxy{client: client}
}

func (p *NFProxy) CreateExercise(ctx context.Context, specification string) (int, error) {
	resp, err := p.client.Send(ctx, http.MethodPost, "/nf/exercise", []byte(specification), "text/plain")
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *NFProxy) UpdateExercise(ctx context.Context, id int, specification string) error {
	resp, err := p.client.Send(ctx, http.MethodPost, fmt.Sprintf("/nf/exercise/id/%d", id), []byte(specification), "text/plain")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *NFProxy) DeleteExercise(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/nf/exercise/id/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
