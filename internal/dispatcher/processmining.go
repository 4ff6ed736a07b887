package dispatcher

import (
	"context"
	"fmt"
	"net/http"
)

// PmProxy speaks the process-mining dispatcher protocol. Exercises are
// log-generation configurations rather than solutions.
type PmProxy struct {
	client *Client
}

func NewPmProxy(client *Client) *PmProxy {
	return &PmProxy{client: client}
}

type PmConfigurationRequest struct {
	MaxActivity int `json:"maxActivity"`
	MinActivity int `json:"minActivity"`
	MaxLogSize  int `json:"maxLogSize"`
	MinLogSize  int `json:"minLogSize"`
	ConfigNum   int `json:"configNum"`
}

func (p *PmProxy) CreateConfiguration(ctx context.Context, req *PmConfigurationRequest) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPut, "/pm/configuration", req)
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *PmProxy) UpdateConfiguration(ctx context.Context, id int, req *PmConfigurationRequest) error {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, fmt.Sprintf("/pm/configuration/%d/values", id), req)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *PmProxy) DeleteConfiguration(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/pm/configuration/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
