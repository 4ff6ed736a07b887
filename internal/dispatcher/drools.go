package dispatcher

import (
	"context"
	"fmt"
	"net/http"
)

type DroolsProxy struct {
	client *Client
}

func NewDroolsProxy(client *Client) *DroolsProxy {
	return &DroolsProxy{client: client}
}

type DroolsTaskRequest struct {
	Solution            string `json:"solution"`
	MaxPoints           int    `json:"maxPoints"`
	Classes             string `json:"classes"`
	Objects             string `json:"objects"`
	ErrorWeighting      int    `json:"errorWeighting"`
	ValidationClassname string `json:"validationClassname"`
}

func (p *DroolsProxy) CreateTask(ctx context.Context, req *DroolsTaskRequest) (int, error) {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, "/drools/task/addTask", req)
	if err != nil {
		return 0, err
	}
	return parseID(resp)
}

func (p *DroolsProxy) UpdateTask(ctx context.Context, id int, req *DroolsTaskRequest) error {
	resp, err := p.client.SendJSON(ctx, http.MethodPost, fmt.Sprintf("/drools/task/editTask/%d", id), req)
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (p *DroolsProxy) DeleteTask(ctx context.Context, id int) error {
	resp, err := p.client.Send(ctx, http.MethodDelete, fmt.Sprintf("/drools/task/deleteTask/%d", id), nil, "")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
