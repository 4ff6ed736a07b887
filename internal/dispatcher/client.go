package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// Stable machine-readable keys for dispatcher-level failures. The chi error
// middleware returns these verbatim so UIs can localize them.
const (
	KeyRequestFailed = "dispatcher.requestFailed"
	KeyUnreachable   = "dispatcher.unreachable"
)

const (
	defaultMaxInFlight = 20
	defaultTimeout     = 30 * time.Second
)

// Config carries the per-family client settings. Every proxy family gets its
// own Client because the dispatchers are separately deployed services.
type Config struct {
	BaseURL     string
	MaxInFlight int
	Timeout     time.Duration
}

// Client is a minimal HTTP client bound to one dispatcher base URL. A
// buffered channel acts as a semaphore bounding the number of in-flight
// requests, so a slow dispatcher cannot monopolize unbounded resources.
// Requests are at-most-once; there are no retries at this layer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sem        chan struct{}
}

func NewClient(cfg Config) *Client {
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sem:        make(chan struct{}, maxInFlight),
	}
}

// Response is the uniform envelope every proxy works with. The body is kept
// even for error statuses because a 500 carries the dispatcher's message.
type Response struct {
	Status int
	Body   []byte
}

// Send issues a single HTTP request. Network-level failures (timeout,
// connection refused) come back as a generic internal error and are never
// mistaken for dispatcher semantics.
func (c *Client) Send(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, cerr.NewError(cerr.Canceled, "request canceled", ctx.Err())
	}
	defer func() { <-c.sem }()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, KeyUnreachable, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, KeyUnreachable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, KeyUnreachable, err)
	}
	return &Response{Status: resp.StatusCode, Body: b}, nil
}

// SendJSON marshals payload and sends it with a JSON content type.
func (c *Client) SendJSON(ctx context.Context, method, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, KeyRequestFailed, err)
	}
	return c.Send(ctx, method, path, body, "application/json")
}

// checkStatus maps a dispatcher response to an error. A 500 is a
// dispatcher-side business failure whose body is a human-readable message,
// surfaced as a diagnostic detail only. Any other non-2xx status is a
// protocol violation.
func checkStatus(resp *Response) error {
	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return nil
	case resp.Status == http.StatusInternalServerError:
		return cerr.NewErrorWithDetails(cerr.Internal, KeyRequestFailed, nil, strings.TrimSpace(string(resp.Body)))
	default:
		return cerr.NewError(cerr.Internal, KeyRequestFailed, fmt.Errorf("dispatcher returned status %d", resp.Status))
	}
}

// parseID extracts the integer id dispatchers return as plain text.
func parseID(resp *Response) (int, error) {
	if err := checkStatus(resp); err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(resp.Body))
	if text == "" {
		return 0, cerr.NewError(cerr.Internal, KeyRequestFailed, fmt.Errorf("dispatcher returned no id"))
	}
	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, cerr.NewError(cerr.Internal, KeyRequestFailed, fmt.Errorf("dispatcher returned non-numeric id %q", text))
	}
	return id, nil
}
