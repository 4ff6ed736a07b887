package internal

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// The submission endpoints are a pure passthrough: bodies are opaque to this
// service and forwarded to the grading dispatcher unchanged. The dispatcher
// speaks JSON, so its responses can be handed to the response middleware as
// raw messages.

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "failed to read request body", err)
		return
	}
	resp, err := s.submissions.Submit(ctx, body)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, json.RawMessage(resp))
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp, err := s.submissions.GetSubmission(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, json.RawMessage(resp))
}

func (s *Server) getGrading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp, err := s.submissions.GetGrading(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, json.RawMessage(resp))
}
