package tasktype

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
)

type XQueryService struct {
	proxy  *dispatcher.XQueryProxy
	groups taskgroup.Repository
}

func NewXQueryService(proxy *dispatcher.XQueryProxy, groups taskgroup.Repository) *XQueryService {
	return &XQueryService{proxy: proxy, groups: groups}
}

func (s *XQueryService) Type() task.Type {
	return task.TypeXQuery
}

func buildXQueryRequest(t *task.Assignment) *dispatcher.XQueryExerciseRequest {
	req := &dispatcher.XQueryExerciseRequest{
		Query:       t.Solution,
		SortedNodes: []string{},
	}
	if !isBlank(t.SortExpression) {
		req.SortedNodes = []string{strings.TrimSpace(t.SortExpression)}
	}
	return req
}

func (s *XQueryService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeXQuery {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	g, err := resolveGroup(ctx, s.groups, t, taskgroup.TypeXQuery)
	if err != nil {
		return err
	}
	id, err := s.proxy.CreateExercise(ctx, taskgroup.NormalizeName(g.Name), buildXQueryRequest(t))
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *XQueryService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeXQuery {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateExercise(ctx, id, buildXQueryRequest(t))
}

func (s *XQueryService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeXQuery {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteExercise(ctx, id))
}

type XQueryGroupService struct {
	proxy  *dispatcher.XQueryProxy
	groups taskgroup.Repository
}

func NewXQueryGroupService(proxy *dispatcher.XQueryProxy, groups taskgroup.Repository) *XQueryGroupService {
	return &XQueryGroupService{proxy: proxy, groups: groups}
}

func (s *XQueryGroupService) GroupType() taskgroup.Type {
	return taskgroup.TypeXQuery
}

// CreateOrUpdateTaskGroup sends both XML documents as one payload; the
// dispatcher replaces any previously stored documents for the group. The
// returned file reference becomes the group's dispatcher id.
func (s *XQueryGroupService) CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error {
	if isBlank(g.DiagnoseXML) && isBlank(g.SubmissionXML) {
		return missingParameter("xml")
	}
	name := taskgroup.NormalizeName(g.Name)
	fileURL, err := s.proxy.AddXML(ctx, name, &dispatcher.XMLRequest{
		DiagnoseXML:   g.DiagnoseXML,
		SubmissionXML: g.SubmissionXML,
	})
	if err != nil {
		return err
	}

	g.DispatcherID = fileURL
	g.Description = appendDocReference(g.Description, fileURL)

	if err := s.groups.SetDispatcherID(ctx, g.Name, g.DispatcherID); err != nil {
		return err
	}
	return s.groups.UpdateDescription(ctx, g.Name, g.Description)
}

func (s *XQueryGroupService) DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error {
	if err := s.proxy.DeleteXML(ctx, taskgroup.NormalizeName(g.Name)); err != nil {
		slog.WarnContext(ctx, "ignoring xml delete failure", "task_group", g.Name, "error", err)
	}
	return nil
}

const docReferenceMarker = "<!-- xquery-doc-reference -->"

// appendDocReference adds a usage hint telling task authors how to reference
// the stored document from their queries.
func appendDocReference(description, fileURL string) string {
	if i := strings.Index(description, docReferenceMarker); i >= 0 {
		description = strings.TrimRight(description[:i], "\n")
	}
	var b strings.Builder
	b.WriteString(description)
	if description != "" {
		b.WriteString("\n")
	}
	b.WriteString(docReferenceMarker)
	fmt.Fprintf(&b, "\nReference this document set with <code>doc('%s')</code>.", fileURL)
	return b.String()
}
