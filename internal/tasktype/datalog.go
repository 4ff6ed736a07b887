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
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

type DatalogService struct {
	proxy  *dispatcher.DatalogProxy
	groups taskgroup.Repository
}

func NewDatalogService(proxy *dispatcher.DatalogProxy, groups taskgroup.Repository) *DatalogService {
	return &DatalogService{proxy: proxy, groups: groups}
}

func (s *DatalogService) Type() task.Type {
	return task.TypeDatalog
}

func (s *DatalogService) buildRequest(ctx context.Context, t *task.Assignment) (*dispatcher.DatalogExerciseRequest, error) {
	if isBlank(t.Solution) {
		return nil, missingParameter("solution")
	}
	queries := splitQueries(t.Queries)
	if len(queries) == 0 {
		return nil, missingParameter("queries")
	}
	g, err := resolveGroup(ctx, s.groups, t, taskgroup.TypeDatalog)
	if err != nil {
		return nil, err
	}
	factsID, err := strconv.Atoi(strings.TrimSpace(g.DispatcherID))
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, dispatcher.KeyRequestFailed,
			fmt.Errorf("task group %s has no usable fact base id %q", g.Name, g.DispatcherID))
	}
	terms, err := ParseUncheckedTerms(t.UncheckedTerms)
	if err != nil {
		return nil, err
	}
	return &dispatcher.DatalogExerciseRequest{
		Solution:       t.Solution,
		Queries:        queries,
		UncheckedTerms: terms,
		FactsID:        factsID,
	}, nil
}

func (s *DatalogService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDatalog {
		return nil
	}
	req, err := s.buildRequest(ctx, t)
	if err != nil {
		return err
	}
	id, err := s.proxy.CreateExercise(ctx, req)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *DatalogService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDatalog {
		return nil
	}
	req, err := s.buildRequest(ctx, t)
	if err != nil {
		return err
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateExercise(ctx, id, req)
}

func (s *DatalogService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != task.TypeDatalog {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteExercise(ctx, id))
}

// splitQueries splits the ';'-separated query text into trimmed, non-empty
// queries.
func splitQueries(text string) []string {
	var out []string
	for _, q := range strings.Split(text, ";") {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}

// ParseUncheckedTerms parses the unchecked-term specification into
// (predicate, position, term) triples. The input is a sequence of
// `predicate(arg,...)` segments separated by '.', e.g. "p(a,b).q(_,c).".
// Positions are 1-based; an '_' placeholder produces no triple but still
// advances the position counter.
func ParseUncheckedTerms(spec string) ([]dispatcher.UncheckedTerm, error) {
	var terms []dispatcher.UncheckedTerm
	if isBlank(spec) {
		return terms, nil
	}
	for _, segment := range strings.Split(spec, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		open := strings.Index(segment, "(")
		closing := strings.LastIndex(segment, ")")
		if open <= 0 || closing < open {
			return nil, cerr.NewErrorWithDetails(cerr.InvalidArgument, KeyMissingParameter, nil,
				fmt.Sprintf("malformed unchecked term segment %q", segment))
		}
		predicate := strings.TrimSpace(segment[:open])
		for i, arg := range strings.Split(segment[open+1:closing], ",") {
			arg = strings.TrimSpace(arg)
			if arg == "_" || arg == "" {
				continue
			}
			terms = append(terms, dispatcher.UncheckedTerm{
				Predicate: predicate,
				Term:      arg,
				Position:  i + 1,
			})
		}
	}
	return terms, nil
}

type DatalogGroupService struct {
	proxy  *dispatcher.DatalogProxy
	groups taskgroup.Repository
}

func NewDatalogGroupService(proxy *dispatcher.DatalogProxy, groups taskgroup.Repository) *DatalogGroupService {
	return &DatalogGroupService{proxy: proxy, groups: groups}
}

func (s *DatalogGroupService) GroupType() taskgroup.Type {
	return taskgroup.TypeDatalog
}

// CreateOrUpdateTaskGroup creates the fact base on the first call and
// updates the stored facts afterwards. Whether this is a create or an update
// is decided by the presence of a dispatcher id, not by isNew, so a group
// whose first dispatcher call failed is retried as a create.
func (s *DatalogGroupService) CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error {
	if isBlank(g.Facts) {
		return missingParameter("facts")
	}
	name := taskgroup.NormalizeName(g.Name)

	if !isBlank(g.DispatcherID) {
		id, err := strconv.Atoi(strings.TrimSpace(g.DispatcherID))
		if err != nil {
			return cerr.NewError(cerr.Internal, dispatcher.KeyRequestFailed,
				fmt.Errorf("task group %s has no usable fact base id %q", g.Name, g.DispatcherID))
		}
		return s.proxy.UpdateTaskGroup(ctx, id, name, g.Facts)
	}

	id, err := s.proxy.CreateTaskGroup(ctx, name, g.Facts)
	if err != nil {
		return err
	}
	g.DispatcherID = strconv.Itoa(id)
	g.Description = appendFactsLink(g.Description, id)

	if err := s.groups.SetDispatcherID(ctx, g.Name, g.DispatcherID); err != nil {
		return err
	}
	return s.groups.UpdateDescription(ctx, g.Name, g.Description)
}

func (s *DatalogGroupService) DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error {
	id, err := strconv.Atoi(strings.TrimSpace(g.DispatcherID))
	if err != nil {
		slog.WarnContext(ctx, "skipping fact base delete, no usable id", "task_group", g.Name)
		return nil
	}
	if err := s.proxy.DeleteTaskGroup(ctx, id); err != nil {
		slog.WarnContext(ctx, "ignoring fact base delete failure", "task_group", g.Name, "error", err)
	}
	return nil
}

const factsLinkMarker = "<!-- datalog-facts-link -->"

func appendFactsLink(description string, factsID int) string {
	if i := strings.Index(description, factsLinkMarker); i >= 0 {
		description = strings.TrimRight(description[:i], "\n")
	}
	var b strings.Builder
	b.WriteString(description)
	if description != "" {
		b.WriteString("\n")
	}
	b.WriteString(factsLinkMarker)
	fmt.Fprintf(&b, "\n<a href=\"/datalog/taskgroup/%d\">Download facts</a>", factsID)
	return b.String()
}
