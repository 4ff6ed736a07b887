package tasktype

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
)

// SQLService handles SQL and relational algebra exercises. Both are graded
// by the SQL dispatcher against the same schemas; the only difference is the
// declared task type.
type SQLService struct {
	taskType task.Type
	proxy    *dispatcher.SQLProxy
	groups   taskgroup.Repository
}

func NewSQLService(proxy *dispatcher.SQLProxy, groups taskgroup.Repository) *SQLService {
	return &SQLService{taskType: task.TypeSQL, proxy: proxy, groups: groups}
}

func NewRelationalAlgebraService(proxy *dispatcher.SQLProxy, groups taskgroup.Repository) *SQLService {
	return &SQLService{taskType: task.TypeRelationalAlgebra, proxy: proxy, groups: groups}
}

func (s *SQLService) Type() task.Type {
	return s.taskType
}

func (s *SQLService) CreateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != s.taskType {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	g, err := resolveGroup(ctx, s.groups, t, taskgroup.TypeSQL)
	if err != nil {
		return err
	}
	id, err := s.proxy.CreateExercise(ctx, taskgroup.NormalizeName(g.Name), t.Solution)
	if err != nil {
		return err
	}
	t.DispatcherID = strconv.Itoa(id)
	return nil
}

func (s *SQLService) UpdateTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != s.taskType {
		return nil
	}
	if isBlank(t.Solution) {
		return missingParameter("solution")
	}
	id, err := dispatcherID(t)
	if err != nil {
		return err
	}
	return s.proxy.UpdateSolution(ctx, id, t.Solution)
}

func (s *SQLService) DeleteTask(ctx context.Context, t *task.Assignment) error {
	if t.Type != s.taskType {
		return nil
	}
	id, err := dispatcherID(t)
	if err != nil {
		return finishDelete(ctx, t, err)
	}
	return finishDelete(ctx, t, s.proxy.DeleteExercise(ctx, id))
}

// SQLGroupService manages SQL schemas: the shared fixtures SQL and
// relational algebra tasks run against.
type SQLGroupService struct {
	proxy  *dispatcher.SQLProxy
	groups taskgroup.Repository
}

func NewSQLGroupService(proxy *dispatcher.SQLProxy, groups taskgroup.Repository) *SQLGroupService {
	return &SQLGroupService{proxy: proxy, groups: groups}
}

func (s *SQLGroupService) GroupType() taskgroup.Type {
	return taskgroup.TypeSQL
}

func (s *SQLGroupService) CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error {
	createStatements := splitStatements(g.CreateStatements)
	if len(createStatements) == 0 {
		return missingParameter("createStatements")
	}
	insertDiagnose := splitStatements(g.InsertStatementsDiagnose)
	insertSubmission := splitStatements(g.InsertStatementsSubmission)
	if len(insertDiagnose) == 0 && len(insertSubmission) == 0 {
		return missingParameter("insertStatements")
	}

	schemaName := taskgroup.NormalizeName(g.Name)
	resp, err := s.proxy.CreateSchema(ctx, &dispatcher.SQLSchemaRequest{
		CreateStatements:           createStatements,
		InsertStatementsDiagnose:   insertDiagnose,
		InsertStatementsSubmission: insertSubmission,
		SchemaName:                 schemaName,
	})
	if err != nil {
		return err
	}

	g.DispatcherID = strconv.Itoa(resp.DiagnoseConnectionID)
	g.Description = appendTableLinks(g.Description, schemaName, resp.TableColumns, resp.DiagnoseConnectionID)

	if err := s.groups.SetDispatcherID(ctx, g.Name, g.DispatcherID); err != nil {
		return err
	}
	return s.groups.UpdateDescription(ctx, g.Name, g.Description)
}

// DeleteTaskGroup drops the live connection and the schema. Group deletion
// is best-effort cleanup: dispatcher failures are logged, never surfaced.
func (s *SQLGroupService) DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error {
	schemaName := taskgroup.NormalizeName(g.Name)
	if err := s.proxy.DeleteConnection(ctx, schemaName); err != nil {
		slog.WarnContext(ctx, "ignoring connection delete failure", "task_group", g.Name, "error", err)
	}
	if err := s.proxy.DeleteSchema(ctx, schemaName); err != nil {
		slog.WarnContext(ctx, "ignoring schema delete failure", "task_group", g.Name, "error", err)
	}
	return nil
}

// tableLinkMarker delimits the generated table-link block inside a group
// description. Everything after the marker is regenerated on every update so
// repeated updates never duplicate links.
const tableLinkMarker = "<!-- sql-table-links -->"

func appendTableLinks(description, schemaName string, tableColumns map[string][]string, connectionID int) string {
	if i := strings.Index(description, tableLinkMarker); i >= 0 {
		description = strings.TrimRight(description[:i], "\n")
	}

	tables := make([]string, 0, len(tableColumns))
	for table := range tableColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var b strings.Builder
	b.WriteString(description)
	if description != "" {
		b.WriteString("\n")
	}
	b.WriteString(tableLinkMarker)
	b.WriteString("\n<strong>Tables:</strong><ul>")
	for _, table := range tables {
		fmt.Fprintf(&b, `<li><a href="/sql/table/%s/%s?connId=%d">%s</a></li>`, schemaName, table, connectionID, table)
	}
	b.WriteString("</ul>")
	return b.String()
}
