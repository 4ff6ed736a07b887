package tasktype

import (
	"context"
	"fmt"

	"github.com/eTutor-plus-plus/taskdispatch/internal/config"
	"github.com/eTutor-plus-plus/taskdispatch/internal/dispatcher"
	"github.com/eTutor-plus-plus/taskdispatch/internal/task"
	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
)

// Registry is the total mapping from task and task-group types to their
// service implementations. It only ever branches on the type tag; everything
// type-specific lives in the services. Adding a task type means adding one
// enum value and one service.
type Registry struct {
	services      map[task.Type]Service
	groupServices map[taskgroup.Type]GroupService
}

// NewRegistry builds the mapping and verifies it is total over both
// enumerations so a new enum value without a service fails at startup, not
// on the first request.
func NewRegistry(services []Service, groupServices []GroupService) (*Registry, error) {
	r := &Registry{
		services:      make(map[task.Type]Service, len(services)),
		groupServices: make(map[taskgroup.Type]GroupService, len(groupServices)),
	}
	for _, s := range services {
		if _, ok := r.services[s.Type()]; ok {
			return nil, fmt.Errorf("duplicate service for task type %s", s.Type())
		}
		r.services[s.Type()] = s
	}
	for _, s := range groupServices {
		if _, ok := r.groupServices[s.GroupType()]; ok {
			return nil, fmt.Errorf("duplicate service for task group type %s", s.GroupType())
		}
		r.groupServices[s.GroupType()] = s
	}
	for _, t := range task.Types() {
		if _, ok := r.services[t]; !ok {
			return nil, fmt.Errorf("no service registered for task type %s", t)
		}
	}
	for _, t := range taskgroup.Types() {
		if _, ok := r.groupServices[t]; !ok {
			return nil, fmt.Errorf("no service registered for task group type %s", t)
		}
	}
	return r, nil
}

// NewDefaultRegistry wires one client per dispatcher family from the
// environment and registers every known service.
func NewDefaultRegistry(env *config.DispatcherEnv, groups taskgroup.Repository) (*Registry, error) {
	client := func(baseURL string) *dispatcher.Client {
		return dispatcher.NewClient(dispatcher.Config{
			BaseURL:     baseURL,
			MaxInFlight: env.MaxInFlight,
			Timeout:     env.ClientTimeout,
		})
	}

	sqlProxy := dispatcher.NewSQLProxy(client(env.SQLURL))
	datalogProxy := dispatcher.NewDatalogProxy(client(env.DatalogURL))
	xqueryProxy := dispatcher.NewXQueryProxy(client(env.XQueryURL))
	droolsProxy := dispatcher.NewDroolsProxy(client(env.DroolsURL))
	pmProxy := dispatcher.NewPmProxy(client(env.PmURL))
	bpmnProxy := dispatcher.NewBpmnProxy(client(env.BpmnURL))
	nfProxy := dispatcher.NewNFProxy(client(env.SQLURL))

	return NewRegistry(
		[]Service{
			NewNoDispatcherService(task.TypeNone),
			NewNoDispatcherService(task.TypeUpload),
			NewNoDispatcherService(task.TypeCalc),
			NewSQLService(sqlProxy, groups),
			NewRelationalAlgebraService(sqlProxy, groups),
			NewDatalogService(datalogProxy, groups),
			NewXQueryService(xqueryProxy, groups),
			NewDroolsService(droolsProxy),
			NewPmService(pmProxy),
			NewBpmnService(bpmnProxy),
			NewNFService(nfProxy),
		},
		[]GroupService{
			NewNoDispatcherGroupService(),
			NewSQLGroupService(sqlProxy, groups),
			NewDatalogGroupService(datalogProxy, groups),
			NewXQueryGroupService(xqueryProxy, groups),
		},
	)
}

func (r *Registry) serviceFor(t task.Type) (Service, error) {
	s, ok := r.services[t]
	if !ok {
		return nil, cerr.NewError(cerr.Unimplemented, "unknown task type", fmt.Errorf("no service for task type %q", t))
	}
	return s, nil
}

func (r *Registry) groupServiceFor(t taskgroup.Type) (GroupService, error) {
	s, ok := r.groupServices[t]
	if !ok {
		return nil, cerr.NewError(cerr.Unimplemented, "unknown task group type", fmt.Errorf("no service for task group type %q", t))
	}
	return s, nil
}

func (r *Registry) CreateTask(ctx context.Context, t *task.Assignment) error {
	s, err := r.serviceFor(t.Type)
	if err != nil {
		return err
	}
	return s.CreateTask(ctx, t)
}

func (r *Registry) UpdateTask(ctx context.Context, t *task.Assignment) error {
	s, err := r.serviceFor(t.Type)
	if err != nil {
		return err
	}
	return s.UpdateTask(ctx, t)
}

func (r *Registry) DeleteTask(ctx context.Context, t *task.Assignment) error {
	s, err := r.serviceFor(t.Type)
	if err != nil {
		return err
	}
	return s.DeleteTask(ctx, t)
}

func (r *Registry) CreateOrUpdateTaskGroup(ctx context.Context, g *taskgroup.Group, isNew bool) error {
	s, err := r.groupServiceFor(g.Type)
	if err != nil {
		return err
	}
	return s.CreateOrUpdateTaskGroup(ctx, g, isNew)
}

func (r *Registry) DeleteTaskGroup(ctx context.Context, g *taskgroup.Group) error {
	s, err := r.groupServiceFor(g.Type)
	if err != nil {
		return err
	}
	return s.DeleteTaskGroup(ctx, g)
}
