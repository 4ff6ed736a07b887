package repositoryimpl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/storage"
)

const groupsPrefix = "taskgroups"

// YAMLRepository stores task groups as one YAML file per group, keyed by the
// normalized group name so the storage namespace matches the dispatcher-side
// namespace.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(name string) string {
	return fmt.Sprintf("%s/%s.yaml", groupsPrefix, taskgroup.NormalizeName(name))
}

func (r *YAMLRepository) Create(ctx context.Context, g *taskgroup.Group) error {
	exists, err := r.storage.Exists(ctx, path(g.Name))
	if err != nil {
		return cerr.WrapStorageWriteError("task group", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task group already exists", nil)
	}
	return r.write(ctx, g)
}

func (r *YAMLRepository) GetByName(ctx context.Context, name string) (*taskgroup.Group, error) {
	data, err := r.storage.Read(ctx, path(name))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task group", err)
	}
	var g taskgroup.Group
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task group: %w", err))
	}
	return &g, nil
}

func (r *YAMLRepository) List(ctx context.Context, groupType taskgroup.Type, limit, offset int) ([]*taskgroup.Group, int, error) {
	paths, err := r.storage.List(ctx, groupsPrefix)
	if err != nil {
		return nil, 0, cerr.WrapStorageReadError("task groups", err)
	}

	sort.Strings(paths)

	var all []*taskgroup.Group
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var g taskgroup.Group
		if err := yaml.Unmarshal(data, &g); err != nil {
			continue
		}
		if groupType != "" && g.Type != groupType {
			continue
		}
		all = append(all, &g)
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *YAMLRepository) Update(ctx context.Context, g *taskgroup.Group) error {
	exists, err := r.storage.Exists(ctx, path(g.Name))
	if err != nil {
		return cerr.WrapStorageWriteError("task group", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "task group not found", nil)
	}
	return r.write(ctx, g)
}

func (r *YAMLRepository) Delete(ctx context.Context, name string) error {
	if err := r.storage.Delete(ctx, path(name)); err != nil {
		return cerr.WrapStorageDeleteError("task group", err)
	}
	return nil
}

func (r *YAMLRepository) GetDispatcherID(ctx context.Context, name string) (string, error) {
	g, err := r.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return g.DispatcherID, nil
}

func (r *YAMLRepository) SetDispatcherID(ctx context.Context, name, dispatcherID string) error {
	g, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}
	g.DispatcherID = dispatcherID
	g.UpdatedAt = time.Now()
	return r.write(ctx, g)
}

func (r *YAMLRepository) UpdateDescription(ctx context.Context, name, description string) error {
	g, err := r.GetByName(ctx, name)
	if err != nil {
		return err
	}
	g.Description = description
	g.UpdatedAt = time.Now()
	return r.write(ctx, g)
}

func (r *YAMLRepository) write(ctx context.Context, g *taskgroup.Group) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task group: %w", err))
	}
	if err := r.storage.Write(ctx, path(g.Name), data); err != nil {
		return cerr.WrapStorageWriteError("task group", err)
	}
	return nil
}
