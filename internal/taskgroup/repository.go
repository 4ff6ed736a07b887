package taskgroup

import "context"

// Repository is the metadata store's view of task groups. Besides plain CRUD
// it exposes the reconciliation operations the task-type services use to
// bring the dispatcher-assigned state back into the metadata store.
type Repository interface {
	Create(ctx context.Context, g *Group) error
	GetByName(ctx context.Context, name string) (*Group, error)
	List(ctx context.Context, groupType Type, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, name string) error

	// GetDispatcherID returns the stored dispatcher id, or "" when the
	// dispatcher-side resource does not exist yet.
	GetDispatcherID(ctx context.Context, name string) (string, error)
	SetDispatcherID(ctx context.Context, name, dispatcherID string) error
	UpdateDescription(ctx context.Context, name, description string) error
}
