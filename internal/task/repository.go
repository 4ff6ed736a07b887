package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Assignment) error
	Get(ctx context.Context, id string) (*Assignment, error)
	List(ctx context.Context, taskType Type, taskGroupName string, limit, offset int) ([]*Assignment, int, error)
	Update(ctx context.Context, t *Assignment) error
	Delete(ctx context.Context, id string) error
}
