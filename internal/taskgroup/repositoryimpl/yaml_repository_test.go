package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eTutor-plus-plus/taskdispatch/internal/taskgroup"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/cerr"
	"github.com/eTutor-plus-plus/taskdispatch/pkg/storage"
)

func newRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func TestYAMLRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	g := &taskgroup.Group{
		Name:             "Shop_DB",
		Type:             taskgroup.TypeSQL,
		CreateStatements: "CREATE TABLE customer (id INT)",
	}
	require.NoError(t, repo.Create(ctx, g))

	err := repo.Create(ctx, g)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	got, err := repo.GetByName(ctx, "Shop_DB")
	require.NoError(t, err)
	assert.Equal(t, taskgroup.TypeSQL, got.Type)
	assert.Equal(t, g.CreateStatements, got.CreateStatements)

	got.Facts = "unused"
	require.NoError(t, repo.Update(ctx, got))

	require.NoError(t, repo.Delete(ctx, "Shop_DB"))
	_, err = repo.GetByName(ctx, "Shop_DB")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestYAMLRepositoryNormalizesNames(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Create(ctx, &taskgroup.Group{Name: "Shop DB", Type: taskgroup.TypeSQL}))

	// Raw and normalized names address the same record.
	got, err := repo.GetByName(ctx, "Shop_DB")
	require.NoError(t, err)
	assert.Equal(t, "Shop DB", got.Name)

	got, err = repo.GetByName(ctx, " Shop DB ")
	require.NoError(t, err)
	assert.Equal(t, "Shop DB", got.Name)
}

func TestYAMLRepositoryDispatcherIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Create(ctx, &taskgroup.Group{Name: "Facts", Type: taskgroup.TypeDatalog}))

	id, err := repo.GetDispatcherID(ctx, "Facts")
	require.NoError(t, err)
	assert.Empty(t, id, "a fresh group has no dispatcher id")

	require.NoError(t, repo.SetDispatcherID(ctx, "Facts", "5"))
	require.NoError(t, repo.UpdateDescription(ctx, "Facts", "updated"))

	got, err := repo.GetByName(ctx, "Facts")
	require.NoError(t, err)
	assert.Equal(t, "5", got.DispatcherID)
	assert.Equal(t, "updated", got.Description)
}

func TestYAMLRepositoryListFiltersByType(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Create(ctx, &taskgroup.Group{Name: "a", Type: taskgroup.TypeSQL}))
	require.NoError(t, repo.Create(ctx, &taskgroup.Group{Name: "b", Type: taskgroup.TypeDatalog}))
	require.NoError(t, repo.Create(ctx, &taskgroup.Group{Name: "c", Type: taskgroup.TypeSQL}))

	all, total, err := repo.List(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	sqlOnly, total, err := repo.List(ctx, taskgroup.TypeSQL, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, g := range sqlOnly {
		assert.Equal(t, taskgroup.TypeSQL, g.Type)
	}

	page, total, err := repo.List(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}
