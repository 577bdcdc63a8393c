package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/test"
)

func newHook(t *testing.T) (*Hook, *repository.FeatureRepository, *repository.TaskRepository, *repository.SectionRepository, *repository.DependencyRepository) {
	t.Helper()
	database := test.NewDB()
	t.Cleanup(func() { database.Close() })
	db := repository.NewDB(database)
	features := repository.NewFeatureRepository(db)
	tasks := repository.NewTaskRepository(db)
	sections := repository.NewSectionRepository(db)
	deps := repository.NewDependencyRepository(db)
	return NewHook(db, tasks, sections, deps), features, tasks, sections, deps
}

func seedFeature(t *testing.T, ctx context.Context, features *repository.FeatureRepository) *models.Feature {
	t.Helper()
	f := &models.Feature{Name: test.UniqueName("feature"), Status: "completed", Tags: models.NewTagSet(nil)}
	require.NoError(t, features.Create(ctx, f))
	return f
}

func seedTask(t *testing.T, ctx context.Context, tasks *repository.TaskRepository, featureID string, tags []string) *models.Task {
	t.Helper()
	task := &models.Task{
		FeatureID: &featureID,
		Title:     test.UniqueName("task"),
		Status:    "completed",
		Tags:      models.NewTagSet(tags),
	}
	require.NoError(t, tasks.Create(ctx, task))
	return task
}

func TestRun_DisabledSkipsEverything(t *testing.T) {
	ctx := context.Background()
	hook, features, tasks, _, _ := newHook(t)
	feature := seedFeature(t, ctx, features)
	seedTask(t, ctx, tasks, feature.ID, nil)

	result, err := hook.Run(ctx, config.CompletionCleanup{Enabled: false}, feature.ID)
	require.NoError(t, err)
	require.False(t, result.Performed)
}

func TestRun_DeletesNonRetainedTasksAndTheirSectionsAndEdges(t *testing.T) {
	ctx := context.Background()
	hook, features, tasks, sections, deps := newHook(t)
	feature := seedFeature(t, ctx, features)

	keeper := seedTask(t, ctx, tasks, feature.ID, []string{"bug"})
	goner := seedTask(t, ctx, tasks, feature.ID, []string{"chore"})
	other := seedTask(t, ctx, tasks, feature.ID, []string{"chore"})

	require.NoError(t, sections.Create(ctx, &models.Section{
		EntityType: models.KindTask, EntityID: goner.ID, Title: "notes", Tags: models.NewTagSet(nil),
		CreatedAt: time.Now(), ModifiedAt: time.Now(),
	}))
	require.NoError(t, deps.Create(ctx, &models.Dependency{
		FromTaskID: goner.ID, ToTaskID: other.ID, Type: models.DepRelatesTo, CreatedAt: time.Now(),
	}))

	cc := config.CompletionCleanup{Enabled: true, RetainTags: []string{"bug", "bugfix", "fix", "hotfix", "critical"}}
	result, err := hook.Run(ctx, cc, feature.ID)
	require.NoError(t, err)
	require.True(t, result.Performed)
	require.Equal(t, 2, result.TasksDeleted)
	require.Equal(t, 1, result.TasksRetained)
	require.Equal(t, []string{keeper.ID}, result.RetainedTaskIDs)
	require.Equal(t, 1, result.SectionsDeleted)
	require.Equal(t, 1, result.DependenciesDeleted)

	_, err = tasks.GetByID(ctx, goner.ID)
	require.Error(t, err)
	_, err = tasks.GetByID(ctx, keeper.ID)
	require.NoError(t, err)
}

func TestRun_StandaloneTasksAreNeverEnumeratedUnderAFeature(t *testing.T) {
	ctx := context.Background()
	hook, features, tasks, _, _ := newHook(t)
	feature := seedFeature(t, ctx, features)
	seedTask(t, ctx, tasks, feature.ID, []string{"chore"})

	standalone := &models.Task{Title: test.UniqueName("standalone"), Status: "completed", Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, standalone))

	cc := config.CompletionCleanup{Enabled: true, RetainTags: nil}
	result, err := hook.Run(ctx, cc, feature.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.TasksDeleted)

	_, err = tasks.GetByID(ctx, standalone.ID)
	require.NoError(t, err, "cleanup must never touch tasks outside the feature it was run for")
}
