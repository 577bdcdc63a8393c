package transition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/cascade"
	"github.com/taskorchestrator/engine/internal/cleanup"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/graph"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/prereq"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
	"github.com/taskorchestrator/engine/internal/test"
)

func taskSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:      []string{"backlog", "in-progress", "completed", "cancelled", "blocked"},
		DefaultFlow:          []string{"backlog", "in-progress", "completed"},
		TerminalStatuses:     []string{"completed", "cancelled"},
		EmergencyTransitions: []string{"cancelled", "blocked"},
	}
}

func featureSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"in-development", "completed"},
		DefaultFlow:      []string{"in-development", "completed"},
		TerminalStatuses: []string{"completed"},
	}
}

func projectSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"in-development", "completed"},
		DefaultFlow:      []string{"in-development", "completed"},
		TerminalStatuses: []string{"completed"},
	}
}

func taskRoles() *status.Resolver {
	return status.NewResolver(map[string]string{
		"backlog":     config.RoleQueue,
		"in-progress": config.RoleWork,
		"completed":   config.RoleTerminal,
		"cancelled":   config.RoleTerminal,
		"blocked":     config.RoleBlocked,
	})
}

func featureRoles() *status.Resolver {
	return status.NewResolver(map[string]string{
		"in-development": config.RoleWork,
		"completed":      config.RoleTerminal,
	})
}

func projectRoles() *status.Resolver {
	return status.NewResolver(map[string]string{
		"in-development": config.RoleWork,
		"completed":      config.RoleTerminal,
	})
}

func testConfig() *config.Config {
	return &config.Config{
		StatusProgression: map[config.Kind]config.StatusProgression{
			config.KindTask:    taskSP(),
			config.KindFeature: featureSP(),
			config.KindProject: projectSP(),
		},
		StatusValidation: config.StatusValidation{
			EnforceSequential:     true,
			AllowEmergency:        true,
			ValidatePrerequisites: false,
		},
		CompletionCleanup: config.CompletionCleanup{Enabled: true, RetainTags: []string{"bug"}},
		AutoCascade:       config.AutoCascade{Enabled: true, MaxDepth: 3},
	}
}

func newExecutor(t *testing.T, cfg *config.Config) (*Executor, *repository.ProjectRepository, *repository.FeatureRepository, *repository.TaskRepository) {
	t.Helper()
	database := test.NewDB()
	t.Cleanup(func() { database.Close() })
	db := repository.NewDB(database)
	projects := repository.NewProjectRepository(db)
	features := repository.NewFeatureRepository(db)
	tasks := repository.NewTaskRepository(db)
	deps := repository.NewDependencyRepository(db)
	sections := repository.NewSectionRepository(db)

	g := graph.NewEngine(deps)
	checker := prereq.NewChecker(tasks, features, g, taskRoles())
	det := cascade.NewDetector(projects, features, tasks, deps, g, featureRoles(), projectRoles(), taskRoles())
	hook := cleanup.NewHook(db, tasks, sections, deps)

	fixedNow := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	exec := &Executor{
		DB: db, Projects: projects, Features: features, Tasks: tasks,
		ProjectRoles: projectRoles(), FeatureRoles: featureRoles(), TaskRoles: taskRoles(),
		Checker: checker, Cascade: det, Cleanup: hook,
		Config: func() *config.Config { return cfg },
		Now:    func() time.Time { return fixedNow },
	}
	return exec, projects, features, tasks
}

func TestExecute_InvalidTransitionMutatesNothing(t *testing.T) {
	ctx := context.Background()
	exec, _, _, tasks := newExecutor(t, testConfig())

	task := &models.Task{Title: "t", Status: "backlog", Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, task))

	resp, err := exec.Execute(ctx, Request{Kind: config.KindTask, EntityID: task.ID, Trigger: TriggerComplete})
	require.NoError(t, err)
	require.False(t, resp.Valid)

	reloaded, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "backlog", reloaded.Status)
}

func TestExecute_StartAdvancesSequentialSuccessor(t *testing.T) {
	ctx := context.Background()
	exec, _, _, tasks := newExecutor(t, testConfig())

	task := &models.Task{Title: "t", Status: "backlog", Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, task))

	resp, err := exec.Execute(ctx, Request{Kind: config.KindTask, EntityID: task.ID, Trigger: TriggerStart})
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Equal(t, "in-progress", resp.NewStatus)
	require.Equal(t, status.RoleWork, resp.NewRole)

	reloaded, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "in-progress", reloaded.Status)
}

func TestExecute_CompletingLastTaskCascadesFeatureAndProject(t *testing.T) {
	ctx := context.Background()
	exec, projects, features, tasks := newExecutor(t, testConfig())

	project := &models.Project{Name: "p", Status: "in-development", Tags: models.NewTagSet(nil)}
	require.NoError(t, projects.Create(ctx, project))
	feature := &models.Feature{Name: "f", Status: "in-development", ProjectID: &project.ID, Tags: models.NewTagSet(nil)}
	require.NoError(t, features.Create(ctx, feature))
	task := &models.Task{Title: "t", Status: "in-progress", FeatureID: &feature.ID, Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, task))

	resp, err := exec.Execute(ctx, Request{Kind: config.KindTask, EntityID: task.ID, Trigger: TriggerComplete})
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Len(t, resp.CascadeEvents, 2)
	require.Equal(t, config.KindFeature, resp.CascadeEvents[0].TargetType)
	require.Len(t, resp.AppliedCascades, 2)
	require.True(t, resp.AppliedCascades[0].Applied)
	require.Len(t, resp.AppliedCascades[0].ChildCascades, 1)
	require.Equal(t, config.KindProject, resp.AppliedCascades[0].ChildCascades[0].TargetType)

	reloadedFeature, err := features.GetByID(ctx, feature.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", reloadedFeature.Status)
	reloadedProject, err := projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", reloadedProject.Status)
}

func TestExecute_FeatureCompletionRunsCleanup(t *testing.T) {
	ctx := context.Background()
	exec, _, features, tasks := newExecutor(t, testConfig())

	feature := &models.Feature{Name: "f", Status: "in-development", Tags: models.NewTagSet(nil)}
	require.NoError(t, features.Create(ctx, feature))
	keep := &models.Task{Title: "keep", Status: "completed", FeatureID: &feature.ID, Tags: models.NewTagSet([]string{"bug"})}
	require.NoError(t, tasks.Create(ctx, keep))
	drop := &models.Task{Title: "drop", Status: "completed", FeatureID: &feature.ID, Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, drop))

	resp, err := exec.Execute(ctx, Request{Kind: config.KindFeature, EntityID: feature.ID, Trigger: TriggerComplete})
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.NotNil(t, resp.Cleanup)
	require.True(t, resp.Cleanup.Performed)
	require.Equal(t, 1, resp.Cleanup.TasksDeleted)

	_, err = tasks.GetByID(ctx, drop.ID)
	require.Error(t, err)
	_, err = tasks.GetByID(ctx, keep.ID)
	require.NoError(t, err)
}

func TestExecute_EmergencyTransitionFromNonTerminal(t *testing.T) {
	ctx := context.Background()
	exec, _, _, tasks := newExecutor(t, testConfig())

	task := &models.Task{Title: "t", Status: "backlog", Tags: models.NewTagSet(nil)}
	require.NoError(t, tasks.Create(ctx, task))

	resp, err := exec.Execute(ctx, Request{Kind: config.KindTask, EntityID: task.ID, Trigger: TriggerBlock})
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Equal(t, "blocked", resp.NewStatus)
	require.Equal(t, status.RoleBlocked, resp.NewRole)
}
