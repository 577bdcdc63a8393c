package dispatch

import (
	"github.com/taskorchestrator/engine/internal/cascade"
	"github.com/taskorchestrator/engine/internal/cleanup"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/graph"
	"github.com/taskorchestrator/engine/internal/prereq"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
	"github.com/taskorchestrator/engine/internal/template"
	"github.com/taskorchestrator/engine/internal/transition"
)

// Engine wires every repository and supporting package the tool surface
// needs, and is the receiver for every handler method registered by
// NewEngineDispatcher.
type Engine struct {
	cfg *config.Config

	Projects     *repository.ProjectRepository
	Features     *repository.FeatureRepository
	Tasks        *repository.TaskRepository
	Sections     *repository.SectionRepository
	Dependencies *repository.DependencyRepository
	RoleLog      *repository.RoleTransitionRepository

	ProjectRoles *status.Resolver
	FeatureRoles *status.Resolver
	TaskRoles    *status.Resolver

	Graph       *graph.Engine
	Checker     *prereq.Checker
	Cascade     *cascade.Detector
	Cleanup     *cleanup.Hook
	Transitions *transition.Executor
	Templates   *template.Loader
}

// NewEngineDispatcher builds an Engine over db and registers every
// tool handler on a fresh Dispatcher.
func NewEngineDispatcher(cfg *config.Config, db *repository.DB, templatesDir string) *Dispatcher {
	e := &Engine{
		cfg:          cfg,
		Projects:     repository.NewProjectRepository(db),
		Features:     repository.NewFeatureRepository(db),
		Tasks:        repository.NewTaskRepository(db),
		Sections:     repository.NewSectionRepository(db),
		Dependencies: repository.NewDependencyRepository(db),
		RoleLog:      repository.NewRoleTransitionRepository(db),

		ProjectRoles: status.NewResolver(cfg.StatusProgression[config.KindProject].StatusRoles),
		FeatureRoles: status.NewResolver(cfg.StatusProgression[config.KindFeature].StatusRoles),
		TaskRoles:    status.NewResolver(cfg.StatusProgression[config.KindTask].StatusRoles),

		Templates: template.NewLoader(templatesDir),
	}

	e.Graph = graph.NewEngine(e.Dependencies)
	e.Checker = prereq.NewChecker(e.Tasks, e.Features, e.Graph, e.TaskRoles)
	e.Cascade = cascade.NewDetector(e.Projects, e.Features, e.Tasks, e.Dependencies, e.Graph, e.FeatureRoles, e.ProjectRoles, e.TaskRoles)
	e.Cleanup = cleanup.NewHook(db, e.Tasks, e.Sections, e.Dependencies)
	e.Transitions = &transition.Executor{
		DB:           db,
		Projects:     e.Projects,
		Features:     e.Features,
		Tasks:        e.Tasks,
		ProjectRoles: e.ProjectRoles,
		FeatureRoles: e.FeatureRoles,
		TaskRoles:    e.TaskRoles,
		Checker:      e.Checker,
		Cascade:      e.Cascade,
		Cleanup:      e.Cleanup,
		Config:       func() *config.Config { return cfg },
	}

	d := NewDispatcher()
	d.Register("manage_container", e.ManageContainer)
	d.Register("query_container", e.QueryContainer)
	d.Register("manage_sections", e.ManageSections)
	d.Register("manage_dependencies", e.ManageDependencies)
	d.Register("query_dependencies", e.QueryDependencies)
	d.Register("get_blocked_tasks", e.GetBlockedTasks)
	d.Register("get_next_task", e.GetNextTask)
	d.Register("get_next_status", e.GetNextStatus)
	d.Register("request_transition", e.RequestTransition)
	d.Register("query_role_transitions", e.QueryRoleTransitions)
	d.Register("query_templates", e.QueryTemplates)
	d.Register("apply_template", e.ApplyTemplate)
	d.Register("list_tags", e.ListTags)
	return d
}

// rolesFor returns the Resolver governing kind.
func (e *Engine) rolesFor(kind config.Kind) *status.Resolver {
	switch kind {
	case config.KindTask:
		return e.TaskRoles
	case config.KindFeature:
		return e.FeatureRoles
	case config.KindProject:
		return e.ProjectRoles
	}
	return nil
}

func (e *Engine) progressionFor(kind config.Kind) config.StatusProgression {
	return e.cfg.Progression(kind)
}
