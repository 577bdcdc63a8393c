// Package cleanup implements the completion-cleanup hook: when
// a feature reaches a terminal status, its non-retained tasks and their
// sections and dependency edges are deleted, keeping the backlog free of
// tasks nobody will read again while preserving anything tagged for
// retention.
package cleanup

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
)

// Result reports what the hook did, or why it did nothing.
type Result struct {
	Performed           bool
	TasksDeleted        int
	TasksRetained       int
	RetainedTaskIDs     []string
	SectionsDeleted     int
	DependenciesDeleted int
	Reason              string
}

// Hook runs completion cleanup for a feature that just became terminal.
type Hook struct {
	DB           *repository.DB
	Tasks        *repository.TaskRepository
	Sections     *repository.SectionRepository
	Dependencies *repository.DependencyRepository
}

// NewHook wraps the database handle and repositories Run needs.
func NewHook(db *repository.DB, tasks *repository.TaskRepository, sections *repository.SectionRepository, dependencies *repository.DependencyRepository) *Hook {
	return &Hook{DB: db, Tasks: tasks, Sections: sections, Dependencies: dependencies}
}

// Run deletes every non-retained task belonging to featureID, along with
// each deleted task's sections and dependency edges. The feature itself,
// and its own sections, are never touched here.
func (h *Hook) Run(ctx context.Context, cc config.CompletionCleanup, featureID string) (Result, error) {
	if !cc.Enabled {
		return Result{Reason: "completion_cleanup.enabled is false"}, nil
	}

	tasks, err := h.Tasks.FindByParent(ctx, featureID)
	if err != nil {
		return Result{}, err
	}
	if len(tasks) == 0 {
		return Result{Reason: "feature has no tasks"}, nil
	}

	var toDelete []*models.Task
	var retainedIDs []string
	for _, t := range tasks {
		if retain(t, cc.RetainTags) {
			retainedIDs = append(retainedIDs, t.ID)
			continue
		}
		toDelete = append(toDelete, t)
	}

	if len(toDelete) == 0 {
		return Result{
			Performed:       true,
			TasksRetained:   len(retainedIDs),
			RetainedTaskIDs: retainedIDs,
			Reason:          "every task is retained",
		}, nil
	}

	sectionsDeleted, depsDeleted, err := h.deleteTasks(ctx, toDelete)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Performed:           true,
		TasksDeleted:        len(toDelete),
		TasksRetained:       len(retainedIDs),
		RetainedTaskIDs:     retainedIDs,
		SectionsDeleted:     sectionsDeleted,
		DependenciesDeleted: depsDeleted,
	}, nil
}

// retain reports whether t survives cleanup: it carries a retain tag, or
// it is standalone (never owned by the feature being cleaned up).
func retain(t *models.Task, retainTags []string) bool {
	if t.Standalone() {
		return true
	}
	return t.Tags.Intersects(retainTags)
}

// deleteTasks removes every task in tasks, along with their sections and
// dependency edges, in one transaction: a failure partway through rolls
// back the whole batch instead of leaving the feature's task set
// partially deleted.
func (h *Hook) deleteTasks(ctx context.Context, tasks []*models.Task) (sectionsDeleted, depsDeleted int, err error) {
	// Counts are read up front; the counted rows are the ones the
	// transaction below is committed to removing. An edge between two
	// deleted tasks is counted once.
	seenEdges := make(map[int64]bool)
	for _, t := range tasks {
		sections, err := h.Sections.FindByParent(ctx, models.KindTask, t.ID)
		if err != nil {
			return 0, 0, err
		}
		sectionsDeleted += len(sections)

		edges, err := h.Dependencies.FindByTask(ctx, t.ID)
		if err != nil {
			return 0, 0, err
		}
		for _, edge := range edges {
			if !seenEdges[edge.ID] {
				seenEdges[edge.ID] = true
				depsDeleted++
			}
		}
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		return 0, 0, apperr.Database(fmt.Errorf("begin completion cleanup: %w", err))
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if _, err := tx.Exec(ctx, `DELETE FROM sections WHERE entity_type = ? AND entity_id = ?`, models.KindTask, t.ID); err != nil {
			return 0, 0, apperr.Database(fmt.Errorf("delete sections for task %s: %w", t.ID, err))
		}
		if _, err := tx.Exec(ctx, `DELETE FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, t.ID, t.ID); err != nil {
			return 0, 0, apperr.Database(fmt.Errorf("delete dependencies for task %s: %w", t.ID, err))
		}
		result, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, t.ID)
		if err != nil {
			return 0, 0, apperr.Wrap(apperr.CodeOf(err), fmt.Sprintf("delete task %s during completion cleanup", t.ID), err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, 0, apperr.Database(err)
		}
		if rows == 0 {
			return 0, 0, apperr.NotFound("task", t.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, apperr.Database(fmt.Errorf("commit completion cleanup: %w", err))
	}

	return sectionsDeleted, depsDeleted, nil
}
