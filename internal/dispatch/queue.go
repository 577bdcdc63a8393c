package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
)

// blockerRole resolves a task's current status to its role, mirroring
// prereq.Checker's own blockerRole so the dispatch layer's graph queries
// answer the same "satisfied" question the transition validator does.
func (e *Engine) blockerRole(ctx context.Context, taskID string) (status.Role, error) {
	t, err := e.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	role, ok := e.TaskRoles.RoleOf(t.Status)
	if !ok {
		return "", fmt.Errorf("no role configured for task status %q", t.Status)
	}
	return role, nil
}

func taskFilterFromArgs(args Args) repository.TaskFilter {
	filter := repository.TaskFilter{
		Status:   optString(args, "status"),
		Priority: optString(args, "priority"),
		Tags:     optStringSlice(args, "tags"),
	}
	if id, ok := args["feature_id"].(string); ok && id != "" {
		filter.FeatureID = &id
	}
	return filter
}

var priorityRank = map[models.Priority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// GetNextTask implements get_next_task: the single best task to pick up
// next, scoped by feature (optional) and restricted to tasks whose status
// is not in the terminal role, ranked by priority then lower complexity
// then age. Blocked tasks (unsatisfied incoming blocking edges) are never
// recommended.
func (e *Engine) GetNextTask(ctx context.Context, args Args) (interface{}, error) {
	tasks, err := e.Tasks.List(ctx, taskFilterFromArgs(args))
	if err != nil {
		return nil, err
	}

	var candidates []*models.Task
	for _, t := range tasks {
		role, ok := e.TaskRoles.RoleOf(t.Status)
		if !ok || role == status.RoleTerminal {
			continue
		}
		eligible, _, err := e.Graph.IsEligible(ctx, t.ID, e.blockerRole)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		candidates = append(candidates, t)
	}

	if len(candidates) == 0 {
		return map[string]interface{}{"task": nil, "reason": "no unblocked, non-terminal task matches the given scope"}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if priorityRank[a.Priority] != priorityRank[b.Priority] {
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		}
		if a.Complexity != b.Complexity {
			return a.Complexity < b.Complexity
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return map[string]interface{}{"task": candidates[0]}, nil
}

// ListTags implements list_tags: tag occurrence counts aggregated across
// every project, feature and task.
func (e *Engine) ListTags(ctx context.Context, args Args) (interface{}, error) {
	tags, err := e.Tasks.ListAllTags(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"tags": tags.Counts()}, nil
}
