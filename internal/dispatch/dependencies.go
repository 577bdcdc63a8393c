package dispatch

import (
	"context"
	"time"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// ManageDependencies implements manage_dependencies: create (single edge or
// one of the linear/fan-out/fan-in patterns), delete, list.
// Every created edge is routed through the graph engine so a blocking edge
// that would close a cycle is rejected before it reaches storage.
func (e *Engine) ManageDependencies(ctx context.Context, args Args) (interface{}, error) {
	operation, err := requireEnum(args, "operation", "create", "delete", "list")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "create":
		if pattern := optString(args, "pattern"); pattern != "" {
			return e.createDependencyPattern(ctx, pattern, args)
		}
		return e.createDependency(ctx, args)
	case "delete":
		return e.deleteDependency(ctx, args)
	case "list":
		return e.listDependencies(ctx, args)
	}
	return nil, apperr.Validation("unreachable operation")
}

func parseDependencyType(args Args) (models.DependencyType, error) {
	t, err := requireEnum(args, "type", string(models.DepBlocks), string(models.DepIsBlockedBy), string(models.DepRelatesTo))
	if err != nil {
		return "", err
	}
	return models.DependencyType(t), nil
}

func (e *Engine) createDependency(ctx context.Context, args Args) (interface{}, error) {
	from, err := requireUUID(args, "from_task_id")
	if err != nil {
		return nil, err
	}
	to, err := requireUUID(args, "to_task_id")
	if err != nil {
		return nil, err
	}
	depType, err := parseDependencyType(args)
	if err != nil {
		return nil, err
	}
	d := &models.Dependency{FromTaskID: from, ToTaskID: to, Type: depType, CreatedAt: time.Now()}
	if v, ok := args["unblock_at"].(string); ok && v != "" {
		d.UnblockAt = &v
	}
	if err := e.Graph.CreateEdge(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// createDependencyPattern expands a named topology over an ordered list of
// task ids into the single-edge BLOCKS relationships it implies:
//   - linear:   each task blocks the next (a -> b -> c: a blocks b, b blocks c)
//   - fan-out:  the first task blocks every other task
//   - fan-in:   every other task blocks the first task
func (e *Engine) createDependencyPattern(ctx context.Context, pattern string, args Args) (interface{}, error) {
	taskIDs := optStringSlice(args, "task_ids")
	if len(taskIDs) < 2 {
		return nil, apperr.Validation("\"task_ids\" must name at least two tasks for a dependency pattern")
	}

	var pairs [][2]string
	switch pattern {
	case "linear":
		for i := 0; i+1 < len(taskIDs); i++ {
			pairs = append(pairs, [2]string{taskIDs[i], taskIDs[i+1]})
		}
	case "fan-out":
		for _, to := range taskIDs[1:] {
			pairs = append(pairs, [2]string{taskIDs[0], to})
		}
	case "fan-in":
		for _, from := range taskIDs[1:] {
			pairs = append(pairs, [2]string{from, taskIDs[0]})
		}
	default:
		return nil, apperr.Validation("pattern must be one of linear, fan-out, fan-in")
	}

	created := make([]*models.Dependency, 0, len(pairs))
	for _, p := range pairs {
		d := &models.Dependency{FromTaskID: p[0], ToTaskID: p[1], Type: models.DepBlocks, CreatedAt: time.Now()}
		if err := e.Graph.CreateEdge(ctx, d); err != nil {
			return nil, err
		}
		created = append(created, d)
	}
	return map[string]interface{}{"dependencies": created}, nil
}

func (e *Engine) deleteDependency(ctx context.Context, args Args) (interface{}, error) {
	id, err := requireInt64(args, "id")
	if err != nil {
		return nil, err
	}
	if err := e.Dependencies.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": id, "deleted": true}, nil
}

func (e *Engine) listDependencies(ctx context.Context, args Args) (interface{}, error) {
	taskID, err := requireUUID(args, "task_id")
	if err != nil {
		return nil, err
	}
	edges, err := e.Dependencies.FindByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"dependencies": filterByType(edges, optString(args, "type"))}, nil
}

func filterByType(edges []*models.Dependency, typeFilter string) []*models.Dependency {
	if typeFilter == "" {
		return edges
	}
	out := make([]*models.Dependency, 0, len(edges))
	for _, e := range edges {
		if string(e.Type) == typeFilter {
			out = append(out, e)
		}
	}
	return out
}

// relatedEdge pairs a dependency edge with whether it is incoming (the
// queried task is its to_task_id) or outgoing (the queried task is its
// from_task_id), whatever the edge type.
type relatedEdge struct {
	*models.Dependency
	Direction string `json:"direction"`
}

// QueryDependencies implements query_dependencies: a task's incoming and
// outgoing edges, optionally filtered by type.
func (e *Engine) QueryDependencies(ctx context.Context, args Args) (interface{}, error) {
	taskID, err := requireUUID(args, "task_id")
	if err != nil {
		return nil, err
	}
	typeFilter := optString(args, "type")

	all, err := e.Dependencies.FindByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	out := make([]relatedEdge, 0, len(all))
	for _, edge := range all {
		if typeFilter != "" && string(edge.Type) != typeFilter {
			continue
		}
		direction := "outgoing"
		if edge.ToTaskID == taskID {
			direction = "incoming"
		}
		out = append(out, relatedEdge{Dependency: edge, Direction: direction})
	}

	result := map[string]interface{}{"task_id": taskID, "dependencies": out}
	if optBool(args, "include_related_task_info") {
		result["related_tasks"] = e.relatedTaskInfo(ctx, out)
	}
	return result, nil
}

func (e *Engine) relatedTaskInfo(ctx context.Context, edges []relatedEdge) map[string]*models.Task {
	ids := make(map[string]bool)
	for _, edge := range edges {
		ids[edge.FromTaskID] = true
		ids[edge.ToTaskID] = true
	}
	out := make(map[string]*models.Task, len(ids))
	for id := range ids {
		if t, err := e.Tasks.GetByID(ctx, id); err == nil {
			out[id] = t
		}
	}
	return out
}

// blockedTask pairs a task with the outstanding blockers keeping it out of
// role work, returned by get_blocked_tasks.
type blockedTask struct {
	Task     *models.Task    `json:"task"`
	Blockers []graphBlockers `json:"blockers"`
}

// GetBlockedTasks implements get_blocked_tasks: every task whose incoming
// blocking edges are not all satisfied.
func (e *Engine) GetBlockedTasks(ctx context.Context, args Args) (interface{}, error) {
	tasks, err := e.Tasks.List(ctx, taskFilterFromArgs(args))
	if err != nil {
		return nil, err
	}

	var out []blockedTask
	for _, t := range tasks {
		eligible, outstanding, err := e.Graph.IsEligible(ctx, t.ID, e.blockerRole)
		if err != nil {
			return nil, err
		}
		if eligible {
			continue
		}
		blockers := make([]graphBlockers, 0, len(outstanding))
		for _, b := range outstanding {
			blockers = append(blockers, graphBlockers{BlockerTaskID: b.BlockerID, Edge: b.Edge})
		}
		out = append(out, blockedTask{Task: t, Blockers: blockers})
	}
	return map[string]interface{}{"blocked_tasks": out}, nil
}

type graphBlockers struct {
	BlockerTaskID string             `json:"blocker_task_id"`
	Edge          *models.Dependency `json:"edge"`
}
