// Package graph implements the dependency graph engine: typed edges
// between tasks, DFS-based cycle detection, and blocker resolution
// against role-based unblock thresholds.
package graph

import "fmt"

// detector performs DFS-based cycle detection over an in-memory adjacency
// list built from the blocking edges currently in the database. task ->
// dependency means task depends on (is blocked by) dependency.
type detector struct {
	graph map[string][]string
}

func newDetector() *detector {
	return &detector{graph: make(map[string][]string)}
}

func (d *detector) addEdge(task, dependency string) {
	d.graph[task] = append(d.graph[task], dependency)
}

// detectCycle runs DFS from startTask and reports the first cycle found,
// as the ordered slice of task ids that closes back on itself.
func (d *detector) detectCycle(startTask string) (bool, []string) {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var path []string
	return d.dfs(startTask, visiting, visited, &path)
}

func (d *detector) dfs(task string, visiting, visited map[string]bool, path *[]string) (bool, []string) {
	if visited[task] {
		return false, nil
	}
	if visiting[task] {
		cycleStart := -1
		for i, t := range *path {
			if t == task {
				cycleStart = i
				break
			}
		}
		cyclePath := append(append([]string{}, (*path)[cycleStart:]...), task)
		return true, cyclePath
	}

	visiting[task] = true
	*path = append(*path, task)

	for _, dep := range d.graph[task] {
		if hasCycle, cyclePath := d.dfs(dep, visiting, visited, path); hasCycle {
			return true, cyclePath
		}
	}

	*path = (*path)[:len(*path)-1]
	visiting[task] = false
	visited[task] = true
	return false, nil
}

// wouldCycle reports whether adding task -> dependency to the graph closes
// a cycle, without mutating the receiver's graph.
func (d *detector) wouldCycle(task, dependency string) (bool, []string) {
	if task == dependency {
		return true, []string{task, dependency}
	}
	clone := &detector{graph: make(map[string][]string, len(d.graph)+1)}
	for k, v := range d.graph {
		clone.graph[k] = append([]string{}, v...)
	}
	clone.addEdge(task, dependency)
	return clone.detectCycle(task)
}

func cycleError(path []string) error {
	return fmt.Errorf("would create circular dependency: %v", path)
}
