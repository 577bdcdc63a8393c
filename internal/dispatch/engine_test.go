package dispatch

import (
	"context"
	"testing"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/test"
)

func testTaskSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"backlog", "in-progress", "completed", "cancelled", "blocked"},
		DefaultFlow:      []string{"backlog", "in-progress", "completed"},
		TerminalStatuses: []string{"completed", "cancelled"},
		StatusRoles: map[string]string{
			"backlog":     config.RoleQueue,
			"in-progress": config.RoleWork,
			"completed":   config.RoleTerminal,
			"cancelled":   config.RoleTerminal,
			"blocked":     config.RoleBlocked,
		},
	}
}

func testFeatureSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"in-development", "in-review", "completed"},
		DefaultFlow:      []string{"in-development", "in-review", "completed"},
		TerminalStatuses: []string{"completed"},
		StatusRoles: map[string]string{
			"in-development": config.RoleWork,
			"in-review":      config.RoleReview,
			"completed":      config.RoleTerminal,
		},
	}
}

func testProjectSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"in-development", "completed"},
		DefaultFlow:      []string{"in-development", "completed"},
		TerminalStatuses: []string{"completed"},
		StatusRoles: map[string]string{
			"in-development": config.RoleWork,
			"completed":      config.RoleTerminal,
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		StatusProgression: map[config.Kind]config.StatusProgression{
			config.KindTask:    testTaskSP(),
			config.KindFeature: testFeatureSP(),
			config.KindProject: testProjectSP(),
		},
		StatusValidation: config.StatusValidation{
			EnforceSequential:     true,
			AllowEmergency:        true,
			ValidatePrerequisites: true,
		},
		CompletionCleanup: config.CompletionCleanup{Enabled: true},
		AutoCascade:       config.AutoCascade{Enabled: true, MaxDepth: 3},
	}
}

// newTestDispatcher wires a fresh Dispatcher over a freshly migrated temp
// database, mirroring the rest of the module's per-test-DB pattern. Tests
// call handler methods by name via call() rather than reaching into the
// Engine, since NewEngineDispatcher is the only supported construction
// path and the Dispatcher's registry is what request handling runs
// against.
func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	database := test.NewDB()
	t.Cleanup(func() { database.Close() })
	db := repository.NewDB(database)
	return NewEngineDispatcher(testConfig(), db, t.TempDir())
}

func call(t *testing.T, d *Dispatcher, tool string, args Args) (interface{}, error) {
	t.Helper()
	h, ok := d.Lookup(tool)
	if !ok {
		t.Fatalf("tool %q not registered", tool)
	}
	return h(context.Background(), args)
}
