package db

// statusCheck renders a SQL CHECK constraint enumerating allowedStatuses
// for column. Status columns carry CHECK constraints enumerating
// allowed_statuses at the time the migration was cut - later
// additions to allowed_statuses arrive as new migrations that recreate the
// constraint, never as an edit to a shipped one.
func statusCheck(column string, allowedStatuses []string) string {
	out := column + " IN ("
	for i, s := range allowedStatuses {
		if i > 0 {
			out += ", "
		}
		out += "'" + s + "'"
	}
	return out + ")"
}

// v2TaskStatuses, v2FeatureStatuses and v2ProjectStatuses are the shipped
// "v2" default status sets, frozen into the V1 migration's
// CHECK constraints.
var (
	v2TaskStatuses = []string{
		"backlog", "pending", "in-progress", "in-review", "changes-requested",
		"testing", "ready-for-qa", "investigating", "blocked", "on-hold",
		"deployed", "completed", "cancelled", "deferred",
	}
	v2FeatureStatuses = []string{
		"draft", "planning", "in-development", "testing", "validating",
		"pending-review", "blocked", "on-hold", "completed", "archived", "deployed",
	}
	v2ProjectStatuses = []string{
		"planning", "in-development", "on-hold", "cancelled", "completed", "archived",
	}
)
