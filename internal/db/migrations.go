package db

import "fmt"

// Migration is one versioned, append-only DDL step. Migrations
// are never edited once shipped; a change to the schema always arrives as
// a new, higher-numbered entry in the migrations slice below.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of DDL steps applied, in order, against a
// fresh or existing database. Version numbers are contiguous and 1-based.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: fmt.Sprintf(`
CREATE TABLE projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    summary     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL CHECK (%s),
    priority    TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    tags        TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE features (
    id                     TEXT PRIMARY KEY,
    project_id             TEXT NULL REFERENCES projects(id),
    name                   TEXT NOT NULL,
    summary                TEXT NOT NULL DEFAULT '',
    status                 TEXT NOT NULL CHECK (%s),
    priority               TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    requires_verification  INTEGER NOT NULL DEFAULT 0,
    tags                   TEXT NOT NULL DEFAULT '',
    created_at             TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_features_project_id ON features(project_id);
CREATE INDEX idx_features_status ON features(status);

CREATE TABLE tasks (
    id          TEXT PRIMARY KEY,
    feature_id  TEXT NULL REFERENCES features(id),
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    summary     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL CHECK (%s),
    priority    TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
    complexity  INTEGER NOT NULL DEFAULT 1 CHECK (complexity BETWEEN 1 AND 10),
    tags        TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_tasks_feature_id ON tasks(feature_id);
CREATE INDEX idx_tasks_status ON tasks(status);

CREATE TABLE sections (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type        TEXT NOT NULL CHECK (entity_type IN ('PROJECT', 'FEATURE', 'TASK', 'TEMPLATE')),
    entity_id          TEXT NOT NULL,
    title              TEXT NOT NULL,
    usage_description  TEXT NOT NULL DEFAULT '',
    content            TEXT NOT NULL DEFAULT '',
    ordinal            INTEGER NOT NULL DEFAULT 0,
    tags               TEXT NOT NULL DEFAULT '',
    version             INTEGER NOT NULL DEFAULT 1,
    created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (entity_type, entity_id, ordinal)
);
CREATE INDEX idx_sections_entity ON sections(entity_type, entity_id);

CREATE TABLE dependencies (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    from_task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    to_task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    type          TEXT NOT NULL CHECK (type IN ('BLOCKS', 'IS_BLOCKED_BY', 'RELATES_TO')),
    unblock_at    TEXT NULL,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (from_task_id != to_task_id)
);
CREATE INDEX idx_dependencies_from ON dependencies(from_task_id);

CREATE TABLE role_transitions (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id        TEXT NOT NULL,
    entity_type      TEXT NOT NULL CHECK (entity_type IN ('PROJECT', 'FEATURE', 'TASK')),
    from_role        TEXT NOT NULL,
    to_role          TEXT NOT NULL,
    from_status      TEXT NOT NULL,
    to_status        TEXT NOT NULL,
    transitioned_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    trigger          TEXT NULL,
    summary          TEXT NULL
);
CREATE INDEX idx_role_transitions_entity ON role_transitions(entity_id, transitioned_at DESC);
`,
			statusCheck("status", v2ProjectStatuses),
			statusCheck("status", v2FeatureStatuses),
			statusCheck("status", v2TaskStatuses),
		),
	},
	{
		Version: 2,
		Name:    "dependency_to_task_index",
		// Blocker resolution queries incoming edges
		// by to_task_id; the V1 schema only indexed the outgoing side.
		SQL: `CREATE INDEX idx_dependencies_to ON dependencies(to_task_id);`,
	},
}
