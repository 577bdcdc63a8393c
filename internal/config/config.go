// Package config loads and validates the task orchestrator's workflow
// configuration: status progressions per entity kind, validation toggles,
// completion-cleanup policy and auto-cascade policy.
package config

import "fmt"

// Role names, fixed identity (mirrors internal/status but config needs them
// standalone for validation before internal/status is constructed).
const (
	RoleQueue    = "queue"
	RoleWork     = "work"
	RoleReview   = "review"
	RoleBlocked  = "blocked"
	RoleTerminal = "terminal"
)

var validRoles = map[string]bool{
	RoleQueue: true, RoleWork: true, RoleReview: true, RoleBlocked: true, RoleTerminal: true,
}

// Kind identifies which entity a StatusProgression section governs.
type Kind string

const (
	KindTask    Kind = "tasks"
	KindFeature Kind = "features"
	KindProject Kind = "projects"
)

// StatusProgression is one of status_progression.{tasks|features|projects}.
type StatusProgression struct {
	AllowedStatuses      []string            `yaml:"allowed_statuses" mapstructure:"allowed_statuses"`
	DefaultFlow          []string            `yaml:"default_flow" mapstructure:"default_flow"`
	TerminalStatuses     []string            `yaml:"terminal_statuses" mapstructure:"terminal_statuses"`
	EmergencyTransitions []string            `yaml:"emergency_transitions" mapstructure:"emergency_transitions"`
	Flows                map[string][]string `yaml:"flows" mapstructure:"flows"`
	TagFlowMapping       []TagFlowEntry      `yaml:"tag_flow_mapping" mapstructure:"tag_flow_mapping"`
	StatusRoles          map[string]string   `yaml:"status_roles" mapstructure:"status_roles"`
}

// TagFlowEntry associates a tag with an alternative flow name. It is a
// slice (not a map) so that insertion order - and therefore first-match
// precedence - is preserved across a YAML round-trip.
type TagFlowEntry struct {
	Tag  string `yaml:"tag" mapstructure:"tag"`
	Flow string `yaml:"flow" mapstructure:"flow"`
}

// StatusValidation holds the boolean toggles read by internal/validation.
type StatusValidation struct {
	EnforceSequential   bool `yaml:"enforce_sequential" mapstructure:"enforce_sequential"`
	AllowBackward       bool `yaml:"allow_backward" mapstructure:"allow_backward"`
	AllowEmergency      bool `yaml:"allow_emergency" mapstructure:"allow_emergency"`
	ValidatePrerequisites bool `yaml:"validate_prerequisites" mapstructure:"validate_prerequisites"`
}

// CompletionCleanup configures internal/cleanup.
type CompletionCleanup struct {
	Enabled    bool     `yaml:"enabled" mapstructure:"enabled"`
	RetainTags []string `yaml:"retain_tags" mapstructure:"retain_tags"`
}

// AutoCascade configures internal/transition's cascade-application step.
// MaxDepth is clamped to HardCascadeDepthCap regardless of what is
// configured.
type AutoCascade struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	MaxDepth int  `yaml:"max_depth" mapstructure:"max_depth"`
}

// HardCascadeDepthCap is the engine-wide recursion limit on cascade
// propagation; no configuration value may exceed it.
const HardCascadeDepthCap = 3

// DatabaseConfig selects and configures the persistence backend: an
// embedded sqlite file or a remote Turso/libsql database.
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "turso"
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LoggingConfig holds the logging section of the config file. No package
// reads it; pterm color and debug output are set by the root command's flags.
type LoggingConfig struct {
	Level    string `yaml:"level" mapstructure:"level"`
	NoColor  bool   `yaml:"no_color" mapstructure:"no_color"`
}

// Config is the complete, immutable configuration value returned by Load.
type Config struct {
	StatusProgression map[Kind]StatusProgression `yaml:"status_progression" mapstructure:"status_progression"`
	StatusValidation  StatusValidation           `yaml:"status_validation" mapstructure:"status_validation"`
	CompletionCleanup CompletionCleanup          `yaml:"completion_cleanup" mapstructure:"completion_cleanup"`
	AutoCascade       AutoCascade                `yaml:"auto_cascade" mapstructure:"auto_cascade"`
	Database          DatabaseConfig             `yaml:"database" mapstructure:"database"`
	Logging           LoggingConfig              `yaml:"logging" mapstructure:"logging"`
}

// EffectiveMaxCascadeDepth returns the configured max depth clamped to the
// hard cap.
func (c *Config) EffectiveMaxCascadeDepth() int {
	if c.AutoCascade.MaxDepth <= 0 || c.AutoCascade.MaxDepth > HardCascadeDepthCap {
		return HardCascadeDepthCap
	}
	return c.AutoCascade.MaxDepth
}

// Progression returns the StatusProgression for kind, or a zero value if
// unconfigured (callers should prefer the result of a successful Load,
// which guarantees all three kinds are populated).
func (c *Config) Progression(kind Kind) StatusProgression {
	return c.StatusProgression[kind]
}

// validate checks the loader contract: every role name referenced in
// status_roles must be one of the five valid roles, and every default-flow
// entry must appear in allowed_statuses.
func (c *Config) validate() error {
	for _, kind := range []Kind{KindTask, KindFeature, KindProject} {
		sp, ok := c.StatusProgression[kind]
		if !ok {
			return fmt.Errorf("status_progression.%s is required", kind)
		}
		allowed := make(map[string]bool, len(sp.AllowedStatuses))
		for _, s := range sp.AllowedStatuses {
			allowed[s] = true
		}
		for status, role := range sp.StatusRoles {
			if !validRoles[role] {
				return fmt.Errorf("status_progression.%s.status_roles[%q]: invalid role %q", kind, status, role)
			}
			if !allowed[status] {
				return fmt.Errorf("status_progression.%s.status_roles[%q]: status not in allowed_statuses", kind, status)
			}
		}
		for _, status := range sp.DefaultFlow {
			if !allowed[status] {
				return fmt.Errorf("status_progression.%s.default_flow: status %q not in allowed_statuses", kind, status)
			}
		}
		for flowName, seq := range sp.Flows {
			for _, status := range seq {
				if !allowed[status] {
					return fmt.Errorf("status_progression.%s.flows[%q]: status %q not in allowed_statuses", kind, flowName, status)
				}
			}
		}
		for _, status := range sp.AllowedStatuses {
			if _, ok := sp.StatusRoles[status]; !ok {
				return fmt.Errorf("status_progression.%s.status_roles: missing entry for status %q", kind, status)
			}
		}
	}
	return nil
}
