package dispatch

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
)

// preprocess coerces the string literals "true"/"false" to bool, so
// clients that can only emit string-typed JSON (a common MCP client
// limitation) still satisfy handlers that expect a real boolean. Every
// other value passes through unchanged.
func preprocess(args Args) Args {
	out := make(Args, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok {
			switch s {
			case "true":
				out[k] = true
				continue
			case "false":
				out[k] = false
				continue
			}
		}
		out[k] = v
	}
	return out
}

func requireString(args Args, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("%q is required", key))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", apperr.Validation(fmt.Sprintf("%q must be a non-empty string", key))
	}
	return s, nil
}

func optString(args Args, key string) string {
	s, _ := args[key].(string)
	return s
}

func optBool(args Args, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func optStringSlice(args Args, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func optInt(args Args, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// requireUUID validates that args[key] is a well-formed UUID, returning it
// unparsed (repositories store ids as their string form).
func requireUUID(args Args, key string) (string, error) {
	s, err := requireString(args, key)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", apperr.Validation(fmt.Sprintf("%q must be a valid UUID: %v", key, err))
	}
	return s, nil
}

// requireKind validates a "kind" argument against the three entity kinds
// request_transition and manage_container operate over.
func requireKind(args Args) (config.Kind, error) {
	s, err := requireString(args, "kind")
	if err != nil {
		return "", err
	}
	switch config.Kind(s) {
	case config.KindProject, config.KindFeature, config.KindTask:
		return config.Kind(s), nil
	default:
		return "", apperr.Validation(fmt.Sprintf("kind must be one of projects, features, tasks: got %q", s))
	}
}

func requireEnum(args Args, key string, allowed ...string) (string, error) {
	s, err := requireString(args, key)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("%q must be one of %v: got %q", key, allowed, s))
}
