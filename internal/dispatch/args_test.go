package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreprocess_CoercesStringBooleans(t *testing.T) {
	out := preprocess(Args{"a": "true", "b": "false", "c": "unchanged", "d": 3})
	require.Equal(t, true, out["a"])
	require.Equal(t, false, out["b"])
	require.Equal(t, "unchanged", out["c"])
	require.Equal(t, 3, out["d"])
}

func TestRequireString_RejectsMissingAndBlank(t *testing.T) {
	_, err := requireString(Args{}, "name")
	require.Error(t, err)

	_, err = requireString(Args{"name": ""}, "name")
	require.Error(t, err)

	v, err := requireString(Args{"name": "ok"}, "name")
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}

func TestRequireUUID_RejectsMalformed(t *testing.T) {
	_, err := requireUUID(Args{"id": "not-a-uuid"}, "id")
	require.Error(t, err)
}

func TestRequireKind_OnlyAcceptsKnownKinds(t *testing.T) {
	_, err := requireKind(Args{"kind": "widgets"})
	require.Error(t, err)

	k, err := requireKind(Args{"kind": "tasks"})
	require.NoError(t, err)
	require.Equal(t, "tasks", string(k))
}

func TestRequireEnum_RejectsValueOutsideAllowedSet(t *testing.T) {
	_, err := requireEnum(Args{"operation": "frobnicate"}, "operation", "create", "update")
	require.Error(t, err)

	v, err := requireEnum(Args{"operation": "create"}, "operation", "create", "update")
	require.NoError(t, err)
	require.Equal(t, "create", v)
}

func TestOptStringSlice_IgnoresNonStringEntries(t *testing.T) {
	out := optStringSlice(Args{"tags": []interface{}{"a", 1, "b"}}, "tags")
	require.Equal(t, []string{"a", "b"}, out)
}

func TestRequireInt64_AcceptsFloat64FromJSON(t *testing.T) {
	v, err := requireInt64(Args{"id": float64(42)}, "id")
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	_, err = requireInt64(Args{"id": "nope"}, "id")
	require.Error(t, err)
}
