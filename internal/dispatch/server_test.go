package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/apperr"
)

func TestServer_RunDispatchesEachLine(t *testing.T) {
	d := NewDispatcher()
	d.Register("echo", func(ctx context.Context, args Args) (interface{}, error) {
		return args["value"], nil
	})
	d.Register("fail", func(ctx context.Context, args Args) (interface{}, error) {
		return nil, apperr.Validation("always fails")
	})

	in := strings.NewReader(
		`{"tool":"echo","arguments":{"value":"hi"}}` + "\n" +
			`{"tool":"fail","arguments":{}}` + "\n" +
			`{"tool":"missing","arguments":{}}` + "\n",
	)
	var out bytes.Buffer

	srv := NewServer(d, in, &out)
	require.NoError(t, srv.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var responses []response
	for _, line := range lines {
		var r response
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		responses = append(responses, r)
	}

	byData := map[bool]int{}
	for _, r := range responses {
		byData[r.Success]++
	}
	require.Equal(t, 1, byData[true])
	require.Equal(t, 2, byData[false])
}

func TestServer_MalformedLineReturnsError(t *testing.T) {
	d := NewDispatcher()
	in := strings.NewReader("not json\n")
	var out bytes.Buffer

	srv := NewServer(d, in, &out)
	require.NoError(t, srv.Run(context.Background()))

	var r response
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	require.False(t, r.Success)
	require.Equal(t, string(apperr.CodeValidation), r.Error.Code)
}
