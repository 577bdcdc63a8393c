// Package dispatch implements the stdio JSON-line tool dispatcher (spec
// §5/§6): one handler per named tool, registered into a Dispatcher and run
// concurrently, one goroutine per request line, against the repositories
// and engine packages built up under internal/.
package dispatch

import (
	"context"
	"fmt"
	"sync"
)

// Args is one request's decoded "arguments" object.
type Args map[string]interface{}

// Handler executes one tool call and returns the value that becomes the
// response envelope's "data" field.
type Handler func(ctx context.Context, args Args) (interface{}, error)

// Dispatcher owns the handler registry. It holds no connection state of
// its own - every handler closes over whatever repositories/engines it
// needs at registration time.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher returns an empty Dispatcher; call Register (or use
// NewEngineDispatcher, which registers every tool) before serving it with
// Server.Run.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register adds a handler under name, overwriting any previous handler
// registered under the same name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Lookup returns the handler registered under name, if any.
func (d *Dispatcher) Lookup(name string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	return h, ok
}

// ToolNames returns every registered tool name, for diagnostics.
func (d *Dispatcher) ToolNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

func (d *Dispatcher) dispatch(ctx context.Context, tool string, args Args) (interface{}, error) {
	h, ok := d.Lookup(tool)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	return h(ctx, preprocess(args))
}
