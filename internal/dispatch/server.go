package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/taskorchestrator/engine/internal/apperr"
)

// request is one inbound wire message.
type request struct {
	Tool      string `json:"tool"`
	Arguments Args   `json:"arguments"`
}

// errorPayload is the nested "error" object of a failed response.
type errorPayload struct {
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// response is one outbound wire message.
type response struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    interface{}   `json:"data,omitempty"`
	Error   *errorPayload `json:"error,omitempty"`
}

// Server runs the read-dispatch-write loop over a line-delimited JSON
// stream. Each line spawns its own goroutine; responses are serialized
// onto Out in whatever order their handlers finish, never interleaved
// mid-line.
type Server struct {
	Dispatcher *Dispatcher
	In         io.Reader
	Out        io.Writer
}

// NewServer wires a Dispatcher to a stdio-shaped reader/writer pair.
func NewServer(d *Dispatcher, in io.Reader, out io.Writer) *Server {
	return &Server{Dispatcher: d, In: in, Out: out}
}

// Run blocks until In is exhausted or yields a scan error. Closing In
// (e.g. the client closing stdin) cancels every outstanding handler via
// ctx, and Run waits for all of them to unwind their transactions before
// returning.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	scanner := bufio.NewScanner(s.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var wg sync.WaitGroup
	var writeMu sync.Mutex

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lineCopy := append([]byte(nil), line...)

		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.handleLine(ctx, lineCopy)
			s.write(&writeMu, resp)
		}()
	}
	scanErr := scanner.Err()

	cancel()
	wg.Wait()

	return scanErr
}

func (s *Server) write(writeMu *sync.Mutex, resp response) {
	writeMu.Lock()
	defer writeMu.Unlock()
	enc := json.NewEncoder(s.Out)
	_ = enc.Encode(resp)
}

func (s *Server) handleLine(ctx context.Context, line []byte) response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(apperr.Validation("malformed request: " + err.Error()))
	}
	if req.Tool == "" {
		return errorResponse(apperr.Validation("\"tool\" is required"))
	}

	data, err := s.Dispatcher.dispatch(ctx, req.Tool, req.Arguments)
	if err != nil {
		return errorResponse(err)
	}
	return response{Success: true, Data: data}
}

func errorResponse(err error) response {
	code := apperr.CodeOf(err)
	return response{
		Success: false,
		Message: err.Error(),
		Error:   &errorPayload{Code: string(code)},
	}
}
