package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// TraceEntry is one request/response exchange recorded as an NDJSON line.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Model       string          `json:"model,omitempty"`
	PromptSlug  string          `json:"prompt_slug,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Tracer serializes trace entries to w, one JSON object per line.
type Tracer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTracer returns a tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Write records a trace entry. Encoding failures are dropped; tracing never
// interferes with a request.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil || t.w == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.w.Write(data)
}

var active atomic.Pointer[Tracer]

// EnableTracing appends traces to the file at path until the returned
// cleanup function is called.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	t := NewTracer(f)
	active.Store(t)
	return func() {
		active.CompareAndSwap(t, nil)
		t.mu.Lock()
		defer t.mu.Unlock()
		_ = f.Close()
	}, nil
}

// SetTracer installs t as the process tracer; nil disables tracing.
func SetTracer(t *Tracer) {
	active.Store(t)
}

// TracingEnabled reports whether a tracer is installed.
func TracingEnabled() bool {
	return active.Load() != nil
}

// Trace records entry on the process tracer, if any.
func Trace(entry TraceEntry) {
	active.Load().Write(entry)
}
