package observability

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// DefaultTraceRetention bounds how many spans a JSONTraceTracer keeps in memory.
const DefaultTraceRetention = 512

// JSONTraceEntry is one finished span as written to the trace stream.
type JSONTraceEntry struct {
	Operation  string    `json:"op"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// JSONTraceTracer appends each finished span as a JSON line to a writer and
// keeps the most recent ones for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	out     *json.Encoder
	recent  []JSONTraceEntry
	retain  int
	nowFunc func() time.Time
}

// NewJSONTracer returns a tracer writing to w. A nil w only retains spans.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{retain: DefaultTraceRetention, nowFunc: func() time.Time { return time.Now().UTC() }}
	if w != nil {
		t.out = json.NewEncoder(w)
	}
	return t
}

// Entries returns the retained spans, oldest first.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]JSONTraceEntry(nil), t.recent...)
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonSpan{tracer: t, op: operation, start: t.nowFunc()}
}

func (t *JSONTraceTracer) finish(entry JSONTraceEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.recent) == t.retain {
		t.recent = t.recent[1:]
	}
	t.recent = append(t.recent, entry)
	if t.out != nil {
		_ = t.out.Encode(entry)
	}
}

type jsonSpan struct {
	tracer *JSONTraceTracer
	op     string
	start  time.Time
	once   sync.Once
}

func (s *jsonSpan) End(err error) {
	s.once.Do(func() {
		entry := JSONTraceEntry{
			Operation:  s.op,
			Status:     statusLabel(err == nil),
			DurationMS: float64(s.tracer.nowFunc().Sub(s.start)) / float64(time.Millisecond),
			StartedAt:  s.start,
		}
		if err != nil {
			entry.Error = err.Error()
		}
		s.tracer.finish(entry)
	})
}
