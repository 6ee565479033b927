package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	NoopLogger().Debug("d", "k", "v")
	NoopLogger().Info("i")
	NoopLogger().Warn("w")
	NoopLogger().Error("e")
	NoopMetrics().Observe(context.Background(), "op", true, time.Millisecond)
	_, span := NoopTracer().Start(context.Background(), "op")
	span.End(nil)
	NoopAudit().Record(context.Background(), AuditEntry{})
}

func TestSlogLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewSlogLogger(&buf, LogOptions{Format: "json", Level: "warn"}).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	NewSlogLogger(&buf, LogOptions{Format: "json", Level: "debug"}).Debug("shown", "count", 2)
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json line: %v (%s)", err, buf.String())
	}
	if line["msg"] != "shown" || line["count"] != float64(2) {
		t.Fatalf("unexpected line %v", line)
	}

	buf.Reset()
	NewSlogLogger(&buf, LogOptions{}).Error("boom", "err", "x")
	if !strings.Contains(buf.String(), "msg=boom") {
		t.Fatalf("expected text handler output, got %q", buf.String())
	}
}

func TestLoggingAudit(t *testing.T) {
	var buf bytes.Buffer
	audit := LoggingAudit{Logger: NewSlogLogger(&buf, LogOptions{})}
	audit.Record(context.Background(), AuditEntry{Operation: "add_employee", Status: AuditStatusSuccess})
	audit.Record(context.Background(), AuditEntry{Operation: "delete_employee", Status: AuditStatusError, Error: "missing"})
	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=missing") {
		t.Fatalf("unexpected audit output %q", out)
	}
	LoggingAudit{}.Record(context.Background(), AuditEntry{})
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "save", true, 2*time.Millisecond)
	rec.Observe(context.Background(), "save", false, 3*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second)
	save := rec.Snapshot().Operations["save"]
	if save.TotalMS != 5 || save.MaxMS != 3 {
		t.Fatalf("expected 5ms total and 3ms max, got %+v", save)
	}
	if save.Success != 1 || save.Error != 1 || save.Calls() != 2 {
		t.Fatalf("unexpected counters %+v", save)
	}
	if _, ok := rec.Snapshot().Operations[""]; ok {
		t.Fatalf("empty operation must be ignored")
	}
	if v := expvar.Get(rec.Name()); v == nil || !strings.Contains(v.String(), `"total_ms"`) {
		t.Fatalf("expected published expvar")
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusRecorder: %v", err)
	}
	rec.Observe(context.Background(), "add_employee", true, time.Millisecond)
	rec.Observe(context.Background(), "add_employee", true, time.Millisecond)
	rec.Observe(context.Background(), "add_employee", false, time.Millisecond)
	if got := testutil.ToFloat64(rec.ops.WithLabelValues("add_employee", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.duration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

type countingRecorder struct{ n int }

func (c *countingRecorder) Observe(context.Context, string, bool, time.Duration) { c.n++ }

func TestMultiRecorder(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	MultiRecorder{a, nil, b}.Observe(context.Background(), "op", true, 0)
	if a.n != 1 || b.n != 1 {
		t.Fatalf("expected fan-out, got %d %d", a.n, b.n)
	}
}

func TestJSONTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), "save")
	span.End(errors.New("quota"))
	_, ok := tracer.Start(context.Background(), "load")
	ok.End(nil)
	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Status != "error" || entries[0].Error != "quota" || entries[1].Status != "success" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("expected two json lines, got %q", buf.String())
	}
	NewJSONTracer(nil).Start(context.Background(), "x")
}

func TestExpvarMetricsRecorderDuplicateName(t *testing.T) {
	a := NewExpvarMetricsRecorder("hrdesk_dup")
	b := NewExpvarMetricsRecorder("hrdesk_dup")
	if a.Name() == b.Name() {
		t.Fatalf("expected distinct export names, got %s twice", a.Name())
	}
}
