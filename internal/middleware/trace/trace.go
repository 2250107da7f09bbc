package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for the trace id of an update
	TraceIDKey ContextKey = "trace_id"
)

// Span describes the update being handled.
type Span struct {
	UpdateID int
	UserID   int64
	ChatID   int64
	// Kind is "message", "command" or "callback".
	Kind string
	// Name is the command or callback data, empty for free text.
	Name string
}

// Tracer wraps update handling with ids, timing and logging.
type Tracer struct {
	logger  *log.Logger
	metrics *Metrics
}

// Metrics tracks update handling metrics
type Metrics struct {
	TotalUpdates        int64
	FailedUpdates       int64
	AverageResponseTime int64 // in microseconds
}

// NewTracer creates a new tracer. A nil logger uses the context logger.
func NewTracer(logger *log.Logger) *Tracer {
	return &Tracer{logger: logger, metrics: &Metrics{}}
}

// Do runs fn with a context carrying a fresh trace id and an update-scoped
// logger, and logs start and completion.
func (t *Tracer) Do(ctx context.Context, span Span, fn func(ctx context.Context) error) error {
	start := time.Now()
	traceID := GenerateTraceID()

	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	if t.logger != nil {
		ctx = log.IntoContext(ctx, t.logger)
	}
	ctx = log.ForUpdate(ctx, span.UpdateID, span.UserID, span.ChatID)
	logger := log.FromContext(ctx).With("trace_id", traceID)
	ctx = log.IntoContext(ctx, logger)

	logger.DebugContext(ctx, "Update started", "kind", span.Kind, "name", span.Name)
	atomic.AddInt64(&t.metrics.TotalUpdates, 1)

	err := fn(ctx)

	duration := time.Since(start)
	durationMs := duration.Milliseconds()
	atomic.StoreInt64(&t.metrics.AverageResponseTime, duration.Microseconds())

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		atomic.AddInt64(&t.metrics.FailedUpdates, 1)
	}
	logger.Log(ctx, level, "Update handled",
		"kind", span.Kind,
		"name", span.Name,
		log.FieldDuration, durationMs,
		"duration_human", duration.String(),
		log.FieldSuccess, err == nil,
		log.FieldError, errString(err))

	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// GenerateTraceID creates a unique id for one update
func GenerateTraceID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("upd_%d", time.Now().UnixNano())
	}
	return "upd_" + hex.EncodeToString(bytes)
}

// GetTraceID extracts the trace id from context
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (t *Tracer) GetMetrics() Metrics {
	return Metrics{
		TotalUpdates:        atomic.LoadInt64(&t.metrics.TotalUpdates),
		FailedUpdates:       atomic.LoadInt64(&t.metrics.FailedUpdates),
		AverageResponseTime: atomic.LoadInt64(&t.metrics.AverageResponseTime),
	}
}
