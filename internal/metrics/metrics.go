// Package metrics keeps process-wide ingestion counters.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// SlowThreshold is how long an operation may take before TrackOperation warns.
var SlowThreshold = 30 * time.Second

var metrics struct {
	NotificationsReceived atomic.Int64
	DocumentsIngested     atomic.Int64
	DocumentsFailed       atomic.Int64
	PathErrors            atomic.Int64
	ContentErrors         atomic.Int64
	InterpretErrors       atomic.Int64
	ShapeErrors           atomic.Int64
	PersistErrors         atomic.Int64
	PagesRendered         atomic.Int64
	LLMCalls              atomic.Int64
	LLMErrors             atomic.Int64
	RepairFallbacks       atomic.Int64
}

var keys = []string{
	"notifications_received", "documents_ingested", "documents_failed",
	"path_errors", "content_errors", "interpret_errors", "shape_errors", "persist_errors",
	"pages_rendered", "llm_calls", "llm_errors", "repair_fallbacks",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"notifications_received": metrics.NotificationsReceived.Load(),
		"documents_ingested":     metrics.DocumentsIngested.Load(),
		"documents_failed":       metrics.DocumentsFailed.Load(),
		"path_errors":            metrics.PathErrors.Load(),
		"content_errors":         metrics.ContentErrors.Load(),
		"interpret_errors":       metrics.InterpretErrors.Load(),
		"shape_errors":           metrics.ShapeErrors.Load(),
		"persist_errors":         metrics.PersistErrors.Load(),
		"pages_rendered":         metrics.PagesRendered.Load(),
		"llm_calls":              metrics.LLMCalls.Load(),
		"llm_errors":             metrics.LLMErrors.Load(),
		"repair_fallbacks":       metrics.RepairFallbacks.Load(),
	}
}

// FormatMetrics returns the counters as "name value" lines.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrNotifications(n int) { metrics.NotificationsReceived.Add(int64(n)) }
func IncrIngested()           { metrics.DocumentsIngested.Add(1) }
func IncrFailed()             { metrics.DocumentsFailed.Add(1) }
func IncrPathErrors()         { metrics.PathErrors.Add(1) }
func IncrContentErrors()      { metrics.ContentErrors.Add(1) }
func IncrInterpretErrors()    { metrics.InterpretErrors.Add(1) }
func IncrShapeErrors()        { metrics.ShapeErrors.Add(1) }
func IncrPersistErrors()      { metrics.PersistErrors.Add(1) }
func IncrPagesRendered(n int) { metrics.PagesRendered.Add(int64(n)) }
func IncrLLMCalls()           { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()          { metrics.LLMErrors.Add(1) }
func IncrRepairFallbacks()    { metrics.RepairFallbacks.Add(1) }

// TrackOperation logs a warning if an operation takes longer than SlowThreshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > SlowThreshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
