// Package monitoring records timing and row counts for tabula operations.
package monitoring

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
)

// OperationMetrics is one recorded operation.
type OperationMetrics struct {
	Operation  string        `json:"operation"`
	Duration   time.Duration `json:"duration"`
	RowsIn     int           `json:"rows_in"`
	RowsOut    int           `json:"rows_out"`
	MemoryUsed int64         `json:"memory_used"`
	Failed     bool          `json:"failed"`
}

// MetricsCollector accumulates OperationMetrics. A disabled collector runs
// operations without recording them.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetrics
	enabled bool
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]OperationMetrics, 0),
		enabled: enabled,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// RecordOperation runs fn, which reports how many rows it produced, and
// records its duration and approximate heap growth.
func (mc *MetricsCollector) RecordOperation(operation string, rowsIn int, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	rowsOut, err := fn()

	duration := time.Since(start)
	runtime.ReadMemStats(&after)

	mc.mu.Lock()
	mc.metrics = append(mc.metrics, OperationMetrics{
		Operation:  operation,
		Duration:   duration,
		RowsIn:     rowsIn,
		RowsOut:    rowsOut,
		MemoryUsed: int64(after.TotalAlloc - before.TotalAlloc), //nolint:gosec // TotalAlloc is monotonic
		Failed:     err != nil,
	})
	mc.mu.Unlock()

	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]OperationMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics = mc.metrics[:0]
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	FailedOps       int            `json:"failed_operations"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalMemory     int64          `json:"total_memory"`
	TotalRowsOut    int64          `json:"total_rows_out"`
	OperationCounts map[string]int `json:"operation_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	summary := MetricsSummary{
		TotalOperations: len(mc.metrics),
		OperationCounts: make(map[string]int),
	}
	for _, m := range mc.metrics {
		summary.TotalDuration += m.Duration
		summary.TotalMemory += m.MemoryUsed
		summary.TotalRowsOut += int64(m.RowsOut)
		summary.OperationCounts[m.Operation]++
		if m.Failed {
			summary.FailedOps++
		}
	}
	summary.AverageDuration = summary.TotalDuration / time.Duration(len(mc.metrics))

	return summary
}

// Render writes one row per recorded operation, in recording order, followed
// by per-operation counts.
func (mc *MetricsCollector) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"operation", "rows in", "rows out", "duration", "alloc", "status"})

	for _, m := range mc.GetMetrics() {
		status := "ok"
		if m.Failed {
			status = "failed"
		}
		table.Append([]string{
			m.Operation,
			strconv.Itoa(m.RowsIn),
			strconv.Itoa(m.RowsOut),
			m.Duration.String(),
			formatBytes(m.MemoryUsed),
			status,
		})
	}
	table.Render()

	summary := mc.GetSummary()
	ops := make([]string, 0, len(summary.OperationCounts))
	for op := range summary.OperationCounts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "%s: %d\n", op, summary.OperationCounts[op])
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
