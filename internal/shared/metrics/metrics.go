package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	batchesSubmittedTotal atomic.Uint64
	batchesCompletedTotal atomic.Uint64
	batchesActive         atomic.Int64
	itemsSucceededTotal   atomic.Uint64
	itemsFailedTotal      atomic.Uint64
	extractionsTotal      atomic.Uint64

	oracleDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncBatchSubmitted records a new batch and marks it active.
func IncBatchSubmitted() {
	batchesSubmittedTotal.Add(1)
	batchesActive.Add(1)
}

// IncBatchCompleted records a finished batch.
func IncBatchCompleted() {
	batchesCompletedTotal.Add(1)
	batchesActive.Add(-1)
}

// IncItemSucceeded increments the per-document success counter.
func IncItemSucceeded() {
	itemsSucceededTotal.Add(1)
}

// IncItemFailed increments the per-document failure counter.
func IncItemFailed() {
	itemsFailedTotal.Add(1)
}

// IncExtraction counts a text extraction that actually parsed document bytes.
func IncExtraction() {
	extractionsTotal.Add(1)
}

// ObserveOracleDurationMs records an oracle call duration in milliseconds.
func ObserveOracleDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	oracleDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "batch_submitted_total", "Total batches submitted", batchesSubmittedTotal.Load())
	writeCounter(&buf, "batch_completed_total", "Total batches completed", batchesCompletedTotal.Load())
	writeGauge(&buf, "batch_active", "Batches currently running", batchesActive.Load())
	writeCounter(&buf, "batch_item_succeeded_total", "Documents analyzed successfully", itemsSucceededTotal.Load())
	writeCounter(&buf, "batch_item_failed_total", "Documents that failed analysis", itemsFailedTotal.Load())
	writeCounter(&buf, "document_extraction_total", "Document text extractions performed", extractionsTotal.Load())
	writeHistogram(&buf, "oracle_duration_ms", "Oracle call duration in milliseconds", oracleDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe puts value into the first bucket whose bound covers it; buckets are
// accumulated at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
