package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	fragmentsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "succinct",
			Subsystem: "fragment",
			Name:      "written_total",
			Help:      "Fragments touched by message writes.",
		},
	)
	fragmentBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "succinct",
			Subsystem: "fragment",
			Name:      "bytes_written_total",
			Help:      "Message bytes appended to fragments.",
		},
	)
	extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "succinct",
			Subsystem: "message",
			Name:      "extractions_total",
			Help:      "Message reassembly attempts.",
		},
		[]string{"success"},
	)
	extractionSpan = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "succinct",
			Subsystem: "message",
			Name:      "span_fragments",
			Help:      "Fragments visited to reassemble one message.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 100, 1000},
		},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "succinct",
			Subsystem: "message",
			Name:      "decodes_total",
			Help:      "Message decode attempts by type.",
		},
		[]string{"type", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(fragmentsWritten, fragmentBytes, extractions, extractionSpan, decodes)
	})
}

func RecordFragmentWrite(fragments, bytes int) {
	RegisterMetrics()
	fragmentsWritten.Add(float64(fragments))
	fragmentBytes.Add(float64(bytes))
}

func RecordExtraction(ok bool) {
	RegisterMetrics()
	extractions.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func RecordSpan(span int) {
	RegisterMetrics()
	extractionSpan.Observe(float64(span))
}

func RecordDecode(msgType string, ok bool) {
	RegisterMetrics()
	decodes.WithLabelValues(msgType, strconv.FormatBool(ok)).Inc()
}

// WriteMetricsFile dumps the default registry in text format for a node
// exporter textfile collector. An empty path is a no-op.
func WriteMetricsFile(path string) error {
	if path == "" {
		return nil
	}
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
