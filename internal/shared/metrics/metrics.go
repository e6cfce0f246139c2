package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	quotesAnalyzedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offertanalys_quotes_analyzed_total",
			Help: "Quotes processed by batch analysis, by outcome",
		},
		[]string{"outcome"},
	)

	extractionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offertanalys_extraction_total",
			Help: "Document text extraction attempts, by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	comparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offertanalys_comparisons_total",
			Help: "Quote comparisons, by outcome",
		},
		[]string{"outcome"},
	)

	llmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offertanalys_llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "offertanalys_batch_duration_seconds",
			Help:    "Batch analysis duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)
)

func init() {
	prometheus.MustRegister(quotesAnalyzedTotal, extractionTotal, comparisonsTotal, llmDuration, batchDuration)
}

// IncQuoteAnalyzed counts a successfully analyzed quote.
func IncQuoteAnalyzed() {
	quotesAnalyzedTotal.WithLabelValues("success").Inc()
}

// IncQuoteFailed counts a quote that failed analysis.
func IncQuoteFailed() {
	quotesAnalyzedTotal.WithLabelValues("failed").Inc()
}

// IncExtraction counts one extraction strategy attempt.
func IncExtraction(strategy, outcome string) {
	extractionTotal.WithLabelValues(strategy, outcome).Inc()
}

// IncComparison counts a comparison by outcome (success, failed, save_failed).
func IncComparison(outcome string) {
	comparisonsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLLM records the duration of one LLM call.
func ObserveLLM(operation string, d time.Duration) {
	llmDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveBatch records the duration of one batch run.
func ObserveBatch(d time.Duration) {
	batchDuration.Observe(d.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
