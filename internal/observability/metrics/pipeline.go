package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// PipelineMetrics records query and ingest outcomes. It satisfies
// ports.PipelineObserver.
type PipelineMetrics struct {
	service string

	queriesTotal       *prometheus.CounterVec
	querySnippets      *prometheus.HistogramVec
	queryDuration      *prometheus.HistogramVec
	repairsTotal       *prometheus.CounterVec
	validationTotal    *prometheus.CounterVec
	ingestFilesTotal   *prometheus.CounterVec
	ingestChunksTotal  *prometheus.CounterVec
	langFallbacksTotal *prometheus.CounterVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "rag",
			Name:      "queries_total",
			Help:      "Total answered queries by routed corpus and status.",
		},
		[]string{"service", "corpus", "status"},
	)
	querySnippets := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legal",
			Subsystem: "rag",
			Name:      "snippets",
			Help:      "Distribution of snippets passed to the answer model.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legal",
			Subsystem: "rag",
			Name:      "duration_seconds",
			Help:      "End-to-end query duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	repairsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "answer",
			Name:      "repairs_total",
			Help:      "Total JSON repair passes by result.",
		},
		[]string{"service", "result"},
	)
	validationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "answer",
			Name:      "validation_total",
			Help:      "Total answer schema validations by result.",
		},
		[]string{"service", "result"},
	)
	ingestFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Total ingested files by result.",
		},
		[]string{"service", "result"},
	)
	ingestChunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total chunks by stage (produced or indexed).",
		},
		[]string{"service", "stage"},
	)
	langFallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legal",
			Subsystem: "chunking",
			Name:      "language_fallback_total",
			Help:      "Total chunks whose language could not be detected.",
		},
		[]string{"service"},
	)

	registerer.MustRegister(
		queriesTotal,
		querySnippets,
		queryDuration,
		repairsTotal,
		validationTotal,
		ingestFilesTotal,
		ingestChunksTotal,
		langFallbacksTotal,
	)

	return &PipelineMetrics{
		service:            service,
		queriesTotal:       queriesTotal,
		querySnippets:      querySnippets,
		queryDuration:      queryDuration,
		repairsTotal:       repairsTotal,
		validationTotal:    validationTotal,
		ingestFilesTotal:   ingestFilesTotal,
		ingestChunksTotal:  ingestChunksTotal,
		langFallbacksTotal: langFallbacksTotal,
	}
}

func (m *PipelineMetrics) LanguageFallback(string, error) {
	m.langFallbacksTotal.WithLabelValues(m.service).Inc()
}

func (m *PipelineMetrics) RepairAttempted(succeeded bool) {
	m.repairsTotal.WithLabelValues(m.service, result(succeeded)).Inc()
}

func (m *PipelineMetrics) AnswerValidated(err error) {
	m.validationTotal.WithLabelValues(m.service, result(err == nil)).Inc()
}

func (m *PipelineMetrics) QueryCompleted(code domain.Corpus, snippets int, duration time.Duration, err error) {
	corpus := string(code)
	if corpus == "" {
		corpus = "none"
	}
	status := result(err == nil)
	m.queriesTotal.WithLabelValues(m.service, corpus, status).Inc()
	m.queryDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if err == nil {
		m.querySnippets.WithLabelValues(m.service).Observe(float64(snippets))
	}
}

func (m *PipelineMetrics) IngestCompleted(report *domain.IngestReport) {
	if report == nil {
		return
	}
	m.ingestFilesTotal.WithLabelValues(m.service, "processed").Add(float64(report.FilesProcessed))
	m.ingestFilesTotal.WithLabelValues(m.service, "failed").Add(float64(report.FilesReceived - report.FilesProcessed))
	m.ingestChunksTotal.WithLabelValues(m.service, "produced").Add(float64(report.ChunksProduced))
	m.ingestChunksTotal.WithLabelValues(m.service, "indexed").Add(float64(report.ChunksIndexed))
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
