// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	DocumentsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_documents_exported_total",
			Help: "Documents produced by the assembler",
		},
		[]string{"report_type", "format", "status"},
	)

	DocumentExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inspection_document_export_duration_seconds",
			Help:    "End-to-end export time including image preparation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"report_type", "format"},
	)

	ImagesPrepared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_images_prepared_total",
			Help: "Photo slots processed by the image normalizer",
		},
		[]string{"result"}, // ok, empty, fetch_error, decode_error
	)

	TemplateFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_template_fetches_total",
			Help: "Template fetches per source",
		},
		[]string{"source", "result"},
	)
)
