package exportjson

import (
	"context"
	"fmt"
	"time"

	"inspection-workers/internal/assembler"
	"inspection-workers/internal/common/errors"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/common/observability"
	"inspection-workers/internal/report"
	"inspection-workers/internal/workers/reports/reportjob"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "export-inspection-json"

type Exporter interface {
	ExportJSON(rec report.InspectionRecord) (*assembler.RenderedDocument, error)
	Deliver(ctx context.Context, doc *assembler.RenderedDocument) (string, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	exporter     Exporter
	records      reportjob.RecordStore
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	Config        *Config
	Exporter      Exporter
	Records       reportjob.RecordStore
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Exporter == nil {
		return nil, fmt.Errorf("%s: exporter is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		logger:       log,
		exporter:     opts.Exporter,
		records:      opts.Records,
		errorHandler: errors.NewErrorHandler(log),
		obs:          opts.Observability,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := reportjob.ParseVariables(job, GetInputSchema(), &input); err != nil {
		h.fail(client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(client, job, err, startTime)
		return
	}

	if err := reportjob.Complete(client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordDocumentSize(ctx, output.ReportType, assembler.FormatJSON, len(output.TemplateSchema))
}

// Execute converts the record to its template-schema JSON.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := reportjob.ResolveRecord(ctx, h.records, input.RecordInput)
	if err != nil {
		return nil, err
	}

	doc, err := h.exporter.ExportJSON(rec)
	if err != nil {
		return nil, err
	}

	output := &Output{
		ReportType:     string(rec.Type),
		ExpedienteNova: rec.ExpedienteNova(),
		DocumentName:   doc.Name,
		TemplateSchema: doc.Data,
	}

	if input.Deliver {
		location, err := h.exporter.Deliver(ctx, doc)
		if err != nil {
			return nil, errors.NewDocumentDeliveryFailedError(doc.Name, err)
		}
		output.DocumentLocation = location
	}
	return output, nil
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	stdErr := reportjob.Fail(h.errorHandler, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(context.Background(), TaskType, "failed")
	h.obs.RecordJobDuration(context.Background(), TaskType, time.Since(startTime))
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}
