package prefillreport

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"inspection-workers/internal/common/errors"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/common/observability"
	"inspection-workers/internal/report"
	"inspection-workers/internal/store"
	"inspection-workers/internal/workers/reports/reportjob"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "prefill-inspection-report"

type Handler struct {
	config       *Config
	logger       logger.Logger
	records      reportjob.RecordStore
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	Config        *Config
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
	if opts.Records == nil {
		return nil, fmt.Errorf("%s: record store is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		logger:       log,
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

	h.logger.Info("report prefilled", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"reportType": output.ReportType,
		"expediente": output.ExpedienteNova,
		"prefilled":  output.Prefilled,
		"source":     output.SourceReportType,
	})
}

// Execute copies the carry-over fields of the preceding stored report into
// the target report. A missing source is not an error: the target comes
// back unchanged with Prefilled false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	target, err := report.ParseReportType(input.ReportType)
	if err != nil {
		return nil, errors.NewInvalidReportTypeError(input.ReportType)
	}

	dst, err := h.targetRecord(ctx, target, input)
	if err != nil {
		return nil, err
	}

	output := &Output{ReportType: string(target)}

	if srcType, ok := report.PrefillSource(target); ok {
		src, err := h.records.Load(ctx, srcType, input.ExpedienteNova)
		switch {
		case err == nil:
			output.Prefilled = report.Prefill(dst, src)
			output.SourceReportType = string(srcType)
		case stderrors.Is(err, store.ErrRecordNotFound):
			h.logger.Info("no source report to prefill from", map[string]interface{}{
				"reportType": target,
				"source":     srcType,
				"expediente": input.ExpedienteNova,
			})
		default:
			return nil, errors.NewRecordStoreFailedError(err)
		}
	}

	if dst.ExpedienteNova() == "" {
		dst.SetExpedienteNova(input.ExpedienteNova)
	}

	if input.shouldPersist() {
		key, err := h.records.Save(ctx, dst)
		if err != nil {
			return nil, errors.NewRecordStoreFailedError(err)
		}
		output.RecordKey = key
	}

	output.ExpedienteNova = dst.ExpedienteNova()
	output.InspectionRecord = dst
	return output, nil
}

// targetRecord returns the draft passed with the job, the stored target or
// a fresh record, in that order.
func (h *Handler) targetRecord(ctx context.Context, target report.ReportType, input *Input) (report.InspectionRecord, error) {
	if input.InspectionRecord != nil {
		if input.InspectionRecord.Type != target {
			return report.InspectionRecord{}, errors.NewInvalidInputError(fmt.Sprintf(
				"inspectionRecord is a %s report, expected %s", input.InspectionRecord.Type, target))
		}
		return *input.InspectionRecord, nil
	}

	rec, err := h.records.Load(ctx, target, input.ExpedienteNova)
	switch {
	case err == nil:
		return rec, nil
	case stderrors.Is(err, store.ErrRecordNotFound):
		return report.NewEmptyRecord(target)
	default:
		return report.InspectionRecord{}, errors.NewRecordStoreFailedError(err)
	}
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
