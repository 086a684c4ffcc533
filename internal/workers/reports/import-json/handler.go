package importjson

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inspection-workers/internal/common/errors"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/common/observability"
	"inspection-workers/internal/report"
	"inspection-workers/internal/workers/reports/reportjob"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "import-inspection-json"

type Importer interface {
	ImportDocument(raw []byte) (report.InspectionRecord, error)
	ImportDocumentAs(raw []byte, want report.ReportType) (report.InspectionRecord, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	importer     Importer
	records      reportjob.RecordStore
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	Config        *Config
	Importer      Importer
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
	if opts.Importer == nil {
		return nil, fmt.Errorf("%s: importer is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		logger:       log,
		importer:     opts.Importer,
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

	h.logger.Info("report imported", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"reportType": output.ReportType,
		"expediente": output.ExpedienteNova,
		"persisted":  output.RecordKey != "",
	})
}

// Execute parses the document back into a record and optionally stores it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	raw, err := documentBytes(input.Document)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	var rec report.InspectionRecord
	if input.ExpectedType != "" {
		want, err := report.ParseReportType(input.ExpectedType)
		if err != nil {
			return nil, errors.NewInvalidReportTypeError(input.ExpectedType)
		}
		rec, err = h.importer.ImportDocumentAs(raw, want)
		if err != nil {
			return nil, err
		}
	} else {
		rec, err = h.importer.ImportDocument(raw)
		if err != nil {
			return nil, err
		}
	}

	output := &Output{
		ReportType:       string(rec.Type),
		ExpedienteNova:   rec.ExpedienteNova(),
		InspectionRecord: rec,
	}

	if input.Persist {
		if h.records == nil {
			return nil, errors.NewInvalidInputError("persist requested but no record store is configured")
		}
		key, err := h.records.Save(ctx, rec)
		if err != nil {
			return nil, errors.NewRecordStoreFailedError(err)
		}
		output.RecordKey = key
	}
	return output, nil
}

// documentBytes accepts the document as an object or as a JSON string
// holding the exported text.
func documentBytes(doc json.RawMessage) ([]byte, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("document is required")
	}
	if doc[0] != '"' {
		return doc, nil
	}
	var text string
	if err := json.Unmarshal(doc, &text); err != nil {
		return nil, fmt.Errorf("document string: %w", err)
	}
	return []byte(text), nil
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
