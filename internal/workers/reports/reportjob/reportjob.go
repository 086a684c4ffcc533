// Package reportjob holds what the report workers share: how a job names
// its record, how variables are parsed and how domain failures map to
// standard error codes.
package reportjob

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"inspection-workers/internal/assembler"
	"inspection-workers/internal/common/errors"
	"inspection-workers/internal/common/validation"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/report"
	"inspection-workers/internal/report/fieldmap"
	"inspection-workers/internal/store"
	"inspection-workers/internal/templates"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// CommandTimeout bounds the complete/fail commands sent back to the broker.
// They run on a fresh context so an expired job deadline still reports.
const CommandTimeout = 10 * time.Second

// RecordStore is the part of store.RecordStore the workers use.
type RecordStore interface {
	Save(ctx context.Context, rec report.InspectionRecord) (string, error)
	Load(ctx context.Context, t report.ReportType, expediente string) (report.InspectionRecord, error)
}

// RecordInput names the record a job works on: either inline or by type
// and expediente in the record store.
type RecordInput struct {
	Record         *report.InspectionRecord `json:"inspectionRecord,omitempty"`
	ReportType     string                   `json:"reportType,omitempty"`
	ExpedienteNova string                   `json:"expedienteNova,omitempty"`
}

// RecordSchema returns the JSON schema properties shared by job inputs.
func RecordSchema() map[string]interface{} {
	return map[string]interface{}{
		"inspectionRecord": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"tipo"},
			"properties": map[string]interface{}{
				"tipo":  map[string]interface{}{"type": "string"},
				"datos": map[string]interface{}{"type": []interface{}{"object", "null"}},
			},
		},
		"reportType":     map[string]interface{}{"type": "string"},
		"expedienteNova": map[string]interface{}{"type": "string"},
	}
}

// ResolveRecord returns the inline record or loads it from the store.
func ResolveRecord(ctx context.Context, rs RecordStore, in RecordInput) (report.InspectionRecord, error) {
	if in.Record != nil {
		if err := in.Record.Validate(); err != nil {
			if stderrors.Is(err, report.ErrUnknownReportType) {
				return report.InspectionRecord{}, errors.NewInvalidReportTypeError(string(in.Record.Type))
			}
			return report.InspectionRecord{}, errors.NewInvalidInputError(err.Error())
		}
		return *in.Record, nil
	}

	if in.ReportType == "" {
		return report.InspectionRecord{}, errors.NewInvalidInputError("inspectionRecord or reportType is required")
	}
	t, err := report.ParseReportType(in.ReportType)
	if err != nil {
		return report.InspectionRecord{}, errors.NewInvalidReportTypeError(in.ReportType)
	}
	if rs == nil {
		return report.InspectionRecord{}, errors.NewInvalidInputError("record store not configured, pass inspectionRecord")
	}
	rec, err := rs.Load(ctx, t, in.ExpedienteNova)
	if err != nil {
		if stderrors.Is(err, store.ErrRecordNotFound) {
			return report.InspectionRecord{}, errors.NewRecordNotFoundError(string(t))
		}
		return report.InspectionRecord{}, errors.NewRecordStoreFailedError(err)
	}
	return rec, nil
}

// ParseVariables validates the job variables against a schema and decodes
// them into dst.
func ParseVariables(job entities.Job, schema map[string]interface{}, dst interface{}) error {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("job variables are not a JSON object: %s", err))
	}

	result, err := validation.ValidateInput(vars, schema)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !result.Valid {
		return errors.NewInvalidInputError(result.Error())
	}

	if err := json.Unmarshal([]byte(job.GetVariables()), dst); err != nil {
		if stderrors.Is(err, report.ErrUnknownReportType) {
			return err
		}
		return errors.NewInvalidInputError(err.Error())
	}
	return nil
}

// MapError turns a domain error into the StandardError reported to the
// process. StandardErrors pass through.
func MapError(err error) *errors.StandardError {
	var (
		stdErr    *errors.StandardError
		loadErr   *templates.TemplateLoadError
		renderErr *docx.RenderError
		importErr *assembler.ImportError
	)
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return errors.NewExportCancelledError(err)
	case stderrors.As(err, &loadErr):
		return errors.NewTemplateLoadFailedError(string(loadErr.ReportType), err)
	case stderrors.As(err, &renderErr):
		return errors.NewTemplateRenderFailedError(renderErr.Tags(), err)
	case stderrors.As(err, &importErr):
		return errors.NewReportImportFailedError(err)
	case stderrors.Is(err, report.ErrUnknownReportType):
		return errors.NewInvalidReportTypeError(err.Error())
	case stderrors.Is(err, fieldmap.ErrInvalidRecord):
		return errors.NewInvalidInputError(err.Error())
	case stderrors.Is(err, store.ErrRecordNotFound):
		return errors.NewRecordNotFoundError(err.Error())
	}
	return errors.NewInternalError(err)
}

// Complete sends the output as job variables.
func Complete(client worker.JobClient, job entities.Job, output interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("complete job %d: %w", job.GetKey(), err)
	}
	return nil
}

// Fail maps err and hands it to the error handler, which either fails the
// job with retries or throws the BPMN error.
func Fail(h *errors.ErrorHandler, client worker.JobClient, job entities.Job, err error) *errors.StandardError {
	stdErr := MapError(err)

	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	h.HandleJobError(ctx, client, job, stdErr)
	return stdErr
}
