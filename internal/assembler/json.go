package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inspection-workers/internal/common/validation"
	"inspection-workers/internal/report"
	"inspection-workers/internal/report/fieldmap"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ImportError reports a JSON document that cannot become a record.
type ImportError struct {
	Reason  string
	Details []string
	Err     error
}

func (e *ImportError) Error() string {
	msg := "import failed: " + e.Reason
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }

const importSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"tipo_informe": {"type": "string"},
		"fotos": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {
					"anyOf": [
						{"type": "string"},
						{
							"type": "object",
							"properties": {
								"path": {"type": "string"},
								"titulo": {"type": "string"}
							}
						}
					]
				}
			}
		}
	}
}`

var importSchema = validation.MustSchemaValidator(importSchemaJSON)

// ExportJSON renders rec as indented template-schema JSON.
func (a *Assembler) ExportJSON(rec report.InspectionRecord) (doc *RenderedDocument, err error) {
	_, span := a.tracer.Start(context.Background(), "assembler.ExportJSON")
	span.SetAttributes(attribute.String("report.type", string(rec.Type)))
	start := time.Now()
	defer func() {
		a.finish(span, rec.Type, FormatJSON, start, err)
	}()

	ts, err := fieldmap.ToTemplateSchema(rec)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template schema: %w", err)
	}

	return &RenderedDocument{
		Name:        FileName(rec.Type, rec.ExpedienteNova(), FormatJSON, a.now()),
		Format:      FormatJSON,
		ContentType: ContentTypeJSON,
		ReportType:  rec.Type,
		Data:        data,
	}, nil
}

// ImportDocument parses an exported JSON document. Every failure is an
// *ImportError.
func (a *Assembler) ImportDocument(raw []byte) (rec report.InspectionRecord, err error) {
	_, span := a.tracer.Start(context.Background(), "assembler.ImportDocument")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("report.type", string(rec.Type)))
		}
		span.End()
	}()

	result, err := importSchema.ValidateBytes(raw)
	if err != nil {
		return report.InspectionRecord{}, &ImportError{Reason: "malformed JSON", Err: err}
	}
	if !result.Valid {
		details := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			details[i] = e.Field + ": " + e.Message
		}
		return report.InspectionRecord{}, &ImportError{Reason: "document does not match the template schema", Details: details}
	}

	var ts fieldmap.TemplateSchema
	if err := json.Unmarshal(raw, &ts); err != nil {
		return report.InspectionRecord{}, &ImportError{Reason: "malformed document", Err: err}
	}
	rec, err = fieldmap.FromTemplateSchema(&ts)
	if err != nil {
		reason := "invalid document"
		if errors.Is(err, report.ErrUnknownReportType) {
			reason = "unknown report type"
		}
		return report.InspectionRecord{}, &ImportError{Reason: reason, Err: err}
	}

	a.logger.Info("document imported", map[string]interface{}{
		"reportType": rec.Type,
		"expediente": rec.ExpedienteNova(),
	})
	return rec, nil
}

// ImportDocumentAs imports raw and requires the given report type.
func (a *Assembler) ImportDocumentAs(raw []byte, want report.ReportType) (report.InspectionRecord, error) {
	rec, err := a.ImportDocument(raw)
	if err != nil {
		return report.InspectionRecord{}, err
	}
	if rec.Type != want {
		return report.InspectionRecord{}, &ImportError{
			Reason: fmt.Sprintf("document is a %s report, expected %s", rec.Type, want),
		}
	}
	return rec, nil
}
