package exportjson

import (
	"encoding/json"

	"inspection-workers/internal/workers/reports/reportjob"
)

type Input struct {
	reportjob.RecordInput
	// Deliver also writes the JSON file through the configured sink.
	Deliver bool `json:"deliver,omitempty"`
}

type Output struct {
	ReportType       string          `json:"reportType"`
	ExpedienteNova   string          `json:"expedienteNova"`
	DocumentName     string          `json:"documentName"`
	TemplateSchema   json.RawMessage `json:"templateSchema"`
	DocumentLocation string          `json:"documentLocation,omitempty"`
}

func GetInputSchema() map[string]interface{} {
	props := reportjob.RecordSchema()
	props["deliver"] = map[string]interface{}{"type": "boolean"}

	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"anyOf": []interface{}{
			map[string]interface{}{"required": []interface{}{"inspectionRecord"}},
			map[string]interface{}{"required": []interface{}{"reportType"}},
		},
	}
}
