package importjson

import (
	"encoding/json"

	"inspection-workers/internal/report"
)

type Input struct {
	// Document is the exported template-schema JSON, either as an object
	// or as a JSON-encoded string.
	Document     json.RawMessage `json:"document"`
	ExpectedType string          `json:"expectedType,omitempty"`
	Persist      bool            `json:"persist,omitempty"`
}

type Output struct {
	ReportType       string                  `json:"reportType"`
	ExpedienteNova   string                  `json:"expedienteNova"`
	InspectionRecord report.InspectionRecord `json:"inspectionRecord"`
	RecordKey        string                  `json:"recordKey,omitempty"`
}

func GetInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"document"},
		"properties": map[string]interface{}{
			"document":     map[string]interface{}{"type": []interface{}{"object", "string"}},
			"expectedType": map[string]interface{}{"type": "string"},
			"persist":      map[string]interface{}{"type": "boolean"},
		},
	}
}
