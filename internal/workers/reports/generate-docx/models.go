package generatedocx

import (
	"inspection-workers/internal/workers/reports/reportjob"
)

type Input struct {
	reportjob.RecordInput
	// Deliver stores the document through the configured sink. When false
	// the document travels back base64 encoded.
	Deliver *bool `json:"deliver,omitempty"`
	// Persist saves an inline record to the record store before rendering.
	Persist bool `json:"persist,omitempty"`
}

func (in *Input) shouldDeliver(def bool) bool {
	if in.Deliver == nil {
		return def
	}
	return *in.Deliver
}

type Output struct {
	ReportType       string `json:"reportType"`
	ExpedienteNova   string `json:"expedienteNova"`
	DocumentName     string `json:"documentName"`
	DocumentSize     int    `json:"documentSize"`
	ContentType      string `json:"contentType"`
	DocumentLocation string `json:"documentLocation,omitempty"`
	DocumentBase64   string `json:"documentBase64,omitempty"`
	RecordKey        string `json:"recordKey,omitempty"`
}

func GetInputSchema() map[string]interface{} {
	props := reportjob.RecordSchema()
	props["deliver"] = map[string]interface{}{"type": "boolean"}
	props["persist"] = map[string]interface{}{"type": "boolean"}

	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"anyOf": []interface{}{
			map[string]interface{}{"required": []interface{}{"inspectionRecord"}},
			map[string]interface{}{"required": []interface{}{"reportType"}},
		},
	}
}
