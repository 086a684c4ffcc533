package prefillreport

import (
	"inspection-workers/internal/report"
)

type Input struct {
	// ReportType is the report being prepared (field_inspection or
	// final_inspection).
	ReportType     string `json:"reportType"`
	ExpedienteNova string `json:"expedienteNova"`
	// InspectionRecord is an optional draft of the target report.
	InspectionRecord *report.InspectionRecord `json:"inspectionRecord,omitempty"`
	// Persist saves the prefilled record; defaults to true.
	Persist *bool `json:"persist,omitempty"`
}

func (in *Input) shouldPersist() bool {
	return in.Persist == nil || *in.Persist
}

type Output struct {
	ReportType       string                  `json:"reportType"`
	ExpedienteNova   string                  `json:"expedienteNova"`
	InspectionRecord report.InspectionRecord `json:"inspectionRecord"`
	Prefilled        bool                    `json:"prefilled"`
	SourceReportType string                  `json:"sourceReportType,omitempty"`
	RecordKey        string                  `json:"recordKey,omitempty"`
}

func GetInputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"reportType", "expedienteNova"},
		"properties": map[string]interface{}{
			"reportType":     map[string]interface{}{"type": "string", "minLength": 1},
			"expedienteNova": map[string]interface{}{"type": "string", "minLength": 1},
			"inspectionRecord": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"tipo"},
			},
			"persist": map[string]interface{}{"type": "boolean"},
		},
	}
}
