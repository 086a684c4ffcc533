// pkg/registry/schema.go
package registry

// TemplateRegistry lists the DOCX template shipped for each report type.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

type Template struct {
	ReportType  string `json:"reportType"`
	File        string `json:"file"`
	Version     string `json:"version"`
	Description string `json:"description"`
}
