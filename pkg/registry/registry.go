// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Files maps report type to template file name. Later entries win.
func (r *TemplateRegistry) Files() map[string]string {
	files := make(map[string]string, len(r.Templates))
	for _, t := range r.Templates {
		if t.ReportType == "" || t.File == "" {
			continue
		}
		files[t.ReportType] = t.File
	}
	return files
}

// Lookup returns the registry entry for a report type.
func (r *TemplateRegistry) Lookup(reportType string) (Template, bool) {
	for i := len(r.Templates) - 1; i >= 0; i-- {
		if r.Templates[i].ReportType == reportType {
			return r.Templates[i], true
		}
	}
	return Template{}, false
}
