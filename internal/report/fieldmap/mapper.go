package fieldmap

import (
	"errors"
	"fmt"

	"inspection-workers/internal/report"
)

// SwitchOn is the template value of a switch that is set.
const SwitchOn = "Sí"

// DefaultReportType applies to imported documents without tipo_informe.
const DefaultReportType = report.TypeFinalInspection

var ErrInvalidRecord = errors.New("invalid inspection record")

var switchTrue = map[string]bool{
	"Sí":   true,
	"Si":   true,
	"SI":   true,
	"true": true,
	"X":    true,
}

// ToTemplateSchema flattens a record into the template schema.
func ToTemplateSchema(rec report.InspectionRecord) (*TemplateSchema, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	switch rec.Type {
	case report.TypeWorkOrder:
		return encode(report.WorkOrderSchema, rec.WorkOrder), nil
	case report.TypeFieldInspection:
		return encode(report.FieldInspectionSchema, rec.FieldInspection), nil
	default:
		return encode(report.FinalInspectionSchema, rec.FinalInspection), nil
	}
}

// FromTemplateSchema rebuilds a record. Missing keys default to empty,
// false or unset and unknown keys are ignored.
func FromTemplateSchema(ts *TemplateSchema) (report.InspectionRecord, error) {
	if ts == nil {
		return report.InspectionRecord{}, fmt.Errorf("%w: nil schema", ErrInvalidRecord)
	}
	t := ts.ReportType
	if t == "" {
		t = DefaultReportType
	}
	rec, err := report.NewEmptyRecord(t)
	if err != nil {
		return report.InspectionRecord{}, err
	}
	switch rec.Type {
	case report.TypeWorkOrder:
		decode(report.WorkOrderSchema, ts, rec.WorkOrder)
	case report.TypeFieldInspection:
		decode(report.FieldInspectionSchema, ts, rec.FieldInspection)
	default:
		decode(report.FinalInspectionSchema, ts, rec.FinalInspection)
	}
	return rec, nil
}

func encode[T any](s *report.Schema[T], v *T) *TemplateSchema {
	ts := NewTemplateSchema(s.Type)

	for _, f := range s.Text {
		ts.Fields[f.Column()] = *f.Get(v)
	}
	for _, f := range s.Switches {
		value := ""
		if *f.Get(v) {
			value = SwitchOn
		}
		ts.Fields[f.Column()] = value
	}
	for _, g := range s.Groups {
		ts.Fields[g.Column()] = g.Labels(*g.Get(v))
	}
	for _, g := range s.TriGroups {
		states := *g.Get(v)
		for _, item := range g.Items {
			ts.Fields[g.ItemColumn(item.Key)] = states[item.Key].Code()
		}
	}
	for _, p := range s.Photos {
		list := *p.Get(v)
		n := min(len(list), report.MaxTemplatePhotos)
		entries := make([]PhotoEntry, 0, n)
		for i := 0; i < n; i++ {
			entries = append(entries, PhotoEntry{
				Path:   string(list[i]),
				Titulo: fmt.Sprintf("%s %d", p.Bucket.Title(), i+1),
			})
		}
		ts.Photos[p.Bucket] = entries
	}
	return ts
}

func decode[T any](s *report.Schema[T], ts *TemplateSchema, v *T) {
	s.Init(v)

	for _, f := range s.Text {
		*f.Get(v) = ts.Fields[f.Column()]
	}
	for _, f := range s.Switches {
		*f.Get(v) = switchTrue[ts.Fields[f.Column()]]
	}
	for _, g := range s.Groups {
		*g.Get(v) = g.ParseLabels(ts.Fields[g.Column()])
	}
	for _, g := range s.TriGroups {
		states := make(report.TriStates, len(g.Items))
		for _, item := range g.Items {
			states[item.Key] = report.ParseTriStateCode(ts.Fields[g.ItemColumn(item.Key)])
		}
		*g.Get(v) = states
	}
	for _, p := range s.Photos {
		entries := ts.Photos[p.Bucket]
		n := min(len(entries), report.MaxTemplatePhotos)
		list := make(report.PhotoList, 0, n)
		for _, e := range entries[:n] {
			list = append(list, report.ImageRef(e.Path))
		}
		*p.Get(v) = list
	}
}
