package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

// InspectionRecord is one report of any type. Exactly one of the typed
// pointers is set, matching Type.
type InspectionRecord struct {
	Type            ReportType
	WorkOrder       *WorkOrder
	FieldInspection *FieldInspection
	FinalInspection *FinalInspection
}

func NewWorkOrderRecord(w *WorkOrder) InspectionRecord {
	return InspectionRecord{Type: TypeWorkOrder, WorkOrder: w}
}

func NewFieldInspectionRecord(f *FieldInspection) InspectionRecord {
	return InspectionRecord{Type: TypeFieldInspection, FieldInspection: f}
}

func NewFinalInspectionRecord(f *FinalInspection) InspectionRecord {
	return InspectionRecord{Type: TypeFinalInspection, FinalInspection: f}
}

// NewEmptyRecord returns a record of type t with all fields defaulted.
func NewEmptyRecord(t ReportType) (InspectionRecord, error) {
	switch t {
	case TypeWorkOrder:
		return NewWorkOrderRecord(NewWorkOrder()), nil
	case TypeFieldInspection:
		return NewFieldInspectionRecord(NewFieldInspection()), nil
	case TypeFinalInspection:
		return NewFinalInspectionRecord(NewFinalInspection()), nil
	}
	return InspectionRecord{}, fmt.Errorf("%w: %q", ErrUnknownReportType, t)
}

var errRecordBody = errors.New("record body does not match its type")

// Validate checks that the body matches the discriminator.
func (r InspectionRecord) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownReportType, r.Type)
	}
	ok := false
	switch r.Type {
	case TypeWorkOrder:
		ok = r.WorkOrder != nil
	case TypeFieldInspection:
		ok = r.FieldInspection != nil
	case TypeFinalInspection:
		ok = r.FinalInspection != nil
	}
	if !ok {
		return fmt.Errorf("%w: %s", errRecordBody, r.Type)
	}
	return nil
}

// ExpedienteNova returns the NOVA file number of the report.
func (r InspectionRecord) ExpedienteNova() string {
	switch {
	case r.WorkOrder != nil && r.Type == TypeWorkOrder:
		return r.WorkOrder.ExpedienteNova
	case r.FieldInspection != nil && r.Type == TypeFieldInspection:
		return r.FieldInspection.ExpedienteNova
	case r.FinalInspection != nil && r.Type == TypeFinalInspection:
		return r.FinalInspection.ExpedienteNova
	}
	return ""
}

// SetExpedienteNova stores the NOVA file number on the typed body.
func (r InspectionRecord) SetExpedienteNova(expediente string) {
	switch {
	case r.Type == TypeWorkOrder && r.WorkOrder != nil:
		r.WorkOrder.ExpedienteNova = expediente
	case r.Type == TypeFieldInspection && r.FieldInspection != nil:
		r.FieldInspection.ExpedienteNova = expediente
	case r.Type == TypeFinalInspection && r.FinalInspection != nil:
		r.FinalInspection.ExpedienteNova = expediente
	}
}

type recordJSON struct {
	Type ReportType      `json:"tipo"`
	Data json.RawMessage `json:"datos"`
}

func (r InspectionRecord) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var body interface{}
	switch r.Type {
	case TypeWorkOrder:
		body = r.WorkOrder
	case TypeFieldInspection:
		body = r.FieldInspection
	default:
		body = r.FinalInspection
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{Type: r.Type, Data: data})
}

// UnmarshalJSON decodes {"tipo": ..., "datos": {...}}. Missing fields keep
// their defaults.
func (r *InspectionRecord) UnmarshalJSON(b []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	rec, err := NewEmptyRecord(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		var target interface{}
		switch rec.Type {
		case TypeWorkOrder:
			target = rec.WorkOrder
		case TypeFieldInspection:
			target = rec.FieldInspection
		default:
			target = rec.FinalInspection
		}
		if err := json.Unmarshal(raw.Data, target); err != nil {
			return fmt.Errorf("decode %s: %w", rec.Type, err)
		}
		rec.initDefaults()
	}
	*r = rec
	return nil
}

// initDefaults restores group members dropped by explicit nulls.
func (r InspectionRecord) initDefaults() {
	switch r.Type {
	case TypeWorkOrder:
		WorkOrderSchema.Init(r.WorkOrder)
	case TypeFieldInspection:
		FieldInspectionSchema.Init(r.FieldInspection)
	case TypeFinalInspection:
		FinalInspectionSchema.Init(r.FinalInspection)
	}
}
