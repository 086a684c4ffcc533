// Package report holds the inspection report records and the static field
// schema for each report type.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownReportType is returned when a report type discriminator is not
// one of the known types.
var ErrUnknownReportType = errors.New("unknown report type")

type ReportType string

const (
	TypeWorkOrder       ReportType = "work_order"
	TypeFieldInspection ReportType = "field_inspection"
	TypeFinalInspection ReportType = "final_inspection"
)

// ReportTypes lists the known report types in workflow order.
var ReportTypes = []ReportType{TypeWorkOrder, TypeFieldInspection, TypeFinalInspection}

func (t ReportType) Valid() bool {
	switch t {
	case TypeWorkOrder, TypeFieldInspection, TypeFinalInspection:
		return true
	}
	return false
}

// Label is the prefix used for exported file names.
func (t ReportType) Label() string {
	switch t {
	case TypeWorkOrder:
		return "Orden_Trabajo"
	case TypeFieldInspection:
		return "Informe_Campo"
	case TypeFinalInspection:
		return "Informe_Final"
	}
	return "Informe"
}

func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownReportType, s)
	}
	return t, nil
}

// TriState is one item of a tri-state group.
type TriState string

const (
	TriUnset TriState = ""
	TriYes   TriState = "yes"
	TriNo    TriState = "no"
	TriNA    TriState = "na"
)

func (s TriState) Valid() bool {
	switch s {
	case TriUnset, TriYes, TriNo, TriNA:
		return true
	}
	return false
}

// Code returns the literal written into the template.
func (s TriState) Code() string {
	switch s {
	case TriYes:
		return "SI"
	case TriNo:
		return "NO"
	case TriNA:
		return "NA"
	}
	return ""
}

// ParseTriStateCode is the inverse of Code. Unknown codes are unset.
func ParseTriStateCode(code string) TriState {
	switch strings.TrimSpace(code) {
	case "SI":
		return TriYes
	case "NO":
		return TriNo
	case "NA":
		return TriNA
	}
	return TriUnset
}

func (s *TriState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = TriUnset
		return nil
	}
	v := TriState(strings.ToLower(strings.TrimSpace(raw)))
	if !v.Valid() {
		v = TriUnset
	}
	*s = v
	return nil
}

// Flags holds a boolean group keyed by option key.
type Flags map[string]bool

// TriStates holds a tri-state group keyed by item key.
type TriStates map[string]TriState

// Option is one member of a group with its human readable label.
type Option struct {
	Key   string
	Label string
}

// ImageRef is either a data URL or a content path (local path, http(s) URL
// or s3://bucket/key).
type ImageRef string

// MaxPhotos caps a photo list in the record.
const MaxPhotos = 5

// MaxTemplatePhotos is the number of image slots per bucket in templates.
const MaxTemplatePhotos = 4

type PhotoList []ImageRef

// Add appends ref unless the list is already full.
func (p *PhotoList) Add(ref ImageRef) bool {
	if len(*p) >= MaxPhotos || ref == "" {
		return false
	}
	*p = append(*p, ref)
	return true
}

// PhotoBucket groups photos by subject in the template schema.
type PhotoBucket string

const (
	BucketMercancia  PhotoBucket = "mercancia"
	BucketMarcas     PhotoBucket = "marcas"
	BucketContenedor PhotoBucket = "carga_contenedor"
)

// PhotoBuckets lists the buckets in template order.
var PhotoBuckets = []PhotoBucket{BucketMercancia, BucketMarcas, BucketContenedor}

// TagPrefix is the image tag prefix used in templates, e.g. MERCANCIA_1.
func (b PhotoBucket) TagPrefix() string {
	switch b {
	case BucketMercancia:
		return "MERCANCIA"
	case BucketMarcas:
		return "MARCAS"
	case BucketContenedor:
		return "CONTENEDOR"
	}
	return strings.ToUpper(string(b))
}

// Title is the caption prefix written next to each photo.
func (b PhotoBucket) Title() string {
	switch b {
	case BucketMercancia:
		return "Mercancía"
	case BucketMarcas:
		return "Marcas"
	case BucketContenedor:
		return "Contenedor"
	}
	return string(b)
}

// LegacyKey is the single-photo key kept for older template revisions.
func (b PhotoBucket) LegacyKey() string {
	return "foto_" + string(b)
}
