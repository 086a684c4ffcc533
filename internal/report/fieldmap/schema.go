// Package fieldmap converts inspection records to and from the flat
// snake_case schema used by document templates and JSON exports.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"inspection-workers/internal/report"
)

// PhotoEntry is one photo slot of a bucket.
type PhotoEntry struct {
	Path   string `json:"path"`
	Titulo string `json:"titulo"`
}

// TemplateSchema is the flat external representation of a record.
type TemplateSchema struct {
	ReportType report.ReportType
	Fields     map[string]string
	Photos     map[report.PhotoBucket][]PhotoEntry
}

func NewTemplateSchema(t report.ReportType) *TemplateSchema {
	s := &TemplateSchema{
		ReportType: t,
		Fields:     map[string]string{},
		Photos:     map[report.PhotoBucket][]PhotoEntry{},
	}
	for _, b := range report.PhotoBuckets {
		s.Photos[b] = []PhotoEntry{}
	}
	return s
}

// ImageSlot is a positional image placeholder resolved from a bucket.
type ImageSlot struct {
	Tag    string
	Bucket report.PhotoBucket
	Index  int
	Ref    report.ImageRef
	Title  string
}

// ImageSlots returns every image tag of the template (4 per bucket). Slots
// without a photo have an empty Ref.
func (s *TemplateSchema) ImageSlots() []ImageSlot {
	slots := make([]ImageSlot, 0, len(report.PhotoBuckets)*report.MaxTemplatePhotos)
	for _, b := range report.PhotoBuckets {
		entries := s.Photos[b]
		for i := 0; i < report.MaxTemplatePhotos; i++ {
			slot := ImageSlot{
				Tag:    fmt.Sprintf("%s_%d", b.TagPrefix(), i+1),
				Bucket: b,
				Index:  i,
			}
			if i < len(entries) {
				slot.Ref = report.ImageRef(entries[i].Path)
				slot.Title = entries[i].Titulo
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// TextFields returns the text data bound into templates.
func (s *TemplateSchema) TextFields() map[string]string {
	out := make(map[string]string, len(s.Fields)+1)
	for k, v := range s.Fields {
		out[k] = v
	}
	out[report.KeyReportType] = string(s.ReportType)
	return out
}

// legacyPhotos returns the single-photo keys of older template revisions.
func (s *TemplateSchema) legacyPhotos() map[string]string {
	out := make(map[string]string, len(report.PhotoBuckets)+1)
	cover := ""
	for _, b := range report.PhotoBuckets {
		first := ""
		if entries := s.Photos[b]; len(entries) > 0 {
			first = entries[0].Path
		}
		out[b.LegacyKey()] = first
		if cover == "" {
			cover = first
		}
	}
	out[report.KeyCoverPhoto] = cover
	return out
}

func isLegacyKey(key string) bool {
	if key == report.KeyCoverPhoto {
		return true
	}
	for _, b := range report.PhotoBuckets {
		if key == b.LegacyKey() {
			return true
		}
	}
	return false
}

func (s *TemplateSchema) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(s.Fields)+8)
	for k, v := range s.Fields {
		doc[k] = v
	}
	for k, v := range s.legacyPhotos() {
		doc[k] = v
	}
	photos := make(map[string][]PhotoEntry, len(report.PhotoBuckets))
	for _, b := range report.PhotoBuckets {
		entries := s.Photos[b]
		if entries == nil {
			entries = []PhotoEntry{}
		}
		photos[string(b)] = entries
	}
	doc[report.KeyPhotos] = photos
	doc[report.KeyReportType] = string(s.ReportType)
	return json.Marshal(doc)
}

// UnmarshalJSON reads a flat document. Scalars of any JSON kind are kept as
// text, nested values other than fotos are ignored, legacy single-photo
// keys are never read back.
func (s *TemplateSchema) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("template schema must be a JSON object")
	}

	out := NewTemplateSchema("")
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		switch {
		case key == report.KeyReportType:
			text, _ := scalarText(value)
			out.ReportType = report.ReportType(text)
		case key == report.KeyPhotos:
			out.Photos = decodePhotos(value)
		case isLegacyKey(key):
			// derived from fotos on export
		default:
			if text, ok := scalarText(value); ok {
				out.Fields[key] = text
			}
		}
	}
	*s = *out
	return nil
}

// scalarText renders a JSON scalar as text. Objects and arrays are rejected.
func scalarText(raw json.RawMessage) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		if x {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

func decodePhotos(raw json.RawMessage) map[report.PhotoBucket][]PhotoEntry {
	out := map[report.PhotoBucket][]PhotoEntry{}
	for _, b := range report.PhotoBuckets {
		out[b] = []PhotoEntry{}
	}

	var buckets map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &buckets); err != nil {
		return out
	}
	for _, b := range report.PhotoBuckets {
		for _, item := range buckets[string(b)] {
			if entry, ok := decodePhotoEntry(item); ok {
				out[b] = append(out[b], entry)
			}
		}
	}
	return out
}

// decodePhotoEntry accepts {"path": ..., "titulo": ...} or a bare string.
func decodePhotoEntry(raw json.RawMessage) (PhotoEntry, bool) {
	var entry PhotoEntry
	if err := json.Unmarshal(raw, &entry); err == nil {
		return entry, true
	}
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		return PhotoEntry{Path: path}, true
	}
	return PhotoEntry{}, false
}
