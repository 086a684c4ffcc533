package report

import (
	"strings"
	"unicode"
)

// Reserved template keys that no field column may use.
const (
	KeyReportType  = "tipo_informe"
	KeyPhotos      = "fotos"
	KeyCoverPhoto  = "foto_portada"
	LabelSeparator = ", "
)

// TextField is a scalar string field.
type TextField[T any] struct {
	Key string
	Get func(*T) *string
}

func (f TextField[T]) Column() string { return SnakeCase(f.Key) }

// SwitchField is a single boolean rendered as "Sí" or "".
type SwitchField[T any] struct {
	Key string
	Get func(*T) *bool
}

func (f SwitchField[T]) Column() string { return SnakeCase(f.Key) }

// GroupField is a boolean group flattened into one label list.
type GroupField[T any] struct {
	Key     string
	Options []Option
	Get     func(*T) *Flags
}

func (f GroupField[T]) Column() string { return SnakeCase(f.Key) }

// Labels joins the labels of set flags in declaration order. Keys outside
// Options are ignored.
func (f GroupField[T]) Labels(flags Flags) string {
	labels := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		if flags[opt.Key] {
			labels = append(labels, opt.Label)
		}
	}
	return strings.Join(labels, LabelSeparator)
}

// ParseLabels sets the flags whose label appears verbatim in joined.
func (f GroupField[T]) ParseLabels(joined string) Flags {
	flags := make(Flags, len(f.Options))
	for _, opt := range f.Options {
		flags[opt.Key] = false
	}
	for _, part := range strings.Split(joined, ",") {
		label := strings.TrimSpace(part)
		if label == "" {
			continue
		}
		for _, opt := range f.Options {
			if opt.Label == label {
				flags[opt.Key] = true
			}
		}
	}
	return flags
}

// TriGroupField is a tri-state group written as one column per item.
type TriGroupField[T any] struct {
	Key   string
	Items []Option
	Get   func(*T) *TriStates
}

// ItemColumn returns the template column for one item of the group.
func (f TriGroupField[T]) ItemColumn(item string) string {
	return SnakeCase(f.Key) + "_" + SnakeCase(item)
}

// PhotoField maps a photo list onto a template bucket.
type PhotoField[T any] struct {
	Key    string
	Bucket PhotoBucket
	Get    func(*T) *PhotoList
}

// Schema is the static field declaration of one report type.
type Schema[T any] struct {
	Type      ReportType
	Text      []TextField[T]
	Switches  []SwitchField[T]
	Groups    []GroupField[T]
	TriGroups []TriGroupField[T]
	Photos    []PhotoField[T]
}

// Columns lists every flat template key the schema produces, in
// declaration order.
func (s *Schema[T]) Columns() []string {
	var cols []string
	for _, f := range s.Text {
		cols = append(cols, f.Column())
	}
	for _, f := range s.Switches {
		cols = append(cols, f.Column())
	}
	for _, g := range s.Groups {
		cols = append(cols, g.Column())
	}
	for _, g := range s.TriGroups {
		for _, item := range g.Items {
			cols = append(cols, g.ItemColumn(item.Key))
		}
	}
	return cols
}

// PhotoFor returns the photo field bound to bucket, if any.
func (s *Schema[T]) PhotoFor(bucket PhotoBucket) (PhotoField[T], bool) {
	for _, p := range s.Photos {
		if p.Bucket == bucket {
			return p, true
		}
	}
	return PhotoField[T]{}, false
}

// Init fills nil groups with every declared member so that missing keys
// read as false or unset.
func (s *Schema[T]) Init(v *T) {
	for _, g := range s.Groups {
		flags := g.Get(v)
		if *flags == nil {
			*flags = Flags{}
		}
		for _, opt := range g.Options {
			if _, ok := (*flags)[opt.Key]; !ok {
				(*flags)[opt.Key] = false
			}
		}
	}
	for _, g := range s.TriGroups {
		states := g.Get(v)
		if *states == nil {
			*states = TriStates{}
		}
		for _, item := range g.Items {
			if _, ok := (*states)[item.Key]; !ok {
				(*states)[item.Key] = TriUnset
			}
		}
	}
	for _, p := range s.Photos {
		list := p.Get(v)
		if *list == nil {
			*list = PhotoList{}
		}
	}
}

// SnakeCase converts a camelCase record key to its template column.
func SnakeCase(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
