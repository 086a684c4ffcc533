package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"inspection-workers/internal/imaging"

	"github.com/klauspost/compress/zip"
)

// Options configure placeholder resolution and image placement.
type Options struct {
	// NullGetter renders undefined tags as empty instead of failing.
	NullGetter   bool
	ImagePrefix  string
	CellWidthCm  float64
	CellHeightCm float64
	PxPerCm      float64
}

func DefaultOptions() Options {
	return Options{
		NullGetter:   true,
		ImagePrefix:  "%",
		CellWidthCm:  8.8,
		CellHeightCm: 5.8,
		PxPerCm:      37.7952755906,
	}
}

// Image is prepared image data for an image tag. Empty Data renders
// nothing.
type Image struct {
	Data        []byte
	ContentType string
}

// Data is everything a template can reference.
type Data struct {
	Text   map[string]string
	Images map[string]Image
}

// Binder renders templates. It is safe for concurrent use.
type Binder struct {
	opts Options
}

func NewBinder(opts Options) *Binder {
	if opts.ImagePrefix == "" {
		opts.ImagePrefix = "%"
	}
	defaults := DefaultOptions()
	if opts.CellWidthCm <= 0 {
		opts.CellWidthCm = defaults.CellWidthCm
	}
	if opts.CellHeightCm <= 0 {
		opts.CellHeightCm = defaults.CellHeightCm
	}
	if opts.PxPerCm <= 0 {
		opts.PxPerCm = defaults.PxPerCm
	}
	return &Binder{opts: opts}
}

var contentPart = regexp.MustCompile(`^word/(document|header[0-9]*|footer[0-9]*)\.xml$`)

// IsContentPart reports whether placeholders in name are substituted.
func IsContentPart(name string) bool {
	return contentPart.MatchString(name)
}

// render holds the state of one Render call.
type render struct {
	opts     Options
	tpl      *Template
	data     Data
	errs     []TagError
	media    []entry
	rels     map[string][]relationship
	types    map[string]string
	drawings int
}

// Render substitutes data into tpl and returns the new container. All tag
// problems are reported together as a *RenderError and no output is
// produced in that case.
func (b *Binder) Render(tpl *Template, data Data) ([]byte, error) {
	if tpl == nil {
		return nil, fmt.Errorf("%w: nil template", ErrInvalidTemplate)
	}
	r := &render{
		opts:  b.opts,
		tpl:   tpl,
		data:  data,
		rels:  map[string][]relationship{},
		types: map[string]string{},
	}

	parts := map[string][]byte{}
	for _, e := range tpl.entries {
		if !IsContentPart(e.name) {
			continue
		}
		out, changed := r.renderPart(e.name, string(e.data))
		if changed {
			parts[e.name] = []byte(out)
		}
	}
	if len(r.errs) > 0 {
		return nil, &RenderError{Errors: r.errs}
	}

	var added []entry
	for _, part := range sortedParts(r.rels) {
		relsName := relsPartName(part)
		existing, _ := tpl.Part(relsName)
		patched := addRelationships(existing, r.rels[part])
		if _, ok := tpl.index[relsName]; ok {
			parts[relsName] = patched
		} else {
			added = append(added, entry{name: relsName, method: zip.Deflate, data: patched})
		}
	}
	if len(r.types) > 0 {
		if existing, ok := tpl.Part(contentTypes); ok {
			parts[contentTypes] = addContentTypeDefaults(existing, r.types)
		}
	}
	added = append(added, r.media...)

	return tpl.writeContainer(parts, added)
}

// renderPart substitutes the tags of one XML part.
func (r *render) renderPart(part, doc string) (string, bool) {
	type splice struct {
		start, end int
		xml        string
	}
	var splices []splice

	for _, para := range scanParagraphs(doc) {
		var text strings.Builder
		bounds := make([][2]int, len(para))
		for i, n := range para {
			bounds[i][0] = text.Len()
			text.WriteString(n.text)
			bounds[i][1] = text.Len()
		}
		full := text.String()
		if !strings.Contains(full, "{") && !strings.Contains(full, "}") {
			continue
		}

		tags, issues := parsePlaceholders(full)
		for _, is := range issues {
			r.errs = append(r.errs, TagError{Tag: is.tag, Reason: is.reason, Part: part, Context: excerpt(full, is.pos)})
		}
		if len(tags) == 0 {
			continue
		}

		replacements := make([]string, len(tags))
		for i, tag := range tags {
			replacements[i] = r.resolve(part, tag, full)
		}

		for i, n := range para {
			start, end := bounds[i][0], bounds[i][1]
			if start == end {
				continue
			}
			touched := false
			var b strings.Builder
			cursor := start
			for j, tag := range tags {
				if tag.end <= start || tag.start >= end {
					continue
				}
				touched = true
				if tag.start > cursor {
					b.WriteString(escapeText(full[cursor:tag.start]))
				}
				// the replacement goes into the node holding the opening delimiter
				if tag.start >= start {
					b.WriteString(replacements[j])
				}
				cursor = min(tag.end, end)
			}
			if !touched {
				continue
			}
			if cursor < end {
				b.WriteString(escapeText(full[cursor:end]))
			}
			splices = append(splices, splice{
				start: n.elemStart,
				end:   n.elemEnd,
				xml:   `<w:t xml:space="preserve">` + b.String() + `</w:t>`,
			})
		}
	}

	if len(splices) == 0 {
		return doc, false
	}
	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var out strings.Builder
	out.Grow(len(doc))
	last := 0
	for _, s := range splices {
		out.WriteString(doc[last:s.start])
		out.WriteString(s.xml)
		last = s.end
	}
	out.WriteString(doc[last:])
	return out.String(), true
}

// resolve returns the XML fragment for one tag, recording errors for
// undefined tags when the null getter is off.
func (r *render) resolve(part string, tag placeholder, full string) string {
	if strings.HasPrefix(tag.name, r.opts.ImagePrefix) {
		key := strings.TrimSpace(strings.TrimPrefix(tag.name, r.opts.ImagePrefix))
		if key == "" {
			r.errs = append(r.errs, TagError{Tag: tag.name, Reason: ReasonEmptyTag, Part: part, Context: excerpt(full, tag.start)})
			return ""
		}
		img, ok := r.data.Images[key]
		if !ok {
			if !r.opts.NullGetter {
				r.errs = append(r.errs, TagError{Tag: tag.name, Reason: ReasonUndefinedImage, Part: part, Context: excerpt(full, tag.start)})
			}
			return ""
		}
		if len(img.Data) == 0 {
			return ""
		}
		return r.embed(part, key, img)
	}

	value, ok := r.data.Text[tag.name]
	if !ok {
		if !r.opts.NullGetter {
			r.errs = append(r.errs, TagError{Tag: tag.name, Reason: ReasonUndefinedTag, Part: part, Context: excerpt(full, tag.start)})
		}
		return ""
	}
	return textXML(value)
}

// embed registers a media part and returns the inline drawing for it.
func (r *render) embed(part, key string, img Image) string {
	r.drawings++
	n := r.drawings
	ext, contentType := imageExtension(img.ContentType, img.Data)

	mediaName := fmt.Sprintf("word/media/inspeccion_img%d.%s", n, ext)
	for r.hasEntry(mediaName) {
		n += 1000
		mediaName = fmt.Sprintf("word/media/inspeccion_img%d.%s", n, ext)
	}
	relID := fmt.Sprintf("rIdInsp%d", n)

	r.media = append(r.media, entry{name: mediaName, method: zip.Store, data: img.Data})
	target, _ := relTarget(part, mediaName)
	r.rels[part] = append(r.rels[part], relationship{id: relID, target: target})
	r.types[ext] = contentType

	cx, cy := r.opts.extent(imaging.Measure(img.Data))
	return drawingXML(firstDrawingID+r.drawings, key, relID, cx, cy)
}

func (r *render) hasEntry(name string) bool {
	if _, ok := r.tpl.index[name]; ok {
		return true
	}
	for _, m := range r.media {
		if m.name == name {
			return true
		}
	}
	return false
}

// relTarget is mediaName relative to the directory of part.
func relTarget(part, mediaName string) (string, bool) {
	dir := path.Dir(part) + "/"
	if strings.HasPrefix(mediaName, dir) {
		return strings.TrimPrefix(mediaName, dir), true
	}
	return "/" + mediaName, false
}

func sortedParts(m map[string][]relationship) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// textXML escapes a value for <w:t> content; newlines become breaks.
func textXML(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = escapeText(line)
	}
	return strings.Join(lines, `</w:t><w:br/><w:t xml:space="preserve">`)
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
