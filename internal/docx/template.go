// Package docx fills WordprocessingML templates: {{key}} text tags and
// {{%KEY}} image tags are substituted and a new container is written.
package docx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// MainPart is the body of a WordprocessingML package.
const MainPart = "word/document.xml"

const (
	maxEntrySize = 64 << 20
	maxTotalSize = 256 << 20
)

// ErrInvalidTemplate is returned for data that is not a usable DOCX
// container.
var ErrInvalidTemplate = errors.New("invalid docx template")

type entry struct {
	name     string
	method   uint16
	modified time.Time
	comment  string
	data     []byte
}

// Template is a parsed, immutable DOCX container.
type Template struct {
	entries []entry
	index   map[string]int
}

// Parse reads a DOCX container into memory.
func Parse(data []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	t := &Template{index: make(map[string]int, len(zr.File))}
	var total int64
	for _, f := range zr.File {
		if _, dup := t.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %s", ErrInvalidTemplate, f.Name)
		}
		body, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, f.Name, err)
		}
		total += int64(len(body))
		if total > maxTotalSize {
			return nil, fmt.Errorf("%w: uncompressed size exceeds %d bytes", ErrInvalidTemplate, maxTotalSize)
		}

		method := f.Method
		if method != zip.Store && method != zip.Deflate {
			method = zip.Deflate
		}
		t.index[f.Name] = len(t.entries)
		t.entries = append(t.entries, entry{
			name:     f.Name,
			method:   method,
			modified: f.Modified,
			comment:  f.Comment,
			data:     body,
		})
	}

	if _, ok := t.index[MainPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidTemplate, MainPart)
	}
	return t, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxEntrySize {
		return nil, fmt.Errorf("entry exceeds %d bytes", maxEntrySize)
	}
	return body, nil
}

// Names lists the container entries in their original order.
func (t *Template) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.name
	}
	return names
}

// Part returns a copy of an entry's content.
func (t *Template) Part(name string) ([]byte, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return bytes.Clone(t.entries[i].data), true
}

// writeContainer serializes entries in order. Replaced content comes from
// parts, new entries from added, both keyed by name.
func (t *Template) writeContainer(parts map[string][]byte, added []entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(e entry, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   e.method,
			Modified: e.modified,
			Comment:  e.comment,
		})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	for _, e := range t.entries {
		data := e.data
		if replaced, ok := parts[e.name]; ok {
			data = replaced
		}
		if err := write(e, data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	for _, e := range added {
		if err := write(e, e.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close container: %w", err)
	}
	return buf.Bytes(), nil
}
