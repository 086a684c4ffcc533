// Package imaging measures, fetches and normalizes report photos before they
// are embedded in documents.
package imaging

import (
	"bytes"
	"encoding/binary"
)

// Size is a pixel size. The zero value means unknown.
type Size struct {
	Width  int
	Height int
}

func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Measure reads the pixel size of PNG and JPEG data from their headers
// without decoding. Any other input, including truncated data, yields
// Size{}.
func Measure(b []byte) (size Size) {
	defer func() {
		if recover() != nil {
			size = Size{}
		}
	}()

	switch {
	case bytes.HasPrefix(b, pngSignature):
		return measurePNG(b)
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8:
		return measureJPEG(b)
	}
	return Size{}
}

// measurePNG reads the IHDR width and height at offsets 16 and 20.
func measurePNG(b []byte) Size {
	if len(b) < 24 {
		return Size{}
	}
	w := binary.BigEndian.Uint32(b[16:20])
	h := binary.BigEndian.Uint32(b[20:24])
	if w == 0 || h == 0 || w > 1<<31-1 || h > 1<<31-1 {
		return Size{}
	}
	return Size{Width: int(w), Height: int(h)}
}

func isSOF(marker uint16) bool {
	switch {
	case marker >= 0xFFC0 && marker <= 0xFFC3,
		marker >= 0xFFC5 && marker <= 0xFFC7,
		marker >= 0xFFC9 && marker <= 0xFFCB,
		marker >= 0xFFCD && marker <= 0xFFCF:
		return true
	}
	return false
}

// measureJPEG walks the marker segments after SOI until the first
// start-of-frame segment.
func measureJPEG(b []byte) Size {
	i := 2
	for i+4 <= len(b) {
		marker := binary.BigEndian.Uint16(b[i:])
		if marker>>8 != 0xFF {
			return Size{}
		}
		length := int(binary.BigEndian.Uint16(b[i+2:]))
		if isSOF(marker) {
			// length(2) precision(1) height(2) width(2)
			if i+9 > len(b) {
				return Size{}
			}
			h := binary.BigEndian.Uint16(b[i+5:])
			w := binary.BigEndian.Uint16(b[i+7:])
			return Size{Width: int(w), Height: int(h)}
		}
		if length < 2 {
			return Size{}
		}
		i += 2 + length
	}
	return Size{}
}
