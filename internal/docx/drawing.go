package docx

import (
	"fmt"
	"maps"
	"math"
	"net/http"
	"path"
	"slices"
	"strings"

	"inspection-workers/internal/imaging"
)

// EMUPerCm is the number of English Metric Units in one centimetre.
const EMUPerCm = 360000

const (
	relTypeImage   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relsNamespace  = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypes   = "[Content_Types].xml"
	firstDrawingID = 5000
)

// extent returns the drawing size in EMU for an image of size px, scaled
// down into the cell box. Unknown sizes fill the box.
func (o Options) extent(size imaging.Size) (int64, int64) {
	boxW, boxH := o.CellWidthCm, o.CellHeightCm
	if !size.Known() || o.PxPerCm <= 0 {
		return emu(boxW), emu(boxH)
	}
	wcm := float64(size.Width) / o.PxPerCm
	hcm := float64(size.Height) / o.PxPerCm
	scale := math.Min(math.Min(boxW/wcm, boxH/hcm), 1)
	return emu(wcm * scale), emu(hcm * scale)
}

func emu(cm float64) int64 {
	return int64(math.Round(cm * EMUPerCm))
}

// imageExtension picks the media file extension for data.
func imageExtension(contentType string, data []byte) (string, string) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	switch contentType {
	case "image/png":
		return "png", contentType
	case "image/gif":
		return "gif", contentType
	case "image/bmp":
		return "bmp", contentType
	case "image/webp":
		return "webp", contentType
	}
	return "jpeg", "image/jpeg"
}

// drawingXML is an inline picture. It closes and reopens the surrounding
// <w:t> so it can be spliced into text content.
func drawingXML(id int, name, relID string, cx, cy int64) string {
	return fmt.Sprintf(`</w:t><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%[4]d" cy="%[5]d"/>`+
		`<wp:effectExtent l="0" t="0" r="0" b="0"/>`+
		`<wp:docPr id="%[1]d" name="%[2]s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%[1]d" name="%[2]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[3]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[4]d" cy="%[5]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline>`+
		`</w:drawing><w:t xml:space="preserve">`,
		id, escapeAttr(name), relID, cx, cy)
}

// relsPartName returns the relationships part of an XML part, e.g.
// word/_rels/document.xml.rels.
func relsPartName(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

type relationship struct {
	id     string
	target string
}

// addRelationships appends image relationships to an existing rels part,
// or creates one.
func addRelationships(existing []byte, rels []relationship) []byte {
	var b strings.Builder
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, relTypeImage, escapeAttr(r.target))
	}
	if len(existing) == 0 {
		return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Relationships xmlns="` + relsNamespace + `">` + b.String() + `</Relationships>`)
	}
	return insertBefore(existing, "</Relationships>", b.String())
}

// addContentTypeDefaults registers extensions missing from
// [Content_Types].xml.
func addContentTypeDefaults(existing []byte, types map[string]string) []byte {
	doc := string(existing)
	lower := strings.ToLower(doc)
	var b strings.Builder
	for _, ext := range slices.Sorted(maps.Keys(types)) {
		if strings.Contains(lower, `extension="`+ext+`"`) {
			continue
		}
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, ext, types[ext])
	}
	if b.Len() == 0 {
		return existing
	}
	return insertBefore(existing, "</Types>", b.String())
}

func insertBefore(doc []byte, closing, fragment string) []byte {
	s := string(doc)
	i := strings.LastIndex(s, closing)
	if i < 0 {
		return doc
	}
	return []byte(s[:i] + fragment + s[i:])
}

func escapeAttr(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
