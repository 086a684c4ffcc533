package assembler

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/imaging"
	"inspection-workers/internal/report"
	"inspection-workers/internal/report/fieldmap"
	"inspection-workers/internal/sink"
	"inspection-workers/internal/templates"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

type memorySource map[report.ReportType][]byte

func (m memorySource) Fetch(ctx context.Context, t report.ReportType) ([]byte, error) {
	data, ok := m[t]
	if !ok {
		return nil, templates.ErrTemplateNotFound
	}
	return data, nil
}

func (m memorySource) Describe(t report.ReportType) string { return "memory://" + string(t) }

type memorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *memorySink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[name] = data
	return "memory://" + name, nil
}

func paragraph(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func buildTemplate(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`},
		{"word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + strings.Join(paragraphs, "") + `</w:body></w:document>`},
		{"word/_rels/document.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = body
	}
	return out
}

func pngDataURL(t *testing.T, w, h int) report.ImageRef {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 10 {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return report.ImageRef(imaging.EncodeDataURL("image/png", buf.Bytes()))
}

func createTestAssembler(t *testing.T, src templates.Source, images ImagePreparer, out *memorySink) *Assembler {
	t.Helper()
	log := logger.NewTestLogger(t)
	if images == nil {
		images = imaging.NewNormalizer(imaging.DefaultCodec{}, &imaging.Resolver{}, imaging.DefaultOptions(), log)
	}
	var s sink.BlobSink
	if out != nil {
		s = out
	}
	return New(src, images, s, Config{Binder: docx.DefaultOptions(), Now: func() time.Time { return fixedNow }}, log)
}

func mustSchema(t *testing.T, rec report.InspectionRecord) *fieldmap.TemplateSchema {
	t.Helper()
	ts, err := fieldmap.ToTemplateSchema(rec)
	require.NoError(t, err)
	return ts
}

// sampleFinalInspection is the reference record used across tests.
func sampleFinalInspection(t *testing.T) report.InspectionRecord {
	f := report.NewFinalInspection()
	f.ExpedienteNova = "NC-CU-07215-25"
	f.ExpedienteCliente = "CLI-889"
	f.FechaInspeccion = "2025-06-02"
	f.Mercancia = "Naranjas Valencia Late"
	f.NumeroContrato = "C-2025/114"
	f.ViaTransporte["maritima"] = true
	f.TipoCarga["contenedor"] = true
	f.NumeroContenedores = "2"
	f.TipoContenedor = "40' Reefer"
	f.NumeracionContenedores = "MSCU1234567\nMSCU7654321"
	f.PrecintosNova = "NV-0091, NV-0092"
	f.Puertos = "Valencia - Santos"
	f.VendedorEmpresa = "Cítricos del Sur S.L."
	f.CompradorEmpresa = "Frutas & Hortalizas Ltda."
	f.LugarInspeccion = "Almacén Alzira"
	f.Alcance["conteoBultos"] = report.TriYes
	f.Alcance["aperturaBultos"] = report.TriNo
	f.Alcance["tomaMuestras"] = report.TriNA
	f.RevisionContenedores["limpios"] = true
	f.RevisionContenedores["sinOxido"] = true
	f.NumeroBultos = "1.920 cajas"
	f.EmbalajeTipo["caja"] = true
	f.EmbalajeMaterial["carton"] = true
	f.EmbalajeMaterial["madera"] = true
	f.EmbalajePresentation["paletizado"] = true
	f.SenalesInternacionales = true
	f.MarcasDetalle = "Late / Cat. I / Calibre 3"
	f.Conclusiones = "Carga conforme."
	f.LugarFecha = "Valencia, 2 de junio de 2025"
	f.BultosFotos = report.PhotoList{"https://fotos.example.com/bultos-1.jpg", "s3://fotos/bultos-2.jpg"}
	f.PrecintadoFotos = report.PhotoList{"data:image/jpeg;base64,/9j/"}
	return report.NewFinalInspectionRecord(f)
}

// ==========================
// ExportDocument
// ==========================

func TestAssembler_ExportDocument(t *testing.T) {
	src := memorySource{report.TypeFinalInspection: buildTemplate(t,
		paragraph("Expediente {{expediente_nova}}"),
		paragraph("Via: {{via_transporte}} / Señales: {{senales_internacionales}}"),
		paragraph("Conteo: {{alcance_conteo_bultos}} Apertura: {{alcance_apertura_bultos}}"),
		paragraph("Sin dato: [{{no_existe}}]"),
		paragraph("{{%MERCANCIA_1}}"),
		paragraph("{{%MERCANCIA_2}}"),
		paragraph("{{%MARCAS_1}}"),
		paragraph("{{%CONTENEDOR_4}}"),
	)}

	rec := sampleFinalInspection(t)
	rec.FinalInspection.BultosFotos = report.PhotoList{pngDataURL(t, 1200, 900)}
	rec.FinalInspection.MarcasFotos = report.PhotoList{"data:image/png;base64,AAAA"}

	a := createTestAssembler(t, src, nil, nil)
	doc, err := a.ExportDocument(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, "Informe_Final_NC-CU-07215-25_2025-06-02.docx", doc.Name)
	assert.Equal(t, FormatDOCX, doc.Format)
	assert.Equal(t, ContentTypeDOCX, doc.ContentType)
	assert.Equal(t, report.TypeFinalInspection, doc.ReportType)

	entries := readEntries(t, doc.Data)
	body := string(entries["word/document.xml"])
	assert.Contains(t, body, "Expediente NC-CU-07215-25")
	assert.Contains(t, body, "Via: Marítima / Señales: Sí")
	assert.Contains(t, body, "Conteo: SI Apertura: NO")
	assert.Contains(t, body, "Sin dato: []")
	assert.Equal(t, 1, strings.Count(body, "<w:drawing>"))

	media, ok := entries["word/media/inspeccion_img1.jpeg"]
	require.True(t, ok)
	size := imaging.Measure(media)
	assert.Equal(t, imaging.Size{Width: 400, Height: 300}, size)
	assert.Contains(t, string(entries["[Content_Types].xml"]), `Extension="jpeg"`)
}

func TestAssembler_ExportDocument_AllReportTypes(t *testing.T) {
	tpl := buildTemplate(t, paragraph("{{tipo_informe}} {{expediente_nova}}"))
	src := memorySource{
		report.TypeWorkOrder:       tpl,
		report.TypeFieldInspection: tpl,
		report.TypeFinalInspection: tpl,
	}
	a := createTestAssembler(t, src, nil, nil)

	w := report.NewWorkOrder()
	w.ExpedienteNova = "NC-1"
	f := report.NewFieldInspection()

	tests := []struct {
		rec      report.InspectionRecord
		wantName string
		wantText string
	}{
		{report.NewWorkOrderRecord(w), "Orden_Trabajo_NC-1_2025-06-02.docx", "work_order NC-1"},
		{report.NewFieldInspectionRecord(f), "Informe_Campo_Sin_Expediente_2025-06-02.docx", "field_inspection "},
		{sampleFinalInspection(t), "Informe_Final_NC-CU-07215-25_2025-06-02.docx", "final_inspection NC-CU-07215-25"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rec.Type), func(t *testing.T) {
			doc, err := a.ExportDocument(context.Background(), tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, doc.Name)
			assert.Contains(t, string(readEntries(t, doc.Data)["word/document.xml"]), tt.wantText)
		})
	}
}

func TestAssembler_ExportDocument_Errors(t *testing.T) {
	t.Run("template missing", func(t *testing.T) {
		a := createTestAssembler(t, memorySource{}, nil, nil)
		doc, err := a.ExportDocument(context.Background(), sampleFinalInspection(t))
		assert.Nil(t, doc)
		var loadErr *templates.TemplateLoadError
		require.True(t, errors.As(err, &loadErr))
		assert.True(t, errors.Is(err, templates.ErrTemplateNotFound))
	})

	t.Run("template is not a docx", func(t *testing.T) {
		a := createTestAssembler(t, memorySource{report.TypeFinalInspection: []byte("PK?")}, nil, nil)
		_, err := a.ExportDocument(context.Background(), sampleFinalInspection(t))
		var loadErr *templates.TemplateLoadError
		require.True(t, errors.As(err, &loadErr))
		assert.True(t, errors.Is(err, docx.ErrInvalidTemplate))
	})

	t.Run("malformed tags", func(t *testing.T) {
		src := memorySource{report.TypeFinalInspection: buildTemplate(t, paragraph("{{expediente_nova"), paragraph("{{}}"))}
		a := createTestAssembler(t, src, nil, nil)
		doc, err := a.ExportDocument(context.Background(), sampleFinalInspection(t))
		assert.Nil(t, doc)
		var renderErr *docx.RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Len(t, renderErr.Errors, 2)
		var loadErr *templates.TemplateLoadError
		assert.False(t, errors.As(err, &loadErr))
	})

	t.Run("record body missing", func(t *testing.T) {
		a := createTestAssembler(t, memorySource{}, nil, nil)
		_, err := a.ExportDocument(context.Background(), report.InspectionRecord{Type: report.TypeWorkOrder})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		src := memorySource{report.TypeFinalInspection: buildTemplate(t, paragraph("{{%MERCANCIA_1}}"))}
		a := createTestAssembler(t, src, nil, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		doc, err := a.ExportDocument(ctx, sampleFinalInspection(t))
		assert.Nil(t, doc)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

type slowPreparer struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
}

func (p *slowPreparer) Prepare(ctx context.Context, ref string) imaging.EncodedImage {
	p.calls.Add(1)
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if n <= seen || p.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return imaging.EncodedImage{}
}

func TestAssembler_BindImages_Concurrency(t *testing.T) {
	prep := &slowPreparer{}
	a := createTestAssembler(t, memorySource{}, prep, nil)
	a.concurrency = 2

	rec := sampleFinalInspection(t)
	rec.FinalInspection.BultosFotos = report.PhotoList{"a", "b", "c", "d", "e"}
	rec.FinalInspection.MarcasFotos = report.PhotoList{"f", "g", "h", "i"}
	rec.FinalInspection.PrecintadoFotos = report.PhotoList{"j", "k", "l", "m"}
	ts := mustSchema(t, rec)

	images, err := a.bindImages(context.Background(), ts.ImageSlots())
	require.NoError(t, err)
	assert.Len(t, images, 12)
	assert.Equal(t, int32(12), prep.calls.Load())
	assert.LessOrEqual(t, prep.maxSeen.Load(), int32(2))
}

// ==========================
// JSON export / import
// ==========================

func TestAssembler_JSONRoundTrip(t *testing.T) {
	a := createTestAssembler(t, memorySource{}, nil, nil)
	rec := sampleFinalInspection(t)

	doc, err := a.ExportJSON(rec)
	require.NoError(t, err)
	assert.Equal(t, "Informe_Final_NC-CU-07215-25_2025-06-02.json", doc.Name)
	assert.Equal(t, ContentTypeJSON, doc.ContentType)
	assert.Contains(t, string(doc.Data), "\n  \"expediente_nova\": \"NC-CU-07215-25\"")
	assert.Contains(t, string(doc.Data), `"tipo_informe": "final_inspection"`)

	back, err := a.ImportDocument(doc.Data)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembler_ImportDocument(t *testing.T) {
	a := createTestAssembler(t, memorySource{}, nil, nil)

	tests := []struct {
		name       string
		raw        string
		wantType   report.ReportType
		wantReason string
	}{
		{name: "missing type defaults to final", raw: `{"expediente_nova": "NC-9"}`, wantType: report.TypeFinalInspection},
		{name: "work order", raw: `{"tipo_informe": "work_order", "buque": "Aurora"}`, wantType: report.TypeWorkOrder},
		{name: "string photos", raw: `{"fotos": {"mercancia": ["a.jpg"]}}`, wantType: report.TypeFinalInspection},
		{name: "malformed json", raw: `{"expediente_nova": `, wantReason: "malformed JSON"},
		{name: "not an object", raw: `["a"]`, wantReason: "document does not match the template schema"},
		{name: "photos not a map", raw: `{"fotos": ["a.jpg"]}`, wantReason: "document does not match the template schema"},
		{name: "photo entry wrong type", raw: `{"fotos": {"marcas": [42]}}`, wantReason: "document does not match the template schema"},
		{name: "type not a string", raw: `{"tipo_informe": 3}`, wantReason: "document does not match the template schema"},
		{name: "unknown type", raw: `{"tipo_informe": "acta"}`, wantReason: "unknown report type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := a.ImportDocument([]byte(tt.raw))
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantType, rec.Type)
				require.NoError(t, rec.Validate())
				return
			}
			var importErr *ImportError
			require.True(t, errors.As(err, &importErr), "got %v", err)
			assert.Equal(t, tt.wantReason, importErr.Reason)
		})
	}
}

func TestAssembler_ImportDocumentAs(t *testing.T) {
	a := createTestAssembler(t, memorySource{}, nil, nil)

	_, err := a.ImportDocumentAs([]byte(`{"tipo_informe": "work_order"}`), report.TypeWorkOrder)
	assert.NoError(t, err)

	_, err = a.ImportDocumentAs([]byte(`{"tipo_informe": "work_order"}`), report.TypeFieldInspection)
	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Contains(t, importErr.Error(), "expected field_inspection")
}

// ==========================
// Delivery and naming
// ==========================

func TestAssembler_Deliver(t *testing.T) {
	out := &memorySink{}
	a := createTestAssembler(t, memorySource{}, nil, out)

	doc, err := a.ExportJSON(sampleFinalInspection(t))
	require.NoError(t, err)

	loc, err := a.Deliver(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+doc.Name, loc)
	assert.Equal(t, doc.Data, out.files[doc.Name])

	_, err = createTestAssembler(t, memorySource{}, nil, nil).Deliver(context.Background(), doc)
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestAssembler_Deliver_SlashedExpediente(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewTestLogger(t)
	images := imaging.NewNormalizer(imaging.DefaultCodec{}, &imaging.Resolver{}, imaging.DefaultOptions(), log)
	a := New(memorySource{}, images, &sink.FileSink{Dir: dir},
		Config{Binder: docx.DefaultOptions(), Now: func() time.Time { return fixedNow }}, log)

	rec := sampleFinalInspection(t)
	rec.SetExpedienteNova("NC/CU/07215-25")

	doc, err := a.ExportJSON(rec)
	require.NoError(t, err)

	loc, err := a.Deliver(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Informe_Final_NC-CU-07215-25_2025-06-02.json"), loc)
	assert.FileExists(t, loc)
}

func TestFileName(t *testing.T) {
	late := time.Date(2025, 6, 2, 23, 30, 0, 0, time.FixedZone("CEST", -2*3600))

	tests := []struct {
		name       string
		reportType report.ReportType
		expediente string
		format     string
		now        time.Time
		want       string
	}{
		{"work order", report.TypeWorkOrder, "NC-1", FormatDOCX, fixedNow, "Orden_Trabajo_NC-1_2025-06-02.docx"},
		{"field inspection json", report.TypeFieldInspection, "NC-2", FormatJSON, fixedNow, "Informe_Campo_NC-2_2025-06-02.json"},
		{"no expediente", report.TypeFinalInspection, "", FormatDOCX, fixedNow, "Informe_Final_Sin_Expediente_2025-06-02.docx"},
		{"dated in UTC", report.TypeFinalInspection, "NC-3", FormatDOCX, late, "Informe_Final_NC-3_2025-06-03.docx"},
		{"slashes in expediente", report.TypeFinalInspection, "NC/CU/07215-25", FormatDOCX, fixedNow, "Informe_Final_NC-CU-07215-25_2025-06-02.docx"},
		{"backslash and reserved chars", report.TypeWorkOrder, `NC\1:"a"?<b>|*`, FormatJSON, fixedNow, "Orden_Trabajo_NC-1--a---b---_2025-06-02.json"},
		{"blank expediente", report.TypeFieldInspection, "   ", FormatDOCX, fixedNow, "Informe_Campo_Sin_Expediente_2025-06-02.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.reportType, tt.expediente, tt.format, tt.now))
		})
	}
}
