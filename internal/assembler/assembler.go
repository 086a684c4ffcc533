// Package assembler turns inspection records into deliverable documents
// and imports exported JSON back into records.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/imaging"
	"inspection-workers/internal/report"
	"inspection-workers/internal/report/fieldmap"
	"inspection-workers/internal/sink"
	"inspection-workers/internal/templates"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	FormatDOCX = "docx"
	FormatJSON = "json"

	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeJSON = "application/json"
)

// DefaultConcurrency bounds parallel image preparation.
const DefaultConcurrency = 4

// ErrNoSink is returned by Deliver when no sink is configured.
var ErrNoSink = errors.New("no output sink configured")

// RenderedDocument is a finished export.
type RenderedDocument struct {
	Name        string
	Format      string
	ContentType string
	ReportType  report.ReportType
	Data        []byte
}

// ImagePreparer turns an image reference into embeddable bytes. It never
// fails; unusable references give the empty image.
type ImagePreparer interface {
	Prepare(ctx context.Context, ref string) imaging.EncodedImage
}

type Config struct {
	Concurrency int
	Binder      docx.Options
	// Now is the clock used for file names.
	Now func() time.Time
}

type Assembler struct {
	templates   templates.Source
	images      ImagePreparer
	binder      *docx.Binder
	sink        sink.BlobSink
	concurrency int
	now         func() time.Time
	logger      logger.Logger
	tracer      trace.Tracer
}

// New builds an assembler. out may be nil when documents are not delivered.
func New(src templates.Source, images ImagePreparer, out sink.BlobSink, cfg Config, log logger.Logger) *Assembler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Assembler{
		templates:   src,
		images:      images,
		binder:      docx.NewBinder(cfg.Binder),
		sink:        out,
		concurrency: cfg.Concurrency,
		now:         cfg.Now,
		logger:      log.WithFields(map[string]interface{}{"component": "assembler"}),
		tracer:      otel.Tracer("inspection-workers/assembler"),
	}
}

// ExportDocument renders rec into its DOCX template. No document is
// returned on any failure.
func (a *Assembler) ExportDocument(ctx context.Context, rec report.InspectionRecord) (doc *RenderedDocument, err error) {
	ctx, span := a.tracer.Start(ctx, "assembler.ExportDocument",
		trace.WithAttributes(attribute.String("report.type", string(rec.Type))))
	start := time.Now()
	defer func() {
		a.finish(span, rec.Type, FormatDOCX, start, err)
	}()

	ts, err := fieldmap.ToTemplateSchema(rec)
	if err != nil {
		return nil, err
	}

	tpl, err := templates.Load(ctx, a.templates, rec.Type)
	if err != nil {
		return nil, err
	}

	images, err := a.bindImages(ctx, ts.ImageSlots())
	if err != nil {
		return nil, err
	}

	out, err := a.binder.Render(tpl, docx.Data{Text: ts.TextFields(), Images: images})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc = &RenderedDocument{
		Name:        FileName(rec.Type, rec.ExpedienteNova(), FormatDOCX, a.now()),
		Format:      FormatDOCX,
		ContentType: ContentTypeDOCX,
		ReportType:  rec.Type,
		Data:        out,
	}
	span.SetAttributes(attribute.Int("document.size", len(out)))
	a.logger.Info("document rendered", map[string]interface{}{
		"reportType": rec.Type,
		"name":       doc.Name,
		"size":       len(out),
	})
	return doc, nil
}

// bindImages prepares every slot concurrently. Results land in per-slot
// indices; slots without a reference get the empty image.
func (a *Assembler) bindImages(ctx context.Context, slots []fieldmap.ImageSlot) (map[string]docx.Image, error) {
	prepared := make([]imaging.EncodedImage, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, slot := range slots {
		if slot.Ref == "" || a.images == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prepared[i] = a.images.Prepare(gctx, string(slot.Ref))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	images := make(map[string]docx.Image, len(slots))
	for i, slot := range slots {
		images[slot.Tag] = docx.Image{Data: prepared[i].Data, ContentType: prepared[i].ContentType}
	}
	return images, nil
}

// Deliver hands doc to the configured sink and returns its location.
func (a *Assembler) Deliver(ctx context.Context, doc *RenderedDocument) (string, error) {
	if a.sink == nil {
		return "", ErrNoSink
	}
	if doc == nil {
		return "", fmt.Errorf("deliver: nil document")
	}
	location, err := a.sink.Put(ctx, doc.Name, doc.ContentType, doc.Data)
	if err != nil {
		return "", fmt.Errorf("deliver %s: %w", doc.Name, err)
	}
	a.logger.Info("document delivered", map[string]interface{}{
		"name":     doc.Name,
		"location": location,
	})
	return location, nil
}

func (a *Assembler) finish(span trace.Span, t report.ReportType, format string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	metrics.DocumentsExported.WithLabelValues(string(t), format, status).Inc()
	metrics.DocumentExportDuration.WithLabelValues(string(t), format).Observe(time.Since(start).Seconds())
}

// unsafeNameChars are replaced in the expediente so the sinks keep the whole
// name as one path element.
var unsafeNameChars = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
	"\"", "-", "<", "-", ">", "-", "|", "-",
)

// FileName is {label}_{expediente or Sin_Expediente}_{YYYY-MM-DD}.{format},
// dated in UTC. Path separators and other characters not allowed in file
// names become "-".
func FileName(t report.ReportType, expediente, format string, now time.Time) string {
	expediente = strings.TrimSpace(unsafeNameChars.Replace(expediente))
	if expediente == "" {
		expediente = "Sin_Expediente"
	}
	return fmt.Sprintf("%s_%s_%s.%s", t.Label(), expediente, now.UTC().Format("2006-01-02"), format)
}
