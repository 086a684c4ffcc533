// Package templates fetches the DOCX template of each report type from the
// configured source.
package templates

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	commonhttp "inspection-workers/internal/common/http"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/common/storage"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/report"
)

// ErrTemplateNotFound is returned when a source has no template for the
// requested report type.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateLoadError reports a template that could not be fetched or is not
// a usable DOCX container.
type TemplateLoadError struct {
	ReportType report.ReportType
	Location   string
	Err        error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("load template for %s from %s: %v", e.ReportType, e.Location, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

// Source returns raw template bytes for a report type.
type Source interface {
	Fetch(ctx context.Context, reportType report.ReportType) ([]byte, error)
	Describe(reportType report.ReportType) string
}

// DefaultFiles are the template file names shipped in templates/.
func DefaultFiles() map[report.ReportType]string {
	return map[report.ReportType]string{
		report.TypeWorkOrder:       "ORDEN_TRABAJO_PLANTILLA.docx",
		report.TypeFieldInspection: "INFORME_CAMPO_PLANTILLA.docx",
		report.TypeFinalInspection: "INFORME_INSPECCION_PLANTILLA.docx",
	}
}

// Files maps report types to template file names.
type Files map[report.ReportType]string

func (f Files) name(t report.ReportType) (string, error) {
	if name, ok := f[t]; ok && name != "" {
		return name, nil
	}
	if name, ok := DefaultFiles()[t]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", report.ErrUnknownReportType, t)
}

// Load fetches and parses the template for reportType. Every failure is a
// *TemplateLoadError.
func Load(ctx context.Context, src Source, reportType report.ReportType) (*docx.Template, error) {
	data, err := src.Fetch(ctx, reportType)
	if err != nil {
		return nil, &TemplateLoadError{ReportType: reportType, Location: src.Describe(reportType), Err: err}
	}
	tpl, err := docx.Parse(data)
	if err != nil {
		return nil, &TemplateLoadError{ReportType: reportType, Location: src.Describe(reportType), Err: err}
	}
	return tpl, nil
}

// ==========================
// File
// ==========================

// FileSource reads templates from a local directory.
type FileSource struct {
	Dir   string
	Files Files
}

func (s *FileSource) Describe(t report.ReportType) string {
	name, err := s.Files.name(t)
	if err != nil {
		return s.Dir
	}
	return filepath.Join(s.Dir, name)
}

func (s *FileSource) Fetch(ctx context.Context, t report.ReportType) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := s.Files.name(t)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil {
		metrics.TemplateFetches.WithLabelValues("file", "error").Inc()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}
	metrics.TemplateFetches.WithLabelValues("file", "ok").Inc()
	return data, nil
}

// ==========================
// HTTP
// ==========================

// HTTPGetter downloads a URL.
type HTTPGetter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// HTTPSource downloads templates from BaseURL/<file>.
type HTTPSource struct {
	Client  HTTPGetter
	BaseURL string
	Files   Files
}

func (s *HTTPSource) url(t report.ReportType) (string, error) {
	name, err := s.Files.name(t)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + url.PathEscape(name), nil
}

func (s *HTTPSource) Describe(t report.ReportType) string {
	u, err := s.url(t)
	if err != nil {
		return s.BaseURL
	}
	return u
}

func (s *HTTPSource) Fetch(ctx context.Context, t report.ReportType) ([]byte, error) {
	u, err := s.url(t)
	if err != nil {
		return nil, err
	}
	data, err := s.Client.GetBytes(ctx, u)
	if err != nil {
		metrics.TemplateFetches.WithLabelValues("http", "error").Inc()
		if errors.Is(err, commonhttp.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
		}
		return nil, err
	}
	metrics.TemplateFetches.WithLabelValues("http", "ok").Inc()
	return data, nil
}

// ==========================
// S3
// ==========================

// ObjectGetter reads an object from the configured bucket.
type ObjectGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Bucket() string
}

// S3Source reads templates from <bucket>/<prefix>/<file>.
type S3Source struct {
	Objects ObjectGetter
	Prefix  string
	Files   Files
}

func (s *S3Source) key(t report.ReportType) (string, error) {
	name, err := s.Files.name(t)
	if err != nil {
		return "", err
	}
	return path.Join(s.Prefix, name), nil
}

func (s *S3Source) Describe(t report.ReportType) string {
	key, _ := s.key(t)
	return "s3://" + s.Objects.Bucket() + "/" + key
}

func (s *S3Source) Fetch(ctx context.Context, t report.ReportType) ([]byte, error) {
	key, err := s.key(t)
	if err != nil {
		return nil, err
	}
	data, err := s.Objects.Get(ctx, key)
	if err != nil {
		metrics.TemplateFetches.WithLabelValues("s3", "error").Inc()
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
		}
		return nil, err
	}
	metrics.TemplateFetches.WithLabelValues("s3", "ok").Inc()
	return data, nil
}
