package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedRef = errors.New("unsupported image reference")
	ErrInvalidDataURL = errors.New("invalid data URL")
)

// Fetcher turns an image reference into raw encoded bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPGetter downloads a URL.
type HTTPGetter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// ObjectReader reads an object from a named bucket.
type ObjectReader interface {
	GetFrom(ctx context.Context, bucket, key string) ([]byte, error)
}

// Resolver fetches data URLs, http(s) URLs, s3://bucket/key objects and
// local files. A nil HTTP or Objects disables that scheme and local files
// are only read below BaseDir.
type Resolver struct {
	HTTP    HTTPGetter
	Objects ObjectReader
	BaseDir string
}

func (r *Resolver) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(ref, "data:"):
		return DecodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if r.HTTP == nil {
			return nil, fmt.Errorf("%w: http fetching disabled", ErrUnsupportedRef)
		}
		return r.HTTP.GetBytes(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		if r.Objects == nil {
			return nil, fmt.Errorf("%w: object storage not configured", ErrUnsupportedRef)
		}
		bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
		}
		return r.Objects.GetFrom(ctx, bucket, key)
	}
	return r.readLocal(strings.TrimPrefix(ref, "file://"))
}

func (r *Resolver) readLocal(path string) ([]byte, error) {
	if r.BaseDir == "" {
		return nil, fmt.Errorf("%w: local files disabled", ErrUnsupportedRef)
	}
	base, err := filepath.Abs(r.BaseDir)
	if err != nil {
		return nil, err
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is outside %s", ErrUnsupportedRef, path, base)
	}
	return os.ReadFile(full)
}

// DecodeDataURL returns the payload of a data: URL, either base64 or
// percent-encoded.
func DecodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\n', '\r', '\t':
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return []byte(data), nil
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
