package imaging

import (
	"bytes"
	"context"
	"fmt"

	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
)

// Options bound the normalized output.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

func DefaultOptions() Options {
	return Options{MaxWidth: 500, MaxHeight: 300, Quality: 0.7}
}

// EncodedImage is a normalized JPEG. The zero value is the empty image.
type EncodedImage struct {
	Data        []byte
	Size        Size
	ContentType string
}

func (e EncodedImage) Empty() bool {
	return len(e.Data) == 0
}

// DecodeError reports data that could not be decoded or re-encoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Normalizer resolves image references into bounded JPEGs.
type Normalizer struct {
	codec   Codec
	fetcher Fetcher
	opts    Options
	logger  logger.Logger
}

func NewNormalizer(codec Codec, fetcher Fetcher, opts Options, log logger.Logger) *Normalizer {
	defaults := DefaultOptions()
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaults.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = defaults.MaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 1 {
		opts.Quality = defaults.Quality
	}
	if codec == nil {
		codec = DefaultCodec{}
	}
	return &Normalizer{
		codec:   codec,
		fetcher: fetcher,
		opts:    opts,
		logger:  log,
	}
}

// Prepare fetches and normalizes ref. It never fails: fetch and decode
// problems are logged and produce the empty image.
func (n *Normalizer) Prepare(ctx context.Context, ref string) EncodedImage {
	if ref == "" {
		metrics.ImagesPrepared.WithLabelValues("empty").Inc()
		return EncodedImage{}
	}

	data, err := n.fetch(ctx, ref)
	if err != nil {
		metrics.ImagesPrepared.WithLabelValues("fetch_error").Inc()
		n.logger.Warn("Image fetch failed, leaving slot empty", map[string]interface{}{
			"ref":   shortRef(ref),
			"error": err.Error(),
		})
		return EncodedImage{}
	}

	img, err := n.Normalize(data)
	if err != nil {
		metrics.ImagesPrepared.WithLabelValues("decode_error").Inc()
		n.logger.Warn("Image decode failed, leaving slot empty", map[string]interface{}{
			"ref":   shortRef(ref),
			"bytes": len(data),
			"error": err.Error(),
		})
		return EncodedImage{}
	}

	metrics.ImagesPrepared.WithLabelValues("ok").Inc()
	return img
}

func (n *Normalizer) fetch(ctx context.Context, ref string) ([]byte, error) {
	if n.fetcher == nil {
		return nil, ErrUnsupportedRef
	}
	data, err := n.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	return data, nil
}

// Normalize decodes data, downscales it into the configured box and
// re-encodes it as JPEG. Failures are *DecodeError.
func (n *Normalizer) Normalize(data []byte) (EncodedImage, error) {
	src, _, err := n.codec.Decode(data)
	if err != nil {
		return EncodedImage{}, &DecodeError{Err: err}
	}
	b := src.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), n.opts.MaxWidth, n.opts.MaxHeight)
	if w == 0 || h == 0 {
		return EncodedImage{}, &DecodeError{Err: fmt.Errorf("empty raster")}
	}

	var buf bytes.Buffer
	if err := n.codec.Encode(&buf, n.codec.Resize(src, w, h), n.opts.Quality); err != nil {
		return EncodedImage{}, &DecodeError{Err: err}
	}
	return EncodedImage{
		Data:        buf.Bytes(),
		Size:        Size{Width: w, Height: h},
		ContentType: "image/jpeg",
	}, nil
}

func shortRef(ref string) string {
	const limit = 60
	if len(ref) <= limit {
		return ref
	}
	return ref[:limit] + "..."
}
