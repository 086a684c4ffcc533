// Package sink delivers rendered documents to their destination.
package sink

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"inspection-workers/internal/common/config"

	"github.com/google/uuid"
)

// BlobSink stores a named document and returns where it ended up.
type BlobSink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileSink writes documents into a local directory.
type FileSink struct {
	Dir string
}

func (s *FileSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	target := filepath.Join(s.Dir, filepath.Base(name))
	tmp, err := os.CreateTemp(s.Dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename to %s: %w", target, err)
	}
	return target, nil
}

// ObjectPutter writes an object into a bucket.
type ObjectPutter interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Bucket() string
}

// S3Sink uploads documents under <prefix>/<yyyy>/<mm>/<uuid>/<name>.
type S3Sink struct {
	objects ObjectPutter
	prefix  string
	now     func() time.Time
	newID   func() string
}

func NewS3Sink(objects ObjectPutter, prefix string) *S3Sink {
	return &S3Sink{
		objects: objects,
		prefix:  prefix,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *S3Sink) key(name string) string {
	now := s.now().UTC()
	return path.Join(s.prefix, now.Format("2006"), now.Format("01"), s.newID(), path.Base(name))
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.key(name)
	if err := s.objects.Put(ctx, key, contentType, data); err != nil {
		return "", err
	}
	return "s3://" + s.objects.Bucket() + "/" + key, nil
}

// New builds the configured sink. objects may be nil for the file sink.
func New(cfg config.OutputConfig, objects ObjectPutter) (BlobSink, error) {
	switch cfg.Sink {
	case config.SinkFile, "":
		return &FileSink{Dir: cfg.Directory}, nil
	case config.SinkS3:
		if objects == nil {
			return nil, fmt.Errorf("s3 sink needs an S3 client")
		}
		return NewS3Sink(objects, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown output sink %q", cfg.Sink)
	}
}
