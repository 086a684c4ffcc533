// Package pipeline builds the document pipeline from configuration: the
// template source, image normalizer, output sink, assembler and record
// store, plus the Redis and S3 clients they share.
package pipeline

import (
	"context"
	"fmt"

	"inspection-workers/internal/assembler"
	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/database"
	commonhttp "inspection-workers/internal/common/http"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/storage"
	"inspection-workers/internal/docx"
	"inspection-workers/internal/imaging"
	"inspection-workers/internal/sink"
	"inspection-workers/internal/store"
	"inspection-workers/internal/templates"
)

type Options struct {
	// UseRedis connects the template cache and the record store.
	UseRedis bool
	// RedisRetries is how many times the first ping is attempted.
	RedisRetries int
}

type Pipeline struct {
	Assembler *assembler.Assembler
	Templates templates.Source
	// Records is nil when Redis is not used.
	Records *store.RecordStore
	Redis   *database.RedisClient
	S3      *storage.S3Client
}

// New connects the configured backends and assembles the pipeline.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Pipeline, error) {
	p := &Pipeline{}

	if needsS3(cfg) {
		s3Client, err := storage.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		p.S3 = s3Client
	}

	if opts.UseRedis && cfg.Redis.Address != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis, opts.RedisRetries, log)
		if err != nil {
			return nil, err
		}
		p.Redis = rdb
	}

	// nil *S3Client must not leak into the interfaces below
	var (
		objects templates.ObjectGetter
		putter  sink.ObjectPutter
		reader  imaging.ObjectReader
	)
	if p.S3 != nil {
		objects, putter, reader = p.S3, p.S3, p.S3
	}

	deps := templates.Deps{
		HTTP:    commonhttp.NewClient(config.GetDuration(cfg.Templates.FetchTimeout)),
		Objects: objects,
		Logger:  log,
	}
	if p.Redis != nil {
		deps.Redis = p.Redis.GetClient()
	}
	src, err := templates.NewSource(cfg.Templates, deps)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("template source: %w", err)
	}
	p.Templates = src

	out, err := sink.New(cfg.Output, putter)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("output sink: %w", err)
	}

	normalizer := imaging.NewNormalizer(nil, &imaging.Resolver{
		HTTP:    commonhttp.NewClient(config.GetDuration(cfg.Images.FetchTimeout)),
		Objects: reader,
		BaseDir: cfg.Images.BaseDir,
	}, imaging.Options{
		MaxWidth:  cfg.Images.MaxWidth,
		MaxHeight: cfg.Images.MaxHeight,
		Quality:   cfg.Images.Quality,
	}, log)

	p.Assembler = assembler.New(src, normalizer, out, assembler.Config{
		Concurrency: cfg.Images.Concurrency,
		Binder:      BinderOptions(cfg),
	}, log)

	if p.Redis != nil {
		records, err := store.NewRecordStore(p.Redis.GetClient(), cfg.Records.KeyPrefix, config.GetDuration(cfg.Records.TTL))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("record store: %w", err)
		}
		p.Records = records
	}

	log.Info("document pipeline ready", map[string]interface{}{
		"templateSource": cfg.Templates.Source,
		"templateCache":  cfg.Templates.CacheEnabled && p.Redis != nil,
		"outputSink":     cfg.Output.Sink,
		"recordStore":    p.Records != nil,
		"s3":             p.S3 != nil,
	})
	return p, nil
}

// BinderOptions maps the templates and placement sections.
func BinderOptions(cfg *config.Config) docx.Options {
	opts := docx.DefaultOptions()
	if cfg.Templates.NullGetter != nil {
		opts.NullGetter = *cfg.Templates.NullGetter
	}
	if cfg.Placement.CellWidthCm > 0 {
		opts.CellWidthCm = cfg.Placement.CellWidthCm
	}
	if cfg.Placement.CellHeightCm > 0 {
		opts.CellHeightCm = cfg.Placement.CellHeightCm
	}
	if cfg.Placement.PxPerCm > 0 {
		opts.PxPerCm = cfg.Placement.PxPerCm
	}
	return opts
}

func needsS3(cfg *config.Config) bool {
	return cfg.Templates.Source == config.SourceS3 ||
		cfg.Output.Sink == config.SinkS3 ||
		cfg.Storage.Bucket != ""
}

// Close releases the record store and the Redis connection.
func (p *Pipeline) Close() {
	if p.Records != nil {
		p.Records.Close()
	}
	if p.Redis != nil {
		_ = p.Redis.Close()
	}
}
