package templates

import (
	"fmt"

	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/report"
	"inspection-workers/pkg/registry"

	"github.com/redis/go-redis/v9"
)

// Deps are the clients a source may need. Unused ones may be nil.
type Deps struct {
	HTTP    HTTPGetter
	Objects ObjectGetter
	Redis   redis.Cmdable
	Logger  logger.Logger
}

// ResolveFiles layers the registry and explicit config over the defaults.
func ResolveFiles(cfg config.TemplatesConfig, log logger.Logger) Files {
	files := Files(DefaultFiles())

	if cfg.RegistryPath != "" {
		reg, err := registry.LoadRegistry(cfg.RegistryPath)
		if err != nil {
			log.Warn("template registry not loaded, using defaults", map[string]interface{}{
				"path":  cfg.RegistryPath,
				"error": err.Error(),
			})
		} else {
			for reportType, file := range reg.Files() {
				if t, err := report.ParseReportType(reportType); err == nil {
					files[t] = file
				}
			}
		}
	}

	for reportType, file := range cfg.Files {
		if t, err := report.ParseReportType(reportType); err == nil && file != "" {
			files[t] = file
		}
	}
	return files
}

// NewSource builds the configured source, wrapped in the Redis cache when
// enabled and a client is available.
func NewSource(cfg config.TemplatesConfig, deps Deps) (Source, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	files := ResolveFiles(cfg, log)

	var src Source
	switch cfg.Source {
	case config.SourceFile, "":
		src = &FileSource{Dir: cfg.Directory, Files: files}
	case config.SourceHTTP:
		if deps.HTTP == nil {
			return nil, fmt.Errorf("http template source needs an HTTP client")
		}
		src = &HTTPSource{Client: deps.HTTP, BaseURL: cfg.BaseURL, Files: files}
	case config.SourceS3:
		if deps.Objects == nil {
			return nil, fmt.Errorf("s3 template source needs an S3 client")
		}
		src = &S3Source{Objects: deps.Objects, Prefix: cfg.Prefix, Files: files}
	default:
		return nil, fmt.Errorf("unknown template source %q", cfg.Source)
	}

	if cfg.CacheEnabled && deps.Redis != nil {
		src = NewCachedSource(src, deps.Redis, config.GetDuration(cfg.CacheTTL), log)
	}
	return src, nil
}
