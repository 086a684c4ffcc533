// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Redis     RedisConfig             `mapstructure:"redis"`
	Storage   StorageConfig           `mapstructure:"storage"`
	Templates TemplatesConfig         `mapstructure:"templates"`
	Images    ImagesConfig            `mapstructure:"images"`
	Placement PlacementConfig         `mapstructure:"placement"`
	Output    OutputConfig            `mapstructure:"output"`
	Records   RecordsConfig           `mapstructure:"records"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Server    ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type RedisConfig struct {
	Address     string `mapstructure:"address"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	PoolSize    int    `mapstructure:"pool_size"`
	DialTimeout int    `mapstructure:"dial_timeout"` // milliseconds
	IOTimeout   int    `mapstructure:"io_timeout"`   // milliseconds, reads and writes
}

// StorageConfig describes the S3 bucket used for templates, image references
// and delivered documents.
type StorageConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"` // LocalStack/MinIO
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// Template source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// TemplatesConfig selects where DOCX templates are fetched from.
type TemplatesConfig struct {
	Source       string            `mapstructure:"source"`
	Directory    string            `mapstructure:"directory"`
	BaseURL      string            `mapstructure:"base_url"`
	Prefix       string            `mapstructure:"prefix"`
	RegistryPath string            `mapstructure:"registry_path"`
	Files        map[string]string `mapstructure:"files"` // report type -> file name
	CacheEnabled bool              `mapstructure:"cache_enabled"`
	CacheTTL     int               `mapstructure:"cache_ttl"`     // milliseconds
	FetchTimeout int               `mapstructure:"fetch_timeout"` // milliseconds
	NullGetter   *bool             `mapstructure:"null_getter"`
}

// ImagesConfig bounds the normalized photos embedded in documents.
type ImagesConfig struct {
	MaxWidth     int     `mapstructure:"max_width"`
	MaxHeight    int     `mapstructure:"max_height"`
	Quality      float64 `mapstructure:"quality"`
	Concurrency  int     `mapstructure:"concurrency"`
	FetchTimeout int     `mapstructure:"fetch_timeout"` // milliseconds
	BaseDir      string  `mapstructure:"base_dir"`      // root for relative photo paths
}

// PlacementConfig is the size of the table cell each photo is fitted into.
type PlacementConfig struct {
	CellWidthCm  float64 `mapstructure:"cell_width_cm"`
	CellHeightCm float64 `mapstructure:"cell_height_cm"`
	PxPerCm      float64 `mapstructure:"px_per_cm"`
}

// Output sink kinds.
const (
	SinkFile = "file"
	SinkS3   = "s3"
)

type OutputConfig struct {
	Sink      string `mapstructure:"sink"`
	Directory string `mapstructure:"directory"`
	Prefix    string `mapstructure:"prefix"`
}

// RecordsConfig controls where in-progress records are kept in Redis.
type RecordsConfig struct {
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // milliseconds, 0 keeps records forever
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig is the health/metrics listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}
