// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides (REDIS_ADDRESS, STORAGE_BUCKET, ...).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{
		"camunda.broker_address",
		"redis.address", "redis.password",
		"storage.region", "storage.bucket", "storage.endpoint",
		"storage.access_key_id", "storage.secret_access_key",
		"templates.source", "templates.directory", "templates.base_url",
		"output.sink", "output.directory",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "inspection-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Templates.Source == "" {
		cfg.Templates.Source = SourceFile
	}
	if cfg.Templates.Directory == "" {
		cfg.Templates.Directory = "templates"
	}
	if cfg.Templates.CacheTTL == 0 {
		cfg.Templates.CacheTTL = 300000
	}
	if cfg.Templates.FetchTimeout == 0 {
		cfg.Templates.FetchTimeout = 15000
	}
	if cfg.Templates.NullGetter == nil {
		enabled := true
		cfg.Templates.NullGetter = &enabled
	}

	if cfg.Images.MaxWidth == 0 {
		cfg.Images.MaxWidth = 500
	}
	if cfg.Images.MaxHeight == 0 {
		cfg.Images.MaxHeight = 300
	}
	if cfg.Images.Quality == 0 {
		cfg.Images.Quality = 0.7
	}
	if cfg.Images.Concurrency == 0 {
		cfg.Images.Concurrency = 4
	}
	if cfg.Images.FetchTimeout == 0 {
		cfg.Images.FetchTimeout = 10000
	}

	if cfg.Placement.CellWidthCm == 0 {
		cfg.Placement.CellWidthCm = 8.8
	}
	if cfg.Placement.CellHeightCm == 0 {
		cfg.Placement.CellHeightCm = 5.8
	}
	if cfg.Placement.PxPerCm == 0 {
		cfg.Placement.PxPerCm = 37.7952755906
	}

	if cfg.Output.Sink == "" {
		cfg.Output.Sink = SinkFile
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "out"
	}

	if cfg.Records.KeyPrefix == "" {
		cfg.Records.KeyPrefix = "inspection:record:"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 60000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks settings every entry point depends on.
func validateConfig(cfg *Config) error {
	switch cfg.Templates.Source {
	case SourceFile, SourceS3:
	case SourceHTTP:
		if cfg.Templates.BaseURL == "" {
			return fmt.Errorf("templates.base_url is required for the http source")
		}
	default:
		return fmt.Errorf("templates.source %q is not one of file, http, s3", cfg.Templates.Source)
	}

	switch cfg.Output.Sink {
	case SinkFile, SinkS3:
	default:
		return fmt.Errorf("output.sink %q is not one of file, s3", cfg.Output.Sink)
	}

	if (cfg.Templates.Source == SourceS3 || cfg.Output.Sink == SinkS3) && cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when s3 is used")
	}

	if cfg.Images.Quality <= 0 || cfg.Images.Quality > 1 {
		return fmt.Errorf("images.quality must be in (0, 1], got %v", cfg.Images.Quality)
	}
	if cfg.Images.MaxWidth < 1 || cfg.Images.MaxHeight < 1 {
		return fmt.Errorf("images.max_width and images.max_height must be positive")
	}
	return nil
}

// ValidateForWorkers adds the checks only the worker manager needs.
func ValidateForWorkers(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
