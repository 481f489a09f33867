// Package config loads the YAML configuration shared by the commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jparkerweb/go-punct/download"
)

// Model sources.
const (
	SourceHuggingFace = "huggingface"
	SourceS3          = "s3"
)

// Cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the top-level configuration file.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Inference InferenceConfig `yaml:"inference"`
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Watch     WatchConfig     `yaml:"watch"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ModelConfig locates the model. When ModelPath is empty the model is
// fetched from Source into Dir.
type ModelConfig struct {
	Dir           string   `yaml:"dir"`
	ModelPath     string   `yaml:"model_path"`
	TokenizerPath string   `yaml:"tokenizer_path"`
	Source        string   `yaml:"source"`
	BaseURL       string   `yaml:"base_url"`
	S3            S3Config `yaml:"s3"`
}

// S3Config names the bucket mirroring the model repository.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

// InferenceConfig sizes the session pool and model input.
type InferenceConfig struct {
	PoolSize      int    `yaml:"pool_size"`
	MaxLength     int    `yaml:"max_length"`
	SharedLibrary string `yaml:"shared_library"`
}

// ServerConfig configures punct-server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Kind  string        `yaml:"kind"`
	TTL   time.Duration `yaml:"ttl"`
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig holds the Redis connection settings used when Kind is redis.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WatchConfig configures punct-watch.
type WatchConfig struct {
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// LoggingConfig sets the log level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a validated configuration without a file.
func Default() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}

// Load reads and validates a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// Validate fills defaults and rejects unknown enum values.
func (c *Config) Validate() error {
	if c.Model.Dir == "" {
		c.Model.Dir = "models"
	}
	if c.Model.Source == "" {
		c.Model.Source = SourceHuggingFace
	}
	switch c.Model.Source {
	case SourceHuggingFace:
		if c.Model.BaseURL == "" {
			c.Model.BaseURL = download.DefaultBaseURL
		}
	case SourceS3:
		if c.Model.ModelPath == "" && c.Model.S3.Bucket == "" {
			return fmt.Errorf("model.s3.bucket is required for source %q", SourceS3)
		}
	default:
		return fmt.Errorf("model.source must be %q or %q, got %q", SourceHuggingFace, SourceS3, c.Model.Source)
	}
	if c.Model.ModelPath != "" && c.Model.TokenizerPath == "" {
		c.Model.TokenizerPath = filepath.Join(filepath.Dir(c.Model.ModelPath), download.TokenizerFile)
	}

	if c.Inference.PoolSize <= 0 {
		c.Inference.PoolSize = runtime.NumCPU()
	}
	if c.Inference.MaxLength == 0 {
		c.Inference.MaxLength = 512
	}
	if c.Inference.MaxLength < 3 {
		return fmt.Errorf("inference.max_length must be at least 3, got %d", c.Inference.MaxLength)
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	if c.Cache.Kind == "" {
		c.Cache.Kind = CacheNone
	}
	switch c.Cache.Kind {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Address == "" {
			c.Cache.Redis.Address = "localhost:6379"
		}
	default:
		return fmt.Errorf("cache.kind must be none, memory or redis, got %q", c.Cache.Kind)
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}

	if c.Watch.Input == "" {
		c.Watch.Input = "data/input"
	}
	if c.Watch.Output == "" {
		c.Watch.Output = "data/output"
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = 2
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}
