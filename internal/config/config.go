package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DirectoryConfig describes the directory site and the location to crawl.
type DirectoryConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Location string `yaml:"location" mapstructure:"location"`
	Country  string `yaml:"country" mapstructure:"country"`
}

// FetchConfig configures outbound HTTP.
type FetchConfig struct {
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// Strict aborts the run on the first failed listing, detail or
	// extraction item instead of continuing with partial data.
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// ExportConfig configures the template schema and the output table.
type ExportConfig struct {
	TemplatePath      string `yaml:"template_path" mapstructure:"template_path"`
	TemplateDelimiter string `yaml:"template_delimiter" mapstructure:"template_delimiter"`
	OutputPath        string `yaml:"output_path" mapstructure:"output_path"`
	OutputDelimiter   string `yaml:"output_delimiter" mapstructure:"output_delimiter"`
	Format            string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KONTAKTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("directory.base_url", "https://branchenbuch.meinestadt.de")
	v.SetDefault("directory.location", "unterschleissheim")
	v.SetDefault("directory.country", "Deutschland")
	v.SetDefault("fetch.user_agent", "insomnia/2023.5.8")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.concurrency", 100)
	v.SetDefault("fetch.rate_per_sec", 0)
	v.SetDefault("fetch.max_body_bytes", 10*1024*1024)
	v.SetDefault("fetch.strict", false)
	v.SetDefault("export.template_path", "")
	v.SetDefault("export.template_delimiter", ";")
	v.SetDefault("export.output_path", "Kontakte_rev7.csv")
	v.SetDefault("export.output_delimiter", ",")
	v.SetDefault("export.format", "csv")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Directory.BaseURL == "" {
		return eris.New("config: directory.base_url is required")
	}
	if c.Fetch.Concurrency < 1 {
		return eris.Errorf("config: fetch.concurrency must be positive, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.TimeoutSecs < 1 {
		return eris.Errorf("config: fetch.timeout_secs must be positive, got %d", c.Fetch.TimeoutSecs)
	}
	if len([]rune(c.Export.TemplateDelimiter)) != 1 || len([]rune(c.Export.OutputDelimiter)) != 1 {
		return eris.New("config: delimiters must be a single character")
	}
	switch c.Export.Format {
	case "csv", "ndjson", "xlsx":
	default:
		return eris.Errorf("config: unknown export.format %q", c.Export.Format)
	}
	return nil
}
