package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Provider credentials are
// deliberately absent: they are read from XAI_API_KEY / OPENAI_API_KEY when a
// generation call is about to be made.
type Config struct {
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	PDF    PDFConfig    `yaml:"pdf" mapstructure:"pdf"`
}

// LLMConfig selects the generation provider and paces calls.
type LLMConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SearchConfig configures the web search endpoint.
type SearchConfig struct {
	Model string `yaml:"model" mapstructure:"model"`
}

// OutputConfig controls where flat artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	APIKey         string        `yaml:"api_key" mapstructure:"api_key"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	SessionTTL     time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// PDFConfig configures PDF text extraction.
type PDFConfig struct {
	FallbackPdftotext bool `yaml:"fallback_pdftotext" mapstructure:"fallback_pdftotext"`
}

// Load reads configuration from an optional config.yaml in the working
// directory and DOCDRAFT_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOCDRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.provider", "xai")
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("search.model", "gpt-4o")
	v.SetDefault("output.dir", ".")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.max_upload_bytes", 52428800) // 50MB
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.session_ttl", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("pdf.fallback_pdftotext", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "xai", "openai":
	default:
		return eris.Errorf("config: unknown llm.provider %q (want xai or openai)", c.LLM.Provider)
	}
	if c.LLM.RequestsPerSecond < 0 {
		return eris.New("config: llm.requests_per_second must not be negative")
	}
	if c.Server.Port <= 0 {
		return eris.New("config: server.port must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return eris.New("config: server.max_upload_bytes must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return eris.New("config: server.session_ttl must be positive")
	}
	if c.Output.Dir == "" {
		return eris.New("config: output.dir is required")
	}
	return nil
}

// NewLogger builds a zap logger. When cfg.File is set the log is also
// appended to that file.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrap(err, "config: create log dir")
			}
		}
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
		zapCfg.ErrorOutputPaths = append(zapCfg.ErrorOutputPaths, cfg.File)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
