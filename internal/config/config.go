package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/truemed/scan-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Providers ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Routing   RoutingConfig   `yaml:"routing" mapstructure:"routing"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend for balances and usage.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ProvidersConfig holds per-provider credentials and limits.
type ProvidersConfig struct {
	GoogleVision GoogleVisionConfig `yaml:"google_vision" mapstructure:"google_vision"`
	Mistral      MistralConfig      `yaml:"mistral" mapstructure:"mistral"`
	Claude       ClaudeConfig       `yaml:"claude" mapstructure:"claude"`
	Tesseract    TesseractConfig    `yaml:"tesseract" mapstructure:"tesseract"`
}

// GoogleVisionConfig holds Cloud Vision API settings.
type GoogleVisionConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	MaxRequestsHour int    `yaml:"max_requests_hour" mapstructure:"max_requests_hour"`
}

// MistralConfig holds Mistral OCR API settings.
type MistralConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	Model           string `yaml:"model" mapstructure:"model"`
	MaxRequestsHour int    `yaml:"max_requests_hour" mapstructure:"max_requests_hour"`
}

// ClaudeConfig holds Anthropic API settings for the vision transcriber.
type ClaudeConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	Model           string `yaml:"model" mapstructure:"model"`
	MaxTokens       int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRequestsHour int    `yaml:"max_requests_hour" mapstructure:"max_requests_hour"`
}

// TesseractConfig holds local OCR settings.
type TesseractConfig struct {
	Languages []string `yaml:"languages" mapstructure:"languages"`
}

// RoutingConfig configures the plan routing table.
type RoutingConfig struct {
	// TableFile optionally points at a YAML file overriding the built-in
	// per-tier provider chains.
	TableFile string `yaml:"table_file" mapstructure:"table_file"`
}

// ScanConfig configures extraction behavior.
type ScanConfig struct {
	MaxImages             int `yaml:"max_images" mapstructure:"max_images"`
	PerImageTokenOverhead int `yaml:"per_image_token_overhead" mapstructure:"per_image_token_overhead"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "scan.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("scan.max_images", 4)
	v.SetDefault("scan.per_image_token_overhead", 256)
	v.SetDefault("providers.google_vision.endpoint", "https://vision.googleapis.com/v1/images:annotate")
	v.SetDefault("providers.google_vision.max_requests_hour", 120)
	v.SetDefault("providers.mistral.endpoint", "https://api.mistral.ai/v1/ocr")
	v.SetDefault("providers.mistral.model", "pixtral-large-latest")
	v.SetDefault("providers.mistral.max_requests_hour", 60)
	v.SetDefault("providers.claude.model", "claude-haiku-4-5-20251001")
	v.SetDefault("providers.claude.max_tokens", 2048)
	v.SetDefault("providers.claude.max_requests_hour", 30)
	v.SetDefault("providers.tesseract.languages", []string{"eng"})
	v.SetDefault("pricing.vision.google-vision.per_image", 0.0015)
	v.SetDefault("pricing.vision.mistral-ocr.per_image", 0.001)
	v.SetDefault("pricing.llm.claude-vision.input", 0.80)
	v.SetDefault("pricing.llm.claude-vision.output", 4.00)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
