package provider

import (
	"go.uber.org/zap"

	"github.com/truemed/scan-cli/internal/config"
)

// Build creates a registry from config. Cloud providers are registered only
// when their API key is present; the local Tesseract provider is always
// registered so every routing chain keeps its terminal fallback. Each cloud
// provider is wrapped with its configured hourly ceiling.
func Build(cfg config.ProvidersConfig) *Registry {
	reg := NewRegistry()

	if cfg.GoogleVision.Key != "" {
		reg.Register(WithHourlyLimit(
			NewGoogleVision(cfg.GoogleVision.Key, cfg.GoogleVision.Endpoint),
			cfg.GoogleVision.MaxRequestsHour,
		))
	} else {
		zap.L().Warn("provider: google-vision disabled, no API key configured")
	}

	if cfg.Mistral.Key != "" {
		reg.Register(WithHourlyLimit(
			NewMistralOCR(cfg.Mistral.Key, cfg.Mistral.Model, cfg.Mistral.Endpoint),
			cfg.Mistral.MaxRequestsHour,
		))
	} else {
		zap.L().Warn("provider: mistral-ocr disabled, no API key configured")
	}

	if cfg.Claude.Key != "" {
		reg.Register(WithHourlyLimit(
			NewClaudeVision(cfg.Claude.Key, cfg.Claude.Model, cfg.Claude.MaxTokens),
			cfg.Claude.MaxRequestsHour,
		))
	} else {
		zap.L().Warn("provider: claude-vision disabled, no API key configured")
	}

	reg.Register(NewTesseract(cfg.Tesseract.Languages))

	return reg
}
