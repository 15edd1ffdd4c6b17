package extract

import (
	"context"

	"github.com/truemed/scan-cli/internal/cost"
	"github.com/truemed/scan-cli/internal/model"
	"github.com/truemed/scan-cli/internal/provider"
)

// defaultPerImageTokenOverhead approximates the fixed token cost of shipping
// one image to a provider, on top of the text-length estimate.
const defaultPerImageTokenOverhead = 256

// Engine runs one provider and turns its raw text into structured metadata.
type Engine struct {
	calc                  *cost.Calculator
	perImageTokenOverhead int
}

// NewEngine creates an Engine. A non-positive overhead uses the default.
func NewEngine(calc *cost.Calculator, perImageTokenOverhead int) *Engine {
	if perImageTokenOverhead <= 0 {
		perImageTokenOverhead = defaultPerImageTokenOverhead
	}
	return &Engine{
		calc:                  calc,
		perImageTokenOverhead: perImageTokenOverhead,
	}
}

// Extract invokes the provider's text detection and runs the pattern passes.
// Failures are always a *provider.Error; NoTextDetected in particular is
// retryable via the next provider in the chain, not terminal for the scan.
func (e *Engine) Extract(ctx context.Context, req model.ExtractionRequest, p provider.Provider) (*model.ExtractedMetadata, error) {
	raw, err := p.DetectText(ctx, req.Images)
	if err != nil {
		return nil, provider.Classify(p.Name(), err)
	}

	detected := Normalize(raw)
	if detected == "" {
		return nil, provider.NewError(provider.NoTextDetected, p.Name(), nil)
	}

	// The caller's free-text hint joins the pattern input but not the
	// detected text reported back.
	patternInput := detected
	if req.Hint != "" {
		patternInput = detected + " " + Normalize(req.Hint)
	}

	batches := BatchNumbers(patternInput)
	products := ProductNames(patternInput)
	manufacturers := Manufacturers(patternInput)

	var expiryDates []string
	expiry, hasExpiry := ExpiryDate(patternInput)
	if hasExpiry {
		expiryDates = []string{expiry}
	}

	confidence := Score(p.Family(), len(products) > 0, len(batches) > 0, hasExpiry, len(manufacturers) > 0)

	var warnings []string
	if confidence < 0.5 {
		warnings = append(warnings, LowConfidenceWarning)
	}

	meta := &model.ExtractedMetadata{
		BatchNumbers:     batches,
		ProductNames:     products,
		ExpiryDates:      expiryDates,
		ManufacturerInfo: manufacturers,
		DetectedText:     detected,
		Confidence:       confidence,
		Warnings:         warnings,
		Provider:         p.Name(),
		Usage:            e.usage(p, detected, len(req.Images)),
	}
	return meta, nil
}

// usage approximates tokens from text length (chars/4) plus a fixed
// per-image overhead, and prices the call by provider family.
func (e *Engine) usage(p provider.Provider, text string, imageCount int) model.Usage {
	tokens := len(text)/4 + e.perImageTokenOverhead*imageCount

	var costUSD float64
	switch p.Family() {
	case model.FamilyLLM:
		// Detection output is a fraction of the prompt-side image tokens.
		outputTokens := len(text) / 4
		costUSD = e.calc.LLMCall(p.Name(), tokens, outputTokens)
	case model.FamilyVision:
		costUSD = e.calc.VisionCall(p.Name(), imageCount)
	case model.FamilyLocal:
		// On-box OCR is free.
	}

	return model.Usage{Tokens: tokens, CostUSD: costUSD}
}

// Degraded builds the terminal best-effort result returned when every
// provider in a chain has failed. It is a normal return value, never an
// error: callers must not need a distinct total-failure path.
func Degraded() *model.ExtractedMetadata {
	return &model.ExtractedMetadata{
		BatchNumbers:     []string{},
		ProductNames:     []string{},
		ExpiryDates:      []string{},
		ManufacturerInfo: []string{},
		Confidence:       DegradedConfidence,
		Warnings:         []string{"failed to process extracted text"},
	}
}
