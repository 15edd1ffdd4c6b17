package extract

import "github.com/truemed/scan-cli/internal/model"

// Confidence is additive and recomputed from extraction signals on every
// attempt. Provider-reported scores are ignored: different providers use
// incompatible scales.
//
// Per-family base values:
//
//	vision  0.40  cloud OCR returns literal text but mangles layout
//	llm     0.50  transcription prompts keep labels attached to values
//	local   0.40  same literal-text behavior as cloud OCR
//
// Signal bonuses: +0.25 product name, +0.25 batch number, +0.15 expiry,
// +0.15 manufacturer, +0.10 when at least two of {product, batch, expiry}
// agree. Capped at 0.95: heuristic extraction never claims certainty.
const (
	visionBase = 0.40
	llmBase    = 0.50
	localBase  = 0.40

	productBonus      = 0.25
	batchBonus        = 0.25
	expiryBonus       = 0.15
	manufacturerBonus = 0.15
	agreementBonus    = 0.10

	// MaxConfidence caps every heuristic score.
	MaxConfidence = 0.95

	// DegradedConfidence is reported when every provider in a chain failed.
	DegradedConfidence = 0.1
)

// LowConfidenceWarning is attached whenever a score drops below 0.5.
const LowConfidenceWarning = "low confidence - verify the product manually against the NAFDAC database"

func familyBase(family model.ProviderFamily) float64 {
	switch family {
	case model.FamilyLLM:
		return llmBase
	case model.FamilyVision:
		return visionBase
	case model.FamilyLocal:
		return localBase
	}
	return visionBase
}

// Score computes the confidence for one extraction attempt.
func Score(family model.ProviderFamily, hasProduct, hasBatch, hasExpiry, hasManufacturer bool) float64 {
	score := familyBase(family)

	agreeing := 0
	if hasProduct {
		score += productBonus
		agreeing++
	}
	if hasBatch {
		score += batchBonus
		agreeing++
	}
	if hasExpiry {
		score += expiryBonus
		agreeing++
	}
	if hasManufacturer {
		score += manufacturerBonus
	}
	if agreeing >= 2 {
		score += agreementBonus
	}

	if score > MaxConfidence {
		score = MaxConfidence
	}
	return score
}
