package model

import "time"

// ProviderFamily groups providers by how they are called and billed.
type ProviderFamily string

const (
	FamilyVision ProviderFamily = "vision" // cloud vision / OCR APIs, billed per image
	FamilyLLM    ProviderFamily = "llm"    // LLM-backed transcription, billed per token
	FamilyLocal  ProviderFamily = "local"  // on-box OCR, no network, no billing
)

// ProviderDescriptor identifies an OCR/vision backend within a routing chain.
// Descriptors are configuration data: built once at startup, never mutated.
type ProviderDescriptor struct {
	Name            string         `json:"name" yaml:"name"`
	Family          ProviderFamily `json:"family" yaml:"family"`
	CostPerCallUSD  float64        `json:"cost_per_call_usd" yaml:"cost_per_call_usd"`
	MaxRequestsHour int            `json:"max_requests_hour" yaml:"max_requests_hour"`
	Priority        int            `json:"priority" yaml:"priority"` // rank within a plan chain, 0 = primary
}

// Terminal reports whether this descriptor is the zero-dependency local
// fallback that ends every chain.
func (d ProviderDescriptor) Terminal() bool {
	return d.Family == FamilyLocal
}

// ExtractionRequest is one scan: one or more images plus optional context.
// Immutable once created.
type ExtractionRequest struct {
	Images [][]byte `json:"-"`
	Hint   string   `json:"hint,omitempty"`
	UserID string   `json:"user_id,omitempty"`
}

// Usage is bookkeeping metadata for one provider invocation. It never feeds
// into confidence scoring.
type Usage struct {
	Tokens  int     `json:"tokens"`
	CostUSD float64 `json:"cost_usd"`
}

// ExtractedMetadata is the structured output of one extraction attempt.
// Candidate slices are deduplicated and capped by the extraction engine;
// the first product name is the primary candidate.
type ExtractedMetadata struct {
	BatchNumbers     []string `json:"batchNumbers"`
	ProductNames     []string `json:"drugNames"`
	ExpiryDates      []string `json:"expiryDates"`
	ManufacturerInfo []string `json:"manufacturerInfo"`
	DetectedText     string   `json:"detectedText"`
	Confidence       float64  `json:"confidence"`
	Warnings         []string `json:"warnings,omitempty"`
	Provider         string   `json:"provider,omitempty"`
	Usage            Usage    `json:"usage"`
}

// AttemptOutcome records one provider invocation inside the fallback loop.
type AttemptOutcome struct {
	Provider string             `json:"provider"`
	Success  bool               `json:"success"`
	Elapsed  time.Duration      `json:"elapsed"`
	Error    string             `json:"error,omitempty"`
	Result   *ExtractedMetadata `json:"-"`
}

// UsageRecord is what the orchestrator hands to the usage recorder after each
// attempt, fire-and-forget.
type UsageRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id,omitempty"`
	Provider       string    `json:"provider"`
	Tokens         int       `json:"tokens"`
	CostUSD        float64   `json:"cost_usd"`
	Success        bool      `json:"success"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
