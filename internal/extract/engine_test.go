package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truemed/scan-cli/internal/cost"
	"github.com/truemed/scan-cli/internal/model"
	"github.com/truemed/scan-cli/internal/provider"
)

// stubProvider returns canned text or a canned error.
type stubProvider struct {
	name   string
	family model.ProviderFamily
	text   string
	err    error
}

func (s *stubProvider) Name() string                 { return s.name }
func (s *stubProvider) Family() model.ProviderFamily { return s.family }

func (s *stubProvider) DetectText(_ context.Context, _ [][]byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testEngine() *Engine {
	return NewEngine(cost.NewCalculator(cost.DefaultRates()), 0)
}

func TestExtract_FullLabel(t *testing.T) {
	t.Parallel()

	p := &stubProvider{
		name:   "google-vision",
		family: model.FamilyVision,
		text:   "PARACETAMOL 500mg\nBatch: PCT2023002\nExp: 12/2025\nManufactured by ABC Pharma Ltd",
	}

	meta, err := testEngine().Extract(context.Background(), model.ExtractionRequest{Images: [][]byte{[]byte("img")}}, p)
	require.NoError(t, err)

	assert.Equal(t, []string{"PCT2023002"}, meta.BatchNumbers)
	require.NotEmpty(t, meta.ProductNames)
	assert.Equal(t, "PARACETAMOL 500mg", meta.ProductNames[0])
	assert.Equal(t, []string{"12/2025"}, meta.ExpiryDates)
	require.NotEmpty(t, meta.ManufacturerInfo)
	assert.Equal(t, "ABC Pharma Ltd", meta.ManufacturerInfo[0])

	assert.Equal(t, "PARACETAMOL 500mg Batch PCT2023002 Exp 12/2025 Manufactured by ABC Pharma Ltd", meta.DetectedText)
	assert.InDelta(t, 0.95, meta.Confidence, 0.0001, "all four signals plus agreement hit the cap")
	assert.Empty(t, meta.Warnings)
	assert.Equal(t, "google-vision", meta.Provider)

	assert.Greater(t, meta.Usage.Tokens, 256, "text tokens plus per-image overhead")
	assert.InDelta(t, 0.0015, meta.Usage.CostUSD, 0.0001, "one image at the vision rate")
}

func TestExtract_LowConfidenceWarning(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "tesseract-local", family: model.FamilyLocal, text: "nothing useful here"}

	meta, err := testEngine().Extract(context.Background(), model.ExtractionRequest{Images: [][]byte{[]byte("img")}}, p)
	require.NoError(t, err)

	assert.Empty(t, meta.BatchNumbers)
	assert.Empty(t, meta.ProductNames)
	assert.InDelta(t, 0.40, meta.Confidence, 0.0001)
	assert.Contains(t, meta.Warnings, LowConfidenceWarning)
	assert.InDelta(t, 0.0, meta.Usage.CostUSD, 0.0001, "local OCR is free")
}

func TestExtract_HintJoinsPatternInputOnly(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "google-vision", family: model.FamilyVision, text: "random text"}
	req := model.ExtractionRequest{
		Images: [][]byte{[]byte("img")},
		Hint:   "Exp: 12/2025",
	}

	meta, err := testEngine().Extract(context.Background(), req, p)
	require.NoError(t, err)

	assert.Equal(t, []string{"12/2025"}, meta.ExpiryDates, "hint feeds the pattern passes")
	assert.Equal(t, "random text", meta.DetectedText, "hint never appears as detected text")
	assert.InDelta(t, 0.55, meta.Confidence, 0.0001)
}

func TestExtract_EmptyTextIsNoTextDetected(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "google-vision", family: model.FamilyVision, text: "   \n  "}

	_, err := testEngine().Extract(context.Background(), model.ExtractionRequest{Images: [][]byte{[]byte("img")}}, p)
	require.Error(t, err)

	pe, ok := provider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, provider.NoTextDetected, pe.Kind)
}

func TestExtract_ProviderErrorIsClassified(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "google-vision", family: model.FamilyVision, err: eris.New("connection reset by peer")}

	_, err := testEngine().Extract(context.Background(), model.ExtractionRequest{Images: [][]byte{[]byte("img")}}, p)
	require.Error(t, err)

	pe, ok := provider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, provider.NetworkFailure, pe.Kind)
	assert.Equal(t, "google-vision", pe.Provider)
}

func TestExtract_LLMUsagePricedPerToken(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: "claude-vision", family: model.FamilyLLM, text: "Ibuprofen 200mg"}

	meta, err := testEngine().Extract(context.Background(), model.ExtractionRequest{Images: [][]byte{[]byte("img")}}, p)
	require.NoError(t, err)

	assert.Greater(t, meta.Usage.Tokens, 0)
	assert.Greater(t, meta.Usage.CostUSD, 0.0)
}

func TestDegraded(t *testing.T) {
	t.Parallel()

	meta := Degraded()

	assert.InDelta(t, DegradedConfidence, meta.Confidence, 0.0001)
	assert.Equal(t, []string{"failed to process extracted text"}, meta.Warnings)
	assert.Empty(t, meta.BatchNumbers)
	assert.Empty(t, meta.ProductNames)
	assert.Empty(t, meta.ExpiryDates)
	assert.Empty(t, meta.ManufacturerInfo)
	assert.Empty(t, meta.DetectedText)
	assert.Empty(t, meta.Provider)
}
