package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/truemed/scan-cli/internal/model"
)

const (
	// NameMistralOCR is the verification-grade provider in the standard chain.
	NameMistralOCR = "mistral-ocr"

	mistralOCREndpoint  = "https://api.mistral.ai/v1/ocr"
	defaultMistralModel = "pixtral-large-latest"
)

// MistralOCR detects text with the Mistral OCR API.
type MistralOCR struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewMistralOCR creates a MistralOCR provider. Empty model or endpoint use
// the defaults.
func NewMistralOCR(apiKey, ocrModel, endpoint string) *MistralOCR {
	if ocrModel == "" {
		ocrModel = defaultMistralModel
	}
	if endpoint == "" {
		endpoint = mistralOCREndpoint
	}
	return &MistralOCR{
		apiKey:   apiKey,
		model:    ocrModel,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

func (m *MistralOCR) Name() string {
	return NameMistralOCR
}

func (m *MistralOCR) Family() model.ProviderFamily {
	return model.FamilyVision
}

type mistralOCRRequest struct {
	Model    string             `json:"model"`
	Document mistralOCRDocument `json:"document"`
}

type mistralOCRDocument struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

type mistralOCRResponse struct {
	Pages []mistralOCRPage `json:"pages"`
}

type mistralOCRPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// DetectText submits each image as a base64 data URL and joins the returned
// pages. The API takes one document per call, so images go out sequentially.
func (m *MistralOCR) DetectText(ctx context.Context, images [][]byte) (string, error) {
	var sb strings.Builder
	for _, img := range images {
		text, err := m.detectOne(ctx, img)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", NewError(NoTextDetected, m.Name(), nil)
	}

	return sb.String(), nil
}

func (m *MistralOCR) detectOne(ctx context.Context, img []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)

	reqBody := mistralOCRRequest{
		Model: m.model,
		Document: mistralOCRDocument{
			Type:     "image_url",
			ImageURL: dataURL,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewError(InvalidResponse, m.Name(), eris.Wrap(err, "marshal ocr request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", NewError(InvalidResponse, m.Name(), eris.Wrap(err, "create ocr request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", Classify(m.Name(), err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(m.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewError(ClassifyHTTP(resp.StatusCode), m.Name(),
			eris.Errorf("ocr returned %d: %s", resp.StatusCode, string(respBody)))
	}

	var ocrResp mistralOCRResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return "", NewError(InvalidResponse, m.Name(), eris.Wrap(err, "unmarshal ocr response"))
	}

	var sb strings.Builder
	for i, page := range ocrResp.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page.Markdown)
	}

	return sb.String(), nil
}
