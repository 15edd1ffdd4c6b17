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
	// NameGoogleVision is the primary cloud OCR provider for every tier.
	NameGoogleVision = "google-vision"

	googleVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"
)

// GoogleVision detects text with the Cloud Vision images:annotate REST API.
type GoogleVision struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleVision creates a GoogleVision provider. An empty endpoint uses the
// public API.
func NewGoogleVision(apiKey, endpoint string) *GoogleVision {
	if endpoint == "" {
		endpoint = googleVisionEndpoint
	}
	return &GoogleVision{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

func (g *GoogleVision) Name() string {
	return NameGoogleVision
}

func (g *GoogleVision) Family() model.ProviderFamily {
	return model.FamilyVision
}

type visionAnnotateRequest struct {
	Requests []visionImageRequest `json:"requests"`
}

type visionImageRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionAnnotateResponse struct {
	Responses []visionImageResponse `json:"responses"`
}

type visionImageResponse struct {
	FullTextAnnotation *visionFullText   `json:"fullTextAnnotation,omitempty"`
	TextAnnotations    []visionText      `json:"textAnnotations,omitempty"`
	Error              *visionStatusInfo `json:"error,omitempty"`
}

type visionFullText struct {
	Text string `json:"text"`
}

type visionText struct {
	Description string `json:"description"`
}

type visionStatusInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DetectText sends all images in one annotate batch and concatenates the
// detected text per image.
func (g *GoogleVision) DetectText(ctx context.Context, images [][]byte) (string, error) {
	reqBody := visionAnnotateRequest{
		Requests: make([]visionImageRequest, 0, len(images)),
	}
	for _, img := range images {
		reqBody.Requests = append(reqBody.Requests, visionImageRequest{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(img)},
			Features: []visionFeature{{Type: "TEXT_DETECTION"}},
		})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewError(InvalidResponse, g.Name(), eris.Wrap(err, "marshal annotate request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+g.apiKey, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", NewError(InvalidResponse, g.Name(), eris.Wrap(err, "create annotate request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", Classify(g.Name(), err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(g.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewError(ClassifyHTTP(resp.StatusCode), g.Name(),
			eris.Errorf("annotate returned %d: %s", resp.StatusCode, string(respBody)))
	}

	var annotate visionAnnotateResponse
	if err := json.Unmarshal(respBody, &annotate); err != nil {
		return "", NewError(InvalidResponse, g.Name(), eris.Wrap(err, "unmarshal annotate response"))
	}

	var sb strings.Builder
	for _, r := range annotate.Responses {
		if r.Error != nil {
			return "", NewError(InvalidResponse, g.Name(),
				eris.Errorf("annotate error %d: %s", r.Error.Code, r.Error.Message))
		}
		text := ""
		if r.FullTextAnnotation != nil {
			text = r.FullTextAnnotation.Text
		} else if len(r.TextAnnotations) > 0 {
			text = r.TextAnnotations[0].Description
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", NewError(NoTextDetected, g.Name(), nil)
	}

	return sb.String(), nil
}
