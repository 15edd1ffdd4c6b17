package provider

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/truemed/scan-cli/internal/model"
)

// NameTesseract is the terminal local fallback present in every chain. It
// makes no network calls and completes in one bounded pass, so a scan that
// reaches it still gets an answer inside the platform execution ceiling.
const NameTesseract = "tesseract-local"

// Tesseract runs on-box OCR through the gosseract bindings.
type Tesseract struct {
	languages []string
}

// NewTesseract creates the local provider. Empty languages default to English.
func NewTesseract(languages []string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}
}

func (t *Tesseract) Name() string {
	return NameTesseract
}

func (t *Tesseract) Family() model.ProviderFamily {
	return model.FamilyLocal
}

// DetectText OCRs each image with a fresh client and concatenates the output.
// Per-image failures are skipped rather than aborting the pass; only a fully
// empty result reports NoTextDetected.
func (t *Tesseract) DetectText(ctx context.Context, images [][]byte) (string, error) {
	var sb strings.Builder
	for _, img := range images {
		if ctx.Err() != nil {
			break
		}
		text, err := t.detectOne(img)
		if err != nil || text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", NewError(NoTextDetected, t.Name(), nil)
	}

	return sb.String(), nil
}

func (t *Tesseract) detectOne(img []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close() //nolint:errcheck

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", err
	}
	return client.Text()
}
