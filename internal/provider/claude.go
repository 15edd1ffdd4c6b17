package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/truemed/scan-cli/internal/model"
)

const (
	// NameClaudeVision is the highest-grade provider in the business chain.
	NameClaudeVision = "claude-vision"

	defaultClaudeModel     = "claude-haiku-4-5-20251001"
	defaultClaudeMaxTokens = 2048
)

// transcribePrompt asks for a verbatim transcription rather than a summary,
// so the downstream pattern passes see the original label text.
const transcribePrompt = "Transcribe every piece of visible text from this " +
	"pharmaceutical packaging photo exactly as printed, one line per printed " +
	"line. Include batch numbers, dates, and manufacturer details. Output " +
	"only the transcription."

// ClaudeVision transcribes packaging text through the Anthropic Messages API.
type ClaudeVision struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClaudeVision creates a ClaudeVision provider. An empty model uses the
// default.
func NewClaudeVision(apiKey, claudeModel string, maxTokens int64) *ClaudeVision {
	if claudeModel == "" {
		claudeModel = defaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	return &ClaudeVision{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     claudeModel,
		maxTokens: maxTokens,
	}
}

func (c *ClaudeVision) Name() string {
	return NameClaudeVision
}

func (c *ClaudeVision) Family() model.ProviderFamily {
	return model.FamilyLLM
}

// DetectText sends all images in a single user message followed by the
// transcription prompt, and returns the concatenated text blocks.
func (c *ClaudeVision) DetectText(ctx context.Context, images [][]byte) (string, error) {
	blocks := make([]sdk.ContentBlockParamUnion, 0, len(images)+1)
	for _, img := range images {
		blocks = append(blocks, sdk.NewImageBlockBase64("image/jpeg", base64.StdEncoding.EncodeToString(img)))
	}
	blocks = append(blocks, sdk.NewTextBlock(transcribePrompt))

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", NewError(ClassifyHTTP(apiErr.StatusCode), c.Name(), err)
		}
		return "", Classify(c.Name(), eris.Wrap(err, "create message"))
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(block.Text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", NewError(NoTextDetected, c.Name(), nil)
	}

	return sb.String(), nil
}
