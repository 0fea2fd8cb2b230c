package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"recruit-analysis/internal/llm"
	"recruit-analysis/internal/shared/telemetry"
)

const defaultModel = "gemini-2.0-flash"

// Client implements llm.Client on top of the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient constructs a Gemini-backed oracle. The returned client should be
// closed on shutdown.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))

	return &Client{client: client, model: model, modelName: modelName}, nil
}

// Analyze implements llm.Client.
func (c *Client) Analyze(ctx context.Context, input llm.AnalyzeInput) (llm.Result, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(llm.BuildPrompt(input)))
	if err != nil {
		return llm.Result{}, llm.TransportError("gemini", err)
	}
	if resp.UsageMetadata != nil {
		telemetry.Info("oracle.usage", map[string]any{
			"provider":          "gemini",
			"model":             c.modelName,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		})
	}

	text, err := responseText(resp)
	if err != nil {
		return llm.Result{}, err
	}
	return llm.ParseResult([]byte(text))
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", llm.ErrBadResponse)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini returned empty text: %w", llm.ErrBadResponse)
	}
	return sb.String(), nil
}

var _ llm.Client = (*Client)(nil)
