package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"persuader/internal/ports"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiCompleter implements ports.TextCompleter with Google's generative AI API.
type GeminiCompleter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ ports.TextCompleter = (*GeminiCompleter)(nil)

// NewGeminiCompleter connects with the API key and selects model.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}

	return &GeminiCompleter{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Complete sends prompt as a single user turn and returns the concatenated text parts.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", fmt.Errorf("gemini completer is nil")
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return responseText(resp)
}

// Close releases the underlying client connection.
func (g *GeminiCompleter) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates generated")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("unexpected response format")
	}

	return b.String(), nil
}
