package gemini

import (
	"context"
	"fmt"

	"github.com/finsight-app/finsight_backend/internal/core/ports"
	"google.golang.org/genai"
)

// Client adapts the Gemini API to the ports.TextGenerator interface.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed text generator. The API key is validated
// lazily by the first request, not here.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Ensure Client implements ports.TextGenerator
var _ ports.TextGenerator = (*Client)(nil)

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generateContent: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}

	text := extractText(resp.Candidates[0].Content)
	if text == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return text, nil
}

// Ping issues a minimal generation request to confirm the provider is
// reachable and the API key works.
func (c *Client) Ping(ctx context.Context) error {
	contents := []*genai.Content{
		genai.NewContentFromText("ping", genai.RoleUser),
	}
	_, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	return nil
}

func extractText(content *genai.Content) string {
	var text string
	for _, part := range content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}
