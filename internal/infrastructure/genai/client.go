// Package genai adapts the Gemini API client to ports.CompletionClient.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/crazylearners/portal/internal/core/ports"
)

// Client sends single-turn prompts to the Gemini API.
type Client struct {
	models *genai.Models
}

var _ ports.CompletionClient = (*Client)(nil)

// New builds a Gemini API client. An empty key is an error; callers run the
// tutor without a client in that case.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("genai: api key is empty")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}
	return &Client{models: c.Models}, nil
}

func (c *Client) Generate(ctx context.Context, req ports.CompletionRequest) (string, error) {
	resp, err := c.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return "", fmt.Errorf("genai: generate content: %w", err)
	}
	return resp.Text(), nil
}

func generateConfig(req ports.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(req.ThinkingBudget),
		},
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}
