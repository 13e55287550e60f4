package client

import (
	"context"
	"fmt"
	"strings"

	"maison-core/internal/domain/entity"

	"google.golang.org/genai"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient opens a Vertex AI client when projectID is set and a Gemini
// API client otherwise. The client is safe for concurrent use and is shared by
// every adapter in this package.
func NewGenAIClient(ctx context.Context, apiKey, projectID, location string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if projectID != "" {
		cfg = &genai.ClientConfig{
			Project:  projectID,
			Location: location,
			Backend:  genai.BackendVertexAI,
		}
	}
	return genai.NewClient(ctx, cfg)
}

func NewGeminiClientFromClient(c *genai.Client, model string) *GeminiClient {
	return &GeminiClient{
		client: c,
		model:  model,
	}
}

// Complete sends the request as one generation call.
func (g *GeminiClient) Complete(ctx context.Context, req entity.ModelRequest) (string, error) {
	contents, system := toGeminiContents(req.Messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: request has no user content: %w", entity.ErrInvalidRequest)
	}

	var cfg *genai.GenerateContentConfig
	if system != nil {
		cfg = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}

// toGeminiContents splits messages into the conversation contents and the
// system instruction. System messages are joined into one instruction;
// assistant messages are sent with the model role. system is nil when no
// system message is present.
func toGeminiContents(messages []entity.Message) (contents []*genai.Content, system *genai.Content) {
	var instructions []string
	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			instructions = append(instructions, m.Content)
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(instructions) > 0 {
		system = genai.NewContentFromText(strings.Join(instructions, "\n\n"), genai.RoleUser)
	}
	return contents, system
}
