package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// NoDishSentinel is what the extractor is told to answer when a reply names
// nothing from the menu.
const NoDishSentinel = "No Plate"

type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(client *genai.Client, model string) *GeminiExtractor {
	return &GeminiExtractor{client: client, model: model}
}

// Extract asks the model for the dish, drink and dessert names in reply and
// returns its raw answer. Parsing is left to the caller.
func (e *GeminiExtractor) Extract(ctx context.Context, reply string) (string, error) {
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(ExtractionPrompt(reply)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini extract: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func ExtractionPrompt(reply string) string {
	return fmt.Sprintf(`You are an assistant that extracts dish or plate names from text.

From the following message, extract all plate or drink or dessert names or dishes mentioned. Return them as a comma-separated list with no extra text.

If there's no plate to mention just return '%s'

Message:
"""%s"""`, NoDishSentinel, reply)
}
