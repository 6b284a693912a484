// Package gemini implements the document oracle and PDF transcription on
// Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for all calls.
const DefaultModelName = "gemini-2.5-flash"

// Generator is the subset of genai.Models the oracle uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Oracle classifies, extracts and validates bank statements with Gemini.
type Oracle struct {
	models Generator
	model  string
}

// New creates an Oracle backed by a GenAI client. Credentials and backend
// come from the usual GOOGLE_* environment variables.
func New(ctx context.Context, model string) (*Oracle, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewWithGenerator(client.Models, model), nil
}

// NewWithGenerator creates an Oracle on top of an existing generator.
func NewWithGenerator(g Generator, model string) *Oracle {
	if model == "" {
		model = DefaultModelName
	}
	return &Oracle{models: g, model: model}
}

// Model returns the model name used for generation.
func (o *Oracle) Model() string {
	return o.model
}

// generateJSON sends parts to the model and decodes the JSON answer into out.
func (o *Oracle) generateJSON(ctx context.Context, parts []*genai.Part, out any) error {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	resp, err := o.models.GenerateContent(ctx, o.model, contents, nil)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return errors.New("empty response from model")
	}

	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, truncate(rawText, 500))
	}
	return nil
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object or array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(s, closer); end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
