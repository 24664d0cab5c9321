package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const summaryPrompt = "Summarize the following extracted document text in at most five sentences. " +
	"Answer in the same language as the text. Do not add commentary."

// Summarizer produces short abstracts of extracted text. It is an optional
// add-on: extraction never depends on it being configured.
type Summarizer struct {
	client    *genai.Client
	modelName string
}

// NewSummarizer connects to Gemini. An empty model name selects the default.
func NewSummarizer(ctx context.Context, apiKey, modelName string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &Summarizer{client: cl, modelName: modelName}, nil
}

func (s *Summarizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Summarize returns a short abstract of text, or "" when the model declines.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	m := s.client.GenerativeModel(s.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(summaryPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
