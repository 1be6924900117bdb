package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// contentGenerator is the slice of *genai.GenerativeModel used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiSummarizer calls the generate-content API.
type GeminiSummarizer struct {
	model  contentGenerator
	client *genai.Client
	tuning Tuning
}

var _ ports.Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer opens a client bound to p.Model. BaseURL overrides the API endpoint.
func NewGeminiSummarizer(ctx context.Context, p config.ProviderConfig, tuning Tuning) (*GeminiSummarizer, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, missingKey(ProviderGemini)
	}

	opts := []option.ClientOption{option.WithAPIKey(p.APIKey)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(p.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, domain.NewProviderError(ProviderGemini, err)
	}

	name := p.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(tuning.Temperature)
	model.SetMaxOutputTokens(int32(tuning.MaxTokens))
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	return &GeminiSummarizer{model: model, client: client, tuning: tuning}, nil
}

func (s *GeminiSummarizer) Name() string {
	return ProviderGemini
}

// Summarize concatenates the text parts of the first candidate.
func (s *GeminiSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := callContext(ctx, s.tuning.Timeout)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", domain.NewProviderError(ProviderGemini, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.NewProviderError(ProviderGemini, errors.New("no candidates in response"))
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return completion(ProviderGemini, b.String())
}

// Close releases the underlying client.
func (s *GeminiSummarizer) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
