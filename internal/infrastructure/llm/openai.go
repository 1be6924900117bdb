package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// OpenAISummarizer calls the chat-completions API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
	tuning Tuning
}

var _ ports.Summarizer = (*OpenAISummarizer)(nil)

// NewOpenAISummarizer builds a client; BaseURL targets compatible gateways.
func NewOpenAISummarizer(p config.ProviderConfig, tuning Tuning) (*OpenAISummarizer, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, missingKey(ProviderOpenAI)
	}

	clientConfig := openai.DefaultConfig(p.APIKey)
	if p.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(p.BaseURL, "/")
	}

	model := p.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		tuning: tuning,
	}, nil
}

func (s *OpenAISummarizer) Name() string {
	return ProviderOpenAI
}

// Summarize sends prompt as the user message and returns the first choice.
func (s *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := callContext(ctx, s.tuning.Timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.tuning.MaxTokens,
		Temperature: s.tuning.Temperature,
	})
	if err != nil {
		return "", domain.NewProviderError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewProviderError(ProviderOpenAI, errors.New("no choices in response"))
	}

	return completion(ProviderOpenAI, resp.Choices[0].Message.Content)
}
