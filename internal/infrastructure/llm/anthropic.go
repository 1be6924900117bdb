package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	maxResponseBody  = 1 << 20
)

// AnthropicSummarizer calls the Messages API.
type AnthropicSummarizer struct {
	apiKey     string
	baseURL    string
	model      string
	tuning     Tuning
	httpClient *http.Client
}

var _ ports.Summarizer = (*AnthropicSummarizer)(nil)

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicSummarizer builds the adapter; a nil client uses http.DefaultClient.
func NewAnthropicSummarizer(p config.ProviderConfig, tuning Tuning, client *http.Client) (*AnthropicSummarizer, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, missingKey(ProviderAnthropic)
	}

	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	model := p.Model
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AnthropicSummarizer{
		apiKey:     p.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		tuning:     tuning,
		httpClient: client,
	}, nil
}

func (s *AnthropicSummarizer) Name() string {
	return ProviderAnthropic
}

// Summarize returns the first text block of the assistant message.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := callContext(ctx, s.tuning.Timeout)
	defer cancel()

	resp, err := s.send(ctx, anthropicRequest{
		Model:       s.model,
		MaxTokens:   s.tuning.MaxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		Temperature: s.tuning.Temperature,
	})
	if err != nil {
		return "", domain.NewProviderError(ProviderAnthropic, err)
	}

	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			return completion(ProviderAnthropic, block.Text)
		}
	}
	return "", domain.NewProviderError(ProviderAnthropic, errors.New("no text content in response"))
}

func (s *AnthropicSummarizer) send(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("api error (%d): %s: %s", httpResp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("api error (%d): %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}
