package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/shubh-37/idea-processor/internal/models"
)

// Message is one turn sent to the model
type Message struct {
	Role    string // models.RoleUser or models.RoleAssistant
	Content string
}

// Request is a provider-neutral chat completion request
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider sends a completion to one model and returns the raw text
type Provider interface {
	Complete(ctx context.Context, model string, req Request) (string, error)
}

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider creates a provider. An empty baseURL uses the OpenAI API.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{client: openai.NewClient(opts...)}
}

func (p *OpenAIProvider) Complete(ctx context.Context, model string, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

// classify labels a provider error for logs
func classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidShape) || errors.Is(err, ErrNoJSON) {
		return "malformed response"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests"):
		return "rate limited"
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "internal server error") || strings.Contains(errStr, "server_error"):
		return "server error"
	}
	return "provider error"
}
