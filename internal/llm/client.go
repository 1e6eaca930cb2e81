// Package llm wraps the external chat-completion provider behind a single
// "send messages, get one reply" operation. The provider speaks the
// OpenAI-compatible protocol; base URL, model and credential come from the
// environment. Calls are single-shot: a transport or authorization failure
// is terminal for the request, never retried.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured means the provider credential is absent. Callers degrade
// to a fixed in-band reply naming the configuration key.
var ErrNotConfigured = errors.New("CHUVINHA_AI_API_KEY não configurada")

const (
	// DefaultBaseURL is used when CHUVINHA_AI_BASE_URL is unset.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is used when CHUVINHA_AI_MODEL is unset.
	DefaultModel = "llama-3.3-70b-versatile"

	completionTemperature = 0.2
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Client is the narrow completion surface the assistant depends on.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config carries the environment-supplied provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	api   *openai.Client
	model string
	// configured is false when no credential was supplied; Complete then
	// fails fast with ErrNotConfigured instead of issuing a request.
	configured bool
}

// New builds a client from config, applying the Groq defaults the original
// product shipped with.
func New(cfg Config) *ChatClient {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = baseURL

	return &ChatClient{
		api:        openai.NewClientWithConfig(oc),
		model:      model,
		configured: apiKey != "",
	}
}

// Complete sends the messages and returns the single reply text. One
// attempt, no retries; an empty reply from the provider is an error.
func (c *ChatClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: completionTemperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("falha ao chamar IA: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("IA retornou resposta vazia")
	}
	return resp.Choices[0].Message.Content, nil
}

// CleanJSON strips markdown fences and surrounding prose from model output
// that was supposed to be raw JSON, keeping from the first '{' or '[' to the
// matching last '}' or ']'. It never validates; callers still parse strictly.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start, closer := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start != -1 {
		if end := strings.LastIndex(s, closer); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
