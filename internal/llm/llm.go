package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const temperature = 0.7

// GenerationError wraps any failure of a generation backend. StatusCode is
// zero when the request never got an HTTP answer.
type GenerationError struct {
	Backend    string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed with %d: %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ChatClient generates text through an OpenAI-compatible chat-completions
// API such as Groq or OpenAI.
type ChatClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewChatClient(baseURL, apiKey, model string, maxTokens int) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &ChatClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

const systemPrompt = `You are a senior developer writing high-quality documentation.`

func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", generationError("remote", err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: "remote", Err: errors.New("no choices returned")}
	}

	return resp.Choices[0].Message.Content, nil
}

func generationError(backend string, err error) error {
	genErr := &GenerationError{Backend: backend, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		genErr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		genErr.StatusCode = reqErr.HTTPStatusCode
	}
	return genErr
}
