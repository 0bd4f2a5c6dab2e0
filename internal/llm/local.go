package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// LocalClient generates text with a model served on this machine through the
// OpenAI-compatible text-completions endpoint (Ollama, llama.cpp server,
// vLLM). Build one per process and share it: the model is resolved on the
// first successful Generate call only.
type LocalClient struct {
	client    *openai.Client
	model     string
	maxTokens int

	mu     sync.Mutex
	loaded bool
}

func NewLocalClient(baseURL, model string, maxTokens int) *LocalClient {
	// Local servers ignore the key, but go-openai always sends one.
	cfg := openai.DefaultConfig("local")
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &LocalClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate returns the top completion as the server reports it. Depending on
// the model and server, the text may start with the echoed prompt.
func (c *LocalClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.load(ctx); err != nil {
		return "", err
	}

	resp, err := c.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
		N:           1,
	})
	if err != nil {
		return "", generationError("local", err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: "local", Err: errors.New("no choices returned")}
	}

	return resp.Choices[0].Text, nil
}

// load checks that the server lists the model. Only a successful check is
// remembered; a failed or cancelled one is retried on the next call.
func (c *LocalClient) load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	models, err := c.client.ListModels(ctx)
	if err != nil {
		return generationError("local", fmt.Errorf("listing models: %w", err))
	}
	for _, m := range models.Models {
		// Ollama lists untagged models as name:latest.
		if m.ID == c.model || m.ID == c.model+":latest" {
			c.loaded = true
			return nil
		}
	}
	return &GenerationError{Backend: "local", Err: fmt.Errorf("model %s is not served", c.model)}
}
