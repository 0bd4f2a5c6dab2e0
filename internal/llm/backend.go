package llm

import (
	"fmt"

	"github.com/kevinmichaelchen/readmegen/internal/config"
)

// New builds the generator selected by cfg.Backend.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		return NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.MaxTokens), nil
	case config.BackendLocal:
		return NewLocalClient(cfg.LocalBaseURL, cfg.LocalModel, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
