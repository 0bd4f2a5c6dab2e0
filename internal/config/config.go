package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kevinmichaelchen/readmegen/internal/prompt"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Backend string

const (
	BackendRemote Backend = "remote"
	BackendLocal  Backend = "local"
)

type Config struct {
	GitHubToken   string
	GitHubBaseURL string
	CommitMessage string

	Backend Backend

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	LocalBaseURL string
	LocalModel   string

	// MaxTokens bounds the generated output. MaxChars bounds the code blob
	// sent to the model; zero means unbounded.
	MaxTokens  int
	MaxChars   int
	Extensions []string

	LogLevel string
}

// envKeys maps config keys (also the CLI flag names) to environment
// variables. The first non-empty variable wins.
var envKeys = map[string][]string{
	"github-token":   {"GITHUB_TOKEN"},
	"github-api-url": {"GITHUB_API_URL"},
	"commit-message": {"COMMIT_MESSAGE"},
	"backend":        {"README_BACKEND"},
	"base-url":       {"LLM_BASE_URL"},
	"api-key":        {"LLM_API_KEY", "GROQ_API_KEY"},
	"model":          {"LLM_MODEL"},
	"local-base-url": {"LOCAL_LLM_BASE_URL"},
	"local-model":    {"LOCAL_LLM_MODEL"},
	"max-tokens":     {"MAX_TOKENS"},
	"max-chars":      {"MAX_CHARS"},
	"ext":            {"FILE_EXTENSIONS"},
	"log-level":      {"LOG_LEVEL"},
}

// Load reads .env, the environment and, when given, the command's flags.
// Flags that were set explicitly take precedence over the environment.
func Load(flags *pflag.FlagSet) *Config {
	_ = godotenv.Load()

	v := viper.New()
	for key, names := range envKeys {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	if flags != nil {
		_ = v.BindPFlags(flags)
	}

	cfg := &Config{
		GitHubToken:   v.GetString("github-token"),
		GitHubBaseURL: v.GetString("github-api-url"),
		CommitMessage: v.GetString("commit-message"),

		Backend: Backend(strings.ToLower(v.GetString("backend"))),

		LLMBaseURL: v.GetString("base-url"),
		LLMAPIKey:  v.GetString("api-key"),
		LLMModel:   v.GetString("model"),

		LocalBaseURL: v.GetString("local-base-url"),
		LocalModel:   v.GetString("local-model"),

		MaxTokens:  v.GetInt("max-tokens"),
		MaxChars:   v.GetInt("max-chars"),
		Extensions: splitList(v.GetString("ext")),

		LogLevel: v.GetString("log-level"),
	}

	if cfg.Backend == "" {
		cfg.Backend = BackendRemote
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "llama3-8b-8192"
	}
	if cfg.LocalBaseURL == "" {
		cfg.LocalBaseURL = "http://localhost:11434/v1"
	}
	if cfg.LocalModel == "" {
		cfg.LocalModel = "gpt2"
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = prompt.DefaultExtensions()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Small local models get a tight budget; hosted models get the whole blob
	// unless told otherwise.
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
		if cfg.Backend == BackendLocal {
			cfg.MaxTokens = 300
		}
	}
	if !v.IsSet("max-chars") && cfg.Backend == BackendLocal {
		cfg.MaxChars = 1000
	}

	return cfg
}

// Validate checks everything a generate run needs.
func (c *Config) Validate() error {
	if err := c.ValidateBackend(); err != nil {
		return err
	}
	if c.Backend == BackendRemote && c.LLMAPIKey == "" {
		return fmt.Errorf("remote backend needs an API key (--api-key, LLM_API_KEY or GROQ_API_KEY)")
	}
	return nil
}

// ValidateBackend checks the backend and prompt budget only, for commands
// that never call the model.
func (c *Config) ValidateBackend() error {
	switch c.Backend {
	case BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendRemote, BackendLocal)
	}
	if c.MaxChars < 0 {
		return fmt.Errorf("max-chars must not be negative, got %d", c.MaxChars)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
