package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kevinmichaelchen/readmegen/internal/config"
	"github.com/kevinmichaelchen/readmegen/internal/github"
	"github.com/kevinmichaelchen/readmegen/internal/llm"
	"github.com/kevinmichaelchen/readmegen/internal/pipeline"
	"github.com/kevinmichaelchen/readmegen/internal/prompt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "readmegen",
		Short: "GitHub repository → README.md written by an LLM",
	}

	flags := root.PersistentFlags()
	flags.String("github-token", "", "GitHub token (env GITHUB_TOKEN)")
	flags.String("github-api-url", "", "GitHub API root (env GITHUB_API_URL)")
	flags.String("backend", "", "Generation backend: remote or local (env README_BACKEND)")
	flags.Int("max-chars", 0, "Truncate the code blob to this many characters, 0 for no limit (env MAX_CHARS)")
	flags.String("ext", "", "Comma-separated file name suffixes to include (env FILE_EXTENSIONS)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")

	root.AddCommand(generateCmd(), promptCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:          "generate [repo-url]",
		Short:        "Generate README.md from the repository's top-level files and commit it",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(cmd.Flags())
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			repo, err := github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken, cfg.CommitMessage)
			if err != nil {
				return err
			}
			// Built once per process; the local backend resolves its model lazily.
			gen, err := llm.New(cfg)
			if err != nil {
				return err
			}

			wf := pipeline.New(repo, newAssembler(cfg), gen, logger)
			wf.OnTransition = printProgress(cfg)

			res := wf.Run(cmd.Context(), args[0], pipeline.Options{DryRun: dryRun})
			if !res.OK() {
				return fmt.Errorf("%s failed: %w", res.FailedAt, res.Err)
			}

			if res.Written {
				fmt.Fprintf(os.Stderr, "README generated and committed to %s\n", res.Repo.FullName())
			}
			fmt.Println(res.Readme)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate but do not commit")
	cmd.Flags().String("api-key", "", "API key for the remote backend (env LLM_API_KEY or GROQ_API_KEY)")
	cmd.Flags().String("base-url", "", "Remote chat API base URL (env LLM_BASE_URL)")
	cmd.Flags().String("model", "", "Remote model (env LLM_MODEL)")
	cmd.Flags().String("local-base-url", "", "Local model server base URL (env LOCAL_LLM_BASE_URL)")
	cmd.Flags().String("local-model", "", "Local model (env LOCAL_LLM_MODEL)")
	cmd.Flags().Int("max-tokens", 0, "Generated token budget, 0 for the backend default (env MAX_TOKENS)")
	cmd.Flags().String("commit-message", "", "Commit message for the README update (env COMMIT_MESSAGE)")
	return cmd
}

func promptCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "prompt [repo-url]",
		Short:        "Print the prompt that generate would send, without calling the model",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(cmd.Flags())
			if err := cfg.ValidateBackend(); err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			repo, err := github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken, "")
			if err != nil {
				return err
			}

			// No generator: a prompt-only run stops before generation.
			wf := pipeline.New(repo, newAssembler(cfg), nil, logger)
			res := wf.Run(cmd.Context(), args[0], pipeline.Options{PromptOnly: true})
			if !res.OK() {
				return fmt.Errorf("%s failed: %w", res.FailedAt, res.Err)
			}

			fmt.Fprintf(os.Stderr, "Included %d files: %s\n", len(res.Files), strings.Join(res.Files, ", "))
			fmt.Println(res.Prompt)
			return nil
		},
	}
}

func newAssembler(cfg *config.Config) prompt.Assembler {
	tmpl := prompt.ChatTemplate
	if cfg.Backend == config.BackendLocal {
		tmpl = prompt.LocalTemplate
	}
	return prompt.Assembler{
		Template:   tmpl,
		Extensions: cfg.Extensions,
		MaxChars:   cfg.MaxChars,
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
}

func printProgress(cfg *config.Config) func(pipeline.State) {
	model := cfg.LLMModel
	if cfg.Backend == config.BackendLocal {
		model = cfg.LocalModel
	}
	return func(s pipeline.State) {
		switch s {
		case pipeline.StateListing:
			fmt.Fprintln(os.Stderr, "Fetching repository files...")
		case pipeline.StateGenerating:
			fmt.Fprintf(os.Stderr, "Generating README with %s (%s backend)...\n", model, cfg.Backend)
		case pipeline.StateWriting:
			fmt.Fprintln(os.Stderr, "Updating README in GitHub...")
		}
	}
}
