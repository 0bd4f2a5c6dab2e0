package pipeline

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kevinmichaelchen/readmegen/internal/github"
	"github.com/kevinmichaelchen/readmegen/internal/llm"
	"github.com/kevinmichaelchen/readmegen/internal/models"
	"github.com/kevinmichaelchen/readmegen/internal/prompt"
	"github.com/rs/zerolog"
)

// RepoClient is the part of the GitHub contents API a run needs.
type RepoClient interface {
	prompt.FileReader
	ListTopLevel(ctx context.Context, ref models.RepositoryRef) ([]models.RepoEntry, error)
	UpsertReadme(ctx context.Context, ref models.RepositoryRef, content, sha string) error
}

type Options struct {
	// DryRun generates the README but does not write it.
	DryRun bool
	// PromptOnly stops once the prompt is assembled.
	PromptOnly bool
}

// Result is the outcome of one run. Err is nil exactly when State is Done.
type Result struct {
	RunID    string
	State    State
	FailedAt State
	Kind     ErrorKind
	Err      error

	Repo      models.RepositoryRef
	Files     []string
	Prompt    string
	Readme    string
	ReadmeSHA string
	Written   bool
}

func (r Result) OK() bool {
	return r.State == StateDone
}

type Workflow struct {
	repo      RepoClient
	assembler prompt.Assembler
	generator llm.Generator
	logger    zerolog.Logger

	// OnTransition, if set, is called every time the run enters a state.
	OnTransition func(State)
}

func New(repo RepoClient, assembler prompt.Assembler, generator llm.Generator, logger zerolog.Logger) *Workflow {
	return &Workflow{
		repo:      repo,
		assembler: assembler,
		generator: generator,
		logger:    logger,
	}
}

// Run takes one repository URL from Idle to Done or Failed. The first step
// error ends the run and is reported in the Result; nothing already done is
// rolled back.
func (w *Workflow) Run(ctx context.Context, repoURL string, opts Options) Result {
	res := Result{RunID: uuid.NewString(), State: StateIdle}
	log := w.logger.With().Str("run_id", res.RunID).Logger()

	enter := func(s State) {
		res.State = s
		log.Debug().Str("state", s.String()).Msg("transition")
		if w.OnTransition != nil {
			w.OnTransition(s)
		}
	}
	fail := func(err error) Result {
		res.FailedAt = res.State
		res.Err = err
		res.Kind = Classify(err)
		enter(StateFailed)
		log.Error().Err(err).Str("failed_at", res.FailedAt.String()).Str("kind", string(res.Kind)).Msg("run failed")
		return res
	}

	// Step 1: Locate
	enter(StateLocating)
	ref, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return fail(err)
	}
	res.Repo = ref
	log = log.With().Str("repo", ref.FullName()).Logger()

	// Step 2: List
	enter(StateListing)
	entries, err := w.repo.ListTopLevel(ctx, ref)
	if err != nil {
		return fail(err)
	}
	if readme, ok := models.FindReadme(entries); ok {
		res.ReadmeSHA = readme.SHA
	}
	log.Info().Int("entries", len(entries)).Bool("has_readme", res.ReadmeSHA != "").Msg("listed repository")

	// Step 3: Assemble
	enter(StateAssembling)
	p, err := w.assembler.Assemble(ctx, entries, w.repo)
	if err != nil {
		return fail(err)
	}
	res.Files = p.Files
	res.Prompt = p.Text
	log.Info().Strs("files", p.Files).Int("chars", utf8.RuneCountInString(p.Text)).Msg("assembled prompt")

	if opts.PromptOnly {
		enter(StateDone)
		return res
	}

	// Step 4: Generate
	enter(StateGenerating)
	readme, err := w.generator.Generate(ctx, p.Text)
	if err != nil {
		return fail(err)
	}
	res.Readme = readme
	log.Info().Int("chars", utf8.RuneCountInString(readme)).Msg("generated README")

	if opts.DryRun {
		log.Info().Msg("dry run, skipping write")
		enter(StateDone)
		return res
	}

	// Step 5: Write
	enter(StateWriting)
	if err := w.repo.UpsertReadme(ctx, ref, readme, res.ReadmeSHA); err != nil {
		return fail(err)
	}
	res.Written = true
	log.Info().Bool("updated", res.ReadmeSHA != "").Msg("wrote README")

	enter(StateDone)
	return res
}

// Classify maps an error to its kind.
func Classify(err error) ErrorKind {
	var (
		accessErr *github.RepoAccessError
		writeErr  *github.RepoWriteError
		decodeErr *github.DecodeError
		genErr    *llm.GenerationError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, github.ErrInvalidURL):
		return KindInvalidURL
	case errors.As(err, &accessErr):
		return KindRepoAccess
	case errors.As(err, &writeErr):
		return KindRepoWrite
	case errors.As(err, &genErr):
		return KindGeneration
	case errors.As(err, &decodeErr):
		return KindDecode
	default:
		return KindUnknown
	}
}
