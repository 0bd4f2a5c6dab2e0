package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	gh "github.com/google/go-github/v58/github"
	"github.com/kevinmichaelchen/readmegen/internal/models"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL       = "https://api.github.com/"
	DefaultCommitMessage = "📝 Auto-updated README using AI"
)

// Client is a thin wrapper around the GitHub contents API.
type Client struct {
	api           *gh.Client
	commitMessage string
}

// NewClient returns a client for the given API root. An empty token sends
// unauthenticated requests, which only works for public repositories and
// never for writes.
func NewClient(baseURL, token, commitMessage string) (*Client, error) {
	httpClient := http.DefaultClient
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" && baseURL != DefaultBaseURL {
		// go-github requires a trailing slash on the base URL
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	if commitMessage == "" {
		commitMessage = DefaultCommitMessage
	}

	return &Client{api: client, commitMessage: commitMessage}, nil
}

// ListTopLevel returns the root entries of the repository in the order GitHub
// lists them. Only the first page is read.
func (c *Client) ListTopLevel(ctx context.Context, ref models.RepositoryRef) ([]models.RepoEntry, error) {
	_, dir, resp, err := c.api.Repositories.GetContents(ctx, ref.Owner, ref.Name, "", nil)
	if err != nil {
		return nil, readError("listing contents of "+ref.FullName(), resp, err)
	}

	entries := make([]models.RepoEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, contentToEntry(item))
	}
	return entries, nil
}

// ReadFile fetches the entry's content URL and decodes the base64 payload.
func (c *Client) ReadFile(ctx context.Context, entry models.RepoEntry) (string, error) {
	req, err := c.api.NewRequest(http.MethodGet, entry.ContentURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", entry.Name, err)
	}

	var file gh.RepositoryContent
	resp, err := c.api.Do(ctx, req, &file)
	if err != nil {
		return "", readError("reading "+entry.Name, resp, err)
	}

	if file.Content == nil {
		return "", &DecodeError{Name: entry.Name, Err: errors.New("response has no content field")}
	}
	// Files over 1 MB come back with encoding "none" and empty content.
	if enc := file.GetEncoding(); enc != "base64" {
		return "", &DecodeError{Name: entry.Name, Err: fmt.Errorf("unsupported content encoding %q", enc)}
	}
	raw, err := base64.StdEncoding.DecodeString(*file.Content)
	if err != nil {
		return "", &DecodeError{Name: entry.Name, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &DecodeError{Name: entry.Name, Err: errors.New("content is not valid UTF-8")}
	}
	return string(raw), nil
}

// UpsertReadme writes README.md. A non-empty sha updates the existing file;
// GitHub rejects the write if that sha is stale.
func (c *Client) UpsertReadme(ctx context.Context, ref models.RepositoryRef, content, sha string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(c.commitMessage),
		Content: []byte(content),
	}
	if sha != "" {
		opts.SHA = gh.String(sha)
	}

	_, resp, err := c.api.Repositories.CreateFile(ctx, ref.Owner, ref.Name, models.ReadmeName, opts)
	if err != nil {
		if resp != nil && resp.Response != nil {
			return &RepoWriteError{StatusCode: resp.StatusCode, Body: errorBody(err)}
		}
		return fmt.Errorf("writing %s to %s: %w", models.ReadmeName, ref.FullName(), err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &RepoWriteError{StatusCode: resp.StatusCode, Body: resp.Status}
	}
	return nil
}

// --- internal ---

// readError turns a failed GET into a RepoAccessError when GitHub answered
// with a non-success status. Transport and JSON failures are only wrapped.
func readError(action string, resp *gh.Response, err error) error {
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &RepoAccessError{StatusCode: resp.StatusCode, Body: errorBody(err)}
	}
	return fmt.Errorf("%s: %w", action, err)
}

func errorBody(err error) string {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Message
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Message
	}
	return err.Error()
}

func contentToEntry(item *gh.RepositoryContent) models.RepoEntry {
	entry := models.RepoEntry{
		Name:       item.GetName(),
		ContentURL: item.GetURL(),
		SHA:        item.GetSHA(),
	}

	switch item.GetType() {
	case "file":
		entry.Type = models.EntryFile
	case "dir":
		entry.Type = models.EntryDir
	default:
		entry.Type = models.EntryOther
	}
	return entry
}
