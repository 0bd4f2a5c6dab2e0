package github

import (
	"errors"
	"fmt"
)

var ErrInvalidURL = errors.New("invalid repository URL")

// RepoAccessError is returned when GitHub answers a read with a non-success
// status. Body holds the message GitHub sent back.
type RepoAccessError struct {
	StatusCode int
	Body       string
}

func (e *RepoAccessError) Error() string {
	return fmt.Sprintf("GitHub API returned %d: %s", e.StatusCode, e.Body)
}

// RepoWriteError is returned when the README upsert is not answered with
// 200 or 201.
type RepoWriteError struct {
	StatusCode int
	Body       string
}

func (e *RepoWriteError) Error() string {
	return fmt.Sprintf("updating README: GitHub API returned %d: %s", e.StatusCode, e.Body)
}

// DecodeError means a file's content was not inlined as base64, did not
// decode, or was not UTF-8 text.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
