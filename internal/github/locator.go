package github

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kevinmichaelchen/readmegen/internal/models"
)

// ParseRepoURL extracts owner and name from a repository URL such as
// https://github.com/owner/name or https://github.com/owner/name.git.
// Path segments after the name are ignored.
func ParseRepoURL(raw string) (models.RepositoryRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.RepositoryRef{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	segments := strings.Split(path, "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return models.RepositoryRef{}, fmt.Errorf("%w: %q needs an owner and a repository name", ErrInvalidURL, raw)
	}

	return models.RepositoryRef{Owner: segments[0], Name: segments[1]}, nil
}
