package models

import "strings"

// ReadmeName is the file the generated README is written to.
const ReadmeName = "README.md"

// RepositoryRef identifies a repository on the host.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

type EntryType string

const (
	EntryFile  EntryType = "file"
	EntryDir   EntryType = "dir"
	EntryOther EntryType = "other"
)

// RepoEntry is one item of a top-level contents listing.
type RepoEntry struct {
	Name       string    `json:"name"`
	Type       EntryType `json:"type"`
	ContentURL string    `json:"url"`
	SHA        string    `json:"sha,omitempty"`
}

func (e RepoEntry) IsFile() bool {
	return e.Type == EntryFile
}

// IsReadme reports whether the entry is the repository README (case-insensitive).
func (e RepoEntry) IsReadme() bool {
	return strings.EqualFold(e.Name, ReadmeName)
}

// FindReadme returns the README entry of a listing, if any. When several
// entries match, the last one wins.
func FindReadme(entries []RepoEntry) (RepoEntry, bool) {
	var (
		readme RepoEntry
		found  bool
	)
	for _, e := range entries {
		if e.IsReadme() {
			readme, found = e, true
		}
	}
	return readme, found
}
