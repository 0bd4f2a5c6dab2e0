package prompt

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kevinmichaelchen/readmegen/internal/models"
)

// Placeholder marks where the code blob goes in a template.
const Placeholder = "{code}"

// LocalTemplate is short on purpose: small local models have a tiny context
// window.
const LocalTemplate = `You are an expert developer. Write a professional README.md file with title, summary, features, how to run, and tech stack based on the following code:

{code}`

const ChatTemplate = `
You are a senior developer and technical writer.

Your task is to directly generate a complete **README.md** file in GitHub markdown format, without any introductory statements or explanations.

The README should include:
1. **Project Title**: a clear and relevant heading.
2. **Problem Statement**: a concise summary of the problem the project solves.
3. **Dependencies and Requirements**: required libraries, tools, and language versions.
4. **Project Structure**: a brief description of each major file/folder.
5. **How to Run**: setup instructions in steps.
6. **Ideology and Solution**: how the code works and solves the problem.
7. **Technologies Used**: tools, libraries, frameworks involved.

Rules:
- Do **not** start with statements like "Here is your README" or "Below is the file".
- Start directly with the project title or ` + "`# Project Title`" + `.
- Use proper GitHub markdown formatting, bold headings, clean spacing, and bullet points.

Here is the project code you need to analyze:
{code}
`

// DefaultExtensions are matched as name suffixes. "ipynb" has no dot so that
// it matches exactly what the hosted variant has always selected.
func DefaultExtensions() []string {
	return []string{".py", ".js", ".java", ".md", "ipynb"}
}

// FileReader reads the decoded content of one listing entry.
type FileReader interface {
	ReadFile(ctx context.Context, entry models.RepoEntry) (string, error)
}

type Assembler struct {
	Template   string
	Extensions []string
	// MaxChars caps the code blob, not the whole prompt. Zero means no cap.
	MaxChars int
}

type Prompt struct {
	Text     string
	CodeBlob string
	Files    []string
}

// Assemble reads every selected entry in listing order and embeds the
// concatenated contents into the template. The first read error aborts.
func (a Assembler) Assemble(ctx context.Context, entries []models.RepoEntry, reader FileReader) (Prompt, error) {
	var (
		blob  strings.Builder
		files []string
	)

	for _, entry := range entries {
		if !a.selects(entry) {
			continue
		}

		content, err := reader.ReadFile(ctx, entry)
		if err != nil {
			return Prompt{}, err
		}

		fmt.Fprintf(&blob, "\n\n# %s\n%s", entry.Name, content)
		files = append(files, entry.Name)
	}

	code := Truncate(blob.String(), a.MaxChars)
	return Prompt{
		Text:     strings.Replace(a.Template, Placeholder, code, 1),
		CodeBlob: code,
		Files:    files,
	}, nil
}

func (a Assembler) selects(entry models.RepoEntry) bool {
	if entry.IsReadme() || !entry.IsFile() {
		return false
	}
	for _, ext := range a.Extensions {
		if strings.HasSuffix(entry.Name, ext) {
			return true
		}
	}
	return false
}

// Truncate keeps the first limit characters of s. A limit of zero or less
// leaves s untouched.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
