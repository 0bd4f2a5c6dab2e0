package github_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kevinmichaelchen/readmegen/internal/github"
	"github.com/kevinmichaelchen/readmegen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoRef = models.RepositoryRef{Owner: "octo", Name: "demo"}

// newServer starts a fake GitHub API. The handler receives the server URL so
// it can hand out absolute content URLs the way GitHub does.
func newServer(t *testing.T, handler func(base string) http.HandlerFunc) (*httptest.Server, *github.Client) {
	t.Helper()

	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(base)(w, r)
	}))
	base = srv.URL
	t.Cleanup(srv.Close)

	client, err := github.NewClient(srv.URL, "tok", "")
	require.NoError(t, err)
	return srv, client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListTopLevel(t *testing.T) {
	t.Parallel()

	t.Run("should map entries in listing order", func(t *testing.T) {
		t.Parallel()

		// given
		var authHeader, path string
		_, client := newServer(t, func(base string) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				authHeader = r.Header.Get("Authorization")
				path = r.URL.Path
				writeJSON(w, http.StatusOK, []map[string]any{
					{"name": "b.py", "type": "file", "url": base + "/repos/octo/demo/contents/b.py", "sha": "s1"},
					{"name": "src", "type": "dir", "url": base + "/repos/octo/demo/contents/src", "sha": "s2"},
					{"name": "README.md", "type": "file", "url": base + "/repos/octo/demo/contents/README.md", "sha": "abc"},
					{"name": "vendor", "type": "submodule", "url": base + "/repos/octo/demo/contents/vendor", "sha": "s3"},
				})
			}
		})

		// when
		entries, err := client.ListTopLevel(t.Context(), demoRef)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", authHeader)
		assert.Equal(t, "/repos/octo/demo/contents/", path)
		require.Len(t, entries, 4)
		assert.Equal(t, []string{"b.py", "src", "README.md", "vendor"},
			[]string{entries[0].Name, entries[1].Name, entries[2].Name, entries[3].Name})
		assert.Equal(t, models.EntryFile, entries[0].Type)
		assert.Equal(t, models.EntryDir, entries[1].Type)
		assert.Equal(t, models.EntryOther, entries[3].Type)
		assert.Equal(t, "abc", entries[2].SHA)
		assert.Contains(t, entries[0].ContentURL, "/repos/octo/demo/contents/b.py")
	})

	t.Run("should return RepoAccessError on non-success status", func(t *testing.T) {
		t.Parallel()

		// given
		_, client := newServer(t, func(string) http.HandlerFunc {
			return func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			}
		})

		// when
		_, err := client.ListTopLevel(t.Context(), demoRef)

		// then
		var accessErr *github.RepoAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, http.StatusNotFound, accessErr.StatusCode)
		assert.Equal(t, "Not Found", accessErr.Body)
	})
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	serveContent := func(content string) func(string) http.HandlerFunc {
		return func(string) http.HandlerFunc {
			return func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"name": "a.py", "encoding": "base64", "content": content})
			}
		}
	}

	t.Run("should decode line-wrapped base64 content", func(t *testing.T) {
		t.Parallel()

		// given
		encoded := base64.StdEncoding.EncodeToString([]byte("print('héllo')\n"))
		wrapped := encoded[:8] + "\n" + encoded[8:] + "\n"
		srv, client := newServer(t, serveContent(wrapped))
		entry := models.RepoEntry{Name: "a.py", Type: models.EntryFile, ContentURL: srv.URL + "/repos/octo/demo/contents/a.py"}

		// when
		text, err := client.ReadFile(t.Context(), entry)

		// then
		require.NoError(t, err)
		assert.Equal(t, "print('héllo')\n", text)
	})

	t.Run("should fail with DecodeError on malformed base64", func(t *testing.T) {
		t.Parallel()

		// given
		srv, client := newServer(t, serveContent("not base64!!"))
		entry := models.RepoEntry{Name: "a.py", ContentURL: srv.URL + "/repos/octo/demo/contents/a.py"}

		// when
		_, err := client.ReadFile(t.Context(), entry)

		// then
		var decodeErr *github.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "a.py", decodeErr.Name)
	})

	t.Run("should fail with DecodeError on invalid UTF-8", func(t *testing.T) {
		t.Parallel()

		// given
		srv, client := newServer(t, serveContent(base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})))
		entry := models.RepoEntry{Name: "a.py", ContentURL: srv.URL + "/repos/octo/demo/contents/a.py"}

		// when
		_, err := client.ReadFile(t.Context(), entry)

		// then
		var decodeErr *github.DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("should fail with DecodeError when the file is too large to inline", func(t *testing.T) {
		t.Parallel()

		// given
		srv, client := newServer(t, func(string) http.HandlerFunc {
			return func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"name": "big.py", "encoding": "none", "content": "", "size": 2 << 20})
			}
		})
		entry := models.RepoEntry{Name: "big.py", ContentURL: srv.URL + "/repos/octo/demo/contents/big.py"}

		// when
		text, err := client.ReadFile(t.Context(), entry)

		// then
		var decodeErr *github.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "big.py", decodeErr.Name)
		assert.Contains(t, err.Error(), `"none"`)
		assert.Empty(t, text)
	})

	t.Run("should return RepoAccessError when the file cannot be read", func(t *testing.T) {
		t.Parallel()

		// given
		srv, client := newServer(t, func(string) http.HandlerFunc {
			return func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "Resource not accessible"})
			}
		})
		entry := models.RepoEntry{Name: "a.py", ContentURL: srv.URL + "/repos/octo/demo/contents/a.py"}

		// when
		_, err := client.ReadFile(t.Context(), entry)

		// then
		var accessErr *github.RepoAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, http.StatusForbidden, accessErr.StatusCode)
	})
}

func TestUpsertReadme(t *testing.T) {
	t.Parallel()

	type captured struct {
		method string
		path   string
		body   map[string]any
	}

	capture := func(status int, got *captured) func(string) http.HandlerFunc {
		return func(string) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				got.method = r.Method
				got.path = r.URL.Path
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &got.body)
				writeJSON(w, status, map[string]any{
					"content": map[string]any{"name": "README.md", "sha": "new-sha"},
				})
			}
		}
	}

	t.Run("should send the prior sha when known", func(t *testing.T) {
		t.Parallel()

		// given
		var got captured
		_, client := newServer(t, capture(http.StatusOK, &got))

		// when
		err := client.UpsertReadme(t.Context(), demoRef, "# Demo\n", "abc")

		// then
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, got.method)
		assert.Equal(t, "/repos/octo/demo/contents/README.md", got.path)
		assert.Equal(t, "abc", got.body["sha"])
		assert.Equal(t, github.DefaultCommitMessage, got.body["message"])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("# Demo\n")), got.body["content"])
	})

	t.Run("should omit sha when creating the file", func(t *testing.T) {
		t.Parallel()

		// given
		var got captured
		_, client := newServer(t, capture(http.StatusCreated, &got))

		// when
		err := client.UpsertReadme(t.Context(), demoRef, "# Demo\n", "")

		// then
		require.NoError(t, err)
		assert.NotContains(t, got.body, "sha")
	})

	t.Run("should use the configured commit message", func(t *testing.T) {
		t.Parallel()

		// given
		var got captured
		srv := httptest.NewServer(capture(http.StatusOK, &got)(""))
		t.Cleanup(srv.Close)
		client, err := github.NewClient(srv.URL, "tok", "docs: refresh README")
		require.NoError(t, err)

		// when
		err = client.UpsertReadme(t.Context(), demoRef, "x", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "docs: refresh README", got.body["message"])
	})

	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity, http.StatusAccepted} {
		t.Run(fmt.Sprintf("should return RepoWriteError on status %d", status), func(t *testing.T) {
			t.Parallel()

			// given
			var got captured
			_, client := newServer(t, capture(status, &got))

			// when
			err := client.UpsertReadme(t.Context(), demoRef, "x", "stale")

			// then
			var writeErr *github.RepoWriteError
			require.ErrorAs(t, err, &writeErr)
			assert.Equal(t, status, writeErr.StatusCode)
		})
	}
}
