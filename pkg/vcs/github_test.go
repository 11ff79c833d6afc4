package vcs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) *PullRequestService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	svc := NewPullRequestService(client, "octo", "laws", nil)
	svc.backoff = time.Millisecond
	return svc
}

func TestNewGitHubClient(t *testing.T) {
	client, err := NewGitHubClient(context.Background(), "token")
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = NewGitHubClient(context.Background(), "")
	require.Error(t, err)
}

func TestEnsurePullRequestCreates(t *testing.T) {
	var created bool
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/laws/pulls", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "octo:enforcement", r.URL.Query().Get("head"))
			assert.Equal(t, "main", r.URL.Query().Get("base"))
			fmt.Fprint(w, "[]")
		case http.MethodPost:
			created = true
			var req github.NewPullRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "enforcement", req.GetHead())
			assert.Equal(t, "main", req.GetBase())
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"number": 7, "html_url": "https://github.com/octo/laws/pull/7"}`)
		}
	})

	svc := newTestService(t, mux)
	ref, err := svc.EnsurePullRequest(context.Background(), "enforcement", "main", "title", "body")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 7, ref.Number)
	assert.Equal(t, "https://github.com/octo/laws/pull/7", ref.URL)
}

func TestEnsurePullRequestReusesOpen(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/laws/pulls", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "must not create a second pull request")
		fmt.Fprint(w, `[{"number": 3, "html_url": "https://github.com/octo/laws/pull/3"}]`)
	})

	svc := newTestService(t, mux)
	ref, err := svc.EnsurePullRequest(context.Background(), "enforcement", "main", "title", "body")
	require.NoError(t, err)
	assert.Equal(t, 3, ref.Number)
	assert.Equal(t, "https://github.com/octo/laws/pull/3", ref.URL)
}

func TestEnsurePullRequestRetriesServerErrors(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/laws/pulls", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"number": 3, "html_url": "https://github.com/octo/laws/pull/3"}]`)
	})

	svc := newTestService(t, mux)
	ref, err := svc.EnsurePullRequest(context.Background(), "enforcement", "main", "title", "body")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 3, ref.Number)
}

func TestEnsurePullRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/laws/pulls", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "validation failed"}`)
	})

	svc := newTestService(t, mux)
	_, err := svc.EnsurePullRequest(context.Background(), "enforcement", "main", "title", "body")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
