package vcs

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// NewGitHubClient creates a GitHub client with token authentication.
func NewGitHubClient(ctx context.Context, token string) (*github.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts)), nil
}

// PullRequestService finds or opens pull requests for enforcement
// branches on one repository.
type PullRequestService struct {
	client *github.Client
	owner  string
	repo   string
	log    *zap.Logger

	retries int
	backoff time.Duration
}

// NewPullRequestService creates a service for owner/repo.
func NewPullRequestService(client *github.Client, owner, repo string, log *zap.Logger) *PullRequestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PullRequestService{
		client:  client,
		owner:   owner,
		repo:    repo,
		log:     log,
		retries: 3,
		backoff: time.Second,
	}
}

// EnsurePullRequest returns the open pull request from head into base,
// creating it when none exists. Repeated enforcement passes against the
// same branch reuse the original pull request.
func (s *PullRequestService) EnsurePullRequest(ctx context.Context, head, base, title, body string) (engine.PullRequestRef, error) {
	existing, err := s.findOpen(ctx, head, base)
	if err != nil {
		return engine.PullRequestRef{}, err
	}
	if existing != nil {
		s.log.Info("reusing open pull request",
			zap.Int("number", existing.GetNumber()),
			zap.String("url", existing.GetHTMLURL()),
		)
		return refOf(existing), nil
	}

	var pr *github.PullRequest
	err = s.retry(ctx, func() (*github.Response, error) {
		var resp *github.Response
		pr, resp, err = s.client.PullRequests.Create(ctx, s.owner, s.repo, &github.NewPullRequest{
			Title: github.String(title),
			Head:  github.String(head),
			Base:  github.String(base),
			Body:  github.String(body),
		})
		return resp, err
	})
	if err != nil {
		return engine.PullRequestRef{}, fmt.Errorf("create pull request: %w", err)
	}

	s.log.Info("opened pull request",
		zap.Int("number", pr.GetNumber()),
		zap.String("url", pr.GetHTMLURL()),
	)
	return refOf(pr), nil
}

func (s *PullRequestService) findOpen(ctx context.Context, head, base string) (*github.PullRequest, error) {
	var prs []*github.PullRequest
	err := s.retry(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		prs, resp, err = s.client.PullRequests.List(ctx, s.owner, s.repo, &github.PullRequestListOptions{
			State: "open",
			Head:  s.owner + ":" + head,
			Base:  base,
		})
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}

// retry runs operation with exponential backoff on rate limits and
// server errors. Client errors fail immediately.
func (s *PullRequestService) retry(ctx context.Context, operation func() (*github.Response, error)) error {
	backoff := s.backoff
	var lastErr error

	for attempt := 0; attempt <= s.retries; attempt++ {
		resp, err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryableResponse(resp) {
			return err
		}
		if attempt == s.retries {
			break
		}

		s.log.Debug("retrying GitHub API call",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return fmt.Errorf("after %d retries: %w", s.retries, lastErr)
}

func retryableResponse(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		return true
	}
	code := resp.StatusCode
	if code == http.StatusTooManyRequests {
		return true
	}
	if code == http.StatusForbidden && resp.Rate.Limit > 0 && resp.Rate.Remaining == 0 {
		return true
	}
	return code >= 500 && code < 600
}

func refOf(pr *github.PullRequest) engine.PullRequestRef {
	return engine.PullRequestRef{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
	}
}
