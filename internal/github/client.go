package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v59/github"
	"github.com/tildaslashalef/nestlint/internal/config"
	"github.com/tildaslashalef/nestlint/internal/loggy"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultAPIURL = "https://api.github.com"

// Client wraps the GitHub API with client-side rate limiting and retries
type Client struct {
	client     *github.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *loggy.Logger
	newBackOff func() backoff.BackOff
}

// NewClient creates a new GitHub API client from cfg
func NewClient(cfg config.GitHubConfig, logger *loggy.Logger) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	var client *github.Client
	if cfg.APIURL != "" && cfg.APIURL != defaultAPIURL {
		var err error
		client, err = github.NewEnterpriseClient(cfg.APIURL, cfg.APIURL, tc)
		if err != nil {
			return nil, fmt.Errorf("creating enterprise client for %s: %w", cfg.APIURL, err)
		}
	} else {
		client = github.NewClient(tc)
	}

	return &Client{
		client:     client,
		limiter:    newLimiter(cfg.RequestsPerSecond),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

// newLimiter returns an unlimited limiter for non-positive rates
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// do runs op under the rate limiter, retrying failures that retry accepts
func (c *Client) do(ctx context.Context, name string, retry func(*github.Response) bool, op func() (*github.Response, error)) error {
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		resp, err := op()
		if err == nil {
			return nil
		}

		if !retry(resp) {
			return backoff.Permanent(err)
		}

		c.logger.Debug("Retrying GitHub request", "request", name, "attempt", attempt, "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// retryable reports whether a failed response is worth another attempt.
// Transport errors without a response are retried.
func retryable(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

// rateLimited reports whether a request was rejected before it was processed.
// Writes only retry on this, since a server or transport error may hide a comment that was posted.
func rateLimited(resp *github.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusTooManyRequests
}

// GetPullRequest gets a pull request by number
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must be provided")
	}

	var pr *github.PullRequest
	err := c.do(ctx, "get pull request", retryable, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = c.client.PullRequests.Get(ctx, owner, repo, number)
		return resp, err
	})
	return pr, err
}

// ListReviewComments returns every review comment on a pull request
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestComment, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*github.PullRequestComment
	for {
		var page []*github.PullRequestComment
		var next int
		err := c.do(ctx, "list review comments", retryable, func() (*github.Response, error) {
			comments, resp, err := c.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
			if err == nil {
				page = comments
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		if next == 0 {
			return all, nil
		}
		opts.Page = next
	}
}

// CreateReviewComment posts a single review comment on a pull request
func (c *Client) CreateReviewComment(ctx context.Context, owner, repo string, number int, comment *github.PullRequestComment) error {
	return c.do(ctx, "create review comment", rateLimited, func() (*github.Response, error) {
		_, resp, err := c.client.PullRequests.CreateComment(ctx, owner, repo, number, comment)
		return resp, err
	})
}
