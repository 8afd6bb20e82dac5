package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v59/github"
	"github.com/tildaslashalef/nestlint/internal/config"
	"github.com/tildaslashalef/nestlint/internal/lint"
	"github.com/tildaslashalef/nestlint/internal/loggy"
)

// PRDetails identifies the pull request receiving comments
type PRDetails struct {
	Owner    string
	Repo     string
	PRNumber int
}

// Service posts review messages as pull request review comments
type Service struct {
	client *Client
	pr     PRDetails
	logger *loggy.Logger
}

// NewService creates a new GitHub service for the pull request in cfg
func NewService(cfg *config.Config, logger *loggy.Logger) (*Service, error) {
	client, err := NewClient(cfg.GitHub, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		client: client,
		pr: PRDetails{
			Owner:    cfg.GitHub.Owner,
			Repo:     cfg.GitHub.Repo,
			PRNumber: cfg.GitHub.PRNumber,
		},
		logger: logger,
	}, nil
}

// PR returns the pull request the service comments on
func (s *Service) PR() PRDetails {
	return s.pr
}

// CommentMessages posts one review comment per message on the pull request head commit.
// Messages already present as comments at the same path and line are skipped.
// It returns the number of comments created.
func (s *Service) CommentMessages(ctx context.Context, messages []lint.ReviewMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	if s.pr.Owner == "" || s.pr.Repo == "" {
		return 0, fmt.Errorf("unable to determine GitHub repository owner/repo")
	}

	pr, err := s.client.GetPullRequest(ctx, s.pr.Owner, s.pr.Repo, s.pr.PRNumber)
	if err != nil {
		s.logger.Error("Failed to get PR details",
			"error", err,
			"repo", fmt.Sprintf("%s/%s", s.pr.Owner, s.pr.Repo),
			"pr", s.pr.PRNumber)
		return 0, fmt.Errorf("failed to get PR details: %w", err)
	}

	if pr.Head == nil || pr.Head.SHA == nil {
		return 0, fmt.Errorf("unable to determine head commit SHA for PR #%d", s.pr.PRNumber)
	}
	commitSHA := pr.Head.GetSHA()

	existing, err := s.client.ListReviewComments(ctx, s.pr.Owner, s.pr.Repo, s.pr.PRNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing comments: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[commentKey(c.GetPath(), c.GetLine(), c.GetBody())] = true
	}

	created := 0
	for _, msg := range messages {
		key := commentKey(msg.Path, msg.LineNo(), msg.Message)
		if seen[key] {
			s.logger.Debug("Skipping existing comment", "path", msg.Path, "line", msg.LineNo())
			continue
		}

		comment := &github.PullRequestComment{
			Path:     github.String(msg.Path),
			CommitID: github.String(commitSHA),
			Body:     github.String(msg.Message),
			Line:     github.Int(msg.LineNo()),
			Side:     github.String("RIGHT"),
		}

		if err := s.client.CreateReviewComment(ctx, s.pr.Owner, s.pr.Repo, s.pr.PRNumber, comment); err != nil {
			s.logger.Error("Failed to submit comment to GitHub PR",
				"error", err,
				"path", msg.Path,
				"line", msg.LineNo(),
				"pr", s.pr.PRNumber)
			return created, fmt.Errorf("failed to submit comment: %w", err)
		}
		seen[key] = true
		created++
	}

	s.logger.Info("Submitted comments to GitHub PR",
		"created", created,
		"pr_url", fmt.Sprintf("https://github.com/%s/%s/pull/%d", s.pr.Owner, s.pr.Repo, s.pr.PRNumber))

	return created, nil
}

func commentKey(path string, line int, body string) string {
	return fmt.Sprintf("%s:%d:%s", path, line, body)
}

// ExtractRepoDetailsFromURL extracts owner and repo from a Git URL
func ExtractRepoDetailsFromURL(gitURL string) (owner, repo string, err error) {
	if gitURL == "" {
		return "", "", fmt.Errorf("empty Git URL")
	}

	// Handle different URL formats
	// https://github.com/owner/repo.git
	// git@github.com:owner/repo.git
	// https://github.com/owner/repo
	gitURL = strings.TrimSuffix(gitURL, ".git")

	var parts []string

	if strings.Contains(gitURL, "github.com/") {
		parts = strings.Split(gitURL, "github.com/")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid GitHub URL format: %s", gitURL)
		}
	} else if strings.Contains(gitURL, "github.com:") {
		parts = strings.Split(gitURL, "github.com:")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("invalid GitHub SSH URL format: %s", gitURL)
		}
	} else {
		return "", "", fmt.Errorf("unsupported Git URL format: %s", gitURL)
	}

	ownerRepo := strings.Split(parts[1], "/")
	if len(ownerRepo) < 2 || ownerRepo[0] == "" || ownerRepo[1] == "" {
		return "", "", fmt.Errorf("could not extract owner/repo from URL: %s", gitURL)
	}

	return ownerRepo[0], ownerRepo[1], nil
}
