package report

import (
	"context"
	"fmt"
)

// GitHubReporter posts messages as pull request review comments and echoes them locally
type GitHubReporter struct {
	commenter Commenter
	local     Reporter
}

// NewGitHubReporter creates a GitHubReporter; local may be nil
func NewGitHubReporter(commenter Commenter, local Reporter) *GitHubReporter {
	return &GitHubReporter{commenter: commenter, local: local}
}

// Report implements Reporter
func (r *GitHubReporter) Report(ctx context.Context, result Result) error {
	if r.local != nil {
		if err := r.local.Report(ctx, result); err != nil {
			return err
		}
	}

	if _, err := r.commenter.CommentMessages(ctx, result.Messages); err != nil {
		return fmt.Errorf("posting review comments: %w", err)
	}
	return nil
}
