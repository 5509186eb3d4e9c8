// Package gateway provides access to the outside world: the GitHub API through its
// REST and GraphQL clients, the CSV files exchanged between the commands, and the chart output.
package gateway

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

// IssueLister lists the open issues and pull requests of a repository.
// The returned sequence is lazy and can be ranged over only once; iteration
// stops at the first error.
type IssueLister interface {
	OpenIssues(ctx context.Context, owner, name string) iter.Seq2[domain.Issue, error]
}

// NewHTTPClient builds an authenticated HTTP client that waits out GitHub's secondary rate limits.
func NewHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// RESTLister lists issues through the REST API. The issues endpoint returns
// pull requests as well, so a single listing covers both.
type RESTLister struct {
	client *github.Client
	logger *zap.SugaredLogger
}

// NewRESTLister creates a RESTLister on top of httpClient.
func NewRESTLister(httpClient *http.Client, logger *zap.SugaredLogger) *RESTLister {
	return &RESTLister{
		client: github.NewClient(httpClient),
		logger: logger,
	}
}

// OpenIssues pages through the open issues of owner/name, requesting the next
// page only once the previous one has been consumed.
func (l *RESTLister) OpenIssues(ctx context.Context, owner, name string) iter.Seq2[domain.Issue, error] {
	return func(yield func(domain.Issue, error) bool) {
		l.logger.Debugw("Fetching open issues using REST API...", "repo", owner+"/"+name)
		opts := &github.IssueListByRepoOptions{
			State:       "open",
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			issues, resp, err := l.client.Issues.ListByRepo(ctx, owner, name, opts)
			if err != nil {
				yield(domain.Issue{}, fmt.Errorf("failed to list issues with REST API: %w", err))
				return
			}
			for _, issue := range issues {
				if !yield(fromRESTIssue(issue), nil) {
					return
				}
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
			l.logger.Debugw("  Fetching next page of issues...", "page", resp.NextPage)
		}
		l.logger.Debug("Completed fetching open issues.")
	}
}

func fromRESTIssue(issue *github.Issue) domain.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	return domain.Issue{
		Number:        issue.GetNumber(),
		CreatedAt:     issue.GetCreatedAt().Time,
		IsPullRequest: issue.PullRequestLinks != nil,
		Author:        issue.GetUser().GetLogin(),
		Assignee:      issue.GetAssignee().GetLogin(),
		Labels:        labels,
	}
}
