package gateway

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"sort"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

// itemNode is the part of Issue and PullRequest nodes the CSV needs.
type itemNode struct {
	Number    githubv4.Int
	CreatedAt githubv4.DateTime
	Author    struct {
		Login githubv4.String
	}
	Assignees struct {
		Nodes []struct {
			Login githubv4.String
		}
	} `graphql:"assignees(first: 1)"`
	Labels struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 100)"`
}

type openIssuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo pageInfo
			Nodes    []itemNode
		} `graphql:"issues(states: OPEN, first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type openPullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo pageInfo
			Nodes    []itemNode
		} `graphql:"pullRequests(states: OPEN, first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GraphQLLister lists issues and pull requests through the GraphQL API. The two
// connections are fetched concurrently and merged newest first, matching the
// order of the REST listing.
type GraphQLLister struct {
	client *githubv4.Client
	logger *zap.SugaredLogger
}

// NewGraphQLLister creates a GraphQLLister on top of httpClient.
func NewGraphQLLister(httpClient *http.Client, logger *zap.SugaredLogger) *GraphQLLister {
	return &GraphQLLister{
		client: githubv4.NewClient(httpClient),
		logger: logger,
	}
}

func (l *GraphQLLister) OpenIssues(ctx context.Context, owner, name string) iter.Seq2[domain.Issue, error] {
	return func(yield func(domain.Issue, error) bool) {
		var issues, pullRequests []domain.Issue

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			var err error
			issues, err = l.fetchIssues(egCtx, owner, name)
			return err
		})
		eg.Go(func() error {
			var err error
			pullRequests, err = l.fetchPullRequests(egCtx, owner, name)
			return err
		})
		if err := eg.Wait(); err != nil {
			yield(domain.Issue{}, err)
			return
		}

		for _, issue := range mergeNewestFirst(issues, pullRequests) {
			if !yield(issue, nil) {
				return
			}
		}
	}
}

func (l *GraphQLLister) fetchIssues(ctx context.Context, owner, name string) ([]domain.Issue, error) {
	l.logger.Debugw("Fetching open issues using GraphQL API...", "repo", owner+"/"+name)
	variables := repoVariables(owner, name)
	var result []domain.Issue
	for {
		var q openIssuesQuery
		if err := l.client.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for issues: %w", err)
		}
		for _, node := range q.Repository.Issues.Nodes {
			result = append(result, node.toIssue(false))
		}
		if !q.Repository.Issues.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.Issues.PageInfo.EndCursor)
		l.logger.Debug("  Fetching next page of issues...")
	}
	return result, nil
}

func (l *GraphQLLister) fetchPullRequests(ctx context.Context, owner, name string) ([]domain.Issue, error) {
	l.logger.Debugw("Fetching open pull requests using GraphQL API...", "repo", owner+"/"+name)
	variables := repoVariables(owner, name)
	var result []domain.Issue
	for {
		var q openPullRequestsQuery
		if err := l.client.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}
		for _, node := range q.Repository.PullRequests.Nodes {
			result = append(result, node.toIssue(true))
		}
		if !q.Repository.PullRequests.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
		l.logger.Debug("  Fetching next page of pull requests...")
	}
	return result, nil
}

func repoVariables(owner, name string) map[string]interface{} {
	return map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"cursor": (*githubv4.String)(nil),
	}
}

func (n itemNode) toIssue(isPullRequest bool) domain.Issue {
	var assignee string
	if len(n.Assignees.Nodes) > 0 {
		assignee = string(n.Assignees.Nodes[0].Login)
	}
	labels := make([]string, 0, len(n.Labels.Nodes))
	for _, label := range n.Labels.Nodes {
		labels = append(labels, string(label.Name))
	}
	return domain.Issue{
		Number:        int(n.Number),
		CreatedAt:     n.CreatedAt.Time,
		IsPullRequest: isPullRequest,
		Author:        string(n.Author.Login),
		Assignee:      assignee,
		Labels:        labels,
	}
}

// mergeNewestFirst orders by creation time descending, then by number descending.
func mergeNewestFirst(a, b []domain.Issue) []domain.Issue {
	merged := make([]domain.Issue, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].Number > merged[j].Number
	})
	return merged
}
