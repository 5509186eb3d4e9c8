package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// setupRESTLister creates a RESTLister that communicates with a mock HTTP server.
func setupRESTLister(t *testing.T, handler http.Handler) *RESTLister {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	return &RESTLister{client: restClient, logger: zap.NewNop().Sugar()}
}

// setupGraphQLLister points the GraphQL client at a mock server.
func setupGraphQLLister(t *testing.T, handler http.Handler) *GraphQLLister {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &GraphQLLister{
		client: githubv4.NewEnterpriseClient(server.URL, server.Client()),
		logger: zap.NewNop().Sugar(),
	}
}

func collect(t *testing.T, seq func(func(domain.Issue, error) bool)) ([]domain.Issue, error) {
	t.Helper()
	var issues []domain.Issue
	for issue, err := range seq {
		if err != nil {
			return issues, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

func TestRESTLister_OpenIssues(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.Issue
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - issues and pull requests across two pages",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/any-owner/any-repo/issues", r.URL.Path)
				assert.Equal(t, "open", r.URL.Query().Get("state"))
				w.Header().Set("Content-Type", "application/json")
				if r.URL.Query().Get("page") == "" {
					w.Header().Set("Link", `</repos/any-owner/any-repo/issues?state=open&page=2>; rel="next"`)
					fmt.Fprint(w, `[{"number": 2, "created_at": "2024-03-02T10:00:00Z", "user": {"login": "bob"},
						"assignee": {"login": "carol"}, "labels": [{"name": "specviz"}],
						"pull_request": {"url": "https://api.github.com/repos/any-owner/any-repo/pulls/2"}}]`)
					return
				}
				fmt.Fprint(w, `[{"number": 1, "created_at": "2024-03-01T09:30:00Z", "user": {"login": "alice"},
					"labels": [{"name": "cubeviz"}, {"name": "bug"}]}]`)
			},
			expected: []domain.Issue{
				{
					Number:        2,
					CreatedAt:     time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
					IsPullRequest: true,
					Author:        "bob",
					Assignee:      "carol",
					Labels:        []string{"specviz"},
				},
				{
					Number:    1,
					CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
					Author:    "alice",
					Labels:    []string{"cubeviz", "bug"},
				},
			},
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list issues with REST API",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lister := setupRESTLister(t, http.HandlerFunc(tc.handlerFunc))
			issues, err := collect(t, lister.OpenIssues(context.Background(), "any-owner", "any-repo"))
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, issues, len(tc.expected))
			for i := range tc.expected {
				assert.True(t, tc.expected[i].CreatedAt.Equal(issues[i].CreatedAt))
				issues[i].CreatedAt = tc.expected[i].CreatedAt
			}
			assert.Equal(t, tc.expected, issues)
		})
	}
}

func TestRESTLister_OpenIssues_StopsPagingWhenConsumerStops(t *testing.T) {
	var requests atomic.Int32
	lister := setupRESTLister(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Link", `</repos/o/r/issues?page=2>; rel="next"`)
		fmt.Fprint(w, `[{"number": 1, "user": {"login": "a"}}, {"number": 2, "user": {"login": "b"}}]`)
	}))

	for issue, err := range lister.OpenIssues(context.Background(), "o", "r") {
		require.NoError(t, err)
		assert.Equal(t, 1, issue.Number)
		break
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestGraphQLLister_OpenIssues(t *testing.T) {
	testCases := []struct {
		name           string
		issuesBody     string
		pullsBody      string
		expected       []domain.Issue
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - merges issues and pull requests newest first",
			issuesBody: `{"data":{"repository":{"issues":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[
				{"number":3,"createdAt":"2024-03-03T00:00:00Z","author":{"login":"alice"},"assignees":{"nodes":[]},"labels":{"nodes":[{"name":"cubeviz"},{"name":"bug"}]}},
				{"number":1,"createdAt":"2024-03-01T00:00:00Z","author":{"login":"alice"},"assignees":{"nodes":[{"login":"dave"}]},"labels":{"nodes":[]}}]}}}}`,
			pullsBody: `{"data":{"repository":{"pullRequests":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[
				{"number":2,"createdAt":"2024-03-02T00:00:00Z","author":{"login":"bob"},"assignees":{"nodes":[]},"labels":{"nodes":[{"name":"specviz"}]}}]}}}}`,
			expected: []domain.Issue{
				{Number: 3, CreatedAt: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), Author: "alice", Labels: []string{"cubeviz", "bug"}},
				{Number: 2, CreatedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), IsPullRequest: true, Author: "bob", Labels: []string{"specviz"}},
				{Number: 1, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Author: "alice", Assignee: "dave", Labels: []string{}},
			},
		},
		{
			name:           "error case - pull request query fails",
			issuesBody:     `{"data":{"repository":{"issues":{"pageInfo":{"hasNextPage":false},"nodes":[]}}}}`,
			pullsBody:      `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for pull requests",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "any-owner")

				w.WriteHeader(http.StatusOK)
				if strings.Contains(string(body), "pullRequests") {
					fmt.Fprint(w, tc.pullsBody)
					return
				}
				fmt.Fprint(w, tc.issuesBody)
			}
			lister := setupGraphQLLister(t, http.HandlerFunc(handler))

			issues, err := collect(t, lister.OpenIssues(context.Background(), "any-owner", "any-repo"))
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, issues, len(tc.expected))
			for i := range tc.expected {
				assert.True(t, tc.expected[i].CreatedAt.Equal(issues[i].CreatedAt))
				issues[i].CreatedAt = tc.expected[i].CreatedAt
			}
			assert.Equal(t, tc.expected, issues)
		})
	}
}

func TestMergeNewestFirst_BreaksTiesByNumber(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	merged := mergeNewestFirst(
		[]domain.Issue{{Number: 4, CreatedAt: created}},
		[]domain.Issue{{Number: 9, CreatedAt: created, IsPullRequest: true}},
	)
	require.Len(t, merged, 2)
	assert.Equal(t, 9, merged[0].Number)
	assert.Equal(t, 4, merged[1].Number)
}

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient("any-token")
	require.NoError(t, err)
	transport, ok := client.Transport.(*oauth2.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Base)

	token, err := transport.Source.Token()
	require.NoError(t, err)
	assert.Equal(t, "any-token", token.AccessToken)
}
