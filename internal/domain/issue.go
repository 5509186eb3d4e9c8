// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// TimeLayout is the timestamp format used in CSV rows and output filenames.
const TimeLayout = "2006-01-02T15:04:05Z"

// CSVHeader is the header row shared by the fetcher and the histogram renderer.
const CSVHeader = "number,created_at,type,creator,assignee,labels,lifetime_seconds"

// ItemType tells an issue apart from a pull request.
type ItemType string

const (
	TypeIssue       ItemType = "issue"
	TypePullRequest ItemType = "pull_request"
)

// Issue is an open issue or pull request as returned by a gateway.
type Issue struct {
	Number        int
	CreatedAt     time.Time
	IsPullRequest bool
	Author        string
	Assignee      string // empty when unassigned
	Labels        []string
}

// IssueRecord is one row of the fetcher's CSV output.
type IssueRecord struct {
	Number          int
	CreatedAt       time.Time
	Type            ItemType
	Creator         string
	Assignee        string
	Labels          []string
	LifetimeSeconds float64
}

// NewIssueRecord projects an Issue into a record, measuring its lifetime at fetchedAt.
func NewIssueRecord(issue Issue, fetchedAt time.Time) IssueRecord {
	itemType := TypeIssue
	if issue.IsPullRequest {
		itemType = TypePullRequest
	}
	return IssueRecord{
		Number:          issue.Number,
		CreatedAt:       issue.CreatedAt.UTC(),
		Type:            itemType,
		Creator:         issue.Author,
		Assignee:        issue.Assignee,
		Labels:          issue.Labels,
		LifetimeSeconds: fetchedAt.Sub(issue.CreatedAt).Seconds(),
	}
}

// IsPullRequest reports whether the record describes a pull request.
func (r IssueRecord) IsPullRequest() bool {
	return r.Type == TypePullRequest
}
