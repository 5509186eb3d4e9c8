package domain

import "strings"

// OthersLabel names the bucket for records matching none of the configured labels.
const OthersLabel = "Others"

// BugLabel is the label substring that marks an issue as a bug.
const BugLabel = "bug"

// DefaultLabels is the label set the histogram uses when none is given.
var DefaultLabels = []string{"cubeviz", "embed", "imviz", "mosviz", "specviz", "UI/UX"}

// LabelBucket holds the open item counts for a single label.
type LabelBucket struct {
	Label     string `json:"label"`
	PRs       int    `json:"prs"`
	Issues    int    `json:"issues_all"`
	IssuesBug int    `json:"issues_bug"`
}

// Add counts r in the bucket. joinedLabels is r's comma-joined label list.
func (b *LabelBucket) Add(r IssueRecord, joinedLabels string) {
	if r.IsPullRequest() {
		b.PRs++
		return
	}
	b.Issues++
	if strings.Contains(joinedLabels, BugLabel) {
		b.IssuesBug++
	}
}
