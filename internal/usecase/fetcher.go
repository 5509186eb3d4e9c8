// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
	"github.com/naka-gawa/issue-label-stats/internal/gateway"
)

var (
	// ErrFileExists is returned when the output file is already present and overwriting was not requested.
	ErrFileExists = errors.New("output file already exists")
	// ErrInvalidRepo is returned for repository identifiers not in owner/name form.
	ErrInvalidRepo = errors.New("repository must be in owner/name form")
)

// FetchOptions describes one fetch run.
type FetchOptions struct {
	Repo      string // owner/name
	Prefix    string
	Dir       string // output directory, current directory when empty
	Overwrite bool
}

// IssueFetcher is the use case that snapshots the open issues of a repository to CSV.
type IssueFetcher struct {
	lister gateway.IssueLister
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewIssueFetcher creates a new IssueFetcher. now supplies the fetch time and
// is called once per run.
func NewIssueFetcher(lister gateway.IssueLister, logger *zap.SugaredLogger, now func() time.Time) *IssueFetcher {
	return &IssueFetcher{
		lister: lister,
		logger: logger,
		now:    now,
	}
}

// OutputFilename returns "{prefix}_{timestamp}.csv" with the timestamp in UTC at second precision.
func OutputFilename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, at.UTC().Format(domain.TimeLayout))
}

// SplitRepo splits an owner/name identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return owner, name, nil
}

// Fetch lists every open issue and pull request and writes them to a new CSV file,
// returning its path. The file-exists check happens before any API call; nothing
// is written unless the whole listing succeeds.
func (f *IssueFetcher) Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	owner, name, err := SplitRepo(opts.Repo)
	if err != nil {
		return "", err
	}

	fetchedAt := f.now().UTC()
	path := filepath.Join(opts.Dir, OutputFilename(opts.Prefix, fetchedAt))
	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		return "", fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	f.logger.Debugw("Usecase: Listing open issues...", "repo", opts.Repo)
	var records []domain.IssueRecord
	for issue, err := range f.lister.OpenIssues(ctx, owner, name) {
		if err != nil {
			return "", fmt.Errorf("failed to list open issues for %s: %w", opts.Repo, err)
		}
		records = append(records, domain.NewIssueRecord(issue, fetchedAt))
	}

	if err := writeRecords(path, records); err != nil {
		return "", err
	}

	summary := SummarizeLifetimes(records)
	f.logger.Infow(path+" written",
		"items", summary.Count,
		"pull_requests", countPullRequests(records),
		"mean_lifetime_days", summary.MeanDays,
		"median_lifetime_days", summary.MedianDays,
		"max_lifetime_days", summary.MaxDays,
	)
	return path, nil
}

func writeRecords(path string, records []domain.IssueRecord) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := gateway.WriteIssueCSV(file, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func countPullRequests(records []domain.IssueRecord) int {
	n := 0
	for _, r := range records {
		if r.IsPullRequest() {
			n++
		}
	}
	return n
}
