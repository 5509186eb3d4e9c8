package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
	"github.com/naka-gawa/issue-label-stats/internal/gateway"
)

// RenderOptions describes one histogram run.
type RenderOptions struct {
	Input  string   // CSV written by IssueFetcher
	Output string   // HTML path; derived from Input when empty
	Labels []string // labels of interest, in display order
}

// Histogram is the use case that turns a fetched CSV into a label histogram.
type Histogram struct {
	charter gateway.Charter
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewHistogram creates a new Histogram.
func NewHistogram(charter gateway.Charter, logger *zap.SugaredLogger, now func() time.Time) *Histogram {
	return &Histogram{
		charter: charter,
		logger:  logger,
		now:     now,
	}
}

// Bucket counts records per label. A record counts towards a label when the label
// is a substring of its comma-joined labels; a record may count towards several
// labels. Records matching no label are counted in a trailing Others bucket.
func Bucket(records []domain.IssueRecord, labels []string) []domain.LabelBucket {
	buckets := make([]domain.LabelBucket, len(labels)+1)
	for i, label := range labels {
		buckets[i].Label = label
	}
	others := &buckets[len(labels)]
	others.Label = domain.OthersLabel

	for _, r := range records {
		joined := strings.Join(r.Labels, ",")
		matched := false
		for i, label := range labels {
			if strings.Contains(joined, label) {
				matched = true
				buckets[i].Add(r, joined)
			}
		}
		if !matched {
			others.Add(r, joined)
		}
	}
	return buckets
}

// Render reads opts.Input, buckets it and writes the chart, returning the output path.
func (h *Histogram) Render(opts RenderOptions) (string, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", opts.Input, err)
	}
	defer file.Close()

	records, err := gateway.ReadIssueCSV(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}
	h.logger.Debugw("Usecase: Loaded records.", "input", opts.Input, "records", len(records))

	buckets := Bucket(records, opts.Labels)

	output := opts.Output
	if output == "" {
		output = strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input)) + ".html"
	}
	out, err := os.Create(output)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer out.Close()

	title := fmt.Sprintf("Open issues/PRs by subpackage (%s); click on legend to show/hide",
		h.now().Format("2006-01-02"))
	if err := h.charter.Render(out, title, buckets); err != nil {
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", output, err)
	}

	for _, b := range buckets {
		h.logger.Debugw("bucket", "label", b.Label, "issues", b.Issues, "issues_bug", b.IssuesBug, "prs", b.PRs)
	}
	h.logger.Infow(output+" written", "buckets", len(buckets))
	return output, nil
}
