package gateway

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

const csvFieldCount = 7

// WriteIssueCSV writes the header followed by one line per record.
// The labels field is always quoted, even when empty, so label lists never
// collide with the field delimiter.
func WriteIssueCSV(w io.Writer, records []domain.IssueRecord) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(domain.CSVHeader + "\n"); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		fields := []string{
			strconv.Itoa(r.Number),
			r.CreatedAt.UTC().Format(domain.TimeLayout),
			string(r.Type),
			r.Creator,
			r.Assignee,
			quoteField(strings.Join(r.Labels, ",")),
			strconv.FormatFloat(r.LifetimeSeconds, 'f', -1, 64),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write CSV row for #%d: %w", r.Number, err)
		}
	}
	return bw.Flush()
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReadIssueCSV parses a file written by WriteIssueCSV. Empty label fields
// yield records without labels.
func ReadIssueCSV(r io.Reader) ([]domain.IssueRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = csvFieldCount

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("CSV input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if got := strings.Join(header, ","); got != domain.CSVHeader {
		return nil, fmt.Errorf("unexpected CSV header %q", got)
	}

	var records []domain.IssueRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		record, err := parseRow(row)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRow(row []string) (domain.IssueRecord, error) {
	number, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("invalid number %q: %w", row[0], err)
	}
	createdAt, err := time.Parse(domain.TimeLayout, row[1])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("invalid created_at %q: %w", row[1], err)
	}
	itemType := domain.ItemType(row[2])
	if itemType != domain.TypeIssue && itemType != domain.TypePullRequest {
		return domain.IssueRecord{}, fmt.Errorf("invalid type %q", row[2])
	}
	lifetime, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("invalid lifetime_seconds %q: %w", row[6], err)
	}
	var labels []string
	if row[5] != "" {
		labels = strings.Split(row[5], ",")
	}
	return domain.IssueRecord{
		Number:          number,
		CreatedAt:       createdAt,
		Type:            itemType,
		Creator:         row[3],
		Assignee:        row[4],
		Labels:          labels,
		LifetimeSeconds: lifetime,
	}, nil
}
