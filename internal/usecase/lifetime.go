package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

const secondsPerDay = 24 * 60 * 60

// LifetimeSummary describes how long the fetched items have been open.
type LifetimeSummary struct {
	Count      int
	MeanDays   float64
	MedianDays float64
	MaxDays    float64
}

// SummarizeLifetimes computes the summary; an empty input yields a zero summary.
func SummarizeLifetimes(records []domain.IssueRecord) LifetimeSummary {
	if len(records) == 0 {
		return LifetimeSummary{}
	}
	days := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		days = append(days, r.LifetimeSeconds/secondsPerDay)
	}

	// The only error these return is for empty input, excluded above.
	mean, _ := days.Mean()
	median, _ := days.Median()
	maxDays, _ := days.Max()
	return LifetimeSummary{
		Count:      len(records),
		MeanDays:   roundDays(mean),
		MedianDays: roundDays(median),
		MaxDays:    roundDays(maxDays),
	}
}

func roundDays(v float64) float64 {
	rounded, _ := stats.Round(v, 2)
	return rounded
}
