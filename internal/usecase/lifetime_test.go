package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/issue-label-stats/internal/domain"
)

func TestSummarizeLifetimes(t *testing.T) {
	assert.Equal(t, LifetimeSummary{}, SummarizeLifetimes(nil))

	records := []domain.IssueRecord{
		{LifetimeSeconds: 1 * secondsPerDay},
		{LifetimeSeconds: 2 * secondsPerDay},
		{LifetimeSeconds: 6 * secondsPerDay},
	}
	assert.Equal(t, LifetimeSummary{Count: 3, MeanDays: 3, MedianDays: 2, MaxDays: 6}, SummarizeLifetimes(records))
}
