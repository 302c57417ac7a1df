package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriorityScoreFreshSingleReport(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	score := PriorityScore(1, now, now)

	assert.Equal(t, 3, score)
	assert.Equal(t, BucketLow, PriorityBucket(score))
}

func TestPriorityScoreAgedAndFrequent(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	createdAt := now.Add(-6 * 24 * time.Hour)

	score := PriorityScore(6, createdAt, now)

	assert.Equal(t, 9, score)
	assert.Equal(t, BucketHigh, PriorityBucket(score))
}

func TestPriorityScoreThresholds(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency int
		ageDays   int
		expected  int
	}{
		{"single fresh report", 1, 0, 3},
		{"two reports fresh", 2, 0, 3},
		{"three reports fresh", 3, 0, 5},
		{"five reports fresh", 5, 0, 5},
		{"six reports fresh", 6, 0, 7},
		{"single report two days old", 1, 2, 4},
		{"single report five days old", 1, 5, 4},
		{"single report six days old", 1, 6, 5},
		{"max everything", 10, 30, 9},
	}

	for _, test := range tests {
		createdAt := now.Add(-time.Duration(test.ageDays) * 24 * time.Hour)
		score := PriorityScore(test.frequency, createdAt, now)
		assert.Equal(t, test.expected, score, "case %q", test.name)
	}
}

func TestPriorityScoreMonotonicInFrequency(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	createdAt := now.Add(-3 * 24 * time.Hour)

	previous := 0
	for frequency := 1; frequency <= 10; frequency++ {
		score := PriorityScore(frequency, createdAt, now)
		assert.GreaterOrEqual(t, score, previous, "score dropped at frequency %d", frequency)
		previous = score
	}
}

func TestPriorityScoreMonotonicInAge(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	previous := 0
	for days := 0; days <= 10; days++ {
		score := PriorityScore(2, now.Add(-time.Duration(days)*24*time.Hour), now)
		assert.GreaterOrEqual(t, score, previous, "score dropped at age %d days", days)
		previous = score
	}
}

func TestPriorityBucketBoundaries(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{3, BucketLow},
		{4, BucketLow},
		{5, BucketMedium},
		{6, BucketMedium},
		{7, BucketHigh},
		{9, BucketHigh},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, PriorityBucket(test.score), "score %d", test.score)
	}
}
