package services

import (
	"math"
	"time"
)

// Priority buckets used on department dashboards.
const (
	BucketHigh   = "High"
	BucketMedium = "Medium"
	BucketLow    = "Low"
)

// PriorityScore computes the urgency rank for a complaint from how many
// citizens reported it and how long it has been sitting. The result ranges
// from 3 to 9. Both components are non-decreasing, so a complaint never
// scores lower than an otherwise identical one with fewer reports or less
// age.
func PriorityScore(frequency int, createdAt, now time.Time) int {
	frequencyScore := 1
	switch {
	case frequency >= 6:
		frequencyScore = 3
	case frequency >= 3:
		frequencyScore = 2
	}

	age := now.Sub(createdAt)
	if age < 0 {
		age = -age
	}
	ageDays := int(math.Ceil(age.Hours() / 24))

	ageScore := 1
	switch {
	case ageDays > 5:
		ageScore = 3
	case ageDays >= 2:
		ageScore = 2
	}

	return frequencyScore*2 + ageScore
}

// PriorityBucket maps a score onto the High/Medium/Low split. Every call
// site that needs the three-way label goes through here.
func PriorityBucket(score int) string {
	switch {
	case score >= 7:
		return BucketHigh
	case score >= 5:
		return BucketMedium
	default:
		return BucketLow
	}
}
