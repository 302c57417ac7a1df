package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/models"
	"github.com/citypulse/backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

const dashboardCacheTTL = 30 * time.Second

// RankedComplaint is a complaint annotated with its computed priority for
// dashboard consumption.
type RankedComplaint struct {
	models.Complaint
	PriorityScore  int    `json:"priorityScore"`
	PriorityBucket string `json:"priorityBucket"`
}

// DashboardSummary carries the High/Medium/Low counts shown in the
// dashboard header.
type DashboardSummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type dashboardSnapshot struct {
	Complaints []RankedComplaint `json:"complaints"`
	Summary    DashboardSummary  `json:"summary"`
}

// RankingService produces the per-department dashboard: every complaint
// (resolved included), scored and ordered most-urgent first.
type RankingService struct {
	store repository.Store
	cache *redis.Client
	now   func() time.Time
	ctx   context.Context
}

func NewRankingService(store repository.Store, cache *redis.Client) *RankingService {
	return &RankingService{
		store: store,
		cache: cache,
		now:   time.Now,
		ctx:   context.Background(),
	}
}

// ListDepartmentComplaints returns the department's complaints sorted by
// priority score descending, ties broken by creation time ascending so the
// oldest complaint in a band surfaces first. The result is a snapshot;
// scores move as complaints age, so the cache is short-lived.
func (s *RankingService) ListDepartmentComplaints(department models.Department) ([]RankedComplaint, DashboardSummary, error) {
	if snapshot, ok := s.readCache(department); ok {
		return snapshot.Complaints, snapshot.Summary, nil
	}

	complaints, err := s.store.ListByDepartment(department)
	if err != nil {
		return nil, DashboardSummary{}, err
	}

	now := s.now()
	ranked := make([]RankedComplaint, 0, len(complaints))
	summary := DashboardSummary{Total: len(complaints)}
	for _, c := range complaints {
		score := PriorityScore(c.Frequency, c.CreatedAt, now)
		bucket := PriorityBucket(score)
		switch bucket {
		case BucketHigh:
			summary.High++
		case BucketMedium:
			summary.Medium++
		default:
			summary.Low++
		}
		ranked = append(ranked, RankedComplaint{
			Complaint:      c,
			PriorityScore:  score,
			PriorityBucket: bucket,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PriorityScore != ranked[j].PriorityScore {
			return ranked[i].PriorityScore > ranked[j].PriorityScore
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	s.writeCache(department, dashboardSnapshot{Complaints: ranked, Summary: summary})
	return ranked, summary, nil
}

func (s *RankingService) readCache(department models.Department) (dashboardSnapshot, bool) {
	if s.cache == nil {
		return dashboardSnapshot{}, false
	}
	raw, err := s.cache.Get(s.ctx, dashboardCacheKey(department)).Bytes()
	if err != nil {
		return dashboardSnapshot{}, false
	}
	var snapshot dashboardSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return dashboardSnapshot{}, false
	}
	return snapshot, true
}

func (s *RankingService) writeCache(department models.Department, snapshot dashboardSnapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(s.ctx, dashboardCacheKey(department), raw, dashboardCacheTTL).Err(); err != nil {
		logger.Warn("Failed to cache dashboard snapshot", map[string]interface{}{
			"department": department,
			"error":      err.Error(),
		})
	}
}

func dashboardCacheKey(department models.Department) string {
	return fmt.Sprintf("dashboard:%s", department)
}
