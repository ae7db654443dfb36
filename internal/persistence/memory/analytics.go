package memory

import (
	"context"
	"time"

	"replyflow/internal/core"
)

type Analytics struct {
	store *Store
}

func (r *Analytics) Record(_ context.Context, platform, metricType string, value float64, metadata map[string]any) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.metrics = append(s.metrics, core.Metric{
		ID:         s.id(),
		Date:       now,
		Platform:   platform,
		MetricType: metricType,
		Value:      value,
		Metadata:   metadata,
		CreatedAt:  now,
	})
	return nil
}

func (r *Analytics) Summary(_ context.Context, from, to time.Time) (*core.AnalyticsSummary, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &core.AnalyticsSummary{
		From:              from,
		To:                to,
		PlatformBreakdown: map[core.Platform]int64{},
		CategoryBreakdown: map[core.Category]int64{},
	}

	within := func(t time.Time) bool {
		return !t.Before(from) && !t.After(to)
	}

	for _, comment := range s.comments {
		if !within(comment.CreatedAt) {
			continue
		}
		summary.TotalComments++
		summary.PlatformBreakdown[comment.Platform]++
		if comment.Category != nil {
			summary.CategoryBreakdown[*comment.Category]++
		}
	}

	for _, reply := range s.replies {
		if reply.Status == core.ReplyStatusPosted && within(reply.CreatedAt) {
			summary.TotalReplies++
		}
	}

	if summary.TotalComments > 0 {
		summary.ResponseRate = float64(summary.TotalReplies) / float64(summary.TotalComments) * 100
	}
	return summary, nil
}
