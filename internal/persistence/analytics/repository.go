package analytics

import (
	"context"
	"log/slog"
	"time"

	"replyflow/internal/core"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "analytics.Repository")
	return nil
}

func (r *Repository) Record(ctx context.Context, platform, metricType string, value float64, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}

	return r.DB.WithContext(ctx).Create(&core.Metric{
		Date:       time.Now(),
		Platform:   platform,
		MetricType: metricType,
		Value:      value,
		Metadata:   metadata,
	}).Error
}

type breakdownRow struct {
	Key   string
	Count int64
}

// Summary counts comments created within [from, to] and the posted replies created in the
// same window. Response rate is a percentage.
func (r *Repository) Summary(ctx context.Context, from, to time.Time) (*core.AnalyticsSummary, error) {
	summary := &core.AnalyticsSummary{
		From:              from,
		To:                to,
		PlatformBreakdown: map[core.Platform]int64{},
		CategoryBreakdown: map[core.Category]int64{},
	}

	db := r.DB.WithContext(ctx)

	err := db.Model(&core.Comment{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&summary.TotalComments).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&core.Reply{}).
		Where("created_at BETWEEN ? AND ? AND status = ?", from, to, core.ReplyStatusPosted).
		Count(&summary.TotalReplies).Error
	if err != nil {
		return nil, err
	}

	if summary.TotalComments > 0 {
		summary.ResponseRate = float64(summary.TotalReplies) / float64(summary.TotalComments) * 100
	}

	var rows []breakdownRow
	err = db.Model(&core.Comment{}).
		Select("platform AS key, count(*) AS count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.PlatformBreakdown[core.Platform(row.Key)] = row.Count
	}

	rows = nil
	err = db.Model(&core.Comment{}).
		Select("comment_type AS key, count(*) AS count").
		Where("created_at BETWEEN ? AND ? AND comment_type IS NOT NULL", from, to).
		Group("comment_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.CategoryBreakdown[core.Category(row.Key)] = row.Count
	}

	return summary, nil
}
