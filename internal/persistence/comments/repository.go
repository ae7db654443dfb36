package comments

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"replyflow/internal/core"
	"replyflow/internal/persistence"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "comments.Repository")
	return nil
}

// Upsert never touches has_reply of an existing row.
func (r *Repository) Upsert(ctx context.Context, comment *core.Comment) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "platform"}, {Name: "platform_comment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "comment_type", "confidence", "metadata", "updated_at",
			}),
		}).
		Omit("has_reply").
		Create(comment).Error
}

func (r *Repository) Get(ctx context.Context, id uint) (*core.Comment, error) {
	var comment core.Comment
	err := r.DB.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, persistence.NotFound(err)
	}
	return &comment, nil
}

func (r *Repository) GetByExternalID(ctx context.Context, platform core.Platform, externalID string) (*core.Comment, error) {
	var comment core.Comment
	err := r.DB.WithContext(ctx).
		Where("platform = ? AND platform_comment_id = ?", platform, externalID).
		First(&comment).Error
	if err != nil {
		return nil, persistence.NotFound(err)
	}
	return &comment, nil
}

func (r *Repository) ExistingExternalIDs(ctx context.Context, platform core.Platform, externalIDs ...string) (map[string]bool, error) {
	if len(externalIDs) == 0 {
		return map[string]bool{}, nil
	}

	var existing []string
	err := r.DB.WithContext(ctx).
		Model(&core.Comment{}).
		Where("platform = ? AND platform_comment_id IN ?", platform, externalIDs).
		Pluck("platform_comment_id", &existing).Error
	if err != nil {
		return nil, err
	}

	return lo.Associate(existing, func(item string) (string, bool) {
		return item, true
	}), nil
}

func (r *Repository) UpdateSentiment(ctx context.Context, id uint, analysis core.SentimentAnalysis) error {
	res := r.DB.WithContext(ctx).
		Model(&core.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sentiment":  analysis.Sentiment,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) CountSince(ctx context.Context, platform core.Platform, since time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&core.Comment{}).
		Where("platform = ? AND created_at >= ?", platform, since).
		Count(&count).Error
	return count, err
}
