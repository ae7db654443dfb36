package posts

import (
	"context"
	"log/slog"

	"gorm.io/gorm/clause"

	"replyflow/internal/core"
	"replyflow/internal/persistence"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "posts.Repository")
	return nil
}

func (r *Repository) Upsert(ctx context.Context, post *core.Post) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "platform"}, {Name: "platform_post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "author", "url", "media_type", "metadata", "published_at", "updated_at",
			}),
		}).
		Create(post).Error
}

func (r *Repository) Get(ctx context.Context, id uint) (*core.Post, error) {
	var post core.Post
	err := r.DB.WithContext(ctx).First(&post, id).Error
	if err != nil {
		return nil, persistence.NotFound(err)
	}
	return &post, nil
}

func (r *Repository) GetByExternalID(ctx context.Context, platform core.Platform, externalID string) (*core.Post, error) {
	var post core.Post
	err := r.DB.WithContext(ctx).
		Where("platform = ? AND platform_post_id = ?", platform, externalID).
		First(&post).Error
	if err != nil {
		return nil, persistence.NotFound(err)
	}
	return &post, nil
}
