package crmactions

import (
	"context"
	"log/slog"

	"replyflow/internal/core"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "crmactions.Repository")
	return nil
}

func (r *Repository) Create(ctx context.Context, action *core.CRMAction) error {
	return r.DB.WithContext(ctx).Create(action).Error
}

func (r *Repository) ListByComment(ctx context.Context, commentID uint) ([]core.CRMAction, error) {
	var actions []core.CRMAction
	err := r.DB.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("id ASC").
		Find(&actions).Error
	return actions, err
}
