package replies

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"replyflow/internal/core"
	"replyflow/internal/persistence"
)

var postableStatuses = []core.ReplyStatus{core.ReplyStatusApproved, core.ReplyStatusAutoApproved}

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "replies.Repository")
	return nil
}

func (r *Repository) Create(ctx context.Context, reply *core.Reply) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		err := tx.Create(reply).Error
		if err != nil {
			return err
		}

		if reply.Status != core.ReplyStatusAutoApproved {
			return nil
		}

		return markCommentReplied(tx, reply.CommentID)
	})
}

func (r *Repository) Get(ctx context.Context, id uint) (*core.Reply, error) {
	var reply core.Reply
	err := r.DB.WithContext(ctx).First(&reply, id).Error
	if err != nil {
		return nil, persistence.NotFound(err)
	}
	return &reply, nil
}

func (r *Repository) ListByStatus(ctx context.Context, limit int, statuses ...core.ReplyStatus) ([]core.Reply, error) {
	var replies []core.Reply
	err := r.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&replies).Error
	return replies, err
}

// ListPromotable returns the newest pending replies whose confidence reaches threshold.
func (r *Repository) ListPromotable(ctx context.Context, threshold float64, limit int) ([]core.Reply, error) {
	var replies []core.Reply
	err := r.DB.WithContext(ctx).
		Where("status = ? AND confidence >= ?", core.ReplyStatusPending, threshold).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&replies).Error
	return replies, err
}

// ListUnposted returns the newest approved replies that answer comments on platform.
func (r *Repository) ListUnposted(ctx context.Context, platform core.Platform, limit int) ([]core.Reply, error) {
	var replies []core.Reply
	err := r.DB.WithContext(ctx).
		Select("replies.*").
		Joins("JOIN comments ON comments.id = replies.comment_id").
		Where("replies.status IN ? AND comments.platform = ?", postableStatuses, platform).
		Order("replies.created_at DESC, replies.id DESC").
		Limit(limit).
		Find(&replies).Error
	return replies, err
}

func (r *Repository) Approve(ctx context.Context, id uint, approvedBy string) (*core.Reply, error) {
	now := time.Now()

	return r.transition(ctx, id, []core.ReplyStatus{core.ReplyStatusPending}, map[string]any{
		"status":      core.ReplyStatusApproved,
		"approved_at": now,
		"approved_by": approvedBy,
	})
}

// Reject refuses replies that are already posted or currently being posted.
func (r *Repository) Reject(ctx context.Context, id uint) (*core.Reply, error) {
	from := []core.ReplyStatus{core.ReplyStatusPending, core.ReplyStatusApproved, core.ReplyStatusAutoApproved}

	return r.transition(ctx, id, from, map[string]any{
		"status": core.ReplyStatusRejected,
	})
}

func (r *Repository) transition(ctx context.Context, id uint, from []core.ReplyStatus, updates map[string]any) (*core.Reply, error) {
	var reply core.Reply

	err := r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&core.Reply{}).
			Where("id = ? AND status IN ?", id, from).
			Where("claimed_until IS NULL OR claimed_until < ?", time.Now()).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		err := tx.First(&reply, id).Error
		if err != nil {
			return persistence.NotFound(err)
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: reply %d is %s", core.ErrInvalidStatus, id, reply.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &reply, nil
}

func (r *Repository) Claim(ctx context.Context, id uint, ttl time.Duration) (bool, error) {
	now := time.Now()

	res := r.DB.WithContext(ctx).
		Model(&core.Reply{}).
		Where("id = ? AND status IN ?", id, postableStatuses).
		Where("claimed_until IS NULL OR claimed_until < ?", now).
		Update("claimed_until", now.Add(ttl))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) Release(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).
		Model(&core.Reply{}).
		Where("id = ?", id).
		Update("claimed_until", nil).Error
}

func (r *Repository) MarkPosted(ctx context.Context, id uint, externalID string) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&core.Reply{}).
			Where("id = ? AND status IN ?", id, postableStatuses).
			Updates(map[string]any{
				"status":            core.ReplyStatusPosted,
				"platform_reply_id": externalID,
				"posted_at":         time.Now(),
				"claimed_until":     nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: reply %d is not postable", core.ErrInvalidStatus, id)
		}

		var reply core.Reply
		err := tx.Select("comment_id").First(&reply, id).Error
		if err != nil {
			return err
		}

		return markCommentReplied(tx, reply.CommentID)
	})
}

func (r *Repository) CountByStatus(ctx context.Context) (map[core.ReplyStatus]int64, error) {
	var rows []struct {
		Status core.ReplyStatus
		Count  int64
	}

	err := r.DB.WithContext(ctx).
		Model(&core.Reply{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[core.ReplyStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func markCommentReplied(tx *gorm.DB, commentID uint) error {
	res := tx.Model(&core.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]any{"has_reply": true, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: comment %d", core.ErrNotFound, commentID)
	}
	return nil
}
