package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"replyflow/internal/core"
	"replyflow/internal/persistence"
)

type Repository struct {
	Logger *slog.Logger
	DB     core.DB
}

func (r *Repository) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "settings.Repository")
	return nil
}

func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var setting core.Setting
	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set updates the key in place and inserts it when missing. A concurrent insert of the same
// key is resolved by updating again.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	updated, err := r.update(ctx, key, value)
	if err != nil || updated {
		return err
	}

	err = r.DB.WithContext(ctx).Create(&core.Setting{Key: key, Value: value}).Error
	if err == nil {
		return nil
	}
	if !persistence.IsUniqueViolation(err) {
		return err
	}

	_, err = r.update(ctx, key, value)
	return err
}

func (r *Repository) update(ctx context.Context, key, value string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&core.Setting{}).
		Where("key = ?", key).
		Update("value", value)
	return res.RowsAffected > 0, res.Error
}

// OwnerActive is false unless the setting is present and parses as true.
func (r *Repository) OwnerActive(ctx context.Context) (bool, error) {
	value, ok, err := r.Get(ctx, core.SettingOwnerActive)
	if err != nil || !ok {
		return false, err
	}

	active, err := strconv.ParseBool(value)
	if err != nil {
		r.Logger.Warn("Malformed owner_active setting, treating as inactive", "value", value)
		return false, nil
	}
	return active, nil
}

func (r *Repository) SetOwnerActive(ctx context.Context, active bool) error {
	return r.Set(ctx, core.SettingOwnerActive, strconv.FormatBool(active))
}
