package memory

import (
	"context"
	"strconv"

	"replyflow/internal/core"
)

type Settings struct {
	store *Store
}

func (r *Settings) Get(_ context.Context, key string) (string, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.settings[key]
	return value, ok, nil
}

func (r *Settings) Set(_ context.Context, key, value string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[key] = value
	return nil
}

func (r *Settings) OwnerActive(ctx context.Context) (bool, error) {
	value, ok, err := r.Get(ctx, core.SettingOwnerActive)
	if err != nil || !ok {
		return false, err
	}

	active, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil //nolint:nilerr
	}
	return active, nil
}

func (r *Settings) SetOwnerActive(ctx context.Context, active bool) error {
	return r.Set(ctx, core.SettingOwnerActive, strconv.FormatBool(active))
}
