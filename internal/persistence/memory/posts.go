package memory

import (
	"context"
	"time"

	"replyflow/internal/core"
)

type Posts struct {
	store *Store
}

func (r *Posts) Upsert(_ context.Context, post *core.Post) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := externalKey{post.Platform, post.ExternalID}

	if id, ok := s.postsByKey[key]; ok {
		existing := s.posts[id]
		post.ID = id
		post.CreatedAt = existing.CreatedAt
	} else {
		post.ID = s.id()
		post.CreatedAt = now
		s.postsByKey[key] = post.ID
	}
	post.UpdatedAt = now

	s.posts[post.ID] = *post
	return nil
}

func (r *Posts) Get(_ context.Context, id uint) (*core.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &post, nil
}

func (r *Posts) GetByExternalID(ctx context.Context, platform core.Platform, externalID string) (*core.Post, error) {
	r.store.mu.Lock()
	id, ok := r.store.postsByKey[externalKey{platform, externalID}]
	r.store.mu.Unlock()

	if !ok {
		return nil, core.ErrNotFound
	}
	return r.Get(ctx, id)
}
