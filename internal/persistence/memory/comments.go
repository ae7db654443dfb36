package memory

import (
	"context"
	"time"

	"replyflow/internal/core"
)

type Comments struct {
	store *Store
}

func (r *Comments) Upsert(_ context.Context, comment *core.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := externalKey{comment.Platform, comment.ExternalID}

	if id, ok := s.commentsByKey[key]; ok {
		existing := s.comments[id]
		existing.Content = comment.Content
		existing.Category = comment.Category
		existing.Confidence = comment.Confidence
		existing.Metadata = comment.Metadata
		existing.UpdatedAt = now
		s.comments[id] = existing

		*comment = existing
		return nil
	}

	if _, ok := s.posts[comment.PostID]; !ok {
		return core.ErrNotFound
	}

	comment.ID = s.id()
	comment.HasReply = false
	comment.CreatedAt = now
	comment.UpdatedAt = now

	s.comments[comment.ID] = *comment
	s.commentsByKey[key] = comment.ID
	return nil
}

func (r *Comments) Get(_ context.Context, id uint) (*core.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &comment, nil
}

func (r *Comments) GetByExternalID(ctx context.Context, platform core.Platform, externalID string) (*core.Comment, error) {
	r.store.mu.Lock()
	id, ok := r.store.commentsByKey[externalKey{platform, externalID}]
	r.store.mu.Unlock()

	if !ok {
		return nil, core.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Comments) ExistingExternalIDs(_ context.Context, platform core.Platform, externalIDs ...string) (map[string]bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := map[string]bool{}
	for _, id := range externalIDs {
		if _, ok := s.commentsByKey[externalKey{platform, id}]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (r *Comments) UpdateSentiment(_ context.Context, id uint, analysis core.SentimentAnalysis) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return core.ErrNotFound
	}

	sentiment := analysis.Sentiment
	comment.Sentiment = &sentiment
	comment.UpdatedAt = time.Now()
	s.comments[id] = comment
	return nil
}

func (r *Comments) CountSince(_ context.Context, platform core.Platform, since time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, comment := range s.comments {
		if comment.Platform == platform && !comment.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
