package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"replyflow/internal/approval"
	"replyflow/internal/core"
)

type Replies struct {
	store *Store
}

func (r *Replies) Create(_ context.Context, reply *core.Reply) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[reply.CommentID]
	if !ok {
		return fmt.Errorf("%w: comment %d", core.ErrNotFound, reply.CommentID)
	}

	if reply.Status == "" {
		reply.Status = core.ReplyStatusPending
	}
	if reply.Origin == "" {
		reply.Origin = core.ReplyOriginAI
	}
	reply.ID = s.id()
	reply.CreatedAt = time.Now()
	s.replies[reply.ID] = *reply

	if reply.Status == core.ReplyStatusAutoApproved {
		comment.HasReply = true
		s.comments[comment.ID] = comment
	}
	return nil
}

func (r *Replies) Get(_ context.Context, id uint) (*core.Reply, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &reply, nil
}

func (r *Replies) ListByStatus(_ context.Context, limit int, statuses ...core.ReplyStatus) ([]core.Reply, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var replies []core.Reply
	for _, reply := range s.replies {
		if slices.Contains(statuses, reply.Status) {
			replies = append(replies, reply)
		}
	}

	return newest(replies, limit), nil
}

func (r *Replies) ListPromotable(_ context.Context, threshold float64, limit int) ([]core.Reply, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var replies []core.Reply
	for _, reply := range s.replies {
		if approval.Promotable(reply, threshold) {
			replies = append(replies, reply)
		}
	}
	return newest(replies, limit), nil
}

func (r *Replies) ListUnposted(_ context.Context, platform core.Platform, limit int) ([]core.Reply, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var replies []core.Reply
	for _, reply := range s.replies {
		if !reply.Status.Postable() {
			continue
		}
		if comment, ok := s.comments[reply.CommentID]; ok && comment.Platform == platform {
			replies = append(replies, reply)
		}
	}
	return newest(replies, limit), nil
}

func (r *Replies) Approve(_ context.Context, id uint, approvedBy string) (*core.Reply, error) {
	return r.transition(id, []core.ReplyStatus{core.ReplyStatusPending}, func(reply *core.Reply) {
		now := time.Now()
		reply.Status = core.ReplyStatusApproved
		reply.ApprovedAt = &now
		reply.ApprovedBy = approvedBy
	})
}

func (r *Replies) Reject(_ context.Context, id uint) (*core.Reply, error) {
	from := []core.ReplyStatus{core.ReplyStatusPending, core.ReplyStatusApproved, core.ReplyStatusAutoApproved}

	return r.transition(id, from, func(reply *core.Reply) {
		reply.Status = core.ReplyStatusRejected
	})
}

func (r *Replies) transition(id uint, from []core.ReplyStatus, apply func(reply *core.Reply)) (*core.Reply, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	if !slices.Contains(from, reply.Status) || claimed(reply, time.Now()) {
		return nil, fmt.Errorf("%w: reply %d is %s", core.ErrInvalidStatus, id, reply.Status)
	}

	apply(&reply)
	s.replies[id] = reply
	return &reply, nil
}

func (r *Replies) Claim(_ context.Context, id uint, ttl time.Duration) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return false, nil
	}

	now := time.Now()
	if !reply.Status.Postable() || claimed(reply, now) {
		return false, nil
	}

	until := now.Add(ttl)
	reply.ClaimedUntil = &until
	s.replies[id] = reply
	return true, nil
}

func (r *Replies) Release(_ context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return core.ErrNotFound
	}

	reply.ClaimedUntil = nil
	s.replies[id] = reply
	return nil
}

func (r *Replies) MarkPosted(_ context.Context, id uint, externalID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return core.ErrNotFound
	}
	if !reply.Status.Postable() {
		return fmt.Errorf("%w: reply %d is not postable", core.ErrInvalidStatus, id)
	}

	comment, ok := s.comments[reply.CommentID]
	if !ok {
		return fmt.Errorf("%w: comment %d", core.ErrNotFound, reply.CommentID)
	}

	now := time.Now()
	reply.Status = core.ReplyStatusPosted
	reply.ExternalID = &externalID
	reply.PostedAt = &now
	reply.ClaimedUntil = nil
	s.replies[id] = reply

	comment.HasReply = true
	comment.UpdatedAt = now
	s.comments[comment.ID] = comment
	return nil
}

func (r *Replies) CountByStatus(_ context.Context) (map[core.ReplyStatus]int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[core.ReplyStatus]int64{}
	for _, reply := range s.replies {
		counts[reply.Status]++
	}
	return counts, nil
}

// newest sorts by descending id, which follows creation order.
func newest(replies []core.Reply, limit int) []core.Reply {
	slices.SortFunc(replies, func(a, b core.Reply) int {
		return int(b.ID) - int(a.ID)
	})

	if limit > 0 && len(replies) > limit {
		replies = replies[:limit]
	}
	return replies
}

func claimed(reply core.Reply, now time.Time) bool {
	return reply.ClaimedUntil != nil && reply.ClaimedUntil.After(now)
}
