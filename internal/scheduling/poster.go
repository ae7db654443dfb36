package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"replyflow/internal/core"
	"replyflow/internal/platforms"
	"replyflow/pkg/retry"
)

const (
	claimTTL = 2 * time.Minute

	markPostedAttempts = 3
	markPostedDelay    = 100 * time.Millisecond
)

var ErrClaimed = errors.New("reply is not postable or already being posted")

var repliesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replyflow_replies_posted_total",
	Help: "The total number of reply posting attempts",
}, []string{"platform", "outcome"})

// Poster sends approved replies to their platform. A reply is claimed before it is sent,
// so the scheduler and the operator API never post the same reply twice.
type Poster struct {
	Logger *slog.Logger

	Adapters core.AdapterSource
	Notifier core.Notifier

	Posts    core.PostRepository
	Comments core.CommentRepository
	Replies  core.ReplyRepository

	mu sync.Mutex
	// reply id -> platform reply id of replies the platform accepted but MarkPosted did not record
	unrecorded map[uint]string
}

func (p *Poster) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "scheduling.Poster")
	return nil
}

// Post claims and posts the reply. Platform failures are reported in the result and leave
// the reply as it was, repository failures are returned. ErrClaimed means someone else is
// posting it or it is no longer postable.
//
// The claim is released only when the platform did not accept the reply. Once the platform
// has it, a failure to record that keeps the claim, and later attempts only record the
// remembered platform reply id instead of sending the reply again.
func (p *Poster) Post(ctx context.Context, reply *core.Reply) (core.PostReplyResult, error) {
	claimed, err := p.Replies.Claim(ctx, reply.ID, claimTTL)
	if err != nil {
		return core.PostReplyResult{}, err
	}
	if !claimed {
		return core.PostReplyResult{}, fmt.Errorf("%w: reply %d", ErrClaimed, reply.ID)
	}

	result, err := p.post(ctx, reply)
	if !result.Success {
		releaseErr := p.Replies.Release(ctx, reply.ID)
		if releaseErr != nil {
			p.Logger.Warn("Failed to release reply claim", "reply_id", reply.ID, "error", releaseErr)
		}
	}

	return result, err
}

func (p *Poster) post(ctx context.Context, reply *core.Reply) (core.PostReplyResult, error) {
	comment, err := p.Comments.Get(ctx, reply.CommentID)
	if err != nil {
		return core.PostReplyResult{}, err
	}

	logger := p.Logger.With("platform", comment.Platform, "reply_id", reply.ID, "comment_id", comment.ExternalID)

	adapter, ok := p.Adapters.Adapter(comment.Platform)
	if !ok {
		logger.Warn("Platform is not configured, skipping reply")
		return core.PostReplyResult{Error: fmt.Sprintf("%s is not configured", comment.Platform)}, nil
	}

	post, err := p.Posts.Get(ctx, comment.PostID)
	if err != nil {
		return core.PostReplyResult{}, err
	}

	target := core.ReplyTarget{
		PostExternalID:    post.ExternalID,
		CommentExternalID: comment.ExternalID,
	}

	result, ok := p.sentBefore(reply.ID)
	if ok {
		logger.Info("Recording reply sent earlier", "platform_reply_id", result.ReplyID)
	} else {
		result = adapter.PostReply(ctx, target, platforms.Sanitize(comment.Platform, reply.Content))
	}
	if !result.Success {
		repliesPosted.WithLabelValues(string(comment.Platform), "failed").Inc()
		logger.Warn("Failed to post reply", "error", result.Error)
		return result, nil
	}

	err = retry.Do(ctx, markPostedAttempts, markPostedDelay, func() error {
		return p.Replies.MarkPosted(ctx, reply.ID, result.ReplyID)
	})
	if err != nil {
		p.remember(reply.ID, result.ReplyID)
		logger.Error("Reply was posted but could not be recorded", "platform_reply_id", result.ReplyID, "error", err)
		return result, fmt.Errorf("record posted reply %d: %w", reply.ID, err)
	}
	p.forget(reply.ID)

	repliesPosted.WithLabelValues(string(comment.Platform), "posted").Inc()
	logger.Info("Reply posted", "platform_reply_id", result.ReplyID)

	p.Notifier.Notify(ctx, core.EventReplyPosted, map[string]any{
		"reply_id":          reply.ID,
		"comment_id":        comment.ID,
		"platform":          comment.Platform,
		"platform_reply_id": result.ReplyID,
		"content":           reply.Content,
	})

	return result, nil
}

func (p *Poster) sentBefore(id uint) (core.PostReplyResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	externalID, ok := p.unrecorded[id]
	if !ok {
		return core.PostReplyResult{}, false
	}
	return core.PostReplyResult{Success: true, ReplyID: externalID}, true
}

func (p *Poster) remember(id uint, externalID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unrecorded == nil {
		p.unrecorded = map[uint]string{}
	}
	p.unrecorded[id] = externalID
}

func (p *Poster) forget(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.unrecorded, id)
}
