package testkit

import (
	"context"
	"fmt"
	"sync"

	"replyflow/internal/core"
)

type PostedReply struct {
	Target core.ReplyTarget
	Text   string
}

// Adapter is a scripted platform.
type Adapter struct {
	mu sync.Mutex

	Name       core.Platform
	Configured bool
	Posts      []core.RawPost
	Comments   map[string][]core.RawComment
	FailPosts  bool

	Posted   []PostedReply
	attempts int
}

func NewAdapter(platform core.Platform) *Adapter {
	return &Adapter{
		Name:       platform,
		Configured: true,
		Comments:   map[string][]core.RawComment{},
	}
}

// AddComment registers a post (once) and a comment on it.
func (a *Adapter) AddComment(postID, commentID, text string) core.RawComment {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.Comments[postID]; !ok {
		a.Posts = append(a.Posts, core.RawPost{
			Platform:   a.Name,
			ExternalID: postID,
			Content:    "Post " + postID,
		})
	}

	comment := core.RawComment{
		Platform:       a.Name,
		ExternalID:     commentID,
		PostExternalID: postID,
		Author:         "Ann Smith",
		AuthorID:       "author-" + commentID,
		Content:        text,
	}
	a.Comments[postID] = append(a.Comments[postID], comment)
	return comment
}

func (a *Adapter) Platform() core.Platform {
	return a.Name
}

func (a *Adapter) IsConfigured() bool {
	return a.Configured
}

func (a *Adapter) ListRecentPosts(_ context.Context, limit int) []core.RawPost {
	a.mu.Lock()
	defer a.mu.Unlock()

	posts := append([]core.RawPost(nil), a.Posts...)
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (a *Adapter) ListComments(_ context.Context, postExternalID string) []core.RawComment {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]core.RawComment(nil), a.Comments[postExternalID]...)
}

func (a *Adapter) PostReply(_ context.Context, target core.ReplyTarget, text string) core.PostReplyResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.attempts++
	if a.FailPosts {
		return core.PostReplyResult{Error: "platform rejected the reply"}
	}

	a.Posted = append(a.Posted, PostedReply{Target: target, Text: text})
	return core.PostReplyResult{Success: true, ReplyID: fmt.Sprintf("%s-reply-%d", a.Name, len(a.Posted))}
}

func (a *Adapter) PostedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.Posted)
}

// Attempts counts PostReply calls, failed ones included.
func (a *Adapter) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.attempts
}

// Adapters is a fixed adapter source.
type Adapters []core.Adapter

func (s Adapters) Adapters() []core.Adapter {
	var configured []core.Adapter
	for _, adapter := range s {
		if adapter.IsConfigured() {
			configured = append(configured, adapter)
		}
	}
	return configured
}

func (s Adapters) Adapter(platform core.Platform) (core.Adapter, bool) {
	for _, adapter := range s.Adapters() {
		if adapter.Platform() == platform {
			return adapter, true
		}
	}
	return nil, false
}
