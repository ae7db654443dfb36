package core

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type DB interface {
	WithContext(ctx context.Context) *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() (*sql.DB, error)
}

type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

// Adapter is the uniform capability surface of one social platform. List calls fail soft
// and PostReply reports failures through its result.
type Adapter interface {
	Platform() Platform
	IsConfigured() bool
	ListRecentPosts(ctx context.Context, limit int) []RawPost
	ListComments(ctx context.Context, postExternalID string) []RawComment
	PostReply(ctx context.Context, target ReplyTarget, text string) PostReplyResult
}

type AdapterSource interface {
	Adapters() []Adapter
	Adapter(platform Platform) (Adapter, bool)
}

type AIEngine interface {
	Classify(ctx context.Context, text string, platform Platform) (Classification, error)
	GenerateReply(ctx context.Context, req ReplyRequest) (GeneratedReply, error)
	AnalyzeSentiment(ctx context.Context, text string) (SentimentAnalysis, error)
}

type CRM interface {
	CreateOrUpdateContact(ctx context.Context, contact Contact) (ContactResult, error)
	TriggerWorkflow(ctx context.Context, name, contactID string, data map[string]any) (WorkflowResult, error)
}

type CommentProcessor interface {
	Process(ctx context.Context, raw RawComment) (ProcessResult, error)
}

type Observer interface {
	Notify(ctx context.Context, event Event) error
}

// Notifier dispatches events to the registered observers.
type Notifier interface {
	Notify(ctx context.Context, eventType EventType, payload map[string]any)
	Register(observer Observer)
}

type ReplyPoster interface {
	Post(ctx context.Context, reply *Reply) (PostReplyResult, error)
}

type PostRepository interface {
	// Upsert inserts or updates the post by (platform, platform_post_id) and fills its ID.
	Upsert(ctx context.Context, post *Post) error
	Get(ctx context.Context, id uint) (*Post, error)
	GetByExternalID(ctx context.Context, platform Platform, externalID string) (*Post, error)
}

type CommentRepository interface {
	// Upsert inserts or updates the comment by (platform, platform_comment_id) and fills its ID.
	// HasReply is never changed by an upsert.
	Upsert(ctx context.Context, comment *Comment) error
	Get(ctx context.Context, id uint) (*Comment, error)
	GetByExternalID(ctx context.Context, platform Platform, externalID string) (*Comment, error)
	ExistingExternalIDs(ctx context.Context, platform Platform, externalIDs ...string) (map[string]bool, error)
	UpdateSentiment(ctx context.Context, id uint, analysis SentimentAnalysis) error
	CountSince(ctx context.Context, platform Platform, since time.Time) (int64, error)
}

type ReplyRepository interface {
	// Create inserts the reply. An auto_approved reply marks its comment as replied in the
	// same transaction.
	Create(ctx context.Context, reply *Reply) error
	Get(ctx context.Context, id uint) (*Reply, error)
	// ListByStatus returns replies newest first.
	ListByStatus(ctx context.Context, limit int, statuses ...ReplyStatus) ([]Reply, error)
	// ListPromotable returns pending replies with confidence of at least threshold, newest first.
	ListPromotable(ctx context.Context, threshold float64, limit int) ([]Reply, error)
	// ListUnposted returns approved and auto_approved replies to comments on platform, newest first.
	ListUnposted(ctx context.Context, platform Platform, limit int) ([]Reply, error)
	Approve(ctx context.Context, id uint, approvedBy string) (*Reply, error)
	Reject(ctx context.Context, id uint) (*Reply, error)
	// Claim takes the posting claim of a postable reply. It returns false when the reply is
	// not postable or someone else holds a live claim.
	Claim(ctx context.Context, id uint, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id uint) error
	// MarkPosted moves the reply to posted and marks its comment as replied atomically.
	MarkPosted(ctx context.Context, id uint, externalID string) error
	CountByStatus(ctx context.Context) (map[ReplyStatus]int64, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	OwnerActive(ctx context.Context) (bool, error)
	SetOwnerActive(ctx context.Context, active bool) error
}

type AnalyticsRepository interface {
	Record(ctx context.Context, platform, metricType string, value float64, metadata map[string]any) error
	Summary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error)
}

type CRMActionRepository interface {
	Create(ctx context.Context, action *CRMAction) error
	ListByComment(ctx context.Context, commentID uint) ([]CRMAction, error)
}
