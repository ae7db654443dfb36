package core

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidComment = errors.New("invalid comment")
	ErrInvalidStatus  = errors.New("invalid reply status transition")
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
)

// Platforms lists every supported platform in polling order.
var Platforms = []Platform{
	PlatformYouTube,
	PlatformFacebook,
	PlatformInstagram,
	PlatformLinkedIn,
	PlatformTwitter,
}

type Category string

const (
	CategoryLead      Category = "lead"
	CategoryPraise    Category = "praise"
	CategoryQuestion  Category = "question"
	CategoryComplaint Category = "complaint"
	CategorySpam      Category = "spam"
	CategoryGeneral   Category = "general"
)

var Categories = []Category{
	CategoryLead,
	CategoryPraise,
	CategoryQuestion,
	CategoryComplaint,
	CategorySpam,
	CategoryGeneral,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type ReplyStatus string

const (
	ReplyStatusPending      ReplyStatus = "pending"
	ReplyStatusApproved     ReplyStatus = "approved"
	ReplyStatusRejected     ReplyStatus = "rejected"
	ReplyStatusAutoApproved ReplyStatus = "auto_approved"
	ReplyStatusPosted       ReplyStatus = "posted"
)

// Postable reports whether a reply in this status may be sent to the platform.
func (s ReplyStatus) Postable() bool {
	return s == ReplyStatusApproved || s == ReplyStatusAutoApproved
}

type ReplyOrigin string

const (
	ReplyOriginAI     ReplyOrigin = "ai"
	ReplyOriginManual ReplyOrigin = "manual"
)

const (
	ApprovedByAI     = "ai_auto"
	ApprovedByManual = "manual"
	ApprovedByBulk   = "bulk_manual"
)

const (
	MetricCommentProcessed = "comment_processed"
	MetricProcessingError  = "processing_error"
	MetricHourlyComments   = "hourly_comments"
	MetricReplyApproved    = "reply_approved"
	MetricReplyRejected    = "reply_rejected"
)

const SettingOwnerActive = "owner_active"

// RawPost is a post as returned by a platform adapter, before it is stored.
type RawPost struct {
	Platform    Platform
	ExternalID  string
	Title       string
	Content     string
	Author      string
	URL         string
	MediaType   string
	Metadata    map[string]any
	PublishedAt time.Time
}

// RawComment is a comment as returned by a platform adapter.
type RawComment struct {
	Platform         Platform
	ExternalID       string
	PostExternalID   string
	ParentExternalID string
	Author           string
	AuthorID         string
	Content          string
	Metadata         map[string]any
	PublishedAt      time.Time
}

// ReplyTarget identifies where a reply goes. Most platforms only need the comment id,
// LinkedIn needs the post URN as well.
type ReplyTarget struct {
	PostExternalID    string
	CommentExternalID string
}

type PostReplyResult struct {
	Success bool
	ReplyID string
	Error   string
}

type Triggers struct {
	Tags      []string `json:"tags"`
	Workflows []string `json:"workflows"`
}

func (t Triggers) Empty() bool {
	return len(t.Tags) == 0 && len(t.Workflows) == 0
}

type Classification struct {
	Category        Category
	Confidence      float64
	Method          string
	Reasoning       string
	MatchedKeywords []string
}

type ReplyRequest struct {
	Text        string
	Category    Category
	Platform    Platform
	PostContext string
	Author      string
}

type GeneratedReply struct {
	Text          string
	Confidence    float64
	Triggers      Triggers
	NeedsApproval bool
	Model         string
}

type SentimentAnalysis struct {
	Sentiment string   `json:"sentiment"`
	Score     float64  `json:"score"`
	Emotions  []string `json:"emotions"`
}

type Contact struct {
	Name         string
	Platform     Platform
	PlatformID   string
	Tags         []string
	CustomFields map[string]any
}

type ContactResult struct {
	Success   bool
	ContactID string
	IsNew     bool
	Mock      bool
	Error     string
}

type WorkflowResult struct {
	Success bool
	Mock    bool
	Error   string
}

type CRMResult struct {
	Success            bool   `json:"success"`
	ContactID          string `json:"contact_id,omitempty"`
	WorkflowsTriggered int    `json:"workflows_triggered"`
	TagsAdded          int    `json:"tags_added"`
	Error              string `json:"error,omitempty"`
}

// ProcessResult is the outcome of running one comment through the processing pipeline.
type ProcessResult struct {
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
	CommentID   uint        `json:"comment_id"`
	ReplyID     uint        `json:"reply_id"`
	ReplyStatus ReplyStatus `json:"reply_status"`
	Category    Category    `json:"category"`
	Sentiment   string      `json:"sentiment"`
	Confidence  float64     `json:"confidence"`
	Triggers    Triggers    `json:"triggers"`
	CRM         *CRMResult  `json:"crm,omitempty"`
}

func (r ProcessResult) AutoApproved() bool {
	return r.Success && r.ReplyStatus == ReplyStatusAutoApproved
}

type EventType string

const (
	EventNewComment  EventType = "new_comment"
	EventReplyPosted EventType = "reply_posted"
)

type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

type AnalyticsSummary struct {
	From              time.Time          `json:"from"`
	To                time.Time          `json:"to"`
	TotalComments     int64              `json:"total_comments"`
	TotalReplies      int64              `json:"total_replies"`
	ResponseRate      float64            `json:"response_rate"`
	PlatformBreakdown map[Platform]int64 `json:"platform_breakdown"`
	CategoryBreakdown map[Category]int64 `json:"category_breakdown"`
}
