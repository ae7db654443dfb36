package core

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a social media post, unique by (platform, platform_post_id).
type Post struct {
	ID          uint     `gorm:"primaryKey"`
	Platform    Platform `gorm:"not null;uniqueIndex:ux_posts_platform_external,priority:1"`
	ExternalID  string   `gorm:"column:platform_post_id;not null;uniqueIndex:ux_posts_platform_external,priority:2"`
	Content     string   `gorm:"type:text"`
	Author      string
	URL         string `gorm:"type:text"`
	MediaType   string
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Post) TableName() string {
	return "posts"
}

// Comment is a comment on a post, unique by (platform, platform_comment_id).
type Comment struct {
	ID               uint     `gorm:"primaryKey"`
	PostID           uint     `gorm:"not null;index"`
	Platform         Platform `gorm:"not null;uniqueIndex:ux_comments_platform_external,priority:1"`
	ExternalID       string   `gorm:"column:platform_comment_id;not null;uniqueIndex:ux_comments_platform_external,priority:2"`
	ParentExternalID *string  `gorm:"column:parent_comment_id"`
	Author           string
	AuthorID         string
	Content          string    `gorm:"type:text;not null"`
	Category         *Category `gorm:"column:comment_type;index"`
	Sentiment        *string
	Confidence       float64
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	PublishedAt      *time.Time
	HasReply         bool `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Comment) TableName() string {
	return "comments"
}

// Reply is an AI generated or manual reply to a comment.
type Reply struct {
	ID           uint        `gorm:"primaryKey"`
	CommentID    uint        `gorm:"not null;index"`
	Content      string      `gorm:"type:text;not null"`
	Status       ReplyStatus `gorm:"not null;default:pending;index"`
	Origin       ReplyOrigin `gorm:"column:reply_type;not null;default:ai"`
	ExternalID   *string     `gorm:"column:platform_reply_id"`
	Confidence   float64
	Triggers     datatypes.JSONType[Triggers] `gorm:"column:crm_triggers;type:jsonb"`
	ClaimedUntil *time.Time
	CreatedAt    time.Time
	ApprovedAt   *time.Time
	ApprovedBy   string
	PostedAt     *time.Time
}

func (Reply) TableName() string {
	return "replies"
}

type Setting struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"not null;uniqueIndex"`
	Value       string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Setting) TableName() string {
	return "settings"
}

// Metric is a single analytics data point.
type Metric struct {
	ID         uint      `gorm:"primaryKey"`
	Date       time.Time `gorm:"not null;index"`
	Platform   string    `gorm:"index"`
	MetricType string
	Value      float64
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (Metric) TableName() string {
	return "analytics"
}

const (
	CRMActionTagAdded          = "tag_added"
	CRMActionWorkflowTriggered = "workflow_triggered"

	CRMActionStatusExecuted = "executed"
	CRMActionStatusFailed   = "failed"
)

// CRMAction records a side effect performed in the CRM for a comment.
type CRMAction struct {
	ID           uint `gorm:"primaryKey"`
	CommentID    uint `gorm:"not null;index"`
	ActionType   string
	ContactID    string
	Tags         datatypes.JSONType[[]string] `gorm:"type:jsonb"`
	WorkflowName string
	Status       string
	ResponseData datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time
	ExecutedAt   *time.Time
}

func (CRMAction) TableName() string {
	return "crm_actions"
}
