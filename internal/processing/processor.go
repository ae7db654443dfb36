// Package processing runs a single comment through classification, reply generation,
// persistence and CRM follow-up.
package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/datatypes"

	"replyflow/internal/ai"
	"replyflow/internal/approval"
	"replyflow/internal/config"
	"replyflow/internal/core"
)

const postContextLength = 100

var (
	commentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_comments_processed_total",
		Help: "The total number of processed comments",
	}, []string{"platform", "category", "status"})

	processingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_processing_errors_total",
		Help: "The total number of comments that failed processing",
	}, []string{"platform"})

	aiFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replyflow_ai_fallbacks_total",
		Help: "The total number of AI calls that degraded to fallback content",
	}, []string{"operation"})
)

type Processor struct {
	Logger *slog.Logger
	Config *config.Config

	AI  core.AIEngine
	CRM core.CRM

	Posts      core.PostRepository
	Comments   core.CommentRepository
	Replies    core.ReplyRepository
	Analytics  core.AnalyticsRepository
	CRMActions core.CRMActionRepository
}

func (p *Processor) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "processing.Processor")
	return nil
}

func (p *Processor) Process(ctx context.Context, raw core.RawComment) (core.ProcessResult, error) {
	result, err := p.process(ctx, raw)
	if err != nil {
		processingErrors.WithLabelValues(string(raw.Platform)).Inc()
		p.record(ctx, raw.Platform, core.MetricProcessingError, map[string]any{
			"comment_id": raw.ExternalID,
			"error":      err.Error(),
		})

		return core.ProcessResult{Success: false, Error: err.Error()}, err
	}

	commentsProcessed.WithLabelValues(string(raw.Platform), string(result.Category), string(result.ReplyStatus)).Inc()
	p.record(ctx, raw.Platform, core.MetricCommentProcessed, map[string]any{
		"comment_type":  result.Category,
		"auto_approved": result.AutoApproved(),
		"sentiment":     result.Sentiment,
	})

	return result, nil
}

func (p *Processor) process(ctx context.Context, raw core.RawComment) (core.ProcessResult, error) {
	if raw.Platform == "" || strings.TrimSpace(raw.Content) == "" || raw.ExternalID == "" {
		return core.ProcessResult{}, fmt.Errorf("%w: platform, id and content are required", core.ErrInvalidComment)
	}
	if raw.PostExternalID == "" {
		return core.ProcessResult{}, fmt.Errorf("%w: post id is required", core.ErrInvalidComment)
	}

	logger := p.Logger.With("platform", raw.Platform, "comment_id", raw.ExternalID)

	post, err := p.resolvePost(ctx, raw)
	if err != nil {
		return core.ProcessResult{}, err
	}

	classification, err := p.AI.Classify(ctx, raw.Content, raw.Platform)
	classified := err == nil
	if !classified {
		logger.Warn("Classification failed, using fallback", "error", err)
		aiFallbacks.WithLabelValues("classify").Inc()
		classification = ai.FallbackClassification(err.Error())
	}

	comment, err := p.storeComment(ctx, raw, post.ID, classification)
	if err != nil {
		return core.ProcessResult{}, err
	}

	req := core.ReplyRequest{
		Text:        raw.Content,
		Category:    classification.Category,
		Platform:    raw.Platform,
		PostContext: truncate(post.Content, postContextLength),
		Author:      raw.Author,
	}

	reply := ai.Fallback(req)
	if classified {
		generated, err := p.AI.GenerateReply(ctx, req)
		if err != nil {
			logger.Warn("Reply generation failed, using fallback", "error", err)
			aiFallbacks.WithLabelValues("generate").Inc()
		} else {
			reply = generated
		}
	}

	sentiment, err := p.AI.AnalyzeSentiment(ctx, raw.Content)
	if err != nil {
		logger.Debug("Sentiment analysis failed, assuming neutral", "error", err)
		aiFallbacks.WithLabelValues("sentiment").Inc()
		sentiment = ai.NeutralSentiment()
	}

	err = p.Comments.UpdateSentiment(ctx, comment.ID, sentiment)
	if err != nil {
		return core.ProcessResult{}, err
	}

	status := approval.Decide(classification.Category, reply.Confidence, p.Config.AutoApproveThreshold)

	stored := &core.Reply{
		CommentID:  comment.ID,
		Content:    reply.Text,
		Status:     status,
		Origin:     core.ReplyOriginAI,
		Confidence: reply.Confidence,
		Triggers:   datatypes.NewJSONType(reply.Triggers),
	}
	if status == core.ReplyStatusAutoApproved {
		now := time.Now()
		stored.ApprovedAt = &now
		stored.ApprovedBy = core.ApprovedByAI
	}

	err = p.Replies.Create(ctx, stored)
	if err != nil {
		return core.ProcessResult{}, err
	}

	result := core.ProcessResult{
		Success:     true,
		CommentID:   comment.ID,
		ReplyID:     stored.ID,
		ReplyStatus: status,
		Category:    classification.Category,
		Sentiment:   sentiment.Sentiment,
		Confidence:  reply.Confidence,
		Triggers:    reply.Triggers,
	}

	if len(reply.Triggers.Workflows) > 0 {
		crm := p.runCRM(ctx, raw, comment, reply.Triggers)
		result.CRM = &crm
	}

	logger.Info("Comment processed",
		"category", result.Category,
		"method", classification.Method,
		"reply_status", result.ReplyStatus,
		"confidence", result.Confidence,
	)

	return result, nil
}

// resolvePost finds the post the comment belongs to. Comments can arrive before their post
// was stored, a bare post row is created for them.
func (p *Processor) resolvePost(ctx context.Context, raw core.RawComment) (*core.Post, error) {
	post, err := p.Posts.GetByExternalID(ctx, raw.Platform, raw.PostExternalID)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	post = &core.Post{Platform: raw.Platform, ExternalID: raw.PostExternalID}
	err = p.Posts.Upsert(ctx, post)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (p *Processor) storeComment(ctx context.Context, raw core.RawComment, postID uint, classification core.Classification) (*core.Comment, error) {
	metadata := map[string]any{}
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["classification"] = map[string]any{
		"method":           classification.Method,
		"reasoning":        classification.Reasoning,
		"matched_keywords": classification.MatchedKeywords,
	}

	category := classification.Category

	comment := &core.Comment{
		PostID:     postID,
		Platform:   raw.Platform,
		ExternalID: raw.ExternalID,
		Author:     raw.Author,
		AuthorID:   raw.AuthorID,
		Content:    raw.Content,
		Category:   &category,
		Confidence: classification.Confidence,
		Metadata:   metadata,
	}
	if raw.ParentExternalID != "" {
		parent := raw.ParentExternalID
		comment.ParentExternalID = &parent
	}
	if !raw.PublishedAt.IsZero() {
		publishedAt := raw.PublishedAt
		comment.PublishedAt = &publishedAt
	}

	err := p.Comments.Upsert(ctx, comment)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (p *Processor) record(ctx context.Context, platform core.Platform, metricType string, metadata map[string]any) {
	err := p.Analytics.Record(ctx, string(platform), metricType, 1, metadata)
	if err != nil {
		p.Logger.Warn("Failed to record analytics", "metric", metricType, "error", err)
	}
}

func truncate(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length])
}
