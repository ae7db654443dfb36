// Package scheduling polls the platforms for new comments, feeds them through the
// processing pipeline and posts the replies that need no human.
package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"replyflow/internal/config"
	"replyflow/internal/core"
)

const sweepLimit = 50

var lastFetch = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "replyflow_platform_last_fetch_timestamp_seconds",
	Help: "Unix time of the last completed fetch per platform",
}, []string{"platform"})

// CycleStats summarizes one fetch cycle.
type CycleStats struct {
	Platforms   int
	Posts       int
	NewComments int
	Posted      int
	Failed      int
}

type Scheduler struct {
	Logger *slog.Logger
	Config *config.Config

	Adapters  core.AdapterSource
	Processor core.CommentProcessor
	Poster    core.ReplyPoster
	Notifier  core.Notifier

	Posts     core.PostRepository
	Comments  core.CommentRepository
	Replies   core.ReplyRepository
	Settings  core.SettingsRepository
	Analytics core.AnalyticsRepository
}

func (s *Scheduler) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "scheduling.Scheduler")

	if s.Config.FetchInterval <= 0 || s.Config.SweepInterval <= 0 || s.Config.RollupInterval <= 0 {
		return errors.New("scheduler intervals must be positive")
	}
	return nil
}

// Run owns the three periodic activities. They share one goroutine and never overlap.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Logger.Info("Scheduler started",
		"fetch_interval", s.Config.FetchInterval,
		"sweep_interval", s.Config.SweepInterval,
		"rollup_interval", s.Config.RollupInterval,
	)

	s.runFetch(ctx)

	fetch := time.NewTicker(s.Config.FetchInterval)
	defer fetch.Stop()
	sweep := time.NewTicker(s.Config.SweepInterval)
	defer sweep.Stop()
	rollup := time.NewTicker(s.Config.RollupInterval)
	defer rollup.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("Scheduler stopped")
			return nil
		case <-fetch.C:
			s.runFetch(ctx)
		case <-sweep.C:
			err := s.Sweep(ctx)
			if err != nil {
				s.Logger.Error("Sweep failed", "error", err)
			}
		case <-rollup.C:
			err := s.Rollup(ctx)
			if err != nil {
				s.Logger.Error("Rollup failed", "error", err)
			}
		}
	}
}

func (s *Scheduler) runFetch(ctx context.Context) {
	stats, err := s.FetchCycle(ctx)
	if err != nil {
		s.Logger.Error("Fetch cycle failed", "error", err)
		return
	}

	s.Logger.Info("Fetch cycle completed",
		"platforms", stats.Platforms,
		"posts", stats.Posts,
		"new_comments", stats.NewComments,
		"posted", stats.Posted,
		"failed", stats.Failed,
	)
}

// FetchCycle polls every configured platform once. owner_active is read once for the cycle
// and again right before each reply is posted.
func (s *Scheduler) FetchCycle(ctx context.Context) (CycleStats, error) {
	ownerActive, err := s.Settings.OwnerActive(ctx)
	if err != nil {
		return CycleStats{}, err
	}

	stats := CycleStats{}
	for _, adapter := range s.Adapters.Adapters() {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		stats.Platforms++
		s.fetchPlatform(ctx, adapter, ownerActive, &stats)
		lastFetch.WithLabelValues(string(adapter.Platform())).SetToCurrentTime()
	}

	return stats, nil
}

func (s *Scheduler) fetchPlatform(ctx context.Context, adapter core.Adapter, ownerActive bool, stats *CycleStats) {
	logger := s.Logger.With("platform", adapter.Platform())

	for _, raw := range adapter.ListRecentPosts(ctx, s.Config.PostsPerFetch) {
		post := &core.Post{
			Platform:   adapter.Platform(),
			ExternalID: raw.ExternalID,
			Content:    raw.Content,
			Author:     raw.Author,
			URL:        raw.URL,
			MediaType:  raw.MediaType,
			Metadata:   postMetadata(raw),
		}
		if !raw.PublishedAt.IsZero() {
			publishedAt := raw.PublishedAt
			post.PublishedAt = &publishedAt
		}

		err := s.Posts.Upsert(ctx, post)
		if err != nil {
			logger.Error("Failed to store post", "post_id", raw.ExternalID, "error", err)
			continue
		}
		stats.Posts++

		comments := adapter.ListComments(ctx, raw.ExternalID)
		if len(comments) > s.Config.MaxCommentsPerFetch {
			comments = comments[:s.Config.MaxCommentsPerFetch]
		}
		if len(comments) == 0 {
			continue
		}

		ids := lo.Map(comments, func(comment core.RawComment, _ int) string {
			return comment.ExternalID
		})

		known, err := s.Comments.ExistingExternalIDs(ctx, adapter.Platform(), ids...)
		if err != nil {
			logger.Error("Failed to check known comments", "post_id", raw.ExternalID, "error", err)
			continue
		}

		for _, comment := range comments {
			if known[comment.ExternalID] {
				continue
			}
			// A thread can return the same comment twice.
			known[comment.ExternalID] = true

			s.handleComment(ctx, logger, comment, ownerActive, stats)
		}
	}
}

func (s *Scheduler) handleComment(ctx context.Context, logger *slog.Logger, comment core.RawComment, ownerActive bool, stats *CycleStats) {
	logger = logger.With("comment_id", comment.ExternalID)

	result, err := s.Processor.Process(ctx, comment)
	if err != nil {
		stats.Failed++
		logger.Error("Failed to process comment", "error", err)
		return
	}
	stats.NewComments++

	s.Notifier.Notify(ctx, core.EventNewComment, map[string]any{
		"comment_id":   result.CommentID,
		"reply_id":     result.ReplyID,
		"platform":     comment.Platform,
		"author":       comment.Author,
		"content":      comment.Content,
		"category":     result.Category,
		"reply_status": result.ReplyStatus,
		"confidence":   result.Confidence,
	})

	if !result.AutoApproved() || ownerActive {
		return
	}

	active, err := s.Settings.OwnerActive(ctx)
	if err != nil {
		logger.Error("Failed to read owner status", "error", err)
		return
	}
	if active {
		logger.Info("Owner became active, leaving reply for review")
		return
	}

	reply, err := s.Replies.Get(ctx, result.ReplyID)
	if err != nil {
		logger.Error("Failed to load reply", "reply_id", result.ReplyID, "error", err)
		return
	}

	if s.post(ctx, logger, reply) {
		stats.Posted++
	}
}

// Sweep promotes confident pending replies and posts them, then retries approved replies
// whose earlier post failed. Retries are listed per configured platform so a platform that
// keeps failing cannot crowd out the others. Nothing happens while the owner is active.
func (s *Scheduler) Sweep(ctx context.Context) error {
	active, err := s.Settings.OwnerActive(ctx)
	if err != nil {
		return err
	}
	if active {
		return nil
	}

	attempted := map[uint]bool{}

	promotable, err := s.Replies.ListPromotable(ctx, s.Config.AutoApproveThreshold, sweepLimit)
	if err != nil {
		return err
	}

	for _, reply := range promotable {
		approved, err := s.Replies.Approve(ctx, reply.ID, core.ApprovedByAI)
		if err != nil {
			if errors.Is(err, core.ErrInvalidStatus) {
				continue
			}
			return err
		}

		attempted[approved.ID] = true
		s.post(ctx, s.Logger.With("reply_id", approved.ID), approved)
	}

	for _, adapter := range s.Adapters.Adapters() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		unposted, err := s.Replies.ListUnposted(ctx, adapter.Platform(), sweepLimit)
		if err != nil {
			return err
		}

		for _, reply := range unposted {
			if attempted[reply.ID] {
				continue
			}
			s.post(ctx, s.Logger.With("reply_id", reply.ID, "platform", adapter.Platform()), &reply)
		}
	}

	return nil
}

// Rollup records how many comments every platform received in the trailing hour.
func (s *Scheduler) Rollup(ctx context.Context) error {
	since := time.Now().Add(-time.Hour)

	for _, platform := range core.Platforms {
		count, err := s.Comments.CountSince(ctx, platform, since)
		if err != nil {
			return err
		}
		if count == 0 {
			continue
		}

		err = s.Analytics.Record(ctx, string(platform), core.MetricHourlyComments, float64(count), map[string]any{
			"window": "1h",
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Scheduler) post(ctx context.Context, logger *slog.Logger, reply *core.Reply) bool {
	result, err := s.Poster.Post(ctx, reply)
	if err != nil {
		if errors.Is(err, ErrClaimed) {
			logger.Debug("Reply is handled elsewhere")
			return false
		}
		logger.Error("Failed to post reply", "error", err)
		return false
	}
	return result.Success
}

func postMetadata(raw core.RawPost) map[string]any {
	metadata := map[string]any{}
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	if raw.Title != "" {
		metadata["title"] = raw.Title
	}
	return metadata
}
