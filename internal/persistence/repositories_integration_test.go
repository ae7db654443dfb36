package persistence_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"replyflow/internal/core"
	"replyflow/internal/persistence"
	"replyflow/internal/persistence/analytics"
	"replyflow/internal/persistence/comments"
	"replyflow/internal/persistence/posts"
	"replyflow/internal/persistence/replies"
	"replyflow/internal/persistence/settings"
)

func startPostgres(t *testing.T) *persistence.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.RunContainer(ctx,
		tcPostgres.WithDatabase("replyflow"),
		tcPostgres.WithUsername("replyflow"),
		tcPostgres.WithPassword("replyflow"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://replyflow:replyflow@%s:%s/replyflow?sslmode=disable", host, port.Port())

	db, err := persistence.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Shutdown(ctx) })

	migrator := &persistence.Migrator{Logger: slog.Default(), DB: db}
	require.NoError(t, migrator.Init(ctx))
	require.NoError(t, migrator.Up(ctx))

	return db
}

func TestRepositories(t *testing.T) {
	db := startPostgres(t)
	ctx := t.Context()
	logger := slog.Default()

	postRepo := &posts.Repository{Logger: logger, DB: db}
	commentRepo := &comments.Repository{Logger: logger, DB: db}
	replyRepo := &replies.Repository{Logger: logger, DB: db}
	settingsRepo := &settings.Repository{Logger: logger, DB: db}
	analyticsRepo := &analytics.Repository{Logger: logger, DB: db}

	for _, initer := range []interface{ Init(context.Context) error }{postRepo, commentRepo, replyRepo, settingsRepo, analyticsRepo} {
		require.NoError(t, initer.Init(ctx))
	}

	post := &core.Post{Platform: core.PlatformYouTube, ExternalID: "video-1", Content: "first"}
	require.NoError(t, postRepo.Upsert(ctx, post))
	require.NotZero(t, post.ID)

	again := &core.Post{Platform: core.PlatformYouTube, ExternalID: "video-1", Content: "edited"}
	require.NoError(t, postRepo.Upsert(ctx, again))
	require.Equal(t, post.ID, again.ID)

	t.Run("comment upsert is idempotent", func(t *testing.T) {
		category := core.CategoryPraise
		for range 3 {
			comment := &core.Comment{
				PostID:     post.ID,
				Platform:   core.PlatformYouTube,
				ExternalID: "c-1",
				Content:    "love it",
				Category:   &category,
				Confidence: 0.85,
			}
			require.NoError(t, commentRepo.Upsert(ctx, comment))
		}

		existing, err := commentRepo.ExistingExternalIDs(ctx, core.PlatformYouTube, "c-1", "c-2")
		require.NoError(t, err)
		require.Equal(t, map[string]bool{"c-1": true}, existing)

		count, err := commentRepo.CountSince(ctx, core.PlatformYouTube, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})

	t.Run("reply lifecycle", func(t *testing.T) {
		comment, err := commentRepo.GetByExternalID(ctx, core.PlatformYouTube, "c-1")
		require.NoError(t, err)
		require.False(t, comment.HasReply)

		reply := &core.Reply{CommentID: comment.ID, Content: "thanks", Status: core.ReplyStatusPending, Origin: core.ReplyOriginAI, Confidence: 0.82}
		require.NoError(t, replyRepo.Create(ctx, reply))

		claimed, err := replyRepo.Claim(ctx, reply.ID, time.Minute)
		require.NoError(t, err)
		require.False(t, claimed, "pending replies cannot be claimed")

		_, err = replyRepo.Approve(ctx, reply.ID, core.ApprovedByAI)
		require.NoError(t, err)

		claimed, err = replyRepo.Claim(ctx, reply.ID, time.Minute)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = replyRepo.Claim(ctx, reply.ID, time.Minute)
		require.NoError(t, err)
		require.False(t, claimed)

		require.NoError(t, replyRepo.MarkPosted(ctx, reply.ID, "yt-reply-1"))

		posted, err := replyRepo.Get(ctx, reply.ID)
		require.NoError(t, err)
		require.Equal(t, core.ReplyStatusPosted, posted.Status)
		require.Equal(t, "yt-reply-1", *posted.ExternalID)

		comment, err = commentRepo.Get(ctx, comment.ID)
		require.NoError(t, err)
		require.True(t, comment.HasReply)

		_, err = replyRepo.Reject(ctx, reply.ID)
		require.ErrorIs(t, err, core.ErrInvalidStatus)

		counts, err := replyRepo.CountByStatus(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, counts[core.ReplyStatusPosted])
	})

	t.Run("owner active", func(t *testing.T) {
		active, err := settingsRepo.OwnerActive(ctx)
		require.NoError(t, err)
		require.False(t, active)

		require.NoError(t, settingsRepo.SetOwnerActive(ctx, true))

		active, err = settingsRepo.OwnerActive(ctx)
		require.NoError(t, err)
		require.True(t, active)

		require.NoError(t, settingsRepo.Set(ctx, "brand_voice", "friendly"))
		value, ok, err := settingsRepo.Get(ctx, "brand_voice")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "friendly", value)
	})

	t.Run("analytics summary", func(t *testing.T) {
		require.NoError(t, analyticsRepo.Record(ctx, "youtube", core.MetricHourlyComments, 1, nil))

		summary, err := analyticsRepo.Summary(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, summary.TotalComments)
		require.EqualValues(t, 1, summary.TotalReplies)
		require.InDelta(t, 100.0, summary.ResponseRate, 0.001)
		require.EqualValues(t, 1, summary.PlatformBreakdown[core.PlatformYouTube])
		require.EqualValues(t, 1, summary.CategoryBreakdown[core.CategoryPraise])
	})

	t.Run("sweep queries", func(t *testing.T) {
		comment, err := commentRepo.GetByExternalID(ctx, core.PlatformYouTube, "c-1")
		require.NoError(t, err)

		confident := &core.Reply{CommentID: comment.ID, Content: "hi", Status: core.ReplyStatusPending, Origin: core.ReplyOriginAI, Confidence: 0.82}
		require.NoError(t, replyRepo.Create(ctx, confident))
		for range 60 {
			low := &core.Reply{CommentID: comment.ID, Content: "hi", Status: core.ReplyStatusPending, Origin: core.ReplyOriginAI, Confidence: 0.6}
			require.NoError(t, replyRepo.Create(ctx, low))
		}

		promotable, err := replyRepo.ListPromotable(ctx, 0.8, 50)
		require.NoError(t, err)
		require.Len(t, promotable, 1)
		require.Equal(t, confident.ID, promotable[0].ID)

		_, err = replyRepo.Approve(ctx, confident.ID, core.ApprovedByAI)
		require.NoError(t, err)

		unposted, err := replyRepo.ListUnposted(ctx, core.PlatformYouTube, 50)
		require.NoError(t, err)
		require.Len(t, unposted, 1)
		require.Equal(t, confident.ID, unposted[0].ID)
		require.Equal(t, "hi", unposted[0].Content)

		unposted, err = replyRepo.ListUnposted(ctx, core.PlatformTwitter, 50)
		require.NoError(t, err)
		require.Empty(t, unposted)
	})
}
