package processing_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/approval"
	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/persistence/memory"
	"replyflow/internal/processing"
	"replyflow/internal/testkit"
)

type fixture struct {
	processor *processing.Processor
	store     *memory.Store
	ai        *testkit.AI
	crm       *testkit.CRM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	fakeAI := testkit.NewAI()
	fakeCRM := &testkit.CRM{}

	processor := &processing.Processor{
		Logger:     slog.New(slog.DiscardHandler),
		Config:     &config.Config{AutoApproveThreshold: approval.DefaultThreshold},
		AI:         fakeAI,
		CRM:        fakeCRM,
		Posts:      store.Posts(),
		Comments:   store.Comments(),
		Replies:    store.Replies(),
		Analytics:  store.Analytics(),
		CRMActions: store.CRMActions(),
	}
	require.NoError(t, processor.Init(t.Context()))

	return &fixture{processor: processor, store: store, ai: fakeAI, crm: fakeCRM}
}

func rawComment(id, text string) core.RawComment {
	return core.RawComment{
		Platform:       core.PlatformYouTube,
		ExternalID:     id,
		PostExternalID: "video-1",
		Author:         "Ann Smith",
		AuthorID:       "author-1",
		Content:        text,
	}
}

func TestProcessor_Process(t *testing.T) {
	t.Parallel()

	t.Run("lead stays pending and reaches the CRM", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		result, err := f.processor.Process(t.Context(), rawComment("c-1", "How much is the course?"))
		require.NoError(t, err)

		require.True(t, result.Success)
		require.Equal(t, core.CategoryLead, result.Category)
		require.Equal(t, core.ReplyStatusPending, result.ReplyStatus)
		require.Contains(t, result.Triggers.Workflows, "lead_nurture")
		require.Contains(t, result.Triggers.Workflows, "sales_followup")

		require.NotNil(t, result.CRM)
		require.True(t, result.CRM.Success)
		require.Equal(t, 2, result.CRM.WorkflowsTriggered)
		require.Equal(t, 2, result.CRM.TagsAdded)

		actions, err := f.store.CRMActions().ListByComment(t.Context(), result.CommentID)
		require.NoError(t, err)
		require.Len(t, actions, 4)

		comment, err := f.store.Comments().Get(t.Context(), result.CommentID)
		require.NoError(t, err)
		require.False(t, comment.HasReply)
		require.NotNil(t, comment.Sentiment)
		require.Equal(t, "positive", *comment.Sentiment)

		post, err := f.store.Posts().GetByExternalID(t.Context(), core.PlatformYouTube, "video-1")
		require.NoError(t, err)
		require.Equal(t, post.ID, comment.PostID)
	})

	t.Run("confident praise is auto approved", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		result, err := f.processor.Process(t.Context(), rawComment("c-1", "This is amazing!"))
		require.NoError(t, err)

		require.Equal(t, core.CategoryPraise, result.Category)
		require.Equal(t, core.ReplyStatusAutoApproved, result.ReplyStatus)
		require.True(t, result.AutoApproved())

		reply, err := f.store.Replies().Get(t.Context(), result.ReplyID)
		require.NoError(t, err)
		require.Equal(t, core.ApprovedByAI, reply.ApprovedBy)
		require.NotNil(t, reply.ApprovedAt)
		require.InDelta(t, 0.85, reply.Confidence, 1e-9)

		comment, err := f.store.Comments().Get(t.Context(), result.CommentID)
		require.NoError(t, err)
		require.True(t, comment.HasReply)

		require.Equal(t, []string{"testimonial_request"}, f.crm.Workflows)
	})

	t.Run("AI failure degrades to the fallback reply", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ai.ClassifyErr = errors.New("model unavailable")
		f.ai.SentimentErr = errors.New("model unavailable")

		result, err := f.processor.Process(t.Context(), rawComment("c-1", "The sunset in the intro looked nice"))
		require.NoError(t, err)

		require.Equal(t, core.CategoryGeneral, result.Category)
		require.Equal(t, core.ReplyStatusPending, result.ReplyStatus)
		require.InDelta(t, 0.3, result.Confidence, 1e-9)
		require.Equal(t, "neutral", result.Sentiment)

		reply, err := f.store.Replies().Get(t.Context(), result.ReplyID)
		require.NoError(t, err)
		require.NotEmpty(t, reply.Content)
		require.Equal(t, core.ReplyStatusPending, reply.Status)
	})

	t.Run("generation failure keeps the classification", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ai.GenerateErr = errors.New("timeout")

		result, err := f.processor.Process(t.Context(), rawComment("c-1", "Love it"))
		require.NoError(t, err)

		require.Equal(t, core.CategoryPraise, result.Category)
		require.Equal(t, core.ReplyStatusPending, result.ReplyStatus)
		require.InDelta(t, 0.3, result.Confidence, 1e-9)
	})

	t.Run("invalid comment", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, err := f.processor.Process(t.Context(), rawComment("c-1", "   "))
		require.ErrorIs(t, err, core.ErrInvalidComment)

		raw := rawComment("c-2", "hello")
		raw.PostExternalID = ""
		_, err = f.processor.Process(t.Context(), raw)
		require.ErrorIs(t, err, core.ErrInvalidComment)

		var errorsRecorded int
		for _, metric := range f.store.Metrics() {
			if metric.MetricType == core.MetricProcessingError {
				errorsRecorded++
			}
		}
		require.Equal(t, 2, errorsRecorded)
	})

	t.Run("reprocessing keeps a single comment", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		first, err := f.processor.Process(t.Context(), rawComment("c-1", "Love it"))
		require.NoError(t, err)

		second, err := f.processor.Process(t.Context(), rawComment("c-1", "Love it"))
		require.NoError(t, err)

		require.Equal(t, first.CommentID, second.CommentID)

		existing, err := f.store.Comments().ExistingExternalIDs(t.Context(), core.PlatformYouTube, "c-1", "c-2")
		require.NoError(t, err)
		require.Equal(t, map[string]bool{"c-1": true}, existing)
	})
}
