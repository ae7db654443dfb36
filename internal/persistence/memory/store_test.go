package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/persistence/memory"
)

func seed(t *testing.T, store *memory.Store) *core.Comment {
	t.Helper()

	post := &core.Post{Platform: core.PlatformFacebook, ExternalID: "p-1"}
	require.NoError(t, store.Posts().Upsert(t.Context(), post))

	comment := &core.Comment{PostID: post.ID, Platform: core.PlatformFacebook, ExternalID: "c-1", Content: "hi"}
	require.NoError(t, store.Comments().Upsert(t.Context(), comment))
	return comment
}

func TestComments_Upsert(t *testing.T) {
	t.Parallel()

	store := memory.New()
	first := seed(t, store)

	second := &core.Comment{PostID: first.PostID, Platform: core.PlatformFacebook, ExternalID: "c-1", Content: "edited"}
	require.NoError(t, store.Comments().Upsert(t.Context(), second))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "edited", second.Content)

	count, err := store.Comments().CountSince(t.Context(), core.PlatformFacebook, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	orphan := &core.Comment{PostID: 999, Platform: core.PlatformFacebook, ExternalID: "c-2", Content: "x"}
	require.ErrorIs(t, store.Comments().Upsert(t.Context(), orphan), core.ErrNotFound)
}

func TestReplies_AutoApprovedMarksCommentReplied(t *testing.T) {
	t.Parallel()

	store := memory.New()
	comment := seed(t, store)

	reply := &core.Reply{CommentID: comment.ID, Content: "thanks", Status: core.ReplyStatusAutoApproved}
	require.NoError(t, store.Replies().Create(t.Context(), reply))

	stored, err := store.Comments().Get(t.Context(), comment.ID)
	require.NoError(t, err)
	require.True(t, stored.HasReply)
}

func TestReplies_Claim(t *testing.T) {
	t.Parallel()

	store := memory.New()
	comment := seed(t, store)
	replies := store.Replies()

	reply := &core.Reply{CommentID: comment.ID, Content: "thanks", Status: core.ReplyStatusPending}
	require.NoError(t, replies.Create(t.Context(), reply))

	ok, err := replies.Claim(t.Context(), reply.ID, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = replies.Approve(t.Context(), reply.ID, core.ApprovedByManual)
	require.NoError(t, err)

	ok, err = replies.Claim(t.Context(), reply.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = replies.Claim(t.Context(), reply.ID, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = replies.Reject(t.Context(), reply.ID)
	require.ErrorIs(t, err, core.ErrInvalidStatus)

	require.NoError(t, replies.Release(t.Context(), reply.ID))

	ok, err = replies.Claim(t.Context(), reply.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, replies.MarkPosted(t.Context(), reply.ID, "fb-1"))

	stored, err := store.Comments().Get(t.Context(), comment.ID)
	require.NoError(t, err)
	require.True(t, stored.HasReply)

	require.ErrorIs(t, replies.MarkPosted(t.Context(), reply.ID, "fb-2"), core.ErrInvalidStatus)
}

func TestReplies_ListPromotable(t *testing.T) {
	t.Parallel()

	store := memory.New()
	comment := seed(t, store)
	replies := store.Replies()

	create := func(status core.ReplyStatus, confidence float64) uint {
		reply := &core.Reply{CommentID: comment.ID, Content: "thanks", Status: status, Confidence: confidence}
		require.NoError(t, replies.Create(t.Context(), reply))
		return reply.ID
	}

	older := create(core.ReplyStatusPending, 0.8)
	for range 5 {
		create(core.ReplyStatusPending, 0.6)
	}
	create(core.ReplyStatusRejected, 0.95)
	newer := create(core.ReplyStatusPending, 0.9)

	promotable, err := replies.ListPromotable(t.Context(), 0.8, 10)
	require.NoError(t, err)
	require.Len(t, promotable, 2)
	require.Equal(t, newer, promotable[0].ID)
	require.Equal(t, older, promotable[1].ID)

	promotable, err = replies.ListPromotable(t.Context(), 0.8, 1)
	require.NoError(t, err)
	require.Len(t, promotable, 1)
	require.Equal(t, newer, promotable[0].ID)
}

func TestReplies_ListUnposted(t *testing.T) {
	t.Parallel()

	store := memory.New()
	facebook := seed(t, store)
	replies := store.Replies()

	post := &core.Post{Platform: core.PlatformTwitter, ExternalID: "t-1"}
	require.NoError(t, store.Posts().Upsert(t.Context(), post))
	twitter := &core.Comment{PostID: post.ID, Platform: core.PlatformTwitter, ExternalID: "tc-1", Content: "hi"}
	require.NoError(t, store.Comments().Upsert(t.Context(), twitter))

	approved := &core.Reply{CommentID: facebook.ID, Content: "thanks", Status: core.ReplyStatusApproved}
	require.NoError(t, replies.Create(t.Context(), approved))
	pending := &core.Reply{CommentID: facebook.ID, Content: "thanks", Status: core.ReplyStatusPending}
	require.NoError(t, replies.Create(t.Context(), pending))
	other := &core.Reply{CommentID: twitter.ID, Content: "thanks", Status: core.ReplyStatusAutoApproved}
	require.NoError(t, replies.Create(t.Context(), other))

	unposted, err := replies.ListUnposted(t.Context(), core.PlatformFacebook, 10)
	require.NoError(t, err)
	require.Len(t, unposted, 1)
	require.Equal(t, approved.ID, unposted[0].ID)

	unposted, err = replies.ListUnposted(t.Context(), core.PlatformTwitter, 10)
	require.NoError(t, err)
	require.Len(t, unposted, 1)
	require.Equal(t, other.ID, unposted[0].ID)
}

func TestSettings_OwnerActive(t *testing.T) {
	t.Parallel()

	settings := memory.New().Settings()

	active, err := settings.OwnerActive(t.Context())
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, settings.SetOwnerActive(t.Context(), true))

	active, err = settings.OwnerActive(t.Context())
	require.NoError(t, err)
	require.True(t, active)
}
