package twitter_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/platforms/twitter"
)

func TestAdapter(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/by/username/creator", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"id": "42", "username": "creator"}}`))
	})
	mux.HandleFunc("GET /users/42/tweets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(`{"data": [{"id": "t1", "text": "New video out", "created_at": "2024-05-01T08:00:00.000Z", "conversation_id": "t1"}]}`))
	})
	mux.HandleFunc("GET /tweets/search/recent", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "conversation_id:t1", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "t1", "text": "New video out", "author_id": "42"},
				{"id": "t2", "text": "Watching now", "author_id": "7", "created_at": "2024-05-01T08:05:00.000Z"}
			],
			"includes": {"users": [{"id": "7", "username": "fan"}]}
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	adapter := twitter.New(slog.Default(), twitter.Config{BaseURL: srv.URL, BearerToken: "bearer", Username: "creator"})
	t.Cleanup(func() { _ = adapter.Close() })

	posts := adapter.ListRecentPosts(t.Context(), 3)
	require.Len(t, posts, 1)
	require.Equal(t, "https://twitter.com/creator/status/t1", posts[0].URL)

	comments := adapter.ListComments(t.Context(), "t1")
	require.Len(t, comments, 1)
	require.Equal(t, "t2", comments[0].ExternalID)
	require.Equal(t, "fan", comments[0].Author)

	result := adapter.PostReply(t.Context(), core.ReplyTarget{CommentExternalID: "t2"}, "thanks")
	require.False(t, result.Success)
	require.Equal(t, twitter.ErrElevatedAccess.Error(), result.Error)
}
