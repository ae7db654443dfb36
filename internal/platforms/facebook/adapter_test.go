package facebook_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/platforms/facebook"
)

func newAdapter(t *testing.T, handler http.Handler) *facebook.Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	adapter := facebook.New(slog.Default(), facebook.Config{
		BaseURL:     srv.URL,
		AccessToken: "token",
		PageID:      "page1",
		MaxComments: 50,
	})
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestAdapter(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /page1/posts", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "token", r.URL.Query().Get("access_token"))
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data": [{"id": "page1_1", "message": "New course!", "created_time": "2024-05-01T08:00:00+0000", "permalink_url": "https://fb/p/1"}]}`))
	})
	mux.HandleFunc("GET /page1_1/comments", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{"id": "c1", "message": "Interested!", "from": {"name": "Ann", "id": "u1"}, "created_time": "2024-05-01T09:00:00+0000", "like_count": 2},
			{"id": "c2", "message": "Me too", "from": {"name": "Bob", "id": "u2"}, "created_time": "2024-05-01T09:10:00+0000", "parent": {"id": "c1"}}
		]}`))
	})
	mux.HandleFunc("POST /c1/comments", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "Thanks!", r.PostForm.Get("message"))
		require.Equal(t, "token", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"id": "c1_r1"}`))
	})
	mux.HandleFunc("POST /c2/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad"}}`))
	})

	adapter := newAdapter(t, mux)

	posts := adapter.ListRecentPosts(t.Context(), 10)
	require.Len(t, posts, 1)
	require.Equal(t, "page1_1", posts[0].ExternalID)
	require.Equal(t, "text", posts[0].MediaType)
	require.Equal(t, 2024, posts[0].PublishedAt.Year())

	comments := adapter.ListComments(t.Context(), "page1_1")
	require.Len(t, comments, 2)
	require.Equal(t, "Ann", comments[0].Author)
	require.Equal(t, "c1", comments[1].ParentExternalID)

	result := adapter.PostReply(t.Context(), core.ReplyTarget{CommentExternalID: "c1"}, "Thanks!")
	require.True(t, result.Success)
	require.Equal(t, "c1_r1", result.ReplyID)

	result = adapter.PostReply(t.Context(), core.ReplyTarget{CommentExternalID: "c2"}, "Thanks!")
	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
}

func TestAdapter_FailSoft(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	require.Empty(t, adapter.ListRecentPosts(t.Context(), 10))
	require.Empty(t, adapter.ListComments(t.Context(), "p"))
}
