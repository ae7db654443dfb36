package linkedin_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/platforms/linkedin"
)

func TestAdapter(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": "m1"}`))
	})
	mux.HandleFunc("GET /shares", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "urn:li:person:m1", r.URL.Query().Get("owners"))
		_, _ = w.Write([]byte(`{"elements": [{"id": "urn:li:share:1", "text": {"text": "Hiring!"}, "created": {"time": 1700000000000}}]}`))
	})
	mux.HandleFunc("GET /socialActions/{urn}/comments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "urn:li:share:1", r.PathValue("urn"))
		_, _ = w.Write([]byte(`{"elements": [{"id": "lc1", "message": {"text": "Interested"}, "actor": {"id": "urn:li:person:x", "name": {"localized": {"en_US": "Ann"}}}, "created": {"time": 1700000001000}}]}`))
	})
	mux.HandleFunc("POST /socialActions/{urn}/comments", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "urn:li:person:m1", body["actor"])
		require.Equal(t, "lc1", body["parentComment"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "lr1"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	adapter := linkedin.New(slog.Default(), linkedin.Config{BaseURL: srv.URL, AccessToken: "token"})
	t.Cleanup(func() { _ = adapter.Close() })

	posts := adapter.ListRecentPosts(t.Context(), 5)
	require.Len(t, posts, 1)
	require.Equal(t, "Hiring!", posts[0].Content)
	require.Equal(t, int64(1700000000000), posts[0].PublishedAt.UnixMilli())

	comments := adapter.ListComments(t.Context(), "urn:li:share:1")
	require.Len(t, comments, 1)
	require.Equal(t, "Ann", comments[0].Author)

	result := adapter.PostReply(t.Context(), core.ReplyTarget{PostExternalID: "urn:li:share:1", CommentExternalID: "lc1"}, "Thanks")
	require.True(t, result.Success)
	require.Equal(t, "lr1", result.ReplyID)

	require.EqualValues(t, 1, meCalls.Load())
}
