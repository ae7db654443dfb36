package youtube_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/platforms/youtube"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /channels", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"items": [{"contentDetails": {"relatedPlaylists": {"uploads": "UU1"}}}]}`))
	})
	mux.HandleFunc("GET /playlistItems", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "UU1", r.URL.Query().Get("playlistId"))
		_, _ = w.Write([]byte(`{"items": [{"snippet": {
			"resourceId": {"videoId": "vid1"},
			"title": "Morning routine",
			"description": "How I start my day",
			"channelTitle": "Creator",
			"publishedAt": "2024-05-01T08:00:00Z",
			"thumbnails": {"default": {"url": "https://img/1.jpg"}}
		}}]}`))
	})
	mux.HandleFunc("GET /commentThreads", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"nextPageToken": "p2", "items": [{
				"id": "t1",
				"snippet": {"topLevelComment": {"id": "t1", "snippet": {
					"textDisplay": "Great video", "authorDisplayName": "Ann",
					"authorChannelId": {"value": "UCann"}, "publishedAt": "2024-05-01T09:00:00Z", "likeCount": 3}}},
				"replies": {"comments": [{"id": "t1.r1", "snippet": {
					"textDisplay": "Agreed", "authorDisplayName": "Bob", "publishedAt": "2024-05-01T09:05:00Z"}}]}
			}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"items": [{"id": "t2", "snippet": {"topLevelComment": {"id": "t2", "snippet": {
			"textDisplay": "How much?", "authorDisplayName": "Cy", "publishedAt": "2024-05-01T10:00:00Z"}}}}]}`))
	})
	mux.HandleFunc("POST /comments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer oauth", r.Header.Get("Authorization"))

		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "t1", body["snippet"]["parentId"])

		_, _ = w.Write([]byte(`{"id": "reply-1"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAdapter(t *testing.T, oauth string) *youtube.Adapter {
	t.Helper()

	srv := newServer(t)
	adapter := youtube.New(slog.Default(), youtube.Config{
		BaseURL:     srv.URL,
		APIKey:      "key",
		ChannelID:   "UC1",
		OAuthToken:  oauth,
		MaxComments: 50,
	})
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestAdapter_ListRecentPosts(t *testing.T) {
	t.Parallel()

	posts := newAdapter(t, "").ListRecentPosts(t.Context(), 10)
	require.Len(t, posts, 1)
	require.Equal(t, "vid1", posts[0].ExternalID)
	require.Equal(t, "How I start my day", posts[0].Content)
	require.Equal(t, "https://youtube.com/watch?v=vid1", posts[0].URL)
	require.Equal(t, "video", posts[0].MediaType)
}

func TestAdapter_ListComments(t *testing.T) {
	t.Parallel()

	comments := newAdapter(t, "").ListComments(t.Context(), "vid1")
	require.Len(t, comments, 3)

	require.Equal(t, "t1", comments[0].ExternalID)
	require.Equal(t, "UCann", comments[0].AuthorID)
	require.Empty(t, comments[0].ParentExternalID)

	require.Equal(t, "t1.r1", comments[1].ExternalID)
	require.Equal(t, "t1", comments[1].ParentExternalID)

	require.Equal(t, "t2", comments[2].ExternalID)
	require.Equal(t, "vid1", comments[2].PostExternalID)
}

func TestAdapter_PostReply(t *testing.T) {
	t.Parallel()

	t.Run("without oauth token", func(t *testing.T) {
		t.Parallel()

		result := newAdapter(t, "").PostReply(t.Context(), core.ReplyTarget{CommentExternalID: "t1"}, "thanks")
		require.False(t, result.Success)
		require.Equal(t, youtube.ErrOAuthRequired.Error(), result.Error)
	})

	t.Run("with oauth token", func(t *testing.T) {
		t.Parallel()

		result := newAdapter(t, "oauth").PostReply(t.Context(), core.ReplyTarget{CommentExternalID: "t1"}, "thanks")
		require.True(t, result.Success)
		require.Equal(t, "reply-1", result.ReplyID)
	})
}

func TestAdapter_NotConfigured(t *testing.T) {
	t.Parallel()

	adapter := youtube.New(slog.Default(), youtube.Config{APIKey: "key"})
	require.False(t, adapter.IsConfigured())
	require.Empty(t, adapter.ListRecentPosts(t.Context(), 10))
}
