// Package youtube reads channel uploads and comment threads through the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Jeffail/gabs"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	maxPageSize = 100
)

var ErrOAuthRequired = errors.New("replying on YouTube requires YOUTUBE_OAUTH_TOKEN")

type Config struct {
	BaseURL     string
	APIKey      string
	ChannelID   string
	OAuthToken  string
	MaxComments int
}

type Adapter struct {
	logger *slog.Logger
	config Config
	client *apiclient.Client
}

func New(logger *slog.Logger, config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxComments <= 0 {
		config.MaxComments = maxPageSize
	}

	return &Adapter{
		logger: logger.With("component", "youtube.Adapter"),
		config: config,
		client: apiclient.New(core.PlatformYouTube, config.BaseURL, nil),
	}
}

func (a *Adapter) Platform() core.Platform {
	return core.PlatformYouTube
}

func (a *Adapter) IsConfigured() bool {
	return a.config.APIKey != "" && a.config.ChannelID != ""
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) query(values url.Values) url.Values {
	values.Set("key", a.config.APIKey)
	return values
}

func (a *Adapter) ListRecentPosts(ctx context.Context, limit int) []core.RawPost {
	if !a.IsConfigured() {
		return nil
	}

	uploads, err := a.uploadsPlaylist(ctx)
	if err != nil {
		a.logger.Error("Failed to resolve uploads playlist", "channel_id", a.config.ChannelID, "error", err)
		return nil
	}

	res, err := a.client.Get(ctx, "/playlistItems", a.query(url.Values{
		"part":       {"snippet"},
		"playlistId": {uploads},
		"maxResults": {strconv.Itoa(min(limit, maxPageSize))},
	}))
	if err != nil {
		a.logger.Error("Failed to list videos", "error", err)
		return nil
	}

	var posts []core.RawPost
	for _, item := range apiclient.Children(res, "items") {
		videoID := apiclient.String(item, "snippet.resourceId.videoId")
		if videoID == "" {
			continue
		}

		posts = append(posts, core.RawPost{
			Platform:    core.PlatformYouTube,
			ExternalID:  videoID,
			Title:       apiclient.String(item, "snippet.title"),
			Content:     apiclient.String(item, "snippet.description"),
			Author:      apiclient.String(item, "snippet.channelTitle"),
			URL:         "https://youtube.com/watch?v=" + videoID,
			MediaType:   "video",
			PublishedAt: apiclient.Time(apiclient.String(item, "snippet.publishedAt")),
			Metadata: map[string]any{
				"title":      apiclient.String(item, "snippet.title"),
				"thumbnail":  apiclient.String(item, "snippet.thumbnails.default.url"),
				"channel_id": a.config.ChannelID,
			},
		})
	}

	a.logger.Debug("Retrieved videos", "count", len(posts))
	return posts
}

func (a *Adapter) uploadsPlaylist(ctx context.Context) (string, error) {
	res, err := a.client.Get(ctx, "/channels", a.query(url.Values{
		"part": {"contentDetails"},
		"id":   {a.config.ChannelID},
	}))
	if err != nil {
		return "", err
	}

	items := apiclient.Children(res, "items")
	if len(items) == 0 {
		return "", core.ErrNotFound
	}

	playlist := apiclient.String(items[0], "contentDetails.relatedPlaylists.uploads")
	if playlist == "" {
		return "", core.ErrNotFound
	}
	return playlist, nil
}

// ListComments pages through comment threads, newest first, including inline replies.
func (a *Adapter) ListComments(ctx context.Context, videoID string) []core.RawComment {
	if !a.IsConfigured() {
		return nil
	}

	var comments []core.RawComment
	pageToken := ""

	for len(comments) < a.config.MaxComments {
		query := url.Values{
			"part":       {"snippet,replies"},
			"videoId":    {videoID},
			"maxResults": {strconv.Itoa(min(maxPageSize, a.config.MaxComments-len(comments)))},
			"order":      {"time"},
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		res, err := a.client.Get(ctx, "/commentThreads", a.query(query))
		if err != nil {
			var apiErr *apiclient.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
				a.logger.Warn("Comments are disabled", "video_id", videoID)
			} else {
				a.logger.Error("Failed to list comments", "video_id", videoID, "error", err)
			}
			break
		}

		for _, thread := range apiclient.Children(res, "items") {
			comments = append(comments, parseComment(thread.Path("snippet.topLevelComment"), videoID, ""))

			threadID := apiclient.String(thread, "id")
			for _, reply := range apiclient.Children(thread, "replies.comments") {
				comments = append(comments, parseComment(reply, videoID, threadID))
			}
		}

		pageToken = apiclient.String(res, "nextPageToken")
		if pageToken == "" {
			break
		}
	}

	if len(comments) > a.config.MaxComments {
		comments = comments[:a.config.MaxComments]
	}
	return comments
}

func parseComment(comment *gabs.Container, videoID, parentID string) core.RawComment {
	canReply, ok := comment.Path("snippet.canReply").Data().(bool)
	if !ok {
		canReply = true
	}

	return core.RawComment{
		Platform:         core.PlatformYouTube,
		ExternalID:       apiclient.String(comment, "id"),
		PostExternalID:   videoID,
		ParentExternalID: parentID,
		Author:           apiclient.String(comment, "snippet.authorDisplayName"),
		AuthorID:         apiclient.String(comment, "snippet.authorChannelId.value"),
		Content:          apiclient.String(comment, "snippet.textDisplay"),
		PublishedAt:      apiclient.Time(apiclient.String(comment, "snippet.publishedAt")),
		Metadata: map[string]any{
			"video_id":           videoID,
			"like_count":         apiclient.Number(comment, "snippet.likeCount"),
			"can_reply":          canReply,
			"author_channel_url": apiclient.String(comment, "snippet.authorChannelUrl"),
		},
	}
}

func (a *Adapter) PostReply(ctx context.Context, target core.ReplyTarget, text string) core.PostReplyResult {
	if !a.IsConfigured() {
		return core.PostReplyResult{Error: "YouTube not configured"}
	}
	if a.config.OAuthToken == "" {
		return core.PostReplyResult{Error: ErrOAuthRequired.Error()}
	}

	req := a.client.R(ctx).
		SetAuthToken(a.config.OAuthToken).
		SetQueryParam("part", "snippet").
		SetBody(map[string]any{
			"snippet": map[string]any{
				"parentId":     target.CommentExternalID,
				"textOriginal": text,
			},
		})

	res, err := a.client.Do(req, http.MethodPost, "/comments")
	if err != nil {
		a.logger.Error("Failed to reply", "comment_id", target.CommentExternalID, "error", err)
		return core.PostReplyResult{Error: err.Error()}
	}

	return core.PostReplyResult{Success: true, ReplyID: apiclient.String(res, "id")}
}
