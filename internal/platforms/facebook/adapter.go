// Package facebook talks to the Graph API on behalf of a page.
package facebook

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type Config struct {
	BaseURL     string
	AccessToken string
	PageID      string
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

	return &Adapter{
		logger: logger.With("component", "facebook.Adapter"),
		config: config,
		client: apiclient.New(core.PlatformFacebook, config.BaseURL, nil),
	}
}

func (a *Adapter) Platform() core.Platform {
	return core.PlatformFacebook
}

func (a *Adapter) IsConfigured() bool {
	return a.config.AccessToken != "" && a.config.PageID != ""
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) ListRecentPosts(ctx context.Context, limit int) []core.RawPost {
	if !a.IsConfigured() {
		return nil
	}

	res, err := a.client.Get(ctx, "/"+a.config.PageID+"/posts", url.Values{
		"access_token": {a.config.AccessToken},
		"limit":        {strconv.Itoa(limit)},
		"fields":       {"id,message,created_time,permalink_url,type,attachments"},
	})
	if err != nil {
		a.logger.Error("Failed to list posts", "error", err)
		return nil
	}

	var posts []core.RawPost
	for _, item := range apiclient.Children(res, "data") {
		mediaType := apiclient.String(item, "type")
		if mediaType == "" {
			mediaType = "text"
		}

		metadata := map[string]any{}
		if attachments := item.Path("attachments").Data(); attachments != nil {
			metadata["attachments"] = attachments
		}

		posts = append(posts, core.RawPost{
			Platform:    core.PlatformFacebook,
			ExternalID:  apiclient.String(item, "id"),
			Content:     apiclient.String(item, "message"),
			Author:      "Page: " + a.config.PageID,
			URL:         apiclient.String(item, "permalink_url"),
			MediaType:   mediaType,
			PublishedAt: apiclient.Time(apiclient.String(item, "created_time")),
			Metadata:    metadata,
		})
	}

	return posts
}

func (a *Adapter) ListComments(ctx context.Context, postID string) []core.RawComment {
	if !a.IsConfigured() {
		return nil
	}

	query := url.Values{
		"access_token": {a.config.AccessToken},
		"fields":       {"id,message,from,created_time,like_count,comment_count,parent"},
		"filter":       {"stream"},
		"order":        {"reverse_chronological"},
	}
	if a.config.MaxComments > 0 {
		query.Set("limit", strconv.Itoa(a.config.MaxComments))
	}

	res, err := a.client.Get(ctx, "/"+postID+"/comments", query)
	if err != nil {
		a.logger.Error("Failed to list comments", "post_id", postID, "error", err)
		return nil
	}

	var comments []core.RawComment
	for _, item := range apiclient.Children(res, "data") {
		comments = append(comments, core.RawComment{
			Platform:         core.PlatformFacebook,
			ExternalID:       apiclient.String(item, "id"),
			PostExternalID:   postID,
			ParentExternalID: apiclient.String(item, "parent.id"),
			Author:           apiclient.String(item, "from.name"),
			AuthorID:         apiclient.String(item, "from.id"),
			Content:          apiclient.String(item, "message"),
			PublishedAt:      apiclient.Time(apiclient.String(item, "created_time")),
			Metadata: map[string]any{
				"post_id":       postID,
				"like_count":    apiclient.Number(item, "like_count"),
				"comment_count": apiclient.Number(item, "comment_count"),
			},
		})
	}

	return comments
}

func (a *Adapter) PostReply(ctx context.Context, target core.ReplyTarget, text string) core.PostReplyResult {
	if !a.IsConfigured() {
		return core.PostReplyResult{Error: "Facebook not configured"}
	}

	res, err := a.client.PostForm(ctx, "/"+target.CommentExternalID+"/comments", map[string]string{
		"access_token": a.config.AccessToken,
		"message":      text,
	})
	if err != nil {
		a.logger.Error("Failed to reply", "comment_id", target.CommentExternalID, "error", err)
		return core.PostReplyResult{Error: err.Error()}
	}

	return core.PostReplyResult{Success: true, ReplyID: apiclient.String(res, "id")}
}
