// Package instagram reads media and comments of an Instagram business account.
package instagram

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type Config struct {
	BaseURL     string
	AccessToken string
	AccountID   string
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
		logger: logger.With("component", "instagram.Adapter"),
		config: config,
		client: apiclient.New(core.PlatformInstagram, config.BaseURL, nil),
	}
}

func (a *Adapter) Platform() core.Platform {
	return core.PlatformInstagram
}

func (a *Adapter) IsConfigured() bool {
	return a.config.AccessToken != "" && a.config.AccountID != ""
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) ListRecentPosts(ctx context.Context, limit int) []core.RawPost {
	if !a.IsConfigured() {
		return nil
	}

	res, err := a.client.Get(ctx, "/"+a.config.AccountID+"/media", url.Values{
		"access_token": {a.config.AccessToken},
		"limit":        {strconv.Itoa(limit)},
		"fields":       {"id,caption,media_type,media_url,permalink,timestamp,like_count,comments_count"},
	})
	if err != nil {
		a.logger.Error("Failed to list media", "error", err)
		return nil
	}

	var posts []core.RawPost
	for _, item := range apiclient.Children(res, "data") {
		mediaType := strings.ToLower(apiclient.String(item, "media_type"))
		if mediaType == "" {
			mediaType = "image"
		}

		posts = append(posts, core.RawPost{
			Platform:    core.PlatformInstagram,
			ExternalID:  apiclient.String(item, "id"),
			Content:     apiclient.String(item, "caption"),
			Author:      "Account: " + a.config.AccountID,
			URL:         apiclient.String(item, "permalink"),
			MediaType:   mediaType,
			PublishedAt: apiclient.Time(apiclient.String(item, "timestamp")),
			Metadata: map[string]any{
				"media_url":      apiclient.String(item, "media_url"),
				"like_count":     apiclient.Number(item, "like_count"),
				"comments_count": apiclient.Number(item, "comments_count"),
			},
		})
	}

	return posts
}

func (a *Adapter) ListComments(ctx context.Context, mediaID string) []core.RawComment {
	if !a.IsConfigured() {
		return nil
	}

	res, err := a.client.Get(ctx, "/"+mediaID+"/comments", url.Values{
		"access_token": {a.config.AccessToken},
		"fields":       {"id,text,username,timestamp,like_count,replies{id,text,username,timestamp}"},
	})
	if err != nil {
		a.logger.Error("Failed to list comments", "media_id", mediaID, "error", err)
		return nil
	}

	var comments []core.RawComment
	for _, item := range apiclient.Children(res, "data") {
		comment := parseComment(item, mediaID, "")
		comment.Metadata["like_count"] = apiclient.Number(item, "like_count")
		comments = append(comments, comment)

		parentID := apiclient.String(item, "id")
		for _, reply := range apiclient.Children(item, "replies.data") {
			comment := parseComment(reply, mediaID, parentID)
			comment.Metadata["is_reply"] = true
			comments = append(comments, comment)
		}
	}

	return comments
}

// Instagram identifies commenters by username only.
func parseComment(item *gabs.Container, mediaID, parentID string) core.RawComment {
	username := apiclient.String(item, "username")
	author := username
	if author == "" {
		author = "Unknown"
	}

	return core.RawComment{
		Platform:         core.PlatformInstagram,
		ExternalID:       apiclient.String(item, "id"),
		PostExternalID:   mediaID,
		ParentExternalID: parentID,
		Author:           author,
		AuthorID:         username,
		Content:          apiclient.String(item, "text"),
		PublishedAt:      apiclient.Time(apiclient.String(item, "timestamp")),
		Metadata: map[string]any{
			"media_id": mediaID,
		},
	}
}

func (a *Adapter) PostReply(ctx context.Context, target core.ReplyTarget, text string) core.PostReplyResult {
	if !a.IsConfigured() {
		return core.PostReplyResult{Error: "Instagram not configured"}
	}

	res, err := a.client.PostForm(ctx, "/"+target.CommentExternalID+"/replies", map[string]string{
		"access_token": a.config.AccessToken,
		"message":      text,
	})
	if err != nil {
		a.logger.Error("Failed to reply", "comment_id", target.CommentExternalID, "error", err)
		return core.PostReplyResult{Error: err.Error()}
	}

	return core.PostReplyResult{Success: true, ReplyID: apiclient.String(res, "id")}
}
