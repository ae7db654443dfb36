// Package linkedin reads member shares and their comments through the LinkedIn v2 API.
package linkedin

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

const DefaultBaseURL = "https://api.linkedin.com/v2"

type Config struct {
	BaseURL     string
	AccessToken string
}

type Adapter struct {
	logger *slog.Logger
	config Config
	client *apiclient.Client

	memberMu sync.Mutex
	memberID string
}

func New(logger *slog.Logger, config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &Adapter{
		logger: logger.With("component", "linkedin.Adapter"),
		config: config,
		client: apiclient.New(core.PlatformLinkedIn, config.BaseURL, map[string]string{
			"Authorization":             "Bearer " + config.AccessToken,
			"X-Restli-Protocol-Version": "2.0.0",
			"Content-Type":              "application/json",
		}),
	}
}

func (a *Adapter) Platform() core.Platform {
	return core.PlatformLinkedIn
}

func (a *Adapter) IsConfigured() bool {
	return a.config.AccessToken != ""
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

// member resolves and caches the id of the authenticated member.
func (a *Adapter) member(ctx context.Context) (string, error) {
	a.memberMu.Lock()
	defer a.memberMu.Unlock()

	if a.memberID != "" {
		return a.memberID, nil
	}

	res, err := a.client.Get(ctx, "/me", nil)
	if err != nil {
		return "", err
	}

	id := apiclient.String(res, "id")
	if id == "" {
		return "", core.ErrNotFound
	}

	a.memberID = id
	return id, nil
}

func (a *Adapter) ListRecentPosts(ctx context.Context, limit int) []core.RawPost {
	if !a.IsConfigured() {
		return nil
	}

	memberID, err := a.member(ctx)
	if err != nil {
		a.logger.Error("Failed to resolve member", "error", err)
		return nil
	}

	res, err := a.client.Get(ctx, "/shares", url.Values{
		"q":              {"owners"},
		"owners":         {"urn:li:person:" + memberID},
		"count":          {strconv.Itoa(limit)},
		"sharesPerOwner": {strconv.Itoa(limit)},
	})
	if err != nil {
		a.logger.Error("Failed to list shares", "error", err)
		return nil
	}

	var posts []core.RawPost
	for _, item := range apiclient.Children(res, "elements") {
		id := apiclient.String(item, "id")

		posts = append(posts, core.RawPost{
			Platform:    core.PlatformLinkedIn,
			ExternalID:  id,
			Content:     apiclient.String(item, "text.text"),
			Author:      "User: " + memberID,
			URL:         "https://www.linkedin.com/feed/update/" + id,
			MediaType:   "text",
			PublishedAt: apiclient.UnixMilli(apiclient.Number(item, "created.time")),
			Metadata: map[string]any{
				"visibility": apiclient.String(item, "visibility.code"),
			},
		})
	}

	return posts
}

func (a *Adapter) ListComments(ctx context.Context, postURN string) []core.RawComment {
	if !a.IsConfigured() {
		return nil
	}

	res, err := a.client.Get(ctx, "/socialActions/"+url.PathEscape(postURN)+"/comments", nil)
	if err != nil {
		a.logger.Error("Failed to list comments", "post_urn", postURN, "error", err)
		return nil
	}

	var comments []core.RawComment
	for _, item := range apiclient.Children(res, "elements") {
		author := apiclient.String(item, "actor.name.localized.en_US")
		if author == "" {
			author = "Unknown"
		}

		comments = append(comments, core.RawComment{
			Platform:         core.PlatformLinkedIn,
			ExternalID:       apiclient.String(item, "id"),
			PostExternalID:   postURN,
			ParentExternalID: apiclient.String(item, "parentComment"),
			Author:           author,
			AuthorID:         apiclient.String(item, "actor.id"),
			Content:          apiclient.String(item, "message.text"),
			PublishedAt:      apiclient.UnixMilli(apiclient.Number(item, "created.time")),
			Metadata: map[string]any{
				"post_urn": postURN,
			},
		})
	}

	return comments
}

// PostReply comments on the post, threaded under the target comment when one is given.
func (a *Adapter) PostReply(ctx context.Context, target core.ReplyTarget, text string) core.PostReplyResult {
	if !a.IsConfigured() {
		return core.PostReplyResult{Error: "LinkedIn not configured"}
	}

	memberID, err := a.member(ctx)
	if err != nil {
		a.logger.Error("Failed to resolve member", "error", err)
		return core.PostReplyResult{Error: err.Error()}
	}

	payload := map[string]any{
		"actor":   "urn:li:person:" + memberID,
		"message": map[string]any{"text": text},
	}
	if target.CommentExternalID != "" {
		payload["parentComment"] = target.CommentExternalID
	}

	res, err := a.client.PostJSON(ctx, "/socialActions/"+url.PathEscape(target.PostExternalID)+"/comments", payload)
	if err != nil {
		a.logger.Error("Failed to reply", "post_urn", target.PostExternalID, "error", err)
		return core.PostReplyResult{Error: err.Error()}
	}

	return core.PostReplyResult{Success: true, ReplyID: apiclient.String(res, "id")}
}
