// Package twitter reads tweets and conversation replies with an app bearer token. Posting is
// not available with app-only access.
package twitter

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

const (
	DefaultBaseURL = "https://api.twitter.com/2"

	minResults = 5
	maxResults = 100
)

var ErrElevatedAccess = errors.New("twitter posting requires elevated API access")

type Config struct {
	BaseURL     string
	BearerToken string
	Username    string
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
		logger: logger.With("component", "twitter.Adapter"),
		config: config,
		client: apiclient.New(core.PlatformTwitter, config.BaseURL, map[string]string{
			"Authorization": "Bearer " + config.BearerToken,
		}),
	}
}

func (a *Adapter) Platform() core.Platform {
	return core.PlatformTwitter
}

func (a *Adapter) IsConfigured() bool {
	return a.config.BearerToken != "" && a.config.Username != ""
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) ListRecentPosts(ctx context.Context, limit int) []core.RawPost {
	if !a.IsConfigured() {
		return nil
	}

	user, err := a.client.Get(ctx, "/users/by/username/"+url.PathEscape(a.config.Username), nil)
	if err != nil {
		a.logger.Error("Failed to resolve user", "username", a.config.Username, "error", err)
		return nil
	}

	userID := apiclient.String(user, "data.id")
	if userID == "" {
		a.logger.Error("User not found", "username", a.config.Username)
		return nil
	}

	res, err := a.client.Get(ctx, "/users/"+userID+"/tweets", url.Values{
		"max_results":  {strconv.Itoa(min(max(limit, minResults), maxResults))},
		"tweet.fields": {"created_at,public_metrics,conversation_id,referenced_tweets"},
		"exclude":      {"retweets,replies"},
	})
	if err != nil {
		a.logger.Error("Failed to list tweets", "error", err)
		return nil
	}

	var posts []core.RawPost
	for _, tweet := range apiclient.Children(res, "data") {
		id := apiclient.String(tweet, "id")

		posts = append(posts, core.RawPost{
			Platform:    core.PlatformTwitter,
			ExternalID:  id,
			Content:     apiclient.String(tweet, "text"),
			Author:      a.config.Username,
			URL:         "https://twitter.com/" + a.config.Username + "/status/" + id,
			MediaType:   "text",
			PublishedAt: apiclient.Time(apiclient.String(tweet, "created_at")),
			Metadata: map[string]any{
				"metrics":         tweet.Path("public_metrics").Data(),
				"conversation_id": apiclient.String(tweet, "conversation_id"),
			},
		})
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

// ListComments returns the replies in the conversation started by the tweet.
func (a *Adapter) ListComments(ctx context.Context, tweetID string) []core.RawComment {
	if !a.IsConfigured() {
		return nil
	}

	res, err := a.client.Get(ctx, "/tweets/search/recent", url.Values{
		"query":        {"conversation_id:" + tweetID},
		"tweet.fields": {"created_at,author_id,in_reply_to_user_id,referenced_tweets"},
		"user.fields":  {"username"},
		"expansions":   {"author_id"},
		"max_results":  {strconv.Itoa(maxResults)},
	})
	if err != nil {
		a.logger.Error("Failed to search replies", "tweet_id", tweetID, "error", err)
		return nil
	}

	usernames := map[string]string{}
	for _, user := range apiclient.Children(res, "includes.users") {
		usernames[apiclient.String(user, "id")] = apiclient.String(user, "username")
	}

	var comments []core.RawComment
	for _, tweet := range apiclient.Children(res, "data") {
		id := apiclient.String(tweet, "id")
		if id == tweetID {
			continue
		}

		authorID := apiclient.String(tweet, "author_id")
		author, ok := usernames[authorID]
		if !ok {
			author = "Unknown"
		}

		comments = append(comments, core.RawComment{
			Platform:         core.PlatformTwitter,
			ExternalID:       id,
			PostExternalID:   tweetID,
			ParentExternalID: tweetID,
			Author:           author,
			AuthorID:         authorID,
			Content:          apiclient.String(tweet, "text"),
			PublishedAt:      apiclient.Time(apiclient.String(tweet, "created_at")),
			Metadata: map[string]any{
				"original_tweet_id": tweetID,
				"is_reply":          true,
			},
		})
	}

	return comments
}

func (a *Adapter) PostReply(_ context.Context, _ core.ReplyTarget, _ string) core.PostReplyResult {
	if !a.IsConfigured() {
		return core.PostReplyResult{Error: "Twitter not configured"}
	}

	a.logger.Warn("Twitter replies need OAuth 1.0a user context")
	return core.PostReplyResult{Error: ErrElevatedAccess.Error()}
}
