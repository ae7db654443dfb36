// Package platforms selects the configured platform adapters.
package platforms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/platforms/facebook"
	"replyflow/internal/platforms/instagram"
	"replyflow/internal/platforms/linkedin"
	"replyflow/internal/platforms/twitter"
	"replyflow/internal/platforms/youtube"
)

type closableAdapter interface {
	core.Adapter
	Close() error
}

// Registry holds one adapter per platform and exposes only the configured ones.
type Registry struct {
	Logger *slog.Logger
	Config *config.Config

	all []closableAdapter
}

func (r *Registry) Init(_ context.Context) error {
	r.Logger = r.Logger.With("component", "platforms.Registry")

	creds := r.Config.Credentials

	r.all = []closableAdapter{
		youtube.New(r.Logger, youtube.Config{
			APIKey:      creds.YouTubeAPIKey,
			ChannelID:   creds.YouTubeChannelID,
			OAuthToken:  creds.YouTubeOAuthToken,
			MaxComments: r.Config.MaxCommentsPerFetch,
		}),
		facebook.New(r.Logger, facebook.Config{
			AccessToken: creds.FacebookAccessToken,
			PageID:      creds.FacebookPageID,
			MaxComments: r.Config.MaxCommentsPerFetch,
		}),
		instagram.New(r.Logger, instagram.Config{
			AccessToken: creds.InstagramAccessToken,
			AccountID:   creds.InstagramBusinessAccountID,
		}),
		linkedin.New(r.Logger, linkedin.Config{
			AccessToken: creds.LinkedInAccessToken,
		}),
		twitter.New(r.Logger, twitter.Config{
			BearerToken: creds.TwitterBearerToken,
			Username:    creds.TwitterUsername,
		}),
	}

	configured := lo.Map(r.Adapters(), func(a core.Adapter, _ int) core.Platform {
		return a.Platform()
	})
	if len(configured) == 0 {
		r.Logger.Warn("No platform is configured, fetch cycles will be empty")
	} else {
		r.Logger.Info("Platforms configured", "platforms", configured)
	}

	return nil
}

func (r *Registry) Shutdown(_ context.Context) error {
	var errs []error
	for _, adapter := range r.all {
		errs = append(errs, adapter.Close())
	}
	return errors.Join(errs...)
}

// Adapters returns the configured adapters in polling order.
func (r *Registry) Adapters() []core.Adapter {
	var adapters []core.Adapter
	for _, adapter := range r.all {
		if adapter.IsConfigured() {
			adapters = append(adapters, adapter)
		}
	}
	return adapters
}

func (r *Registry) Adapter(platform core.Platform) (core.Adapter, bool) {
	adapter, ok := lo.Find(r.all, func(a closableAdapter) bool {
		return a.Platform() == platform
	})
	if !ok || !adapter.IsConfigured() {
		return nil, false
	}
	return adapter, true
}
