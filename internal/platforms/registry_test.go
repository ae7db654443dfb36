package platforms_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"replyflow/internal/config"
	"replyflow/internal/core"
	"replyflow/internal/platforms"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := &platforms.Registry{
		Logger: slog.Default(),
		Config: &config.Config{
			MaxCommentsPerFetch: 50,
			Credentials: config.Credentials{
				FacebookAccessToken: "token",
				FacebookPageID:      "page",
				TwitterBearerToken:  "bearer",
				YouTubeAPIKey:       "key-without-channel",
			},
		},
	}
	require.NoError(t, registry.Init(t.Context()))
	t.Cleanup(func() { _ = registry.Shutdown(t.Context()) })

	var configured []core.Platform
	for _, adapter := range registry.Adapters() {
		configured = append(configured, adapter.Platform())
	}
	require.Equal(t, []core.Platform{core.PlatformFacebook}, configured)

	adapter, ok := registry.Adapter(core.PlatformFacebook)
	require.True(t, ok)
	require.Equal(t, core.PlatformFacebook, adapter.Platform())

	_, ok = registry.Adapter(core.PlatformTwitter)
	require.False(t, ok)
}
