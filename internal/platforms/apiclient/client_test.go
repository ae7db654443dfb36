package apiclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replyflow/internal/core"
	"replyflow/internal/platforms/apiclient"
)

func TestClient_Get(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": "nope"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": 42, "name": "a"}]}`))
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(core.PlatformFacebook, srv.URL, nil)
	t.Cleanup(func() { _ = client.Close() })

	res, err := client.Get(t.Context(), "/ok", nil)
	require.NoError(t, err)

	items := apiclient.Children(res, "data")
	require.Len(t, items, 1)
	require.Equal(t, "42", apiclient.String(items[0], "id"))
	require.Equal(t, "a", apiclient.String(items[0], "name"))
	require.Empty(t, apiclient.String(items[0], "missing"))

	_, err = client.Get(t.Context(), "/broken", nil)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestTime(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2024, apiclient.Time("2024-03-01T10:00:00Z").Year())
	require.Equal(t, 2024, apiclient.Time("2024-03-01T10:00:00+0000").Year())
	require.WithinDuration(t, time.Now(), apiclient.Time("garbage"), time.Minute)
	require.Equal(t, int64(1700000000000), apiclient.UnixMilli(1700000000000).UnixMilli())
}
