// Package apiclient is the HTTP plumbing shared by the platform adapters.
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Jeffail/gabs"
	"resty.dev/v3"

	"replyflow/internal/core"
	"replyflow/internal/metrics"
	"replyflow/pkg/restclient"
)

// APIError is a non 2xx answer of a platform API.
type APIError struct {
	Platform core.Platform
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Platform, e.Status, e.Body)
}

type Client struct {
	platform core.Platform
	client   *resty.Client
}

func New(platform core.Platform, baseURL string, headers map[string]string) *Client {
	return &Client{
		platform: platform,
		client: restclient.New(&restclient.ClientConfig{
			BaseURL:             baseURL,
			Headers:             headers,
			ResponseMiddlewares: []resty.ResponseMiddleware{metrics.LatencyMiddleware(string(platform))},
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) R(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*gabs.Container, error) {
	return c.Do(c.R(ctx).SetQueryParamsFromValues(query), http.MethodGet, path)
}

// PostForm sends form encoded data, the way the Graph API expects it.
func (c *Client) PostForm(ctx context.Context, path string, form map[string]string) (*gabs.Container, error) {
	return c.Do(c.R(ctx).SetFormData(form), http.MethodPost, path)
}

func (c *Client) PostJSON(ctx context.Context, path string, body any) (*gabs.Container, error) {
	return c.Do(c.R(ctx).SetBody(body), http.MethodPost, path)
}

func (c *Client) Do(req *resty.Request, method, path string) (*gabs.Container, error) {
	res, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	if res.IsError() {
		return nil, &APIError{Platform: c.platform, Status: res.StatusCode(), Body: res.String()}
	}

	body := res.String()
	if body == "" {
		return gabs.New(), nil
	}
	return gabs.ParseJSON([]byte(body))
}

func String(c *gabs.Container, path string) string {
	switch v := c.Path(path).Data().(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func Number(c *gabs.Container, path string) float64 {
	v, _ := c.Path(path).Data().(float64)
	return v
}

func Children(c *gabs.Container, path string) []*gabs.Container {
	children, err := c.Path(path).Children()
	if err != nil {
		return nil
	}
	return children
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z",
}

// Time parses the timestamp formats used by the platforms. Unparseable values fall back to
// the current time.
func Time(value string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}

// UnixMilli converts a millisecond epoch, as used by LinkedIn.
func UnixMilli(ms float64) time.Time {
	if ms == 0 {
		return time.Now()
	}
	return time.UnixMilli(int64(ms))
}
