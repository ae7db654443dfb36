package metrics

import (
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

var (
	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "replyflow_external_request_latency",
			Help:    "Histogram of external API request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"service", "method", "path", "status_code"},
	)
)

// LatencyMiddleware records the latency of every response received by a resty client.
func LatencyMiddleware(service string) resty.ResponseMiddleware {
	return func(_ *resty.Client, response *resty.Response) error {
		reqURL, err := url.Parse(response.Request.URL)
		if err != nil {
			return err
		}

		apiLatency.WithLabelValues(
			service,
			response.Request.Method,
			reqURL.Path,
			strconv.Itoa(response.StatusCode()),
		).Observe(response.Duration().Seconds())

		return nil
	}
}
