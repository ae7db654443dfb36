// Package restclient builds resty clients with bounded timeouts.
package restclient

import (
	"time"

	"resty.dev/v3"
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string

	TransportSettings *resty.TransportSettings

	ResponseMiddlewares []resty.ResponseMiddleware
	RequestMiddlewares  []resty.RequestMiddleware
}

var DefaultConfig = &ClientConfig{
	Timeout: 30 * time.Second,
	TransportSettings: &resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		DialerKeepAlive:       30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	},
}

func New(config *ClientConfig) *resty.Client {
	settings := config.TransportSettings
	if settings == nil {
		settings = DefaultConfig.TransportSettings
	}

	client := resty.NewWithTransportSettings(settings)

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultConfig.Timeout
	}
	client.SetTimeout(timeout)

	if config.BaseURL != "" {
		client.SetBaseURL(config.BaseURL)
	}

	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	for _, m := range config.RequestMiddlewares {
		client.AddRequestMiddleware(m)
	}
	for _, m := range config.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	return client
}
