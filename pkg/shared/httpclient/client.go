package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/scan-io-git/scanio-flaws/internal/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// InitializeRestyClient initializes and configures a resty client based on the provided configuration.
func InitializeRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger))
	}

	var httpCfg *config.HTTPClient
	if cfg != nil {
		httpCfg = &cfg.HTTPClient
	}
	restyConfig := applyHTTPClientConfig(httpCfg)
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(restyConfig.RetryCount).
		SetRetryWaitTime(restyConfig.RetryWaitTime).
		SetRetryMaxWaitTime(restyConfig.RetryMaxWaitTime).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig).
		AddRetryCondition(retryIdempotentServerErrors)
	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}

	return client
}

// retryIdempotentServerErrors retries 5xx answers to GET requests only.
// A POST that timed out on the gateway may still have created the issue.
func retryIdempotentServerErrors(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil {
		return false
	}
	return r.Request.Method == http.MethodGet && r.StatusCode() >= http.StatusInternalServerError
}

// applyHTTPClientConfig applies the HTTPClient configuration or uses default values.
func applyHTTPClientConfig(httpConfig *config.HTTPClient) config.RestyHTTPClientConfig {
	cfg := config.DefaultRestyConfig()
	if httpConfig == nil {
		return cfg
	}

	cfg.Debug = config.BoolOr(httpConfig.Debug, cfg.Debug)
	cfg.RetryCount = config.SetThen(httpConfig.RetryCount, cfg.RetryCount)
	cfg.RetryWaitTime = config.SetThen(httpConfig.RetryWaitTime, cfg.RetryWaitTime)
	cfg.RetryMaxWaitTime = config.SetThen(httpConfig.RetryMaxWaitTime, cfg.RetryMaxWaitTime)
	cfg.Timeout = config.SetThen(httpConfig.Timeout, cfg.Timeout)
	cfg.TLSClientConfig.InsecureSkipVerify = !config.BoolOr(httpConfig.TLSClientConfig.Verify, true)

	if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != 0 {
		cfg.Proxy = fmt.Sprintf("%s:%d", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
	}
	return cfg
}

// RestyTransport is an http.RoundTripper that executes requests through a resty client,
// so callers built on net/http share its retry, timeout, TLS and proxy settings.
type RestyTransport struct {
	Client *resty.Client
}

// RoundTrip implements http.RoundTripper.
func (t *RestyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := t.Client.R().
		SetContext(req.Context()).
		SetDoNotParseResponse(true)
	if req.Header != nil {
		r.Header = req.Header.Clone()
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}
	raw := resp.RawResponse
	if raw == nil {
		return nil, fmt.Errorf("empty response for %s %s", req.Method, req.URL.Redacted())
	}
	if raw.Body == nil {
		raw.Body = io.NopCloser(bytes.NewReader(nil))
	}
	return raw, nil
}

// NewTokenClient returns an *http.Client that authenticates with token and sends
// every request through the resty client.
func NewTokenClient(ctx context.Context, rc *resty.Client, token string) *http.Client {
	base := &RestyTransport{Client: rc}
	if token == "" {
		return &http.Client{Transport: base}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
	return oauth2.NewClient(ctx, ts)
}
