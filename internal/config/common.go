package config

import (
	"crypto/tls"
	"reflect"
	"time"
)

const (
	DefaultGitHubAPIURL    = "https://api.github.com/"
	DefaultGitHubWebURL    = "https://github.com"
	DefaultPerPage         = 30
	DefaultWaitTime        = 2 * time.Second
	DefaultFuzzyWindow     = 10
	DefaultProgressEvery   = 25
	DefaultResolvedStatus  = "APPROVED"
	DefaultRemediationText = "Need help remediating [CWE-{{ .CWE }}]({{ cwelink .CWE }})? [Request remediation guidance](mailto:{{ .Mailto }}?subject={{ mailtoescape .Subject }}&body={{ mailtoescape .Body }})"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int           // Number of retries for failed requests
	RetryWaitTime    time.Duration // Wait time between retries
	RetryMaxWaitTime time.Duration // Maximum wait time for retries
	Timeout          time.Duration // Timeout for requests
	TLSClientConfig  *tls.Config   // TLS configuration
	Proxy            string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       5,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
	}
}

// ApplyDefaults fills zero values of the non-HTTP sections.
// HTTP settings are resolved lazily by the HTTP client factory.
func ApplyDefaults(cfg *Config) {
	cfg.GitHub.APIURL = SetThen(cfg.GitHub.APIURL, DefaultGitHubAPIURL)
	cfg.GitHub.WebURL = SetThen(cfg.GitHub.WebURL, DefaultGitHubWebURL)
	cfg.GitHub.PerPage = SetThen(cfg.GitHub.PerPage, DefaultPerPage)

	if cfg.Importer.WaitTime == nil {
		d := DefaultWaitTime
		cfg.Importer.WaitTime = &d
	}
	if cfg.Importer.FuzzyWindow == nil {
		w := DefaultFuzzyWindow
		cfg.Importer.FuzzyWindow = &w
	}
	cfg.Importer.ProgressEvery = SetThen(cfg.Importer.ProgressEvery, DefaultProgressEvery)
	if len(cfg.Importer.ResolvedStatuses) == 0 {
		cfg.Importer.ResolvedStatuses = []string{DefaultResolvedStatus}
	}

	cfg.Remediation.Template = SetThen(cfg.Remediation.Template, DefaultRemediationText)
}

// SetThen returns value when it is set, otherwise defaultValue.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// BoolOr dereferences an optional bool.
func BoolOr(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}
