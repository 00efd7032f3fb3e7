package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that the configuration holds usable values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateLogger(&cfg.Logger); err != nil {
		return fmt.Errorf("YAML global config: logger directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := validateGitHub(&cfg.GitHub); err != nil {
		return fmt.Errorf("YAML global config: github directive is invalid: %w", err)
	}
	if err := validateImporter(&cfg.Importer); err != nil {
		return fmt.Errorf("YAML global config: importer directive is invalid: %w", err)
	}
	return nil
}

func validateLogger(lg *Logger) error {
	switch strings.ToUpper(strings.TrimSpace(lg.Level)) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	default:
		return fmt.Errorf("unknown level %q", lg.Level)
	}
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"retry_wait_time", httpConfig.RetryWaitTime},
		{"retry_max_wait_time", httpConfig.RetryMaxWaitTime},
		{"timeout", httpConfig.Timeout},
	}
	for _, entry := range durations {
		if err := validateDuration(entry.d, entry.name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

func validateGitHub(gh *GitHub) error {
	u, err := url.Parse(gh.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not an absolute URL", gh.APIURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		return fmt.Errorf("api_url %q must have a trailing slash", gh.APIURL)
	}
	if w, err := url.Parse(gh.WebURL); err != nil || w.Scheme == "" || w.Host == "" {
		return fmt.Errorf("web_url %q is not an absolute URL", gh.WebURL)
	}
	if gh.PerPage < 1 || gh.PerPage > 100 {
		return fmt.Errorf("per_page must be between 1 and 100: %d", gh.PerPage)
	}
	return nil
}

func validateImporter(im *Importer) error {
	if im.WaitTime != nil {
		if err := validateDuration(*im.WaitTime, "wait_time", 10*time.Minute); err != nil {
			return err
		}
	}
	if im.FuzzyWindow != nil && *im.FuzzyWindow < 0 {
		return fmt.Errorf("fuzzy_window cannot be negative: %d", *im.FuzzyWindow)
	}
	if im.ProgressEvery < 0 {
		return fmt.Errorf("progress_every cannot be negative: %d", im.ProgressEvery)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %s: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%s duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy.Host == "" && proxy.Port == 0 {
		return nil
	}
	if proxy.Host == "" || proxy.Port == 0 {
		return fmt.Errorf("proxy requires both host and port")
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}
	return validatePort(proxy.Port)
}

// validateHost ensures the proxy host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
