package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is read when no explicit config path is given.
const DefaultConfigFile = "config.yml"

// Config is the root of the YAML configuration file.
type Config struct {
	Logger      Logger      `yaml:"logger"`
	HTTPClient  HTTPClient  `yaml:"http_client"`
	GitHub      GitHub      `yaml:"github"`
	Importer    Importer    `yaml:"importer"`
	Remediation Remediation `yaml:"remediation"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSON            bool   `yaml:"json"`
	IncludeLocation bool   `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GitHub holds tracker endpoints. APIURL must end with a slash.
type GitHub struct {
	APIURL  string `yaml:"api_url"`
	WebURL  string `yaml:"web_url"`
	PerPage int    `yaml:"per_page"`
}

// Importer tunes the reconciliation run.
type Importer struct {
	WaitTime         *time.Duration `yaml:"wait_time"`
	FuzzyWindow      *int           `yaml:"fuzzy_window"`
	ProgressEvery    int            `yaml:"progress_every"`
	ResolvedStatuses []string       `yaml:"resolved_statuses"`
}

// Remediation configures the comment attached to every created issue.
// The comment is posted unless Disabled is set; an empty Mailto leaves the recipient blank.
type Remediation struct {
	Disabled bool   `yaml:"disabled"`
	Mailto   string `yaml:"mailto"`
	Template string `yaml:"template"`
}

// ValidateConfigPath checks that path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
// An empty file leaves data untouched.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Load reads the config file and fills unset values with defaults.
// When explicit is false a missing file yields the default configuration.
func Load(configPath string, explicit bool) (*Config, error) {
	cfg := &Config{}

	if err := LoadYAML(configPath, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	ApplyDefaults(cfg)
	return cfg, nil
}
