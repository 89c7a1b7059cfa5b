package inference

import (
	"errors"
	"net/url"

	"github.com/kilianp07/evplanner/auth"
)

// Config configures the generative inference endpoint.
type Config struct {
	APIKey          string  `json:"api_key" yaml:"api_key"`
	URL             string  `json:"url" yaml:"url"`
	Model           string  `json:"model" yaml:"model"`
	TimeoutSeconds  int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature     float64 `json:"temperature" yaml:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens" yaml:"max_output_tokens"`
	// OAuth authenticates with a bearer token when APIKey is empty.
	OAuth auth.Conf `json:"oauth" yaml:"oauth"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 1024
	}
}

// Validate checks the configuration. Missing credentials are valid and
// disable the client.
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return errors.New("inference.url is invalid")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("inference.temperature must be between 0 and 2")
	}
	if c.OAuth.TokenURL != "" {
		if _, err := url.ParseRequestURI(c.OAuth.TokenURL); err != nil {
			return errors.New("inference.oauth.token_url is invalid")
		}
	}
	return nil
}

// Enabled reports whether a credential is configured.
func (c Config) Enabled() bool { return c.APIKey != "" || c.OAuth.Enabled() }
