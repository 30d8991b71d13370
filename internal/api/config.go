package api

import (
	"net/url"
	"time"
)

// DefaultBaseURL is the origin the analysis service listens on in development
const DefaultBaseURL = "http://127.0.0.1:8000"

// Config holds transport configuration
type Config struct {
	// BaseURL is the service origin, e.g. http://127.0.0.1:8000
	BaseURL string `json:"base_url"`

	// Timeout bounds each HTTP request. Zero leaves requests unbounded.
	Timeout time.Duration `json:"timeout"`

	// UserAgent is sent with every request when non-empty
	UserAgent string `json:"user_agent"`
}

// DefaultConfig returns a default transport configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "salesfc",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return NewError(ErrKindValidation, "config", "base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewErrorWithCause(ErrKindValidation, "config", "invalid base URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewError(ErrKindValidation, "config", "base URL must use http or https: "+c.BaseURL)
	}
	if u.Host == "" {
		return NewError(ErrKindValidation, "config", "base URL has no host: "+c.BaseURL)
	}

	if c.Timeout < 0 {
		return NewError(ErrKindValidation, "config", "timeout must be non-negative")
	}

	return nil
}
