package config

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
	Watch     WatchConfig     `yaml:"watch" json:"watch"`
	DevServer DevServerConfig `yaml:"devserver" json:"devserver"`
}

// ServerConfig points the client at the analysis service
type ServerConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`     // service origin
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`       // 0 leaves requests unbounded
	UserAgent string        `yaml:"user_agent" json:"user_agent"` // sent on every request
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	ShowProgress  bool   `yaml:"show_progress" json:"show_progress"`   // upload progress bar
}

// UIConfig configures the interactive terminal UI
type UIConfig struct {
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // ask before deleting history items
	StartDir      string `yaml:"start_dir" json:"start_dir"`           // file picker start directory
}

// WatchConfig configures folder watching
type WatchConfig struct {
	Directory string        `yaml:"directory" json:"directory"`
	Pattern   string        `yaml:"pattern" json:"pattern"`   // glob matched against file names
	Debounce  time.Duration `yaml:"debounce" json:"debounce"` // quiet period before a file is uploaded
}

// DevServerConfig configures the local stand-in service
type DevServerConfig struct {
	Listen        string `yaml:"listen" json:"listen"`
	HistoryLimit  int    `yaml:"history_limit" json:"history_limit"`
	MaxUploadSize int64  `yaml:"max_upload_size" json:"max_upload_size"` // bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:   "http://127.0.0.1:8000",
			Timeout:   0,
			UserAgent: "salesfc",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			ShowProgress:  true,
		},
		UI: UIConfig{
			Theme:         "default",
			ConfirmDelete: true,
			StartDir:      ".",
		},
		Watch: WatchConfig{
			Directory: ".",
			Pattern:   "*.csv",
			Debounce:  500 * time.Millisecond,
		},
		DevServer: DevServerConfig{
			Listen:        "127.0.0.1:8000",
			HistoryLimit:  5,
			MaxUploadSize: 10 << 20, // 10MB
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	if err := c.validateDevServerConfig(); err != nil {
		return err
	}
	return nil
}

// validateServerConfig validates the service endpoint
func (c *Config) validateServerConfig() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server base_url scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server base_url must include a host")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server timeout must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateUIConfig validates UI-related configuration
func (c *Config) validateUIConfig() error {
	if c.UI.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.UI.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.UI.Theme)
		}
	}
	return nil
}

// validateWatchConfig validates folder watching configuration
func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must be non-negative")
	}
	if c.Watch.Pattern != "" {
		if _, err := filepath.Match(c.Watch.Pattern, "sales.csv"); err != nil {
			return fmt.Errorf("invalid watch pattern %q: %w", c.Watch.Pattern, err)
		}
	}
	return nil
}

// validateDevServerConfig validates the local server configuration
func (c *Config) validateDevServerConfig() error {
	if c.DevServer.Listen != "" {
		if _, _, err := net.SplitHostPort(c.DevServer.Listen); err != nil {
			return fmt.Errorf("invalid devserver listen address: %w", err)
		}
	}
	if c.DevServer.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be greater than 0")
	}
	if c.DevServer.MaxUploadSize < 1 {
		return fmt.Errorf("max_upload_size must be greater than 0")
	}
	return nil
}
