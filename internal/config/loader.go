package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.salesfc.yaml",               // Project-specific config (highest priority)
	"~/.config/salesfc/config.yaml", // User config
	"/etc/salesfc/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.salesfc.yaml
// 4. ~/.config/salesfc/config.yaml
// 5. /etc/salesfc/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Decode over a copy so keys absent from the file keep their current values
	fileConfig := *config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Server Config
		"SALESFC_SERVER_BASE_URL":   func(v string) error { config.Server.BaseURL = v; return nil },
		"SALESFC_SERVER_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Server.Timeout) },
		"SALESFC_SERVER_USER_AGENT": func(v string) error { config.Server.UserAgent = v; return nil },

		// Output Config
		"SALESFC_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"SALESFC_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"SALESFC_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"SALESFC_OUTPUT_SHOW_PROGRESS":  func(v string) error { return parseBool(v, &config.Output.ShowProgress) },

		// UI Config
		"SALESFC_UI_THEME":          func(v string) error { config.UI.Theme = v; return nil },
		"SALESFC_UI_CONFIRM_DELETE": func(v string) error { return parseBool(v, &config.UI.ConfirmDelete) },
		"SALESFC_UI_START_DIR":      func(v string) error { config.UI.StartDir = v; return nil },

		// Watch Config
		"SALESFC_WATCH_DIRECTORY": func(v string) error { config.Watch.Directory = v; return nil },
		"SALESFC_WATCH_PATTERN":   func(v string) error { config.Watch.Pattern = v; return nil },
		"SALESFC_WATCH_DEBOUNCE":  func(v string) error { return parseDuration(v, &config.Watch.Debounce) },

		// Dev Server Config
		"SALESFC_DEVSERVER_LISTEN":          func(v string) error { config.DevServer.Listen = v; return nil },
		"SALESFC_DEVSERVER_HISTORY_LIMIT":   func(v string) error { return parseInt(v, &config.DevServer.HistoryLimit) },
		"SALESFC_DEVSERVER_MAX_UPLOAD_SIZE": func(v string) error { return parseInt64(v, &config.DevServer.MaxUploadSize) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ExpandPath expands a leading ~ in user-supplied paths
func ExpandPath(path string) string {
	return expandPath(path)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero strings and durations overwrite; booleans are copied as-is
// since src starts from dst.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeServerConfig(&dst.Server, &src.Server)
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeUIConfig(&dst.UI, &src.UI)
	mergeWatchConfig(&dst.Watch, &src.Watch)
	mergeDevServerConfig(&dst.DevServer, &src.DevServer)
}

// mergeServerConfig merges server configuration
func mergeServerConfig(dst, src *ServerConfig) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	dst.Verbose = src.Verbose
	dst.ShowProgress = src.ShowProgress
}

// mergeUIConfig merges UI configuration
func mergeUIConfig(dst, src *UIConfig) {
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.StartDir != "" {
		dst.StartDir = src.StartDir
	}
	dst.ConfirmDelete = src.ConfirmDelete
}

// mergeWatchConfig merges watch configuration
func mergeWatchConfig(dst, src *WatchConfig) {
	if src.Directory != "" {
		dst.Directory = src.Directory
	}
	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}
	if src.Debounce != 0 {
		dst.Debounce = src.Debounce
	}
}

// mergeDevServerConfig merges dev server configuration
func mergeDevServerConfig(dst, src *DevServerConfig) {
	if src.Listen != "" {
		dst.Listen = src.Listen
	}
	if src.HistoryLimit != 0 {
		dst.HistoryLimit = src.HistoryLimit
	}
	if src.MaxUploadSize != 0 {
		dst.MaxUploadSize = src.MaxUploadSize
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
