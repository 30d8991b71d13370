package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	loader := &Loader{configPaths: []string{filepath.Join(t.TempDir(), "absent.yaml")}}

	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Server.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default base URL, got %s", cfg.Server.BaseURL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
server:
  base_url: "https://sales.example.com"
  timeout: 45s
output:
  default_format: "json"
  verbose: true
watch:
  debounce: 2s
devserver:
  history_limit: 10
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.Server.BaseURL != "https://sales.example.com" {
		t.Errorf("Expected base URL https://sales.example.com, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %v", cfg.Server.Timeout)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.DevServer.HistoryLimit != 10 {
		t.Errorf("Expected history limit 10, got %d", cfg.DevServer.HistoryLimit)
	}
}

func TestLoadConfigKeepsUnsetBooleans(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  default_format: csv\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Output.ShowProgress {
		t.Error("Expected show_progress to keep its default when absent from the file")
	}
	if !cfg.UI.ConfirmDelete {
		t.Error("Expected confirm_delete to keep its default when absent from the file")
	}
}

func TestLoadConfigExplicitFalse(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(configPath, []byte("ui:\n  confirm_delete: false\n"), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := NewLoader().LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.UI.ConfirmDelete {
		t.Error("Expected explicit confirm_delete: false to apply")
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	low := filepath.Join(dir, "system.yaml")
	high := filepath.Join(dir, "project.yaml")

	if err := os.WriteFile(low, []byte("server:\n  base_url: http://system:8000\nui:\n  theme: minimal\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(high, []byte("server:\n  base_url: http://project:8000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{configPaths: []string{high, low}}
	cfg, err := loader.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.BaseURL != "http://project:8000" {
		t.Errorf("Expected project file to win, got %s", cfg.Server.BaseURL)
	}
	if cfg.UI.Theme != "minimal" {
		t.Errorf("Expected theme from lower priority file, got %s", cfg.UI.Theme)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
server:
  base_url: "http://127.0.0.1:8000
  timeout: 60s
`

	if err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := NewLoader()
	if _, err := loader.LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  default_format: pdf\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader().LoadConfig(configPath)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SALESFC_SERVER_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("SALESFC_SERVER_TIMEOUT", "2m")
	t.Setenv("SALESFC_OUTPUT_VERBOSE", "true")
	t.Setenv("SALESFC_UI_CONFIRM_DELETE", "false")
	t.Setenv("SALESFC_WATCH_PATTERN", "sales-*.csv")
	t.Setenv("SALESFC_DEVSERVER_HISTORY_LIMIT", "25")
	t.Setenv("SALESFC_DEVSERVER_MAX_UPLOAD_SIZE", "1048576")

	loader := NewLoader()
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("Expected base URL override, got %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 2*time.Minute {
		t.Errorf("Expected timeout 2m, got %v", cfg.Server.Timeout)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.UI.ConfirmDelete {
		t.Errorf("Expected confirm_delete to be false")
	}
	if cfg.Watch.Pattern != "sales-*.csv" {
		t.Errorf("Expected watch pattern override, got %s", cfg.Watch.Pattern)
	}
	if cfg.DevServer.HistoryLimit != 25 {
		t.Errorf("Expected history limit 25, got %d", cfg.DevServer.HistoryLimit)
	}
	if cfg.DevServer.MaxUploadSize != 1048576 {
		t.Errorf("Expected max upload size 1048576, got %d", cfg.DevServer.MaxUploadSize)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "SALESFC_DEVSERVER_HISTORY_LIMIT", "not-a-number"},
		{"invalid int64", "SALESFC_DEVSERVER_MAX_UPLOAD_SIZE", "10MB"},
		{"invalid bool", "SALESFC_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "SALESFC_SERVER_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			loader := NewLoader()
			cfg := DefaultConfig()

			if err := loader.applyEnvOverrides(cfg); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	var duration time.Duration

	if err := parseDuration("30s", &duration); err != nil {
		t.Errorf("Failed to parse duration: %v", err)
	}
	if duration != 30*time.Second {
		t.Errorf("Expected 30s, got %v", duration)
	}

	if err := parseDuration("invalid", &duration); err == nil {
		t.Error("Expected error for invalid duration, but got none")
	}
}

func TestParseInt(t *testing.T) {
	var value int

	if err := parseInt("42", &value); err != nil {
		t.Errorf("Failed to parse int: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected 42, got %d", value)
	}

	if err := parseInt("not-a-number", &value); err == nil {
		t.Error("Expected error for invalid int, but got none")
	}
}

func TestParseBool(t *testing.T) {
	var value bool

	if err := parseBool("true", &value); err != nil {
		t.Errorf("Failed to parse bool: %v", err)
	}
	if !value {
		t.Errorf("Expected true, got %v", value)
	}

	if err := parseBool("not-a-bool", &value); err == nil {
		t.Error("Expected error for invalid bool, but got none")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	if _, found := FindConfigFile(); found {
		t.Skip("system-wide config present; skipping")
	}

	tempConfigPath := "./.salesfc.yaml"
	if err := os.WriteFile(tempConfigPath, []byte("version: 1.0"), 0o600); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	configPath, found := FindConfigFile()
	if !found {
		t.Error("Expected config file to be found, but none was found")
	}
	if configPath != tempConfigPath {
		t.Errorf("Expected config path %s, got %s", tempConfigPath, configPath)
	}
}

func TestFileExists(t *testing.T) {
	if fileExists("/path/that/does/not/exist") {
		t.Error("Expected file to not exist, but fileExists returned true")
	}

	tempFile := filepath.Join(t.TempDir(), "test-file")
	if err := os.WriteFile(tempFile, []byte("test"), 0o600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if !fileExists(tempFile) {
		t.Error("Expected file to exist, but fileExists returned false")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid yaml file", path: "config.yaml"},
		{name: "valid yml file", path: "config.yml"},
		{name: "path traversal attempt", path: "../../../etc/passwd", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "non-yaml file", path: "config.txt", wantErr: true, errMsg: "config file must have .yaml or .yml extension"},
		{name: "system file access", path: "/etc/passwd.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "proc filesystem access", path: "/proc/version.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "relative path with valid extension", path: "./configs/app.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
