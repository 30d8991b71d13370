package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# salesfc configuration
version: "1.0"

# Analysis service the client talks to
server:
  base_url: "http://127.0.0.1:8000"
  # 0 disables the client-side timeout; uploads then wait as long as the server does
  timeout: 0s
  user_agent: "salesfc"

output:
  default_format: "text"   # text|json|markdown|csv
  color_mode: "auto"       # auto|always|never
  verbose: false
  show_progress: true

ui:
  theme: "default"         # default|high-contrast|minimal
  confirm_delete: true
  start_dir: "."

# salesfc watch uploads matching files as they appear
watch:
  directory: "."
  pattern: "*.csv"
  debounce: 500ms

# salesfc serve runs a local stand-in for the analysis service
devserver:
  listen: "127.0.0.1:8000"
  history_limit: 5
  max_upload_size: 10485760
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
server:
  base_url: "http://127.0.0.1:8000"
`
}
