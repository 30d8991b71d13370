package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders an upload percentage
type ProgressBar struct {
	Width     int
	Percent   int
	StartTime time.Time
	ShowETA   bool
	Label     string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) *ProgressBar {
	return &ProgressBar{
		Width:     width,
		StartTime: time.Now(),
		ShowETA:   true,
	}
}

// SetPercent updates the progress, clamped to [0,100]
func (p *ProgressBar) SetPercent(percent int) {
	p.Percent = clampPercent(percent)
}

// SetLabel sets the progress label
func (p *ProgressBar) SetLabel(label string) {
	p.Label = label
}

// Reset clears progress and restarts the ETA clock
func (p *ProgressBar) Reset() {
	p.Percent = 0
	p.StartTime = time.Now()
}

// Render renders the progress bar
func (p *ProgressBar) Render() string {
	// Define styles locally to avoid import cycle
	progressStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	fraction := float64(clampPercent(p.Percent)) / 100

	filledWidth := int(float64(p.Width) * fraction)
	emptyWidth := p.Width - filledWidth

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", emptyWidth)
	bar := progressStyle.Render(filled) + mutedStyle.Render(empty)

	etaText := ""
	if p.ShowETA && fraction > 0 && fraction < 1 {
		elapsed := time.Since(p.StartTime)
		estimated := time.Duration(float64(elapsed) / fraction)
		remaining := estimated - elapsed
		if remaining > 0 {
			etaText = fmt.Sprintf(" ETA: %s", formatDuration(remaining))
		}
	}

	result := fmt.Sprintf("[%s] %3d%%%s", bar, clampPercent(p.Percent), etaText)

	if p.Label != "" {
		result = p.Label + "\n" + result
	}

	return result
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// spinnerFrames are the braille animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner represents a spinning progress indicator
type Spinner struct {
	Frame int
	Label string
}

// NewSpinner creates a new spinner
func NewSpinner() *Spinner {
	return &Spinner{}
}

// SetLabel sets the spinner label
func (s *Spinner) SetLabel(label string) {
	s.Label = label
}

// Tick advances the spinner animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Render renders the spinner
func (s *Spinner) Render() string {
	progressStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	spinner := progressStyle.Render(spinnerFrames[s.Frame%len(spinnerFrames)])

	if s.Label != "" {
		return fmt.Sprintf("%s %s", spinner, s.Label)
	}

	return spinner
}

// UploadIndicator shows a spinner until the first progress tick arrives,
// then a progress bar. Uploads of unknown size stay on the spinner.
type UploadIndicator struct {
	spinner     *Spinner
	progressBar *ProgressBar
	useSpinner  bool
}

// NewUploadIndicator creates an indicator in spinner mode
func NewUploadIndicator(width int) *UploadIndicator {
	return &UploadIndicator{
		spinner:     NewSpinner(),
		progressBar: NewProgressBar(width),
		useSpinner:  true,
	}
}

// SetMessage sets the label on both modes
func (u *UploadIndicator) SetMessage(message string) {
	u.spinner.SetLabel(message)
	u.progressBar.SetLabel(message)
}

// SetPercent switches to progress bar mode once percent is positive
func (u *UploadIndicator) SetPercent(percent int) {
	if percent > 0 {
		u.useSpinner = false
	}
	u.progressBar.SetPercent(percent)
}

// Reset returns to spinner mode for a new upload
func (u *UploadIndicator) Reset() {
	u.useSpinner = true
	u.progressBar.Reset()
}

// Tick advances the animation
func (u *UploadIndicator) Tick() {
	if u.useSpinner {
		u.spinner.Tick()
	}
}

// Render renders the indicator
func (u *UploadIndicator) Render() string {
	if u.useSpinner {
		return u.spinner.Render()
	}
	return u.progressBar.Render()
}
