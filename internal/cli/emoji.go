package cli

import (
	"fmt"

	"github.com/yildizm/SalesForecaster/internal/emoji"
	"github.com/yildizm/SalesForecaster/internal/session"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetPhaseEmoji returns the symbol for an upload session phase
func GetPhaseEmoji(phase session.Phase) string {
	switch phase {
	case session.FileArmed:
		return GetEmoji("file")
	case session.InFlight:
		return GetEmoji("upload")
	case session.Succeeded:
		return GetEmoji("success")
	case session.Failed:
		return GetEmoji("error")
	default:
		return GetEmoji("empty")
	}
}

// progressLine renders one carriage-return refreshed progress line
func progressLine(name string, percent int) string {
	return fmt.Sprintf("\r%s %s %s %3d%%", GetPhaseEmoji(session.InFlight), name, emoji.Bar(percent), percent)
}

// arrow separates a label from a target
func arrow() string {
	if isEmojiDisabled() {
		return "->"
	}
	return "→"
}
