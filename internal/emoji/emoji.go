package emoji

import "sync/atomic"

// emojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":      {"❌", "[ERR]"},
	"warning":    {"⚠️", "[WRN]"},
	"info":       {"ℹ️", "[INF]"},
	"success":    {"✅", "[OK]"},
	"upload":     {"📤", "[UP]"},
	"download":   {"📥", "[PDF]"},
	"report":     {"📊", "[RPT]"},
	"history":    {"🗂️", "[HIST]"},
	"file":       {"📄", "[CSV]"},
	"chart":      {"📈", "[CHART]"},
	"money":      {"💰", "[SUM]"},
	"average":    {"⚖️", "[AVG]"},
	"column":     {"🏷️", "[COL]"},
	"calendar":   {"📅", "[DATE]"},
	"trash":      {"🗑️", "[DEL]"},
	"watch":      {"👀", "[WATCH]"},
	"server":     {"🖥️", "[SRV]"},
	"rocket":     {"🚀", "[>>]"},
	"help":       {"❓", "[?]"},
	"door":       {"🚪", "[EXIT]"},
	"hourglass":  {"⏳", "[...]"},
	"link":       {"🔗", "[URL]"},
	"empty":      {"📭", "[--]"},
	"connection": {"🔌", "[NET]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}

// Bar renders a 10 cell bar for a percentage in [0,100]
func Bar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filledCells := percent / 10

	fill, blank := '█', '░'
	if emojiDisabled.Load() {
		fill, blank = '#', '-'
	}

	bar := make([]rune, 10)
	for i := range bar {
		if i < filledCells {
			bar[i] = fill
		} else {
			bar[i] = blank
		}
	}
	if emojiDisabled.Load() {
		return "[" + string(bar) + "]"
	}
	return string(bar)
}
