package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatText renders a snapshot as a short plain-text report
func FormatText(s Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Uptime: %s\n", s.Uptime.Round(time.Second))
	fmt.Fprintf(&b, "Uploads: %s files, %s, %s rows\n",
		humanize.Comma(s.Uploads.Files),
		humanize.Bytes(uint64(s.Uploads.Bytes)),
		humanize.Comma(s.Uploads.Rows))

	for _, op := range s.Operations {
		if op.Count == 0 {
			fmt.Fprintf(&b, "  %-9s no requests\n", op.Operation)
			continue
		}
		fmt.Fprintf(&b, "  %-9s %s requests, %d failed, avg %s, max %s\n",
			op.Operation,
			humanize.Comma(op.Count),
			op.Errors,
			roundDuration(op.AvgTime),
			roundDuration(op.MaxTime))
	}

	fmt.Fprintf(&b, "Memory: %s heap, %d goroutines\n",
		humanize.Bytes(s.Memory.HeapAlloc), s.Memory.Goroutines)

	return b.String()
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}
