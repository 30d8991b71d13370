package monitor

import (
	"time"
)

type operationStats struct {
	timer  *Timer
	errors *Counter
}

// Collector records per-operation timings and upload volume.
// A nil *Collector is valid and records nothing.
type Collector struct {
	started    time.Time
	operations map[OperationType]*operationStats
	files      *Counter
	bytes      *Counter
	rows       *Counter
}

// NewCollector creates a collector with a timer for every known operation
func NewCollector() *Collector {
	c := &Collector{
		started:    time.Now(),
		operations: make(map[OperationType]*operationStats, len(Operations)),
		files:      NewCounter("upload.files"),
		bytes:      NewCounter("upload.bytes"),
		rows:       NewCounter("upload.rows"),
	}
	for _, op := range Operations {
		c.operations[op] = &operationStats{
			timer:  NewTimer(string(op) + ".duration"),
			errors: NewCounter(string(op) + ".errors"),
		}
	}
	return c
}

// TrackOperation runs fn and records its duration and outcome
func (c *Collector) TrackOperation(op OperationType, fn func() error) error {
	start := time.Now()
	err := fn()
	c.RecordOperation(op, time.Since(start), err != nil)
	return err
}

// RecordOperation records one finished operation. Unknown operations are ignored.
func (c *Collector) RecordOperation(op OperationType, duration time.Duration, failed bool) {
	if c == nil {
		return
	}
	stats, ok := c.operations[op]
	if !ok {
		return
	}
	stats.timer.Record(duration)
	if failed {
		stats.errors.Inc()
	}
}

// RecordUpload counts one accepted CSV
func (c *Collector) RecordUpload(bytes, rows int64) {
	if c == nil {
		return
	}
	c.files.Inc()
	c.bytes.Add(bytes)
	c.rows.Add(rows)
}

// Snapshot returns the current metrics
func (c *Collector) Snapshot() Snapshot {
	now := time.Now()
	snapshot := Snapshot{
		Timestamp: now,
		Memory:    CollectMemory(),
	}
	if c == nil {
		return snapshot
	}

	snapshot.Uptime = now.Sub(c.started)
	snapshot.Uploads = UploadMetrics{
		Files: c.files.Get(),
		Bytes: c.bytes.Get(),
		Rows:  c.rows.Get(),
	}

	snapshot.Operations = make([]OperationMetrics, 0, len(Operations))
	for _, op := range Operations {
		stats := c.operations[op]
		snapshot.Operations = append(snapshot.Operations, OperationMetrics{
			Operation: op,
			Count:     stats.timer.Count(),
			Errors:    stats.errors.Get(),
			TotalTime: stats.timer.TotalTime(),
			MinTime:   stats.timer.MinTime(),
			MaxTime:   stats.timer.MaxTime(),
			AvgTime:   stats.timer.AvgTime(),
		})
	}
	return snapshot
}
