package monitor

import (
	"runtime"
	"sync/atomic"
	"time"
)

// OperationType names a tracked service operation
type OperationType string

const (
	OperationAnalyze  OperationType = "analyze"
	OperationHistory  OperationType = "history"
	OperationDelete   OperationType = "delete"
	OperationDownload OperationType = "download"
)

// Operations lists every tracked operation in report order
var Operations = []OperationType{
	OperationAnalyze,
	OperationHistory,
	OperationDelete,
	OperationDownload,
}

// OperationMetrics summarizes one operation
type OperationMetrics struct {
	Operation OperationType `json:"operation"`
	Count     int64         `json:"count"`
	Errors    int64         `json:"errors"`
	TotalTime time.Duration `json:"total_time_ns"`
	MinTime   time.Duration `json:"min_time_ns"`
	MaxTime   time.Duration `json:"max_time_ns"`
	AvgTime   time.Duration `json:"avg_time_ns"`
}

// UploadMetrics counts accepted CSV uploads
type UploadMetrics struct {
	Files int64 `json:"files"`
	Bytes int64 `json:"bytes"`
	Rows  int64 `json:"rows"`
}

// MemoryMetrics is a point-in-time view of the Go runtime
type MemoryMetrics struct {
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	HeapInuse  uint64 `json:"heap_inuse_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
}

// Snapshot is everything the collector knows at one moment
type Snapshot struct {
	Timestamp  time.Time          `json:"timestamp"`
	Uptime     time.Duration      `json:"uptime_ns"`
	Uploads    UploadMetrics      `json:"uploads"`
	Memory     MemoryMetrics      `json:"memory"`
	Operations []OperationMetrics `json:"operations"`
}

// Counter is a thread-safe counter
type Counter struct {
	name  string
	value int64
}

// NewCounter creates a new counter
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Add adds delta to the counter
func (c *Counter) Add(delta int64) {
	atomic.AddInt64(&c.value, delta)
}

// Get returns the current value
func (c *Counter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

// Reset sets the counter back to 0
func (c *Counter) Reset() {
	atomic.StoreInt64(&c.value, 0)
}

// Name returns the counter name
func (c *Counter) Name() string {
	return c.name
}

const noMinTime = int64(^uint64(0) >> 1)

// Timer is a thread-safe timer for measuring operation durations
type Timer struct {
	name      string
	count     int64
	totalTime int64
	minTime   int64
	maxTime   int64
}

// NewTimer creates a new timer
func NewTimer(name string) *Timer {
	return &Timer{
		name:    name,
		minTime: noMinTime,
	}
}

// Record adds one duration sample
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()
	atomic.AddInt64(&t.count, 1)
	atomic.AddInt64(&t.totalTime, nanos)

	for {
		current := atomic.LoadInt64(&t.minTime)
		if nanos >= current {
			break
		}
		if atomic.CompareAndSwapInt64(&t.minTime, current, nanos) {
			break
		}
	}

	for {
		current := atomic.LoadInt64(&t.maxTime)
		if nanos <= current {
			break
		}
		if atomic.CompareAndSwapInt64(&t.maxTime, current, nanos) {
			break
		}
	}
}

// Count returns the number of samples
func (t *Timer) Count() int64 {
	return atomic.LoadInt64(&t.count)
}

// TotalTime returns the sum of all samples
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.totalTime))
}

// MinTime returns the shortest sample, or 0 before the first one
func (t *Timer) MinTime() time.Duration {
	minTime := atomic.LoadInt64(&t.minTime)
	if minTime == noMinTime {
		return 0
	}
	return time.Duration(minTime)
}

// MaxTime returns the longest sample
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.maxTime))
}

// AvgTime returns the mean sample duration
func (t *Timer) AvgTime() time.Duration {
	count := t.Count()
	if count == 0 {
		return 0
	}
	return t.TotalTime() / time.Duration(count)
}

// Reset clears all samples
func (t *Timer) Reset() {
	atomic.StoreInt64(&t.count, 0)
	atomic.StoreInt64(&t.totalTime, 0)
	atomic.StoreInt64(&t.minTime, noMinTime)
	atomic.StoreInt64(&t.maxTime, 0)
}

// Name returns the timer name
func (t *Timer) Name() string {
	return t.name
}

// CollectMemory reads the current runtime memory statistics
func CollectMemory() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryMetrics{
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}
