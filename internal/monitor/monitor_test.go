package monitor

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	counter := NewCounter("test_counter")

	if counter.Get() != 0 {
		t.Errorf("Expected initial value 0, got %d", counter.Get())
	}

	counter.Inc()
	if counter.Get() != 1 {
		t.Errorf("Expected value 1 after Inc(), got %d", counter.Get())
	}

	counter.Add(5)
	if counter.Get() != 6 {
		t.Errorf("Expected value 6 after Add(5), got %d", counter.Get())
	}

	counter.Reset()
	if counter.Get() != 0 {
		t.Errorf("Expected value 0 after Reset(), got %d", counter.Get())
	}

	if counter.Name() != "test_counter" {
		t.Errorf("Expected name 'test_counter', got %s", counter.Name())
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer("test_timer")

	if timer.MinTime() != 0 {
		t.Errorf("Expected min time 0 before any sample, got %v", timer.MinTime())
	}
	if timer.AvgTime() != 0 {
		t.Errorf("Expected avg time 0 before any sample, got %v", timer.AvgTime())
	}

	timer.Record(100 * time.Millisecond)
	timer.Record(200 * time.Millisecond)
	timer.Record(150 * time.Millisecond)

	if timer.Count() != 3 {
		t.Errorf("Expected count 3, got %d", timer.Count())
	}
	if timer.TotalTime() != 450*time.Millisecond {
		t.Errorf("Expected total time 450ms, got %v", timer.TotalTime())
	}
	if timer.AvgTime() != 150*time.Millisecond {
		t.Errorf("Expected avg time 150ms, got %v", timer.AvgTime())
	}
	if timer.MinTime() != 100*time.Millisecond {
		t.Errorf("Expected min time 100ms, got %v", timer.MinTime())
	}
	if timer.MaxTime() != 200*time.Millisecond {
		t.Errorf("Expected max time 200ms, got %v", timer.MaxTime())
	}

	timer.Reset()
	if timer.Count() != 0 || timer.MaxTime() != 0 || timer.MinTime() != 0 {
		t.Errorf("Expected empty timer after reset, got count=%d min=%v max=%v",
			timer.Count(), timer.MinTime(), timer.MaxTime())
	}

	if timer.Name() != "test_timer" {
		t.Errorf("Expected name 'test_timer', got %s", timer.Name())
	}
}

func TestTimer_Concurrent(t *testing.T) {
	timer := NewTimer("concurrent")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(ms int) {
			defer wg.Done()
			timer.Record(time.Duration(ms) * time.Millisecond)
		}(i)
	}
	wg.Wait()

	if timer.Count() != 50 {
		t.Errorf("Expected count 50, got %d", timer.Count())
	}
	if timer.MinTime() != time.Millisecond {
		t.Errorf("Expected min time 1ms, got %v", timer.MinTime())
	}
	if timer.MaxTime() != 50*time.Millisecond {
		t.Errorf("Expected max time 50ms, got %v", timer.MaxTime())
	}
}

func TestCollectMemory(t *testing.T) {
	metrics := CollectMemory()

	if metrics.HeapAlloc == 0 {
		t.Error("Expected non-zero heap allocation")
	}
	if metrics.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", metrics.Goroutines)
	}
}

func TestCollector_TrackOperation(t *testing.T) {
	c := NewCollector()

	if err := c.TrackOperation(OperationAnalyze, func() error { return nil }); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	failure := errors.New("boom")
	if err := c.TrackOperation(OperationAnalyze, func() error { return failure }); !errors.Is(err, failure) {
		t.Fatalf("Expected the operation error to be returned, got %v", err)
	}

	c.RecordOperation(OperationDelete, 2*time.Millisecond, false)
	c.RecordOperation(OperationType("unknown"), time.Second, true)

	snapshot := c.Snapshot()
	if len(snapshot.Operations) != len(Operations) {
		t.Fatalf("Expected %d operations, got %d", len(Operations), len(snapshot.Operations))
	}

	byOp := make(map[OperationType]OperationMetrics)
	for _, op := range snapshot.Operations {
		byOp[op.Operation] = op
	}

	analyze := byOp[OperationAnalyze]
	if analyze.Count != 2 || analyze.Errors != 1 {
		t.Errorf("Expected analyze count=2 errors=1, got count=%d errors=%d", analyze.Count, analyze.Errors)
	}

	del := byOp[OperationDelete]
	if del.Count != 1 || del.Errors != 0 || del.MaxTime != 2*time.Millisecond {
		t.Errorf("Unexpected delete metrics: %+v", del)
	}

	if byOp[OperationHistory].Count != 0 {
		t.Errorf("Expected no history requests, got %d", byOp[OperationHistory].Count)
	}
}

func TestCollector_RecordUpload(t *testing.T) {
	c := NewCollector()
	c.RecordUpload(1024, 10)
	c.RecordUpload(2048, 5)

	uploads := c.Snapshot().Uploads
	if uploads.Files != 2 || uploads.Bytes != 3072 || uploads.Rows != 15 {
		t.Errorf("Unexpected upload metrics: %+v", uploads)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector

	called := false
	err := c.TrackOperation(OperationHistory, func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("Expected fn to run on a nil collector, called=%v err=%v", called, err)
	}

	c.RecordUpload(10, 1)
	snapshot := c.Snapshot()
	if snapshot.Operations != nil || snapshot.Uploads.Files != 0 {
		t.Errorf("Expected an empty snapshot, got %+v", snapshot)
	}
}

func TestFormatText(t *testing.T) {
	s := Snapshot{
		Uptime:  90 * time.Second,
		Uploads: UploadMetrics{Files: 1200, Bytes: 2_500_000, Rows: 45000},
		Memory:  MemoryMetrics{HeapAlloc: 4_000_000, Goroutines: 7},
		Operations: []OperationMetrics{
			{Operation: OperationAnalyze, Count: 3, Errors: 1, AvgTime: 1500 * time.Microsecond, MaxTime: 2 * time.Millisecond},
			{Operation: OperationHistory},
		},
	}

	text := FormatText(s)

	expected := []string{
		"Uptime: 1m30s",
		"Uploads: 1,200 files, 2.5 MB, 45,000 rows",
		"analyze   3 requests, 1 failed, avg 1.5ms, max 2ms",
		"history   no requests",
		"Memory: 4.0 MB heap, 7 goroutines",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, text)
		}
	}
}
