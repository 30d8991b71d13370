package history

import (
	"context"
	"errors"
	"testing"

	"github.com/yildizm/SalesForecaster/internal/api"
)

type fakeLister struct {
	records []api.HistoryRecord
	err     error
	calls   int
}

func (f *fakeLister) ListHistory(ctx context.Context) ([]api.HistoryRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestStore_RefreshReplacesWholesale(t *testing.T) {
	lister := &fakeLister{records: []api.HistoryRecord{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	store := NewStore(lister)

	if store.Len() != 0 {
		t.Fatalf("Expected empty store, got %d", store.Len())
	}
	if _, ok := store.FetchedAt(); ok {
		t.Error("Expected no fetch before refresh")
	}

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", store.Len())
	}

	lister.records = []api.HistoryRecord{{ID: "9"}}
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	records := store.Records()
	if len(records) != 1 || records[0].ID != "9" {
		t.Errorf("Expected exactly the latest listing, got %+v", records)
	}
	if _, ok := store.FetchedAt(); !ok {
		t.Error("Expected fetch timestamp after refresh")
	}
}

func TestStore_RefreshFailureKeepsData(t *testing.T) {
	lister := &fakeLister{records: []api.HistoryRecord{{ID: "a"}, {ID: "b"}}}
	store := NewStore(lister)
	_ = store.Refresh(context.Background())

	lister.err = errors.New("connection refused")
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error")
	}

	records := store.Records()
	if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
		t.Errorf("Expected previous records to survive, got %+v", records)
	}
}

func TestStore_PreservesServerOrder(t *testing.T) {
	lister := &fakeLister{records: []api.HistoryRecord{
		{ID: "b", UploadDate: "2026-01-01 10:00"},
		{ID: "a", UploadDate: "2026-03-01 10:00"},
		{ID: "c", UploadDate: "2026-02-01 10:00"},
	}}
	store := NewStore(lister)
	_ = store.Refresh(context.Background())

	records := store.Records()
	for i, want := range []string{"b", "a", "c"} {
		if records[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, records[i].ID)
		}
	}
}

func TestStore_RecordsIsACopy(t *testing.T) {
	lister := &fakeLister{records: []api.HistoryRecord{{ID: "1", Filename: "sales.csv"}}}
	store := NewStore(lister)
	_ = store.Refresh(context.Background())

	lister.records[0].Filename = "mutated.csv"
	records := store.Records()
	records[0].Filename = "also-mutated.csv"

	if got := store.Records()[0].Filename; got != "sales.csv" {
		t.Errorf("Store was mutated from outside: %q", got)
	}
}
