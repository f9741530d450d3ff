package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordAndQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Tool: "get_envelope", InvocationID: "inv-1", Success: true, EnvelopeID: "env-1"},
		{Time: base.Add(time.Minute), Tool: "fill_envelope", InvocationID: "inv-2", Success: false, ErrorCode: "INVALID_STATE_TRANSITION", EnvelopeID: "env-1"},
		{Time: base.Add(2 * time.Minute), Tool: "get_envelope", InvocationID: "inv-3", Success: true, EnvelopeID: "env-2"},
	}
	for _, event := range events {
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := store.RecentForEnvelope(ctx, "env-1", 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].InvocationID != "inv-2" || got[1].InvocationID != "inv-1" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if got[0].ErrorCode != "INVALID_STATE_TRANSITION" || got[0].Success {
		t.Fatalf("unexpected failure record %+v", got[0])
	}
	if !got[1].Time.Equal(base) {
		t.Fatalf("expected round-tripped time %v, got %v", base, got[1].Time)
	}
}

func TestRecordStampsZeroTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, Event{Tool: "get_server_info", InvocationID: "inv-1", Success: true, EnvelopeID: "env-9"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := store.RecentForEnvelope(ctx, "env-9", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Time.IsZero() {
		t.Fatalf("expected stamped time, got %+v", got)
	}
}
