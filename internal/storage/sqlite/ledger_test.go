package sqlite

import (
	"context"
	"testing"

	"interview-analyzer/internal/ledger"
)

func TestLedgerStore_RoundTrip(t *testing.T) {
	store, err := New("file:memdb1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	l, err := ledger.New(ctx, store, ledger.Options{Chained: true}, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	if _, err := l.Append(ctx, ledger.ActionJobApplied, "u1", ledger.JobApplied("job-1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := l.Append(ctx, ledger.ActionInterviewCompleted, "u1", ledger.InterviewCompleted("job-1", 73.25)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	blocks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	if score, _ := blocks[1].Payload.Float("score"); score != 73.25 {
		t.Errorf("score = %v, want 73.25", score)
	}

	report, err := l.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Valid {
		t.Errorf("report = %+v, want valid after round trip", report)
	}
}

func TestLedgerStore_DuplicateIndexRejected(t *testing.T) {
	store, err := New("file:memdb2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	b := ledger.Block{Index: 0, Action: ledger.ActionJobApplied, ActorID: "u", Payload: ledger.Payload{}, Hash: "h"}
	if err := store.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, b); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestLedgerStore_AppendOnly(t *testing.T) {
	store, err := New("file:memdb3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	b := ledger.Block{Index: 0, Action: ledger.ActionJobApplied, ActorID: "u", Payload: ledger.Payload{}, Hash: "h"}
	if err := store.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := store.db.ExecContext(ctx, `UPDATE ledger_blocks SET actor_id = 'x'`); err == nil {
		t.Error("expected UPDATE to be rejected")
	}
	if _, err := store.db.ExecContext(ctx, `DELETE FROM ledger_blocks`); err == nil {
		t.Error("expected DELETE to be rejected")
	}
}
