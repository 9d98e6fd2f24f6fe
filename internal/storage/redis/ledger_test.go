package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"interview-analyzer/internal/ledger"
)

func newTestStore(t *testing.T) (*LedgerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, ""), mr
}

func TestLedgerStore_RoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	l, err := ledger.New(ctx, store, ledger.Options{}, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	for _, actor := range []string{"u1", "u2", "u1"} {
		if _, err := l.Append(ctx, ledger.ActionJobApplied, actor, ledger.JobApplied("job-1")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	items, err := mr.List("interview:ledger")
	if err != nil {
		t.Fatalf("miniredis List: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("list length = %d, want 3", len(items))
	}

	mine, err := l.ByActor(ctx, "u1")
	if err != nil {
		t.Fatalf("ByActor: %v", err)
	}
	if len(mine) != 2 || mine[1].Index != 2 {
		t.Errorf("ByActor(u1) = %+v", mine)
	}

	report, err := l.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Valid || report.Blocks != 3 {
		t.Errorf("report = %+v", report)
	}
}

func TestLedgerStore_RejectedAppendLeavesListUnchanged(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	l, err := ledger.New(ctx, store, ledger.Options{}, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	if _, err := mr.Push("interview:ledger", "{}"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := l.Append(ctx, ledger.ActionInterviewCompleted, "u1", ledger.InterviewCompleted("job-1", 50))
		if !errors.Is(err, ErrIndexConflict) {
			t.Fatalf("attempt %d: err = %v, want ErrIndexConflict", i, err)
		}
	}

	items, err := mr.List("interview:ledger")
	if err != nil {
		t.Fatalf("miniredis List: %v", err)
	}
	if len(items) != 1 || items[0] != "{}" {
		t.Errorf("list = %v, want only the foreign entry", items)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestLedgerStore_AppendAtMatchingIndexAfterForeignWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if _, err := mr.Push("interview:ledger", "{}"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	b := ledger.Block{Index: 1, Action: ledger.ActionJobApplied, ActorID: "u", Hash: "h"}
	if err := store.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, b); !errors.Is(err, ErrIndexConflict) {
		t.Errorf("duplicate index: err = %v, want ErrIndexConflict", err)
	}
	if items, _ := mr.List("interview:ledger"); len(items) != 2 {
		t.Errorf("list length = %d, want 2", len(items))
	}
}

func TestLedgerStore_ResumesAfterRestart(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := ledger.New(ctx, store, ledger.Options{Chained: true}, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	if _, err := first.Append(ctx, ledger.ActionJobCreated, "r1", ledger.JobCreated("job-1", "Dev", "backend")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	second, err := ledger.New(ctx, store, ledger.Options{Chained: true}, nil)
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	if second.Len() != 1 {
		t.Errorf("Len() = %d, want 1", second.Len())
	}
	b, err := second.Append(ctx, ledger.ActionJobApplied, "u1", ledger.JobApplied("job-1"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if b.Index != 1 {
		t.Errorf("Index = %d, want 1", b.Index)
	}
	if report, _ := second.Verify(ctx); !report.Valid {
		t.Errorf("report = %+v", report)
	}
}
