package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func testBackend(t *testing.T, q Backend) {
	t.Helper()
	ctx := context.Background()

	reqs := []Request{
		{Package: "chebfun", BuildType: "standard"},
		{Package: "fmm2d", Version: "unspecified", BuildType: "linux_workstation", Attempts: 1},
		{Package: "kdtree"},
	}
	for _, req := range reqs {
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	items, err := q.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("list length=%d", len(items))
	}
	if items[0].Package != "chebfun" || items[1].Attempts != 1 {
		t.Fatalf("list contents: %+v", items)
	}
	if items[0].EnqueuedAt == 0 {
		t.Fatal("enqueued_at should be stamped")
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Length != 3 {
		t.Fatalf("stats length=%d", stats.Length)
	}

	popped, err := q.Pop(ctx, 2)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if len(popped) != 2 || popped[0].Package != "chebfun" || popped[1].Package != "fmm2d" {
		t.Fatalf("pop order: %+v", popped)
	}

	remaining, err := q.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Package != "kdtree" {
		t.Fatalf("remaining: %+v", remaining)
	}

	if err := q.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err = q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Length != 0 {
		t.Fatalf("stats after clear: %+v", stats)
	}
}

func TestFileQueue(t *testing.T) {
	q := NewFileQueue(filepath.Join(t.TempDir(), "rebuild.json"))
	testBackend(t, q)
}

func TestFileQueuePopAll(t *testing.T) {
	ctx := context.Background()
	q := NewFileQueue(filepath.Join(t.TempDir(), "rebuild.json"))
	for _, name := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, Request{Package: name}); err != nil {
			t.Fatal(err)
		}
	}
	popped, err := q.Pop(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(popped) != 2 {
		t.Fatalf("pop(0) should drain, got %d", len(popped))
	}
}

func TestRedisQueue(t *testing.T) {
	srv := miniredis.RunT(t)
	q := NewRedisQueue("redis://"+srv.Addr(), "")
	testBackend(t, q)
}

func TestRedisQueueOldestAge(t *testing.T) {
	srv := miniredis.RunT(t)
	q := NewRedisQueue("redis://"+srv.Addr(), "test:queue")
	ctx := context.Background()
	old := time.Now().Add(-90 * time.Second).Unix()
	if err := q.Enqueue(ctx, Request{Package: "a", EnqueuedAt: old}); err != nil {
		t.Fatal(err)
	}
	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.OldestAge < 89 {
		t.Fatalf("oldest age=%d, want ~90", stats.OldestAge)
	}
}

func TestRedisQueueUnconfigured(t *testing.T) {
	q := NewRedisQueue("", "")
	if err := q.Enqueue(context.Background(), Request{Package: "a"}); err == nil {
		t.Fatal("unconfigured redis queue should error")
	}
}

func TestKafkaQueueUnconfigured(t *testing.T) {
	q := NewKafkaQueue("", "")
	if err := q.Enqueue(context.Background(), Request{Package: "a"}); err == nil {
		t.Fatal("unconfigured kafka queue should error")
	}
	if _, err := q.Pop(context.Background(), 1); err == nil {
		t.Fatal("unconfigured kafka queue should error")
	}
}
