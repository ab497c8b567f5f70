package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
)

func job(id string) model.AllocationJob {
	return model.AllocationJob{InternshipID: id, RequestedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.InternshipID != "1" {
		t.Errorf("expected internship 1, got %v", got.InternshipID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("1")) || !q.Enqueue(ctx, job("2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job("3")) {
		t.Error("expected enqueue to fail when the queue is full")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()
	q.Enqueue(ctx, job("1"))

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, job("2")) {
		t.Error("expected enqueue on a closed queue to fail")
	}

	// jobs queued before Close are still delivered, then the channel closes
	var ids []string
	for j := range q.Dequeue(ctx) {
		ids = append(ids, j.InternshipID)
	}
	if len(ids) != 1 || ids[0] != "1" {
		t.Errorf("expected [1], got %v", ids)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, job("1")) {
		t.Error("expected enqueue with a cancelled context to fail")
	}

	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected no job from a cancelled dequeue")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel not closed after cancellation")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				q.Enqueue(ctx, job("x"))
			}
		}()
	}
	wg.Wait()

	if l := q.Len(ctx); l != 100 {
		t.Errorf("expected 100 queued jobs, got %d", l)
	}
	if q.Enqueue(ctx, job("overflow")) {
		t.Error("expected overflow to be rejected")
	}
}
