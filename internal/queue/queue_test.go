package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestQueue_FIFOWithinLane(t *testing.T) {
	q := New(8)

	for i := 0; i < 3; i++ {
		err := q.Enqueue(Utterance{ID: fmt.Sprintf("u%d", i), Text: "hi"}, false)
		if err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		u, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue %d failed: %v", i, err)
		}
		if want := fmt.Sprintf("u%d", i); u.ID != want {
			t.Errorf("dequeued %s, want %s", u.ID, want)
		}
	}
}

func TestQueue_PriorityLaneFirst(t *testing.T) {
	q := New(8)

	if err := q.Enqueue(Utterance{ID: "normal"}, false); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := q.Enqueue(Utterance{ID: "urgent"}, true); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	u, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if u.ID != "urgent" {
		t.Errorf("dequeued %s first, want urgent", u.ID)
	}
}

func TestQueue_FullRejects(t *testing.T) {
	q := New(2)

	for i := 0; i < 2; i++ {
		if err := q.Enqueue(Utterance{}, false); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	if err := q.Enqueue(Utterance{}, false); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if got := q.Stats().TotalDropped; got != 1 {
		t.Errorf("TotalDropped=%d, want 1", got)
	}
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := New(4)

	got := make(chan Utterance, 1)
	go func() {
		u, err := q.Dequeue(context.Background())
		if err != nil {
			t.Errorf("Dequeue failed: %v", err)
		}
		got <- u
	}()

	// Give the dequeuer a moment to block.
	time.Sleep(20 * time.Millisecond)
	if err := q.Enqueue(Utterance{ID: "late"}, false); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case u := <-got:
		if u.ID != "late" {
			t.Errorf("dequeued %s, want late", u.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue never woke up")
	}
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := New(4)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New(8)
	for i := 0; i < 4; i++ {
		if err := q.Enqueue(Utterance{}, i%2 == 0); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	q.Clear()
	if q.Len() != 0 {
		t.Errorf("Len=%d after Clear", q.Len())
	}
	if got := q.Stats().TotalDropped; got != 4 {
		t.Errorf("TotalDropped=%d, want 4", got)
	}
}

func TestQueue_CloseDrainsThenRefuses(t *testing.T) {
	q := New(4)
	if err := q.Enqueue(Utterance{ID: "pending"}, false); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	q.Close()

	if err := q.Enqueue(Utterance{}, false); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue after Close: %v, want ErrQueueClosed", err)
	}

	// Pending utterances still drain.
	u, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue of pending failed: %v", err)
	}
	if u.ID != "pending" {
		t.Errorf("dequeued %s, want pending", u.ID)
	}

	if _, err := q.Dequeue(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Dequeue on drained closed queue: %v, want ErrQueueClosed", err)
	}
}

func TestQueue_StatsCounters(t *testing.T) {
	q := New(4)

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(Utterance{}, false); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if _, err := q.Dequeue(context.Background()); err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	stats := q.Stats()
	if stats.TotalEnqueued != 3 || stats.TotalDequeued != 1 {
		t.Errorf("counters %+v", stats)
	}
	if stats.PeakSize != 3 || stats.CurrentSize != 2 {
		t.Errorf("sizes %+v", stats)
	}
}
