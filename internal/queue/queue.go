package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned when the queue is at capacity.
	ErrQueueFull = errors.New("utterance queue is full")

	// ErrQueueClosed is returned for operations on a closed queue.
	ErrQueueClosed = errors.New("utterance queue is closed")
)

// Utterance is one piece of text waiting to be spoken.
type Utterance struct {
	// ID links the utterance back to its transcript message.
	ID string

	// Text is the content to synthesize, already stripped of markup.
	Text string

	// Voice is the resolved voice identifier.
	Voice string

	// Enqueued is when the utterance entered the queue.
	Enqueued time.Time
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	TotalDropped  int64
	CurrentSize   int
	PeakSize      int
}

// Queue is a bounded two-lane FIFO. Priority utterances, such as a
// user-requested replay, are dequeued before normal ones. Dequeue blocks
// until an utterance is available, the context is done, or the queue is
// closed.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	priority []Utterance
	normal   []Utterance

	maxSize int
	closed  bool
	stats   Stats
}

// DefaultMaxSize bounds the queue when no limit is given.
const DefaultMaxSize = 32

// New creates a queue. maxSize < 1 uses DefaultMaxSize.
func New(maxSize int) *Queue {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	q := &Queue{maxSize: maxSize}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds an utterance. A full queue rejects rather than blocks so
// the caller's loop never stalls behind slow playback.
func (q *Queue) Enqueue(u Utterance, priority bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if len(q.priority)+len(q.normal) >= q.maxSize {
		q.stats.TotalDropped++
		return ErrQueueFull
	}

	u.Enqueued = time.Now()
	if priority {
		q.priority = append(q.priority, u)
	} else {
		q.normal = append(q.normal, u)
	}

	q.stats.TotalEnqueued++
	size := len(q.priority) + len(q.normal)
	q.stats.CurrentSize = size
	if size > q.stats.PeakSize {
		q.stats.PeakSize = size
	}

	q.notEmpty.Signal()
	return nil
}

// Dequeue removes the next utterance, priority lane first. It blocks
// until one is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (Utterance, error) {
	// Wake the waiter when the context ends; Wait cannot select on it.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.priority) == 0 && len(q.normal) == 0 {
		if q.closed {
			return Utterance{}, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return Utterance{}, err
		}
		q.notEmpty.Wait()
	}

	var u Utterance
	if len(q.priority) > 0 {
		u = q.priority[0]
		q.priority = q.priority[1:]
	} else {
		u = q.normal[0]
		q.normal = q.normal[1:]
	}

	q.stats.TotalDequeued++
	q.stats.CurrentSize = len(q.priority) + len(q.normal)
	return u, nil
}

// Clear drops all pending utterances.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stats.TotalDropped += int64(len(q.priority) + len(q.normal))
	q.priority = nil
	q.normal = nil
	q.stats.CurrentSize = 0
}

// Len returns the number of pending utterances.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.priority) + len(q.normal)
}

// Stats returns a snapshot of queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.stats
}

// Close rejects further enqueues and wakes blocked dequeuers once the
// pending utterances drain.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.notEmpty.Broadcast()
}
