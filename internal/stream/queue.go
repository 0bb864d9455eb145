package stream

import "time"

// Notification is one progress update for a live display or log sink.
type Notification struct {
	Kind string
	Text string
	Time time.Time
}

// Sink receives drained notifications. It runs on the queue's single drain
// goroutine, so a slow sink delays the feed but never the process readers.
type Sink func(Notification)

// Queue is a single-producer/single-consumer ordered notification queue.
// The process output reader produces; one drain goroutine consumes. Ordering
// is the channel's FIFO ordering, so it holds by construction rather than by
// event-subscription timing.
//
// Publish never blocks: when the buffer is full the oldest pending
// notification is dropped. The feed is advisory display state, unlike the
// process buffers, which are never dropped.
type Queue struct {
	ch   chan Notification
	done chan struct{}
}

// NewQueue starts a queue draining into sink. A nil sink discards.
func NewQueue(sink Sink) *Queue {
	q := &Queue{
		ch:   make(chan Notification, 256),
		done: make(chan struct{}),
	}
	go func() {
		defer close(q.done)
		for n := range q.ch {
			if sink != nil {
				sink(n)
			}
		}
	}()
	return q
}

// Publish enqueues a notification without blocking the caller.
func (q *Queue) Publish(n Notification) {
	for {
		select {
		case q.ch <- n:
			return
		default:
		}
		// Full: drop the oldest and retry.
		select {
		case <-q.ch:
		default:
		}
	}
}

// Close stops the queue and waits for the drain goroutine to finish
// delivering whatever was already enqueued.
func (q *Queue) Close() {
	close(q.ch)
	<-q.done
}
