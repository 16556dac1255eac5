package selsync

import "sync"

// Queue is a Dispatcher for owners that run their own event loop, such as
// the terminal UI and the command line. Dispatch never blocks; the owner
// waits on Ready and then calls Drain.
type Queue struct {
	mu    sync.Mutex
	fns   []func()
	ready chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Dispatch queues fn. It is safe to call from any goroutine.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready receives a value whenever closures have been queued since the last Drain.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain runs queued closures on the calling goroutine until none are left
// and returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		fns := q.fns
		q.fns = nil
		q.mu.Unlock()
		if len(fns) == 0 {
			return ran
		}
		for _, fn := range fns {
			fn()
			ran++
		}
	}
}
