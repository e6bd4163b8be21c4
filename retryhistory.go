package bigo

import (
	"sync"
	"time"
)

// RetryHistory is a small bounded record of the retries one analysis took: instead of
// a sliding window over production latencies, it holds the handful of retries a single
// analysis can ever take (bounded by the configured max reattempts), backing the
// report's "time lost to flakiness" annotation.
type RetryHistory struct {
	mu       sync.Mutex
	attempts []RetryAttempt
	capacity int
}

// RetryAttempt records one retried pass: which attempt number, which pass (1 or 2,
// or 0 when a CRUD run re-ran both) was re-run, how long the retry itself took, and
// why it was triggered.
type RetryAttempt struct {
	Attempt     int
	RetriedPass int
	Elapsed     time.Duration
	Reason      string
}

func newRetryHistory(capacity int) *RetryHistory {
	if capacity <= 0 {
		capacity = 8
	}
	return &RetryHistory{capacity: capacity}
}

func (h *RetryHistory) record(a RetryAttempt) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.attempts) >= h.capacity {
		h.attempts = h.attempts[1:]
	}
	h.attempts = append(h.attempts, a)
}

// Attempts returns a copy of the recorded retries, oldest first.
func (h *RetryHistory) Attempts() []RetryAttempt {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RetryAttempt, len(h.attempts))
	copy(out, h.attempts)
	return out
}

// TotalOverhead sums the elapsed time of every recorded retry attempt: the wall time
// this analysis spent on flakiness recovery rather than the real measurement.
func (h *RetryHistory) TotalOverhead() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total time.Duration
	for _, a := range h.attempts {
		total += a.Elapsed
	}
	return total
}

// Len reports how many retries were recorded.
func (h *RetryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attempts)
}
