package bigo

import "sync"

// analysisLock serializes analyses process-wide: only one pass may be live at a time.
// It is a global singleton, not a per-builder field, because the invariant it
// protects — allocator counters are interpretable only while a single analysis owns
// them — is a property of the whole process, not of any one builder instance.
type analysisLock struct {
	mu     sync.Mutex
	active string
}

var globalAnalysisLock = &analysisLock{}

// analysisGuard is the scoped handle returned by acquire. Its release is idempotent
// and safe to defer unconditionally, so a panicking subject still frees the lock.
type analysisGuard struct {
	lock     *analysisLock
	released bool
}

// acquire takes the global analysis lock for an analysis named name, or returns
// HarnessReentrance if one is already active.
func (l *analysisLock) acquire(name string) (*analysisGuard, error) {
	if !l.mu.TryLock() {
		return nil, &HarnessReentrance{ActiveAnalysis: l.active}
	}
	l.active = name
	return &analysisGuard{lock: l}, nil
}

func (g *analysisGuard) release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.lock.active = ""
	g.lock.mu.Unlock()
}
