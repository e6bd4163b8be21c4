package bigo

import (
	"runtime"
	"time"

	"github.com/bigoharness/bigo/internal/statsprobe"
)

// RegionToken is the scoped handle captured at region entry. It must be released
// by exactly one matching call to exit. Dropping one without calling
// exit is a usage error. A panicking subject unwinds past exit entirely, which is
// intentional: runPass (runner.go) does not recover from a subject panic, matching a
// failed pass with no completed measurement to report.
type RegionToken struct {
	t0         time.Time
	baseline   statsprobe.Snapshot
	goroutines int
	released   bool
}

// enter opens a measurement region: it reads the monotonic clock and the allocator
// baseline, in that order: t0, then the allocator snapshot. It
// also records the live goroutine count, so exit can detect worker goroutines the
// subject spawned but never joined.
// Ordering clock-then-counters rather than the reverse makes no measurable difference
// in Go (no real fence instruction is available to sequence them), but the call to
// Snapshot still forces the runtime to settle its own bookkeeping, so it plays the role
// of the fence.
func enter() RegionToken {
	t0 := time.Now()
	return RegionToken{t0: t0, baseline: defaultProbe.Snapshot(), goroutines: runtime.NumGoroutine()}
}

// exit closes a measurement region and returns its deltas as a PassMeasurement. n,
// passIndex, and repetitions are copied into the result but play no part in the
// measurement itself.
func exit(tok *RegionToken, n uint64, passIndex int, repetitions uint64) PassMeasurement {
	if tok.released {
		panic("bigo: region token exited twice")
	}
	tok.released = true

	elapsed := time.Since(tok.t0)
	end := defaultProbe.Snapshot()

	pm := PassMeasurement{
		N:                  n,
		PassIndex:          passIndex,
		DeltaT:             elapsed,
		Repetitions:        repetitions,
		SpaceUnavailable:   !AllocatorAvailable(),
		UnjoinedGoroutines: runtime.NumGoroutine() - tok.goroutines,
	}
	if pm.UnjoinedGoroutines < 0 {
		pm.UnjoinedGoroutines = 0
	}

	if AllocatorAvailable() {
		pm.DeltaS = end.CurrentOutstanding - tok.baseline.CurrentOutstanding
		pm.AllocatedInRegion = end.TotalAllocated - tok.baseline.TotalAllocated
		// Approximates the peak auxiliary space as
		// max(peak_outstanding1, current_outstanding1) - current_outstanding0.
		peakDuringRegion := end.PeakOutstanding
		if uint64(end.CurrentOutstanding) > peakDuringRegion {
			peakDuringRegion = uint64(end.CurrentOutstanding)
		}
		pm.MaxAuxS = int64(peakDuringRegion) - tok.baseline.CurrentOutstanding
	}

	return pm
}
