package bigo

import (
	"os"
	"time"

	"github.com/bigoharness/bigo/internal/statsprobe"
)

// defaultProbe is the process-wide Allocator Probe, installed for process lifetime
// with no teardown. It is disabled via the BIGOHARNESS_NO_ALLOC_PROBE environment
// variable.
var defaultProbe = newDefaultProbe()

func newDefaultProbe() *statsprobe.Probe {
	enabled := os.Getenv("BIGOHARNESS_NO_ALLOC_PROBE") == ""
	p := statsprobe.New(enabled, 20*time.Microsecond)
	p.Start()
	return p
}

// AllocatorAvailable reports whether space measurements are backed by real counters.
// When false, every space-dimension AnalysisResult is reported as Unavailable rather
// than guessed.
func AllocatorAvailable() bool {
	return defaultProbe.Available()
}
