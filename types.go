package bigo

import (
	"fmt"
	"time"
)

// ComplexityClass is a tagged value from the closed enumeration of growth rates this
// harness can recognize. The zero value is O1; Indeterminate is -1. The constants are declared in increasing growth order so that plain
// integer comparison (<, >, <=) implements the total order the assertion layer
// relies on: a verdict is Pass iff the observed class is no greater than declared.
type ComplexityClass int

const (
	// Indeterminate marks a classification that could not be resolved (zero or
	// non-finite baseline measurement). It sorts below every real class so an
	// accidental comparison fails safe, but callers should check IsIndeterminate
	// before comparing rather than relying on that ordering.
	Indeterminate ComplexityClass = iota - 1

	O1             // O(1)
	OLogN          // O(log n)
	ON             // O(n)
	ONLogN         // O(n·log n)
	ON2            // O(n²)
	ON3            // O(n³)
	O2N            // O(2ⁿ)
	WorseThanExponential
)

// classOrder lists the real (non-Indeterminate) classes in ascending growth order. It
// backs the expected-ratio table and the interval scan used by the classifier.
var classOrder = []ComplexityClass{O1, OLogN, ON, ONLogN, ON2, ON3, O2N, WorseThanExponential}

func (c ComplexityClass) String() string {
	switch c {
	case Indeterminate:
		return "Indeterminate"
	case O1:
		return "O(1)"
	case OLogN:
		return "O(log n)"
	case ON:
		return "O(n)"
	case ONLogN:
		return "O(n·log n)"
	case ON2:
		return "O(n²)"
	case ON3:
		return "O(n³)"
	case O2N:
		return "O(2ⁿ)"
	case WorseThanExponential:
		return "worse than O(2ⁿ)"
	default:
		return fmt.Sprintf("ComplexityClass(%d)", int(c))
	}
}

// Advice returns a short, human-facing hint for a class, pairing an unusual result
// with the most common real-world cause. The report renderer does not print it.
func (c ComplexityClass) Advice() string {
	switch c {
	case O1:
		return "constant -- aren't the machines idle? too many threads? too little RAM?"
	case WorseThanExponential:
		return "really bad algorithm, or CPU cache effects are dominating the measurement"
	default:
		return ""
	}
}

// IsIndeterminate reports whether c is the Indeterminate sentinel.
func (c ComplexityClass) IsIndeterminate() bool {
	return c == Indeterminate
}

// betterOrEqual reports whether c grows no faster than other, per the class ordering.
// Both classes must be real (non-Indeterminate); callers are expected to have already
// handled Indeterminate via MeasurementIndeterminate.
func (c ComplexityClass) betterOrEqual(other ComplexityClass) bool {
	return c <= other
}

// classesBetterBy returns how many classes better than other c is (0 if c is not
// strictly better, negative if c is worse). Used to detect the WayBelow hint: observed
// more than one class below declared.
func (c ComplexityClass) classesBetterBy(other ComplexityClass) int {
	return int(other) - int(c)
}

// Verdict is the outcome of comparing an observed class against a declared maximum.
type Verdict int

const (
	// Pass means the observed class grows no faster than the declared maximum.
	Pass Verdict = iota
	// Fail means the observed class exceeds the declared maximum.
	Fail
	// WayBelow is a report-only hint: the observed class is two or more classes
	// better than declared, suggesting the developer could tighten the bound.
	WayBelow
	// Unavailable marks a dimension that could not be measured at all (e.g. the
	// allocator probe is disabled via BIGOHARNESS_NO_ALLOC_PROBE for a space dimension).
	Unavailable
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "Pass"
	case Fail:
		return "Fail"
	case WayBelow:
		return "WayBelow"
	case Unavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

// PassMeasurement is a single pass's measurement of a subject at input size N.
type PassMeasurement struct {
	// N is the declared input size for this pass.
	N uint64
	// PassIndex is monotonically increasing across the passes of one analysis (1, 2, …).
	PassIndex int
	// DeltaT is elapsed wall time for the region; TimePerCall reports it in microseconds.
	DeltaT time.Duration
	// DeltaS is the net change in process-outstanding bytes at region exit minus entry.
	// May be negative.
	DeltaS int64
	// MaxAuxS is the peak outstanding bytes above the region's entry baseline,
	// approximated from the probe's process-wide peak watermark at exit (or the
	// current outstanding count, if larger). The watermark is never reset, so a peak
	// reached before the region opened also counts.
	MaxAuxS int64
	// AllocatedInRegion is the total bytes allocated (not netted against frees) while
	// the region was open; always at least as large as max(DeltaS, 0).
	AllocatedInRegion uint64
	// Repetitions is the optional amortization factor r (CRUD / iterator mode). Zero
	// means "not iterator-shaped"; amortized figures divide by Repetitions when > 0.
	Repetitions uint64
	// SpaceUnavailable is true when the allocator probe was disabled via
	// BIGOHARNESS_NO_ALLOC_PROBE; in
	// that case DeltaS/MaxAuxS/AllocatedInRegion are always zero and must not be used
	// for classification.
	SpaceUnavailable bool
	// UnjoinedGoroutines is the number of goroutines still running at region exit that
	// were not running at region entry. A positive value means the subject spawned
	// worker goroutines that did not join before returning, so the sampler cannot
	// reliably attribute outstanding memory to this pass alone.
	UnjoinedGoroutines int
}

// perCall returns the amortized value of v for this pass: v/r when Repetitions > 0,
// v unchanged otherwise.
func (p PassMeasurement) perCall(v float64) float64 {
	if p.Repetitions > 1 {
		return v / float64(p.Repetitions)
	}
	return v
}

// TimePerCall returns DeltaT amortized by Repetitions, in float microseconds.
func (p PassMeasurement) TimePerCall() float64 {
	return p.perCall(float64(p.DeltaT.Microseconds()))
}

// SpacePerCall returns DeltaS amortized by Repetitions.
func (p PassMeasurement) SpacePerCall() float64 {
	return p.perCall(float64(p.DeltaS))
}

// AuxSpacePerCall returns MaxAuxS amortized by Repetitions.
func (p PassMeasurement) AuxSpacePerCall() float64 {
	return p.perCall(float64(p.MaxAuxS))
}

// PassPair is two pass measurements with n2 > n1. Constructing one validates that
// requirement.
type PassPair struct {
	First  PassMeasurement
	Second PassMeasurement
}

// NewPassPair validates n2 > n1 and returns a PassPair, or a ConfigError.
func NewPassPair(first, second PassMeasurement) (PassPair, error) {
	if second.N <= first.N {
		return PassPair{}, &ConfigError{Reason: fmt.Sprintf("pass pair requires n2 > n1, got n1=%d n2=%d", first.N, second.N)}
	}
	return PassPair{First: first, Second: second}, nil
}

// AnalysisResult is the outcome for one measured dimension (time, resident space,
// auxiliary space, or a custom counter).
type AnalysisResult struct {
	Dimension      string
	ObservedClass  ComplexityClass
	DeclaredMax    ComplexityClass
	Verdict        Verdict
	Notes          []string
}
