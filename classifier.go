package bigo

import (
	"math"
	"os"
	"strconv"
)

// Tolerance is the multiplicative slack applied to class boundary expected-ratios
// when classifying. Only the two discrete values below are recognized; see
// ParseTolerance.
type Tolerance float64

const (
	// Tolerance10 is the default tolerance: 10% slack around each class boundary.
	Tolerance10 Tolerance = 0.10
	// Tolerance25 is the looser alternative: 25% slack, for noisier environments.
	Tolerance25 Tolerance = 0.25
)

// ParseTolerance validates a percentage (10 or 25) against the discrete set this
// harness supports, to keep class interval arithmetic easy to audit. Any other
// value is a ConfigError.
func ParseTolerance(percent int) (Tolerance, error) {
	switch percent {
	case 10:
		return Tolerance10, nil
	case 25:
		return Tolerance25, nil
	default:
		return 0, &ConfigError{Reason: "tolerance must be 10 or 25 percent, got " + strconv.Itoa(percent)}
	}
}

// defaultToleranceFromEnv resolves the BIGOHARNESS_TOLERANCE environment toggle ("10"
// or "25"), falling back to Tolerance10 when unset or unrecognized. It is only
// consulted for a builder's own default; an explicit .Tolerance(percent) call always
// wins, and a bad explicit value is still rejected by ParseTolerance rather than
// silently falling back.
func defaultToleranceFromEnv() Tolerance {
	switch os.Getenv("BIGOHARNESS_TOLERANCE") {
	case "25":
		return Tolerance25
	default:
		return Tolerance10
	}
}

// epsilonGrowth is the absolute floor below which a measurement is too close to zero
// for ratio arithmetic to be meaningful.
const epsilonGrowth = 1e-9

// expectedRatio computes E_c, the expected growth ratio for class c between set sizes
// n1 and n2. WorseThanExponential has no table entry of its own;
// its threshold is defined as the square of O(2ⁿ)'s expected ratio (equivalent to
// O(2^(2(n2-n1)))), so that it remains a reachable observed class rather than an
// upper bound of infinity that nothing could ever cross.
func expectedRatio(c ComplexityClass, n1, n2 float64) float64 {
	switch c {
	case O1:
		return 1
	case OLogN:
		return math.Log2(n2) / math.Log2(n1)
	case ON:
		return n2 / n1
	case ONLogN:
		return (n2 * math.Log2(n2)) / (n1 * math.Log2(n1))
	case ON2:
		return math.Pow(n2/n1, 2)
	case ON3:
		return math.Pow(n2/n1, 3)
	case O2N:
		return math.Pow(2, n2-n1)
	default: // WorseThanExponential
		return math.Pow(expectedRatio(O2N, n1, n2), 2)
	}
}

// classBounds computes, for every real class, the acceptance half-interval
// [lower, upper): lower = E_c*(1-tau), upper = max(E_c*(1+tau), E_{c+1}*(1-tau)), with
// the lowest class's lower bound forced to 0 and the highest class's upper bound
// forced to +Inf. Taking the max keeps a ratio within tau of E_c inside class c even
// when the next class's expected ratio lies close above it; the intervals may then
// overlap, and ClassifyGrowth resolves the overlap in favor of the lower class.
func classBounds(n1, n2 float64, tau Tolerance) (lower, upper []float64) {
	n := len(classOrder)
	expected := make([]float64, n)
	for i, c := range classOrder {
		expected[i] = expectedRatio(c, n1, n2)
	}

	lower = make([]float64, n)
	upper = make([]float64, n)
	shrink := 1 - float64(tau)
	grow := 1 + float64(tau)
	for i := range classOrder {
		if i == 0 {
			lower[i] = 0
		} else {
			lower[i] = expected[i] * shrink
		}
		if i == n-1 {
			upper[i] = math.Inf(1)
		} else {
			upper[i] = math.Max(expected[i]*grow, expected[i+1]*shrink)
		}
	}
	return lower, upper
}

// ClassifyGrowth maps a pair of (n, y) measurements to a ComplexityClass under
// tolerance tau. It is a pure function of its inputs. y1 and y2 must already be
// amortized (divided by r) by the caller when operating in CRUD/iterator mode — see
// PassMeasurement.perCall.
func ClassifyGrowth(n1, n2, y1, y2 float64, tau Tolerance) ComplexityClass {
	if n2 <= n1 || n1 < 1 {
		return Indeterminate
	}
	if !isFiniteNumber(y1) || !isFiniteNumber(y2) || y1 <= 0 {
		return Indeterminate
	}
	if y1 <= epsilonGrowth {
		// Absolute-threshold fallback: a near-zero baseline makes the ratio
		// arithmetic unstable. Treat "still near zero" as O(1); otherwise fall
		// through to the ordinary ratio-based path using the epsilon floor.
		if y2 <= epsilonGrowth {
			return O1
		}
		y1 = epsilonGrowth
	}

	rObs := y2 / y1
	lower, upper := classBounds(n1, n2, tau)

	// Tie-break favors the lower class: scanning in ascending order and returning on
	// first match already implements this, since intervals only overlap where
	// neighbouring classes' expected ratios lie close together (small n).
	for i, c := range classOrder {
		if rObs >= lower[i] && rObs < upper[i] {
			return c
		}
	}
	return WorseThanExponential
}

// isFiniteNumber reports whether f is neither NaN nor +/-Inf.
func isFiniteNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
