package bigo

import (
	"math"
	"testing"
)

func TestDefaultToleranceFromEnv(t *testing.T) {
	cases := []struct {
		value string
		want  Tolerance
	}{
		{"", Tolerance10},
		{"10", Tolerance10},
		{"25", Tolerance25},
		{"garbage", Tolerance10},
	}
	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			t.Setenv("BIGOHARNESS_TOLERANCE", c.value)
			if got := defaultToleranceFromEnv(); got != c.want {
				t.Errorf("defaultToleranceFromEnv() with %q = %v, want %v", c.value, got, c.want)
			}
		})
	}
}

func TestParseTolerance(t *testing.T) {
	if tau, err := ParseTolerance(10); err != nil || tau != Tolerance10 {
		t.Errorf("ParseTolerance(10) = %v, %v; want Tolerance10, nil", tau, err)
	}
	if tau, err := ParseTolerance(25); err != nil || tau != Tolerance25 {
		t.Errorf("ParseTolerance(25) = %v, %v; want Tolerance25, nil", tau, err)
	}
	if _, err := ParseTolerance(50); err == nil {
		t.Error("ParseTolerance(50) should be rejected")
	}
}

func TestClassifyGrowth_Constant(t *testing.T) {
	got := ClassifyGrowth(16384, 32768, 100, 101, Tolerance10)
	if got != O1 {
		t.Errorf("constant-time: got %s, want %s", got, O1)
	}
}

func TestClassifyGrowth_Linear(t *testing.T) {
	got := ClassifyGrowth(16384, 32768, 1000, 2000, Tolerance10)
	if got != ON {
		t.Errorf("linear: got %s, want %s", got, ON)
	}
}

func TestClassifyGrowth_Logarithmic(t *testing.T) {
	n1, n2 := 1024.0, 1048576.0 // 2^10, 2^20
	ratio := math.Log2(n2) / math.Log2(n1)
	got := ClassifyGrowth(n1, n2, 100, 100*ratio, Tolerance10)
	if got != OLogN {
		t.Errorf("logarithmic: got %s, want %s", got, OLogN)
	}
}

func TestClassifyGrowth_Quadratic(t *testing.T) {
	// bubble sort of a reversed sequence, n1=1000, n2=2000, ratio~=4.
	got := ClassifyGrowth(1000, 2000, 100, 400, Tolerance10)
	if got != ON2 {
		t.Errorf("quadratic: got %s, want %s", got, ON2)
	}
}

func TestClassifyGrowth_Exponential(t *testing.T) {
	// n1=10, n2=12, expected ratio 2^(12-10) = 4.
	got := ClassifyGrowth(10, 12, 100, 400, Tolerance10)
	if got != O2N {
		t.Errorf("exponential: got %s, want %s", got, O2N)
	}
}

func TestClassifyGrowth_WorseThanExponential(t *testing.T) {
	got := ClassifyGrowth(10, 12, 100, 100000, Tolerance10)
	if got != WorseThanExponential {
		t.Errorf("worse than exponential: got %s, want %s", got, WorseThanExponential)
	}
}

func TestClassifyGrowth_Indeterminate(t *testing.T) {
	cases := []struct {
		name           string
		n1, n2, y1, y2 float64
	}{
		{"equal n", 100, 100, 1, 2},
		{"n2 below n1", 200, 100, 1, 2},
		{"zero n1", 0, 100, 1, 2},
		{"negative y1", 10, 20, -5, 10},
		{"NaN y2", 10, 20, 1, math.NaN()},
		{"Inf y2", 10, 20, 1, math.Inf(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ClassifyGrowth(c.n1, c.n2, c.y1, c.y2, Tolerance10)
			if got != Indeterminate {
				t.Errorf("got %s, want Indeterminate", got)
			}
		})
	}
}

func TestClassifyGrowth_NearZeroBaselineTreatedAsConstant(t *testing.T) {
	got := ClassifyGrowth(100, 200, 1e-12, 1e-12, Tolerance10)
	if got != O1 {
		t.Errorf("got %s, want O1 for two near-zero measurements", got)
	}
}

func TestClassifyGrowth_Deterministic(t *testing.T) {
	a := ClassifyGrowth(1000, 2000, 50, 205, Tolerance10)
	b := ClassifyGrowth(1000, 2000, 50, 205, Tolerance10)
	if a != b {
		t.Errorf("classifier is not a pure function: %s != %s", a, b)
	}
}

func TestClassOrder_TotalOrder(t *testing.T) {
	for i := 0; i < len(classOrder)-1; i++ {
		if classOrder[i] >= classOrder[i+1] {
			t.Errorf("classOrder not strictly increasing at index %d: %v", i, classOrder)
		}
	}
}

func TestToleranceWidensAcceptance(t *testing.T) {
	// n1=16, n2=1024 puts O(n)'s expected ratio (64) and O(log n)'s (2.5) far apart,
	// so a ratio of 50 lands below O(n)'s lower bound at 10% tolerance (57.6) but
	// above it at 25% tolerance (48) — the wider tolerance pulls the boundary down
	// far enough to admit a growth rate a bit slower than exactly linear.
	n1, n2 := 16.0, 1024.0
	y1, y2 := 1.0, 50.0

	if got := ClassifyGrowth(n1, n2, y1, y2, Tolerance10); got == ON {
		t.Fatalf("setup invalid: ratio should already fail the tight tolerance, got %s", got)
	}
	if got := ClassifyGrowth(n1, n2, y1, y2, Tolerance25); got != ON {
		t.Errorf("25%% tolerance: got %s, want %s", got, ON)
	}
}
