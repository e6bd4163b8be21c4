package bigo

import (
	"testing"
	"time"
)

func TestComplexityClass_StringRoundTrip(t *testing.T) {
	cases := map[ComplexityClass]string{
		Indeterminate:        "Indeterminate",
		O1:                   "O(1)",
		OLogN:                "O(log n)",
		ON:                   "O(n)",
		ONLogN:               "O(n·log n)",
		ON2:                  "O(n²)",
		ON3:                  "O(n³)",
		O2N:                  "O(2ⁿ)",
		WorseThanExponential: "worse than O(2ⁿ)",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(class), got, want)
		}
	}
}

func TestComplexityClass_BetterOrEqual(t *testing.T) {
	if !O1.betterOrEqual(ON) {
		t.Error("O(1) should be better than or equal to O(n)")
	}
	if ON2.betterOrEqual(ON) {
		t.Error("O(n^2) should not be better than or equal to O(n)")
	}
	if !ON.betterOrEqual(ON) {
		t.Error("a class should be better than or equal to itself")
	}
}

func TestComplexityClass_ClassesBetterBy(t *testing.T) {
	if got := O1.classesBetterBy(ON2); got != 4 {
		t.Errorf("O(1) vs O(n^2): got %d classes better, want 4", got)
	}
	if got := ON2.classesBetterBy(O1); got != -4 {
		t.Errorf("O(n^2) vs O(1): got %d, want -4", got)
	}
	if got := ON.classesBetterBy(ON); got != 0 {
		t.Errorf("a class vs itself: got %d, want 0", got)
	}
}

func TestComplexityClass_Advice(t *testing.T) {
	if O1.Advice() == "" {
		t.Error("expected O(1) to carry advice text")
	}
	if ON.Advice() != "" {
		t.Errorf("expected no advice for an ordinary class, got %q", ON.Advice())
	}
}

func TestPassMeasurement_PerCallAmortization(t *testing.T) {
	pm := PassMeasurement{DeltaT: 100 * time.Microsecond, DeltaS: 1000, MaxAuxS: 2000, Repetitions: 10}
	if got := pm.TimePerCall(); got != 10 {
		t.Errorf("TimePerCall() = %v, want 10", got)
	}
	if got := pm.SpacePerCall(); got != 100 {
		t.Errorf("SpacePerCall() = %v, want 100", got)
	}
	if got := pm.AuxSpacePerCall(); got != 200 {
		t.Errorf("AuxSpacePerCall() = %v, want 200", got)
	}
}

func TestPassMeasurement_PerCallWithoutRepetitionsIsUnchanged(t *testing.T) {
	pm := PassMeasurement{DeltaT: 50 * time.Microsecond}
	if got := pm.TimePerCall(); got != 50 {
		t.Errorf("TimePerCall() = %v, want 50 when Repetitions is zero", got)
	}
}

func TestNewPassPair_Valid(t *testing.T) {
	first := PassMeasurement{N: 100}
	second := PassMeasurement{N: 200}
	pair, err := NewPassPair(first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.First.N != 100 || pair.Second.N != 200 {
		t.Errorf("unexpected pair contents: %+v", pair)
	}
}

func TestNewPassPair_RejectsNonIncreasingN(t *testing.T) {
	first := PassMeasurement{N: 200}
	second := PassMeasurement{N: 100}
	if _, err := NewPassPair(first, second); err == nil {
		t.Error("expected a ConfigError when n2 <= n1")
	}
}

func TestVerdict_String(t *testing.T) {
	cases := map[Verdict]string{
		Pass:        "Pass",
		Fail:        "Fail",
		WayBelow:    "WayBelow",
		Unavailable: "Unavailable",
	}
	for v, want := range cases {
		if got := v.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(v), got, want)
		}
	}
}
