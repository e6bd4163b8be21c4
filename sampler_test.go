package bigo

import (
	"testing"
	"time"
)

func TestEnterExit_RecordsNonNegativeElapsed(t *testing.T) {
	tok := enter()
	pm := exit(&tok, 100, 1, 0)

	if pm.N != 100 {
		t.Fatalf("N = %d, want 100", pm.N)
	}
	if pm.PassIndex != 1 {
		t.Fatalf("PassIndex = %d, want 1", pm.PassIndex)
	}
	if pm.DeltaT < 0 {
		t.Fatalf("DeltaT = %v, want non-negative", pm.DeltaT)
	}
}

func TestEnterExit_DoubleExitPanics(t *testing.T) {
	tok := enter()
	exit(&tok, 1, 1, 0)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("second exit did not panic")
		}
	}()
	exit(&tok, 1, 1, 0)
}

func TestEnterExit_RepetitionsCarriedThrough(t *testing.T) {
	tok := enter()
	pm := exit(&tok, 50, 2, 25)

	if pm.Repetitions != 25 {
		t.Fatalf("Repetitions = %d, want 25", pm.Repetitions)
	}
}

func TestEnterExit_SpaceUnavailableMatchesProbe(t *testing.T) {
	tok := enter()
	pm := exit(&tok, 1, 1, 0)

	if pm.SpaceUnavailable == AllocatorAvailable() {
		t.Fatalf("SpaceUnavailable = %v, want %v", pm.SpaceUnavailable, !AllocatorAvailable())
	}

	if !AllocatorAvailable() {
		if pm.DeltaS != 0 || pm.MaxAuxS != 0 || pm.AllocatedInRegion != 0 {
			t.Fatalf("disabled probe produced non-zero space fields: %+v", pm)
		}
	}
}

func TestEnterExit_UnjoinedGoroutineIsDetected(t *testing.T) {
	tok := enter()

	stop := make(chan struct{})
	started := make(chan struct{})
	go func() {
		close(started)
		<-stop
	}()
	<-started
	defer close(stop)

	pm := exit(&tok, 1, 1, 0)

	if pm.UnjoinedGoroutines < 1 {
		t.Fatalf("UnjoinedGoroutines = %d, want at least 1", pm.UnjoinedGoroutines)
	}
}

func TestEnterExit_NoUnjoinedGoroutinesWhenNoneSpawned(t *testing.T) {
	tok := enter()
	time.Sleep(time.Millisecond)
	pm := exit(&tok, 1, 1, 0)

	if pm.UnjoinedGoroutines != 0 {
		t.Fatalf("UnjoinedGoroutines = %d, want 0", pm.UnjoinedGoroutines)
	}
}

func TestEnterExit_AllocatedInRegionAtLeastDeltaS(t *testing.T) {
	if !AllocatorAvailable() {
		t.Skip("allocator probe disabled in this environment")
	}

	tok := enter()
	data := make([][]byte, 0, 1024)
	for i := 0; i < 1024; i++ {
		data = append(data, make([]byte, 1024))
	}
	pm := exit(&tok, 1024, 1, 0)
	_ = data

	if pm.DeltaS > 0 && pm.AllocatedInRegion < uint64(pm.DeltaS) {
		t.Fatalf("AllocatedInRegion (%d) < DeltaS (%d)", pm.AllocatedInRegion, pm.DeltaS)
	}
}
