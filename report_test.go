package bigo

import (
	"strings"
	"testing"
	"time"
)

func sampleReport() *Report {
	return &Report{
		Name:  "sample-analysis",
		Pass1: PassMeasurement{N: 100, PassIndex: 1, DeltaT: 10 * time.Microsecond, DeltaS: 128, MaxAuxS: 256},
		Pass2: PassMeasurement{N: 200, PassIndex: 2, DeltaT: 20 * time.Microsecond, DeltaS: 256, MaxAuxS: 512},
		Results: map[string]AnalysisResult{
			"time":      {Dimension: "time", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
			"space":     {Dimension: "space", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
			"aux_space": {Dimension: "aux_space", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
		},
		RetryHistory: newRetryHistory(4),
	}
}

func TestReport_StringIncludesHeaderAndName(t *testing.T) {
	r := sampleReport()
	out := r.String()

	if !strings.Contains(out, "sample-analysis") {
		t.Errorf("report text missing name:\n%s", out)
	}
	if !strings.Contains(out, "=== bigo analysis:") {
		t.Errorf("report text missing header line:\n%s", out)
	}
}

func TestReport_StringIncludesEveryDimension(t *testing.T) {
	r := sampleReport()
	out := r.String()

	for _, dim := range []string{"time", "space", "aux_space"} {
		if !strings.Contains(out, dim) {
			t.Errorf("report text missing dimension %q:\n%s", dim, out)
		}
	}
}

func TestReport_StringOmitsNotesBlockWhenEmpty(t *testing.T) {
	r := sampleReport()
	out := r.String()

	if strings.Contains(out, "notes:") {
		t.Errorf("report text has notes block with nothing to report:\n%s", out)
	}
}

func TestReport_StringIncludesRetryNote(t *testing.T) {
	r := sampleReport()
	r.Notes = append(r.Notes, "attempt 1: retried pass 1 after a time-only classification failure")
	r.RetryHistory.record(RetryAttempt{Attempt: 1, RetriedPass: 1, Elapsed: 5 * time.Microsecond, Reason: "flake"})

	out := r.String()
	if !strings.Contains(out, "notes:") {
		t.Fatalf("report text missing notes block:\n%s", out)
	}
	if !strings.Contains(out, "time lost to flakiness") {
		t.Errorf("report text missing flakiness annotation:\n%s", out)
	}
}

func TestReport_StringRendersCustomMeasurement(t *testing.T) {
	r := sampleReport()
	r.Results["allocations"] = AnalysisResult{Dimension: "allocations", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass}
	r.CustomMeta = map[string]CustomMeasurementMeta{
		"allocations": {Description: "heap allocation count", Representation: RepresentationCount},
	}

	out := r.String()
	if !strings.Contains(out, "allocations") {
		t.Errorf("report text missing custom dimension:\n%s", out)
	}
	if !strings.Contains(out, "heap allocation count") {
		t.Errorf("report text missing custom measurement description:\n%s", out)
	}
}

func TestReport_StringMarksSpaceUnavailable(t *testing.T) {
	r := sampleReport()
	r.Pass1.SpaceUnavailable = true
	r.Pass2.SpaceUnavailable = true

	out := r.String()
	if !strings.Contains(out, "unavailable") {
		t.Errorf("report text missing unavailable marker:\n%s", out)
	}
}

func TestCRUDReport_StringIncludesAllFourOperations(t *testing.T) {
	dims := map[string]AnalysisResult{
		"time":      {Dimension: "time", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
		"space":     {Dimension: "space", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
		"aux_space": {Dimension: "aux_space", ObservedClass: ON, DeclaredMax: ON, Verdict: Pass},
	}
	report := &CRUDReport{
		Name:         "crud-sample",
		Create:       CRUDResult{Operation: "create", Results: dims},
		Read:         CRUDResult{Operation: "read", Results: dims},
		Update:       CRUDResult{Operation: "update", Results: dims},
		Delete:       CRUDResult{Operation: "delete", Results: dims},
		RetryHistory: newRetryHistory(4),
	}

	out := report.String()
	for _, op := range []string{"create", "read", "update", "delete"} {
		if !strings.Contains(out, op) {
			t.Errorf("CRUD report text missing operation %q:\n%s", op, out)
		}
	}
}

func TestReportSinkFromEnv_DefaultsToStdout(t *testing.T) {
	t.Setenv("BIGOHARNESS_REPORT_SINK", "")
	if got := reportSinkFromEnv(); got != SinkStdout {
		t.Errorf("reportSinkFromEnv() = %v, want SinkStdout", got)
	}
}

func TestReportSinkFromEnv_RecognizesDisabled(t *testing.T) {
	t.Setenv("BIGOHARNESS_REPORT_SINK", "disabled")
	if got := reportSinkFromEnv(); got != SinkDisabled {
		t.Errorf("reportSinkFromEnv() = %v, want SinkDisabled", got)
	}
}

func TestReportSinkFromEnv_RecognizesStderr(t *testing.T) {
	t.Setenv("BIGOHARNESS_REPORT_SINK", "stderr")
	if got := reportSinkFromEnv(); got != SinkStderr {
		t.Errorf("reportSinkFromEnv() = %v, want SinkStderr", got)
	}
}

func TestReport_WriteIsNoOpWhenSinkDisabled(t *testing.T) {
	t.Setenv("BIGOHARNESS_REPORT_SINK", "disabled")
	r := sampleReport()
	if err := r.Write(); err != nil {
		t.Errorf("Write() with disabled sink returned error: %v", err)
	}
}
