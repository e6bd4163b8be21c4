package bigo

import (
	"fmt"
	"os"
	"strings"
)

// ReportSink selects where a rendered report is written.
type ReportSink int

const (
	SinkStdout ReportSink = iota
	SinkStderr
	SinkDisabled
)

// reportSinkFromEnv resolves BIGOHARNESS_REPORT_SINK ("stdout", "stderr",
// "disabled"), defaulting to stdout for anything unset or unrecognized.
func reportSinkFromEnv() ReportSink {
	switch strings.ToLower(os.Getenv("BIGOHARNESS_REPORT_SINK")) {
	case "stderr":
		return SinkStderr
	case "disabled", "none", "off":
		return SinkDisabled
	default:
		return SinkStdout
	}
}

func (s ReportSink) writer() *os.File {
	switch s {
	case SinkStderr:
		return os.Stderr
	case SinkStdout:
		return os.Stdout
	default:
		return nil
	}
}

// String renders the stable text report schema: a header line identifying the
// algorithm, a per-pass block, per-dimension verdict lines, and a notes block.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== bigo analysis: %s ===\n", r.Name)

	writePassBlock(&b, "pass1", r.Pass1)
	writePassBlock(&b, "pass2", r.Pass2)

	b.WriteString("\n")
	for _, dim := range []string{"time", "space", "aux_space"} {
		writeResultLine(&b, r.Results[dim])
	}
	for label, res := range r.Results {
		if label == "time" || label == "space" || label == "aux_space" {
			continue
		}
		meta := r.CustomMeta[label]
		writeCustomResultLine(&b, res, meta)
	}

	writeNotes(&b, r.Notes, r.RetryHistory)
	return b.String()
}

// Write renders the report to the sink resolved from BIGOHARNESS_REPORT_SINK. A
// disabled sink is a no-op, not an error.
func (r *Report) Write() error {
	w := reportSinkFromEnv().writer()
	if w == nil {
		return nil
	}
	_, err := fmt.Fprint(w, r.String())
	return err
}

// String renders the CRUD harness's four-operation report.
func (r *CRUDReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== bigo CRUD analysis: %s ===\n", r.Name)

	for _, res := range []CRUDResult{r.Create, r.Read, r.Update, r.Delete} {
		fmt.Fprintf(&b, "\n-- %s --\n", res.Operation)
		writePassBlock(&b, "pass1", res.Pass1)
		writePassBlock(&b, "pass2", res.Pass2)
		for _, dim := range []string{"time", "space", "aux_space"} {
			writeResultLine(&b, res.Results[dim])
		}
	}

	writeNotes(&b, r.Notes, r.RetryHistory)
	return b.String()
}

// Write renders the CRUD report to the sink resolved from BIGOHARNESS_REPORT_SINK.
func (r *CRUDReport) Write() error {
	w := reportSinkFromEnv().writer()
	if w == nil {
		return nil
	}
	_, err := fmt.Fprint(w, r.String())
	return err
}

func writePassBlock(b *strings.Builder, label string, pm PassMeasurement) {
	fmt.Fprintf(b, "  %s: n=%d dt=%s", label, pm.N, pm.DeltaT)
	if pm.SpaceUnavailable {
		fmt.Fprintf(b, " ds=unavailable max_aux_s=unavailable")
	} else {
		fmt.Fprintf(b, " ds=%d max_aux_s=%d", pm.DeltaS, pm.MaxAuxS)
	}
	if pm.Repetitions > 1 {
		fmt.Fprintf(b, " r=%d per_call_t=%.3fus", pm.Repetitions, pm.TimePerCall())
		if !pm.SpaceUnavailable {
			fmt.Fprintf(b, " per_call_s=%.3f", pm.SpacePerCall())
		}
	}
	b.WriteString("\n")
}

func writeResultLine(b *strings.Builder, res AnalysisResult) {
	if res.Dimension == "" {
		return
	}
	fmt.Fprintf(b, "  %-10s observed=%-18s declared_max=%-18s verdict=%s\n",
		res.Dimension, res.ObservedClass, res.DeclaredMax, res.Verdict)
	for _, note := range res.Notes {
		fmt.Fprintf(b, "    note: %s\n", note)
	}
}

func writeCustomResultLine(b *strings.Builder, res AnalysisResult, meta CustomMeasurementMeta) {
	suffix := ""
	if meta.Description != "" {
		suffix = fmt.Sprintf(" (%s, %s)", meta.Description, meta.Representation)
	}
	fmt.Fprintf(b, "  %-10s observed=%-18s declared_max=%-18s verdict=%s%s\n",
		res.Dimension, res.ObservedClass, res.DeclaredMax, res.Verdict, suffix)
	for _, note := range res.Notes {
		fmt.Fprintf(b, "    note: %s\n", note)
	}
}

func writeNotes(b *strings.Builder, notes []string, history *RetryHistory) {
	if len(notes) == 0 && (history == nil || history.Len() == 0) {
		return
	}
	b.WriteString("\nnotes:\n")
	for _, n := range notes {
		fmt.Fprintf(b, "  - %s\n", n)
	}
	if history != nil && history.Len() > 0 {
		fmt.Fprintf(b, "  - time lost to flakiness: %s across %d retr%s\n",
			history.TotalOverhead(), history.Len(), plural(history.Len()))
	}
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
