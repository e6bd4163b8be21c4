package bigo

import (
	"context"
	"fmt"
)

// CRUDOperation is one of the four phases of a CRUD harness run: the subject closure
// for that phase, an optional post-phase assertion, and the declared maximum classes
// for its three dimensions.
type CRUDOperation struct {
	Run           passFunc
	Assert        assertFunc
	TimeMax       ComplexityClass
	SpaceMax      ComplexityClass
	AuxSpaceMax   ComplexityClass
	// Amortized marks Read and Update, whose measurements divide by the shared
	// repetition count R before classification. Create and Delete leave it false:
	// their cost scales with N itself, not with a per-call repetition.
	Amortized bool
}

// CRUDSpec configures one call to runCRUDAnalysis: the shared dataset sizes and
// repetition count, the four operations, and the usual tolerance/retry knobs shared
// with a regular analysis.
type CRUDSpec struct {
	Name            string
	N1, N2          uint64
	R               uint64
	Warmup          func() error
	Reset           func() error
	Create          CRUDOperation
	Read            CRUDOperation
	Update          CRUDOperation
	Delete          CRUDOperation
	Tolerance       Tolerance
	MaxReattempts   int
	TreatLeaksFatal bool
}

// CRUDResult is one operation's outcome: its three dimension verdicts plus the raw
// pass measurements that produced them.
type CRUDResult struct {
	Operation string
	Pass1     PassMeasurement
	Pass2     PassMeasurement
	Results   map[string]AnalysisResult
}

// CRUDReport is the outcome of a full CRUD harness run: one CRUDResult per operation
// under a shared prelude.
type CRUDReport struct {
	Name         string
	Create       CRUDResult
	Read         CRUDResult
	Update       CRUDResult
	Delete       CRUDResult
	Notes        []string
	RetryHistory *RetryHistory
}

// crudOps returns the four operations in execution order: a pass must create its
// resident set before reading or updating it, and delete it only at the end.
func (s CRUDSpec) crudOps() [4]struct {
	name string
	op   CRUDOperation
} {
	return [4]struct {
		name string
		op   CRUDOperation
	}{
		{"create", s.Create},
		{"read", s.Read},
		{"update", s.Update},
		{"delete", s.Delete},
	}
}

func validateCRUDSpec(spec CRUDSpec) error {
	if spec.N1 == 0 {
		return &ConfigError{Reason: "CRUD harness requires n1 > 0"}
	}
	if spec.N2 < 2*spec.N1 {
		return &ConfigError{Reason: fmt.Sprintf("CRUD harness requires n2 >= 2*n1, got n1=%d n2=%d", spec.N1, spec.N2)}
	}
	if spec.R == 0 {
		return &ConfigError{Reason: "CRUD harness requires r > 0 (read/update repetition count)"}
	}
	if spec.Create.Run == nil || spec.Read.Run == nil || spec.Update.Run == nil || spec.Delete.Run == nil {
		return &ConfigError{Reason: "CRUD harness requires create, read, update and delete subjects"}
	}
	if spec.Tolerance != Tolerance10 && spec.Tolerance != Tolerance25 {
		return &ConfigError{Reason: "tolerance must be Tolerance10 or Tolerance25"}
	}
	if spec.MaxReattempts < 0 {
		return &ConfigError{Reason: "max reattempts per pass cannot be negative"}
	}
	return nil
}

// runCRUDAnalysis executes the CRUD harness: acquire the lock once, then for
// each of the two passes run create, read, update and delete in that order against a
// dataset of size n, amortizing read and update by r. A time-only failure across the
// whole sequence retries the entire two-pass run with adapted repetition counts; any
// space failure aborts immediately. ctx is checked before each pass and each retry.
func runCRUDAnalysis(ctx context.Context, spec CRUDSpec) (*CRUDReport, error) {
	if err := validateCRUDSpec(spec); err != nil {
		return nil, err
	}

	guard, err := globalAnalysisLock.acquire(spec.Name)
	if err != nil {
		return nil, err
	}
	defer guard.release()

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	report := &CRUDReport{Name: spec.Name, RetryHistory: newRetryHistory(spec.MaxReattempts + 1)}

	if spec.Warmup != nil {
		if err := spec.Warmup(); err != nil {
			return nil, &SubjectFailure{Pass: 0, Reason: "warmup failed", Err: err}
		}
	}

	baseline := defaultProbe.Snapshot()

	var pass1, pass2 map[string]PassMeasurement
	var results map[string]map[string]AnalysisResult

	attempt := 0
	for {
		pass1, err = runCRUDPass(spec, 1, spec.N1, attempt)
		if err != nil {
			return nil, err
		}
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		pass2, err = runCRUDPass(spec, 2, spec.N2, attempt)
		if err != nil {
			return nil, err
		}
		if attempt > 0 {
			elapsed := pass1["create"].DeltaT + pass1["read"].DeltaT + pass1["update"].DeltaT + pass1["delete"].DeltaT +
				pass2["create"].DeltaT + pass2["read"].DeltaT + pass2["update"].DeltaT + pass2["delete"].DeltaT
			report.RetryHistory.record(RetryAttempt{
				Attempt:     attempt,
				RetriedPass: 0,
				Elapsed:     elapsed,
				Reason:      "time verdict failed in one or more CRUD operations; re-running both passes with adapted repetitions",
			})
		}

		for _, entry := range spec.crudOps() {
			if _, err := NewPassPair(pass1[entry.name], pass2[entry.name]); err != nil {
				return nil, err
			}
			noteUnjoinedGoroutines(&report.Notes, 1, pass1[entry.name])
			noteUnjoinedGoroutines(&report.Notes, 2, pass2[entry.name])
		}

		if leak := checkLeak(baseline, defaultProbe.Snapshot(), spec.Tolerance); leak != nil {
			if spec.TreatLeaksFatal {
				return nil, leak
			}
			report.Notes = append(report.Notes, leak.Error())
		}

		results = classifyCRUD(spec, pass1, pass2)

		if !crudRetryEligible(results) || attempt >= spec.MaxReattempts {
			break
		}
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}

		attempt++
		report.Notes = append(report.Notes, fmt.Sprintf(
			"attempt %d: retried full create/read/update/delete sequence after a time-only classification failure", attempt))

		if spec.Reset != nil {
			if err := spec.Reset(); err != nil {
				return nil, &SubjectFailure{Pass: 0, Reason: "reset before retry failed", Err: err}
			}
		}
	}

	report.Create = buildCRUDResult("create", pass1["create"], pass2["create"], results["create"])
	report.Read = buildCRUDResult("read", pass1["read"], pass2["read"], results["read"])
	report.Update = buildCRUDResult("update", pass1["update"], pass2["update"], results["update"])
	report.Delete = buildCRUDResult("delete", pass1["delete"], pass2["delete"], results["delete"])

	if regressionErr := aggregateCRUDFailures(results); regressionErr != nil {
		return report, regressionErr
	}
	return report, nil
}

func buildCRUDResult(name string, pm1, pm2 PassMeasurement, results map[string]AnalysisResult) CRUDResult {
	return CRUDResult{Operation: name, Pass1: pm1, Pass2: pm2, Results: results}
}

// runCRUDPass runs create, read, update and delete in order against a resident set
// sized n, returning each operation's measurement keyed by name. Read and Update
// carry the (possibly attempt-adapted) repetition count r; Create and Delete carry
// zero, so PassMeasurement.perCall leaves them unamortized.
func runCRUDPass(spec CRUDSpec, passIndex int, n uint64, attempt int) (map[string]PassMeasurement, error) {
	if spec.Reset != nil {
		if err := spec.Reset(); err != nil {
			return nil, &SubjectFailure{Pass: passIndex, Reason: "reset failed", Err: err}
		}
	}

	r := adaptRepetitions(attempt, spec.R)
	out := make(map[string]PassMeasurement, 4)

	for _, entry := range spec.crudOps() {
		reps := uint64(0)
		if entry.op.Amortized {
			reps = r
		}

		tok := enter()
		data, subjectErr := entry.op.Run(n)
		pm := exit(&tok, n, passIndex, reps)
		out[entry.name] = pm

		if subjectErr != nil {
			return out, &SubjectFailure{Pass: passIndex, Reason: fmt.Sprintf("%s subject returned an error", entry.name), Err: subjectErr}
		}
		if entry.op.Assert != nil {
			if err := entry.op.Assert(data); err != nil {
				return out, &SubjectFailure{Pass: passIndex, Reason: fmt.Sprintf("%s post-pass assertion failed", entry.name), Err: err}
			}
		}
	}

	return out, nil
}

func classifyCRUD(spec CRUDSpec, pass1, pass2 map[string]PassMeasurement) map[string]map[string]AnalysisResult {
	results := make(map[string]map[string]AnalysisResult, 4)
	for _, entry := range spec.crudOps() {
		pm1, pm2 := pass1[entry.name], pass2[entry.name]
		dims := make(map[string]AnalysisResult, 3)
		dims["time"] = classifyDimension("time", spec.Tolerance, entry.op.TimeMax, pm1, pm2, PassMeasurement.TimePerCall)
		if pm1.SpaceUnavailable || pm2.SpaceUnavailable {
			dims["space"] = AnalysisResult{Dimension: "space", DeclaredMax: entry.op.SpaceMax, Verdict: Unavailable}
			dims["aux_space"] = AnalysisResult{Dimension: "aux_space", DeclaredMax: entry.op.AuxSpaceMax, Verdict: Unavailable}
		} else {
			dims["space"] = classifyDimension("space", spec.Tolerance, entry.op.SpaceMax, pm1, pm2, PassMeasurement.SpacePerCall)
			dims["aux_space"] = classifyDimension("aux_space", spec.Tolerance, entry.op.AuxSpaceMax, pm1, pm2, PassMeasurement.AuxSpacePerCall)
		}
		results[entry.name] = dims
	}
	return results
}

// crudRetryEligible mirrors retryEligible across all four operations: a retry is
// allowed only when every failure across the whole sequence is a time failure.
func crudRetryEligible(results map[string]map[string]AnalysisResult) bool {
	anyTimeFail := false
	for _, dims := range results {
		for dim, res := range dims {
			if res.Verdict != Fail {
				continue
			}
			if dim == "time" {
				anyTimeFail = true
				continue
			}
			return false
		}
	}
	return anyTimeFail
}

func aggregateCRUDFailures(results map[string]map[string]AnalysisResult) error {
	var failures []DimensionFailure
	for op, dims := range results {
		for _, res := range dims {
			if res.Verdict == Fail {
				failures = append(failures, DimensionFailure{
					Dimension:     op + "." + res.Dimension,
					ObservedClass: res.ObservedClass,
					DeclaredMax:   res.DeclaredMax,
				})
			}
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &ComplexityRegression{Failures: failures}
}
