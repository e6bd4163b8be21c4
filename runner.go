package bigo

import (
	"context"
	"fmt"

	"github.com/bigoharness/bigo/internal/statsprobe"
)

// passFunc invokes the subject at input size n and returns whatever data the subject
// produced, for the post-pass assertion and any custom measurement extractors to
// inspect. It must not retain data past the call that consumes it.
type passFunc func(n uint64) (data any, err error)

// assertFunc is a user-supplied post-pass correctness check, run unmeasured after
// exit.
type assertFunc func(data any) error

// customExtractor pulls one float64 reading out of a pass's returned data, for a
// custom measurement dimension.
type customExtractor func(data any) (float64, error)

// customSpec describes one custom measurement dimension registered on a builder.
type customSpec struct {
	label          string
	declaredMax    ComplexityClass
	description    string
	representation ValueRepresentation
	withAverages   bool
	extract        customExtractor
}

// singlePassConfig is everything the runner needs to execute one pass.
type singlePassConfig struct {
	n           uint64
	repetitions uint64
	run         passFunc
	assert      assertFunc
}

// analysisConfig is the fully-resolved, validated configuration for one call to
// runAnalysis. AnalysisBuilder (builder.go) assembles one and does not expose it; the
// CRUD harness (crud.go) uses CRUDSpec instead.
type analysisConfig struct {
	name            string
	warmup          func() error
	reset           func() error
	pass1           singlePassConfig
	pass2           singlePassConfig
	tolerance       Tolerance
	timeMax         ComplexityClass
	spaceMax        ComplexityClass
	auxSpaceMax     ComplexityClass
	maxReattempts   int
	treatLeaksFatal bool
	custom          []customSpec
}

// Report is the result of one completed analysis: the two raw pass measurements, the
// per-dimension verdicts, and any notes accumulated along the way (retries, leak
// suspicions, indeterminate dimensions). Rendering it to text is report.go's job.
type Report struct {
	Name         string
	Pass1        PassMeasurement
	Pass2        PassMeasurement
	Results      map[string]AnalysisResult
	CustomMeta   map[string]CustomMeasurementMeta
	Notes        []string
	RetryHistory *RetryHistory
}

// CustomMeasurementMeta is the display metadata for one custom measurement
// dimension, carried alongside its AnalysisResult so report.go can render it the way
// the builder described it.
type CustomMeasurementMeta struct {
	Description    string
	Representation ValueRepresentation
	WithAverages   bool
}

// iterationAdaptFactors drives a shrink/grow/hold cycle across retries: a retried pass
// doesn't just repeat the exact same repetition count and hope for a quieter
// scheduler, it nudges it, which tends to dodge whatever caused the one-off
// contention in the first place.
var iterationAdaptFactors = []int{10, 8, 6, 4, 2}

// adaptRepetitions returns the repetition count to use for the given retry attempt
// (0 = first attempt, unmodified). Attempts beyond the first cycle through shrinking
// the baseline count by 1/factor, growing it by 1/factor, and holding it unchanged.
func adaptRepetitions(attempt int, repetitions uint64) uint64 {
	if attempt == 0 || repetitions == 0 {
		return repetitions
	}
	factor := iterationAdaptFactors[(attempt-1)%len(iterationAdaptFactors)]
	delta := repetitions / uint64(factor)
	switch (attempt - 1) % 3 {
	case 0:
		if repetitions > delta {
			return repetitions - delta
		}
		return repetitions
	case 1:
		return repetitions + delta
	default:
		return repetitions
	}
}

func validateAnalysisConfig(cfg analysisConfig) error {
	if cfg.pass1.run == nil || cfg.pass2.run == nil {
		return &ConfigError{Reason: "both first_pass and second_pass subjects must be set"}
	}
	if cfg.pass2.n <= cfg.pass1.n {
		return &ConfigError{Reason: fmt.Sprintf("second pass n (%d) must exceed first pass n (%d)", cfg.pass2.n, cfg.pass1.n)}
	}
	if cfg.tolerance != Tolerance10 && cfg.tolerance != Tolerance25 {
		return &ConfigError{Reason: "tolerance must be Tolerance10 or Tolerance25"}
	}
	if cfg.maxReattempts < 0 {
		return &ConfigError{Reason: "max reattempts per pass cannot be negative"}
	}
	return nil
}

// ctxErr reports ctx's cancellation error without blocking, or nil if ctx is nil or
// still live. Checked at each point where runAnalysis/runCRUDAnalysis is about to start
// a pass or a retry, since the subject closure is the only place arbitrary time can be
// spent and the harness cannot interrupt it once it's running.
func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// runAnalysis executes the Pass Runner state machine: acquire the process-wide
// lock, run warmup, read the allocator baseline, run pass 1 and pass 2, classify, and
// — if the time dimension alone failed — retry the statistically noisier pass up to
// the configured budget before giving up and reporting a failure. ctx is checked
// before each pass and each retry; a canceled ctx aborts the analysis early with the
// lock still released via the deferred guard.
func runAnalysis(ctx context.Context, cfg analysisConfig) (*Report, error) {
	if err := validateAnalysisConfig(cfg); err != nil {
		return nil, err
	}

	guard, err := globalAnalysisLock.acquire(cfg.name)
	if err != nil {
		return nil, err
	}
	defer guard.release()

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	report := &Report{Name: cfg.name, RetryHistory: newRetryHistory(cfg.maxReattempts + 1)}

	if cfg.warmup != nil {
		if err := cfg.warmup(); err != nil {
			return nil, &SubjectFailure{Pass: 0, Reason: "warmup failed", Err: err}
		}
	}

	baseline := defaultProbe.Snapshot()

	pm1, custom1, err := runPass(cfg, 1, cfg.pass1, 0)
	if err != nil {
		return nil, err
	}
	noteUnjoinedGoroutines(&report.Notes, 1, pm1)

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	pm2, custom2, err := runPass(cfg, 2, cfg.pass2, 0)
	if err != nil {
		return nil, err
	}
	noteUnjoinedGoroutines(&report.Notes, 2, pm2)

	if leak := checkLeak(baseline, defaultProbe.Snapshot(), cfg.tolerance); leak != nil {
		if cfg.treatLeaksFatal {
			return nil, leak
		}
		report.Notes = append(report.Notes, leak.Error())
	}

	results := classifyAll(cfg, pm1, pm2, custom1, custom2)

	retries := 0
	for retries < cfg.maxReattempts {
		if !retryEligible(results) {
			break
		}
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		retries++

		retryTarget := 2
		if pm1.DeltaT < pm2.DeltaT {
			retryTarget = 1
		}

		var elapsed PassMeasurement
		if retryTarget == 1 {
			pm1, custom1, err = runPass(cfg, 1, cfg.pass1, retries)
			elapsed = pm1
		} else {
			pm2, custom2, err = runPass(cfg, 2, cfg.pass2, retries)
			elapsed = pm2
		}
		if err != nil {
			return nil, err
		}
		noteUnjoinedGoroutines(&report.Notes, retryTarget, elapsed)

		report.RetryHistory.record(RetryAttempt{
			Attempt:     retries,
			RetriedPass: retryTarget,
			Elapsed:     elapsed.DeltaT,
			Reason:      "time verdict failed while space held; re-running the shorter-duration pass",
		})
		report.Notes = append(report.Notes, fmt.Sprintf(
			"attempt %d: retried pass %d after a time-only classification failure", retries, retryTarget))

		results = classifyAll(cfg, pm1, pm2, custom1, custom2)
	}

	pair, err := NewPassPair(pm1, pm2)
	if err != nil {
		return nil, err
	}
	report.Pass1 = pair.First
	report.Pass2 = pair.Second
	report.Results = results
	if len(cfg.custom) > 0 {
		report.CustomMeta = make(map[string]CustomMeasurementMeta, len(cfg.custom))
		for _, c := range cfg.custom {
			report.CustomMeta[c.label] = CustomMeasurementMeta{
				Description:    c.description,
				Representation: c.representation,
				WithAverages:   c.withAverages,
			}
		}
	}

	if regressionErr := aggregateFailures(results); regressionErr != nil {
		return report, regressionErr
	}
	return report, nil
}

// noteUnjoinedGoroutines appends a report note when pm shows worker goroutines spawned
// by the subject that had not joined by the time the pass returned: the sampler cannot
// attribute outstanding memory to this pass alone once that happens.
func noteUnjoinedGoroutines(notes *[]string, passIndex int, pm PassMeasurement) {
	if pm.UnjoinedGoroutines <= 0 {
		return
	}
	*notes = append(*notes, fmt.Sprintf(
		"pass %d: %d goroutine(s) did not join before the subject returned; space attribution may be inaccurate",
		passIndex, pm.UnjoinedGoroutines))
}

// retryEligible reports whether results justifies a retry: the time dimension failed
// and nothing space-related did.
func retryEligible(results map[string]AnalysisResult) bool {
	timeRes, ok := results["time"]
	if !ok || timeRes.Verdict != Fail {
		return false
	}
	for dim, res := range results {
		if dim == "time" {
			continue
		}
		if res.Verdict == Fail {
			return false
		}
	}
	return true
}

// runPass executes one pass: reset (unmeasured), enter, invoke the subject, exit,
// assert (unmeasured), and extract any custom measurements before the pass's data
// goes out of scope.
func runPass(cfg analysisConfig, passIndex int, spec singlePassConfig, attempt int) (PassMeasurement, map[string]float64, error) {
	if cfg.reset != nil {
		if err := cfg.reset(); err != nil {
			return PassMeasurement{}, nil, &SubjectFailure{Pass: passIndex, Reason: "reset failed", Err: err}
		}
	}

	reps := adaptRepetitions(attempt, spec.repetitions)

	tok := enter()
	data, subjectErr := spec.run(spec.n)
	pm := exit(&tok, spec.n, passIndex, reps)

	if subjectErr != nil {
		return pm, nil, &SubjectFailure{Pass: passIndex, Reason: "subject returned an error", Err: subjectErr}
	}

	if spec.assert != nil {
		if err := spec.assert(data); err != nil {
			return pm, nil, &SubjectFailure{Pass: passIndex, Reason: "post-pass assertion failed", Err: err}
		}
	}

	custom := make(map[string]float64, len(cfg.custom))
	for _, c := range cfg.custom {
		v, err := c.extract(data)
		if err != nil {
			return pm, nil, &SubjectFailure{Pass: passIndex, Reason: fmt.Sprintf("custom measurement %q failed", c.label), Err: err}
		}
		custom[c.label] = v
	}

	return pm, custom, nil
}

// leakToleranceFloor is the minimum byte tolerance applied when the baseline
// outstanding count is itself near zero, so a tiny absolute wobble around an empty
// heap is never mistaken for a leak.
const leakToleranceFloor = 4096

// checkLeak compares the allocator's outstanding count against the baseline read
// right after warmup. A process that has drifted by more than tau of its baseline (or the
// floor, whichever is larger) is flagged, non-fatally unless the caller opted into
// TreatLeaksAsFatal.
func checkLeak(baseline, current statsprobe.Snapshot, tau Tolerance) *LeakSuspicion {
	if !AllocatorAvailable() {
		return nil
	}
	toleranceBytes := int64(float64(abs64(baseline.CurrentOutstanding)) * float64(tau))
	if toleranceBytes < leakToleranceFloor {
		toleranceBytes = leakToleranceFloor
	}
	diff := current.CurrentOutstanding - baseline.CurrentOutstanding
	if diff < 0 {
		diff = -diff
	}
	if diff > toleranceBytes {
		return &LeakSuspicion{
			BaselineBytes:  baseline.CurrentOutstanding,
			ObservedBytes:  current.CurrentOutstanding,
			ToleranceBytes: toleranceBytes,
		}
	}
	return nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// classifyAll classifies every dimension of an analysis: time always, space and
// auxiliary space unless the allocator probe is disabled, and every custom
// measurement the builder registered.
func classifyAll(cfg analysisConfig, pm1, pm2 PassMeasurement, custom1, custom2 map[string]float64) map[string]AnalysisResult {
	results := make(map[string]AnalysisResult, 3+len(cfg.custom))

	results["time"] = classifyDimension("time", cfg.tolerance, cfg.timeMax, pm1, pm2,
		PassMeasurement.TimePerCall)

	if pm1.SpaceUnavailable || pm2.SpaceUnavailable {
		results["space"] = AnalysisResult{Dimension: "space", DeclaredMax: cfg.spaceMax, Verdict: Unavailable}
		results["aux_space"] = AnalysisResult{Dimension: "aux_space", DeclaredMax: cfg.auxSpaceMax, Verdict: Unavailable}
	} else {
		results["space"] = classifyDimension("space", cfg.tolerance, cfg.spaceMax, pm1, pm2,
			PassMeasurement.SpacePerCall)
		results["aux_space"] = classifyDimension("aux_space", cfg.tolerance, cfg.auxSpaceMax, pm1, pm2,
			PassMeasurement.AuxSpacePerCall)
	}

	for _, c := range cfg.custom {
		v1, ok1 := custom1[c.label]
		v2, ok2 := custom2[c.label]
		if !ok1 || !ok2 {
			results[c.label] = AnalysisResult{Dimension: c.label, DeclaredMax: c.declaredMax, Verdict: Unavailable}
			continue
		}
		observed := ClassifyGrowth(float64(pm1.N), float64(pm2.N), v1, v2, cfg.tolerance)
		results[c.label] = buildResult(c.label, observed, c.declaredMax)
	}

	return results
}

func classifyDimension(label string, tau Tolerance, declared ComplexityClass, pm1, pm2 PassMeasurement, valFn func(PassMeasurement) float64) AnalysisResult {
	observed := ClassifyGrowth(float64(pm1.N), float64(pm2.N), valFn(pm1), valFn(pm2), tau)
	return buildResult(label, observed, declared)
}

// buildResult turns an observed class and a declared maximum into a verdict:
// Fail if observed exceeds declared, WayBelow if observed is two or more classes
// better, Pass otherwise. An indeterminate observation is never a hard failure.
func buildResult(label string, observed, declared ComplexityClass) AnalysisResult {
	res := AnalysisResult{Dimension: label, ObservedClass: observed, DeclaredMax: declared}

	if observed.IsIndeterminate() {
		res.Verdict = Pass
		if !declared.IsIndeterminate() {
			res.Notes = append(res.Notes, (&MeasurementIndeterminate{
				Dimension: label,
				Reason:    "classifier could not resolve a class from these measurements",
			}).Error())
		}
		return res
	}

	switch {
	case observed.classesBetterBy(declared) >= 2:
		res.Verdict = WayBelow
	case observed.betterOrEqual(declared):
		res.Verdict = Pass
	default:
		res.Verdict = Fail
	}
	return res
}

// aggregateFailures collects every Fail verdict in results into a single
// ComplexityRegression, or returns nil if nothing failed.
func aggregateFailures(results map[string]AnalysisResult) error {
	var failures []DimensionFailure
	for _, res := range results {
		if res.Verdict == Fail {
			failures = append(failures, DimensionFailure{
				Dimension:     res.Dimension,
				ObservedClass: res.ObservedClass,
				DeclaredMax:   res.DeclaredMax,
			})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &ComplexityRegression{Failures: failures}
}
