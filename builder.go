package bigo

import "context"

// ValueRepresentation hints to the report renderer how a custom measurement's raw
// float64 reading should be displayed.
type ValueRepresentation int

const (
	// RepresentationCount displays the value as a plain integer count.
	RepresentationCount ValueRepresentation = iota
	// RepresentationBytes displays the value as a byte size.
	RepresentationBytes
	// RepresentationDuration displays the value as a duration in microseconds.
	RepresentationDuration
	// RepresentationRatio displays the value as a dimensionless ratio.
	RepresentationRatio
)

func (r ValueRepresentation) String() string {
	switch r {
	case RepresentationCount:
		return "count"
	case RepresentationBytes:
		return "bytes"
	case RepresentationDuration:
		return "duration"
	case RepresentationRatio:
		return "ratio"
	default:
		return "count"
	}
}

// AnalysisBuilder is the chainable configuration surface shared by
// AnalyzeRegularAlgorithm and AnalyzeIteratorAlgorithm. The only
// difference between a regular and an iterator analysis is whether Repetitions is
// ever called; a regular analysis simply leaves it at its zero value, which
// PassMeasurement.perCall treats as "do not amortize".
//
// Configuration errors (a missing pass, n2 <= n1, an unrecognized tolerance) are
// captured on first occurrence and surfaced by Run, rather than panicking out of a
// chained call.
type AnalysisBuilder struct {
	cfg analysisConfig
	err error
}

// AnalyzeRegularAlgorithm starts a builder for a subject measured directly against
// two input sizes, with no per-call amortization.
func AnalyzeRegularAlgorithm(name string) *AnalysisBuilder {
	return &AnalysisBuilder{cfg: defaultAnalysisConfig(name)}
}

// AnalyzeIteratorAlgorithm starts a builder for a subject that performs r calls
// against a constant-size set; declare r with Repetitions so the classifier sees
// amortized per-call figures instead of raw per-pass totals.
func AnalyzeIteratorAlgorithm(name string) *AnalysisBuilder {
	return &AnalysisBuilder{cfg: defaultAnalysisConfig(name)}
}

// defaultAnalysisConfig sets the documented defaults: tolerance from
// defaultToleranceFromEnv (10% unless BIGOHARNESS_TOLERANCE is "25"), two reattempts,
// and space/auxiliary-space declared maxima left unconstrained (WorseThanExponential
// never fails) until the caller opts in via SpaceMeasurements/
// AuxiliarySpaceMeasurements. Only the time dimension is mandatory.
func defaultAnalysisConfig(name string) analysisConfig {
	return analysisConfig{
		name:          name,
		tolerance:     defaultToleranceFromEnv(),
		maxReattempts: 2,
		timeMax:       Indeterminate,
		spaceMax:      WorseThanExponential,
		auxSpaceMax:   WorseThanExponential,
	}
}

func (b *AnalysisBuilder) fail(err error) *AnalysisBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Warmup registers a closure run once before pass1, unmeasured.
func (b *AnalysisBuilder) Warmup(fn func() error) *AnalysisBuilder {
	b.cfg.warmup = fn
	return b
}

// Reset registers a closure run before every pass (including retries), unmeasured but
// observed for the leak heuristic.
func (b *AnalysisBuilder) Reset(fn func() error) *AnalysisBuilder {
	b.cfg.reset = fn
	return b
}

// MaxReattemptsPerPass sets the retry budget for time-flake recovery. Default 2.
func (b *AnalysisBuilder) MaxReattemptsPerPass(k int) *AnalysisBuilder {
	if k < 0 {
		return b.fail(&ConfigError{Reason: "max reattempts per pass cannot be negative"})
	}
	b.cfg.maxReattempts = k
	return b
}

// FirstPass registers the subject closure and input size for pass 1.
func (b *AnalysisBuilder) FirstPass(n uint64, fn func(n uint64) (any, error)) *AnalysisBuilder {
	b.cfg.pass1.n = n
	b.cfg.pass1.run = fn
	return b
}

// SecondPass registers the subject closure and input size for pass 2. n must exceed
// the first pass's n.
func (b *AnalysisBuilder) SecondPass(n uint64, fn func(n uint64) (any, error)) *AnalysisBuilder {
	b.cfg.pass2.n = n
	b.cfg.pass2.run = fn
	return b
}

// FirstPassAssertions registers a post-pass correctness check for pass 1, run
// unmeasured after exit.
func (b *AnalysisBuilder) FirstPassAssertions(fn func(data any) error) *AnalysisBuilder {
	b.cfg.pass1.assert = fn
	return b
}

// SecondPassAssertions registers a post-pass correctness check for pass 2.
func (b *AnalysisBuilder) SecondPassAssertions(fn func(data any) error) *AnalysisBuilder {
	b.cfg.pass2.assert = fn
	return b
}

// Repetitions declares the iterator-mode repetition count r, applied identically to
// both passes so the amortized per-call cost is comparable.
// Leave unset (or call with 0) for a regular, non-amortized analysis.
func (b *AnalysisBuilder) Repetitions(r uint64) *AnalysisBuilder {
	b.cfg.pass1.repetitions = r
	b.cfg.pass2.repetitions = r
	return b
}

// TimeMeasurements declares the maximum acceptable time complexity class.
func (b *AnalysisBuilder) TimeMeasurements(class ComplexityClass) *AnalysisBuilder {
	b.cfg.timeMax = class
	return b
}

// SpaceMeasurements declares the maximum acceptable resident-space complexity class.
func (b *AnalysisBuilder) SpaceMeasurements(class ComplexityClass) *AnalysisBuilder {
	b.cfg.spaceMax = class
	return b
}

// AuxiliarySpaceMeasurements declares the maximum acceptable auxiliary (transient
// peak) space complexity class.
func (b *AnalysisBuilder) AuxiliarySpaceMeasurements(class ComplexityClass) *AnalysisBuilder {
	b.cfg.auxSpaceMax = class
	return b
}

// Tolerance sets the classifier's slack around each class boundary: 10 or 25 percent,
// any other value is rejected at Run.
func (b *AnalysisBuilder) Tolerance(percent int) *AnalysisBuilder {
	tau, err := ParseTolerance(percent)
	if err != nil {
		return b.fail(err)
	}
	b.cfg.tolerance = tau
	return b
}

// TreatLeaksAsFatal escalates a LeakSuspicion from a report note to a hard failure.
func (b *AnalysisBuilder) TreatLeaksAsFatal(fatal bool) *AnalysisBuilder {
	b.cfg.treatLeaksFatal = fatal
	return b
}

// AddCustomMeasurement registers an additional scalar dimension extracted from each
// pass's returned data, classified the same way as time or space.
func (b *AnalysisBuilder) AddCustomMeasurement(label string, declaredMax ComplexityClass, description string, representation ValueRepresentation, extractor func(data any) (float64, error)) *AnalysisBuilder {
	b.cfg.custom = append(b.cfg.custom, customSpec{
		label:          label,
		declaredMax:    declaredMax,
		description:    description,
		representation: representation,
		extract:        extractor,
	})
	return b
}

// AddCustomMeasurementWithAverages is AddCustomMeasurement plus a WithAverages flag
// recorded in the report's CustomMeta. Report.String does not render custom values
// or per-call averages of them.
func (b *AnalysisBuilder) AddCustomMeasurementWithAverages(label string, declaredMax ComplexityClass, description string, representation ValueRepresentation, extractor func(data any) (float64, error)) *AnalysisBuilder {
	b.cfg.custom = append(b.cfg.custom, customSpec{
		label:          label,
		declaredMax:    declaredMax,
		description:    description,
		representation: representation,
		withAverages:   true,
		extract:        extractor,
	})
	return b
}

// Run executes the configured analysis and returns the composite result. A non-nil
// error is either a configuration problem caught before any subject invocation, a
// SubjectFailure, or a ComplexityRegression aggregating every Fail verdict. It is
// equivalent to RunWithContext(context.Background()).
func (b *AnalysisBuilder) Run() (*Report, error) {
	return b.RunWithContext(context.Background())
}

// RunWithContext is Run, but aborts before starting the next pass or retry once ctx is
// done, returning ctx.Err(). The lock is still released via the deferred guard inside
// runAnalysis, and whatever pass already completed is simply discarded.
func (b *AnalysisBuilder) RunWithContext(ctx context.Context) (*Report, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.cfg.timeMax.IsIndeterminate() {
		return nil, &ConfigError{Reason: "time_measurements must be declared before Run"}
	}
	return runAnalysis(ctx, b.cfg)
}

// CRUDBuilder configures an AnalyzeCRUDAlgorithm call: the shared dataset sizes and
// repetition count, plus one CRUDOperation per phase.
type CRUDBuilder struct {
	spec CRUDSpec
	err  error
}

// AnalyzeCRUDAlgorithm starts a builder for the four-way Create/Read/Update/Delete
// harness.
func AnalyzeCRUDAlgorithm(name string) *CRUDBuilder {
	return &CRUDBuilder{spec: CRUDSpec{
		Name:          name,
		Tolerance:     defaultToleranceFromEnv(),
		MaxReattempts: 2,
		Create:        CRUDOperation{TimeMax: Indeterminate, SpaceMax: WorseThanExponential, AuxSpaceMax: WorseThanExponential},
		Read:          CRUDOperation{TimeMax: Indeterminate, SpaceMax: WorseThanExponential, AuxSpaceMax: WorseThanExponential, Amortized: true},
		Update:        CRUDOperation{TimeMax: Indeterminate, SpaceMax: WorseThanExponential, AuxSpaceMax: WorseThanExponential, Amortized: true},
		Delete:        CRUDOperation{TimeMax: Indeterminate, SpaceMax: WorseThanExponential, AuxSpaceMax: WorseThanExponential},
	}}
}

func (b *CRUDBuilder) fail(err error) *CRUDBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// DatasetSizes declares the resident set sizes for pass1 and pass2; n2 must be at
// least 2*n1.
func (b *CRUDBuilder) DatasetSizes(n1, n2 uint64) *CRUDBuilder {
	b.spec.N1 = n1
	b.spec.N2 = n2
	return b
}

// RepetitionsPerPhase declares r, the shared Read/Update repetition count.
func (b *CRUDBuilder) RepetitionsPerPhase(r uint64) *CRUDBuilder {
	b.spec.R = r
	return b
}

// Warmup registers a closure run once before pass1, unmeasured.
func (b *CRUDBuilder) Warmup(fn func() error) *CRUDBuilder {
	b.spec.Warmup = fn
	return b
}

// Reset registers a closure run before every pass to empty the resident set.
func (b *CRUDBuilder) Reset(fn func() error) *CRUDBuilder {
	b.spec.Reset = fn
	return b
}

// Create configures the Create phase: subject and declared maximum
// time/space/auxiliary-space classes. CRUDBuilder has no setter for a phase's
// post-pass assertion (CRUDOperation.Assert).
func (b *CRUDBuilder) Create(fn func(n uint64) (any, error), timeMax, spaceMax, auxMax ComplexityClass) *CRUDBuilder {
	b.spec.Create.Run = fn
	b.spec.Create.TimeMax, b.spec.Create.SpaceMax, b.spec.Create.AuxSpaceMax = timeMax, spaceMax, auxMax
	return b
}

// Read configures the Read phase, amortized by RepetitionsPerPhase.
func (b *CRUDBuilder) Read(fn func(n uint64) (any, error), timeMax, spaceMax, auxMax ComplexityClass) *CRUDBuilder {
	b.spec.Read.Run = fn
	b.spec.Read.TimeMax, b.spec.Read.SpaceMax, b.spec.Read.AuxSpaceMax = timeMax, spaceMax, auxMax
	return b
}

// Update configures the Update phase, amortized by RepetitionsPerPhase.
func (b *CRUDBuilder) Update(fn func(n uint64) (any, error), timeMax, spaceMax, auxMax ComplexityClass) *CRUDBuilder {
	b.spec.Update.Run = fn
	b.spec.Update.TimeMax, b.spec.Update.SpaceMax, b.spec.Update.AuxSpaceMax = timeMax, spaceMax, auxMax
	return b
}

// Delete configures the Delete phase.
func (b *CRUDBuilder) Delete(fn func(n uint64) (any, error), timeMax, spaceMax, auxMax ComplexityClass) *CRUDBuilder {
	b.spec.Delete.Run = fn
	b.spec.Delete.TimeMax, b.spec.Delete.SpaceMax, b.spec.Delete.AuxSpaceMax = timeMax, spaceMax, auxMax
	return b
}

// MaxReattemptsPerPass sets the retry budget for the whole create/read/update/delete
// sequence. Default 2.
func (b *CRUDBuilder) MaxReattemptsPerPass(k int) *CRUDBuilder {
	if k < 0 {
		return b.fail(&ConfigError{Reason: "max reattempts per pass cannot be negative"})
	}
	b.spec.MaxReattempts = k
	return b
}

// Tolerance sets the classifier's slack around each class boundary: 10 or 25 percent.
func (b *CRUDBuilder) Tolerance(percent int) *CRUDBuilder {
	tau, err := ParseTolerance(percent)
	if err != nil {
		return b.fail(err)
	}
	b.spec.Tolerance = tau
	return b
}

// TreatLeaksAsFatal escalates a LeakSuspicion to a hard failure.
func (b *CRUDBuilder) TreatLeaksAsFatal(fatal bool) *CRUDBuilder {
	b.spec.TreatLeaksFatal = fatal
	return b
}

// Run executes the CRUD harness and returns the composite four-operation result. It is
// equivalent to RunWithContext(context.Background()).
func (b *CRUDBuilder) Run() (*CRUDReport, error) {
	return b.RunWithContext(context.Background())
}

// RunWithContext is Run, but aborts before starting the next pass or retry once ctx is
// done, returning ctx.Err().
func (b *CRUDBuilder) RunWithContext(ctx context.Context) (*CRUDReport, error) {
	if b.err != nil {
		return nil, b.err
	}
	return runCRUDAnalysis(ctx, b.spec)
}
