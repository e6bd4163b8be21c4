// Package bigo enforces Big-O complexity bounds as part of a normal test run.
//
// # Overview
//
// bigo measures a subject closure's time and space consumption at two input sizes,
// classifies the observed growth into one of a closed set of complexity classes, and
// compares it against a declared maximum. A subject that grows faster than declared
// fails the test; one that grows no faster passes, regardless of its raw speed.
//
// # Quick Start
//
//	report, err := bigo.AnalyzeRegularAlgorithm("binary search").
//		FirstPass(16384, func(n uint64) (any, error) { return search(makeSorted(n)), nil }).
//		SecondPass(32768, func(n uint64) (any, error) { return search(makeSorted(n)), nil }).
//		TimeMeasurements(bigo.OLogN).
//		Run()
//
//	bigo.RequirePass(t, report, err)
//
// # Regular, iterator and CRUD subjects
//
// Three builder families share the same measurement core:
//
//   - AnalyzeRegularAlgorithm: one call per pass, no amortization.
//   - AnalyzeIteratorAlgorithm: same shape, plus Repetitions(r) to declare a
//     per-call repetition count; the classifier sees amortized per-call figures.
//   - AnalyzeCRUDAlgorithm: a four-way fan-out over Create, Read, Update and Delete
//     against a shared resident-set size, with Read and Update amortized by a
//     shared repetition count and Create/Delete measured directly against n.
//
// # Measurement
//
// Each pass is bracketed by a measurement region: a monotonic clock reading and an
// allocator snapshot are taken at entry and exit, and the deltas become one
// PassMeasurement. The allocator snapshot comes from internal/statsprobe, which polls
// runtime.MemStats from a background goroutine rather than intercepting individual
// allocations — Go offers no equivalent of a replaceable global allocator, so this is
// the closest analogue available without instrumenting the Go runtime itself. When
// the probe is disabled (BIGOHARNESS_NO_ALLOC_PROBE), every space-dimension result is
// reported as Unavailable instead of guessed.
//
// # Classification
//
// ClassifyGrowth compares the two passes' (n, y) pairs against the expected growth
// ratio of each class in the closed enumeration — O(1), O(log n), O(n), O(n·log n),
// O(n²), O(n³), O(2ⁿ), and a catch-all worse-than-exponential class — under a
// configurable tolerance (10% default, or 25%), and returns the class whose interval
// contains the observed ratio. It is a pure function: the same inputs always produce
// the same class.
//
// # Retries
//
// A process-wide lock serializes analyses, since the allocator counters are only
// interpretable while a single analysis owns them. If a pass's time dimension alone
// fails classification, the runner re-runs the shorter-duration pass — the one more
// exposed to fixed-overhead noise as a fraction of its own elapsed time — up to a
// configurable retry budget, adapting its repetition count each time. Space failures
// are never retried: allocation counts are deterministic given the subject.
//
// # Reporting
//
// Run returns a *Report (or *CRUDReport) alongside an error. Its String method
// renders the stable text schema: a header, a per-pass block, one line per measured
// dimension, and a notes block covering retries and leak suspicions. RequirePass logs
// that report and fails the test on a ComplexityRegression.
package bigo
