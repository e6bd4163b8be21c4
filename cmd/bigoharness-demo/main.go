// Command bigoharness-demo runs one analysis outside of `go test`, so the report
// schema and the tint-formatted log lines can be eyeballed without a test harness.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/bigoharness/bigo"
	"github.com/lmittmann/tint"
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

// quadraticScan deliberately does O(n^2) work against a sorted slice, to demonstrate
// a ComplexityRegression against an O(n log n) declaration.
func quadraticScan(n uint64) (any, error) {
	data := make([]int, n)
	for i := range data {
		data[i] = int(n) - i
	}
	sort.Sort(sort.Reverse(sort.IntSlice(data)))

	count := 0
	for i := range data {
		for j := range data {
			if data[i] == data[j] {
				count++
			}
		}
	}
	return count, nil
}

func main() {
	slog.Info("running complexity analysis", "subject", "quadraticScan")

	report, err := bigo.AnalyzeRegularAlgorithm("quadratic-scan-demo").
		FirstPass(1000, quadraticScan).
		SecondPass(2000, quadraticScan).
		TimeMeasurements(bigo.ONLogN).
		SpaceMeasurements(bigo.ON).
		Run()

	if report != nil {
		fmt.Println(report.String())
	}

	var regression *bigo.ComplexityRegression
	switch e := err.(type) {
	case nil:
		slog.Info("analysis passed")
	case *bigo.ComplexityRegression:
		regression = e
		slog.Warn("analysis found a complexity regression", "detail", e.Error())
	default:
		slog.Error("analysis did not complete", "err", e)
		os.Exit(1)
	}

	if regression != nil {
		os.Exit(1)
	}
}
