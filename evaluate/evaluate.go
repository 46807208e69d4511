// Package evaluate scores a set of predicted instruction-start addresses
// against a superset sample's ground-truth labels: precision, recall, and
// F1, propagating NaN rather than substituting zero on empty denominators.
package evaluate

import (
	"math"

	"github.com/tanglebyte/supersetds/superset"
)

// Result holds the address-set comparison and derived metrics for one
// evaluation.
type Result struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
}

// GroundTruth returns every address in s labeled Code.
func GroundTruth(s *superset.Sample) map[uint32]struct{} {
	truth := make(map[uint32]struct{})
	for _, e := range s.Entries {
		if e.Label != nil && *e.Label == superset.Code {
			truth[e.Addr] = struct{}{}
		}
	}
	return truth
}

// Evaluate compares predicted against the ground truth in s.
func Evaluate(s *superset.Sample, predicted map[uint32]struct{}) Result {
	truth := GroundTruth(s)

	var tp, fp int
	for addr := range predicted {
		if _, ok := truth[addr]; ok {
			tp++
		} else {
			fp++
		}
	}
	fn := 0
	for addr := range truth {
		if _, ok := predicted[addr]; !ok {
			fn++
		}
	}

	precision := divide(float64(tp), float64(len(predicted)))
	recall := divide(float64(tp), float64(len(truth)))
	f1 := divide(2*precision*recall, precision+recall)

	return Result{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
		Precision:      precision,
		Recall:         recall,
		F1:             f1,
	}
}

// divide returns a/b, or NaN when b is zero: the contract is to propagate
// NaN through to the caller, never to substitute a default.
func divide(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}
