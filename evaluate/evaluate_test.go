package evaluate

import (
	"math"
	"testing"

	"github.com/tanglebyte/supersetds/superset"
)

func sampleWithLabels(labels ...superset.Label) *superset.Sample {
	s := &superset.Sample{}
	for i, l := range labels {
		lbl := l
		s.Entries = append(s.Entries, superset.Entry{Addr: uint32(i), Label: &lbl})
	}
	return s
}

func TestEvaluateBasic(t *testing.T) {
	s := sampleWithLabels(superset.Code, superset.Code, superset.NotCode, superset.Code)
	predicted := map[uint32]struct{}{0: {}, 2: {}, 3: {}}

	r := Evaluate(s, predicted)
	if r.TruePositives != 2 || r.FalsePositives != 1 || r.FalseNegatives != 1 {
		t.Fatalf("counts = %+v", r)
	}
	if math.Abs(r.Precision-2.0/3.0) > 1e-9 {
		t.Errorf("precision = %v, want 2/3", r.Precision)
	}
	if math.Abs(r.Recall-2.0/3.0) > 1e-9 {
		t.Errorf("recall = %v, want 2/3", r.Recall)
	}
	if math.Abs(r.F1-2.0/3.0) > 1e-9 {
		t.Errorf("f1 = %v, want 2/3", r.F1)
	}
}

func TestEvaluatePropagatesNaNOnEmptyPrediction(t *testing.T) {
	s := sampleWithLabels(superset.Code)
	r := Evaluate(s, map[uint32]struct{}{})
	if !math.IsNaN(r.Precision) {
		t.Errorf("precision = %v, want NaN", r.Precision)
	}
	if r.Recall != 0 {
		t.Errorf("recall = %v, want 0 (0 true positives / 1 truth)", r.Recall)
	}
	if !math.IsNaN(r.F1) {
		t.Errorf("f1 = %v, want NaN", r.F1)
	}
}

func TestEvaluatePropagatesNaNOnEmptyTruth(t *testing.T) {
	s := sampleWithLabels(superset.NotCode)
	r := Evaluate(s, map[uint32]struct{}{0: {}})
	if !math.IsNaN(r.Recall) {
		t.Errorf("recall = %v, want NaN", r.Recall)
	}
}
