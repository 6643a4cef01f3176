package metrics

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8)
	snap := w.Snapshot()
	if math.Abs(snap.SamplesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
	if w.samples != 0 || w.steps != 0 || w.lossSum != 0 {
		t.Fatalf("window was not reset")
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
	if math.Abs(snap.MeanLoss-1.0) > 1e-12 {
		t.Fatalf("expected mean loss 1.0, got %.4f", snap.MeanLoss)
	}
	if snap.Steps != 2 || snap.Samples != 128 {
		t.Fatalf("unexpected counts steps=%d samples=%d", snap.Steps, snap.Samples)
	}
}

func TestWindowMeanLossWeightsRemainderBatch(t *testing.T) {
	var w Window
	w.Record(3, time.Millisecond, time.Millisecond, 1)
	w.Record(1, time.Millisecond, time.Millisecond, 5)
	if got := w.Snapshot().MeanLoss; math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected weighted mean 2, got %.4f", got)
	}
	if empty := w.Snapshot(); empty.MeanLoss != 0 || empty.SamplesPerSec != 0 {
		t.Fatalf("empty window produced %+v", empty)
	}
}

func TestEpochReportString(t *testing.T) {
	r := EpochReport{Epoch: 3, TrainLoss: 0.5, TrainAccuracy: 0.9}
	if s := r.String(); strings.Contains(s, "test_loss") || !strings.HasPrefix(s, "epoch=3 train_loss=0.5000") {
		t.Fatalf("unexpected report line %q", s)
	}
	r.HasTest = true
	r.TestAccuracy = 0.75
	if s := r.String(); !strings.Contains(s, "test_acc=0.7500") {
		t.Fatalf("unexpected report line %q", s)
	}
}
