package metrics

import "fmt"

// EpochReport summarises one completed epoch. Losses and accuracies are
// measured over the full sets after the last update of the epoch.
type EpochReport struct {
	Epoch         int
	TrainLoss     float64
	TrainAccuracy float64
	TestLoss      float64
	TestAccuracy  float64
	HasTest       bool
	// Window covers the batches run during the epoch.
	Window Snapshot
}

// String renders the report as key=value pairs.
func (r EpochReport) String() string {
	s := fmt.Sprintf("epoch=%d train_loss=%.4f train_acc=%.4f", r.Epoch, r.TrainLoss, r.TrainAccuracy)
	if r.HasTest {
		s += fmt.Sprintf(" test_loss=%.4f test_acc=%.4f", r.TestLoss, r.TestAccuracy)
	}
	return s + fmt.Sprintf(" batches=%d samples_per_sec=%.1f batch_loss=%.4f",
		r.Window.Steps, r.Window.SamplesPerSec, r.Window.MeanLoss)
}
