package metrics

import "time"

// Window accumulates timing and loss stats across multiple batches.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float64
	lossSum  float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
	w.lossSum += loss * float64(batchSize)
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.steps, Samples: w.samples}
	total := w.data + w.compute
	if total > 0 {
		snap.SamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	if w.samples > 0 {
		snap.MeanLoss = w.lossSum / float64(w.samples)
	}
	snap.LastLoss = w.lastLoss

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps         int
	Samples       int
	SamplesPerSec float64
	AvgDataMS     float64
	AvgComputeMS  float64
	LastLoss      float64
	// MeanLoss is the sample-weighted mean of the recorded batch losses.
	MeanLoss float64
}
