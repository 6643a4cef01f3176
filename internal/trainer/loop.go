package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/FenixInShadows/motionlearn/internal/dataset"
	"github.com/FenixInShadows/motionlearn/internal/metrics"
	"github.com/FenixInShadows/motionlearn/internal/model"
)

const defaultLogEvery = 50

// ErrFinished is returned when an epoch is requested from a run that has
// already finished or failed.
var ErrFinished = errors.New("trainer: run is over")

// ErrNoEpochs is returned when an epoch is requested from a Trainer built
// for a preview-only run.
var ErrNoEpochs = errors.New("trainer: run configured without epochs")

// State is the lifecycle stage of a Trainer.
type State int

const (
	StateInitialized State = iota
	StateEpochRunning
	StateEpochComplete
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateEpochRunning:
		return "epoch_running"
	case StateEpochComplete:
		return "epoch_complete"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Train *dataset.Set
	// Test is optional. When set it is evaluated after every epoch.
	Test *dataset.Set

	Hidden       []int
	Classes      int
	BatchSize    int
	LearningRate float64
	Epochs       int
	Seed         int64
	InitScale    float64

	// LogEvery is the batch interval of verbose progress lines.
	LogEvery int
	Verbose  bool
	// Preview is the number of samples whose probabilities are returned at
	// the end of the run.
	Preview int

	// Logger receives progress lines. Nil discards them.
	Logger *log.Logger
	// OnEpoch, if set, is called with every epoch report.
	OnEpoch func(metrics.EpochReport)
}

// Result is the outcome of a finished run.
type Result struct {
	RunID   string
	Host    metrics.Host
	Reports []metrics.EpochReport
	Preview []PreviewRow
}

// Trainer runs mini-batch gradient descent over a training set. It is not
// safe for concurrent use.
type Trainer struct {
	cfg     RunConfig
	runID   string
	logger  *log.Logger
	host    metrics.Host
	model   model.Model
	sampler *dataset.Sampler

	state   State
	epoch   int
	step    int
	reports []metrics.EpochReport
}

// New validates cfg against the data and initializes the network. Every
// data or hyperparameter problem is reported here, before any training.
// With zero epochs the batch size is not checked, since no batch is drawn.
func New(cfg RunConfig) (*Trainer, error) {
	if cfg.Train == nil || cfg.Train.Features == nil {
		return nil, fmt.Errorf("trainer: training set: %w", dataset.ErrEmpty)
	}
	if cfg.Test != nil && cfg.Test.Features == nil {
		return nil, fmt.Errorf("trainer: test set: %w", dataset.ErrEmpty)
	}
	if cfg.Epochs < 0 {
		return nil, fmt.Errorf("trainer: epochs must be >= 0, got %d", cfg.Epochs)
	}
	if cfg.Test != nil && cfg.Test.Dim() != cfg.Train.Dim() {
		return nil, fmt.Errorf("trainer: test set has %d features, training set has %d: %w",
			cfg.Test.Dim(), cfg.Train.Dim(), model.ErrDimension)
	}
	if cfg.Seed == 0 {
		cfg.Seed = dataset.DefaultSeed
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = defaultLogEvery
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	mdl, err := model.NewMLP(model.Config{
		InputDim:     cfg.Train.Dim(),
		Hidden:       cfg.Hidden,
		Classes:      cfg.Classes,
		LearningRate: cfg.LearningRate,
		InitScale:    cfg.InitScale,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if err := cfg.Train.CheckLabels(cfg.Classes); err != nil {
		return nil, fmt.Errorf("trainer: training set: %v: %w", err, model.ErrLabel)
	}
	if cfg.Test != nil {
		if err := cfg.Test.CheckLabels(cfg.Classes); err != nil {
			return nil, fmt.Errorf("trainer: test set: %v: %w", err, model.ErrLabel)
		}
	}
	var sampler *dataset.Sampler
	if cfg.Epochs > 0 {
		sampler, err = dataset.NewSampler(cfg.Train.Len(), cfg.BatchSize, rng)
		if err != nil {
			return nil, fmt.Errorf("trainer: %w", err)
		}
	}

	return &Trainer{
		cfg:     cfg,
		runID:   uuid.NewString(),
		logger:  logger,
		host:    metrics.DetectHost(),
		model:   mdl,
		sampler: sampler,
	}, nil
}

// Run builds a Trainer from cfg and runs it to completion.
func Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return t.Run(ctx)
}

// RunID identifies the run in log lines.
func (t *Trainer) RunID() string { return t.runID }

// State reports the lifecycle stage.
func (t *Trainer) State() State { return t.state }

// Model returns the network being trained.
func (t *Trainer) Model() model.Model { return t.model }

// Host returns the CPU capabilities detected when the Trainer was built.
func (t *Trainer) Host() metrics.Host { return t.host }

// Reports returns the reports of the epochs completed so far.
func (t *Trainer) Reports() []metrics.EpochReport { return t.reports }

// Run trains for the remaining configured epochs, then returns the reports
// and a probability preview of the first samples of the evaluation set.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	if t.epoch == 0 && t.state == StateInitialized {
		batches := 0
		if t.sampler != nil {
			batches = t.sampler.Batches()
		}
		t.logger.Printf("run=%s start samples=%d dims=%d classes=%d hidden=%v batch_size=%d batches=%d epochs=%d lr=%g seed=%d",
			t.runID,
			t.cfg.Train.Len(),
			t.cfg.Train.Dim(),
			t.cfg.Classes,
			t.cfg.Hidden,
			t.cfg.BatchSize,
			batches,
			t.cfg.Epochs,
			t.cfg.LearningRate,
			t.cfg.Seed,
		)
		t.logger.Printf("run=%s host %s", t.runID, t.host)
		if !t.host.Vectorized() {
			t.logger.Printf("run=%s host lacks AVX2/FMA3; matrix products fall back to scalar kernels", t.runID)
		}
	}
	for t.epoch < t.cfg.Epochs {
		if _, err := t.RunEpoch(ctx); err != nil {
			return nil, err
		}
	}

	preview, err := t.PreviewRows()
	if err != nil {
		return nil, t.fail(err)
	}
	t.state = StateFinished
	t.logger.Printf("run=%s finished epochs=%d steps=%d", t.runID, t.epoch, t.step)
	return &Result{RunID: t.runID, Host: t.host, Reports: t.reports, Preview: preview}, nil
}

// PreviewRows runs the first Preview samples of the evaluation set through
// the network in its current state. It does not train.
func (t *Trainer) PreviewRows() ([]PreviewRow, error) {
	return Preview(t.model, t.EvalSet(), t.cfg.Preview)
}

// RunEpoch runs one pass over the shuffled batches of the training set and
// evaluates the network on the full sets afterwards. The context is checked
// between batches.
func (t *Trainer) RunEpoch(ctx context.Context) (metrics.EpochReport, error) {
	if t.state == StateFinished || t.state == StateFailed {
		return metrics.EpochReport{}, ErrFinished
	}
	if t.sampler == nil {
		return metrics.EpochReport{}, ErrNoEpochs
	}
	t.state = StateEpochRunning
	t.epoch++

	var window, epochWindow metrics.Window
	for _, span := range t.sampler.Epoch() {
		if err := ctx.Err(); err != nil {
			return metrics.EpochReport{}, t.fail(err)
		}

		startData := time.Now()
		inputs, labels := t.cfg.Train.View(span)
		batch := model.Batch{Inputs: inputs, Labels: labels}
		dataTime := time.Since(startData)

		startCompute := time.Now()
		loss, err := t.model.TrainStep(batch)
		if err != nil {
			return metrics.EpochReport{}, t.fail(err)
		}
		computeTime := time.Since(startCompute)

		window.Record(batch.Size(), dataTime, computeTime, loss)
		epochWindow.Record(batch.Size(), dataTime, computeTime, loss)
		t.step++

		if t.cfg.Verbose && t.step%t.cfg.LogEvery == 0 {
			snap := window.Snapshot()
			t.logger.Printf("run=%s epoch=%d step=%d samples_per_sec=%.1f data_ms=%.2f compute_ms=%.2f loss=%.4f",
				t.runID,
				t.epoch,
				t.step,
				snap.SamplesPerSec,
				snap.AvgDataMS,
				snap.AvgComputeMS,
				snap.LastLoss,
			)
		}
	}

	report := metrics.EpochReport{Epoch: t.epoch, Window: epochWindow.Snapshot()}
	train, err := t.model.Evaluate(model.Batch{Inputs: t.cfg.Train.Features, Labels: t.cfg.Train.Labels})
	if err != nil {
		return metrics.EpochReport{}, t.fail(err)
	}
	report.TrainLoss, report.TrainAccuracy = train.Loss, train.Accuracy
	if t.cfg.Test != nil {
		test, err := t.model.Evaluate(model.Batch{Inputs: t.cfg.Test.Features, Labels: t.cfg.Test.Labels})
		if err != nil {
			return metrics.EpochReport{}, t.fail(err)
		}
		report.TestLoss, report.TestAccuracy, report.HasTest = test.Loss, test.Accuracy, true
	}

	t.reports = append(t.reports, report)
	t.state = StateEpochComplete
	t.logger.Printf("run=%s %s", t.runID, report)
	if t.cfg.OnEpoch != nil {
		t.cfg.OnEpoch(report)
	}
	return report, nil
}

// EvalSet returns the test set when present, otherwise the training set.
func (t *Trainer) EvalSet() *dataset.Set {
	if t.cfg.Test != nil {
		return t.cfg.Test
	}
	return t.cfg.Train
}

func (t *Trainer) fail(err error) error {
	t.state = StateFailed
	t.logger.Printf("run=%s epoch=%d failed: %v", t.runID, t.epoch, err)
	return err
}
