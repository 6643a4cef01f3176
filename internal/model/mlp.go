package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FenixInShadows/motionlearn/internal/nn"
)

// MLP is a stack of fully connected layers with ReLU hidden activations and
// a softmax output, trained by plain gradient descent.
//
// The network is always an ordered slice of at least one weight matrix;
// a network without hidden layers is a single linear+softmax layer.
type MLP struct {
	cfg     Config
	weights []*mat.Dense

	scratch *Arena
}

// NewMLP builds the layer stack described by cfg. Every weight is drawn
// uniformly from [-InitScale, InitScale) using rng.
func NewMLP(cfg Config, rng *rand.Rand) (*MLP, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.InitScale == 0 {
		cfg.InitScale = DefaultInitScale
	}
	cfg.Hidden = append([]int(nil), cfg.Hidden...)

	widths := cfg.Widths()
	weights := make([]*mat.Dense, len(widths)-1)
	for i := range weights {
		rows, cols := widths[i+1], widths[i]
		data := make([]float64, rows*cols)
		for k := range data {
			data[k] = (rng.Float64()*2 - 1) * cfg.InitScale
		}
		weights[i] = mat.NewDense(rows, cols, data)
	}
	return &MLP{cfg: cfg, weights: weights}, nil
}

// NewMLPFromWeights builds a network around copies of the given weight
// matrices, which must chain: the column count of weights[i] equals the row
// count of weights[i-1].
func NewMLPFromWeights(weights []*mat.Dense, learningRate float64) (*MLP, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("empty weight stack: %w", ErrDimension)
	}
	cfg := Config{LearningRate: learningRate}
	copies := make([]*mat.Dense, len(weights))
	for i, w := range weights {
		r, c := w.Dims()
		if i == 0 {
			cfg.InputDim = c
		} else if prev, _ := weights[i-1].Dims(); prev != c {
			return nil, fmt.Errorf("weight %d has %d inputs, layer %d has %d outputs: %w", i, c, i-1, prev, ErrDimension)
		}
		if i == len(weights)-1 {
			cfg.Classes = r
		} else {
			cfg.Hidden = append(cfg.Hidden, r)
		}
		copies[i] = mat.DenseCopyOf(w)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MLP{cfg: cfg, weights: copies}, nil
}

// Weights returns the live weight matrices, input layer first. Callers must
// not modify them.
func (m *MLP) Weights() []*mat.Dense {
	return m.weights
}

// Forward runs x through the network and caches every activation in a.
// x holds one sample per column.
func (m *MLP) Forward(a *Arena, x mat.Matrix) error {
	rows, cols := x.Dims()
	if rows != m.cfg.InputDim {
		return fmt.Errorf("forward: input has %d features, network expects %d: %w", rows, m.cfg.InputDim, ErrDimension)
	}
	if cols == 0 {
		return fmt.Errorf("forward: empty batch: %w", ErrDimension)
	}
	last := len(m.weights) - 1
	if len(a.Hidden) != last || len(a.Grads) != len(m.weights) {
		return fmt.Errorf("forward: arena built for %d layers, network has %d: %w", len(a.Grads), len(m.weights), ErrDimension)
	}

	a.Input = x
	for i, w := range m.weights[:last] {
		h := a.Hidden[i]
		h.Reset()
		h.Mul(w, a.layer(i))
		nn.ReLU(h)
	}
	a.Output.Reset()
	a.Output.Mul(m.weights[last], a.layer(last))
	nn.Softmax(a.Output)
	return nil
}

// Backward computes the mean gradient of the cross-entropy loss w.r.t. every
// weight matrix from the forward pass cached in a.
func (m *MLP) Backward(a *Arena, labels []int) error {
	batch := a.BatchSize()
	if batch == 0 {
		return fmt.Errorf("backward: no forward pass cached: %w", ErrDimension)
	}
	if err := m.checkLabels(batch, labels); err != nil {
		return fmt.Errorf("backward: %w", err)
	}

	last := len(m.weights) - 1
	nn.CrossEntropySoftmaxGradientTo(a.Deltas[last], a.Output, labels)
	scale := 1 / float64(batch)
	for i := last; ; i-- {
		grad := a.Grads[i]
		grad.Mul(a.Deltas[i], a.layer(i).T())
		grad.Scale(scale, grad)
		if i == 0 {
			return nil
		}
		below := a.Deltas[i-1]
		below.Reset()
		below.Mul(m.weights[i].T(), a.Deltas[i])
		nn.ReLUGradientInPlace(below, a.Hidden[i-1])
	}
}

// Update applies one gradient descent step using the gradients in a.
func (m *MLP) Update(a *Arena) {
	for i, w := range m.weights {
		floats.AddScaled(w.RawMatrix().Data, -m.cfg.LearningRate, a.Grads[i].RawMatrix().Data)
	}
}

// Step runs forward, backward and update for one batch using a. It returns
// the batch loss measured before the update.
func (m *MLP) Step(a *Arena, b Batch) (float64, error) {
	if err := m.Forward(a, b.Inputs); err != nil {
		return 0, err
	}
	if err := m.checkLabels(a.BatchSize(), b.Labels); err != nil {
		return 0, err
	}
	loss := nn.CrossEntropy(a.Output, b.Labels)
	if err := m.Backward(a, b.Labels); err != nil {
		return 0, err
	}
	m.Update(a)
	return loss, nil
}

// TrainStep is Step on an arena owned by m. It is not safe for concurrent use.
func (m *MLP) TrainStep(b Batch) (float64, error) {
	if m.scratch == nil {
		m.scratch = m.NewArena()
	}
	return m.Step(m.scratch, b)
}

// Evaluate returns the loss and accuracy of the network over b without
// changing any weight.
func (m *MLP) Evaluate(b Batch) (Eval, error) {
	a := m.NewArena()
	if err := m.Forward(a, b.Inputs); err != nil {
		return Eval{}, err
	}
	if err := m.checkLabels(a.BatchSize(), b.Labels); err != nil {
		return Eval{}, err
	}
	return Eval{
		Loss:     nn.CrossEntropy(a.Output, b.Labels),
		Accuracy: nn.Accuracy(a.Output, b.Labels),
	}, nil
}

// Predict returns the class probabilities for x, one column per sample.
func (m *MLP) Predict(x mat.Matrix) (*mat.Dense, error) {
	a := m.NewArena()
	if err := m.Forward(a, x); err != nil {
		return nil, err
	}
	return a.Output, nil
}

func (m *MLP) checkLabels(batch int, labels []int) error {
	if len(labels) != batch {
		return fmt.Errorf("%d labels for %d samples: %w", len(labels), batch, ErrDimension)
	}
	for j, label := range labels {
		if label < 0 || label >= m.cfg.Classes {
			return fmt.Errorf("sample %d has label %d, want [0, %d): %w", j, label, m.cfg.Classes, ErrLabel)
		}
	}
	return nil
}

var _ Model = (*MLP)(nil)
