package model

import "gonum.org/v1/gonum/mat"

// Batch is a minibatch of samples, one sample per column of Inputs.
type Batch struct {
	Inputs mat.Matrix
	Labels []int
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Eval is the loss and accuracy of a model over one batch.
type Eval struct {
	Loss     float64
	Accuracy float64
}

// Model defines the training functionality required by the trainer.
type Model interface {
	TrainStep(batch Batch) (float64, error)
	Evaluate(batch Batch) (Eval, error)
	// Predict returns class probabilities, one column per sample of x.
	Predict(x mat.Matrix) (*mat.Dense, error)
}
