package model

import "gonum.org/v1/gonum/mat"

// Arena holds every buffer written by one forward/backward/update cycle.
//
// Forward writes Input, Hidden and Output. Backward reads them and writes
// Deltas and Grads. Update reads Grads. An Arena has a single writer: it must
// not be shared by steps that run at the same time.
type Arena struct {
	// Input is the batch of the last forward pass. It is never written.
	Input mat.Matrix
	// Hidden[i] is the post-ReLU activation of hidden layer i.
	Hidden []*mat.Dense
	// Output holds one probability distribution per sample column.
	Output *mat.Dense
	// Deltas[i] is the loss gradient w.r.t. the pre-activation of layer i.
	Deltas []*mat.Dense
	// Grads[i] has the shape of weight matrix i.
	Grads []*mat.Dense
}

// NewArena allocates an Arena sized for the weight stack of m. Activation
// buffers grow on first use and are resized when the batch width changes.
func (m *MLP) NewArena() *Arena {
	layers := len(m.weights)
	a := &Arena{
		Hidden: make([]*mat.Dense, layers-1),
		Output: &mat.Dense{},
		Deltas: make([]*mat.Dense, layers),
		Grads:  make([]*mat.Dense, layers),
	}
	for i := range a.Hidden {
		a.Hidden[i] = &mat.Dense{}
	}
	for i, w := range m.weights {
		r, c := w.Dims()
		a.Deltas[i] = &mat.Dense{}
		a.Grads[i] = mat.NewDense(r, c, nil)
	}
	return a
}

// BatchSize returns the number of samples in the cached forward pass.
func (a *Arena) BatchSize() int {
	if a.Input == nil {
		return 0
	}
	_, c := a.Input.Dims()
	return c
}

// layer returns the activation feeding weight matrix i.
func (a *Arena) layer(i int) mat.Matrix {
	if i == 0 {
		return a.Input
	}
	return a.Hidden[i-1]
}
