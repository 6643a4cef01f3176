package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReLU applies max(0, x) to every element of m in place.
func ReLU(m *mat.Dense) {
	m.Apply(func(_, _ int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, m)
}

// ReLUGradient returns a copy of raw with every element zeroed where the
// matching forward value is not strictly positive.
//
// forward holds the post-activation values of the layer. An activation of
// exactly zero suppresses the gradient.
func ReLUGradient(raw, forward mat.Matrix) *mat.Dense {
	grad := mat.DenseCopyOf(raw)
	ReLUGradientInPlace(grad, forward)
	return grad
}

// ReLUGradientInPlace is ReLUGradient writing into grad. It panics with
// mat.ErrShape if grad and forward differ in shape.
func ReLUGradientInPlace(grad *mat.Dense, forward mat.Matrix) {
	r, c := grad.Dims()
	fr, fc := forward.Dims()
	if r != fr || c != fc {
		panic(mat.ErrShape)
	}
	grad.Apply(func(i, j int, v float64) float64 {
		if forward.At(i, j) > 0 {
			return v
		}
		return 0
	}, grad)
}

// Softmax turns every column of m into a probability distribution in place.
//
// The column maximum is subtracted before exponentiating so that large
// logits cannot overflow.
func Softmax(m *mat.Dense) {
	r, c := m.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		floats.AddConst(-floats.Max(col), col)
		for i, v := range col {
			col[i] = math.Exp(v)
		}
		floats.Scale(1/floats.Sum(col), col)
		m.SetCol(j, col)
	}
}
