package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogEpsilon keeps the log in CrossEntropy finite when the probability of
// the true class underflows to zero.
const LogEpsilon = 1e-30

// CrossEntropy returns the mean negative log-likelihood of labels under the
// probability columns of probs.
//
// It panics if len(labels) differs from the number of columns or a label is
// not a row index of probs.
func CrossEntropy(probs mat.Matrix, labels []int) float64 {
	r, c := probs.Dims()
	checkLabels(r, c, labels)
	if c == 0 {
		return 0
	}
	var sum float64
	for j, label := range labels {
		sum += math.Log(probs.At(label, j) + LogEpsilon)
	}
	return -sum / float64(c)
}

// CrossEntropySoftmaxGradient returns the gradient of CrossEntropy(Softmax(z))
// with respect to the logits z, given probs = Softmax(z).
//
// The gradient has the closed form probs - onehot(labels), column by column.
func CrossEntropySoftmaxGradient(probs mat.Matrix, labels []int) *mat.Dense {
	var grad mat.Dense
	CrossEntropySoftmaxGradientTo(&grad, probs, labels)
	return &grad
}

// CrossEntropySoftmaxGradientTo is CrossEntropySoftmaxGradient writing into
// dst, which is resized to the shape of probs.
func CrossEntropySoftmaxGradientTo(dst *mat.Dense, probs mat.Matrix, labels []int) {
	r, c := probs.Dims()
	checkLabels(r, c, labels)
	dst.CloneFrom(probs)
	for j, label := range labels {
		dst.Set(label, j, dst.At(label, j)-1)
	}
}

// Argmax returns, for every column of m, the row index of its largest value.
// Ties resolve to the lowest row index.
func Argmax(m mat.Matrix) []int {
	r, c := m.Dims()
	out := make([]int, c)
	col := make([]float64, r)
	for j := range out {
		out[j] = floats.MaxIdx(mat.Col(col, j, m))
	}
	return out
}

// Accuracy returns the fraction of columns whose argmax equals the label.
// An empty batch has accuracy 0.
func Accuracy(probs mat.Matrix, labels []int) float64 {
	r, c := probs.Dims()
	checkLabels(r, c, labels)
	if c == 0 {
		return 0
	}
	correct := 0
	for j, predicted := range Argmax(probs) {
		if predicted == labels[j] {
			correct++
		}
	}
	return float64(correct) / float64(c)
}

func checkLabels(rows, cols int, labels []int) {
	if len(labels) != cols {
		panic(fmt.Sprintf("nn: %d labels for %d columns", len(labels), cols))
	}
	for j, label := range labels {
		if label < 0 || label >= rows {
			panic(fmt.Sprintf("nn: label %d of column %d outside [0, %d)", label, j, rows))
		}
	}
}
