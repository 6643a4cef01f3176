package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrEmpty indicates a dataset source without any samples or features.
var ErrEmpty = errors.New("dataset: no samples")

// Set is a labelled sample matrix holding one sample per column.
type Set struct {
	Features *mat.Dense
	Labels   []int
}

// NewSet pairs features with labels.
func NewSet(features *mat.Dense, labels []int) (*Set, error) {
	if features == nil || features.IsEmpty() {
		return nil, ErrEmpty
	}
	if _, n := features.Dims(); n != len(labels) {
		return nil, fmt.Errorf("dataset: %d samples but %d labels", n, len(labels))
	}
	return &Set{Features: features, Labels: labels}, nil
}

// Len returns the number of samples.
func (s *Set) Len() int {
	return len(s.Labels)
}

// Dim returns the number of features per sample.
func (s *Set) Dim() int {
	r, _ := s.Features.Dims()
	return r
}

// View returns the samples covered by span without copying them.
func (s *Set) View(span Span) (mat.Matrix, []int) {
	end := span.Offset + span.Size
	return s.Features.Slice(0, s.Dim(), span.Offset, end), s.Labels[span.Offset:end]
}

// CheckLabels verifies every label lies in [0, classes).
func (s *Set) CheckLabels(classes int) error {
	for j, label := range s.Labels {
		if label < 0 || label >= classes {
			return fmt.Errorf("sample %d has label %d, want [0, %d)", j, label, classes)
		}
	}
	return nil
}
