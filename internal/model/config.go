package model

import (
	"errors"
	"fmt"
	"math"
)

// DefaultInitScale bounds the uniform weight initialization.
const DefaultInitScale = 0.1

var (
	// ErrDimension reports a matrix or batch whose shape does not fit the network.
	ErrDimension = errors.New("model: dimension mismatch")
	// ErrLabel reports a label outside [0, classes).
	ErrLabel = errors.New("model: label out of range")
)

// Config describes the layer stack and its update rule.
type Config struct {
	InputDim     int
	Hidden       []int
	Classes      int
	LearningRate float64
	InitScale    float64
}

// Validate verifies the layer stack can be built.
func (c Config) Validate() error {
	if c.InputDim <= 0 {
		return fmt.Errorf("input dimension must be > 0 (got %d)", c.InputDim)
	}
	if c.Classes <= 0 {
		return fmt.Errorf("classes must be > 0 (got %d)", c.Classes)
	}
	for i, w := range c.Hidden {
		if w <= 0 {
			return fmt.Errorf("hidden layer %d width must be > 0 (got %d)", i, w)
		}
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learning rate must be a positive number (got %g)", c.LearningRate)
	}
	if c.InitScale < 0 || math.IsNaN(c.InitScale) || math.IsInf(c.InitScale, 0) {
		return fmt.Errorf("init scale must be >= 0 (got %g)", c.InitScale)
	}
	return nil
}

// Widths lists the layer widths from the input to the output layer.
func (c Config) Widths() []int {
	widths := make([]int, 0, len(c.Hidden)+2)
	widths = append(widths, c.InputDim)
	widths = append(widths, c.Hidden...)
	return append(widths, c.Classes)
}
