package trainer_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/FenixInShadows/motionlearn/internal/model"
	"github.com/FenixInShadows/motionlearn/internal/trainer"
)

func TestPreviewMatchesArgmax(t *testing.T) {
	set := separable(t, 9, 9)
	m, err := model.NewMLP(model.Config{InputDim: 2, Hidden: []int{4}, Classes: 3, LearningRate: 0.1}, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	rows, err := trainer.Preview(m, set, 5)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for j, row := range rows {
		assert.Equal(t, set.Labels[j], row.Label)
		assert.Equal(t, floats.MaxIdx(row.Probs), row.Predicted)
		assert.InDelta(t, 1.0, floats.Sum(row.Probs), 1e-9)
	}
	assert.Contains(t, rows[0].String(), "predicted=")

	none, err := trainer.Preview(m, set, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
