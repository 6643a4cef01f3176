package trainer

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/FenixInShadows/motionlearn/internal/dataset"
	"github.com/FenixInShadows/motionlearn/internal/model"
	"github.com/FenixInShadows/motionlearn/internal/nn"
)

// PreviewRow is the predicted distribution for one sample.
type PreviewRow struct {
	Label     int
	Predicted int
	Probs     []float64
}

func (r PreviewRow) String() string {
	var b strings.Builder
	b.WriteString("label=")
	b.WriteString(strconv.Itoa(r.Label))
	b.WriteString(" predicted=")
	b.WriteString(strconv.Itoa(r.Predicted))
	b.WriteString(" probs=[")
	for i, p := range r.Probs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(p, 'f', 4, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// Preview runs the first n samples of set through m. n is clipped to the
// size of the set; n <= 0 yields no rows.
func Preview(m model.Model, set *dataset.Set, n int) ([]PreviewRow, error) {
	n = min(n, set.Len())
	if n <= 0 {
		return nil, nil
	}
	inputs, labels := set.View(dataset.Span{Offset: 0, Size: n})
	probs, err := m.Predict(inputs)
	if err != nil {
		return nil, err
	}
	predicted := nn.Argmax(probs)
	rows := make([]PreviewRow, n)
	for j := range rows {
		rows[j] = PreviewRow{
			Label:     labels[j],
			Predicted: predicted[j],
			Probs:     mat.Col(nil, j, probs),
		}
	}
	return rows, nil
}
