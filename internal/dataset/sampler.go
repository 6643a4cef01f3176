package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultSeed seeds the sampler when no seed is configured.
const DefaultSeed int64 = 42

// Span is a run of consecutive samples.
type Span struct {
	Offset int
	Size   int
}

// Spans partitions n samples into consecutive runs of size samples. The last
// run holds the remainder when size does not divide n.
func Spans(n, size int) []Span {
	if n <= 0 || size <= 0 {
		return nil
	}
	spans := make([]Span, 0, (n+size-1)/size)
	for off := 0; off < n; off += size {
		spans = append(spans, Span{Offset: off, Size: min(size, n-off)})
	}
	return spans
}

// Sampler yields the mini-batches of one epoch in a shuffled order.
type Sampler struct {
	spans []Span
	rng   *rand.Rand
}

// NewSampler partitions n samples into batches of batchSize. The batch order
// of every epoch is drawn from rng.
func NewSampler(n, batchSize int, rng *rand.Rand) (*Sampler, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	if batchSize <= 0 || batchSize > n {
		return nil, fmt.Errorf("sampler: batch size %d outside [1, %d]", batchSize, n)
	}
	if rng == nil {
		return nil, errors.New("sampler: nil random source")
	}
	return &Sampler{spans: Spans(n, batchSize), rng: rng}, nil
}

// Batches returns the number of batches per epoch.
func (s *Sampler) Batches() int {
	return len(s.spans)
}

// Epoch reshuffles the batch order and returns it. The returned slice is
// reused by the next call.
func (s *Sampler) Epoch() []Span {
	s.rng.Shuffle(len(s.spans), func(i, j int) {
		s.spans[i], s.spans[j] = s.spans[j], s.spans[i]
	})
	return s.spans
}
