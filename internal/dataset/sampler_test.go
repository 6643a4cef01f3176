package dataset

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestSpansCoverEverySample(t *testing.T) {
	spans := Spans(10, 3)
	want := []Span{{0, 3}, {3, 3}, {6, 3}, {9, 1}}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("Spans(10, 3)=%v want %v", spans, want)
	}

	for _, tc := range []struct{ n, size int }{{1, 1}, {7, 7}, {100, 7}, {64, 8}, {5, 2}} {
		seen := make([]int, tc.n)
		for _, span := range Spans(tc.n, tc.size) {
			if span.Size <= 0 || span.Size > tc.size {
				t.Fatalf("n=%d size=%d: bad span %v", tc.n, tc.size, span)
			}
			for j := span.Offset; j < span.Offset+span.Size; j++ {
				seen[j]++
			}
		}
		for j, count := range seen {
			if count != 1 {
				t.Fatalf("n=%d size=%d: sample %d covered %d times", tc.n, tc.size, j, count)
			}
		}
	}
}

func TestSamplerDeterministicOrder(t *testing.T) {
	s1, err := NewSampler(10, 3, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewSampler error: %v", err)
	}
	s2, err := NewSampler(10, 3, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewSampler error: %v", err)
	}

	for epoch := 0; epoch < 3; epoch++ {
		order1 := append([]Span(nil), s1.Epoch()...)
		order2 := append([]Span(nil), s2.Epoch()...)
		if !reflect.DeepEqual(order1, order2) {
			t.Fatalf("epoch %d order not deterministic: %v vs %v", epoch, order1, order2)
		}
		if len(order1) != 4 {
			t.Fatalf("expected 4 batches, got %d", len(order1))
		}
	}
}

func TestSamplerEpochIsPermutation(t *testing.T) {
	s, err := NewSampler(100, 7, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewSampler error: %v", err)
	}
	want := Spans(100, 7)
	for epoch := 0; epoch < 5; epoch++ {
		got := append([]Span(nil), s.Epoch()...)
		sort.Slice(got, func(i, j int) bool { return got[i].Offset < got[j].Offset })
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("epoch %d lost batches: %v", epoch, got)
		}
	}
}

func TestNewSamplerRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewSampler(0, 1, rng); err == nil {
		t.Fatal("expected error for empty dataset")
	}
	if _, err := NewSampler(5, 6, rng); err == nil {
		t.Fatal("expected error for batch larger than dataset")
	}
	if _, err := NewSampler(5, 0, rng); err == nil {
		t.Fatal("expected error for zero batch size")
	}
	if _, err := NewSampler(5, 2, nil); err == nil {
		t.Fatal("expected error for nil rng")
	}
}
