package bvh

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestSelectNth(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	type spec struct {
		keys []float32
	}
	specs := []spec{
		{[]float32{3, 1}},
		{[]float32{5, 4, 3, 2, 1}},
		{[]float32{1, 2, 3, 4, 5, 6, 7}},
		{[]float32{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}},
		{[]float32{9, 1, 9, 1, 9, 1, 9, 1, 9, 1, 9, 1, 5}},
	}
	for _, count := range []int{6, 13, 64, 101, 1000} {
		keys := make([]float32, count)
		for index := range keys {
			keys[index] = float32(rng.Intn(count / 2))
		}
		specs = append(specs, spec{keys})
	}

	for specIndex, s := range specs {
		key := func(index int) float32 { return s.keys[index] }
		sorted := append([]float32(nil), s.keys...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		for _, k := range []int{0, len(s.keys) / 2, len(s.keys) - 1} {
			indices := make([]int, len(s.keys))
			for index := range indices {
				indices[index] = index
			}
			selectNth(indices, k, key)

			if got := key(indices[k]); got != sorted[k] {
				t.Fatalf("[spec %d] expected key %v at position %d; got %v", specIndex, sorted[k], k, got)
			}
			for pos, index := range indices {
				if pos < k && key(index) > key(indices[k]) {
					t.Fatalf("[spec %d] expected key at position %d to be <= %v; got %v", specIndex, pos, key(indices[k]), key(index))
				}
				if pos > k && key(index) < key(indices[k]) {
					t.Fatalf("[spec %d] expected key at position %d to be >= %v; got %v", specIndex, pos, key(indices[k]), key(index))
				}
			}
			assertPermutation(t, specIndex, indices)
		}
	}
}

func TestSelectNthWithNaNKeys(t *testing.T) {
	nan := float32(math.NaN())
	keys := []float32{4, nan, 1, 8, nan, 3, 7, nan, 2, 6, 5, nan, 0}
	key := func(index int) float32 { return keys[index] }

	indices := make([]int, len(keys))
	for index := range indices {
		indices[index] = index
	}
	selectNth(indices, len(keys)/2, key)
	assertPermutation(t, 0, indices)
}

func TestPartition3(t *testing.T) {
	keys := []float32{5, 1, 5, 9, 3, 5, 7, 0}
	key := func(index int) float32 { return keys[index] }
	indices := []int{0, 1, 2, 3, 4, 5, 6, 7}

	lt, gt := partition3(indices, 5, key)
	if lt != 3 || gt != 6 {
		t.Fatalf("expected partition bounds (3, 6); got (%d, %d)", lt, gt)
	}
	for pos, index := range indices {
		v := key(index)
		switch {
		case pos < lt && v >= 5:
			t.Fatalf("expected key at position %d to be < 5; got %v", pos, v)
		case pos >= gt && v <= 5:
			t.Fatalf("expected key at position %d to be > 5; got %v", pos, v)
		case pos >= lt && pos < gt && v != 5:
			t.Fatalf("expected key at position %d to be 5; got %v", pos, v)
		}
	}
}

func assertPermutation(t *testing.T, specIndex int, indices []int) {
	t.Helper()
	seen := make([]bool, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(indices) || seen[index] {
			t.Fatalf("[spec %d] expected indices to be a permutation; got %v", specIndex, indices)
		}
		seen[index] = true
	}
}
