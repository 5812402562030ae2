package bvh

// Elements are grouped in runs of this size when picking a pivot.
const selectGroupSize = 5

// Reorder indices so that the element at position k is the one that would be
// there if indices were sorted by key, every element before k has a key that
// is not greater and every element after k has a key that is not less. The
// order inside each partition is unspecified.
//
// The pivot is picked with the median-of-medians rule so selection runs in
// linear time regardless of the input order.
func selectNth(indices []int, k int, key func(int) float32) {
	lo, hi := 0, len(indices)
	for hi-lo > selectGroupSize {
		pivot := medianOfMedians(indices[lo:hi], key)
		lt, gt := partition3(indices[lo:hi], pivot, key)
		switch {
		case k < lo+lt:
			hi = lo + lt
		case k >= lo+gt:
			lo = lo + gt
		default:
			// k falls inside the run of keys equal to the pivot
			return
		}
	}
	insertionSort(indices[lo:hi], key)
}

// Pick a pivot key by taking the median of each group of 5 elements and then
// recursively selecting the median of those medians. The medians are moved to
// the front of indices as a side effect.
func medianOfMedians(indices []int, key func(int) float32) float32 {
	medians := 0
	for start := 0; start < len(indices); start += selectGroupSize {
		end := start + selectGroupSize
		if end > len(indices) {
			end = len(indices)
		}
		group := indices[start:end]
		insertionSort(group, key)
		mid := start + len(group)/2
		indices[medians], indices[mid] = indices[mid], indices[medians]
		medians++
	}

	selectNth(indices[:medians], medians/2, key)
	return key(indices[medians/2])
}

// Three-way partition indices around pivot. On return [0, lt) holds keys less
// than the pivot, [gt, len) keys greater than the pivot and [lt, gt) the rest.
// Keys that do not compare (NaN) end up in the middle run.
func partition3(indices []int, pivot float32, key func(int) float32) (lt, gt int) {
	i := 0
	gt = len(indices)
	for i < gt {
		v := key(indices[i])
		switch {
		case v < pivot:
			indices[lt], indices[i] = indices[i], indices[lt]
			lt++
			i++
		case v > pivot:
			gt--
			indices[gt], indices[i] = indices[i], indices[gt]
		default:
			i++
		}
	}
	return lt, gt
}

func insertionSort(indices []int, key func(int) float32) {
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && key(indices[j]) < key(indices[j-1]); j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
}
