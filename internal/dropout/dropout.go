// Package dropout samples a bitmask.BitMask at a target drop ratio,
// bounding runtime by always sampling the smaller of "bits to drop" and
// "bits to keep" (per spec, both branches touch at most L/2 bits).
package dropout

import (
	"github.com/fernlane/petalflow-go/internal/bitmask"
	"github.com/fernlane/petalflow-go/internal/prng"
)

// Generate marks approximately ratio*L bits of mask as dropped (set),
// where L = mask.Length. ratio is clamped to [0,1] by the caller's
// contract; behavior for out-of-range ratios is undefined here.
//
// Unlike the original's accept/reject loop (resample on collision, O(k)
// expected but quadratic worst case), this uses a partial Fisher-Yates
// over an index permutation, which spec.md's design notes explicitly
// permit as long as the exact-count invariant holds.
func Generate(mask *bitmask.BitMask, ratio float64, rng *prng.PRNG) {
	mask.ClearAll()
	length := mask.Length
	if length == 0 {
		return
	}
	k := int(float64(length) * ratio)
	if k >= length {
		for i := 0; i < length; i++ {
			mask.Set(i)
		}
		return
	}
	if k <= 0 {
		return
	}

	if ratio <= 0.5 {
		// Draw k indices to drop directly.
		drop := partialShuffleIndices(length, k, rng)
		for _, idx := range drop {
			mask.Set(idx)
		}
		return
	}

	// ratio > 0.5: it is cheaper to pick the bits to KEEP, then invert.
	keepCount := length - k
	keep := partialShuffleIndices(length, keepCount, rng)
	for _, idx := range keep {
		mask.Set(idx)
	}
	mask.Not()
}

// partialShuffleIndices returns k distinct indices in [0,length) chosen
// uniformly without replacement, via a partial Fisher-Yates shuffle
// (O(k) swaps instead of the original's O(k) expected / O(k^2) worst
// case accept-reject loop).
func partialShuffleIndices(length, k int, rng *prng.PRNG) []int {
	perm := make([]int, length)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + int(rng.Uint32()%uint32(length-i))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}
