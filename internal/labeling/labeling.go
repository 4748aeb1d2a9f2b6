// Package labeling converts between dense one-hot/multi-hot vectors and
// sparse label index lists: argmax for single-label prediction, a
// threshold scan for multi-label prediction, and the inverse scatter
// operations for building training targets from label indices.
package labeling

// Argmax returns the index of the largest element in v, the earliest
// index winning ties (strict > comparison, matching the original
// engine's first-max-wins rule).
func Argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// ToLabels returns every index whose value is >= threshold, in
// ascending order. Used for multi-label prediction.
func ToLabels(v []float32, threshold float32) []int {
	var labels []int
	for i, x := range v {
		if x >= threshold {
			labels = append(labels, i)
		}
	}
	return labels
}

// OneHot builds a dense vector of length n where index sits at "upper"
// and every other index sits at "low". No defaults are applied: callers
// pass both values explicitly, since Go has no C-style default args.
func OneHot(index, n int, low, upper float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = low
	}
	v[index] = upper
	return v
}

// MultiHot scatters a list of label indices into a dense vector of
// length n, each listed index set to upper and every other index set to
// low.
func MultiHot(indices []int, n int, low, upper float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = low
	}
	for _, idx := range indices {
		if idx >= 0 && idx < n {
			v[idx] = upper
		}
	}
	return v
}

// Accuracy reproduces the original engine's flower_calculate_accuracy:
// both predicted and expected are converted to label-index sets (argmax
// for single-label expected vectors, a 0.5 threshold scan for
// multi-label expected vectors), and the result is the fraction of the
// n index positions where set membership agrees between predicted and
// expected. For single-label classification this is not plain top-1
// accuracy — getting the other n-1 "true negative" indices right
// inflates the score relative to top-1 — but it is the original's exact
// definition and is what spec.md's "accumulate batch-mean accuracy"
// language, left otherwise undefined, is checked against.
func Accuracy(predicted, expected []float32) float32 {
	n := len(expected)
	expectedLabels := ToLabels(expected, 0.5)
	var predictedLabels []int
	if len(expectedLabels) > 1 {
		predictedLabels = ToLabels(predicted, 0.5)
	} else {
		predictedLabels = []int{Argmax(predicted)}
	}
	expSet := make(map[int]bool, len(expectedLabels))
	for _, i := range expectedLabels {
		expSet[i] = true
	}
	predSet := make(map[int]bool, len(predictedLabels))
	for _, i := range predictedLabels {
		predSet[i] = true
	}
	matches := 0
	for i := 0; i < n; i++ {
		if expSet[i] == predSet[i] {
			matches++
		}
	}
	return float32(matches) / float32(n)
}
