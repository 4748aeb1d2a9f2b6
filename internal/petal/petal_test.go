package petal

import (
	"testing"

	"github.com/fernlane/petalflow-go/internal/prng"
	"github.com/fernlane/petalflow-go/internal/shape"
	"github.com/fernlane/petalflow-go/internal/weights"
)

func flatShape(t *testing.T, n int) shape.Shape {
	t.Helper()
	s, err := shape.Flat(n)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDenseZeroWeightsReturnsZero(t *testing.T) {
	in := flatShape(t, 3)
	out := flatShape(t, 2)
	rng := prng.New(0)
	w, err := weights.New(true, weights.Constant, 6, 0, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	b, err := weights.New(true, weights.Constant, 2, 0, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(Config{Kind: Dense1D, IsFirst: true, Input: in, Output: out, Weights: w, Bias: b})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Forward([]float32{1, 2, 3}, false, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range p.Output() {
		if v != 0 {
			t.Fatalf("output[%d] = %v, want 0", i, v)
		}
	}
}

func TestDenseIdentityWeightsReturnsInput(t *testing.T) {
	in := flatShape(t, 3)
	out := flatShape(t, 3)
	rng := prng.New(0)
	w, err := weights.New(false, weights.Constant, 9, 0, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	// W = I (row-major 3x3)
	for i := 0; i < 3; i++ {
		w.W[i*3+i] = 1
	}
	p, err := New(Config{Kind: Dense1D, IsFirst: true, Input: in, Output: out, Weights: w})
	if err != nil {
		t.Fatal(err)
	}
	input := []float32{5, -2, 7}
	if err := p.Forward(input, false, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range p.Output() {
		if v != input[i] {
			t.Fatalf("output[%d] = %v, want %v", i, v, input[i])
		}
	}
}

func TestNormalizeAllRangeIsUnitInterval(t *testing.T) {
	in := flatShape(t, 5)
	out := flatShape(t, 5)
	p, err := New(Config{Kind: NormalizeAll, Input: in, Output: out, IsFirst: true, Center: 0, Deviation: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Forward([]float32{-3, 0, 4, 10, -10}, false, nil); err != nil {
		t.Fatal(err)
	}
	minV, maxV := p.Output()[0], p.Output()[0]
	for _, v := range p.Output() {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("value %v out of [-1,1]", v)
		}
	}
	if maxV < 0.999 || minV > -0.999 {
		t.Fatalf("expected endpoints near -1/1, got min=%v max=%v", minV, maxV)
	}
}

func TestDropoutCompensationDoublesSurvivorMean(t *testing.T) {
	in := flatShape(t, 200)
	out := flatShape(t, 200)
	p, err := New(Config{Kind: Direct, Input: in, Output: out, IsFirst: true, Dropout: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	input := make([]float32, 200)
	for i := range input {
		input[i] = 1
	}
	rng := prng.New(1)
	if err := p.Forward(input, true, rng); err != nil {
		t.Fatal(err)
	}
	var sum float32
	var count int
	for _, v := range p.Output() {
		if v != 0 {
			sum += v
			count++
		}
	}
	mean := sum / float32(count)
	if mean < 1.8 || mean > 2.2 {
		t.Fatalf("survivor mean = %v, want ~2.0 (2x inference mean of 1.0)", mean)
	}
}

func TestBackwardIdentityForNormalize(t *testing.T) {
	in := flatShape(t, 3)
	out := flatShape(t, 3)
	p, err := New(Config{Kind: NormalizeAll, Input: in, Output: out, IsFirst: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Forward([]float32{1, 2, 3}, false, nil); err != nil {
		t.Fatal(err)
	}
	errRight := []float32{0.1, 0.2, 0.3}
	if err := p.Backward(errRight, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range p.UpstreamError() {
		if v != errRight[i] {
			t.Fatalf("upstream[%d] = %v, want %v", i, v, errRight[i])
		}
	}
}
