package activation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/fernlane/petalflow-go/internal/bitmask"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLinearRoundTrip(t *testing.T) {
	a, err := New(Linear, 5)
	if err != nil {
		t.Fatal(err)
	}
	a.LinearAlpha = 0.5
	a.LinearC = 1
	buf := []float32{-2, -1, 0, 1, 2}
	if err := a.Forward(buf, nil); err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 0.5, 1.0, 1.5, 2.0}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("forward[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
	if err := a.Backward(buf, nil); err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if buf[i] != 0.5 {
			t.Fatalf("backward[%d] = %v, want 0.5", i, buf[i])
		}
	}
}

func TestSoftmaxStability(t *testing.T) {
	a, err := New(Softmax, 5)
	if err != nil {
		t.Fatal(err)
	}
	buf := []float32{-2, -1, 0, 1, 2}
	if err := a.Forward(buf, nil); err != nil {
		t.Fatal(err)
	}
	want := []float32{0.0117, 0.0317, 0.0861, 0.2341, 0.6364}
	var sum float32
	for i, w := range want {
		if !approxEqual(float64(buf[i]), float64(w), 1e-3) {
			t.Fatalf("softmax[%d] = %v, want %v", i, buf[i], w)
		}
		sum += buf[i]
	}
	if !approxEqual(float64(sum), 1, 1e-6) {
		t.Fatalf("softmax sum = %v, want 1", sum)
	}
}

func TestSoftmaxOutputsInUnitRange(t *testing.T) {
	a, err := New(Softmax, 4)
	if err != nil {
		t.Fatal(err)
	}
	buf := []float32{1, 2, 3, 4}
	if err := a.Forward(buf, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range buf {
		if v <= 0 || v >= 1 {
			t.Fatalf("softmax[%d] = %v, want in (0,1)", i, v)
		}
	}
}

// TestAnalyticMatchesNumericalDerivative cross-checks every elementwise
// activation's Backward against a forward-difference numerical
// derivative (gonum/diff/fd's default formula), at the test grid
// spec.md names.
func TestAnalyticMatchesNumericalDerivative(t *testing.T) {
	grid := []float32{-2, -1, 0, 1, 2}
	kinds := []Kind{LeakyReLU, ELU, Softsign, Sigmoid, HardSigmoid, Swish, Tanh}

	for _, kind := range kinds {
		for _, x := range grid {
			a, err := New(kind, 1)
			if err != nil {
				t.Fatal(err)
			}
			f := func(v float64) float64 {
				buf := []float32{float32(v)}
				a2, _ := New(kind, 1)
				a2.Forward(buf, nil)
				return float64(buf[0])
			}
			numeric := fd.Derivative(f, float64(x), &fd.Settings{Step: 1e-3})

			buf := []float32{x}
			if err := a.Forward(buf, nil); err != nil {
				t.Fatal(err)
			}
			if err := a.Backward(buf, nil); err != nil {
				t.Fatal(err)
			}
			analytic := float64(buf[0])

			if !approxEqual(analytic, numeric, 0.05) {
				t.Errorf("kind=%d x=%v: analytic=%v numeric=%v", kind, x, analytic, numeric)
			}
		}
	}
}

func TestDroppedIndexSkipped(t *testing.T) {
	a, err := New(Sigmoid, 3)
	if err != nil {
		t.Fatal(err)
	}
	buf := []float32{1, 2, 3}
	orig := buf[1]
	mask, err := bitmask.New(3)
	if err != nil {
		t.Fatal(err)
	}
	mask.Set(1)
	if err := a.Forward(buf, mask); err != nil {
		t.Fatal(err)
	}
	if buf[1] != orig {
		t.Fatalf("dropped buf[1] = %v, want untouched %v", buf[1], orig)
	}
	if buf[0] == 1 {
		t.Fatal("sigmoid should have changed the kept buf[0]")
	}
}
