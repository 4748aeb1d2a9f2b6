package flower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernlane/petalflow-go/internal/activation"
	"github.com/fernlane/petalflow-go/internal/labeling"
	"github.com/fernlane/petalflow-go/internal/loss"
	"github.com/fernlane/petalflow-go/internal/optimizer"
	"github.com/fernlane/petalflow-go/internal/petal"
	"github.com/fernlane/petalflow-go/internal/prng"
	"github.com/fernlane/petalflow-go/internal/shape"
	"github.com/fernlane/petalflow-go/internal/weights"
)

func newDense(t *testing.T, isFirst bool, in, out int, act *activation.Activation, rng *prng.PRNG) *petal.Petal {
	t.Helper()
	inShape, err := shape.Flat(in)
	require.NoError(t, err)
	outShape, err := shape.Flat(out)
	require.NoError(t, err)
	w, err := weights.New(true, weights.XavierGlorotGaussian, out*in, 0, 1, rng)
	require.NoError(t, err)
	b, err := weights.New(true, weights.Constant, out, 0, 0, rng)
	require.NoError(t, err)
	p, err := petal.New(petal.Config{Kind: petal.Dense1D, IsFirst: isFirst, Input: inShape, Output: outShape, Weights: w, Bias: b, Activation: act})
	require.NoError(t, err)
	return p
}

func TestFlowerRejectsEmptyStack(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestFlowerRejectsShapeMismatch(t *testing.T) {
	rng := prng.New(0)
	act, err := activation.New(activation.Sigmoid, 3)
	require.NoError(t, err)
	p0 := newDense(t, true, 2, 3, act, rng)
	act2, err := activation.New(activation.Sigmoid, 2)
	require.NoError(t, err)
	p1 := newDense(t, false, 4, 2, act2, rng) // expects input len 4, gets 3
	_, err = New([]*petal.Petal{p0, p1})
	require.Error(t, err)
}

func TestXORConverges(t *testing.T) {
	rng := prng.New(0)
	hidden, err := activation.New(activation.LeakyReLU, 4)
	require.NoError(t, err)
	out, err := activation.New(activation.Sigmoid, 1)
	require.NoError(t, err)

	p0 := newDense(t, true, 2, 4, hidden, rng)
	p1 := newDense(t, false, 4, 1, out, rng)

	f, err := New([]*petal.Petal{p0, p1})
	require.NoError(t, err)

	x := [][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := [][]float32{{0}, {1}, {1}, {0}}

	err = f.Train(TrainConfig{
		LossKind:  loss.MSE,
		Optimizer: optimizer.NewAdam(0.05, 0.9, 0.999),
		Train:     Dataset{X: x, Y: y},
		BatchSize: 4,
		Epochs:    3000,
		RNG:       rng,
	})
	require.NoError(t, err)

	for i, sample := range x {
		pred, err := f.Predict(sample)
		require.NoError(t, err)
		want := y[i][0]
		got := pred[0]
		if want > 0.5 {
			require.Greaterf(t, got, float32(0.5), "xor(%v)", sample)
		} else {
			require.Lessf(t, got, float32(0.5), "xor(%v)", sample)
		}
	}
}

func classifierLabel(x []float32) []float32 {
	if x[0] > x[1] {
		return []float32{1, 0}
	}
	return []float32{0, 1}
}

func TestClassifierScenario(t *testing.T) {
	rng := prng.New(0)

	relu1, err := activation.New(activation.LeakyReLU, 2)
	require.NoError(t, err)
	relu1.LeakyReLULeak = 0
	relu2, err := activation.New(activation.LeakyReLU, 2)
	require.NoError(t, err)
	relu2.LeakyReLULeak = 0
	soft, err := activation.New(activation.Softmax, 2)
	require.NoError(t, err)

	p0 := newDense(t, true, 2, 2, relu1, rng)
	p1 := newDense(t, false, 2, 2, relu2, rng)
	p2 := newDense(t, false, 2, 2, soft, rng)

	f, err := New([]*petal.Petal{p0, p1, p2})
	require.NoError(t, err)

	trainX := make([][]float32, 800)
	trainY := make([][]float32, 800)
	for i := range trainX {
		trainX[i] = []float32{rng.Float32() * 20, rng.Float32() * 20}
		trainY[i] = classifierLabel(trainX[i])
	}
	valX := make([][]float32, 200)
	valY := make([][]float32, 200)
	for i := range valX {
		valX[i] = []float32{rng.Float32() * 20, rng.Float32() * 20}
		valY[i] = classifierLabel(valX[i])
	}

	err = f.Train(TrainConfig{
		LossKind:  loss.CCE,
		Optimizer: optimizer.NewAdam(0.01, 0.89, 0.99),
		Train:     Dataset{X: trainX, Y: trainY},
		BatchSize: 40,
		Epochs:    10,
		RNG:       rng,
	})
	require.NoError(t, err)

	var correct int
	for i, x := range valX {
		pred, err := f.Predict(x)
		require.NoError(t, err)
		if labeling.Argmax(pred) == labeling.Argmax(valY[i]) {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(valX))
	require.GreaterOrEqualf(t, accuracy, 0.95, "top-1 validation accuracy")

	cases := []struct {
		x    []float32
		want int
	}{
		{[]float32{1, 10}, 1},
		{[]float32{20, 10}, 0},
		{[]float32{-1, 10}, 1},
	}
	for _, c := range cases {
		pred, err := f.Predict(c.x)
		require.NoError(t, err)
		require.Equalf(t, c.want, labeling.Argmax(pred), "predict(%v)", c.x)
	}
}
