// Command classifier reproduces the engine's seed-0 reference training
// scenario: a three-layer dense stack (2→2→2→2, Xavier-Gaussian
// weights, zero biases, ReLU-ReLU-Softmax, no dropout) trained with Adam
// on 800 samples labeled by whether x0 > x1, validated on 200 more.
package main

import (
	"fmt"
	"log"

	"github.com/fernlane/petalflow-go/internal/activation"
	"github.com/fernlane/petalflow-go/internal/flower"
	"github.com/fernlane/petalflow-go/internal/loss"
	"github.com/fernlane/petalflow-go/internal/optimizer"
	"github.com/fernlane/petalflow-go/internal/petal"
	"github.com/fernlane/petalflow-go/internal/prng"
	"github.com/fernlane/petalflow-go/internal/shape"
	"github.com/fernlane/petalflow-go/internal/weights"
)

func denseLayer(isFirst bool, in, out int, act *activation.Activation, rng *prng.PRNG) (*petal.Petal, error) {
	inShape, err := shape.Flat(in)
	if err != nil {
		return nil, err
	}
	outShape, err := shape.Flat(out)
	if err != nil {
		return nil, err
	}
	w, err := weights.New(true, weights.XavierGlorotGaussian, out*in, 0, 1, rng)
	if err != nil {
		return nil, err
	}
	b, err := weights.New(true, weights.Constant, out, 0, 0, rng)
	if err != nil {
		return nil, err
	}
	return petal.New(petal.Config{
		Kind:       petal.Dense1D,
		IsFirst:    isFirst,
		Input:      inShape,
		Output:     outShape,
		Weights:    w,
		Bias:       b,
		Activation: act,
	})
}

// label returns the one-hot target for x: class 0 ("first class") when
// x0 > x1, class 1 ("second class") otherwise.
func label(x []float32) []float32 {
	if x[0] > x[1] {
		return []float32{1, 0}
	}
	return []float32{0, 1}
}

func sample(rng *prng.PRNG) []float32 {
	return []float32{rng.Float32() * 20, rng.Float32() * 20}
}

func main() {
	rng := prng.New(0)

	relu1, err := activation.New(activation.LeakyReLU, 2)
	if err != nil {
		log.Fatal(err)
	}
	relu1.LeakyReLULeak = 0
	relu2, err := activation.New(activation.LeakyReLU, 2)
	if err != nil {
		log.Fatal(err)
	}
	relu2.LeakyReLULeak = 0
	soft, err := activation.New(activation.Softmax, 2)
	if err != nil {
		log.Fatal(err)
	}

	p0, err := denseLayer(true, 2, 2, relu1, rng)
	if err != nil {
		log.Fatal(err)
	}
	p1, err := denseLayer(false, 2, 2, relu2, rng)
	if err != nil {
		log.Fatal(err)
	}
	p2, err := denseLayer(false, 2, 2, soft, rng)
	if err != nil {
		log.Fatal(err)
	}

	f, err := flower.New([]*petal.Petal{p0, p1, p2})
	if err != nil {
		log.Fatal(err)
	}

	trainX := make([][]float32, 800)
	trainY := make([][]float32, 800)
	for i := range trainX {
		trainX[i] = sample(rng)
		trainY[i] = label(trainX[i])
	}
	valX := make([][]float32, 200)
	valY := make([][]float32, 200)
	for i := range valX {
		valX[i] = sample(rng)
		valY[i] = label(valX[i])
	}

	err = f.Train(flower.TrainConfig{
		LossKind:  loss.CCE,
		Optimizer: optimizer.NewAdam(0.01, 0.89, 0.99),
		Train:     flower.Dataset{X: trainX, Y: trainY},
		Val:       flower.Dataset{X: valX, Y: valY},
		BatchSize: 40,
		Epochs:    10,
		RNG:       rng,
		Sink:      flower.LoggingSink{Interval: 1},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, x := range [][]float32{{1, 10}, {20, 10}, {-1, 10}} {
		pred, err := f.Predict(x)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("predict(%v) = %v\n", x, pred)
	}
}
