// Command xor trains a tiny dense stack on the XOR function, exercising
// the engine end to end: Dense-1D petals, Leaky ReLU hidden activation,
// Sigmoid output, and Adam. No validation set is passed to training.
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

func buildDense(isFirst bool, in, out int, act *activation.Activation, rng *prng.PRNG) (*petal.Petal, error) {
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

func main() {
	rng := prng.New(0)

	hidden, err := activation.New(activation.LeakyReLU, 4)
	if err != nil {
		log.Fatal(err)
	}
	output, err := activation.New(activation.Sigmoid, 1)
	if err != nil {
		log.Fatal(err)
	}

	p0, err := buildDense(true, 2, 4, hidden, rng)
	if err != nil {
		log.Fatal(err)
	}
	p1, err := buildDense(false, 4, 1, output, rng)
	if err != nil {
		log.Fatal(err)
	}

	f, err := flower.New([]*petal.Petal{p0, p1})
	if err != nil {
		log.Fatal(err)
	}

	x := [][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := [][]float32{{0}, {1}, {1}, {0}}

	err = f.Train(flower.TrainConfig{
		LossKind:  loss.MSE,
		Optimizer: optimizer.NewAdam(0.05, 0.9, 0.999),
		Train:     flower.Dataset{X: x, Y: y},
		BatchSize: 4,
		Epochs:    2000,
		RNG:       rng,
		Sink:      flower.LoggingSink{Interval: 500},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, sample := range x {
		pred, err := f.Predict(sample)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("xor(%v) = %.4f\n", sample, pred[0])
	}
}
