// Package petalflow re-exports the engine's internal components under a
// single convenient import, the way the teacher repo's root-level
// facade package re-exported its layer/activation/loss/optimizer types.
package petalflow

import (
	"github.com/fernlane/petalflow-go/internal/activation"
	"github.com/fernlane/petalflow-go/internal/flower"
	"github.com/fernlane/petalflow-go/internal/loss"
	"github.com/fernlane/petalflow-go/internal/optimizer"
	"github.com/fernlane/petalflow-go/internal/petal"
	"github.com/fernlane/petalflow-go/internal/prng"
	"github.com/fernlane/petalflow-go/internal/shape"
	"github.com/fernlane/petalflow-go/internal/weights"
)

// Re-exported types for ergonomic access without reaching into internal/.
type (
	Flower      = flower.Flower
	Petal       = petal.Petal
	PetalConfig = petal.Config
	Activation  = activation.Activation
	Loss        = loss.Loss
	Optimizer   = optimizer.Optimizer
	Weights     = weights.Weights
	Shape       = shape.Shape
	PRNG        = prng.PRNG
	TrainConfig = flower.TrainConfig
	Dataset     = flower.Dataset
)

// Layer kinds.
const (
	Direct              = petal.Direct
	NormalizeAll        = petal.NormalizeAll
	NormalizeInRows     = petal.NormalizeInRows
	NormalizeInChannels = petal.NormalizeInChannels
	Dense1D             = petal.Dense1D
)

// Activation kinds.
const (
	Linear      = activation.Linear
	LeakyReLU   = activation.LeakyReLU
	ELU         = activation.ELU
	Softsign    = activation.Softsign
	Sigmoid     = activation.Sigmoid
	HardSigmoid = activation.HardSigmoid
	Swish       = activation.Swish
	Softmax     = activation.Softmax
	Tanh        = activation.Tanh
)

// Loss kinds.
const (
	MSE   = loss.MSE
	MSLE  = loss.MSLE
	RMSLE = loss.RMSLE
	MAE   = loss.MAE
	BCE   = loss.BCE
	CCE   = loss.CCE
)

// Weight initializers.
const (
	Constant             = weights.Constant
	RandomUniform        = weights.RandomUniform
	RandomGaussian       = weights.RandomGaussian
	XavierGlorotUniform  = weights.XavierGlorotUniform
	XavierGlorotGaussian = weights.XavierGlorotGaussian
	KaimingHeUniform     = weights.KaimingHeUniform
	KaimingHeGaussian    = weights.KaimingHeGaussian
)

// NewShape constructs a Shape, deriving its length.
func NewShape(rows, cols, depth int) (Shape, error) {
	return shape.New(rows, cols, depth)
}

// NewFlatShape constructs a 1-D Shape of the given length.
func NewFlatShape(length int) (Shape, error) {
	return shape.Flat(length)
}

// NewPRNG builds a per-instance generator seeded with seed.
func NewPRNG(seed uint32) *PRNG {
	return prng.New(seed)
}

// NewWeights allocates and initializes a Weights record.
func NewWeights(trainable bool, init weights.Initializer, length int, center, deviation float32, rng *PRNG) (*Weights, error) {
	return weights.New(trainable, init, length, center, deviation, rng)
}

// NewActivation allocates an Activation of the given kind and length.
func NewActivation(kind activation.Kind, length int) (*Activation, error) {
	return activation.New(kind, length)
}

// NewPetal allocates a Petal from cfg.
func NewPetal(cfg PetalConfig) (*Petal, error) {
	return petal.New(cfg)
}

// NewFlower wraps an ordered petal stack.
func NewFlower(petals []*Petal) (*Flower, error) {
	return flower.New(petals)
}

// NewSGD, NewRMSProp, NewAdaGrad, NewAdam build Optimizer configs.
func NewSGD(learningRate, momentum float32) Optimizer { return optimizer.NewSGD(learningRate, momentum) }
func NewRMSProp(learningRate, decay float32) Optimizer { return optimizer.NewRMSProp(learningRate, decay) }
func NewAdaGrad(learningRate float32) Optimizer        { return optimizer.NewAdaGrad(learningRate) }
func NewAdam(learningRate, beta1, beta2 float32) Optimizer {
	return optimizer.NewAdam(learningRate, beta1, beta2)
}
