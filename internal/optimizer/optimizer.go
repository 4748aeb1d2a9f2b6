// Package optimizer holds PetalFlow's optimizer configuration: a pure,
// stateless record describing which update rule to apply and its
// hyperparameters. All per-parameter state (gradient accumulator,
// moment, velocity, step counter) lives in weights.Weights, not here —
// the same optimizer config is shared across every layer in a flower.
package optimizer

// Kind selects one of the four supported update rules.
type Kind int

const (
	SGDMomentum Kind = iota
	RMSProp
	AdaGrad
	Adam
)

// Optimizer is the pure configuration record. LearningRate applies to
// every kind; Momentum is read only by SGDMomentum; Beta1/Beta2 are read
// by RMSProp (Beta1 only) and Adam (both).
type Optimizer struct {
	Kind         Kind
	LearningRate float32
	Momentum     float32
	Beta1        float32
	Beta2        float32
}

// NewSGD builds an SGD+momentum config. momentum=0 collapses the update
// rule to plain gradient descent.
func NewSGD(learningRate, momentum float32) Optimizer {
	return Optimizer{Kind: SGDMomentum, LearningRate: learningRate, Momentum: momentum}
}

// NewRMSProp builds an RMSProp config with the given decay rate.
func NewRMSProp(learningRate, decay float32) Optimizer {
	return Optimizer{Kind: RMSProp, LearningRate: learningRate, Beta1: decay}
}

// NewAdaGrad builds an AdaGrad config.
func NewAdaGrad(learningRate float32) Optimizer {
	return Optimizer{Kind: AdaGrad, LearningRate: learningRate}
}

// NewAdam builds an Adam config with the given moment decay rates.
func NewAdam(learningRate, beta1, beta2 float32) Optimizer {
	return Optimizer{Kind: Adam, LearningRate: learningRate, Beta1: beta1, Beta2: beta2}
}
