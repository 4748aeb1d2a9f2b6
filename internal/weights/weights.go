// Package weights owns PetalFlow's trainable parameter tensors: the
// values W, the gradient accumulator G, and the two optimizer state
// tensors M and V, plus the seven initializer policies and the four
// optimizer update rules that mutate them.
package weights

import (
	"math"

	"github.com/fernlane/petalflow-go/internal/optimizer"
	"github.com/fernlane/petalflow-go/internal/petalerr"
	"github.com/fernlane/petalflow-go/internal/prng"
)

// Epsilon bounds every division or logarithm against zero, matching the
// original engine's fixed small constant.
const Epsilon = 1e-15

// Initializer selects one of the seven parameter-initialization policies.
type Initializer int

const (
	Constant Initializer = iota
	RandomUniform
	RandomGaussian
	XavierGlorotUniform
	XavierGlorotGaussian
	KaimingHeUniform
	KaimingHeGaussian
)

// InitializerMode controls whether Xavier/Kaiming scaling reproduces the
// original engine's collapsed (fan-in/fan-out-agnostic) formula or
// computes true fan-in-based Kaiming scaling. spec.md §4.4 leaves this as
// an open config switch; ModeCollapsed is the default because it is the
// one spec.md's bit-exactness language was written against.
type InitializerMode int

const (
	// ModeCollapsed reproduces the original: every Xavier/Kaiming variant
	// scales by sqrt(6/N) (uniform) or sqrt(2/N) (gaussian) where N is
	// the tensor's total length, ignoring fan-in vs fan-out.
	ModeCollapsed InitializerMode = iota
	// ModeFanInOut computes Kaiming-He scaling from a caller-supplied
	// fan-in instead of total length.
	ModeFanInOut
)

// Weights is the parameter record for one trainable tensor. All four
// tensors share LengthTotal and are only ever constructed together.
type Weights struct {
	Trainable   bool
	Initializer Initializer
	LengthTotal int
	Center      float32
	Deviation   float32

	W []float32 // parameter values
	G []float32 // gradient accumulator
	M []float32 // first-moment buffer (Adam)
	V []float32 // velocity / cache (SGD-momentum velocity, RMSProp/AdaGrad running squared, Adam second moment)

	step int // Adam bias-correction step counter, t

	mode  InitializerMode
	fanIn int
}

// New allocates a Weights record of the given length, applies the chosen
// initializer to W, and allocates G/M/V only when trainable (matching the
// original's lazy-gradient-on-trainable-only behavior).
func New(trainable bool, init Initializer, length int, center, deviation float32, rng *prng.PRNG) (*Weights, error) {
	if length <= 0 {
		return nil, petalerr.New("weights.New", petalerr.ShapeZero)
	}
	w := &Weights{
		Trainable:   trainable,
		Initializer: init,
		LengthTotal: length,
		Center:      center,
		Deviation:   deviation,
		W:           make([]float32, length),
		mode:        ModeCollapsed,
		fanIn:       length,
	}
	if trainable {
		w.G = make([]float32, length)
		w.M = make([]float32, length)
		w.V = make([]float32, length)
	}
	if err := w.initialize(rng); err != nil {
		return nil, err
	}
	return w, nil
}

// SetFanInOut switches this weights record to ModeFanInOut with the given
// fan-in, used for Kaiming-He scaling that accounts for fan-in distinctly
// from total length. Must be called before the initializer runs to take
// effect; New always initializes eagerly, so callers wanting this mode
// should call NewWithFanIn instead.
func (w *Weights) SetFanInOut(fanIn int) {
	w.mode = ModeFanInOut
	w.fanIn = fanIn
}

// NewWithFanIn is New but initializes using ModeFanInOut Kaiming scaling,
// where fanIn is the number of inputs feeding each output unit.
func NewWithFanIn(trainable bool, init Initializer, length, fanIn int, center, deviation float32, rng *prng.PRNG) (*Weights, error) {
	if length <= 0 {
		return nil, petalerr.New("weights.NewWithFanIn", petalerr.ShapeZero)
	}
	w := &Weights{
		Trainable:   trainable,
		Initializer: init,
		LengthTotal: length,
		Center:      center,
		Deviation:   deviation,
		W:           make([]float32, length),
		mode:        ModeFanInOut,
		fanIn:       fanIn,
	}
	if trainable {
		w.G = make([]float32, length)
		w.M = make([]float32, length)
		w.V = make([]float32, length)
	}
	if err := w.initialize(rng); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Weights) initialize(rng *prng.PRNG) error {
	n := w.LengthTotal
	switch w.Initializer {
	case Constant:
		for i := range w.W {
			w.W[i] = w.Center
		}
	case RandomUniform:
		for i := range w.W {
			w.W[i] = w.Center + (2*rng.Float32()-1)*w.Deviation
		}
	case RandomGaussian:
		fillGaussian(w.W, w.Center, w.Deviation, rng)
	case XavierGlorotUniform:
		limit := float32(math.Sqrt(6.0 / float64(n)))
		for i := range w.W {
			w.W[i] = (2*rng.Float32() - 1) * limit
		}
	case XavierGlorotGaussian:
		limit := float32(math.Sqrt(2.0 / float64(n)))
		fillGaussian(w.W, 0, limit, rng)
	case KaimingHeUniform:
		fanN := n
		if w.mode == ModeFanInOut {
			fanN = w.fanIn
		}
		limit := float32(math.Sqrt(6.0 / float64(fanN)))
		for i := range w.W {
			w.W[i] = (2*rng.Float32() - 1) * limit
		}
	case KaimingHeGaussian:
		fanN := n
		if w.mode == ModeFanInOut {
			fanN = w.fanIn
		}
		limit := float32(math.Sqrt(2.0 / float64(fanN)))
		fillGaussian(w.W, 0, limit, rng)
	default:
		return petalerr.New("weights.initialize", petalerr.WrongWeightsInit)
	}
	return nil
}

// fillGaussian draws N(center, deviation^2) samples via Marsaglia's polar
// method: rejection-sample a point in the unit disk, then scale by the
// Box-Muller-style factor; each accepted pair yields two outputs.
func fillGaussian(dst []float32, center, deviation float32, rng *prng.PRNG) {
	i := 0
	for i < len(dst) {
		u := 2*rng.Float64() - 1
		v := 2*rng.Float64() - 1
		s := u*u + v*v
		if s >= 1 || s == 0 {
			continue
		}
		factor := math.Sqrt(-2 * math.Log(s) / s)
		dst[i] = center + deviation*float32(u*factor)
		i++
		if i < len(dst) {
			dst[i] = center + deviation*float32(v*factor)
			i++
		}
	}
}

// ZeroGradients zeros G. Called at creation time implicitly and after
// every optimizer Update.
func (w *Weights) ZeroGradients() {
	for i := range w.G {
		w.G[i] = 0
	}
}

// Update applies opt's rule element-wise to every trainable value, then
// zeros the gradient accumulator. Non-trainable weights are a no-op.
func (w *Weights) Update(opt optimizer.Optimizer) error {
	if !w.Trainable {
		return nil
	}
	switch opt.Kind {
	case optimizer.SGDMomentum:
		for i := range w.W {
			w.V[i] = opt.Momentum*w.V[i] - opt.LearningRate*w.G[i]
			w.W[i] += w.V[i]
		}
	case optimizer.RMSProp:
		for i := range w.W {
			w.V[i] = opt.Beta1*w.V[i] + (1-opt.Beta1)*w.G[i]*w.G[i]
			w.W[i] -= opt.LearningRate * w.G[i] / (float32(math.Sqrt(float64(w.V[i]))) + Epsilon)
		}
	case optimizer.AdaGrad:
		for i := range w.W {
			w.V[i] += w.G[i] * w.G[i]
			w.W[i] -= opt.LearningRate * w.G[i] / (float32(math.Sqrt(float64(w.V[i]))) + Epsilon)
		}
	case optimizer.Adam:
		t := float64(w.step)
		b1t := float32(1 - math.Pow(float64(opt.Beta1), t+1))
		b2t := float32(1 - math.Pow(float64(opt.Beta2), t+1))
		for i := range w.W {
			w.M[i] = opt.Beta1*w.M[i] + (1-opt.Beta1)*w.G[i]
			w.V[i] = opt.Beta2*w.V[i] + (1-opt.Beta2)*w.G[i]*w.G[i]
			mHat := w.M[i] / b1t
			vHat := w.V[i] / b2t
			w.W[i] -= opt.LearningRate * mHat / (float32(math.Sqrt(float64(vHat))) + Epsilon)
		}
		w.step++
	default:
		return petalerr.New("weights.Update", petalerr.WrongOptimizer)
	}
	w.ZeroGradients()
	return nil
}
