// Package activation implements PetalFlow's nine activation kinds, each
// with a forward pass that activates a buffer in place and a backward
// pass that turns the same buffer into ∂output/∂pre-activation using only
// the scratch this kind saved on forward — never recomputing the
// nonlinearity. A tagged Kind with a per-kind forward/backward is used
// instead of nine small interface implementers: the set is closed,
// small, and numerics-heavy, which spec's design notes call out as the
// better fit for a rewrite.
package activation

import (
	"math"

	"github.com/fernlane/petalflow-go/internal/bitmask"
	"github.com/fernlane/petalflow-go/internal/petalerr"
)

// Kind enumerates the nine supported activations.
type Kind int

const (
	Linear Kind = iota
	LeakyReLU
	ELU
	Softsign
	Sigmoid
	HardSigmoid
	Swish
	Softmax
	Tanh
)

// Activation is a tagged record: the kind, its per-kind scalar
// parameters, and a scratch buffer populated on Forward and consumed by
// Backward. The scratch buffer is allocated eagerly at construction
// (spec's redesign guidance) rather than lazily on first forward, which
// removes the "scratch pointer is nil at backward time" failure mode
// entirely.
type Activation struct {
	Kind Kind

	// LinearAlpha, LinearC: Linear's f(x) = alpha*x + c.
	LinearAlpha, LinearC float32
	// LeakyReLULeak: the negative-side slope.
	LeakyReLULeak float32
	// ELUAlpha: ELU's negative-side scale.
	ELUAlpha float32
	// SwishBeta: Swish/E-Swish's multiplier.
	SwishBeta float32

	scratch []float32 // length L, or L*L for Softmax's Jacobian
	ready   bool
}

// New allocates an Activation of the given kind and output length. Only
// the scalar fields the kind reads need be set by the caller afterward;
// unused fields are ignored.
func New(kind Kind, length int) (*Activation, error) {
	if length <= 0 {
		return nil, petalerr.New("activation.New", petalerr.ShapeZero)
	}
	a := &Activation{
		Kind:          kind,
		LinearAlpha:   1,
		LeakyReLULeak: 0.01,
		ELUAlpha:      1,
		SwishBeta:     1,
	}
	scratchLen := length
	if kind == Softmax {
		scratchLen = length * length
	}
	a.scratch = make([]float32, scratchLen)
	switch kind {
	case Linear, LeakyReLU, ELU, Softsign, Sigmoid, HardSigmoid, Swish, Softmax, Tanh:
	default:
		return nil, petalerr.New("activation.New", petalerr.WrongActivation)
	}
	return a, nil
}

// Forward activates buf in place. mask, if non-nil, marks indices to
// skip (dropped outputs stay untouched, except under Softmax, which sets
// them to 0).
func (a *Activation) Forward(buf []float32, mask *bitmask.BitMask) error {
	switch a.Kind {
	case Linear:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			buf[i] = a.LinearAlpha*x + a.LinearC
			a.scratch[i] = a.LinearAlpha
		}
	case LeakyReLU:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			if x >= 0 {
				a.scratch[i] = 1
			} else {
				buf[i] = a.LeakyReLULeak * x
				a.scratch[i] = a.LeakyReLULeak
			}
		}
	case ELU:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			if x >= 0 {
				a.scratch[i] = 1
			} else {
				f := a.ELUAlpha * (float32(math.Exp(float64(x))) - 1)
				buf[i] = f
				a.scratch[i] = f + a.ELUAlpha
			}
		}
	case Softsign:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			denom := float32(math.Abs(float64(x))) + 1
			buf[i] = x / denom
			a.scratch[i] = 1 / (denom * denom)
		}
	case Sigmoid:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			f := 1 / (1 + float32(math.Exp(float64(-x))))
			buf[i] = f
			a.scratch[i] = f
		}
	case HardSigmoid:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			switch {
			case x < -2.5:
				buf[i] = 0
				a.scratch[i] = 0
			case x > 2.5:
				buf[i] = 1
				a.scratch[i] = 0
			default:
				buf[i] = 0.2*x + 0.5
				a.scratch[i] = 0.2
			}
		}
	case Swish:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			sig := 1 / (1 + float32(math.Exp(float64(-x))))
			f := a.SwishBeta * x * sig
			buf[i] = f
			// scratch holds sigma(x); backward recombines with beta and f.
			a.scratch[i] = sig
		}
	case Softmax:
		a.forwardSoftmax(buf, mask)
	case Tanh:
		for i, x := range buf {
			if dropped(mask, i) {
				continue
			}
			f := float32(math.Tanh(float64(x)))
			buf[i] = f
			a.scratch[i] = f
		}
	default:
		return petalerr.New("activation.Forward", petalerr.WrongActivation)
	}
	a.ready = true
	return nil
}

func (a *Activation) forwardSoftmax(buf []float32, mask *bitmask.BitMask) {
	maxV := float32(math.Inf(-1))
	for i, x := range buf {
		if dropped(mask, i) {
			continue
		}
		if x > maxV {
			maxV = x
		}
	}
	var sum float32
	for i, x := range buf {
		if dropped(mask, i) {
			buf[i] = 0
			continue
		}
		e := float32(math.Exp(float64(x - maxV)))
		buf[i] = e
		sum += e
	}
	if sum == 0 {
		sum = 1
	}
	for i := range buf {
		buf[i] /= sum
	}
	l := len(buf)
	for i := 0; i < l; i++ {
		for j := 0; j < l; j++ {
			var delta float32
			if i == j {
				delta = 1
			}
			a.scratch[i*l+j] = buf[i] * (delta - buf[j])
		}
	}
}

// Backward turns buf (currently holding post-activation values) into
// ∂output/∂pre-activation in place, for every kind except Softmax, for
// which it returns a WrongActivation error; Jacobian exposes Softmax's
// matrix directly for callers (the dense petal) that need to combine it
// with upstream error.
func (a *Activation) Backward(buf []float32, mask *bitmask.BitMask) error {
	if !a.ready {
		return petalerr.New("activation.Backward", petalerr.ActivationNoTemp)
	}
	if a.Kind == Softmax {
		// Softmax's derivative is a full Jacobian, not an elementwise
		// f'(x); callers must use Jacobian combined with the
		// upstream error instead of this elementwise path.
		return petalerr.New("activation.Backward", petalerr.WrongActivation)
	}
	for i := range buf {
		if dropped(mask, i) {
			continue
		}
		switch a.Kind {
		case Swish:
			sig := a.scratch[i]
			f := buf[i]
			buf[i] = f + sig*(a.SwishBeta-f)
		case Sigmoid:
			f := a.scratch[i]
			buf[i] = f * (1 - f)
		case Tanh:
			f := a.scratch[i]
			buf[i] = 1 - f*f
		default:
			buf[i] = a.scratch[i]
		}
	}
	return nil
}

// Jacobian returns the length*length softmax Jacobian computed on the
// last Forward call. Only valid for Kind == Softmax.
func (a *Activation) Jacobian() []float32 {
	return a.scratch
}

func dropped(mask *bitmask.BitMask, i int) bool {
	return mask != nil && mask.Get(i)
}
