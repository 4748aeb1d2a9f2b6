// Package loss implements PetalFlow's six loss kinds, each with a
// forward pass that writes the scalar loss and a backward pass that
// overwrites the same buffer with ∂L/∂ŷ, bridging state between the two
// calls through two scratch buffers instead of recomputing it. Every
// logarithm and denominator is epsilon-clamped, matching the original
// engine's numeric-reproducibility policy.
package loss

import (
	"math"

	"github.com/fernlane/petalflow-go/internal/petalerr"
)

// Epsilon bounds every division or logarithm against zero.
const Epsilon = 1e-15

// Kind enumerates the six supported losses.
type Kind int

const (
	MSE Kind = iota
	MSLE
	RMSLE
	MAE
	BCE
	CCE
)

// Loss is a tagged record: the kind, the loss buffer (holds the scalar
// loss in slot 0 after Forward, holds ∂L/∂ŷ after Backward), and two
// scratch buffers that cache state Backward needs without recomputing
// from yPred/yTrue. Buffers are allocated eagerly at construction.
type Loss struct {
	Kind Kind

	buf      []float32 // length L; loss[0] after Forward, gradient after Backward
	scratchA []float32
	scratchB []float32
	lastLoss float32 // snapshot RMSLE needs before buf is overwritten
	ready    bool
	length   int
}

// New allocates a Loss of the given kind for vectors of length L.
func New(kind Kind, length int) (*Loss, error) {
	if length <= 0 {
		return nil, petalerr.New("loss.New", petalerr.ShapeZero)
	}
	switch kind {
	case MSE, MSLE, RMSLE, MAE, BCE, CCE:
	default:
		return nil, petalerr.New("loss.New", petalerr.WrongLossKind)
	}
	return &Loss{
		Kind:     kind,
		buf:      make([]float32, length),
		scratchA: make([]float32, length),
		scratchB: make([]float32, length),
		length:   length,
	}, nil
}

// Value returns the scalar loss computed by the last Forward call.
func (l *Loss) Value() float32 {
	return l.buf[0]
}

// logClamped guards every logarithm against log(0) by flooring the argument at
// Epsilon, matching the original engine's clamped-logarithm policy.
func logClamped(x float32) float32 {
	if x < Epsilon {
		x = Epsilon
	}
	return float32(math.Log(float64(x)))
}

// Forward computes the scalar loss over yPred vs yTrue (both length L)
// and stashes the state Backward will need.
func (l *Loss) Forward(yPred, yTrue []float32) (float32, error) {
	n := float32(l.length)
	var total float32
	switch l.Kind {
	case MSE:
		for i := 0; i < l.length; i++ {
			d := yTrue[i] - yPred[i]
			l.scratchA[i] = d
			total += d * d
		}
		total /= n
	case MSLE:
		for i := 0; i < l.length; i++ {
			ly := logClamped(yTrue[i] + 1)
			lp := logClamped(yPred[i] + 1)
			d := ly - lp
			l.scratchA[i] = d
			l.scratchB[i] = yPred[i]
			total += d * d
		}
		total /= n
	case RMSLE:
		for i := 0; i < l.length; i++ {
			ly := logClamped(yTrue[i] + 1)
			lp := logClamped(yPred[i] + 1)
			d := ly - lp
			l.scratchA[i] = d
			l.scratchB[i] = yPred[i]
			total += d * d
		}
		total /= n
		total = float32(math.Sqrt(float64(total)))
	case MAE:
		for i := 0; i < l.length; i++ {
			d := yTrue[i] - yPred[i]
			l.scratchA[i] = d
			total += float32(math.Abs(float64(d)))
		}
		total /= n
	case BCE:
		for i := 0; i < l.length; i++ {
			y, p := yTrue[i], yPred[i]
			total -= y*logClamped(p) + (1-y)*logClamped(1-p)
			l.scratchA[i] = p
			l.scratchB[i] = y
		}
		total /= n
	case CCE:
		for i := 0; i < l.length; i++ {
			y, p := yTrue[i], yPred[i]
			total -= y * logClamped(p)
			l.scratchA[i] = p
			l.scratchB[i] = y
		}
	default:
		return 0, petalerr.New("loss.Forward", petalerr.WrongLossKind)
	}
	l.buf[0] = total
	l.lastLoss = total
	l.ready = true
	return total, nil
}

// Backward overwrites the loss buffer with ∂L/∂ŷᵢ for every i, using the
// state stashed by Forward. RMSLE in particular needs the forward loss
// value snapshotted in lastLoss before this call starts rewriting buf.
func (l *Loss) Backward() ([]float32, error) {
	if !l.ready {
		return nil, petalerr.New("loss.Backward", petalerr.LossNoTemp)
	}
	n := float32(l.length)
	switch l.Kind {
	case MSE:
		for i := 0; i < l.length; i++ {
			l.buf[i] = -2 * l.scratchA[i] / n
		}
	case MSLE:
		for i := 0; i < l.length; i++ {
			d := l.scratchA[i]
			p := l.scratchB[i]
			l.buf[i] = (-2 / n) * d / (p + 1 + Epsilon)
		}
	case RMSLE:
		denom := 2*l.lastLoss + Epsilon
		for i := 0; i < l.length; i++ {
			d := l.scratchA[i]
			p := l.scratchB[i]
			msleGrad := (-2 / n) * d / (p + 1 + Epsilon)
			l.buf[i] = msleGrad / denom
		}
	case MAE:
		for i := 0; i < l.length; i++ {
			d := l.scratchA[i]
			l.buf[i] = -d / (n*float32(math.Abs(float64(d))) + Epsilon)
		}
	case BCE:
		for i := 0; i < l.length; i++ {
			p := l.scratchA[i]
			y := l.scratchB[i]
			l.buf[i] = (p - y) / (n*(p-p*p) + Epsilon)
		}
	case CCE:
		for i := 0; i < l.length; i++ {
			p := l.scratchA[i]
			y := l.scratchB[i]
			l.buf[i] = -y / (p + Epsilon)
		}
	default:
		return nil, petalerr.New("loss.Backward", petalerr.WrongLossKind)
	}
	return l.buf, nil
}
