// Package petal implements PetalFlow's five layer kinds — Direct,
// Normalize-All, Normalize-In-Rows, Normalize-In-Channels, and Dense-1D
// — each with a forward kernel and a backward kernel, plus the shared
// machinery every kind needs: an optional activation, an optional
// dropout mask, and the output / upstream-error buffers a flower chains
// across layers.
package petal

import (
	"math"

	"github.com/fernlane/petalflow-go/internal/activation"
	"github.com/fernlane/petalflow-go/internal/bitmask"
	"github.com/fernlane/petalflow-go/internal/dropout"
	"github.com/fernlane/petalflow-go/internal/petalerr"
	"github.com/fernlane/petalflow-go/internal/prng"
	"github.com/fernlane/petalflow-go/internal/shape"
	"github.com/fernlane/petalflow-go/internal/weights"
)

// Kind enumerates the five supported layer kinds.
type Kind int

const (
	Direct Kind = iota
	NormalizeAll
	NormalizeInRows
	NormalizeInChannels
	Dense1D
)

// DropoutEpsilon bounds the survivor-scaling division in Forward.
const DropoutEpsilon = 1e-15

// Config describes a petal at construction time.
type Config struct {
	Kind       Kind
	IsFirst    bool
	Input      shape.Shape
	Output     shape.Shape
	Weights    *weights.Weights // Dense1D only; nil sums unweighted
	Bias       *weights.Weights // Dense1D only
	Activation *activation.Activation
	Dropout    float32 // ratio in [0,1]; 0 disables
	Center     float32 // Normalize-* only
	Deviation  float32 // Normalize-* only
}

// Petal is one layer in the flower's stack.
type Petal struct {
	Kind        Kind
	IsFirst     bool
	Input       shape.Shape
	OutputShape shape.Shape
	Weights     *weights.Weights
	Bias        *weights.Weights
	Activation  *activation.Activation
	DropoutRat  float32
	Center      float32
	Deviation   float32

	mask        *bitmask.BitMask // nil when DropoutRat == 0
	output      []float32        // length OutputShape.Length
	upstreamErr []float32        // nil when IsFirst
	dropoutOn   bool             // set during the forward call that sampled mask
}

// New validates cfg and allocates the petal's buffers eagerly (per
// spec's redesign guidance, not lazily on first forward).
func New(cfg Config) (*Petal, error) {
	if cfg.Input.Length == 0 || cfg.Output.Length == 0 {
		return nil, petalerr.New("petal.New", petalerr.ShapeZero)
	}
	switch cfg.Kind {
	case Direct, NormalizeAll, NormalizeInRows, NormalizeInChannels, Dense1D:
	default:
		return nil, petalerr.New("petal.New", petalerr.WrongLayerKind)
	}
	if cfg.Kind != Dense1D && cfg.Input.Length != cfg.Output.Length {
		return nil, petalerr.New("petal.New", petalerr.ShapesNotEqual)
	}

	p := &Petal{
		Kind:        cfg.Kind,
		IsFirst:     cfg.IsFirst,
		Input:       cfg.Input,
		OutputShape: cfg.Output,
		Weights:     cfg.Weights,
		Bias:        cfg.Bias,
		Activation:  cfg.Activation,
		DropoutRat:  cfg.Dropout,
		Center:      cfg.Center,
		Deviation:   cfg.Deviation,
	}

	p.output = make([]float32, cfg.Output.Length)
	if !cfg.IsFirst {
		p.upstreamErr = make([]float32, cfg.Input.Length)
	}
	if cfg.Dropout > 0 {
		mask, err := bitmask.New(cfg.Output.Length)
		if err != nil {
			return nil, err
		}
		p.mask = mask
	}
	return p, nil
}

// Output returns the buffer last written by Forward: the activated
// output, length OutputShape.Length. For Softmax-activated layers the
// Jacobian lives separately in the Activation's own scratch, not here.
func (p *Petal) Output() []float32 {
	return p.output
}

// UpstreamError returns the error-on-input buffer written by Backward,
// or nil if this is the first layer in its flower.
func (p *Petal) UpstreamError() []float32 {
	return p.upstreamErr
}

// Forward runs the kind-specific kernel, the attached activation (if
// any), and dropout compensation scaling, writing into p.Output().
// training selects whether the dropout mask is resampled this call.
func (p *Petal) Forward(input []float32, training bool, rng *prng.PRNG) error {
	if training && p.DropoutRat > 0 {
		dropout.Generate(p.mask, float64(p.DropoutRat), rng)
		p.dropoutOn = true
	} else {
		p.dropoutOn = false
	}

	out := p.Output()
	switch p.Kind {
	case Direct:
		p.forwardDirect(input, out)
	case NormalizeAll:
		p.forwardNormalizeAll(input, out)
	case NormalizeInRows:
		p.forwardNormalizeRows(input, out)
	case NormalizeInChannels:
		p.forwardNormalizeChannels(input, out)
	case Dense1D:
		p.forwardDense(input, out)
	default:
		return petalerr.New("petal.Forward", petalerr.WrongLayerKind)
	}

	if p.Activation != nil {
		if err := p.Activation.Forward(out, p.maskIfOn()); err != nil {
			return err
		}
	}

	if p.dropoutOn {
		scale := float32(1) / (1 - p.DropoutRat + DropoutEpsilon)
		for i := 0; i < p.OutputShape.Length; i++ {
			if out[i] != 0 {
				out[i] *= scale
			}
		}
	}
	return nil
}

func (p *Petal) maskIfOn() *bitmask.BitMask {
	if p.dropoutOn {
		return p.mask
	}
	return nil
}

func (p *Petal) dropped(i int) bool {
	return p.dropoutOn && p.mask.Get(i)
}

func (p *Petal) forwardDirect(input, out []float32) {
	for i := 0; i < p.OutputShape.Length; i++ {
		if p.dropped(i) {
			out[i] = 0
			continue
		}
		out[i] = input[i]
	}
}

func (p *Petal) normalizeRange(lo, hi int, input, out []float32) {
	minV, maxV := float32(math.Inf(1)), float32(math.Inf(-1))
	for i := lo; i < hi; i++ {
		if input[i] < minV {
			minV = input[i]
		}
		if input[i] > maxV {
			maxV = input[i]
		}
	}
	span := maxV - minV + DropoutEpsilon
	for i := lo; i < hi; i++ {
		if p.dropped(i) {
			out[i] = 0
			continue
		}
		out[i] = ((input[i]-minV)/span)*2*p.Deviation + p.Center - p.Deviation
	}
}

func (p *Petal) forwardNormalizeAll(input, out []float32) {
	p.normalizeRange(0, p.Input.Length, input, out)
}

func (p *Petal) forwardNormalizeRows(input, out []float32) {
	cols := p.Input.Cols * p.Input.Depth
	for r := 0; r < p.Input.Rows; r++ {
		p.normalizeRange(r*cols, (r+1)*cols, input, out)
	}
}

func (p *Petal) forwardNormalizeChannels(input, out []float32) {
	depth := p.Input.Depth
	stride := depth
	count := p.Input.Length / depth
	for c := 0; c < depth; c++ {
		minV, maxV := float32(math.Inf(1)), float32(math.Inf(-1))
		for k := 0; k < count; k++ {
			idx := k*stride + c
			if input[idx] < minV {
				minV = input[idx]
			}
			if input[idx] > maxV {
				maxV = input[idx]
			}
		}
		span := maxV - minV + DropoutEpsilon
		for k := 0; k < count; k++ {
			idx := k*stride + c
			if p.dropped(idx) {
				out[idx] = 0
				continue
			}
			out[idx] = ((input[idx]-minV)/span)*2*p.Deviation + p.Center - p.Deviation
		}
	}
}

// forwardDense computes out[j] = sum_i W[j,i]*in[i] + b[j], W stored
// row-major (length output*input). A nil Weights degenerates to an
// unweighted sum of inputs, matching the original engine's fallback.
func (p *Petal) forwardDense(input, out []float32) {
	inLen := p.Input.Length
	outLen := p.OutputShape.Length
	for j := 0; j < outLen; j++ {
		if p.dropped(j) {
			out[j] = 0
			continue
		}
		var sum float32
		if p.Weights != nil {
			row := p.Weights.W[j*inLen : (j+1)*inLen]
			for i := 0; i < inLen; i++ {
				sum += row[i] * input[i]
			}
		} else {
			for i := 0; i < inLen; i++ {
				sum += input[i]
			}
		}
		if p.Bias != nil {
			sum += p.Bias.W[j]
		}
		out[j] = sum
	}
}

// Backward propagates errorRight (the upstream gradient from the next
// layer, or the loss gradient for the last layer) through this petal.
// leftOutput is the previous layer's output (or the flower's raw input,
// for the first layer), needed by Dense-1D's weight gradient.
func (p *Petal) Backward(errorRight, leftOutput []float32) error {
	switch p.Kind {
	case Direct, NormalizeAll, NormalizeInRows, NormalizeInChannels:
		return p.backwardIdentity(errorRight)
	case Dense1D:
		return p.backwardDense(errorRight, leftOutput)
	default:
		return petalerr.New("petal.Backward", petalerr.WrongLayerKind)
	}
}

// backwardIdentity approximates Direct/Normalize-* transfer functions as
// identity for gradient purposes, copying the upstream error through
// unchanged — an open question preserved from the source design.
func (p *Petal) backwardIdentity(errorRight []float32) error {
	if p.IsFirst {
		return nil
	}
	copy(p.upstreamErr, errorRight[:p.Input.Length])
	return nil
}

func (p *Petal) backwardDense(errorRight, leftOutput []float32) error {
	outLen := p.OutputShape.Length
	inLen := p.Input.Length

	var delta []float32
	if p.Activation != nil && p.Activation.Kind == activation.Softmax {
		jac := p.Activation.Jacobian()
		delta = make([]float32, outLen)
		for i := 0; i < outLen; i++ {
			var s float32
			for j := 0; j < outLen; j++ {
				s += jac[i*outLen+j] * errorRight[j]
			}
			delta[i] = s
		}
	} else if p.Activation != nil {
		out := p.Output()
		if err := p.Activation.Backward(out, p.maskIfOn()); err != nil {
			return err
		}
		delta = make([]float32, outLen)
		for j := 0; j < outLen; j++ {
			delta[j] = out[j] * errorRight[j]
		}
	} else {
		// No activation attached: the transfer function is identity,
		// so f'(z) = 1 and delta passes through unchanged.
		delta = make([]float32, outLen)
		copy(delta, errorRight[:outLen])
	}

	if !p.IsFirst {
		for i := range p.upstreamErr {
			p.upstreamErr[i] = 0
		}
	}

	for j := 0; j < outLen; j++ {
		dj := delta[j]
		if p.Weights != nil {
			row := p.Weights.W[j*inLen : (j+1)*inLen]
			if !p.IsFirst {
				for i := 0; i < inLen; i++ {
					p.upstreamErr[i] += row[i] * dj
				}
			}
			if p.Weights.Trainable {
				grad := p.Weights.G[j*inLen : (j+1)*inLen]
				for i := 0; i < inLen; i++ {
					grad[i] += dj * leftOutput[i]
				}
			}
		}
		if p.Bias != nil && p.Bias.Trainable {
			p.Bias.G[j] += dj
		}
	}
	return nil
}
