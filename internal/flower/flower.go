// Package flower implements PetalFlow's top-level model: an ordered
// stack of petals plus the training orchestration that chains forward,
// loss, backward, and the optimizer step across a mini-batch.
package flower

import (
	"gonum.org/v1/gonum/stat"

	"github.com/fernlane/petalflow-go/internal/labeling"
	"github.com/fernlane/petalflow-go/internal/loss"
	"github.com/fernlane/petalflow-go/internal/optimizer"
	"github.com/fernlane/petalflow-go/internal/petal"
	"github.com/fernlane/petalflow-go/internal/petalerr"
	"github.com/fernlane/petalflow-go/internal/prng"
)

// Flower is a linear stack of petals. Adjacent petals' shapes must
// already agree; New does not attempt to coerce a mismatch.
type Flower struct {
	Petals []*petal.Petal
	loss   *loss.Loss
}

// New validates the stack and wraps it in a Flower. The Loss record is
// allocated lazily by Train (via loss.New), matching spec's
// "lazily-allocated Loss record" data model.
func New(petals []*petal.Petal) (*Flower, error) {
	if len(petals) == 0 {
		return nil, petalerr.New("flower.New", petalerr.FlowerNoLayers)
	}
	for i := 0; i+1 < len(petals); i++ {
		if petals[i].OutputShape.Length != petals[i+1].Input.Length {
			return nil, petalerr.New("flower.New", petalerr.ShapesNotEqual)
		}
	}
	return &Flower{Petals: petals}, nil
}

// Predict runs the forward chain in inference mode (dropout inactive)
// and returns the final petal's output, borrowed — callers must copy if
// they need it to outlive the next Predict/Train call.
func (f *Flower) Predict(input []float32) ([]float32, error) {
	return f.forward(input, false, nil)
}

func (f *Flower) forward(input []float32, training bool, rng *prng.PRNG) ([]float32, error) {
	cur := input
	for _, p := range f.Petals {
		if err := p.Forward(cur, training, rng); err != nil {
			return nil, err
		}
		cur = p.Output()
	}
	return cur, nil
}

// backward runs the layer backward chain from last to first. lossGrad is
// ∂L/∂ŷ for the final petal; input is the flower's raw input, which the
// first petal needs as its "left output" for the weight gradient.
func (f *Flower) backward(lossGrad []float32, input []float32) error {
	n := len(f.Petals)
	errRight := lossGrad
	for i := n - 1; i >= 0; i-- {
		var leftOutput []float32
		if i == 0 {
			leftOutput = input
		} else {
			leftOutput = f.Petals[i-1].Output()
		}
		if err := f.Petals[i].Backward(errRight, leftOutput); err != nil {
			return err
		}
		if i > 0 {
			errRight = f.Petals[i].UpstreamError()
		}
	}
	return nil
}

// applyOptimizer applies opt to every trainable weight and bias tensor
// in the stack, once, after the whole batch's gradients have
// accumulated. The optimizer never runs per-sample in batch mode.
func (f *Flower) applyOptimizer(opt optimizer.Optimizer) error {
	for _, p := range f.Petals {
		if p.Weights != nil {
			if err := p.Weights.Update(opt); err != nil {
				return err
			}
		}
		if p.Bias != nil {
			if err := p.Bias.Update(opt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dataset is a flower's view of a training or validation set: either
// dense one-hot/multi-hot targets (Y) or sparse label indices (Labels),
// exactly one of which should be non-nil.
type Dataset struct {
	X      [][]float32
	Y      [][]float32
	Labels [][]int // sparse alternative to Y; converted via labeling.MultiHot/OneHot
}

func (d Dataset) len() int {
	return len(d.X)
}

// target returns the dense target vector for sample i, converting a
// sparse label list on demand. outLen is the output layer's length.
func (d Dataset) target(i, outLen int) []float32 {
	if d.Y != nil {
		return d.Y[i]
	}
	labels := d.Labels[i]
	if len(labels) == 1 {
		return labeling.OneHot(labels[0], outLen, 0, 1)
	}
	return labeling.MultiHot(labels, outLen, 0, 1)
}

// TrainConfig bundles every input Flower.Train needs.
type TrainConfig struct {
	LossKind  loss.Kind
	Optimizer optimizer.Optimizer
	Train     Dataset
	Val       Dataset // Val.X == nil disables the validation pass
	BatchSize int
	Epochs    int
	Sink      MetricsSink // nil defaults to NopSink
	RNG       *prng.PRNG  // nil defaults to prng.Default
}

// Train runs Epochs passes over Train, each split into
// ceil(len/BatchSize) batches. Every batch: forward+loss+backward over
// every sample in the batch (gradients accumulate across the whole
// batch), one optimizer step per layer, then — if Val is set — a
// forward-only validation pass over the same batch window. Per-batch
// metrics are reported to cfg.Sink.
func (f *Flower) Train(cfg TrainConfig) error {
	if cfg.BatchSize < 1 {
		return petalerr.New("flower.Train", petalerr.WrongBatchSize)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	rng := cfg.RNG
	if rng == nil {
		rng = prng.Default
	}

	outLen := f.Petals[len(f.Petals)-1].OutputShape.Length
	lossRecord, err := loss.New(cfg.LossKind, outLen)
	if err != nil {
		return err
	}
	f.loss = lossRecord

	n := cfg.Train.len()
	batchesPerEpoch := (n + cfg.BatchSize - 1) / cfg.BatchSize

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		shuffleJoint(cfg.Train, rng)

		var epochLosses []float64
		for batch := 0; batch < batchesPerEpoch; batch++ {
			from := batch * cfg.BatchSize
			to := from + cfg.BatchSize
			if to > n {
				to = n
			}

			var trainLosses, trainAcc []float64
			for i := from; i < to; i++ {
				pred, err := f.forward(cfg.Train.X[i], true, rng)
				if err != nil {
					return err
				}
				target := cfg.Train.target(i, outLen)
				predCopy := append([]float32(nil), pred...)
				lv, err := f.loss.Forward(predCopy, target)
				if err != nil {
					return err
				}
				trainLosses = append(trainLosses, float64(lv))
				trainAcc = append(trainAcc, float64(labeling.Accuracy(predCopy, target)))

				grad, err := f.loss.Backward()
				if err != nil {
					return err
				}
				if err := f.backward(grad, cfg.Train.X[i]); err != nil {
					return err
				}
			}

			if err := f.applyOptimizer(cfg.Optimizer); err != nil {
				return err
			}

			m := BatchMetrics{
				Epoch:     epoch,
				Batch:     batch,
				TrainLoss: float32(stat.Mean(trainLosses, nil)),
			}
			if len(trainAcc) > 0 {
				m.TrainAccuracy = float32(stat.Mean(trainAcc, nil))
			}
			epochLosses = append(epochLosses, trainLosses...)

			if cfg.Val.len() > 0 {
				valLosses, valAcc := f.validationPass(cfg.Val, from, to, outLen)
				m.HasVal = true
				if len(valLosses) > 0 {
					m.ValLoss = float32(stat.Mean(valLosses, nil))
					m.ValAccuracy = float32(stat.Mean(valAcc, nil))
				}
			}
			sink.OnBatch(m)
		}
		sink.OnEpochEnd(epoch, float32(stat.Mean(epochLosses, nil)))
	}
	return nil
}

func (f *Flower) validationPass(val Dataset, from, to, outLen int) ([]float64, []float64) {
	n := val.len()
	if from >= n {
		return nil, nil
	}
	if to > n {
		to = n
	}
	var losses, accs []float64
	for i := from; i < to; i++ {
		pred, err := f.forward(val.X[i], false, nil)
		if err != nil {
			continue
		}
		target := val.target(i, outLen)
		predCopy := append([]float32(nil), pred...)
		lv, err := f.loss.Forward(predCopy, target)
		if err != nil {
			continue
		}
		losses = append(losses, float64(lv))
		accs = append(accs, float64(labeling.Accuracy(predCopy, target)))
	}
	return losses, accs
}

// shuffleJoint permutes Train.X, Train.Y/Labels together via Fisher-
// Yates, kept as flower's private helper rather than a reusable
// standalone package: spec.md places dataset-shuffling glue outside core
// scope, but the per-epoch joint shuffle is itself part of the training
// loop's contract, so it stays an unexported implementation detail here,
// exactly as the original engine's shuffle_2d is private to its training
// function.
func shuffleJoint(d Dataset, rng *prng.PRNG) {
	n := d.len()
	for i := n - 1; i > 0; i-- {
		j := int(rng.Uint32() % uint32(i+1))
		d.X[i], d.X[j] = d.X[j], d.X[i]
		if d.Y != nil {
			d.Y[i], d.Y[j] = d.Y[j], d.Y[i]
		}
		if d.Labels != nil {
			d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
		}
	}
}
