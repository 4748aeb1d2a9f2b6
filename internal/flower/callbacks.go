package flower

import (
	"fmt"
	"math"
)

// BatchMetrics is what Flower.Train reports to the external collaborator
// after every batch: the "progress-bar metrics printer" spec.md places
// out of the core's scope. The core never formats or prints; it only
// calls MetricsSink.OnBatch.
type BatchMetrics struct {
	Epoch         int
	Batch         int
	TrainLoss     float32
	TrainAccuracy float32
	HasVal        bool
	ValLoss       float32
	ValAccuracy   float32
}

// MetricsSink receives per-batch and per-epoch training metrics. The
// zero-value NopSink discards everything; callers outside the core
// (a CLI progress bar, a CSV writer) implement this to observe training.
type MetricsSink interface {
	OnBatch(m BatchMetrics)
	OnEpochEnd(epoch int, meanTrainLoss float32)
}

// NopSink implements MetricsSink by discarding every call; it is the
// default when Train is called with a nil sink.
type NopSink struct{}

func (NopSink) OnBatch(BatchMetrics)    {}
func (NopSink) OnEpochEnd(int, float32) {}

// LoggingSink prints progress every Interval epochs via the standard
// logger, matching the original engine's console-logging callback
// without pulling a structured-logging dependency into the core.
type LoggingSink struct {
	Interval int
}

func (l LoggingSink) OnBatch(BatchMetrics) {}

func (l LoggingSink) OnEpochEnd(epoch int, meanTrainLoss float32) {
	if l.Interval > 0 && epoch%l.Interval == 0 {
		fmt.Printf("epoch %d: mean loss = %.6f\n", epoch, meanTrainLoss)
	}
}

// EarlyStopping is a MetricsSink that tracks whether mean epoch loss has
// stopped improving by more than Threshold for Patience consecutive
// epochs. Callers check Stopped after OnEpochEnd and break their own
// epoch loop; the core training loop itself has no early-exit hook.
type EarlyStopping struct {
	Patience  int
	Threshold float32

	bestLoss     float32
	numBadEpochs int
	Stopped      bool
}

// NewEarlyStopping builds an EarlyStopping tracker.
func NewEarlyStopping(patience int, threshold float32) *EarlyStopping {
	return &EarlyStopping{Patience: patience, Threshold: threshold, bestLoss: math.MaxFloat32}
}

func (e *EarlyStopping) OnBatch(BatchMetrics) {}

func (e *EarlyStopping) OnEpochEnd(epoch int, meanTrainLoss float32) {
	if meanTrainLoss < e.bestLoss-e.Threshold {
		e.bestLoss = meanTrainLoss
		e.numBadEpochs = 0
	} else {
		e.numBadEpochs++
	}
	if e.numBadEpochs >= e.Patience {
		e.Stopped = true
	}
}
