package datasets

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"k8s.io/klog/v2"
)

// Policy selects how a BatchIterator orders samples.
type Policy int

const (
	// Bounded makes one pass over the view per epoch, optionally shuffled.
	Bounded Policy = iota
	// Resampling draws NumSteps batches with replacement per epoch.
	Resampling
)

func (p Policy) String() string {
	switch p {
	case Bounded:
		return "bounded"
	case Resampling:
		return "resampling"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// BatchIterator yields batches of a Dataset, usually a View. It implements
// gomlx's train.Dataset.
//
// The order of a pass is fixed when the pass starts (construction or Reset).
// Between two Resets, NumBatches and Batch have no side effects and may be
// called from several goroutines; Next, Yield and Reset may not.
type BatchIterator struct {
	name      string
	data      Dataset
	policy    Policy
	batchSize int
	numSteps  int
	shuffle   bool
	rng       *rand.Rand

	// order lists the view samples of the current pass, batch after batch.
	order []int
	// next is the batch Next returns.
	next int
}

var _ train.Dataset = (*BatchIterator)(nil)

// NewBoundedIterator returns an iterator making one pass over data per
// epoch. The last batch may be smaller than batchSize. With shuffle set each
// pass visits the samples in a new random order.
func NewBoundedIterator(name string, data Dataset, batchSize int, shuffle bool, rng *rand.Rand) (*BatchIterator, error) {
	if isNil(data) {
		return nil, fmt.Errorf("dataset is nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch_size must be > 0, got %d", ErrInvalidConfiguration, batchSize)
	}
	if shuffle && rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}
	it := &BatchIterator{
		name:      name,
		data:      data,
		policy:    Bounded,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rng,
	}
	it.plan()
	return it, nil
}

// NewResamplingIterator returns an iterator yielding exactly numSteps
// batches of batchSize per epoch, each sample drawn uniformly with
// replacement from data.
func NewResamplingIterator(name string, data Dataset, batchSize, numSteps int, rng *rand.Rand) (*BatchIterator, error) {
	if isNil(data) {
		return nil, fmt.Errorf("dataset is nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch_size must be > 0, got %d", ErrInvalidConfiguration, batchSize)
	}
	if numSteps <= 0 {
		return nil, fmt.Errorf("%w: num_steps must be > 0, got %d", ErrInvalidConfiguration, numSteps)
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot resample from an empty dataset", ErrInvalidConfiguration)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}
	it := &BatchIterator{
		name:      name,
		data:      data,
		policy:    Resampling,
		batchSize: batchSize,
		numSteps:  numSteps,
		shuffle:   true,
		rng:       rng,
	}
	it.plan()
	return it, nil
}

// plan fixes the sample order of a new pass.
func (it *BatchIterator) plan() {
	n := it.data.Len()
	switch it.policy {
	case Resampling:
		it.order = make([]int, it.numSteps*it.batchSize)
		for i := range it.order {
			it.order[i] = it.rng.Intn(n)
		}
	default:
		it.order = make([]int, n)
		for i := range it.order {
			it.order[i] = i
		}
		if it.shuffle {
			it.rng.Shuffle(n, func(i, j int) {
				it.order[i], it.order[j] = it.order[j], it.order[i]
			})
		}
	}
	it.next = 0
	klog.V(2).Infof("%s: planned %s pass of %d samples in %d batches", it.name, it.policy, len(it.order), it.NumBatches())
}

// Name implements train.Dataset.
func (it *BatchIterator) Name() string {
	return it.name
}

// Policy returns the iteration policy.
func (it *BatchIterator) Policy() Policy {
	return it.policy
}

// BatchSize returns the configured batch size. Only the last batch of a
// bounded pass can be smaller.
func (it *BatchIterator) BatchSize() int {
	return it.batchSize
}

// Dataset returns the samples the iterator draws from.
func (it *BatchIterator) Dataset() Dataset {
	return it.data
}

// View returns the samples the iterator draws from when they are a View,
// and nil otherwise.
func (it *BatchIterator) View() *View {
	v, _ := it.data.(*View)
	return v
}

// NumBatches returns the number of batches in a pass.
func (it *BatchIterator) NumBatches() int {
	return (len(it.order) + it.batchSize - 1) / it.batchSize
}

// Batch builds batch i of the current pass.
func (it *BatchIterator) Batch(i int) (*Batch, error) {
	if i < 0 || i >= it.NumBatches() {
		return nil, fmt.Errorf("%w: batch %d not in [0, %d)", ErrIndexOutOfBounds, i, it.NumBatches())
	}
	start := i * it.batchSize
	end := min(start+it.batchSize, len(it.order))
	return it.data.Gather(it.order[start:end])
}

// Next returns the next batch of the pass, or io.EOF once the pass is over.
func (it *BatchIterator) Next() (*Batch, error) {
	if it.next >= it.NumBatches() {
		return nil, io.EOF
	}
	b, err := it.Batch(it.next)
	if err != nil {
		return nil, err
	}
	it.next++
	return b, nil
}

// Reset implements train.Dataset. It starts a new pass, re-shuffling or
// re-drawing samples when the policy is randomized.
func (it *BatchIterator) Reset() {
	it.plan()
}

// Yield implements train.Dataset. It returns io.EOF once the pass is over.
func (it *BatchIterator) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	b, err := it.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	inputs, labels, err = b.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, inputs, labels, nil
}

func isNil(data Dataset) bool {
	if data == nil {
		return true
	}
	v, ok := data.(*View)
	return ok && v == nil
}
