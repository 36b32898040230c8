package datasets

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// Split names one of the archives of a dataset.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// ParseSplit validates a split name.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case SplitTrain, SplitVal, SplitTest:
		return Split(s), nil
	}
	return "", fmt.Errorf("%w: unknown split %q", ErrInvalidConfiguration, s)
}

// Loader builds the batch iterators of one dataset. Every call to Load reads
// its archive again and owns the result, so iterators never share state.
// Load and the accessors may be called from several goroutines.
type Loader struct {
	Config Config

	mu sync.Mutex
	// rng seeds the random source of each Load. Guarded by mu.
	rng *rand.Rand
}

var _ DataModule = (*Loader)(nil)

// NewLoader validates cfg and returns a Loader for it.
func NewLoader(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Loader{
		Config: cfg,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Load reads the archive of split, subsamples it and wraps it in a batch
// iterator. The training split outside of evaluation gets a resampling
// iterator, where shuffle is ignored; every other case gets a bounded one.
func (l *Loader) Load(split Split, evaluation, shuffle bool) (*BatchIterator, error) {
	if _, err := ParseSplit(string(split)); err != nil {
		return nil, err
	}
	path := l.Config.ArchivePath(split)
	archive, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(l.childSeed()))
	view, err := NewView(archive, l.Config.DatasetPercent, rng)
	if err != nil {
		return nil, fmt.Errorf("subsample %s: %w", path, err)
	}

	name := fmt.Sprintf("%s/%s", l.Config.Dataset, split)
	var it *BatchIterator
	if split == SplitTrain && !evaluation {
		it, err = NewResamplingIterator(name, view, l.Config.BatchSize, l.Config.NumSteps, rng)
	} else {
		it, err = NewBoundedIterator(name, view, l.Config.BatchSize, shuffle, rng)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	klog.V(1).Infof("%s: %d of %d samples, %s iterator, %d batches of %d",
		name, view.Len(), archive.Len(), it.Policy(), it.NumBatches(), it.BatchSize())
	return it, nil
}

func (l *Loader) childSeed() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Int63()
}

// TrainDataloader returns the resampling iterator used for training.
func (l *Loader) TrainDataloader() (*BatchIterator, error) {
	return l.Load(SplitTrain, false, true)
}

// EvaluateTrainDataloader returns one ordered pass over the training split.
func (l *Loader) EvaluateTrainDataloader() (*BatchIterator, error) {
	return l.Load(SplitTrain, true, false)
}

// ValDataloader returns one ordered pass over the validation split.
func (l *Loader) ValDataloader() (*BatchIterator, error) {
	return l.Load(SplitVal, false, false)
}

// TestDataloader returns one ordered pass over the test split.
func (l *Loader) TestDataloader() (*BatchIterator, error) {
	return l.Load(SplitTest, false, false)
}
