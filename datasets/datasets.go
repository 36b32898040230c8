package datasets

// This file describes how the state-space-model archives are loaded and
// presented to a training loop.
//
// Layout and intended usage:
//
// Archive
//   - One compressed NumPy archive (.npz) per split, found at
//     <data_root>/<dataset>/<split>.npz
//   - Required arrays: image (samples x time x ...), label (samples),
//     state (samples x time x channels, only the first 2 channels are kept)
//   - Optional array: control (samples x time x control_dim). When missing a
//     zero-filled (samples x time x 1) array is used instead.
//
// View
//   - A random subset (without replacement) of the archive rows, sized by
//     Config.DatasetPercent and materialized once. The same row list is
//     applied to all four arrays so samples stay aligned.
//
// BatchIterator
//   - Bounded: one pass over the view, optionally shuffled per pass.
//   - Resampling: NumSteps batches of BatchSize drawn with replacement,
//     used for training.
//
// Batches are handed to gomlx as five parallel tensors: index, image, state
// and control as inputs, label as the only label tensor.

// DataModule is the set of named batch sources a training run asks for.
// Loader implements it.
type DataModule interface {
	TrainDataloader() (*BatchIterator, error)
	EvaluateTrainDataloader() (*BatchIterator, error)
	ValDataloader() (*BatchIterator, error)
	TestDataloader() (*BatchIterator, error)
}

// Dataset is the random-access view of loaded samples that batch iterators
// read from. View implements it; NewBoundedIterator and
// NewResamplingIterator accept any implementation.
type Dataset interface {
	Len() int
	Record(i int) (Record, error)
	Gather(indices []int) (*Batch, error)
}
