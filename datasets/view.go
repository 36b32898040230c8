package datasets

import (
	"fmt"
	"math/rand"
)

// View is the in-memory, subsampled selection of an Archive's samples that
// batches are drawn from. It is built once and never modified, so it can be
// read from any number of goroutines.
type View struct {
	// rows[i] is the archive row that view sample i was taken from.
	rows []int

	// arrays holds the gathered rows, aligned by view position.
	arrays *Archive
}

var _ Dataset = (*View)(nil)

// NewView draws floor(a.Len() * percent) distinct rows of a uniformly at
// random and gathers them from all four arrays.
func NewView(a *Archive, percent float64, rng *rand.Rand) (*View, error) {
	if a == nil {
		return nil, fmt.Errorf("archive is nil")
	}
	if !(percent > 0 && percent <= 1) {
		return nil, fmt.Errorf("%w: dataset_percent must be in (0, 1], got %v", ErrInvalidConfiguration, percent)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is nil")
	}

	n := a.Len()
	count := int(float64(n) * percent)
	rows := rng.Perm(n)[:count]

	// The same rows must go to every array, otherwise samples get mixed up.
	gathered := &Archive{Path: a.Path, HasControl: a.HasControl}
	var err error
	if gathered.Image, err = a.Image.Gather(rows); err != nil {
		return nil, fmt.Errorf("gather image: %w", err)
	}
	if gathered.Label, err = a.Label.Gather(rows); err != nil {
		return nil, fmt.Errorf("gather label: %w", err)
	}
	if gathered.State, err = a.State.Gather(rows); err != nil {
		return nil, fmt.Errorf("gather state: %w", err)
	}
	if gathered.Control, err = a.Control.Gather(rows); err != nil {
		return nil, fmt.Errorf("gather control: %w", err)
	}

	return &View{rows: rows, arrays: gathered}, nil
}

// Len returns the number of samples in the view.
func (v *View) Len() int {
	return len(v.rows)
}

// SourceRows returns the archive row of every view sample, in view order.
func (v *View) SourceRows() []int {
	return append([]int(nil), v.rows...)
}

// Image returns the gathered image array.
func (v *View) Image() Array[float32] { return v.arrays.Image }

// Label returns the gathered label array.
func (v *View) Label() Array[int16] { return v.arrays.Label }

// State returns the gathered state array, narrowed to 2 channels.
func (v *View) State() Array[float32] { return v.arrays.State }

// Control returns the gathered control array.
func (v *View) Control() Array[float32] { return v.arrays.Control }

// HasControl reports whether the control array came from the archive
// rather than being zero-filled.
func (v *View) HasControl() bool { return v.arrays.HasControl }

// Record returns view sample i.
func (v *View) Record(i int) (Record, error) {
	if i < 0 || i >= v.Len() {
		return Record{}, fmt.Errorf("%w: sample %d not in [0, %d)", ErrIndexOutOfBounds, i, v.Len())
	}
	return newRecord(v.arrays, i)
}

// Gather builds a batch from the view samples at indices, in that order.
// Indices may repeat.
func (v *View) Gather(indices []int) (*Batch, error) {
	for _, i := range indices {
		if i < 0 || i >= v.Len() {
			return nil, fmt.Errorf("%w: sample %d not in [0, %d)", ErrIndexOutOfBounds, i, v.Len())
		}
	}
	image, err := v.arrays.Image.Gather(indices)
	if err != nil {
		return nil, err
	}
	label, err := v.arrays.Label.Gather(indices)
	if err != nil {
		return nil, err
	}
	state, err := v.arrays.State.Gather(indices)
	if err != nil {
		return nil, err
	}
	control, err := v.arrays.Control.Gather(indices)
	if err != nil {
		return nil, err
	}
	return &Batch{
		Index:   append([]int(nil), indices...),
		Image:   image,
		Label:   label,
		State:   state,
		Control: control,
	}, nil
}
