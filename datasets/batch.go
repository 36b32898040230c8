package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch stores a batch of aligned samples in flat contiguous buffers. Every
// array's leading dimension is the batch size.
type Batch struct {
	// Index holds the view position of each sample.
	Index []int

	Image   Array[float32]
	Label   Array[int16]
	State   Array[float32]
	Control Array[float32]
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Index)
}

// ToGomlxTensors converts the batch to gomlx tensors. The inputs are index
// (float32, batch x 1), image, state and control; the labels are the label
// tensor alone.
func (b *Batch) ToGomlxTensors() (inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	n := b.Size()
	for name, got := range map[string]int{
		"image":   b.Image.Len(),
		"label":   b.Label.Len(),
		"state":   b.State.Len(),
		"control": b.Control.Len(),
	} {
		if got != n {
			return nil, nil, fmt.Errorf("batch %s has %d samples, want %d", name, got, n)
		}
	}

	index := make([]float32, n)
	for i, idx := range b.Index {
		index[i] = float32(idx)
	}
	inputs = []*tensors.Tensor{
		tensors.FromFlatDataAndDimensions(index, n, 1),
		toTensor(b.Image),
		toTensor(b.State),
		toTensor(b.Control),
	}
	labels = []*tensors.Tensor{toTensor(b.Label)}
	return inputs, labels, nil
}

func toTensor[T Element](a Array[T]) *tensors.Tensor {
	switch data := any(a.Data).(type) {
	case []int16:
		return tensors.FromFlatDataAndDimensions(data, a.Shape...)
	case []float32:
		return tensors.FromFlatDataAndDimensions(data, a.Shape...)
	}
	panic(fmt.Sprintf("unsupported element type %T", a.Data))
}
