package datasets

import "fmt"

// Element is the set of element types an Array can hold after loading.
type Element interface {
	float32 | int16
}

// Array is a dense row-major array stored as a flat buffer plus its shape.
// The first dimension indexes samples.
type Array[T Element] struct {
	Data  []T
	Shape []int
}

// NewArray allocates a zero-filled array with the given shape.
func NewArray[T Element](shape ...int) Array[T] {
	return Array[T]{
		Data:  make([]T, numElements(shape)),
		Shape: append([]int(nil), shape...),
	}
}

// Len returns the size of the leading (sample) dimension.
func (a Array[T]) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// RowSize returns the number of elements in one sample.
func (a Array[T]) RowSize() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return numElements(a.Shape[1:])
}

// RowShape returns the shape of one sample.
func (a Array[T]) RowShape() []int {
	if len(a.Shape) == 0 {
		return nil
	}
	return append([]int(nil), a.Shape[1:]...)
}

// Row returns the elements of sample i. The returned slice aliases Data.
func (a Array[T]) Row(i int) ([]T, error) {
	if i < 0 || i >= a.Len() {
		return nil, fmt.Errorf("%w: row %d not in [0, %d)", ErrIndexOutOfBounds, i, a.Len())
	}
	size := a.RowSize()
	return a.Data[i*size : (i+1)*size : (i+1)*size], nil
}

// Gather returns a new array holding the given rows in the given order.
func (a Array[T]) Gather(rows []int) (Array[T], error) {
	shape := append([]int{len(rows)}, a.Shape[1:]...)
	out := NewArray[T](shape...)
	size := a.RowSize()
	for i, r := range rows {
		row, err := a.Row(r)
		if err != nil {
			return Array[T]{}, err
		}
		copy(out.Data[i*size:], row)
	}
	return out, nil
}

// NarrowLast keeps the first k entries of the last axis, or all of them if
// the axis is shorter than k.
func (a Array[T]) NarrowLast(k int) Array[T] {
	if len(a.Shape) == 0 {
		return a
	}
	last := a.Shape[len(a.Shape)-1]
	if k >= last {
		return a
	}
	outer := numElements(a.Shape[:len(a.Shape)-1])
	shape := append([]int(nil), a.Shape...)
	shape[len(shape)-1] = k
	out := NewArray[T](shape...)
	for i := range outer {
		copy(out.Data[i*k:(i+1)*k], a.Data[i*last:i*last+k])
	}
	return out
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
