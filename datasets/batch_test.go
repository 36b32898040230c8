package datasets

import (
	"reflect"
	"testing"
)

func TestBatch_ToGomlxTensors(t *testing.T) {
	b := &Batch{
		Index:   []int{3, 1},
		Image:   Array[float32]{Data: []float32{1, 2, 3, 4, 5, 6}, Shape: []int{2, 3}},
		Label:   Array[int16]{Data: []int16{7, 8}, Shape: []int{2}},
		State:   Array[float32]{Data: []float32{1, 2, 3, 4}, Shape: []int{2, 1, 2}},
		Control: NewArray[float32](2, 1, 1),
	}
	inputs, labels, err := b.ToGomlxTensors()
	if err != nil {
		t.Fatalf("ToGomlxTensors failed: %v", err)
	}
	if len(inputs) != 4 || len(labels) != 1 {
		t.Fatalf("expected 4 inputs and 1 label, got %d and %d", len(inputs), len(labels))
	}
	for i, want := range [][]int{{2, 1}, {2, 3}, {2, 1, 2}, {2, 1, 1}} {
		if got := inputs[i].Shape().Dimensions; !reflect.DeepEqual(got, want) {
			t.Fatalf("input %d shape: got %v want %v", i, got, want)
		}
	}
	if got := labels[0].Shape().Dimensions; !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("label shape: got %v want [2]", got)
	}
}

func TestBatch_ToGomlxTensorsMisaligned(t *testing.T) {
	b := &Batch{
		Index:   []int{0, 1},
		Image:   Array[float32]{Data: []float32{1}, Shape: []int{1, 1}},
		Label:   Array[int16]{Data: []int16{7, 8}, Shape: []int{2}},
		State:   NewArray[float32](2, 1, 2),
		Control: NewArray[float32](2, 1, 1),
	}
	if _, _, err := b.ToGomlxTensors(); err == nil {
		t.Fatalf("expected error for misaligned batch")
	}
}
