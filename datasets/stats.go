package datasets

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the contents of a View.
type Summary struct {
	Samples   int
	TimeSteps int

	// LabelCounts maps each label to the number of samples carrying it.
	LabelCounts map[int16]int

	ImageMean, ImageStd float64

	// StateMean and StateStd are per state channel.
	StateMean, StateStd []float64

	// ControlZero is true when every control value is zero, which is always
	// the case for a zero-filled control array.
	ControlZero bool
}

// Summarize computes a Summary of the view.
func (v *View) Summarize() Summary {
	s := Summary{
		Samples:     v.Len(),
		LabelCounts: make(map[int16]int),
	}
	if shape := v.Image().Shape; len(shape) > 1 {
		s.TimeSteps = shape[1]
	}

	labels := v.Label()
	for i := range labels.Len() {
		row, _ := labels.Row(i)
		if len(row) > 0 {
			s.LabelCounts[row[0]]++
		}
	}

	s.ImageMean, s.ImageStd = meanStd(v.Image().Data)

	state := v.State()
	if len(state.Shape) == 3 {
		channels := state.Shape[2]
		s.StateMean = make([]float64, channels)
		s.StateStd = make([]float64, channels)
		for c := range channels {
			col := make([]float64, 0, len(state.Data)/max(channels, 1))
			for i := c; i < len(state.Data); i += channels {
				col = append(col, float64(state.Data[i]))
			}
			s.StateMean[c], s.StateStd[c] = stat.MeanStdDev(col, nil)
		}
	}

	control := toFloat64(v.Control().Data)
	s.ControlZero = len(control) == 0 || floats.Norm(control, 1) == 0
	return s
}

func meanStd(data []float32) (mean, std float64) {
	if len(data) == 0 {
		return 0, 0
	}
	return stat.MeanStdDev(toFloat64(data), nil)
}

func toFloat64(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
