package datasets

// Record is one aligned sample of a View. The slices alias the view's
// buffers and must not be modified.
type Record struct {
	// Index is the position of the sample in the View.
	Index int

	Image   []float32
	State   []float32
	Control []float32
	Label   int16
}

func newRecord(a *Archive, i int) (Record, error) {
	image, err := a.Image.Row(i)
	if err != nil {
		return Record{}, err
	}
	label, err := a.Label.Row(i)
	if err != nil {
		return Record{}, err
	}
	state, err := a.State.Row(i)
	if err != nil {
		return Record{}, err
	}
	control, err := a.Control.Row(i)
	if err != nil {
		return Record{}, err
	}
	var l int16
	if len(label) > 0 {
		l = label[0]
	}
	return Record{
		Index:   i,
		Image:   image,
		State:   state,
		Control: control,
		Label:   l,
	}, nil
}
