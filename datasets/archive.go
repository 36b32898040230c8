package datasets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sbinet/npyio/npz"
	"k8s.io/klog/v2"
)

// Archive holds the four aligned arrays of one split, decoded from a
// compressed NumPy (.npz) file.
type Archive struct {
	// Path of the .npz file the arrays were read from.
	Path string

	Image   Array[float32]
	Label   Array[int16]
	State   Array[float32] // first 2 channels only
	Control Array[float32]

	// HasControl is false when the archive had no control array and Control
	// was filled with zeros.
	HasControl bool
}

// Len returns the number of samples in the archive.
func (a *Archive) Len() int {
	return a.Image.Len()
}

// stateChannels is the number of state channels kept from each timestep.
const stateChannels = 2

// OpenArchive reads the image, label, state and (optional) control arrays
// from the .npz file at path.
func OpenArchive(path string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
		}
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}

	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrMalformedArchive, path, err)
	}
	defer r.Close()

	keys := archiveKeys(r.Keys())
	for _, name := range []string{"image", "label", "state"} {
		if _, ok := keys[name]; !ok {
			return nil, fmt.Errorf("%w: %q not found in %s", ErrMissingRequiredField, name, path)
		}
	}

	a := &Archive{Path: path}
	if a.Image, err = readArray[float32](r, keys["image"]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.Label, err = readArray[int16](r, keys["label"]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	state, err := readArray[float32](r, keys["state"])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(a.Image.Shape) < 2 {
		return nil, fmt.Errorf("%w: %s: image must be samples x time x ..., got shape %v", ErrMalformedArchive, path, a.Image.Shape)
	}
	if len(a.Label.Shape) < 1 {
		return nil, fmt.Errorf("%w: %s: label must have a sample dimension", ErrMalformedArchive, path)
	}
	if len(state.Shape) != 3 {
		return nil, fmt.Errorf("%w: %s: state must be samples x time x channels, got shape %v", ErrMalformedArchive, path, state.Shape)
	}
	a.State = state.NarrowLast(stateChannels)

	n, timeSteps := a.Image.Shape[0], a.Image.Shape[1]
	if key, ok := keys["control"]; ok {
		if a.Control, err = readArray[float32](r, key); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(a.Control.Shape) < 1 {
			return nil, fmt.Errorf("%w: %s: control must have a sample dimension", ErrMalformedArchive, path)
		}
		a.HasControl = true
	} else {
		a.Control = NewArray[float32](n, timeSteps, 1)
	}

	for name, got := range map[string]int{
		"label":   a.Label.Len(),
		"state":   a.State.Len(),
		"control": a.Control.Len(),
	} {
		if got != n {
			return nil, fmt.Errorf("%w: %s: %s has %d samples, image has %d", ErrMalformedArchive, path, name, got, n)
		}
	}

	klog.V(1).Infof("loaded %s: %d samples, image %v, state %v, control %v (from archive: %t)",
		path, n, a.Image.Shape, a.State.Shape, a.Control.Shape, a.HasControl)
	return a, nil
}
