package datasets

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// npyArray is one array to store in a test archive.
type npyArray struct {
	name  string
	descr string // NumPy dtype, e.g. "<f4"
	shape []int
	data  any // []float32, []float64, []int16, []int64 ...
}

// encodeNPY encodes a in the NumPy .npy format (version 1.0, C order).
func encodeNPY(t *testing.T, a npyArray) []byte {
	t.Helper()
	dims := make([]string, len(a.shape))
	for i, d := range a.shape {
		dims[i] = fmt.Sprint(d)
	}
	shape := "(" + strings.Join(dims, ", ") + ")"
	if len(a.shape) == 1 {
		shape = fmt.Sprintf("(%d,)", a.shape[0])
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", a.descr, shape)
	// magic (6) + version (2) + header length (2) + header + '\n' is padded to 64 bytes.
	if pad := (10 + len(header) + 1) % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(header))); err != nil {
		t.Fatalf("failed to write npy header length: %v", err)
	}
	buf.WriteString(header)
	if err := binary.Write(&buf, binary.LittleEndian, a.data); err != nil {
		t.Fatalf("failed to write npy data for %s: %v", a.name, err)
	}
	return buf.Bytes()
}

// writeNPZ writes arrays to a zip archive at path, one "<name>.npy" entry
// per array, the way numpy.savez_compressed does.
func writeNPZ(t *testing.T, path string, arrays ...npyArray) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create archive dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, a := range arrays {
		w, err := zw.Create(a.name + ".npy")
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", a.name, err)
		}
		if _, err := w.Write(encodeNPY(t, a)); err != nil {
			t.Fatalf("failed to write entry %s: %v", a.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive %s: %v", path, err)
	}
}

// Fixture layout. Every array encodes its sample row so alignment can be
// checked after subsampling:
//
//	image[i, t, p]   = i*1000 + t*imagePixels + p
//	label[i]         = i
//	state[i, t, c]   = i*100 + t*stateChannelsOnDisk + c
//	control[i, t, 0] = i
const (
	imagePixels         = 4
	stateChannelsOnDisk = 3
)

type fixture struct {
	samples    int
	timeSteps  int
	noControl  bool
	skipArrays map[string]bool
}

func (f fixture) arrays() []npyArray {
	n, T := f.samples, f.timeSteps
	image := make([]float32, n*T*imagePixels)
	label := make([]int16, n)
	state := make([]float32, n*T*stateChannelsOnDisk)
	control := make([]float32, n*T)
	for i := range n {
		label[i] = int16(i)
		for t := range T {
			for p := range imagePixels {
				image[(i*T+t)*imagePixels+p] = float32(i*1000 + t*imagePixels + p)
			}
			for c := range stateChannelsOnDisk {
				state[(i*T+t)*stateChannelsOnDisk+c] = float32(i*100 + t*stateChannelsOnDisk + c)
			}
			control[i*T+t] = float32(i)
		}
	}

	all := []npyArray{
		{name: "image", descr: "<f4", shape: []int{n, T, 2, 2}, data: image},
		{name: "label", descr: "<i2", shape: []int{n}, data: label},
		{name: "state", descr: "<f4", shape: []int{n, T, stateChannelsOnDisk}, data: state},
	}
	if !f.noControl {
		all = append(all, npyArray{name: "control", descr: "<f4", shape: []int{n, T, 1}, data: control})
	}
	var out []npyArray
	for _, a := range all {
		if !f.skipArrays[a.name] {
			out = append(out, a)
		}
	}
	return out
}

// writeFixture writes the archive of split under root/dataset and returns its path.
func writeFixture(t *testing.T, root, dataset string, split Split, f fixture) string {
	t.Helper()
	path := filepath.Join(root, dataset, string(split)+".npz")
	writeNPZ(t, path, f.arrays()...)
	return path
}

// sourceRow recovers the archive row a record came from, checking that all
// four arrays agree on it.
func sourceRow(t *testing.T, r Record) int {
	t.Helper()
	row := int(r.Label)
	if got := int(r.Image[0]) / 1000; got != row {
		t.Fatalf("record %d: image row %d != label row %d", r.Index, got, row)
	}
	if got := int(r.State[0]) / 100; got != row {
		t.Fatalf("record %d: state row %d != label row %d", r.Index, got, row)
	}
	if r.Control[0] != 0 && int(r.Control[0]) != row {
		t.Fatalf("record %d: control row %v != label row %d", r.Index, r.Control[0], row)
	}
	return row
}
