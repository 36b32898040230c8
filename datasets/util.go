package datasets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbinet/npyio/npy"
	"github.com/sbinet/npyio/npz"
)

// number is every NumPy numeric dtype the archives may store.
type number interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// archiveKeys maps array names, with any ".npy" suffix removed, to the entry
// names the npz reader expects.
func archiveKeys(entries []string) map[string]string {
	keys := make(map[string]string, len(entries))
	for _, k := range entries {
		keys[strings.TrimSuffix(k, ".npy")] = k
	}
	return keys
}

// readArray reads the named array and converts its elements to T, the way
// numpy's astype would. The entry is opened once: its header and data are
// read from the same stream, which is closed before returning.
func readArray[T Element](r *npz.Reader, key string) (Array[T], error) {
	name := strings.TrimSuffix(key, ".npy")
	rc, err := r.Open(key)
	if err != nil {
		return Array[T]{}, fmt.Errorf("%w: open %s: %w", ErrMalformedArchive, name, err)
	}
	defer rc.Close()

	rp, err := npy.NewReader(rc)
	if err != nil {
		return Array[T]{}, fmt.Errorf("%w: %s is not a valid .npy entry: %w", ErrMalformedArchive, name, err)
	}
	hdr := rp.Header
	if hdr.Descr.Fortran {
		return Array[T]{}, fmt.Errorf("%w: %s is stored in Fortran order", ErrMalformedArchive, name)
	}
	shape := append([]int(nil), hdr.Descr.Shape...)
	n := numElements(shape)

	var data []T
	switch dtype := strings.TrimLeft(hdr.Descr.Type, "<>|="); dtype {
	case "f4":
		data, err = readConverted[float32, T](rp, n)
	case "f8":
		data, err = readConverted[float64, T](rp, n)
	case "i1":
		data, err = readConverted[int8, T](rp, n)
	case "i2":
		data, err = readConverted[int16, T](rp, n)
	case "i4":
		data, err = readConverted[int32, T](rp, n)
	case "i8":
		data, err = readConverted[int64, T](rp, n)
	case "u1":
		data, err = readConverted[uint8, T](rp, n)
	case "u2":
		data, err = readConverted[uint16, T](rp, n)
	case "u4":
		data, err = readConverted[uint32, T](rp, n)
	case "u8":
		data, err = readConverted[uint64, T](rp, n)
	case "b1":
		data, err = readBools[T](rp, n)
	default:
		return Array[T]{}, fmt.Errorf("%w: %s has unsupported dtype %q", ErrMalformedArchive, name, hdr.Descr.Type)
	}
	if err != nil {
		return Array[T]{}, fmt.Errorf("%w: read %s: %w", ErrMalformedArchive, name, err)
	}
	if len(data) != n {
		return Array[T]{}, fmt.Errorf("%w: %s has %d elements, shape %v needs %d", ErrMalformedArchive, name, len(data), shape, n)
	}
	return Array[T]{Data: data, Shape: shape}, nil
}

func readConverted[S number, T Element](rp *npy.Reader, n int) ([]T, error) {
	raw := make([]S, n)
	if err := rp.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]T, len(raw))
	for i, v := range raw {
		out[i] = T(v)
	}
	return out, nil
}

func readBools[T Element](rp *npy.Reader, n int) ([]T, error) {
	raw := make([]bool, n)
	if err := rp.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]T, len(raw))
	for i, v := range raw {
		if v {
			out[i] = 1
		}
	}
	return out, nil
}

// FindSplits lists the splits that have an archive in dir.
func FindSplits(dir string) ([]Split, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.npz"))
	if err != nil {
		return nil, err
	}
	var splits []Split
	for _, m := range matches {
		s, err := ParseSplit(strings.TrimSuffix(filepath.Base(m), ".npz"))
		if err != nil {
			continue
		}
		splits = append(splits, s)
	}
	if len(splits) == 0 {
		return nil, fmt.Errorf("%w: no split archives in %s", ErrArchiveNotFound, dir)
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i] < splits[j] })
	return splits, nil
}
