package datasets

import "errors"

// Errors returned by the loader. They are wrapped with context, so compare
// with errors.Is.
var (
	// ErrArchiveNotFound is returned when the archive for a split does not exist.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrMissingRequiredField is returned when an archive lacks image, label or state.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrIndexOutOfBounds is returned when a sample index is outside the view.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrInvalidConfiguration is returned for config values the loader cannot use.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedArchive is returned when an archive is readable but its
	// arrays have unsupported dtypes or inconsistent shapes.
	ErrMalformedArchive = errors.New("malformed archive")
)
