package calibration

import "errors"

// ErrPersistence is returned when a calibration cannot be written.
// Read failures never surface; Load falls back to Default instead.
var ErrPersistence = errors.New("calibration persistence failed")

// ErrInvalid marks a calibration whose fractions are out of range or unordered.
var ErrInvalid = errors.New("invalid calibration")

// ErrEmptySelection is returned by FromSelection for a zero-area rectangle.
var ErrEmptySelection = errors.New("empty selection")
