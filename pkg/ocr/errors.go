package ocr

import "errors"

// ErrDecode is returned when the input bytes are not a decodable image.
var ErrDecode = errors.New("image could not be decoded")

// ErrEmptyRegion is returned when calibration and padding leave no pixels to read.
// Operators should recalibrate rather than retry.
var ErrEmptyRegion = errors.New("calibrated region is empty")

// ErrRecognize wraps OCR engine failures, including pass timeouts.
var ErrRecognize = errors.New("digit recognition failed")
