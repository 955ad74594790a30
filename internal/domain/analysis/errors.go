package analysis

import "errors"

// ErrNotFound indicates the requested analysis record does not exist.
var ErrNotFound = errors.New("analysis not found")

// ErrInvalidCategory indicates a classification value outside the five-value enum.
var ErrInvalidCategory = errors.New("invalid classification category")
