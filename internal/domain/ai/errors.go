package ai

import "errors"

// ErrUnavailable collapses every backend-side failure (network error, empty
// response, undecodable output) into the single signal the fallback path consumes.
var ErrUnavailable = errors.New("ai backend unavailable")
