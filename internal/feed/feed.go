// Package feed defines the contract for external position sources that a
// mission can follow.
package feed

import (
	"context"
	"errors"
)

// ErrExhausted is returned by BeginUpdates when a source has already been
// consumed. Sources are not restartable.
var ErrExhausted = errors.New("location feed exhausted")

// Sample is a single position report from the source.
type Sample struct {
	Latitude  float64
	Longitude float64
}

// Source produces an asynchronous stream of position samples. BeginUpdates
// may be called once; the returned channel is closed when the underlying
// source stops or ctx is cancelled. Closure of the channel is the only
// end-of-stream signal.
type Source interface {
	BeginUpdates(ctx context.Context) (<-chan Sample, error)
}
