// Package fake implements a scripted location source: it walks away from a
// fixed origin at a steady rate and stops after a bounded number of samples,
// standing in for a real GPS-carrying target.
package fake

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/follow-mission/internal/feed"
)

const (
	// Default walk origin, roughly the Irchel park in Zurich.
	DefaultLatitude  = 47.398170
	DefaultLongitude = 8.545649

	DefaultCount    = 50
	DefaultInterval = time.Second

	// Per-sample drift, a brisk walk heading northeast.
	latStepDeg = 0.000036
	lonStepDeg = 0.000027
)

// WithLogger sets the logger for the provider.
func WithLogger(logger *slog.Logger) func(p *Provider) {
	return func(p *Provider) {
		p.logger = logger.With(slog.String("feed", "fake"))
	}
}

// WithOrigin sets the walk starting point.
func WithOrigin(latitude, longitude float64) func(p *Provider) {
	return func(p *Provider) {
		p.latitude = latitude
		p.longitude = longitude
	}
}

// WithCount sets how many samples are emitted before the stream ends.
func WithCount(count int) func(p *Provider) {
	return func(p *Provider) {
		p.count = count
	}
}

// WithInterval sets the emission period.
func WithInterval(interval time.Duration) func(p *Provider) {
	return func(p *Provider) {
		p.interval = interval
	}
}

// Provider emits a bounded stream of positions. It implements feed.Source
// and is not restartable: a second BeginUpdates returns feed.ErrExhausted.
type Provider struct {
	latitude  float64
	longitude float64
	count     int
	interval  time.Duration

	began  atomic.Bool
	logger *slog.Logger
}

// New creates a fake location provider.
func New(options ...func(p *Provider)) *Provider {
	p := Provider{
		latitude:  DefaultLatitude,
		longitude: DefaultLongitude,
		count:     DefaultCount,
		interval:  DefaultInterval,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

func (p *Provider) BeginUpdates(ctx context.Context) (<-chan feed.Sample, error) {
	if !p.began.CompareAndSwap(false, true) {
		return nil, feed.ErrExhausted
	}

	updates := make(chan feed.Sample)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		latitude, longitude := p.latitude, p.longitude
		for i := 0; i < p.count; i++ {
			select {
			case <-ctx.Done():
				p.logger.Debug("location updates cancelled", slog.Int("emitted", i))
				return

			case <-ticker.C:
			}

			sample := feed.Sample{Latitude: latitude, Longitude: longitude}
			select {
			case <-ctx.Done():
				p.logger.Debug("location updates cancelled", slog.Int("emitted", i))
				return

			case updates <- sample:
			}

			latitude += latStepDeg
			longitude += lonStepDeg
		}

		p.logger.Debug("location updates finished", slog.Int("emitted", p.count))
	}()

	return updates, nil
}
