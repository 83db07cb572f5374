package geo

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/model/chat"
)

// ErrUnsupported indicates the host offers no positioning capability.
var ErrUnsupported = errors.New("geo: positioning unsupported")

// Locator is the device driver behind a Probe. CurrentPosition may block
// until a fix becomes available or the context is cancelled.
type Locator interface {
	CurrentPosition(ctx context.Context) (chat.GeolocationSample, error)
}

// Probe performs a single best-effort position acquisition at session
// start. The result, or its absence, is cached for the session lifetime.
// Failures are logged and never surfaced to the user; no retry is made.
type Probe struct {
	locator Locator

	mu     sync.RWMutex
	sample chat.GeolocationSample
	ok     bool

	once sync.Once
	log  *logrus.Entry
}

// NewProbe binds a probe to a locator driver.
func NewProbe(locator Locator) *Probe {
	return &Probe{
		locator: locator,
		log:     logrus.WithField("component", "geo"),
	}
}

// Run starts the one-shot acquisition in the background. Subsequent
// calls are no-ops. Chat stays fully usable while the probe is pending.
func (p *Probe) Run(ctx context.Context) {
	p.once.Do(func() {
		go p.resolve(ctx)
	})
}

func (p *Probe) resolve(ctx context.Context) {
	sample, err := p.locator.CurrentPosition(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.log.WithError(err).Debug("geolocation unavailable, continuing without it")
		}
		return
	}

	p.mu.Lock()
	p.sample = sample
	p.ok = true
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"lat": sample.Lat, "lon": sample.Lon}).Debug("geolocation acquired")
}

// Sample returns the cached fix. ok is false while the probe is pending,
// after a failure, or when the platform lacks the capability; callers
// treat all three identically as "no location".
func (p *Probe) Sample() (chat.GeolocationSample, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sample, p.ok
}
