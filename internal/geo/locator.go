package geo

import (
	"context"
	"sync"

	"github.com/krishi-mitra/gateway/internal/model/chat"
)

// ClientLocator sources the position from the connected client, which
// owns the real positioning hardware. The first reported fix wins;
// later reports are discarded.
type ClientLocator struct {
	once sync.Once
	ch   chan chat.GeolocationSample
}

// NewClientLocator returns a locator awaiting a client report.
func NewClientLocator() *ClientLocator {
	return &ClientLocator{ch: make(chan chat.GeolocationSample, 1)}
}

// Report feeds a client-supplied fix into the locator. Returns false if
// a fix was already recorded.
func (l *ClientLocator) Report(lat, lon float64) bool {
	accepted := false
	l.once.Do(func() {
		l.ch <- chat.GeolocationSample{Lat: lat, Lon: lon}
		accepted = true
	})
	return accepted
}

// CurrentPosition blocks until the client reports a fix or the context
// ends.
func (l *ClientLocator) CurrentPosition(ctx context.Context) (chat.GeolocationSample, error) {
	select {
	case sample := <-l.ch:
		return sample, nil
	case <-ctx.Done():
		return chat.GeolocationSample{}, ctx.Err()
	}
}

// Unsupported returns a locator for hosts without positioning support.
func Unsupported() Locator {
	return unsupportedLocator{}
}

type unsupportedLocator struct{}

func (unsupportedLocator) CurrentPosition(context.Context) (chat.GeolocationSample, error) {
	return chat.GeolocationSample{}, ErrUnsupported
}
