package capture

import "context"

// EventKind discriminates transcription stream events.
type EventKind int

const (
	// EventPartial carries the cumulative finalized transcript plus the
	// latest provisional interim preview.
	EventPartial EventKind = iota
	// EventEnd signals a natural end of utterance.
	EventEnd
	// EventError signals a device failure; the stream is done.
	EventError
)

// Event is one element of a live transcription stream.
type Event struct {
	Kind    EventKind
	Final   string
	Interim string
	Err     error
}

// Recognizer drives the platform transcription device. The controller
// is the single subscriber of the event stream; no other component may
// address the device directly.
type Recognizer interface {
	// Available reports whether the device exists on this host.
	Available() bool
	// Start opens a transcription stream. The returned channel is
	// closed when the stream ends for any reason.
	Start(ctx context.Context) (<-chan Event, error)
	// Stop tears down the active stream.
	Stop()
}

// Unavailable returns the no-op stand-in bound on hosts without a
// transcription capability.
func Unavailable() Recognizer {
	return unavailableRecognizer{}
}

type unavailableRecognizer struct{}

func (unavailableRecognizer) Available() bool { return false }

func (unavailableRecognizer) Start(context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	close(ch)
	return ch, nil
}

func (unavailableRecognizer) Stop() {}
