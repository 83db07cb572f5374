package capture

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Controller folds a live, incrementally-updating transcription stream
// into editable text without discarding what the user typed before
// capture began. One capture session may be active at a time.
type Controller struct {
	rec    Recognizer
	onText func(string)
	busy   func() bool

	mu        sync.Mutex
	active    bool
	baseText  string
	committed string
	interim   string
	text      string
	cancel    context.CancelFunc

	log *logrus.Entry
}

// New binds a controller to a recognizer driver. onText receives the
// re-derived text after every stream event; busy, when non-nil, blocks
// capture from starting while the host is mid-send.
func New(rec Recognizer, onText func(string), busy func() bool) *Controller {
	return &Controller{
		rec:    rec,
		onText: onText,
		busy:   busy,
		log:    logrus.WithField("component", "capture"),
	}
}

// Available reports whether the host offers a transcription capability.
// When false, all start/stop operations are no-ops and callers must not
// offer the affordance.
func (c *Controller) Available() bool {
	return c.rec.Available()
}

// Active reports whether a capture session is running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Text returns the last published text value.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Start snapshots currentText and begins consuming the transcription
// stream. It is a no-op when already capturing, when the host is busy,
// or when transcription is unsupported.
func (c *Controller) Start(ctx context.Context, currentText string) bool {
	if !c.rec.Available() {
		return false
	}
	if c.busy != nil && c.busy() {
		return false
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return false
	}

	base := strings.TrimSpace(currentText)
	if base != "" {
		base += " "
	}
	c.baseText = base
	c.committed = ""
	c.interim = ""
	c.text = base
	c.active = true

	streamCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	events, err := c.rec.Start(streamCtx)
	if err != nil {
		c.log.WithError(err).Warn("transcription stream failed to start")
		c.deactivate()
		return false
	}

	go c.consume(events)
	c.publish()
	return true
}

// Stop tears down the stream. The current text value is left as-is.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.rec.Stop()
	c.deactivate()
}

func (c *Controller) consume(events <-chan Event) {
	for ev := range events {
		switch ev.Kind {
		case EventPartial:
			c.handlePartial(ev.Final, ev.Interim)
		case EventEnd:
			c.deactivate()
			return
		case EventError:
			// Non-fatal: revert to idle, keep the text.
			c.log.WithError(ev.Err).Warn("transcription stream error")
			c.deactivate()
			return
		}
	}
	c.deactivate()
}

// handlePartial re-derives the full text from the base snapshot, the
// running committed portion, and the latest interim preview. Interim
// segments overwrite each other; final segments fold monotonically so
// a re-emitted segment never duplicates already-finalized words.
func (c *Controller) handlePartial(final, interim string) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	switch {
	case final == "":
		// nothing newly finalized
	case strings.HasPrefix(final, c.committed):
		c.committed = final
	case strings.HasSuffix(c.committed, final):
		// already folded
	default:
		c.committed = joinSegments(c.committed, final)
	}
	c.interim = interim
	c.text = c.baseText + joinSegments(c.committed, interim)
	c.mu.Unlock()

	c.publish()
}

func (c *Controller) deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Controller) publish() {
	if c.onText == nil {
		return
	}
	c.mu.Lock()
	text := c.text
	c.mu.Unlock()
	c.onText(text)
}

func joinSegments(committed, interim string) string {
	if committed == "" || interim == "" {
		return committed + interim
	}
	return committed + " " + interim
}
