package playback

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the sub-state of a playback claim.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Claim identifies which single message entity currently drives the
// shared audio-output device. A zero Claim means the device is idle.
type Claim struct {
	EntityID string
	State    State
}

type utterance struct {
	id       string
	entityID string
	state    State
}

// Controller is the single point of arbitration for speech output. The
// underlying device speaks one utterance at a time, so at most one
// claim exists at any instant; acquiring a new claim fully revokes the
// prior one first.
type Controller struct {
	synth   Synthesizer
	onClaim func(Claim)

	mu      sync.Mutex
	current *utterance

	log *logrus.Entry
}

// New binds a controller to a synthesizer driver. onClaim, when
// non-nil, receives every claim transition.
func New(synth Synthesizer, onClaim func(Claim)) *Controller {
	return &Controller{
		synth:   synth,
		onClaim: onClaim,
		log:     logrus.WithField("component", "playback"),
	}
}

// Available reports whether the host offers a synthesis capability.
func (c *Controller) Available() bool {
	return c.synth.Available()
}

// Claim returns the current claim; the zero Claim when idle.
func (c *Controller) Claim() Claim {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Claim{}
	}
	return Claim{EntityID: c.current.entityID, State: c.current.state}
}

// Play speaks text on behalf of entityID. A running claim held by any
// other entity is cancelled unconditionally first; a new play request
// always wins. Presentation-only content is stripped before synthesis.
func (c *Controller) Play(entityID, text string) {
	if !c.synth.Available() {
		return
	}

	c.mu.Lock()
	if c.current != nil {
		if err := c.synth.Cancel(); err != nil {
			c.log.WithError(err).Warn("cancel of prior utterance failed")
		}
		c.current = nil
	}
	utt := &utterance{id: uuid.NewString(), entityID: entityID, state: StatePlaying}
	c.current = utt
	c.mu.Unlock()

	clean := NormalizeForSpeech(text)
	if err := c.synth.Speak(utt.id, clean); err != nil {
		c.log.WithError(err).Warn("synthesis failed to start")
		c.clear(utt.id)
		return
	}
	c.emit()
}

// TogglePauseResume pauses or resumes the holder's playback. Called by
// an entity that does not hold the claim, it behaves as a fresh Play
// of text.
func (c *Controller) TogglePauseResume(entityID, text string) {
	if !c.synth.Available() {
		return
	}

	c.mu.Lock()
	cur := c.current
	if cur == nil || cur.entityID != entityID {
		c.mu.Unlock()
		c.Play(entityID, text)
		return
	}

	var err error
	switch cur.state {
	case StatePlaying:
		cur.state = StatePaused
		err = c.synth.Pause()
	case StatePaused:
		cur.state = StatePlaying
		err = c.synth.Resume()
	}
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).Warn("pause/resume failed")
	}
	c.emit()
}

// Started confirms synthesis began for utteranceID.
func (c *Controller) Started(utteranceID string) {
	c.mu.Lock()
	match := c.current != nil && c.current.id == utteranceID
	c.mu.Unlock()
	if match {
		c.emit()
	}
}

// Ended clears the claim on natural completion or cancellation; the
// two are observably identical to the entity.
func (c *Controller) Ended(utteranceID string) {
	c.clear(utteranceID)
}

// Failed clears the claim after a synthesis error. The error is logged,
// never surfaced as a blocking failure.
func (c *Controller) Failed(utteranceID, reason string) {
	c.log.WithField("reason", reason).Warn("synthesis error")
	c.clear(utteranceID)
}

func (c *Controller) clear(utteranceID string) {
	c.mu.Lock()
	if c.current == nil || c.current.id != utteranceID {
		// A stale notification for an already revoked utterance.
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.mu.Unlock()
	c.emit()
}

func (c *Controller) emit() {
	if c.onClaim == nil {
		return
	}
	c.onClaim(c.Claim())
}
