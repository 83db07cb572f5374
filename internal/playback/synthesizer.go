package playback

// Synthesizer drives the platform speech-output device. All access
// goes through the Controller; no message renderer touches the device
// directly.
type Synthesizer interface {
	// Available reports whether the device exists on this host.
	Available() bool
	// Speak starts synthesizing text as utteranceID.
	Speak(utteranceID, text string) error
	// Pause suspends the running utterance.
	Pause() error
	// Resume continues a paused utterance.
	Resume() error
	// Cancel discards the running utterance entirely.
	Cancel() error
}

// Unavailable returns the no-op stand-in bound on hosts without a
// synthesis capability. Entities must not display an active state.
func Unavailable() Synthesizer {
	return unavailableSynthesizer{}
}

type unavailableSynthesizer struct{}

func (unavailableSynthesizer) Available() bool         { return false }
func (unavailableSynthesizer) Speak(_, _ string) error { return nil }
func (unavailableSynthesizer) Pause() error            { return nil }
func (unavailableSynthesizer) Resume() error           { return nil }
func (unavailableSynthesizer) Cancel() error           { return nil }
