package voice

// Client -> server message types.
const (
	msgHello        = "hello"
	msgLocation     = "location"
	msgSend         = "send"
	msgCaptureStart = "capture.start"
	msgCaptureStop  = "capture.stop"
	msgCaptureText  = "capture.result"
	msgCaptureEnd   = "capture.end"
	msgCaptureError = "capture.error"
	msgPlay         = "play"
	msgToggle       = "toggle"
	msgSynthStarted = "synth.started"
	msgSynthEnded   = "synth.ended"
	msgSynthError   = "synth.error"
)

// Server -> client message types.
const (
	msgReady       = "ready"
	msgText        = "text"
	msgListenStart = "listen.start"
	msgListenStop  = "listen.stop"
	msgSpeak       = "speak"
	msgPause       = "pause"
	msgResume      = "resume"
	msgCancel      = "cancel"
	msgClaim       = "claim"
	msgMessage     = "message"
	msgError       = "error"
)

type helloPayload struct {
	// Capabilities reported by the client platform. Absent capabilities
	// bind the controllers to no-op drivers.
	Recognition bool `json:"recognition"`
	Synthesis   bool `json:"synthesis"`

	Location *locationPayload `json:"location,omitempty"`
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type readyPayload struct {
	Recognition bool `json:"recognition"`
	Synthesis   bool `json:"synthesis"`
}

type sendPayload struct {
	Text string `json:"text"`
}

type captureStartPayload struct {
	// Text is the input box content at capture start; it is preserved
	// as the base the transcript is appended to.
	Text string `json:"text"`
}

type captureResultPayload struct {
	Final   string `json:"final"`
	Interim string `json:"interim"`
}

type captureErrorPayload struct {
	Reason string `json:"reason"`
}

type textPayload struct {
	Text string `json:"text"`
}

type entityPayload struct {
	MessageID string `json:"messageId"`
}

type speakPayload struct {
	UtteranceID string `json:"utteranceId"`
	Text        string `json:"text"`
}

type synthEventPayload struct {
	UtteranceID string `json:"utteranceId"`
	Reason      string `json:"reason,omitempty"`
}

type claimPayload struct {
	MessageID string `json:"messageId,omitempty"`
	State     string `json:"state"`
}

type errorPayload struct {
	Message string `json:"message"`
}
