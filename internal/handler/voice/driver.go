package voice

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/capture"
)

// peer serializes writes to one websocket connection, which carries
// traffic from several goroutines (read loop, ping loop, session
// notifications, device commands).
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
	log  *logrus.Entry
}

func newPeer(conn *websocket.Conn, sessionID string) *peer {
	return &peer{
		conn: conn,
		log:  logrus.WithFields(logrus.Fields{"component": "voice", "session": sessionID}),
	}
}

func (p *peer) send(msgType, sessionID string, payload any) error {
	data, err := encode(msgType, sessionID, payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func (p *peer) ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.PingMessage, nil)
}

func (p *peer) sendOrLog(msgType, sessionID string, payload any) {
	if err := p.send(msgType, sessionID, payload); err != nil {
		p.log.WithError(err).Debug("write failed: " + msgType)
	}
}

// wsRecognizer adapts the connected client's speech-recognition device
// to the capture.Recognizer interface. Commands go out as envelopes;
// transcript events arrive via feed from the connection read loop.
type wsRecognizer struct {
	peer      *peer
	sessionID string

	mu     sync.Mutex
	events chan capture.Event
}

func newWSRecognizer(peer *peer, sessionID string) *wsRecognizer {
	return &wsRecognizer{peer: peer, sessionID: sessionID}
}

func (r *wsRecognizer) Available() bool { return true }

func (r *wsRecognizer) Start(ctx context.Context) (<-chan capture.Event, error) {
	r.mu.Lock()
	r.events = make(chan capture.Event, 8)
	events := r.events
	r.mu.Unlock()

	if err := r.peer.send(msgListenStart, r.sessionID, nil); err != nil {
		r.closeStream()
		return nil, err
	}

	go func() {
		<-ctx.Done()
		r.closeStream()
	}()
	return events, nil
}

func (r *wsRecognizer) Stop() {
	r.peer.sendOrLog(msgListenStop, r.sessionID, nil)
	r.closeStream()
}

// feed pushes one stream event toward the controller. Terminal events
// close the stream.
func (r *wsRecognizer) feed(ev capture.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	default:
		// Consumer stalled; dropping an interim update is harmless.
	}
	if ev.Kind != capture.EventPartial {
		close(r.events)
		r.events = nil
	}
}

func (r *wsRecognizer) closeStream() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

// wsSynthesizer adapts the connected client's speech-output device to
// the playback.Synthesizer interface.
type wsSynthesizer struct {
	peer      *peer
	sessionID string
}

func newWSSynthesizer(peer *peer, sessionID string) *wsSynthesizer {
	return &wsSynthesizer{peer: peer, sessionID: sessionID}
}

func (s *wsSynthesizer) Available() bool { return true }

func (s *wsSynthesizer) Speak(utteranceID, text string) error {
	return s.peer.send(msgSpeak, s.sessionID, speakPayload{UtteranceID: utteranceID, Text: text})
}

func (s *wsSynthesizer) Pause() error {
	return s.peer.send(msgPause, s.sessionID, nil)
}

func (s *wsSynthesizer) Resume() error {
	return s.peer.send(msgResume, s.sessionID, nil)
}

func (s *wsSynthesizer) Cancel() error {
	return s.peer.send(msgCancel, s.sessionID, nil)
}
