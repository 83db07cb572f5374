package voice

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/capture"
	chatmodel "github.com/krishi-mitra/gateway/internal/model/chat"
	"github.com/krishi-mitra/gateway/internal/playback"
	"github.com/krishi-mitra/gateway/internal/session"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Handler carries the websocket voice channel: live transcription
// events in, text updates and synthesis commands out. The speech
// devices live on the client; the controllers arbitrating them live
// here.
type Handler struct {
	registry *session.Registry
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// New creates the voice channel handler.
func New(registry *session.Registry) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logrus.WithField("component", "voice"),
	}
}

// RegisterRoutes registers the voice websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/{sessionID}", h.handleWebSocket)
}

// connState holds the per-connection controllers. They are bound when
// the client announces its capabilities in the hello message.
type connState struct {
	entry      session.Entry
	peer       *peer
	capture    *capture.Controller
	playback   *playback.Controller
	recognizer *wsRecognizer
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	entry, err := h.registry.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("session", sessionID)
	log.Info("voice channel connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	state := &connState{
		entry: entry,
		peer:  newPeer(conn, sessionID),
	}
	defer h.teardown(state)

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, state.peer)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("read error")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))

		env, err := decode(data)
		if err != nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid envelope"})
			continue
		}
		if env.SessionID != "" && env.SessionID != sessionID {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "session mismatch"})
			continue
		}

		h.handleEnvelope(ctx, state, env)
	}
}

func (h *Handler) handleEnvelope(ctx context.Context, state *connState, env envelope) {
	sessionID := state.entry.Session.ID()

	switch env.Type {
	case msgHello:
		h.handleHello(state, env)

	case msgLocation:
		p, err := decodePayload[locationPayload](env.Data)
		if err != nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid location payload"})
			return
		}
		state.entry.Location.Report(p.Lat, p.Lon)

	case msgSend:
		p, err := decodePayload[sendPayload](env.Data)
		if err != nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid send payload"})
			return
		}
		// Appended messages reach the client through the session
		// observer; the exchange must not block the read loop.
		go func() {
			if _, ok := state.entry.Session.SendMessage(ctx, p.Text); !ok {
				state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "message rejected: empty or busy"})
			}
		}()

	case msgCaptureStart:
		if state.capture == nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "hello required first"})
			return
		}
		p, err := decodePayload[captureStartPayload](env.Data)
		if err != nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid capture payload"})
			return
		}
		state.capture.Start(ctx, p.Text)

	case msgCaptureStop:
		if state.capture != nil {
			state.capture.Stop()
		}

	case msgCaptureText:
		p, err := decodePayload[captureResultPayload](env.Data)
		if err != nil || state.recognizer == nil {
			return
		}
		state.recognizer.feed(capture.Event{Kind: capture.EventPartial, Final: p.Final, Interim: p.Interim})

	case msgCaptureEnd:
		if state.recognizer != nil {
			state.recognizer.feed(capture.Event{Kind: capture.EventEnd})
		}

	case msgCaptureError:
		p, _ := decodePayload[captureErrorPayload](env.Data)
		if state.recognizer != nil {
			state.recognizer.feed(capture.Event{Kind: capture.EventError, Err: errors.New(p.Reason)})
		}

	case msgPlay, msgToggle:
		if state.playback == nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "hello required first"})
			return
		}
		p, err := decodePayload[entityPayload](env.Data)
		if err != nil {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid playback payload"})
			return
		}
		msg, ok := state.entry.Session.Message(p.MessageID)
		if !ok {
			state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "unknown message id"})
			return
		}
		if env.Type == msgPlay {
			state.playback.Play(msg.ID, msg.Text)
		} else {
			state.playback.TogglePauseResume(msg.ID, msg.Text)
		}

	case msgSynthStarted, msgSynthEnded, msgSynthError:
		if state.playback == nil {
			return
		}
		p, err := decodePayload[synthEventPayload](env.Data)
		if err != nil {
			return
		}
		switch env.Type {
		case msgSynthStarted:
			state.playback.Started(p.UtteranceID)
		case msgSynthEnded:
			state.playback.Ended(p.UtteranceID)
		case msgSynthError:
			state.playback.Failed(p.UtteranceID, p.Reason)
		}

	default:
		state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "unsupported message type: " + env.Type})
	}
}

// handleHello binds the controllers to the capabilities the client
// announced. Missing capabilities get no-op drivers so calling code
// never branches on the platform.
func (h *Handler) handleHello(state *connState, env envelope) {
	sessionID := state.entry.Session.ID()

	if state.capture != nil {
		// Rebinding would orphan an active stream consumer and any
		// live playback claim on the old controllers.
		state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "hello already received"})
		return
	}

	p, err := decodePayload[helloPayload](env.Data)
	if err != nil {
		state.peer.sendOrLog(msgError, sessionID, errorPayload{Message: "invalid hello payload"})
		return
	}

	recognizer := capture.Unavailable()
	if p.Recognition {
		state.recognizer = newWSRecognizer(state.peer, sessionID)
		recognizer = state.recognizer
	}
	state.capture = capture.New(recognizer, func(text string) {
		state.peer.sendOrLog(msgText, sessionID, textPayload{Text: text})
	}, state.entry.Session.Loading)

	synthesizer := playback.Unavailable()
	if p.Synthesis {
		synthesizer = newWSSynthesizer(state.peer, sessionID)
	}
	state.playback = playback.New(synthesizer, func(c playback.Claim) {
		state.peer.sendOrLog(msgClaim, sessionID, claimPayload{MessageID: c.EntityID, State: c.State.String()})
	})

	state.entry.Session.Notify(func(m chatmodel.Message) {
		state.peer.sendOrLog(msgMessage, sessionID, m)
	})

	if p.Location != nil {
		state.entry.Location.Report(p.Location.Lat, p.Location.Lon)
	}

	state.peer.sendOrLog(msgReady, sessionID, readyPayload{
		Recognition: p.Recognition,
		Synthesis:   p.Synthesis,
	})
}

func (h *Handler) teardown(state *connState) {
	state.entry.Session.Notify(nil)
	if state.capture != nil {
		state.capture.Stop()
	}
}

func (h *Handler) pingLoop(ctx context.Context, p *peer) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ping(); err != nil {
				return
			}
		}
	}
}
