package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/krishi-mitra/gateway/internal/model/chat"
)

// FallbackReply is substituted for a failed chat exchange so the
// transcript never shows a broken or empty turn.
const FallbackReply = "Sorry, I couldn't connect to the server. Please try again."

// Sender performs the network exchange for one user turn.
type Sender interface {
	Chat(ctx context.Context, message string, location *chat.GeolocationSample) (string, error)
}

// LocationSource exposes the cached best-effort position fix. It is
// read, never awaited, at send time.
type LocationSource interface {
	Sample() (chat.GeolocationSample, bool)
}

// Session owns an ordered, append-only transcript and the
// request/response cycle per user turn. A single exchange may be in
// flight at a time; further submissions are rejected while loading.
type Session struct {
	id        string
	createdAt time.Time

	sender   Sender
	location LocationSource

	mu       sync.Mutex
	messages []chat.Message
	loading  bool
	notify   func(chat.Message)

	log *logrus.Entry
}

// New provisions a session bound to a sender and a location source.
func New(sender Sender, location LocationSource) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		sender:    sender,
		location:  location,
		messages:  make([]chat.Message, 0, 16),
		log:       logrus.WithField("session", id),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Loading reports whether an exchange is currently in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Notify registers a single observer invoked for every appended
// message. Passing nil removes the observer.
func (s *Session) Notify(fn func(chat.Message)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Message looks up a transcript entry by id.
func (s *Session) Message(id string) (chat.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return chat.Message{}, false
}

// SendMessage runs one full exchange: optimistic user echo, backend
// call with the cached location (nil when absent), then the bot reply
// or the fixed fallback on any failure. It returns false without side
// effects when the text is blank or another exchange is in flight.
// The returned message is the appended bot turn.
func (s *Session) SendMessage(ctx context.Context, rawText string) (chat.Message, bool) {
	if strings.TrimSpace(rawText) == "" {
		return chat.Message{}, false
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return chat.Message{}, false
	}
	s.loading = true
	user := newMessage(rawText, true)
	s.messages = append(s.messages, user)
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(user)
	}

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var location *chat.GeolocationSample
	if sample, ok := s.location.Sample(); ok {
		location = &sample
	}

	reply, err := s.sender.Chat(ctx, rawText, location)
	if err != nil {
		s.log.WithError(err).Warn("chat exchange failed, substituting fallback reply")
		reply = FallbackReply
	}

	bot := newMessage(reply, false)
	s.mu.Lock()
	s.messages = append(s.messages, bot)
	notify = s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(bot)
	}
	return bot, true
}

func newMessage(text string, isUser bool) chat.Message {
	return chat.Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    isUser,
		Timestamp: time.Now().Format("15:04"),
	}
}
