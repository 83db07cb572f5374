package capture_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishi-mitra/gateway/internal/capture"
)

type scriptedRecognizer struct {
	mu      sync.Mutex
	events  chan capture.Event
	stopped int
}

func (r *scriptedRecognizer) Available() bool { return true }

func (r *scriptedRecognizer) Start(ctx context.Context) (<-chan capture.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(chan capture.Event, 16)
	return r.events, nil
}

func (r *scriptedRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

func (r *scriptedRecognizer) emit(ev capture.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events <- ev
}

func nextText(t *testing.T, texts <-chan string) string {
	t.Helper()
	select {
	case text := <-texts:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for text update")
		return ""
	}
}

func newController(rec capture.Recognizer) (*capture.Controller, chan string) {
	texts := make(chan string, 16)
	ctrl := capture.New(rec, func(s string) { texts <- s }, nil)
	return ctrl, texts
}

func TestCaptureAccumulatesUtterance(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	require.Equal(t, "", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventPartial, Final: "water"})
	require.Equal(t, "water", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventPartial, Final: "water the crop", Interim: "now"})
	require.Equal(t, "water the crop now", nextText(t, texts))

	ctrl.Stop()
	assert.False(t, ctrl.Active())
	assert.Equal(t, "water the crop now", ctrl.Text())
}

func TestCapturePreservesTypedText(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), "  remind me to  "))
	require.Equal(t, "remind me to ", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventPartial, Final: "water", Interim: "the"})
	require.Equal(t, "remind me to water the", nextText(t, texts))
}

func TestCaptureInterimOverwritesNotAppends(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	nextText(t, texts)

	rec.emit(capture.Event{Kind: capture.EventPartial, Interim: "wat"})
	require.Equal(t, "wat", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventPartial, Interim: "water the"})
	require.Equal(t, "water the", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventPartial, Final: "water the crop"})
	require.Equal(t, "water the crop", nextText(t, texts))
}

func TestCaptureNeverDuplicatesFinalizedWords(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	nextText(t, texts)

	prevLen := 0
	finals := []string{"spray", "spray", "spray the field", "spray the field"}
	for _, final := range finals {
		rec.emit(capture.Event{Kind: capture.EventPartial, Final: final})
		text := nextText(t, texts)
		require.GreaterOrEqual(t, len(text), prevLen, "text length must be monotonic")
		require.Equal(t, 1, strings.Count(text, "spray"), "finalized words must not repeat")
		prevLen = len(text)
	}
	assert.Equal(t, "spray the field", ctrl.Text())
}

func TestCaptureSecondStartRejected(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	nextText(t, texts)
	assert.False(t, ctrl.Start(context.Background(), "again"))
	assert.True(t, ctrl.Active())
}

func TestCaptureBusyHostRejected(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl := capture.New(rec, nil, func() bool { return true })

	assert.False(t, ctrl.Start(context.Background(), ""))
	assert.False(t, ctrl.Active())
}

func TestCaptureUnavailableIsNoop(t *testing.T) {
	ctrl, _ := newController(capture.Unavailable())

	assert.False(t, ctrl.Available())
	assert.False(t, ctrl.Start(context.Background(), "hello"))
	ctrl.Stop()
	assert.False(t, ctrl.Active())
}

func TestCaptureStreamErrorRevertsToIdle(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	nextText(t, texts)

	rec.emit(capture.Event{Kind: capture.EventPartial, Final: "sow wheat"})
	require.Equal(t, "sow wheat", nextText(t, texts))

	rec.emit(capture.Event{Kind: capture.EventError, Err: errors.New("microphone lost")})
	require.Eventually(t, func() bool { return !ctrl.Active() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "sow wheat", ctrl.Text(), "text must survive a stream error")
}

func TestCaptureEndOfUtteranceDeactivates(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl, texts := newController(rec)

	require.True(t, ctrl.Start(context.Background(), ""))
	nextText(t, texts)

	rec.emit(capture.Event{Kind: capture.EventEnd})
	require.Eventually(t, func() bool { return !ctrl.Active() }, 2*time.Second, 10*time.Millisecond)

	// A fresh session may start afterwards.
	require.True(t, ctrl.Start(context.Background(), ctrl.Text()))
}
