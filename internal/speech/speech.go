// Package speech turns microphone audio into text. Capture runs an
// external recorder process emitting raw PCM; transcription runs locally
// through whisper.cpp. The rest of the app only sees the Engine interface
// and its event stream.
package speech

import "context"

// EventKind classifies transcription events.
type EventKind int

const (
	// KindInterim is a provisional transcript that may still change.
	KindInterim EventKind = iota
	// KindFinal is the finalized transcript for the utterance.
	KindFinal
	// KindErr reports a capture or transcription failure.
	KindErr
	// KindEnded signals the stream is done; no further events follow.
	KindEnded
)

// Event is one item on an Engine's output stream. Exactly one KindFinal or
// KindErr precedes KindEnded on a well-behaved stream.
type Event struct {
	Kind   EventKind
	Text   string
	Reason error
}

// Engine produces transcription events for a single utterance. Start may
// only be called once per Engine value.
type Engine interface {
	// Start begins capture. The returned channel closes after KindEnded.
	// Canceling ctx stops capture and finalizes whatever was heard.
	Start(ctx context.Context) (<-chan Event, error)
	// Stop force-stops capture and releases the recorder. Safe to call
	// multiple times and after the stream has ended.
	Stop()
}

// Capability reports whether speech input is usable on this machine, and
// why not when it isn't. A zero Capability means unavailable with no
// stated reason.
type Capability struct {
	OK     bool
	Reason string
}

// Available marks speech input as usable.
func Available() Capability { return Capability{OK: true} }

// Unavailable marks speech input as unusable for the given reason.
func Unavailable(reason string) Capability { return Capability{Reason: reason} }
