package voice

import (
	"context"
	"sync"
	"time"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/speech"
	"go.uber.org/zap"
)

// Searcher dispatches a finalized transcript to the hosted search function.
type Searcher interface {
	SearchByVoice(ctx context.Context, query string) (*entity.VoiceSearchResponse, error)
}

// EngineFactory builds a fresh speech engine per utterance.
type EngineFactory func() speech.Engine

// Callbacks receive voice flow updates. Nil callbacks are skipped. They
// are invoked from the assistant's goroutines; UI code must marshal onto
// its own thread.
type Callbacks struct {
	OnState      func(from, to State)
	OnTranscript func(text string, final bool)
	OnResults    func(query string, results []market.ListingSummary)
	OnError      func(msg string)
}

// Options tunes the voice flow.
type Options struct {
	// ActivationDelay separates the activation keypress from the start of
	// capture so the keypress itself is not recorded.
	ActivationDelay time.Duration
	// ListenTimeout bounds how long capture may run without a final
	// transcript. Zero disables the timeout.
	ListenTimeout time.Duration
}

// Assistant runs the voice search flow. All entry points are safe for
// concurrent use; at most one utterance is in flight at a time.
type Assistant struct {
	machine  *machine
	cap      speech.Capability
	engines  EngineFactory
	searcher Searcher
	events   *bus.Bus
	logger   *zap.Logger
	opts     Options
	cb       Callbacks

	mu     sync.Mutex
	cancel context.CancelFunc
	engine speech.Engine
	text   string
}

// New creates an Assistant. cap governs whether Activate works at all;
// SearchText works regardless.
func New(cap speech.Capability, engines EngineFactory, searcher Searcher, events *bus.Bus, logger *zap.Logger, opts Options, cb Callbacks) *Assistant {
	return &Assistant{
		machine:  newMachine(),
		cap:      cap,
		engines:  engines,
		searcher: searcher,
		events:   events,
		logger:   logger,
		opts:     opts,
		cb:       cb,
	}
}

// SetCallbacks replaces the callback set. Call before the first
// activation; the UI uses this to wire itself after construction.
func (a *Assistant) SetCallbacks(cb Callbacks) {
	a.mu.Lock()
	a.cb = cb
	a.mu.Unlock()
}

func (a *Assistant) callbacks() Callbacks {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cb
}

// State returns the current flow state.
func (a *Assistant) State() State { return a.machine.State() }

// Transcript returns the latest transcript text for the current or most
// recent utterance.
func (a *Assistant) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.text
}

// Available reports whether voice capture can be used, with a reason when
// it cannot.
func (a *Assistant) Available() speech.Capability { return a.cap }

// Activate starts a voice interaction. It is a no-op while one is already
// in progress; only idle and error states accept activation. When speech
// capture is unavailable the error callback fires and the state does not
// change.
func (a *Assistant) Activate(ctx context.Context) {
	if !a.cap.OK {
		a.fail(a.cap.Reason)
		return
	}
	from, err := a.machine.transition(StateActivated)
	if err != nil {
		// Already activated or listening; ignore repeat presses.
		return
	}
	a.setTranscript("", false)
	a.notifyState(from, StateActivated)

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	go a.listen(ctx)
}

// Stop abandons the current interaction and releases the recorder. Safe
// to call in any state.
func (a *Assistant) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	engine := a.engine
	a.cancel = nil
	a.engine = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if engine != nil {
		engine.Stop()
	}
	for _, from := range []State{StateActivated, StateListening, StateError} {
		if a.machine.transitionFrom(from, StateIdle) {
			a.notifyState(from, StateIdle)
			return
		}
	}
}

// SearchText runs the same search dispatch with a typed query. This is
// the fallback path when speech capture is unavailable.
func (a *Assistant) SearchText(ctx context.Context, query string) {
	from, err := a.machine.transition(StateProcessing)
	if err != nil {
		return
	}
	a.setTranscript(query, true)
	a.notifyState(from, StateProcessing)
	a.dispatch(ctx, query)
}

func (a *Assistant) listen(ctx context.Context) {
	if a.opts.ActivationDelay > 0 {
		select {
		case <-time.After(a.opts.ActivationDelay):
		case <-ctx.Done():
			return
		}
	}
	if !a.machine.transitionFrom(StateActivated, StateListening) {
		return
	}
	a.notifyState(StateActivated, StateListening)

	engine := a.engines()
	a.mu.Lock()
	a.engine = engine
	a.mu.Unlock()

	events, err := engine.Start(ctx)
	if err != nil {
		a.failFrom(StateListening, "could not start the microphone: "+err.Error())
		return
	}
	defer engine.Stop()

	var timeout <-chan time.Time
	if a.opts.ListenTimeout > 0 {
		timer := time.NewTimer(a.opts.ListenTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				a.settleIdle()
				return
			}
			switch ev.Kind {
			case speech.KindInterim:
				a.setTranscript(ev.Text, false)
			case speech.KindFinal:
				if !a.machine.transitionFrom(StateListening, StateProcessing) {
					return
				}
				a.setTranscript(ev.Text, true)
				a.notifyState(StateListening, StateProcessing)
				a.dispatch(ctx, ev.Text)
				return
			case speech.KindErr:
				a.logger.Warn("speech capture failed", zap.Error(ev.Reason))
				a.failFrom(StateListening, ev.Reason.Error())
				return
			case speech.KindEnded:
				a.settleIdle()
				return
			}
		case <-timeout:
			engine.Stop()
			a.failFrom(StateListening, "didn't catch that, try again")
			return
		case <-ctx.Done():
			return
		}
	}
}

// dispatch sends the query verbatim and settles the interaction with
// exactly one outcome: results or an error.
func (a *Assistant) dispatch(ctx context.Context, query string) {
	resp, err := a.searcher.SearchByVoice(ctx, query)
	if err != nil {
		a.logger.Warn("voice search dispatch failed", zap.String("query", query), zap.Error(err))
		a.failFrom(StateProcessing, "search is unavailable right now, try again")
		return
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "search failed, try again"
		}
		a.failFrom(StateProcessing, msg)
		return
	}

	if a.machine.transitionFrom(StateProcessing, StateIdle) {
		a.notifyState(StateProcessing, StateIdle)
	}
	if cb := a.callbacks(); cb.OnResults != nil {
		cb.OnResults(query, resp.Results)
	}
	a.events.Emit(bus.KindVoiceResults, map[string]any{
		"query": query,
		"count": len(resp.Results),
	})
}

// failFrom moves from the given state to error and reports msg once. The
// guard keeps a late failure from clobbering a state the user already
// moved past.
func (a *Assistant) failFrom(from State, msg string) {
	if !a.machine.transitionFrom(from, StateError) {
		return
	}
	a.notifyState(from, StateError)
	a.fail(msg)
}

// settleIdle returns a listening session that ended without speech to idle
// so the next activation is not a no-op.
func (a *Assistant) settleIdle() {
	if a.machine.transitionFrom(StateListening, StateIdle) {
		a.notifyState(StateListening, StateIdle)
	}
}

func (a *Assistant) fail(msg string) {
	if cb := a.callbacks(); cb.OnError != nil {
		cb.OnError(msg)
	}
	a.events.Emit(bus.KindVoiceError, msg)
}

func (a *Assistant) setTranscript(text string, final bool) {
	a.mu.Lock()
	a.text = text
	a.mu.Unlock()
	if cb := a.callbacks(); text != "" && cb.OnTranscript != nil {
		cb.OnTranscript(text, final)
	}
}

func (a *Assistant) notifyState(from, to State) {
	if cb := a.callbacks(); cb.OnState != nil {
		cb.OnState(from, to)
	}
	a.events.Emit(bus.KindVoiceStateChanged, map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}
