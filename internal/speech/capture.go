// Package speech is the boundary between the evaluation engine and speech
// capture/playback. Recognition providers report through a Listener; Capture
// wraps a provider in a bounded retry state machine that degrades to typed
// input.
package speech

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries bounds restarts before Capture falls back to typing.
	DefaultMaxRetries = 3
	// ManualConfidence is reported for typed responses.
	ManualConfidence = 1.0
)

// Listener receives recognition events.
type Listener interface {
	OnStart()
	OnResult(text string, confidence float64)
	OnError(err error)
	OnEnd()
}

// Recognizer is a speech-to-text provider. Start begins a recognition pass
// that reports to l; it may deliver events before returning. Stop ends the
// pass, after which the provider reports its final result and OnEnd.
type Recognizer interface {
	Start(l Listener) error
	Stop() error
}

// State is the capture lifecycle: Idle -> Listening -> Retrying(n) -> Fallback.
type State int

const (
	Idle State = iota
	Listening
	Retrying
	Fallback
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Retrying:
		return "retrying"
	case Fallback:
		return "fallback"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CaptureOption configures a Capture.
type CaptureOption func(*Capture)

// WithMaxRetries sets how many restarts are attempted before fallback.
func WithMaxRetries(n int) CaptureOption {
	return func(c *Capture) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger zerolog.Logger) CaptureOption {
	return func(c *Capture) {
		c.logger = logger
	}
}

// Capture drives a Recognizer and forwards its events to a Listener. Failed
// starts and retryable errors restart the provider up to maxRetries times;
// after that, or on a permanent error, Capture enters Fallback and only
// SubmitManual produces responses. A delivered result resets the counter.
type Capture struct {
	rec      Recognizer
	listener Listener
	logger   zerolog.Logger

	mu         sync.Mutex
	state      State
	retries    int
	maxRetries int
}

// NewCapture returns an idle Capture. A nil rec starts directly in Fallback.
func NewCapture(rec Recognizer, l Listener, opts ...CaptureOption) *Capture {
	c := &Capture{
		rec:        rec,
		listener:   l,
		logger:     zerolog.Nop(),
		maxRetries: DefaultMaxRetries,
	}
	for _, o := range opts {
		o(c)
	}
	if rec == nil {
		c.state = Fallback
	}
	return c
}

// State returns the current state and the number of restarts used.
func (c *Capture) State() (State, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.retries
}

// Start begins listening. It is a no-op while already listening and returns
// ErrFallback once recognition has been given up.
func (c *Capture) Start() error {
	c.mu.Lock()
	switch c.state {
	case Fallback:
		c.mu.Unlock()
		return ErrFallback
	case Listening, Retrying:
		c.mu.Unlock()
		return nil
	}
	c.state = Listening
	c.mu.Unlock()

	if err := c.rec.Start(events{c}); err != nil {
		return c.restart(err)
	}
	return nil
}

// Stop ends the current pass. The provider then reports the final result.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.state != Listening && c.state != Retrying {
		c.mu.Unlock()
		return ErrNotListening
	}
	c.state = Idle
	c.mu.Unlock()

	if err := c.rec.Stop(); err != nil {
		return fmt.Errorf("stop recognizer: %w", err)
	}
	return nil
}

// SubmitManual delivers typed text as a response. It works in every state;
// a running recognition pass is stopped first.
func (c *Capture) SubmitManual(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("manual response is empty")
	}

	c.mu.Lock()
	listening := c.state == Listening || c.state == Retrying
	if listening {
		c.state = Idle
	}
	c.mu.Unlock()

	if listening {
		if err := c.rec.Stop(); err != nil {
			c.logger.Warn().Err(err).Msg("stop recognizer before manual input")
		}
	}
	c.listener.OnResult(text, ManualConfidence)
	return nil
}

// Reset leaves Fallback and clears the retry counter, for example after the
// learner grants microphone access.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rec == nil {
		return
	}
	c.state = Idle
	c.retries = 0
}

// restart retries the provider until it starts or the budget runs out.
func (c *Capture) restart(cause error) error {
	for {
		c.mu.Lock()
		if c.retries >= c.maxRetries {
			c.mu.Unlock()
			return c.fallback(cause)
		}
		c.retries++
		n := c.retries
		c.state = Retrying
		c.mu.Unlock()

		c.logger.Info().Err(cause).Int("attempt", n).Int("max", c.maxRetries).Msg("restarting speech recognition")

		err := c.rec.Start(events{c})
		if err == nil {
			c.mu.Lock()
			if c.state == Retrying {
				c.state = Listening
			}
			c.mu.Unlock()
			return nil
		}
		cause = err
	}
}

func (c *Capture) fallback(cause error) error {
	c.mu.Lock()
	c.state = Fallback
	c.mu.Unlock()

	err := fmt.Errorf("%w: %w", ErrFallback, cause)
	c.logger.Warn().Err(cause).Msg("speech recognition unavailable, switching to manual input")
	c.listener.OnError(err)
	return err
}

// events adapts provider callbacks onto the Capture state machine.
type events struct{ c *Capture }

func (e events) OnStart() {
	e.c.listener.OnStart()
}

func (e events) OnResult(text string, confidence float64) {
	c := e.c
	c.mu.Lock()
	if c.state != Fallback {
		c.state = Idle
	}
	c.retries = 0
	c.mu.Unlock()
	c.listener.OnResult(text, confidence)
}

func (e events) OnError(err error) {
	c := e.c
	if !Retryable(err) {
		c.fallback(err)
		return
	}
	c.listener.OnError(err)

	c.mu.Lock()
	active := c.state == Listening || c.state == Retrying
	c.mu.Unlock()
	if active {
		c.restart(err)
	}
}

// OnEnd forwards the end of a pass. A pass that ends while Capture still
// expects speech is restarted against the retry budget.
func (e events) OnEnd() {
	c := e.c
	c.mu.Lock()
	listening := c.state == Listening
	c.mu.Unlock()
	if listening {
		c.restart(fmt.Errorf("recognition ended unexpectedly"))
		return
	}
	c.listener.OnEnd()
}
