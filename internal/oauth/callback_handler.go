package oauth

import (
	"context"
	"sync"
	"time"
)

// CallbackState is the state of the one-shot callback handler.
type CallbackState int

const (
	// StateIdle means no callback has been processed yet.
	StateIdle CallbackState = iota

	// StateProcessing means an exchange is in flight.
	StateProcessing

	// StateSuccess is terminal: the code was exchanged for a session.
	StateSuccess

	// StateError is terminal: authorization or exchange failed.
	StateError
)

// String returns the string representation of the callback state.
func (s CallbackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultExchangeRetryDelay is the pause before the single retry of a
// failed exchange.
const DefaultExchangeRetryDelay = 2 * time.Second

// ExchangeFunc performs the code-for-session exchange.
type ExchangeFunc func(ctx context.Context, code, state string) error

// CallbackHandler consumes an OAuth redirect exactly once. The
// authorization code is single-use, so a duplicate invocation (double
// redirect, impatient re-click) must not re-submit a spent code: the
// `processed` latch is set before the exchange call, which also
// suppresses duplicates that arrive while the first exchange is still
// in flight. Transient failures get exactly one retry after a fixed
// delay; after that the handler is terminal.
type CallbackHandler struct {
	mu         sync.Mutex
	state      CallbackState
	processed  bool // one-way latch, never reset
	lastError  string
	exchange   ExchangeFunc
	retryDelay time.Duration
}

// NewCallbackHandler creates a handler around the given exchange
// function.
func NewCallbackHandler(exchange ExchangeFunc) *CallbackHandler {
	return &CallbackHandler{
		state:      StateIdle,
		exchange:   exchange,
		retryDelay: DefaultExchangeRetryDelay,
	}
}

// Handle consumes one callback result and drives the state machine to
// a terminal state. Re-entry after the latch is set is a no-op and
// returns the current state.
func (h *CallbackHandler) Handle(ctx context.Context, result *CallbackResult) CallbackState {
	h.mu.Lock()

	// The latch comes first: once any outcome is decided, a stray
	// duplicate redirect (even one carrying an error) must not
	// overwrite it.
	if h.processed {
		state := h.state
		h.mu.Unlock()
		return state
	}

	if result.Error != "" {
		h.processed = true
		h.state = StateError
		h.lastError = result.Error
		if result.ErrorDescription != "" {
			h.lastError = result.Error + ": " + result.ErrorDescription
		}
		h.mu.Unlock()
		return StateError
	}

	if result.Code == "" {
		h.processed = true
		h.state = StateError
		h.lastError = "no authorization code received"
		h.mu.Unlock()
		return StateError
	}

	// Latch before the network call so concurrent duplicates are
	// suppressed while the first exchange is in flight.
	h.processed = true
	h.state = StateProcessing
	h.mu.Unlock()

	err := h.exchange(ctx, result.Code, result.State)
	if err != nil {
		select {
		case <-time.After(h.retryDelay):
		case <-ctx.Done():
			return h.fail(ctx.Err().Error())
		}
		if err = h.exchange(ctx, result.Code, result.State); err != nil {
			return h.fail(err.Error())
		}
	}

	h.mu.Lock()
	h.state = StateSuccess
	h.mu.Unlock()
	return StateSuccess
}

func (h *CallbackHandler) fail(msg string) CallbackState {
	h.mu.Lock()
	h.state = StateError
	h.lastError = msg
	h.mu.Unlock()
	return StateError
}

// State returns the current state.
func (h *CallbackHandler) State() CallbackState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Err returns the error message for StateError, or "".
func (h *CallbackHandler) Err() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastError
}

// SetRetryDelay overrides the retry delay (tests).
func (h *CallbackHandler) SetRetryDelay(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retryDelay = d
}
