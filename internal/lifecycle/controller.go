// Package lifecycle sends session start, end and mode signals to the service.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/verte-zerg/repwatch/internal/model"
)

// Signal names a lifecycle notification.
type Signal string

// Lifecycle signals.
const (
	SignalStart   Signal = "start_session"
	SignalEnd     Signal = "end_session"
	SignalSetMode Signal = "set_mode"
)

// Signaler is the subset of the service client the controller needs.
type Signaler interface {
	StartSession(ctx context.Context) error
	EndSession(ctx context.Context) error
	SetMode(ctx context.Context, mode model.Mode) error
}

// Result reports the outcome of one best-effort send. Callers may ignore it;
// failed sends are never retried.
type Result struct {
	Signal Signal
	Mode   model.Mode
	Err    error
	// Skipped is set when no request was sent.
	Skipped bool
}

// OK reports whether the signal was delivered.
func (r Result) OK() bool {
	return !r.Skipped && r.Err == nil
}

// Controller issues lifecycle signals for one workout view. Sends never
// overlap, and a mode change always announces the latest selection.
type Controller struct {
	sig     Signaler
	timeout time.Duration

	mu    sync.Mutex
	mode  model.Mode
	ended bool

	// sendMu is held for the whole of a request; sent is guarded by it.
	sendMu sync.Mutex
	sent   model.Mode
}

// New creates a controller. Each send is bounded by timeout when positive.
func New(sig Signaler, initial model.Mode, timeout time.Duration) *Controller {
	return &Controller{sig: sig, mode: initial, timeout: timeout}
}

// Mode returns the last selected mode.
func (c *Controller) Mode() model.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Activate starts a session and announces the selected mode.
func (c *Controller) Activate(ctx context.Context) []Result {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	start := c.send(ctx, SignalStart, "", func(ctx context.Context) error {
		return c.sig.StartSession(ctx)
	})
	mode := c.Mode()
	c.sent = mode
	setMode := c.send(ctx, SignalSetMode, mode, func(ctx context.Context) error {
		return c.sig.SetMode(ctx, mode)
	})
	return []Result{start, setMode}
}

// Select records a newly selected mode without sending it. It reports false
// when the mode is unchanged or the session has ended.
func (c *Controller) Select(mode model.Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended || mode == c.mode {
		return false
	}
	c.mode = mode
	return true
}

// Flush announces the latest selected mode unless it was already sent.
// Concurrent calls are serialized; a call that finds nothing new is skipped.
func (c *Controller) Flush(ctx context.Context) Result {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	c.mu.Lock()
	mode, ended := c.mode, c.ended
	c.mu.Unlock()
	if ended || mode == c.sent {
		return Result{Signal: SignalSetMode, Mode: mode, Skipped: true}
	}
	c.sent = mode
	return c.send(ctx, SignalSetMode, mode, func(ctx context.Context) error {
		return c.sig.SetMode(ctx, mode)
	})
}

// SetMode selects mode and announces it. Reselecting the current mode sends
// nothing.
func (c *Controller) SetMode(ctx context.Context, mode model.Mode) Result {
	if !c.Select(mode) {
		return Result{Signal: SignalSetMode, Mode: mode, Skipped: true}
	}
	return c.Flush(ctx)
}

// Deactivate ends the session once any in-flight send has finished. Only the
// first call sends a request.
func (c *Controller) Deactivate(ctx context.Context) Result {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return Result{Signal: SignalEnd, Skipped: true}
	}
	c.ended = true
	c.mu.Unlock()
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.send(ctx, SignalEnd, "", func(ctx context.Context) error {
		return c.sig.EndSession(ctx)
	})
}

func (c *Controller) send(ctx context.Context, signal Signal, mode model.Mode, fn func(context.Context) error) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return Result{Signal: signal, Mode: mode, Err: fn(ctx)}
}
