// Package poller runs the live telemetry and session summary polling loops.
package poller

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/repwatch/internal/feedback"
	"github.com/verte-zerg/repwatch/internal/model"
	"github.com/verte-zerg/repwatch/internal/stats"
)

// Default loop intervals.
const (
	DefaultLiveInterval    = 500 * time.Millisecond
	DefaultSummaryInterval = 2 * time.Second
)

// Feedback texts owned by the poller.
const (
	ReadyFeedback      = "Ready to begin"
	ConnectingFeedback = "Connecting to backend..."
)

// Source fetches raw data from the service.
type Source interface {
	PoseData(ctx context.Context) (model.TelemetryFrame, error)
	Sessions(ctx context.Context) ([]model.SessionRecord, error)
	Summary(ctx context.Context) (map[string]json.RawMessage, error)
}

// Options configures a Poller. A loop whose interval is <= 0 does not run.
type Options struct {
	LiveInterval    time.Duration
	SummaryInterval time.Duration
	// RequestTimeout bounds each fetch when positive.
	RequestTimeout time.Duration
	// SkipBackendSummary disables the /get_summary fallback fetch.
	SkipBackendSummary bool

	OnLive    func(model.DerivedLiveState)
	OnSummary func(model.SummaryView)

	Now func() time.Time
}

// Poller owns the two polling loops and their latest snapshots.
type Poller struct {
	src  Source
	opts Options

	mode    atomic.Value // model.Mode
	live    atomic.Pointer[model.DerivedLiveState]
	summary atomic.Pointer[model.SummaryView]
}

// New creates a poller tracking the given mode.
func New(src Source, mode model.Mode, opts Options) *Poller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Poller{src: src, opts: opts}
	p.mode.Store(mode)
	p.live.Store(&model.DerivedLiveState{Mode: mode, Feedback: ReadyFeedback})
	p.summary.Store(&model.SummaryView{Stats: stats.Aggregate(nil)})
	return p
}

// SetMode changes the mode used for frames that carry none.
func (p *Poller) SetMode(mode model.Mode) {
	p.mode.Store(mode)
}

// Mode returns the selected mode.
func (p *Poller) Mode() model.Mode {
	return p.mode.Load().(model.Mode)
}

// Live returns the latest live snapshot.
func (p *Poller) Live() model.DerivedLiveState {
	return *p.live.Load()
}

// Summary returns the latest summary snapshot.
func (p *Poller) Summary() model.SummaryView {
	return *p.summary.Load()
}

// RefreshSummary runs one summary poll and returns the resulting snapshot.
func (p *Poller) RefreshSummary(ctx context.Context) model.SummaryView {
	p.pollSummary(ctx)
	return p.Summary()
}

// Run polls until ctx is cancelled. The summary loop fires immediately; the
// live loop waits one interval. Nothing is published once Run has returned.
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if p.opts.LiveInterval > 0 {
		g.Go(func() error {
			p.loop(ctx, p.opts.LiveInterval, false, p.pollLive)
			return nil
		})
	}
	if p.opts.SummaryInterval > 0 {
		g.Go(func() error {
			p.loop(ctx, p.opts.SummaryInterval, true, p.pollSummary)
			return nil
		})
	}
	return g.Wait()
}

// loop runs poll on every tick. A poll finishes before the next one starts;
// ticks that fire meanwhile are dropped.
func (p *Poller) loop(ctx context.Context, interval time.Duration, immediate bool, poll func(context.Context)) {
	if immediate {
		poll(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll(ctx)
		}
	}
}

func (p *Poller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, p.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (p *Poller) pollLive(ctx context.Context) {
	reqCtx, cancel := p.requestContext(ctx)
	defer cancel()

	frame, err := p.src.PoseData(reqCtx)
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		if reading, ok := feedback.Evaluate(p.Mode(), frame); ok {
			p.publishLive(model.DerivedLiveState{
				Mode:         reading.Mode,
				DisplayValue: reading.DisplayValue,
				Count:        reading.Count,
				Feedback:     reading.Feedback,
				Connected:    true,
				UpdatedAt:    p.opts.Now(),
			})
			return
		}
	}
	next := p.Live()
	next.Feedback = ConnectingFeedback
	next.Connected = false
	p.publishLive(next)
}

func (p *Poller) pollSummary(ctx context.Context) {
	reqCtx, cancel := p.requestContext(ctx)
	defer cancel()

	var (
		sessions   []model.SessionRecord
		sessionErr error
		backend    map[string]json.RawMessage
	)
	var g errgroup.Group
	g.Go(func() error {
		sessions, sessionErr = p.src.Sessions(reqCtx)
		return nil
	})
	if !p.opts.SkipBackendSummary {
		g.Go(func() error {
			summary, err := p.src.Summary(reqCtx)
			if err == nil {
				backend = summary
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return
	}
	if sessionErr != nil {
		prev := p.Summary()
		prev.Err = sessionErr
		p.publishSummary(prev)
		return
	}
	p.publishSummary(stats.MergeSummary(backend, sessions, p.opts.Now()))
}

func (p *Poller) publishLive(state model.DerivedLiveState) {
	p.live.Store(&state)
	if p.opts.OnLive != nil {
		p.opts.OnLive(state)
	}
}

func (p *Poller) publishSummary(view model.SummaryView) {
	p.summary.Store(&view)
	if p.opts.OnSummary != nil {
		p.opts.OnSummary(view)
	}
}
