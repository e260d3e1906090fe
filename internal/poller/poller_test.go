package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/repwatch/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	frame    model.TelemetryFrame
	frameErr error
	sessions []model.SessionRecord
	sessErr  error
	summary  map[string]json.RawMessage
	sumErr   error
	// blockPose makes PoseData wait for cancellation.
	blockPose bool
}

func (f *fakeSource) PoseData(ctx context.Context) (model.TelemetryFrame, error) {
	f.mu.Lock()
	block := f.blockPose
	frame, err := f.frame, f.frameErr
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return model.TelemetryFrame{}, ctx.Err()
	}
	return frame, err
}

func (f *fakeSource) Sessions(context.Context) ([]model.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions, f.sessErr
}

func (f *fakeSource) Summary(context.Context) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, f.sumErr
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func modep(m model.Mode) *model.Mode { return &m }

func stagep(s model.Stage) *model.Stage { return &s }

func TestInitialSnapshots(t *testing.T) {
	p := New(&fakeSource{}, model.ModeCurl, Options{})
	live := p.Live()
	require.Equal(t, ReadyFeedback, live.Feedback)
	require.Equal(t, model.ModeCurl, live.Mode)
	require.False(t, live.Connected)
	require.NotNil(t, p.Summary().Stats.ByMode)
}

func TestPollLiveSuccessThenFailureRetainsValues(t *testing.T) {
	src := &fakeSource{frame: model.TelemetryFrame{
		Mode:        modep(model.ModePushUp),
		ElbowAngle:  floatp(88),
		PushUpCount: intp(6),
		PushUpStage: stagep(model.StageDown),
	}}
	now := time.Unix(50, 0)
	var published []model.DerivedLiveState
	p := New(src, model.ModePushUp, Options{
		Now:    func() time.Time { return now },
		OnLive: func(s model.DerivedLiveState) { published = append(published, s) },
	})

	p.pollLive(context.Background())
	live := p.Live()
	require.Equal(t, model.DerivedLiveState{
		Mode:         model.ModePushUp,
		DisplayValue: 88,
		Count:        6,
		Feedback:     "Go lower",
		Connected:    true,
		UpdatedAt:    now,
	}, live)

	src.set(func(f *fakeSource) { f.frameErr = errors.New("connection refused") })
	p.pollLive(context.Background())
	failed := p.Live()
	require.Equal(t, ConnectingFeedback, failed.Feedback)
	require.False(t, failed.Connected)
	require.Equal(t, 88.0, failed.DisplayValue)
	require.Equal(t, 6, failed.Count)
	require.Equal(t, now, failed.UpdatedAt)

	require.Len(t, published, 2)
	// Earlier snapshots are not touched by later polls.
	require.Equal(t, "Go lower", published[0].Feedback)
}

func TestPollLiveEmptyFrameUsesFailurePath(t *testing.T) {
	src := &fakeSource{frame: model.TelemetryFrame{Mode: modep(model.ModePlank), PlankTime: intp(12)}}
	p := New(src, model.ModePlank, Options{})
	p.pollLive(context.Background())
	require.Equal(t, "Hold steady (12s)", p.Live().Feedback)

	src.set(func(f *fakeSource) { f.frame = model.TelemetryFrame{} })
	p.pollLive(context.Background())
	live := p.Live()
	require.Equal(t, ConnectingFeedback, live.Feedback)
	require.Equal(t, 12, live.Count)
	require.Equal(t, 12.0, live.DisplayValue)
}

func TestPollLiveUsesSelectedModeWhenFrameHasNone(t *testing.T) {
	src := &fakeSource{frame: model.TelemetryFrame{SquatCount: intp(3), SquatStage: stagep(model.StageUp), PushUpCount: intp(9)}}
	p := New(src, model.ModePushUp, Options{})
	p.SetMode(model.ModeSquat)
	require.Equal(t, model.ModeSquat, p.Mode())
	p.pollLive(context.Background())
	live := p.Live()
	require.Equal(t, model.ModeSquat, live.Mode)
	require.Equal(t, 3, live.Count)
	require.Equal(t, "Stand up", live.Feedback)
}

func TestPollSummaryMergesAndRetainsOnFailure(t *testing.T) {
	src := &fakeSource{
		sessions: []model.SessionRecord{
			{ID: 1, Mode: model.ModeSquat, TotalReps: intp(10), SquatGoodPosture: intp(7), SquatBadPosture: intp(3)},
			{ID: 2, Mode: model.ModeSquat, TotalReps: intp(5), SquatGoodPosture: intp(5), IsActive: true},
		},
		summary: map[string]json.RawMessage{"total_reps": json.RawMessage(`1`), "uptime": json.RawMessage(`42`)},
	}
	p := New(src, model.ModeSquat, Options{})
	p.pollSummary(context.Background())

	view := p.Summary()
	require.NoError(t, view.Err)
	require.Equal(t, 15, view.Stats.TotalReps)
	require.Equal(t, model.ExerciseTotals{TotalReps: 15, GoodPosture: 12, BadPosture: 3}, view.Stats.ByExercise[model.ModeSquat])
	require.Contains(t, view.Extra, "uptime")
	require.NotContains(t, view.Extra, "total_reps")

	sessErr := errors.New("timeout")
	src.set(func(f *fakeSource) { f.sessErr = sessErr })
	p.pollSummary(context.Background())
	stale := p.Summary()
	require.ErrorIs(t, stale.Err, sessErr)
	require.Equal(t, 15, stale.Stats.TotalReps)
	require.Len(t, stale.Sessions, 2)
}

func TestPollSummaryBackendFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{
		sessions: []model.SessionRecord{{ID: 1, Mode: model.ModeCurl, TotalReps: intp(4)}},
		sumErr:   errors.New("boom"),
	}
	p := New(src, model.ModeCurl, Options{})
	p.pollSummary(context.Background())
	view := p.Summary()
	require.NoError(t, view.Err)
	require.Nil(t, view.Extra)
	require.Equal(t, 4, view.Stats.TotalReps)
}

func TestRunLoopsAreIndependentAndStopOnCancel(t *testing.T) {
	src := &fakeSource{
		blockPose: true,
		sessions:  []model.SessionRecord{{ID: 1, Mode: model.ModePlank, TotalReps: intp(30)}},
	}
	var summaries atomic.Int32
	var stopped atomic.Bool
	var lateCallback atomic.Bool
	p := New(src, model.ModePlank, Options{
		LiveInterval:    5 * time.Millisecond,
		SummaryInterval: 5 * time.Millisecond,
		OnSummary: func(model.SummaryView) {
			if stopped.Load() {
				lateCallback.Store(true)
			}
			summaries.Add(1)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return summaries.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
	stopped.Store(true)
	time.Sleep(20 * time.Millisecond)
	require.False(t, lateCallback.Load())
	// The blocked live loop never published.
	require.Equal(t, ReadyFeedback, p.Live().Feedback)
}

func TestRunWithDisabledLoopsReturns(t *testing.T) {
	p := New(&fakeSource{}, model.ModePushUp, Options{})
	require.NoError(t, p.Run(context.Background()))
}

func TestRefreshSummaryReturnsSnapshot(t *testing.T) {
	src := &fakeSource{sessions: []model.SessionRecord{{ID: 3, Mode: model.ModePushUp, TotalReps: intp(9), IsActive: true}}}
	p := New(src, model.ModePushUp, Options{SkipBackendSummary: true})
	view := p.RefreshSummary(context.Background())
	require.Equal(t, 9, view.Stats.TotalReps)
	require.Equal(t, 1, view.Stats.ActiveSessions)
	require.NotNil(t, view.Stats.CurrentSession)
	require.Equal(t, int64(3), view.Stats.CurrentSession.ID)
}
