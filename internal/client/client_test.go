package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/repwatch/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)
	return c
}

func TestPoseData(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/pose_data" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"mode":"Curl","elbow_angle":41,"curl_count_r":2,"curl_stage_l":"down"}`))
	}))

	frame, err := c.PoseData(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame.Mode)
	require.Equal(t, model.ModeCurl, *frame.Mode)
	require.Equal(t, 41.0, *frame.ElbowAngle)
	require.Equal(t, 2, *frame.CurlCountR)
	require.Nil(t, frame.CurlCountL)
	require.Equal(t, model.StageDown, *frame.CurlStageL)
}

func TestSessionsAndSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/get_sessions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sessions":[{"id":1,"mode":"Squat","start_time":"2025-03-01T10:00:00","end_time":null,"is_active":true,"total_reps":5}]}`))
	})
	mux.HandleFunc("/get_summary", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_sessions":0,"by_mode":{}}`))
	})
	c := newTestClient(t, mux)

	sessions, err := c.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.True(t, sessions[0].IsActive)
	require.Nil(t, sessions[0].EndTime)
	require.Equal(t, 5, *sessions[0].TotalReps)

	summary, err := c.Summary(context.Background())
	require.NoError(t, err)
	require.Contains(t, summary, "by_mode")
}

func TestLifecycleRequests(t *testing.T) {
	var (
		mu      sync.Mutex
		calls   []string
		gotMode string
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/set_mode" && r.Header.Get("Content-Type") == "application/json" {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				gotMode = body["mode"]
			}
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))

	ctx := context.Background()
	require.NoError(t, c.StartSession(ctx))
	require.NoError(t, c.SetMode(ctx, model.ModePlank))
	require.NoError(t, c.EndSession(ctx))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"POST /start_session", "POST /set_mode", "POST /end_session"}, calls)
	require.Equal(t, "Plank", gotMode)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"status":"error","message":"No active session"}`, http.StatusBadRequest)
	}))

	err := c.EndSession(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.Code)
	require.Contains(t, statusErr.Error(), "No active session")
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	_, err := c.PoseData(context.Background())
	require.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "http://", "::"} {
		_, err := New(raw, time.Second)
		require.Error(t, err, raw)
	}
	c, err := New("http://127.0.0.1:5000/", 0)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:5000", c.BaseURL())
}
