package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, handler http.Handler, path string, v any) int {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	}
	return rec.Code
}

func TestMonitorProgress(t *testing.T) {
	m := New(log.NewTestLogger(t))
	handler := m.Handler()

	require.Equal(t, http.StatusNotFound, get(t, handler, "/api/progress", nil))

	res := results.New()
	res.AddFrame(results.Frame{Kind: results.Command, Start: 10, End: 49, Payload: 0x80})
	res.AddFrame(results.Frame{Kind: results.Envelope, Start: 5, End: 49})
	res.CommitPacket()
	res.ReportProgress(49)

	m.RegisterRun(Run{ID: "run", Source: "capture.csv", SampleCount: 200}, res)

	var rsp progressRsp
	require.Equal(t, http.StatusOK, get(t, handler, "/api/progress", &rsp))
	require.Equal(t, uint64(49), rsp.Sample)
	require.Equal(t, uint64(200), rsp.Total)
	require.InDelta(t, 25.0, rsp.Percent, 0.001)
	require.Equal(t, 2, rsp.Frames)
	require.Equal(t, 1, rsp.Packets)

	m.CompleteRun(nil)
	require.Equal(t, http.StatusOK, get(t, handler, "/api/progress", &rsp))
	require.InDelta(t, 100.0, rsp.Percent, 0.001)
}

func TestMonitorRun(t *testing.T) {
	m := New(log.NewTestLogger(t))
	handler := m.Handler()

	m.RegisterRun(Run{ID: "abc", Source: "capture.csv", SampleCount: 10}, results.New())
	m.CompleteRun(errors.New("broken capture"))

	var run Run
	require.Equal(t, http.StatusOK, get(t, handler, "/api/run", &run))
	require.Equal(t, "abc", run.ID)
	require.True(t, run.Finished)
	require.Equal(t, "broken capture", run.Error)

	require.Equal(t, http.StatusMethodNotAllowed, func() int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))
		return rec.Code
	}())
}

func TestMonitorResources(t *testing.T) {
	m := New(log.NewTestLogger(t))

	var rsp resourceRsp
	require.Equal(t, http.StatusOK, get(t, m.Handler(), "/api/resource", &rsp))
	require.NotZero(t, rsp.MemorySize)
}

func TestMonitorServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(log.NewTestLogger(t))
	m.RegisterRun(Run{ID: "server"}, results.New())

	addr, err := m.StartServer(ctx)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/run", addr))
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	require.Equal(t, "server", run.ID)
}
