// Package monitor serves the state of a running decode over HTTP.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/retroenv/retrogolib/log"
	"github.com/shirou/gopsutil/process"
)

const shutdownTimeout = 5 * time.Second

// ProgressSource provides the advisory progress of a decode run.
type ProgressSource interface {
	Progress() uint64
	Counts() (frames, packets, markers int)
}

// Run describes the monitored decode run.
type Run struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SampleCount uint64    `json:"sample_count"`
	StartTime   time.Time `json:"start_time"`
	Finished    bool      `json:"finished"`
	Error       string    `json:"error,omitempty"`
}

// Monitor exposes the progress of a decode run and the resource usage of the process.
type Monitor struct {
	logger     *log.Logger
	portNumber int

	mu       sync.Mutex
	run      Run
	progress ProgressSource
}

// New creates a new monitor.
func New(logger *log.Logger) *Monitor {
	return &Monitor{
		logger: logger,
	}
}

// WithPortNumber sets the port number of the monitor. Port 0 selects a random free port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	m.portNumber = portNumber
	return m
}

// RegisterRun sets the run whose progress is reported.
func (m *Monitor) RegisterRun(run Run, progress ProgressSource) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.run = run
	m.progress = progress
}

// CompleteRun marks the registered run as finished.
func (m *Monitor) CompleteRun(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.run.Finished = true
	if err != nil {
		m.run.Error = err.Error()
	}
}

// Handler returns the HTTP routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/run", m.listRun).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgress).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	return r
}

// StartServer starts serving the monitor in the background and returns the address it
// listens on. The server is shut down when the context is done.
func (m *Monitor) StartServer(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "localhost:"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", fmt.Errorf("listening on port %d: %w", m.portNumber, err)
	}

	server := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Monitor server failed", log.Err(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			m.logger.Error("Shutting down monitor server failed", log.Err(err))
		}
	}()

	addr := listener.Addr().String()
	m.logger.Info("Monitoring decode", log.String("url", "http://"+addr))
	return addr, nil
}

type progressRsp struct {
	Sample  uint64  `json:"sample"`
	Total   uint64  `json:"total"`
	Percent float64 `json:"percent"`
	Frames  int     `json:"frames"`
	Packets int     `json:"packets"`
	Markers int     `json:"markers"`
}

func (m *Monitor) listRun(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	run := m.run
	m.mu.Unlock()

	m.writeJSON(w, run)
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	progress := m.progress
	run := m.run
	m.mu.Unlock()

	if progress == nil {
		http.Error(w, "no decode run registered", http.StatusNotFound)
		return
	}

	rsp := progressRsp{
		Sample: progress.Progress(),
		Total:  run.SampleCount,
	}
	rsp.Frames, rsp.Packets, rsp.Markers = progress.Counts()
	if run.Finished && run.Error == "" {
		rsp.Percent = 100
	} else if rsp.Total > 0 {
		rsp.Percent = min(100, float64(rsp.Sample+1)*100/float64(rsp.Total))
	}

	m.writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.writeError(w, fmt.Errorf("opening process: %w", err))
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.writeError(w, fmt.Errorf("reading cpu usage: %w", err))
		return
	}
	memory, err := proc.MemoryInfo()
	if err != nil {
		m.writeError(w, fmt.Errorf("reading memory usage: %w", err))
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.writeError(w, fmt.Errorf("encoding response: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		m.logger.Debug("Writing monitor response failed", log.Err(err))
	}
}

func (m *Monitor) writeError(w http.ResponseWriter, err error) {
	m.logger.Error("Monitor request failed", log.Err(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
