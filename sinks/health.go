package sinks

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/metrics"
	"github.com/corelogio/corelog/selflog"
)

// SinkStatus is a point-in-time health snapshot for one tracked sink.
type SinkStatus struct {
	Name        string    `json:"name"`
	LastWrite   time.Time `json:"lastWrite,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	LastErrorAt time.Time `json:"lastErrorAt,omitempty"`
	Writes      uint64    `json:"writes"`
	Errors      uint64    `json:"errors"`
}

// TrackedSink wraps a core.Sink to record the last-write timestamp and the
// most recent write error for the /healthz endpoint. Write itself can't
// fail (core.Sink.Write returns nothing), so errors come only from sinks
// that also choose to report them via ReportError.
type TrackedSink struct {
	name string
	inner core.Sink

	mu     sync.Mutex
	status SinkStatus
}

// NewTrackedSink wraps inner, recording its activity under name.
func NewTrackedSink(name string, inner core.Sink) *TrackedSink {
	return &TrackedSink{name: name, inner: inner, status: SinkStatus{Name: name}}
}

// Write implements core.Sink.
func (t *TrackedSink) Write(entry *core.LogEntry) {
	t.inner.Write(entry)
	t.mu.Lock()
	t.status.LastWrite = time.Now()
	t.status.Writes++
	t.mu.Unlock()
}

// ReportError records a delivery failure observed by the wrapped sink (a
// batched or async decorator's onError callback, typically).
func (t *TrackedSink) ReportError(err error) {
	t.mu.Lock()
	t.status.LastError = err.Error()
	t.status.LastErrorAt = time.Now()
	t.status.Errors++
	t.mu.Unlock()
}

// Flush implements core.Flusher if the wrapped sink does.
func (t *TrackedSink) Flush() {
	if f, ok := t.inner.(core.Flusher); ok {
		f.Flush()
	}
}

// Close implements core.Closer if the wrapped sink does.
func (t *TrackedSink) Close() error {
	if c, ok := t.inner.(core.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *TrackedSink) snapshot() SinkStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// HealthServer is an opt-in diagnostics HTTP endpoint exposing per-sink
// write/error status at /healthz and a Prometheus scrape at /metrics. It is
// not part of the logging pipeline itself: nothing in the engine requires
// it to run.
type HealthServer struct {
	mu     sync.RWMutex
	tracks []*TrackedSink

	srv *http.Server
}

// NewHealthServer returns an empty server; the router serving /healthz,
// /selflog, and /metrics is built when ListenAndServe starts it.
func NewHealthServer() *HealthServer {
	return &HealthServer{}
}

// Track registers a wrapped sink so its status appears under /healthz.
func (h *HealthServer) Track(t *TrackedSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tracks = append(h.tracks, t)
}

func (h *HealthServer) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.serveHealthz).Methods(http.MethodGet)
	r.HandleFunc("/selflog", h.serveSelflog).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// serveSelflog surfaces selflog's in-memory recent-lines buffer, even when
// nothing has called selflog.Enable — useful for an operator who only
// thinks to look once something has already gone wrong.
func (h *HealthServer) serveSelflog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(selflog.Recent())
}

func (h *HealthServer) serveHealthz(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	statuses := make([]SinkStatus, 0, len(h.tracks))
	for _, t := range h.tracks {
		statuses = append(statuses, t.snapshot())
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statuses)
}

// ListenAndServe starts the HTTP server on addr. It blocks until the
// server stops; call Shutdown from another goroutine to stop it cleanly.
func (h *HealthServer) ListenAndServe(addr string) error {
	h.mu.Lock()
	h.srv = &http.Server{Addr: addr, Handler: h.handler()}
	srv := h.srv
	h.mu.Unlock()
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops a running server started by ListenAndServe, closing its
// listener and any open connections immediately.
func (h *HealthServer) Shutdown() error {
	h.mu.Lock()
	srv := h.srv
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close()
}
