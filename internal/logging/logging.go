// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the loggers used before and after bootstrap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Proto is the bootstrap logger used until the real logger is active.
type Proto struct {
	w io.Writer
}

// NewProto writes bracketed level lines to w.
func NewProto(w io.Writer) *Proto {
	return &Proto{w: w}
}

func (p *Proto) Info(msg string)  { fmt.Fprintf(p.w, "[INFO] %s\n", msg) }
func (p *Proto) Warn(msg string)  { fmt.Fprintf(p.w, "[WARNING] %s\n", msg) }
func (p *Proto) Error(msg string) { fmt.Fprintf(p.w, "[ERROR] %s\n", msg) }

// LevelFor maps the verbosity switches to a level: verbose wins over quiet.
func LevelFor(verbose, quiet bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler returns the text handler used for build output.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// Factory creates named loggers sharing one handler.
type Factory interface {
	Logger(name string) *slog.Logger
}

// RecordingFactory is a Factory whose output is observed by a Recorder.
type RecordingFactory struct {
	handler  slog.Handler
	recorder *Recorder
}

// NewRecordingFactory wraps h so that every handled record is counted by rec.
func NewRecordingFactory(h slog.Handler, rec *Recorder) *RecordingFactory {
	return &RecordingFactory{handler: rec.Wrap(h), recorder: rec}
}

func (f *RecordingFactory) Logger(name string) *slog.Logger {
	l := slog.New(f.handler)
	if name != "" {
		l = l.With(slog.String("logger", name))
	}
	return l
}

// LevelRecorder returns the recorder observing this factory.
func (f *RecordingFactory) LevelRecorder() *Recorder { return f.recorder }

// PlainFactory is a Factory without level recording.
type PlainFactory struct {
	Handler slog.Handler
}

func (f PlainFactory) Logger(name string) *slog.Logger {
	l := slog.New(f.Handler)
	if name != "" {
		l = l.With(slog.String("logger", name))
	}
	return l
}

// Recorder counts log records per level and remembers whether a record
// above the allowed maximum was emitted.
type Recorder struct {
	records  *prometheus.CounterVec
	maxLevel atomic.Int64
	limited  atomic.Bool
	exceeded atomic.Bool
}

// NewRecorder registers the record counter with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mvnboot_log_records_total",
		Help: "Log records emitted during the invocation, by level.",
	}, []string{"level"})
	if err := reg.Register(records); err != nil {
		return nil, fmt.Errorf("register log record counter: %w", err)
	}
	return &Recorder{records: records}, nil
}

// SetMaxLevelAllowed arms the threshold: once a record at or above level is
// handled, ThresholdExceeded reports true.
func (r *Recorder) SetMaxLevelAllowed(level slog.Level) {
	r.maxLevel.Store(int64(level))
	r.limited.Store(true)
}

// ThresholdExceeded reports whether a record at or above the configured
// level was emitted.
func (r *Recorder) ThresholdExceeded() bool {
	return r.exceeded.Load()
}

// Counter exposes the per level counter (for tests and metric dumps).
func (r *Recorder) Counter(level slog.Level) prometheus.Counter {
	return r.records.WithLabelValues(level.String())
}

func (r *Recorder) record(level slog.Level) {
	r.records.WithLabelValues(level.String()).Inc()
	if r.limited.Load() && int64(level) >= r.maxLevel.Load() {
		r.exceeded.Store(true)
	}
}

// Wrap returns a handler that records every record handled by h.
func (r *Recorder) Wrap(h slog.Handler) slog.Handler {
	return &recordingHandler{next: h, rec: r}
}

type recordingHandler struct {
	next slog.Handler
	rec  *Recorder
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *recordingHandler) Handle(ctx context.Context, rec slog.Record) error {
	h.rec.record(rec.Level)
	return h.next.Handle(ctx, rec)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{next: h.next.WithAttrs(attrs), rec: h.rec}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{next: h.next.WithGroup(name), rec: h.rec}
}
