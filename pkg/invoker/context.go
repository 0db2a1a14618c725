// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/internal/logging"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/options"
	"github.com/kraklabs/mvnboot/pkg/request"
	"github.com/kraklabs/mvnboot/pkg/settings"
)

// CloserFunc adapts a function to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// Context is the mutable state of one invocation. It is never shared
// between invocations.
type Context struct {
	Request *request.Request
	Values  options.Values
	Proto   request.ProtoLogger

	// Set by validate.
	Threads   int
	FailLevel *slog.Level

	// Set by configureLogging and activateLogging.
	Color         bool
	ColorMode     options.ColorMode
	LogLevel      slog.Level
	LogOutput     io.Writer
	Terminal      *Future[*Terminal]
	LoggerFactory logging.Factory
	Logger        *slog.Logger

	// Set by container and lookup.
	Capsule lookup.Capsule
	Lookup  lookup.Lookup

	// Set by settings.
	SettingsBuilder   settings.Builder
	EffectiveSettings *settings.Settings
	Interactive       bool
	Offline           bool
	LocalRepository   string

	Registry *prometheus.Registry
	recorder *logging.Recorder

	closeables []io.Closer
}

func newContext(req *request.Request) *Context {
	proto := req.ParserRequest().Logger
	if proto == nil {
		proto = logging.NewProto(req.Stderr())
	}
	return &Context{
		Request:  req,
		Values:   req.Options().Values(),
		Proto:    proto,
		Registry: prometheus.NewRegistry(),
	}
}

// Closeable registers c to be closed when the context closes. Closeables
// close in reverse registration order.
func (c *Context) Closeable(cl io.Closer) {
	c.closeables = append(c.closeables, cl)
}

// Close closes every registered closeable, newest first. Every closeable is
// attempted; failures are collected into one *errors.CloseError.
func (c *Context) Close() error {
	var errs []error
	for i := len(c.closeables) - 1; i >= 0; i-- {
		if err := c.closeables[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closeables = nil
	if len(errs) > 0 {
		return &errors.CloseError{Errs: errs}
	}
	return nil
}
