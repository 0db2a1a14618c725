// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/kraklabs/mvnboot/internal/ui"
)

const defaultTerminalWidth = 80

// Terminal describes the output the build writes to.
type Terminal struct {
	Out         io.Writer
	Interactive bool
	Width       int
}

// probeTerminal inspects w. Probing may be slow on some platforms, so it
// runs off the main goroutine.
func probeTerminal(w io.Writer) (*Terminal, error) {
	t := &Terminal{Out: w, Width: defaultTerminalWidth}
	f, ok := w.(*os.File)
	if !ok || !ui.IsTerminal(f) {
		return t, nil
	}
	t.Interactive = true
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		t.Width = width
	}
	return t, nil
}

// Future is the result of an asynchronous computation.
type Future[T any] struct {
	g   errgroup.Group
	val T
}

// Async runs fn in an errgroup goroutine. then, when non-nil, runs in that
// goroutine after a successful fn and before Get returns.
func Async[T any](fn func() (T, error), then func(T)) *Future[T] {
	f := &Future[T]{}
	f.g.Go(func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		f.val = v
		if then != nil {
			then(v)
		}
		return nil
	})
	return f
}

// Get blocks until the computation and its callback finished. It may be
// called any number of times.
func (f *Future[T]) Get() (T, error) {
	err := f.g.Wait()
	return f.val, err
}
