// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mvnboot/internal/errors"
)

func TestContextClose_ReverseOrderCollectsFailures(t *testing.T) {
	ctx := &Context{}
	var order []int
	boom := errors.New("boom")

	ctx.Closeable(CloserFunc(func() error { order = append(order, 1); return nil }))
	ctx.Closeable(CloserFunc(func() error { order = append(order, 2); return boom }))
	ctx.Closeable(CloserFunc(func() error { order = append(order, 3); return nil }))

	err := ctx.Close()
	require.Error(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)

	var ce *errors.CloseError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []error{boom}, ce.Errs)
	assert.True(t, errors.Is(err, boom))

	assert.NoError(t, ctx.Close(), "closeables run once")
}

func TestContextClose_Empty(t *testing.T) {
	assert.NoError(t, (&Context{}).Close())
}

type selfError struct{}

func (e *selfError) Error() string { return "self" }
func (e *selfError) Unwrap() error { return e }

func TestCauses(t *testing.T) {
	root := errors.New("root")
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("middle: %w", root))
	assert.Len(t, causes(wrapped), 3)

	self := &selfError{}
	assert.Equal(t, []error{self}, causes(fmt.Errorf("x: %w", self))[1:])
}

func TestInvokerError(t *testing.T) {
	stageErr := errors.New("stage")
	closeErr := errors.New("close")
	err := &InvokerError{Code: 1, Stage: "settings", Err: stageErr, Suppressed: []error{closeErr}}

	assert.True(t, errors.Is(err, stageErr))
	assert.True(t, errors.Is(err, closeErr))
	assert.Contains(t, err.Error(), "settings failed")

	onlyClose := &InvokerError{Code: 1, Suppressed: []error{closeErr}}
	assert.Contains(t, onlyClose.Error(), "close")
}

func TestAsyncTerminal(t *testing.T) {
	ran := false
	f := Async(func() (*Terminal, error) { return probeTerminal(&bytes.Buffer{}) }, func(*Terminal) { ran = true })

	term, err := f.Get()
	require.NoError(t, err)
	assert.True(t, ran, "callback finishes before Get returns")
	assert.False(t, term.Interactive)
	assert.Equal(t, defaultTerminalWidth, term.Width)
}

func TestAsync_ErrorSkipsCallback(t *testing.T) {
	boom := errors.New("no terminal")
	ran := false
	f := Async(func() (*Terminal, error) { return nil, boom }, func(*Terminal) { ran = true })

	for i := 0; i < 2; i++ {
		term, err := f.Get()
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, term)
	}
	assert.False(t, ran)
}
