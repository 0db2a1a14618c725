// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"fmt"
	"reflect"

	"github.com/kraklabs/mvnboot/internal/errors"
)

// ExitError stops the pipeline without being treated as a failure.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// InvokerError is the single failure an invocation returns.
type InvokerError struct {
	// Code is the exit code to report.
	Code int
	// Stage is the stage that failed, empty if only closing failed.
	Stage string
	// Err is the stage failure, nil if only closing failed.
	Err error
	// Suppressed holds failures collected while closing the context.
	Suppressed []error
}

func (e *InvokerError) Error() string {
	switch {
	case e.Err != nil && len(e.Suppressed) > 0:
		return fmt.Sprintf("%s failed: %v (and %d close failure(s))", e.Stage, e.Err, len(e.Suppressed))
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	default:
		return fmt.Sprintf("closing invocation: %v", errors.Join(e.Suppressed...))
	}
}

func (e *InvokerError) Unwrap() []error {
	out := make([]error, 0, 1+len(e.Suppressed))
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return append(out, e.Suppressed...)
}

// causes walks the single-error Unwrap chain of err. The walk stops when an
// error unwraps to itself.
func causes(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		next := errors.Unwrap(err)
		if next == nil || same(next, err) {
			break
		}
		err = next
	}
	return chain
}

func same(a, b error) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
