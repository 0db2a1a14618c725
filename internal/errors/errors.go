// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors provides the user facing error taxonomy shared by the
// parser and the invoker.
//
// Every error that is expected to reach a user is a *UserError carrying a
// short message, an explanation of the cause and a suggested fix. Callers
// construct them with the New*Error helpers and inspect them with Is/As.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a UserError.
type Kind int

const (
	// KindInternal is an unexpected failure (a bug or an environment problem).
	KindInternal Kind = iota
	// KindConfig is a missing mandatory input or an invalid configuration.
	KindConfig
	// KindInput is an invalid option value supplied by the user.
	KindInput
	// KindParser is a malformed descriptor or command line argument.
	KindParser
	// KindNotFound is an explicitly named file that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindInput:
		return "illegal argument"
	case KindParser:
		return "parse error"
	case KindNotFound:
		return "file not found"
	default:
		return "internal error"
	}
}

// UserError is an error meant to be shown to the user.
type UserError struct {
	Kind    Kind
	Message string // what went wrong
	Cause   string // why it went wrong
	Fix     string // what the user can do about it
	Err     error  // underlying error, may be nil
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// Is reports whether target is a *UserError of the same kind.
func (e *UserError) Is(target error) bool {
	t, ok := target.(*UserError)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Sentinels usable with Is to match any UserError of a kind.
var (
	ErrConfig   = &UserError{Kind: KindConfig}
	ErrInput    = &UserError{Kind: KindInput}
	ErrParser   = &UserError{Kind: KindParser}
	ErrNotFound = &UserError{Kind: KindNotFound}
	ErrInternal = &UserError{Kind: KindInternal}
)

// NewConfigError reports a missing mandatory input or an invalid configuration.
func NewConfigError(message, cause, fix string, err error) *UserError {
	return &UserError{Kind: KindConfig, Message: message, Cause: cause, Fix: fix, Err: err}
}

// NewInputError reports an invalid option value.
func NewInputError(message, cause, fix string, err error) *UserError {
	return &UserError{Kind: KindInput, Message: message, Cause: cause, Fix: fix, Err: err}
}

// NewParserError reports a malformed descriptor or argument.
func NewParserError(message, cause, fix string, err error) *UserError {
	return &UserError{Kind: KindParser, Message: message, Cause: cause, Fix: fix, Err: err}
}

// NewFileNotFoundError reports an explicitly named file that is missing.
func NewFileNotFoundError(path, cause, fix string) *UserError {
	return &UserError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("The specified file '%s' does not exist", path),
		Cause:   cause,
		Fix:     fix,
	}
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message, cause, fix string, err error) *UserError {
	return &UserError{Kind: KindInternal, Message: message, Cause: cause, Fix: fix, Err: err}
}

// CloseError aggregates failures raised while releasing resources.
// None of the collected errors is dropped; they are reachable through
// Unwrap and therefore through Is/As.
type CloseError struct {
	Errs []error
}

func (e *CloseError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("failed to close %d resource(s): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *CloseError) Unwrap() []error { return e.Errs }

// Format renders err for terminal output. UserErrors include the cause and
// the fix when present.
func Format(err error) string {
	var ue *UserError
	if !As(err, &ue) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(ue.Error())
	if ue.Cause != "" {
		b.WriteString("\n  Cause: ")
		b.WriteString(ue.Cause)
	}
	if ue.Fix != "" {
		b.WriteString("\n  Fix:   ")
		b.WriteString(ue.Fix)
	}
	return b.String()
}

// Is is errors.Is.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Unwrap is errors.Unwrap.
func Unwrap(err error) error { return stderrors.Unwrap(err) }

// New is errors.New.
func New(text string) error { return stderrors.New(text) }

// Join is errors.Join.
func Join(errs ...error) error { return stderrors.Join(errs...) }
