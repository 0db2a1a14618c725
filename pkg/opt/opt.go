// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package opt provides an optional value: either present (possibly holding
// the zero value) or absent.
package opt

// Value holds an optional T. The zero Value is absent.
type Value[T any] struct {
	v  T
	ok bool
}

// Of returns a present value.
func Of[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// IsPresent reports whether a value is held.
func (o Value[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the value when present, otherwise def.
func (o Value[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Or returns o when present, otherwise other.
func (o Value[T]) Or(other Value[T]) Value[T] {
	if o.ok {
		return o
	}
	return other
}
