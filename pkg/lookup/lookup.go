// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lookup provides component lookup before and after the component
// container exists.
//
// ProtoLookup is a fixed map used during bootstrap. Container is the full
// component container: providers bound by type as lazy ioc singletons and
// disposed in reverse creation order. Capsule wraps either one
// behind a lifecycle the invoker can close.
package lookup

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/golobby/container/v3"

	"github.com/kraklabs/mvnboot/internal/errors"
)

// ErrNotFound is returned for lookups of unmapped types.
var ErrNotFound = errors.New("component not found")

// Lookup resolves components by type.
type Lookup interface {
	Lookup(t reflect.Type) (any, error)
}

// TypeOf returns the reflect.Type of T, interfaces included.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Get looks up T.
func Get[T any](l Lookup) (T, error) {
	var zero T
	v, err := l.Lookup(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	c, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("component %s has unexpected type %T", TypeOf[T](), v)
	}
	return c, nil
}

// GetOr looks up T and falls back to def when T itself is not mapped. Other
// errors, including missing dependencies of T, are returned.
func GetOr[T any](l Lookup, def T) (T, error) {
	v, err := Get[T](l)
	var nf *NotFoundError
	if errors.As(err, &nf) && nf.Type == TypeOf[T]() {
		return def, nil
	}
	return v, err
}

// NotFoundError reports a lookup of an unmapped type. It matches
// ErrNotFound.
type NotFoundError struct {
	Type reflect.Type
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%v: %s", ErrNotFound, e.Type) }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(t reflect.Type) error {
	return &NotFoundError{Type: t}
}

// ProtoBuilder collects components for a ProtoLookup.
type ProtoBuilder struct {
	components map[reflect.Type]any
	dups       []reflect.Type
}

// NewProto starts a ProtoLookup.
func NewProto() *ProtoBuilder {
	return &ProtoBuilder{components: map[reflect.Type]any{}}
}

// Add registers c as T.
func Add[T any](b *ProtoBuilder, c T) *ProtoBuilder {
	t := TypeOf[T]()
	if _, ok := b.components[t]; ok {
		b.dups = append(b.dups, t)
		return b
	}
	b.components[t] = c
	return b
}

// Build returns the lookup. Registering a type twice is an error.
func (b *ProtoBuilder) Build() (*ProtoLookup, error) {
	if len(b.dups) > 0 {
		return nil, errors.NewInternalError(
			fmt.Sprintf("Duplicate component registration for %s", b.dups[0]),
			"A type may be registered only once in a proto lookup",
			"",
			nil,
		)
	}
	return &ProtoLookup{components: b.components}, nil
}

// ProtoLookup is an immutable type to component map.
type ProtoLookup struct {
	components map[reflect.Type]any
}

// Lookup implements Lookup. Unmapped types fail with ErrNotFound.
func (p *ProtoLookup) Lookup(t reflect.Type) (any, error) {
	if c, ok := p.components[t]; ok {
		return c, nil
	}
	return nil, notFound(t)
}

// Container binds providers as lazy singletons in an ioc container and
// resolves them on first lookup. Lookups not served by a provider fall
// through to the parent, if any. Created components are disposed in reverse
// creation order.
type Container struct {
	mu        sync.Mutex
	parent    Lookup
	ioc       container.Container
	bound     map[reflect.Type]bool
	failed    map[reflect.Type]error
	resolving map[reflect.Type]bool
	order     []any
	closed    bool
}

// NewContainer returns an empty container. parent may be nil.
func NewContainer(parent Lookup) *Container {
	return &Container{
		parent:    parent,
		ioc:       container.New(),
		bound:     map[reflect.Type]bool{},
		failed:    map[reflect.Type]error{},
		resolving: map[reflect.Type]bool{},
	}
}

// Provide binds p as the singleton provider of T, replacing any earlier
// one. p runs on the first lookup of T; a provider that fails is not
// retried.
func Provide[T any](c *Container, p func(l Lookup) (T, error)) error {
	t := TypeOf[T]()
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.ioc.SingletonLazy(func() (T, error) {
		v, err := p(scoped{c})
		if err != nil {
			c.failed[t] = fmt.Errorf("create %s: %w", t, err)
			return v, err
		}
		if any(v) == nil {
			c.failed[t] = fmt.Errorf("create %s: provider returned nil", t)
			return v, c.failed[t]
		}
		c.order = append(c.order, v)
		return v, nil
	})
	if err != nil {
		return fmt.Errorf("bind %s: %w", t, err)
	}
	c.bound[t] = true
	delete(c.failed, t)
	return nil
}

// Instance binds an already built component as T.
func Instance[T any](c *Container, v T) error {
	return Provide(c, func(Lookup) (T, error) { return v, nil })
}

// Lookup implements Lookup. Providers resolve their own dependencies on the
// calling goroutine while the container is locked.
func (c *Container) Lookup(t reflect.Type) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(t)
}

func (c *Container) lookup(t reflect.Type) (any, error) {
	if c.closed {
		return nil, fmt.Errorf("container closed while looking up %s", t)
	}
	if !c.bound[t] {
		if c.parent != nil {
			return c.parent.Lookup(t)
		}
		return nil, notFound(t)
	}
	if err := c.failed[t]; err != nil {
		return nil, err
	}
	if c.resolving[t] {
		return nil, fmt.Errorf("dependency cycle while resolving %s", t)
	}
	c.resolving[t] = true
	defer delete(c.resolving, t)

	ptr := reflect.New(t)
	if err := c.ioc.Resolve(ptr.Interface()); err != nil {
		if cause := c.failed[t]; cause != nil {
			return nil, cause
		}
		return nil, fmt.Errorf("create %s: %w", t, err)
	}
	return ptr.Elem().Interface(), nil
}

// scoped serves the lookups of providers, which run under the container
// lock.
type scoped struct{ c *Container }

func (s scoped) Lookup(t reflect.Type) (any, error) { return s.c.lookup(t) }

// Close disposes every created component implementing io.Closer, newest
// first. All close errors are collected.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	order := c.order
	c.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if cl, ok := order[i].(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return &errors.CloseError{Errs: errs}
	}
	return nil
}
