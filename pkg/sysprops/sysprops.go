// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sysprops is the process-wide system property store.
//
// The store is seeded from the running process on first use. It is the only
// process-global mutable state touched by an invocation; callers that mutate
// it wrap the mutation in Scoped (or Snapshot/Restore) so that the previous
// contents come back once the invocation ends.
package sysprops

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Well known keys.
const (
	UserDir       = "user.dir"
	UserHome      = "user.home"
	OSName        = "os.name"
	OSArch        = "os.arch"
	FileSeparator = "file.separator"
	PathSeparator = "path.separator"
	LineSeparator = "line.separator"
)

var (
	mu     sync.Mutex
	props  map[string]string
	seeded bool
)

func seedLocked() {
	if seeded {
		return
	}
	seeded = true
	props = map[string]string{
		OSName:        runtime.GOOS,
		OSArch:        runtime.GOARCH,
		FileSeparator: string(filepath.Separator),
		PathSeparator: string(os.PathListSeparator),
		LineSeparator: "\n",
	}
	if wd, err := os.Getwd(); err == nil {
		props[UserDir] = wd
	}
	if home, err := os.UserHomeDir(); err == nil {
		props[UserHome] = home
	}
}

// Get returns the property value and whether it is set.
func Get(key string) (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	seedLocked()
	v, ok := props[key]
	return v, ok
}

// Lookup returns the property value, or "" when unset.
func Lookup(key string) string {
	v, _ := Get(key)
	return v
}

// Set sets a property.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	seedLocked()
	props[key] = value
}

// Unset removes a property.
func Unset(key string) {
	mu.Lock()
	defer mu.Unlock()
	seedLocked()
	delete(props, key)
}

// All returns a copy of every property.
func All() map[string]string {
	mu.Lock()
	defer mu.Unlock()
	seedLocked()
	return maps.Clone(props)
}

// Snapshot captures the current properties for a later Restore.
type Snapshot struct {
	props map[string]string
}

// Take captures the current properties.
func Take() Snapshot {
	return Snapshot{props: All()}
}

// Restore replaces every property with the captured ones.
func (s Snapshot) Restore() {
	mu.Lock()
	defer mu.Unlock()
	seeded = true
	props = maps.Clone(s.props)
}

// Scoped runs fn and restores the properties seen on entry once fn returns,
// even when fn panics.
func Scoped(fn func()) {
	snap := Take()
	defer snap.Restore()
	fn()
}
