// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package lookup

// Capsule owns a component container for the lifetime of one invocation.
type Capsule interface {
	Lookup() Lookup
	Close() error
}

type containerCapsule struct {
	c *Container
}

// NewContainerCapsule wraps c; closing the capsule closes the container.
func NewContainerCapsule(c *Container) Capsule {
	return &containerCapsule{c: c}
}

func (cc *containerCapsule) Lookup() Lookup { return cc.c }

func (cc *containerCapsule) Close() error { return cc.c.Close() }

type protoCapsule struct {
	p *ProtoLookup
}

// NewProtoCapsule wraps a fixed lookup; closing it is a no-op.
func NewProtoCapsule(p *ProtoLookup) Capsule {
	return &protoCapsule{p: p}
}

func (pc *protoCapsule) Lookup() Lookup { return pc.p }

func (pc *protoCapsule) Close() error { return nil }
