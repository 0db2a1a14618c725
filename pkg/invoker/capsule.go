// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"log/slog"

	"github.com/kraklabs/mvnboot/internal/errors"
	"github.com/kraklabs/mvnboot/pkg/lookup"
	"github.com/kraklabs/mvnboot/pkg/realm"
	"github.com/kraklabs/mvnboot/pkg/settings"
)

// RealmName names the core extension realm.
const RealmName = "maven.ext"

// CapsuleFactory builds the component container of an invocation.
type CapsuleFactory interface {
	NewCapsule(ctx *Context) (lookup.Capsule, error)
}

// CapsuleFactoryFunc adapts a function to CapsuleFactory.
type CapsuleFactoryFunc func(ctx *Context) (lookup.Capsule, error)

func (f CapsuleFactoryFunc) NewCapsule(ctx *Context) (lookup.Capsule, error) { return f(ctx) }

// ContainerCapsuleFactory builds a lookup.Container seeded with the request,
// the logging components, the core extension realm and the default settings
// builder. Lookups it cannot serve fall through to the request's proto
// lookup.
type ContainerCapsuleFactory struct{}

// NewCapsule implements CapsuleFactory.
func (ContainerCapsuleFactory) NewCapsule(ctx *Context) (lookup.Capsule, error) {
	req := ctx.Request
	c := lookup.NewContainer(req.ParserRequest().Lookup)

	err := errors.Join(
		lookup.Instance(c, req),
		lookup.Instance(c, ctx.Logger),
		lookup.Instance(c, ctx.LoggerFactory),
		lookup.Provide(c, func(lookup.Lookup) (*realm.Realm, error) {
			env := req.ParserRequest().Env()
			cp := realm.ClassPathFrom(req.UserProperties(), req.SystemProperties(), env)
			return realm.New(RealmName, req.CoreExtensions(), cp), nil
		}),
		lookup.Provide(c, func(l lookup.Lookup) (settings.Builder, error) {
			log, err := lookup.Get[*slog.Logger](l)
			if err != nil {
				return nil, err
			}
			log.Debug("container.provide", "component", "settings.Builder")
			return settings.XMLBuilder{}, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return lookup.NewContainerCapsule(c), nil
}

var _ CapsuleFactory = ContainerCapsuleFactory{}
