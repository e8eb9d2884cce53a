package controller

import "github.com/go-drift/hostkit/pkg/errors"

type lifeState uint8

const (
	stateAlive lifeState = iota
	stateDestroying
	stateDestroyed
)

// Base provides the common controller behavior. Embed it in your controller
// and call Init from the constructor:
//
//	type counter struct {
//	    controller.Base
//	    hits int
//	}
//
//	func newCounter(host controller.Host) *counter {
//	    c := &counter{}
//	    c.Init(c, host, controller.Named("counter"))
//	    return c
//	}
//
// Override HostConnected, HostDisconnected or Destroy as needed, but always
// call the Base method from the override. Base embeds [Collection], so every
// controller is also a host for sub-controllers.
type Base struct {
	Collection

	self  Controller
	host  Host
	alias Alias
	state lifeState
}

// Init binds the controller to host and registers self with it. self must be
// the value that embeds this Base. Init may only be called once; further
// calls are reported as misuse and ignored.
func (b *Base) Init(self Controller, host Host, alias Alias) {
	const op = "controller.Base.Init"
	if b.self != nil {
		err := errors.Misuse(op, errors.ErrAlreadyInitialized)
		err.Alias = alias.String()
		errors.Report(err)
		return
	}
	if self == nil {
		errors.Report(errors.Misuse(op, errors.ErrNilController))
		return
	}
	b.self = self
	b.alias = alias
	if host == nil {
		err := errors.Misuse(op, errors.ErrNilHost)
		err.Alias = alias.String()
		errors.Report(err)
		return
	}
	b.host = host
	if src, ok := host.(SchedulerSource); ok {
		b.SetSchedulerSource(src.Scheduler)
	}
	host.AddController(self)
}

// ControllerAlias returns the alias given to Init.
func (b *Base) ControllerAlias() Alias {
	return b.alias
}

// Host returns the owning host, or nil before Init.
func (b *Base) Host() Host {
	return b.host
}

// ParentHost returns the owning host, for context lookups.
func (b *Base) ParentHost() Host {
	return b.host
}

// IsDestroyed reports whether Destroy has started.
func (b *Base) IsDestroyed() bool {
	return b.state != stateAlive
}

// HostConnected marks the controller connected and forwards to its
// sub-controllers. No-op once destroyed.
func (b *Base) HostConnected() {
	if b.state != stateAlive {
		return
	}
	b.Collection.HostConnected()
}

// HostDisconnected marks the controller disconnected and forwards to its
// sub-controllers.
func (b *Base) HostDisconnected() {
	if b.state == stateDestroyed {
		return
	}
	b.Collection.HostDisconnected()
}

// Destroy disconnects the controller if needed, destroys its sub-controllers,
// and removes it from its host. It is idempotent and safe to call from the
// controller's own hooks.
func (b *Base) Destroy() {
	if b.state != stateAlive {
		return
	}
	b.state = stateDestroying
	if b.IsConnected() {
		if b.self != nil {
			b.self.HostDisconnected()
		} else {
			b.Collection.HostDisconnected()
		}
	}
	b.Collection.Destroy()
	if b.host != nil && b.self != nil {
		b.host.RemoveController(b.self)
	}
	b.state = stateDestroyed
}
