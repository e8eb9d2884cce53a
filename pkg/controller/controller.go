package controller

import "github.com/go-drift/hostkit/pkg/loop"

// Controller is a unit of behavior attached to exactly one [Host].
//
// Implementations must be pointer types: hosts track controllers by identity.
type Controller interface {
	// ControllerAlias returns the alias given at construction.
	ControllerAlias() Alias
	// HostConnected is called when the host enters the live tree.
	HostConnected()
	// HostDisconnected is called when the host leaves the live tree.
	HostDisconnected()
	// Destroy tears the controller down. It must be idempotent.
	Destroy()
}

// Host owns an ordered collection of controllers and forwards lifecycle
// transitions to them. Embed [Collection] to implement it.
type Host interface {
	AddController(ctrl Controller)
	RemoveController(ctrl Controller)
	RemoveControllerByAlias(alias Alias) Controller
	HasController(ctrl Controller) bool
	Controllers() []Controller
	IsConnected() bool
	HostConnected()
	HostDisconnected()
	Destroy()
}

// Parented is implemented by hosts that sit below another host. Context
// requests walk this chain upward.
type Parented interface {
	ParentHost() Host
}

// SchedulerSource is implemented by hosts that know which loop their
// deferred work belongs to.
type SchedulerSource interface {
	Scheduler() loop.Scheduler
}

// ParentOf returns the host above h, or nil at the top of the tree.
func ParentOf(h Host) Host {
	if p, ok := h.(Parented); ok {
		return p.ParentHost()
	}
	return nil
}
