package controller

import (
	"slices"

	"github.com/go-drift/hostkit/pkg/errors"
	"github.com/go-drift/hostkit/pkg/loop"
)

// Collection is the reusable host implementation. Embed it in any type to
// give that type host capability:
//
//	type Panel struct {
//	    controller.Collection
//	    title string
//	}
//
// Collection is NOT thread-safe. It must only be used from the loop goroutine.
type Collection struct {
	controllers []Controller
	connected   bool
	// pending holds the deferred connect scheduled for each controller. Only
	// the latest one may run; removal and host transitions drop them.
	pending map[Controller]uint64
	seq     uint64

	scheduler       loop.Scheduler
	schedulerSource func() loop.Scheduler
}

// SetScheduler pins the scheduler used for deferred connects.
func (c *Collection) SetScheduler(s loop.Scheduler) {
	c.scheduler = s
}

// SetSchedulerSource makes the collection ask fn for its scheduler whenever
// it has work to defer. Used by hosts whose loop is only known later.
func (c *Collection) SetSchedulerSource(fn func() loop.Scheduler) {
	c.schedulerSource = fn
}

// Scheduler returns the scheduler for deferred work, falling back to the
// default loop.
func (c *Collection) Scheduler() loop.Scheduler {
	if c.scheduler != nil {
		return c.scheduler
	}
	if c.schedulerSource != nil {
		if s := c.schedulerSource(); s != nil {
			return s
		}
	}
	return loop.Default()
}

// AddController appends ctrl. A controller with an equal defined alias is
// removed and destroyed first. Adding a tracked controller again is a no-op.
//
// If the host is already connected, ctrl.HostConnected runs on the next tick
// of the loop, not during this call.
func (c *Collection) AddController(ctrl Controller) {
	if ctrl == nil {
		errors.Report(errors.Misuse("controller.Collection.AddController", errors.ErrNilController))
		return
	}
	if c.HasController(ctrl) {
		return
	}
	if alias := ctrl.ControllerAlias(); alias.IsDefined() {
		if existing := c.RemoveControllerByAlias(alias); existing != nil {
			existing.Destroy()
		}
	}
	c.controllers = append(c.controllers, ctrl)

	if c.connected {
		c.seq++
		ticket := c.seq
		if c.pending == nil {
			c.pending = make(map[Controller]uint64)
		}
		c.pending[ctrl] = ticket
		c.Scheduler().Schedule(func() {
			if c.pending[ctrl] != ticket {
				return
			}
			delete(c.pending, ctrl)
			if c.connected && c.HasController(ctrl) && !isConnected(ctrl) {
				ctrl.HostConnected()
			}
		})
	}
}

// isConnected reports whether ctrl says it is already connected. Controllers
// that do not track it are assumed disconnected.
func isConnected(ctrl Controller) bool {
	h, ok := ctrl.(interface{ IsConnected() bool })
	return ok && h.IsConnected()
}

// RemoveController removes ctrl by identity. It does not destroy it.
func (c *Collection) RemoveController(ctrl Controller) {
	if ctrl == nil {
		return
	}
	if i := c.indexOf(ctrl); i >= 0 {
		c.controllers = slices.Delete(c.controllers, i, i+1)
	}
	delete(c.pending, ctrl)
}

// RemoveControllerByAlias removes and returns the controller with the given
// alias, or nil if there is none.
func (c *Collection) RemoveControllerByAlias(alias Alias) Controller {
	if !alias.IsDefined() {
		return nil
	}
	for i, ctrl := range c.controllers {
		if ctrl.ControllerAlias().Equal(alias) {
			c.controllers = slices.Delete(c.controllers, i, i+1)
			delete(c.pending, ctrl)
			return ctrl
		}
	}
	return nil
}

// HasController reports whether ctrl is currently tracked.
func (c *Collection) HasController(ctrl Controller) bool {
	return ctrl != nil && c.indexOf(ctrl) >= 0
}

// Controllers returns a copy of the tracked controllers in insertion order.
func (c *Collection) Controllers() []Controller {
	return slices.Clone(c.controllers)
}

// IsConnected reports whether the host is attached to the live tree.
func (c *Collection) IsConnected() bool {
	return c.connected
}

// HostConnected marks the host connected and forwards to every controller in
// insertion order.
func (c *Collection) HostConnected() {
	c.connected = true
	clear(c.pending)
	for _, ctrl := range slices.Clone(c.controllers) {
		// A hook earlier in the pass may have removed this one.
		if c.HasController(ctrl) {
			ctrl.HostConnected()
		}
	}
}

// HostDisconnected marks the host disconnected, then forwards to every
// controller in insertion order.
func (c *Collection) HostDisconnected() {
	c.connected = false
	clear(c.pending)
	for _, ctrl := range slices.Clone(c.controllers) {
		if c.HasController(ctrl) {
			ctrl.HostDisconnected()
		}
	}
}

// Destroy destroys every tracked controller in order and clears the
// collection. Calling it again is a no-op.
func (c *Collection) Destroy() {
	for _, ctrl := range slices.Clone(c.controllers) {
		ctrl.Destroy()
	}
	c.controllers = nil
	c.pending = nil
}

func (c *Collection) indexOf(ctrl Controller) int {
	for i, existing := range c.controllers {
		if existing == ctrl {
			return i
		}
	}
	return -1
}
