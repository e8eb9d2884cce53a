// Package controller provides controllers, controller hosts, and their
// lifecycle.
//
// A [Host] owns an ordered collection of [Controller] values and forwards
// connect, disconnect and destroy transitions to them. Any type becomes a host
// by embedding [Collection]; controllers embed [Base], which is itself a host,
// so controllers nest.
//
// # Lifecycle
//
// A controller registers with its host during construction. It is connected
// when the host connects, or one loop tick after registration if the host is
// already connected. Destroy cascades depth-first: by the time a controller's
// Destroy returns, every sub-controller has been destroyed and the controller
// has left its host.
//
// # Aliases
//
// An [Alias] is absent, a string ([Named]) or an opaque token ([NewToken]).
// A host keeps at most one controller per defined alias:
//
//	first := controller.New(host, controller.Named("validation"), controller.Hooks{})
//	second := controller.New(host, controller.Named("validation"), controller.Hooks{})
//	host.HasController(first)  // false, first was destroyed
//	host.HasController(second) // true
//
// # Threading
//
// Hosts and controllers are NOT thread-safe. Use them from the goroutine that
// drives the [loop.Loop]; schedule work from other goroutines with
// [loop.Loop.Schedule].
package controller
