package contexts

import (
	"slices"

	"github.com/go-drift/hostkit/pkg/controller"
)

// Provider offers a value under a token to consumers at or below its host.
// A host holds at most one provider per context name; providing again on the
// same host replaces the earlier provider.
//
// A provider only serves requests while it is connected.
type Provider[T any] struct {
	controller.Base

	token       Token[T]
	value       T
	subscribers []*subscriber[T]
}

type subscriber[T any] struct {
	sub    *Subscription
	notify func(T)
	lost   func()
}

// Provide creates a provider on host for token with an initial value.
func Provide[T any](host controller.Host, token Token[T], value T) *Provider[T] {
	p := &Provider[T]{token: token, value: value}
	p.Init(p, host, token.providerAlias())
	return p
}

// Token returns the token the provider serves.
func (p *Provider[T]) Token() Token[T] {
	return p.token
}

// Value returns the current value.
func (p *Provider[T]) Value() T {
	return p.value
}

// SetValue stores v and passes it to every live subscriber in subscription
// order.
func (p *Provider[T]) SetValue(v T) {
	p.value = v
	for _, s := range slices.Clone(p.subscribers) {
		if !s.sub.Closed() {
			s.notify(v)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (p *Provider[T]) Subscribers() int {
	return len(p.subscribers)
}

func (p *Provider[T]) serving() bool {
	return p.IsConnected() && !p.IsDestroyed()
}

// HostConnected starts serving and wakes consumers waiting on this context.
func (p *Provider[T]) HostConnected() {
	if p.IsDestroyed() {
		return
	}
	p.Base.HostConnected()
	if r := registryFor(p); r != nil {
		r.Announce(p.token.name)
	}
}

// HostDisconnected stops serving and closes every subscription.
func (p *Provider[T]) HostDisconnected() {
	p.Base.HostDisconnected()
	p.closeAll()
}

// Destroy closes every subscription and removes the provider from its host.
func (p *Provider[T]) Destroy() {
	p.Base.Destroy()
	p.closeAll()
}

func (p *Provider[T]) subscribe(notify func(T), lost func()) *Subscription {
	s := &subscriber[T]{notify: notify, lost: lost}
	s.sub = newSubscription(func() { p.unsubscribe(s) })
	p.subscribers = append(p.subscribers, s)
	return s.sub
}

func (p *Provider[T]) unsubscribe(s *subscriber[T]) {
	if i := slices.Index(p.subscribers, s); i >= 0 {
		p.subscribers = slices.Delete(p.subscribers, i, i+1)
	}
}

func (p *Provider[T]) closeAll() {
	subs := p.subscribers
	p.subscribers = nil
	for _, s := range subs {
		if s.sub.close() && s.lost != nil {
			s.lost()
		}
	}
}

// findProvider walks from start up the host chain and returns the first
// serving provider for token.
func findProvider[T any](start controller.Host, token Token[T]) *Provider[T] {
	for h := start; h != nil; h = controller.ParentOf(h) {
		for _, ctrl := range h.Controllers() {
			if p, ok := ctrl.(*Provider[T]); ok && p.token.name == token.name && p.serving() {
				return p
			}
		}
	}
	return nil
}

// Request looks up the current value for token from host without
// subscribing.
func Request[T any](host controller.Host, token Token[T]) (T, bool) {
	if p := findProvider(host, token); p != nil {
		return p.value, true
	}
	var zero T
	return zero, false
}
