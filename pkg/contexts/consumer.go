package contexts

import "github.com/go-drift/hostkit/pkg/controller"

// ConsumeOption configures a Consumer.
type ConsumeOption func(*consumeConfig)

type consumeConfig struct {
	alias         controller.Alias
	onUnavailable func()
}

// WithUnavailable registers fn to run when the resolved provider goes away.
func WithUnavailable(fn func()) ConsumeOption {
	return func(c *consumeConfig) {
		c.onUnavailable = fn
	}
}

// WithAlias gives the consumer a controller alias, so a second consumer with
// the same alias on the same host replaces it.
func WithAlias(alias controller.Alias) ConsumeOption {
	return func(c *consumeConfig) {
		c.alias = alias
	}
}

// Consumer subscribes to the nearest provider of a token while connected.
type Consumer[T any] struct {
	controller.Base

	token         Token[T]
	callback      func(T)
	onUnavailable func()

	sub        *Subscription
	provider   *Provider[T]
	registered *Registry

	value    T
	resolved bool
}

// Consume creates a consumer on host. callback runs with the provided value
// when the consumer resolves and on every later change.
func Consume[T any](host controller.Host, token Token[T], callback func(T), opts ...ConsumeOption) *Consumer[T] {
	var cfg consumeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Consumer[T]{
		token:         token,
		callback:      callback,
		onUnavailable: cfg.onUnavailable,
	}
	c.Init(c, host, cfg.alias)
	return c
}

// Token returns the token the consumer requests.
func (c *Consumer[T]) Token() Token[T] {
	return c.token
}

// Value returns the last delivered value and whether the consumer is
// currently resolved.
func (c *Consumer[T]) Value() (T, bool) {
	return c.value, c.resolved
}

// Provider returns the provider the consumer is subscribed to, or nil.
func (c *Consumer[T]) Provider() *Provider[T] {
	return c.provider
}

// HostConnected requests the context.
func (c *Consumer[T]) HostConnected() {
	if c.IsDestroyed() {
		return
	}
	c.Base.HostConnected()
	c.request()
}

// HostDisconnected releases the subscription.
func (c *Consumer[T]) HostDisconnected() {
	c.Base.HostDisconnected()
	c.release()
}

// Destroy releases the subscription. No callback runs afterwards.
func (c *Consumer[T]) Destroy() {
	c.Base.Destroy()
	c.release()
	c.callback = nil
	c.onUnavailable = nil
}

func (c *Consumer[T]) retry() bool {
	return c.request()
}

func (c *Consumer[T]) waiting() bool {
	return c.sub == nil
}

// request subscribes to the nearest serving provider and reports whether that
// changed the provider. It keeps the consumer registered with the tree's
// registry while connected, so a provider connecting later, or nearer, is
// picked up on announce.
func (c *Consumer[T]) request() bool {
	if c.IsDestroyed() || !c.IsConnected() {
		return false
	}
	c.register()
	p := findProvider(c.Host(), c.token)
	if p == nil || p == c.provider {
		return false
	}
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.provider = p
	c.sub = p.subscribe(c.deliver, c.lost)
	c.deliver(p.Value())
	return true
}

func (c *Consumer[T]) deliver(v T) {
	if c.IsDestroyed() {
		return
	}
	c.value = v
	c.resolved = true
	if c.callback != nil {
		c.callback(v)
	}
}

func (c *Consumer[T]) lost() {
	c.clear()
	if c.IsDestroyed() {
		return
	}
	if c.onUnavailable != nil {
		c.onUnavailable()
	}
	if c.IsConnected() {
		c.Scheduler().Schedule(func() {
			c.request()
		})
	}
}

func (c *Consumer[T]) release() {
	c.unregister()
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.clear()
}

func (c *Consumer[T]) clear() {
	var zero T
	c.sub = nil
	c.provider = nil
	c.value = zero
	c.resolved = false
}

func (c *Consumer[T]) register() {
	if c.registered != nil {
		return
	}
	if r := registryFor(c.Host()); r != nil {
		r.add(c.token.name, c)
		c.registered = r
	}
}

func (c *Consumer[T]) unregister() {
	if c.registered != nil {
		c.registered.remove(c.token.name, c)
		c.registered = nil
	}
}
