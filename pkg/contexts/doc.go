// Package contexts lets controllers discover capabilities provided by an
// ancestor host without holding a direct reference.
//
// A [Provider] is a controller that offers a value under a [Token]. A
// [Consumer] is a controller that, once connected, walks from its own host up
// the tree and subscribes to the nearest connected provider for the same
// token. The consumer's callback runs with the current value and again every
// time the provider's value changes.
//
//	var ThemeToken = contexts.NewToken[*Theme]("theme")
//
//	contexts.Provide(app, ThemeToken, defaultTheme)
//
//	contexts.Consume(button, ThemeToken, func(t *Theme) {
//	    b.theme = t
//	})
//
// # Subscription lifecycle
//
// A subscription starts Unresolved. When a provider is found it becomes
// Resolved and follows every SetValue. When the provider disconnects or is
// destroyed, the consumer returns to Unresolved and tries again on the next
// loop tick. Connected consumers are listed in the document's [Registry]: when
// a provider for their token connects, those without a provider resolve and
// those bound to a farther provider move to the nearer one. Disconnecting or
// destroying the consumer releases its subscription; callbacks never fire
// after Destroy.
package contexts
