package contexts

// Subscription links a consumer to a provider. It is closed either by
// Unsubscribe or by the provider going away.
type Subscription struct {
	closed  bool
	release func()
}

func newSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Unsubscribe detaches from the provider. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.release != nil {
		s.release()
	}
}

// Closed reports whether the subscription no longer delivers values.
func (s *Subscription) Closed() bool {
	return s == nil || s.closed
}

// close marks the subscription closed from the provider side and reports
// whether it was open.
func (s *Subscription) close() bool {
	if s.closed {
		return false
	}
	s.closed = true
	return true
}
