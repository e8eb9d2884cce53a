package controller

// Hooks are the callbacks run by a [Func] controller. Nil hooks are skipped.
type Hooks struct {
	OnConnected    func()
	OnDisconnected func()
	OnDestroy      func()
}

// Func is a controller driven by closures, for behavior that does not need
// its own type.
type Func struct {
	Base
	hooks Hooks
}

// New creates a Func controller and registers it with host.
//
// Example:
//
//	controller.New(panel, controller.Named("autosave"), controller.Hooks{
//	    OnConnected:    func() { saver.Start() },
//	    OnDisconnected: func() { saver.Stop() },
//	})
func New(host Host, alias Alias, hooks Hooks) *Func {
	f := &Func{hooks: hooks}
	f.Init(f, host, alias)
	return f
}

func (f *Func) HostConnected() {
	if f.IsDestroyed() {
		return
	}
	f.Base.HostConnected()
	if f.hooks.OnConnected != nil {
		f.hooks.OnConnected()
	}
}

func (f *Func) HostDisconnected() {
	if f.state == stateDestroyed {
		return
	}
	f.Base.HostDisconnected()
	if f.hooks.OnDisconnected != nil {
		f.hooks.OnDisconnected()
	}
}

func (f *Func) Destroy() {
	if f.IsDestroyed() {
		return
	}
	f.Base.Destroy()
	if f.hooks.OnDestroy != nil {
		f.hooks.OnDestroy()
	}
}
