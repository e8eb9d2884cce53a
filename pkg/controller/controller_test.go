package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/hostkit/pkg/errors"
	"github.com/go-drift/hostkit/pkg/loop"
)

type testController struct {
	Base
	connected bool
	destroyed bool
	events    []string
}

func newTestController(host Host, alias Alias) *testController {
	c := &testController{}
	c.Init(c, host, alias)
	return c
}

func (c *testController) HostConnected() {
	c.Base.HostConnected()
	c.connected = true
	c.events = append(c.events, "connected")
}

func (c *testController) HostDisconnected() {
	c.Base.HostDisconnected()
	c.connected = false
	c.events = append(c.events, "disconnected")
}

func (c *testController) Destroy() {
	c.Base.Destroy()
	c.destroyed = true
}

func newTestHost() (*Collection, *loop.Loop) {
	l := loop.New()
	host := &Collection{}
	host.SetScheduler(l)
	return host, l
}

type misuseCapture struct {
	errs []*errors.HostError
}

func (m *misuseCapture) HandleError(err *errors.HostError) { m.errs = append(m.errs, err) }
func (m *misuseCapture) HandlePanic(*errors.PanicError)    {}

func captureErrors(t *testing.T) *misuseCapture {
	t.Helper()
	capture := &misuseCapture{}
	old := errors.SetHandler(capture)
	t.Cleanup(func() { errors.SetHandler(old) })
	return capture
}

func TestControllerAlias(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, Named("my-test-controller-alias"))

	assert.Equal(t, Named("my-test-controller-alias"), ctrl.ControllerAlias())
	assert.Equal(t, "my-test-controller-alias", ctrl.ControllerAlias().String())
	assert.Same(t, host, ctrl.Host().(*Collection))
}

func TestControllerRemovedFromHostWhenDestroyed(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	sub := newTestController(ctrl, NoAlias())

	require.True(t, host.HasController(ctrl))
	require.True(t, ctrl.HasController(sub))

	ctrl.Destroy()

	assert.False(t, host.HasController(ctrl))
	assert.False(t, ctrl.connected)
	assert.True(t, ctrl.destroyed)
	assert.False(t, ctrl.HasController(sub))
	assert.False(t, sub.connected)
	assert.True(t, sub.destroyed)
}

func TestDestroyCascadesToEveryDescendant(t *testing.T) {
	host, l := newTestHost()
	ctrl := newTestController(host, NoAlias())
	sub1 := newTestController(ctrl, NoAlias())
	sub2 := newTestController(ctrl, NoAlias())
	subSub1 := newTestController(sub1, NoAlias())
	subSub2 := newTestController(sub1, NoAlias())

	host.HostConnected()
	require.True(t, subSub2.connected)
	require.Equal(t, 0, l.Pending())

	ctrl.Destroy()

	for _, c := range []*testController{ctrl, sub1, sub2, subSub1, subSub2} {
		assert.True(t, c.destroyed)
		assert.False(t, c.connected)
		assert.False(t, c.IsConnected())
		assert.Empty(t, c.Controllers())
	}
	assert.False(t, host.HasController(ctrl))
	assert.False(t, ctrl.HasController(sub1))
	assert.False(t, ctrl.HasController(sub2))
	assert.False(t, sub1.HasController(subSub1))
	assert.False(t, sub1.HasController(subSub2))
}

func TestDestroyIsIdempotent(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	host.HostConnected()

	ctrl.Destroy()
	ctrl.Destroy()

	assert.Equal(t, []string{"connected", "disconnected"}, ctrl.events)
	assert.True(t, ctrl.IsDestroyed())
}

func TestHooksAreNoOpsAfterDestroy(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	sub := newTestController(ctrl, NoAlias())
	ctrl.Destroy()

	ctrl.Base.HostConnected()
	assert.False(t, ctrl.IsConnected())
	assert.False(t, sub.IsConnected())
}

func TestHostConnectedAndDisconnectedFollowHost(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	sub := newTestController(ctrl, NoAlias())

	assert.False(t, ctrl.connected)
	assert.False(t, sub.connected)

	host.HostConnected()
	assert.True(t, ctrl.connected)
	assert.True(t, sub.connected)

	host.HostDisconnected()
	assert.False(t, ctrl.connected)
	assert.False(t, sub.connected)
}

func TestAddToConnectedHostDefersOneTick(t *testing.T) {
	host, l := newTestHost()
	host.HostConnected()

	ctrl := newTestController(host, NoAlias())
	sub := newTestController(ctrl, NoAlias())

	assert.True(t, host.HasController(ctrl))
	assert.True(t, ctrl.HasController(sub))
	assert.False(t, ctrl.connected)
	assert.False(t, sub.connected)

	l.Tick()

	assert.True(t, ctrl.connected)
	assert.True(t, sub.connected)

	host.HostDisconnected()
	assert.False(t, ctrl.connected)
	assert.False(t, sub.connected)
}

func TestDeferredConnectSkippedAfterStateChange(t *testing.T) {
	t.Run("host disconnected before tick", func(t *testing.T) {
		host, l := newTestHost()
		host.HostConnected()
		ctrl := newTestController(host, NoAlias())
		host.HostDisconnected()

		l.Tick()
		assert.False(t, ctrl.connected)
	})

	t.Run("host reconnected before tick", func(t *testing.T) {
		host, l := newTestHost()
		host.HostConnected()
		ctrl := newTestController(host, NoAlias())
		host.HostDisconnected()
		host.HostConnected()

		l.Tick()
		assert.Equal(t, []string{"disconnected", "connected"}, ctrl.events)
	})

	t.Run("controller removed before tick", func(t *testing.T) {
		host, l := newTestHost()
		host.HostConnected()
		ctrl := newTestController(host, NoAlias())
		host.RemoveController(ctrl)

		l.Tick()
		assert.False(t, ctrl.connected)
	})

	t.Run("controller destroyed before tick", func(t *testing.T) {
		host, l := newTestHost()
		host.HostConnected()
		ctrl := newTestController(host, NoAlias())
		ctrl.Destroy()

		l.Tick()
		assert.Empty(t, ctrl.events)
	})
}

func TestReAddBeforeTickConnectsOnce(t *testing.T) {
	host, l := newTestHost()
	host.HostConnected()

	calls := 0
	f := New(host, NoAlias(), Hooks{OnConnected: func() { calls++ }})
	sub := newTestController(f, NoAlias())
	host.RemoveController(f)
	host.AddController(f)
	l.Drain()

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"connected"}, sub.events)
	assert.True(t, host.HasController(f))
}

func TestReAddAfterConnectDoesNotReconnect(t *testing.T) {
	host, l := newTestHost()
	host.HostConnected()

	calls := 0
	f := New(host, NoAlias(), Hooks{OnConnected: func() { calls++ }})
	l.Drain()
	require.Equal(t, 1, calls)

	host.RemoveController(f)
	host.AddController(f)
	l.Drain()

	assert.Equal(t, 1, calls)
	assert.True(t, f.IsConnected())
}

func TestHooksFireInInsertionOrder(t *testing.T) {
	host, _ := newTestHost()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		New(host, NoAlias(), Hooks{
			OnConnected:    func() { order = append(order, "+"+name) },
			OnDisconnected: func() { order = append(order, "-"+name) },
		})
	}

	host.HostConnected()
	host.HostDisconnected()

	assert.Equal(t, []string{"+a", "+b", "+c", "-a", "-b", "-c"}, order)
}

func TestDisconnectFlipsHostStateFirst(t *testing.T) {
	host, _ := newTestHost()
	var sawConnected bool
	New(host, NoAlias(), Hooks{
		OnDisconnected: func() { sawConnected = host.IsConnected() },
	})
	host.HostConnected()
	host.HostDisconnected()

	assert.False(t, sawConnected)
}

func TestReplacedByStringAlias(t *testing.T) {
	host, _ := newTestHost()
	first := newTestController(host, Named("my-test-alias"))
	second := newTestController(host, Named("my-test-alias"))

	assert.False(t, host.HasController(first))
	assert.True(t, first.destroyed)
	assert.True(t, host.HasController(second))
	assert.Len(t, host.Controllers(), 1)
}

func TestReplacedByTokenAlias(t *testing.T) {
	host, _ := newTestHost()
	token := NewToken("my-symbol")
	first := newTestController(host, token)
	second := newTestController(host, token)

	assert.False(t, host.HasController(first))
	assert.True(t, host.HasController(second))
}

func TestDistinctTokensDoNotReplace(t *testing.T) {
	host, _ := newTestHost()
	first := newTestController(host, NewToken("same"))
	second := newTestController(host, NewToken("same"))
	named := newTestController(host, Named("same"))

	assert.True(t, host.HasController(first))
	assert.True(t, host.HasController(second))
	assert.True(t, host.HasController(named))
}

func TestAbsentAliasNeverReplaces(t *testing.T) {
	host, _ := newTestHost()
	var ctrls []*testController
	for range 5 {
		ctrls = append(ctrls, newTestController(host, NoAlias()))
	}
	ctrls = append(ctrls, newTestController(host, Named("")))

	for _, c := range ctrls {
		assert.True(t, host.HasController(c))
		assert.False(t, c.destroyed)
	}
}

func TestSubControllersWithSameAliasOnDifferentHosts(t *testing.T) {
	host, _ := newTestHost()
	token := NewToken("shared")

	first := newTestController(host, NoAlias())
	second := newTestController(host, NoAlias())
	firstSub := newTestController(first, token)
	secondSub := newTestController(second, token)

	assert.True(t, first.HasController(firstSub))
	assert.True(t, second.HasController(secondSub))
}

func TestReplacementAppendsAtEnd(t *testing.T) {
	host, _ := newTestHost()
	a := newTestController(host, Named("a"))
	b := newTestController(host, NoAlias())
	a2 := newTestController(host, Named("a"))

	assert.Equal(t, []Controller{b, a2}, host.Controllers())
	assert.True(t, a.destroyed)
}

func TestAddControllerIsIdempotent(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, Named("only"))
	host.AddController(ctrl)
	host.AddController(ctrl)

	assert.Len(t, host.Controllers(), 1)
	assert.False(t, ctrl.destroyed)
}

func TestRemoveController(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	other := newTestController(&Collection{}, NoAlias())

	host.RemoveController(other)
	host.RemoveController(nil)
	assert.True(t, host.HasController(ctrl))

	host.RemoveController(ctrl)
	assert.False(t, host.HasController(ctrl))
	assert.False(t, ctrl.destroyed)

	host.RemoveController(ctrl)
}

func TestRemoveControllerByAlias(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, Named("x"))
	newTestController(host, NoAlias())

	assert.Nil(t, host.RemoveControllerByAlias(Named("missing")))
	assert.Nil(t, host.RemoveControllerByAlias(NoAlias()))

	got := host.RemoveControllerByAlias(Named("x"))
	assert.Same(t, ctrl, got.(*testController))
	assert.False(t, host.HasController(ctrl))
	assert.Len(t, host.Controllers(), 1)
}

func TestControllersReturnsCopy(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())

	view := host.Controllers()
	view[0] = nil

	assert.True(t, host.HasController(ctrl))
}

func TestHostDestroy(t *testing.T) {
	host, _ := newTestHost()
	a := newTestController(host, NoAlias())
	b := newTestController(host, Named("b"))
	sub := newTestController(a, NoAlias())
	host.HostConnected()

	host.Destroy()
	host.Destroy()

	for _, c := range []*testController{a, b, sub} {
		assert.True(t, c.destroyed)
		assert.False(t, c.connected)
	}
	assert.Empty(t, host.Controllers())
}

func TestDestroyFromOwnHook(t *testing.T) {
	host, _ := newTestHost()
	var self *Func
	self = New(host, NoAlias(), Hooks{
		OnConnected: func() { self.Destroy() },
	})
	after := newTestController(host, NoAlias())

	host.HostConnected()

	assert.True(t, self.IsDestroyed())
	assert.False(t, host.HasController(self))
	assert.True(t, after.connected)
}

func TestDestroySiblingFromHook(t *testing.T) {
	host, _ := newTestHost()
	var sibling *testController
	New(host, NoAlias(), Hooks{
		OnConnected: func() { sibling.Destroy() },
	})
	sibling = newTestController(host, NoAlias())

	host.HostConnected()

	assert.True(t, sibling.destroyed)
	assert.Empty(t, sibling.events)
}

func TestFuncHooks(t *testing.T) {
	host, _ := newTestHost()
	var events []string
	f := New(host, Named("fn"), Hooks{
		OnConnected:    func() { events = append(events, "connected") },
		OnDisconnected: func() { events = append(events, "disconnected") },
		OnDestroy:      func() { events = append(events, "destroyed") },
	})

	host.HostConnected()
	f.Destroy()
	f.Destroy()
	f.HostConnected()

	assert.Equal(t, []string{"connected", "disconnected", "destroyed"}, events)
}

func TestInitMisuse(t *testing.T) {
	capture := captureErrors(t)

	t.Run("twice", func(t *testing.T) {
		host, _ := newTestHost()
		other, _ := newTestHost()
		ctrl := newTestController(host, NoAlias())
		ctrl.Init(ctrl, other, Named("again"))

		assert.True(t, host.HasController(ctrl))
		assert.False(t, other.HasController(ctrl))
		assert.Equal(t, NoAlias(), ctrl.ControllerAlias())
	})

	t.Run("nil host", func(t *testing.T) {
		ctrl := newTestController(nil, Named("orphan"))
		assert.Nil(t, ctrl.Host())
		ctrl.Destroy()
		assert.True(t, ctrl.destroyed)
	})

	t.Run("nil controller", func(t *testing.T) {
		host, _ := newTestHost()
		host.AddController(nil)
		assert.Empty(t, host.Controllers())
	})

	require.Len(t, capture.errs, 3)
	assert.ErrorIs(t, capture.errs[0], errors.ErrAlreadyInitialized)
	assert.ErrorIs(t, capture.errs[1], errors.ErrNilHost)
	assert.Equal(t, "orphan", capture.errs[1].Alias)
	assert.ErrorIs(t, capture.errs[2], errors.ErrNilController)
}

func TestSchedulerResolution(t *testing.T) {
	parentLoop := loop.New()
	host := &Collection{}
	host.SetSchedulerSource(func() loop.Scheduler { return parentLoop })
	ctrl := newTestController(host, NoAlias())

	assert.Same(t, parentLoop, ctrl.Scheduler().(*loop.Loop))

	bare := &Collection{}
	assert.Same(t, loop.Default(), bare.Scheduler().(*loop.Loop))
}

func TestParentOf(t *testing.T) {
	host, _ := newTestHost()
	ctrl := newTestController(host, NoAlias())
	sub := newTestController(ctrl, NoAlias())

	assert.Same(t, ctrl, ParentOf(sub).(*testController))
	assert.Same(t, host, ParentOf(ctrl).(*Collection))
	assert.Nil(t, ParentOf(host))
}
