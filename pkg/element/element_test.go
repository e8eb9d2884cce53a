package element_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/hostkit/pkg/controller"
	"github.com/go-drift/hostkit/pkg/element"
	"github.com/go-drift/hostkit/pkg/loop"
	hosttest "github.com/go-drift/hostkit/pkg/testing"
)

func TestElementIsHost(t *testing.T) {
	var _ controller.Host = element.New("x")
	var _ controller.Parented = element.New("x")
	var _ controller.SchedulerSource = element.New("x")
}

func TestAppendToDocumentConnectsControllers(t *testing.T) {
	tester := hosttest.NewTester(t)
	host := element.New("test-my-controller-host")
	ctrl := hosttest.NewRecorder(host, "ctrl", controller.NoAlias())
	sub := hosttest.NewRecorder(ctrl, "sub", controller.NoAlias())

	require.True(t, host.HasController(ctrl))
	require.True(t, ctrl.HasController(sub))
	assert.False(t, ctrl.Connected)
	assert.False(t, sub.Connected)

	tester.Mount(host)
	assert.True(t, host.IsConnected())
	assert.True(t, ctrl.Connected)
	assert.True(t, sub.Connected)

	tester.Unmount(host)
	assert.False(t, host.IsConnected())
	assert.False(t, ctrl.Connected)
	assert.False(t, sub.Connected)
}

func TestControllerAddedToConnectedHostConnectsNextTick(t *testing.T) {
	tester := hosttest.NewTester(t)
	host := element.New("host")
	tester.Mount(host)

	ctrl := hosttest.NewRecorder(host, "ctrl", controller.NoAlias())
	sub := hosttest.NewRecorder(ctrl, "sub", controller.NoAlias())

	assert.True(t, host.HasController(ctrl))
	assert.True(t, ctrl.HasController(sub))
	assert.False(t, ctrl.Connected)
	assert.False(t, sub.Connected)

	tester.Pump()

	assert.True(t, ctrl.Connected)
	assert.True(t, sub.Connected)

	tester.Unmount(host)
	assert.False(t, ctrl.Connected)
	assert.False(t, sub.Connected)
}

func TestDocumentLoopIsUsed(t *testing.T) {
	l := loop.New()
	doc := element.NewDocument(l)
	host := element.New("host")
	doc.Body().AppendChild(host)

	ctrl := hosttest.NewRecorder(host, "ctrl", controller.NoAlias())
	assert.Equal(t, 1, l.Pending())
	assert.Same(t, l, host.Scheduler().(*loop.Loop))
	assert.Same(t, l, doc.Loop())

	l.Tick()
	assert.True(t, ctrl.Connected)
}

func TestDisconnectedHostDestroyScenario(t *testing.T) {
	hosttest.NewTester(t)
	host := element.New("host")
	a := hosttest.NewRecorder(host, "a", controller.NoAlias())
	b := hosttest.NewRecorder(a, "b", controller.NoAlias())

	a.Destroy()

	assert.False(t, host.HasController(a))
	assert.False(t, a.HasController(b))
	assert.True(t, a.Destroyed)
	assert.True(t, b.Destroyed)
}

func TestNestedElementsConnectTopDown(t *testing.T) {
	tester := hosttest.NewTester(t)
	var journal hosttest.Journal
	root := element.New("root")
	left := element.New("left")
	right := element.New("right")
	root.AppendChild(left)
	root.AppendChild(right)
	hosttest.NewJournaledRecorder(right, "right", controller.NoAlias(), &journal)
	hosttest.NewJournaledRecorder(left, "left", controller.NoAlias(), &journal)
	hosttest.NewJournaledRecorder(root, "root", controller.NoAlias(), &journal)

	tester.Mount(root)
	assert.Equal(t, []string{"root:connected", "left:connected", "right:connected"}, journal.Entries())

	journal.Reset()
	tester.Unmount(root)
	assert.Equal(t, []string{"root:disconnected", "left:disconnected", "right:disconnected"}, journal.Entries())
}

func TestAppendChildMovesBetweenParents(t *testing.T) {
	tester := hosttest.NewTester(t)
	live := element.New("live")
	tester.Mount(live)
	detached := element.New("detached")
	child := element.New("child")
	recorder := hosttest.NewRecorder(child, "recorder", controller.NoAlias())

	live.AppendChild(child)
	assert.True(t, recorder.Connected)
	assert.Same(t, live, child.Parent())
	assert.Same(t, tester.Document(), child.Document())

	detached.AppendChild(child)
	assert.False(t, recorder.Connected)
	assert.Same(t, detached, child.Parent())
	assert.Empty(t, live.Children())
	assert.Nil(t, child.Document())
	assert.Equal(t, []string{"connected", "disconnected"}, recorder.Events)
}

func TestAppendChildRejectsCycles(t *testing.T) {
	parent := element.New("parent")
	child := element.New("child")
	parent.AppendChild(child)

	child.AppendChild(parent)
	parent.AppendChild(parent)
	parent.AppendChild(nil)

	assert.Nil(t, parent.Parent())
	assert.Equal(t, []*element.Element{child}, parent.Children())
	assert.Empty(t, child.Children())
}

func TestRemoveChildNotAChild(t *testing.T) {
	parent := element.New("parent")
	stranger := element.New("stranger")
	parent.RemoveChild(stranger)
	parent.RemoveChild(nil)
	stranger.Remove()
	assert.Empty(t, parent.Children())
}

func TestElementDestroy(t *testing.T) {
	tester := hosttest.NewTester(t)
	root := element.New("root")
	child := element.New("child")
	root.AppendChild(child)
	rootRecorder := hosttest.NewRecorder(root, "root", controller.NoAlias())
	childRecorder := hosttest.NewRecorder(child, "child", controller.NoAlias())
	tester.Mount(root)

	root.Destroy()
	root.Destroy()

	assert.True(t, root.IsDestroyed())
	assert.True(t, child.IsDestroyed())
	assert.True(t, rootRecorder.Destroyed)
	assert.True(t, childRecorder.Destroyed)
	assert.False(t, rootRecorder.Connected)
	assert.False(t, childRecorder.Connected)
	assert.Empty(t, root.Controllers())
	assert.Empty(t, tester.Document().Body().Children())
	assert.Equal(t, []string{"connected", "disconnected", "destroyed"}, childRecorder.Events)

	// Destroyed elements cannot be re-attached.
	tester.Document().Body().AppendChild(root)
	assert.Nil(t, root.Parent())
}

func TestDocumentFindAndClose(t *testing.T) {
	tester := hosttest.NewTester(t)
	panel := element.New("panel")
	editor := element.New("editor")
	panel.AppendChild(editor)
	recorder := hosttest.NewRecorder(editor, "recorder", controller.NoAlias())
	tester.Mount(panel)

	assert.Same(t, editor, tester.Document().Find("editor"))
	assert.Nil(t, tester.Document().Find("missing"))

	tester.Document().Close()
	assert.True(t, recorder.Destroyed)
	assert.False(t, recorder.Connected)
	assert.False(t, tester.Document().Body().IsConnected())
}

func TestParentHost(t *testing.T) {
	parent := element.New("parent")
	child := element.New("child")
	parent.AppendChild(child)

	assert.Same(t, parent, child.ParentHost().(*element.Element))
	assert.Nil(t, parent.ParentHost())
	assert.Nil(t, parent.ContextRegistry())
}

func TestControllerReplacedOnElement(t *testing.T) {
	tester := hosttest.NewTester(t)
	host := element.New("host")
	tester.Mount(host)

	first := hosttest.NewRecorder(host, "first", controller.Named("my-test-alias"))
	tester.Pump()
	second := hosttest.NewRecorder(host, "second", controller.Named("my-test-alias"))

	assert.False(t, host.HasController(first))
	assert.True(t, first.Destroyed)
	assert.Equal(t, []string{"connected", "disconnected", "destroyed"}, first.Events)
	assert.True(t, host.HasController(second))

	tester.Pump()
	assert.True(t, second.Connected)
}
