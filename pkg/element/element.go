// Package element provides tree nodes with controller-host capability.
//
// An [Element] stands in for a UI element: it embeds [controller.Collection]
// and sits in a parent/child tree. A [Document] is the live root. Attaching a
// subtree under a connected element connects it top-down (an element's
// controllers first, then its children in order); detaching disconnects it the
// same way.
package element

import (
	"slices"

	"github.com/go-drift/hostkit/pkg/contexts"
	"github.com/go-drift/hostkit/pkg/controller"
	"github.com/go-drift/hostkit/pkg/loop"
)

// Element is a controller host that lives in a tree.
type Element struct {
	controller.Collection

	Tag string

	parent    *Element
	children  []*Element
	doc       *Document
	destroyed bool
}

// New creates a detached element.
func New(tag string) *Element {
	e := &Element{Tag: tag}
	e.SetSchedulerSource(e.scheduler)
	return e
}

func (e *Element) scheduler() loop.Scheduler {
	if e.doc != nil {
		return e.doc.loop
	}
	return nil
}

// Parent returns the parent element, or nil for a detached root.
func (e *Element) Parent() *Element {
	return e.parent
}

// ParentHost returns the parent element as a host, or nil at the root.
func (e *Element) ParentHost() controller.Host {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Children returns a copy of the child elements in order.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// Document returns the document the element is attached to, or nil.
func (e *Element) Document() *Document {
	return e.doc
}

// ContextRegistry returns the registry of the attached document, so pending
// context requests under this element can be retried when a provider appears.
func (e *Element) ContextRegistry() *contexts.Registry {
	if e.doc == nil {
		return nil
	}
	return e.doc.registry
}

// AppendChild moves child under e, detaching it from its previous parent
// first. If e is connected, the child subtree is connected.
func (e *Element) AppendChild(child *Element) {
	if child == nil || child == e || child.destroyed || e.destroyed || child.isAncestorOf(e) {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	if e.IsConnected() {
		child.attach(e.doc)
	}
}

// RemoveChild detaches child from e. If e is connected, the child subtree is
// disconnected. Removing an element that is not a child is a no-op.
func (e *Element) RemoveChild(child *Element) {
	i := slices.Index(e.children, child)
	if i < 0 {
		return
	}
	e.children = slices.Delete(e.children, i, i+1)
	if child.IsConnected() {
		child.detach()
	}
	child.parent = nil
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// Destroy destroys the element's controllers and then its children,
// depth-first, and removes it from its parent. It is idempotent.
func (e *Element) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.Remove()
	if e.IsConnected() {
		e.detach()
	}
	e.destroySubtree()
}

func (e *Element) destroySubtree() {
	e.destroyed = true
	e.Collection.Destroy()
	for _, child := range slices.Clone(e.children) {
		child.destroySubtree()
	}
	e.children = nil
}

// IsDestroyed reports whether Destroy has been called on e or an ancestor.
func (e *Element) IsDestroyed() bool {
	return e.destroyed
}

func (e *Element) attach(doc *Document) {
	e.doc = doc
	e.HostConnected()
	for _, child := range slices.Clone(e.children) {
		// A controller hook may have moved this child.
		if child.parent == e {
			child.attach(doc)
		}
	}
}

func (e *Element) detach() {
	e.HostDisconnected()
	for _, child := range slices.Clone(e.children) {
		if child.parent == e {
			child.detach()
		}
	}
	e.doc = nil
}

func (e *Element) isAncestorOf(other *Element) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

// Walk visits e and its descendants depth-first, stopping early when visit
// returns false.
func (e *Element) Walk(visit func(*Element) bool) bool {
	if !visit(e) {
		return false
	}
	for _, child := range slices.Clone(e.children) {
		if !child.Walk(visit) {
			return false
		}
	}
	return true
}
