package element

import (
	"github.com/go-drift/hostkit/pkg/contexts"
	"github.com/go-drift/hostkit/pkg/loop"
)

// Document is the root of a live tree. Its body is always connected.
type Document struct {
	loop     *loop.Loop
	registry *contexts.Registry
	body     *Element
}

// NewDocument creates a document whose hooks are deferred on l. A nil loop
// means loop.Default().
func NewDocument(l *loop.Loop) *Document {
	if l == nil {
		l = loop.Default()
	}
	d := &Document{
		loop:     l,
		registry: contexts.NewRegistry(),
	}
	d.body = New("body")
	d.body.attach(d)
	return d
}

// Body returns the connected root element.
func (d *Document) Body() *Element {
	return d.body
}

// Loop returns the document's loop.
func (d *Document) Loop() *loop.Loop {
	return d.loop
}

// Registry returns the document's pending context request registry.
func (d *Document) Registry() *contexts.Registry {
	return d.registry
}

// Find returns the first connected element with the given tag, depth-first.
func (d *Document) Find(tag string) *Element {
	var found *Element
	d.body.Walk(func(e *Element) bool {
		if e.Tag == tag {
			found = e
			return false
		}
		return true
	})
	return found
}

// Close destroys everything under the body. The document cannot be reused.
func (d *Document) Close() {
	d.body.Destroy()
}
