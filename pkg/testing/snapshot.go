package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/hostkit/pkg/controller"
	"github.com/go-drift/hostkit/pkg/element"
)

// CaptureSnapshot renders the document tree as indented text, one line per
// element or controller, with connection state:
//
//	body [connected]
//	  panel [connected]
//	    *controller.Func(autosave) [connected]
func CaptureSnapshot(doc *element.Document) string {
	var sb strings.Builder
	writeElement(&sb, doc.Body(), 0)
	return sb.String()
}

func writeElement(sb *strings.Builder, e *element.Element, depth int) {
	writeLine(sb, depth, e.Tag, e.IsConnected())
	writeControllers(sb, e, depth+1)
	for _, child := range e.Children() {
		writeElement(sb, child, depth+1)
	}
}

func writeControllers(sb *strings.Builder, h controller.Host, depth int) {
	for _, ctrl := range h.Controllers() {
		name := reflect.TypeOf(ctrl).String()
		if p, ok := ctrl.(*Recorder); ok {
			name = p.Name
		}
		if alias := ctrl.ControllerAlias(); alias.IsDefined() {
			name = fmt.Sprintf("%s(%s)", name, alias)
		}
		connected := false
		if sub, ok := ctrl.(controller.Host); ok {
			connected = sub.IsConnected()
			writeLine(sb, depth, name, connected)
			writeControllers(sb, sub, depth+1)
			continue
		}
		writeLine(sb, depth, name, connected)
	}
}

func writeLine(sb *strings.Builder, depth int, name string, connected bool) {
	state := "disconnected"
	if connected {
		state = "connected"
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(name)
	sb.WriteString(" [")
	sb.WriteString(state)
	sb.WriteString("]\n")
}
