package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/hostkit/pkg/controller"
	"github.com/go-drift/hostkit/pkg/element"
)

// Finder locates controllers in an element tree.
type Finder interface {
	// Evaluate returns all matching controllers under root, depth-first with
	// an element's controllers (and their sub-controllers) before its children.
	Evaluate(root *element.Element) []controller.Controller
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	controllers []controller.Controller
	finder      Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() controller.Controller {
	if len(r.controllers) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder found no controllers: %s", desc))
	}
	return r.controllers[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() controller.Controller {
	if len(r.controllers) == 0 {
		return nil
	}
	return r.controllers[0]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []controller.Controller {
	return r.controllers
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.controllers)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.controllers) > 0
}

type predicateFinder struct {
	match func(controller.Controller) bool
	desc  string
}

func (f predicateFinder) Evaluate(root *element.Element) []controller.Controller {
	var out []controller.Controller
	root.Walk(func(e *element.Element) bool {
		out = appendMatches(out, e, f.match)
		return true
	})
	return out
}

func (f predicateFinder) Description() string {
	return f.desc
}

func appendMatches(out []controller.Controller, h controller.Host, match func(controller.Controller) bool) []controller.Controller {
	for _, ctrl := range h.Controllers() {
		if match(ctrl) {
			out = append(out, ctrl)
		}
		if sub, ok := ctrl.(controller.Host); ok {
			out = appendMatches(out, sub, match)
		}
	}
	return out
}

// ByAlias finds controllers whose alias equals alias.
func ByAlias(alias controller.Alias) Finder {
	return predicateFinder{
		match: func(c controller.Controller) bool { return c.ControllerAlias().Equal(alias) },
		desc:  fmt.Sprintf("ByAlias(%s)", alias),
	}
}

// ByType finds controllers with the same dynamic type as sample.
func ByType(sample controller.Controller) Finder {
	want := reflect.TypeOf(sample)
	return predicateFinder{
		match: func(c controller.Controller) bool { return reflect.TypeOf(c) == want },
		desc:  fmt.Sprintf("ByType(%s)", want),
	}
}

// ByPredicate finds controllers matching fn.
func ByPredicate(desc string, fn func(controller.Controller) bool) Finder {
	return predicateFinder{match: fn, desc: "ByPredicate(" + desc + ")"}
}

// ByRecorderName finds recorders with the given name.
func ByRecorderName(name string) Finder {
	return predicateFinder{
		match: func(c controller.Controller) bool {
			p, ok := c.(*Recorder)
			return ok && p.Name == name
		},
		desc: fmt.Sprintf("ByRecorderName(%q)", name),
	}
}
