// Package scenario loads YAML lifecycle scenarios and runs them against a
// live document.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Controller kinds.
const (
	KindTrace    = "trace"
	KindProvider = "provider"
	KindConsumer = "consumer"
)

// Step actions.
const (
	ActionAttach  = "attach"
	ActionDetach  = "detach"
	ActionAdd     = "add"
	ActionDestroy = "destroy"
	ActionTick    = "tick"
	ActionDrain   = "drain"
	ActionSet     = "set"
	ActionExpect  = "expect"
)

// Scenario describes an element tree, its controllers, and the steps to run.
type Scenario struct {
	Name     string        `yaml:"name"`
	Elements []ElementSpec `yaml:"elements"`
	Steps    []Step        `yaml:"steps"`
}

// ElementSpec declares an element. Tags must be unique within a scenario.
type ElementSpec struct {
	Tag         string           `yaml:"tag"`
	Controllers []ControllerSpec `yaml:"controllers,omitempty"`
	Children    []ElementSpec    `yaml:"children,omitempty"`
}

// ControllerSpec declares a controller. IDs must be unique within a scenario.
type ControllerSpec struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind,omitempty"`
	// Alias is a string alias.
	Alias string `yaml:"alias,omitempty"`
	// Token names an opaque alias; specs naming the same token share it.
	Token string `yaml:"token,omitempty"`
	// Context is the context name for providers and consumers.
	Context string `yaml:"context,omitempty"`
	// Value is the initial value for providers.
	Value       string           `yaml:"value,omitempty"`
	Controllers []ControllerSpec `yaml:"controllers,omitempty"`
}

// Step is one scenario action.
type Step struct {
	Action string `yaml:"action"`
	// Element is an element tag for attach, detach and add.
	Element string `yaml:"element,omitempty"`
	// Parent is the element tag to attach under; empty means the body.
	Parent string `yaml:"parent,omitempty"`
	// Host is a controller ID to add under instead of an element.
	Host       string          `yaml:"host,omitempty"`
	Controller *ControllerSpec `yaml:"controller,omitempty"`
	// Target is a controller ID, or an element tag for destroy.
	Target string `yaml:"target,omitempty"`
	Count  int    `yaml:"count,omitempty"`
	Value  string `yaml:"value,omitempty"`

	Connected *bool   `yaml:"connected,omitempty"`
	Destroyed *bool   `yaml:"destroyed,omitempty"`
	Tracked   *bool   `yaml:"tracked,omitempty"`
	Resolved  *bool   `yaml:"resolved,omitempty"`
	Expect    *string `yaml:"expect_value,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks references and uniqueness. All problems are returned
// together.
func (s *Scenario) Validate() error {
	v := &validator{
		tags: make(map[string]bool),
		ids:  make(map[string]string),
	}
	for i := range s.Elements {
		v.element(&s.Elements[i], "elements")
	}
	for i := range s.Steps {
		v.step(i, &s.Steps[i])
	}
	return errors.Join(v.errs...)
}

type validator struct {
	tags map[string]bool
	// ids maps controller IDs to their kind.
	ids  map[string]string
	errs []error
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) element(e *ElementSpec, path string) {
	if strings.TrimSpace(e.Tag) == "" {
		v.fail("%s: element tag is required", path)
	} else if v.tags[e.Tag] {
		v.fail("%s: duplicate element tag %q", path, e.Tag)
	}
	v.tags[e.Tag] = true
	for i := range e.Controllers {
		v.controller(&e.Controllers[i], fmt.Sprintf("%s.%s.controllers[%d]", path, e.Tag, i))
	}
	for i := range e.Children {
		v.element(&e.Children[i], fmt.Sprintf("%s.%s.children[%d]", path, e.Tag, i))
	}
}

func (v *validator) controller(c *ControllerSpec, path string) {
	if c.ID == "" {
		v.fail("%s: controller id is required", path)
	} else if _, dup := v.ids[c.ID]; dup {
		v.fail("%s: duplicate controller id %q", path, c.ID)
	}
	if c.Kind == "" {
		c.Kind = KindTrace
	}
	v.ids[c.ID] = c.Kind
	switch c.Kind {
	case KindTrace:
	case KindProvider, KindConsumer:
		if c.Context == "" {
			v.fail("%s: %s %q needs a context", path, c.Kind, c.ID)
		}
		if len(c.Controllers) > 0 {
			v.fail("%s: %s %q cannot declare sub-controllers", path, c.Kind, c.ID)
		}
	default:
		v.fail("%s: unknown controller kind %q", path, c.Kind)
	}
	if c.Alias != "" && c.Token != "" {
		v.fail("%s: controller %q sets both alias and token", path, c.ID)
	}
	for i := range c.Controllers {
		v.controller(&c.Controllers[i], fmt.Sprintf("%s.%s.controllers[%d]", path, c.ID, i))
	}
}

func (v *validator) step(i int, st *Step) {
	path := fmt.Sprintf("steps[%d]", i)
	switch st.Action {
	case ActionAttach:
		v.requireTag(path, st.Element)
		if st.Parent != "" {
			v.requireTag(path, st.Parent)
		}
	case ActionDetach:
		v.requireTag(path, st.Element)
	case ActionAdd:
		if st.Controller == nil {
			v.fail("%s: add needs a controller", path)
			return
		}
		switch {
		case st.Host != "":
			v.requireID(path, st.Host)
		default:
			v.requireTag(path, st.Element)
		}
		v.controller(st.Controller, path+".controller")
	case ActionDestroy:
		if !v.tags[st.Target] {
			v.requireID(path, st.Target)
		}
	case ActionTick, ActionDrain:
		if st.Count < 0 {
			v.fail("%s: count must not be negative", path)
		}
	case ActionSet:
		v.requireID(path, st.Target)
		if kind := v.ids[st.Target]; kind != "" && kind != KindProvider {
			v.fail("%s: set target %q is not a provider", path, st.Target)
		}
	case ActionExpect:
		v.requireID(path, st.Target)
	case "":
		v.fail("%s: action is required", path)
	default:
		v.fail("%s: unknown action %q", path, st.Action)
	}
}

func (v *validator) requireTag(path, tag string) {
	if !v.tags[tag] {
		v.fail("%s: unknown element %q", path, tag)
	}
}

func (v *validator) requireID(path, id string) {
	if _, ok := v.ids[id]; !ok {
		v.fail("%s: unknown controller %q", path, id)
	}
}
