package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/go-drift/hostkit/pkg/contexts"
	"github.com/go-drift/hostkit/pkg/controller"
	"github.com/go-drift/hostkit/pkg/element"
	hkerrors "github.com/go-drift/hostkit/pkg/errors"
	"github.com/go-drift/hostkit/pkg/loop"
)

// Options configures a Runner.
type Options struct {
	// Trace receives one line per lifecycle event. Nil disables tracing.
	Trace io.Writer
	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
	// MaxDrainTicks bounds drain steps. Zero means loop.DefaultMaxDrainTicks.
	MaxDrainTicks int
}

// Result summarizes a finished run.
type Result struct {
	Events []string
	// Final maps controller IDs to their state after the last step.
	Final map[string]State
}

// State is a controller's observable state.
type State struct {
	Connected bool
	Destroyed bool
	Tracked   bool
	Resolved  bool
	Value     string
}

// Runner executes a scenario against a fresh document.
type Runner struct {
	opts   Options
	logger *slog.Logger

	loop     *loop.Loop
	doc      *element.Document
	elements map[string]*element.Element
	entries  map[string]*entry
	tokens   map[string]controller.Alias
	events   []string
	step     int
	quiet    bool
}

type entry struct {
	ctrl     controller.Controller
	host     controller.Host
	provider *contexts.Provider[string]
	consumer *contexts.Consumer[string]
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{opts: opts, logger: logger}
}

// Run validates the scenario, builds its tree and executes its steps in
// order. It stops at the first failed step or when ctx is done.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, &hkerrors.HostError{Op: "scenario.validate", Kind: hkerrors.KindScenario, Err: err}
	}

	var loopOpts []loop.Option
	loopOpts = append(loopOpts, loop.WithLogger(r.logger))
	if r.opts.MaxDrainTicks > 0 {
		loopOpts = append(loopOpts, loop.WithMaxDrainTicks(r.opts.MaxDrainTicks))
	}
	r.loop = loop.New(loopOpts...)
	r.doc = element.NewDocument(r.loop)
	r.elements = make(map[string]*element.Element)
	r.entries = make(map[string]*entry)
	r.tokens = make(map[string]controller.Alias)
	r.events = nil
	r.step = -1
	r.quiet = false

	defer func() {
		r.quiet = true
		r.doc.Close()
	}()

	for i := range s.Elements {
		r.buildElement(&s.Elements[i])
	}
	r.logger.Debug("scenario built", "name", s.Name, "elements", len(r.elements), "controllers", len(r.entries))

	for i := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.step = i
		if err := r.exec(&s.Steps[i]); err != nil {
			return nil, &hkerrors.HostError{
				Op:   fmt.Sprintf("scenario.steps[%d].%s", i, s.Steps[i].Action),
				Kind: hkerrors.KindScenario,
				Err:  err,
			}
		}
	}

	return &Result{Events: r.events, Final: r.final()}, nil
}

func (r *Runner) buildElement(spec *ElementSpec) *element.Element {
	e := element.New(spec.Tag)
	r.elements[spec.Tag] = e
	for i := range spec.Controllers {
		r.buildController(e, &spec.Controllers[i])
	}
	for i := range spec.Children {
		e.AppendChild(r.buildElement(&spec.Children[i]))
	}
	return e
}

func (r *Runner) alias(spec *ControllerSpec) controller.Alias {
	if spec.Token != "" {
		a, ok := r.tokens[spec.Token]
		if !ok {
			a = controller.NewToken(spec.Token)
			r.tokens[spec.Token] = a
		}
		return a
	}
	return controller.Named(spec.Alias)
}

func (r *Runner) buildController(host controller.Host, spec *ControllerSpec) {
	en := &entry{host: host}
	switch spec.Kind {
	case KindProvider:
		token := contexts.NewToken[string](spec.Context)
		en.provider = contexts.Provide(host, token, spec.Value)
		en.ctrl = en.provider
	case KindConsumer:
		token := contexts.NewToken[string](spec.Context)
		id := spec.ID
		en.consumer = contexts.Consume(host, token,
			func(v string) { r.record(id, "resolved "+v) },
			contexts.WithUnavailable(func() { r.record(id, "unavailable") }),
			contexts.WithAlias(r.alias(spec)),
		)
		en.ctrl = en.consumer
	default:
		id := spec.ID
		f := controller.New(host, r.alias(spec), controller.Hooks{
			OnConnected:    func() { r.record(id, "connected") },
			OnDisconnected: func() { r.record(id, "disconnected") },
			OnDestroy:      func() { r.record(id, "destroyed") },
		})
		en.ctrl = f
		for i := range spec.Controllers {
			r.buildController(f, &spec.Controllers[i])
		}
	}
	r.entries[spec.ID] = en
}

func (r *Runner) record(id, event string) {
	if r.quiet {
		return
	}
	line := fmt.Sprintf("[%d] %s: %s", r.step, id, event)
	r.events = append(r.events, line)
	if r.opts.Trace != nil {
		fmt.Fprintln(r.opts.Trace, line)
	}
}

func (r *Runner) exec(st *Step) error {
	switch st.Action {
	case ActionAttach:
		parent := r.doc.Body()
		if st.Parent != "" {
			p, err := r.element(st.Parent)
			if err != nil {
				return err
			}
			parent = p
		}
		e, err := r.element(st.Element)
		if err != nil {
			return err
		}
		parent.AppendChild(e)
	case ActionDetach:
		e, err := r.element(st.Element)
		if err != nil {
			return err
		}
		e.Remove()
	case ActionAdd:
		if st.Controller == nil {
			return fmt.Errorf("add needs a controller")
		}
		var host controller.Host
		if st.Host != "" {
			en, err := r.lookup(st.Host)
			if err != nil {
				return err
			}
			h, ok := en.ctrl.(controller.Host)
			if !ok {
				return fmt.Errorf("controller %q cannot host sub-controllers", st.Host)
			}
			host = h
		} else {
			e, err := r.element(st.Element)
			if err != nil {
				return err
			}
			host = e
		}
		r.buildController(host, st.Controller)
	case ActionDestroy:
		if e, ok := r.elements[st.Target]; ok {
			e.Destroy()
			return nil
		}
		en, err := r.lookup(st.Target)
		if err != nil {
			return err
		}
		en.ctrl.Destroy()
	case ActionTick:
		for range max(st.Count, 1) {
			r.loop.Tick()
		}
	case ActionDrain:
		r.loop.Drain()
	case ActionSet:
		en, err := r.lookup(st.Target)
		if err != nil {
			return err
		}
		if en.provider == nil {
			return fmt.Errorf("controller %q is not a provider", st.Target)
		}
		en.provider.SetValue(st.Value)
	case ActionExpect:
		return r.expect(st)
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func (r *Runner) element(tag string) (*element.Element, error) {
	e, ok := r.elements[tag]
	if !ok {
		return nil, fmt.Errorf("element %q does not exist", tag)
	}
	return e, nil
}

func (r *Runner) lookup(id string) (*entry, error) {
	en, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("controller %q does not exist yet", id)
	}
	return en, nil
}

func (r *Runner) state(en *entry) State {
	s := State{Tracked: en.host.HasController(en.ctrl)}
	if h, ok := en.ctrl.(controller.Host); ok {
		s.Connected = h.IsConnected()
	}
	if d, ok := en.ctrl.(interface{ IsDestroyed() bool }); ok {
		s.Destroyed = d.IsDestroyed()
	}
	if en.consumer != nil {
		s.Value, s.Resolved = en.consumer.Value()
	}
	if en.provider != nil {
		s.Value = en.provider.Value()
	}
	return s
}

func (r *Runner) expect(st *Step) error {
	en, err := r.lookup(st.Target)
	if err != nil {
		return err
	}
	got := r.state(en)
	check := func(name string, want *bool, have bool) error {
		if want != nil && *want != have {
			return fmt.Errorf("%s: %s = %t, want %t", st.Target, name, have, *want)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		want *bool
		have bool
	}{
		{"connected", st.Connected, got.Connected},
		{"destroyed", st.Destroyed, got.Destroyed},
		{"tracked", st.Tracked, got.Tracked},
		{"resolved", st.Resolved, got.Resolved},
	} {
		if err := check(c.name, c.want, c.have); err != nil {
			return err
		}
	}
	if st.Expect != nil && *st.Expect != got.Value {
		return fmt.Errorf("%s: value = %q, want %q", st.Target, got.Value, *st.Expect)
	}
	return nil
}

func (r *Runner) final() map[string]State {
	out := make(map[string]State, len(r.entries))
	for id, en := range r.entries {
		out[id] = r.state(en)
	}
	return out
}

// WriteSummary prints the final controller states sorted by ID.
func WriteSummary(w io.Writer, res *Result) {
	ids := make([]string, 0, len(res.Final))
	for id := range res.Final {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := res.Final[id]
		fmt.Fprintf(w, "%-16s connected=%-5t destroyed=%-5t tracked=%-5t", id, s.Connected, s.Destroyed, s.Tracked)
		if s.Value != "" || s.Resolved {
			fmt.Fprintf(w, " value=%q", s.Value)
		}
		fmt.Fprintln(w)
	}
}
