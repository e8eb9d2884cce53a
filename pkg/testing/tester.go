package testing

import (
	"errors"
	"testing"

	hkerrors "github.com/go-drift/hostkit/pkg/errors"
	"github.com/go-drift/hostkit/pkg/element"
	"github.com/go-drift/hostkit/pkg/loop"
)

// DefaultSettleTicks bounds PumpAndSettle.
const DefaultSettleTicks = 100

// ErrSettleTimeout is returned when PumpAndSettle exceeds its tick budget.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: loop did not settle")

// Tester owns an isolated loop and document and captures reported errors.
type Tester struct {
	t          testing.TB
	loop       *loop.Loop
	doc        *element.Document
	errs       []*hkerrors.HostError
	panics     []*hkerrors.PanicError
	prevLoop   *loop.Loop
	prevErrors hkerrors.ErrorHandler
}

// NewTester creates a tester and registers cleanup with t. The tester's loop
// becomes the default loop and error reports are captured until cleanup.
func NewTester(t testing.TB) *Tester {
	l := loop.New(loop.WithMaxDrainTicks(DefaultSettleTicks))
	tester := &Tester{
		t:        t,
		loop:     l,
		doc:      element.NewDocument(l),
		prevLoop: loop.Default(),
	}
	loop.SetDefault(l)
	tester.prevErrors = hkerrors.SetHandler(tester)
	t.Cleanup(tester.cleanup)
	return tester
}

func (t *Tester) cleanup() {
	t.doc.Close()
	loop.SetDefault(t.prevLoop)
	hkerrors.SetHandler(t.prevErrors)
}

// Loop returns the tester's loop.
func (t *Tester) Loop() *loop.Loop {
	return t.loop
}

// Document returns the tester's document.
func (t *Tester) Document() *element.Document {
	return t.doc
}

// Mount appends e to the document body, connecting it.
func (t *Tester) Mount(e *element.Element) {
	t.doc.Body().AppendChild(e)
}

// Unmount removes e from its parent, disconnecting it.
func (t *Tester) Unmount(e *element.Element) {
	e.Remove()
}

// Pump runs exactly one loop tick.
func (t *Tester) Pump() {
	t.loop.Tick()
}

// PumpAndSettle ticks until no work is pending.
func (t *Tester) PumpAndSettle() error {
	t.loop.Drain()
	if t.loop.Pending() > 0 {
		return ErrSettleTimeout
	}
	return nil
}

// Errors returns the errors reported since the tester was created.
func (t *Tester) Errors() []*hkerrors.HostError {
	return t.errs
}

// Panics returns the panics recovered since the tester was created.
func (t *Tester) Panics() []*hkerrors.PanicError {
	return t.panics
}

// HandleError implements errors.ErrorHandler.
func (t *Tester) HandleError(err *hkerrors.HostError) {
	t.errs = append(t.errs, err)
}

// HandlePanic implements errors.ErrorHandler.
func (t *Tester) HandlePanic(err *hkerrors.PanicError) {
	t.panics = append(t.panics, err)
}

// Find evaluates finder against the document body.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{controllers: finder.Evaluate(t.doc.Body()), finder: finder}
}
