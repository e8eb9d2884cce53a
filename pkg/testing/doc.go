// Package testing provides helpers for testing controllers and hosts.
//
// # Quick Start
//
// Create a tester, mount a host, and assert on recorder state:
//
//	func TestMyController(t *testing.T) {
//	    tester := hosttest.NewTester(t)
//	    panel := element.New("panel")
//	    recorder := hosttest.NewRecorder(panel, "recorder", controller.NoAlias())
//
//	    tester.Mount(panel)
//	    if !recorder.Connected {
//	        t.Error("expected recorder to connect with its host")
//	    }
//	}
//
// # Deferred work
//
// Controllers added to a connected host connect one loop tick later. Use
// Pump to run exactly one tick, or PumpAndSettle to run until no work is left.
//
// # Finders
//
// Locate controllers anywhere in the document:
//
//	tester.Find(hosttest.ByAlias(controller.Named("autosave"))).First()
//
// # Snapshots
//
// Capture the tree with controllers and connection state as text:
//
//	got := hosttest.CaptureSnapshot(tester.Document())
package testing
