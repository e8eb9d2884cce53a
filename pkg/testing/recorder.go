package testing

import "github.com/go-drift/hostkit/pkg/controller"

// Recorder is a controller that records its lifecycle.
type Recorder struct {
	controller.Base

	Name      string
	Connected bool
	Destroyed bool
	Events    []string

	journal *Journal
}

// NewRecorder creates a recorder on host.
func NewRecorder(host controller.Host, name string, alias controller.Alias) *Recorder {
	p := &Recorder{Name: name}
	p.Init(p, host, alias)
	return p
}

// NewJournaledRecorder creates a recorder that also writes its events to j, so
// ordering across recorders can be asserted.
func NewJournaledRecorder(host controller.Host, name string, alias controller.Alias, j *Journal) *Recorder {
	p := &Recorder{Name: name, journal: j}
	p.Init(p, host, alias)
	return p
}

func (p *Recorder) record(event string) {
	p.Events = append(p.Events, event)
	if p.journal != nil {
		p.journal.Add(p.Name + ":" + event)
	}
}

func (p *Recorder) HostConnected() {
	if p.IsDestroyed() {
		return
	}
	p.Base.HostConnected()
	p.Connected = true
	p.record("connected")
}

func (p *Recorder) HostDisconnected() {
	p.Base.HostDisconnected()
	p.Connected = false
	p.record("disconnected")
}

func (p *Recorder) Destroy() {
	if p.IsDestroyed() {
		return
	}
	p.Base.Destroy()
	p.Destroyed = true
	p.record("destroyed")
}

// Journal is an ordered log of recorder events.
type Journal struct {
	entries []string
}

// Add appends an entry.
func (j *Journal) Add(entry string) {
	j.entries = append(j.entries, entry)
}

// Entries returns the recorded entries.
func (j *Journal) Entries() []string {
	return j.entries
}

// Reset clears the journal.
func (j *Journal) Reset() {
	j.entries = nil
}
