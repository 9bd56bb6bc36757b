// Package events maps logical event names to numeric ids, groups events for
// sending and receiving, and dispatches inbound event messages to per-event
// and per-group callbacks.
package events

import (
	"strconv"
	"strings"
	"sync"

	"aerolink/pkg/wire"
)

// Event pairs a stable numeric id with the name it was allocated for.
// Events outlive connections; the same Event value can be used across
// reconnects.
type Event struct {
	ID   wire.EventID
	Name string
}

// Custom reports whether the event lives in the client-defined id range,
// which needs no host-side name negotiation.
func (e Event) Custom() bool { return e.ID >= wire.CustomEventMin }

func (e Event) String() string { return e.Name }

// NameRegistry is an append-only bidirectional name↔id map. Ids are never
// reallocated; looking a name up twice returns the same event.
type NameRegistry struct {
	mu     sync.RWMutex
	byName map[string]wire.EventID
	byID   map[wire.EventID]string
	next   wire.EventID
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		byName: make(map[string]wire.EventID),
		byID:   make(map[wire.EventID]string),
	}
}

var defaultNames = NewNameRegistry()

// Get resolves a name in the process-wide registry.
func Get(name string) Event { return defaultNames.Get(name) }

// NameOf resolves an id back to its name in the process-wide registry.
func NameOf(id wire.EventID) (string, bool) { return defaultNames.NameOf(id) }

// Get returns the event registered under name, allocating an id on first
// use. Names of the form "#N" carry their id in the name itself, offset
// into the custom range.
func (r *NameRegistry) Get(name string) Event {
	r.mu.RLock()
	id, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return Event{ID: id, Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok = r.byName[name]; ok {
		return Event{ID: id, Name: name}
	}

	if n, ok := customNumber(name); ok {
		id = wire.CustomEventMin + wire.EventID(n)
	} else {
		r.next++
		id = r.next
	}
	r.byName[name] = id
	if _, taken := r.byID[id]; !taken {
		r.byID[id] = name
	}
	return Event{ID: id, Name: name}
}

// NameOf returns the name an id was first registered under.
func (r *NameRegistry) NameOf(id wire.EventID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byID[id]
	return name, ok
}

// Len reports the number of registered names.
func (r *NameRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func customNumber(name string) (uint32, bool) {
	rest, ok := strings.CutPrefix(name, "#")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
