package events

import (
	"fmt"
	"log/slog"
	"sync"

	"aerolink/pkg/ids"
	"aerolink/pkg/wire"
)

// EventCallback consumes a three-parameter event message.
type EventCallback func(m *wire.EventMsg)

// EventEx1Callback consumes a five-parameter event message.
type EventEx1Callback func(m *wire.EventEx1Msg)

type handlerKey struct {
	kind wire.RecvID
	id   uint32
}

type handlerEntry struct {
	seq   uint64
	auto  bool
	fn    EventCallback
	fnEx1 EventEx1Callback
}

// Handler owns everything event-shaped on one connection: publishing
// name↔id bindings to the host, group membership, per-event and per-group
// callbacks, and the send primitives.
type Handler struct {
	t     wire.Transport
	alloc *ids.Allocator
	log   *slog.Logger

	mu       sync.Mutex
	seq      uint64
	mapped   map[wire.EventID]struct{}
	perEvent map[handlerKey][]handlerEntry
	perGroup map[handlerKey][]handlerEntry
}

// NewHandler builds an event handler over a transport.
func NewHandler(t wire.Transport, alloc *ids.Allocator) *Handler {
	return &Handler{
		t:        t,
		alloc:    alloc,
		log:      slog.Default().With("component", "events"),
		mapped:   make(map[wire.EventID]struct{}),
		perEvent: make(map[handlerKey][]handlerEntry),
		perGroup: make(map[handlerKey][]handlerEntry),
	}
}

// MapEvent publishes the name↔id binding to the host, at most once per
// connection. Repeat calls and custom events are no-ops, so the host never
// sees a duplicate mapping for the same id.
func (h *Handler) MapEvent(e Event) error {
	if e.Custom() {
		return nil
	}
	h.mu.Lock()
	_, done := h.mapped[e.ID]
	if !done {
		h.mapped[e.ID] = struct{}{}
	}
	h.mu.Unlock()
	if done {
		return nil
	}

	if err := h.t.MapClientEventToSimEvent(e.ID, e.Name); err != nil {
		h.mu.Lock()
		delete(h.mapped, e.ID)
		h.mu.Unlock()
		return fmt.Errorf("map event %q: %w", e.Name, err)
	}
	return nil
}

// ResetMappings forgets which events were published. Called after a
// reconnect, when the host has lost all per-connection state.
func (h *Handler) ResetMappings() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.mapped)
}

// MappedEvents returns the ids published on this connection so far.
func (h *Handler) MappedEvents() []wire.EventID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]wire.EventID, 0, len(h.mapped))
	for id := range h.mapped {
		out = append(out, id)
	}
	return out
}

// SendEvent transmits an event with the group selecting its priority.
func (h *Handler) SendEvent(e Event, group wire.GroupID, data uint32) error {
	if err := h.MapEvent(e); err != nil {
		return err
	}
	return h.t.TransmitClientEvent(wire.ObjectIDUser, e.ID, data, group, 0)
}

// SendEventWithPriority transmits an event carrying an explicit priority
// instead of a group id.
func (h *Handler) SendEventWithPriority(e Event, priority wire.Priority, data uint32) error {
	if err := h.MapEvent(e); err != nil {
		return err
	}
	return h.t.TransmitClientEvent(wire.ObjectIDUser, e.ID, data,
		wire.GroupID(priority), wire.EventFlagGroupIDIsPriority)
}

func (h *Handler) addEntry(m map[handlerKey][]handlerEntry, key handlerKey, e handlerEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	e.seq = h.seq
	m[key] = append(m[key], e)
}

// OnEvent attaches a callback for one event id until removed.
func (h *Handler) OnEvent(e Event, fn EventCallback) {
	h.addEntry(h.perEvent, handlerKey{wire.RecvEvent, uint32(e.ID)}, handlerEntry{fn: fn})
}

// OnEventOnce attaches a callback that detaches itself after one delivery.
func (h *Handler) OnEventOnce(e Event, fn EventCallback) {
	h.addEntry(h.perEvent, handlerKey{wire.RecvEvent, uint32(e.ID)}, handlerEntry{fn: fn, auto: true})
}

// OnEventEx1 attaches a callback for the five-parameter form of an event.
func (h *Handler) OnEventEx1(e Event, fn EventEx1Callback) {
	h.addEntry(h.perEvent, handlerKey{wire.RecvEventEx1, uint32(e.ID)}, handlerEntry{fnEx1: fn})
}

// OnGroup attaches a callback fired for every event arriving via a group,
// after any per-event callbacks.
func (h *Handler) OnGroup(group wire.GroupID, fn EventCallback) {
	h.addEntry(h.perGroup, handlerKey{wire.RecvEvent, uint32(group)}, handlerEntry{fn: fn})
}

// OnGroupOnce attaches a group callback that detaches after one delivery.
func (h *Handler) OnGroupOnce(group wire.GroupID, fn EventCallback) {
	h.addEntry(h.perGroup, handlerKey{wire.RecvEvent, uint32(group)}, handlerEntry{fn: fn, auto: true})
}

// OnGroupEx1 attaches a group callback for five-parameter events.
func (h *Handler) OnGroupEx1(group wire.GroupID, fn EventEx1Callback) {
	h.addEntry(h.perGroup, handlerKey{wire.RecvEventEx1, uint32(group)}, handlerEntry{fnEx1: fn})
}

// RemoveEventHandlers detaches every per-event callback for e, both forms.
func (h *Handler) RemoveEventHandlers(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.perEvent, handlerKey{wire.RecvEvent, uint32(e.ID)})
	delete(h.perEvent, handlerKey{wire.RecvEventEx1, uint32(e.ID)})
}

// RemoveGroupHandlers detaches every per-group callback for group.
func (h *Handler) RemoveGroupHandlers(group wire.GroupID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.perGroup, handlerKey{wire.RecvEvent, uint32(group)})
	delete(h.perGroup, handlerKey{wire.RecvEventEx1, uint32(group)})
}

// HandleEvent dispatches one inbound event. Per-event callbacks run first,
// then per-group callbacks, each set in registration order. Auto-removing
// entries are dropped after their callback returns.
func (h *Handler) HandleEvent(m *wire.EventMsg) {
	evKey := handlerKey{wire.RecvEvent, uint32(m.EventID)}
	grpKey := handlerKey{wire.RecvEvent, uint32(m.GroupID)}

	perEvent := h.snapshot(h.perEvent, evKey)
	perGroup := h.snapshot(h.perGroup, grpKey)
	if len(perEvent) == 0 && len(perGroup) == 0 {
		h.log.Debug("unhandled event", "event", m.EventID, "group", m.GroupID)
		return
	}

	for _, e := range perEvent {
		e.fn(m)
		h.dropIfAuto(h.perEvent, evKey, e)
	}
	for _, e := range perGroup {
		e.fn(m)
		h.dropIfAuto(h.perGroup, grpKey, e)
	}
}

// HandleEventEx1 dispatches one inbound five-parameter event.
func (h *Handler) HandleEventEx1(m *wire.EventEx1Msg) {
	evKey := handlerKey{wire.RecvEventEx1, uint32(m.EventID)}
	grpKey := handlerKey{wire.RecvEventEx1, uint32(m.GroupID)}

	for _, e := range h.snapshot(h.perEvent, evKey) {
		e.fnEx1(m)
		h.dropIfAuto(h.perEvent, evKey, e)
	}
	for _, e := range h.snapshot(h.perGroup, grpKey) {
		e.fnEx1(m)
		h.dropIfAuto(h.perGroup, grpKey, e)
	}
}

func (h *Handler) snapshot(m map[handlerKey][]handlerEntry, key handlerKey) []handlerEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := m[key]
	if len(entries) == 0 {
		return nil
	}
	out := make([]handlerEntry, len(entries))
	copy(out, entries)
	return out
}

func (h *Handler) dropIfAuto(m map[handlerKey][]handlerEntry, key handlerKey, e handlerEntry) {
	if !e.auto {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := m[key]
	for i, cur := range entries {
		if cur.seq == e.seq {
			m[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(m[key]) == 0 {
		delete(m, key)
	}
}

// OnSystemEvent subscribes to a host system event ("4sec", "Pause",
// "AircraftLoaded", ...) and attaches a callback for it. The returned event
// cancels the subscription via UnsubscribeSystemEvent.
func (h *Handler) OnSystemEvent(name string, fn EventCallback) (Event, error) {
	e := Get(name)
	if err := h.t.SubscribeToSystemEvent(e.ID, e.Name); err != nil {
		return Event{}, fmt.Errorf("subscribe to system event %q: %w", name, err)
	}
	h.OnEvent(e, fn)
	return e, nil
}

// UnsubscribeSystemEvent tears down a system event subscription and its
// callbacks.
func (h *Handler) UnsubscribeSystemEvent(e Event) error {
	h.RemoveEventHandlers(e)
	if err := h.t.UnsubscribeFromSystemEvent(e.ID); err != nil {
		return fmt.Errorf("unsubscribe system event %q: %w", e.Name, err)
	}
	return nil
}
