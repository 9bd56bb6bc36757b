package events

import (
	"fmt"

	"aerolink/pkg/wire"
)

// NotificationGroup is a built, host-registered group of receivable events.
type NotificationGroup struct {
	id       wire.GroupID
	priority wire.Priority
	h        *Handler
}

// ID returns the group id used in event messages for this group.
func (g *NotificationGroup) ID() wire.GroupID { return g.id }

// Priority returns the arbitration level the group was built with.
func (g *NotificationGroup) Priority() wire.Priority { return g.priority }

// RemoveEvent drops one event from the group on the host.
func (g *NotificationGroup) RemoveEvent(e Event) error {
	return g.h.t.RemoveClientEvent(g.id, e.ID)
}

// Clear empties the group on the host. Handlers stay attached.
func (g *NotificationGroup) Clear() error {
	return g.h.t.ClearNotificationGroup(g.id)
}

// NotificationGroupBuilder assembles a notification group. Errors stick:
// after the first failure every later call is a no-op and Build returns the
// failure.
type NotificationGroupBuilder struct {
	h        *Handler
	id       wire.GroupID
	priority wire.Priority
	err      error
}

// NotificationGroup starts building a notification group with default
// priority. The group id is allocated immediately and counts against the
// combined group ceiling.
func (h *Handler) NotificationGroup() *NotificationGroupBuilder {
	b := &NotificationGroupBuilder{h: h, priority: wire.PriorityDefault}
	b.id, b.err = h.alloc.NextGroupID()
	return b
}

// WithPriority sets the group's arbitration level.
func (b *NotificationGroupBuilder) WithPriority(p wire.Priority) *NotificationGroupBuilder {
	b.priority = p
	return b
}

// WithHighestPriority is shorthand for WithPriority(PriorityHighest).
func (b *NotificationGroupBuilder) WithHighestPriority() *NotificationGroupBuilder {
	return b.WithPriority(wire.PriorityHighest)
}

// AddEvent maps the event if needed and adds it to the group.
func (b *NotificationGroupBuilder) AddEvent(e Event) *NotificationGroupBuilder {
	return b.add(e, false)
}

// AddMaskableEvent adds an event the group may consume before lower
// priority groups see it.
func (b *NotificationGroupBuilder) AddMaskableEvent(e Event) *NotificationGroupBuilder {
	return b.add(e, true)
}

func (b *NotificationGroupBuilder) add(e Event, maskable bool) *NotificationGroupBuilder {
	if b.err != nil {
		return b
	}
	if b.err = b.h.MapEvent(e); b.err != nil {
		return b
	}
	if err := b.h.t.AddClientEventToNotificationGroup(b.id, e.ID, maskable); err != nil {
		b.err = fmt.Errorf("add %q to group %d: %w", e.Name, b.id, err)
	}
	return b
}

// Build installs the group's priority on the host and returns the group.
func (b *NotificationGroupBuilder) Build() (*NotificationGroup, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.h.t.SetNotificationGroupPriority(b.id, b.priority); err != nil {
		return nil, fmt.Errorf("set priority on group %d: %w", b.id, err)
	}
	return &NotificationGroup{id: b.id, priority: b.priority, h: b.h}, nil
}

// InputGroup is a built, enabled set of key-chord bindings.
type InputGroup struct {
	id wire.InputGroupID
	h  *Handler
}

// ID returns the input group id.
func (g *InputGroup) ID() wire.InputGroupID { return g.id }

// SetEnabled toggles the whole group on the host.
func (g *InputGroup) SetEnabled(on bool) error {
	state := wire.InputStateOff
	if on {
		state = wire.InputStateOn
	}
	return g.h.t.SetInputGroupState(g.id, state)
}

// RemoveBinding detaches one key chord from the group.
func (g *InputGroup) RemoveBinding(chord string) error {
	return g.h.t.RemoveInputEvent(g.id, chord)
}

// Clear empties the group on the host.
func (g *InputGroup) Clear() error {
	return g.h.t.ClearInputGroup(g.id)
}

// InputGroupBuilder assembles an input group. Bindings are declared first;
// Enable publishes the priority, switches the group on, and returns it.
type InputGroupBuilder struct {
	h        *Handler
	id       wire.InputGroupID
	priority wire.Priority
	err      error
}

// InputGroup starts building an input group with default priority.
func (h *Handler) InputGroup() *InputGroupBuilder {
	b := &InputGroupBuilder{h: h, priority: wire.PriorityDefault}
	b.id, b.err = h.alloc.NextInputGroupID()
	return b
}

// WithPriority sets the group's arbitration level.
func (b *InputGroupBuilder) WithPriority(p wire.Priority) *InputGroupBuilder {
	b.priority = p
	return b
}

// BindKey binds a key chord ("Shift+B", "VK_MEDIA_PLAY_PAUSE", joystick
// button syntax) to an event fired on key-down.
func (b *InputGroupBuilder) BindKey(chord string, down Event) *InputGroupBuilder {
	return b.bind(chord, down, 0, Event{ID: wire.EventID(wire.Unused)}, 0)
}

// BindKeyUpDown binds a chord to separate key-down and key-up events with
// their payload values.
func (b *InputGroupBuilder) BindKeyUpDown(chord string, down Event, downValue uint32, up Event, upValue uint32) *InputGroupBuilder {
	return b.bind(chord, down, downValue, up, upValue)
}

func (b *InputGroupBuilder) bind(chord string, down Event, downValue uint32, up Event, upValue uint32) *InputGroupBuilder {
	if b.err != nil {
		return b
	}
	if b.err = b.h.MapEvent(down); b.err != nil {
		return b
	}
	if up.ID != wire.EventID(wire.Unused) {
		if b.err = b.h.MapEvent(up); b.err != nil {
			return b
		}
	}
	if err := b.h.t.MapInputEventToClientEvent(b.id, chord, down.ID, downValue, up.ID, upValue, false); err != nil {
		b.err = fmt.Errorf("bind %q in input group %d: %w", chord, b.id, err)
	}
	return b
}

// Enable publishes the group's priority, switches it on, and returns it.
func (b *InputGroupBuilder) Enable() (*InputGroup, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.h.t.SetInputGroupPriority(b.id, b.priority); err != nil {
		return nil, fmt.Errorf("set priority on input group %d: %w", b.id, err)
	}
	if err := b.h.t.SetInputGroupState(b.id, wire.InputStateOn); err != nil {
		return nil, fmt.Errorf("enable input group %d: %w", b.id, err)
	}
	return &InputGroup{id: b.id, h: b.h}, nil
}
