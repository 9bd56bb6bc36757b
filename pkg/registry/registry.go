// Package registry tracks who is waiting for what: handlers subscribed to
// message kinds, handlers tied to outstanding request ids, and the send ids
// needed to pin host exceptions back to the call that caused them.
package registry

import (
	"sync"
	"sync/atomic"

	"aerolink/pkg/wire"
)

// MessageHandler consumes one received frame.
type MessageHandler func(f wire.Frame)

// RequestHandler consumes one frame correlated to a request id. Returning
// true marks the request complete and drops the registration.
type RequestHandler func(f wire.Frame) bool

// Registration is a removable handle for a kind-level handler.
type Registration struct {
	remove func()
	once   sync.Once
}

// Remove unsubscribes the handler. Safe to call more than once.
func (r *Registration) Remove() {
	if r == nil {
		return
	}
	r.once.Do(r.remove)
}

type kindEntry struct {
	id uint64
	fn MessageHandler
}

// HandlerRegistry fans received frames out to handlers subscribed by
// message kind. Handlers for the same kind run in registration order.
type HandlerRegistry struct {
	mu      sync.RWMutex
	nextID  uint64
	byKind  map[wire.RecvID][]kindEntry
	anyKind []kindEntry
}

// NewHandlerRegistry returns an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byKind: make(map[wire.RecvID][]kindEntry)}
}

// On subscribes fn to every frame of the given kind.
func (h *HandlerRegistry) On(kind wire.RecvID, fn MessageHandler) *Registration {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.byKind[kind] = append(h.byKind[kind], kindEntry{id: id, fn: fn})
	return &Registration{remove: func() { h.removeKind(kind, id) }}
}

// OnAny subscribes fn to every frame regardless of kind. Catch-all handlers
// run after the kind-specific ones.
func (h *HandlerRegistry) OnAny(fn MessageHandler) *Registration {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.anyKind = append(h.anyKind, kindEntry{id: id, fn: fn})
	return &Registration{remove: func() { h.removeAny(id) }}
}

func (h *HandlerRegistry) removeKind(kind wire.RecvID, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byKind[kind] = dropEntry(h.byKind[kind], id)
	if len(h.byKind[kind]) == 0 {
		delete(h.byKind, kind)
	}
}

func (h *HandlerRegistry) removeAny(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.anyKind = dropEntry(h.anyKind, id)
}

func dropEntry(entries []kindEntry, id uint64) []kindEntry {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}

// Dispatch delivers one frame to all matching handlers. Handlers run on the
// caller's goroutine without the registry lock held, so a handler may
// register or remove handlers.
func (h *HandlerRegistry) Dispatch(f wire.Frame) {
	h.mu.RLock()
	matched := make([]MessageHandler, 0, len(h.byKind[f.Kind()])+len(h.anyKind))
	for _, e := range h.byKind[f.Kind()] {
		matched = append(matched, e.fn)
	}
	for _, e := range h.anyKind {
		matched = append(matched, e.fn)
	}
	h.mu.RUnlock()

	for _, fn := range matched {
		fn(f)
	}
}

// HandlerCount reports the number of live registrations, catch-alls
// included.
func (h *HandlerRegistry) HandlerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.anyKind)
	for _, entries := range h.byKind {
		n += len(entries)
	}
	return n
}

// RequestRegistry routes frames to the handler registered for their
// request id. One handler per request id; re-registering replaces.
type RequestRegistry struct {
	mu       sync.Mutex
	nextGen  uint64
	handlers map[wire.RequestID]requestEntry
}

type requestEntry struct {
	gen uint64
	fn  RequestHandler
}

// NewRequestRegistry returns an empty registry.
func NewRequestRegistry() *RequestRegistry {
	return &RequestRegistry{handlers: make(map[wire.RequestID]requestEntry)}
}

// Set registers fn for a request id until it reports completion or is
// removed.
func (r *RequestRegistry) Set(req wire.RequestID, fn RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextGen++
	r.handlers[req] = requestEntry{gen: r.nextGen, fn: fn}
}

// SetOnce registers fn for exactly one frame.
func (r *RequestRegistry) SetOnce(req wire.RequestID, fn MessageHandler) {
	r.Set(req, func(f wire.Frame) bool {
		fn(f)
		return true
	})
}

// Remove drops the handler for a request id, reporting whether one existed.
func (r *RequestRegistry) Remove(req wire.RequestID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handlers[req]
	delete(r.handlers, req)
	return ok
}

// Clear drops every registration.
func (r *RequestRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.handlers)
}

// Len reports the number of outstanding requests.
func (r *RequestRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Dispatch routes a frame carrying a request id to its handler. It reports
// whether a handler consumed the frame. Frames without a correlation id or
// for unknown request ids are left to kind-level handlers.
func (r *RequestRegistry) Dispatch(f wire.Frame) bool {
	req, ok := wire.CorrelationID(f)
	if !ok {
		return false
	}
	r.mu.Lock()
	e, ok := r.handlers[req]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if e.fn(f) {
		r.mu.Lock()
		// the handler may have re-registered the id; only drop our own entry
		if cur, still := r.handlers[req]; still && cur.gen == e.gen {
			delete(r.handlers, req)
		}
		r.mu.Unlock()
	}
	return true
}

// sendTrackerSize bounds how many in-flight calls can be correlated to a
// later exception. The host answers quickly, so a small ring suffices.
const sendTrackerSize = 256

type sendRecord struct {
	id atomic.Uint32
	op atomic.Pointer[string]
}

// SendTracker remembers the operation name behind each send id so that a
// later EXCEPTION frame can name the call that failed. Fixed-size ring,
// oldest entries overwritten.
type SendTracker struct {
	ring [sendTrackerSize]sendRecord
}

// NewSendTracker returns an empty tracker.
func NewSendTracker() *SendTracker {
	return &SendTracker{}
}

// Record associates an operation name with a send id.
func (s *SendTracker) Record(id wire.SendID, op string) {
	slot := &s.ring[uint32(id)%sendTrackerSize]
	slot.op.Store(&op)
	slot.id.Store(uint32(id))
}

// Lookup returns the operation recorded for a send id, if still present.
func (s *SendTracker) Lookup(id wire.SendID) (string, bool) {
	slot := &s.ring[uint32(id)%sendTrackerSize]
	if slot.id.Load() != uint32(id) {
		return "", false
	}
	if op := slot.op.Load(); op != nil {
		return *op, true
	}
	return "", false
}
