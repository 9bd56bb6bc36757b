package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/data"
	"aerolink/pkg/wire"
)

func frameOfKind(kind wire.RecvID, payload []byte) wire.Frame {
	b := data.NewBlockBuilder()
	b.AddUint32(uint32(12 + len(payload)))
	b.AddUint32(0)
	b.AddUint32(uint32(kind))
	f := append(wire.Frame(nil), b.Bytes()...)
	return append(f, payload...)
}

func eventFrame(req wire.RequestID, kind wire.RecvID) wire.Frame {
	// correlation-bearing payloads start with the request id
	payload := data.NewBlockBuilder().AddUint32(uint32(req)).AddUint32(0).Bytes()
	return frameOfKind(kind, payload)
}

func TestHandlerRegistryDispatchByKind(t *testing.T) {
	h := NewHandlerRegistry()

	var got []string
	h.On(wire.RecvQuit, func(f wire.Frame) { got = append(got, "quit1") })
	h.On(wire.RecvQuit, func(f wire.Frame) { got = append(got, "quit2") })
	h.On(wire.RecvOpen, func(f wire.Frame) { got = append(got, "open") })
	h.OnAny(func(f wire.Frame) { got = append(got, "any") })

	h.Dispatch(frameOfKind(wire.RecvQuit, nil))
	assert.Equal(t, []string{"quit1", "quit2", "any"}, got)

	got = nil
	h.Dispatch(frameOfKind(wire.RecvOpen, nil))
	assert.Equal(t, []string{"open", "any"}, got)
}

func TestHandlerRegistryRemove(t *testing.T) {
	h := NewHandlerRegistry()

	calls := 0
	reg := h.On(wire.RecvEvent, func(f wire.Frame) { calls++ })
	require.Equal(t, 1, h.HandlerCount())

	h.Dispatch(frameOfKind(wire.RecvEvent, make([]byte, 16)))
	reg.Remove()
	reg.Remove() // idempotent
	h.Dispatch(frameOfKind(wire.RecvEvent, make([]byte, 16)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, h.HandlerCount())
}

func TestHandlerRegistryReentrantRemove(t *testing.T) {
	h := NewHandlerRegistry()

	var reg *Registration
	calls := 0
	reg = h.On(wire.RecvQuit, func(f wire.Frame) {
		calls++
		reg.Remove()
	})

	h.Dispatch(frameOfKind(wire.RecvQuit, nil))
	h.Dispatch(frameOfKind(wire.RecvQuit, nil))
	assert.Equal(t, 1, calls)
}

func TestRequestRegistryRoutesAndCompletes(t *testing.T) {
	r := NewRequestRegistry()

	var seen int
	r.Set(5, func(f wire.Frame) bool {
		seen++
		return seen == 2
	})

	f := eventFrame(5, wire.RecvSimObjectData)
	assert.True(t, r.Dispatch(f))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Dispatch(f))
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Dispatch(f), "completed request no longer consumes")
	assert.Equal(t, 2, seen)
}

func TestRequestRegistrySetOnce(t *testing.T) {
	r := NewRequestRegistry()

	calls := 0
	r.SetOnce(9, func(f wire.Frame) { calls++ })

	f := eventFrame(9, wire.RecvSimObjectDataByType)
	assert.True(t, r.Dispatch(f))
	assert.False(t, r.Dispatch(f))
	assert.Equal(t, 1, calls)
}

func TestRequestRegistryIgnoresUncorrelatedKinds(t *testing.T) {
	r := NewRequestRegistry()
	r.SetOnce(1, func(f wire.Frame) { t.Fatal("should not fire") })

	// QUIT carries no request id even if its payload looks like one
	assert.False(t, r.Dispatch(eventFrame(1, wire.RecvQuit)))
	assert.Equal(t, 1, r.Len())
}

func TestRequestRegistryHandlerReregisters(t *testing.T) {
	r := NewRequestRegistry()

	second := 0
	r.Set(3, func(f wire.Frame) bool {
		r.Set(3, func(f wire.Frame) bool {
			second++
			return true
		})
		return true // done, but the replacement must survive
	})

	f := eventFrame(3, wire.RecvSimObjectData)
	assert.True(t, r.Dispatch(f))
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Dispatch(f))
	assert.Equal(t, 1, second)
}

func TestRequestRemoveAndClear(t *testing.T) {
	r := NewRequestRegistry()
	r.SetOnce(1, func(wire.Frame) {})
	r.SetOnce(2, func(wire.Frame) {})

	assert.True(t, r.Remove(1))
	assert.False(t, r.Remove(1))
	r.Clear()
	assert.Equal(t, 0, r.Len())
}

func TestRequestHandleStopOnce(t *testing.T) {
	stops := 0
	req := NewRequest(7, func() error {
		stops++
		return fmt.Errorf("boom %d", stops)
	})

	assert.Equal(t, wire.RequestID(7), req.ID())
	err1 := req.Stop()
	err2 := req.Close()
	assert.Equal(t, 1, stops)
	assert.EqualError(t, err1, "boom 1")
	assert.Same(t, err1, err2)
}

func TestSendTracker(t *testing.T) {
	s := NewSendTracker()
	s.Record(11, "TransmitClientEvent")
	s.Record(12, "AddToDataDefinition")

	op, ok := s.Lookup(11)
	require.True(t, ok)
	assert.Equal(t, "TransmitClientEvent", op)

	_, ok = s.Lookup(99)
	assert.False(t, ok)
}

func TestSendTrackerOverwrite(t *testing.T) {
	s := NewSendTracker()
	s.Record(1, "old")
	s.Record(1+sendTrackerSize, "new")

	_, ok := s.Lookup(1)
	assert.False(t, ok, "slot reused by a newer send id")
	op, ok := s.Lookup(1 + sendTrackerSize)
	require.True(t, ok)
	assert.Equal(t, "new", op)
}
