package client

import (
	"fmt"

	"aerolink/pkg/wire"
)

// CreateAircraft spawns an AI aircraft without ATC control. The callback
// receives the object id the host assigned.
func (c *Connection) CreateAircraft(title, tailNumber string, pos wire.InitPosition, fn func(wire.ObjectID, error)) error {
	req := c.alloc.NextRequestID()
	c.reqs.SetOnce(req, func(f wire.Frame) {
		m, err := wire.DecodeAssignedObjectID(f)
		if err != nil {
			fn(0, err)
			return
		}
		fn(m.ObjectID, nil)
	})
	if err := c.t.AICreateNonATCAircraft(title, tailNumber, pos, req); err != nil {
		c.reqs.Remove(req)
		return fmt.Errorf("create aircraft %q: %w", title, err)
	}
	return nil
}

// CreateSimulatedObject spawns a non-aircraft object (ground vehicle,
// animal, scenery object).
func (c *Connection) CreateSimulatedObject(title string, pos wire.InitPosition, fn func(wire.ObjectID, error)) error {
	req := c.alloc.NextRequestID()
	c.reqs.SetOnce(req, func(f wire.Frame) {
		m, err := wire.DecodeAssignedObjectID(f)
		if err != nil {
			fn(0, err)
			return
		}
		fn(m.ObjectID, nil)
	})
	if err := c.t.AICreateSimulatedObject(title, pos, req); err != nil {
		c.reqs.Remove(req)
		return fmt.Errorf("create object %q: %w", title, err)
	}
	return nil
}

// ReleaseControl hands an AI object back to the host's own AI.
func (c *Connection) ReleaseControl(object wire.ObjectID) error {
	return c.t.AIReleaseControl(object, c.alloc.NextRequestID())
}

// RemoveObject despawns an AI object created by this client.
func (c *Connection) RemoveObject(object wire.ObjectID) error {
	return c.t.AIRemoveObject(object, c.alloc.NextRequestID())
}

// LoadFlightPlan loads a flight plan file into the user's aircraft.
func (c *Connection) LoadFlightPlan(path string) error {
	return c.t.FlightPlanLoad(path)
}

// RequestSystemState asks for one named state value ("Sim", "Pause",
// "FlightLoaded", ...). The answer is correlated by request id like any
// data reply.
func (c *Connection) RequestSystemState(name string, fn func(*wire.SystemStateMsg, error)) error {
	req := c.alloc.NextRequestID()
	c.reqs.SetOnce(req, func(f wire.Frame) {
		fn(wire.DecodeSystemState(f))
	})
	if err := c.t.RequestSystemState(req, name); err != nil {
		c.reqs.Remove(req)
		return fmt.Errorf("request system state %q: %w", name, err)
	}
	return nil
}

// SetSystemState writes one named state value.
func (c *Connection) SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error {
	return c.t.SetSystemState(name, intValue, floatValue, stringValue)
}

// EnumerateObjects lists every installed sim object of a type together
// with its liveries. Multi-part replies are accumulated; fn runs once with
// the full list.
func (c *Connection) EnumerateObjects(objectType wire.SimObjectType, fn func([]wire.SimObjectLivery, error)) error {
	req := c.alloc.NextRequestID()
	var acc []wire.SimObjectLivery
	c.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeSimObjectAndLiveryList(f)
		if err != nil {
			fn(nil, err)
			return true
		}
		acc = append(acc, m.Entries...)
		if m.LastPart() {
			fn(acc, nil)
			return true
		}
		return false
	})
	if err := c.t.EnumerateSimObjectsAndLiveries(req, objectType); err != nil {
		c.reqs.Remove(req)
		return fmt.Errorf("enumerate objects: %w", err)
	}
	return nil
}
