package client

import (
	"fmt"

	"aerolink/pkg/data"
	"aerolink/pkg/registry"
	"aerolink/pkg/wire"
)

// Def is a data definition registered with the host on one connection. It
// pairs the host-side define id with the codec for records of type T.
type Def[T any] struct {
	c   *Connection
	id  wire.DefineID
	def *data.Definition[T]
}

// Register declares a definition to the host and returns the handle used
// by the request and set operations. Definitions do not survive a
// reconnect; the manager re-registers pending ones after each open.
func Register[T any](c *Connection, def *data.Definition[T]) (*Def[T], error) {
	id := c.alloc.NextDefineID()
	if err := def.RegisterTo(c.t, id); err != nil {
		return nil, err
	}
	return &Def[T]{c: c, id: id, def: def}, nil
}

// ID returns the host-side define id.
func (d *Def[T]) ID() wire.DefineID { return d.id }

// Clear removes the definition from the host. The handle must not be used
// afterwards.
func (d *Def[T]) Clear() error {
	return d.c.t.ClearDataDefinition(d.id)
}

// RequestOptions tune a periodic data request.
type RequestOptions struct {
	// ChangedOnly suppresses deliveries when no field moved past its
	// epsilon.
	ChangedOnly bool
	// Tagged asks for datum-id prefixed blocks carrying only the changed
	// fields.
	Tagged bool
	// Origin, Interval and Limit gate which periods actually deliver.
	Origin   uint32
	Interval uint32
	Limit    uint32
}

func (o RequestOptions) flags() uint32 {
	var f uint32
	if o.ChangedOnly {
		f |= wire.DataRequestFlagChanged
	}
	if o.Tagged {
		f |= wire.DataRequestFlagTagged
	}
	return f
}

// RequestOnce asks for a single snapshot of one object. The callback runs
// on the polling goroutine with either a decoded record or a decode error.
func RequestOnce[T any](d *Def[T], object wire.ObjectID, fn func(*T, error)) error {
	req := d.c.alloc.NextRequestID()
	d.c.reqs.SetOnce(req, func(f wire.Frame) {
		fn(decodeRecord(d, f))
	})
	if err := d.c.t.RequestDataOnSimObject(req, d.id, object, wire.PeriodOnce, 0, 0, 0, 0); err != nil {
		d.c.reqs.Remove(req)
		return fmt.Errorf("request data once: %w", err)
	}
	return nil
}

// Request starts a recurring data feed for one object. Dropping the
// returned handle without stopping it leaks the host-side subscription
// until the connection closes; Stop emits a period-never frame and removes
// the local handler.
func Request[T any](d *Def[T], object wire.ObjectID, period wire.Period, opts RequestOptions, fn func(*T, error)) (*registry.Request, error) {
	req := d.c.alloc.NextRequestID()
	d.c.reqs.Set(req, func(f wire.Frame) bool {
		fn(decodeRecord(d, f))
		return false
	})
	if err := d.c.t.RequestDataOnSimObject(req, d.id, object, period, opts.flags(),
		opts.Origin, opts.Interval, opts.Limit); err != nil {
		d.c.reqs.Remove(req)
		return nil, fmt.Errorf("request data: %w", err)
	}

	return registry.NewRequest(req, func() error {
		d.c.reqs.Remove(req)
		if !d.c.IsOpen() {
			return nil
		}
		if err := d.c.t.RequestDataOnSimObject(req, d.id, object, wire.PeriodNever, 0, 0, 0, 0); err != nil {
			return fmt.Errorf("stop request %d: %w", req, err)
		}
		return nil
	}), nil
}

// RequestByType asks for a snapshot of every object of a type within a
// radius. fn runs once per object; done runs after the final page.
func RequestByType[T any](d *Def[T], radiusMeters uint32, objectType wire.SimObjectType, fn func(wire.ObjectID, *T, error), done func()) error {
	req := d.c.alloc.NextRequestID()
	d.c.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeSimObjectData(f)
		if err != nil {
			fn(0, nil, err)
			return true
		}
		var rec T
		if err := d.def.UnmarshalMessage(m, &rec); err != nil {
			fn(m.ObjectID, nil, err)
		} else {
			fn(m.ObjectID, &rec, nil)
		}
		if m.EntryNumber+1 >= m.OutOf {
			if done != nil {
				done()
			}
			return true
		}
		return false
	})
	if err := d.c.t.RequestDataOnSimObjectType(req, d.id, radiusMeters, objectType); err != nil {
		d.c.reqs.Remove(req)
		return fmt.Errorf("request data by type: %w", err)
	}
	return nil
}

// SetData pushes one record onto an object.
func SetData[T any](d *Def[T], object wire.ObjectID, rec *T) error {
	block, err := d.def.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := d.c.t.SetDataOnSimObject(d.id, object, 0, 0, block); err != nil {
		return fmt.Errorf("set data: %w", err)
	}
	return nil
}

func decodeRecord[T any](d *Def[T], f wire.Frame) (*T, error) {
	m, err := wire.DecodeSimObjectData(f)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := d.def.UnmarshalMessage(m, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
