// Package ids hands out the identifier families the SimConnect protocol
// needs: data definitions, data requests, notification groups, input groups
// and client events. Counters are monotonic and never reused within a
// process.
package ids

import (
	"errors"
	"sync/atomic"

	"aerolink/pkg/wire"
)

// Host-imposed ceilings. Only the group ceiling is enforced locally, because
// exceeding it would silently corrupt priority arbitration; the remaining
// limits are policed by the host itself.
const (
	MaxGroups        = 20 // notification + input groups combined
	MaxEventMappings = 1000
	MaxRequests      = 1000
	MaxObjects       = 1000
)

// ErrTooManyGroups is returned when a 21st group would be created.
var ErrTooManyGroups = errors.New("too many groups (host limit 20)")

// Allocator owns one counter per id family. Counters start at 1 so the zero
// value of each id type stays free as a "not set" marker. The zero Allocator
// is ready to use.
type Allocator struct {
	defineID  atomic.Uint32
	requestID atomic.Uint32
	groupID   atomic.Uint32 // shared by notification and input groups
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// NextDefineID allocates a data-definition id.
func (a *Allocator) NextDefineID() wire.DefineID {
	return wire.DefineID(a.defineID.Add(1))
}

// NextRequestID allocates a data-request id.
func (a *Allocator) NextRequestID() wire.RequestID {
	return wire.RequestID(a.requestID.Add(1))
}

// NextGroupID allocates a notification-group id. The 20-group ceiling spans
// both group families; a failed allocation leaves earlier groups untouched.
func (a *Allocator) NextGroupID() (wire.GroupID, error) {
	id := a.groupID.Add(1)
	if id > MaxGroups {
		a.groupID.Add(^uint32(0)) // undo
		return 0, ErrTooManyGroups
	}
	return wire.GroupID(id), nil
}

// NextInputGroupID allocates an input-group id from the same ceiling.
func (a *Allocator) NextInputGroupID() (wire.InputGroupID, error) {
	id, err := a.NextGroupID()
	if err != nil {
		return 0, err
	}
	return wire.InputGroupID(id), nil
}
