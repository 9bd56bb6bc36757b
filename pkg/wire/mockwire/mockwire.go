// Package mockwire is an in-memory Transport double. Tests script the
// frames it should deliver and inspect the calls made against it.
package mockwire

import (
	"fmt"
	"sync"

	"aerolink/pkg/wire"
)

// Call records one outbound method invocation.
type Call struct {
	Method string
	Args   []any
}

// Transport implements wire.Transport against scripted state instead of the
// host SDK. The zero value is not usable; use New.
type Transport struct {
	mu     sync.Mutex
	open   bool
	calls  []Call
	queue  []wire.Frame
	sendID wire.SendID

	failAlways map[string]error
	failOnce   map[string]error

	// OpenErr, when set, makes Open fail without opening.
	OpenErr error
	// AutoOpenFrame, when true, enqueues an Open frame on each successful
	// Open call, the way the host acknowledges a new connection.
	AutoOpenFrame bool
	// AppName is stamped into the auto-generated Open frame.
	AppName string
}

// New returns an empty scripted transport.
func New() *Transport {
	return &Transport{
		failAlways: make(map[string]error),
		failOnce:   make(map[string]error),
		AppName:    "Mock Simulator",
	}
}

// Push appends frames to the dispatch queue.
func (t *Transport) Push(frames ...wire.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, frames...)
}

// FailWith makes every future call of method return err.
func (t *Transport) FailWith(method string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failAlways[method] = err
}

// FailOnce makes the next call of method return err, once.
func (t *Transport) FailOnce(method string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failOnce[method] = err
}

// SetOpenErr installs or clears the error returned by Open.
func (t *Transport) SetOpenErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.OpenErr = err
}

// Calls returns every recorded call, in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// CallsTo returns the recorded calls for one method.
func (t *Transport) CallsTo(method string) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times method was invoked.
func (t *Transport) CallCount(method string) int {
	return len(t.CallsTo(method))
}

// Opened reports whether the transport is currently open.
func (t *Transport) Opened() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// QueueLen returns the number of undelivered frames.
func (t *Transport) QueueLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

func (t *Transport) record(method string, args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return wire.ErrNotOpen
	}
	if err, ok := t.failOnce[method]; ok {
		delete(t.failOnce, method)
		return err
	}
	if err := t.failAlways[method]; err != nil {
		return err
	}
	t.sendID++
	t.calls = append(t.calls, Call{Method: method, Args: args})
	return nil
}

func (t *Transport) Open(clientName string, configIndex int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.OpenErr != nil {
		return t.OpenErr
	}
	if t.open {
		return fmt.Errorf("already open")
	}
	t.open = true
	t.calls = append(t.calls, Call{Method: "Open", Args: []any{clientName, configIndex}})
	if t.AutoOpenFrame {
		t.queue = append(t.queue, OpenFrame(t.AppName))
	}
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	t.queue = nil
	t.calls = append(t.calls, Call{Method: "Close"})
	return nil
}

func (t *Transport) NextDispatch() (wire.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil, wire.ErrNotOpen
	}
	if len(t.queue) == 0 {
		return nil, nil
	}
	f := t.queue[0]
	t.queue = t.queue[1:]
	return f, nil
}

func (t *Transport) LastSendID() (wire.SendID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return 0, wire.ErrNotOpen
	}
	return t.sendID, nil
}

func (t *Transport) MapClientEventToSimEvent(id wire.EventID, name string) error {
	return t.record("MapClientEventToSimEvent", id, name)
}

func (t *Transport) TransmitClientEvent(object wire.ObjectID, id wire.EventID, data uint32, group wire.GroupID, flags uint32) error {
	return t.record("TransmitClientEvent", object, id, data, group, flags)
}

func (t *Transport) AddClientEventToNotificationGroup(group wire.GroupID, id wire.EventID, maskable bool) error {
	return t.record("AddClientEventToNotificationGroup", group, id, maskable)
}

func (t *Transport) RemoveClientEvent(group wire.GroupID, id wire.EventID) error {
	return t.record("RemoveClientEvent", group, id)
}

func (t *Transport) SetNotificationGroupPriority(group wire.GroupID, priority wire.Priority) error {
	return t.record("SetNotificationGroupPriority", group, priority)
}

func (t *Transport) ClearNotificationGroup(group wire.GroupID) error {
	return t.record("ClearNotificationGroup", group)
}

func (t *Transport) MapInputEventToClientEvent(group wire.InputGroupID, inputDefinition string, downID wire.EventID, downValue uint32, upID wire.EventID, upValue uint32, maskable bool) error {
	return t.record("MapInputEventToClientEvent", group, inputDefinition, downID, downValue, upID, upValue, maskable)
}

func (t *Transport) SetInputGroupState(group wire.InputGroupID, state uint32) error {
	return t.record("SetInputGroupState", group, state)
}

func (t *Transport) SetInputGroupPriority(group wire.InputGroupID, priority wire.Priority) error {
	return t.record("SetInputGroupPriority", group, priority)
}

func (t *Transport) RemoveInputEvent(group wire.InputGroupID, inputDefinition string) error {
	return t.record("RemoveInputEvent", group, inputDefinition)
}

func (t *Transport) ClearInputGroup(group wire.InputGroupID) error {
	return t.record("ClearInputGroup", group)
}

func (t *Transport) AddToDataDefinition(def wire.DefineID, name, units string, datatype wire.DataType, epsilon float32, datumID uint32) error {
	return t.record("AddToDataDefinition", def, name, units, datatype, epsilon, datumID)
}

func (t *Transport) ClearDataDefinition(def wire.DefineID) error {
	return t.record("ClearDataDefinition", def)
}

func (t *Transport) RequestDataOnSimObject(req wire.RequestID, def wire.DefineID, object wire.ObjectID, period wire.Period, flags uint32, origin, interval, limit uint32) error {
	return t.record("RequestDataOnSimObject", req, def, object, period, flags, origin, interval, limit)
}

func (t *Transport) RequestDataOnSimObjectType(req wire.RequestID, def wire.DefineID, radiusMeters uint32, objectType wire.SimObjectType) error {
	return t.record("RequestDataOnSimObjectType", req, def, radiusMeters, objectType)
}

func (t *Transport) SetDataOnSimObject(def wire.DefineID, object wire.ObjectID, flags uint32, arrayCount uint32, data []byte) error {
	return t.record("SetDataOnSimObject", def, object, flags, arrayCount, data)
}

func (t *Transport) SubscribeToSystemEvent(id wire.EventID, name string) error {
	return t.record("SubscribeToSystemEvent", id, name)
}

func (t *Transport) UnsubscribeFromSystemEvent(id wire.EventID) error {
	return t.record("UnsubscribeFromSystemEvent", id)
}

func (t *Transport) RequestSystemState(req wire.RequestID, name string) error {
	return t.record("RequestSystemState", req, name)
}

func (t *Transport) SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error {
	return t.record("SetSystemState", name, intValue, floatValue, stringValue)
}

func (t *Transport) RequestFacilitiesList(listType wire.FacilityListType, req wire.RequestID) error {
	return t.record("RequestFacilitiesList", listType, req)
}

func (t *Transport) RequestFacilitiesListEx1(listType wire.FacilityListType, req wire.RequestID) error {
	return t.record("RequestFacilitiesListEx1", listType, req)
}

func (t *Transport) AddToFacilityDefinition(def wire.DefineID, fieldName string) error {
	return t.record("AddToFacilityDefinition", def, fieldName)
}

func (t *Transport) RequestFacilityData(def wire.DefineID, req wire.RequestID, icao, region string) error {
	return t.record("RequestFacilityData", def, req, icao, region)
}

func (t *Transport) AICreateNonATCAircraft(title, tailNumber string, pos wire.InitPosition, req wire.RequestID) error {
	return t.record("AICreateNonATCAircraft", title, tailNumber, pos, req)
}

func (t *Transport) AICreateSimulatedObject(title string, pos wire.InitPosition, req wire.RequestID) error {
	return t.record("AICreateSimulatedObject", title, pos, req)
}

func (t *Transport) AIReleaseControl(object wire.ObjectID, req wire.RequestID) error {
	return t.record("AIReleaseControl", object, req)
}

func (t *Transport) AIRemoveObject(object wire.ObjectID, req wire.RequestID) error {
	return t.record("AIRemoveObject", object, req)
}

func (t *Transport) FlightPlanLoad(path string) error {
	return t.record("FlightPlanLoad", path)
}

func (t *Transport) EnumerateSimObjectsAndLiveries(req wire.RequestID, objectType wire.SimObjectType) error {
	return t.record("EnumerateSimObjectsAndLiveries", req, objectType)
}

var _ wire.Transport = (*Transport)(nil)
