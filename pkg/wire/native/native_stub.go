//go:build !windows

package native

import "aerolink/pkg/wire"

// Transport is unavailable on this platform.
type Transport struct{}

// New always fails off Windows.
func New(path string) (*Transport, error) {
	return nil, wire.ErrUnavailable
}

// FindDLL always fails off Windows.
func FindDLL() (string, error) {
	return "", wire.ErrUnavailable
}

// The methods below satisfy wire.Transport. They are unreachable because New
// never returns a usable Transport off Windows.

func (t *Transport) Open(clientName string, configIndex int) error { return wire.ErrUnavailable }
func (t *Transport) Close() error                                  { return wire.ErrUnavailable }

func (t *Transport) NextDispatch() (wire.Frame, error) { return nil, wire.ErrUnavailable }

func (t *Transport) LastSendID() (wire.SendID, error) { return 0, wire.ErrUnavailable }

func (t *Transport) MapClientEventToSimEvent(id wire.EventID, name string) error {
	return wire.ErrUnavailable
}

func (t *Transport) TransmitClientEvent(object wire.ObjectID, id wire.EventID, data uint32, group wire.GroupID, flags uint32) error {
	return wire.ErrUnavailable
}

func (t *Transport) AddClientEventToNotificationGroup(group wire.GroupID, id wire.EventID, maskable bool) error {
	return wire.ErrUnavailable
}

func (t *Transport) RemoveClientEvent(group wire.GroupID, id wire.EventID) error {
	return wire.ErrUnavailable
}

func (t *Transport) SetNotificationGroupPriority(group wire.GroupID, priority wire.Priority) error {
	return wire.ErrUnavailable
}

func (t *Transport) ClearNotificationGroup(group wire.GroupID) error { return wire.ErrUnavailable }

func (t *Transport) MapInputEventToClientEvent(group wire.InputGroupID, inputDefinition string, downID wire.EventID, downValue uint32, upID wire.EventID, upValue uint32, maskable bool) error {
	return wire.ErrUnavailable
}

func (t *Transport) SetInputGroupState(group wire.InputGroupID, state uint32) error {
	return wire.ErrUnavailable
}

func (t *Transport) SetInputGroupPriority(group wire.InputGroupID, priority wire.Priority) error {
	return wire.ErrUnavailable
}

func (t *Transport) RemoveInputEvent(group wire.InputGroupID, inputDefinition string) error {
	return wire.ErrUnavailable
}

func (t *Transport) ClearInputGroup(group wire.InputGroupID) error { return wire.ErrUnavailable }

func (t *Transport) AddToDataDefinition(def wire.DefineID, name, units string, datatype wire.DataType, epsilon float32, datumID uint32) error {
	return wire.ErrUnavailable
}

func (t *Transport) ClearDataDefinition(def wire.DefineID) error { return wire.ErrUnavailable }

func (t *Transport) RequestDataOnSimObject(req wire.RequestID, def wire.DefineID, object wire.ObjectID, period wire.Period, flags uint32, origin, interval, limit uint32) error {
	return wire.ErrUnavailable
}

func (t *Transport) RequestDataOnSimObjectType(req wire.RequestID, def wire.DefineID, radiusMeters uint32, objectType wire.SimObjectType) error {
	return wire.ErrUnavailable
}

func (t *Transport) SetDataOnSimObject(def wire.DefineID, object wire.ObjectID, flags uint32, arrayCount uint32, data []byte) error {
	return wire.ErrUnavailable
}

func (t *Transport) SubscribeToSystemEvent(id wire.EventID, name string) error {
	return wire.ErrUnavailable
}

func (t *Transport) UnsubscribeFromSystemEvent(id wire.EventID) error { return wire.ErrUnavailable }

func (t *Transport) RequestSystemState(req wire.RequestID, name string) error {
	return wire.ErrUnavailable
}

func (t *Transport) SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error {
	return wire.ErrUnavailable
}

func (t *Transport) RequestFacilitiesList(listType wire.FacilityListType, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) RequestFacilitiesListEx1(listType wire.FacilityListType, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) AddToFacilityDefinition(def wire.DefineID, fieldName string) error {
	return wire.ErrUnavailable
}

func (t *Transport) RequestFacilityData(def wire.DefineID, req wire.RequestID, icao, region string) error {
	return wire.ErrUnavailable
}

func (t *Transport) AICreateNonATCAircraft(title, tailNumber string, pos wire.InitPosition, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) AICreateSimulatedObject(title string, pos wire.InitPosition, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) AIReleaseControl(object wire.ObjectID, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) AIRemoveObject(object wire.ObjectID, req wire.RequestID) error {
	return wire.ErrUnavailable
}

func (t *Transport) FlightPlanLoad(path string) error { return wire.ErrUnavailable }

func (t *Transport) EnumerateSimObjectsAndLiveries(req wire.RequestID, objectType wire.SimObjectType) error {
	return wire.ErrUnavailable
}
