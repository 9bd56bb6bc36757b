package client

import (
	"aerolink/pkg/registry"
	"aerolink/pkg/wire"
)

// tracked wraps a transport and records the send id of every successful
// outbound call together with the operation name, so a later EXCEPTION
// frame can name the call it belongs to.
type tracked struct {
	t     wire.Transport
	sends *registry.SendTracker
}

func (tr *tracked) after(op string, err error) error {
	if err != nil {
		return err
	}
	if id, idErr := tr.t.LastSendID(); idErr == nil {
		tr.sends.Record(id, op)
	}
	return nil
}

func (tr *tracked) Open(clientName string, configIndex int) error {
	return tr.t.Open(clientName, configIndex)
}

func (tr *tracked) Close() error { return tr.t.Close() }

func (tr *tracked) NextDispatch() (wire.Frame, error) { return tr.t.NextDispatch() }

func (tr *tracked) LastSendID() (wire.SendID, error) { return tr.t.LastSendID() }

func (tr *tracked) MapClientEventToSimEvent(id wire.EventID, name string) error {
	return tr.after("MapClientEventToSimEvent", tr.t.MapClientEventToSimEvent(id, name))
}

func (tr *tracked) TransmitClientEvent(object wire.ObjectID, id wire.EventID, data uint32, group wire.GroupID, flags uint32) error {
	return tr.after("TransmitClientEvent", tr.t.TransmitClientEvent(object, id, data, group, flags))
}

func (tr *tracked) AddClientEventToNotificationGroup(group wire.GroupID, id wire.EventID, maskable bool) error {
	return tr.after("AddClientEventToNotificationGroup", tr.t.AddClientEventToNotificationGroup(group, id, maskable))
}

func (tr *tracked) RemoveClientEvent(group wire.GroupID, id wire.EventID) error {
	return tr.after("RemoveClientEvent", tr.t.RemoveClientEvent(group, id))
}

func (tr *tracked) SetNotificationGroupPriority(group wire.GroupID, priority wire.Priority) error {
	return tr.after("SetNotificationGroupPriority", tr.t.SetNotificationGroupPriority(group, priority))
}

func (tr *tracked) ClearNotificationGroup(group wire.GroupID) error {
	return tr.after("ClearNotificationGroup", tr.t.ClearNotificationGroup(group))
}

func (tr *tracked) MapInputEventToClientEvent(group wire.InputGroupID, inputDefinition string, downID wire.EventID, downValue uint32, upID wire.EventID, upValue uint32, maskable bool) error {
	return tr.after("MapInputEventToClientEvent",
		tr.t.MapInputEventToClientEvent(group, inputDefinition, downID, downValue, upID, upValue, maskable))
}

func (tr *tracked) SetInputGroupState(group wire.InputGroupID, state uint32) error {
	return tr.after("SetInputGroupState", tr.t.SetInputGroupState(group, state))
}

func (tr *tracked) SetInputGroupPriority(group wire.InputGroupID, priority wire.Priority) error {
	return tr.after("SetInputGroupPriority", tr.t.SetInputGroupPriority(group, priority))
}

func (tr *tracked) RemoveInputEvent(group wire.InputGroupID, inputDefinition string) error {
	return tr.after("RemoveInputEvent", tr.t.RemoveInputEvent(group, inputDefinition))
}

func (tr *tracked) ClearInputGroup(group wire.InputGroupID) error {
	return tr.after("ClearInputGroup", tr.t.ClearInputGroup(group))
}

func (tr *tracked) AddToDataDefinition(def wire.DefineID, name, units string, datatype wire.DataType, epsilon float32, datumID uint32) error {
	return tr.after("AddToDataDefinition",
		tr.t.AddToDataDefinition(def, name, units, datatype, epsilon, datumID))
}

func (tr *tracked) ClearDataDefinition(def wire.DefineID) error {
	return tr.after("ClearDataDefinition", tr.t.ClearDataDefinition(def))
}

func (tr *tracked) RequestDataOnSimObject(req wire.RequestID, def wire.DefineID, object wire.ObjectID, period wire.Period, flags uint32, origin, interval, limit uint32) error {
	return tr.after("RequestDataOnSimObject",
		tr.t.RequestDataOnSimObject(req, def, object, period, flags, origin, interval, limit))
}

func (tr *tracked) RequestDataOnSimObjectType(req wire.RequestID, def wire.DefineID, radiusMeters uint32, objectType wire.SimObjectType) error {
	return tr.after("RequestDataOnSimObjectType",
		tr.t.RequestDataOnSimObjectType(req, def, radiusMeters, objectType))
}

func (tr *tracked) SetDataOnSimObject(def wire.DefineID, object wire.ObjectID, flags uint32, arrayCount uint32, data []byte) error {
	return tr.after("SetDataOnSimObject",
		tr.t.SetDataOnSimObject(def, object, flags, arrayCount, data))
}

func (tr *tracked) SubscribeToSystemEvent(id wire.EventID, name string) error {
	return tr.after("SubscribeToSystemEvent", tr.t.SubscribeToSystemEvent(id, name))
}

func (tr *tracked) UnsubscribeFromSystemEvent(id wire.EventID) error {
	return tr.after("UnsubscribeFromSystemEvent", tr.t.UnsubscribeFromSystemEvent(id))
}

func (tr *tracked) RequestSystemState(req wire.RequestID, name string) error {
	return tr.after("RequestSystemState", tr.t.RequestSystemState(req, name))
}

func (tr *tracked) SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error {
	return tr.after("SetSystemState", tr.t.SetSystemState(name, intValue, floatValue, stringValue))
}

func (tr *tracked) RequestFacilitiesList(listType wire.FacilityListType, req wire.RequestID) error {
	return tr.after("RequestFacilitiesList", tr.t.RequestFacilitiesList(listType, req))
}

func (tr *tracked) RequestFacilitiesListEx1(listType wire.FacilityListType, req wire.RequestID) error {
	return tr.after("RequestFacilitiesListEx1", tr.t.RequestFacilitiesListEx1(listType, req))
}

func (tr *tracked) AddToFacilityDefinition(def wire.DefineID, fieldName string) error {
	return tr.after("AddToFacilityDefinition", tr.t.AddToFacilityDefinition(def, fieldName))
}

func (tr *tracked) RequestFacilityData(def wire.DefineID, req wire.RequestID, icao, region string) error {
	return tr.after("RequestFacilityData", tr.t.RequestFacilityData(def, req, icao, region))
}

func (tr *tracked) AICreateNonATCAircraft(title, tailNumber string, pos wire.InitPosition, req wire.RequestID) error {
	return tr.after("AICreateNonATCAircraft", tr.t.AICreateNonATCAircraft(title, tailNumber, pos, req))
}

func (tr *tracked) AICreateSimulatedObject(title string, pos wire.InitPosition, req wire.RequestID) error {
	return tr.after("AICreateSimulatedObject", tr.t.AICreateSimulatedObject(title, pos, req))
}

func (tr *tracked) AIReleaseControl(object wire.ObjectID, req wire.RequestID) error {
	return tr.after("AIReleaseControl", tr.t.AIReleaseControl(object, req))
}

func (tr *tracked) AIRemoveObject(object wire.ObjectID, req wire.RequestID) error {
	return tr.after("AIRemoveObject", tr.t.AIRemoveObject(object, req))
}

func (tr *tracked) FlightPlanLoad(path string) error {
	return tr.after("FlightPlanLoad", tr.t.FlightPlanLoad(path))
}

func (tr *tracked) EnumerateSimObjectsAndLiveries(req wire.RequestID, objectType wire.SimObjectType) error {
	return tr.after("EnumerateSimObjectsAndLiveries", tr.t.EnumerateSimObjectsAndLiveries(req, objectType))
}

var _ wire.Transport = (*tracked)(nil)
