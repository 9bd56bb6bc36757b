package wire

// Transport is the surface the library consumes from the host SDK. One
// implementation binds SimConnect.dll (wire/native), another is an in-memory
// double for tests (wire/mockwire).
//
// NextDispatch never blocks: it returns the next ready frame, or (nil, nil)
// when the channel is idle. The transport serialises concurrent writers per
// handle; outbound methods may be called from any goroutine while a single
// goroutine pumps NextDispatch.
type Transport interface {
	// Open establishes the duplex channel. configIndex selects a section of
	// the host's connection configuration.
	Open(clientName string, configIndex int) error
	Close() error

	NextDispatch() (Frame, error)

	// LastSendID returns the identifier the transport assigned to the most
	// recent outbound frame on this handle.
	LastSendID() (SendID, error)

	// Events.
	MapClientEventToSimEvent(id EventID, name string) error
	TransmitClientEvent(object ObjectID, id EventID, data uint32, group GroupID, flags uint32) error
	AddClientEventToNotificationGroup(group GroupID, id EventID, maskable bool) error
	RemoveClientEvent(group GroupID, id EventID) error
	SetNotificationGroupPriority(group GroupID, priority Priority) error
	ClearNotificationGroup(group GroupID) error

	// Input groups.
	MapInputEventToClientEvent(group InputGroupID, inputDefinition string, downID EventID, downValue uint32, upID EventID, upValue uint32, maskable bool) error
	SetInputGroupState(group InputGroupID, state uint32) error
	SetInputGroupPriority(group InputGroupID, priority Priority) error
	RemoveInputEvent(group InputGroupID, inputDefinition string) error
	ClearInputGroup(group InputGroupID) error

	// Data definitions and requests.
	AddToDataDefinition(def DefineID, name, units string, datatype DataType, epsilon float32, datumID uint32) error
	ClearDataDefinition(def DefineID) error
	RequestDataOnSimObject(req RequestID, def DefineID, object ObjectID, period Period, flags uint32, origin, interval, limit uint32) error
	RequestDataOnSimObjectType(req RequestID, def DefineID, radiusMeters uint32, objectType SimObjectType) error
	SetDataOnSimObject(def DefineID, object ObjectID, flags uint32, arrayCount uint32, data []byte) error

	// System events and state.
	SubscribeToSystemEvent(id EventID, name string) error
	UnsubscribeFromSystemEvent(id EventID) error
	RequestSystemState(req RequestID, name string) error
	SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error

	// Facilities.
	RequestFacilitiesList(listType FacilityListType, req RequestID) error
	RequestFacilitiesListEx1(listType FacilityListType, req RequestID) error
	AddToFacilityDefinition(def DefineID, fieldName string) error
	RequestFacilityData(def DefineID, req RequestID, icao, region string) error

	// AI objects.
	AICreateNonATCAircraft(title, tailNumber string, pos InitPosition, req RequestID) error
	AICreateSimulatedObject(title string, pos InitPosition, req RequestID) error
	AIReleaseControl(object ObjectID, req RequestID) error
	AIRemoveObject(object ObjectID, req RequestID) error

	// Misc.
	FlightPlanLoad(path string) error
	EnumerateSimObjectsAndLiveries(req RequestID, objectType SimObjectType) error
}
