// Package wire defines the on-the-wire vocabulary of the SimConnect protocol:
// message kind tags, identifier types, datatype tags, priorities and the
// Transport interface the rest of the library drives the host SDK through.
package wire

// RecvID tags an inbound message with its kind.
type RecvID uint32

// Inbound message kinds. Numeric values are fixed by the SimConnect SDK.
const (
	RecvNull                 RecvID = 0
	RecvException            RecvID = 1
	RecvOpen                 RecvID = 2
	RecvQuit                 RecvID = 3
	RecvEvent                RecvID = 4
	RecvEventObjectAddRemove RecvID = 5
	RecvEventFilename        RecvID = 6
	RecvEventFrame           RecvID = 7
	RecvSimObjectData        RecvID = 8
	RecvSimObjectDataByType  RecvID = 9
	RecvAssignedObjectID     RecvID = 12
	RecvReservedKey          RecvID = 13
	RecvCustomAction         RecvID = 14
	RecvSystemState          RecvID = 15
	RecvClientData           RecvID = 16
	RecvAirportList          RecvID = 18
	RecvVorList              RecvID = 19
	RecvNdbList              RecvID = 20
	RecvWaypointList         RecvID = 21
	RecvEventEx1             RecvID = 27
	RecvFacilityData         RecvID = 28
	RecvFacilityDataEnd      RecvID = 29
	RecvFacilityMinimalList  RecvID = 30
	RecvJetwayData           RecvID = 31
	RecvControllersList      RecvID = 32
	RecvActionCallback       RecvID = 33

	RecvEnumerateSimObjectAndLiveryList RecvID = 38
)

func (id RecvID) String() string {
	switch id {
	case RecvNull:
		return "Null"
	case RecvException:
		return "Exception"
	case RecvOpen:
		return "Open"
	case RecvQuit:
		return "Quit"
	case RecvEvent:
		return "Event"
	case RecvEventObjectAddRemove:
		return "EventObjectAddRemove"
	case RecvEventFilename:
		return "EventFilename"
	case RecvEventFrame:
		return "EventFrame"
	case RecvSimObjectData:
		return "SimObjectData"
	case RecvSimObjectDataByType:
		return "SimObjectDataByType"
	case RecvAssignedObjectID:
		return "AssignedObjectId"
	case RecvSystemState:
		return "SystemState"
	case RecvAirportList:
		return "AirportList"
	case RecvVorList:
		return "VorList"
	case RecvNdbList:
		return "NdbList"
	case RecvWaypointList:
		return "WaypointList"
	case RecvEventEx1:
		return "EventEx1"
	case RecvFacilityData:
		return "FacilityData"
	case RecvFacilityDataEnd:
		return "FacilityDataEnd"
	case RecvFacilityMinimalList:
		return "FacilityMinimalList"
	case RecvEnumerateSimObjectAndLiveryList:
		return "EnumerateSimObjectAndLiveryList"
	default:
		return "Unknown"
	}
}

// Identifier families. Each is allocated from its own monotonic counter, see
// pkg/ids. SendID is special: the transport assigns it per outbound frame.
type (
	DefineID     uint32
	RequestID    uint32
	GroupID      uint32
	InputGroupID uint32
	EventID      uint32
	ObjectID     uint32
	SendID       uint32
)

// Unused is the SDK's reserved "no value" marker.
const Unused uint32 = 0xFFFFFFFF

// ObjectIDUser addresses the user's own aircraft.
const ObjectIDUser ObjectID = 0

// CustomEventMin is the first event id reserved for client-defined events.
// Names of the form "#N" map to CustomEventMin+N without host negotiation.
const CustomEventMin EventID = 0x00011000

// DataType tags a field's on-wire encoding.
type DataType uint32

const (
	DataTypeInvalid      DataType = 0
	DataTypeInt32        DataType = 1
	DataTypeInt64        DataType = 2
	DataTypeFloat32      DataType = 3
	DataTypeFloat64      DataType = 4
	DataTypeString8      DataType = 5
	DataTypeString32     DataType = 6
	DataTypeString64     DataType = 7
	DataTypeString128    DataType = 8
	DataTypeString256    DataType = 9
	DataTypeString260    DataType = 10
	DataTypeStringV      DataType = 11
	DataTypeInitPosition DataType = 12
	DataTypeMarkerState  DataType = 13
	DataTypeWaypoint     DataType = 14
	DataTypeLatLonAlt    DataType = 15
	DataTypeXYZ          DataType = 16
)

// Size returns the on-wire width in bytes, or 0 for variable-length data.
func (t DataType) Size() int {
	switch t {
	case DataTypeInt32, DataTypeFloat32:
		return 4
	case DataTypeInt64, DataTypeFloat64:
		return 8
	case DataTypeString8:
		return 8
	case DataTypeString32:
		return 32
	case DataTypeString64:
		return 64
	case DataTypeString128:
		return 128
	case DataTypeString256:
		return 256
	case DataTypeString260:
		return 260
	case DataTypeInitPosition:
		return 64
	case DataTypeMarkerState:
		return 68
	case DataTypeWaypoint:
		return 44
	case DataTypeLatLonAlt, DataTypeXYZ:
		return 24
	default:
		return 0
	}
}

// Priority selects the arbitration level of a notification or input group.
type Priority uint32

const (
	PriorityHighest      Priority = 1
	PriorityAboveDefault Priority = 10000000 // highest maskable
	PriorityStandard     Priority = 1900000000
	PriorityDefault      Priority = 2000000000
	PriorityBelowDefault Priority = 3000000000
	PriorityLowest       Priority = 4000000000
)

// Period controls how often the host delivers data for a request.
type Period uint32

const (
	PeriodNever       Period = 0
	PeriodOnce        Period = 1
	PeriodVisualFrame Period = 2
	PeriodSimFrame    Period = 3
	PeriodSecond      Period = 4
)

// Data request flags.
const (
	DataRequestFlagChanged uint32 = 1
	DataRequestFlagTagged  uint32 = 2
)

// Event flags.
const (
	EventFlagGroupIDIsPriority uint32 = 16
)

// SimObjectType filters RequestDataOnSimObjectType queries.
type SimObjectType uint32

const (
	SimObjectTypeUser       SimObjectType = 0
	SimObjectTypeAll        SimObjectType = 1
	SimObjectTypeAircraft   SimObjectType = 2
	SimObjectTypeHelicopter SimObjectType = 3
	SimObjectTypeBoat       SimObjectType = 4
	SimObjectTypeGround     SimObjectType = 5
)

// FacilityListType selects a facility database for list enumeration.
type FacilityListType uint32

const (
	FacilityListAirports  FacilityListType = 0
	FacilityListWaypoints FacilityListType = 1
	FacilityListNDBs      FacilityListType = 2
	FacilityListVORs      FacilityListType = 3
)

// InputStateOff and InputStateOn toggle an input group.
const (
	InputStateOff uint32 = 0
	InputStateOn  uint32 = 1
)
