//go:build windows

package native

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"aerolink/pkg/wire"
)

// eFail is the HRESULT GetNextDispatch returns on an empty queue.
const eFail = 0x80004005

// FindDLL locates SimConnect.dll. The MSFS_SDK environment variable wins;
// otherwise the usual SDK installation paths are probed.
func FindDLL() (string, error) {
	var paths []string
	if sdkPath := os.Getenv("MSFS_SDK"); sdkPath != "" {
		paths = append(paths, filepath.Join(sdkPath, "SimConnect SDK", "lib", "SimConnect.dll"))
	}
	paths = append(paths,
		`C:\MSFS 2024 SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\MSFS SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\Program Files (x86)\Microsoft Flight Simulator SDK\SimConnect SDK\lib\SimConnect.dll`,
	)
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("SimConnect.dll not found; set MSFS_SDK or install the SDK")
}

type procs struct {
	open                           *syscall.LazyProc
	close                          *syscall.LazyProc
	getNextDispatch                *syscall.LazyProc
	getLastSentPacketID            *syscall.LazyProc
	mapClientEventToSimEvent       *syscall.LazyProc
	transmitClientEvent            *syscall.LazyProc
	addClientEventToGroup          *syscall.LazyProc
	removeClientEvent              *syscall.LazyProc
	setNotificationGroupPriority   *syscall.LazyProc
	clearNotificationGroup         *syscall.LazyProc
	mapInputEventToClientEvent     *syscall.LazyProc
	setInputGroupState             *syscall.LazyProc
	setInputGroupPriority          *syscall.LazyProc
	removeInputEvent               *syscall.LazyProc
	clearInputGroup                *syscall.LazyProc
	addToDataDefinition            *syscall.LazyProc
	clearDataDefinition            *syscall.LazyProc
	requestDataOnSimObject         *syscall.LazyProc
	requestDataOnSimObjectType     *syscall.LazyProc
	setDataOnSimObject             *syscall.LazyProc
	subscribeToSystemEvent         *syscall.LazyProc
	unsubscribeFromSystemEvent     *syscall.LazyProc
	requestSystemState             *syscall.LazyProc
	setSystemState                 *syscall.LazyProc
	requestFacilitiesList          *syscall.LazyProc
	requestFacilitiesListEx1       *syscall.LazyProc
	addToFacilityDefinition        *syscall.LazyProc
	requestFacilityData            *syscall.LazyProc
	aiCreateNonATCAircraft         *syscall.LazyProc
	aiCreateSimulatedObject        *syscall.LazyProc
	aiReleaseControl               *syscall.LazyProc
	aiRemoveObject                 *syscall.LazyProc
	flightPlanLoad                 *syscall.LazyProc
	enumerateSimObjectsAndLiveries *syscall.LazyProc
}

// Transport binds SimConnect.dll. Outbound calls are serialised with a
// mutex; the SDK call itself is short.
type Transport struct {
	mu     sync.Mutex
	dll    *syscall.LazyDLL
	p      procs
	handle uintptr
}

// New loads SimConnect.dll from path. With an empty path the DLL is
// auto-discovered.
func New(path string) (*Transport, error) {
	if path == "" {
		var err error
		path, err = FindDLL()
		if err != nil {
			return nil, err
		}
	}
	dll := syscall.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	t := &Transport{dll: dll}
	t.p = procs{
		open:                           dll.NewProc("SimConnect_Open"),
		close:                          dll.NewProc("SimConnect_Close"),
		getNextDispatch:                dll.NewProc("SimConnect_GetNextDispatch"),
		getLastSentPacketID:            dll.NewProc("SimConnect_GetLastSentPacketID"),
		mapClientEventToSimEvent:       dll.NewProc("SimConnect_MapClientEventToSimEvent"),
		transmitClientEvent:            dll.NewProc("SimConnect_TransmitClientEvent"),
		addClientEventToGroup:          dll.NewProc("SimConnect_AddClientEventToNotificationGroup"),
		removeClientEvent:              dll.NewProc("SimConnect_RemoveClientEvent"),
		setNotificationGroupPriority:   dll.NewProc("SimConnect_SetNotificationGroupPriority"),
		clearNotificationGroup:         dll.NewProc("SimConnect_ClearNotificationGroup"),
		mapInputEventToClientEvent:     dll.NewProc("SimConnect_MapInputEventToClientEvent"),
		setInputGroupState:             dll.NewProc("SimConnect_SetInputGroupState"),
		setInputGroupPriority:          dll.NewProc("SimConnect_SetInputGroupPriority"),
		removeInputEvent:               dll.NewProc("SimConnect_RemoveInputEvent"),
		clearInputGroup:                dll.NewProc("SimConnect_ClearInputGroup"),
		addToDataDefinition:            dll.NewProc("SimConnect_AddToDataDefinition"),
		clearDataDefinition:            dll.NewProc("SimConnect_ClearDataDefinition"),
		requestDataOnSimObject:         dll.NewProc("SimConnect_RequestDataOnSimObject"),
		requestDataOnSimObjectType:     dll.NewProc("SimConnect_RequestDataOnSimObjectType"),
		setDataOnSimObject:             dll.NewProc("SimConnect_SetDataOnSimObject"),
		subscribeToSystemEvent:         dll.NewProc("SimConnect_SubscribeToSystemEvent"),
		unsubscribeFromSystemEvent:     dll.NewProc("SimConnect_UnsubscribeFromSystemEvent"),
		requestSystemState:             dll.NewProc("SimConnect_RequestSystemState"),
		setSystemState:                 dll.NewProc("SimConnect_SetSystemState"),
		requestFacilitiesList:          dll.NewProc("SimConnect_RequestFacilitiesList"),
		requestFacilitiesListEx1:       dll.NewProc("SimConnect_RequestFacilitiesList_EX1"),
		addToFacilityDefinition:        dll.NewProc("SimConnect_AddToFacilityDefinition"),
		requestFacilityData:            dll.NewProc("SimConnect_RequestFacilityData"),
		aiCreateNonATCAircraft:         dll.NewProc("SimConnect_AICreateNonATCAircraft"),
		aiCreateSimulatedObject:        dll.NewProc("SimConnect_AICreateSimulatedObject"),
		aiReleaseControl:               dll.NewProc("SimConnect_AIReleaseControl"),
		aiRemoveObject:                 dll.NewProc("SimConnect_AIRemoveObject"),
		flightPlanLoad:                 dll.NewProc("SimConnect_FlightLoad"),
		enumerateSimObjectsAndLiveries: dll.NewProc("SimConnect_EnumerateSimObjectsAndLiveries"),
	}
	return t, nil
}

var _ wire.Transport = (*Transport)(nil)

// cstr returns s as a NUL-terminated byte slice for SDK string arguments.
func cstr(s string) []byte {
	return append([]byte(s), 0)
}

func strArg(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// call invokes proc and maps a negative HRESULT to an error.
func (t *Transport) call(name string, proc *syscall.LazyProc, args ...uintptr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle == 0 {
		return wire.ErrNotOpen
	}
	all := append([]uintptr{t.handle}, args...)
	r1, _, _ := proc.Call(all...)
	if int32(r1) < 0 {
		return fmt.Errorf("%s failed: 0x%x", name, uint32(r1))
	}
	return nil
}

func (t *Transport) Open(clientName string, configIndex int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle != 0 {
		return fmt.Errorf("channel already open")
	}
	name := cstr(clientName)
	var handle uintptr
	r1, _, _ := t.p.open.Call(
		uintptr(unsafe.Pointer(&handle)),
		strArg(name),
		0, // hWnd
		0, // UserEventWin32
		0, // EventHandle
		uintptr(configIndex),
	)
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_Open failed: 0x%x", uint32(r1))
	}
	t.handle = handle
	return nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle == 0 {
		return nil
	}
	r1, _, _ := t.p.close.Call(t.handle)
	t.handle = 0
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_Close failed: 0x%x", uint32(r1))
	}
	return nil
}

// NextDispatch copies the SDK's next message into an owned frame. The SDK
// buffer is only valid until the next call, so the copy is mandatory.
func (t *Transport) NextDispatch() (wire.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle == 0 {
		return nil, wire.ErrNotOpen
	}
	var ppData unsafe.Pointer
	var cbData uint32
	r1, _, _ := t.p.getNextDispatch.Call(
		t.handle,
		uintptr(unsafe.Pointer(&ppData)),
		uintptr(unsafe.Pointer(&cbData)),
	)
	if uint32(r1) == eFail {
		return nil, nil
	}
	if int32(r1) < 0 {
		return nil, fmt.Errorf("SimConnect_GetNextDispatch failed: 0x%x", uint32(r1))
	}
	if ppData == nil || cbData == 0 {
		return nil, nil
	}
	f := make(wire.Frame, cbData)
	copy(f, unsafe.Slice((*byte)(ppData), cbData))
	return f, nil
}

func (t *Transport) LastSendID() (wire.SendID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle == 0 {
		return 0, wire.ErrNotOpen
	}
	var id uint32
	r1, _, _ := t.p.getLastSentPacketID.Call(t.handle, uintptr(unsafe.Pointer(&id)))
	if int32(r1) < 0 {
		return 0, fmt.Errorf("SimConnect_GetLastSentPacketID failed: 0x%x", uint32(r1))
	}
	return wire.SendID(id), nil
}

func (t *Transport) MapClientEventToSimEvent(id wire.EventID, name string) error {
	n := cstr(name)
	err := t.call("SimConnect_MapClientEventToSimEvent", t.p.mapClientEventToSimEvent,
		uintptr(id), strArg(n))
	runtime.KeepAlive(n)
	return err
}

func (t *Transport) TransmitClientEvent(object wire.ObjectID, id wire.EventID, data uint32, group wire.GroupID, flags uint32) error {
	return t.call("SimConnect_TransmitClientEvent", t.p.transmitClientEvent,
		uintptr(object), uintptr(id), uintptr(data), uintptr(group), uintptr(flags))
}

func (t *Transport) AddClientEventToNotificationGroup(group wire.GroupID, id wire.EventID, maskable bool) error {
	var mask uintptr
	if maskable {
		mask = 1
	}
	return t.call("SimConnect_AddClientEventToNotificationGroup", t.p.addClientEventToGroup,
		uintptr(group), uintptr(id), mask)
}

func (t *Transport) RemoveClientEvent(group wire.GroupID, id wire.EventID) error {
	return t.call("SimConnect_RemoveClientEvent", t.p.removeClientEvent,
		uintptr(group), uintptr(id))
}

func (t *Transport) SetNotificationGroupPriority(group wire.GroupID, priority wire.Priority) error {
	return t.call("SimConnect_SetNotificationGroupPriority", t.p.setNotificationGroupPriority,
		uintptr(group), uintptr(priority))
}

func (t *Transport) ClearNotificationGroup(group wire.GroupID) error {
	return t.call("SimConnect_ClearNotificationGroup", t.p.clearNotificationGroup,
		uintptr(group))
}

func (t *Transport) MapInputEventToClientEvent(group wire.InputGroupID, inputDefinition string, downID wire.EventID, downValue uint32, upID wire.EventID, upValue uint32, maskable bool) error {
	def := cstr(inputDefinition)
	var mask uintptr
	if maskable {
		mask = 1
	}
	err := t.call("SimConnect_MapInputEventToClientEvent", t.p.mapInputEventToClientEvent,
		uintptr(group), strArg(def),
		uintptr(downID), uintptr(downValue), uintptr(upID), uintptr(upValue), mask)
	runtime.KeepAlive(def)
	return err
}

func (t *Transport) SetInputGroupState(group wire.InputGroupID, state uint32) error {
	return t.call("SimConnect_SetInputGroupState", t.p.setInputGroupState,
		uintptr(group), uintptr(state))
}

func (t *Transport) SetInputGroupPriority(group wire.InputGroupID, priority wire.Priority) error {
	return t.call("SimConnect_SetInputGroupPriority", t.p.setInputGroupPriority,
		uintptr(group), uintptr(priority))
}

func (t *Transport) RemoveInputEvent(group wire.InputGroupID, inputDefinition string) error {
	def := cstr(inputDefinition)
	err := t.call("SimConnect_RemoveInputEvent", t.p.removeInputEvent,
		uintptr(group), strArg(def))
	runtime.KeepAlive(def)
	return err
}

func (t *Transport) ClearInputGroup(group wire.InputGroupID) error {
	return t.call("SimConnect_ClearInputGroup", t.p.clearInputGroup, uintptr(group))
}

func (t *Transport) AddToDataDefinition(def wire.DefineID, name, units string, datatype wire.DataType, epsilon float32, datumID uint32) error {
	n := cstr(name)
	var u []byte
	var unitsArg uintptr
	if units != "" {
		u = cstr(units)
		unitsArg = strArg(u)
	}
	err := t.call("SimConnect_AddToDataDefinition", t.p.addToDataDefinition,
		uintptr(def), strArg(n), unitsArg, uintptr(datatype),
		uintptr(math.Float32bits(epsilon)), uintptr(datumID))
	runtime.KeepAlive(n)
	runtime.KeepAlive(u)
	return err
}

func (t *Transport) ClearDataDefinition(def wire.DefineID) error {
	return t.call("SimConnect_ClearDataDefinition", t.p.clearDataDefinition, uintptr(def))
}

func (t *Transport) RequestDataOnSimObject(req wire.RequestID, def wire.DefineID, object wire.ObjectID, period wire.Period, flags uint32, origin, interval, limit uint32) error {
	return t.call("SimConnect_RequestDataOnSimObject", t.p.requestDataOnSimObject,
		uintptr(req), uintptr(def), uintptr(object), uintptr(period),
		uintptr(flags), uintptr(origin), uintptr(interval), uintptr(limit))
}

func (t *Transport) RequestDataOnSimObjectType(req wire.RequestID, def wire.DefineID, radiusMeters uint32, objectType wire.SimObjectType) error {
	return t.call("SimConnect_RequestDataOnSimObjectType", t.p.requestDataOnSimObjectType,
		uintptr(req), uintptr(def), uintptr(radiusMeters), uintptr(objectType))
}

func (t *Transport) SetDataOnSimObject(def wire.DefineID, object wire.ObjectID, flags uint32, arrayCount uint32, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty data block")
	}
	unitSize := uint32(len(data))
	if arrayCount > 1 {
		unitSize /= arrayCount
	}
	err := t.call("SimConnect_SetDataOnSimObject", t.p.setDataOnSimObject,
		uintptr(def), uintptr(object), uintptr(flags), uintptr(arrayCount),
		uintptr(unitSize), uintptr(unsafe.Pointer(&data[0])))
	runtime.KeepAlive(data)
	return err
}

func (t *Transport) SubscribeToSystemEvent(id wire.EventID, name string) error {
	n := cstr(name)
	err := t.call("SimConnect_SubscribeToSystemEvent", t.p.subscribeToSystemEvent,
		uintptr(id), strArg(n))
	runtime.KeepAlive(n)
	return err
}

func (t *Transport) UnsubscribeFromSystemEvent(id wire.EventID) error {
	return t.call("SimConnect_UnsubscribeFromSystemEvent", t.p.unsubscribeFromSystemEvent,
		uintptr(id))
}

func (t *Transport) RequestSystemState(req wire.RequestID, name string) error {
	n := cstr(name)
	err := t.call("SimConnect_RequestSystemState", t.p.requestSystemState,
		uintptr(req), strArg(n))
	runtime.KeepAlive(n)
	return err
}

func (t *Transport) SetSystemState(name string, intValue uint32, floatValue float32, stringValue string) error {
	n := cstr(name)
	s := cstr(stringValue)
	err := t.call("SimConnect_SetSystemState", t.p.setSystemState,
		strArg(n), uintptr(intValue),
		uintptr(math.Float32bits(floatValue)), strArg(s))
	runtime.KeepAlive(n)
	runtime.KeepAlive(s)
	return err
}

func (t *Transport) RequestFacilitiesList(listType wire.FacilityListType, req wire.RequestID) error {
	return t.call("SimConnect_RequestFacilitiesList", t.p.requestFacilitiesList,
		uintptr(listType), uintptr(req))
}

func (t *Transport) RequestFacilitiesListEx1(listType wire.FacilityListType, req wire.RequestID) error {
	return t.call("SimConnect_RequestFacilitiesList_EX1", t.p.requestFacilitiesListEx1,
		uintptr(listType), uintptr(req))
}

func (t *Transport) AddToFacilityDefinition(def wire.DefineID, fieldName string) error {
	n := cstr(fieldName)
	err := t.call("SimConnect_AddToFacilityDefinition", t.p.addToFacilityDefinition,
		uintptr(def), strArg(n))
	runtime.KeepAlive(n)
	return err
}

func (t *Transport) RequestFacilityData(def wire.DefineID, req wire.RequestID, icao, region string) error {
	i := cstr(icao)
	r := cstr(region)
	err := t.call("SimConnect_RequestFacilityData", t.p.requestFacilityData,
		uintptr(def), uintptr(req), strArg(i), strArg(r))
	runtime.KeepAlive(i)
	runtime.KeepAlive(r)
	return err
}

func (t *Transport) AICreateNonATCAircraft(title, tailNumber string, pos wire.InitPosition, req wire.RequestID) error {
	ti := cstr(title)
	ta := cstr(tailNumber)
	raw := packInitPosition(pos)
	err := t.call("SimConnect_AICreateNonATCAircraft", t.p.aiCreateNonATCAircraft,
		strArg(ti), strArg(ta), uintptr(unsafe.Pointer(&raw)), uintptr(req))
	runtime.KeepAlive(ti)
	runtime.KeepAlive(ta)
	runtime.KeepAlive(&raw)
	return err
}

func (t *Transport) AICreateSimulatedObject(title string, pos wire.InitPosition, req wire.RequestID) error {
	ti := cstr(title)
	raw := packInitPosition(pos)
	err := t.call("SimConnect_AICreateSimulatedObject", t.p.aiCreateSimulatedObject,
		strArg(ti), uintptr(unsafe.Pointer(&raw)), uintptr(req))
	runtime.KeepAlive(ti)
	runtime.KeepAlive(&raw)
	return err
}

func (t *Transport) AIReleaseControl(object wire.ObjectID, req wire.RequestID) error {
	return t.call("SimConnect_AIReleaseControl", t.p.aiReleaseControl,
		uintptr(object), uintptr(req))
}

func (t *Transport) AIRemoveObject(object wire.ObjectID, req wire.RequestID) error {
	return t.call("SimConnect_AIRemoveObject", t.p.aiRemoveObject,
		uintptr(object), uintptr(req))
}

func (t *Transport) FlightPlanLoad(path string) error {
	p := cstr(path)
	err := t.call("SimConnect_FlightLoad", t.p.flightPlanLoad, strArg(p))
	runtime.KeepAlive(p)
	return err
}

func (t *Transport) EnumerateSimObjectsAndLiveries(req wire.RequestID, objectType wire.SimObjectType) error {
	return t.call("SimConnect_EnumerateSimObjectsAndLiveries", t.p.enumerateSimObjectsAndLiveries,
		uintptr(req), uintptr(objectType))
}

// initPositionRaw mirrors the SDK's SIMCONNECT_DATA_INITPOSITION layout.
type initPositionRaw struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Pitch     float64
	Bank      float64
	Heading   float64
	OnGround  int32
	Airspeed  int32
}

func packInitPosition(p wire.InitPosition) initPositionRaw {
	return initPositionRaw{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Altitude:  p.Altitude,
		Pitch:     p.Pitch,
		Bank:      p.Bank,
		Heading:   p.Heading,
		OnGround:  p.OnGround,
		Airspeed:  p.Airspeed,
	}
}
