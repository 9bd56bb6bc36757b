package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Frame is one inbound message as handed over by the transport: the raw bytes
// of the SDK's receive struct, starting at its three-DWORD header.
type Frame []byte

const frameHeaderSize = 12

// Kind returns the message kind tag, or RecvNull for frames too short to carry one.
func (f Frame) Kind() RecvID {
	if len(f) < frameHeaderSize {
		return RecvNull
	}
	return RecvID(binary.LittleEndian.Uint32(f[8:]))
}

// Version returns the protocol version stamped on the frame.
func (f Frame) Version() uint32 {
	if len(f) < frameHeaderSize {
		return 0
	}
	return binary.LittleEndian.Uint32(f[4:])
}

// Payload returns the bytes following the frame header.
func (f Frame) Payload() []byte {
	if len(f) < frameHeaderSize {
		return nil
	}
	return f[frameHeaderSize:]
}

func cString(b []byte) string {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		return string(b[:idx])
	}
	return string(b)
}

type fieldReader struct {
	buf []byte
	off int
	err error
}

func (r *fieldReader) need(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrShortFrame, n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *fieldReader) u32() uint32 {
	if b := r.need(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *fieldReader) f32() float32 {
	if b := r.need(4); b != nil {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (r *fieldReader) f64() float64 {
	if b := r.need(8); b != nil {
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

func (r *fieldReader) str(n int) string {
	if b := r.need(n); b != nil {
		return cString(b)
	}
	return ""
}

// OpenMsg announces a successful handshake with the host.
type OpenMsg struct {
	ApplicationName    string
	ApplicationVersion [4]uint32 // major, minor, build major, build minor
	SimConnectVersion  [4]uint32
}

// ExceptionMsg reports a host-side error for an earlier outbound frame.
type ExceptionMsg struct {
	Code   ExceptionCode
	SendID SendID
	Index  uint32
}

// EventMsg delivers a notification- or input-group event.
type EventMsg struct {
	GroupID GroupID
	EventID EventID
	Data    uint32
}

// EventEx1Msg is the five-parameter variant of EventMsg.
type EventEx1Msg struct {
	GroupID GroupID
	EventID EventID
	Data    [5]uint32
}

// SimObjectDataMsg carries one data frame for a data request.
type SimObjectDataMsg struct {
	RequestID   RequestID
	ObjectID    ObjectID
	DefineID    DefineID
	Flags       uint32
	EntryNumber uint32
	OutOf       uint32
	DefineCount uint32
	Data        []byte
}

// Tagged reports whether the payload uses the id-prefixed encoding.
func (m *SimObjectDataMsg) Tagged() bool {
	return m.Flags&DataRequestFlagTagged != 0
}

// AssignedObjectIDMsg answers an AI creation request.
type AssignedObjectIDMsg struct {
	RequestID RequestID
	ObjectID  ObjectID
}

// SystemStateMsg answers a RequestSystemState call.
type SystemStateMsg struct {
	RequestID RequestID
	Integer   uint32
	Float     float32
	String    string
}

// FacilityListHeader is shared by all four facility list kinds.
type FacilityListHeader struct {
	RequestID   RequestID
	ArraySize   uint32
	EntryNumber uint32
	OutOf       uint32
}

// LastPart reports whether this message completes the enumeration.
func (h FacilityListHeader) LastPart() bool {
	return h.EntryNumber+1 >= h.OutOf
}

// FacilityAirport is one airport entry in an AirportList message.
type FacilityAirport struct {
	Ident     string
	Region    string
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// FacilityWaypoint extends an airport entry with magnetic variation.
type FacilityWaypoint struct {
	FacilityAirport
	MagVar float32
}

// FacilityNDB adds the NDB's frequency in Hz.
type FacilityNDB struct {
	FacilityWaypoint
	Frequency uint32
}

// FacilityVOR adds localizer and glide-slope data.
type FacilityVOR struct {
	FacilityNDB
	Flags          uint32
	Localizer      float32
	GlideLatitude  float64
	GlideLongitude float64
	GlideAltitude  float64
	GlideSlopeAngle float32
}

// AirportListMsg enumerates airports; one part of a multi-part reply.
type AirportListMsg struct {
	FacilityListHeader
	Airports []FacilityAirport
}

// WaypointListMsg enumerates waypoints.
type WaypointListMsg struct {
	FacilityListHeader
	Waypoints []FacilityWaypoint
}

// NdbListMsg enumerates NDBs.
type NdbListMsg struct {
	FacilityListHeader
	NDBs []FacilityNDB
}

// VorListMsg enumerates VORs.
type VorListMsg struct {
	FacilityListHeader
	VORs []FacilityVOR
}

// FacilityDataMsg is one record in a structured facility query stream.
type FacilityDataMsg struct {
	RequestID       RequestID
	UniqueRequestID uint32
	ParentUniqueID  uint32
	Type            uint32
	IsListItem      uint32
	ItemIndex       uint32
	ListSize        uint32
	Data            []byte
}

// FacilityDataEndMsg terminates a structured facility query stream.
type FacilityDataEndMsg struct {
	RequestID RequestID
}

// MinimalFacility is one entry of a FacilityMinimalList disambiguation reply.
type MinimalFacility struct {
	Type      byte
	Ident     string
	Region    string
	Airport   string
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// FacilityMinimalListMsg lists candidate facilities for an ambiguous ident.
type FacilityMinimalListMsg struct {
	FacilityListHeader
	Facilities []MinimalFacility
}

// SimObjectLivery pairs an aircraft title with one of its liveries.
type SimObjectLivery struct {
	Title  string
	Livery string
}

// SimObjectAndLiveryListMsg enumerates installed sim objects and liveries.
type SimObjectAndLiveryListMsg struct {
	FacilityListHeader
	Entries []SimObjectLivery
}

// DecodeOpen parses an Open frame.
func DecodeOpen(f Frame) (*OpenMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &OpenMsg{ApplicationName: r.str(256)}
	for i := range m.ApplicationVersion {
		m.ApplicationVersion[i] = r.u32()
	}
	for i := range m.SimConnectVersion {
		m.SimConnectVersion[i] = r.u32()
	}
	return m, r.err
}

// DecodeException parses an Exception frame.
func DecodeException(f Frame) (*ExceptionMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &ExceptionMsg{
		Code:   ExceptionCode(r.u32()),
		SendID: SendID(r.u32()),
		Index:  r.u32(),
	}
	return m, r.err
}

// DecodeEvent parses an Event frame.
func DecodeEvent(f Frame) (*EventMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &EventMsg{
		GroupID: GroupID(r.u32()),
		EventID: EventID(r.u32()),
		Data:    r.u32(),
	}
	return m, r.err
}

// DecodeEventEx1 parses an EventEx1 frame.
func DecodeEventEx1(f Frame) (*EventEx1Msg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &EventEx1Msg{
		GroupID: GroupID(r.u32()),
		EventID: EventID(r.u32()),
	}
	for i := range m.Data {
		m.Data[i] = r.u32()
	}
	return m, r.err
}

// DecodeSimObjectData parses a SimObjectData or SimObjectDataByType frame.
// The returned Data slice aliases the frame.
func DecodeSimObjectData(f Frame) (*SimObjectDataMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &SimObjectDataMsg{
		RequestID:   RequestID(r.u32()),
		ObjectID:    ObjectID(r.u32()),
		DefineID:    DefineID(r.u32()),
		Flags:       r.u32(),
		EntryNumber: r.u32(),
		OutOf:       r.u32(),
		DefineCount: r.u32(),
	}
	if r.err != nil {
		return nil, r.err
	}
	m.Data = r.buf[r.off:]
	return m, nil
}

// DecodeAssignedObjectID parses an AssignedObjectId frame.
func DecodeAssignedObjectID(f Frame) (*AssignedObjectIDMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &AssignedObjectIDMsg{
		RequestID: RequestID(r.u32()),
		ObjectID:  ObjectID(r.u32()),
	}
	return m, r.err
}

// DecodeSystemState parses a SystemState frame.
func DecodeSystemState(f Frame) (*SystemStateMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &SystemStateMsg{
		RequestID: RequestID(r.u32()),
		Integer:   r.u32(),
		Float:     r.f32(),
		String:    r.str(260),
	}
	return m, r.err
}

func decodeListHeader(r *fieldReader) FacilityListHeader {
	return FacilityListHeader{
		RequestID:   RequestID(r.u32()),
		ArraySize:   r.u32(),
		EntryNumber: r.u32(),
		OutOf:       r.u32(),
	}
}

func (r *fieldReader) facilityAirport() FacilityAirport {
	a := FacilityAirport{
		Ident:  r.str(9),
		Region: r.str(3),
	}
	a.Latitude = r.f64()
	a.Longitude = r.f64()
	a.Altitude = r.f64()
	return a
}

// DecodeAirportList parses an AirportList frame.
func DecodeAirportList(f Frame) (*AirportListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &AirportListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		m.Airports = append(m.Airports, r.facilityAirport())
	}
	return m, r.err
}

// DecodeWaypointList parses a WaypointList frame.
func DecodeWaypointList(f Frame) (*WaypointListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &WaypointListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		w := FacilityWaypoint{FacilityAirport: r.facilityAirport()}
		w.MagVar = r.f32()
		m.Waypoints = append(m.Waypoints, w)
	}
	return m, r.err
}

// DecodeNdbList parses an NdbList frame.
func DecodeNdbList(f Frame) (*NdbListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &NdbListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		n := FacilityNDB{FacilityWaypoint: FacilityWaypoint{FacilityAirport: r.facilityAirport()}}
		n.MagVar = r.f32()
		n.Frequency = r.u32()
		m.NDBs = append(m.NDBs, n)
	}
	return m, r.err
}

// DecodeVorList parses a VorList frame.
func DecodeVorList(f Frame) (*VorListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &VorListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		v := FacilityVOR{FacilityNDB: FacilityNDB{FacilityWaypoint: FacilityWaypoint{FacilityAirport: r.facilityAirport()}}}
		v.MagVar = r.f32()
		v.Frequency = r.u32()
		v.Flags = r.u32()
		v.Localizer = r.f32()
		v.GlideLatitude = r.f64()
		v.GlideLongitude = r.f64()
		v.GlideAltitude = r.f64()
		v.GlideSlopeAngle = r.f32()
		m.VORs = append(m.VORs, v)
	}
	return m, r.err
}

// DecodeFacilityData parses one FacilityData frame. Data aliases the frame.
func DecodeFacilityData(f Frame) (*FacilityDataMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &FacilityDataMsg{
		RequestID:       RequestID(r.u32()),
		UniqueRequestID: r.u32(),
		ParentUniqueID:  r.u32(),
		Type:            r.u32(),
		IsListItem:      r.u32(),
		ItemIndex:       r.u32(),
		ListSize:        r.u32(),
	}
	if r.err != nil {
		return nil, r.err
	}
	m.Data = r.buf[r.off:]
	return m, nil
}

// DecodeFacilityDataEnd parses a FacilityDataEnd frame.
func DecodeFacilityDataEnd(f Frame) (*FacilityDataEndMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &FacilityDataEndMsg{RequestID: RequestID(r.u32())}
	return m, r.err
}

// DecodeFacilityMinimalList parses a FacilityMinimalList frame.
func DecodeFacilityMinimalList(f Frame) (*FacilityMinimalListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &FacilityMinimalListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		var e MinimalFacility
		if b := r.need(1); b != nil {
			e.Type = b[0]
		}
		e.Ident = r.str(9)
		e.Region = r.str(3)
		e.Airport = r.str(5)
		r.need(2) // pad to 4-byte alignment
		e.Latitude = r.f64()
		e.Longitude = r.f64()
		e.Altitude = r.f64()
		m.Facilities = append(m.Facilities, e)
	}
	return m, r.err
}

// DecodeSimObjectAndLiveryList parses an EnumerateSimObjectAndLiveryList frame.
func DecodeSimObjectAndLiveryList(f Frame) (*SimObjectAndLiveryListMsg, error) {
	r := &fieldReader{buf: f.Payload()}
	m := &SimObjectAndLiveryListMsg{FacilityListHeader: decodeListHeader(r)}
	for i := uint32(0); i < m.ArraySize && r.err == nil; i++ {
		m.Entries = append(m.Entries, SimObjectLivery{
			Title:  r.str(256),
			Livery: r.str(256),
		})
	}
	return m, r.err
}

// CorrelationID extracts the request id from frames of kinds that carry one.
// The second return is false for kinds without request correlation.
func CorrelationID(f Frame) (RequestID, bool) {
	switch f.Kind() {
	case RecvSimObjectData, RecvSimObjectDataByType,
		RecvAirportList, RecvWaypointList, RecvNdbList, RecvVorList,
		RecvFacilityData, RecvFacilityDataEnd, RecvFacilityMinimalList,
		RecvSystemState, RecvAssignedObjectID,
		RecvEnumerateSimObjectAndLiveryList:
		r := &fieldReader{buf: f.Payload()}
		id := RequestID(r.u32())
		if r.err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
