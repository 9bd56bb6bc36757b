package mockwire

import (
	"encoding/binary"
	"math"

	"aerolink/pkg/wire"
)

// protocolVersion is stamped into generated frame headers.
const protocolVersion = 5

type frameWriter struct {
	buf []byte
}

func newFrameWriter(kind wire.RecvID) *frameWriter {
	w := &frameWriter{}
	w.u32(0) // size, patched in finish
	w.u32(protocolVersion)
	w.u32(uint32(kind))
	return w
}

func (w *frameWriter) finish() wire.Frame {
	binary.LittleEndian.PutUint32(w.buf, uint32(len(w.buf)))
	return wire.Frame(w.buf)
}

func (w *frameWriter) u32(v uint32) *frameWriter {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *frameWriter) f32(v float32) *frameWriter {
	return w.u32(math.Float32bits(v))
}

func (w *frameWriter) f64(v float64) *frameWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
	return w
}

func (w *frameWriter) str(v string, size int) *frameWriter {
	if len(v) > size {
		v = v[:size]
	}
	w.buf = append(w.buf, v...)
	for i := len(v); i < size; i++ {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *frameWriter) raw(b []byte) *frameWriter {
	w.buf = append(w.buf, b...)
	return w
}

// OpenFrame builds the host's connection acknowledgement.
func OpenFrame(appName string) wire.Frame {
	w := newFrameWriter(wire.RecvOpen)
	w.str(appName, 256)
	w.u32(1).u32(0).u32(0).u32(0) // application version, build
	w.u32(12).u32(0).u32(0).u32(0) // library version, build
	return w.finish()
}

// QuitFrame builds the host's shutdown notice.
func QuitFrame() wire.Frame {
	return newFrameWriter(wire.RecvQuit).finish()
}

// ExceptionFrame builds a host error report for a given send id.
func ExceptionFrame(code wire.ExceptionCode, sendID wire.SendID, index uint32) wire.Frame {
	return newFrameWriter(wire.RecvException).
		u32(uint32(code)).u32(uint32(sendID)).u32(index).
		finish()
}

// EventFrame builds a notification-group event.
func EventFrame(group wire.GroupID, event wire.EventID, data uint32) wire.Frame {
	return newFrameWriter(wire.RecvEvent).
		u32(uint32(group)).u32(uint32(event)).u32(data).
		finish()
}

// EventEx1Frame builds a five-parameter event.
func EventEx1Frame(group wire.GroupID, event wire.EventID, data [5]uint32) wire.Frame {
	w := newFrameWriter(wire.RecvEventEx1).
		u32(uint32(group)).u32(uint32(event))
	for _, d := range data {
		w.u32(d)
	}
	return w.finish()
}

// SimObjectDataFrame builds one data reply for a request.
func SimObjectDataFrame(req wire.RequestID, object wire.ObjectID, def wire.DefineID, flags uint32, defineCount uint32, block []byte) wire.Frame {
	return simObjectDataFrame(wire.RecvSimObjectData, req, object, def, flags, 0, 1, defineCount, block)
}

// SimObjectDataByTypeFrame builds one reply to a by-type request. entry and
// outOf page the reply the way multi-object answers arrive.
func SimObjectDataByTypeFrame(req wire.RequestID, object wire.ObjectID, def wire.DefineID, entry, outOf uint32, block []byte) wire.Frame {
	return simObjectDataFrame(wire.RecvSimObjectDataByType, req, object, def, 0, entry, outOf, 0, block)
}

func simObjectDataFrame(kind wire.RecvID, req wire.RequestID, object wire.ObjectID, def wire.DefineID, flags, entry, outOf, defineCount uint32, block []byte) wire.Frame {
	return newFrameWriter(kind).
		u32(uint32(req)).u32(uint32(object)).u32(uint32(def)).
		u32(flags).u32(entry).u32(outOf).u32(defineCount).
		raw(block).
		finish()
}

// AssignedObjectIDFrame answers an AI creation request.
func AssignedObjectIDFrame(req wire.RequestID, object wire.ObjectID) wire.Frame {
	return newFrameWriter(wire.RecvAssignedObjectID).
		u32(uint32(req)).u32(uint32(object)).
		finish()
}

// SystemStateFrame answers a system-state request.
func SystemStateFrame(req wire.RequestID, integer uint32, float float32, str string) wire.Frame {
	return newFrameWriter(wire.RecvSystemState).
		u32(uint32(req)).u32(integer).f32(float).str(str, 260).
		finish()
}

// Airport describes one entry for AirportListFrame.
type Airport struct {
	Ident, Region  string
	Lat, Lon, Alt  float64
}

// AirportListFrame builds one part of an airport enumeration.
func AirportListFrame(req wire.RequestID, entry, outOf uint32, airports []Airport) wire.Frame {
	w := newFrameWriter(wire.RecvAirportList).
		u32(uint32(req)).u32(uint32(len(airports))).u32(entry).u32(outOf)
	for _, a := range airports {
		w.str(a.Ident, 9).str(a.Region, 3).f64(a.Lat).f64(a.Lon).f64(a.Alt)
	}
	return w.finish()
}

// VOR describes one entry for VorListFrame.
type VOR struct {
	Ident, Region   string
	Lat, Lon, Alt   float64
	MagVar          float32
	Frequency       uint32
	Flags           uint32
	Localizer       float32
	GlideLat        float64
	GlideLon        float64
	GlideAlt        float64
	GlideSlopeAngle float32
}

// VorListFrame builds one part of a VOR enumeration.
func VorListFrame(req wire.RequestID, entry, outOf uint32, vors []VOR) wire.Frame {
	w := newFrameWriter(wire.RecvVorList).
		u32(uint32(req)).u32(uint32(len(vors))).u32(entry).u32(outOf)
	for _, v := range vors {
		w.str(v.Ident, 9).str(v.Region, 3).f64(v.Lat).f64(v.Lon).f64(v.Alt)
		w.f32(v.MagVar).u32(v.Frequency).u32(v.Flags).f32(v.Localizer)
		w.f64(v.GlideLat).f64(v.GlideLon).f64(v.GlideAlt).f32(v.GlideSlopeAngle)
	}
	return w.finish()
}

// FacilityDataFrame builds one record of a structured facility stream.
func FacilityDataFrame(req wire.RequestID, facilityType uint32, block []byte) wire.Frame {
	return newFrameWriter(wire.RecvFacilityData).
		u32(uint32(req)).u32(0).u32(0).u32(facilityType).
		u32(0).u32(0).u32(0).
		raw(block).
		finish()
}

// FacilityDataEndFrame terminates a structured facility stream.
func FacilityDataEndFrame(req wire.RequestID) wire.Frame {
	return newFrameWriter(wire.RecvFacilityDataEnd).u32(uint32(req)).finish()
}

// SimObjectAndLiveryListFrame builds one part of an object enumeration.
func SimObjectAndLiveryListFrame(req wire.RequestID, entry, outOf uint32, entries []wire.SimObjectLivery) wire.Frame {
	w := newFrameWriter(wire.RecvEnumerateSimObjectAndLiveryList).
		u32(uint32(req)).u32(uint32(len(entries))).u32(entry).u32(outOf)
	for _, e := range entries {
		w.str(e.Title, 256).str(e.Livery, 256)
	}
	return w.finish()
}
