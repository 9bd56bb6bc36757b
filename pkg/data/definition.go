package data

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"aerolink/pkg/wire"
)

// FieldOption tweaks a single bound field.
type FieldOption func(*fieldMeta)

// WithEpsilon sets the change threshold the host applies before resending
// the field under a changed-only request.
func WithEpsilon(e float32) FieldOption {
	return func(m *fieldMeta) { m.epsilon = e }
}

// WithDatumID overrides the datum id used in tagged blocks. By default
// fields are numbered densely in definition order starting at one. Id 0 is
// the wire-level skip marker and must never be assigned to a field.
func WithDatumID(id uint32) FieldOption {
	return func(m *fieldMeta) {
		m.datum = id
		m.datumSet = true
	}
}

type fieldMeta struct {
	name     string
	units    string
	datatype wire.DataType
	epsilon  float32
	datum    uint32
	datumSet bool
	// storage is the wire type whose layout equals the Go field's in-memory
	// layout, or Invalid for fields that can never be overlaid directly
	// (strings, bools, padded composites, free accessors).
	storage wire.DataType
}

func (m *fieldMeta) meta() *fieldMeta { return m }

// direct reports whether the field reads and writes its wire bytes without
// any conversion, the precondition for the mapped overlay.
func (m *fieldMeta) direct() bool {
	return m.storage != wire.DataTypeInvalid && m.storage == m.datatype
}

type field[T any] interface {
	meta() *fieldMeta
	encode(b *BlockBuilder, rec *T)
	decode(r *BlockReader, rec *T)
}

// Definition binds the fields of a Go record type to simulator variables.
// Fields are added with the typed builder methods, then the definition is
// registered with the host once per connection and reused for every request
// and set on that define id.
type Definition[T any] struct {
	fields  []field[T]
	byDatum map[uint32]field[T]
	mapped  bool
}

// NewDefinition returns an empty definition for records of type T.
func NewDefinition[T any]() *Definition[T] {
	return &Definition[T]{byDatum: make(map[uint32]field[T])}
}

// FieldCount returns the number of bound fields.
func (d *Definition[T]) FieldCount() int { return len(d.fields) }

// Size returns the untagged wire size of one record. Variable-length string
// fields contribute their terminator only.
func (d *Definition[T]) Size() int {
	total := 0
	for _, f := range d.fields {
		total += f.meta().datatype.Size()
	}
	return total
}

func (d *Definition[T]) add(f field[T], opts []FieldOption) *Definition[T] {
	m := f.meta()
	for _, o := range opts {
		o(m)
	}
	if !m.datumSet {
		m.datum = uint32(len(d.fields)) + 1
	}
	d.fields = append(d.fields, f)
	d.byDatum[m.datum] = f
	return d
}

// UseMapping switches marshalling to a direct memory overlay of T. Every
// field must be a direct binding: a member accessor whose storage layout
// equals its wire type. Conversions (As), string and bool fields, and
// getter/setter bindings all disqualify the definition, as does any layout
// padding that makes the record size differ from the wire size.
func (d *Definition[T]) UseMapping() error {
	for _, f := range d.fields {
		if m := f.meta(); !m.direct() {
			return fmt.Errorf("field %q is not a direct overlay (wire type %d)", m.name, m.datatype)
		}
	}
	var zero T
	if got := int(unsafe.Sizeof(zero)); got != d.Size() {
		return fmt.Errorf("record size %d does not match wire size %d", got, d.Size())
	}
	d.mapped = true
	return nil
}

// RegisterTo declares every bound field to the host under the given
// define id, in definition order.
func (d *Definition[T]) RegisterTo(t wire.Transport, def wire.DefineID) error {
	for _, f := range d.fields {
		m := f.meta()
		if err := t.AddToDataDefinition(def, m.name, m.units, m.datatype, m.epsilon, m.datum); err != nil {
			return fmt.Errorf("add %q to definition %d: %w", m.name, def, err)
		}
	}
	return nil
}

// Marshal encodes one record as an untagged data block, suitable for
// SetDataOnSimObject.
func (d *Definition[T]) Marshal(rec *T) ([]byte, error) {
	if d.mapped {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(rec)), d.Size())
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	b := NewBlockBuilder(d.Size())
	for _, f := range d.fields {
		f.encode(b, rec)
	}
	return b.Bytes(), nil
}

// Unmarshal decodes an untagged data block into rec.
func (d *Definition[T]) Unmarshal(block []byte, rec *T) error {
	if d.mapped {
		if len(block) < d.Size() {
			return fmt.Errorf("%w: mapped record needs %d bytes, have %d", ErrOutOfBounds, d.Size(), len(block))
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(rec)), d.Size())
		copy(raw, block[:d.Size()])
		return nil
	}
	r := NewBlockReader(block)
	for _, f := range d.fields {
		f.decode(r, rec)
	}
	return r.Err()
}

// MarshalTagged encodes one record as a tagged data block, every field
// prefixed with its datum id in definition order.
func (d *Definition[T]) MarshalTagged(rec *T) ([]byte, error) {
	b := NewBlockBuilder(d.Size() + 4*len(d.fields))
	for _, f := range d.fields {
		b.AddUint32(f.meta().datum)
		f.encode(b, rec)
	}
	return b.Bytes(), nil
}

// UnmarshalTagged decodes a tagged data block, a sequence of datum-id
// prefixed values covering any subset of the definition in any order.
// Id 0 marks a skipped entry and carries no value. An id that was never
// defined stops the decode with an error.
func (d *Definition[T]) UnmarshalTagged(block []byte, rec *T) error {
	return d.unmarshalTagged(block, rec, -1)
}

// UnmarshalTaggedN decodes at most numElems datum entries from a tagged
// block, as reported by the host's define count. Skip markers do not count
// toward the bound.
func (d *Definition[T]) UnmarshalTaggedN(block []byte, rec *T, numElems int) error {
	return d.unmarshalTagged(block, rec, numElems)
}

func (d *Definition[T]) unmarshalTagged(block []byte, rec *T, limit int) error {
	r := NewBlockReader(block)
	decoded := 0
	for r.Remaining() > 0 {
		if limit >= 0 && decoded >= limit {
			return nil
		}
		id := r.ReadUint32()
		if r.Err() != nil {
			return r.Err()
		}
		if id == 0 {
			continue
		}
		f, ok := d.byDatum[id]
		if !ok {
			return fmt.Errorf("tagged block references unknown datum id %d", id)
		}
		f.decode(r, rec)
		if r.Err() != nil {
			return r.Err()
		}
		decoded++
	}
	return nil
}

// UnmarshalMessage decodes a received SIMOBJECT_DATA message, choosing the
// tagged or untagged form from the message flags. Tagged messages honor the
// frame's define count when the host supplies one.
func (d *Definition[T]) UnmarshalMessage(msg *wire.SimObjectDataMsg, rec *T) error {
	if msg.Tagged() {
		if msg.DefineCount > 0 {
			return d.UnmarshalTaggedN(msg.Data, rec, int(msg.DefineCount))
		}
		return d.UnmarshalTagged(msg.Data, rec)
	}
	return d.Unmarshal(msg.Data, rec)
}

// scalar conversion between the declared wire type and the field's storage

func isStringType(dt wire.DataType) bool {
	switch dt {
	case wire.DataTypeString8, wire.DataTypeString32, wire.DataTypeString64,
		wire.DataTypeString128, wire.DataTypeString256, wire.DataTypeString260,
		wire.DataTypeStringV:
		return true
	}
	return false
}

func isNumericType(dt wire.DataType) bool {
	switch dt {
	case wire.DataTypeInt32, wire.DataTypeInt64,
		wire.DataTypeFloat32, wire.DataTypeFloat64:
		return true
	}
	return false
}

func writeString(b *BlockBuilder, dt wire.DataType, s string) {
	if dt == wire.DataTypeStringV {
		b.AddStringV(s)
		return
	}
	b.AddString(s, dt.Size())
}

func readString(r *BlockReader, dt wire.DataType) string {
	if dt == wire.DataTypeStringV {
		return r.ReadStringV()
	}
	return r.ReadString(dt.Size())
}

func writeFloat(b *BlockBuilder, dt wire.DataType, v float64) {
	switch dt {
	case wire.DataTypeInt32:
		b.AddInt32(int32(v))
	case wire.DataTypeInt64:
		b.AddInt64(int64(v))
	case wire.DataTypeFloat32:
		b.AddFloat32(float32(v))
	default:
		if isStringType(dt) {
			writeString(b, dt, strconv.FormatFloat(v, 'f', -1, 64))
			return
		}
		b.AddFloat64(v)
	}
}

func readFloat(r *BlockReader, dt wire.DataType) float64 {
	switch dt {
	case wire.DataTypeInt32:
		return float64(r.ReadInt32())
	case wire.DataTypeInt64:
		return float64(r.ReadInt64())
	case wire.DataTypeFloat32:
		return float64(r.ReadFloat32())
	default:
		if isStringType(dt) {
			s := readString(r, dt)
			if r.Err() != nil {
				return 0
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				r.fail(fmt.Errorf("parse %q as number: %w", s, err))
				return 0
			}
			return v
		}
		return r.ReadFloat64()
	}
}

func writeInt(b *BlockBuilder, dt wire.DataType, v int64) {
	switch dt {
	case wire.DataTypeInt32:
		b.AddInt32(int32(v))
	case wire.DataTypeFloat32:
		b.AddFloat32(float32(v))
	case wire.DataTypeFloat64:
		b.AddFloat64(float64(v))
	default:
		if isStringType(dt) {
			writeString(b, dt, strconv.FormatInt(v, 10))
			return
		}
		b.AddInt64(v)
	}
}

func readInt(r *BlockReader, dt wire.DataType) int64 {
	switch dt {
	case wire.DataTypeInt32:
		return int64(r.ReadInt32())
	case wire.DataTypeFloat32:
		return int64(r.ReadFloat32())
	case wire.DataTypeFloat64:
		return int64(r.ReadFloat64())
	default:
		if isStringType(dt) {
			return int64(readFloat(r, dt))
		}
		return r.ReadInt64()
	}
}

type float64Field[T any] struct {
	fieldMeta
	ptr func(*T) *float64
}

func (f *float64Field[T]) encode(b *BlockBuilder, rec *T) { writeFloat(b, f.datatype, *f.ptr(rec)) }
func (f *float64Field[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = readFloat(r, f.datatype) }

// Float64 binds a float64 field. The wire type defaults to FLOAT64 and may
// be narrowed with As.
func (d *Definition[T]) Float64(name, units string, ptr func(*T) *float64, opts ...FieldOption) *Definition[T] {
	return d.add(&float64Field[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeFloat64, storage: wire.DataTypeFloat64},
		ptr:       ptr,
	}, opts)
}

type float32Field[T any] struct {
	fieldMeta
	ptr func(*T) *float32
}

func (f *float32Field[T]) encode(b *BlockBuilder, rec *T) {
	writeFloat(b, f.datatype, float64(*f.ptr(rec)))
}
func (f *float32Field[T]) decode(r *BlockReader, rec *T) {
	*f.ptr(rec) = float32(readFloat(r, f.datatype))
}

func (d *Definition[T]) Float32(name, units string, ptr func(*T) *float32, opts ...FieldOption) *Definition[T] {
	return d.add(&float32Field[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeFloat32, storage: wire.DataTypeFloat32},
		ptr:       ptr,
	}, opts)
}

type int32Field[T any] struct {
	fieldMeta
	ptr func(*T) *int32
}

func (f *int32Field[T]) encode(b *BlockBuilder, rec *T) { writeInt(b, f.datatype, int64(*f.ptr(rec))) }
func (f *int32Field[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = int32(readInt(r, f.datatype)) }

func (d *Definition[T]) Int32(name, units string, ptr func(*T) *int32, opts ...FieldOption) *Definition[T] {
	return d.add(&int32Field[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt32, storage: wire.DataTypeInt32},
		ptr:       ptr,
	}, opts)
}

type int64Field[T any] struct {
	fieldMeta
	ptr func(*T) *int64
}

func (f *int64Field[T]) encode(b *BlockBuilder, rec *T) { writeInt(b, f.datatype, *f.ptr(rec)) }
func (f *int64Field[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = readInt(r, f.datatype) }

func (d *Definition[T]) Int64(name, units string, ptr func(*T) *int64, opts ...FieldOption) *Definition[T] {
	return d.add(&int64Field[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt64, storage: wire.DataTypeInt64},
		ptr:       ptr,
	}, opts)
}

type boolField[T any] struct {
	fieldMeta
	ptr func(*T) *bool
}

func (f *boolField[T]) encode(b *BlockBuilder, rec *T) {
	v := int64(0)
	if *f.ptr(rec) {
		v = 1
	}
	writeInt(b, f.datatype, v)
}
func (f *boolField[T]) decode(r *BlockReader, rec *T) { *f.ptr(rec) = readInt(r, f.datatype) != 0 }

// Bool binds a bool field carried as INT32 on the wire.
func (d *Definition[T]) Bool(name, units string, ptr func(*T) *bool, opts ...FieldOption) *Definition[T] {
	return d.add(&boolField[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt32},
		ptr:       ptr,
	}, opts)
}

type stringField[T any] struct {
	fieldMeta
	size int
	ptr  func(*T) *string
}

func (f *stringField[T]) encode(b *BlockBuilder, rec *T) {
	if isNumericType(f.datatype) {
		v, _ := strconv.ParseFloat(strings.TrimSpace(*f.ptr(rec)), 64)
		writeFloat(b, f.datatype, v)
		return
	}
	b.AddString(*f.ptr(rec), f.size)
}

func (f *stringField[T]) decode(r *BlockReader, rec *T) {
	if isNumericType(f.datatype) {
		*f.ptr(rec) = formatNumeric(f.datatype, readFloat(r, f.datatype))
		return
	}
	*f.ptr(rec) = r.ReadString(f.size)
}

func formatNumeric(dt wire.DataType, v float64) string {
	if dt == wire.DataTypeInt32 || dt == wire.DataTypeInt64 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// String binds a fixed-width string field. Size must be one of the widths
// the wire format defines.
func (d *Definition[T]) String(name string, size int, ptr func(*T) *string, opts ...FieldOption) *Definition[T] {
	dt, ok := stringType(size)
	if !ok {
		panic(fmt.Sprintf("data: unsupported string size %d", size))
	}
	return d.add(&stringField[T]{
		fieldMeta: fieldMeta{name: name, datatype: dt},
		size:      size,
		ptr:       ptr,
	}, opts)
}

func stringType(size int) (wire.DataType, bool) {
	switch size {
	case 8:
		return wire.DataTypeString8, true
	case 32:
		return wire.DataTypeString32, true
	case 64:
		return wire.DataTypeString64, true
	case 128:
		return wire.DataTypeString128, true
	case 256:
		return wire.DataTypeString256, true
	case 260:
		return wire.DataTypeString260, true
	}
	return 0, false
}

type stringVField[T any] struct {
	fieldMeta
	ptr func(*T) *string
}

func (f *stringVField[T]) encode(b *BlockBuilder, rec *T) { b.AddStringV(*f.ptr(rec)) }
func (f *stringVField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadStringV() }

// StringV binds a NUL-terminated variable-length string field. Definitions
// containing one cannot use the mapped fast path.
func (d *Definition[T]) StringV(name string, ptr func(*T) *string, opts ...FieldOption) *Definition[T] {
	return d.add(&stringVField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeStringV},
		ptr:       ptr,
	}, opts)
}

// Func adders bind a variable through a getter and setter pair instead of
// a pointer accessor, for values that live behind methods or need side
// effects on update. Func-bound fields never qualify for the mapped fast
// path.

type float64FuncField[T any] struct {
	fieldMeta
	get func(*T) float64
	set func(*T, float64)
}

func (f *float64FuncField[T]) encode(b *BlockBuilder, rec *T) { writeFloat(b, f.datatype, f.get(rec)) }
func (f *float64FuncField[T]) decode(r *BlockReader, rec *T)  { f.set(rec, readFloat(r, f.datatype)) }

func (d *Definition[T]) Float64Func(name, units string, get func(*T) float64, set func(*T, float64), opts ...FieldOption) *Definition[T] {
	return d.add(&float64FuncField[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeFloat64},
		get:       get,
		set:       set,
	}, opts)
}

type int32FuncField[T any] struct {
	fieldMeta
	get func(*T) int32
	set func(*T, int32)
}

func (f *int32FuncField[T]) encode(b *BlockBuilder, rec *T) {
	writeInt(b, f.datatype, int64(f.get(rec)))
}
func (f *int32FuncField[T]) decode(r *BlockReader, rec *T) {
	f.set(rec, int32(readInt(r, f.datatype)))
}

func (d *Definition[T]) Int32Func(name, units string, get func(*T) int32, set func(*T, int32), opts ...FieldOption) *Definition[T] {
	return d.add(&int32FuncField[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt32},
		get:       get,
		set:       set,
	}, opts)
}

type int64FuncField[T any] struct {
	fieldMeta
	get func(*T) int64
	set func(*T, int64)
}

func (f *int64FuncField[T]) encode(b *BlockBuilder, rec *T) { writeInt(b, f.datatype, f.get(rec)) }
func (f *int64FuncField[T]) decode(r *BlockReader, rec *T)  { f.set(rec, readInt(r, f.datatype)) }

func (d *Definition[T]) Int64Func(name, units string, get func(*T) int64, set func(*T, int64), opts ...FieldOption) *Definition[T] {
	return d.add(&int64FuncField[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt64},
		get:       get,
		set:       set,
	}, opts)
}

type boolFuncField[T any] struct {
	fieldMeta
	get func(*T) bool
	set func(*T, bool)
}

func (f *boolFuncField[T]) encode(b *BlockBuilder, rec *T) {
	v := int64(0)
	if f.get(rec) {
		v = 1
	}
	writeInt(b, f.datatype, v)
}
func (f *boolFuncField[T]) decode(r *BlockReader, rec *T) {
	f.set(rec, readInt(r, f.datatype) != 0)
}

func (d *Definition[T]) BoolFunc(name, units string, get func(*T) bool, set func(*T, bool), opts ...FieldOption) *Definition[T] {
	return d.add(&boolFuncField[T]{
		fieldMeta: fieldMeta{name: name, units: units, datatype: wire.DataTypeInt32},
		get:       get,
		set:       set,
	}, opts)
}

type stringFuncField[T any] struct {
	fieldMeta
	size int
	get  func(*T) string
	set  func(*T, string)
}

func (f *stringFuncField[T]) encode(b *BlockBuilder, rec *T) { b.AddString(f.get(rec), f.size) }
func (f *stringFuncField[T]) decode(r *BlockReader, rec *T)  { f.set(rec, r.ReadString(f.size)) }

func (d *Definition[T]) StringFunc(name string, size int, get func(*T) string, set func(*T, string), opts ...FieldOption) *Definition[T] {
	dt, ok := stringType(size)
	if !ok {
		panic(fmt.Sprintf("data: unsupported string size %d", size))
	}
	return d.add(&stringFuncField[T]{
		fieldMeta: fieldMeta{name: name, datatype: dt},
		size:      size,
		get:       get,
		set:       set,
	}, opts)
}

type latLonAltField[T any] struct {
	fieldMeta
	ptr func(*T) *wire.LatLonAlt
}

func (f *latLonAltField[T]) encode(b *BlockBuilder, rec *T) { b.AddLatLonAlt(*f.ptr(rec)) }
func (f *latLonAltField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadLatLonAlt() }

func (d *Definition[T]) LatLonAlt(name string, ptr func(*T) *wire.LatLonAlt, opts ...FieldOption) *Definition[T] {
	return d.add(&latLonAltField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeLatLonAlt, storage: wire.DataTypeLatLonAlt},
		ptr:       ptr,
	}, opts)
}

type xyzField[T any] struct {
	fieldMeta
	ptr func(*T) *wire.XYZ
}

func (f *xyzField[T]) encode(b *BlockBuilder, rec *T) { b.AddXYZ(*f.ptr(rec)) }
func (f *xyzField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadXYZ() }

func (d *Definition[T]) XYZ(name string, ptr func(*T) *wire.XYZ, opts ...FieldOption) *Definition[T] {
	return d.add(&xyzField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeXYZ, storage: wire.DataTypeXYZ},
		ptr:       ptr,
	}, opts)
}

type initPositionField[T any] struct {
	fieldMeta
	ptr func(*T) *wire.InitPosition
}

func (f *initPositionField[T]) encode(b *BlockBuilder, rec *T) { b.AddInitPosition(*f.ptr(rec)) }
func (f *initPositionField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadInitPosition() }

func (d *Definition[T]) InitPosition(name string, ptr func(*T) *wire.InitPosition, opts ...FieldOption) *Definition[T] {
	return d.add(&initPositionField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeInitPosition, storage: wire.DataTypeInitPosition},
		ptr:       ptr,
	}, opts)
}

type markerStateField[T any] struct {
	fieldMeta
	ptr func(*T) *wire.MarkerState
}

func (f *markerStateField[T]) encode(b *BlockBuilder, rec *T) { b.AddMarkerState(*f.ptr(rec)) }
func (f *markerStateField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadMarkerState() }

func (d *Definition[T]) MarkerState(name string, ptr func(*T) *wire.MarkerState, opts ...FieldOption) *Definition[T] {
	return d.add(&markerStateField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeMarkerState},
		ptr:       ptr,
	}, opts)
}

type waypointField[T any] struct {
	fieldMeta
	ptr func(*T) *wire.Waypoint
}

func (f *waypointField[T]) encode(b *BlockBuilder, rec *T) { b.AddWaypoint(*f.ptr(rec)) }
func (f *waypointField[T]) decode(r *BlockReader, rec *T)  { *f.ptr(rec) = r.ReadWaypoint() }

func (d *Definition[T]) Waypoint(name string, ptr func(*T) *wire.Waypoint, opts ...FieldOption) *Definition[T] {
	return d.add(&waypointField[T]{
		fieldMeta: fieldMeta{name: name, datatype: wire.DataTypeWaypoint},
		ptr:       ptr,
	}, opts)
}

// As overrides the wire type of the most recently added field, for scalar
// fields whose storage type differs from the declared simulator type.
func (d *Definition[T]) As(dt wire.DataType) *Definition[T] {
	if len(d.fields) == 0 {
		panic("data: As called before any field was added")
	}
	d.fields[len(d.fields)-1].meta().datatype = dt
	return d
}
