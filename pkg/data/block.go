// Package data implements the two layers of SimConnect's data plumbing: the
// flat byte-buffer codecs used by every data frame (BlockBuilder and
// BlockReader), and the typed data-definition engine that binds Go record
// fields to simulator variables.
package data

import (
	"encoding/binary"
	"fmt"
	"math"

	"aerolink/pkg/wire"
)

// ErrOutOfBounds is wrapped by reads past the end of a data block.
var ErrOutOfBounds = fmt.Errorf("read beyond end of data block")

// BlockBuilder appends primitive and composite values to a growing buffer in
// the simulator's little-endian wire encoding. Methods chain.
type BlockBuilder struct {
	buf []byte
}

// NewBlockBuilder returns a builder, optionally pre-sized.
func NewBlockBuilder(sizeHint ...int) *BlockBuilder {
	b := &BlockBuilder{}
	if len(sizeHint) > 0 && sizeHint[0] > 0 {
		b.buf = make([]byte, 0, sizeHint[0])
	}
	return b
}

// Bytes returns the accumulated block.
func (b *BlockBuilder) Bytes() []byte { return b.buf }

// Len returns the current size of the block.
func (b *BlockBuilder) Len() int { return len(b.buf) }

// Reset empties the builder keeping its capacity.
func (b *BlockBuilder) Reset() { b.buf = b.buf[:0] }

func (b *BlockBuilder) AddInt8(v int8) *BlockBuilder {
	b.buf = append(b.buf, byte(v))
	return b
}

func (b *BlockBuilder) AddInt32(v int32) *BlockBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(v))
	return b
}

func (b *BlockBuilder) AddUint32(v uint32) *BlockBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *BlockBuilder) AddInt64(v int64) *BlockBuilder {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(v))
	return b
}

func (b *BlockBuilder) AddFloat32(v float32) *BlockBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
	return b
}

func (b *BlockBuilder) AddFloat64(v float64) *BlockBuilder {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, math.Float64bits(v))
	return b
}

// AddString writes exactly size bytes: the string truncated to size, padded
// with zeros. No trailing NUL is guaranteed inside the declared window.
func (b *BlockBuilder) AddString(v string, size int) *BlockBuilder {
	if len(v) >= size {
		b.buf = append(b.buf, v[:size]...)
		return b
	}
	b.buf = append(b.buf, v...)
	b.pad(size - len(v))
	return b
}

func (b *BlockBuilder) AddString8(v string) *BlockBuilder   { return b.AddString(v, 8) }
func (b *BlockBuilder) AddString32(v string) *BlockBuilder  { return b.AddString(v, 32) }
func (b *BlockBuilder) AddString64(v string) *BlockBuilder  { return b.AddString(v, 64) }
func (b *BlockBuilder) AddString128(v string) *BlockBuilder { return b.AddString(v, 128) }
func (b *BlockBuilder) AddString256(v string) *BlockBuilder { return b.AddString(v, 256) }
func (b *BlockBuilder) AddString260(v string) *BlockBuilder { return b.AddString(v, 260) }

// AddStringV writes the string followed by its NUL terminator.
func (b *BlockBuilder) AddStringV(v string) *BlockBuilder {
	b.buf = append(b.buf, v...)
	b.buf = append(b.buf, 0)
	return b
}

func (b *BlockBuilder) AddLatLonAlt(v wire.LatLonAlt) *BlockBuilder {
	return b.AddFloat64(v.Latitude).AddFloat64(v.Longitude).AddFloat64(v.Altitude)
}

// AddLatLonAltParts writes the triple by component.
func (b *BlockBuilder) AddLatLonAltParts(lat, lon, alt float64) *BlockBuilder {
	return b.AddFloat64(lat).AddFloat64(lon).AddFloat64(alt)
}

func (b *BlockBuilder) AddXYZ(v wire.XYZ) *BlockBuilder {
	return b.AddFloat64(v.X).AddFloat64(v.Y).AddFloat64(v.Z)
}

func (b *BlockBuilder) AddInitPosition(v wire.InitPosition) *BlockBuilder {
	return b.AddFloat64(v.Latitude).AddFloat64(v.Longitude).AddFloat64(v.Altitude).
		AddFloat64(v.Pitch).AddFloat64(v.Bank).AddFloat64(v.Heading).
		AddInt32(v.OnGround).AddInt32(v.Airspeed)
}

// AddInitPositionParts writes an InitPosition from a position and attitude.
func (b *BlockBuilder) AddInitPositionParts(pos wire.LatLonAlt, pbh wire.PBH, onGround bool, airspeed int32) *BlockBuilder {
	ground := int32(0)
	if onGround {
		ground = 1
	}
	return b.AddLatLonAlt(pos).
		AddFloat64(pbh.Pitch).AddFloat64(pbh.Bank).AddFloat64(pbh.Heading).
		AddInt32(ground).AddInt32(airspeed)
}

func (b *BlockBuilder) AddMarkerState(v wire.MarkerState) *BlockBuilder {
	return b.AddString64(v.Name).AddInt32(v.State)
}

func (b *BlockBuilder) AddWaypoint(v wire.Waypoint) *BlockBuilder {
	return b.AddFloat64(v.Latitude).AddFloat64(v.Longitude).AddFloat64(v.Altitude).
		AddUint32(v.Flags).AddFloat64(v.Speed).AddFloat64(v.PercentThrottle)
}

func (b *BlockBuilder) pad(n int) {
	for range n {
		b.buf = append(b.buf, 0)
	}
}

// BlockReader walks a data block with a cursor. Errors are sticky: the first
// out-of-bounds read poisons the reader, later reads return zero values and
// Err reports the failure. The cursor never advances past the buffer.
type BlockReader struct {
	buf []byte
	off int
	err error
}

// NewBlockReader wraps a received data block.
func NewBlockReader(buf []byte) *BlockReader {
	return &BlockReader{buf: buf}
}

// Err returns the first read error, if any.
func (r *BlockReader) Err() error { return r.err }

// fail poisons the reader with a decode error, keeping the first one.
func (r *BlockReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Offset returns the cursor position.
func (r *BlockReader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *BlockReader) Remaining() int { return len(r.buf) - r.off }

func (r *BlockReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrOutOfBounds, n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *BlockReader) ReadInt8() int8 {
	if b := r.take(1); b != nil {
		return int8(b[0])
	}
	return 0
}

func (r *BlockReader) ReadInt32() int32 {
	if b := r.take(4); b != nil {
		return int32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (r *BlockReader) ReadUint32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *BlockReader) ReadInt64() int64 {
	if b := r.take(8); b != nil {
		return int64(binary.LittleEndian.Uint64(b))
	}
	return 0
}

func (r *BlockReader) ReadFloat32() float32 {
	if b := r.take(4); b != nil {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (r *BlockReader) ReadFloat64() float64 {
	if b := r.take(8); b != nil {
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// ReadString consumes exactly size bytes and returns the value up to the
// first NUL. The cursor always advances by the declared width.
func (r *BlockReader) ReadString(size int) string {
	if b := r.take(size); b != nil {
		for i, c := range b {
			if c == 0 {
				return string(b[:i])
			}
		}
		return string(b)
	}
	return ""
}

func (r *BlockReader) ReadString8() string   { return r.ReadString(8) }
func (r *BlockReader) ReadString32() string  { return r.ReadString(32) }
func (r *BlockReader) ReadString64() string  { return r.ReadString(64) }
func (r *BlockReader) ReadString128() string { return r.ReadString(128) }
func (r *BlockReader) ReadString256() string { return r.ReadString(256) }
func (r *BlockReader) ReadString260() string { return r.ReadString(260) }

// ReadStringV reads up to the next NUL and consumes the terminator too.
func (r *BlockReader) ReadStringV() string {
	if r.err != nil {
		return ""
	}
	rest := r.buf[r.off:]
	for i, c := range rest {
		if c == 0 {
			r.off += i + 1
			return string(rest[:i])
		}
	}
	r.err = fmt.Errorf("%w: unterminated string at offset %d", ErrOutOfBounds, r.off)
	return ""
}

func (r *BlockReader) ReadLatLonAlt() wire.LatLonAlt {
	return wire.LatLonAlt{
		Latitude:  r.ReadFloat64(),
		Longitude: r.ReadFloat64(),
		Altitude:  r.ReadFloat64(),
	}
}

func (r *BlockReader) ReadXYZ() wire.XYZ {
	return wire.XYZ{X: r.ReadFloat64(), Y: r.ReadFloat64(), Z: r.ReadFloat64()}
}

func (r *BlockReader) ReadInitPosition() wire.InitPosition {
	return wire.InitPosition{
		Latitude:  r.ReadFloat64(),
		Longitude: r.ReadFloat64(),
		Altitude:  r.ReadFloat64(),
		Pitch:     r.ReadFloat64(),
		Bank:      r.ReadFloat64(),
		Heading:   r.ReadFloat64(),
		OnGround:  r.ReadInt32(),
		Airspeed:  r.ReadInt32(),
	}
}

func (r *BlockReader) ReadMarkerState() wire.MarkerState {
	return wire.MarkerState{Name: r.ReadString64(), State: r.ReadInt32()}
}

func (r *BlockReader) ReadWaypoint() wire.Waypoint {
	return wire.Waypoint{
		Latitude:        r.ReadFloat64(),
		Longitude:       r.ReadFloat64(),
		Altitude:        r.ReadFloat64(),
		Flags:           r.ReadUint32(),
		Speed:           r.ReadFloat64(),
		PercentThrottle: r.ReadFloat64(),
	}
}
