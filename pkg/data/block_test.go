package data

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/wire"
)

func TestBlockRoundTrip(t *testing.T) {
	b := NewBlockBuilder()
	b.AddInt32(-42).
		AddUint32(7).
		AddInt64(1 << 40).
		AddFloat32(1.5).
		AddFloat64(-2.25).
		AddString32("N12345").
		AddStringV("Cessna Skyhawk")

	r := NewBlockReader(b.Bytes())
	assert.Equal(t, int32(-42), r.ReadInt32())
	assert.Equal(t, uint32(7), r.ReadUint32())
	assert.Equal(t, int64(1<<40), r.ReadInt64())
	assert.Equal(t, float32(1.5), r.ReadFloat32())
	assert.Equal(t, -2.25, r.ReadFloat64())
	assert.Equal(t, "N12345", r.ReadString32())
	assert.Equal(t, "Cessna Skyhawk", r.ReadStringV())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestBlockFixedStringTruncates(t *testing.T) {
	long := "a string well beyond eight bytes"
	b := NewBlockBuilder().AddString8(long)
	require.Equal(t, 8, b.Len())

	r := NewBlockReader(b.Bytes())
	assert.Equal(t, long[:8], r.ReadString8())
	require.NoError(t, r.Err())
}

func TestBlockFixedStringPads(t *testing.T) {
	b := NewBlockBuilder().AddString64("KJFK").AddInt32(9)
	require.Equal(t, 68, b.Len())

	r := NewBlockReader(b.Bytes())
	assert.Equal(t, "KJFK", r.ReadString64())
	assert.Equal(t, int32(9), r.ReadInt32())
	require.NoError(t, r.Err())
}

func TestBlockReaderStickyError(t *testing.T) {
	b := NewBlockBuilder().AddInt32(1)
	r := NewBlockReader(b.Bytes())

	assert.Equal(t, int32(1), r.ReadInt32())
	assert.Equal(t, float64(0), r.ReadFloat64())
	require.Error(t, r.Err())
	assert.True(t, errors.Is(r.Err(), ErrOutOfBounds))

	// cursor stays put, later reads keep failing
	off := r.Offset()
	assert.Equal(t, int32(0), r.ReadInt32())
	assert.Equal(t, off, r.Offset())
}

func TestBlockReaderUnterminatedStringV(t *testing.T) {
	r := NewBlockReader([]byte{'a', 'b', 'c'})
	assert.Equal(t, "", r.ReadStringV())
	assert.True(t, errors.Is(r.Err(), ErrOutOfBounds))
}

func TestBlockComposites(t *testing.T) {
	pos := wire.LatLonAlt{Latitude: 47.26, Longitude: 11.34, Altitude: 1907}
	ip := wire.InitPosition{
		Latitude: 50.03, Longitude: 8.53, Altitude: 364,
		Pitch: 0, Bank: 0, Heading: 250,
		OnGround: 1, Airspeed: 0,
	}
	wp := wire.Waypoint{Latitude: 1, Longitude: 2, Altitude: 3, Flags: 4, Speed: 5, PercentThrottle: 6}

	b := NewBlockBuilder().AddLatLonAlt(pos).AddInitPosition(ip).AddWaypoint(wp)
	require.Equal(t, 24+64+44, b.Len())

	r := NewBlockReader(b.Bytes())
	assert.Equal(t, pos, r.ReadLatLonAlt())
	assert.Equal(t, ip, r.ReadInitPosition())
	assert.Equal(t, wp, r.ReadWaypoint())
	require.NoError(t, r.Err())
}

func TestBlockScalarProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	props := gopter.NewProperties(params)

	props.Property("float64 survives the wire", prop.ForAll(
		func(v float64) bool {
			r := NewBlockReader(NewBlockBuilder().AddFloat64(v).Bytes())
			return r.ReadFloat64() == v && r.Err() == nil
		},
		gen.Float64(),
	))

	props.Property("int32 survives the wire", prop.ForAll(
		func(v int32) bool {
			r := NewBlockReader(NewBlockBuilder().AddInt32(v).Bytes())
			return r.ReadInt32() == v && r.Err() == nil
		},
		gen.Int32(),
	))

	props.Property("short strings survive a fixed window", prop.ForAll(
		func(s string) bool {
			r := NewBlockReader(NewBlockBuilder().AddString256(s).Bytes())
			return r.ReadString256() == s && r.Err() == nil
		},
		gen.RegexMatch(`[ -~]{0,64}`),
	))

	props.TestingRun(t)
}
