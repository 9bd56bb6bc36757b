package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/wire"
)

type aircraftState struct {
	Title    string
	Lat      float64
	Lon      float64
	AltFeet  float64
	OnGround bool
	Flaps    int32
}

func aircraftDef() *Definition[aircraftState] {
	return NewDefinition[aircraftState]().
		String("TITLE", 256, func(r *aircraftState) *string { return &r.Title }).
		Float64("PLANE LATITUDE", "degrees", func(r *aircraftState) *float64 { return &r.Lat }).
		Float64("PLANE LONGITUDE", "degrees", func(r *aircraftState) *float64 { return &r.Lon }).
		Float64("PLANE ALTITUDE", "feet", func(r *aircraftState) *float64 { return &r.AltFeet }, WithEpsilon(1)).
		Bool("SIM ON GROUND", "bool", func(r *aircraftState) *bool { return &r.OnGround }).
		Int32("FLAPS HANDLE INDEX", "number", func(r *aircraftState) *int32 { return &r.Flaps })
}

func TestDefinitionRoundTrip(t *testing.T) {
	def := aircraftDef()
	require.Equal(t, 6, def.FieldCount())
	require.Equal(t, 256+8*3+4+4, def.Size())

	in := aircraftState{
		Title: "Cessna 172", Lat: 47.26, Lon: 11.34, AltFeet: 1907.5,
		OnGround: true, Flaps: 2,
	}
	block, err := def.Marshal(&in)
	require.NoError(t, err)
	require.Len(t, block, def.Size())

	var out aircraftState
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, in, out)
}

func TestDefinitionUnmarshalShortBlock(t *testing.T) {
	def := aircraftDef()
	var out aircraftState
	err := def.Unmarshal(make([]byte, 16), &out)
	require.Error(t, err)
}

func TestDefinitionTaggedSubset(t *testing.T) {
	def := aircraftDef()

	// datum ids follow definition order starting at 1: altitude is 4, flaps is 6
	block := NewBlockBuilder().
		AddUint32(4).AddFloat64(2500).
		AddUint32(6).AddInt32(1).
		Bytes()

	out := aircraftState{Title: "keep me"}
	require.NoError(t, def.UnmarshalTagged(block, &out))
	assert.Equal(t, 2500.0, out.AltFeet)
	assert.Equal(t, int32(1), out.Flaps)
	assert.Equal(t, "keep me", out.Title)
}

func TestDefinitionTaggedUnknownDatum(t *testing.T) {
	def := aircraftDef()
	block := NewBlockBuilder().AddUint32(99).AddFloat64(1).Bytes()

	var out aircraftState
	err := def.UnmarshalTagged(block, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99")
}

func TestDefinitionTaggedSkipMarker(t *testing.T) {
	def := aircraftDef()

	// id 0 marks a skipped entry and carries no value
	block := NewBlockBuilder().
		AddUint32(0).
		AddUint32(2).AddFloat64(48.35).
		Bytes()

	var out aircraftState
	require.NoError(t, def.UnmarshalTagged(block, &out))
	assert.Equal(t, 48.35, out.Lat)
}

func TestDefinitionMarshalTaggedRoundTrip(t *testing.T) {
	def := aircraftDef()
	in := aircraftState{
		Title: "DA62", Lat: 47.26, Lon: 11.34, AltFeet: 1907.5,
		OnGround: true, Flaps: 2,
	}
	block, err := def.MarshalTagged(&in)
	require.NoError(t, err)
	require.Len(t, block, def.Size()+4*def.FieldCount())

	var out aircraftState
	require.NoError(t, def.UnmarshalTagged(block, &out))
	assert.Equal(t, in, out)
}

func TestDefinitionUnmarshalTaggedNBound(t *testing.T) {
	def := aircraftDef()
	block := NewBlockBuilder().
		AddUint32(4).AddFloat64(2500).
		AddUint32(6).AddInt32(1).
		Bytes()

	var out aircraftState
	require.NoError(t, def.UnmarshalTaggedN(block, &out, 1))
	assert.Equal(t, 2500.0, out.AltFeet)
	assert.Zero(t, out.Flaps)
}

func TestDefinitionUnmarshalMessage(t *testing.T) {
	def := aircraftDef()
	in := aircraftState{Title: "DA40", Lat: 1, Lon: 2, AltFeet: 3}
	block, err := def.Marshal(&in)
	require.NoError(t, err)

	var out aircraftState
	msg := &wire.SimObjectDataMsg{Flags: 0, Data: block}
	require.NoError(t, def.UnmarshalMessage(msg, &out))
	assert.Equal(t, in, out)

	tagged := &wire.SimObjectDataMsg{
		Flags:       wire.DataRequestFlagTagged,
		DefineCount: 1,
		Data:        NewBlockBuilder().AddUint32(2).AddFloat64(48.35).Bytes(),
	}
	require.NoError(t, def.UnmarshalMessage(tagged, &out))
	assert.Equal(t, 48.35, out.Lat)
}

func TestDefinitionScalarConversion(t *testing.T) {
	type rec struct{ Alt float64 }
	def := NewDefinition[rec]().
		Float64("INDICATED ALTITUDE", "feet", func(r *rec) *float64 { return &r.Alt }).
		As(wire.DataTypeInt32)
	require.Equal(t, 4, def.Size())

	block, err := def.Marshal(&rec{Alt: 3500.7})
	require.NoError(t, err)
	require.Len(t, block, 4)

	var out rec
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, 3500.0, out.Alt)
}

func TestDefinitionNumericAsString(t *testing.T) {
	type rec struct{ Alt float64 }
	def := NewDefinition[rec]().
		Float64("INDICATED ALTITUDE", "feet", func(r *rec) *float64 { return &r.Alt }).
		As(wire.DataTypeString32)
	require.Equal(t, 32, def.Size())

	block, err := def.Marshal(&rec{Alt: 3500.5})
	require.NoError(t, err)
	require.Len(t, block, 32)

	var out rec
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, 3500.5, out.Alt)
}

func TestDefinitionNumericAsStringBadValue(t *testing.T) {
	type rec struct{ Alt float64 }
	def := NewDefinition[rec]().
		Float64("INDICATED ALTITUDE", "feet", func(r *rec) *float64 { return &r.Alt }).
		As(wire.DataTypeString32)

	block := NewBlockBuilder().AddString("not a number", 32).Bytes()
	var out rec
	require.Error(t, def.Unmarshal(block, &out))
}

func TestDefinitionStringAsNumeric(t *testing.T) {
	type rec struct{ Code string }
	def := NewDefinition[rec]().
		String("TRANSPONDER CODE:1", 32, func(r *rec) *string { return &r.Code }).
		As(wire.DataTypeInt32)
	require.Equal(t, 4, def.Size())

	block, err := def.Marshal(&rec{Code: "7700"})
	require.NoError(t, err)
	require.Len(t, block, 4)

	var out rec
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, "7700", out.Code)
}

func TestDefinitionFuncFields(t *testing.T) {
	type rec struct {
		alt   float64
		flaps int32
		gnd   bool
	}
	def := NewDefinition[rec]().
		Float64Func("PLANE ALTITUDE", "feet",
			func(r *rec) float64 { return r.alt },
			func(r *rec, v float64) { r.alt = v }).
		Int32Func("FLAPS HANDLE INDEX", "number",
			func(r *rec) int32 { return r.flaps },
			func(r *rec, v int32) { r.flaps = v }).
		BoolFunc("SIM ON GROUND", "bool",
			func(r *rec) bool { return r.gnd },
			func(r *rec, v bool) { r.gnd = v })
	require.Equal(t, 16, def.Size())

	in := rec{alt: 2500, flaps: 3, gnd: true}
	block, err := def.Marshal(&in)
	require.NoError(t, err)

	var out rec
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, in, out)
}

type mappedState struct {
	Lat float64
	Lon float64
	Alt float64
	Hdg int32
	Gnd int32
}

func TestDefinitionMapped(t *testing.T) {
	def := NewDefinition[mappedState]().
		Float64("PLANE LATITUDE", "degrees", func(r *mappedState) *float64 { return &r.Lat }).
		Float64("PLANE LONGITUDE", "degrees", func(r *mappedState) *float64 { return &r.Lon }).
		Float64("PLANE ALTITUDE", "feet", func(r *mappedState) *float64 { return &r.Alt }).
		Int32("PLANE HEADING DEGREES TRUE", "degrees", func(r *mappedState) *int32 { return &r.Hdg }).
		Int32("SIM ON GROUND", "bool", func(r *mappedState) *int32 { return &r.Gnd })
	require.NoError(t, def.UseMapping())

	in := mappedState{Lat: 1.5, Lon: -2.5, Alt: 3000, Hdg: 270, Gnd: 1}
	block, err := def.Marshal(&in)
	require.NoError(t, err)
	require.Len(t, block, 32)

	var out mappedState
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, in, out)
}

func TestDefinitionMappedRejectsConversion(t *testing.T) {
	// int32 storage under a FLOAT32 wire type has matching sizes but
	// incompatible bit layouts, so the overlay must be refused.
	type rec struct {
		Hdg int32
		Brk int32
	}
	def := NewDefinition[rec]().
		Int32("PLANE HEADING DEGREES TRUE", "degrees", func(r *rec) *int32 { return &r.Hdg }).
		As(wire.DataTypeFloat32).
		Int32("BRAKE PARKING POSITION", "position", func(r *rec) *int32 { return &r.Brk }).
		As(wire.DataTypeFloat32)
	require.Error(t, def.UseMapping())
}

func TestDefinitionMappedRejectsBool(t *testing.T) {
	type rec struct {
		Gnd bool
		Pad [3]byte
	}
	def := NewDefinition[rec]().
		Bool("SIM ON GROUND", "bool", func(r *rec) *bool { return &r.Gnd })
	require.Error(t, def.UseMapping())
}

func TestDefinitionMappedRejectsFuncField(t *testing.T) {
	type rec struct{ Alt float64 }
	def := NewDefinition[rec]().
		Float64Func("PLANE ALTITUDE", "feet",
			func(r *rec) float64 { return r.Alt },
			func(r *rec, v float64) { r.Alt = v })
	require.Error(t, def.UseMapping())
}

func TestDefinitionMappedSizeMismatch(t *testing.T) {
	type padded struct {
		Flag int32
		Lat  float64 // 4 bytes of padding before this field
	}
	def := NewDefinition[padded]().
		Int32("SIM ON GROUND", "bool", func(r *padded) *int32 { return &r.Flag }).
		Float64("PLANE LATITUDE", "degrees", func(r *padded) *float64 { return &r.Lat })
	require.Error(t, def.UseMapping())
}

type defRecorder struct {
	wire.Transport
	calls []string
	types []wire.DataType
	ids   []uint32
}

func (d *defRecorder) AddToDataDefinition(def wire.DefineID, name, units string, datatype wire.DataType, epsilon float32, datumID uint32) error {
	d.calls = append(d.calls, name)
	d.types = append(d.types, datatype)
	d.ids = append(d.ids, datumID)
	return nil
}

func TestDefinitionRegisterTo(t *testing.T) {
	rec := &defRecorder{}
	require.NoError(t, aircraftDef().RegisterTo(rec, 7))

	assert.Equal(t, []string{
		"TITLE", "PLANE LATITUDE", "PLANE LONGITUDE",
		"PLANE ALTITUDE", "SIM ON GROUND", "FLAPS HANDLE INDEX",
	}, rec.calls)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, rec.ids)
	assert.Equal(t, wire.DataTypeString256, rec.types[0])
	assert.Equal(t, wire.DataTypeInt32, rec.types[5])
}

func TestDefineFromTags(t *testing.T) {
	type tagged struct {
		Title string  `sim:"TITLE" size:"128"`
		Lat   float64 `sim:"PLANE LATITUDE" units:"degrees"`
		Gnd   bool    `sim:"SIM ON GROUND" units:"bool"`
		Skip  int32
	}
	def, err := DefineFromTags[tagged]()
	require.NoError(t, err)
	require.Equal(t, 3, def.FieldCount())
	require.Equal(t, 128+8+4, def.Size())

	in := tagged{Title: "TBM 930", Lat: -33.94, Gnd: true, Skip: 9}
	block, err := def.Marshal(&in)
	require.NoError(t, err)

	var out tagged
	require.NoError(t, def.Unmarshal(block, &out))
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Lat, out.Lat)
	assert.True(t, out.Gnd)
	assert.Zero(t, out.Skip)
}

func TestDefineFromTagsRejectsBadSize(t *testing.T) {
	type bad struct {
		Name string `sim:"TITLE" size:"100"`
	}
	_, err := DefineFromTags[bad]()
	require.Error(t, err)
}
