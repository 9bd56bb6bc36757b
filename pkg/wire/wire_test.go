package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/wire"
	"aerolink/pkg/wire/mockwire"
)

func TestFrameHeader(t *testing.T) {
	f := mockwire.OpenFrame("Test Simulator")
	assert.Equal(t, wire.RecvOpen, f.Kind())
	assert.NotEmpty(t, f.Payload())

	var short wire.Frame = []byte{1, 2, 3}
	assert.Equal(t, wire.RecvNull, short.Kind())
	assert.EqualValues(t, 0, short.Version())
	assert.Nil(t, short.Payload())
}

func TestDecodeOpen(t *testing.T) {
	m, err := wire.DecodeOpen(mockwire.OpenFrame("Test Simulator"))
	require.NoError(t, err)
	assert.Equal(t, "Test Simulator", m.ApplicationName)
}

func TestDecodeEvent(t *testing.T) {
	m, err := wire.DecodeEvent(mockwire.EventFrame(3, 41, 7))
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.GroupID)
	assert.EqualValues(t, 41, m.EventID)
	assert.EqualValues(t, 7, m.Data)

	_, err = wire.DecodeEvent(mockwire.QuitFrame())
	require.ErrorIs(t, err, wire.ErrShortFrame)
}

func TestDecodeException(t *testing.T) {
	m, err := wire.DecodeException(mockwire.ExceptionFrame(wire.ExceptionNameUnrecognized, 99, 2))
	require.NoError(t, err)
	assert.Equal(t, wire.ExceptionNameUnrecognized, m.Code)
	assert.EqualValues(t, 99, m.SendID)
	assert.EqualValues(t, 2, m.Index)
}

func TestDecodeSimObjectData(t *testing.T) {
	block := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	f := mockwire.SimObjectDataFrame(11, wire.ObjectIDUser, 5, 0, 1, block)

	m, err := wire.DecodeSimObjectData(f)
	require.NoError(t, err)
	assert.EqualValues(t, 11, m.RequestID)
	assert.Equal(t, wire.ObjectIDUser, m.ObjectID)
	assert.EqualValues(t, 5, m.DefineID)
	assert.Equal(t, block, m.Data)
	assert.False(t, m.Tagged())
}

func TestCorrelationID(t *testing.T) {
	tests := []struct {
		name   string
		frame  wire.Frame
		wantID wire.RequestID
		wantOK bool
	}{
		{"SimObjectData", mockwire.SimObjectDataFrame(7, 0, 1, 0, 1, make([]byte, 8)), 7, true},
		{"SystemState", mockwire.SystemStateFrame(12, 1, 0, "x"), 12, true},
		{"AssignedObjectID", mockwire.AssignedObjectIDFrame(9, 1234), 9, true},
		{"FacilityDataEnd", mockwire.FacilityDataEndFrame(4), 4, true},
		{"Open", mockwire.OpenFrame("sim"), 0, false},
		{"Quit", mockwire.QuitFrame(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := wire.CorrelationID(tt.frame)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestDecodeAirportList(t *testing.T) {
	f := mockwire.AirportListFrame(3, 0, 1, []mockwire.Airport{
		{Ident: "LOWI", Region: "LO", Lat: 47.26, Lon: 11.34, Alt: 581},
	})
	m, err := wire.DecodeAirportList(f)
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.RequestID)
	assert.True(t, m.LastPart())
	require.Len(t, m.Airports, 1)
	assert.Equal(t, "LOWI", m.Airports[0].Ident)
	assert.InDelta(t, 47.26, m.Airports[0].Latitude, 1e-9)
}
