package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/data"
	"aerolink/pkg/events"
	"aerolink/pkg/wire"
	"aerolink/pkg/wire/mockwire"
)

type position struct {
	Lat float64
	Lon float64
	Alt float64
}

func positionDef() *data.Definition[position] {
	return data.NewDefinition[position]().
		Float64("PLANE LATITUDE", "degrees", func(r *position) *float64 { return &r.Lat }).
		Float64("PLANE LONGITUDE", "degrees", func(r *position) *float64 { return &r.Lon }).
		Float64("PLANE ALTITUDE", "feet", func(r *position) *float64 { return &r.Alt })
}

func openTestConnection(t *testing.T) (*Connection, *mockwire.Transport) {
	t.Helper()
	mock := mockwire.New()
	c := New(mock)
	require.NoError(t, c.Open("test client", 0))
	return c, mock
}

func TestOpenAndHostInfo(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	mock.AppName = "Microsoft Flight Simulator"
	c := New(mock)

	require.NoError(t, c.Open("test client", 0))
	require.True(t, c.IsOpen())
	assert.Nil(t, c.HostInfo())

	n, err := c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotNil(t, c.HostInfo())
	assert.Equal(t, "Microsoft Flight Simulator", c.HostInfo().ApplicationName)

	require.NoError(t, c.Close())
	assert.False(t, c.IsOpen())
	assert.Nil(t, c.HostInfo())
}

func TestDoubleOpenFails(t *testing.T) {
	c, _ := openTestConnection(t)
	assert.Error(t, c.Open("again", 0))
}

func TestQuitCallback(t *testing.T) {
	c, mock := openTestConnection(t)

	quits := 0
	c.OnQuit(func() { quits++ })
	mock.Push(mockwire.QuitFrame())

	_, err := c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, quits)
}

func TestExceptionNamesOffendingCall(t *testing.T) {
	c, mock := openTestConnection(t)

	var got *wire.HostError
	c.OnException(func(e *wire.HostError) { got = e })

	// first outbound call gets send id 1
	require.NoError(t, c.Events().MapEvent(events.Get("Brakes")))
	mock.Push(mockwire.ExceptionFrame(wire.ExceptionNameUnrecognized, 1, 0))

	_, err := c.Poll()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wire.ExceptionNameUnrecognized, got.Code)
	assert.Equal(t, "MapClientEventToSimEvent", got.Tag)
}

func TestRequestOnce(t *testing.T) {
	c, mock := openTestConnection(t)

	def, err := Register(c, positionDef())
	require.NoError(t, err)

	var got *position
	require.NoError(t, RequestOnce(def, wire.ObjectIDUser, func(p *position, err error) {
		require.NoError(t, err)
		got = p
	}))

	block, err := positionDef().Marshal(&position{Lat: 47.26, Lon: 11.34, Alt: 1907})
	require.NoError(t, err)
	mock.Push(mockwire.SimObjectDataFrame(1, wire.ObjectIDUser, def.ID(), 0, 3, block))

	_, err = c.Poll()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 47.26, got.Lat)
	assert.Equal(t, 0, c.Requests().Len())
}

func TestConsumedRequestFrameSkipsKindHandlers(t *testing.T) {
	c, mock := openTestConnection(t)

	kindHits := 0
	c.Kinds().On(wire.RecvSimObjectData, func(f wire.Frame) { kindHits++ })

	def, err := Register(c, positionDef())
	require.NoError(t, err)

	delivered := 0
	require.NoError(t, RequestOnce(def, wire.ObjectIDUser, func(p *position, err error) {
		require.NoError(t, err)
		delivered++
	}))

	block, err := positionDef().Marshal(&position{Lat: 47.26})
	require.NoError(t, err)
	mock.Push(mockwire.SimObjectDataFrame(1, wire.ObjectIDUser, def.ID(), 0, 3, block))
	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Zero(t, kindHits, "claimed frames stay out of kind handlers")

	// a frame no request claims still reaches the kind handlers
	mock.Push(mockwire.SimObjectDataFrame(999, wire.ObjectIDUser, def.ID(), 0, 3, block))
	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, kindHits)
}

func TestPeriodicRequestAndStop(t *testing.T) {
	c, mock := openTestConnection(t)

	def, err := Register(c, positionDef())
	require.NoError(t, err)

	deliveries := 0
	req, err := Request(def, wire.ObjectIDUser, wire.PeriodSecond, RequestOptions{ChangedOnly: true}, func(p *position, err error) {
		require.NoError(t, err)
		deliveries++
	})
	require.NoError(t, err)

	starts := mock.CallsTo("RequestDataOnSimObject")
	require.Len(t, starts, 1)
	assert.Equal(t, wire.PeriodSecond, starts[0].Args[3])
	assert.Equal(t, wire.DataRequestFlagChanged, starts[0].Args[4])

	block, err := positionDef().Marshal(&position{Lat: 1})
	require.NoError(t, err)
	frame := mockwire.SimObjectDataFrame(req.ID(), wire.ObjectIDUser, def.ID(), 0, 3, block)
	mock.Push(frame, frame)
	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 2, deliveries)

	require.NoError(t, req.Stop())
	require.NoError(t, req.Stop())

	stops := mock.CallsTo("RequestDataOnSimObject")
	require.Len(t, stops, 2, "exactly one stop frame for two Stop calls")
	assert.Equal(t, wire.PeriodNever, stops[1].Args[3])

	// frames after the stop no longer reach the callback
	mock.Push(frame)
	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, 2, deliveries)
}

func TestRequestByTypePaging(t *testing.T) {
	c, mock := openTestConnection(t)

	def, err := Register(c, positionDef())
	require.NoError(t, err)

	var objects []wire.ObjectID
	doneCalls := 0
	require.NoError(t, RequestByType(def, 10000, wire.SimObjectTypeAircraft,
		func(obj wire.ObjectID, p *position, err error) {
			require.NoError(t, err)
			objects = append(objects, obj)
		},
		func() { doneCalls++ },
	))

	block, err := positionDef().Marshal(&position{})
	require.NoError(t, err)
	mock.Push(
		mockwire.SimObjectDataByTypeFrame(1, 101, def.ID(), 0, 3, block),
		mockwire.SimObjectDataByTypeFrame(1, 102, def.ID(), 1, 3, block),
		mockwire.SimObjectDataByTypeFrame(1, 103, def.ID(), 2, 3, block),
	)

	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, []wire.ObjectID{101, 102, 103}, objects)
	assert.Equal(t, 1, doneCalls)
	assert.Equal(t, 0, c.Requests().Len())
}

func TestSetData(t *testing.T) {
	c, mock := openTestConnection(t)

	def, err := Register(c, positionDef())
	require.NoError(t, err)
	require.NoError(t, SetData(def, wire.ObjectIDUser, &position{Lat: 50.03, Lon: 8.53, Alt: 364}))

	sets := mock.CallsTo("SetDataOnSimObject")
	require.Len(t, sets, 1)
	block := sets[0].Args[4].([]byte)
	assert.Len(t, block, 24)
}

func TestSystemState(t *testing.T) {
	c, mock := openTestConnection(t)

	var got *wire.SystemStateMsg
	require.NoError(t, c.RequestSystemState("FlightLoaded", func(m *wire.SystemStateMsg, err error) {
		require.NoError(t, err)
		got = m
	}))
	mock.Push(mockwire.SystemStateFrame(1, 0, 0, `C:\flights\last.FLT`))

	_, err := c.Poll()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `C:\flights\last.FLT`, got.String)
}

func TestCreateAircraft(t *testing.T) {
	c, mock := openTestConnection(t)

	var assigned wire.ObjectID
	require.NoError(t, c.CreateAircraft("Cessna 172", "D-EABC", wire.InitPosition{}, func(obj wire.ObjectID, err error) {
		require.NoError(t, err)
		assigned = obj
	}))
	mock.Push(mockwire.AssignedObjectIDFrame(1, 4242))

	_, err := c.Poll()
	require.NoError(t, err)
	assert.Equal(t, wire.ObjectID(4242), assigned)

	require.NoError(t, c.RemoveObject(assigned))
	assert.Equal(t, 1, mock.CallCount("AIRemoveObject"))
}

func TestEnumerateObjectsMultipart(t *testing.T) {
	c, mock := openTestConnection(t)

	var all []wire.SimObjectLivery
	require.NoError(t, c.EnumerateObjects(wire.SimObjectTypeAircraft, func(entries []wire.SimObjectLivery, err error) {
		require.NoError(t, err)
		all = entries
	}))

	mock.Push(
		mockwire.SimObjectAndLiveryListFrame(1, 0, 2, []wire.SimObjectLivery{
			{Title: "Cessna 172", Livery: "Default"},
		}),
		mockwire.SimObjectAndLiveryListFrame(1, 1, 2, []wire.SimObjectLivery{
			{Title: "Cessna 172", Livery: "Red"},
			{Title: "TBM 930", Livery: "Default"},
		}),
	)

	_, err := c.Poll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Red", all[1].Livery)
}

func TestUnknownKindReachesKindHandlers(t *testing.T) {
	c, mock := openTestConnection(t)

	var kinds []wire.RecvID
	c.Kinds().OnAny(func(f wire.Frame) { kinds = append(kinds, f.Kind()) })

	mock.Push(mockwire.QuitFrame(), mockwire.EventFrame(1, 2, 3))
	_, err := c.Poll()
	require.NoError(t, err)
	assert.Equal(t, []wire.RecvID{wire.RecvQuit, wire.RecvEvent}, kinds)
}

func TestEventRoundTripThroughPoll(t *testing.T) {
	c, mock := openTestConnection(t)
	brakes := events.Get("Brakes")

	g, err := c.Events().NotificationGroup().WithHighestPriority().AddEvent(brakes).Build()
	require.NoError(t, err)

	var got []uint32
	c.Events().OnEvent(brakes, func(m *wire.EventMsg) { got = append(got, m.Data) })

	mock.Push(mockwire.EventFrame(g.ID(), brakes.ID, 42))
	_, err = c.Poll()
	require.NoError(t, err)
	assert.Equal(t, []uint32{42}, got)
}
