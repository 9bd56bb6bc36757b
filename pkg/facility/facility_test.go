package facility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/data"
	"aerolink/pkg/ids"
	"aerolink/pkg/registry"
	"aerolink/pkg/wire"
	"aerolink/pkg/wire/mockwire"
)

type fixture struct {
	s    *Subsystem
	mock *mockwire.Transport
	reqs *registry.RequestRegistry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := mockwire.New()
	require.NoError(t, mock.Open("test", 0))
	reqs := registry.NewRequestRegistry()
	return &fixture{
		s:    New(mock, ids.NewAllocator(), reqs),
		mock: mock,
		reqs: reqs,
	}
}

// pump routes queued frames the way a connection's poll loop would.
func (fx *fixture) pump(t *testing.T) {
	t.Helper()
	for {
		f, err := fx.mock.NextDispatch()
		require.NoError(t, err)
		if f == nil {
			return
		}
		fx.reqs.Dispatch(f)
	}
}

func TestListAirportsMultipart(t *testing.T) {
	fx := newFixture(t)

	var idents []string
	doneTotals := []int{}
	require.NoError(t, fx.s.ListAirports(ScopeAll,
		func(a wire.FacilityAirport) { idents = append(idents, a.Ident) },
		func(total int) { doneTotals = append(doneTotals, total) },
	))
	require.Equal(t, 1, fx.mock.CallCount("RequestFacilitiesList"))

	fx.mock.Push(
		mockwire.AirportListFrame(1, 0, 3, []mockwire.Airport{
			{Ident: "LOWI", Region: "LO", Lat: 47.26, Lon: 11.34, Alt: 581},
			{Ident: "EDDF", Region: "ED", Lat: 50.03, Lon: 8.53, Alt: 111},
		}),
		mockwire.AirportListFrame(1, 1, 3, []mockwire.Airport{
			{Ident: "KJFK", Region: "K6", Lat: 40.64, Lon: -73.78, Alt: 4},
		}),
		mockwire.AirportListFrame(1, 2, 3, nil),
	)
	fx.pump(t)

	assert.Equal(t, []string{"LOWI", "EDDF", "KJFK"}, idents)
	assert.Equal(t, []int{3}, doneTotals, "completion callback exactly once")
	assert.Equal(t, 0, fx.reqs.Len())
}

func TestListAirportsEmptyDatabase(t *testing.T) {
	fx := newFixture(t)

	done := 0
	require.NoError(t, fx.s.ListAirports(ScopeAll, nil, func(total int) {
		assert.Zero(t, total)
		done++
	}))

	// a single empty part terminates the enumeration successfully
	fx.mock.Push(mockwire.AirportListFrame(1, 0, 0, nil))
	fx.pump(t)
	assert.Equal(t, 1, done)
}

func TestListScopeSelectsCall(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.s.ListVORs(ScopeBubble, nil, nil))
	assert.Equal(t, 1, fx.mock.CallCount("RequestFacilitiesListEx1"))
	assert.Zero(t, fx.mock.CallCount("RequestFacilitiesList"))
}

func TestListVORs(t *testing.T) {
	fx := newFixture(t)

	var freqs []uint32
	require.NoError(t, fx.s.ListVORs(ScopeAll,
		func(v wire.FacilityVOR) { freqs = append(freqs, v.Frequency) },
		nil,
	))
	fx.mock.Push(mockwire.VorListFrame(1, 0, 1, []mockwire.VOR{
		{Ident: "INN", Region: "LO", Lat: 47.3, Lon: 11.4, Frequency: 115100000},
	}))
	fx.pump(t)
	assert.Equal(t, []uint32{115100000}, freqs)
}

func TestDefinitionBuilderEmitsFieldFrames(t *testing.T) {
	fx := newFixture(t)

	def, err := fx.s.DefineFacility().
		Airport().
		Field("LATITUDE").Field("LONGITUDE").Field("NAME").
		Frequency().AllFields().End().
		End().
		Register()
	require.NoError(t, err)

	var names []string
	for _, c := range fx.mock.CallsTo("AddToFacilityDefinition") {
		names = append(names, c.Args[1].(string))
	}
	assert.Equal(t, []string{
		"OPEN AIRPORT",
		"LATITUDE", "LONGITUDE", "NAME",
		"OPEN FREQUENCY",
		"TYPE", "FREQUENCY", "NAME",
		"CLOSE FREQUENCY",
		"CLOSE AIRPORT",
	}, names)

	assert.Len(t, def.SelectedFields(KindAirport), 3)
	assert.Len(t, def.SelectedFields(KindFrequency), 3)
}

func TestDefinitionBuilderRejectsUnknownField(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.s.DefineFacility().
		Airport().Field("NO_SUCH_FIELD").End().
		Register()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_SUCH_FIELD")
}

func TestDefinitionBuilderRejectsUnclosedScope(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.s.DefineFacility().Airport().Field("LATITUDE").Register()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestFacilityDataStream(t *testing.T) {
	fx := newFixture(t)

	def, err := fx.s.DefineFacility().
		Airport().
		Field("LATITUDE").Field("LONGITUDE").Field("NAME").
		Frequency().Field("FREQUENCY").End().
		End().
		Register()
	require.NoError(t, err)

	var records []*Record
	ends := 0
	require.NoError(t, fx.s.RequestFacilityData(def, "LOWI", "", StreamHandler{
		OnRecord: func(r *Record) { records = append(records, r) },
		OnEnd:    func() { ends++ },
	}))

	airportBlock := data.NewBlockBuilder().
		AddFloat64(47.26).AddFloat64(11.34).AddString32("Innsbruck").
		Bytes()
	freqBlock := data.NewBlockBuilder().AddInt32(120100000).Bytes()

	fx.mock.Push(
		mockwire.FacilityDataFrame(1, uint32(KindAirport), airportBlock),
		mockwire.FacilityDataFrame(1, uint32(KindFrequency), freqBlock),
		mockwire.FacilityDataEndFrame(1),
	)
	fx.pump(t)

	require.Len(t, records, 2)
	assert.Equal(t, KindAirport, records[0].Kind)
	assert.Equal(t, 47.26, records[0].Values["LATITUDE"])
	assert.Equal(t, "Innsbruck", records[0].Values["NAME"])
	assert.Equal(t, KindFrequency, records[1].Kind)
	assert.Equal(t, int32(120100000), records[1].Values["FREQUENCY"])
	assert.Equal(t, 1, ends)
	assert.Equal(t, 0, fx.reqs.Len())
}

func TestFacilityDataStreamEmpty(t *testing.T) {
	fx := newFixture(t)

	def, err := fx.s.DefineFacility().
		Airport().Field("LATITUDE").End().
		Register()
	require.NoError(t, err)

	ends := 0
	require.NoError(t, fx.s.RequestFacilityData(def, "XXXX", "", StreamHandler{
		OnEnd: func() { ends++ },
	}))

	// an end frame with no data records still completes the request
	fx.mock.Push(mockwire.FacilityDataEndFrame(1))
	fx.pump(t)
	assert.Equal(t, 1, ends)
	assert.Equal(t, 0, fx.reqs.Len())
}

func TestFacilityStreamUnselectedKind(t *testing.T) {
	fx := newFixture(t)

	def, err := fx.s.DefineFacility().
		Airport().Field("LATITUDE").End().
		Register()
	require.NoError(t, err)

	var streamErr error
	require.NoError(t, fx.s.RequestFacilityData(def, "LOWI", "", StreamHandler{
		OnError: func(err error) { streamErr = err },
	}))

	fx.mock.Push(mockwire.FacilityDataFrame(1, uint32(KindRunway), nil))
	fx.pump(t)
	require.Error(t, streamErr)
	assert.Contains(t, streamErr.Error(), "RUNWAY")
	assert.Equal(t, 0, fx.reqs.Len())
}

func TestFieldCatalogSizes(t *testing.T) {
	for kind, fields := range map[Kind][]FieldInfo{
		KindAirport:   Fields(KindAirport),
		KindFrequency: Fields(KindFrequency),
		KindVOR:       Fields(KindVOR),
	} {
		require.NotEmpty(t, fields, kind.Name())
		for _, f := range fields {
			assert.Positive(t, f.Size(), "%s.%s", kind.Name(), f.Name)
		}
	}
}
