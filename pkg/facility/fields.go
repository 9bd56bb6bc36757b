// Package facility implements the two facility request families: bulk list
// enumeration of the host's airport and navaid databases, and structured
// per-facility queries assembled from a nested field definition.
package facility

import (
	"aerolink/pkg/wire"
)

// Kind tags one record in a structured facility stream. Values are fixed by
// the host SDK.
type Kind uint32

const (
	KindAirport           Kind = 0
	KindRunway            Kind = 1
	KindStart             Kind = 2
	KindFrequency         Kind = 3
	KindHelipad           Kind = 4
	KindApproach          Kind = 5
	KindApproachTransition Kind = 6
	KindApproachLeg       Kind = 7
	KindFinalApproachLeg  Kind = 8
	KindMissedApproachLeg Kind = 9
	KindDeparture         Kind = 10
	KindArrival           Kind = 11
	KindRunwayTransition  Kind = 12
	KindEnrouteTransition Kind = 13
	KindTaxiPoint         Kind = 14
	KindTaxiParking       Kind = 15
	KindTaxiPath          Kind = 16
	KindTaxiName          Kind = 17
	KindJetway            Kind = 18
	KindVOR               Kind = 19
	KindNDB               Kind = 20
	KindWaypoint          Kind = 21
	KindRoute             Kind = 22
)

var kindNames = map[Kind]string{
	KindAirport:            "AIRPORT",
	KindRunway:             "RUNWAY",
	KindStart:              "START",
	KindFrequency:          "FREQUENCY",
	KindHelipad:            "HELIPAD",
	KindApproach:           "APPROACH",
	KindApproachTransition: "APPROACH_TRANSITION",
	KindApproachLeg:        "APPROACH_LEG",
	KindFinalApproachLeg:   "FINAL_APPROACH_LEG",
	KindMissedApproachLeg:  "MISSED_APPROACH_LEG",
	KindDeparture:          "DEPARTURE",
	KindArrival:            "ARRIVAL",
	KindRunwayTransition:   "RUNWAY_TRANSITION",
	KindEnrouteTransition:  "ENROUTE_TRANSITION",
	KindTaxiPoint:          "TAXI_POINT",
	KindTaxiParking:        "TAXI_PARKING",
	KindTaxiPath:           "TAXI_PATH",
	KindTaxiName:           "TAXI_NAME",
	KindJetway:             "JETWAY",
	KindVOR:                "VOR",
	KindNDB:                "NDB",
	KindWaypoint:           "WAYPOINT",
	KindRoute:              "ROUTE",
}

// Name returns the SDK spelling used in definition field frames.
func (k Kind) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// FieldInfo describes one queryable field of a facility kind.
type FieldInfo struct {
	Name string
	Type wire.DataType
}

// Size returns the field's on-wire size in bytes.
func (f FieldInfo) Size() int { return f.Type.Size() }

// Per-kind field catalogs, in the order the host streams them when a whole
// kind is selected. Subsets keep this order.
var fieldCatalog = map[Kind][]FieldInfo{
	KindAirport: {
		{"LATITUDE", wire.DataTypeFloat64},
		{"LONGITUDE", wire.DataTypeFloat64},
		{"ALTITUDE", wire.DataTypeFloat64},
		{"MAGVAR", wire.DataTypeFloat32},
		{"NAME", wire.DataTypeString32},
		{"NAME64", wire.DataTypeString64},
		{"ICAO", wire.DataTypeString8},
		{"REGION", wire.DataTypeString8},
		{"TOWER_LATITUDE", wire.DataTypeFloat64},
		{"TOWER_LONGITUDE", wire.DataTypeFloat64},
		{"TOWER_ALTITUDE", wire.DataTypeFloat64},
		{"TRANSITION_ALTITUDE", wire.DataTypeFloat32},
		{"TRANSITION_LEVEL", wire.DataTypeFloat32},
		{"N_RUNWAYS", wire.DataTypeInt32},
		{"N_FREQUENCIES", wire.DataTypeInt32},
		{"N_HELIPADS", wire.DataTypeInt32},
		{"N_APPROACHES", wire.DataTypeInt32},
		{"N_DEPARTURES", wire.DataTypeInt32},
		{"N_ARRIVALS", wire.DataTypeInt32},
		{"N_TAXI_PARKINGS", wire.DataTypeInt32},
	},
	KindRunway: {
		{"LATITUDE", wire.DataTypeFloat64},
		{"LONGITUDE", wire.DataTypeFloat64},
		{"ALTITUDE", wire.DataTypeFloat64},
		{"HEADING", wire.DataTypeFloat32},
		{"LENGTH", wire.DataTypeFloat32},
		{"WIDTH", wire.DataTypeFloat32},
		{"SURFACE", wire.DataTypeInt32},
		{"PRIMARY_NUMBER", wire.DataTypeInt32},
		{"PRIMARY_DESIGNATOR", wire.DataTypeInt32},
		{"SECONDARY_NUMBER", wire.DataTypeInt32},
		{"SECONDARY_DESIGNATOR", wire.DataTypeInt32},
		{"PRIMARY_ILS_FREQUENCY", wire.DataTypeInt32},
		{"SECONDARY_ILS_FREQUENCY", wire.DataTypeInt32},
	},
	KindFrequency: {
		{"TYPE", wire.DataTypeInt32},
		{"FREQUENCY", wire.DataTypeInt32},
		{"NAME", wire.DataTypeString64},
	},
	KindHelipad: {
		{"LATITUDE", wire.DataTypeFloat64},
		{"LONGITUDE", wire.DataTypeFloat64},
		{"ALTITUDE", wire.DataTypeFloat64},
		{"HEADING", wire.DataTypeFloat32},
		{"LENGTH", wire.DataTypeFloat32},
		{"WIDTH", wire.DataTypeFloat32},
		{"SURFACE", wire.DataTypeInt32},
		{"TYPE", wire.DataTypeInt32},
	},
	KindTaxiParking: {
		{"TYPE", wire.DataTypeInt32},
		{"TAXI_POINT_TYPE", wire.DataTypeInt32},
		{"NAME", wire.DataTypeInt32},
		{"SUFFIX", wire.DataTypeInt32},
		{"NUMBER", wire.DataTypeInt32},
		{"ORIENTATION", wire.DataTypeInt32},
		{"HEADING", wire.DataTypeFloat32},
		{"RADIUS", wire.DataTypeFloat32},
		{"BIAS_X", wire.DataTypeFloat32},
		{"BIAS_Z", wire.DataTypeFloat32},
	},
	KindVOR: {
		{"VOR_LATITUDE", wire.DataTypeFloat64},
		{"VOR_LONGITUDE", wire.DataTypeFloat64},
		{"VOR_ALTITUDE", wire.DataTypeFloat64},
		{"FREQUENCY", wire.DataTypeInt32},
		{"TYPE", wire.DataTypeInt32},
		{"IS_NAV", wire.DataTypeInt32},
		{"IS_DME", wire.DataTypeInt32},
		{"IS_TACAN", wire.DataTypeInt32},
		{"HAS_GLIDE_SLOPE", wire.DataTypeInt32},
		{"LOCALIZER", wire.DataTypeFloat32},
		{"MAGVAR", wire.DataTypeFloat32},
	},
	KindNDB: {
		{"LATITUDE", wire.DataTypeFloat64},
		{"LONGITUDE", wire.DataTypeFloat64},
		{"ALTITUDE", wire.DataTypeFloat64},
		{"FREQUENCY", wire.DataTypeInt32},
		{"TYPE", wire.DataTypeInt32},
		{"RANGE", wire.DataTypeFloat32},
		{"MAGVAR", wire.DataTypeFloat32},
		{"NAME", wire.DataTypeString64},
	},
	KindWaypoint: {
		{"LATITUDE", wire.DataTypeFloat64},
		{"LONGITUDE", wire.DataTypeFloat64},
		{"ALTITUDE", wire.DataTypeFloat64},
		{"TYPE", wire.DataTypeInt32},
		{"MAGVAR", wire.DataTypeFloat32},
		{"N_ROUTES", wire.DataTypeInt32},
		{"ICAO", wire.DataTypeString8},
		{"REGION", wire.DataTypeString8},
	},
	KindRoute: {
		{"NAME", wire.DataTypeString8},
		{"TYPE", wire.DataTypeInt32},
	},
}

// Fields returns the catalog for a kind, nil for kinds without one.
func Fields(k Kind) []FieldInfo {
	return fieldCatalog[k]
}

func fieldInfo(k Kind, name string) (FieldInfo, bool) {
	for _, f := range fieldCatalog[k] {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}
