package wire

// Composite SDK data types. Field order matches the SDK's packed (4-byte
// aligned) layouts; pkg/data encodes them little-endian field by field, so
// none of these rely on Go struct layout.

// LatLonAlt is a world position: degrees, degrees, meters.
type LatLonAlt struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// PBH is an attitude triple in degrees.
type PBH struct {
	Pitch   float64
	Bank    float64
	Heading float64
}

// XYZ is a cartesian triple.
type XYZ struct {
	X float64
	Y float64
	Z float64
}

// InitPosition seeds the position of a created or moved sim object.
// On the wire it is 64 bytes: six float64 plus two int32.
type InitPosition struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Pitch     float64
	Bank      float64
	Heading   float64
	OnGround  int32
	Airspeed  int32
}

// MarkerState toggles a named marker: 64-byte name plus an int32 flag.
type MarkerState struct {
	Name  string
	State int32
}

// Waypoint is one leg of an AI flight plan.
type Waypoint struct {
	Latitude        float64
	Longitude       float64
	Altitude        float64
	Flags           uint32
	Speed           float64 // knots
	PercentThrottle float64
}
