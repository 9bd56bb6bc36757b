// Package bridge exposes live simulator telemetry over HTTP and
// websocket. It owns the data definition the bridge registers with the
// host and the latest snapshot served to clients.
package bridge

import (
	"sync"
)

// Telemetry is the bridge's data definition. The sim tags drive the host
// registration; the json tags shape the payload pushed to clients.
type Telemetry struct {
	Latitude      float64 `sim:"PLANE LATITUDE" units:"Degrees" json:"latitude"`
	Longitude     float64 `sim:"PLANE LONGITUDE" units:"Degrees" json:"longitude"`
	AltitudeMSL   float64 `sim:"PLANE ALTITUDE" units:"Feet" json:"altitude_msl"`
	AltitudeAGL   float64 `sim:"PLANE ALT ABOVE GROUND" units:"Feet" json:"altitude_agl"`
	Heading       float64 `sim:"PLANE HEADING DEGREES TRUE" units:"Degrees" json:"heading"`
	GroundSpeed   float64 `sim:"GROUND VELOCITY" units:"Knots" json:"ground_speed"`
	VerticalSpeed float64 `sim:"VERTICAL SPEED" units:"Feet per minute" json:"vertical_speed"`
	OnGround      int32   `sim:"SIM ON GROUND" units:"Bool" json:"on_ground"`
}

// StateEvent is pushed to websocket clients when the connection state
// changes.
type StateEvent struct {
	State string `json:"state"`
}

// Snapshot holds the latest telemetry and connection state for the HTTP
// endpoints.
type Snapshot struct {
	mu        sync.RWMutex
	telemetry Telemetry
	state     string
}

// NewSnapshot returns an empty snapshot in the given initial state.
func NewSnapshot(state string) *Snapshot {
	return &Snapshot{state: state}
}

// Update stores a fresh telemetry record.
func (s *Snapshot) Update(t *Telemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry = *t
}

// SetState records the connection state shown to clients.
func (s *Snapshot) SetState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Get returns the latest telemetry and state.
func (s *Snapshot) Get() (Telemetry, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.telemetry, s.state
}
