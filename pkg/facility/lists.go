package facility

import (
	"fmt"
	"log/slog"

	"aerolink/pkg/ids"
	"aerolink/pkg/registry"
	"aerolink/pkg/wire"
)

// Scope selects how much of the host's facility database an enumeration
// covers.
type Scope int

const (
	// ScopeAll enumerates the whole database.
	ScopeAll Scope = iota
	// ScopeBubble restricts to facilities inside the reality bubble. Uses
	// the extended list call, which newer hosts require for this filter.
	ScopeBubble
	// ScopeCache restricts to the host's session cache.
	ScopeCache
)

// Subsystem issues facility requests over one connection and routes their
// multi-part answers.
type Subsystem struct {
	t     wire.Transport
	alloc *ids.Allocator
	reqs  *registry.RequestRegistry
	log   *slog.Logger
}

// New builds the facility subsystem over a connection's transport,
// allocator and request registry.
func New(t wire.Transport, alloc *ids.Allocator, reqs *registry.RequestRegistry) *Subsystem {
	return &Subsystem{
		t:     t,
		alloc: alloc,
		reqs:  reqs,
		log:   slog.Default().With("component", "facility"),
	}
}

func (s *Subsystem) request(listType wire.FacilityListType, scope Scope, req wire.RequestID) error {
	if scope == ScopeBubble {
		return s.t.RequestFacilitiesListEx1(listType, req)
	}
	return s.t.RequestFacilitiesList(listType, req)
}

// ListAirports enumerates airports. item runs once per airport; done runs
// exactly once with the total count after the final part, including for an
// empty database.
func (s *Subsystem) ListAirports(scope Scope, item func(wire.FacilityAirport), done func(total int)) error {
	req := s.alloc.NextRequestID()
	total := 0
	s.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeAirportList(f)
		if err != nil {
			s.log.Warn("bad airport list frame", "error", err)
			return true
		}
		for _, a := range m.Airports {
			total++
			if item != nil {
				item(a)
			}
		}
		if m.LastPart() {
			if done != nil {
				done(total)
			}
			return true
		}
		return false
	})
	if err := s.request(wire.FacilityListAirports, scope, req); err != nil {
		s.reqs.Remove(req)
		return fmt.Errorf("list airports: %w", err)
	}
	return nil
}

// ListWaypoints enumerates en-route waypoints.
func (s *Subsystem) ListWaypoints(scope Scope, item func(wire.FacilityWaypoint), done func(total int)) error {
	req := s.alloc.NextRequestID()
	total := 0
	s.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeWaypointList(f)
		if err != nil {
			s.log.Warn("bad waypoint list frame", "error", err)
			return true
		}
		for _, w := range m.Waypoints {
			total++
			if item != nil {
				item(w)
			}
		}
		if m.LastPart() {
			if done != nil {
				done(total)
			}
			return true
		}
		return false
	})
	if err := s.request(wire.FacilityListWaypoints, scope, req); err != nil {
		s.reqs.Remove(req)
		return fmt.Errorf("list waypoints: %w", err)
	}
	return nil
}

// ListNDBs enumerates non-directional beacons.
func (s *Subsystem) ListNDBs(scope Scope, item func(wire.FacilityNDB), done func(total int)) error {
	req := s.alloc.NextRequestID()
	total := 0
	s.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeNdbList(f)
		if err != nil {
			s.log.Warn("bad ndb list frame", "error", err)
			return true
		}
		for _, n := range m.NDBs {
			total++
			if item != nil {
				item(n)
			}
		}
		if m.LastPart() {
			if done != nil {
				done(total)
			}
			return true
		}
		return false
	})
	if err := s.request(wire.FacilityListNDBs, scope, req); err != nil {
		s.reqs.Remove(req)
		return fmt.Errorf("list ndbs: %w", err)
	}
	return nil
}

// ListVORs enumerates VOR stations.
func (s *Subsystem) ListVORs(scope Scope, item func(wire.FacilityVOR), done func(total int)) error {
	req := s.alloc.NextRequestID()
	total := 0
	s.reqs.Set(req, func(f wire.Frame) bool {
		m, err := wire.DecodeVorList(f)
		if err != nil {
			s.log.Warn("bad vor list frame", "error", err)
			return true
		}
		for _, v := range m.VORs {
			total++
			if item != nil {
				item(v)
			}
		}
		if m.LastPart() {
			if done != nil {
				done(total)
			}
			return true
		}
		return false
	})
	if err := s.request(wire.FacilityListVORs, scope, req); err != nil {
		s.reqs.Remove(req)
		return fmt.Errorf("list vors: %w", err)
	}
	return nil
}
