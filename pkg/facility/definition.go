package facility

import (
	"fmt"

	"aerolink/pkg/data"
	"aerolink/pkg/wire"
)

type defOp struct {
	open  bool
	close bool
	field string
	kind  Kind
}

// Definition is a registered facility query tree. One definition can serve
// any number of RequestFacilityData calls.
type Definition struct {
	id       wire.DefineID
	ops      []defOp
	selected map[Kind][]FieldInfo
}

// ID returns the host-side define id.
func (d *Definition) ID() wire.DefineID { return d.id }

// SelectedFields returns the fields chosen for one kind, in stream order.
func (d *Definition) SelectedFields(k Kind) []FieldInfo {
	return d.selected[k]
}

// DefinitionBuilder assembles a nested facility query. Kinds open scopes,
// fields are added inside them, End closes the scope. Errors stick until
// Register.
type DefinitionBuilder struct {
	s        *Subsystem
	ops      []defOp
	selected map[Kind][]FieldInfo
	stack    []Kind
	err      error
}

// DefineFacility starts a new query definition.
func (s *Subsystem) DefineFacility() *DefinitionBuilder {
	return &DefinitionBuilder{s: s, selected: make(map[Kind][]FieldInfo)}
}

func (b *DefinitionBuilder) enter(k Kind) *DefinitionBuilder {
	if b.err != nil {
		return b
	}
	if _, ok := fieldCatalog[k]; !ok {
		b.err = fmt.Errorf("facility kind %s has no field catalog", k.Name())
		return b
	}
	b.ops = append(b.ops, defOp{open: true, kind: k})
	b.stack = append(b.stack, k)
	return b
}

// Airport opens an AIRPORT scope at the top level.
func (b *DefinitionBuilder) Airport() *DefinitionBuilder { return b.enter(KindAirport) }

// VOR opens a VOR scope at the top level.
func (b *DefinitionBuilder) VOR() *DefinitionBuilder { return b.enter(KindVOR) }

// NDB opens an NDB scope at the top level.
func (b *DefinitionBuilder) NDB() *DefinitionBuilder { return b.enter(KindNDB) }

// Waypoint opens a WAYPOINT scope at the top level.
func (b *DefinitionBuilder) Waypoint() *DefinitionBuilder { return b.enter(KindWaypoint) }

// Runway opens a RUNWAY scope nested in the enclosing airport.
func (b *DefinitionBuilder) Runway() *DefinitionBuilder { return b.enter(KindRunway) }

// Frequency opens a FREQUENCY scope nested in the enclosing airport.
func (b *DefinitionBuilder) Frequency() *DefinitionBuilder { return b.enter(KindFrequency) }

// Helipad opens a HELIPAD scope nested in the enclosing airport.
func (b *DefinitionBuilder) Helipad() *DefinitionBuilder { return b.enter(KindHelipad) }

// TaxiParking opens a TAXI_PARKING scope nested in the enclosing airport.
func (b *DefinitionBuilder) TaxiParking() *DefinitionBuilder { return b.enter(KindTaxiParking) }

// Route opens a ROUTE scope nested in the enclosing waypoint.
func (b *DefinitionBuilder) Route() *DefinitionBuilder { return b.enter(KindRoute) }

// Field selects one field of the currently open kind.
func (b *DefinitionBuilder) Field(name string) *DefinitionBuilder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		b.err = fmt.Errorf("field %q outside any facility scope", name)
		return b
	}
	k := b.stack[len(b.stack)-1]
	info, ok := fieldInfo(k, name)
	if !ok {
		b.err = fmt.Errorf("kind %s has no field %q", k.Name(), name)
		return b
	}
	b.ops = append(b.ops, defOp{field: name, kind: k})
	b.selected[k] = append(b.selected[k], info)
	return b
}

// AllFields selects every cataloged field of the currently open kind.
func (b *DefinitionBuilder) AllFields() *DefinitionBuilder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		b.err = fmt.Errorf("allFields outside any facility scope")
		return b
	}
	for _, f := range fieldCatalog[b.stack[len(b.stack)-1]] {
		b.Field(f.Name)
	}
	return b
}

// End closes the currently open scope.
func (b *DefinitionBuilder) End() *DefinitionBuilder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		b.err = fmt.Errorf("end without an open scope")
		return b
	}
	k := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.ops = append(b.ops, defOp{close: true, kind: k})
	return b
}

// Register publishes the definition tree to the host, one field frame per
// entry with OPEN/CLOSE markers around each scope.
func (b *DefinitionBuilder) Register() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, fmt.Errorf("%d facility scope(s) left open", len(b.stack))
	}
	if len(b.ops) == 0 {
		return nil, fmt.Errorf("empty facility definition")
	}

	id := b.s.alloc.NextDefineID()
	for _, op := range b.ops {
		var name string
		switch {
		case op.open:
			name = "OPEN " + op.kind.Name()
		case op.close:
			name = "CLOSE " + op.kind.Name()
		default:
			name = op.field
		}
		if err := b.s.t.AddToFacilityDefinition(id, name); err != nil {
			return nil, fmt.Errorf("facility definition %d, frame %q: %w", id, name, err)
		}
	}
	return &Definition{id: id, ops: b.ops, selected: b.selected}, nil
}

// Record is one decoded entry of a structured facility stream. Values maps
// the selected field names to decoded Go values (float64, float32, int32 or
// string depending on the catalog type).
type Record struct {
	Kind       Kind
	UniqueID   uint32
	ParentID   uint32
	IsListItem bool
	ItemIndex  uint32
	ListSize   uint32
	Values     map[string]any
}

// StreamHandler receives the pieces of one facility query answer. Nil
// callbacks are skipped.
type StreamHandler struct {
	// OnRecord runs once per streamed record, parents before children.
	OnRecord func(*Record)
	// OnEnd runs exactly once when the stream terminates, also for streams
	// with zero records.
	OnEnd func()
	// OnAmbiguous runs when the requested ident matches several facilities;
	// the stream terminates after it.
	OnAmbiguous func([]wire.MinimalFacility)
	// OnError runs for undecodable frames; the stream terminates.
	OnError func(error)
}

// RequestFacilityData streams every selected field of one facility,
// identified by ICAO ident and optional region, through h.
func (s *Subsystem) RequestFacilityData(def *Definition, icao, region string, h StreamHandler) error {
	req := s.alloc.NextRequestID()
	var ambiguous []wire.MinimalFacility

	s.reqs.Set(req, func(f wire.Frame) bool {
		switch f.Kind() {
		case wire.RecvFacilityData:
			m, err := wire.DecodeFacilityData(f)
			if err != nil {
				return fail(h, err)
			}
			rec, err := decodeRecord(def, m)
			if err != nil {
				return fail(h, err)
			}
			if h.OnRecord != nil {
				h.OnRecord(rec)
			}
			return false

		case wire.RecvFacilityDataEnd:
			if h.OnEnd != nil {
				h.OnEnd()
			}
			return true

		case wire.RecvFacilityMinimalList:
			m, err := wire.DecodeFacilityMinimalList(f)
			if err != nil {
				return fail(h, err)
			}
			ambiguous = append(ambiguous, m.Facilities...)
			if m.LastPart() {
				if h.OnAmbiguous != nil {
					h.OnAmbiguous(ambiguous)
				}
				return true
			}
			return false

		default:
			s.log.Warn("unexpected frame in facility stream", "kind", f.Kind().String())
			return false
		}
	})

	if err := s.t.RequestFacilityData(def.id, req, icao, region); err != nil {
		s.reqs.Remove(req)
		return fmt.Errorf("request facility data %q: %w", icao, err)
	}
	return nil
}

func fail(h StreamHandler, err error) bool {
	if h.OnError != nil {
		h.OnError(err)
	}
	return true
}

func decodeRecord(def *Definition, m *wire.FacilityDataMsg) (*Record, error) {
	kind := Kind(m.Type)
	fields := def.selected[kind]
	if fields == nil {
		return nil, fmt.Errorf("stream carries unselected kind %s", kind.Name())
	}

	r := data.NewBlockReader(m.Data)
	values := make(map[string]any, len(fields))
	for _, fi := range fields {
		switch fi.Type {
		case wire.DataTypeFloat64:
			values[fi.Name] = r.ReadFloat64()
		case wire.DataTypeFloat32:
			values[fi.Name] = r.ReadFloat32()
		case wire.DataTypeInt32:
			values[fi.Name] = r.ReadInt32()
		case wire.DataTypeInt64:
			values[fi.Name] = r.ReadInt64()
		default:
			values[fi.Name] = r.ReadString(fi.Type.Size())
		}
	}
	if r.Err() != nil {
		return nil, fmt.Errorf("decode %s record: %w", kind.Name(), r.Err())
	}

	return &Record{
		Kind:       kind,
		UniqueID:   m.UniqueRequestID,
		ParentID:   m.ParentUniqueID,
		IsListItem: m.IsListItem != 0,
		ItemIndex:  m.ItemIndex,
		ListSize:   m.ListSize,
		Values:     values,
	}, nil
}
