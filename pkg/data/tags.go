package data

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"aerolink/pkg/wire"
)

// DefineFromTags builds a definition from struct tags instead of explicit
// accessors. Each exported field tagged `sim:"VARIABLE NAME"` is bound, with
// the wire type inferred from the Go type. Supported tags:
//
//	sim:"PLANE LATITUDE"   simulator variable name, "-" or absent skips
//	units:"degrees"        units string sent to the host
//	size:"64"              width for string fields (default 256, "v" for
//	                       variable length)
//	eps:"0.5"              change threshold for changed-only requests
//
// Fields are assigned datum ids in declaration order.
func DefineFromTags[T any]() (*Definition[T], error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tagged definition needs a struct type, got %s", rt.Kind())
	}

	d := NewDefinition[T]()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, ok := sf.Tag.Lookup("sim")
		if !ok || name == "-" || !sf.IsExported() {
			continue
		}
		units := sf.Tag.Get("units")

		var opts []FieldOption
		if eps := sf.Tag.Get("eps"); eps != "" {
			v, err := strconv.ParseFloat(eps, 32)
			if err != nil {
				return nil, fmt.Errorf("field %s: bad eps %q: %w", sf.Name, eps, err)
			}
			opts = append(opts, WithEpsilon(float32(v)))
		}

		off := sf.Offset
		if err := bindTagged(d, sf, name, units, off, opts); err != nil {
			return nil, err
		}
	}
	if d.FieldCount() == 0 {
		return nil, fmt.Errorf("type %s has no sim-tagged fields", rt.Name())
	}
	return d, nil
}

func fieldPtr[T, F any](off uintptr) func(*T) *F {
	return func(rec *T) *F {
		return (*F)(unsafe.Add(unsafe.Pointer(rec), off))
	}
}

func bindTagged[T any](d *Definition[T], sf reflect.StructField, name, units string, off uintptr, opts []FieldOption) error {
	switch sf.Type {
	case reflect.TypeOf(wire.LatLonAlt{}):
		d.LatLonAlt(name, fieldPtr[T, wire.LatLonAlt](off), opts...)
		return nil
	case reflect.TypeOf(wire.XYZ{}):
		d.XYZ(name, fieldPtr[T, wire.XYZ](off), opts...)
		return nil
	case reflect.TypeOf(wire.InitPosition{}):
		d.InitPosition(name, fieldPtr[T, wire.InitPosition](off), opts...)
		return nil
	case reflect.TypeOf(wire.MarkerState{}):
		d.MarkerState(name, fieldPtr[T, wire.MarkerState](off), opts...)
		return nil
	case reflect.TypeOf(wire.Waypoint{}):
		d.Waypoint(name, fieldPtr[T, wire.Waypoint](off), opts...)
		return nil
	}

	switch sf.Type.Kind() {
	case reflect.Float64:
		d.Float64(name, units, fieldPtr[T, float64](off), opts...)
	case reflect.Float32:
		d.Float32(name, units, fieldPtr[T, float32](off), opts...)
	case reflect.Int32:
		d.Int32(name, units, fieldPtr[T, int32](off), opts...)
	case reflect.Int64:
		d.Int64(name, units, fieldPtr[T, int64](off), opts...)
	case reflect.Bool:
		d.Bool(name, units, fieldPtr[T, bool](off), opts...)
	case reflect.String:
		size := 256
		if s := sf.Tag.Get("size"); s != "" {
			if s == "v" {
				d.StringV(name, fieldPtr[T, string](off), opts...)
				return nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("field %s: bad size %q: %w", sf.Name, s, err)
			}
			size = n
		}
		if _, ok := stringType(size); !ok {
			return fmt.Errorf("field %s: unsupported string size %d", sf.Name, size)
		}
		d.String(name, size, fieldPtr[T, string](off), opts...)
	default:
		return fmt.Errorf("field %s: unsupported type %s", sf.Name, sf.Type)
	}
	return nil
}
