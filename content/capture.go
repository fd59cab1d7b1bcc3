package content

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// Marshaler lets a type control its own Content representation. It is checked
// before any reflection walk, and is the hook by which domain types produce
// Enum nodes (Go reflection alone never does).
type Marshaler interface {
	MarshalContent() (Content, error)
}

// CaptureError reports a value whose shape cannot be represented as Content.
// Capture fails explicitly rather than dropping data.
type CaptureError struct {
	GoType string
	Reason string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("cannot capture value of type %s: %s", e.GoType, e.Reason)
}

// FromValue builds a Content tree from a Go value using reflection.
//
// Mappings follow encoding/json conventions where one exists: exported struct
// fields in declaration order (reflection supplies the order), unexported
// fields skipped, []byte as Bytes, nil pointers and interfaces as Nil. Map
// entries are sorted by key (string keys lexically, integer keys numerically)
// so that capture output is deterministic; the Map node itself preserves
// whatever order it is given. The `snap` struct tag renames a field, and
// `snap:"-"` omits it.
//
// Types implementing Marshaler take precedence over reflection, then
// encoding.TextMarshaler (rendered as String). Channels, functions, complex
// numbers, uintptr and unsafe pointers are not representable and return a
// *CaptureError, as do unsigned integers above the int64 range and cyclic
// references.
func FromValue(v any) (Content, error) {
	if v == nil {
		return NewNil(), nil
	}
	return fromReflect(reflect.ValueOf(v), make(map[uintptr]struct{}))
}

func fromReflect(rv reflect.Value, inFlight map[uintptr]struct{}) (Content, error) {
	if !rv.IsValid() {
		return NewNil(), nil
	}

	if rv.CanInterface() {
		if m, ok := rv.Interface().(Marshaler); ok {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return NewNil(), nil
			}
			return m.MarshalContent()
		}
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return NewNil(), nil
			}
			text, err := m.MarshalText()
			if err != nil {
				return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("MarshalText failed: %v", err)}
			}
			return NewString(string(text)), nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return NewBool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("unsigned value %d overflows the integer model", u)}
		}
		return NewInt(int64(u)), nil

	case reflect.Float32, reflect.Float64:
		return NewFloat(rv.Float()), nil

	case reflect.String:
		return NewString(rv.String()), nil

	case reflect.Slice:
		if rv.IsNil() {
			return NewNil(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return NewBytes(rv.Bytes()), nil
		}
		return sequenceFrom(rv, inFlight)

	case reflect.Array:
		return sequenceFrom(rv, inFlight)

	case reflect.Map:
		if rv.IsNil() {
			return NewNil(), nil
		}
		return mapFrom(rv, inFlight)

	case reflect.Struct:
		return structFrom(rv, inFlight)

	case reflect.Pointer:
		if rv.IsNil() {
			return NewNil(), nil
		}
		ptr := rv.Pointer()
		if _, seen := inFlight[ptr]; seen {
			return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: "cyclic reference"}
		}
		inFlight[ptr] = struct{}{}
		out, err := fromReflect(rv.Elem(), inFlight)
		delete(inFlight, ptr)
		return out, err

	case reflect.Interface:
		if rv.IsNil() {
			return NewNil(), nil
		}
		return fromReflect(rv.Elem(), inFlight)

	default:
		return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("unsupported kind %s", rv.Kind())}
	}
}

func sequenceFrom(rv reflect.Value, inFlight map[uintptr]struct{}) (Content, error) {
	if rv.Kind() == reflect.Slice {
		ptr := rv.Pointer()
		if _, seen := inFlight[ptr]; seen {
			return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: "cyclic reference"}
		}
		inFlight[ptr] = struct{}{}
		defer delete(inFlight, ptr)
	}

	items := make([]Content, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := fromReflect(rv.Index(i), inFlight)
		if err != nil {
			return Content{}, err
		}
		items[i] = item
	}
	return NewSequence(items...), nil
}

func mapFrom(rv reflect.Value, inFlight map[uintptr]struct{}) (Content, error) {
	ptr := rv.Pointer()
	if _, seen := inFlight[ptr]; seen {
		return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: "cyclic reference"}
	}
	inFlight[ptr] = struct{}{}
	defer delete(inFlight, ptr)

	type keyed struct {
		sortText string
		sortInt  int64
		entry    MapEntry
	}

	// All keys of one map capture to the same kind, so the first entry
	// decides between numeric and lexical order.
	numeric := false
	entries := make([]keyed, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := captureKey(iter.Key())
		if err != nil {
			return Content{}, err
		}
		value, err := fromReflect(iter.Value(), inFlight)
		if err != nil {
			return Content{}, err
		}
		if len(entries) == 0 {
			numeric = key.Kind() == KindInteger
		}
		k := keyed{entry: MapEntry{Key: key, Value: value}}
		if numeric {
			k.sortInt = key.Int()
		} else {
			k.sortText = key.Str()
		}
		entries = append(entries, k)
	}

	// Go map iteration order is random; capture supplies the deterministic
	// order the Map node will preserve.
	sort.Slice(entries, func(i, j int) bool {
		if numeric {
			return entries[i].sortInt < entries[j].sortInt
		}
		return entries[i].sortText < entries[j].sortText
	})

	out := make([]MapEntry, len(entries))
	for i, e := range entries {
		out[i] = e.entry
	}
	return NewMap(out...), nil
}

// captureKey restricts map keys the way encoding/json does: strings, integer
// kinds, or types implementing encoding.TextMarshaler.
func captureKey(rv reflect.Value) (Content, error) {
	if rv.CanInterface() {
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			text, err := m.MarshalText()
			if err != nil {
				return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("MarshalText failed on map key: %v", err)}
			}
			return NewString(string(text)), nil
		}
	}

	switch rv.Kind() {
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("unsigned map key %d overflows the integer model", u)}
		}
		return NewInt(int64(u)), nil
	default:
		return Content{}, &CaptureError{GoType: rv.Type().String(), Reason: fmt.Sprintf("unsupported map key kind %s", rv.Kind())}
	}
}

func structFrom(rv reflect.Value, inFlight map[uintptr]struct{}) (Content, error) {
	t := rv.Type()
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("snap"); ok {
			if tag == "-" {
				continue
			}
			if idx := strings.IndexByte(tag, ','); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = tag
			}
		}
		value, err := fromReflect(rv.Field(i), inFlight)
		if err != nil {
			return Content{}, err
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	return NewStruct(t.Name(), fields...), nil
}
