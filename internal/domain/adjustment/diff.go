package adjustment

import (
	"reflect"
	"strings"
	"time"
)

// FieldChange is one differing field between two snapshots.
type FieldChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

var timeType = reflect.TypeOf(time.Time{})

// Diff compares two values of the same struct type field by field and
// returns the fields whose values differ, in declaration order. Field names
// come from the json tag. Times compare by instant; pointers compare by
// presence then by pointee; nested structs compare member by member.
func Diff[T any](previous, next T) []FieldChange {
	pv := reflect.ValueOf(previous)
	nv := reflect.ValueOf(next)
	for pv.Kind() == reflect.Pointer {
		if pv.IsNil() || nv.IsNil() {
			if pv.IsNil() == nv.IsNil() {
				return nil
			}
			return []FieldChange{{Field: "", Old: previous, New: next}}
		}
		pv, nv = pv.Elem(), nv.Elem()
	}
	if pv.Kind() != reflect.Struct {
		if equalValues(pv, nv) {
			return nil
		}
		return []FieldChange{{Old: previous, New: next}}
	}

	var changes []FieldChange
	t := pv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "-" {
			continue
		}
		a, b := pv.Field(i), nv.Field(i)
		if !equalValues(a, b) {
			changes = append(changes, FieldChange{
				Field: name,
				Old:   plain(a),
				New:   plain(b),
			})
		}
	}
	return changes
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

func equalValues(a, b reflect.Value) bool {
	if a.Type() == timeType {
		return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equalValues(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if !equalValues(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Slice:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValues(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			other := b.MapIndex(iter.Key())
			if !other.IsValid() || !equalValues(iter.Value(), other) {
				return false
			}
		}
		return true
	default:
		return a.Interface() == b.Interface()
	}
}

// plain dereferences pointers so changes render as values, with nil for absent.
func plain(v reflect.Value) interface{} {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}
