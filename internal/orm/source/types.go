// Package source describes Go struct types as candidate entity types.
//
// A struct is an entity type. Its first embedded struct (other than the
// Abstract marker) is its base type, exported fields are its members and
// struct tags carry the declarative hints conventions consume.
package source

import (
	"database/sql"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Abstract marks an entity type as abstract when embedded
type Abstract struct{}

var (
	abstractType   = reflect.TypeFor[Abstract]()
	timeType       = reflect.TypeFor[time.Time]()
	durationType   = reflect.TypeFor[time.Duration]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	bytesType      = reflect.TypeFor[[]byte]()
)

// nullWrappers maps the database/sql null wrappers to the type they carry
var nullWrappers = map[reflect.Type]reflect.Type{
	reflect.TypeFor[sql.NullBool]():    reflect.TypeFor[bool](),
	reflect.TypeFor[sql.NullByte]():    reflect.TypeFor[byte](),
	reflect.TypeFor[sql.NullFloat64](): reflect.TypeFor[float64](),
	reflect.TypeFor[sql.NullInt16]():   reflect.TypeFor[int16](),
	reflect.TypeFor[sql.NullInt32]():   reflect.TypeFor[int32](),
	reflect.TypeFor[sql.NullInt64]():   reflect.TypeFor[int64](),
	reflect.TypeFor[sql.NullString]():  reflect.TypeFor[string](),
	reflect.TypeFor[sql.NullTime]():    timeType,
}

// IsPrimitive reports whether t maps to a single column
func IsPrimitive(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType, durationType, uuidType, rawMessageType, bytesType:
		return true
	}
	if _, ok := nullWrappers[t]; ok {
		return true
	}
	if isGenericNull(t) {
		return true
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

// IsNullable reports whether a value of type t can hold no value
func IsNullable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if _, ok := nullWrappers[t]; ok {
		return true
	}
	if isGenericNull(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

// UnwrapNullable returns the underlying type of a nullable scalar type.
// *T becomes T, sql.NullInt64 becomes int64, sql.Null[T] becomes T.
func UnwrapNullable(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	if inner, ok := nullWrappers[t]; ok {
		return inner
	}
	if isGenericNull(t) {
		return t.Field(0).Type
	}
	return t
}

// isGenericNull matches instantiations of sql.Null[T]
func isGenericNull(t reflect.Type) bool {
	if t.Kind() != reflect.Struct || t.PkgPath() != "database/sql" {
		return false
	}
	if t.NumField() != 2 || t.Field(0).Name != "V" || t.Field(1).Name != "Valid" {
		return false
	}
	return len(t.Name()) > 5 && t.Name()[:5] == "Null["
}

// IsEntityCandidate reports whether t can be mapped as an entity type
func IsEntityCandidate(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	if t.Name() == "" || t == abstractType {
		return false
	}
	return !IsPrimitive(t)
}

// NavigationTarget returns the entity type a field type points at.
// Only *T, []T and []*T with T an entity candidate qualify.
func NavigationTarget(t reflect.Type) (target reflect.Type, collection bool, ok bool) {
	switch t.Kind() {
	case reflect.Pointer:
		target = t.Elem()
	case reflect.Slice:
		collection = true
		target = t.Elem()
		if target.Kind() == reflect.Pointer {
			target = target.Elem()
		}
	default:
		return nil, false, false
	}

	if !IsEntityCandidate(target) {
		return nil, false, false
	}
	return target, collection, true
}

// Deref strips pointer indirections from t
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
