package migrate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	durationType   = reflect.TypeFor[time.Duration]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
)

// StoreType maps a property type to a PostgreSQL column type.
// Nullable wrappers map to the type they carry.
func StoreType(t reflect.Type) (string, error) {
	if t == nil {
		return "", fmt.Errorf("type cannot be nil")
	}
	t = source.UnwrapNullable(t)

	switch t {
	case timeType:
		return "TIMESTAMP WITH TIME ZONE", nil
	case durationType:
		return "INTERVAL", nil
	case uuidType:
		return "UUID", nil
	case rawMessageType:
		return "JSONB", nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return "BOOLEAN", nil
	case reflect.Int8, reflect.Uint8, reflect.Int16:
		return "SMALLINT", nil
	case reflect.Uint16, reflect.Int32:
		return "INTEGER", nil
	case reflect.Int, reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return "BIGINT", nil
	case reflect.Float32:
		return "REAL", nil
	case reflect.Float64:
		return "DOUBLE PRECISION", nil
	case reflect.String:
		return "TEXT", nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "BYTEA", nil
		}
	}
	return "", fmt.Errorf("unsupported type: %s", t)
}
