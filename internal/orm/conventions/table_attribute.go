package conventions

import (
	"reflect"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

// Tabler is implemented by entity types naming their own table
type Tabler interface {
	TableName() string
}

var tablerType = reflect.TypeFor[Tabler]()

// TableAttribute sets the table name of root entities whose type implements Tabler
type TableAttribute struct{}

// Name implements EntityConvention
func (TableAttribute) Name() string { return "TableAttribute" }

// Apply implements EntityConvention
func (TableAttribute) Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error) {
	if e.IsShadow() || e.BaseType() != nil {
		return metadata.Continue(e), nil
	}

	t := e.Type()
	var tabler Tabler
	switch {
	case t.Implements(tablerType):
		tabler = reflect.Zero(t).Interface().(Tabler)
	case reflect.PointerTo(t).Implements(tablerType):
		tabler = reflect.New(t).Interface().(Tabler)
	default:
		return metadata.Continue(e), nil
	}

	if name := tabler.TableName(); name != "" {
		relational.Entity(e).SetTableName(name)
	}
	return metadata.Continue(e), nil
}
