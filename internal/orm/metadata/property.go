package metadata

import (
	"reflect"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// PropertyBase is the shape shared by scalar properties and navigations
type PropertyBase interface {
	Name() string
	Member() *source.Member
	DeclaringEntity() *Entity
	Type() reflect.Type
}

// Property is a scalar member of an entity
type Property struct {
	Annotable

	name            string
	typ             reflect.Type
	member          *source.Member
	declaringEntity *Entity

	// back-references maintained by Entity
	primaryKey  *Key
	keys        []*Key
	foreignKeys []*ForeignKey
	indexes     []*Index
}

var _ PropertyBase = (*Property)(nil)

func newProperty(name string, typ reflect.Type, member *source.Member, entity *Entity) *Property {
	return &Property{
		name:            name,
		typ:             typ,
		member:          member,
		declaringEntity: entity,
	}
}

// Name returns the property name
func (p *Property) Name() string { return p.name }

// Type returns the Go type of the property
func (p *Property) Type() reflect.Type { return p.typ }

// Member returns the backing struct field, nil for shadow properties
func (p *Property) Member() *source.Member { return p.member }

// DeclaringEntity returns the entity owning the property
func (p *Property) DeclaringEntity() *Entity { return p.declaringEntity }

// IsShadow reports whether the property has no backing struct field
func (p *Property) IsShadow() bool { return p.member == nil }

// IsNullable reports whether the property type admits no value
func (p *Property) IsNullable() bool { return source.IsNullable(p.typ) }

// PrimaryKey returns the primary key the property belongs to
func (p *Property) PrimaryKey() *Key { return p.primaryKey }

// Keys returns the keys containing the property
func (p *Property) Keys() []*Key { return p.keys }

// ForeignKeys returns the foreign keys containing the property
func (p *Property) ForeignKeys() []*ForeignKey { return p.foreignKeys }

// Indexes returns the indexes containing the property
func (p *Property) Indexes() []*Index { return p.indexes }

// IsKey reports whether the property is part of any key
func (p *Property) IsKey() bool { return len(p.keys) > 0 }

// IsForeignKey reports whether the property is part of any foreign key
func (p *Property) IsForeignKey() bool { return len(p.foreignKeys) > 0 }

// IsPrimaryKey reports whether the property is part of the primary key
func (p *Property) IsPrimaryKey() bool { return p.primaryKey != nil }

// GetContainingKeys returns the keys containing the property, primary key included
func (p *Property) GetContainingKeys() []*Key {
	return p.keys
}

// clone copies the property into entity as a shadow property under name.
// Constraint back-references are not carried over.
func (p *Property) clone(entity *Entity, name string) *Property {
	return newProperty(name, p.typ, nil, entity)
}

// String implements fmt.Stringer
func (p *Property) String() string {
	return p.DebugString(true, "")
}
