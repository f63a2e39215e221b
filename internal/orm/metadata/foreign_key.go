package metadata

import (
	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// ForeignKey links dependent properties to a principal key
type ForeignKey struct {
	Annotable

	properties      []*Property
	principalKey    *Key
	declaringEntity *Entity
	principalEntity *Entity
}

// NewForeignKey validates and builds a foreign key without registering it.
// principalEntity defaults to the entity declaring principalKey.
func NewForeignKey(dependent []*Property, principalKey *Key, dependentEntity, principalEntity *Entity) (*ForeignKey, error) {
	if err := checkPropertyList(dependent, "dependentProperties"); err != nil {
		return nil, err
	}
	if principalKey == nil {
		return nil, NewArgumentNull("principalKey")
	}
	if dependentEntity == nil {
		return nil, NewArgumentNull("dependentEntity")
	}
	if principalEntity == nil {
		principalEntity = principalKey.DeclaringEntity()
	}

	if err := checkCompatible(principalKey.properties, dependent, principalEntity, dependentEntity); err != nil {
		return nil, err
	}

	found := false
	for _, k := range principalEntity.GetKeys() {
		if k == principalKey {
			found = true
			break
		}
	}
	if !found {
		return nil, NewForeignKeyReferencedEntityKeyMismatch(principalKey.properties, principalEntity.Name())
	}

	return &ForeignKey{
		properties:      append([]*Property(nil), dependent...),
		principalKey:    principalKey,
		declaringEntity: dependentEntity,
		principalEntity: principalEntity,
	}, nil
}

// AreCompatible reports whether dependent properties can reference principal properties.
// Counts must match and nullable-unwrapped types must be identical pairwise.
func AreCompatible(principal, dependent []*Property) bool {
	if len(principal) != len(dependent) {
		return false
	}
	for i := range principal {
		if principal[i] == nil || dependent[i] == nil {
			return false
		}
		if source.UnwrapNullable(principal[i].Type()) != source.UnwrapNullable(dependent[i].Type()) {
			return false
		}
	}
	return true
}

func checkCompatible(principal, dependent []*Property, principalEntity, dependentEntity *Entity) error {
	if len(principal) != len(dependent) {
		return NewForeignKeyCountMismatch(dependent, dependentEntity.Name(), principal, principalEntity.Name())
	}
	if !AreCompatible(principal, dependent) {
		return NewForeignKeyTypeMismatch(dependent, dependentEntity.Name(), principal, principalEntity.Name())
	}
	return nil
}

// Properties returns the dependent properties
func (fk *ForeignKey) Properties() []*Property { return fk.properties }

// PrincipalKey returns the referenced key
func (fk *ForeignKey) PrincipalKey() *Key { return fk.principalKey }

// DeclaringEntity returns the dependent entity
func (fk *ForeignKey) DeclaringEntity() *Entity { return fk.declaringEntity }

// PrincipalEntity returns the referenced entity
func (fk *ForeignKey) PrincipalEntity() *Entity { return fk.principalEntity }

// IsSelfReferencing reports whether the foreign key targets its own entity
func (fk *ForeignKey) IsSelfReferencing() bool { return fk.declaringEntity == fk.principalEntity }

// String implements fmt.Stringer
func (fk *ForeignKey) String() string {
	return fk.DebugString(true, "")
}
