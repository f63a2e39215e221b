package metadata

import (
	"reflect"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// Navigation is a relationship-typed member of an entity.
// It reaches its target through an association entity: the first foreign key
// links the association to the declaring entity, the second to the target.
type Navigation struct {
	Annotable

	member     *source.Member
	fkToLinked *ForeignKey
	fkToTarget *ForeignKey
}

var _ PropertyBase = (*Navigation)(nil)

// Name returns the navigation name
func (n *Navigation) Name() string { return n.member.Name }

// Member returns the backing struct field
func (n *Navigation) Member() *source.Member { return n.member }

// Type returns the Go type of the navigation field
func (n *Navigation) Type() reflect.Type { return n.member.Type }

// DeclaringEntity returns the principal entity of the foreign key to the association
func (n *Navigation) DeclaringEntity() *Entity { return n.fkToLinked.PrincipalEntity() }

// ForeignKeyToLinked returns the association foreign key targeting the declaring entity
func (n *Navigation) ForeignKeyToLinked() *ForeignKey { return n.fkToLinked }

// ForeignKeyToTarget returns the association foreign key targeting the target entity
func (n *Navigation) ForeignKeyToTarget() *ForeignKey { return n.fkToTarget }

// LinkedEntity returns the association entity
func (n *Navigation) LinkedEntity() *Entity { return n.fkToLinked.DeclaringEntity() }

// GetTargetEntity returns the entity the navigation points at
func (n *Navigation) GetTargetEntity() *Entity { return n.fkToTarget.PrincipalEntity() }

// IsCollection reports whether the navigation holds many targets
func (n *Navigation) IsCollection() bool { return n.member.Type.Kind() == reflect.Slice }

// String implements fmt.Stringer
func (n *Navigation) String() string {
	return n.DebugString(true, "")
}
