package metadata

// Key is an ordered set of properties uniquely identifying an entity instance
type Key struct {
	Annotable

	properties             []*Property
	referencingForeignKeys []*ForeignKey
}

func newKey(properties []*Property) *Key {
	return &Key{properties: append([]*Property(nil), properties...)}
}

// Properties returns the key properties in key order
func (k *Key) Properties() []*Property { return k.properties }

// DeclaringEntity returns the entity declaring the first key property
func (k *Key) DeclaringEntity() *Entity { return k.properties[0].declaringEntity }

// IsPrimaryKey reports whether the key is its entity's current primary key
func (k *Key) IsPrimaryKey() bool {
	return k.DeclaringEntity().FindPrimaryKey() == k
}

// ReferencingForeignKeys returns the foreign keys targeting this key
func (k *Key) ReferencingForeignKeys() []*ForeignKey { return k.referencingForeignKeys }

// String implements fmt.Stringer
func (k *Key) String() string {
	return k.DebugString(true, "")
}
