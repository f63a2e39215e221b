package metadata

// Index is an ordered set of properties indexed for lookup
type Index struct {
	Annotable

	properties      []*Property
	declaringEntity *Entity
	unique          bool
}

// Properties returns the indexed properties in index order
func (ix *Index) Properties() []*Property { return ix.properties }

// DeclaringEntity returns the entity the index is declared on
func (ix *Index) DeclaringEntity() *Entity { return ix.declaringEntity }

// IsUnique reports whether the index enforces uniqueness
func (ix *Index) IsUnique() bool { return ix.unique }

// String implements fmt.Stringer
func (ix *Index) String() string {
	return ix.DebugString(true, "")
}
