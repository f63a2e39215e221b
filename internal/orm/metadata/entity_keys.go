package metadata

import (
	"slices"
)

func checkPropertyList(properties []*Property, argument string) error {
	if len(properties) == 0 {
		return NewArgumentEmpty(argument)
	}
	if slices.Contains(properties, nil) {
		return NewArgumentNull(argument)
	}
	return nil
}

// GetDeclaredKeys returns the keys declared on e
func (e *Entity) GetDeclaredKeys() []*Key {
	return slices.Clone(e.keys)
}

// GetKeys returns inherited and declared keys, base first
func (e *Entity) GetKeys() []*Key {
	return inherited(e, func(c *Entity) []*Key { return c.keys })
}

// FindDeclaredKey returns the key declared on e over the named properties
func (e *Entity) FindDeclaredKey(properties []*Property) *Key {
	for _, k := range e.keys {
		if ComparePropertyLists(k.properties, properties) == 0 {
			return k
		}
	}
	return nil
}

// FindKey returns the key over the named properties declared on e or inherited
func (e *Entity) FindKey(properties []*Property) *Key {
	for c := e; c != nil; c = c.baseType {
		if k := c.FindDeclaredKey(properties); k != nil {
			return k
		}
	}
	return nil
}

// AddKey adds an alternate key over properties declared on e. The key is
// removed again when a key-added convention fails.
func (e *Entity) AddKey(properties []*Property) (*Key, error) {
	if err := checkPropertyList(properties, "properties"); err != nil {
		return nil, err
	}
	if e.baseType != nil {
		return nil, NewDerivedEntityKey(e.name, e.Root().name)
	}

	for _, p := range properties {
		if e.FindProperty(p.name) != p || p.declaringEntity != e {
			return nil, NewKeyPropertiesWrongEntity(properties, e.name)
		}
		for _, fk := range p.foreignKeys {
			if fk.declaringEntity != e {
				return nil, NewKeyPropertyInForeignKey(p.name, e.name)
			}
		}
		if p.IsNullable() {
			return nil, NewNullableKey(e.name, p.name)
		}
	}

	if dup := e.FindKey(properties); dup != nil {
		return nil, NewDuplicateKey(properties, e.name, dup.DeclaringEntity().name)
	}

	key := newKey(properties)
	e.keys = append(e.keys, key)
	slices.SortStableFunc(e.keys, func(a, b *Key) int {
		return ComparePropertyLists(a.properties, b.properties)
	})
	for _, p := range properties {
		p.keys = append(p.keys, key)
	}

	if _, err := e.model.dispatcher.OnKeyAdded(key); err != nil {
		e.removeKey(key)
		return nil, err
	}
	return key, nil
}

// removeKey unlinks a key that failed its conventions
func (e *Entity) removeKey(key *Key) {
	e.keys = slices.DeleteFunc(e.keys, func(k *Key) bool { return k == key })
	for _, p := range key.properties {
		p.keys = slices.DeleteFunc(p.keys, func(k *Key) bool { return k == key })
	}
}

// GetOrAddKey returns the declared key over properties, adding it when missing
func (e *Entity) GetOrAddKey(properties []*Property) (*Key, error) {
	if k := e.FindDeclaredKey(properties); k != nil {
		return k, nil
	}
	return e.AddKey(properties)
}

// FindDeclaredPrimaryKey returns the primary key declared on e
func (e *Entity) FindDeclaredPrimaryKey() *Key { return e.primaryKey }

// FindPrimaryKey returns the primary key of the hierarchy root
func (e *Entity) FindPrimaryKey() *Key {
	return e.Root().primaryKey
}

// SetPrimaryKey sets the primary key of a root entity. It can be set only once.
// A convention error leaves the entity without a primary key.
func (e *Entity) SetPrimaryKey(properties []*Property) (*Key, error) {
	if err := checkPropertyList(properties, "properties"); err != nil {
		return nil, err
	}
	if e.baseType != nil {
		return nil, NewDerivedEntityKey(e.name, e.Root().name)
	}
	if e.primaryKey != nil {
		return nil, NewPrimaryKeyAlreadyExists(e.name)
	}

	existing := e.FindDeclaredKey(properties)
	key, err := e.GetOrAddKey(properties)
	if err != nil {
		return nil, err
	}

	for _, p := range key.properties {
		p.primaryKey = key
	}
	e.primaryKey = key
	e.resortProperties()

	if _, err := e.model.dispatcher.OnPrimaryKeySet(key); err != nil {
		for _, p := range key.properties {
			p.primaryKey = nil
		}
		e.primaryKey = nil
		if existing == nil {
			e.removeKey(key)
		}
		e.resortProperties()
		return nil, err
	}
	return key, nil
}

// GetDeclaredForeignKeys returns the foreign keys declared on e
func (e *Entity) GetDeclaredForeignKeys() []*ForeignKey {
	return slices.Clone(e.foreignKeys)
}

// GetForeignKeys returns inherited and declared foreign keys, base first
func (e *Entity) GetForeignKeys() []*ForeignKey {
	return inherited(e, func(c *Entity) []*ForeignKey { return c.foreignKeys })
}

func sameForeignKey(fk *ForeignKey, properties []*Property, principalKey *Key, principalEntity *Entity) bool {
	return ComparePropertyLists(fk.properties, properties) == 0 &&
		ComparePropertyLists(fk.principalKey.properties, principalKey.properties) == 0 &&
		fk.principalEntity.name == principalEntity.name
}

// FindDeclaredForeignKey returns the equivalent foreign key declared on e
func (e *Entity) FindDeclaredForeignKey(properties []*Property, principalKey *Key, principalEntity *Entity) *ForeignKey {
	for _, fk := range e.foreignKeys {
		if sameForeignKey(fk, properties, principalKey, principalEntity) {
			return fk
		}
	}
	return nil
}

// FindDeclaredForeignKeys returns the foreign keys declared on e over the named properties
func (e *Entity) FindDeclaredForeignKeys(properties []*Property) []*ForeignKey {
	var result []*ForeignKey
	for _, fk := range e.foreignKeys {
		if ComparePropertyLists(fk.properties, properties) == 0 {
			result = append(result, fk)
		}
	}
	return result
}

// FindForeignKey returns the equivalent foreign key declared on e or inherited
func (e *Entity) FindForeignKey(properties []*Property, principalKey *Key, principalEntity *Entity) *ForeignKey {
	for c := e; c != nil; c = c.baseType {
		if fk := c.FindDeclaredForeignKey(properties, principalKey, principalEntity); fk != nil {
			return fk
		}
	}
	return nil
}

// FindDerivedForeignKeys returns the equivalent foreign keys declared on derived entities
func (e *Entity) FindDerivedForeignKeys(properties []*Property, principalKey *Key, principalEntity *Entity) []*ForeignKey {
	var result []*ForeignKey
	for _, d := range e.GetDerivedEntities() {
		if fk := d.FindDeclaredForeignKey(properties, principalKey, principalEntity); fk != nil {
			result = append(result, fk)
		}
	}
	return result
}

// FindForeignKeysInHierarchy returns the equivalent foreign keys on e, its bases and derived entities
func (e *Entity) FindForeignKeysInHierarchy(properties []*Property, principalKey *Key, principalEntity *Entity) []*ForeignKey {
	var result []*ForeignKey
	if fk := e.FindForeignKey(properties, principalKey, principalEntity); fk != nil {
		result = append(result, fk)
	}
	return append(result, e.FindDerivedForeignKeys(properties, principalKey, principalEntity)...)
}

// GetDeclaredReferencingForeignKeys returns the foreign keys targeting e itself
func (e *Entity) GetDeclaredReferencingForeignKeys() []*ForeignKey {
	return slices.Clone(e.referencingFKs)
}

// GetReferencingForeignKeys returns the foreign keys targeting e or its bases
func (e *Entity) GetReferencingForeignKeys() []*ForeignKey {
	return inherited(e, func(c *Entity) []*ForeignKey { return c.referencingFKs })
}

// AddForeignKey adds a foreign key from properties to principalKey on principalEntity.
// The foreign key is removed again when a foreign-key-added convention fails.
func (e *Entity) AddForeignKey(properties []*Property, principalKey *Key, principalEntity *Entity, runConventions bool) (*ForeignKey, error) {
	if err := checkPropertyList(properties, "properties"); err != nil {
		return nil, err
	}
	if principalKey == nil {
		return nil, NewArgumentNull("principalKey")
	}
	if principalEntity == nil {
		return nil, NewArgumentNull("principalEntity")
	}

	for _, p := range properties {
		actual := e.FindProperty(p.name)
		if actual == nil || !actual.declaringEntity.IsAssignableFrom(p.declaringEntity) {
			return nil, NewForeignKeyPropertiesWrongEntity(properties, e.name)
		}
		for _, k := range actual.GetContainingKeys() {
			if k.DeclaringEntity() != e {
				return nil, NewForeignKeyPropertyInKey(actual.name, e.name)
			}
		}
	}

	if dup := e.FindForeignKeysInHierarchy(properties, principalKey, principalEntity); len(dup) > 0 {
		return nil, NewDuplicateForeignKey(properties, e.name, dup[0].declaringEntity.name, principalKey.properties, principalEntity.name)
	}

	fk, err := NewForeignKey(properties, principalKey, e, principalEntity)
	if err != nil {
		return nil, err
	}

	e.foreignKeys = append(e.foreignKeys, fk)
	slices.SortStableFunc(e.foreignKeys, CompareForeignKeys)
	for _, p := range properties {
		p.foreignKeys = append(p.foreignKeys, fk)
	}
	principalKey.referencingForeignKeys = append(principalKey.referencingForeignKeys, fk)
	principalEntity.referencingFKs = append(principalEntity.referencingFKs, fk)

	if !runConventions {
		return fk, nil
	}
	if _, err := e.model.dispatcher.OnForeignKeyAdded(fk); err != nil {
		e.removeForeignKey(fk)
		return nil, err
	}
	return fk, nil
}

// removeForeignKey unlinks fk from e, its properties and its principal
func (e *Entity) removeForeignKey(fk *ForeignKey) {
	same := func(x *ForeignKey) bool { return x == fk }
	e.foreignKeys = slices.DeleteFunc(e.foreignKeys, same)
	for _, p := range fk.properties {
		p.foreignKeys = slices.DeleteFunc(p.foreignKeys, same)
	}
	fk.principalKey.referencingForeignKeys = slices.DeleteFunc(fk.principalKey.referencingForeignKeys, same)
	fk.principalEntity.referencingFKs = slices.DeleteFunc(fk.principalEntity.referencingFKs, same)
}

// GetDeclaredIndexes returns the indexes declared on e
func (e *Entity) GetDeclaredIndexes() []*Index {
	return slices.Clone(e.indexes)
}

// GetIndexes returns inherited and declared indexes, base first
func (e *Entity) GetIndexes() []*Index {
	return inherited(e, func(c *Entity) []*Index { return c.indexes })
}

// FindDeclaredIndex returns the index declared on e over the named properties
func (e *Entity) FindDeclaredIndex(properties []*Property) *Index {
	for _, ix := range e.indexes {
		if ComparePropertyLists(ix.properties, properties) == 0 {
			return ix
		}
	}
	return nil
}

// FindIndex returns the index over the named properties declared on e or inherited
func (e *Entity) FindIndex(properties []*Property) *Index {
	for c := e; c != nil; c = c.baseType {
		if ix := c.FindDeclaredIndex(properties); ix != nil {
			return ix
		}
	}
	return nil
}

// AddIndex adds an index over properties reachable from e
func (e *Entity) AddIndex(properties []*Property, unique bool) (*Index, error) {
	if err := checkPropertyList(properties, "properties"); err != nil {
		return nil, err
	}
	for _, p := range properties {
		if e.FindProperty(p.name) != p {
			return nil, NewKeyPropertiesWrongEntity(properties, e.name)
		}
	}

	if dup := e.FindIndex(properties); dup != nil {
		return nil, NewDuplicateIndex(properties, e.name, dup.declaringEntity.name)
	}
	for _, d := range e.GetDerivedEntities() {
		if dup := d.FindDeclaredIndex(properties); dup != nil {
			return nil, NewDuplicateIndex(properties, e.name, d.name)
		}
	}

	ix := &Index{
		properties:      slices.Clone(properties),
		declaringEntity: e,
		unique:          unique,
	}
	e.indexes = append(e.indexes, ix)
	slices.SortStableFunc(e.indexes, func(a, b *Index) int {
		return ComparePropertyLists(a.properties, b.properties)
	})
	for _, p := range properties {
		p.indexes = append(p.indexes, ix)
	}
	return ix, nil
}
