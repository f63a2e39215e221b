package metadata

import (
	"reflect"
	"slices"
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// Entity is a mapped struct type, or a shadow association entity
type Entity struct {
	Annotable

	model    *Model
	name     string
	typeInfo *source.TypeInfo

	baseType *Entity
	derived  []*Entity

	properties     map[string]*Property
	propertyOrder  []*Property
	keys           []*Key
	primaryKey     *Key
	foreignKeys    []*ForeignKey
	navigations    map[string]*Navigation
	indexes        []*Index
	referencingFKs []*ForeignKey

	// association foreign keys of a linked entity
	linkFirst  *ForeignKey
	linkSecond *ForeignKey
}

func newEntity(m *Model, name string, info *source.TypeInfo) *Entity {
	return &Entity{
		model:       m,
		name:        name,
		typeInfo:    info,
		properties:  make(map[string]*Property),
		navigations: make(map[string]*Navigation),
	}
}

// Name returns the entity name
func (e *Entity) Name() string { return e.name }

// Model returns the owning model
func (e *Entity) Model() *Model { return e.model }

// Type returns the backing struct type, nil for shadow entities
func (e *Entity) Type() reflect.Type {
	if e.typeInfo == nil {
		return nil
	}
	return e.typeInfo.Type
}

// TypeInfo returns the described backing type, nil for shadow entities
func (e *Entity) TypeInfo() *source.TypeInfo { return e.typeInfo }

// IsShadow reports whether the entity has no backing type
func (e *Entity) IsShadow() bool { return e.typeInfo == nil }

// IsAbstract reports whether the backing type embeds source.Abstract
func (e *Entity) IsAbstract() bool { return e.typeInfo != nil && e.typeInfo.Abstract }

// IsLinked reports whether the entity was synthesized for a many-to-many relationship
func (e *Entity) IsLinked() bool { return e.linkFirst != nil }

// LinkForeignKeys returns the foreign keys of a linked entity to its two ends
func (e *Entity) LinkForeignKeys() (first, second *ForeignKey) {
	return e.linkFirst, e.linkSecond
}

// BaseType returns the direct base entity
func (e *Entity) BaseType() *Entity { return e.baseType }

// TrySetBaseType sets the base entity once. Setting the same base again is a no-op.
func (e *Entity) TrySetBaseType(base *Entity) error {
	if base == nil {
		return NewArgumentNull("base")
	}
	if e.baseType == base {
		return nil
	}
	if e.baseType != nil {
		return NewBaseTypeAlreadyDefined(e.name, e.baseType.name)
	}
	if e.IsAssignableFrom(base) {
		return NewCircularInheritance(e.name, base.name)
	}

	e.baseType = base
	base.derived = append(base.derived, e)

	_, err := e.model.dispatcher.OnBaseEntitySet(e)
	return err
}

// Root returns the top of the inheritance hierarchy
func (e *Entity) Root() *Entity {
	root := e
	for root.baseType != nil {
		root = root.baseType
	}
	return root
}

// IsAssignableFrom reports whether derived is e or inherits from it
func (e *Entity) IsAssignableFrom(derived *Entity) bool {
	for d := derived; d != nil; d = d.baseType {
		if d == e {
			return true
		}
	}
	return false
}

// GetDirectlyDerivedEntities returns the entities whose base is e
func (e *Entity) GetDirectlyDerivedEntities() []*Entity {
	return slices.Clone(e.derived)
}

// GetDerivedEntities returns every entity inheriting from e, breadth first
func (e *Entity) GetDerivedEntities() []*Entity {
	var result []*Entity
	queue := slices.Clone(e.derived)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		result = append(result, next)
		queue = append(queue, next.derived...)
	}
	return result
}

// inherited walks the base chain and concatenates declared views, base first
func inherited[T any](e *Entity, declared func(*Entity) []T) []T {
	var chain []*Entity
	for c := e; c != nil; c = c.baseType {
		chain = append(chain, c)
	}
	var result []T
	for i := len(chain) - 1; i >= 0; i-- {
		result = append(result, declared(chain[i])...)
	}
	return result
}

// GetDeclaredProperties returns the properties declared on e, primary key first
func (e *Entity) GetDeclaredProperties() []*Property {
	return slices.Clone(e.propertyOrder)
}

// GetProperties returns inherited and declared properties, base first
func (e *Entity) GetProperties() []*Property {
	return inherited(e, func(c *Entity) []*Property { return c.propertyOrder })
}

// FindDeclaredProperty returns the property declared on e under name
func (e *Entity) FindDeclaredProperty(name string) *Property {
	return e.properties[name]
}

// FindProperty returns the property declared on e or inherited under name
func (e *Entity) FindProperty(name string) *Property {
	for c := e; c != nil; c = c.baseType {
		if p, ok := c.properties[name]; ok {
			return p
		}
	}
	return nil
}

// FindDerivedProperties returns the properties named name declared on derived entities
func (e *Entity) FindDerivedProperties(name string) []*Property {
	var result []*Property
	for _, d := range e.GetDerivedEntities() {
		if p := d.FindDeclaredProperty(name); p != nil {
			result = append(result, p)
		}
	}
	return result
}

// FindPropertiesInHierarchy returns the properties named name on e, its bases and derived entities
func (e *Entity) FindPropertiesInHierarchy(name string) []*Property {
	var result []*Property
	if p := e.FindProperty(name); p != nil {
		result = append(result, p)
	}
	return append(result, e.FindDerivedProperties(name)...)
}

// GetOrAddProperty returns the property for member, adding it when missing
func (e *Entity) GetOrAddProperty(member *source.Member) (*Property, error) {
	if member == nil {
		return nil, NewArgumentNull("member")
	}
	if p := e.FindProperty(member.Name); p != nil {
		return p, nil
	}
	return e.AddProperty(member, true)
}

// AddProperty adds a property backed by member
func (e *Entity) AddProperty(member *source.Member, runConventions bool) (*Property, error) {
	if member == nil {
		return nil, NewArgumentNull("member")
	}
	return e.addProperty(newProperty(member.Name, member.Type, member, e), runConventions)
}

// AddShadowProperty adds a property with no backing struct field
func (e *Entity) AddShadowProperty(name string, typ reflect.Type, runConventions bool) (*Property, error) {
	if name == "" {
		return nil, NewArgumentEmpty("name")
	}
	if typ == nil {
		return nil, NewArgumentNull("type")
	}
	return e.addProperty(newProperty(name, typ, nil, e), runConventions)
}

func (e *Entity) addProperty(p *Property, runConventions bool) (*Property, error) {
	if dup := e.FindPropertiesInHierarchy(p.name); len(dup) > 0 {
		return nil, NewDuplicateProperty(p.name, e.name, dup[0].declaringEntity.name)
	}
	if nav := e.FindNavigationsInHierarchy(p.name); len(nav) > 0 {
		return nil, NewDuplicateProperty(p.name, e.name, nav[0].DeclaringEntity().name)
	}

	e.insertProperty(p)
	if !runConventions {
		return p, nil
	}
	if _, err := e.model.dispatcher.OnPropertyAdded(p); err != nil {
		return p, err
	}
	return p, nil
}

// insertProperty stores p keeping the declared order invariant
func (e *Entity) insertProperty(p *Property) {
	e.properties[p.name] = p
	e.propertyOrder = append(e.propertyOrder, p)
	e.resortProperties()
}

func (e *Entity) resortProperties() {
	sortProperties(e.propertyOrder, e.FindPrimaryKey())
}

// GetDeclaredNavigations returns the navigations declared on e ordered by name
func (e *Entity) GetDeclaredNavigations() []*Navigation {
	result := make([]*Navigation, 0, len(e.navigations))
	for _, n := range e.navigations {
		result = append(result, n)
	}
	slices.SortFunc(result, func(a, b *Navigation) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result
}

// GetNavigations returns inherited and declared navigations, base first
func (e *Entity) GetNavigations() []*Navigation {
	return inherited(e, (*Entity).GetDeclaredNavigations)
}

// FindDeclaredNavigation returns the navigation declared on e under name
func (e *Entity) FindDeclaredNavigation(name string) *Navigation {
	return e.navigations[name]
}

// FindNavigation returns the navigation declared on e or inherited under name
func (e *Entity) FindNavigation(name string) *Navigation {
	for c := e; c != nil; c = c.baseType {
		if n, ok := c.navigations[name]; ok {
			return n
		}
	}
	return nil
}

// FindDerivedNavigations returns the navigations named name declared on derived entities
func (e *Entity) FindDerivedNavigations(name string) []*Navigation {
	var result []*Navigation
	for _, d := range e.GetDerivedEntities() {
		if n := d.FindDeclaredNavigation(name); n != nil {
			result = append(result, n)
		}
	}
	return result
}

// FindNavigationsInHierarchy returns the navigations named name on e, its bases and derived entities
func (e *Entity) FindNavigationsInHierarchy(name string) []*Navigation {
	var result []*Navigation
	if n := e.FindNavigation(name); n != nil {
		result = append(result, n)
	}
	return append(result, e.FindDerivedNavigations(name)...)
}

// String implements fmt.Stringer
func (e *Entity) String() string {
	return e.DebugString(true, "")
}
