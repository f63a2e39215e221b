package source

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotEntityType is returned when a type cannot be described as an entity type
var ErrNotEntityType = errors.New("not an entity type")

// ErrCircularBase is returned when a type embeds itself through its base chain
var ErrCircularBase = errors.New("circular base type")

// Member is an exported field of an entity type
type Member struct {
	// Name is the field name
	Name string
	// Type is the declared field type
	Type reflect.Type
	// Index is the field index sequence relative to the described type
	Index []int
	// DeclaringType is the struct type the field is declared on
	DeclaringType reflect.Type
	// Position is the declaration order within the described type, inherited members first
	Position int
	// Writable is false for fields tagged model:"readonly"
	Writable bool
	// Hint is the parsed rel tag, nil when absent
	Hint *RelationshipHint
}

// String implements fmt.Stringer
func (m *Member) String() string {
	return m.DeclaringType.Name() + "." + m.Name
}

// IsPrimitive reports whether the member maps to a single column
func (m *Member) IsPrimitive() bool {
	return IsPrimitive(m.Type)
}

// NavigationTarget returns the entity type the member navigates to.
// Collection members qualify even when read-only, references must be writable.
func (m *Member) NavigationTarget() (reflect.Type, bool) {
	target, collection, ok := NavigationTarget(m.Type)
	if !ok {
		return nil, false
	}
	if !collection && !m.Writable {
		return nil, false
	}
	return target, true
}

// TypeInfo is the cached description of an entity type
type TypeInfo struct {
	Type     reflect.Type
	Name     string
	Base     reflect.Type
	Abstract bool
	// Own lists the members declared on the type itself, in declaration order
	Own []*Member
	// Members lists every visible member, inherited members first
	Members []*Member

	byName map[string]*Member
}

// Member looks up a visible member by name
func (ti *TypeInfo) Member(name string) (*Member, bool) {
	m, ok := ti.byName[name]
	return m, ok
}

// Catalog caches TypeInfo per reflect.Type
type Catalog struct {
	types map[reflect.Type]*TypeInfo
	mu    sync.RWMutex
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		types: make(map[reflect.Type]*TypeInfo),
	}
}

// Describe returns the TypeInfo for t, computing it on first use.
// Pointer types are dereferenced.
func (c *Catalog) Describe(t reflect.Type) (*TypeInfo, error) {
	t = Deref(t)
	if !IsEntityCandidate(t) {
		return nil, fmt.Errorf("%w: %v", ErrNotEntityType, t)
	}

	c.mu.RLock()
	info, ok := c.types[t]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.describeLocked(t, make(map[reflect.Type]bool))
}

// describeLocked describes t. inProgress holds the types whose base chain is
// being walked.
func (c *Catalog) describeLocked(t reflect.Type, inProgress map[reflect.Type]bool) (*TypeInfo, error) {
	if info, ok := c.types[t]; ok {
		return info, nil
	}
	if inProgress[t] {
		return nil, fmt.Errorf("%w: %v", ErrCircularBase, t)
	}
	inProgress[t] = true
	defer delete(inProgress, t)

	info := &TypeInfo{
		Type:   t,
		Name:   t.Name(),
		byName: make(map[string]*Member),
	}

	baseIndex := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := Deref(f.Type)
		if ft == abstractType {
			info.Abstract = true
			continue
		}
		if baseIndex < 0 && f.IsExported() && IsEntityCandidate(ft) {
			baseIndex = i
			info.Base = ft
		}
	}

	if info.Base != nil {
		base, err := c.describeLocked(info.Base, inProgress)
		if err != nil {
			return nil, err
		}
		for _, bm := range base.Members {
			if sf, ok := t.FieldByName(bm.Name); !ok || sf.Index[0] != baseIndex {
				// shadowed by a field of t
				continue
			}
			m := *bm
			m.Index = append([]int{baseIndex}, bm.Index...)
			info.add(&m)
		}
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if baseIndex >= 0 && f.Index[0] == baseIndex {
			continue
		}
		if _, dup := info.byName[f.Name]; dup {
			continue
		}

		opts := parseModelTag(f.Tag.Get(ModelTag))
		if opts.ignored {
			continue
		}

		hint, err := ParseRelationshipHint(f.Tag.Get(RelationshipTag))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}

		m := &Member{
			Name:          f.Name,
			Type:          f.Type,
			Index:         f.Index,
			DeclaringType: t,
			Writable:      !opts.readOnly,
			Hint:          hint,
		}
		info.add(m)
		info.Own = append(info.Own, m)
	}

	c.types[t] = info
	return info, nil
}

func (ti *TypeInfo) add(m *Member) {
	m.Position = len(ti.Members)
	ti.Members = append(ti.Members, m)
	ti.byName[m.Name] = m
}
