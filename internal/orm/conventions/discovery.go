package conventions

import (
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
)

// BaseTypeDiscovery sets the base entity from the first embedded entity struct
type BaseTypeDiscovery struct{}

// Name implements EntityConvention
func (BaseTypeDiscovery) Name() string { return "BaseTypeDiscovery" }

// Apply implements EntityConvention
func (BaseTypeDiscovery) Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error) {
	if e.IsShadow() || e.TypeInfo().Base == nil {
		return metadata.Continue(e), nil
	}

	base, err := e.Model().GetOrAddEntity(e.TypeInfo().Base)
	if err != nil {
		return metadata.Result[*metadata.Entity]{}, err
	}
	if err := e.TrySetBaseType(base); err != nil {
		return metadata.Result[*metadata.Entity]{}, err
	}
	return metadata.Continue(e), nil
}

// PropertyDiscovery adds a property for every writable primitive member
// declared on the entity type itself. Inherited members belong to the base.
type PropertyDiscovery struct{}

// Name implements EntityConvention
func (PropertyDiscovery) Name() string { return "PropertyDiscovery" }

// Apply implements EntityConvention
func (PropertyDiscovery) Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error) {
	if e.IsShadow() {
		return metadata.Continue(e), nil
	}

	for _, m := range e.TypeInfo().Own {
		if !m.Writable || !m.IsPrimitive() {
			continue
		}
		if _, err := e.GetOrAddProperty(m); err != nil {
			return metadata.Result[*metadata.Entity]{}, err
		}
	}
	return metadata.Continue(e), nil
}

const keySuffix = "Id"

// KeyDiscovery sets the primary key of a root entity from a property named
// Id, <Entity>Id or Id<Entity>, compared case-insensitively. A pattern
// matching more than one property ends discovery without a key.
type KeyDiscovery struct{}

// Name implements EntityConvention
func (KeyDiscovery) Name() string { return "KeyDiscovery" }

// Apply implements EntityConvention
func (KeyDiscovery) Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error) {
	if e.BaseType() != nil || e.FindPrimaryKey() != nil {
		return metadata.Continue(e), nil
	}

	var candidates []*metadata.Property
	for _, p := range e.GetDeclaredProperties() {
		if !p.IsShadow() {
			candidates = append(candidates, p)
		}
	}

	key := DiscoverKeyProperty(e.Name(), candidates)
	if key == nil {
		return metadata.Continue(e), nil
	}
	if _, err := e.SetPrimaryKey([]*metadata.Property{key}); err != nil {
		return metadata.Result[*metadata.Entity]{}, err
	}
	return metadata.Continue(e), nil
}

// DiscoverKeyProperty returns the single candidate matching the key name patterns
func DiscoverKeyProperty(entityName string, candidates []*metadata.Property) *metadata.Property {
	for _, pattern := range []string{keySuffix, entityName + keySuffix, keySuffix + entityName} {
		var match *metadata.Property
		count := 0
		for _, p := range candidates {
			if strings.EqualFold(p.Name(), pattern) {
				match = p
				count++
			}
		}
		switch {
		case count == 1:
			return match
		case count > 1:
			return nil
		}
	}
	return nil
}
