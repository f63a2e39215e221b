// Package conventions provides the inference rules that populate a metadata model
package conventions

import (
	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
)

// EntityConvention is a rule applied to entities
type EntityConvention interface {
	Name() string
	Apply(e *metadata.Entity) (metadata.Result[*metadata.Entity], error)
}

// Entity wraps an EntityConvention for a ConventionSet
func Entity(c EntityConvention) metadata.Convention[*metadata.Entity] {
	return metadata.Convention[*metadata.Entity]{Name: c.Name(), Apply: c.Apply}
}

// CoreConventionSet returns the discovery conventions in dispatch order:
// base type, properties, key, table attribute, then relationships.
func CoreConventionSet() *metadata.ConventionSet {
	return &metadata.ConventionSet{
		EntityAdded: []metadata.Convention[*metadata.Entity]{
			Entity(BaseTypeDiscovery{}),
			Entity(PropertyDiscovery{}),
			Entity(KeyDiscovery{}),
			Entity(TableAttribute{}),
			Entity(RelationshipDiscovery{}),
		},
		LinkedEntityAdded: []metadata.Convention[*metadata.Entity]{
			Entity(PropertyDiscovery{}),
			Entity(KeyDiscovery{}),
		},
	}
}

// NewModel creates a model running the core conventions
func NewModel(opts ...metadata.Option) *metadata.Model {
	opts = append([]metadata.Option{metadata.WithConventions(CoreConventionSet())}, opts...)
	return metadata.NewModel(opts...)
}
