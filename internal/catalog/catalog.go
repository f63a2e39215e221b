// Package catalog builds the sample entity models shipped with the CLI
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymodel/internal/orm/conventions"
	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

// ErrUnknownCatalog is returned by Load for a name no catalog is registered under
var ErrUnknownCatalog = errors.New("unknown catalog")

// Options configures the relational mapping of a loaded model
type Options struct {
	Naming relational.NamingStrategy
	Schema string
	Logger *zap.Logger
}

var builders = map[string]func(*builder){
	"blog-v1": buildBlogV1,
	"blog-v2": buildBlogV2,
	"shop":    buildShop,
}

var aliases = map[string]string{
	"blog": "blog-v2",
}

// Names returns the registered catalog names, sorted
func Names() []string {
	names := make([]string, 0, len(builders)+len(aliases))
	for name := range builders {
		names = append(names, name)
	}
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load builds the catalog registered under name with the core conventions
func Load(name string, opts Options) (*metadata.Model, error) {
	if target, ok := aliases[name]; ok {
		name = target
	}
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}

	var modelOpts []metadata.Option
	if opts.Logger != nil {
		modelOpts = append(modelOpts, metadata.WithLogger(opts.Logger))
	}
	m := conventions.NewModel(modelOpts...)
	if opts.Naming != "" {
		relational.Model(m).SetNamingStrategy(opts.Naming)
	}
	relational.Model(m).SetDefaultSchema(opts.Schema)

	b := &builder{m: m}
	build(b)
	if b.err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, b.err)
	}
	return m, nil
}

// builder records the first error and ignores later calls
type builder struct {
	m   *metadata.Model
	err error
}

func entity[T any](b *builder) *metadata.Entity {
	if b.err != nil {
		return nil
	}
	e, err := metadata.GetOrAddEntityOf[T](b.m)
	if err != nil {
		b.err = err
		return nil
	}
	return e
}

func (b *builder) properties(e *metadata.Entity, names ...string) []*metadata.Property {
	if b.err != nil {
		return nil
	}
	properties := make([]*metadata.Property, len(names))
	for i, name := range names {
		p := e.FindProperty(name)
		if p == nil {
			b.err = fmt.Errorf("property %s.%s not found", e.Name(), name)
			return nil
		}
		properties[i] = p
	}
	return properties
}

func (b *builder) foreignKey(dependent, principal *metadata.Entity, names ...string) {
	properties := b.properties(dependent, names...)
	if b.err != nil {
		return
	}
	key := principal.FindPrimaryKey()
	if key == nil {
		b.err = fmt.Errorf("entity %s has no primary key", principal.Name())
		return
	}
	_, b.err = dependent.AddForeignKey(properties, key, principal, true)
}

func (b *builder) alternateKey(e *metadata.Entity, names ...string) {
	properties := b.properties(e, names...)
	if b.err != nil {
		return
	}
	_, b.err = e.AddKey(properties)
}

func (b *builder) index(e *metadata.Entity, unique bool, names ...string) {
	properties := b.properties(e, names...)
	if b.err != nil {
		return
	}
	_, b.err = e.AddIndex(properties, unique)
}

// renamedColumn records the name a property had in the previous version
func (b *builder) renamedColumn(e *metadata.Entity, name, previous string) {
	properties := b.properties(e, name)
	if b.err != nil {
		return
	}
	relational.Property(properties[0]).SetOldColumnName(relational.Model(b.m).DefaultName(previous))
}

// renamedTable records the entity name the hierarchy was mapped by in the previous version
func (b *builder) renamedTable(e *metadata.Entity, previous string) {
	if b.err != nil {
		return
	}
	relational.Entity(e).SetOldTableName(relational.Model(b.m).DefaultName(previous))
}
