package metadata

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymodel/internal/orm/source"
)

// Model is the registry of entities
type Model struct {
	Annotable

	entities   map[string]*Entity
	byType     map[reflect.Type]*Entity
	dispatcher *ConventionDispatcher
	catalog    *source.Catalog
	logger     *zap.Logger
}

// Option configures a Model
type Option func(*modelOptions)

type modelOptions struct {
	conventions *ConventionSet
	catalog     *source.Catalog
	logger      *zap.Logger
}

// WithConventions sets the conventions run as the model grows
func WithConventions(set *ConventionSet) Option {
	return func(o *modelOptions) { o.conventions = set }
}

// WithCatalog shares a type catalog between models
func WithCatalog(c *source.Catalog) Option {
	return func(o *modelOptions) { o.catalog = c }
}

// WithLogger sets the logger used for convention diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(o *modelOptions) { o.logger = l }
}

// NewModel creates an empty model. Without WithConventions no conventions run.
func NewModel(opts ...Option) *Model {
	o := modelOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = source.NewCatalog()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &Model{
		entities:   make(map[string]*Entity),
		byType:     make(map[reflect.Type]*Entity),
		dispatcher: NewConventionDispatcher(o.conventions, o.logger),
		catalog:    o.catalog,
		logger:     o.logger,
	}
}

// Dispatcher returns the convention dispatcher
func (m *Model) Dispatcher() *ConventionDispatcher { return m.dispatcher }

// Catalog returns the type catalog
func (m *Model) Catalog() *source.Catalog { return m.catalog }

// Logger returns the model logger
func (m *Model) Logger() *zap.Logger { return m.logger }

// GetEntities returns every entity ordered by name
func (m *Model) GetEntities() []*Entity {
	names := make([]string, 0, len(m.entities))
	for name := range m.entities {
		names = append(names, name)
	}
	slices.Sort(names)

	result := make([]*Entity, len(names))
	for i, name := range names {
		result[i] = m.entities[name]
	}
	return result
}

// FindEntity returns the entity registered under name
func (m *Model) FindEntity(name string) *Entity {
	if name == "" {
		return nil
	}
	return m.entities[name]
}

// FindEntityByType returns the entity backed by t. When no entity is backed
// by t, a shadow entity registered under the type name is returned.
func (m *Model) FindEntityByType(t reflect.Type) *Entity {
	t = source.Deref(t)
	if t == nil {
		return nil
	}
	if e, ok := m.byType[t]; ok {
		return e
	}
	if e := m.FindEntity(t.Name()); e != nil && e.IsShadow() {
		return e
	}
	return nil
}

// FindEntityOf returns the entity backed by T
func FindEntityOf[T any](m *Model) *Entity {
	return m.FindEntityByType(reflect.TypeFor[T]())
}

// GetOrAddEntity returns the entity for t, adding it and running the
// entity-added conventions when it is not registered yet.
func (m *Model) GetOrAddEntity(t reflect.Type) (*Entity, error) {
	if t == nil {
		return nil, NewArgumentNull("type")
	}
	if e := m.FindEntityByType(t); e != nil {
		return e, nil
	}
	return m.AddEntity(t, true)
}

// GetOrAddEntityOf is GetOrAddEntity for T
func GetOrAddEntityOf[T any](m *Model) (*Entity, error) {
	return m.GetOrAddEntity(reflect.TypeFor[T]())
}

// AddEntity registers a new entity backed by t. With runConventions false the
// entity is left for the caller to finish.
func (m *Model) AddEntity(t reflect.Type, runConventions bool) (*Entity, error) {
	if t == nil {
		return nil, NewArgumentNull("type")
	}

	info, err := m.catalog.Describe(t)
	if err != nil {
		return nil, NewInvalidEntityType(fmt.Sprint(t), err)
	}
	if _, exists := m.entities[info.Name]; exists {
		return nil, NewDuplicateEntity(info.Name)
	}

	e := newEntity(m, info.Name, info)
	m.byType[info.Type] = e
	return m.register(e, runConventions)
}

// AddShadowEntity registers a new entity with no backing type
func (m *Model) AddShadowEntity(name string, runConventions bool) (*Entity, error) {
	if name == "" {
		return nil, NewArgumentEmpty("name")
	}
	if _, exists := m.entities[name]; exists {
		return nil, NewDuplicateEntity(name)
	}
	return m.register(newEntity(m, name, nil), runConventions)
}

func (m *Model) register(e *Entity, runConventions bool) (*Entity, error) {
	m.entities[e.name] = e
	if !runConventions {
		return e, nil
	}
	if _, err := m.dispatcher.OnEntityAdded(e); err != nil {
		return e, err
	}
	return e, nil
}

// AddLinkedEntity synthesizes the association entity between first and second.
// Their primary key properties are cloned into it, a property named Id becomes
// Id<Owner>, and the clones form its composite primary key. The first foreign
// key targets first, the second targets second.
func (m *Model) AddLinkedEntity(name string, first, second *Entity) (*Entity, error) {
	if name == "" {
		return nil, NewArgumentEmpty("name")
	}
	if first == nil {
		return nil, NewArgumentNull("first")
	}
	if second == nil {
		return nil, NewArgumentNull("second")
	}
	if _, exists := m.entities[name]; exists {
		return nil, NewDuplicateEntity(name)
	}

	firstKey := first.FindPrimaryKey()
	if firstKey == nil {
		return nil, NewMissingPrimaryKey(first.Name(), name)
	}
	secondKey := second.FindPrimaryKey()
	if secondKey == nil {
		return nil, NewMissingPrimaryKey(second.Name(), name)
	}

	linked := newEntity(m, name, nil)

	taken := make(map[string]bool)
	cloneKey := func(owner *Entity, key *Key) []*Property {
		clones := make([]*Property, len(key.properties))
		for i, p := range key.properties {
			propName := p.name
			if strings.EqualFold(propName, "Id") {
				propName = "Id" + owner.Name()
			}
			candidate := propName
			for n := 2; taken[strings.ToLower(candidate)]; n++ {
				candidate = fmt.Sprintf("%s%d", propName, n)
			}
			taken[strings.ToLower(candidate)] = true
			clones[i] = p.clone(linked, candidate)
		}
		return clones
	}
	firstProps := cloneKey(first, firstKey)
	secondProps := cloneKey(second, secondKey)

	m.entities[name] = linked
	for _, p := range append(slices.Clone(firstProps), secondProps...) {
		linked.insertProperty(p)
	}

	if _, err := linked.SetPrimaryKey(append(slices.Clone(firstProps), secondProps...)); err != nil {
		return nil, m.unregister(linked, err)
	}

	fkFirst, err := linked.AddForeignKey(firstProps, firstKey, first, true)
	if err != nil {
		return nil, m.unregister(linked, err)
	}
	fkSecond, err := linked.AddForeignKey(secondProps, secondKey, second, true)
	if err != nil {
		return nil, m.unregister(linked, err)
	}
	linked.linkFirst = fkFirst
	linked.linkSecond = fkSecond

	if _, err := m.dispatcher.OnLinkedEntityAdded(linked); err != nil {
		return linked, err
	}
	return linked, nil
}

// unregister rolls back a partially built linked entity
func (m *Model) unregister(e *Entity, cause error) error {
	for _, fk := range slices.Clone(e.foreignKeys) {
		e.removeForeignKey(fk)
	}
	delete(m.entities, e.name)
	return cause
}

// String implements fmt.Stringer
func (m *Model) String() string {
	return m.DebugString("")
}
