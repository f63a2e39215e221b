package migrate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

// Table is the relational shape of an entity hierarchy.
// Every entity of a hierarchy maps to the table of its root.
type Table struct {
	Schema            string
	Name              string
	Entity            string
	Columns           []*Column
	PrimaryKey        *KeyConstraint
	UniqueConstraints []*KeyConstraint
	ForeignKeys       []*ForeignKeyConstraint
	Indexes           []*IndexDefinition

	previousName string
}

// QualifiedName returns schema.name, or name without a schema
func (t *Table) QualifiedName() string {
	return qualify(t.Schema, t.Name)
}

// Column returns the column named name
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Tables maps the root entities of m to tables ordered by qualified name
func Tables(m *metadata.Model) ([]*Table, error) {
	if m == nil {
		return nil, nil
	}

	var tables []*Table
	owners := make(map[string]string)
	for _, e := range m.GetEntities() {
		if e.BaseType() != nil {
			continue
		}
		t, err := buildTable(e)
		if err != nil {
			return nil, err
		}
		if owner, ok := owners[t.QualifiedName()]; ok {
			return nil, fmt.Errorf("table %s is mapped by both %s and %s", t.QualifiedName(), owner, e.Name())
		}
		owners[t.QualifiedName()] = e.Name()
		tables = append(tables, t)
	}

	slices.SortFunc(tables, func(a, b *Table) int {
		return strings.Compare(a.QualifiedName(), b.QualifiedName())
	})
	return tables, nil
}

func buildTable(root *metadata.Entity) (*Table, error) {
	view := relational.Entity(root)
	t := &Table{
		Schema:       view.Schema(),
		Name:         view.TableName(),
		Entity:       root.Name(),
		previousName: view.OldTableName(),
	}

	hierarchy := append([]*metadata.Entity{root}, root.GetDerivedEntities()...)
	for _, e := range hierarchy {
		for _, p := range e.GetDeclaredProperties() {
			c, err := buildColumn(p)
			if err != nil {
				return nil, err
			}
			if t.Column(c.Name) != nil {
				continue
			}
			// columns of derived entities hold no value for rows of other types
			if e != root {
				c.Nullable = true
			}
			t.Columns = append(t.Columns, c)
		}
	}

	for _, k := range root.GetDeclaredKeys() {
		constraint := &KeyConstraint{
			Name:    relational.Key(k).Name(),
			Columns: columnNames(k.Properties()),
		}
		if k.IsPrimaryKey() {
			t.PrimaryKey = constraint
			continue
		}
		t.UniqueConstraints = append(t.UniqueConstraints, constraint)
	}

	for _, e := range hierarchy {
		for _, fk := range e.GetDeclaredForeignKeys() {
			principal := relational.Entity(fk.PrincipalEntity())
			t.ForeignKeys = append(t.ForeignKeys, &ForeignKeyConstraint{
				Name:             relational.ForeignKey(fk).Name(),
				Columns:          columnNames(fk.Properties()),
				PrincipalSchema:  principal.Schema(),
				PrincipalTable:   principal.TableName(),
				PrincipalColumns: columnNames(fk.PrincipalKey().Properties()),
			})
		}
		for _, ix := range e.GetDeclaredIndexes() {
			t.Indexes = append(t.Indexes, &IndexDefinition{
				Name:    relational.Index(ix).Name(),
				Columns: columnNames(ix.Properties()),
				Unique:  ix.IsUnique(),
			})
		}
	}

	sortByName(t.UniqueConstraints, func(k *KeyConstraint) string { return k.Name })
	sortByName(t.ForeignKeys, func(fk *ForeignKeyConstraint) string { return fk.Name })
	sortByName(t.Indexes, func(ix *IndexDefinition) string { return ix.Name })
	return t, nil
}

func buildColumn(p *metadata.Property) (*Column, error) {
	view := relational.Property(p)
	storeType := view.ColumnType()
	if storeType == "" {
		var err error
		if storeType, err = StoreType(p.Type()); err != nil {
			return nil, fmt.Errorf("property %s.%s: %w", p.DeclaringEntity().Name(), p.Name(), err)
		}
	}
	return &Column{
		Name:         view.ColumnName(),
		StoreType:    storeType,
		Nullable:     p.IsNullable(),
		DefaultSQL:   view.DefaultValueSQL(),
		DefaultValue: view.DefaultValue(),
		ComputedSQL:  view.ComputedColumnSQL(),
		previousName: view.OldColumnName(),
	}, nil
}

func columnNames(properties []*metadata.Property) []string {
	names := make([]string, len(properties))
	for i, p := range properties {
		names[i] = relational.Property(p).ColumnName()
	}
	return names
}

func sortByName[T any](items []T, name func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return strings.Compare(name(a), name(b))
	})
}
