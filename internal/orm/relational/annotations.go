// Package relational reads and writes the relational annotations of a metadata model
//
// Values live in the annotation bags under well-known "Relational:" names.
// Unset values fall back to names derived from the model.
package relational

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	utilstrings "github.com/conduit-lang/entitymodel/internal/util/strings"
)

// Annotation names
const (
	TableNameAnnotation         = "Relational:TableName"
	SchemaAnnotation            = "Relational:Schema"
	ColumnNameAnnotation        = "Relational:ColumnName"
	ColumnTypeAnnotation        = "Relational:ColumnType"
	DefaultValueSQLAnnotation   = "Relational:DefaultValueSql"
	ComputedColumnSQLAnnotation = "Relational:ComputedColumnSql"
	DefaultValueAnnotation      = "Relational:DefaultValue"
	NameAnnotation              = "Relational:Name"
	DatabaseNameAnnotation      = "Relational:DatabaseName"
	DefaultSchemaAnnotation     = "Relational:DefaultSchema"
	NamingStrategyAnnotation    = "Relational:NamingStrategy"
	OldTableNameAnnotation      = "Relational:OldTableName"
	OldColumnNameAnnotation     = "Relational:OldColumnName"
)

// NamingStrategy controls the default table and column names
type NamingStrategy string

const (
	// NamingEntity uses entity and property names as they are
	NamingEntity NamingStrategy = "entity"
	// NamingSnake converts entity and property names to snake_case
	NamingSnake NamingStrategy = "snake"
)

// ParseNamingStrategy validates a configured strategy name
func ParseNamingStrategy(s string) (NamingStrategy, error) {
	switch NamingStrategy(strings.ToLower(s)) {
	case "", NamingEntity:
		return NamingEntity, nil
	case NamingSnake:
		return NamingSnake, nil
	}
	return "", fmt.Errorf("unknown naming strategy %q (expected %q or %q)", s, NamingEntity, NamingSnake)
}

func stringAnnotation(a *metadata.Annotable, name string) string {
	v, _ := metadata.AnnotationValue[string](a, name)
	return v
}

func setStringAnnotation(a *metadata.Annotable, name, value string) {
	if value == "" {
		a.RemoveAnnotation(name)
		return
	}
	a.SetAnnotation(name, value)
}

// ModelAnnotations exposes the relational view of a model
type ModelAnnotations struct {
	m *metadata.Model
}

// Model returns the relational view of m
func Model(m *metadata.Model) ModelAnnotations { return ModelAnnotations{m: m} }

// DatabaseName returns the configured database name
func (a ModelAnnotations) DatabaseName() string {
	return stringAnnotation(&a.m.Annotable, DatabaseNameAnnotation)
}

// SetDatabaseName sets the database name, clearing it when empty
func (a ModelAnnotations) SetDatabaseName(name string) {
	setStringAnnotation(&a.m.Annotable, DatabaseNameAnnotation, name)
}

// DefaultSchema returns the schema used by tables without an explicit one
func (a ModelAnnotations) DefaultSchema() string {
	return stringAnnotation(&a.m.Annotable, DefaultSchemaAnnotation)
}

// SetDefaultSchema sets the default schema, clearing it when empty
func (a ModelAnnotations) SetDefaultSchema(schema string) {
	setStringAnnotation(&a.m.Annotable, DefaultSchemaAnnotation, schema)
}

// NamingStrategy returns the default naming strategy
func (a ModelAnnotations) NamingStrategy() NamingStrategy {
	if s, ok := metadata.AnnotationValue[NamingStrategy](&a.m.Annotable, NamingStrategyAnnotation); ok {
		return s
	}
	return NamingEntity
}

// SetNamingStrategy sets the default naming strategy
func (a ModelAnnotations) SetNamingStrategy(s NamingStrategy) {
	a.m.SetAnnotation(NamingStrategyAnnotation, s)
}

// DefaultName applies the naming strategy to an entity or property name
func (a ModelAnnotations) DefaultName(name string) string {
	if a.NamingStrategy() == NamingSnake {
		return utilstrings.ToSnakeCase(name)
	}
	return name
}

// EntityAnnotations exposes the relational view of an entity.
// Table values are stored on the hierarchy root.
type EntityAnnotations struct {
	e *metadata.Entity
}

// Entity returns the relational view of e
func Entity(e *metadata.Entity) EntityAnnotations { return EntityAnnotations{e: e} }

// TableName returns the table the entity hierarchy maps to
func (a EntityAnnotations) TableName() string {
	root := a.e.Root()
	if name := stringAnnotation(&root.Annotable, TableNameAnnotation); name != "" {
		return name
	}
	return Model(root.Model()).DefaultName(root.Name())
}

// SetTableName sets the table name, restoring the default when empty
func (a EntityAnnotations) SetTableName(name string) {
	setStringAnnotation(&a.e.Root().Annotable, TableNameAnnotation, name)
}

// Schema returns the table schema, defaulting to the model default schema
func (a EntityAnnotations) Schema() string {
	root := a.e.Root()
	if schema := stringAnnotation(&root.Annotable, SchemaAnnotation); schema != "" {
		return schema
	}
	return Model(root.Model()).DefaultSchema()
}

// SetSchema sets the table schema, restoring the default when empty
func (a EntityAnnotations) SetSchema(schema string) {
	setStringAnnotation(&a.e.Root().Annotable, SchemaAnnotation, schema)
}

// OldTableName returns the table name the hierarchy was previously mapped to
func (a EntityAnnotations) OldTableName() string {
	return stringAnnotation(&a.e.Root().Annotable, OldTableNameAnnotation)
}

// SetOldTableName records a table rename for migrations
func (a EntityAnnotations) SetOldTableName(name string) {
	setStringAnnotation(&a.e.Root().Annotable, OldTableNameAnnotation, name)
}

// QualifiedTableName returns schema.table, or table without a schema
func (a EntityAnnotations) QualifiedTableName() string {
	if schema := a.Schema(); schema != "" {
		return schema + "." + a.TableName()
	}
	return a.TableName()
}

// PropertyAnnotations exposes the relational view of a property
type PropertyAnnotations struct {
	p *metadata.Property
}

// Property returns the relational view of p
func Property(p *metadata.Property) PropertyAnnotations { return PropertyAnnotations{p: p} }

// ColumnName returns the column the property maps to
func (a PropertyAnnotations) ColumnName() string {
	if name := stringAnnotation(&a.p.Annotable, ColumnNameAnnotation); name != "" {
		return name
	}
	return Model(a.p.DeclaringEntity().Model()).DefaultName(a.p.Name())
}

// SetColumnName sets the column name, restoring the default when empty
func (a PropertyAnnotations) SetColumnName(name string) {
	setStringAnnotation(&a.p.Annotable, ColumnNameAnnotation, name)
}

// OldColumnName returns the column name the property was previously mapped to
func (a PropertyAnnotations) OldColumnName() string {
	return stringAnnotation(&a.p.Annotable, OldColumnNameAnnotation)
}

// SetOldColumnName records a column rename for migrations
func (a PropertyAnnotations) SetOldColumnName(name string) {
	setStringAnnotation(&a.p.Annotable, OldColumnNameAnnotation, name)
}

// ColumnType returns the store type, empty when left to the provider
func (a PropertyAnnotations) ColumnType() string {
	return stringAnnotation(&a.p.Annotable, ColumnTypeAnnotation)
}

// SetColumnType sets the store type
func (a PropertyAnnotations) SetColumnType(columnType string) {
	setStringAnnotation(&a.p.Annotable, ColumnTypeAnnotation, columnType)
}

// DefaultValueSQL returns the SQL expression used as column default
func (a PropertyAnnotations) DefaultValueSQL() string {
	return stringAnnotation(&a.p.Annotable, DefaultValueSQLAnnotation)
}

// SetDefaultValueSQL sets the default SQL expression.
// It fails while a default value or computed column SQL is set.
func (a PropertyAnnotations) SetDefaultValueSQL(sql string) error {
	if sql != "" {
		if a.DefaultValue() != nil {
			return metadata.NewConflictingColumnServerGeneration("DefaultValueSql", a.p.Name(), "DefaultValue")
		}
		if a.ComputedColumnSQL() != "" {
			return metadata.NewConflictingColumnServerGeneration("DefaultValueSql", a.p.Name(), "ComputedColumnSql")
		}
	}
	setStringAnnotation(&a.p.Annotable, DefaultValueSQLAnnotation, sql)
	return nil
}

// ComputedColumnSQL returns the SQL expression computing the column
func (a PropertyAnnotations) ComputedColumnSQL() string {
	return stringAnnotation(&a.p.Annotable, ComputedColumnSQLAnnotation)
}

// SetComputedColumnSQL sets the computed column SQL.
// It fails while a default value or default SQL is set.
func (a PropertyAnnotations) SetComputedColumnSQL(sql string) error {
	if sql != "" {
		if a.DefaultValue() != nil {
			return metadata.NewConflictingColumnServerGeneration("ComputedColumnSql", a.p.Name(), "DefaultValue")
		}
		if a.DefaultValueSQL() != "" {
			return metadata.NewConflictingColumnServerGeneration("ComputedColumnSql", a.p.Name(), "DefaultValueSql")
		}
	}
	setStringAnnotation(&a.p.Annotable, ComputedColumnSQLAnnotation, sql)
	return nil
}

// DefaultValue returns the constant column default
func (a PropertyAnnotations) DefaultValue() any {
	v, _ := a.p.FindAnnotation(DefaultValueAnnotation)
	return v
}

// SetDefaultValue sets the constant column default, nil clears it.
// It fails while default SQL or computed column SQL is set.
func (a PropertyAnnotations) SetDefaultValue(value any) error {
	if value == nil {
		a.p.RemoveAnnotation(DefaultValueAnnotation)
		return nil
	}
	if a.DefaultValueSQL() != "" {
		return metadata.NewConflictingColumnServerGeneration("DefaultValue", a.p.Name(), "DefaultValueSql")
	}
	if a.ComputedColumnSQL() != "" {
		return metadata.NewConflictingColumnServerGeneration("DefaultValue", a.p.Name(), "ComputedColumnSql")
	}
	a.p.SetAnnotation(DefaultValueAnnotation, value)
	return nil
}

func columnNames(properties []*metadata.Property) string {
	names := make([]string, len(properties))
	for i, p := range properties {
		names[i] = Property(p).ColumnName()
	}
	return strings.Join(names, "_")
}

// KeyAnnotations exposes the relational view of a key
type KeyAnnotations struct {
	k *metadata.Key
}

// Key returns the relational view of k
func Key(k *metadata.Key) KeyAnnotations { return KeyAnnotations{k: k} }

// Name returns the constraint name, PK_<table> or AK_<table>_<columns> by default
func (a KeyAnnotations) Name() string {
	if name := stringAnnotation(&a.k.Annotable, NameAnnotation); name != "" {
		return name
	}
	table := Entity(a.k.DeclaringEntity()).TableName()
	if a.k.IsPrimaryKey() {
		return utilstrings.JoinIdentifiers("PK", table)
	}
	return utilstrings.JoinIdentifiers("AK", table, columnNames(a.k.Properties()))
}

// SetName sets the constraint name, restoring the default when empty
func (a KeyAnnotations) SetName(name string) {
	setStringAnnotation(&a.k.Annotable, NameAnnotation, name)
}

// ForeignKeyAnnotations exposes the relational view of a foreign key
type ForeignKeyAnnotations struct {
	fk *metadata.ForeignKey
}

// ForeignKey returns the relational view of fk
func ForeignKey(fk *metadata.ForeignKey) ForeignKeyAnnotations { return ForeignKeyAnnotations{fk: fk} }

// Name returns the constraint name, FK_<dependent>_<principal>_<columns> by default
func (a ForeignKeyAnnotations) Name() string {
	if name := stringAnnotation(&a.fk.Annotable, NameAnnotation); name != "" {
		return name
	}
	return utilstrings.JoinIdentifiers("FK",
		Entity(a.fk.DeclaringEntity()).TableName(),
		Entity(a.fk.PrincipalEntity()).TableName(),
		columnNames(a.fk.Properties()),
	)
}

// SetName sets the constraint name, restoring the default when empty
func (a ForeignKeyAnnotations) SetName(name string) {
	setStringAnnotation(&a.fk.Annotable, NameAnnotation, name)
}

// IndexAnnotations exposes the relational view of an index
type IndexAnnotations struct {
	ix *metadata.Index
}

// Index returns the relational view of ix
func Index(ix *metadata.Index) IndexAnnotations { return IndexAnnotations{ix: ix} }

// Name returns the index name, IX_<table>_<columns> by default
func (a IndexAnnotations) Name() string {
	if name := stringAnnotation(&a.ix.Annotable, NameAnnotation); name != "" {
		return name
	}
	return utilstrings.JoinIdentifiers("IX",
		Entity(a.ix.DeclaringEntity()).TableName(),
		columnNames(a.ix.Properties()),
	)
}

// SetName sets the index name, restoring the default when empty
func (a IndexAnnotations) SetName(name string) {
	setStringAnnotation(&a.ix.Annotable, NameAnnotation, name)
}
