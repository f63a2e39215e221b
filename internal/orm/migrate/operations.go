// Package migrate computes the operations turning one metadata model into another
package migrate

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
)

// OperationKind identifies the type of a migration operation
type OperationKind string

const (
	KindCreateTable          OperationKind = "create_table"
	KindDropTable            OperationKind = "drop_table"
	KindRenameTable          OperationKind = "rename_table"
	KindAddColumn            OperationKind = "add_column"
	KindDropColumn           OperationKind = "drop_column"
	KindAlterColumn          OperationKind = "alter_column"
	KindRenameColumn         OperationKind = "rename_column"
	KindAddPrimaryKey        OperationKind = "add_primary_key"
	KindDropPrimaryKey       OperationKind = "drop_primary_key"
	KindAddUniqueConstraint  OperationKind = "add_unique_constraint"
	KindDropUniqueConstraint OperationKind = "drop_unique_constraint"
	KindAddForeignKey        OperationKind = "add_foreign_key"
	KindDropForeignKey       OperationKind = "drop_foreign_key"
	KindCreateIndex          OperationKind = "create_index"
	KindDropIndex            OperationKind = "drop_index"
)

// Operation is a single schema change
type Operation interface {
	Kind() OperationKind
	// QualifiedTable returns the table the operation applies to
	QualifiedTable() string
	// IsDestructive reports whether applying the operation may lose data
	IsDestructive() bool
	// IsBreaking reports whether existing clients or rows may stop working
	IsBreaking() bool
	String() string
}

// TableOperation holds the table an operation targets
type TableOperation struct {
	metadata.Annotable `yaml:"-" json:"-"`

	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
	Table  string `yaml:"table" json:"table"`
}

// QualifiedTable implements Operation
func (o *TableOperation) QualifiedTable() string {
	return qualify(o.Schema, o.Table)
}

func qualify(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}

// Column describes a table column
type Column struct {
	Name         string `yaml:"name" json:"name"`
	StoreType    string `yaml:"type" json:"type"`
	Nullable     bool   `yaml:"nullable" json:"nullable"`
	DefaultSQL   string `yaml:"default_sql,omitempty" json:"default_sql,omitempty"`
	DefaultValue any    `yaml:"default,omitempty" json:"default,omitempty"`
	ComputedSQL  string `yaml:"computed_sql,omitempty" json:"computed_sql,omitempty"`

	previousName string
}

func (c *Column) hasDefault() bool {
	return c.DefaultSQL != "" || c.DefaultValue != nil || c.ComputedSQL != ""
}

// KeyConstraint is a primary key or unique constraint
type KeyConstraint struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns" json:"columns"`
}

// ForeignKeyConstraint references the key of a principal table
type ForeignKeyConstraint struct {
	Name             string   `yaml:"name" json:"name"`
	Columns          []string `yaml:"columns" json:"columns"`
	PrincipalSchema  string   `yaml:"principal_schema,omitempty" json:"principal_schema,omitempty"`
	PrincipalTable   string   `yaml:"principal_table" json:"principal_table"`
	PrincipalColumns []string `yaml:"principal_columns" json:"principal_columns"`
}

// IndexDefinition is a table index
type IndexDefinition struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns" json:"columns"`
	Unique  bool     `yaml:"unique" json:"unique"`
}

// CreateTableOperation creates a table with its keys and foreign keys
type CreateTableOperation struct {
	TableOperation `yaml:",inline"`

	Columns           []*Column               `yaml:"columns" json:"columns"`
	PrimaryKey        *KeyConstraint          `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	UniqueConstraints []*KeyConstraint        `yaml:"unique_constraints,omitempty" json:"unique_constraints,omitempty"`
	ForeignKeys       []*ForeignKeyConstraint `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
}

func (*CreateTableOperation) Kind() OperationKind { return KindCreateTable }
func (*CreateTableOperation) IsDestructive() bool { return false }
func (*CreateTableOperation) IsBreaking() bool { return false }

func (o *CreateTableOperation) String() string {
	return fmt.Sprintf("CreateTable %s (%d columns)", o.QualifiedTable(), len(o.Columns))
}

// DropTableOperation drops a table
type DropTableOperation struct {
	TableOperation `yaml:",inline"`
}

func (*DropTableOperation) Kind() OperationKind { return KindDropTable }
func (*DropTableOperation) IsDestructive() bool { return true }
func (*DropTableOperation) IsBreaking() bool { return true }

func (o *DropTableOperation) String() string {
	return "DropTable " + o.QualifiedTable()
}

// RenameTableOperation renames Table to NewName
type RenameTableOperation struct {
	TableOperation `yaml:",inline"`

	NewName string `yaml:"new_name" json:"new_name"`
}

func (*RenameTableOperation) Kind() OperationKind { return KindRenameTable }
func (*RenameTableOperation) IsDestructive() bool { return false }
func (*RenameTableOperation) IsBreaking() bool { return true }

func (o *RenameTableOperation) String() string {
	return fmt.Sprintf("RenameTable %s -> %s", o.QualifiedTable(), o.NewName)
}

// AddColumnOperation adds a column to an existing table
type AddColumnOperation struct {
	TableOperation `yaml:",inline"`

	Column *Column `yaml:"column" json:"column"`
}

func (*AddColumnOperation) Kind() OperationKind { return KindAddColumn }
func (*AddColumnOperation) IsDestructive() bool { return false }

// IsBreaking reports a required column without default, existing rows have no value for it
func (o *AddColumnOperation) IsBreaking() bool {
	return !o.Column.Nullable && !o.Column.hasDefault()
}

func (o *AddColumnOperation) String() string {
	return fmt.Sprintf("AddColumn %s.%s %s", o.QualifiedTable(), o.Column.Name, o.Column.StoreType)
}

// DropColumnOperation drops a column
type DropColumnOperation struct {
	TableOperation `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

func (*DropColumnOperation) Kind() OperationKind { return KindDropColumn }
func (*DropColumnOperation) IsDestructive() bool { return true }
func (*DropColumnOperation) IsBreaking() bool { return true }

func (o *DropColumnOperation) String() string {
	return fmt.Sprintf("DropColumn %s.%s", o.QualifiedTable(), o.Name)
}

// AlterColumnOperation changes the definition of a column
type AlterColumnOperation struct {
	TableOperation `yaml:",inline"`

	Column    *Column `yaml:"column" json:"column"`
	OldColumn *Column `yaml:"old_column" json:"old_column"`
}

func (*AlterColumnOperation) Kind() OperationKind { return KindAlterColumn }

// IsDestructive reports a store type change or a nullable column becoming required
func (o *AlterColumnOperation) IsDestructive() bool {
	return !strings.EqualFold(o.Column.StoreType, o.OldColumn.StoreType) ||
		(o.OldColumn.Nullable && !o.Column.Nullable)
}

// IsBreaking reports changes existing rows may violate
func (o *AlterColumnOperation) IsBreaking() bool {
	return o.IsDestructive()
}

func (o *AlterColumnOperation) String() string {
	return fmt.Sprintf("AlterColumn %s.%s %s -> %s", o.QualifiedTable(), o.Column.Name,
		describeColumn(o.OldColumn), describeColumn(o.Column))
}

func describeColumn(c *Column) string {
	if c.Nullable {
		return c.StoreType + " NULL"
	}
	return c.StoreType + " NOT NULL"
}

// RenameColumnOperation renames a column
type RenameColumnOperation struct {
	TableOperation `yaml:",inline"`

	Name    string `yaml:"name" json:"name"`
	NewName string `yaml:"new_name" json:"new_name"`
}

func (*RenameColumnOperation) Kind() OperationKind { return KindRenameColumn }
func (*RenameColumnOperation) IsDestructive() bool { return false }
func (*RenameColumnOperation) IsBreaking() bool { return true }

func (o *RenameColumnOperation) String() string {
	return fmt.Sprintf("RenameColumn %s.%s -> %s", o.QualifiedTable(), o.Name, o.NewName)
}

// AddPrimaryKeyOperation adds a primary key to an existing table
type AddPrimaryKeyOperation struct {
	TableOperation `yaml:",inline"`

	Key *KeyConstraint `yaml:"key" json:"key"`
}

func (*AddPrimaryKeyOperation) Kind() OperationKind { return KindAddPrimaryKey }
func (*AddPrimaryKeyOperation) IsDestructive() bool { return false }
func (*AddPrimaryKeyOperation) IsBreaking() bool { return true }

func (o *AddPrimaryKeyOperation) String() string {
	return fmt.Sprintf("AddPrimaryKey %s %s (%s)", o.QualifiedTable(), o.Key.Name, strings.Join(o.Key.Columns, ", "))
}

// DropPrimaryKeyOperation drops the primary key of a table
type DropPrimaryKeyOperation struct {
	TableOperation `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

func (*DropPrimaryKeyOperation) Kind() OperationKind { return KindDropPrimaryKey }
func (*DropPrimaryKeyOperation) IsDestructive() bool { return false }
func (*DropPrimaryKeyOperation) IsBreaking() bool { return true }

func (o *DropPrimaryKeyOperation) String() string {
	return fmt.Sprintf("DropPrimaryKey %s %s", o.QualifiedTable(), o.Name)
}

// AddUniqueConstraintOperation adds an alternate key
type AddUniqueConstraintOperation struct {
	TableOperation `yaml:",inline"`

	Key *KeyConstraint `yaml:"key" json:"key"`
}

func (*AddUniqueConstraintOperation) Kind() OperationKind { return KindAddUniqueConstraint }
func (*AddUniqueConstraintOperation) IsDestructive() bool { return false }
func (*AddUniqueConstraintOperation) IsBreaking() bool { return true }

func (o *AddUniqueConstraintOperation) String() string {
	return fmt.Sprintf("AddUniqueConstraint %s %s (%s)", o.QualifiedTable(), o.Key.Name, strings.Join(o.Key.Columns, ", "))
}

// DropUniqueConstraintOperation drops an alternate key
type DropUniqueConstraintOperation struct {
	TableOperation `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

func (*DropUniqueConstraintOperation) Kind() OperationKind { return KindDropUniqueConstraint }
func (*DropUniqueConstraintOperation) IsDestructive() bool { return false }
func (*DropUniqueConstraintOperation) IsBreaking() bool { return false }

func (o *DropUniqueConstraintOperation) String() string {
	return fmt.Sprintf("DropUniqueConstraint %s %s", o.QualifiedTable(), o.Name)
}

// AddForeignKeyOperation adds a foreign key to an existing table
type AddForeignKeyOperation struct {
	TableOperation `yaml:",inline"`

	ForeignKey *ForeignKeyConstraint `yaml:"foreign_key" json:"foreign_key"`
}

func (*AddForeignKeyOperation) Kind() OperationKind { return KindAddForeignKey }
func (*AddForeignKeyOperation) IsDestructive() bool { return false }
func (*AddForeignKeyOperation) IsBreaking() bool { return false }

func (o *AddForeignKeyOperation) String() string {
	return fmt.Sprintf("AddForeignKey %s %s -> %s", o.QualifiedTable(), o.ForeignKey.Name,
		qualify(o.ForeignKey.PrincipalSchema, o.ForeignKey.PrincipalTable))
}

// DropForeignKeyOperation drops a foreign key
type DropForeignKeyOperation struct {
	TableOperation `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

func (*DropForeignKeyOperation) Kind() OperationKind { return KindDropForeignKey }
func (*DropForeignKeyOperation) IsDestructive() bool { return false }
func (*DropForeignKeyOperation) IsBreaking() bool { return false }

func (o *DropForeignKeyOperation) String() string {
	return fmt.Sprintf("DropForeignKey %s %s", o.QualifiedTable(), o.Name)
}

// CreateIndexOperation creates an index
type CreateIndexOperation struct {
	TableOperation `yaml:",inline"`

	Index *IndexDefinition `yaml:"index" json:"index"`
}

func (*CreateIndexOperation) Kind() OperationKind { return KindCreateIndex }
func (*CreateIndexOperation) IsDestructive() bool { return false }

// IsBreaking reports a unique index, existing rows may hold duplicates
func (o *CreateIndexOperation) IsBreaking() bool { return o.Index.Unique }

func (o *CreateIndexOperation) String() string {
	return fmt.Sprintf("CreateIndex %s %s (%s)", o.QualifiedTable(), o.Index.Name, strings.Join(o.Index.Columns, ", "))
}

// DropIndexOperation drops an index
type DropIndexOperation struct {
	TableOperation `yaml:",inline"`

	Name string `yaml:"name" json:"name"`
}

func (*DropIndexOperation) Kind() OperationKind { return KindDropIndex }
func (*DropIndexOperation) IsDestructive() bool { return false }
func (*DropIndexOperation) IsBreaking() bool { return false }

func (o *DropIndexOperation) String() string {
	return fmt.Sprintf("DropIndex %s %s", o.QualifiedTable(), o.Name)
}

// Document is the serializable form of an operation
type Document struct {
	Kind        OperationKind `yaml:"kind" json:"kind"`
	Destructive bool          `yaml:"destructive" json:"destructive"`
	Breaking    bool          `yaml:"breaking" json:"breaking"`
	Details     Operation     `yaml:"details" json:"details"`
}

// Documents wraps operations for YAML or JSON rendering
func Documents(ops []Operation) []Document {
	docs := make([]Document, len(ops))
	for i, op := range ops {
		docs[i] = Document{
			Kind:        op.Kind(),
			Destructive: op.IsDestructive(),
			Breaking:    op.IsBreaking(),
			Details:     op,
		}
	}
	return docs
}

// HasDestructive reports whether any operation may lose data
func HasDestructive(ops []Operation) bool {
	for _, op := range ops {
		if op.IsDestructive() {
			return true
		}
	}
	return false
}
