package migrate

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
)

// Differ computes the operations that turn the tables of one model into
// the tables of another
type Differ struct {
	oldModel *metadata.Model
	newModel *metadata.Model
	logger   *zap.Logger
}

// NewDiffer creates a differ from oldModel to newModel. Either model may be
// nil, which stands for an empty database.
func NewDiffer(oldModel, newModel *metadata.Model) *Differ {
	logger := zap.NewNop()
	if newModel != nil {
		logger = newModel.Logger()
	}
	return &Differ{oldModel: oldModel, newModel: newModel, logger: logger}
}

type tablePair struct {
	old, new *Table
}

// ComputeDiff returns the operations in an order that can be applied one
// after the other: constraints are dropped before the tables and columns
// they use, principal tables are created before their dependents and
// foreign keys are added last.
func (d *Differ) ComputeDiff() ([]Operation, error) {
	oldTables, err := Tables(d.oldModel)
	if err != nil {
		return nil, fmt.Errorf("old model: %w", err)
	}
	newTables, err := Tables(d.newModel)
	if err != nil {
		return nil, fmt.Errorf("new model: %w", err)
	}

	pairs, created, dropped := matchTables(oldTables, newTables)

	var ops []Operation
	for _, p := range pairs {
		ops = append(ops, d.dropForeignKeys(p)...)
	}
	for _, p := range pairs {
		ops = append(ops, d.dropKeysAndIndexes(p)...)
	}

	dropOrder, err := newDependencyGraph(dropped).TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("dropping tables: %w", err)
	}
	slices.Reverse(dropOrder)
	byName := tablesByName(dropped)
	for _, name := range dropOrder {
		t := byName[name]
		ops = append(ops, &DropTableOperation{TableOperation: tableOp(t)})
	}

	for _, p := range pairs {
		if p.old.Name != p.new.Name {
			ops = append(ops, &RenameTableOperation{TableOperation: tableOp(p.old), NewName: p.new.Name})
		}
	}
	for _, p := range pairs {
		ops = append(ops, d.renameColumns(p)...)
	}

	createOrder, err := newDependencyGraph(created).TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	byName = tablesByName(created)
	for _, name := range createOrder {
		t := byName[name]
		ops = append(ops, &CreateTableOperation{
			TableOperation:    tableOp(t),
			Columns:           t.Columns,
			PrimaryKey:        t.PrimaryKey,
			UniqueConstraints: t.UniqueConstraints,
			ForeignKeys:       t.ForeignKeys,
		})
	}

	for _, p := range pairs {
		ops = append(ops, d.diffColumns(p)...)
	}
	for _, p := range pairs {
		ops = append(ops, d.addKeysAndIndexes(p)...)
	}
	for _, name := range createOrder {
		t := byName[name]
		for _, ix := range t.Indexes {
			ops = append(ops, &CreateIndexOperation{TableOperation: tableOp(t), Index: ix})
		}
	}
	for _, p := range pairs {
		ops = append(ops, d.addForeignKeys(p)...)
	}

	d.logger.Debug("computed migration operations",
		zap.Int("operations", len(ops)),
		zap.Int("created_tables", len(created)),
		zap.Int("dropped_tables", len(dropped)),
		zap.Bool("destructive", HasDestructive(ops)),
	)
	return ops, nil
}

// matchTables pairs tables by qualified name, or by the previous name a new
// table declares
func matchTables(oldTables, newTables []*Table) (pairs []tablePair, created, dropped []*Table) {
	oldByName := tablesByName(oldTables)
	newByName := tablesByName(newTables)
	matched := make(map[string]bool)

	for _, t := range newTables {
		if old, ok := oldByName[t.QualifiedName()]; ok {
			pairs = append(pairs, tablePair{old: old, new: t})
			matched[old.QualifiedName()] = true
			continue
		}
		if t.previousName != "" {
			previous := qualify(t.Schema, t.previousName)
			if old, ok := oldByName[previous]; ok && !matched[previous] && newByName[previous] == nil {
				pairs = append(pairs, tablePair{old: old, new: t})
				matched[previous] = true
				continue
			}
		}
		created = append(created, t)
	}

	for _, t := range oldTables {
		if !matched[t.QualifiedName()] {
			dropped = append(dropped, t)
		}
	}
	return pairs, created, dropped
}

func tablesByName(tables []*Table) map[string]*Table {
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.QualifiedName()] = t
	}
	return byName
}

func tableOp(t *Table) TableOperation {
	return TableOperation{Schema: t.Schema, Table: t.Name}
}

// columnPairs matches the columns of a table pair, honoring renames
func columnPairs(p tablePair) (pairs [][2]*Column, added, removed []*Column) {
	matched := make(map[string]bool)
	for _, c := range p.new.Columns {
		if old := p.old.Column(c.Name); old != nil {
			pairs = append(pairs, [2]*Column{old, c})
			matched[old.Name] = true
			continue
		}
		if c.previousName != "" && p.new.Column(c.previousName) == nil {
			if old := p.old.Column(c.previousName); old != nil && !matched[old.Name] {
				pairs = append(pairs, [2]*Column{old, c})
				matched[old.Name] = true
				continue
			}
		}
		added = append(added, c)
	}
	for _, c := range p.old.Columns {
		if !matched[c.Name] {
			removed = append(removed, c)
		}
	}
	return pairs, added, removed
}

func (d *Differ) renameColumns(p tablePair) []Operation {
	var ops []Operation
	pairs, _, _ := columnPairs(p)
	for _, cp := range pairs {
		if cp[0].Name != cp[1].Name {
			ops = append(ops, &RenameColumnOperation{
				TableOperation: tableOp(p.new),
				Name:           cp[0].Name,
				NewName:        cp[1].Name,
			})
		}
	}
	return ops
}

func (d *Differ) diffColumns(p tablePair) []Operation {
	var ops []Operation
	pairs, added, removed := columnPairs(p)
	for _, c := range added {
		ops = append(ops, &AddColumnOperation{TableOperation: tableOp(p.new), Column: c})
	}
	for _, cp := range pairs {
		if !columnsEqual(cp[0], cp[1]) {
			ops = append(ops, &AlterColumnOperation{
				TableOperation: tableOp(p.new),
				Column:         cp[1],
				OldColumn:      cp[0],
			})
		}
	}
	for _, c := range removed {
		ops = append(ops, &DropColumnOperation{TableOperation: tableOp(p.new), Name: c.Name})
	}
	return ops
}

func columnsEqual(old, new *Column) bool {
	return strings.EqualFold(old.StoreType, new.StoreType) &&
		old.Nullable == new.Nullable &&
		old.DefaultSQL == new.DefaultSQL &&
		old.ComputedSQL == new.ComputedSQL &&
		reflect.DeepEqual(old.DefaultValue, new.DefaultValue)
}

func keysEqual(old, new *KeyConstraint) bool {
	return old.Name == new.Name && slices.Equal(old.Columns, new.Columns)
}

func foreignKeysEqual(old, new *ForeignKeyConstraint) bool {
	return old.Name == new.Name &&
		slices.Equal(old.Columns, new.Columns) &&
		old.PrincipalSchema == new.PrincipalSchema &&
		old.PrincipalTable == new.PrincipalTable &&
		slices.Equal(old.PrincipalColumns, new.PrincipalColumns)
}

func indexesEqual(old, new *IndexDefinition) bool {
	return old.Name == new.Name && old.Unique == new.Unique && slices.Equal(old.Columns, new.Columns)
}

// changed returns the items of from that have no equal item in to
func changed[T any](from, to []T, equal func(a, b T) bool) []T {
	var diff []T
	for _, x := range from {
		if !slices.ContainsFunc(to, func(y T) bool { return equal(x, y) }) {
			diff = append(diff, x)
		}
	}
	return diff
}

func (d *Differ) dropForeignKeys(p tablePair) []Operation {
	var ops []Operation
	for _, fk := range changed(p.old.ForeignKeys, p.new.ForeignKeys, foreignKeysEqual) {
		ops = append(ops, &DropForeignKeyOperation{TableOperation: tableOp(p.old), Name: fk.Name})
	}
	return ops
}

func (d *Differ) addForeignKeys(p tablePair) []Operation {
	var ops []Operation
	for _, fk := range changed(p.new.ForeignKeys, p.old.ForeignKeys, foreignKeysEqual) {
		ops = append(ops, &AddForeignKeyOperation{TableOperation: tableOp(p.new), ForeignKey: fk})
	}
	return ops
}

func (d *Differ) dropKeysAndIndexes(p tablePair) []Operation {
	var ops []Operation
	for _, ix := range changed(p.old.Indexes, p.new.Indexes, indexesEqual) {
		ops = append(ops, &DropIndexOperation{TableOperation: tableOp(p.old), Name: ix.Name})
	}
	for _, k := range changed(p.old.UniqueConstraints, p.new.UniqueConstraints, keysEqual) {
		ops = append(ops, &DropUniqueConstraintOperation{TableOperation: tableOp(p.old), Name: k.Name})
	}
	if p.old.PrimaryKey != nil && (p.new.PrimaryKey == nil || !keysEqual(p.old.PrimaryKey, p.new.PrimaryKey)) {
		ops = append(ops, &DropPrimaryKeyOperation{TableOperation: tableOp(p.old), Name: p.old.PrimaryKey.Name})
	}
	return ops
}

func (d *Differ) addKeysAndIndexes(p tablePair) []Operation {
	var ops []Operation
	if p.new.PrimaryKey != nil && (p.old.PrimaryKey == nil || !keysEqual(p.old.PrimaryKey, p.new.PrimaryKey)) {
		ops = append(ops, &AddPrimaryKeyOperation{TableOperation: tableOp(p.new), Key: p.new.PrimaryKey})
	}
	for _, k := range changed(p.new.UniqueConstraints, p.old.UniqueConstraints, keysEqual) {
		ops = append(ops, &AddUniqueConstraintOperation{TableOperation: tableOp(p.new), Key: k})
	}
	for _, ix := range changed(p.new.Indexes, p.old.Indexes, indexesEqual) {
		ops = append(ops, &CreateIndexOperation{TableOperation: tableOp(p.new), Index: ix})
	}
	return ops
}
