package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/entitymodel/internal/orm/conventions"
	"github.com/conduit-lang/entitymodel/internal/orm/metadata"
	"github.com/conduit-lang/entitymodel/internal/orm/relational"
)

func tableNames(tables []*Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.QualifiedName()
	}
	return names
}

func TestTables_HierarchySharesRootTable(t *testing.T) {
	tables, err := Tables(loadCatalog(t, "shop"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Order", "OrderLine", "Product"}, tableNames(tables))

	product := tables[3]
	assert.Equal(t, "Product", product.Entity)
	require.Len(t, product.Columns, 6)
	assert.Equal(t, "Id", product.Columns[0].Name)

	sku := product.Column("Sku")
	require.NotNil(t, sku)
	assert.False(t, sku.Nullable)

	for _, name := range []string{"WeightGrams", "DownloadURL"} {
		c := product.Column(name)
		require.NotNil(t, c, name)
		assert.True(t, c.Nullable, name)
	}
	assert.Equal(t, "INTEGER", product.Column("WeightGrams").StoreType)

	require.NotNil(t, product.PrimaryKey)
	assert.Equal(t, "PK_Product", product.PrimaryKey.Name)
	require.Len(t, product.UniqueConstraints, 1)
	assert.Equal(t, []string{"Sku"}, product.UniqueConstraints[0].Columns)
}

func TestTables_ColumnsAndConstraints(t *testing.T) {
	tables, err := Tables(loadCatalog(t, "shop"))
	require.NoError(t, err)

	order := tables[1]
	shipped := order.Column("ShippedAt")
	require.NotNil(t, shipped)
	assert.True(t, shipped.Nullable)
	assert.Equal(t, "TIMESTAMP WITH TIME ZONE", shipped.StoreType)
	assert.Equal(t, "UUID", order.Column("CustomerId").StoreType)

	line := tables[2]
	assert.Nil(t, line.Column("Note"))
	require.Len(t, line.ForeignKeys, 2)
	assert.Equal(t, "FK_OrderLine_Order_OrderId", line.ForeignKeys[0].Name)
	assert.Equal(t, "FK_OrderLine_Product_ProductId", line.ForeignKeys[1].Name)
	assert.Equal(t, []string{"Id"}, line.ForeignKeys[1].PrincipalColumns)
	require.Len(t, line.Indexes, 1)
	assert.True(t, line.Indexes[0].Unique)
	assert.Equal(t, []string{"OrderId", "ProductId"}, line.Indexes[0].Columns)
}

func TestTables_Annotations(t *testing.T) {
	m, widget := widgetModel(t)
	relational.Model(m).SetNamingStrategy(relational.NamingSnake)
	relational.Entity(widget).SetSchema("inventory")
	label := relational.Property(widget.FindProperty("Label"))
	label.SetColumnType("VARCHAR(40)")
	require.NoError(t, label.SetDefaultValue("unnamed"))

	tables, err := Tables(m)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "inventory.widget", tables[0].QualifiedName())

	c := tables[0].Column("label")
	require.NotNil(t, c)
	assert.Equal(t, "VARCHAR(40)", c.StoreType)
	assert.Equal(t, "unnamed", c.DefaultValue)
}

type Left struct {
	Id int64
}

func (Left) TableName() string { return "shared" }

type Right struct {
	Id int64
}

func (Right) TableName() string { return "shared" }

func TestTables_TableMappedTwice(t *testing.T) {
	m := conventions.NewModel()
	_, err := metadata.GetOrAddEntityOf[Left](m)
	require.NoError(t, err)
	_, err = metadata.GetOrAddEntityOf[Right](m)
	require.NoError(t, err)

	_, err = Tables(m)
	require.Error(t, err)
	assert.Equal(t, "table shared is mapped by both Left and Right", err.Error())
}

func TestTables_NilModel(t *testing.T) {
	tables, err := Tables(nil)
	require.NoError(t, err)
	assert.Empty(t, tables)
}
