package catalog

import (
	"github.com/conduit-lang/entitymodel/internal/catalog/shop"
)

func buildShop(b *builder) {
	customer := entity[shop.Customer](b)
	product := entity[shop.Product](b)
	entity[shop.PhysicalProduct](b)
	entity[shop.DigitalProduct](b)
	order := entity[shop.Order](b)
	line := entity[shop.OrderLine](b)

	b.alternateKey(customer, "Email")
	b.alternateKey(product, "Sku")

	b.foreignKey(order, customer, "CustomerId")
	b.index(order, false, "PlacedAt")

	b.foreignKey(line, order, "OrderId")
	b.foreignKey(line, product, "ProductId")
	b.index(line, true, "OrderId", "ProductId")
}
